// Package card provides playing-card primitives: ranks, suits, the 52-card
// deck, and the two-character wire format ("Ah", "Td") used everywhere a card
// crosses a process boundary.
package card

import (
	"fmt"
	"strings"
)

// Suit represents a card suit.
type Suit int

const (
	Hearts Suit = iota
	Diamonds
	Clubs
	Spades
)

// String returns the canonical lowercase suit character.
func (s Suit) String() string {
	switch s {
	case Hearts:
		return "h"
	case Diamonds:
		return "d"
	case Clubs:
		return "c"
	case Spades:
		return "s"
	default:
		return "?"
	}
}

// IsRed returns true if the suit is red (Hearts or Diamonds).
func (s Suit) IsRed() bool {
	return s == Hearts || s == Diamonds
}

// Rank represents a card rank. Aces are high (14) everywhere except the
// wheel straight, which the evaluator handles explicitly.
type Rank int

const (
	Two Rank = iota + 2
	Three
	Four
	Five
	Six
	Seven
	Eight
	Nine
	Ten
	Jack
	Queen
	King
	Ace
)

// String returns the canonical uppercase rank character.
func (r Rank) String() string {
	switch r {
	case Ten:
		return "T"
	case Jack:
		return "J"
	case Queen:
		return "Q"
	case King:
		return "K"
	case Ace:
		return "A"
	default:
		if r >= Two && r <= Nine {
			return string(rune('0' + int(r)))
		}
		return "?"
	}
}

// Card represents a single playing card.
type Card struct {
	Rank Rank
	Suit Suit
}

// New creates a card from a rank and suit.
func New(rank Rank, suit Suit) Card {
	return Card{Rank: rank, Suit: suit}
}

// String returns the canonical two-character form, e.g. "Ah" or "Td".
func (c Card) String() string {
	return c.Rank.String() + c.Suit.String()
}

// IsRed returns true if the card is red.
func (c Card) IsRed() bool {
	return c.Suit.IsRed()
}

// ParseError reports a card string that is not two characters of
// rank `23456789TJQKA` followed by suit `hdcs`.
type ParseError struct {
	Input string
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("card: malformed card %q", e.Input)
}

// Parse converts a two-character string like "Ah" or "td" into a Card.
// Parsing is case-insensitive; emission is always canonical.
func Parse(s string) (Card, error) {
	if len(s) != 2 {
		return Card{}, &ParseError{Input: s}
	}

	var rank Rank
	switch s[0] {
	case '2', '3', '4', '5', '6', '7', '8', '9':
		rank = Rank(s[0] - '0')
	case 'T', 't':
		rank = Ten
	case 'J', 'j':
		rank = Jack
	case 'Q', 'q':
		rank = Queen
	case 'K', 'k':
		rank = King
	case 'A', 'a':
		rank = Ace
	default:
		return Card{}, &ParseError{Input: s}
	}

	var suit Suit
	switch s[1] {
	case 'h', 'H':
		suit = Hearts
	case 'd', 'D':
		suit = Diamonds
	case 'c', 'C':
		suit = Clubs
	case 's', 'S':
		suit = Spades
	default:
		return Card{}, &ParseError{Input: s}
	}

	return Card{Rank: rank, Suit: suit}, nil
}

// ParseMany parses a run of concatenated or space-separated cards,
// e.g. "AhKd" or "Ah Kd 2c".
func ParseMany(s string) ([]Card, error) {
	s = strings.ReplaceAll(s, " ", "")
	if len(s)%2 != 0 {
		return nil, &ParseError{Input: s}
	}

	cards := make([]Card, 0, len(s)/2)
	for i := 0; i < len(s); i += 2 {
		c, err := Parse(s[i : i+2])
		if err != nil {
			return nil, err
		}
		cards = append(cards, c)
	}
	return cards, nil
}

// Format renders a card slice in canonical concatenated form.
func Format(cards []Card) string {
	var sb strings.Builder
	sb.Grow(len(cards) * 2)
	for _, c := range cards {
		sb.WriteString(c.String())
	}
	return sb.String()
}

// MarshalText implements encoding.TextMarshaler so cards serialize
// as their wire form inside JSON documents.
func (c Card) MarshalText() ([]byte, error) {
	return []byte(c.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (c *Card) UnmarshalText(text []byte) error {
	parsed, err := Parse(string(text))
	if err != nil {
		return err
	}
	*c = parsed
	return nil
}
