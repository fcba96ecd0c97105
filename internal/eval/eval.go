// Package eval ranks five- to seven-card holdem hands. Evaluation produces an
// explicit (category, ranks, kickers) vector with a total order, so showdown
// comparisons and winner explanations never depend on an opaque score.
package eval

import (
	"fmt"

	"github.com/feltkit/holdemd/internal/card"
)

// Category enumerates hand categories from weakest to strongest.
type Category int

const (
	HighCard Category = iota
	Pair
	TwoPair
	ThreeOfAKind
	Straight
	Flush
	FullHouse
	FourOfAKind
	StraightFlush
	RoyalFlush
)

var categoryNames = [...]string{
	"high_card",
	"pair",
	"two_pair",
	"three_of_a_kind",
	"straight",
	"flush",
	"full_house",
	"four_of_a_kind",
	"straight_flush",
	"royal_flush",
}

// String returns the wire name of the category.
func (c Category) String() string {
	if c < HighCard || c > RoyalFlush {
		return "unknown"
	}
	return categoryNames[c]
}

// MarshalText implements encoding.TextMarshaler.
func (c Category) MarshalText() ([]byte, error) {
	return []byte(c.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (c *Category) UnmarshalText(text []byte) error {
	s := string(text)
	for i, name := range categoryNames {
		if name == s {
			*c = Category(i)
			return nil
		}
	}
	return fmt.Errorf("eval: unknown category %q", s)
}

// EvaluatedHand is the total-ordered result of evaluating a hand.
// Ranks carries the category-defining ranks (e.g. trip rank then pair rank
// for a full house); Kickers the ordered tiebreak ranks that remain.
type EvaluatedHand struct {
	Category    Category    `json:"category"`
	Ranks       []card.Rank `json:"ranks"`
	Kickers     []card.Rank `json:"kickers,omitempty"`
	Cards       []card.Card `json:"cards"`
	Description string      `json:"description"`
}

// CardCountError reports an evaluation attempt with fewer than five or more
// than seven cards.
type CardCountError struct {
	Count int
}

func (e *CardCountError) Error() string {
	return fmt.Sprintf("eval: need 5 to 7 cards, got %d", e.Count)
}

// DuplicateCardError reports a card appearing twice in the evaluation set.
type DuplicateCardError struct {
	Card card.Card
}

func (e *DuplicateCardError) Error() string {
	return fmt.Sprintf("eval: duplicate card %s", e.Card)
}

// Evaluate returns the best five-card hand makeable from 5-7 cards.
// For six or seven cards every five-card subset is ranked and the
// maximum under Compare is returned. Deterministic: identical card
// sets always produce identical results.
func Evaluate(cards []card.Card) (EvaluatedHand, error) {
	if len(cards) < 5 || len(cards) > 7 {
		return EvaluatedHand{}, &CardCountError{Count: len(cards)}
	}

	seen := make(map[card.Card]bool, len(cards))
	for _, c := range cards {
		if seen[c] {
			return EvaluatedHand{}, &DuplicateCardError{Card: c}
		}
		seen[c] = true
	}

	if len(cards) == 5 {
		five := [5]card.Card{}
		copy(five[:], cards)
		return evaluate5(five), nil
	}

	var best EvaluatedHand
	first := true
	forEachFiveCardSubset(cards, func(five [5]card.Card) {
		hand := evaluate5(five)
		if first || Compare(hand, best) > 0 {
			best = hand
			first = false
		}
	})
	return best, nil
}

// Compare returns >0 if a beats b, <0 if b beats a, and 0 on a true tie.
// The order is category first, then the rank vectors lexicographically.
func Compare(a, b EvaluatedHand) int {
	if a.Category != b.Category {
		return int(a.Category) - int(b.Category)
	}
	if d := compareRanks(a.Ranks, b.Ranks); d != 0 {
		return d
	}
	return compareRanks(a.Kickers, b.Kickers)
}

func compareRanks(a, b []card.Rank) int {
	n := len(a)
	if len(b) < n {
		n = len(b)
	}
	for i := 0; i < n; i++ {
		if a[i] != b[i] {
			return int(a[i]) - int(b[i])
		}
	}
	return len(a) - len(b)
}

// forEachFiveCardSubset enumerates the C(n,5) combinations of cards.
func forEachFiveCardSubset(cards []card.Card, fn func([5]card.Card)) {
	n := len(cards)
	var pick [5]card.Card
	for a := 0; a < n-4; a++ {
		pick[0] = cards[a]
		for b := a + 1; b < n-3; b++ {
			pick[1] = cards[b]
			for c := b + 1; c < n-2; c++ {
				pick[2] = cards[c]
				for d := c + 1; d < n-1; d++ {
					pick[3] = cards[d]
					for e := d + 1; e < n; e++ {
						pick[4] = cards[e]
						fn(pick)
					}
				}
			}
		}
	}
}
