// Package advisor suggests an action for the player to move: preflop from
// position-indexed range charts, postflop from board texture, draw outs and
// pot odds. Suggestions are advice only and always legal for the state they
// were computed from.
package advisor

import (
	"fmt"
	"strings"

	"github.com/feltkit/holdemd/internal/card"
)

// Range is a set of starting-hand categories ("AA", "AKs", "T9o") with
// weights. Parsed from standard notation lists.
type Range struct {
	hands map[string]float64
}

// NewRange creates an empty range.
func NewRange() *Range {
	return &Range{hands: make(map[string]float64)}
}

// ParseRange builds a range from comma-separated notation. Supported parts:
// direct hands ("AKs", "QQ"), plus-extensions ("66+", "A2s+", "KTs+") and
// dash-bounded spans ("AA-22", "AKs-A2s").
func ParseRange(notation string) (*Range, error) {
	r := NewRange()
	for _, part := range strings.Split(notation, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		if err := r.addRangePart(part); err != nil {
			return nil, fmt.Errorf("invalid range part %q: %w", part, err)
		}
	}
	return r, nil
}

func mustRange(notation string) *Range {
	r, err := ParseRange(notation)
	if err != nil {
		panic(err)
	}
	return r
}

// Contains reports whether the two hole cards fall inside the range.
func (r *Range) Contains(hole []card.Card) bool {
	if len(hole) != 2 {
		return false
	}
	return r.hands[Notation(hole[0], hole[1])] > 0
}

// Size returns the number of hand categories in the range.
func (r *Range) Size() int {
	return len(r.hands)
}

// Notation renders two hole cards as their starting-hand category with the
// higher rank first: "AA", "AKs" or "AKo".
func Notation(a, b card.Card) string {
	hi, lo := a.Rank, b.Rank
	if lo > hi {
		hi, lo = lo, hi
	}
	if hi == lo {
		return hi.String() + lo.String()
	}
	if a.Suit == b.Suit {
		return hi.String() + lo.String() + "s"
	}
	return hi.String() + lo.String() + "o"
}

func (r *Range) addRangePart(part string) error {
	if strings.Contains(part, "+") {
		return r.addPlusRange(part)
	}
	if strings.Contains(part, "-") {
		return r.addDashRange(part)
	}
	return r.addSingleHand(part)
}

func (r *Range) addSingleHand(notation string) error {
	if len(notation) < 2 || len(notation) > 3 {
		return fmt.Errorf("invalid notation length: %s", notation)
	}
	hi, lo, err := parseRankPair(notation)
	if err != nil {
		return err
	}

	if hi == lo {
		if len(notation) == 3 {
			return fmt.Errorf("pocket pairs take no suited modifier: %s", notation)
		}
		r.add(hi, lo, false)
		return nil
	}

	if len(notation) == 2 {
		r.add(hi, lo, true)
		r.add(hi, lo, false)
		return nil
	}
	switch notation[2] {
	case 's':
		r.add(hi, lo, true)
	case 'o':
		r.add(hi, lo, false)
	default:
		return fmt.Errorf("invalid modifier %q", notation[2])
	}
	return nil
}

// addPlusRange handles "TT+" (pairs up to aces) and "KTs+" (kicker walks up
// to one below the high card).
func (r *Range) addPlusRange(notation string) error {
	base := strings.TrimSuffix(notation, "+")
	if base == notation {
		return fmt.Errorf("no + suffix")
	}
	if len(base) < 2 || len(base) > 3 {
		return fmt.Errorf("invalid base %q", base)
	}
	hi, lo, err := parseRankPair(base)
	if err != nil {
		return err
	}

	if hi == lo {
		for rank := hi; rank <= card.Ace; rank++ {
			r.add(rank, rank, false)
		}
		return nil
	}

	suited, offsuit, err := modifiers(base)
	if err != nil {
		return err
	}
	for rank := lo; rank < hi; rank++ {
		if suited {
			r.add(hi, rank, true)
		}
		if offsuit {
			r.add(hi, rank, false)
		}
	}
	return nil
}

// addDashRange handles "AA-22" (pair spans) and "AKs-A2s" (same high card,
// kicker span).
func (r *Range) addDashRange(notation string) error {
	parts := strings.Split(notation, "-")
	if len(parts) != 2 {
		return fmt.Errorf("invalid dash range")
	}
	start, end := strings.TrimSpace(parts[0]), strings.TrimSpace(parts[1])

	startHi, startLo, err := parseRankPair(start)
	if err != nil {
		return err
	}
	endHi, endLo, err := parseRankPair(end)
	if err != nil {
		return err
	}

	if startHi == startLo && endHi == endLo {
		lower, upper := startHi, endHi
		if lower > upper {
			lower, upper = upper, lower
		}
		for rank := lower; rank <= upper; rank++ {
			r.add(rank, rank, false)
		}
		return nil
	}

	if startHi != endHi {
		return fmt.Errorf("unsupported range %q", notation)
	}
	suited, offsuit, err := modifiers(start)
	if err != nil {
		return err
	}
	lower, upper := startLo, endLo
	if lower > upper {
		lower, upper = upper, lower
	}
	for rank := lower; rank <= upper; rank++ {
		if suited {
			r.add(startHi, rank, true)
		}
		if offsuit {
			r.add(startHi, rank, false)
		}
	}
	return nil
}

func (r *Range) add(hi, lo card.Rank, suited bool) {
	key := hi.String() + lo.String()
	if hi != lo {
		if suited {
			key += "s"
		} else {
			key += "o"
		}
	}
	r.hands[key] = 1.0
}

func parseRankPair(notation string) (card.Rank, card.Rank, error) {
	hi, ok1 := parseRank(notation[0])
	lo, ok2 := parseRank(notation[1])
	if !ok1 || !ok2 {
		return 0, 0, fmt.Errorf("invalid rank in %q", notation)
	}
	if lo > hi {
		hi, lo = lo, hi
	}
	return hi, lo, nil
}

func parseRank(c byte) (card.Rank, bool) {
	switch c {
	case '2', '3', '4', '5', '6', '7', '8', '9':
		return card.Rank(c - '0'), true
	case 'T', 't':
		return card.Ten, true
	case 'J', 'j':
		return card.Jack, true
	case 'Q', 'q':
		return card.Queen, true
	case 'K', 'k':
		return card.King, true
	case 'A', 'a':
		return card.Ace, true
	default:
		return 0, false
	}
}

func modifiers(base string) (suited, offsuit bool, err error) {
	if len(base) == 2 {
		return true, true, nil
	}
	switch base[2] {
	case 's':
		return true, false, nil
	case 'o':
		return false, true, nil
	default:
		return false, false, fmt.Errorf("invalid modifier %q", base[2])
	}
}
