package eval

import (
	"fmt"
	"sort"

	"github.com/feltkit/holdemd/internal/card"
)

// evaluate5 classifies exactly five cards.
func evaluate5(five [5]card.Card) EvaluatedHand {
	cards := five[:]

	var counts [card.Ace + 1]int
	flush := true
	for i, c := range cards {
		counts[c.Rank]++
		if i > 0 && c.Suit != cards[0].Suit {
			flush = false
		}
	}

	straightHigh, straight := straightHighRank(counts)

	sorted := make([]card.Card, 5)
	copy(sorted, cards)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].Rank > sorted[j].Rank })

	hand := EvaluatedHand{Cards: sorted}

	switch {
	case straight && flush && straightHigh == card.Ace:
		hand.Category = RoyalFlush
		hand.Ranks = []card.Rank{card.Ace}
	case straight && flush:
		hand.Category = StraightFlush
		hand.Ranks = []card.Rank{straightHigh}
	case straight && !flush:
		hand.Category = Straight
		hand.Ranks = []card.Rank{straightHigh}
	case flush:
		hand.Category = Flush
		hand.Ranks = ranksDescending(sorted)
	default:
		hand.Category, hand.Ranks, hand.Kickers = classifyByCounts(counts)
	}

	hand.Description = describe(hand)
	return hand
}

// straightHighRank reports whether the rank counts form five consecutive
// distinct ranks, and the high card of the run. The wheel (A-2-3-4-5)
// counts as a five-high straight.
func straightHighRank(counts [card.Ace + 1]int) (card.Rank, bool) {
	for _, n := range counts {
		if n > 1 {
			return 0, false
		}
	}
	for high := card.Ace; high >= card.Six; high-- {
		run := true
		for r := high; r > high-5; r-- {
			if counts[r] == 0 {
				run = false
				break
			}
		}
		if run {
			return high, true
		}
	}
	// Wheel: the ace plays low.
	if counts[card.Ace] == 1 && counts[card.Two] == 1 && counts[card.Three] == 1 &&
		counts[card.Four] == 1 && counts[card.Five] == 1 {
		return card.Five, true
	}
	return 0, false
}

// classifyByCounts handles the paired categories plus high card.
func classifyByCounts(counts [card.Ace + 1]int) (Category, []card.Rank, []card.Rank) {
	var quads, trips, pairs, singles []card.Rank
	for r := card.Ace; r >= card.Two; r-- {
		switch counts[r] {
		case 4:
			quads = append(quads, r)
		case 3:
			trips = append(trips, r)
		case 2:
			pairs = append(pairs, r)
		case 1:
			singles = append(singles, r)
		}
	}

	switch {
	case len(quads) == 1:
		return FourOfAKind, quads, singles
	case len(trips) == 1 && len(pairs) == 1:
		return FullHouse, []card.Rank{trips[0], pairs[0]}, nil
	case len(trips) == 1:
		return ThreeOfAKind, trips, singles
	case len(pairs) == 2:
		return TwoPair, pairs, singles
	case len(pairs) == 1:
		return Pair, pairs, singles
	default:
		return HighCard, singles, nil
	}
}

func ranksDescending(sorted []card.Card) []card.Rank {
	ranks := make([]card.Rank, len(sorted))
	for i, c := range sorted {
		ranks[i] = c.Rank
	}
	return ranks
}

var rankWords = map[card.Rank]string{
	card.Two:   "Deuce",
	card.Three: "Three",
	card.Four:  "Four",
	card.Five:  "Five",
	card.Six:   "Six",
	card.Seven: "Seven",
	card.Eight: "Eight",
	card.Nine:  "Nine",
	card.Ten:   "Ten",
	card.Jack:  "Jack",
	card.Queen: "Queen",
	card.King:  "King",
	card.Ace:   "Ace",
}

func rankWord(r card.Rank) string {
	if w, ok := rankWords[r]; ok {
		return w
	}
	return r.String()
}

func rankPlural(r card.Rank) string {
	if r == card.Six {
		return "Sixes"
	}
	return rankWord(r) + "s"
}

// describe renders a human-readable summary such as
// "Full House, Kings over Fours".
func describe(h EvaluatedHand) string {
	switch h.Category {
	case RoyalFlush:
		return "Royal Flush"
	case StraightFlush:
		return fmt.Sprintf("Straight Flush, %s High", rankWord(h.Ranks[0]))
	case FourOfAKind:
		return fmt.Sprintf("Four of a Kind, %s", rankPlural(h.Ranks[0]))
	case FullHouse:
		return fmt.Sprintf("Full House, %s over %s", rankPlural(h.Ranks[0]), rankPlural(h.Ranks[1]))
	case Flush:
		return fmt.Sprintf("Flush, %s High", rankWord(h.Ranks[0]))
	case Straight:
		return fmt.Sprintf("Straight, %s High", rankWord(h.Ranks[0]))
	case ThreeOfAKind:
		return fmt.Sprintf("Three of a Kind, %s", rankPlural(h.Ranks[0]))
	case TwoPair:
		return fmt.Sprintf("Two Pair, %s and %s", rankPlural(h.Ranks[0]), rankPlural(h.Ranks[1]))
	case Pair:
		return fmt.Sprintf("Pair of %s", rankPlural(h.Ranks[0]))
	default:
		return fmt.Sprintf("%s High", rankWord(h.Ranks[0]))
	}
}
