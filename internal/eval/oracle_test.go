package eval

import (
	"testing"

	"github.com/chehsunliu/poker"

	"github.com/feltkit/holdemd/internal/card"
	"github.com/feltkit/holdemd/internal/randutil"
)

// rankClassOf maps a Category onto chehsunliu/poker's rank classes, where
// 1 is a straight flush (royal included) and 9 is high card.
func rankClassOf(c Category) int32 {
	switch c {
	case RoyalFlush, StraightFlush:
		return 1
	case FourOfAKind:
		return 2
	case FullHouse:
		return 3
	case Flush:
		return 4
	case Straight:
		return 5
	case ThreeOfAKind:
		return 6
	case TwoPair:
		return 7
	case Pair:
		return 8
	default:
		return 9
	}
}

func toLibraryCards(cards []card.Card) []poker.Card {
	out := make([]poker.Card, len(cards))
	for i, c := range cards {
		out[i] = poker.NewCard(c.String())
	}
	return out
}

// TestEvaluateAgreesWithPokerLibrary cross-checks the evaluator against
// chehsunliu/poker on random seven-card boards: categories must map onto the
// library's rank classes, and the relative order of any two hands must match
// (the library scores lower-is-better).
func TestEvaluateAgreesWithPokerLibrary(t *testing.T) {
	t.Parallel()

	type sample struct {
		cards []card.Card
		hand  EvaluatedHand
		score int32
	}

	rng := randutil.New(42)
	const boards = 300
	samples := make([]sample, 0, boards)

	for i := 0; i < boards; i++ {
		deck := card.NewDeck()
		deck.Shuffle(rng)
		cards, err := deck.DrawN(7)
		if err != nil {
			t.Fatal(err)
		}

		hand, err := Evaluate(cards)
		if err != nil {
			t.Fatalf("evaluate %v: %v", card.Format(cards), err)
		}
		score := poker.Evaluate(toLibraryCards(cards))

		if got, want := poker.RankClass(score), rankClassOf(hand.Category); got != want {
			t.Fatalf("board %v: category %v maps to class %d, library says %d (%s)",
				card.Format(cards), hand.Category, want, got, poker.RankString(score))
		}
		samples = append(samples, sample{cards: cards, hand: hand, score: score})
	}

	for i := range samples {
		for j := i + 1; j < len(samples); j++ {
			a, b := samples[i], samples[j]
			got := sign(Compare(a.hand, b.hand))
			want := sign(int(b.score) - int(a.score))
			if got != want {
				t.Fatalf("order disagrees for %v (%s) vs %v (%s): got %d, want %d",
					card.Format(a.cards), a.hand.Description,
					card.Format(b.cards), b.hand.Description, got, want)
			}
		}
	}
}
