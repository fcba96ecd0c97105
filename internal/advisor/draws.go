package advisor

import "github.com/feltkit/holdemd/internal/card"

// Draws describes the drawing potential of hole cards against a board. Outs
// counts distinct unseen cards that complete a draw, so a flush draw plus an
// open-ender is 15, not 17. Backdoor draws are worth a card and a half.
type Draws struct {
	FlushDraw        bool
	OpenEnded        bool
	Gutshot          bool
	BackdoorFlush    bool
	BackdoorStraight bool
	Overcards        int
	Outs             float64
}

// DetectDraws inspects hole plus community cards for flush and straight
// draws. Backdoor draws are only meaningful on the flop. Made flushes and
// straights report no draw.
func DetectDraws(hole, community []card.Card) Draws {
	var d Draws
	if len(hole) != 2 || len(community) < 3 {
		return d
	}
	all := make([]card.Card, 0, len(hole)+len(community))
	all = append(all, hole...)
	all = append(all, community...)

	suitCounts := make(map[card.Suit]int)
	holeSuits := make(map[card.Suit]int)
	for _, c := range all {
		suitCounts[c.Suit]++
	}
	for _, c := range hole {
		holeSuits[c.Suit]++
	}

	madeFlush := false
	for s, n := range suitCounts {
		if n >= 5 {
			madeFlush = true
		}
		if n == 4 && holeSuits[s] > 0 {
			d.FlushDraw = true
		}
	}
	if madeFlush {
		d.FlushDraw = false
	}

	present := rankSet(all)
	candidates := 0
	if !madeFlush && !hasStraight(present) {
		for r := card.Two; r <= card.Ace; r++ {
			if present[r] {
				continue
			}
			present[r] = true
			if hasStraight(present) {
				candidates++
			}
			present[r] = false
		}
	}
	switch {
	case candidates >= 2:
		d.OpenEnded = true
	case candidates == 1:
		d.Gutshot = true
	}

	if len(community) == 3 && !madeFlush {
		for s, n := range suitCounts {
			if n == 3 && holeSuits[s] > 0 && !d.FlushDraw {
				d.BackdoorFlush = true
			}
		}
		if !d.OpenEnded && !d.Gutshot && !hasStraight(present) {
			combined := straightSpan(rankCountsOf(all))
			boardOnly := straightSpan(rankCountsOf(community))
			if combined >= 3 && combined > boardOnly {
				d.BackdoorStraight = true
			}
		}
	}

	boardHigh := card.Rank(0)
	for _, c := range community {
		if c.Rank > boardHigh {
			boardHigh = c.Rank
		}
	}
	for _, c := range hole {
		if c.Rank > boardHigh {
			d.Overcards++
		}
	}

	if d.FlushDraw {
		d.Outs += 9
	}
	if candidates > 0 {
		straightOuts := candidates * 4
		if d.FlushDraw {
			// The draw-suit card of each completing rank is already
			// inside the nine flush outs.
			straightOuts -= candidates
		}
		d.Outs += float64(straightOuts)
	}
	if d.BackdoorFlush {
		d.Outs += 1.5
	}
	if d.BackdoorStraight {
		d.Outs += 1.5
	}
	return d
}

func rankSet(cards []card.Card) map[card.Rank]bool {
	set := make(map[card.Rank]bool, len(cards))
	for _, c := range cards {
		set[c.Rank] = true
	}
	return set
}

func rankCountsOf(cards []card.Card) map[card.Rank]int {
	counts := make(map[card.Rank]int, len(cards))
	for _, c := range cards {
		counts[c.Rank]++
	}
	return counts
}

// hasStraight reports whether the rank set contains five consecutive ranks,
// treating the ace as high or low.
func hasStraight(present map[card.Rank]bool) bool {
	for low := 2; low <= 10; low++ {
		run := true
		for r := low; r < low+5; r++ {
			if !present[card.Rank(r)] {
				run = false
				break
			}
		}
		if run {
			return true
		}
	}
	// Wheel: A-2-3-4-5.
	if present[card.Ace] && present[card.Two] && present[card.Three] &&
		present[card.Four] && present[card.Five] {
		return true
	}
	return false
}
