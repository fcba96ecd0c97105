package advisor

import (
	"sort"

	"github.com/feltkit/holdemd/internal/card"
)

// Texture grades how coordinated the community cards are.
type Texture int

const (
	Dry Texture = iota
	SemiWet
	Wet
	VeryWet
)

var textureNames = [...]string{"dry", "semi-wet", "wet", "very wet"}

func (t Texture) String() string {
	if t < 0 || int(t) >= len(textureNames) {
		return "unknown"
	}
	return textureNames[t]
}

// Board summarizes the community cards for postflop decisions.
type Board struct {
	Texture       Texture
	Paired        bool
	Monotone      bool
	TwoTone       bool
	Rainbow       bool
	MaxSuitCount  int
	ToStraight    int  // longest span of board ranks inside any 5-rank window
	Connected     bool // three or more board ranks inside one window
	HighCardCount int  // tens or better
}

// ClassifyBoard grades the community cards. Boards with fewer than three
// cards are dry by definition.
func ClassifyBoard(community []card.Card) Board {
	b := Board{Rainbow: true}
	if len(community) < 3 {
		return b
	}

	suitCounts := make(map[card.Suit]int)
	rankCounts := make(map[card.Rank]int)
	for _, c := range community {
		suitCounts[c.Suit]++
		rankCounts[c.Rank]++
		if c.Rank >= card.Ten {
			b.HighCardCount++
		}
	}
	for _, n := range suitCounts {
		if n > b.MaxSuitCount {
			b.MaxSuitCount = n
		}
		if n >= 2 {
			b.Rainbow = false
		}
	}
	b.Monotone = b.MaxSuitCount == len(community)
	b.TwoTone = !b.Monotone && b.MaxSuitCount >= 2
	for _, n := range rankCounts {
		if n >= 2 {
			b.Paired = true
		}
	}
	b.ToStraight = straightSpan(rankCounts)
	b.Connected = b.ToStraight >= 3

	score := 0
	switch {
	case b.MaxSuitCount >= 4 || b.Monotone:
		score += 4
	case b.MaxSuitCount == 3:
		score += 3
	case b.MaxSuitCount == 2:
		score++
	}
	switch {
	case b.ToStraight >= 4:
		score += 4
	case b.ToStraight == 3:
		score += 3
	case b.ToStraight == 2:
		score++
	}
	if b.Paired {
		score++
	}
	if b.HighCardCount >= 3 {
		score++
	}

	switch {
	case score <= 1:
		b.Texture = Dry
	case score <= 3:
		b.Texture = SemiWet
	case score <= 5:
		b.Texture = Wet
	default:
		b.Texture = VeryWet
	}
	return b
}

// straightSpan finds the most distinct board ranks that fit inside a single
// five-rank straight window, counting the ace as both high and low.
func straightSpan(rankCounts map[card.Rank]int) int {
	ranks := make([]int, 0, len(rankCounts)+1)
	for r := range rankCounts {
		ranks = append(ranks, int(r))
		if r == card.Ace {
			ranks = append(ranks, 1)
		}
	}
	sort.Ints(ranks)

	best := 0
	for _, low := range ranks {
		n := 0
		for _, r := range ranks {
			if r >= low && r <= low+4 {
				n++
			}
		}
		if n > best {
			best = n
		}
	}
	return best
}
