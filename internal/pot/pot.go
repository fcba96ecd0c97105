// Package pot builds and distributes main and side pots from the chips each
// player committed during a hand. It is pure bookkeeping: callers apply the
// resulting refunds and payouts to player stacks themselves.
package pot

import "sort"

// Contributor is one hand participant's total commitment across the hand.
type Contributor struct {
	PlayerID string
	Seat     int
	Total    int64
	Folded   bool
}

// Pot is a single contested pot and the players who can still win it.
// Folded contributors leave their chips behind but lose eligibility.
type Pot struct {
	Amount   int64    `json:"amount"`
	Eligible []string `json:"eligiblePlayerIds"`
}

// Winner identifies a pot winner and the seat used for odd-chip ordering.
type Winner struct {
	PlayerID string
	Seat     int
}

// Payout is one winner's share of a distributed pot.
type Payout struct {
	PlayerID string `json:"playerId"`
	Amount   int64  `json:"amount"`
}

// Build sweeps the distinct commitment levels in ascending order and forms
// one pot per increment: the slice between two consecutive levels collects
// that increment from every player committed at or above it, and is winnable
// by the non-folded among them. Consecutive pots with identical eligibility
// collapse into one. The pot amounts always sum to the total committed.
func Build(contributors []Contributor) []Pot {
	var levels []int64
	seen := make(map[int64]bool)
	for _, c := range contributors {
		if c.Total > 0 && !seen[c.Total] {
			seen[c.Total] = true
			levels = append(levels, c.Total)
		}
	}
	sort.Slice(levels, func(i, j int) bool { return levels[i] < levels[j] })

	var pots []Pot
	var prev int64
	for _, level := range levels {
		delta := level - prev
		prev = level

		var amount int64
		var eligible []string
		for _, c := range contributors {
			if c.Total < level {
				continue
			}
			amount += delta
			if !c.Folded {
				eligible = append(eligible, c.PlayerID)
			}
		}
		sort.Strings(eligible)

		if n := len(pots); n > 0 && sameEligibility(pots[n-1].Eligible, eligible) {
			pots[n-1].Amount += amount
			continue
		}
		pots = append(pots, Pot{Amount: amount, Eligible: eligible})
	}
	return pots
}

func sameEligibility(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

// Uncalled reports the refund owed before pots are swept: when exactly one
// player's commitment exceeds the second-highest, the excess was never
// matched and goes back to that player. Returns the empty string when no
// refund is due.
func Uncalled(contributors []Contributor) (string, int64) {
	var highest, second int64
	var leader string
	leaders := 0
	for _, c := range contributors {
		switch {
		case c.Total > highest:
			second = highest
			highest = c.Total
			leader = c.PlayerID
			leaders = 1
		case c.Total == highest && c.Total > 0:
			leaders++
		case c.Total > second:
			second = c.Total
		}
	}
	if leaders != 1 || highest <= second {
		return "", 0
	}
	return leader, highest - second
}

// Distribute splits a pot evenly among its winners. The odd-chip remainder
// goes out one chip at a time starting with the first winner clockwise of
// the dealer seat. Payouts are returned in that seating order.
func Distribute(p Pot, winners []Winner, dealerSeat int) []Payout {
	if len(winners) == 0 {
		return nil
	}

	bySeat := make([]Winner, len(winners))
	copy(bySeat, winners)
	sort.Slice(bySeat, func(i, j int) bool { return bySeat[i].Seat < bySeat[j].Seat })

	// Rotate so the first winner past the dealer seat pays out first,
	// wrapping to the lowest seat when the dealer is last.
	start := 0
	for i, w := range bySeat {
		if w.Seat > dealerSeat {
			start = i
			break
		}
	}
	ordered := make([]Winner, 0, len(bySeat))
	ordered = append(ordered, bySeat[start:]...)
	ordered = append(ordered, bySeat[:start]...)

	share := p.Amount / int64(len(ordered))
	remainder := p.Amount % int64(len(ordered))

	payouts := make([]Payout, len(ordered))
	for i, w := range ordered {
		amount := share
		if int64(i) < remainder {
			amount++
		}
		payouts[i] = Payout{PlayerID: w.PlayerID, Amount: amount}
	}
	return payouts
}
