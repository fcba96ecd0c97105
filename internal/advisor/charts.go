package advisor

import "github.com/feltkit/holdemd/internal/card"

// Format buckets table sizes for chart selection.
type Format int

const (
	HeadsUp Format = iota
	SixMax
	NineMax
)

var formatNames = [...]string{"heads_up", "6max", "9max"}

func (f Format) String() string {
	if f < 0 || int(f) >= len(formatNames) {
		return "unknown"
	}
	return formatNames[f]
}

// Position is the seat's role relative to the dealer button.
type Position int

const (
	UTG Position = iota
	MP
	CO
	BTN
	SB
	BB
)

var positionNames = [...]string{"UTG", "MP", "CO", "BTN", "SB", "BB"}

func (p Position) String() string {
	if p < 0 || int(p) >= len(positionNames) {
		return "unknown"
	}
	return positionNames[p]
}

// FormatFor buckets a player count into a chart format.
func FormatFor(playerCount int) Format {
	switch {
	case playerCount <= 2:
		return HeadsUp
	case playerCount <= 6:
		return SixMax
	default:
		return NineMax
	}
}

// PositionFor derives the chart position from the clockwise distance between
// a player's seat order and the dealer's. Heads-up the dealer is the small
// blind.
func PositionFor(playerCount, distanceFromDealer int) Position {
	if playerCount == 2 {
		if distanceFromDealer == 0 {
			return SB
		}
		return BB
	}
	switch distanceFromDealer {
	case 0:
		return BTN
	case 1:
		return SB
	case 2:
		return BB
	case 3:
		return UTG
	default:
		if distanceFromDealer == playerCount-1 {
			return CO
		}
		return MP
	}
}

type chartKey struct {
	Format   Format
	Position Position
}

// charts index preflop ranges by format and position. A missing entry means
// the advisor has no opinion and falls back to folding.
type charts struct {
	open     map[chartKey]*Range
	threeBet map[chartKey]*Range
	call     map[chartKey]*Range
	premium  *Range
	strong   *Range
}

func defaultCharts() *charts {
	c := &charts{
		open:     make(map[chartKey]*Range),
		threeBet: make(map[chartKey]*Range),
		call:     make(map[chartKey]*Range),
		premium:  mustRange("JJ+, AKs, AKo, AQs"),
		strong:   mustRange("77+, ATs+, KQs, AJo+, KQo"),
	}

	// Heads-up: the button opens very wide, the big blind defends wide.
	c.open[chartKey{HeadsUp, SB}] = mustRange(
		"22+, A2s+, K2s+, Q4s+, J6s+, T6s+, 96s+, 86s+, 75s+, 65s, 54s, A2o+, K5o+, Q8o+, J8o+, T8o+, 98o")
	c.threeBet[chartKey{HeadsUp, BB}] = mustRange("99+, AJs+, KQs, AQo+")
	c.call[chartKey{HeadsUp, BB}] = mustRange(
		"22-88, A2s+, K5s+, Q7s+, J8s+, T8s+, 97s+, 87s, 76s, A5o+, K9o+, Q9o+, JTo")
	c.threeBet[chartKey{HeadsUp, SB}] = mustRange("TT+, AQs+, AKo")
	c.call[chartKey{HeadsUp, SB}] = mustRange("22-99, A8s+, KTs+, QTs+, JTs, ATo+, KJo+")

	// Six-max opens widen from UTG to the button.
	c.open[chartKey{SixMax, UTG}] = mustRange("55+, ATs+, KJs+, QJs, AJo+, KQo")
	c.open[chartKey{SixMax, MP}] = mustRange("44+, A9s+, KTs+, QTs+, JTs, ATo+, KJo+")
	c.open[chartKey{SixMax, CO}] = mustRange(
		"22+, A5s+, K9s+, Q9s+, J9s+, T9s, 98s, A9o+, KTo+, QTo+, JTo")
	c.open[chartKey{SixMax, BTN}] = mustRange(
		"22+, A2s+, K6s+, Q8s+, J8s+, T8s+, 97s+, 87s, 76s, 65s, A7o+, K9o+, Q9o+, J9o+, T9o")
	c.open[chartKey{SixMax, SB}] = mustRange(
		"22+, A2s+, K8s+, Q9s+, J9s+, T8s+, 98s, 87s, A8o+, KTo+, QTo+, JTo")

	c.threeBet[chartKey{SixMax, UTG}] = mustRange("QQ+, AKs, AKo")
	c.threeBet[chartKey{SixMax, MP}] = mustRange("QQ+, AKs, AKo")
	c.threeBet[chartKey{SixMax, CO}] = mustRange("JJ+, AQs+, AKo")
	c.threeBet[chartKey{SixMax, BTN}] = mustRange("TT+, AQs+, A5s, AQo+")
	c.threeBet[chartKey{SixMax, SB}] = mustRange("JJ+, AQs+, AKo")
	c.threeBet[chartKey{SixMax, BB}] = mustRange("TT+, AQs+, A5s, AQo+")

	c.call[chartKey{SixMax, UTG}] = mustRange("JJ-77, AQs-AJs, KQs")
	c.call[chartKey{SixMax, MP}] = mustRange("JJ-66, AQs-ATs, KQs, AQo")
	c.call[chartKey{SixMax, CO}] = mustRange("TT-44, AJs-A9s, KQs-KTs, QJs, JTs, AQo-AJo, KQo")
	c.call[chartKey{SixMax, BTN}] = mustRange(
		"99-22, AJs-A7s, KJs-KTs, QJs-QTs, JTs, T9s, 98s, AQo-ATo, KQo-KJo")
	c.call[chartKey{SixMax, SB}] = mustRange("TT-55, AQs-ATs, KQs, AQo")
	c.call[chartKey{SixMax, BB}] = mustRange(
		"99-22, AJs-A2s, KJs-K8s, QJs-Q9s, JTs-J9s, T9s, 98s, 87s, 76s, AQo-A9o, KQo-KTo, QJo, JTo")

	// Full ring tightens everything one notch.
	c.open[chartKey{NineMax, UTG}] = mustRange("77+, AJs+, KQs, AQo+")
	c.open[chartKey{NineMax, MP}] = mustRange("66+, ATs+, KJs+, QJs, AJo+, KQo")
	c.open[chartKey{NineMax, CO}] = mustRange("44+, A8s+, KTs+, QTs+, JTs, T9s, ATo+, KJo+")
	c.open[chartKey{NineMax, BTN}] = mustRange(
		"22+, A2s+, K8s+, Q9s+, J9s+, T8s+, 98s, 87s, A8o+, KTo+, QTo+, JTo")
	c.open[chartKey{NineMax, SB}] = mustRange(
		"22+, A2s+, K9s+, Q9s+, J9s+, T9s, 98s, A9o+, KTo+, QJo")

	c.threeBet[chartKey{NineMax, UTG}] = mustRange("KK+, AKs")
	c.threeBet[chartKey{NineMax, MP}] = mustRange("QQ+, AKs, AKo")
	c.threeBet[chartKey{NineMax, CO}] = mustRange("QQ+, AKs, AKo")
	c.threeBet[chartKey{NineMax, BTN}] = mustRange("JJ+, AQs+, AKo")
	c.threeBet[chartKey{NineMax, SB}] = mustRange("QQ+, AKs, AKo")
	c.threeBet[chartKey{NineMax, BB}] = mustRange("JJ+, AQs+, AKo")

	c.call[chartKey{NineMax, UTG}] = mustRange("QQ-88, AQs-AJs, KQs")
	c.call[chartKey{NineMax, MP}] = mustRange("JJ-77, AQs-AJs, KQs, AQo")
	c.call[chartKey{NineMax, CO}] = mustRange("JJ-55, AQs-ATs, KQs-KJs, QJs, JTs, AQo")
	c.call[chartKey{NineMax, BTN}] = mustRange(
		"TT-22, AJs-A8s, KJs-KTs, QJs-QTs, JTs, T9s, 98s, AQo-AJo, KQo")
	c.call[chartKey{NineMax, SB}] = mustRange("JJ-66, AQs-AJs, KQs, AQo")
	c.call[chartKey{NineMax, BB}] = mustRange(
		"TT-22, AQs-A2s, KQs-K9s, QJs-QTs, JTs, T9s, 98s, AQo-ATo, KQo-KJo, QJo")

	return c
}

func (c *charts) openRange(f Format, p Position) (*Range, bool) {
	r, ok := c.open[chartKey{f, p}]
	return r, ok
}

func (c *charts) threeBetRange(f Format, p Position) (*Range, bool) {
	r, ok := c.threeBet[chartKey{f, p}]
	return r, ok
}

func (c *charts) callRange(f Format, p Position) (*Range, bool) {
	r, ok := c.call[chartKey{f, p}]
	return r, ok
}

// isPremium reports whether the hole cards are in the raise-over-limpers set.
func (c *charts) isPremium(hole []card.Card) bool {
	return c.premium.Contains(hole)
}

// isStrong reports whether the hole cards justify an isolation raise.
func (c *charts) isStrong(hole []card.Card) bool {
	return c.strong.Contains(hole)
}
