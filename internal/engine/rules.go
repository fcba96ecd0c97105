package engine

// ValidActions describes everything the current player may legally do.
// Bet, raise and all-in amounts are expressed as the player's total bet for
// the round after the action ("raise to"), not the increment.
type ValidActions struct {
	PlayerID    string `json:"playerId"`
	CanFold     bool   `json:"canFold"`
	CanCheck    bool   `json:"canCheck"`
	CanCall     bool   `json:"canCall"`
	CallAmount  int64  `json:"callAmount,omitempty"`
	CanBet      bool   `json:"canBet"`
	MinBet      int64  `json:"minBet,omitempty"`
	MaxBet      int64  `json:"maxBet,omitempty"`
	CanRaise    bool   `json:"canRaise"`
	MinRaise    int64  `json:"minRaise,omitempty"`
	MaxRaise    int64  `json:"maxRaise,omitempty"`
	CanAllIn    bool   `json:"canAllIn"`
	AllInAmount int64  `json:"allInAmount,omitempty"`
}

// ValidActions computes the legal actions for the player whose turn it is.
// A zero value is returned when no player can act.
func (g *GameState) ValidActions() ValidActions {
	p := g.CurrentPlayer()
	if p == nil || !g.Betting() || !p.CanAct() {
		return ValidActions{}
	}

	va := ValidActions{PlayerID: p.ID, CanFold: true}

	toCall := g.CurrentBet - p.CurrentBet
	if toCall < 0 {
		toCall = 0
	}
	va.CanCheck = toCall == 0
	if toCall > 0 {
		va.CanCall = true
		va.CallAmount = min64(toCall, p.Stack)
	}

	maxTotal := p.CurrentBet + p.Stack
	fullMinRaise := g.CurrentBet + max64(g.LastRaiseAmount, g.BigBlind)

	// An incomplete all-in does not reopen the betting for the player who
	// made the last full raise; they may only call or fold.
	locked := !g.LastRaiseWasComplete && p.ID == g.LastAggressorID

	if g.openForBetting(p) {
		va.CanBet = true
		if g.CurrentBet == 0 {
			va.MinBet = min64(g.BigBlind, maxTotal)
		} else {
			// Big blind option: the "bet" is really a raise.
			va.MinBet = min64(fullMinRaise, maxTotal)
		}
		va.MaxBet = maxTotal
	}

	if g.CurrentBet > 0 && !locked && maxTotal >= fullMinRaise && maxTotal > g.CurrentBet {
		va.CanRaise = true
		va.MinRaise = fullMinRaise
		va.MaxRaise = maxTotal
	}

	if !locked {
		va.CanAllIn = true
		va.AllInAmount = maxTotal
	}

	return va
}

// openForBetting reports whether a bet (as opposed to a raise) is available:
// nobody has bet this round, or it is the big blind's preflop option with no
// raise in front.
func (g *GameState) openForBetting(p *HandPlayer) bool {
	if g.CurrentBet == 0 {
		return true
	}
	return g.Phase == Preflop &&
		g.CurrentBet == g.BigBlind &&
		g.bbPlayer() != nil &&
		p.ID == g.bbPlayer().ID &&
		g.LastAggressorID == g.bbPlayer().ID
}

func (g *GameState) bbPlayer() *HandPlayer {
	if g.BBIndex < 0 || g.BBIndex >= len(g.Players) {
		return nil
	}
	return &g.Players[g.BBIndex]
}

// IsRoundComplete reports whether the current betting round is settled:
// one live player left, or every live, non-all-in player has matched the
// current bet and acted. Preflop additionally waits for the big blind's
// option.
func (g *GameState) IsRoundComplete() bool {
	if g.LiveCount() <= 1 {
		return true
	}
	for i := range g.Players {
		p := &g.Players[i]
		if !p.Live() || p.AllIn {
			continue
		}
		if p.CurrentBet != g.CurrentBet || !p.HasActed {
			return false
		}
	}
	if g.Phase == Preflop {
		if bb := g.bbPlayer(); bb != nil && bb.CanAct() && !g.BBHasActed {
			return false
		}
	}
	return true
}

// FirstToAct returns the index of the player opening the betting round, or
// -1 when nobody can act. Preflop the first actor sits left of the big blind
// (heads-up that is the dealer); postflop it is the first actor left of the
// dealer.
func (g *GameState) FirstToAct() int {
	if g.Phase == Preflop {
		return g.nextEligible(g.BBIndex)
	}
	return g.nextEligible(g.DealerIndex)
}

// NextToAct returns the next player clockwise from the given index who can
// still act, or -1.
func (g *GameState) NextToAct(from int) int {
	return g.nextEligible(from)
}

func (g *GameState) nextEligible(from int) int {
	n := len(g.Players)
	if n == 0 {
		return -1
	}
	for step := 1; step <= n; step++ {
		i := (from + step) % n
		if i < 0 {
			i += n
		}
		if g.Players[i].CanAct() {
			return i
		}
	}
	return -1
}

func min64(a, b int64) int64 {
	if a < b {
		return a
	}
	return b
}

func max64(a, b int64) int64 {
	if a > b {
		return a
	}
	return b
}
