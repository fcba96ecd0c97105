package advisor

import (
	"fmt"
	"math"
	"math/rand/v2"

	"github.com/feltkit/holdemd/internal/card"
	"github.com/feltkit/holdemd/internal/engine"
	"github.com/feltkit/holdemd/internal/eval"
)

// Suggestion is the advisor's recommendation for the acting player. Amount
// carries the "raise to" total for bets and raises and the chips to add for
// calls.
type Suggestion struct {
	Action     engine.Action `json:"action"`
	Amount     int64         `json:"amount,omitempty"`
	Confidence float64       `json:"confidence"`
	Rationale  string        `json:"rationale"`
}

// Advisor computes action suggestions from public state and the player's own
// hole cards. It never mutates the state it reads.
type Advisor struct {
	charts        *charts
	rng           *rand.Rand
	openRaiseBB   int64   // big blinds for a first-in raise
	threeBetMult  int64   // multiple of the current bet for a re-raise
	semiBluffPct  float64 // frequency of raising big combo draws
	riverBluffPct float64
}

// New creates an advisor with the default charts. The RNG drives mixed
// frequencies and the small equity jitter; pass a seeded source for
// reproducible output.
func New(rng *rand.Rand) *Advisor {
	return &Advisor{
		charts:        defaultCharts(),
		rng:           rng,
		openRaiseBB:   3,
		threeBetMult:  3,
		semiBluffPct:  0.35,
		riverBluffPct: 0.25,
	}
}

// Suggest recommends an action for the given player. The result is always
// legal for the state: bets are converted to raises when the pot has been
// opened and amounts are clamped into the legal bounds. When the advisor has
// nothing to go on it folds.
func (a *Advisor) Suggest(g *engine.GameState, playerIndex int) Suggestion {
	if g == nil || playerIndex < 0 || playerIndex >= len(g.Players) {
		return Suggestion{Action: engine.Fold, Confidence: 0, Rationale: "no player to advise"}
	}
	p := &g.Players[playerIndex]
	if len(p.HoleCards) != 2 {
		return Suggestion{Action: engine.Fold, Confidence: 0, Rationale: "hole cards unavailable"}
	}
	if g.HandComplete || playerIndex != g.CurrentIndex {
		return Suggestion{Action: engine.Fold, Confidence: 0, Rationale: "no action pending for player"}
	}
	va := g.ValidActions()
	if va.PlayerID != p.ID {
		return Suggestion{Action: engine.Fold, Confidence: 0, Rationale: "no action pending for player"}
	}

	var s Suggestion
	if g.Phase == engine.Preflop {
		s = a.preflop(g, p, playerIndex, va)
	} else {
		s = a.postflop(g, p, va)
	}
	return legalize(s, va)
}

// preflop follows the position charts: open when first in, isolate limpers
// from the big blind, and 3-bet, call or fold against a raise.
func (a *Advisor) preflop(g *engine.GameState, p *engine.HandPlayer, playerIndex int, va engine.ValidActions) Suggestion {
	format := FormatFor(dealtIn(g))
	dist := dealerDistance(g, playerIndex)
	if dist < 0 {
		return Suggestion{Action: engine.Fold, Confidence: 0, Rationale: "player not dealt in"}
	}
	position := PositionFor(dealtIn(g), dist)
	hand := Notation(p.HoleCards[0], p.HoleCards[1])

	limpers, raised := preflopAction(g)
	bb := g.BigBlind

	if raised {
		threeBet, okThree := a.charts.threeBetRange(format, position)
		call, okCall := a.charts.callRange(format, position)
		if !okThree && !okCall {
			return Suggestion{
				Action:     engine.Fold,
				Confidence: 0.5,
				Rationale:  fmt.Sprintf("no chart for %s %s", format, position),
			}
		}
		if okThree && threeBet.Contains(p.HoleCards) {
			return Suggestion{
				Action:     engine.Raise,
				Amount:     g.CurrentBet * a.threeBetMult,
				Confidence: 0.8,
				Rationale:  fmt.Sprintf("%s 3-bets from %s against a raise", hand, position),
			}
		}
		if okCall && call.Contains(p.HoleCards) {
			return Suggestion{
				Action:     engine.Call,
				Amount:     va.CallAmount,
				Confidence: 0.65,
				Rationale:  fmt.Sprintf("%s calls the raise from %s", hand, position),
			}
		}
		return Suggestion{
			Action:     engine.Fold,
			Confidence: 0.7,
			Rationale:  fmt.Sprintf("%s is outside the %s continue range", hand, position),
		}
	}

	// Unraised pot. The big blind closes the action against limpers.
	if position == BB && va.CanCheck {
		if a.charts.isPremium(p.HoleCards) {
			return Suggestion{
				Action:     engine.Raise,
				Amount:     (3 + int64(limpers)) * bb,
				Confidence: 0.85,
				Rationale:  fmt.Sprintf("%s raises %d limpers from the big blind", hand, limpers),
			}
		}
		if a.charts.isStrong(p.HoleCards) && limpers > 0 {
			return Suggestion{
				Action:     engine.Raise,
				Amount:     (3 + int64(limpers)) * bb,
				Confidence: 0.7,
				Rationale:  fmt.Sprintf("%s isolates the limpers", hand),
			}
		}
		return Suggestion{
			Action:     engine.Check,
			Confidence: 0.75,
			Rationale:  "checking the option",
		}
	}

	open, ok := a.charts.openRange(format, position)
	if !ok {
		return Suggestion{
			Action:     engine.Fold,
			Confidence: 0.5,
			Rationale:  fmt.Sprintf("no chart for %s %s", format, position),
		}
	}
	if open.Contains(p.HoleCards) {
		amount := (a.openRaiseBB + int64(limpers)) * bb
		return Suggestion{
			Action:     engine.Raise,
			Amount:     amount,
			Confidence: 0.8,
			Rationale:  fmt.Sprintf("%s opens from %s", hand, position),
		}
	}
	if limpers > 0 {
		if call, ok := a.charts.callRange(format, position); ok && call.Contains(p.HoleCards) {
			return Suggestion{
				Action:     engine.Call,
				Amount:     va.CallAmount,
				Confidence: 0.6,
				Rationale:  fmt.Sprintf("%s comes along behind %d limpers", hand, limpers),
			}
		}
	}
	return Suggestion{
		Action:     engine.Fold,
		Confidence: 0.7,
		Rationale:  fmt.Sprintf("%s is outside the %s opening range", hand, position),
	}
}

// postflop walks the decision ladder: made-hand value, draw equity against
// pot odds, continuation bets, and river polarization.
func (a *Advisor) postflop(g *engine.GameState, p *engine.HandPlayer, va engine.ValidActions) Suggestion {
	strength, made := a.handStrength(p.HoleCards, g.Community)
	draws := DetectDraws(p.HoleCards, g.Community)
	equity := strength + draws.Outs*outFactor(g.Phase)
	equity += a.jitter()
	pot := g.TotalPot()
	toCall := va.CallAmount

	if toCall > 0 {
		return a.facingBet(g, va, strength, equity, draws, made, pot, toCall, p)
	}
	return a.unbet(g, va, strength, equity, draws, made, pot, p)
}

func (a *Advisor) facingBet(g *engine.GameState, va engine.ValidActions, strength, equity float64, draws Draws, made eval.EvaluatedHand, pot, toCall int64, p *engine.HandPlayer) Suggestion {
	potOdds := float64(toCall) / float64(pot+toCall)
	required := potOdds
	if pot > 0 {
		spr := float64(p.Stack) / float64(pot)
		switch {
		case spr < 1:
			required *= 0.7
		case spr < 3:
			required *= 0.85
		}
	}

	if strength > 0.75 {
		return Suggestion{
			Action:     engine.Raise,
			Amount:     g.CurrentBet + pot,
			Confidence: 0.85,
			Rationale:  fmt.Sprintf("raising %s for value", made.Description),
		}
	}
	if strength > 0.5 {
		return Suggestion{
			Action:     engine.Call,
			Amount:     toCall,
			Confidence: 0.7,
			Rationale:  fmt.Sprintf("calling with %s", made.Description),
		}
	}
	if g.Phase != engine.River {
		if draws.Outs >= 12 && va.CanRaise && a.chance(a.semiBluffPct) {
			return Suggestion{
				Action:     engine.Raise,
				Amount:     g.CurrentBet + pot,
				Confidence: 0.6,
				Rationale:  fmt.Sprintf("semi-bluffing a %.0f-out draw", draws.Outs),
			}
		}
		if draws.Outs >= 8 && equity >= required {
			return Suggestion{
				Action:     engine.Call,
				Amount:     toCall,
				Confidence: 0.65,
				Rationale: fmt.Sprintf("%.0f outs beat pot odds of %.2f",
					draws.Outs, potOdds),
			}
		}
		betToPot := float64(toCall) / float64(max(pot, int64(1)))
		if draws.Gutshot && betToPot < 0.25 {
			return Suggestion{
				Action:     engine.Call,
				Amount:     toCall,
				Confidence: 0.55,
				Rationale:  "peeling a small bet with a gutshot",
			}
		}
	}
	return Suggestion{
		Action:     engine.Fold,
		Confidence: 0.75,
		Rationale:  fmt.Sprintf("not enough equity against pot odds of %.2f", potOdds),
	}
}

func (a *Advisor) unbet(g *engine.GameState, va engine.ValidActions, strength, equity float64, draws Draws, made eval.EvaluatedHand, pot int64, p *engine.HandPlayer) Suggestion {
	board := ClassifyBoard(g.Community)

	if g.Phase == engine.River {
		if strength > 0.6 {
			return Suggestion{
				Action:     engine.Bet,
				Amount:     potFraction(pot, 0.75),
				Confidence: 0.8,
				Rationale:  fmt.Sprintf("value betting %s on the river", made.Description),
			}
		}
		if strength < 0.35 && bustedDraw(p.HoleCards, g.Community) && a.chance(a.riverBluffPct) {
			return Suggestion{
				Action:     engine.Bet,
				Amount:     potFraction(pot, 0.75),
				Confidence: 0.5,
				Rationale:  "bluffing a missed draw",
			}
		}
		return Suggestion{Action: engine.Check, Confidence: 0.7, Rationale: "checking back the river"}
	}

	if strength > 0.75 {
		return Suggestion{
			Action:     engine.Bet,
			Amount:     potFraction(pot, 0.75),
			Confidence: 0.85,
			Rationale:  fmt.Sprintf("betting %s for value", made.Description),
		}
	}
	if strength > 0.5 {
		return Suggestion{
			Action:     engine.Bet,
			Amount:     potFraction(pot, 0.5),
			Confidence: 0.7,
			Rationale:  fmt.Sprintf("betting %s on a %s board", made.Description, board.Texture),
		}
	}
	if draws.Outs >= 12 && a.chance(a.semiBluffPct) {
		return Suggestion{
			Action:     engine.Bet,
			Amount:     potFraction(pot, 0.66),
			Confidence: 0.6,
			Rationale:  fmt.Sprintf("semi-bluffing a %.0f-out draw", draws.Outs),
		}
	}
	if wasAggressor(g, p.ID) {
		if board.Texture <= SemiWet {
			return Suggestion{
				Action:     engine.Bet,
				Amount:     potFraction(pot, 0.5),
				Confidence: 0.7,
				Rationale:  fmt.Sprintf("continuation bet on a %s board", board.Texture),
			}
		}
		if equity >= 0.5 {
			return Suggestion{
				Action:     engine.Bet,
				Amount:     potFraction(pot, 0.66),
				Confidence: 0.65,
				Rationale:  fmt.Sprintf("continuation bet with equity on a %s board", board.Texture),
			}
		}
	}
	return Suggestion{Action: engine.Check, Confidence: 0.6, Rationale: "checking a weak holding"}
}

// handStrength maps the current made hand onto [0,1]. Pairs are graded by
// whether the hole cards participate: an overpair or top pair is worth far
// more than a pair sitting on the board.
func (a *Advisor) handStrength(hole, community []card.Card) (float64, eval.EvaluatedHand) {
	all := make([]card.Card, 0, len(hole)+len(community))
	all = append(all, hole...)
	all = append(all, community...)
	evaluated, err := eval.Evaluate(all)
	if err != nil {
		return 0, eval.EvaluatedHand{}
	}

	boardHigh := card.Rank(0)
	for _, c := range community {
		if c.Rank > boardHigh {
			boardHigh = c.Rank
		}
	}
	pocketPair := hole[0].Rank == hole[1].Rank

	switch evaluated.Category {
	case eval.HighCard:
		hi := hole[0].Rank
		if hole[1].Rank > hi {
			hi = hole[1].Rank
		}
		return 0.1 + float64(hi)/140, evaluated
	case eval.Pair:
		pairRank := evaluated.Ranks[0]
		switch {
		case pocketPair && hole[0].Rank > boardHigh:
			return 0.6, evaluated // overpair
		case pairRank == boardHigh && holeHasRank(hole, pairRank):
			return 0.55, evaluated // top pair
		case holeHasRank(hole, pairRank) || pocketPair:
			return 0.45, evaluated
		default:
			return 0.3, evaluated // pair on the board
		}
	case eval.TwoPair:
		return 0.68, evaluated
	case eval.ThreeOfAKind:
		if pocketPair {
			return 0.8, evaluated // set
		}
		return 0.78, evaluated
	case eval.Straight:
		return 0.84, evaluated
	case eval.Flush:
		return 0.88, evaluated
	case eval.FullHouse:
		return 0.93, evaluated
	case eval.FourOfAKind:
		return 0.97, evaluated
	default:
		return 1.0, evaluated
	}
}

// legalize forces a suggestion into the legal action set: bets become raises
// once the pot is opened (and vice versa), amounts are clamped, and anything
// unavailable degrades toward call, check, fold.
func legalize(s Suggestion, va engine.ValidActions) Suggestion {
	if s.Confidence < 0 {
		s.Confidence = 0
	}
	if s.Confidence > 1 {
		s.Confidence = 1
	}

	switch s.Action {
	case engine.Bet:
		if !va.CanBet && va.CanRaise {
			s.Action = engine.Raise
		}
	case engine.Raise:
		if !va.CanRaise && va.CanBet {
			s.Action = engine.Bet
		}
	}

	switch s.Action {
	case engine.Bet:
		if !va.CanBet {
			return degrade(s, va)
		}
		s.Amount = clamp(s.Amount, va.MinBet, va.MaxBet)
	case engine.Raise:
		if !va.CanRaise {
			return degrade(s, va)
		}
		s.Amount = clamp(s.Amount, va.MinRaise, va.MaxRaise)
	case engine.Call:
		if !va.CanCall {
			return degrade(s, va)
		}
		s.Amount = va.CallAmount
	case engine.Check:
		if !va.CanCheck {
			return degrade(s, va)
		}
		s.Amount = 0
	case engine.AllIn:
		if !va.CanAllIn {
			return degrade(s, va)
		}
		s.Amount = va.AllInAmount
	case engine.Fold:
		s.Amount = 0
	}
	return s
}

// degrade falls back through call, check, fold keeping the rationale.
func degrade(s Suggestion, va engine.ValidActions) Suggestion {
	switch {
	case va.CanCheck:
		s.Action = engine.Check
		s.Amount = 0
	case va.CanCall:
		s.Action = engine.Call
		s.Amount = va.CallAmount
	default:
		s.Action = engine.Fold
		s.Amount = 0
	}
	return s
}

// dealtIn counts the players dealt into the hand, folded or not.
func dealtIn(g *engine.GameState) int {
	n := 0
	for i := range g.Players {
		if !g.Players[i].SittingOut {
			n++
		}
	}
	return n
}

// dealerDistance walks clockwise from the dealer counting dealt-in seats
// until it reaches the player, or -1 if the player is sitting out.
func dealerDistance(g *engine.GameState, playerIndex int) int {
	n := len(g.Players)
	dist := 0
	for step := 0; step < n; step++ {
		i := (g.DealerIndex + step) % n
		if g.Players[i].SittingOut {
			continue
		}
		if i == playerIndex {
			return dist
		}
		dist++
	}
	return -1
}

// preflopAction tallies the preflop log: how many limped in and whether
// anyone raised.
func preflopAction(g *engine.GameState) (limpers int, raised bool) {
	for _, e := range g.ActionLog {
		if e.Phase != engine.Preflop {
			continue
		}
		switch e.Action {
		case engine.Call:
			limpers++
		case engine.Raise, engine.Bet, engine.AllIn:
			raised = true
		}
	}
	if g.CurrentBet > g.BigBlind {
		raised = true
	}
	return limpers, raised
}

// wasAggressor reports whether the player made the last raise of the
// previous street, which earns the continuation bet.
func wasAggressor(g *engine.GameState, playerID string) bool {
	last := ""
	for _, e := range g.ActionLog {
		if e.Phase >= g.Phase {
			continue
		}
		switch e.Action {
		case engine.Raise, engine.Bet, engine.AllIn:
			last = e.PlayerID
		}
	}
	return last != "" && last == playerID
}

// bustedDraw reports whether the turn board offered a strong draw that the
// river failed to complete.
func bustedDraw(hole, community []card.Card) bool {
	if len(community) != 5 {
		return false
	}
	turn := DetectDraws(hole, community[:4])
	return turn.FlushDraw || turn.OpenEnded
}

func outFactor(phase engine.Phase) float64 {
	switch phase {
	case engine.Flop:
		return 0.04
	case engine.Turn:
		return 0.02
	default:
		return 0
	}
}

func (a *Advisor) jitter() float64 {
	if a.rng == nil {
		return 0
	}
	return (a.rng.Float64() - 0.5) * 0.04
}

func (a *Advisor) chance(p float64) bool {
	if a.rng == nil {
		return false
	}
	return a.rng.Float64() < p
}

func potFraction(pot int64, frac float64) int64 {
	amount := int64(math.Round(float64(pot) * frac))
	if amount < 1 {
		amount = 1
	}
	return amount
}

func holeHasRank(hole []card.Card, r card.Rank) bool {
	for _, c := range hole {
		if c.Rank == r {
			return true
		}
	}
	return false
}

func clamp(v, lo, hi int64) int64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
