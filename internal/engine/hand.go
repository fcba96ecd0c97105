package engine

import (
	"fmt"
	"math/rand/v2"
	"sort"
	"time"

	"github.com/feltkit/holdemd/internal/card"
	"github.com/feltkit/holdemd/internal/eval"
	"github.com/feltkit/holdemd/internal/pot"
)

// maxPlayers bounds a table so a 52-card deck always covers two hole cards
// per player plus burns and board.
const maxPlayers = 10

// ActionInput is one action request against the hand.
type ActionInput struct {
	PlayerID  string
	Action    Action
	Amount    int64
	ActionID  string
	IsTimeout bool
}

// PhaseChange records one street dealt while the hand advanced.
type PhaseChange struct {
	Phase     Phase       `json:"phase"`
	Community []card.Card `json:"communityCards"`
}

// Refund records uncalled chips returned to a player before a pot sweep.
type Refund struct {
	PlayerID string `json:"playerId"`
	Amount   int64  `json:"amount"`
}

// Result reports everything a single transition did to the hand, so callers
// can emit one event per externally visible change. Starting a hand and
// processing an action both produce one.
type Result struct {
	Entry        ActionLogEntry
	PhaseChanges []PhaseChange
	Refund       *Refund
	HandComplete bool
}

// NewHand snapshots the seats into a fresh hand. The button moves to the
// next occupied seat clockwise from previousDealerSeat with chips behind;
// blinds derive from it (heads-up: the dealer posts the small blind).
// Players without chips or sitting out are carried in the snapshot but take
// no part. Fails with ErrNotEnoughPlayers unless two can play.
func NewHand(cfg Config, seats []SeatedPlayer, previousDealerSeat int) (*GameState, error) {
	if cfg.SmallBlind <= 0 || cfg.BigBlind <= 0 || cfg.SmallBlind > cfg.BigBlind {
		return nil, fmt.Errorf("engine: invalid blinds %d/%d", cfg.SmallBlind, cfg.BigBlind)
	}
	if len(seats) > maxPlayers {
		return nil, fmt.Errorf("engine: %d players exceeds table limit %d", len(seats), maxPlayers)
	}

	players := make([]HandPlayer, 0, len(seats))
	for _, s := range seats {
		players = append(players, HandPlayer{
			ID:         s.PlayerID,
			SeatIndex:  s.SeatIndex,
			Stack:      s.Stack,
			SittingOut: s.SittingOut || s.Stack <= 0,
		})
	}
	sort.Slice(players, func(i, j int) bool { return players[i].SeatIndex < players[j].SeatIndex })

	active := 0
	for i := range players {
		if players[i].InHand() {
			active++
		}
	}
	if active < 2 {
		return nil, ErrNotEnoughPlayers
	}

	g := &GameState{
		TableID:              cfg.TableID,
		HandNumber:           cfg.HandNumber,
		Phase:                Waiting,
		Players:              players,
		CurrentIndex:         -1,
		SmallBlind:           cfg.SmallBlind,
		BigBlind:             cfg.BigBlind,
		TurnTimeoutMs:        cfg.TurnTimeoutMs,
		LastRaiseWasComplete: true,
	}

	g.DealerIndex = g.dealerAfterSeat(previousDealerSeat)
	if active == 2 {
		g.SBIndex = g.DealerIndex
	} else {
		g.SBIndex = g.nextInHand(g.DealerIndex)
	}
	g.BBIndex = g.nextInHand(g.SBIndex)
	return g, nil
}

// dealerAfterSeat finds the next in-hand player strictly past the given seat
// number, wrapping to the lowest in-hand seat.
func (g *GameState) dealerAfterSeat(previousSeat int) int {
	first := -1
	for i := range g.Players {
		if !g.Players[i].InHand() {
			continue
		}
		if first == -1 {
			first = i
		}
		if g.Players[i].SeatIndex > previousSeat {
			return i
		}
	}
	return first
}

// nextInHand returns the next dealt-in player clockwise from the index.
func (g *GameState) nextInHand(from int) int {
	n := len(g.Players)
	for step := 1; step <= n; step++ {
		i := (from + step) % n
		if g.Players[i].InHand() {
			return i
		}
	}
	return -1
}

// Start shuffles a fresh deck, posts the blinds and deals hole cards: one
// card at a time, two passes, beginning left of the dealer. The returned
// Result carries any streets dealt straight through when the blinds already
// left nobody free to act.
func (g *GameState) Start(now time.Time, rng *rand.Rand) (*Result, error) {
	if g.Phase != Waiting {
		return nil, ruleErrorf("hand %d already started", g.HandNumber)
	}

	deck := card.NewDeck()
	deck.Shuffle(rng)

	g.postBlind(g.SBIndex, g.SmallBlind)
	g.postBlind(g.BBIndex, g.BigBlind)

	for pass := 0; pass < 2; pass++ {
		for step := 1; step <= len(g.Players); step++ {
			p := &g.Players[(g.DealerIndex+step)%len(g.Players)]
			if !p.InHand() {
				continue
			}
			c, err := deck.Draw()
			if err != nil {
				return nil, err
			}
			p.HoleCards = append(p.HoleCards, c)
		}
	}
	g.Deck = deck.Cards()

	g.Community = []card.Card{}
	g.Phase = Preflop
	g.CurrentBet = g.BigBlind
	g.LastRaiseAmount = g.BigBlind
	g.LastAggressorID = g.Players[g.BBIndex].ID
	g.LastRaiseWasComplete = true
	g.BBHasActed = false
	g.CurrentIndex = g.FirstToAct()
	g.TurnStartedAt = now.UnixMilli()

	res := &Result{}
	// If the blinds put everyone all-in there is no betting to wait for.
	if g.CurrentIndex == -1 || g.IsRoundComplete() {
		g.advancePhase(now, res)
	}
	return res, nil
}

func (g *GameState) postBlind(idx int, amount int64) {
	p := &g.Players[idx]
	pay := min64(amount, p.Stack)
	p.Stack -= pay
	p.CurrentBet += pay
	p.TotalBet += pay
	if p.Stack == 0 {
		p.AllIn = true
	}
}

// ProcessAction validates and applies one action for the player whose turn
// it is, then either passes the turn, advances the phase or ends the hand.
func (g *GameState) ProcessAction(in ActionInput, now time.Time) (*Result, error) {
	if g.HandComplete {
		return nil, ErrHandComplete
	}
	if !g.Betting() {
		return nil, ruleErrorf("no betting in phase %s", g.Phase)
	}
	p := g.Player(in.PlayerID)
	if p == nil {
		return nil, ErrUnknownPlayer
	}
	if cur := g.CurrentPlayer(); cur == nil || cur.ID != in.PlayerID {
		return nil, ruleErrorf("not %s's turn", in.PlayerID)
	}

	va := g.ValidActions()
	action := in.Action
	var logAmount int64

	switch in.Action {
	case Fold:
		p.Folded = true

	case Check:
		if !va.CanCheck {
			return nil, ruleErrorf("cannot check: %d to call", g.CurrentBet-p.CurrentBet)
		}

	case Call:
		if !va.CanCall {
			return nil, ruleErrorf("nothing to call")
		}
		logAmount = g.applyCall(p)

	case Bet:
		if !va.CanBet {
			return nil, ruleErrorf("cannot bet: action is already open at %d", g.CurrentBet)
		}
		if in.Amount < va.MinBet || in.Amount > va.MaxBet {
			return nil, ruleErrorf("bet %d outside [%d, %d]", in.Amount, va.MinBet, va.MaxBet)
		}
		if g.CurrentBet > 0 {
			// Big blind option: bookkeep the bet as a raise so min-raise
			// tracking stays exact.
			action = Raise
		}
		logAmount = g.applyRaiseTo(p, in.Amount)

	case Raise:
		if !va.CanRaise {
			switch {
			case !g.LastRaiseWasComplete && p.ID == g.LastAggressorID:
				return nil, ruleErrorf("cannot raise: the all-in did not reopen the betting")
			case g.CurrentBet == 0:
				return nil, ruleErrorf("nothing to raise: bet instead")
			default:
				return nil, ruleErrorf("stack too small to raise: go all-in instead")
			}
		}
		if in.Amount < va.MinRaise || in.Amount > va.MaxRaise {
			return nil, ruleErrorf("raise to %d outside [%d, %d]", in.Amount, va.MinRaise, va.MaxRaise)
		}
		logAmount = g.applyRaiseTo(p, in.Amount)

	case AllIn:
		if !va.CanAllIn {
			return nil, ruleErrorf("cannot raise all-in: call or fold")
		}
		logAmount = g.applyAllIn(p)

	default:
		return nil, ruleErrorf("unknown action")
	}

	p.HasActed = true
	if g.Phase == Preflop && g.BBIndex >= 0 && p.ID == g.Players[g.BBIndex].ID {
		g.BBHasActed = true
	}

	entry := ActionLogEntry{
		ActionID:  in.ActionID,
		PlayerID:  p.ID,
		Action:    action,
		Amount:    logAmount,
		Phase:     g.Phase,
		IsTimeout: in.IsTimeout,
		At:        now.UnixMilli(),
	}
	g.ActionLog = append(g.ActionLog, entry)

	res := &Result{Entry: entry}
	switch {
	case g.LiveCount() <= 1:
		g.endHand(res)
	case g.IsRoundComplete():
		g.advancePhase(now, res)
	default:
		g.CurrentIndex = g.NextToAct(g.CurrentIndex)
		g.TurnStartedAt = now.UnixMilli()
	}
	return res, nil
}

// applyCall matches the current bet, or as much of it as the stack covers.
func (g *GameState) applyCall(p *HandPlayer) int64 {
	pay := min64(g.CurrentBet-p.CurrentBet, p.Stack)
	p.Stack -= pay
	p.CurrentBet += pay
	p.TotalBet += pay
	if p.Stack == 0 {
		p.AllIn = true
	}
	return pay
}

// applyRaiseTo moves the player's round bet to the given total. A raise
// increment smaller than a full raise (only reachable all-in) does not reset
// the raise baseline and marks the betting as not reopened.
func (g *GameState) applyRaiseTo(p *HandPlayer, amount int64) int64 {
	pay := amount - p.CurrentBet
	p.Stack -= pay
	p.CurrentBet = amount
	p.TotalBet += pay
	if p.Stack == 0 {
		p.AllIn = true
	}

	raisedBy := amount - g.CurrentBet
	g.CurrentBet = amount
	if raisedBy >= max64(g.LastRaiseAmount, g.BigBlind) {
		g.LastRaiseAmount = raisedBy
		g.LastAggressorID = p.ID
		g.LastRaiseWasComplete = true
	} else {
		g.LastRaiseWasComplete = false
	}
	return amount
}

// applyAllIn commits the whole stack: a raise when it exceeds the current
// bet, otherwise a call for less.
func (g *GameState) applyAllIn(p *HandPlayer) int64 {
	amount := p.CurrentBet + p.Stack
	if amount > g.CurrentBet {
		return g.applyRaiseTo(p, amount)
	}
	p.TotalBet += p.Stack
	p.CurrentBet = amount
	p.Stack = 0
	p.AllIn = true
	return amount
}

// advancePhase settles the finished betting round (refund, sweep) and deals
// forward: one street when betting continues, every remaining street when at
// most one player can still act.
func (g *GameState) advancePhase(now time.Time, res *Result) {
	g.refundUncalled(res)
	for i := range g.Players {
		g.Players[i].CurrentBet = 0
		g.Players[i].HasActed = false
	}
	g.CurrentBet = 0
	g.LastRaiseAmount = 0
	g.LastAggressorID = ""
	g.LastRaiseWasComplete = true
	g.Pots = pot.Build(g.contributors())

	for {
		if g.Phase == River {
			g.endHand(res)
			return
		}

		g.burnCard()
		switch g.Phase {
		case Preflop:
			g.dealCommunity(3)
			g.Phase = Flop
		case Flop:
			g.dealCommunity(1)
			g.Phase = Turn
		case Turn:
			g.dealCommunity(1)
			g.Phase = River
		}
		res.PhaseChanges = append(res.PhaseChanges, PhaseChange{
			Phase:     g.Phase,
			Community: append([]card.Card(nil), g.Community...),
		})

		if g.actorCount() > 1 {
			g.CurrentIndex = g.FirstToAct()
			g.TurnStartedAt = now.UnixMilli()
			return
		}
	}
}

func (g *GameState) burnCard() {
	if len(g.Deck) > 0 {
		g.Deck = g.Deck[1:]
	}
}

func (g *GameState) dealCommunity(n int) {
	for i := 0; i < n && len(g.Deck) > 0; i++ {
		g.Community = append(g.Community, g.Deck[0])
		g.Deck = g.Deck[1:]
	}
}

// refundUncalled returns the unmatched part of the highest commitment to its
// owner. Safe to call repeatedly; after one refund nothing is owed.
func (g *GameState) refundUncalled(res *Result) {
	playerID, amount := pot.Uncalled(g.contributors())
	if amount == 0 {
		return
	}
	p := g.Player(playerID)
	p.Stack += amount
	p.TotalBet -= amount
	p.CurrentBet = max64(0, p.CurrentBet-amount)
	if p.AllIn && p.Stack > 0 {
		p.AllIn = false
	}
	res.Refund = &Refund{PlayerID: playerID, Amount: amount}
}

// endHand settles the hand: refund, final sweep, then payouts. A lone live
// player takes every pot without a showdown; otherwise the live hands are
// evaluated and each pot goes to the best eligible hand, ties split with the
// odd chip awarded clockwise from the dealer.
func (g *GameState) endHand(res *Result) {
	g.refundUncalled(res)
	g.Pots = pot.Build(g.contributors())
	g.Phase = Showdown
	g.HandComplete = true
	g.CurrentIndex = -1

	dealerSeat := g.Players[g.DealerIndex].SeatIndex

	if g.LiveCount() == 1 {
		var lone *HandPlayer
		for i := range g.Players {
			if g.Players[i].Live() {
				lone = &g.Players[i]
				break
			}
		}
		for potIndex, pt := range g.Pots {
			lone.Stack += pt.Amount
			g.Winners = append(g.Winners, Winner{
				PlayerID: lone.ID,
				PotIndex: potIndex,
				Amount:   pt.Amount,
			})
		}
		res.HandComplete = true
		return
	}

	hands := make(map[string]*eval.EvaluatedHand, len(g.Players))
	for i := range g.Players {
		p := &g.Players[i]
		if !p.Live() {
			continue
		}
		cards := make([]card.Card, 0, len(p.HoleCards)+len(g.Community))
		cards = append(cards, p.HoleCards...)
		cards = append(cards, g.Community...)
		h, err := eval.Evaluate(cards)
		if err != nil {
			continue
		}
		hands[p.ID] = &h
	}

	for potIndex, pt := range g.Pots {
		var best *eval.EvaluatedHand
		var winners []pot.Winner
		for _, id := range pt.Eligible {
			h := hands[id]
			if h == nil {
				continue
			}
			switch {
			case best == nil || eval.Compare(*h, *best) > 0:
				best = h
				winners = winners[:0]
				winners = append(winners, pot.Winner{PlayerID: id, Seat: g.Player(id).SeatIndex})
			case eval.Compare(*h, *best) == 0:
				winners = append(winners, pot.Winner{PlayerID: id, Seat: g.Player(id).SeatIndex})
			}
		}
		for _, payout := range pot.Distribute(pt, winners, dealerSeat) {
			g.Player(payout.PlayerID).Stack += payout.Amount
			g.Winners = append(g.Winners, Winner{
				PlayerID: payout.PlayerID,
				PotIndex: potIndex,
				Amount:   payout.Amount,
				Hand:     hands[payout.PlayerID],
			})
		}
	}
	res.HandComplete = true
}
