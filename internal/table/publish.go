package table

import (
	"time"

	"github.com/feltkit/holdemd/internal/card"
	"github.com/feltkit/holdemd/internal/engine"
	"github.com/feltkit/holdemd/internal/eval"
	"github.com/feltkit/holdemd/internal/events"
)

// publish fans an event out to the in-process bus and, when configured, the
// Kafka tap. Both sinks are fire-and-forget; delivery never blocks the hand.
func (s *Service) publish(ev events.Event) {
	s.bus.Publish(ev)
	s.tap.Publish(ev)
}

// publishHandStarted announces a fresh hand and follows it with one private
// cardsDealt event per dealt-in player.
func (s *Service) publishHandStarted(g *engine.GameState, handID string, now time.Time) {
	seats := make([]events.SeatState, 0, len(g.Players))
	for i := range g.Players {
		p := &g.Players[i]
		if !p.InHand() {
			continue
		}
		seats = append(seats, events.SeatState{PlayerID: p.ID, Seat: p.SeatIndex, Stack: p.Stack})
	}
	cur := -1
	if c := g.CurrentPlayer(); c != nil {
		cur = c.SeatIndex
	}
	s.publish(events.New(events.KindHandStarted, g.TableID, now, events.HandStarted{
		HandID:      handID,
		HandNumber:  g.HandNumber,
		DealerSeat:  g.Players[g.DealerIndex].SeatIndex,
		SBSeat:      g.Players[g.SBIndex].SeatIndex,
		BBSeat:      g.Players[g.BBIndex].SeatIndex,
		CurrentSeat: cur,
		SmallBlind:  g.SmallBlind,
		BigBlind:    g.BigBlind,
		Pot:         g.TotalPot(),
		Players:     seats,
	}).ForHand(g.HandNumber, g.Version))

	for i := range g.Players {
		p := &g.Players[i]
		if len(p.HoleCards) == 0 {
			continue
		}
		s.publish(events.New(events.KindCardsDealt, g.TableID, now, events.CardsDealt{
			PlayerID: p.ID,
			Seat:     p.SeatIndex,
			Cards:    cardStrings(p.HoleCards),
		}).ForHand(g.HandNumber, g.Version).PrivateTo(p.ID))
	}
}

// publishTransition turns one committed engine transition into its event
// fan-out: the applied action, any street changes, and the completion
// summary. A timeout claim publishes its forced action on the normal action
// stream, flagged, then marks the expiry with a separate playerTimeout event.
// Every event carries the version the write landed at.
func (s *Service) publishTransition(g *engine.GameState, handID string, res *engine.Result, now time.Time) {
	if res.Entry.PlayerID != "" {
		seat := g.Player(res.Entry.PlayerID).SeatIndex
		s.publish(events.New(events.KindPlayerAction, g.TableID, now, events.PlayerAction{
			PlayerID:  res.Entry.PlayerID,
			Seat:      seat,
			Action:    res.Entry.Action.String(),
			Amount:    res.Entry.Amount,
			Pot:       g.TotalPot(),
			Phase:     res.Entry.Phase.String(),
			IsTimeout: res.Entry.IsTimeout,
		}).ForHand(g.HandNumber, g.Version))
		if res.Entry.IsTimeout {
			s.publish(events.New(events.KindPlayerTimeout, g.TableID, now, events.PlayerTimeout{
				PlayerID: res.Entry.PlayerID,
				Seat:     seat,
				Applied:  res.Entry.Action.String(),
			}).ForHand(g.HandNumber, g.Version))
		}
	}

	for i, pc := range res.PhaseChanges {
		// Only the street the hand actually stopped on has a player to
		// act; earlier entries are part of an all-in run-out.
		cur := -1
		if i == len(res.PhaseChanges)-1 && !g.HandComplete {
			if c := g.CurrentPlayer(); c != nil {
				cur = c.SeatIndex
			}
		}
		s.publish(events.New(events.KindPhaseChanged, g.TableID, now, events.PhaseChanged{
			Phase:       pc.Phase.String(),
			Community:   cardStrings(pc.Community),
			Pot:         g.TotalPot(),
			CurrentSeat: cur,
		}).ForHand(g.HandNumber, g.Version))
	}

	if res.HandComplete {
		s.publish(events.New(events.KindHandComplete, g.TableID, now, events.HandComplete{
			HandID:   handID,
			Board:    cardStrings(g.Community),
			Payouts:  payouts(g),
			Showdown: showdown(g),
		}).ForHand(g.HandNumber, g.Version))
	}
}

func payouts(g *engine.GameState) []events.Payout {
	out := make([]events.Payout, 0, len(g.Winners))
	for _, w := range g.Winners {
		p := events.Payout{
			PlayerID: w.PlayerID,
			Seat:     g.Player(w.PlayerID).SeatIndex,
			Amount:   w.Amount,
			PotIndex: w.PotIndex,
		}
		if w.Hand != nil {
			p.Hand = w.Hand.Description
		}
		out = append(out, p)
	}
	return out
}

// showdown lists the hole cards every live player must table. A hand won by
// folding everyone out has nothing to reveal.
func showdown(g *engine.GameState) []events.Reveal {
	if g.LiveCount() < 2 {
		return nil
	}
	var out []events.Reveal
	for i := range g.Players {
		p := &g.Players[i]
		if !p.Live() || len(p.HoleCards) == 0 {
			continue
		}
		r := events.Reveal{PlayerID: p.ID, Seat: p.SeatIndex, Cards: cardStrings(p.HoleCards)}
		all := append(append([]card.Card{}, p.HoleCards...), g.Community...)
		if h, err := eval.Evaluate(all); err == nil {
			r.Hand = h.Description
		}
		out = append(out, r)
	}
	return out
}

func cardStrings(cs []card.Card) []string {
	out := make([]string, len(cs))
	for i, c := range cs {
		out[i] = c.String()
	}
	return out
}
