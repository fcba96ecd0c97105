// Package engine implements the no-limit hold'em hand state machine: blind
// posting, betting rounds, phase advancement and showdown settlement. The
// package is pure; time and randomness are injected and all I/O lives with
// the caller, so a hand can be replayed deterministically from any snapshot.
package engine

import (
	"fmt"
	"strings"

	"github.com/feltkit/holdemd/internal/card"
	"github.com/feltkit/holdemd/internal/eval"
	"github.com/feltkit/holdemd/internal/pot"
)

// Phase represents the stage of a hand.
type Phase int

const (
	Waiting Phase = iota
	Preflop
	Flop
	Turn
	River
	Showdown
)

func (p Phase) String() string {
	if p < Waiting || p > Showdown {
		return "unknown"
	}
	return [...]string{"waiting", "preflop", "flop", "turn", "river", "showdown"}[p]
}

// MarshalText implements encoding.TextMarshaler.
func (p Phase) MarshalText() ([]byte, error) {
	return []byte(p.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (p *Phase) UnmarshalText(text []byte) error {
	for i := Waiting; i <= Showdown; i++ {
		if i.String() == string(text) {
			*p = i
			return nil
		}
	}
	return fmt.Errorf("engine: unknown phase %q", text)
}

// Action represents a player action.
type Action int

const (
	Fold Action = iota
	Check
	Call
	Bet
	Raise
	AllIn
)

func (a Action) String() string {
	if a < Fold || a > AllIn {
		return "unknown"
	}
	return [...]string{"fold", "check", "call", "bet", "raise", "allin"}[a]
}

// MarshalText implements encoding.TextMarshaler.
func (a Action) MarshalText() ([]byte, error) {
	return []byte(a.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (a *Action) UnmarshalText(text []byte) error {
	parsed, err := ParseAction(string(text))
	if err != nil {
		return err
	}
	*a = parsed
	return nil
}

// ParseAction converts a wire action name to an Action.
func ParseAction(s string) (Action, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "fold":
		return Fold, nil
	case "check":
		return Check, nil
	case "call":
		return Call, nil
	case "bet":
		return Bet, nil
	case "raise":
		return Raise, nil
	case "allin", "all_in", "all-in":
		return AllIn, nil
	default:
		return 0, fmt.Errorf("engine: unknown action %q", s)
	}
}

// SeatedPlayer is the persistent seat snapshot a hand starts from.
type SeatedPlayer struct {
	PlayerID   string
	SeatIndex  int
	Stack      int64
	SittingOut bool
}

// HandPlayer is the per-hand projection of a seated player.
type HandPlayer struct {
	ID         string      `json:"id"`
	SeatIndex  int         `json:"seatIndex"`
	Stack      int64       `json:"stack"`
	HoleCards  []card.Card `json:"holeCards,omitempty"`
	CurrentBet int64       `json:"currentBet"`
	TotalBet   int64       `json:"totalBetThisHand"`
	Folded     bool        `json:"isFolded"`
	AllIn      bool        `json:"isAllIn"`
	SittingOut bool        `json:"isSittingOut"`
	HasActed   bool        `json:"hasActed"`
}

// InHand reports whether the player was dealt into this hand.
func (p *HandPlayer) InHand() bool {
	return !p.SittingOut
}

// CanAct reports whether the player can still take a betting decision.
func (p *HandPlayer) CanAct() bool {
	return !p.SittingOut && !p.Folded && !p.AllIn && p.Stack > 0
}

// Live reports whether the player can still win a pot.
func (p *HandPlayer) Live() bool {
	return !p.SittingOut && !p.Folded
}

// Winner records one payout at hand completion. Hand is nil when the pot was
// won without a showdown.
type Winner struct {
	PlayerID string              `json:"playerId"`
	PotIndex int                 `json:"potIndex"`
	Amount   int64               `json:"amount"`
	Hand     *eval.EvaluatedHand `json:"hand,omitempty"`
}

// ActionLogEntry is one applied action, kept for the hand's audit trail and
// for idempotent replay detection.
type ActionLogEntry struct {
	ActionID  string `json:"actionId,omitempty"`
	PlayerID  string `json:"playerId"`
	Action    Action `json:"action"`
	Amount    int64  `json:"amount,omitempty"`
	Phase     Phase  `json:"phase"`
	IsTimeout bool   `json:"isTimeout,omitempty"`
	At        int64  `json:"at"`
}

// Config carries the table parameters a hand is created with.
type Config struct {
	TableID       string
	HandNumber    int64
	SmallBlind    int64
	BigBlind      int64
	TurnTimeoutMs int64
}

// GameState is the complete state of one active hand. It is the unit of
// persistence: the whole struct serializes into the active hand row and the
// row's version is carried here for optimistic concurrency.
type GameState struct {
	TableID              string           `json:"tableId"`
	HandNumber           int64            `json:"handNumber"`
	Phase                Phase            `json:"phase"`
	Players              []HandPlayer     `json:"players"`
	DealerIndex          int              `json:"dealerIndex"`
	SBIndex              int              `json:"sbIndex"`
	BBIndex              int              `json:"bbIndex"`
	CurrentIndex         int              `json:"currentPlayerIndex"`
	Deck                 []card.Card      `json:"deck,omitempty"`
	Community            []card.Card      `json:"communityCards"`
	SmallBlind           int64            `json:"smallBlind"`
	BigBlind             int64            `json:"bigBlind"`
	CurrentBet           int64            `json:"currentBet"`
	LastRaiseAmount      int64            `json:"lastRaiseAmount"`
	LastAggressorID      string           `json:"lastAggressorId,omitempty"`
	LastRaiseWasComplete bool             `json:"lastRaiseWasComplete"`
	Pots                 []pot.Pot        `json:"pots"`
	ActionLog            []ActionLogEntry `json:"actionLog"`
	TurnStartedAt        int64            `json:"turnStartedAt"`
	TurnTimeoutMs        int64            `json:"turnTimeoutMs"`
	BBHasActed           bool             `json:"bbHasActed"`
	HandComplete         bool             `json:"isHandComplete"`
	Winners              []Winner         `json:"winners,omitempty"`
	Version              int64            `json:"version"`
}

// Player returns the hand player with the given id, or nil.
func (g *GameState) Player(id string) *HandPlayer {
	for i := range g.Players {
		if g.Players[i].ID == id {
			return &g.Players[i]
		}
	}
	return nil
}

// CurrentPlayer returns the player whose turn it is, or nil.
func (g *GameState) CurrentPlayer() *HandPlayer {
	if g.CurrentIndex < 0 || g.CurrentIndex >= len(g.Players) {
		return nil
	}
	return &g.Players[g.CurrentIndex]
}

// LiveCount returns the number of players still able to win a pot.
func (g *GameState) LiveCount() int {
	n := 0
	for i := range g.Players {
		if g.Players[i].Live() {
			n++
		}
	}
	return n
}

// actorCount returns the number of players who can still take decisions.
func (g *GameState) actorCount() int {
	n := 0
	for i := range g.Players {
		if g.Players[i].CanAct() {
			n++
		}
	}
	return n
}

// TotalPot returns every chip committed to the hand so far, swept or not.
func (g *GameState) TotalPot() int64 {
	var sum int64
	for i := range g.Players {
		sum += g.Players[i].TotalBet
	}
	return sum
}

// Betting reports whether the hand currently accepts player actions.
func (g *GameState) Betting() bool {
	switch g.Phase {
	case Preflop, Flop, Turn, River:
		return !g.HandComplete
	default:
		return false
	}
}

// contributors projects the players into pot-engine inputs.
func (g *GameState) contributors() []pot.Contributor {
	cs := make([]pot.Contributor, 0, len(g.Players))
	for i := range g.Players {
		p := &g.Players[i]
		cs = append(cs, pot.Contributor{
			PlayerID: p.ID,
			Seat:     p.SeatIndex,
			Total:    p.TotalBet,
			Folded:   p.Folded || p.SittingOut,
		})
	}
	return cs
}

// Sanitize returns a deep copy safe to show the given viewer: the deck is
// stripped and hole cards are visible only to their owner until a showdown
// makes the unfolded hands public. A hand won by folding everyone out has no
// showdown and reveals nothing.
func (g *GameState) Sanitize(viewerID string) *GameState {
	out := *g
	out.Deck = nil

	shownDown := g.HandComplete && g.LiveCount() >= 2
	out.Players = make([]HandPlayer, len(g.Players))
	copy(out.Players, g.Players)
	for i := range out.Players {
		p := &out.Players[i]
		if p.ID == viewerID {
			continue
		}
		if shownDown && !p.Folded && !p.SittingOut {
			continue
		}
		p.HoleCards = nil
	}

	out.Community = append([]card.Card(nil), g.Community...)
	out.Pots = append([]pot.Pot(nil), g.Pots...)
	out.ActionLog = append([]ActionLogEntry(nil), g.ActionLog...)
	out.Winners = append([]Winner(nil), g.Winners...)
	return &out
}
