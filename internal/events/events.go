// Package events carries table notifications from the hand pipeline to
// subscribers. Every externally visible change produces one Event on the
// table's topic; ordering within a table follows (handNumber, version).
package events

import (
	"time"

	"github.com/google/uuid"
)

// Kind identifies the type of event.
type Kind string

const (
	KindPlayerJoined  Kind = "playerJoined"
	KindPlayerLeft    Kind = "playerLeft"
	KindHandStarted   Kind = "handStarted"
	KindCardsDealt    Kind = "cardsDealt"
	KindPlayerAction  Kind = "playerAction"
	KindPhaseChanged  Kind = "phaseChanged"
	KindPlayerTimeout Kind = "playerTimeout"
	KindHandComplete  Kind = "handComplete"
	KindTableReset    Kind = "tableReset"
	KindChatMessage   Kind = "chatMessage"
)

// Event is the envelope every notification travels in. To addresses an
// event to a single player; an empty To means broadcast. HandNumber and
// Version are zero for events outside a hand (joins, leaves, chat).
type Event struct {
	ID         string `json:"id"`
	Kind       Kind   `json:"kind"`
	TableID    string `json:"tableId"`
	HandNumber int64  `json:"handNumber,omitempty"`
	Version    int64  `json:"version,omitempty"`
	At         int64  `json:"at"` // unix milliseconds
	To         string `json:"to,omitempty"`
	Payload    any    `json:"payload,omitempty"`
}

// New builds a broadcast event with a fresh id.
func New(kind Kind, tableID string, at time.Time, payload any) Event {
	return Event{
		ID:      uuid.NewString(),
		Kind:    kind,
		TableID: tableID,
		At:      at.UnixMilli(),
		Payload: payload,
	}
}

// ForHand stamps the event with its position in a hand's history.
func (e Event) ForHand(handNumber, version int64) Event {
	e.HandNumber = handNumber
	e.Version = version
	return e
}

// PrivateTo addresses the event to a single player. Private events never
// reach other subscribers or the Kafka tap.
func (e Event) PrivateTo(playerID string) Event {
	e.To = playerID
	return e
}

// IsPrivate reports whether the event is addressed to a single player.
func (e Event) IsPrivate() bool { return e.To != "" }

// Topic returns the subscription topic for a table.
func Topic(tableID string) string { return "table:" + tableID }

// SeatState describes one occupied seat when a hand starts.
type SeatState struct {
	PlayerID string `json:"playerId"`
	Seat     int    `json:"seat"`
	Stack    int64  `json:"stack"`
}

// HandStarted announces a freshly dealt hand.
type HandStarted struct {
	HandID      string      `json:"handId"`
	HandNumber  int64       `json:"handNumber"`
	DealerSeat  int         `json:"dealerSeat"`
	SBSeat      int         `json:"sbSeat"`
	BBSeat      int         `json:"bbSeat"`
	CurrentSeat int         `json:"currentSeat"`
	SmallBlind  int64       `json:"smallBlind"`
	BigBlind    int64       `json:"bigBlind"`
	Pot         int64       `json:"pot"`
	Players     []SeatState `json:"players"`
}

// CardsDealt carries one player's hole cards. Always sent PrivateTo the
// player; hole cards are otherwise revealed only at showdown.
type CardsDealt struct {
	PlayerID string   `json:"playerId"`
	Seat     int      `json:"seat"`
	Cards    []string `json:"cards"`
}

// PlayerAction reports a processed betting action. Actions forced by a turn
// clock expiry appear here too, flagged with IsTimeout, so the action stream
// alone replays the hand.
type PlayerAction struct {
	PlayerID  string `json:"playerId"`
	Seat      int    `json:"seat"`
	Action    string `json:"action"`
	Amount    int64  `json:"amount,omitempty"`
	Pot       int64  `json:"pot"`
	Phase     string `json:"phase"`
	IsTimeout bool   `json:"isTimeout,omitempty"`
}

// PhaseChanged reports a street advance and the community cards now showing.
type PhaseChanged struct {
	Phase       string   `json:"phase"`
	Community   []string `json:"community"`
	Pot         int64    `json:"pot"`
	CurrentSeat int      `json:"currentSeat"`
}

// PlayerTimeout reports a turn clock expiry. It follows the PlayerAction
// event that carried the check or fold applied for the absent player.
type PlayerTimeout struct {
	PlayerID string `json:"playerId"`
	Seat     int    `json:"seat"`
	Applied  string `json:"applied"` // check or fold
}

// Payout is one player's share of one pot.
type Payout struct {
	PlayerID string `json:"playerId"`
	Seat     int    `json:"seat"`
	Amount   int64  `json:"amount"`
	PotIndex int    `json:"potIndex"`
	Hand     string `json:"hand,omitempty"`
}

// Reveal is one unfolded player's showdown hand.
type Reveal struct {
	PlayerID string   `json:"playerId"`
	Seat     int      `json:"seat"`
	Cards    []string `json:"cards"`
	Hand     string   `json:"hand,omitempty"`
}

// HandComplete carries the final board, payouts, and showdown reveals.
// Folded players' hole cards are never included.
type HandComplete struct {
	HandID   string   `json:"handId"`
	Board    []string `json:"board"`
	Payouts  []Payout `json:"payouts"`
	Showdown []Reveal `json:"showdown,omitempty"`
}

// PlayerJoined announces a player taking a seat.
type PlayerJoined struct {
	PlayerID string `json:"playerId"`
	Seat     int    `json:"seat"`
	Stack    int64  `json:"stack"`
}

// PlayerLeft announces a player giving up a seat.
type PlayerLeft struct {
	PlayerID string `json:"playerId"`
	Seat     int    `json:"seat"`
}

// TableReset announces that any in-flight hand was discarded.
type TableReset struct {
	Reason string `json:"reason,omitempty"`
}

// ChatMessage relays one player's table chat line.
type ChatMessage struct {
	PlayerID string `json:"playerId"`
	Text     string `json:"text"`
}
