package table

import "errors"

var (
	// ErrTooEarly rejects a timeout claim while the turn clock, plus
	// grace, is still running.
	ErrTooEarly = errors.New("table: too early to claim timeout")

	// ErrSeatOutOfRange rejects a join to a seat the table does not have.
	ErrSeatOutOfRange = errors.New("table: seat out of range")

	// ErrBuyInOutOfRange rejects a join outside the table's buy-in window.
	ErrBuyInOutOfRange = errors.New("table: buy-in out of range")

	// ErrPlayerInHand rejects leaving while the player can still win the
	// pot of the current hand.
	ErrPlayerInHand = errors.New("table: player is dealt into the current hand")
)
