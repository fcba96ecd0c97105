package engine

import (
	"errors"
	"fmt"
)

var (
	// ErrNotEnoughPlayers is returned when fewer than two players can be
	// dealt into a hand.
	ErrNotEnoughPlayers = errors.New("engine: not enough players with chips")

	// ErrHandComplete is returned for actions against a finished hand.
	ErrHandComplete = errors.New("engine: hand is complete")

	// ErrUnknownPlayer is returned when the acting player is not in the hand.
	ErrUnknownPlayer = errors.New("engine: player not in hand")
)

// RuleError rejects an action that violates the betting rules. The reason is
// meant for the acting player, verbatim.
type RuleError struct {
	Reason string
}

func (e *RuleError) Error() string {
	return "engine: " + e.Reason
}

func ruleErrorf(format string, args ...any) *RuleError {
	return &RuleError{Reason: fmt.Sprintf(format, args...)}
}
