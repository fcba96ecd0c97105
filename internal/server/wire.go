package server

import (
	"errors"
	"net/http"

	"github.com/feltkit/holdemd/internal/engine"
	"github.com/feltkit/holdemd/internal/store"
	"github.com/feltkit/holdemd/internal/table"
)

// Wire error codes. Clients branch on the code; the message is for humans.
const (
	CodeUnauthorized     = "Unauthorized"
	CodeNotFound         = "NotFound"
	CodeNotEnoughPlayers = "NotEnoughPlayers"
	CodeIllegalAction    = "IllegalAction"
	CodeConflict         = "Conflict"
	CodeTooEarly         = "TooEarlyToClaimTimeout"
	CodeInvalidRequest   = "InvalidRequest"
	CodeInternal         = "Internal"
)

type apiError struct {
	Code    string `json:"code"`
	Message string `json:"message,omitempty"`
}

type errorResponse struct {
	Success bool     `json:"success"`
	Error   apiError `json:"error"`
}

type successResponse struct {
	Success bool `json:"success"`
}

type dealResponse struct {
	HandNumber  int64  `json:"handNumber"`
	DealerSeat  int    `json:"dealerSeat"`
	SBSeat      int    `json:"sbSeat"`
	BBSeat      int    `json:"bbSeat"`
	CurrentSeat int    `json:"currentSeat"`
	Pot         int64  `json:"pot"`
	Phase       string `json:"phase"`
}

type actionSpec struct {
	Type   string `json:"type"`
	Amount int64  `json:"amount,omitempty"`
}

type actionRequest struct {
	PlayerID string     `json:"playerId"`
	Action   actionSpec `json:"action"`
	ActionID string     `json:"actionId,omitempty"`
}

type timeoutResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message,omitempty"`
}

type joinRequest struct {
	PlayerID string `json:"playerId"`
	Seat     int    `json:"seat"`
	BuyIn    int64  `json:"buyIn"`
}

type leaveRequest struct {
	PlayerID string `json:"playerId"`
}

// classify maps a service error onto an HTTP status and wire error. Rule
// violations keep their message verbatim; anything unrecognized is Internal
// and the caller logs it.
func classify(err error) (int, apiError) {
	var rule *engine.RuleError
	switch {
	case errors.Is(err, errInvalidRequest):
		return http.StatusBadRequest, apiError{Code: CodeInvalidRequest, Message: err.Error()}
	case errors.As(err, &rule):
		return http.StatusConflict, apiError{Code: CodeIllegalAction, Message: rule.Reason}
	case errors.Is(err, engine.ErrUnknownPlayer):
		return http.StatusUnauthorized, apiError{Code: CodeUnauthorized, Message: "player is not in this hand"}
	case errors.Is(err, engine.ErrNotEnoughPlayers):
		return http.StatusConflict, apiError{Code: CodeNotEnoughPlayers, Message: "need at least two players with chips"}
	case errors.Is(err, engine.ErrHandComplete):
		return http.StatusConflict, apiError{Code: CodeIllegalAction, Message: "hand is complete"}
	case errors.Is(err, store.ErrHandInProgress):
		return http.StatusConflict, apiError{Code: CodeIllegalAction, Message: "a hand is already in progress"}
	case errors.Is(err, store.ErrSeatTaken):
		return http.StatusConflict, apiError{Code: CodeIllegalAction, Message: "seat is taken"}
	case errors.Is(err, store.ErrAlreadySeated):
		return http.StatusConflict, apiError{Code: CodeIllegalAction, Message: "player is already seated at this table"}
	case errors.Is(err, store.ErrVersionConflict):
		return http.StatusConflict, apiError{Code: CodeConflict, Message: "lost a concurrent update, retry"}
	case errors.Is(err, table.ErrPlayerInHand):
		return http.StatusConflict, apiError{Code: CodeIllegalAction, Message: "player is dealt into the current hand"}
	case errors.Is(err, table.ErrTooEarly):
		return http.StatusConflict, apiError{Code: CodeTooEarly, Message: "turn clock has not expired"}
	case errors.Is(err, table.ErrSeatOutOfRange):
		return http.StatusBadRequest, apiError{Code: CodeInvalidRequest, Message: "seat out of range"}
	case errors.Is(err, table.ErrBuyInOutOfRange):
		return http.StatusBadRequest, apiError{Code: CodeInvalidRequest, Message: "buy-in out of range"}
	case errors.Is(err, store.ErrNoActiveHand):
		return http.StatusNotFound, apiError{Code: CodeNotFound, Message: "no active hand"}
	case errors.Is(err, store.ErrNotFound):
		return http.StatusNotFound, apiError{Code: CodeNotFound, Message: "not found"}
	default:
		return http.StatusInternalServerError, apiError{Code: CodeInternal, Message: "internal error"}
	}
}
