package table

import (
	"context"
	"errors"
	"time"

	"github.com/feltkit/holdemd/internal/store"
)

// RunSweeper claims expired turn clocks on a fixed interval so stalled hands
// make progress without any client driving them. It blocks until ctx is
// canceled and returns nil on a clean shutdown.
func (s *Service) RunSweeper(ctx context.Context, interval time.Duration) error {
	s.logger.Info("Sweeper running", "interval", interval)
	ticker := s.clock.TickerFunc(ctx, interval, func() error {
		s.sweep(ctx)
		return nil
	}, "sweeper")
	err := ticker.Wait()
	if errors.Is(err, context.Canceled) {
		return nil
	}
	return err
}

// sweep claims every turn the store reports expired. Losing a claim to a
// player's own action or to another sweeper is the normal case, not an error.
func (s *Service) sweep(ctx context.Context) {
	ids, err := s.store.ListExpiredTurns(ctx, s.clock.Now().UnixMilli(), s.graceMS)
	if err != nil {
		s.logger.Error("Failed to scan for expired turns", "error", err)
		return
	}
	for _, tableID := range ids {
		res, err := s.ClaimTimeout(ctx, tableID)
		switch {
		case err == nil:
			s.logger.Info("Swept expired turn", "table", tableID, "player", res.PlayerID, "applied", res.Applied)
		case errors.Is(err, ErrTooEarly), errors.Is(err, store.ErrNoActiveHand):
			// Somebody acted between the scan and the claim.
		default:
			s.logger.Warn("Timeout claim failed", "table", tableID, "error", err)
		}
	}
}
