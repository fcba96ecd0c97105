// Package table drives hands against the store. Every operation reads the
// active hand row, applies a pure engine transition, and writes the result
// back conditionally on the version it read; a lost write retries from a
// fresh read. Each committed transition is published on the event bus and,
// when configured, mirrored to Kafka.
package table

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"math/rand/v2"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"github.com/coder/quartz"
	"github.com/google/uuid"

	"github.com/feltkit/holdemd/internal/advisor"
	"github.com/feltkit/holdemd/internal/engine"
	"github.com/feltkit/holdemd/internal/events"
	"github.com/feltkit/holdemd/internal/randutil"
	"github.com/feltkit/holdemd/internal/store"
)

const (
	// maxRetries bounds how many times a lost optimistic write is retried.
	maxRetries = 3
	// retryBudget bounds the wall time spent retrying a single operation.
	retryBudget = 200 * time.Millisecond
)

// Service owns all table operations. It is safe for concurrent use; the
// store's conditional writes are the only synchronization between instances.
type Service struct {
	store   *store.Store
	bus     *events.Bus
	tap     *events.Tap
	clock   quartz.Clock
	adv     *advisor.Advisor
	advMu   sync.Mutex
	newRNG  func() *rand.Rand
	graceMS int64
	metrics *Metrics
	logger  *log.Logger
}

// Options configures a Service. Store, Bus and Logger are required;
// everything else has a production default.
type Options struct {
	Store   *store.Store
	Bus     *events.Bus
	Tap     *events.Tap       // optional Kafka mirror, nil disables it
	Clock   quartz.Clock      // defaults to the real clock
	NewRNG  func() *rand.Rand // deck shuffling, defaults to crypto-seeded
	GraceMS int64             // slack before a turn clock may be claimed, defaults to 1000
	Metrics *Metrics          // defaults to unregistered collectors
	Logger  *log.Logger
}

// NewService wires a table service from its options.
func NewService(opts Options) *Service {
	if opts.Clock == nil {
		opts.Clock = quartz.NewReal()
	}
	if opts.NewRNG == nil {
		opts.NewRNG = randutil.NewCrypto
	}
	if opts.GraceMS == 0 {
		opts.GraceMS = 1000
	}
	if opts.Metrics == nil {
		opts.Metrics = NewMetrics(nil)
	}
	return &Service{
		store:   opts.Store,
		bus:     opts.Bus,
		tap:     opts.Tap,
		clock:   opts.Clock,
		adv:     advisor.New(opts.NewRNG()),
		newRNG:  opts.NewRNG,
		graceMS: opts.GraceMS,
		metrics: opts.Metrics,
		logger:  opts.Logger.WithPrefix("table"),
	}
}

// withRetry runs op until it returns anything but a version conflict, the
// retry count is spent, or the wall budget elapses. The op re-reads state on
// every attempt, so a retried operation always sees the winner's write.
func (s *Service) withRetry(op func() error) error {
	start := s.clock.Now()
	for attempt := 0; ; attempt++ {
		err := op()
		if !errors.Is(err, store.ErrVersionConflict) {
			return err
		}
		s.metrics.Conflicts.Inc()
		if attempt >= maxRetries || s.clock.Since(start) >= retryBudget {
			return err
		}
	}
}

// loadHand reads and decodes the active hand. A completed hand found here
// means an earlier settlement was interrupted: loadHand finishes the
// write-back and cleanup, then reports ErrNoActiveHand like any other
// between-hands read.
func (s *Service) loadHand(ctx context.Context, tableID string) (*store.HandRow, *engine.GameState, error) {
	row, err := s.store.GetActiveHand(ctx, tableID)
	if err != nil {
		return nil, nil, err
	}
	g, err := decodeState(row.State)
	if err != nil {
		return nil, nil, fmt.Errorf("decode hand %s: %w", row.HandID, err)
	}
	if g.HandComplete {
		if err := s.settle(ctx, g); err != nil {
			return nil, nil, err
		}
		return nil, nil, fmt.Errorf("table %s: %w", tableID, store.ErrNoActiveHand)
	}
	return row, g, nil
}

func decodeState(raw []byte) (*engine.GameState, error) {
	var g engine.GameState
	if err := json.Unmarshal(raw, &g); err != nil {
		return nil, err
	}
	return &g, nil
}

// buildRow projects a snapshot into its row. The turn columns clear when
// nobody is on the clock, so settled hands never look expired to the sweeper.
func buildRow(g *engine.GameState, handID string, nowMS int64) (store.HandRow, error) {
	raw, err := json.Marshal(g)
	if err != nil {
		return store.HandRow{}, fmt.Errorf("encode hand %s: %w", handID, err)
	}
	row := store.HandRow{
		TableID:    g.TableID,
		HandID:     handID,
		HandNumber: g.HandNumber,
		State:      raw,
		Version:    g.Version,
		UpdatedAt:  nowMS,
	}
	if cur := g.CurrentPlayer(); cur != nil && !g.HandComplete {
		row.TurnPlayerID = cur.ID
		row.TurnStartedAt = g.TurnStartedAt
	}
	return row, nil
}

// Deal starts the next hand from the current seat roster and returns the
// public view of the fresh state. The hand cursor advances before the row
// insert, so a lost deal race skips a hand number but never duplicates one.
func (s *Service) Deal(ctx context.Context, tableID string) (*engine.GameState, error) {
	tr, err := s.store.GetTable(ctx, tableID)
	if err != nil {
		return nil, err
	}

	// Finish any interrupted cleanup before checking for a live hand.
	if _, _, err := s.loadHand(ctx, tableID); err == nil {
		return nil, fmt.Errorf("table %s: %w", tableID, store.ErrHandInProgress)
	} else if !errors.Is(err, store.ErrNoActiveHand) {
		return nil, err
	}

	seats, err := s.store.ListSeats(ctx, tableID)
	if err != nil {
		return nil, err
	}
	seated := make([]engine.SeatedPlayer, 0, len(seats))
	for _, seat := range seats {
		seated = append(seated, engine.SeatedPlayer{
			PlayerID:   seat.UserID,
			SeatIndex:  seat.Seat,
			Stack:      seat.Stack,
			SittingOut: seat.SittingOut,
		})
	}

	g, err := engine.NewHand(engine.Config{
		TableID:       tableID,
		HandNumber:    tr.HandCounter + 1,
		SmallBlind:    tr.SmallBlind,
		BigBlind:      tr.BigBlind,
		TurnTimeoutMs: tr.TurnTimeoutMS,
	}, seated, tr.LastDealerSeat)
	if err != nil {
		return nil, err
	}

	dealerSeat := g.Players[g.DealerIndex].SeatIndex
	if err := s.store.SetHandCursor(ctx, tableID, g.HandNumber, dealerSeat); err != nil {
		return nil, err
	}

	now := s.clock.Now()
	res, err := g.Start(now, s.newRNG())
	if err != nil {
		return nil, err
	}

	g.Version = 1
	handID := uuid.NewString()
	row, err := buildRow(g, handID, now.UnixMilli())
	if err != nil {
		return nil, err
	}
	if err := s.store.InsertActiveHand(ctx, row); err != nil {
		return nil, err
	}
	s.metrics.HandsDealt.Inc()
	s.logger.Info("Hand dealt",
		"table", tableID, "hand", g.HandNumber, "players", len(g.Players), "dealerSeat", dealerSeat)

	s.publishHandStarted(g, handID, now)
	s.publishTransition(g, handID, res, now)
	if res.HandComplete {
		if err := s.settle(ctx, g); err != nil {
			s.logger.Error("Settlement after deal failed, leaving row for recovery",
				"table", tableID, "hand", g.HandNumber, "error", err)
		}
	}
	return g.Sanitize(""), nil
}

// Action applies one betting action for playerID. An empty actionID gets a
// generated one; replaying an actionID the hand has already recorded is a
// no-op success.
func (s *Service) Action(ctx context.Context, tableID, playerID string, action engine.Action, amount int64, actionID string) error {
	if actionID == "" {
		actionID = uuid.NewString()
	}
	return s.withRetry(func() error {
		row, g, err := s.loadHand(ctx, tableID)
		if err != nil {
			return err
		}

		for i := range g.ActionLog {
			if g.ActionLog[i].ActionID == actionID {
				return nil
			}
		}

		now := s.clock.Now()
		res, err := g.ProcessAction(engine.ActionInput{
			PlayerID: playerID,
			Action:   action,
			Amount:   amount,
			ActionID: actionID,
		}, now)
		if err != nil {
			return err
		}

		g.Version = row.Version + 1
		newRow, err := buildRow(g, row.HandID, now.UnixMilli())
		if err != nil {
			return err
		}
		if err := s.store.UpdateActiveHand(ctx, newRow, row.Version); err != nil {
			return err
		}
		s.metrics.Actions.WithLabelValues(res.Entry.Action.String()).Inc()
		s.logger.Debug("Action applied",
			"table", tableID, "hand", g.HandNumber, "player", playerID,
			"action", res.Entry.Action, "amount", res.Entry.Amount, "version", g.Version)

		s.publishTransition(g, row.HandID, res, now)
		if res.HandComplete {
			if err := s.settle(ctx, g); err != nil {
				s.logger.Error("Settlement failed, next reader will finish it",
					"table", tableID, "hand", g.HandNumber, "error", err)
			}
		}
		return nil
	})
}

// TimeoutResult reports what a timeout claim applied on whose behalf.
type TimeoutResult struct {
	PlayerID string
	Applied  engine.Action
}

// ClaimTimeout forces the current player's turn once their clock plus the
// service grace has run out: a free check when one is available, otherwise a
// fold. The claim is idempotent in effect; once applied, the clock belongs
// to the next player and further claims report ErrTooEarly.
func (s *Service) ClaimTimeout(ctx context.Context, tableID string) (*TimeoutResult, error) {
	var out *TimeoutResult
	err := s.withRetry(func() error {
		row, g, err := s.loadHand(ctx, tableID)
		if err != nil {
			return err
		}
		cur := g.CurrentPlayer()
		if cur == nil {
			return fmt.Errorf("table %s: %w", tableID, store.ErrNoActiveHand)
		}
		now := s.clock.Now()
		deadline := g.TurnStartedAt + g.TurnTimeoutMs + s.graceMS
		if now.UnixMilli() < deadline {
			return fmt.Errorf("turn of %s has %dms left: %w", cur.ID, deadline-now.UnixMilli(), ErrTooEarly)
		}

		input := engine.ActionInput{
			PlayerID:  cur.ID,
			Action:    engine.Fold,
			ActionID:  uuid.NewString(),
			IsTimeout: true,
		}
		if g.ValidActions().CanCheck {
			input.Action = engine.Check
		}

		res, err := g.ProcessAction(input, now)
		if err != nil {
			return err
		}

		g.Version = row.Version + 1
		newRow, err := buildRow(g, row.HandID, now.UnixMilli())
		if err != nil {
			return err
		}
		if err := s.store.UpdateActiveHand(ctx, newRow, row.Version); err != nil {
			return err
		}
		s.metrics.Timeouts.Inc()
		s.logger.Info("Turn timed out",
			"table", tableID, "hand", g.HandNumber, "player", cur.ID, "applied", res.Entry.Action)

		s.publishTransition(g, row.HandID, res, now)
		if res.HandComplete {
			if err := s.settle(ctx, g); err != nil {
				s.logger.Error("Settlement failed, next reader will finish it",
					"table", tableID, "hand", g.HandNumber, "error", err)
			}
		}
		out = &TimeoutResult{PlayerID: cur.ID, Applied: res.Entry.Action}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

// GetState returns the active hand as viewerID is allowed to see it.
func (s *Service) GetState(ctx context.Context, tableID, viewerID string) (*engine.GameState, error) {
	if _, err := s.store.GetTable(ctx, tableID); err != nil {
		return nil, err
	}
	_, g, err := s.loadHand(ctx, tableID)
	if err != nil {
		return nil, err
	}
	return g.Sanitize(viewerID), nil
}

// ValidActions returns what the current player may legally do right now.
func (s *Service) ValidActions(ctx context.Context, tableID string) (engine.ValidActions, error) {
	_, g, err := s.loadHand(ctx, tableID)
	if err != nil {
		return engine.ValidActions{}, err
	}
	return g.ValidActions(), nil
}

// Reset discards the active hand without paying anyone. Seat stacks are only
// written at settlement, so dropping the row reverts every stack to its
// hand-start value. Resetting a table with no hand is a no-op.
func (s *Service) Reset(ctx context.Context, tableID string) error {
	if _, err := s.store.GetTable(ctx, tableID); err != nil {
		return err
	}
	deleted, err := s.store.DeleteActiveHand(ctx, tableID)
	if err != nil {
		return err
	}
	if deleted {
		s.logger.Warn("Hand discarded by reset", "table", tableID)
		s.publish(events.New(events.KindTableReset, tableID, s.clock.Now(), events.TableReset{
			Reason: "operator reset",
		}))
	}
	return nil
}

// Join seats a player with a fresh buy-in. The seat must exist on the table
// and the buy-in must fall inside the table's window.
func (s *Service) Join(ctx context.Context, tableID, userID string, seat int, buyIn int64) error {
	tr, err := s.store.GetTable(ctx, tableID)
	if err != nil {
		return err
	}
	if seat < 0 || seat >= tr.MaxPlayers {
		return fmt.Errorf("seat %d on a %d-seat table: %w", seat, tr.MaxPlayers, ErrSeatOutOfRange)
	}
	if buyIn < tr.BuyInMin || buyIn > tr.BuyInMax {
		return fmt.Errorf("buy-in %d outside [%d, %d]: %w", buyIn, tr.BuyInMin, tr.BuyInMax, ErrBuyInOutOfRange)
	}
	now := s.clock.Now()
	if err := s.store.AddPlayer(ctx, store.SeatRow{
		TableID:  tableID,
		UserID:   userID,
		Seat:     seat,
		Stack:    buyIn,
		JoinedAt: now.UnixMilli(),
	}); err != nil {
		return err
	}
	s.logger.Info("Player joined", "table", tableID, "player", userID, "seat", seat, "buyIn", buyIn)
	s.publish(events.New(events.KindPlayerJoined, tableID, now, events.PlayerJoined{
		PlayerID: userID,
		Seat:     seat,
		Stack:    buyIn,
	}))
	return nil
}

// Leave removes a player between hands, or mid-hand once they have folded.
// A player who can still win the current pot must play the hand out first.
func (s *Service) Leave(ctx context.Context, tableID, userID string) error {
	_, g, err := s.loadHand(ctx, tableID)
	switch {
	case err == nil:
		if p := g.Player(userID); p != nil && p.Live() {
			return fmt.Errorf("%s is dealt into hand %d: %w", userID, g.HandNumber, ErrPlayerInHand)
		}
	case errors.Is(err, store.ErrNoActiveHand):
		// Between hands.
	default:
		return err
	}

	seat, err := s.store.RemovePlayer(ctx, tableID, userID)
	if err != nil {
		return err
	}
	s.logger.Info("Player left", "table", tableID, "player", userID, "seat", seat.Seat, "stack", seat.Stack)
	s.publish(events.New(events.KindPlayerLeft, tableID, s.clock.Now(), events.PlayerLeft{
		PlayerID: userID,
		Seat:     seat.Seat,
	}))
	return nil
}

// Suggest runs the advisor against the live hand for playerID.
func (s *Service) Suggest(ctx context.Context, tableID, playerID string) (advisor.Suggestion, error) {
	_, g, err := s.loadHand(ctx, tableID)
	if err != nil {
		return advisor.Suggestion{}, err
	}
	idx := -1
	for i := range g.Players {
		if g.Players[i].ID == playerID {
			idx = i
			break
		}
	}
	if idx == -1 {
		return advisor.Suggestion{}, fmt.Errorf("%s not in hand %d: %w", playerID, g.HandNumber, engine.ErrUnknownPlayer)
	}

	// The advisor's RNG is not safe for concurrent callers.
	s.advMu.Lock()
	defer s.advMu.Unlock()
	return s.adv.Suggest(g, idx), nil
}

// Chat publishes a table chat line on behalf of a seated player.
func (s *Service) Chat(ctx context.Context, tableID, playerID, text string) error {
	if _, err := s.store.GetSeat(ctx, tableID, playerID); err != nil {
		return err
	}
	s.publish(events.New(events.KindChatMessage, tableID, s.clock.Now(), events.ChatMessage{
		PlayerID: playerID,
		Text:     text,
	}))
	return nil
}

// settle finishes a completed hand: seat stacks first, then the row. If
// either write fails the row stays behind and the next reader finishes the
// job; both writes are idempotent, so finishing twice is harmless.
func (s *Service) settle(ctx context.Context, g *engine.GameState) error {
	stacks := make(map[string]int64, len(g.Players))
	for i := range g.Players {
		stacks[g.Players[i].ID] = g.Players[i].Stack
	}
	if err := s.store.UpdateSeatStacks(ctx, g.TableID, stacks); err != nil {
		return fmt.Errorf("write back stacks: %w", err)
	}
	deleted, err := s.store.DeleteActiveHand(ctx, g.TableID)
	if err != nil {
		return fmt.Errorf("clear settled hand: %w", err)
	}
	if deleted {
		s.metrics.HandsSettled.Inc()
		s.logger.Info("Hand settled", "table", g.TableID, "hand", g.HandNumber, "winners", len(g.Winners))
	}
	return nil
}
