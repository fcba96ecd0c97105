package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
)

// TableRow is one hosted table's persistent settings and hand cursor.
type TableRow struct {
	ID             string
	SmallBlind     int64
	BigBlind       int64
	MaxPlayers     int
	BuyInMin       int64
	BuyInMax       int64
	TurnTimeoutMS  int64
	Private        bool
	InviteCode     string
	HandCounter    int64
	LastDealerSeat int
}

// EnsureTable writes a table's settings, creating the row when missing.
// The hand cursor (hand_counter, last_dealer_seat) is never touched so
// re-running configuration does not disturb hand numbering or rotation.
func (s *Store) EnsureTable(ctx context.Context, t TableRow) error {
	_, err := s.db.ExecContext(ctx, s.rebind(`
		INSERT INTO tables (id, small_blind, big_blind, max_players,
			buy_in_min, buy_in_max, turn_timeout_ms, private, invite_code)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			small_blind     = excluded.small_blind,
			big_blind       = excluded.big_blind,
			max_players     = excluded.max_players,
			buy_in_min      = excluded.buy_in_min,
			buy_in_max      = excluded.buy_in_max,
			turn_timeout_ms = excluded.turn_timeout_ms,
			private         = excluded.private,
			invite_code     = excluded.invite_code`),
		t.ID, t.SmallBlind, t.BigBlind, t.MaxPlayers,
		t.BuyInMin, t.BuyInMax, t.TurnTimeoutMS, t.Private, t.InviteCode)
	if err != nil {
		return fmt.Errorf("ensure table %s: %w", t.ID, err)
	}
	return nil
}

// GetTable loads one table. Returns ErrNotFound for unknown ids.
func (s *Store) GetTable(ctx context.Context, tableID string) (*TableRow, error) {
	var t TableRow
	err := s.db.QueryRowContext(ctx, s.rebind(`
		SELECT id, small_blind, big_blind, max_players, buy_in_min, buy_in_max,
			turn_timeout_ms, private, invite_code, hand_counter, last_dealer_seat
		FROM tables WHERE id = ?`), tableID).
		Scan(&t.ID, &t.SmallBlind, &t.BigBlind, &t.MaxPlayers, &t.BuyInMin,
			&t.BuyInMax, &t.TurnTimeoutMS, &t.Private, &t.InviteCode,
			&t.HandCounter, &t.LastDealerSeat)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("table %s: %w", tableID, ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("get table %s: %w", tableID, err)
	}
	return &t, nil
}

// SetHandCursor records the number and dealer seat of the most recently
// dealt hand.
func (s *Store) SetHandCursor(ctx context.Context, tableID string, handCounter int64, dealerSeat int) error {
	res, err := s.db.ExecContext(ctx, s.rebind(`
		UPDATE tables SET hand_counter = ?, last_dealer_seat = ? WHERE id = ?`),
		handCounter, dealerSeat, tableID)
	if err != nil {
		return fmt.Errorf("set hand cursor %s: %w", tableID, err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("table %s: %w", tableID, ErrNotFound)
	}
	return nil
}
