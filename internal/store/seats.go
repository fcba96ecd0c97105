package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
)

// SeatRow is one player's seat at a table. Stack is the chips the player
// has between hands; during a hand the active hand snapshot is
// authoritative and the seat is rewritten when the hand settles.
type SeatRow struct {
	TableID    string
	UserID     string
	Seat       int
	Stack      int64
	SittingOut bool
	JoinedAt   int64
}

// AddPlayer seats a player. Returns ErrSeatTaken when the seat is occupied
// and ErrAlreadySeated when the player already sits at this table.
func (s *Store) AddPlayer(ctx context.Context, seat SeatRow) error {
	_, err := s.db.ExecContext(ctx, s.rebind(`
		INSERT INTO table_players (table_id, user_id, seat, stack, sitting_out, joined_at)
		VALUES (?, ?, ?, ?, ?, ?)`),
		seat.TableID, seat.UserID, seat.Seat, seat.Stack, seat.SittingOut, seat.JoinedAt)
	if err != nil {
		if isUniqueViolation(err) {
			return seatConflict(err)
		}
		return fmt.Errorf("add player %s: %w", seat.UserID, err)
	}
	return nil
}

// GetSeat loads one player's seat. Returns ErrNotFound when the player is
// not seated at the table.
func (s *Store) GetSeat(ctx context.Context, tableID, userID string) (*SeatRow, error) {
	var seat SeatRow
	err := s.db.QueryRowContext(ctx, s.rebind(`
		SELECT table_id, user_id, seat, stack, sitting_out, joined_at
		FROM table_players WHERE table_id = ? AND user_id = ?`), tableID, userID).
		Scan(&seat.TableID, &seat.UserID, &seat.Seat, &seat.Stack, &seat.SittingOut, &seat.JoinedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("seat of %s at %s: %w", userID, tableID, ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("get seat of %s at %s: %w", userID, tableID, err)
	}
	return &seat, nil
}

// ListSeats returns a table's seats in seat order.
func (s *Store) ListSeats(ctx context.Context, tableID string) ([]SeatRow, error) {
	rows, err := s.db.QueryContext(ctx, s.rebind(`
		SELECT table_id, user_id, seat, stack, sitting_out, joined_at
		FROM table_players WHERE table_id = ? ORDER BY seat`), tableID)
	if err != nil {
		return nil, fmt.Errorf("list seats %s: %w", tableID, err)
	}
	defer rows.Close()

	var seats []SeatRow
	for rows.Next() {
		var seat SeatRow
		if err := rows.Scan(&seat.TableID, &seat.UserID, &seat.Seat, &seat.Stack,
			&seat.SittingOut, &seat.JoinedAt); err != nil {
			return nil, fmt.Errorf("scan seat: %w", err)
		}
		seats = append(seats, seat)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list seats %s: %w", tableID, err)
	}
	return seats, nil
}

// RemovePlayer deletes a player's seat and returns it as it was. Returns
// ErrNotFound when the player is not seated.
func (s *Store) RemovePlayer(ctx context.Context, tableID, userID string) (*SeatRow, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("remove player %s: %w", userID, err)
	}
	defer tx.Rollback()

	var seat SeatRow
	err = tx.QueryRowContext(ctx, s.rebind(`
		SELECT table_id, user_id, seat, stack, sitting_out, joined_at
		FROM table_players WHERE table_id = ? AND user_id = ?`), tableID, userID).
		Scan(&seat.TableID, &seat.UserID, &seat.Seat, &seat.Stack, &seat.SittingOut, &seat.JoinedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("seat of %s at %s: %w", userID, tableID, ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("remove player %s: %w", userID, err)
	}

	if _, err := tx.ExecContext(ctx, s.rebind(`
		DELETE FROM table_players WHERE table_id = ? AND user_id = ?`), tableID, userID); err != nil {
		return nil, fmt.Errorf("remove player %s: %w", userID, err)
	}
	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("remove player %s: %w", userID, err)
	}
	return &seat, nil
}

// UpdateSeatStacks writes hand-settlement stacks back to the seats. Players
// who left mid-hand are skipped: their rows are gone and their chips went
// with them.
func (s *Store) UpdateSeatStacks(ctx context.Context, tableID string, stacks map[string]int64) error {
	if len(stacks) == 0 {
		return nil
	}
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("update stacks %s: %w", tableID, err)
	}
	defer tx.Rollback()

	for userID, stack := range stacks {
		if _, err := tx.ExecContext(ctx, s.rebind(`
			UPDATE table_players SET stack = ? WHERE table_id = ? AND user_id = ?`),
			stack, tableID, userID); err != nil {
			return fmt.Errorf("update stack of %s: %w", userID, err)
		}
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("update stacks %s: %w", tableID, err)
	}
	return nil
}
