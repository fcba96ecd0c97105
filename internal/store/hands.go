package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
)

// HandRow is one table's active hand: the serialized GameState snapshot
// plus the columns the sweeper and conditional writes key on. Version
// mirrors the version inside the snapshot.
type HandRow struct {
	TableID       string
	HandID        string
	HandNumber    int64
	State         []byte
	Version       int64
	TurnPlayerID  string
	TurnStartedAt int64
	UpdatedAt     int64
}

// GetActiveHand loads a table's hand in flight. Returns ErrNoActiveHand
// when the table is between hands.
func (s *Store) GetActiveHand(ctx context.Context, tableID string) (*HandRow, error) {
	var h HandRow
	err := s.db.QueryRowContext(ctx, s.rebind(`
		SELECT table_id, hand_id, hand_number, state, version,
			turn_player_id, turn_started_at, updated_at
		FROM active_hands WHERE table_id = ?`), tableID).
		Scan(&h.TableID, &h.HandID, &h.HandNumber, &h.State, &h.Version,
			&h.TurnPlayerID, &h.TurnStartedAt, &h.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("table %s: %w", tableID, ErrNoActiveHand)
	}
	if err != nil {
		return nil, fmt.Errorf("get active hand %s: %w", tableID, err)
	}
	return &h, nil
}

// InsertActiveHand creates the hand row. Returns ErrHandInProgress when the
// table already has one: the insert is the serialization point between
// concurrent deals.
func (s *Store) InsertActiveHand(ctx context.Context, h HandRow) error {
	_, err := s.db.ExecContext(ctx, s.rebind(`
		INSERT INTO active_hands (table_id, hand_id, hand_number, state, version,
			turn_player_id, turn_started_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)`),
		h.TableID, h.HandID, h.HandNumber, h.State, h.Version,
		h.TurnPlayerID, h.TurnStartedAt, h.UpdatedAt)
	if err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("table %s: %w", h.TableID, ErrHandInProgress)
		}
		return fmt.Errorf("insert active hand %s: %w", h.TableID, err)
	}
	return nil
}

// UpdateActiveHand writes a new snapshot conditional on the version it was
// derived from. Zero rows matched means another writer advanced the hand:
// ErrVersionConflict, retry from a fresh read.
func (s *Store) UpdateActiveHand(ctx context.Context, h HandRow, expectVersion int64) error {
	res, err := s.db.ExecContext(ctx, s.rebind(`
		UPDATE active_hands
		SET state = ?, version = version + 1, turn_player_id = ?,
			turn_started_at = ?, updated_at = ?
		WHERE table_id = ? AND version = ?`),
		h.State, h.TurnPlayerID, h.TurnStartedAt, h.UpdatedAt,
		h.TableID, expectVersion)
	if err != nil {
		return fmt.Errorf("update active hand %s: %w", h.TableID, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("update active hand %s: %w", h.TableID, err)
	}
	if n == 0 {
		return fmt.Errorf("table %s at version %d: %w", h.TableID, expectVersion, ErrVersionConflict)
	}
	return nil
}

// DeleteActiveHand removes the hand row, reporting whether a row was
// deleted. Deleting an already-cleaned table is not an error so settlement
// cleanup stays idempotent.
func (s *Store) DeleteActiveHand(ctx context.Context, tableID string) (bool, error) {
	res, err := s.db.ExecContext(ctx, s.rebind(`
		DELETE FROM active_hands WHERE table_id = ?`), tableID)
	if err != nil {
		return false, fmt.Errorf("delete active hand %s: %w", tableID, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("delete active hand %s: %w", tableID, err)
	}
	return n > 0, nil
}

// ListExpiredTurns returns the tables whose turn clock ran out before
// nowMS, with graceMS of slack on top of each table's configured timeout.
func (s *Store) ListExpiredTurns(ctx context.Context, nowMS, graceMS int64) ([]string, error) {
	rows, err := s.db.QueryContext(ctx, s.rebind(`
		SELECT a.table_id
		FROM active_hands a
		JOIN tables t ON t.id = a.table_id
		WHERE a.turn_started_at > 0
			AND a.turn_started_at + t.turn_timeout_ms + ? <= ?
		ORDER BY a.table_id`), graceMS, nowMS)
	if err != nil {
		return nil, fmt.Errorf("list expired turns: %w", err)
	}
	defer rows.Close()

	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("scan expired turn: %w", err)
		}
		ids = append(ids, id)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list expired turns: %w", err)
	}
	return ids, nil
}
