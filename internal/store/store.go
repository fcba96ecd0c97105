// Package store persists tables, seats, and active hands in SQL. It speaks
// both sqlite and postgres through database/sql: queries are written with ?
// placeholders and rebound for postgres, and schema types stay within what
// the two dialects share.
package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/lib/pq"
	"github.com/mattn/go-sqlite3"
)

const (
	driverSQLite   = "sqlite3"
	driverPostgres = "postgres"
)

var (
	// ErrNotFound is returned when a table or seat does not exist.
	ErrNotFound = errors.New("store: not found")

	// ErrNoActiveHand is returned when a table has no hand in flight.
	ErrNoActiveHand = errors.New("store: no active hand")

	// ErrHandInProgress is returned when inserting a hand for a table that
	// already has one.
	ErrHandInProgress = errors.New("store: hand already in progress")

	// ErrSeatTaken is returned when the requested seat is occupied.
	ErrSeatTaken = errors.New("store: seat taken")

	// ErrAlreadySeated is returned when the player already has a seat at
	// the table.
	ErrAlreadySeated = errors.New("store: player already seated")

	// ErrVersionConflict is returned when a conditional write matched no
	// row: somebody else advanced the hand first.
	ErrVersionConflict = errors.New("store: version conflict")
)

// Store wraps the SQL connection for one backend.
type Store struct {
	db     *sql.DB
	driver string
}

// Open connects to the backend. An empty driver is inferred from the DSN:
// postgres URLs and keyword DSNs go to lib/pq, everything else is treated
// as a sqlite path.
func Open(driver, dsn string) (*Store, error) {
	if driver == "" {
		driver = inferDriver(dsn)
	}
	db, err := sql.Open(driver, dsn)
	if err != nil {
		return nil, fmt.Errorf("open %s store: %w", driver, err)
	}
	if driver == driverSQLite {
		// One connection keeps writers serialized and makes :memory:
		// databases behave as a single database.
		db.SetMaxOpenConns(1)
	}
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping %s store: %w", driver, err)
	}
	return &Store{db: db, driver: driver}, nil
}

func inferDriver(dsn string) string {
	if strings.HasPrefix(dsn, "postgres://") ||
		strings.HasPrefix(dsn, "postgresql://") ||
		strings.Contains(dsn, "host=") {
		return driverPostgres
	}
	return driverSQLite
}

// Close closes the underlying connection pool.
func (s *Store) Close() error {
	return s.db.Close()
}

// Migrate creates the schema when missing. Safe to run on every start.
func (s *Store) Migrate(ctx context.Context) error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS tables (
			id               TEXT PRIMARY KEY,
			small_blind      BIGINT NOT NULL,
			big_blind        BIGINT NOT NULL,
			max_players      INTEGER NOT NULL,
			buy_in_min       BIGINT NOT NULL,
			buy_in_max       BIGINT NOT NULL,
			turn_timeout_ms  BIGINT NOT NULL,
			private          BOOLEAN NOT NULL DEFAULT FALSE,
			invite_code      TEXT NOT NULL DEFAULT '',
			hand_counter     BIGINT NOT NULL DEFAULT 0,
			last_dealer_seat INTEGER NOT NULL DEFAULT -1
		)`,
		`CREATE TABLE IF NOT EXISTS table_players (
			table_id    TEXT NOT NULL,
			user_id     TEXT NOT NULL,
			seat        INTEGER NOT NULL,
			stack       BIGINT NOT NULL,
			sitting_out BOOLEAN NOT NULL DEFAULT FALSE,
			joined_at   BIGINT NOT NULL,
			PRIMARY KEY (table_id, user_id),
			UNIQUE (table_id, seat)
		)`,
		`CREATE TABLE IF NOT EXISTS active_hands (
			table_id        TEXT PRIMARY KEY,
			hand_id         TEXT NOT NULL,
			hand_number     BIGINT NOT NULL,
			state           TEXT NOT NULL,
			version         BIGINT NOT NULL,
			turn_player_id  TEXT NOT NULL DEFAULT '',
			turn_started_at BIGINT NOT NULL DEFAULT 0,
			updated_at      BIGINT NOT NULL
		)`,
	}
	for _, stmt := range stmts {
		if _, err := s.db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("migrate: %w", err)
		}
	}
	return nil
}

// rebind rewrites ? placeholders to $n for postgres.
func (s *Store) rebind(query string) string {
	if s.driver != driverPostgres {
		return query
	}
	var b strings.Builder
	b.Grow(len(query) + 8)
	n := 0
	for i := 0; i < len(query); i++ {
		if query[i] == '?' {
			n++
			b.WriteByte('$')
			b.WriteString(strconv.Itoa(n))
			continue
		}
		b.WriteByte(query[i])
	}
	return b.String()
}

// isUniqueViolation reports whether err is a unique or primary key
// constraint failure on either backend.
func isUniqueViolation(err error) bool {
	var sqliteErr sqlite3.Error
	if errors.As(err, &sqliteErr) {
		return sqliteErr.ExtendedCode == sqlite3.ErrConstraintUnique ||
			sqliteErr.ExtendedCode == sqlite3.ErrConstraintPrimaryKey
	}
	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		return pqErr.Code == "23505"
	}
	return false
}

// seatConflict narrows a unique violation on table_players to the seat or
// the player constraint. Both backends name the offending columns or
// constraint in the error.
func seatConflict(err error) error {
	msg := err.Error()
	var pqErr *pq.Error
	if errors.As(err, &pqErr) && pqErr.Constraint != "" {
		msg = pqErr.Constraint
	}
	if strings.Contains(msg, "seat") {
		return ErrSeatTaken
	}
	return ErrAlreadySeated
}
