// Package ledger keeps a SQLite history of completed spins.
package ledger

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	_ "modernc.org/sqlite"
)

// Entry is one completed spin.
type Entry struct {
	ID        uuid.UUID
	WheelID   uuid.UUID
	Round     int
	Spin      int // 1-based spin number across the session
	Index     int // winning segment index at the time of the spin
	Segment   string
	Name      string
	Prize     int
	Speed     float64 // initial speed in deg/s
	Rotation  float64 // settled rotation
	Money     int     // player money after the prize was credited
	CreatedAt time.Time
}

// SegmentTally aggregates the spins that landed on one segment name.
type SegmentTally struct {
	Name  string
	Hits  int
	Prize int
}

// Summary aggregates the whole ledger.
type Summary struct {
	Spins        int
	TotalPrize   int
	AveragePrize decimal.Decimal
	Segments     []SegmentTally // most hits first
}

// Ledger is a SQLite-backed spin history.
type Ledger struct {
	db *sql.DB
}

// Open opens (or creates) the ledger database at path.
// Use ":memory:" for a throwaway ledger.
func Open(path string) (*Ledger, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open ledger: %w", err)
	}
	// A single connection keeps ":memory:" databases shared between calls.
	db.SetMaxOpenConns(1)

	if path != ":memory:" {
		if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
			db.Close()
			return nil, fmt.Errorf("failed to enable WAL mode: %w", err)
		}
	}

	return &Ledger{db: db}, nil
}

// Close closes the database connection.
func (l *Ledger) Close() error {
	return l.db.Close()
}

// Migrate creates the ledger schema if it does not exist.
func (l *Ledger) Migrate(ctx context.Context) error {
	migrations := []string{
		`CREATE TABLE IF NOT EXISTS spins (
			id TEXT PRIMARY KEY,
			wheel_id TEXT NOT NULL,
			round INTEGER NOT NULL,
			spin INTEGER NOT NULL,
			segment_index INTEGER NOT NULL,
			segment TEXT NOT NULL,
			name TEXT NOT NULL,
			prize INTEGER NOT NULL,
			speed REAL NOT NULL,
			rotation REAL NOT NULL,
			money INTEGER NOT NULL,
			created_at INTEGER NOT NULL
		)`,
		`CREATE INDEX IF NOT EXISTS idx_spins_created ON spins(created_at)`,
		`CREATE INDEX IF NOT EXISTS idx_spins_wheel ON spins(wheel_id, round)`,
	}

	for _, migration := range migrations {
		if _, err := l.db.ExecContext(ctx, migration); err != nil {
			return fmt.Errorf("migration failed: %w", err)
		}
	}

	return nil
}

// Record appends an entry. A zero ID or timestamp is filled in and the
// stored entry is returned.
func (l *Ledger) Record(ctx context.Context, e Entry) (Entry, error) {
	if e.ID == uuid.Nil {
		e.ID = uuid.New()
	}
	if e.CreatedAt.IsZero() {
		e.CreatedAt = time.Now()
	}

	query := `INSERT INTO spins (
		id, wheel_id, round, spin, segment_index, segment, name,
		prize, speed, rotation, money, created_at
	) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`

	_, err := l.db.ExecContext(ctx, query,
		e.ID.String(), e.WheelID.String(), e.Round, e.Spin, e.Index,
		e.Segment, e.Name, e.Prize, e.Speed, e.Rotation, e.Money,
		e.CreatedAt.UnixNano(),
	)
	if err != nil {
		return Entry{}, fmt.Errorf("record spin: %w", err)
	}
	return e, nil
}

// Recent returns up to n entries, newest first.
func (l *Ledger) Recent(ctx context.Context, n int) ([]Entry, error) {
	if n <= 0 {
		return nil, nil
	}

	query := `SELECT id, wheel_id, round, spin, segment_index, segment, name,
		prize, speed, rotation, money, created_at
		FROM spins ORDER BY created_at DESC, spin DESC LIMIT ?`

	rows, err := l.db.QueryContext(ctx, query, n)
	if err != nil {
		return nil, fmt.Errorf("query recent spins: %w", err)
	}
	defer rows.Close()

	var entries []Entry
	for rows.Next() {
		var (
			e              Entry
			id, wheelID    string
			createdAtNanos int64
		)
		err := rows.Scan(&id, &wheelID, &e.Round, &e.Spin, &e.Index,
			&e.Segment, &e.Name, &e.Prize, &e.Speed, &e.Rotation, &e.Money,
			&createdAtNanos)
		if err != nil {
			return nil, fmt.Errorf("scan spin: %w", err)
		}
		if e.ID, err = uuid.Parse(id); err != nil {
			return nil, fmt.Errorf("corrupt spin id %q: %w", id, err)
		}
		if e.WheelID, err = uuid.Parse(wheelID); err != nil {
			return nil, fmt.Errorf("corrupt wheel id %q: %w", wheelID, err)
		}
		e.CreatedAt = time.Unix(0, createdAtNanos)
		entries = append(entries, e)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("read spins: %w", err)
	}
	return entries, nil
}

// Summary aggregates every recorded spin.
func (l *Ledger) Summary(ctx context.Context) (Summary, error) {
	var sum Summary

	err := l.db.QueryRowContext(ctx,
		`SELECT COUNT(*), COALESCE(SUM(prize), 0) FROM spins`,
	).Scan(&sum.Spins, &sum.TotalPrize)
	if err != nil {
		return Summary{}, fmt.Errorf("summarize spins: %w", err)
	}

	sum.AveragePrize = decimal.Zero
	if sum.Spins > 0 {
		sum.AveragePrize = decimal.NewFromInt(int64(sum.TotalPrize)).
			DivRound(decimal.NewFromInt(int64(sum.Spins)), 2)
	}

	rows, err := l.db.QueryContext(ctx,
		`SELECT name, COUNT(*), COALESCE(SUM(prize), 0) FROM spins
		GROUP BY name ORDER BY COUNT(*) DESC, name ASC`)
	if err != nil {
		return Summary{}, fmt.Errorf("summarize segments: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var t SegmentTally
		if err := rows.Scan(&t.Name, &t.Hits, &t.Prize); err != nil {
			return Summary{}, fmt.Errorf("scan segment tally: %w", err)
		}
		sum.Segments = append(sum.Segments, t)
	}

	if err := rows.Err(); err != nil {
		return Summary{}, fmt.Errorf("read segment tallies: %w", err)
	}
	return sum, nil
}
