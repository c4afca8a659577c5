// ABOUTME: SQLite-backed utterance history with WAV blobs
// ABOUTME: Metadata lists stay light; audio loads on demand for replay
package history

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite"
)

// ErrNotFound is returned when no utterance has the requested ID
var ErrNotFound = errors.New("utterance not found")

// DefaultListLimit caps List when the caller passes no limit
const DefaultListLimit = 50

// Entry is one spoken utterance. List returns entries without WAV;
// Get loads the full record including audio.
type Entry struct {
	ID         string
	Text       string
	Voice      string
	Rate       float64
	PitchCents float64
	Duration   float64 // seconds
	CreatedAt  time.Time
	WAV        []byte
}

// Store keeps utterances in a SQLite database
type Store struct {
	db    *sql.DB
	clock func() time.Time
}

// Open creates or opens the history database at path
func Open(ctx context.Context, path string) (*Store, error) {
	dir := filepath.Dir(path)
	if dir != "." && dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("create history dir: %w", err)
		}
	}

	dsn := fmt.Sprintf("file:%s?_pragma=journal_mode(WAL)&_pragma=foreign_keys(ON)", path)
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open history db: %w", err)
	}
	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping history db: %w", err)
	}

	s := &Store{db: db, clock: time.Now}
	if err := s.initSchema(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("init history schema: %w", err)
	}

	log.Printf("History store open at %s", path)
	return s, nil
}

func (s *Store) initSchema(ctx context.Context) error {
	ddl := `
CREATE TABLE IF NOT EXISTS utterances (
    id TEXT PRIMARY KEY,
    text TEXT NOT NULL,
    voice TEXT,
    rate REAL NOT NULL,
    pitch_cents REAL NOT NULL,
    duration_seconds REAL NOT NULL,
    created_at TIMESTAMP NOT NULL,
    wav BLOB NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_utterances_created ON utterances(created_at);
`
	_, err := s.db.ExecContext(ctx, ddl)
	return err
}

// Close releases the database
func (s *Store) Close() error {
	return s.db.Close()
}

// Add stores a new utterance, assigning its ID and timestamp
func (s *Store) Add(ctx context.Context, e Entry) (*Entry, error) {
	if len(e.WAV) == 0 {
		return nil, fmt.Errorf("refusing to store utterance without audio")
	}

	e.ID = uuid.New().String()
	e.CreatedAt = s.clock().UTC()

	_, err := s.db.ExecContext(ctx,
		`INSERT INTO utterances(id, text, voice, rate, pitch_cents, duration_seconds, created_at, wav)
		 VALUES(?, ?, ?, ?, ?, ?, ?, ?)`,
		e.ID, e.Text, e.Voice, e.Rate, e.PitchCents, e.Duration, e.CreatedAt, e.WAV)
	if err != nil {
		return nil, fmt.Errorf("insert utterance: %w", err)
	}
	return &e, nil
}

// List returns up to limit entries newest first, without WAV bytes
func (s *Store) List(ctx context.Context, limit int) ([]Entry, error) {
	if limit <= 0 {
		limit = DefaultListLimit
	}

	rows, err := s.db.QueryContext(ctx,
		`SELECT id, text, voice, rate, pitch_cents, duration_seconds, created_at
		 FROM utterances ORDER BY created_at DESC, id LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("list utterances: %w", err)
	}
	defer rows.Close()

	var entries []Entry
	for rows.Next() {
		var e Entry
		var created string
		if err := rows.Scan(&e.ID, &e.Text, &e.Voice, &e.Rate, &e.PitchCents, &e.Duration, &created); err != nil {
			return nil, fmt.Errorf("scan utterance: %w", err)
		}
		if ts, err := time.Parse(time.RFC3339Nano, created); err == nil {
			e.CreatedAt = ts
		}
		entries = append(entries, e)
	}
	return entries, rows.Err()
}

// Get loads one utterance including its WAV bytes
func (s *Store) Get(ctx context.Context, id string) (*Entry, error) {
	var e Entry
	var created string
	err := s.db.QueryRowContext(ctx,
		`SELECT id, text, voice, rate, pitch_cents, duration_seconds, created_at, wav
		 FROM utterances WHERE id = ?`, id).
		Scan(&e.ID, &e.Text, &e.Voice, &e.Rate, &e.PitchCents, &e.Duration, &created, &e.WAV)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("utterance %s: %w", id, ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("load utterance: %w", err)
	}
	if ts, err := time.Parse(time.RFC3339Nano, created); err == nil {
		e.CreatedAt = ts
	}
	return &e, nil
}

// Delete removes one utterance
func (s *Store) Delete(ctx context.Context, id string) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM utterances WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("delete utterance: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return fmt.Errorf("utterance %s: %w", id, ErrNotFound)
	}
	return nil
}

// Prune deletes all but the newest max entries. Zero or negative max
// keeps everything.
func (s *Store) Prune(ctx context.Context, max int) error {
	if max <= 0 {
		return nil
	}

	_, err := s.db.ExecContext(ctx,
		`DELETE FROM utterances WHERE id IN (
			SELECT id FROM utterances ORDER BY created_at DESC, id LIMIT -1 OFFSET ?
		)`, max)
	if err != nil {
		return fmt.Errorf("prune utterances: %w", err)
	}
	return nil
}
