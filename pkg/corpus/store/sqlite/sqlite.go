package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	_ "modernc.org/sqlite"

	"github.com/yaelanya/patent-word2vec/pkg/corpus/internalerr"
	"github.com/yaelanya/patent-word2vec/pkg/corpus/store"
	"github.com/yaelanya/patent-word2vec/pkg/corpus/tokenize"
)

// sqliteStore implements the Store interface using SQLite
type sqliteStore struct {
	db *sql.DB
}

// OpenSQLite opens a SQLite database with WAL mode enabled and creates the
// schema if needed.
func OpenSQLite(ctx context.Context, path string) (store.Store, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, err
	}

	// Enable WAL mode for better concurrency
	if _, err := db.ExecContext(ctx, "PRAGMA journal_mode=WAL"); err != nil {
		db.Close()
		return nil, err
	}

	// Enable foreign keys
	if _, err := db.ExecContext(ctx, "PRAGMA foreign_keys=ON"); err != nil {
		db.Close()
		return nil, err
	}

	if err := initSchema(ctx, db); err != nil {
		db.Close()
		return nil, err
	}

	return &sqliteStore{db: db}, nil
}

// Close closes the database connection
func (s *sqliteStore) Close() error {
	return s.db.Close()
}

// initSchema creates tables if they don't exist
func initSchema(ctx context.Context, db *sql.DB) error {
	schema := `
CREATE TABLE IF NOT EXISTS runs (
	id TEXT PRIMARY KEY,
	input TEXT,
	output TEXT,
	batch_size INTEGER NOT NULL,
	workers INTEGER NOT NULL,
	with_pos INTEGER NOT NULL DEFAULT 0,
	started_at TEXT NOT NULL,
	finished_at TEXT,
	sentences INTEGER NOT NULL DEFAULT 0,
	failed INTEGER NOT NULL DEFAULT 0,
	empty INTEGER NOT NULL DEFAULT 0,
	batches INTEGER NOT NULL DEFAULT 0,
	abort_error TEXT NOT NULL DEFAULT ''
);

CREATE TABLE IF NOT EXISTS sentences (
	run_id TEXT NOT NULL,
	idx INTEGER NOT NULL,
	text TEXT NOT NULL,
	line TEXT NOT NULL,
	status TEXT NOT NULL,
	PRIMARY KEY(run_id, idx),
	FOREIGN KEY(run_id) REFERENCES runs(id) ON DELETE CASCADE
);

CREATE INDEX IF NOT EXISTS idx_sentences_status ON sentences(run_id, status);
`

	_, err := db.ExecContext(ctx, schema)
	return err
}

// CreateRun inserts a new run row
func (s *sqliteStore) CreateRun(ctx context.Context, r store.Run) error {
	if r.ID == "" {
		return fmt.Errorf("%w: run id is required", internalerr.ErrInvalidInput)
	}
	_, err := s.db.ExecContext(ctx, `
INSERT INTO runs (id, input, output, batch_size, workers, with_pos, started_at)
VALUES (?, ?, ?, ?, ?, ?, ?)`,
		r.ID,
		r.Input,
		r.Output,
		r.BatchSize,
		r.Workers,
		boolToInt(r.WithPOS),
		formatTime(r.StartedAt),
	)
	return err
}

// FinishRun stores the final totals and completion time
func (s *sqliteStore) FinishRun(ctx context.Context, id string, stats store.RunStats) error {
	res, err := s.db.ExecContext(ctx, `
UPDATE runs SET finished_at=?, sentences=?, failed=?, empty=?, batches=?, abort_error=?
WHERE id=?`,
		formatTime(time.Now()),
		stats.Sentences,
		stats.Failed,
		stats.Empty,
		stats.Batches,
		stats.Error,
		id,
	)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return fmt.Errorf("run %s: %w", id, internalerr.ErrNotFound)
	}
	return nil
}

const runColumns = `id, input, output, batch_size, workers, with_pos, started_at, finished_at, sentences, failed, empty, batches, abort_error`

// GetRun retrieves a run by ID
func (s *sqliteStore) GetRun(ctx context.Context, id string) (store.Run, error) {
	row := s.db.QueryRowContext(ctx, `SELECT `+runColumns+` FROM runs WHERE id = ?`, id)
	r, err := scanRun(row)
	if errors.Is(err, sql.ErrNoRows) {
		return store.Run{}, fmt.Errorf("run %s: %w", id, internalerr.ErrNotFound)
	}
	return r, err
}

// ListRuns returns runs newest first
func (s *sqliteStore) ListRuns(ctx context.Context, limit int) ([]store.Run, error) {
	if limit <= 0 {
		limit = -1
	}
	rows, err := s.db.QueryContext(ctx, `SELECT `+runColumns+` FROM runs ORDER BY id DESC LIMIT ?`, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var runs []store.Run
	for rows.Next() {
		r, err := scanRun(rows)
		if err != nil {
			return nil, err
		}
		runs = append(runs, r)
	}
	return runs, rows.Err()
}

type scanner interface {
	Scan(dest ...any) error
}

func scanRun(sc scanner) (store.Run, error) {
	var (
		r        store.Run
		withPOS  int
		started  string
		finished sql.NullString
	)
	err := sc.Scan(
		&r.ID,
		&r.Input,
		&r.Output,
		&r.BatchSize,
		&r.Workers,
		&withPOS,
		&started,
		&finished,
		&r.Stats.Sentences,
		&r.Stats.Failed,
		&r.Stats.Empty,
		&r.Stats.Batches,
		&r.Stats.Error,
	)
	if err != nil {
		return store.Run{}, err
	}
	r.WithPOS = withPOS != 0
	r.StartedAt = parseTime(started)
	if finished.Valid {
		r.FinishedAt = parseTime(finished.String)
	}
	return r, nil
}

// SaveSentences writes sentence records in one transaction. Existing
// records with the same index are replaced.
func (s *sqliteStore) SaveSentences(ctx context.Context, runID string, recs []store.SentenceRecord) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	var exists int
	err = tx.QueryRowContext(ctx, `SELECT 1 FROM runs WHERE id = ?`, runID).Scan(&exists)
	if errors.Is(err, sql.ErrNoRows) {
		return fmt.Errorf("run %s: %w", runID, internalerr.ErrNotFound)
	}
	if err != nil {
		return err
	}

	stmt, err := tx.PrepareContext(ctx, `
INSERT INTO sentences (run_id, idx, text, line, status)
VALUES (?, ?, ?, ?, ?)
ON CONFLICT(run_id, idx) DO UPDATE SET
	text=excluded.text,
	line=excluded.line,
	status=excluded.status`)
	if err != nil {
		return err
	}
	defer stmt.Close()

	for _, rec := range recs {
		if _, err := stmt.ExecContext(ctx, runID, rec.Index, rec.Text, rec.Line, rec.Status.String()); err != nil {
			return err
		}
	}
	return tx.Commit()
}

// Sentences returns records ordered by index. limit <= 0 means no limit.
func (s *sqliteStore) Sentences(ctx context.Context, runID string, offset, limit int) ([]store.SentenceRecord, error) {
	if _, err := s.GetRun(ctx, runID); err != nil {
		return nil, err
	}
	if limit <= 0 {
		limit = -1
	}
	if offset < 0 {
		offset = 0
	}

	rows, err := s.db.QueryContext(ctx, `
SELECT idx, text, line, status
FROM sentences
WHERE run_id = ?
ORDER BY idx
LIMIT ? OFFSET ?`, runID, limit, offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	recs := []store.SentenceRecord{}
	for rows.Next() {
		var (
			rec    store.SentenceRecord
			status string
		)
		if err := rows.Scan(&rec.Index, &rec.Text, &rec.Line, &status); err != nil {
			return nil, err
		}
		st, ok := tokenize.ParseStatus(status)
		if !ok {
			return nil, fmt.Errorf("%w: sentence %d has status %q", internalerr.ErrInvalidInput, rec.Index, status)
		}
		rec.Status = st
		recs = append(recs, rec)
	}
	return recs, rows.Err()
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}

func formatTime(t time.Time) string {
	return t.UTC().Format(time.RFC3339Nano)
}

func parseTime(s string) time.Time {
	t, err := time.Parse(time.RFC3339Nano, s)
	if err != nil {
		return time.Time{}
	}
	return t
}
