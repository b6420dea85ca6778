// Package store persists the dedup state the parsing core only evaluates:
// session fingerprints and sample composite keys. It is the caller-side
// duplicate-check collaborator; the pipeline itself never touches it.
package store

import (
	"context"
	"database/sql"
	"fmt"

	_ "modernc.org/sqlite"

	"github.com/Sanghyeon-Jo/sim-racing-telemetry-pipeline/internal/dedup"
)

const schema = `
CREATE TABLE IF NOT EXISTS session_fingerprints (
	fingerprint TEXT PRIMARY KEY,
	created_at  TEXT NOT NULL DEFAULT (datetime('now'))
);
CREATE TABLE IF NOT EXISTS sample_keys (
	session_id   TEXT NOT NULL,
	elapsed_time REAL NOT NULL,
	PRIMARY KEY (session_id, elapsed_time)
);
`

// Store is a SQLite-backed dedup-state store.
type Store struct {
	db *sql.DB
}

// Open opens (creating if needed) the state database at path. Use ":memory:"
// for an ephemeral store.
func Open(path string) (*Store, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("store: open %s: %w", path, err)
	}
	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("store: init schema: %w", err)
	}
	return &Store{db: db}, nil
}

// Close releases the underlying database handle.
func (s *Store) Close() error { return s.db.Close() }

// HasFingerprint reports whether the session fingerprint is already recorded.
func (s *Store) HasFingerprint(ctx context.Context, fingerprint string) (bool, error) {
	var one int
	err := s.db.QueryRowContext(ctx,
		`SELECT 1 FROM session_fingerprints WHERE fingerprint = ?`, fingerprint).Scan(&one)
	if err == sql.ErrNoRows {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("store: has fingerprint: %w", err)
	}
	return true, nil
}

// AddFingerprint records a session fingerprint. Re-adding is a no-op.
func (s *Store) AddFingerprint(ctx context.Context, fingerprint string) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT OR IGNORE INTO session_fingerprints (fingerprint) VALUES (?)`, fingerprint)
	if err != nil {
		return fmt.Errorf("store: add fingerprint: %w", err)
	}
	return nil
}

// LoadFingerprints returns the full set of recorded fingerprints in the shape
// the dedup layer consumes.
func (s *Store) LoadFingerprints(ctx context.Context) (map[string]struct{}, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT fingerprint FROM session_fingerprints`)
	if err != nil {
		return nil, fmt.Errorf("store: load fingerprints: %w", err)
	}
	defer rows.Close()

	out := make(map[string]struct{})
	for rows.Next() {
		var fp string
		if err := rows.Scan(&fp); err != nil {
			return nil, fmt.Errorf("store: scan fingerprint: %w", err)
		}
		out[fp] = struct{}{}
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("store: load fingerprints: %w", err)
	}
	return out, nil
}

// LoadSampleKeys returns the recorded composite keys for one session.
func (s *Store) LoadSampleKeys(ctx context.Context, sessionID string) (map[dedup.SampleKey]struct{}, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT session_id, elapsed_time FROM sample_keys WHERE session_id = ?`, sessionID)
	if err != nil {
		return nil, fmt.Errorf("store: load sample keys: %w", err)
	}
	defer rows.Close()

	out := make(map[dedup.SampleKey]struct{})
	for rows.Next() {
		var k dedup.SampleKey
		if err := rows.Scan(&k.SessionID, &k.Time); err != nil {
			return nil, fmt.Errorf("store: scan sample key: %w", err)
		}
		out[k] = struct{}{}
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("store: load sample keys: %w", err)
	}
	return out, nil
}

// AddSampleKeys records composite keys in one transaction. Existing keys are
// skipped.
func (s *Store) AddSampleKeys(ctx context.Context, keys []dedup.SampleKey) error {
	if len(keys) == 0 {
		return nil
	}
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("store: begin: %w", err)
	}
	stmt, err := tx.PrepareContext(ctx,
		`INSERT OR IGNORE INTO sample_keys (session_id, elapsed_time) VALUES (?, ?)`)
	if err != nil {
		tx.Rollback()
		return fmt.Errorf("store: prepare: %w", err)
	}
	defer stmt.Close()

	for _, k := range keys {
		if _, err := stmt.ExecContext(ctx, k.SessionID, k.Time); err != nil {
			tx.Rollback()
			return fmt.Errorf("store: add sample key: %w", err)
		}
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("store: commit: %w", err)
	}
	return nil
}
