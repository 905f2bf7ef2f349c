package database

import (
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"math/rand"
	"time"

	sqlite3 "github.com/mattn/go-sqlite3"

	"snaplog-go/internal/core"
)

// SQLiteStore implements core.SnapshotStore and core.PendingStore on a single
// SQLite database.
//
// Callers may be retried by the layers above, so every statement here is
// written to be idempotent or transactional. Transient SQLITE_BUSY failures
// are absorbed locally with bounded, jittered exponential backoff.
type SQLiteStore struct {
	db   *sql.DB
	path string
}

var (
	_ core.SnapshotStore = (*SQLiteStore)(nil)
	_ core.PendingStore  = (*SQLiteStore)(nil)
)

// NewSQLiteStore opens a SQLite database at path.
// path can be a file path or ":memory:" for an in-memory database.
func NewSQLiteStore(path string) (*SQLiteStore, error) {
	db, err := OpenConnection(path)
	if err != nil {
		return nil, err
	}
	return &SQLiteStore{db: db, path: path}, nil
}

// OpenConnection opens and configures a SQLite connection with the PRAGMAs
// this store relies on. Exported for tools and tests that need a properly
// configured connection.
func OpenConnection(path string) (*sql.DB, error) {
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	// Foreign keys default to OFF in SQLite for backward compatibility.
	if _, err := db.Exec("PRAGMA foreign_keys = ON"); err != nil {
		db.Close()
		return nil, fmt.Errorf("enabling foreign keys: %w", err)
	}

	return db, nil
}

// DB exposes the underlying connection for migrations.
func (s *SQLiteStore) DB() *sql.DB { return s.db }

// Close closes the database connection.
func (s *SQLiteStore) Close() error { return s.db.Close() }

// CreateSnapshot writes the metadata record and its ordered change list in
// one transaction.
func (s *SQLiteStore) CreateSnapshot(snap *core.Snapshot) error {
	return withRetry(func() error {
		tx, err := s.db.Begin()
		if err != nil {
			return fmt.Errorf("starting transaction: %w", err)
		}
		defer tx.Rollback()

		sessionID := sql.NullString{String: snap.SessionID, Valid: snap.SessionID != ""}
		_, err = tx.Exec(
			`INSERT INTO snapshots (id, timestamp, label, session_id) VALUES (?, ?, ?, ?)`,
			snap.ID, snap.Timestamp, snap.Label, sessionID,
		)
		if err != nil {
			return fmt.Errorf("inserting snapshot %s: %w", snap.ID, err)
		}

		for seq, ch := range snap.Changes {
			_, err = tx.Exec(
				`INSERT INTO snapshot_changes (snapshot_id, seq, path, action) VALUES (?, ?, ?, ?)`,
				snap.ID, seq, ch.Path.String(), string(ch.Action),
			)
			if err != nil {
				return fmt.Errorf("inserting change %s: %w", ch.Path, err)
			}
		}

		if err := tx.Commit(); err != nil {
			return fmt.Errorf("committing snapshot %s: %w", snap.ID, err)
		}
		return nil
	})
}

// GetSnapshot returns full metadata for one snapshot, or core.NotFoundError.
func (s *SQLiteStore) GetSnapshot(id string) (*core.Snapshot, error) {
	var snap *core.Snapshot
	err := withRetry(func() error {
		var (
			timestamp int64
			label     string
			sessionID sql.NullString
		)
		err := s.db.QueryRow(
			`SELECT timestamp, label, session_id FROM snapshots WHERE id = ?`, id,
		).Scan(&timestamp, &label, &sessionID)
		if errors.Is(err, sql.ErrNoRows) {
			return &core.NotFoundError{Resource: "snapshot", Key: id}
		}
		if err != nil {
			return fmt.Errorf("reading snapshot %s: %w", id, err)
		}

		rows, err := s.db.Query(
			`SELECT path, action FROM snapshot_changes WHERE snapshot_id = ? ORDER BY seq`, id,
		)
		if err != nil {
			return fmt.Errorf("reading changes for %s: %w", id, err)
		}
		defer rows.Close()

		var changes []core.Change
		for rows.Next() {
			var rawPath, action string
			if err := rows.Scan(&rawPath, &action); err != nil {
				return fmt.Errorf("scanning change: %w", err)
			}
			fp, err := core.NewFilePath(rawPath)
			if err != nil {
				return fmt.Errorf("stored path %q is invalid: %w", rawPath, err)
			}
			changes = append(changes, core.Change{Path: fp, Action: core.Action(action)})
		}
		if err := rows.Err(); err != nil {
			return fmt.Errorf("iterating changes for %s: %w", id, err)
		}

		snap = &core.Snapshot{
			ID:        id,
			Timestamp: timestamp,
			Label:     label,
			SessionID: sessionID.String,
			Changes:   changes,
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return snap, nil
}

// ListSnapshots returns summaries for all snapshots, newest first. Equal
// timestamps are broken by descending insertion order, which keeps the
// listing stable across calls.
func (s *SQLiteStore) ListSnapshots() ([]core.SnapshotSummary, error) {
	var summaries []core.SnapshotSummary
	err := withRetry(func() error {
		rows, err := s.db.Query(`
			SELECT s.id, s.timestamp, s.label, COUNT(c.snapshot_id)
			FROM snapshots s
			LEFT JOIN snapshot_changes c ON c.snapshot_id = s.id
			GROUP BY s.id
			ORDER BY s.timestamp DESC, s.rowid DESC`)
		if err != nil {
			return fmt.Errorf("listing snapshots: %w", err)
		}
		defer rows.Close()

		summaries = summaries[:0]
		for rows.Next() {
			var sm core.SnapshotSummary
			if err := rows.Scan(&sm.ID, &sm.Timestamp, &sm.Label, &sm.ChangeCount); err != nil {
				return fmt.Errorf("scanning snapshot summary: %w", err)
			}
			summaries = append(summaries, sm)
		}
		return rows.Err()
	})
	if err != nil {
		return nil, err
	}
	return summaries, nil
}

// LoadPending returns the full pending-change ledger.
func (s *SQLiteStore) LoadPending() (map[string]core.PendingChange, error) {
	var pending map[string]core.PendingChange
	err := withRetry(func() error {
		rows, err := s.db.Query(`
			SELECT path, action, before_content, after_content, snapshot_id, status, hunk_statuses, session_id
			FROM pending_changes`)
		if err != nil {
			return fmt.Errorf("loading pending changes: %w", err)
		}
		defer rows.Close()

		pending = make(map[string]core.PendingChange)
		for rows.Next() {
			var (
				ch            core.PendingChange
				before, after sql.NullString
				snapshotID    sql.NullString
				hunksJSON     string
			)
			if err := rows.Scan(&ch.Path, &ch.Action, &before, &after, &snapshotID, &ch.Status, &hunksJSON, &ch.SessionID); err != nil {
				return fmt.Errorf("scanning pending change: %w", err)
			}
			if before.Valid {
				ch.BeforeContent = &before.String
			}
			if after.Valid {
				ch.AfterContent = &after.String
			}
			ch.SnapshotID = snapshotID.String
			if err := json.Unmarshal([]byte(hunksJSON), &ch.HunkStatuses); err != nil {
				return fmt.Errorf("decoding hunk statuses for %s: %w", ch.Path, err)
			}
			pending[ch.Path] = ch
		}
		return rows.Err()
	})
	if err != nil {
		return nil, err
	}
	return pending, nil
}

// SavePending replaces the ledger wholesale in one transaction.
func (s *SQLiteStore) SavePending(changes map[string]core.PendingChange) error {
	return withRetry(func() error {
		tx, err := s.db.Begin()
		if err != nil {
			return fmt.Errorf("starting transaction: %w", err)
		}
		defer tx.Rollback()

		if _, err := tx.Exec(`DELETE FROM pending_changes`); err != nil {
			return fmt.Errorf("clearing pending changes: %w", err)
		}

		for _, ch := range changes {
			hunksJSON, err := json.Marshal(ch.HunkStatuses)
			if err != nil {
				return fmt.Errorf("encoding hunk statuses for %s: %w", ch.Path, err)
			}
			var before, after sql.NullString
			if ch.BeforeContent != nil {
				before = sql.NullString{String: *ch.BeforeContent, Valid: true}
			}
			if ch.AfterContent != nil {
				after = sql.NullString{String: *ch.AfterContent, Valid: true}
			}
			snapshotID := sql.NullString{String: ch.SnapshotID, Valid: ch.SnapshotID != ""}
			_, err = tx.Exec(`
				INSERT INTO pending_changes (path, action, before_content, after_content, snapshot_id, status, hunk_statuses, session_id)
				VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
				ch.Path, string(ch.Action), before, after, snapshotID, string(ch.Status), string(hunksJSON), ch.SessionID,
			)
			if err != nil {
				return fmt.Errorf("inserting pending change %s: %w", ch.Path, err)
			}
		}

		if err := tx.Commit(); err != nil {
			return fmt.Errorf("committing pending changes: %w", err)
		}
		return nil
	})
}

const (
	maxAttempts    = 4
	retryBaseDelay = 10 * time.Millisecond
)

// withRetry runs op, retrying a bounded number of times with jittered
// exponential backoff when SQLite reports the database busy or locked.
func withRetry(op func() error) error {
	var err error
	for attempt := 0; attempt < maxAttempts; attempt++ {
		if attempt > 0 {
			time.Sleep(backoffDelay(attempt))
		}
		err = op()
		if err == nil || !isBusyError(err) {
			return err
		}
	}
	return fmt.Errorf("storage busy after %d attempts: %w", maxAttempts, err)
}

// backoffDelay returns base*2^(attempt-1) plus up to 100% jitter.
func backoffDelay(attempt int) time.Duration {
	base := retryBaseDelay << (attempt - 1)
	return base + time.Duration(rand.Int63n(int64(base)))
}

func isBusyError(err error) bool {
	var se sqlite3.Error
	if errors.As(err, &se) {
		return se.Code == sqlite3.ErrBusy || se.Code == sqlite3.ErrLocked
	}
	return false
}
