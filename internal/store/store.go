package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite"
)

const dbFileName = "projectforge.sqlite"

// Store is the local SQLite state: named CLI sessions with their flow markers, and the last
// reconciled copy of the saved collection. The backend stays the system of record.
type Store struct {
	Dir string
}

func (s Store) Ensure() error {
	if strings.TrimSpace(s.Dir) == "" {
		return errors.New("store: empty dir")
	}
	return os.MkdirAll(s.Dir, 0o755)
}

func (s Store) Path() string { return filepath.Join(filepath.Clean(s.Dir), dbFileName) }

func (s Store) open(ctx context.Context) (*sql.DB, error) {
	if err := s.Ensure(); err != nil {
		return nil, err
	}
	// modernc.org/sqlite driver name is "sqlite".
	db, err := sql.Open("sqlite", s.Path())
	if err != nil {
		return nil, err
	}
	// Several CLI invocations may touch the file at once (scripts, a TUI in another pane).
	pragmas := []string{
		"PRAGMA journal_mode=WAL;",
		"PRAGMA synchronous=NORMAL;",
		"PRAGMA busy_timeout=5000;",
	}
	for _, p := range pragmas {
		if _, err := db.ExecContext(ctx, p); err != nil {
			_ = db.Close()
			return nil, err
		}
	}
	if err := migrate(ctx, db); err != nil {
		_ = db.Close()
		return nil, err
	}
	return db, nil
}

func migrate(ctx context.Context, db *sql.DB) error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS sessions (
			name TEXT PRIMARY KEY,
			session_id TEXT NOT NULL,
			created_at_unixms INTEGER NOT NULL,
			updated_at_unixms INTEGER NOT NULL
		);`,
		`CREATE TABLE IF NOT EXISTS markers (
			session TEXT NOT NULL,
			kind TEXT NOT NULL,
			marker_id TEXT NOT NULL,
			updated_at_unixms INTEGER NOT NULL,
			PRIMARY KEY(session, kind)
		);`,
		`CREATE TABLE IF NOT EXISTS saved_entries (
			id TEXT PRIMARY KEY,
			position INTEGER NOT NULL,
			title TEXT NOT NULL,
			parameters_json TEXT NOT NULL,
			synced_at_unixms INTEGER NOT NULL
		);`,
		`CREATE INDEX IF NOT EXISTS idx_saved_entries_position ON saved_entries(position);`,
	}
	for _, st := range stmts {
		if _, err := db.ExecContext(ctx, st); err != nil {
			return fmt.Errorf("store: migrate: %w", err)
		}
	}
	return nil
}

func (s Store) withDB(ctx context.Context, fn func(*sql.DB) error) error {
	db, err := s.open(ctx)
	if err != nil {
		return err
	}
	defer db.Close()
	return fn(db)
}

// Session describes one named CLI session.
type Session struct {
	Name      string            `json:"name" yaml:"name"`
	ID        string            `json:"id" yaml:"id"`
	CreatedAt time.Time         `json:"createdAt" yaml:"createdAt"`
	UpdatedAt time.Time         `json:"updatedAt" yaml:"updatedAt"`
	Markers   map[string]string `json:"markers" yaml:"markers"`
}

// ensureSession registers name on first use and bumps its updated time.
func ensureSession(ctx context.Context, db *sql.DB, name string, now time.Time) error {
	_, err := db.ExecContext(ctx, `
		INSERT INTO sessions(name, session_id, created_at_unixms, updated_at_unixms)
		VALUES(?, ?, ?, ?)
		ON CONFLICT(name) DO UPDATE SET updated_at_unixms = excluded.updated_at_unixms`,
		name, uuid.NewString(), now.UnixMilli(), now.UnixMilli())
	return err
}

// Sessions lists known sessions, most recently used first.
func (s Store) Sessions(ctx context.Context) ([]Session, error) {
	var out []Session
	err := s.withDB(ctx, func(db *sql.DB) error {
		rows, err := db.QueryContext(ctx, `SELECT name, session_id, created_at_unixms, updated_at_unixms FROM sessions ORDER BY updated_at_unixms DESC, name`)
		if err != nil {
			return err
		}
		defer rows.Close()
		for rows.Next() {
			var ss Session
			var created, updated int64
			if err := rows.Scan(&ss.Name, &ss.ID, &created, &updated); err != nil {
				return err
			}
			ss.CreatedAt = time.UnixMilli(created).UTC()
			ss.UpdatedAt = time.UnixMilli(updated).UTC()
			ss.Markers = map[string]string{}
			out = append(out, ss)
		}
		if err := rows.Err(); err != nil {
			return err
		}
		for i := range out {
			mrows, err := db.QueryContext(ctx, `SELECT kind, marker_id FROM markers WHERE session = ?`, out[i].Name)
			if err != nil {
				return err
			}
			for mrows.Next() {
				var k, v string
				if err := mrows.Scan(&k, &v); err != nil {
					mrows.Close()
					return err
				}
				out[i].Markers[k] = v
			}
			mrows.Close()
		}
		return nil
	})
	return out, err
}

// DeleteSession forgets a session and its markers.
func (s Store) DeleteSession(ctx context.Context, name string) error {
	return s.withDB(ctx, func(db *sql.DB) error {
		if _, err := db.ExecContext(ctx, `DELETE FROM markers WHERE session = ?`, name); err != nil {
			return err
		}
		_, err := db.ExecContext(ctx, `DELETE FROM sessions WHERE name = ?`, name)
		return err
	})
}
