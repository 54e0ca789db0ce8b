package store

import (
	"context"
	"database/sql"
	"errors"
	"time"
)

// GetMarker, SetMarker and DeleteMarkers satisfy session.Backend.

func (s Store) GetMarker(session, kind string) (string, bool, error) {
	ctx := context.Background()
	var id string
	err := s.withDB(ctx, func(db *sql.DB) error {
		return db.QueryRowContext(ctx, `SELECT marker_id FROM markers WHERE session = ? AND kind = ?`, session, kind).Scan(&id)
	})
	if errors.Is(err, sql.ErrNoRows) {
		return "", false, nil
	}
	if err != nil {
		return "", false, err
	}
	return id, true, nil
}

func (s Store) SetMarker(session, kind, id string) error {
	ctx := context.Background()
	now := time.Now()
	return s.withDB(ctx, func(db *sql.DB) error {
		if err := ensureSession(ctx, db, session, now); err != nil {
			return err
		}
		_, err := db.ExecContext(ctx, `
			INSERT INTO markers(session, kind, marker_id, updated_at_unixms) VALUES(?, ?, ?, ?)
			ON CONFLICT(session, kind) DO UPDATE SET marker_id = excluded.marker_id, updated_at_unixms = excluded.updated_at_unixms`,
			session, kind, id, now.UnixMilli())
		return err
	})
}

func (s Store) DeleteMarkers(session string, kinds ...string) error {
	ctx := context.Background()
	return s.withDB(ctx, func(db *sql.DB) error {
		if err := ensureSession(ctx, db, session, time.Now()); err != nil {
			return err
		}
		for _, k := range kinds {
			if _, err := db.ExecContext(ctx, `DELETE FROM markers WHERE session = ? AND kind = ?`, session, k); err != nil {
				return err
			}
		}
		return nil
	})
}
