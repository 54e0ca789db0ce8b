package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"time"

	"projectforge-cli/internal/model"
)

// ReplaceSavedEntries overwrites the cached saved collection with the server's canonical list.
func (s Store) ReplaceSavedEntries(ctx context.Context, entries []model.SavedEntry) error {
	return s.withDB(ctx, func(db *sql.DB) error {
		tx, err := db.BeginTx(ctx, nil)
		if err != nil {
			return err
		}
		defer func() { _ = tx.Rollback() }()

		if _, err := tx.ExecContext(ctx, `DELETE FROM saved_entries`); err != nil {
			return err
		}
		now := time.Now().UnixMilli()
		for i, e := range entries {
			params, err := json.Marshal(e.Parameters)
			if err != nil {
				return err
			}
			if _, err := tx.ExecContext(ctx,
				`INSERT OR REPLACE INTO saved_entries(id, position, title, parameters_json, synced_at_unixms) VALUES(?, ?, ?, ?, ?)`,
				e.ID.String(), i, e.Title, string(params), now); err != nil {
				return err
			}
		}
		return tx.Commit()
	})
}

// RemoveSavedEntry drops one cached entry after the server confirmed its deletion.
func (s Store) RemoveSavedEntry(ctx context.Context, id model.ID) error {
	return s.withDB(ctx, func(db *sql.DB) error {
		_, err := db.ExecContext(ctx, `DELETE FROM saved_entries WHERE id = ?`, id.String())
		return err
	})
}

// SavedEntries returns the cached collection in server order.
func (s Store) SavedEntries(ctx context.Context) ([]model.SavedEntry, error) {
	out := []model.SavedEntry{}
	err := s.withDB(ctx, func(db *sql.DB) error {
		rows, err := db.QueryContext(ctx, `SELECT id, title, parameters_json FROM saved_entries ORDER BY position`)
		if err != nil {
			return err
		}
		defer rows.Close()
		for rows.Next() {
			var id, title, params string
			if err := rows.Scan(&id, &title, &params); err != nil {
				return err
			}
			e := model.SavedEntry{ID: model.ID(id), Title: title}
			if err := json.Unmarshal([]byte(params), &e.Parameters); err != nil {
				return err
			}
			out = append(out, e)
		}
		return rows.Err()
	})
	return out, err
}
