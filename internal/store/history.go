// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package store

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/google/uuid"

	"clubsite/internal/models"
)

// HistoryStore is the append-only edit ledger. It exposes no update or
// delete path.
type HistoryStore struct {
	db *sql.DB
}

// NewHistoryStore creates a new HistoryStore backed by the given database.
func NewHistoryStore(db *sql.DB) *HistoryStore {
	return &HistoryStore{db: db}
}

// Append records one edit of a post.
func (s *HistoryStore) Append(ctx context.Context, postID int64, editorID uuid.UUID, description *string) (*models.EditHistoryEntry, error) {
	e := &models.EditHistoryEntry{}
	err := s.db.QueryRowContext(ctx, `
		INSERT INTO edit_history (post_id, editor_id, change_description)
		VALUES ($1, $2, $3)
		RETURNING id, post_id, editor_id, edited_at, change_description
	`, postID, editorID, description).Scan(
		&e.ID, &e.PostID, &e.EditorID, &e.EditedAt, &e.ChangeDescription,
	)
	if err != nil {
		return nil, wrapErr("append edit history", err)
	}
	return e, nil
}

// ListByPost returns a post's history oldest first with each editor joined.
// Entries of deleted posts remain readable.
func (s *HistoryStore) ListByPost(ctx context.Context, postID int64) ([]models.EditHistoryEntry, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT h.id, h.post_id, h.editor_id, h.edited_at, h.change_description,
		       a.first_name, a.last_name, a.avatar_url
		FROM edit_history h
		LEFT JOIN profiles a ON a.id = h.editor_id
		WHERE h.post_id = $1
		ORDER BY h.edited_at, h.id
	`, postID)
	if err != nil {
		return nil, wrapErr("list edit history", err)
	}
	defer rows.Close()

	var entries []models.EditHistoryEntry
	for rows.Next() {
		var (
			e         models.EditHistoryEntry
			firstName sql.NullString
			lastName  sql.NullString
			avatarURL sql.NullString
		)
		if err := rows.Scan(
			&e.ID, &e.PostID, &e.EditorID, &e.EditedAt, &e.ChangeDescription,
			&firstName, &lastName, &avatarURL,
		); err != nil {
			return nil, fmt.Errorf("scan edit history: %w", err)
		}
		e.Editor = joinedAuthor(e.EditorID, firstName, lastName, avatarURL)
		entries = append(entries, e)
	}
	return entries, rows.Err()
}
