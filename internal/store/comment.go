package store

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/google/uuid"

	"clubsite/internal/models"
)

// CommentStore reads post comments. Comments are written by other
// clients; this service only joins them onto single-post reads.
type CommentStore struct {
	db *sql.DB
}

// NewCommentStore creates a new CommentStore.
func NewCommentStore(db *sql.DB) *CommentStore {
	return &CommentStore{db: db}
}

// ListByPost returns a post's comments oldest first.
func (s *CommentStore) ListByPost(ctx context.Context, postID int64) ([]models.Comment, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT m.id, m.post_id, m.author_id, m.content, m.created_at,
		       a.first_name, a.last_name, a.avatar_url
		FROM comments m
		LEFT JOIN profiles a ON a.id = m.author_id
		WHERE m.post_id = $1
		ORDER BY m.created_at, m.id
	`, postID)
	if err != nil {
		return nil, wrapErr("list comments", err)
	}
	defer rows.Close()

	var comments []models.Comment
	for rows.Next() {
		var (
			c         models.Comment
			firstName sql.NullString
			lastName  sql.NullString
			avatarURL sql.NullString
		)
		if err := rows.Scan(
			&c.ID, &c.PostID, &c.AuthorID, &c.Content, &c.CreatedAt,
			&firstName, &lastName, &avatarURL,
		); err != nil {
			return nil, fmt.Errorf("scan comment: %w", err)
		}
		c.Author = joinedAuthor(c.AuthorID, firstName, lastName, avatarURL)
		comments = append(comments, c)
	}
	return comments, rows.Err()
}

// joinedAuthor builds the author view of a LEFT JOINed profile, or nil
// when the join found no row.
func joinedAuthor(id uuid.UUID, firstName, lastName, avatarURL sql.NullString) *models.Author {
	if !firstName.Valid {
		return nil
	}
	a := &models.Author{ID: id, FirstName: firstName.String, LastName: lastName.String}
	if avatarURL.Valid {
		a.AvatarURL = &avatarURL.String
	}
	return a
}
