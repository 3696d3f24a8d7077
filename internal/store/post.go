// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"clubsite/internal/models"
)

// postColumns selects a post with its category and author joined. Queries
// alias the post row as p.
const postColumns = `p.id, p.title, p.slug, p.excerpt, p.content, p.author_id,
	p.category_id, p.image_url, p.is_featured, p.published_at, p.updated_at,
	p.view_count, c.name, c.slug, a.first_name, a.last_name, a.avatar_url`

const postJoins = `JOIN categories c ON c.id = p.category_id
	LEFT JOIN profiles a ON a.id = p.author_id`

// PostStore handles blog_posts rows.
type PostStore struct {
	db *sql.DB
}

// NewPostStore creates a new PostStore with the given database connection.
func NewPostStore(db *sql.DB) *PostStore {
	return &PostStore{db: db}
}

func scanPost(row scanner) (*models.Post, error) {
	var (
		p         models.Post
		cat       models.PostCategory
		firstName sql.NullString
		lastName  sql.NullString
		avatarURL sql.NullString
	)
	err := row.Scan(
		&p.ID, &p.Title, &p.Slug, &p.Excerpt, &p.Content, &p.AuthorID,
		&p.CategoryID, &p.ImageURL, &p.IsFeatured, &p.PublishedAt, &p.UpdatedAt,
		&p.ViewCount, &cat.Name, &cat.Slug, &firstName, &lastName, &avatarURL,
	)
	if err != nil {
		return nil, err
	}

	cat.ID = p.CategoryID
	p.Category = &cat
	p.Author = joinedAuthor(p.AuthorID, firstName, lastName, avatarURL)
	return &p, nil
}

func scanPosts(rows *sql.Rows) ([]models.Post, error) {
	defer rows.Close()

	var posts []models.Post
	for rows.Next() {
		p, err := scanPost(rows)
		if err != nil {
			return nil, fmt.Errorf("scan post: %w", err)
		}
		posts = append(posts, *p)
	}
	return posts, rows.Err()
}

// List returns posts newest first, filtered by category slug and the
// featured flag. A non-positive limit returns every match.
func (s *PostStore) List(ctx context.Context, f models.PostFilter) ([]models.Post, error) {
	category := ""
	if !models.IsAllCategory(f.Category) {
		category = f.Category
	}
	var limit any
	if f.Limit > 0 {
		limit = f.Limit
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT `+postColumns+`
		FROM blog_posts p
		`+postJoins+`
		WHERE ($1 = '' OR c.slug = $1)
		  AND (NOT $2 OR p.is_featured)
		ORDER BY p.published_at DESC, p.id DESC
		LIMIT $3
	`, category, f.FeaturedOnly, limit)
	if err != nil {
		return nil, wrapErr("list posts", err)
	}
	return scanPosts(rows)
}

// FindByID retrieves a post by id. Returns nil if not found.
func (s *PostStore) FindByID(ctx context.Context, id int64) (*models.Post, error) {
	p, err := scanPost(s.db.QueryRowContext(ctx,
		`SELECT `+postColumns+` FROM blog_posts p `+postJoins+` WHERE p.id = $1`, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, wrapErr("find post by id", err)
	}
	return p, nil
}

// FindBySlug retrieves a post by slug. Returns nil if not found.
func (s *PostStore) FindBySlug(ctx context.Context, slug string) (*models.Post, error) {
	p, err := scanPost(s.db.QueryRowContext(ctx,
		`SELECT `+postColumns+` FROM blog_posts p `+postJoins+` WHERE p.slug = $1`, slug))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, wrapErr("find post by slug", err)
	}
	return p, nil
}

// Create inserts a post and returns it with joins populated. A taken slug
// yields ErrDuplicate; an unknown category or author yields
// ErrMissingReference.
func (s *PostStore) Create(ctx context.Context, p *models.Post) (*models.Post, error) {
	created, err := scanPost(s.db.QueryRowContext(ctx, `
		WITH p AS (
			INSERT INTO blog_posts (title, slug, excerpt, content, author_id,
			                        category_id, image_url, is_featured)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
			RETURNING *
		)
		SELECT `+postColumns+` FROM p `+postJoins,
		p.Title, p.Slug, p.Excerpt, p.Content, p.AuthorID,
		p.CategoryID, p.ImageURL, p.IsFeatured,
	))
	if err != nil {
		return nil, wrapErr("create post", err)
	}
	return created, nil
}

// Update writes the editable fields of p and stamps updated_at. The slug
// is never rewritten. Returns nil when the post no longer exists.
func (s *PostStore) Update(ctx context.Context, p *models.Post) (*models.Post, error) {
	updated, err := scanPost(s.db.QueryRowContext(ctx, `
		WITH p AS (
			UPDATE blog_posts SET
				title = $1, excerpt = $2, content = $3, category_id = $4,
				image_url = $5, is_featured = $6, updated_at = NOW()
			WHERE id = $7
			RETURNING *
		)
		SELECT `+postColumns+` FROM p `+postJoins,
		p.Title, p.Excerpt, p.Content, p.CategoryID,
		p.ImageURL, p.IsFeatured, p.ID,
	))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, wrapErr("update post", err)
	}
	return updated, nil
}

// Delete removes a post. It reports whether a row was deleted. History
// rows are left in place.
func (s *PostStore) Delete(ctx context.Context, id int64) (bool, error) {
	res, err := s.db.ExecContext(ctx, `DELETE FROM blog_posts WHERE id = $1`, id)
	if err != nil {
		return false, wrapErr("delete post", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("delete post rows affected: %w", err)
	}
	return n > 0, nil
}

// IncrementViewCount adds one to the post's view counter and returns the
// new value. A missing post returns 0.
func (s *PostStore) IncrementViewCount(ctx context.Context, id int64) (int64, error) {
	var n int64
	err := s.db.QueryRowContext(ctx,
		`UPDATE blog_posts SET view_count = view_count + 1 WHERE id = $1 RETURNING view_count`,
		id).Scan(&n)
	if errors.Is(err, sql.ErrNoRows) {
		return 0, nil
	}
	if err != nil {
		return 0, wrapErr("increment view count", err)
	}
	return n, nil
}
