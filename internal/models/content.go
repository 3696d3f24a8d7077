// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package models

import (
	"time"

	"github.com/google/uuid"
)

// Author is the public identity of an account as embedded in posts,
// comments and edit history.
type Author struct {
	ID        uuid.UUID `json:"id"`
	FirstName string    `json:"first_name"`
	LastName  string    `json:"last_name"`
	AvatarURL *string   `json:"avatar_url,omitempty"`
}

// PostCategory is the category subset joined onto a post.
type PostCategory struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
	Slug string `json:"slug"`
}

// Post is a blog article. Slugs are unique and stable once assigned.
type Post struct {
	ID          int64     `json:"id"`
	Title       string    `json:"title"`
	Slug        string    `json:"slug"`
	Excerpt     string    `json:"excerpt"`
	Content     string    `json:"content"`
	AuthorID    uuid.UUID `json:"author_id"`
	CategoryID  int64     `json:"category_id"`
	ImageURL    *string   `json:"image_url"`
	IsFeatured  bool      `json:"is_featured"`
	PublishedAt time.Time `json:"published_at"`
	UpdatedAt   time.Time `json:"updated_at"`
	ViewCount   int64     `json:"view_count"`

	// Joined views populated by store reads.
	Category    *PostCategory      `json:"categories,omitempty"`
	Author      *Author            `json:"profiles,omitempty"`
	EditHistory []EditHistoryEntry `json:"edit_history,omitempty"`
	Comments    []Comment          `json:"comments,omitempty"`
}

// IsAuthoredBy reports whether the given account owns the post.
func (p *Post) IsAuthoredBy(accountID uuid.UUID) bool {
	return p.AuthorID == accountID
}

// EditHistoryEntry is an immutable audit record of one successful post
// update. Entries are never modified or deleted and outlive their post.
type EditHistoryEntry struct {
	ID                int64     `json:"id"`
	PostID            int64     `json:"post_id"`
	EditorID          uuid.UUID `json:"editor_id"`
	EditedAt          time.Time `json:"edited_at"`
	ChangeDescription *string   `json:"change_description"`
	Editor            *Author   `json:"profiles,omitempty"`
}

// Comment is a reader comment joined onto single-post reads.
type Comment struct {
	ID        int64     `json:"id"`
	PostID    int64     `json:"post_id"`
	AuthorID  uuid.UUID `json:"author_id"`
	Content   string    `json:"content"`
	CreatedAt time.Time `json:"created_at"`
	Author    *Author   `json:"profiles,omitempty"`
}

// PostFilter selects posts for a listing. An empty or "all" Category
// matches every category; Category is compared against category slugs.
type PostFilter struct {
	Category     string
	FeaturedOnly bool
	Limit        int
}

// FeaturedPost returns the first post flagged as featured, or nil. Posts
// are expected in listing order, so the most recently published flagged
// post wins when several are flagged.
func FeaturedPost(posts []Post) *Post {
	for i := range posts {
		if posts[i].IsFeatured {
			p := posts[i]
			return &p
		}
	}
	return nil
}
