package blog

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"clubsite/internal/identity"
	"clubsite/internal/models"
	"clubsite/internal/slug"
	"clubsite/internal/store"
)

// PostDraft is the input of CreatePost.
type PostDraft struct {
	Title      string
	Excerpt    string
	Content    string
	CategoryID int64
	ImageURL   *string
	IsFeatured bool
}

// PostPatch is a partial update. Nil fields are left unchanged. A non-nil
// empty ImageURL clears the cover image.
type PostPatch struct {
	Title             *string
	Excerpt           *string
	Content           *string
	CategoryID        *int64
	ImageURL          *string
	IsFeatured        *bool
	ChangeDescription *string
}

// ListPosts returns posts newest first with category and author joined.
func (s *Service) ListPosts(ctx context.Context, f models.PostFilter) ([]models.Post, error) {
	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	f.Category = strings.TrimSpace(f.Category)
	f.Limit = normalizeLimit(f.Limit)

	posts, err := s.posts.List(ctx, f)
	if err != nil {
		return nil, storeErr("list posts", err)
	}
	if posts == nil {
		posts = []models.Post{}
	}
	return posts, nil
}

// GetPost resolves a numeric id or a slug to a post, joins its edit
// history and comments, and counts the read.
func (s *Service) GetPost(ctx context.Context, idOrSlug string) (*models.Post, error) {
	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	p, err := s.findPost(ctx, slug.Classify(idOrSlug))
	if err != nil {
		return nil, err
	}

	history, err := s.history.ListByPost(ctx, p.ID)
	if err != nil {
		return nil, storeErr("get post history", err)
	}
	comments, err := s.comments.ListByPost(ctx, p.ID)
	if err != nil {
		return nil, storeErr("get post comments", err)
	}
	p.EditHistory = history
	p.Comments = comments

	// The counter is best-effort; a failed bump does not fail the read.
	views, err := s.posts.IncrementViewCount(ctx, p.ID)
	if err != nil {
		slog.Warn("view count increment failed", "post_id", p.ID, "error", err)
	} else if views > 0 {
		p.ViewCount = views
	}
	return p, nil
}

// findPost loads a post by classified identifier, returning ErrNotFound
// when nothing matches.
func (s *Service) findPost(ctx context.Context, ident slug.Identifier) (*models.Post, error) {
	var (
		p   *models.Post
		err error
	)
	switch {
	case ident.IsID && ident.ID <= 0:
		// Out-of-range ids cannot exist.
	case ident.IsID:
		p, err = s.posts.FindByID(ctx, ident.ID)
	case ident.Slug != "":
		p, err = s.posts.FindBySlug(ctx, ident.Slug)
	}
	if err != nil {
		return nil, storeErr("find post", err)
	}
	if p == nil {
		return nil, fmt.Errorf("post %s: %w", ident, ErrNotFound)
	}
	return p, nil
}

// CreatePost inserts a post authored by the actor. The slug is minted
// from the title; a title whose slug is taken yields ErrConflict.
func (s *Service) CreatePost(ctx context.Context, actor *identity.Actor, d PostDraft) (*models.Post, error) {
	if actor == nil {
		return nil, ErrUnauthorized
	}
	if err := validateDraft(d); err != nil {
		return nil, err
	}

	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	title := strings.TrimSpace(d.Title)
	p, err := s.posts.Create(ctx, &models.Post{
		Title:      title,
		Slug:       slug.Generate(title),
		Excerpt:    d.Excerpt,
		Content:    d.Content,
		AuthorID:   actor.ID,
		CategoryID: d.CategoryID,
		ImageURL:   blankToNil(d.ImageURL),
		IsFeatured: d.IsFeatured,
	})
	if errors.Is(err, store.ErrMissingReference) {
		return nil, &ValidationError{Errors: map[string]string{"category_id": "Category does not exist."}}
	}
	if err != nil {
		return nil, storeErr("create post", err)
	}

	slog.Info("post created", "post_id", p.ID, "slug", p.Slug, "author_id", actor.ID)
	return p, nil
}

// UpdatePost applies a partial update and appends one edit history entry.
// Existence is checked before permission, so a forbidden caller can tell
// that the post exists. The slug never changes. The history append runs
// after the update and its failure is logged, not returned.
func (s *Service) UpdatePost(ctx context.Context, actor *identity.Actor, id int64, patch PostPatch) (*models.Post, error) {
	if actor == nil {
		return nil, ErrUnauthorized
	}

	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	p, err := s.findPost(ctx, slug.Identifier{IsID: true, ID: id})
	if err != nil {
		return nil, err
	}
	if !s.policy.CanModifyPost(actor.Role, p.IsAuthoredBy(actor.ID)) {
		return nil, fmt.Errorf("update post %d: %w", id, ErrForbidden)
	}
	if err := validatePatch(patch); err != nil {
		return nil, err
	}

	applyPatch(p, patch)
	updated, err := s.posts.Update(ctx, p)
	if errors.Is(err, store.ErrMissingReference) {
		return nil, &ValidationError{Errors: map[string]string{"category_id": "Category does not exist."}}
	}
	if err != nil {
		return nil, storeErr("update post", err)
	}
	if updated == nil {
		return nil, fmt.Errorf("post %d: %w", id, ErrNotFound)
	}

	desc := DefaultChangeDescription
	if patch.ChangeDescription != nil && strings.TrimSpace(*patch.ChangeDescription) != "" {
		desc = strings.TrimSpace(*patch.ChangeDescription)
	}
	if _, err := s.history.Append(ctx, updated.ID, actor.ID, &desc); err != nil {
		slog.Error("edit history append failed",
			"post_id", updated.ID,
			"editor_id", actor.ID,
			"error", err,
		)
	}

	slog.Info("post updated", "post_id", updated.ID, "editor_id", actor.ID)
	return updated, nil
}

// DeletePost hard-deletes a post under the same rule as UpdatePost. Its
// edit history is kept.
func (s *Service) DeletePost(ctx context.Context, actor *identity.Actor, id int64) error {
	if actor == nil {
		return ErrUnauthorized
	}

	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	p, err := s.findPost(ctx, slug.Identifier{IsID: true, ID: id})
	if err != nil {
		return err
	}
	if !s.policy.CanModifyPost(actor.Role, p.IsAuthoredBy(actor.ID)) {
		return fmt.Errorf("delete post %d: %w", id, ErrForbidden)
	}

	deleted, err := s.posts.Delete(ctx, id)
	if err != nil {
		return storeErr("delete post", err)
	}
	if !deleted {
		return fmt.Errorf("post %d: %w", id, ErrNotFound)
	}

	slog.Info("post deleted", "post_id", id, "actor_id", actor.ID)
	return nil
}

func applyPatch(p *models.Post, patch PostPatch) {
	if patch.Title != nil {
		p.Title = strings.TrimSpace(*patch.Title)
	}
	if patch.Excerpt != nil {
		p.Excerpt = *patch.Excerpt
	}
	if patch.Content != nil {
		p.Content = *patch.Content
	}
	if patch.CategoryID != nil {
		p.CategoryID = *patch.CategoryID
	}
	if patch.ImageURL != nil {
		p.ImageURL = blankToNil(patch.ImageURL)
	}
	if patch.IsFeatured != nil {
		p.IsFeatured = *patch.IsFeatured
	}
}

func blankToNil(s *string) *string {
	if s == nil || strings.TrimSpace(*s) == "" {
		return nil
	}
	v := strings.TrimSpace(*s)
	return &v
}
