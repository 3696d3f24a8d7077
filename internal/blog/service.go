// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// Package blog is the content access layer. Every read and write of
// posts, categories and accounts goes through Service, which applies the
// role policy, mints slugs, keeps the edit history and classifies store
// failures into the package's error kinds.
package blog

import (
	"context"
	"time"

	"github.com/google/uuid"
	gocache "github.com/patrickmn/go-cache"

	"clubsite/internal/models"
	"clubsite/internal/policy"
)

// Listing limits.
const (
	DefaultLimit = 10
	MaxLimit     = 100
)

// DefaultChangeDescription is recorded when an update names no change.
const DefaultChangeDescription = "Updated post"

const categoriesCacheKey = "categories"

// PostRepository persists posts.
type PostRepository interface {
	List(ctx context.Context, f models.PostFilter) ([]models.Post, error)
	FindByID(ctx context.Context, id int64) (*models.Post, error)
	FindBySlug(ctx context.Context, slug string) (*models.Post, error)
	Create(ctx context.Context, p *models.Post) (*models.Post, error)
	Update(ctx context.Context, p *models.Post) (*models.Post, error)
	Delete(ctx context.Context, id int64) (bool, error)
	IncrementViewCount(ctx context.Context, id int64) (int64, error)
}

// CategoryRepository persists categories.
type CategoryRepository interface {
	List(ctx context.Context) ([]models.Category, error)
	Create(ctx context.Context, name, slug string) (*models.Category, error)
}

// HistoryRepository is the append-only edit ledger.
type HistoryRepository interface {
	Append(ctx context.Context, postID int64, editorID uuid.UUID, description *string) (*models.EditHistoryEntry, error)
	ListByPost(ctx context.Context, postID int64) ([]models.EditHistoryEntry, error)
}

// CommentRepository reads comments.
type CommentRepository interface {
	ListByPost(ctx context.Context, postID int64) ([]models.Comment, error)
}

// AccountRepository persists accounts.
type AccountRepository interface {
	FindByEmail(ctx context.Context, email string) (*models.Account, error)
	FindByID(ctx context.Context, id uuid.UUID) (*models.Account, error)
	List(ctx context.Context) ([]models.Account, error)
	Create(ctx context.Context, a *models.Account, password string) (*models.Account, error)
	UpdateRole(ctx context.Context, id uuid.UUID, role models.Role) (*models.Account, error)
	CheckPassword(a *models.Account, password string) bool
}

// Repositories groups the storage dependencies of a Service.
type Repositories struct {
	Posts      PostRepository
	Categories CategoryRepository
	History    HistoryRepository
	Comments   CommentRepository
	Accounts   AccountRepository
}

// Options tunes a Service. Zero values pick the defaults.
type Options struct {
	Policy policy.Policy
	// Timeout bounds every repository call. Defaults to 5s.
	Timeout time.Duration
	// CategoryTTL is how long the category list is cached. Defaults to 1m.
	CategoryTTL time.Duration
}

// Service implements the blog operations.
type Service struct {
	posts      PostRepository
	categories CategoryRepository
	history    HistoryRepository
	comments   CommentRepository
	accounts   AccountRepository

	policy        policy.Policy
	timeout       time.Duration
	categoryCache *gocache.Cache
}

// NewService creates a Service over the given repositories.
func NewService(repos Repositories, opts Options) *Service {
	if opts.Policy == (policy.Policy{}) {
		opts.Policy = policy.Default()
	}
	if opts.Timeout <= 0 {
		opts.Timeout = 5 * time.Second
	}
	if opts.CategoryTTL <= 0 {
		opts.CategoryTTL = time.Minute
	}
	return &Service{
		posts:         repos.Posts,
		categories:    repos.Categories,
		history:       repos.History,
		comments:      repos.Comments,
		accounts:      repos.Accounts,
		policy:        opts.Policy,
		timeout:       opts.Timeout,
		categoryCache: gocache.New(opts.CategoryTTL, 2*opts.CategoryTTL),
	}
}

// withTimeout bounds a repository call so a hung store surfaces as
// ErrBackendUnavailable instead of blocking the caller forever.
func (s *Service) withTimeout(ctx context.Context) (context.Context, context.CancelFunc) {
	return context.WithTimeout(ctx, s.timeout)
}

// normalizeLimit maps non-positive limits to DefaultLimit and caps the
// rest at MaxLimit.
func normalizeLimit(n int) int {
	switch {
	case n <= 0:
		return DefaultLimit
	case n > MaxLimit:
		return MaxLimit
	default:
		return n
	}
}
