package blog

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	gocache "github.com/patrickmn/go-cache"

	"clubsite/internal/identity"
	"clubsite/internal/models"
	"clubsite/internal/slug"
)

// ListCategories returns every stored category ordered by name. The
// virtual "All" entry is not included. Results are cached in process.
func (s *Service) ListCategories(ctx context.Context) ([]models.Category, error) {
	if cached, ok := s.categoryCache.Get(categoriesCacheKey); ok {
		return append([]models.Category(nil), cached.([]models.Category)...), nil
	}

	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	cats, err := s.categories.List(ctx)
	if err != nil {
		return nil, storeErr("list categories", err)
	}
	if cats == nil {
		cats = []models.Category{}
	}
	s.categoryCache.Set(categoriesCacheKey, cats, gocache.DefaultExpiration)
	return append([]models.Category(nil), cats...), nil
}

// CreateCategory adds a category whose slug is minted from its name.
// Only roles at or above the category threshold may do this.
func (s *Service) CreateCategory(ctx context.Context, actor *identity.Actor, name string) (*models.Category, error) {
	if actor == nil {
		return nil, ErrUnauthorized
	}
	if !s.policy.CanCreateCategory(actor.Role) {
		return nil, fmt.Errorf("create category: %w", ErrForbidden)
	}
	if err := validateCategoryName(name); err != nil {
		return nil, err
	}

	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	name = strings.TrimSpace(name)
	c, err := s.categories.Create(ctx, name, slug.Generate(name))
	if err != nil {
		return nil, storeErr("create category", err)
	}
	s.InvalidateCategories()

	slog.Info("category created", "category_id", c.ID, "slug", c.Slug, "actor_id", actor.ID)
	return c, nil
}

// InvalidateCategories drops the cached category list. It is called after
// local writes and when another process reports a category change.
func (s *Service) InvalidateCategories() {
	s.categoryCache.Delete(categoriesCacheKey)
}
