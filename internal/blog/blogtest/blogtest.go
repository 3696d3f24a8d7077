// Package blogtest provides an in-memory content store for tests of the
// layers above internal/store. It mirrors the Postgres store's observable
// behaviour: constraint violations map to the store sentinels, listings
// are newest first, and edit history outlives deleted posts.
package blogtest

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"clubsite/internal/blog"
	"clubsite/internal/models"
	"clubsite/internal/slug"
	"clubsite/internal/store"
)

// Store is a goroutine-safe in-memory implementation of every blog
// repository.
type Store struct {
	mu sync.Mutex

	// Fail, when set, is returned by every repository call.
	Fail error
	// FailHistory, when set, is returned by history appends only.
	FailHistory error
	// BeforeList runs at the start of every post listing, outside the
	// lock. Tests use it to stall or fail individual requests.
	BeforeList func(ctx context.Context, f models.PostFilter) error

	clock      time.Time
	accounts   map[uuid.UUID]models.Account
	passwords  map[uuid.UUID]string
	categories map[int64]models.Category
	posts      map[int64]models.Post
	history    []models.EditHistoryEntry
	comments   []models.Comment
	nextID     int64
	calls      map[string]int
}

// New returns an empty store.
func New() *Store {
	return &Store{
		clock:      time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC),
		accounts:   make(map[uuid.UUID]models.Account),
		passwords:  make(map[uuid.UUID]string),
		categories: make(map[int64]models.Category),
		posts:      make(map[int64]models.Post),
		calls:      make(map[string]int),
	}
}

// Repositories wires the store into a blog.Service.
func (s *Store) Repositories() blog.Repositories {
	return blog.Repositories{
		Posts:      (*postRepo)(s),
		Categories: (*categoryRepo)(s),
		History:    (*historyRepo)(s),
		Comments:   (*commentRepo)(s),
		Accounts:   (*accountRepo)(s),
	}
}

// Calls reports how many times a repository method ran, keyed like
// "posts.List" or "categories.List".
func (s *Store) Calls(name string) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.calls[name]
}

// tick advances the fake clock by one second so insert order is visible
// in timestamps. Callers hold s.mu.
func (s *Store) tick() time.Time {
	s.clock = s.clock.Add(time.Second)
	return s.clock
}

func (s *Store) id() int64 {
	s.nextID++
	return s.nextID
}

// enter records a call and returns the injected failure, if any. On
// success the caller holds s.mu and must call s.mu.Unlock.
func (s *Store) enter(ctx context.Context, name string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.Lock()
	s.calls[name]++
	if s.Fail != nil {
		err := s.Fail
		s.mu.Unlock()
		return err
	}
	return nil
}

// AddAccount inserts an account with password "password".
func (s *Store) AddAccount(first, last string, role models.Role) *models.Account {
	s.mu.Lock()
	defer s.mu.Unlock()
	a := models.Account{
		ID:        uuid.New(),
		FirstName: first,
		LastName:  last,
		Email:     strings.ToLower(first+"."+last) + "@club.test",
		Role:      role,
		JoinDate:  s.tick(),
	}
	s.accounts[a.ID] = a
	s.passwords[a.ID] = "password"
	return &a
}

// AddCategory inserts a category named name.
func (s *Store) AddCategory(name string) models.Category {
	s.mu.Lock()
	defer s.mu.Unlock()
	c := models.Category{ID: s.id(), Name: name, Slug: slug.Generate(name), CreatedAt: s.tick()}
	s.categories[c.ID] = c
	return c
}

// AddPost inserts p as given, filling id, slug and timestamps when unset.
func (s *Store) AddPost(p models.Post) *models.Post {
	s.mu.Lock()
	defer s.mu.Unlock()
	if p.ID == 0 {
		p.ID = s.id()
	}
	if p.Slug == "" {
		p.Slug = slug.Generate(p.Title)
	}
	if p.PublishedAt.IsZero() {
		p.PublishedAt = s.tick()
	}
	if p.UpdatedAt.IsZero() {
		p.UpdatedAt = p.PublishedAt
	}
	s.posts[p.ID] = p
	out := s.joinPost(p)
	return &out
}

// AddComment attaches a comment to a post.
func (s *Store) AddComment(postID int64, author uuid.UUID, content string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.comments = append(s.comments, models.Comment{
		ID: s.id(), PostID: postID, AuthorID: author, Content: content, CreatedAt: s.tick(),
	})
}

// Post returns the stored post without joins, or nil.
func (s *Store) Post(id int64) *models.Post {
	s.mu.Lock()
	defer s.mu.Unlock()
	p, ok := s.posts[id]
	if !ok {
		return nil
	}
	return &p
}

// History returns every ledger entry for a post, including orphans.
func (s *Store) History(postID int64) []models.EditHistoryEntry {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []models.EditHistoryEntry
	for _, e := range s.history {
		if e.PostID == postID {
			out = append(out, e)
		}
	}
	return out
}

// joinPost attaches category and author views. Callers hold s.mu.
func (s *Store) joinPost(p models.Post) models.Post {
	if c, ok := s.categories[p.CategoryID]; ok {
		p.Category = &models.PostCategory{ID: c.ID, Name: c.Name, Slug: c.Slug}
	}
	if a, ok := s.accounts[p.AuthorID]; ok {
		p.Author = a.Author()
	}
	return p
}

type postRepo Store

func (r *postRepo) List(ctx context.Context, f models.PostFilter) ([]models.Post, error) {
	s := (*Store)(r)
	if hook := s.hook(); hook != nil {
		if err := hook(ctx, f); err != nil {
			return nil, err
		}
	}
	if err := s.enter(ctx, "posts.List"); err != nil {
		return nil, err
	}
	defer s.mu.Unlock()

	var out []models.Post
	for _, p := range s.posts {
		jp := s.joinPost(p)
		if !models.IsAllCategory(f.Category) && (jp.Category == nil || jp.Category.Slug != f.Category) {
			continue
		}
		if f.FeaturedOnly && !p.IsFeatured {
			continue
		}
		out = append(out, jp)
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].PublishedAt.Equal(out[j].PublishedAt) {
			return out[i].PublishedAt.After(out[j].PublishedAt)
		}
		return out[i].ID > out[j].ID
	})
	if f.Limit > 0 && len(out) > f.Limit {
		out = out[:f.Limit]
	}
	return out, nil
}

func (s *Store) hook() func(context.Context, models.PostFilter) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.BeforeList
}

func (r *postRepo) find(ctx context.Context, name string, match func(models.Post) bool) (*models.Post, error) {
	s := (*Store)(r)
	if err := s.enter(ctx, name); err != nil {
		return nil, err
	}
	defer s.mu.Unlock()
	for _, p := range s.posts {
		if match(p) {
			jp := s.joinPost(p)
			return &jp, nil
		}
	}
	return nil, nil
}

func (r *postRepo) FindByID(ctx context.Context, id int64) (*models.Post, error) {
	return r.find(ctx, "posts.FindByID", func(p models.Post) bool { return p.ID == id })
}

func (r *postRepo) FindBySlug(ctx context.Context, sl string) (*models.Post, error) {
	return r.find(ctx, "posts.FindBySlug", func(p models.Post) bool { return p.Slug == sl })
}

func (r *postRepo) Create(ctx context.Context, p *models.Post) (*models.Post, error) {
	s := (*Store)(r)
	if err := s.enter(ctx, "posts.Create"); err != nil {
		return nil, err
	}
	defer s.mu.Unlock()

	for _, existing := range s.posts {
		if existing.Slug == p.Slug {
			return nil, fmt.Errorf("create post: %w", store.ErrDuplicate)
		}
	}
	if _, ok := s.categories[p.CategoryID]; !ok {
		return nil, fmt.Errorf("create post: %w", store.ErrMissingReference)
	}
	if _, ok := s.accounts[p.AuthorID]; !ok {
		return nil, fmt.Errorf("create post: %w", store.ErrMissingReference)
	}

	row := *p
	row.ID = s.id()
	row.PublishedAt = s.tick()
	row.UpdatedAt = row.PublishedAt
	row.ViewCount = 0
	row.Category, row.Author, row.EditHistory, row.Comments = nil, nil, nil, nil
	s.posts[row.ID] = row

	out := s.joinPost(row)
	return &out, nil
}

func (r *postRepo) Update(ctx context.Context, p *models.Post) (*models.Post, error) {
	s := (*Store)(r)
	if err := s.enter(ctx, "posts.Update"); err != nil {
		return nil, err
	}
	defer s.mu.Unlock()

	row, ok := s.posts[p.ID]
	if !ok {
		return nil, nil
	}
	if _, ok := s.categories[p.CategoryID]; !ok {
		return nil, fmt.Errorf("update post: %w", store.ErrMissingReference)
	}
	row.Title = p.Title
	row.Excerpt = p.Excerpt
	row.Content = p.Content
	row.CategoryID = p.CategoryID
	row.ImageURL = p.ImageURL
	row.IsFeatured = p.IsFeatured
	row.UpdatedAt = s.tick()
	s.posts[row.ID] = row

	out := s.joinPost(row)
	return &out, nil
}

func (r *postRepo) Delete(ctx context.Context, id int64) (bool, error) {
	s := (*Store)(r)
	if err := s.enter(ctx, "posts.Delete"); err != nil {
		return false, err
	}
	defer s.mu.Unlock()

	if _, ok := s.posts[id]; !ok {
		return false, nil
	}
	delete(s.posts, id)
	kept := s.comments[:0]
	for _, c := range s.comments {
		if c.PostID != id {
			kept = append(kept, c)
		}
	}
	s.comments = kept
	return true, nil
}

func (r *postRepo) IncrementViewCount(ctx context.Context, id int64) (int64, error) {
	s := (*Store)(r)
	if err := s.enter(ctx, "posts.IncrementViewCount"); err != nil {
		return 0, err
	}
	defer s.mu.Unlock()

	row, ok := s.posts[id]
	if !ok {
		return 0, nil
	}
	row.ViewCount++
	s.posts[id] = row
	return row.ViewCount, nil
}

type categoryRepo Store

func (r *categoryRepo) List(ctx context.Context) ([]models.Category, error) {
	s := (*Store)(r)
	if err := s.enter(ctx, "categories.List"); err != nil {
		return nil, err
	}
	defer s.mu.Unlock()

	out := make([]models.Category, 0, len(s.categories))
	for _, c := range s.categories {
		out = append(out, c)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

func (r *categoryRepo) Create(ctx context.Context, name, sl string) (*models.Category, error) {
	s := (*Store)(r)
	if err := s.enter(ctx, "categories.Create"); err != nil {
		return nil, err
	}
	defer s.mu.Unlock()

	for _, c := range s.categories {
		if c.Name == name || c.Slug == sl {
			return nil, fmt.Errorf("create category: %w", store.ErrDuplicate)
		}
	}
	c := models.Category{ID: s.id(), Name: name, Slug: sl, CreatedAt: s.tick()}
	s.categories[c.ID] = c
	return &c, nil
}

type historyRepo Store

func (r *historyRepo) Append(ctx context.Context, postID int64, editorID uuid.UUID, description *string) (*models.EditHistoryEntry, error) {
	s := (*Store)(r)
	if err := s.enter(ctx, "history.Append"); err != nil {
		return nil, err
	}
	defer s.mu.Unlock()

	if s.FailHistory != nil {
		return nil, s.FailHistory
	}
	e := models.EditHistoryEntry{
		ID:       s.id(),
		PostID:   postID,
		EditorID: editorID,
		EditedAt: s.tick(),
	}
	if description != nil {
		d := *description
		e.ChangeDescription = &d
	}
	s.history = append(s.history, e)
	return &e, nil
}

func (r *historyRepo) ListByPost(ctx context.Context, postID int64) ([]models.EditHistoryEntry, error) {
	s := (*Store)(r)
	if err := s.enter(ctx, "history.ListByPost"); err != nil {
		return nil, err
	}
	defer s.mu.Unlock()

	var out []models.EditHistoryEntry
	for _, e := range s.history {
		if e.PostID != postID {
			continue
		}
		if a, ok := s.accounts[e.EditorID]; ok {
			e.Editor = a.Author()
		}
		out = append(out, e)
	}
	return out, nil
}

type commentRepo Store

func (r *commentRepo) ListByPost(ctx context.Context, postID int64) ([]models.Comment, error) {
	s := (*Store)(r)
	if err := s.enter(ctx, "comments.ListByPost"); err != nil {
		return nil, err
	}
	defer s.mu.Unlock()

	var out []models.Comment
	for _, c := range s.comments {
		if c.PostID != postID {
			continue
		}
		if a, ok := s.accounts[c.AuthorID]; ok {
			c.Author = a.Author()
		}
		out = append(out, c)
	}
	return out, nil
}

type accountRepo Store

func (r *accountRepo) FindByEmail(ctx context.Context, email string) (*models.Account, error) {
	s := (*Store)(r)
	if err := s.enter(ctx, "accounts.FindByEmail"); err != nil {
		return nil, err
	}
	defer s.mu.Unlock()
	for _, a := range s.accounts {
		if strings.EqualFold(a.Email, email) {
			return &a, nil
		}
	}
	return nil, nil
}

func (r *accountRepo) FindByID(ctx context.Context, id uuid.UUID) (*models.Account, error) {
	s := (*Store)(r)
	if err := s.enter(ctx, "accounts.FindByID"); err != nil {
		return nil, err
	}
	defer s.mu.Unlock()
	a, ok := s.accounts[id]
	if !ok {
		return nil, nil
	}
	return &a, nil
}

func (r *accountRepo) List(ctx context.Context) ([]models.Account, error) {
	s := (*Store)(r)
	if err := s.enter(ctx, "accounts.List"); err != nil {
		return nil, err
	}
	defer s.mu.Unlock()
	out := make([]models.Account, 0, len(s.accounts))
	for _, a := range s.accounts {
		out = append(out, a)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].JoinDate.Before(out[j].JoinDate) })
	return out, nil
}

func (r *accountRepo) Create(ctx context.Context, a *models.Account, password string) (*models.Account, error) {
	s := (*Store)(r)
	if err := s.enter(ctx, "accounts.Create"); err != nil {
		return nil, err
	}
	defer s.mu.Unlock()
	for _, existing := range s.accounts {
		if strings.EqualFold(existing.Email, a.Email) {
			return nil, fmt.Errorf("create account: %w", store.ErrDuplicate)
		}
	}
	row := *a
	row.ID = uuid.New()
	row.JoinDate = s.tick()
	row.PasswordHash = "hashed"
	s.accounts[row.ID] = row
	s.passwords[row.ID] = password
	return &row, nil
}

func (r *accountRepo) UpdateRole(ctx context.Context, id uuid.UUID, role models.Role) (*models.Account, error) {
	s := (*Store)(r)
	if err := s.enter(ctx, "accounts.UpdateRole"); err != nil {
		return nil, err
	}
	defer s.mu.Unlock()
	a, ok := s.accounts[id]
	if !ok {
		return nil, nil
	}
	a.Role = role
	s.accounts[id] = a
	return &a, nil
}

func (r *accountRepo) CheckPassword(a *models.Account, password string) bool {
	s := (*Store)(r)
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.passwords[a.ID] == password
}
