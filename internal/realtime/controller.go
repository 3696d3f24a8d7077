// Package realtime keeps a live view of posts and categories for one
// viewer. A Controller fetches on demand, refetches (debounced) when the
// posts table changes, and routes mutations through the blog service.
package realtime

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/jonboulle/clockwork"

	"clubsite/internal/blog"
	"clubsite/internal/identity"
	"clubsite/internal/models"
	"clubsite/internal/notify"
)

// DefaultDebounce is the quiet period before a change-triggered refetch.
const DefaultDebounce = 300 * time.Millisecond

// ErrSuperseded is returned by FetchPosts when a later fetch started
// before this one finished. Its result was discarded.
var ErrSuperseded = errors.New("realtime: fetch superseded by a newer request")

// State is the controller's fetch state.
type State int

const (
	StateIdle State = iota
	StateLoading
	StateReady
	StateError
)

var stateNames = [...]string{"idle", "loading", "ready", "error"}

func (s State) String() string {
	if s < 0 || int(s) >= len(stateNames) {
		return fmt.Sprintf("state(%d)", int(s))
	}
	return stateNames[s]
}

// MarshalText encodes the state name.
func (s State) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

// Backend is the subset of *blog.Service the controller uses.
type Backend interface {
	ListCategories(ctx context.Context) ([]models.Category, error)
	ListPosts(ctx context.Context, f models.PostFilter) ([]models.Post, error)
	CreatePost(ctx context.Context, actor *identity.Actor, d blog.PostDraft) (*models.Post, error)
	UpdatePost(ctx context.Context, actor *identity.Actor, id int64, p blog.PostPatch) (*models.Post, error)
	DeletePost(ctx context.Context, actor *identity.Actor, id int64) error
}

// Snapshot is an immutable view of the controller. Category names the
// filter being loaded while State is StateLoading; in every other state it
// is the filter that Posts and Featured were loaded with.
type Snapshot struct {
	State      State             `json:"state"`
	Category   string            `json:"category"`
	Posts      []models.Post     `json:"posts"`
	Featured   *models.Post      `json:"featured"`
	Categories []models.Category `json:"categories"`
	Error      string            `json:"error,omitempty"`
	Epoch      uint64            `json:"epoch"`
}

func (s Snapshot) clone() Snapshot {
	s.Posts = append([]models.Post(nil), s.Posts...)
	s.Categories = append([]models.Category(nil), s.Categories...)
	if s.Featured != nil {
		f := *s.Featured
		s.Featured = &f
	}
	return s
}

// Options configures a Controller.
type Options struct {
	// Actor is the signed-in viewer; nil for anonymous viewers, who can
	// read but not mutate.
	Actor *identity.Actor
	// Hub delivers change events. Without one the controller only
	// refreshes on demand and after its own mutations.
	Hub      *notify.Hub
	Debounce time.Duration
	Clock    clockwork.Clock
	// Limit caps each listing. Zero uses the service default.
	Limit int
	// Category is the initial filter used by Start. Empty means all.
	Category string
}

// Controller is the sync state for one viewer. It is safe for
// concurrent use.
type Controller struct {
	backend Backend
	actor   *identity.Actor
	hub     *notify.Hub
	limit   int

	refetch *Debouncer

	mu        sync.Mutex
	snap      Snapshot
	loaded    string // category of the last applied post list
	epoch     uint64
	closed    bool
	sub       *notify.Subscription
	runCtx    context.Context
	listeners []func(Snapshot)
}

// New creates an idle controller.
func New(backend Backend, opts Options) *Controller {
	if opts.Debounce <= 0 {
		opts.Debounce = DefaultDebounce
	}
	if opts.Clock == nil {
		opts.Clock = clockwork.NewRealClock()
	}
	c := &Controller{
		backend: backend,
		actor:   opts.Actor,
		hub:     opts.Hub,
		limit:   opts.Limit,
		snap:    Snapshot{State: StateIdle, Category: models.AllCategorySlug},
		runCtx:  context.Background(),
	}
	if !models.IsAllCategory(opts.Category) {
		c.snap.Category = strings.TrimSpace(opts.Category)
	}
	c.loaded = c.snap.Category
	c.refetch = NewDebouncer(opts.Clock, opts.Debounce, c.refresh)
	return c
}

// OnUpdate registers fn to receive every snapshot the controller applies.
// fn runs synchronously and must not call back into the controller's
// mutating methods.
func (c *Controller) OnUpdate(fn func(Snapshot)) {
	c.mu.Lock()
	c.listeners = append(c.listeners, fn)
	c.mu.Unlock()
}

// Snapshot returns the current view.
func (c *Controller) Snapshot() Snapshot {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.snap.clone()
}

// Start subscribes to post changes and performs the initial fetch. A
// previous subscription is released first, so Start may be called again
// to re-initialise. ctx bounds change-triggered refetches.
func (c *Controller) Start(ctx context.Context) error {
	c.mu.Lock()
	c.releaseLocked()
	c.closed = false
	c.runCtx = ctx
	if c.hub != nil {
		sub := c.hub.Subscribe(notify.TablePosts)
		c.sub = sub
		go c.watch(sub)
	}
	category := c.snap.Category
	c.mu.Unlock()

	return c.FetchPosts(ctx, category)
}

// Close releases the change subscription and cancels a pending refetch.
// A closed controller schedules no further refetches until Start is
// called again.
func (c *Controller) Close() {
	c.mu.Lock()
	c.releaseLocked()
	c.closed = true
	c.mu.Unlock()
	c.refetch.Cancel()
}

// scheduleRefetch arms the debouncer unless the controller is closed.
func (c *Controller) scheduleRefetch() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return
	}
	c.refetch.Schedule()
}

func (c *Controller) releaseLocked() {
	if c.sub != nil {
		c.sub.Close()
		c.sub = nil
	}
}

func (c *Controller) watch(sub *notify.Subscription) {
	for range sub.C {
		c.scheduleRefetch()
	}
}

// refresh is the debounced refetch of the current category.
func (c *Controller) refresh() {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return
	}
	ctx, category := c.runCtx, c.snap.Category
	c.mu.Unlock()

	if err := c.FetchPosts(ctx, category); err != nil && !errors.Is(err, ErrSuperseded) {
		slog.Warn("realtime refetch failed", "category", category, "error", err)
	}
}

// FetchPosts loads categories then posts for category ("" or "all" for
// every category) and swaps them in as one snapshot. When fetches
// overlap, only the most recently started one is applied; older ones
// return ErrSuperseded. Failures move the controller to StateError and
// keep the previous lists along with the category they belong to.
func (c *Controller) FetchPosts(ctx context.Context, category string) error {
	if models.IsAllCategory(category) {
		category = models.AllCategorySlug
	}

	c.mu.Lock()
	c.epoch++
	epoch := c.epoch
	c.snap.State = StateLoading
	c.snap.Category = category
	c.snap.Epoch = epoch
	c.snap.Error = ""
	c.publishLocked()
	c.mu.Unlock()

	cats, err := c.backend.ListCategories(ctx)
	var posts []models.Post
	if err == nil {
		posts, err = c.backend.ListPosts(ctx, models.PostFilter{Category: category, Limit: c.limit})
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	if epoch != c.epoch {
		slog.Debug("realtime fetch discarded", "epoch", epoch, "current", c.epoch)
		return ErrSuperseded
	}
	if err != nil {
		c.snap.State = StateError
		c.snap.Category = c.loaded
		c.snap.Error = errorMessage(err)
		c.publishLocked()
		return err
	}

	c.snap = Snapshot{
		State:      StateReady,
		Category:   category,
		Posts:      posts,
		Featured:   models.FeaturedPost(posts),
		Categories: append([]models.Category{models.AllCategory()}, cats...),
		Epoch:      epoch,
	}
	c.loaded = category
	c.publishLocked()
	return nil
}

func (c *Controller) publishLocked() {
	if len(c.listeners) == 0 {
		return
	}
	snap := c.snap.clone()
	for _, fn := range c.listeners {
		fn(snap)
	}
}

// AddPost creates a post as the controller's actor and schedules a
// refetch. Anonymous controllers fail without contacting the service.
func (c *Controller) AddPost(ctx context.Context, d blog.PostDraft) (*models.Post, error) {
	if c.actor == nil {
		return nil, blog.ErrUnauthorized
	}
	p, err := c.backend.CreatePost(ctx, c.actor, d)
	if err != nil {
		return nil, err
	}
	c.scheduleRefetch()
	return p, nil
}

// UpdatePost edits a post as the controller's actor and schedules a
// refetch. The service still applies the role policy.
func (c *Controller) UpdatePost(ctx context.Context, id int64, patch blog.PostPatch) (*models.Post, error) {
	if c.actor == nil {
		return nil, blog.ErrUnauthorized
	}
	p, err := c.backend.UpdatePost(ctx, c.actor, id, patch)
	if err != nil {
		return nil, err
	}
	c.scheduleRefetch()
	return p, nil
}

// DeletePost deletes a post as the controller's actor and schedules a
// refetch.
func (c *Controller) DeletePost(ctx context.Context, id int64) error {
	if c.actor == nil {
		return blog.ErrUnauthorized
	}
	if err := c.backend.DeletePost(ctx, c.actor, id); err != nil {
		return err
	}
	c.scheduleRefetch()
	return nil
}

// errorMessage turns a service error into text for viewers.
func errorMessage(err error) string {
	switch {
	case errors.Is(err, blog.ErrBackendUnavailable):
		return "Posts are temporarily unavailable. Please try again."
	case errors.Is(err, context.Canceled):
		return "Request cancelled."
	default:
		return "Failed to load posts."
	}
}
