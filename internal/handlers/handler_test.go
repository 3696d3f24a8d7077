// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// handler_test.go provides shared test infrastructure for handler tests.
// Handlers run against the in-memory content store, so no services are
// needed.
package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/require"

	"clubsite/internal/blog"
	"clubsite/internal/blog/blogtest"
	"clubsite/internal/identity"
	"clubsite/internal/models"
	"clubsite/internal/session"
)

// memCache is an in-memory ResponseCache.
type memCache struct {
	mu     sync.Mutex
	items  map[string][]byte
	purges int
}

func newMemCache() *memCache { return &memCache{items: make(map[string][]byte)} }

func (c *memCache) Get(_ context.Context, key string) ([]byte, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	b, ok := c.items[key]
	return b, ok
}

func (c *memCache) Set(_ context.Context, key string, body []byte) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.items[key] = body
}

func (c *memCache) Purge(context.Context) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.items = make(map[string][]byte)
	c.purges++
}

// fakeSessions records created and destroyed sessions.
type fakeSessions struct {
	created   []*session.Data
	destroyed int
	err       error
}

func (f *fakeSessions) Create(_ context.Context, w http.ResponseWriter, data *session.Data) (string, error) {
	if f.err != nil {
		return "", f.err
	}
	f.created = append(f.created, data)
	http.SetCookie(w, &http.Cookie{Name: session.CookieName, Value: "test-token"})
	return "test-token", nil
}

func (f *fakeSessions) Destroy(context.Context, http.ResponseWriter, *http.Request) error {
	f.destroyed++
	return nil
}

type testAPI struct {
	store    *blogtest.Store
	svc      *blog.Service
	cache    *memCache
	sessions *fakeSessions
	mux      chi.Router
	tech     models.Category
}

func newTestAPI(t *testing.T) *testAPI {
	t.Helper()
	st := blogtest.New()
	api := &testAPI{
		store:    st,
		svc:      blog.NewService(st.Repositories(), blog.Options{}),
		cache:    newMemCache(),
		sessions: &fakeSessions{},
		tech:     st.AddCategory("Technology"),
	}

	posts := NewPosts(api.svc, api.cache)
	cats := NewCategories(api.svc, api.cache)
	auth := NewAuth(api.svc, api.sessions)
	accounts := NewAccounts(api.svc)

	r := chi.NewRouter()
	r.Get("/posts", posts.List)
	r.Post("/posts", posts.Create)
	r.Get("/posts/{idOrSlug}", posts.Get)
	r.Put("/posts/{id}", posts.Update)
	r.Delete("/posts/{id}", posts.Delete)
	r.Get("/categories", cats.List)
	r.Post("/categories", cats.Create)
	r.Post("/auth/register", auth.Register)
	r.Post("/auth/login", auth.Login)
	r.Post("/auth/logout", auth.Logout)
	r.Get("/auth/me", auth.Me)
	r.Get("/accounts", accounts.List)
	r.Put("/accounts/{id}/role", accounts.AssignRole)
	api.mux = r
	return api
}

func (api *testAPI) actor(first string, role models.Role) *identity.Actor {
	return identity.FromAccount(api.store.AddAccount(first, "Tester", role))
}

// do sends a request as actor (nil for anonymous) and returns the recorder.
func (api *testAPI) do(t *testing.T, actor *identity.Actor, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		if s, ok := body.(string); ok {
			buf.WriteString(s)
		} else {
			require.NoError(t, json.NewEncoder(&buf).Encode(body))
		}
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if actor != nil {
		req = req.WithContext(identity.WithActor(req.Context(), actor))
	}
	rr := httptest.NewRecorder()
	api.mux.ServeHTTP(rr, req)
	return rr
}

// decode unmarshals a JSON response body.
func decode[T any](t *testing.T, rr *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &v), "body: %s", rr.Body.String())
	return v
}

type postEnvelope struct {
	Post  models.Post `json:"post"`
	Error string      `json:"error"`
}

type postsEnvelope struct {
	Posts []models.Post `json:"posts"`
}

type errorEnvelope struct {
	Error  string            `json:"error"`
	Fields map[string]string `json:"fields"`
}
