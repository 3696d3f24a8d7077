package handlers

import (
	"net/http"

	"clubsite/internal/blog"
	"clubsite/internal/identity"
)

// Categories groups the /categories handlers.
type Categories struct {
	svc   *blog.Service
	cache ResponseCache
}

// NewCategories creates the category handlers. cache may be nil.
func NewCategories(svc *blog.Service, cache ResponseCache) *Categories {
	return &Categories{svc: svc, cache: cache}
}

// List handles GET /categories.
func (h *Categories) List(w http.ResponseWriter, r *http.Request) {
	cachedJSON(w, r, h.cache, func() (any, error) {
		cats, err := h.svc.ListCategories(r.Context())
		if err != nil {
			return nil, err
		}
		return map[string]any{"categories": cats}, nil
	})
}

// Create handles POST /categories.
func (h *Categories) Create(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Name string `json:"name"`
	}
	if !decodeJSON(w, r, &req) {
		return
	}

	cat, err := h.svc.CreateCategory(r.Context(), identity.FromContext(r.Context()), req.Name)
	if err != nil {
		writeError(w, r, err)
		return
	}
	purge(r, h.cache)
	writeJSON(w, http.StatusCreated, map[string]any{"category": cat})
}
