// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package handlers

import (
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"clubsite/internal/blog"
	"clubsite/internal/identity"
	"clubsite/internal/models"
)

// Posts groups the /posts handlers.
type Posts struct {
	svc   *blog.Service
	cache ResponseCache
}

// NewPosts creates the post handlers. cache may be nil.
func NewPosts(svc *blog.Service, cache ResponseCache) *Posts {
	return &Posts{svc: svc, cache: cache}
}

// postRequest is the body of POST /posts and PUT /posts/{id}. Absent
// fields are left unchanged by updates.
type postRequest struct {
	Title             *string `json:"title"`
	Excerpt           *string `json:"excerpt"`
	Content           *string `json:"content"`
	CategoryID        *int64  `json:"categoryId"`
	ImageURL          *string `json:"imageUrl"`
	IsFeatured        *bool   `json:"isFeatured"`
	ChangeDescription *string `json:"changeDescription"`
}

func (p postRequest) draft() blog.PostDraft {
	d := blog.PostDraft{
		Title:      deref(p.Title),
		Excerpt:    deref(p.Excerpt),
		Content:    deref(p.Content),
		ImageURL:   p.ImageURL,
		IsFeatured: p.IsFeatured != nil && *p.IsFeatured,
	}
	if p.CategoryID != nil {
		d.CategoryID = *p.CategoryID
	}
	return d
}

func (p postRequest) patch() blog.PostPatch {
	return blog.PostPatch{
		Title:             p.Title,
		Excerpt:           p.Excerpt,
		Content:           p.Content,
		CategoryID:        p.CategoryID,
		ImageURL:          p.ImageURL,
		IsFeatured:        p.IsFeatured,
		ChangeDescription: p.ChangeDescription,
	}
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

// List handles GET /posts?category=&featured=&limit=.
func (h *Posts) List(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	limit, _ := strconv.Atoi(q.Get("limit"))
	filter := models.PostFilter{
		Category:     q.Get("category"),
		FeaturedOnly: q.Get("featured") == "true",
		Limit:        limit,
	}

	cachedJSON(w, r, h.cache, func() (any, error) {
		posts, err := h.svc.ListPosts(r.Context(), filter)
		if err != nil {
			return nil, err
		}
		return map[string]any{"posts": posts}, nil
	})
}

// Get handles GET /posts/{idOrSlug}. Each successful read counts a view.
func (h *Posts) Get(w http.ResponseWriter, r *http.Request) {
	post, err := h.svc.GetPost(r.Context(), chi.URLParam(r, "idOrSlug"))
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"post": post})
}

// Create handles POST /posts.
func (h *Posts) Create(w http.ResponseWriter, r *http.Request) {
	var req postRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	post, err := h.svc.CreatePost(r.Context(), identity.FromContext(r.Context()), req.draft())
	if err != nil {
		writeError(w, r, err)
		return
	}
	purge(r, h.cache)
	writeJSON(w, http.StatusCreated, map[string]any{"post": post})
}

// Update handles PUT /posts/{id}.
func (h *Posts) Update(w http.ResponseWriter, r *http.Request) {
	id, ok := postID(w, r)
	if !ok {
		return
	}
	var req postRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	post, err := h.svc.UpdatePost(r.Context(), identity.FromContext(r.Context()), id, req.patch())
	if err != nil {
		writeError(w, r, err)
		return
	}
	purge(r, h.cache)
	writeJSON(w, http.StatusOK, map[string]any{"post": post})
}

// Delete handles DELETE /posts/{id}.
func (h *Posts) Delete(w http.ResponseWriter, r *http.Request) {
	id, ok := postID(w, r)
	if !ok {
		return
	}

	if err := h.svc.DeletePost(r.Context(), identity.FromContext(r.Context()), id); err != nil {
		writeError(w, r, err)
		return
	}
	purge(r, h.cache)
	writeJSON(w, http.StatusOK, map[string]bool{"success": true})
}

// postID parses the numeric {id} URL parameter. Anything else cannot
// name a post and yields 404.
func postID(w http.ResponseWriter, r *http.Request) (int64, bool) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil || id <= 0 {
		writeJSON(w, http.StatusNotFound, errorBody{Error: "Not found"})
		return 0, false
	}
	return id, true
}
