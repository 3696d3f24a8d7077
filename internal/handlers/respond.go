// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// Package handlers implements the JSON HTTP API. Handlers decode requests,
// call the blog service and map its sentinel errors onto status codes.
package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"clubsite/internal/blog"
)

// maxBodyBytes caps request bodies. Post content is the largest field.
const maxBodyBytes = 1 << 20

// ResponseCache stores encoded listing responses. *cache.ResponseCache
// satisfies it.
type ResponseCache interface {
	Get(ctx context.Context, key string) ([]byte, bool)
	Set(ctx context.Context, key string, body []byte)
	Purge(ctx context.Context)
}

// writeJSON writes a JSON response with the given status code.
func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

// errorBody is the payload of every error response. Fields carries
// per-field validation messages.
type errorBody struct {
	Error  string            `json:"error"`
	Fields map[string]string `json:"fields,omitempty"`
}

// writeError maps a service error onto a status code and JSON body.
func writeError(w http.ResponseWriter, r *http.Request, err error) {
	var verr *blog.ValidationError
	switch {
	case errors.Is(err, blog.ErrUnauthorized):
		writeJSON(w, http.StatusUnauthorized, errorBody{Error: "Unauthorized"})
	case errors.Is(err, blog.ErrForbidden):
		writeJSON(w, http.StatusForbidden, errorBody{Error: "Forbidden"})
	case errors.Is(err, blog.ErrNotFound):
		writeJSON(w, http.StatusNotFound, errorBody{Error: "Not found"})
	case errors.As(err, &verr):
		writeJSON(w, http.StatusBadRequest, errorBody{Error: verr.Error(), Fields: verr.Errors})
	case errors.Is(err, blog.ErrValidation):
		writeJSON(w, http.StatusBadRequest, errorBody{Error: err.Error()})
	case errors.Is(err, blog.ErrConflict):
		writeJSON(w, http.StatusConflict, errorBody{Error: err.Error()})
	default:
		slog.Error("request failed", "method", r.Method, "path", r.URL.Path, "error", err)
		writeJSON(w, http.StatusInternalServerError, errorBody{Error: "Content store unavailable"})
	}
}

// decodeJSON reads a JSON request body into dst. It writes a 400 and
// returns false when the body is malformed.
func decodeJSON(w http.ResponseWriter, r *http.Request, dst any) bool {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody{Error: "Invalid JSON body"})
		return false
	}
	return true
}

// cachedJSON serves key from the response cache, or encodes data and
// stores it. load runs only on a miss.
func cachedJSON(w http.ResponseWriter, r *http.Request, c ResponseCache, load func() (any, error)) {
	key := r.URL.RequestURI()
	if c != nil {
		if body, ok := c.Get(r.Context(), key); ok {
			w.Header().Set("Content-Type", "application/json")
			w.Header().Set("X-Cache", "HIT")
			w.WriteHeader(http.StatusOK)
			w.Write(body)
			return
		}
	}

	data, err := load()
	if err != nil {
		writeError(w, r, err)
		return
	}

	body, err := json.Marshal(data)
	if err != nil {
		slog.Error("encode response failed", "path", r.URL.Path, "error", err)
		writeJSON(w, http.StatusInternalServerError, errorBody{Error: "Internal Server Error"})
		return
	}
	body = append(body, '\n')
	if c != nil {
		c.Set(r.Context(), key, body)
	}

	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("X-Cache", "MISS")
	w.WriteHeader(http.StatusOK)
	w.Write(body)
}

// purge drops cached listings after a successful write.
func purge(r *http.Request, c ResponseCache) {
	if c != nil {
		c.Purge(r.Context())
	}
}
