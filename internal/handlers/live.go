// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package handlers

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"clubsite/internal/blog"
	"clubsite/internal/identity"
	"clubsite/internal/notify"
	"clubsite/internal/realtime"
)

// keepAliveInterval is how often an idle event stream sends a comment so
// proxies keep the connection open.
const keepAliveInterval = 25 * time.Second

// Live serves the server-sent events feed of post snapshots.
type Live struct {
	svc      *blog.Service
	hub      *notify.Hub
	debounce time.Duration

	done      chan struct{}
	closeOnce sync.Once
}

// NewLive creates the live feed handler. hub may be nil, in which case
// each stream only carries its initial snapshots.
func NewLive(svc *blog.Service, hub *notify.Hub, debounce time.Duration) *Live {
	return &Live{svc: svc, hub: hub, debounce: debounce, done: make(chan struct{})}
}

// Close ends every open stream. It is safe to call more than once.
func (l *Live) Close() {
	l.closeOnce.Do(func() { close(l.done) })
}

// Posts handles GET /live/posts?category=. Each connection gets its own
// sync controller; every snapshot it applies is sent as a "snapshot"
// event until the client goes away.
func (l *Live) Posts(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	rc := http.NewResponseController(w)

	ctrl := realtime.New(l.svc, realtime.Options{
		Actor:    identity.FromContext(ctx),
		Hub:      l.hub,
		Debounce: l.debounce,
		Category: r.URL.Query().Get("category"),
	})
	defer ctrl.Close()

	// Only the newest snapshot matters to a slow client.
	updates := make(chan realtime.Snapshot, 1)
	ctrl.OnUpdate(func(s realtime.Snapshot) {
		select {
		case <-updates:
		default:
		}
		updates <- s
	})

	h := w.Header()
	h.Set("Content-Type", "text/event-stream")
	h.Set("Cache-Control", "no-cache")
	h.Set("Connection", "keep-alive")
	h.Set("X-Accel-Buffering", "no")
	w.WriteHeader(http.StatusOK)
	if err := rc.Flush(); err != nil {
		slog.Error("live stream flush unsupported", "error", err)
		return
	}

	// A failed first fetch still yields an error snapshot for the client.
	if err := ctrl.Start(ctx); err != nil && !errors.Is(err, realtime.ErrSuperseded) {
		slog.Warn("live stream initial fetch failed", "error", err)
	}

	keepAlive := time.NewTicker(keepAliveInterval)
	defer keepAlive.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-l.done:
			return
		case <-keepAlive.C:
			if _, err := fmt.Fprint(w, ": keep-alive\n\n"); err != nil {
				return
			}
			rc.Flush()
		case snap := <-updates:
			data, err := json.Marshal(snap)
			if err != nil {
				slog.Error("encode snapshot failed", "error", err)
				return
			}
			if _, err := fmt.Fprintf(w, "id: %d\nevent: snapshot\ndata: %s\n\n", snap.Epoch, data); err != nil {
				return
			}
			if err := rc.Flush(); err != nil {
				return
			}
		}
	}
}
