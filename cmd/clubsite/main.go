// Package main is the entry point for the club blog API server.
// It loads configuration, connects to services, sets up routing, and starts
// the HTTP server with graceful shutdown support.
package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/pflag"

	"clubsite/internal/blog"
	"clubsite/internal/cache"
	"clubsite/internal/config"
	"clubsite/internal/database"
	"clubsite/internal/handlers"
	"clubsite/internal/identity"
	"clubsite/internal/notify"
	"clubsite/internal/router"
	"clubsite/internal/session"
	"clubsite/internal/store"
)

func main() {
	flags := pflag.NewFlagSet("clubsite", pflag.ContinueOnError)
	configPath := flags.String("config", "", "path to a config file (YAML, TOML or JSON)")
	seed := flags.Bool("seed", false, "apply the sample data even outside development")
	if err := flags.Parse(os.Args[1:]); err != nil {
		if errors.Is(err, pflag.ErrHelp) {
			os.Exit(0)
		}
		fmt.Fprintln(os.Stderr, err)
		os.Exit(2)
	}

	if err := run(*configPath, *seed); err != nil {
		slog.Error("server exited", "error", err)
		os.Exit(1)
	}
}

func run(configPath string, seed bool) error {
	// Load configuration from the environment and optional file.
	cfg, err := config.Load(configPath)
	if err != nil {
		return fmt.Errorf("load configuration: %w", err)
	}

	// Structured logger: JSON in production, text in development.
	level := slog.LevelInfo
	if cfg.IsDev() {
		level = slog.LevelDebug
	}
	var logHandler slog.Handler = slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: level})
	if cfg.Env == "production" {
		logHandler = slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: level})
	}
	slog.SetDefault(slog.New(logHandler))

	slog.Info("configuration loaded",
		"env", cfg.Env,
		"addr", cfg.Addr(),
		"notify_channel", cfg.NotifyChannel,
	)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Connect to PostgreSQL.
	db, err := database.Connect(cfg.DSN())
	if err != nil {
		return fmt.Errorf("connect database: %w", err)
	}
	defer db.Close()

	// Run pending migrations.
	if err := database.Migrate(db); err != nil {
		return fmt.Errorf("run migrations: %w", err)
	}

	// Seed sample data (rows that exist are left alone).
	if cfg.IsDev() || seed {
		if err := database.Seed(ctx, db, database.SeedAdmin{
			Email:    cfg.SeedAdminEmail,
			Password: cfg.SeedAdminPassword,
		}); err != nil {
			return fmt.Errorf("seed database: %w", err)
		}
	}

	// Connect to Valkey (sessions + response cache).
	valkeyClient, err := cache.ConnectValkey(ctx, cache.ValkeyConfig{
		Host:     cfg.ValkeyHost,
		Port:     cfg.ValkeyPort,
		Password: cfg.ValkeyPassword,
		DB:       cfg.ValkeyDB,
	})
	if err != nil {
		return fmt.Errorf("connect valkey: %w", err)
	}
	defer valkeyClient.Close()

	sessionStore := session.NewStore(valkeyClient, cfg.SessionSecure)
	responseCache := cache.NewResponseCache(valkeyClient, cfg.ResponseCacheTTL)

	// Initialize data stores and the blog service.
	accountStore := store.NewAccountStore(db)
	svc := blog.NewService(blog.Repositories{
		Posts:      store.NewPostStore(db),
		Categories: store.NewCategoryStore(db),
		History:    store.NewHistoryStore(db),
		Comments:   store.NewCommentStore(db),
		Accounts:   accountStore,
	}, blog.Options{
		Policy:  cfg.Policy,
		Timeout: cfg.StoreTimeout,
	})

	// Change notifications: one LISTEN connection feeds the hub, which
	// fans out to live feeds and the caches.
	hub := notify.NewHub(32)
	listener := notify.NewListener(cfg.DSN(), cfg.NotifyChannel, hub)
	go func() {
		if err := listener.Run(ctx); err != nil {
			slog.Error("change listener stopped", "error", err)
		}
	}()

	go responseCache.Watch(ctx, hub.Subscribe().C)
	go invalidateCategories(ctx, svc, hub.Subscribe(notify.TableCategories))

	// Create handler groups with their dependencies.
	live := handlers.NewLive(svc, hub, cfg.SyncDebounce)
	r := router.New(router.Deps{
		Actors:      identity.NewProvider(sessionStore, accountStore),
		Posts:       handlers.NewPosts(svc, responseCache),
		Categories:  handlers.NewCategories(svc, responseCache),
		Live:        live,
		Auth:        handlers.NewAuth(svc, sessionStore),
		Accounts:    handlers.NewAccounts(svc),
		CORSOrigins: cfg.CORSOrigins,
		RateLimit:   cfg.RateLimit,
	})

	// WriteTimeout stays zero: /live/posts streams for as long as the
	// client is connected.
	srv := &http.Server{
		Addr:              cfg.Addr(),
		Handler:           r,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       15 * time.Second,
		IdleTimeout:       120 * time.Second,
	}
	// Open event streams never go idle, so end them when shutdown begins.
	srv.RegisterOnShutdown(live.Close)

	errCh := make(chan error, 1)
	go func() {
		slog.Info("server starting", "addr", cfg.Addr())
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	// Graceful shutdown: wait for SIGINT or SIGTERM, then drain connections.
	select {
	case err := <-errCh:
		return fmt.Errorf("server failed: %w", err)
	case <-ctx.Done():
	}
	slog.Info("shutdown signal received")

	// Give active requests up to 30 seconds to complete.
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server forced to shutdown: %w", err)
	}

	slog.Info("server stopped gracefully")
	return nil
}

// invalidateCategories drops the service's category cache whenever the
// categories table changes or the listener resyncs.
func invalidateCategories(ctx context.Context, svc *blog.Service, sub *notify.Subscription) {
	defer sub.Close()
	for {
		select {
		case <-ctx.Done():
			return
		case _, ok := <-sub.C:
			if !ok {
				return
			}
			svc.InvalidateCategories()
		}
	}
}
