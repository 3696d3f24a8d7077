// Package cache provides Valkey (Redis-compatible) client initialization
// and a shared cache for public JSON responses.
package cache

import (
	"context"
	"fmt"
	"log/slog"
	"net"
	"time"

	"github.com/redis/go-redis/v9"
)

// defaultPingTimeout bounds the startup ping when ValkeyConfig leaves it zero.
const defaultPingTimeout = 5 * time.Second

// ValkeyConfig locates the Valkey server shared by sessions and the
// response cache.
type ValkeyConfig struct {
	Host     string
	Port     string
	Password string
	// DB selects the logical database, so several deployments (or the
	// test suite) can share one server.
	DB          int
	PingTimeout time.Duration
}

// Addr returns host:port, bracketing IPv6 hosts.
func (c ValkeyConfig) Addr() string {
	return net.JoinHostPort(c.Host, c.Port)
}

// ConnectValkey creates a client and pings it so a misconfigured server
// fails startup instead of the first request.
func ConnectValkey(ctx context.Context, cfg ValkeyConfig) (*redis.Client, error) {
	if cfg.DB < 0 {
		return nil, fmt.Errorf("valkey db %d: must not be negative", cfg.DB)
	}
	if cfg.PingTimeout <= 0 {
		cfg.PingTimeout = defaultPingTimeout
	}

	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Addr(),
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	ctx, cancel := context.WithTimeout(ctx, cfg.PingTimeout)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("valkey ping %s: %w", cfg.Addr(), err)
	}

	slog.Info("valkey connected", "addr", cfg.Addr(), "db", cfg.DB)
	return client, nil
}
