package notify

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/sethvargo/go-retry"
)

// Listener holds one dedicated Postgres connection that LISTENs on a
// channel and publishes decoded events to a Hub.
type Listener struct {
	dsn     string
	channel string
	hub     *Hub

	// MinBackoff and MaxBackoff bound the reconnect delay.
	MinBackoff time.Duration
	MaxBackoff time.Duration
}

// NewListener creates a listener for channel.
func NewListener(dsn, channel string, hub *Hub) *Listener {
	return &Listener{
		dsn:        dsn,
		channel:    channel,
		hub:        hub,
		MinBackoff: 500 * time.Millisecond,
		MaxBackoff: 30 * time.Second,
	}
}

// Run listens until ctx is cancelled, reconnecting with capped
// exponential backoff whenever the connection fails. Every successful
// (re)connect publishes a resync event.
func (l *Listener) Run(ctx context.Context) error {
	for {
		conn, err := l.connect(ctx)
		if err != nil {
			if ctx.Err() != nil {
				return nil
			}
			return err
		}

		slog.Info("notification listener connected", "channel", l.channel)
		l.hub.Publish(Event{Op: OpResync})

		err = l.consume(ctx, conn)
		conn.Close(context.Background())
		if ctx.Err() != nil {
			return nil
		}
		slog.Warn("notification listener disconnected", "channel", l.channel, "error", err)
	}
}

func (l *Listener) connect(ctx context.Context) (*pgx.Conn, error) {
	backoff := retry.WithCappedDuration(l.MaxBackoff, retry.NewExponential(l.MinBackoff))
	backoff = retry.WithJitterPercent(10, backoff)

	var conn *pgx.Conn
	err := retry.Do(ctx, backoff, func(ctx context.Context) error {
		c, err := pgx.Connect(ctx, l.dsn)
		if err != nil {
			slog.Warn("notification listener connect failed", "error", err)
			return retry.RetryableError(err)
		}
		if _, err := c.Exec(ctx, "LISTEN "+pgx.Identifier{l.channel}.Sanitize()); err != nil {
			c.Close(context.Background())
			slog.Warn("notification listener LISTEN failed", "channel", l.channel, "error", err)
			return retry.RetryableError(err)
		}
		conn = c
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("listen %s: %w", l.channel, err)
	}
	return conn, nil
}

func (l *Listener) consume(ctx context.Context, conn *pgx.Conn) error {
	for {
		n, err := conn.WaitForNotification(ctx)
		if err != nil {
			return fmt.Errorf("wait for notification: %w", err)
		}
		e, err := ParseEvent(n.Payload)
		if err != nil {
			slog.Warn("notification payload ignored", "channel", n.Channel, "error", err)
			continue
		}
		l.hub.Publish(e)
	}
}
