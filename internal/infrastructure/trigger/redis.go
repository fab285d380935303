package trigger

import (
	"context"
	"log/slog"
	"strings"

	"github.com/redis/go-redis/v9"
)

// RedisTrigger listens on a pub/sub channel for feed URLs and hands them
// to the pipeline for on-demand, single-feed processing.
type RedisTrigger struct {
	client  *redis.Client
	channel string
	logger  *slog.Logger

	sub *redis.PubSub
}

// NewRedisTrigger wires a Redis client and the channel to subscribe on.
func NewRedisTrigger(client *redis.Client, channel string, logger *slog.Logger) *RedisTrigger {
	return &RedisTrigger{client: client, channel: channel, logger: logger}
}

// Listen subscribes and dispatches each published feed URL to the handler
// in a background goroutine until the context is cancelled or Close is
// called. Blank payloads are ignored.
func (t *RedisTrigger) Listen(ctx context.Context, handler func(context.Context, string)) error {
	if handler == nil {
		return nil
	}

	sub := t.client.Subscribe(ctx, t.channel)
	if _, err := sub.Receive(ctx); err != nil {
		_ = sub.Close()
		return err
	}
	t.sub = sub

	go func() {
		for {
			select {
			case <-ctx.Done():
				return
			case msg, ok := <-sub.Channel():
				if !ok {
					return
				}
				feedURL := strings.TrimSpace(msg.Payload)
				if feedURL == "" {
					continue
				}
				t.debug("manual feed trigger received", "feed_url", feedURL)
				handler(ctx, feedURL)
			}
		}
	}()

	return nil
}

// Close tears down the subscription.
func (t *RedisTrigger) Close() error {
	if t.sub == nil {
		return nil
	}
	err := t.sub.Close()
	t.sub = nil
	return err
}

func (t *RedisTrigger) debug(msg string, args ...any) {
	if t.logger != nil {
		t.logger.Debug(msg, args...)
	}
}
