// Package cache keeps list query results between mutations.
//
// Every namespace has a generation counter that is part of each cache key.
// Invalidate bumps the counter, so all list pages cached under the previous
// generation become unreachable at once and expire on their own TTL.
package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"
)

type Store interface {
	Get(ctx context.Context, key string) ([]byte, bool, error)
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error
	Incr(ctx context.Context, key string) (int64, error)
	Counter(ctx context.Context, key string) (int64, error)
}

type Namespace struct {
	store  Store
	name   string
	ttl    time.Duration
	logger *slog.Logger
}

func NewNamespace(store Store, name string, ttl time.Duration, logger *slog.Logger) *Namespace {
	if logger == nil {
		logger = slog.Default()
	}
	return &Namespace{store: store, name: name, ttl: ttl, logger: logger}
}

func (n *Namespace) Name() string { return n.name }

func (n *Namespace) generationKey() string {
	return n.name + ":gen"
}

// Invalidate drops every cached entry of the namespace.
func (n *Namespace) Invalidate(ctx context.Context) error {
	if _, err := n.store.Incr(ctx, n.generationKey()); err != nil {
		return fmt.Errorf("invalidate %s: %w", n.name, err)
	}
	return nil
}

// Fetch returns the cached value for key or calls load and caches its result.
// Cache failures are logged and never fail the read. A load that races with
// Invalidate is stored under the old generation and is never served again.
func Fetch[T any](ctx context.Context, n *Namespace, key string, load func(context.Context) (T, error)) (T, error) {
	gen, err := n.store.Counter(ctx, n.generationKey())
	if err != nil {
		n.logger.WarnContext(ctx, "cache generation unavailable", slog.String("namespace", n.name), slog.Any("error", err))
		return load(ctx)
	}

	fullKey := fmt.Sprintf("%s:v%d:%s", n.name, gen, key)

	raw, ok, err := n.store.Get(ctx, fullKey)
	if err != nil {
		n.logger.WarnContext(ctx, "cache read failed", slog.String("key", fullKey), slog.Any("error", err))
	}
	if ok {
		var cached T
		if err := json.Unmarshal(raw, &cached); err == nil {
			return cached, nil
		}
		n.logger.WarnContext(ctx, "cache entry unreadable", slog.String("key", fullKey))
	}

	value, err := load(ctx)
	if err != nil {
		return value, err
	}

	encoded, err := json.Marshal(value)
	if err != nil {
		n.logger.WarnContext(ctx, "cache encode failed", slog.String("key", fullKey), slog.Any("error", err))
		return value, nil
	}

	if err := n.store.Set(ctx, fullKey, encoded, n.ttl); err != nil {
		n.logger.WarnContext(ctx, "cache write failed", slog.String("key", fullKey), slog.Any("error", err))
	}

	return value, nil
}
