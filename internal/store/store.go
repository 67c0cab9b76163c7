package store

import (
	"context"
	"errors"
	"fmt"
)

// Backend names accepted by Open.
const (
	BackendMemory   = "memory"
	BackendRedis    = "redis"
	BackendPostgres = "postgres"
)

// ErrUnknownBackend is returned by Open for an unsupported backend name.
var ErrUnknownBackend = errors.New("unknown store backend")

// KeywordStore is a keyword -> subscriber-set document store. Union and
// remove are atomic per keyword; nothing spans several keywords.
type KeywordStore interface {
	Get(ctx context.Context, keyword string) ([]string, bool, error)
	UnionSubscriber(ctx context.Context, keyword, subscriberID string) error
	RemoveSubscriber(ctx context.Context, keyword, subscriberID string) error
	Close() error
}

// Options selects and configures a backend.
type Options struct {
	Backend     string
	DatabaseURL string
	RedisURL    string
	KeyPrefix   string
}

// Open connects to the configured backend. Postgres migrations are applied
// before it returns.
func Open(ctx context.Context, opts Options) (KeywordStore, error) {
	switch opts.Backend {
	case BackendMemory, "":
		return NewMemory(), nil

	case BackendRedis:
		rs, err := NewRedis(ctx, opts.RedisURL)
		if err != nil {
			return nil, err
		}
		return NewRedisKeywords(rs, opts.KeyPrefix), nil

	case BackendPostgres:
		pg, err := NewPostgres(ctx, opts.DatabaseURL)
		if err != nil {
			return nil, err
		}
		if err := pg.RunMigrations(ctx, Migrations()); err != nil {
			pg.Close()
			return nil, fmt.Errorf("migrating postgres: %w", err)
		}
		return pg, nil

	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownBackend, opts.Backend)
	}
}
