// Package store wires repository implementations to concrete backends.
// Adapters self-register from their init(), so binaries pick backends by
// blank-importing the ones they ship with.
package store

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/brouclean/helloauth/internal/domain/repository"
)

// Store groups the repositories of one backend.
type Store interface {
	Apps() repository.AppRepository
	Users() repository.UserRepository

	// Migrate creates or upgrades the schema. No-op for backends without
	// one.
	Migrate(ctx context.Context) error

	Ping(ctx context.Context) error
	Close() error
}

// Config selects and parameterizes a backend.
type Config struct {
	Driver          string // "postgres" | "memory"
	DSN             string
	MaxConns        int
	ConnMaxLifetime time.Duration
}

// Adapter is implemented by backend packages.
type Adapter interface {
	Name() string
	Open(ctx context.Context, cfg Config) (Store, error)
}

var adapters = map[string]Adapter{}

// RegisterAdapter installs an adapter. Called from adapter init().
func RegisterAdapter(a Adapter) {
	adapters[strings.ToLower(a.Name())] = a
}

// Open builds the configured backend.
func Open(ctx context.Context, cfg Config) (Store, error) {
	a, ok := adapters[strings.ToLower(cfg.Driver)]
	if !ok {
		return nil, fmt.Errorf("store: unknown driver %q (adapter not linked in?)", cfg.Driver)
	}
	return a.Open(ctx, cfg)
}
