// Package repomanager picks and wires the credential store backend.
package repomanager

import (
	"context"
	"strings"

	"github.com/faithchat/relay/internal/server/repositories/users"
)

// RepositoryManager owns the storage backend for the process lifetime.
type RepositoryManager interface {
	RunMigrations(ctx context.Context) error
	Users() users.Repository
	Close() error
}

// New returns the in-memory manager for an empty DSN or "memory", and a
// PostgreSQL manager otherwise.
func New(ctx context.Context, dsn string) (RepositoryManager, error) {
	dsn = strings.TrimSpace(dsn)
	if dsn == "" || strings.EqualFold(dsn, "memory") {
		return NewInMemoryRepositoryManager(), nil
	}
	return NewPostgresRepositoryManager(ctx, dsn)
}
