package store

import (
	"context"
	"fmt"

	"github.com/Harshitk-cp/relgraph/internal/domain"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"
)

const (
	BackendMemory   = "memory"
	BackendBadger   = "badger"
	BackendPostgres = "postgres"
)

type BackendOptions struct {
	Kind        string
	DatabaseURL string
	BadgerDir   string
	// Migrate applies pending migrations when the Postgres backend opens.
	Migrate bool
}

// Open builds the edge store named by opts.Kind.
func Open(ctx context.Context, opts BackendOptions, logger *zap.Logger) (domain.EdgeStore, error) {
	switch opts.Kind {
	case "", BackendMemory:
		return NewMemoryStore(), nil

	case BackendBadger:
		if opts.BadgerDir == "" {
			return nil, fmt.Errorf("badger backend needs a data directory")
		}
		return NewBadgerStore(BadgerOptions{Dir: opts.BadgerDir, Logger: logger})

	case BackendPostgres:
		if opts.DatabaseURL == "" {
			return nil, fmt.Errorf("postgres backend needs DATABASE_URL")
		}
		pool, err := pgxpool.New(ctx, opts.DatabaseURL)
		if err != nil {
			return nil, fmt.Errorf("failed to create pool: %w", err)
		}
		if opts.Migrate {
			if err := Migrate(ctx, pool, logger); err != nil {
				pool.Close()
				return nil, err
			}
		}
		s, err := NewPostgresStore(ctx, pool, logger)
		if err != nil {
			pool.Close()
			return nil, err
		}
		s.release = pool.Close
		return s, nil
	}
	return nil, fmt.Errorf("unknown graph store %q", opts.Kind)
}
