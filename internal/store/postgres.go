package store

import (
	"context"
	"errors"
	"fmt"

	"github.com/Harshitk-cp/relgraph/internal/domain"
	"github.com/Harshitk-cp/relgraph/migrations"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/jackc/pgx/v5/stdlib"
	"github.com/pressly/goose/v3"
	"go.uber.org/zap"
)

// DBPool is the subset of *pgxpool.Pool the Postgres store uses, so tests can
// hand in a mock.
type DBPool interface {
	Ping(ctx context.Context) error
	Begin(ctx context.Context) (pgx.Tx, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
}

type PostgresStore struct {
	db  DBPool
	log *zap.Logger
	// release closes the pool when the store opened it itself.
	release func()
}

// NewPostgresStore verifies the connection and returns the store.
func NewPostgresStore(ctx context.Context, db DBPool, logger *zap.Logger) (*PostgresStore, error) {
	if err := db.Ping(ctx); err != nil {
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}
	return &PostgresStore{db: db, log: logger.Named("postgres_store")}, nil
}

const sqlInsertEdge = `INSERT INTO relationship_edges
	(user_id, subject_key, subject_name, relation_kind, relation_name, relation_gender,
	 relation_key, category, object_key, object_name, inverse)
	VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
	ON CONFLICT (user_id, subject_key, relation_key, object_key) DO NOTHING`

const sqlSelectEdges = `SELECT id, user_id, subject_key, subject_name, relation_kind, relation_name,
	relation_gender, category, object_key, object_name, inverse, created_at
	FROM relationship_edges`

func (s *PostgresStore) AddEdges(ctx context.Context, userID string, edges []domain.Edge) (int, error) {
	if len(edges) == 0 {
		return 0, nil
	}

	tx, err := s.db.Begin(ctx)
	if err != nil {
		return 0, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() {
		if rbErr := tx.Rollback(ctx); rbErr != nil && !errors.Is(rbErr, pgx.ErrTxClosed) {
			s.log.Error("failed to rollback transaction", zap.Error(rbErr))
		}
	}()

	added := 0
	for _, e := range edges {
		tag, err := tx.Exec(ctx, sqlInsertEdge,
			userID, e.Subject.Key, e.Subject.Name,
			string(e.Relation.Kind), e.Relation.Name, string(e.Relation.Gender),
			e.Relation.Key(), string(e.Category), e.Object.Key, e.Object.Name, e.Inverse,
		)
		if err != nil {
			return 0, fmt.Errorf("failed to insert edge: %w", err)
		}
		added += int(tag.RowsAffected())
	}

	if err := tx.Commit(ctx); err != nil {
		return 0, fmt.Errorf("failed to commit transaction: %w", err)
	}
	return added, nil
}

func (s *PostgresStore) queryEdges(ctx context.Context, sql string, args ...any) ([]domain.Edge, error) {
	rows, err := s.db.Query(ctx, sql, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var edges []domain.Edge
	for rows.Next() {
		var (
			e                      domain.Edge
			kind, gender, category string
		)
		if err := rows.Scan(&e.Seq, &e.UserID, &e.Subject.Key, &e.Subject.Name,
			&kind, &e.Relation.Name, &gender, &category,
			&e.Object.Key, &e.Object.Name, &e.Inverse, &e.CreatedAt); err != nil {
			return nil, err
		}
		e.Relation.Kind = domain.RelationKind(kind)
		e.Relation.Gender = domain.Gender(gender)
		e.Category = domain.Category(category)
		edges = append(edges, e)
	}
	return edges, rows.Err()
}

func (s *PostgresStore) GetEdges(ctx context.Context, userID string, subjectKey string) ([]domain.Edge, error) {
	return s.queryEdges(ctx, sqlSelectEdges+` WHERE user_id = $1 AND subject_key = $2 ORDER BY id`, userID, subjectKey)
}

func (s *PostgresStore) GetAllEdges(ctx context.Context, userID string) ([]domain.Edge, error) {
	return s.queryEdges(ctx, sqlSelectEdges+` WHERE user_id = $1 ORDER BY id`, userID)
}

func (s *PostgresStore) HasEdge(ctx context.Context, userID string, e domain.Edge) (bool, error) {
	var exists bool
	err := s.db.QueryRow(ctx,
		`SELECT EXISTS (SELECT 1 FROM relationship_edges
		 WHERE user_id = $1 AND subject_key = $2 AND relation_key = $3 AND object_key = $4)`,
		userID, e.Subject.Key, e.Relation.Key(), e.Object.Key,
	).Scan(&exists)
	if err != nil {
		return false, err
	}
	return exists, nil
}

func (s *PostgresStore) Reset(ctx context.Context, userID string) (int, error) {
	tag, err := s.db.Exec(ctx, `DELETE FROM relationship_edges WHERE user_id = $1`, userID)
	if err != nil {
		return 0, err
	}
	return int(tag.RowsAffected()), nil
}

func (s *PostgresStore) ListUserIDs(ctx context.Context) ([]string, error) {
	rows, err := s.db.Query(ctx, `SELECT DISTINCT user_id FROM relationship_edges ORDER BY user_id`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}

func (s *PostgresStore) Ping(ctx context.Context) error {
	return s.db.Ping(ctx)
}

// Close releases the pool only if Open created it.
func (s *PostgresStore) Close() error {
	if s.release != nil {
		s.release()
		s.release = nil
	}
	return nil
}

// Migrate applies the embedded goose migrations through pool.
func Migrate(ctx context.Context, pool *pgxpool.Pool, logger *zap.Logger) error {
	logger.Info("running database migrations")

	goose.SetBaseFS(migrations.FS)
	if err := goose.SetDialect("postgres"); err != nil {
		return fmt.Errorf("failed to set dialect: %w", err)
	}

	sqlDB := stdlib.OpenDBFromPool(pool)
	defer sqlDB.Close()

	if err := goose.UpContext(ctx, sqlDB, "."); err != nil {
		return fmt.Errorf("failed to run migrations: %w", err)
	}

	logger.Info("migrations completed successfully")
	return nil
}
