// Package postgres implements the artifact store on PostgreSQL. All values
// live in a single artifacts(key, value, updated_at) table; the schema is
// managed by goose migrations under migrations/.
package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/saifaddin/tadabbur-backend/internal/config"
	"github.com/saifaddin/tadabbur-backend/internal/domain"
)

const table = "artifacts"

// qb builds queries with PostgreSQL $n placeholders.
var qb = squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar)

// Store is a PostgreSQL-backed key-value store.
type Store struct {
	pool *pgxpool.Pool
}

// New connects to PostgreSQL and returns the store.
func New(ctx context.Context, cfg config.DatabaseConfig) (*Store, error) {
	pool, err := NewPool(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("postgres store: %w", err)
	}
	return NewWithPool(pool), nil
}

// NewWithPool wraps an existing pool. The caller owns migrations.
func NewWithPool(pool *pgxpool.Pool) *Store {
	return &Store{pool: pool}
}

// Get returns the value stored under key.
func (s *Store) Get(ctx context.Context, key string) ([]byte, error) {
	sql, args, err := qb.Select("value").From(table).Where(squirrel.Eq{"key": key}).ToSql()
	if err != nil {
		return nil, fmt.Errorf("postgres get %s: %w", key, err)
	}

	var value []byte
	if err := s.pool.QueryRow(ctx, sql, args...).Scan(&value); err != nil {
		return nil, mapError(err, "get", key)
	}
	return value, nil
}

// Put stores value under key, overwriting any previous value.
func (s *Store) Put(ctx context.Context, key string, value []byte) error {
	sql, args, err := qb.Insert(table).
		Columns("key", "value").
		Values(key, value).
		Suffix("ON CONFLICT (key) DO UPDATE SET value = EXCLUDED.value, updated_at = now()").
		ToSql()
	if err != nil {
		return fmt.Errorf("postgres put %s: %w", key, err)
	}

	if _, err := s.pool.Exec(ctx, sql, args...); err != nil {
		return mapError(err, "put", key)
	}
	return nil
}

// Append appends value to the bytes under key, creating the row if absent.
func (s *Store) Append(ctx context.Context, key string, value []byte) error {
	sql, args, err := qb.Insert(table).
		Columns("key", "value").
		Values(key, value).
		Suffix("ON CONFLICT (key) DO UPDATE SET value = artifacts.value || EXCLUDED.value, updated_at = now()").
		ToSql()
	if err != nil {
		return fmt.Errorf("postgres append %s: %w", key, err)
	}

	if _, err := s.pool.Exec(ctx, sql, args...); err != nil {
		return mapError(err, "append", key)
	}
	return nil
}

// Delete removes key. Deleting an absent key is not an error.
func (s *Store) Delete(ctx context.Context, key string) error {
	sql, args, err := qb.Delete(table).Where(squirrel.Eq{"key": key}).ToSql()
	if err != nil {
		return fmt.Errorf("postgres delete %s: %w", key, err)
	}

	if _, err := s.pool.Exec(ctx, sql, args...); err != nil {
		return mapError(err, "delete", key)
	}
	return nil
}

// Exists reports whether key is present.
func (s *Store) Exists(ctx context.Context, key string) (bool, error) {
	sql, args, err := qb.Select("1").From(table).Where(squirrel.Eq{"key": key}).ToSql()
	if err != nil {
		return false, fmt.Errorf("postgres exists %s: %w", key, err)
	}

	var one int
	err = s.pool.QueryRow(ctx, sql, args...).Scan(&one)
	if errors.Is(err, pgx.ErrNoRows) {
		return false, nil
	}
	if err != nil {
		return false, mapError(err, "exists", key)
	}
	return true, nil
}

// List returns all keys with the given prefix in lexicographic order.
// starts_with avoids treating LIKE metacharacters in the prefix
// (the checkpoint prefix contains "_") as wildcards.
func (s *Store) List(ctx context.Context, prefix string) ([]string, error) {
	sql, args, err := qb.Select("key").From(table).
		Where(squirrel.Expr("starts_with(key, ?)", prefix)).
		OrderBy("key").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("postgres list %s: %w", prefix, err)
	}

	rows, err := s.pool.Query(ctx, sql, args...)
	if err != nil {
		return nil, mapError(err, "list", prefix)
	}
	defer rows.Close()

	var keys []string
	for rows.Next() {
		var key string
		if err := rows.Scan(&key); err != nil {
			return nil, fmt.Errorf("postgres list %s: scan: %w", prefix, err)
		}
		keys = append(keys, key)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("postgres list %s: %w", prefix, err)
	}
	return keys, nil
}

// Close releases the underlying pool.
func (s *Store) Close() error {
	s.pool.Close()
	return nil
}

// mapError converts pgx errors to domain errors.
// context.DeadlineExceeded and context.Canceled pass through unmapped.
func mapError(err error, op, key string) error {
	if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled) {
		return fmt.Errorf("postgres %s %s: %w", op, key, err)
	}
	if errors.Is(err, pgx.ErrNoRows) {
		return fmt.Errorf("postgres %s %s: %w", op, key, domain.ErrNotFound)
	}
	return fmt.Errorf("postgres %s %s: %w", op, key, err)
}
