package repository

import (
	"context"
	"errors"
	"fmt"
	"sort"

	"github.com/hugohenrick/warung-digital/internal/domain/storage"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// PostgresStore implementa storage.Store sobre a tabela kv_store
type PostgresStore struct {
	db *pgxpool.Pool
}

// NewPostgresStore cria uma nova instância de PostgresStore
func NewPostgresStore(db *pgxpool.Pool) *PostgresStore {
	return &PostgresStore{db: db}
}

// Get implementa storage.Store.Get
func (r *PostgresStore) Get(ctx context.Context, key string) ([]byte, error) {
	var value string
	err := r.db.QueryRow(ctx, `SELECT value FROM kv_store WHERE key = $1`, key).Scan(&value)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, storage.ErrNotFound
		}
		return nil, fmt.Errorf("erro ao buscar chave: %w", err)
	}
	return []byte(value), nil
}

// Set implementa storage.Store.Set
func (r *PostgresStore) Set(ctx context.Context, key string, value []byte) error {
	_, err := r.db.Exec(ctx, upsertSQL, key, string(value))
	if err != nil {
		return fmt.Errorf("erro ao gravar chave: %w", err)
	}
	return nil
}

// Remove implementa storage.Store.Remove
func (r *PostgresStore) Remove(ctx context.Context, key string) error {
	if _, err := r.db.Exec(ctx, `DELETE FROM kv_store WHERE key = $1`, key); err != nil {
		return fmt.Errorf("erro ao remover chave: %w", err)
	}
	return nil
}

// Update implementa storage.Store.Update.
// Cada chave é travada com pg_advisory_xact_lock em ordem, inclusive chaves ainda inexistentes.
func (r *PostgresStore) Update(ctx context.Context, keys []string, fn storage.UpdateFunc) error {
	sorted := append([]string(nil), keys...)
	sort.Strings(sorted)

	tx, err := r.db.Begin(ctx)
	if err != nil {
		return fmt.Errorf("erro ao iniciar transação: %w", err)
	}
	defer func() {
		// Rollback após Commit é no-op
		_ = tx.Rollback(ctx)
	}()

	for _, k := range sorted {
		if _, err := tx.Exec(ctx, `SELECT pg_advisory_xact_lock(hashtext($1))`, k); err != nil {
			return fmt.Errorf("erro ao travar chave %s: %w", k, err)
		}
	}

	rows, err := tx.Query(ctx, `SELECT key, value FROM kv_store WHERE key = ANY($1)`, sorted)
	if err != nil {
		return fmt.Errorf("erro ao ler chaves: %w", err)
	}
	current := make(map[string][]byte, len(sorted))
	for rows.Next() {
		var k, v string
		if err := rows.Scan(&k, &v); err != nil {
			rows.Close()
			return fmt.Errorf("erro ao ler chave: %w", err)
		}
		current[k] = []byte(v)
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return fmt.Errorf("erro ao ler chaves: %w", err)
	}

	writes, err := fn(current)
	if err != nil {
		return err
	}
	if err := storage.CheckWrites(keys, writes); err != nil {
		return err
	}

	for k, v := range writes {
		if v == nil {
			if _, err := tx.Exec(ctx, `DELETE FROM kv_store WHERE key = $1`, k); err != nil {
				return fmt.Errorf("erro ao remover chave %s: %w", k, err)
			}
			continue
		}
		if _, err := tx.Exec(ctx, upsertSQL, k, string(v)); err != nil {
			return fmt.Errorf("erro ao gravar chave %s: %w", k, err)
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("erro ao fazer commit: %w", err)
	}
	return nil
}

const upsertSQL = `
	INSERT INTO kv_store (key, value, version, updated_at)
	VALUES ($1, $2, 1, NOW())
	ON CONFLICT (key) DO UPDATE
	SET value = EXCLUDED.value, version = kv_store.version + 1, updated_at = NOW()`
