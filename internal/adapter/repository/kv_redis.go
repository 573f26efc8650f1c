package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/hugohenrick/warung-digital/internal/domain/storage"
	"github.com/redis/go-redis/v9"
)

// Número máximo de tentativas quando outra conexão altera uma chave observada
const redisMaxRetries = 25

var ErrRedisContention = errors.New("chaves alteradas concorrentemente, tente novamente")

// RedisStore implementa storage.Store sobre o Redis
type RedisStore struct {
	client *redis.Client
	prefix string
}

// NewRedisStore cria uma nova instância de RedisStore
func NewRedisStore(client *redis.Client, prefix string) *RedisStore {
	return &RedisStore{client: client, prefix: prefix}
}

// Get implementa storage.Store.Get
func (r *RedisStore) Get(ctx context.Context, key string) ([]byte, error) {
	data, err := r.client.Get(ctx, r.prefix+key).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, storage.ErrNotFound
		}
		return nil, fmt.Errorf("erro ao buscar chave: %w", err)
	}
	return data, nil
}

// Set implementa storage.Store.Set
func (r *RedisStore) Set(ctx context.Context, key string, value []byte) error {
	if err := r.client.Set(ctx, r.prefix+key, value, 0).Err(); err != nil {
		return fmt.Errorf("erro ao gravar chave: %w", err)
	}
	return nil
}

// Remove implementa storage.Store.Remove
func (r *RedisStore) Remove(ctx context.Context, key string) error {
	if err := r.client.Del(ctx, r.prefix+key).Err(); err != nil {
		return fmt.Errorf("erro ao remover chave: %w", err)
	}
	return nil
}

// Update implementa storage.Store.Update com WATCH/MULTI (otimista, com novas tentativas)
func (r *RedisStore) Update(ctx context.Context, keys []string, fn storage.UpdateFunc) error {
	full := make([]string, len(keys))
	for i, k := range keys {
		full[i] = r.prefix + k
	}

	txf := func(tx *redis.Tx) error {
		values, err := tx.MGet(ctx, full...).Result()
		if err != nil {
			return fmt.Errorf("erro ao ler chaves: %w", err)
		}

		current := make(map[string][]byte, len(keys))
		for i, v := range values {
			if s, ok := v.(string); ok {
				current[keys[i]] = []byte(s)
			}
		}

		writes, err := fn(current)
		if err != nil {
			return err
		}
		if err := storage.CheckWrites(keys, writes); err != nil {
			return err
		}
		if len(writes) == 0 {
			return nil
		}

		_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			for k, v := range writes {
				if v == nil {
					pipe.Del(ctx, r.prefix+k)
					continue
				}
				pipe.Set(ctx, r.prefix+k, v, 0)
			}
			return nil
		})
		return err
	}

	for i := 0; i < redisMaxRetries; i++ {
		err := r.client.Watch(ctx, txf, full...)
		if err == nil {
			return nil
		}
		if errors.Is(err, redis.TxFailedErr) {
			continue
		}
		return err
	}
	return ErrRedisContention
}
