package overlay

import (
	"context"
	"errors"
	"fmt"

	"github.com/go-redis/redis/v8"
)

// Store is a flat key/value store holding JSON documents. Get reports
// found=false for a missing key. Update applies fn to the current value and
// stores its result atomically; an error from fn aborts the write and is
// returned unchanged.
type Store interface {
	Get(ctx context.Context, key string) (value []byte, found bool, err error)
	Update(ctx context.Context, key string, fn func(value []byte, found bool) ([]byte, error)) error
}

// maxTxRetries bounds the optimistic retries of Update.
const maxTxRetries = 10

// RedisStore keeps overlay documents as plain Redis string values with no
// expiry.
type RedisStore struct {
	client *redis.Client
}

// NewRedisStore creates a store for the Redis server at addr.
func NewRedisStore(addr string, db int) *RedisStore {
	return &RedisStore{
		client: redis.NewClient(&redis.Options{
			Addr: addr,
			DB:   db,
		}),
	}
}

// Ping tests the connection.
func (s *RedisStore) Ping(ctx context.Context) error {
	return s.client.Ping(ctx).Err()
}

// Close closes the connection.
func (s *RedisStore) Close() error {
	return s.client.Close()
}

// Get reads a key.
func (s *RedisStore) Get(ctx context.Context, key string) ([]byte, bool, error) {
	val, err := s.client.Get(ctx, key).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}
	return val, true, nil
}

// Update watches key, reads it and writes fn's result in a MULTI/EXEC
// block. The transaction is retried when another client changes key in
// between.
func (s *RedisStore) Update(ctx context.Context, key string, fn func(value []byte, found bool) ([]byte, error)) error {
	txf := func(tx *redis.Tx) error {
		val, err := tx.Get(ctx, key).Bytes()
		found := true
		if errors.Is(err, redis.Nil) {
			found, err = false, nil
		}
		if err != nil {
			return err
		}
		next, err := fn(val, found)
		if err != nil {
			return err
		}
		_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			pipe.Set(ctx, key, next, 0)
			return nil
		})
		return err
	}

	for i := 0; i < maxTxRetries; i++ {
		err := s.client.Watch(ctx, txf, key)
		if !errors.Is(err, redis.TxFailedErr) {
			return err
		}
	}
	return fmt.Errorf("updating %s: %w", key, redis.TxFailedErr)
}
