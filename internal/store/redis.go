package store

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/traitenum/traitenum/internal/model"
)

// RedisStore keeps models under prefixed redis keys
type RedisStore struct {
	client *redis.Client
	prefix string
}

// RedisConfig holds Redis-specific configuration
type RedisConfig struct {
	// Addr is the Redis server address (host:port)
	Addr string
	// Password is the Redis password (optional)
	Password string
	// DB is the Redis database number
	DB int
	// Prefix is prepended to all model keys
	Prefix string
}

// DefaultRedisConfig returns a default Redis configuration
func DefaultRedisConfig() RedisConfig {
	return RedisConfig{
		Addr:   "localhost:6379",
		DB:     0,
		Prefix: "traitenum:model:",
	}
}

// NewRedisStoreWithConfig connects to Redis and checks the connection
func NewRedisStoreWithConfig(config RedisConfig) (*RedisStore, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     config.Addr,
		Password: config.Password,
		DB:       config.DB,
	})

	// Test connection
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, err
	}

	return NewRedisStoreWithClient(client, config.Prefix), nil
}

// NewRedisStoreWithClient creates a store over an existing client
func NewRedisStoreWithClient(client *redis.Client, prefix string) *RedisStore {
	return &RedisStore{client: client, prefix: prefix}
}

func (r *RedisStore) key(id model.Identifier) string {
	return r.prefix + Key(id)
}

// Put stores the model of id without expiry
func (r *RedisStore) Put(ctx context.Context, id model.Identifier, data []byte) error {
	if err := r.client.Set(ctx, r.key(id), data, 0).Err(); err != nil {
		return fmt.Errorf("failed to store model %s: %w", id, err)
	}
	return nil
}

// Get retrieves the model of id
func (r *RedisStore) Get(ctx context.Context, id model.Identifier) ([]byte, error) {
	value, err := r.client.Get(ctx, r.key(id)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, ErrNotFound{ID: id}
		}
		return nil, fmt.Errorf("failed to get model %s: %w", id, err)
	}
	return value, nil
}

// List scans every key under the prefix
func (r *RedisStore) List(ctx context.Context) ([]model.Identifier, error) {
	ids := make([]model.Identifier, 0)
	iter := r.client.Scan(ctx, 0, r.prefix+"*", 0).Iterator()
	for iter.Next(ctx) {
		id, err := ParseKey(strings.TrimPrefix(iter.Val(), r.prefix))
		if err != nil {
			continue
		}
		ids = append(ids, id)
	}
	if err := iter.Err(); err != nil {
		return nil, fmt.Errorf("failed to list models: %w", err)
	}
	sortIdentifiers(ids)
	return ids, nil
}

// Delete removes the model of id
func (r *RedisStore) Delete(ctx context.Context, id model.Identifier) error {
	return r.client.Del(ctx, r.key(id)).Err()
}

// Close closes the Redis connection
func (r *RedisStore) Close() error {
	return r.client.Close()
}
