package redis

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/msomdec/village-rental/internal/domain"
)

const (
	defaultTimeout = 5 * time.Second
	keyPrefix      = "village:storage:"
)

// Config captures the settings for establishing a Redis connection.
type Config struct {
	Addr    string
	DB      int
	Timeout time.Duration
	// TTL expires idle client namespaces. Zero keeps keys forever.
	TTL time.Duration
}

// DB is a Redis-backed storage backend.
type DB struct {
	client *redis.Client
	ttl    time.Duration
}

// Connect initialises a Redis client and validates connectivity with a ping.
func Connect(ctx context.Context, cfg Config) (*DB, error) {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = defaultTimeout
	}

	client := redis.NewClient(&redis.Options{
		Addr: cfg.Addr,
		DB:   cfg.DB,
	})

	pingCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	if err := client.Ping(pingCtx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("redis ping: %w", err)
	}

	return &DB{client: client, ttl: cfg.TTL}, nil
}

// Migrate is a no-op; Redis needs no schema.
func (d *DB) Migrate(context.Context) error { return nil }

func (d *DB) Close() error { return d.client.Close() }

// Storage returns the client storage repository.
func (d *DB) Storage() *Storage {
	return &Storage{client: d.client, ttl: d.ttl}
}

// Storage implements domain.Storage with one Redis string per key.
type Storage struct {
	client *redis.Client
	ttl    time.Duration
}

func storageKey(namespace, key string) string {
	return keyPrefix + namespace + ":" + key
}

func (s *Storage) Get(ctx context.Context, namespace, key string) (string, error) {
	value, err := s.client.Get(ctx, storageKey(namespace, key)).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return "", domain.ErrNotFound
		}
		return "", fmt.Errorf("redis storage get: %w", err)
	}
	return value, nil
}

func (s *Storage) Set(ctx context.Context, namespace, key, value string) error {
	if err := s.client.Set(ctx, storageKey(namespace, key), value, s.ttl).Err(); err != nil {
		return fmt.Errorf("redis storage set: %w", err)
	}
	return nil
}

func (s *Storage) Delete(ctx context.Context, namespace string, keys ...string) error {
	if len(keys) == 0 {
		return nil
	}
	full := make([]string, len(keys))
	for i, k := range keys {
		full[i] = storageKey(namespace, k)
	}
	if err := s.client.Del(ctx, full...).Err(); err != nil {
		return fmt.Errorf("redis storage delete: %w", err)
	}
	return nil
}
