package persistence

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// RedisSessionStore is a Redis-based SessionStore for distributed
// deployments. Snapshots are stored as JSON strings under a key prefix, with
// a set indexing the stored session IDs.
type RedisSessionStore struct {
	client    *redis.Client
	keyPrefix string
	ttl       time.Duration
}

// NewRedisSessionStore connects to Redis and verifies the connection.
func NewRedisSessionStore(cfg RedisStoreConfig) (*RedisSessionStore, error) {
	client := redis.NewClient(&redis.Options{
		Addr:         cfg.Addr,
		Password:     cfg.Password,
		DB:           cfg.DB,
		PoolSize:     cfg.PoolSize,
		MinIdleConns: cfg.MinIdleConns,
	})

	// Test connection
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}

	keyPrefix := cfg.KeyPrefix
	if keyPrefix == "" {
		keyPrefix = "swarmflow:session:"
	}

	return &RedisSessionStore{
		client:    client,
		keyPrefix: keyPrefix,
		ttl:       cfg.SnapshotTTL,
	}, nil
}

// NewRedisSessionStoreFromClient wraps an existing client; tests use this
// with miniredis.
func NewRedisSessionStoreFromClient(client *redis.Client, keyPrefix string, ttl time.Duration) *RedisSessionStore {
	if keyPrefix == "" {
		keyPrefix = "swarmflow:session:"
	}
	return &RedisSessionStore{client: client, keyPrefix: keyPrefix, ttl: ttl}
}

func (s *RedisSessionStore) snapshotKey(sessionID string) string {
	return s.keyPrefix + "data:" + sessionID
}

func (s *RedisSessionStore) indexKey() string {
	return s.keyPrefix + "all"
}

// Save implements SessionStore.
func (s *RedisSessionStore) Save(ctx context.Context, snap *Snapshot) error {
	if snap == nil || snap.SessionID == "" {
		return ErrInvalidInput
	}
	data, err := json.Marshal(snap)
	if err != nil {
		return fmt.Errorf("failed to marshal snapshot: %w", err)
	}

	pipe := s.client.Pipeline()
	pipe.Set(ctx, s.snapshotKey(snap.SessionID), data, s.ttl)
	pipe.SAdd(ctx, s.indexKey(), snap.SessionID)
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("failed to save snapshot: %w", err)
	}
	return nil
}

// Load implements SessionStore.
func (s *RedisSessionStore) Load(ctx context.Context, sessionID string) (*Snapshot, error) {
	data, err := s.client.Get(ctx, s.snapshotKey(sessionID)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to load snapshot: %w", err)
	}
	var snap Snapshot
	if err := json.Unmarshal(data, &snap); err != nil {
		return nil, fmt.Errorf("failed to unmarshal snapshot: %w", err)
	}
	return &snap, nil
}

// Delete implements SessionStore.
func (s *RedisSessionStore) Delete(ctx context.Context, sessionID string) error {
	pipe := s.client.Pipeline()
	pipe.Del(ctx, s.snapshotKey(sessionID))
	pipe.SRem(ctx, s.indexKey(), sessionID)
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("failed to delete snapshot: %w", err)
	}
	return nil
}

// List implements SessionStore.
func (s *RedisSessionStore) List(ctx context.Context) ([]string, error) {
	ids, err := s.client.SMembers(ctx, s.indexKey()).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to list sessions: %w", err)
	}
	return ids, nil
}

// Ping checks if the store is healthy
func (s *RedisSessionStore) Ping(ctx context.Context) error {
	return s.client.Ping(ctx).Err()
}

// Close implements SessionStore.
func (s *RedisSessionStore) Close() error {
	return s.client.Close()
}
