package store

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/gridline-ai/graphflow"
	backend "github.com/redis/go-redis/v9"
)

// RedisStore persists graphs and runs as JSON values in Redis.
type RedisStore struct {
	client *backend.Client
	prefix string
	ttl    time.Duration
}

// RedisOption configures a RedisStore.
type RedisOption func(*RedisStore)

// WithTTL sets an expiration on stored records. Zero means no expiration.
func WithTTL(ttl time.Duration) RedisOption {
	return func(s *RedisStore) {
		s.ttl = ttl
	}
}

// WithPrefix sets the key prefix for stored records.
func WithPrefix(prefix string) RedisOption {
	return func(s *RedisStore) {
		s.prefix = prefix
	}
}

// NewRedisStore creates a Redis store connected to the given address.
func NewRedisStore(address, password string, db int, opts ...RedisOption) *RedisStore {
	client := backend.NewClient(&backend.Options{
		Addr:     address,
		Password: password,
		DB:       db,
	})
	return NewRedisStoreFromClient(client, opts...)
}

// NewRedisStoreFromClient creates a Redis store from an existing client.
func NewRedisStoreFromClient(client *backend.Client, opts ...RedisOption) *RedisStore {
	store := &RedisStore{
		client: client,
		prefix: "graphflow:",
	}
	for _, opt := range opts {
		opt(store)
	}
	return store
}

func (s *RedisStore) graphKey(graphID string) string {
	return s.prefix + "graph:" + graphID
}

func (s *RedisStore) runKey(runID string) string {
	return s.prefix + "run:" + runID
}

func (s *RedisStore) SaveGraph(ctx context.Context, graph *graphflow.Graph) error {
	return s.set(ctx, s.graphKey(graph.GraphID), graph)
}

func (s *RedisStore) GetGraph(ctx context.Context, graphID string) (*graphflow.Graph, error) {
	var graph graphflow.Graph
	if err := s.get(ctx, s.graphKey(graphID), &graph); err != nil {
		return nil, err
	}
	return &graph, nil
}

func (s *RedisStore) SaveRun(ctx context.Context, run *graphflow.Run) error {
	return s.set(ctx, s.runKey(run.RunID), run)
}

func (s *RedisStore) GetRun(ctx context.Context, runID string) (*graphflow.Run, error) {
	var run graphflow.Run
	if err := s.get(ctx, s.runKey(runID), &run); err != nil {
		return nil, err
	}
	return &run, nil
}

func (s *RedisStore) set(ctx context.Context, key string, value any) error {
	data, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("failed to marshal record: %w", err)
	}
	if err := s.client.Set(ctx, key, data, s.ttl).Err(); err != nil {
		return fmt.Errorf("failed to save to redis: %w", err)
	}
	return nil
}

func (s *RedisStore) get(ctx context.Context, key string, out any) error {
	val, err := s.client.Get(ctx, key).Result()
	if err != nil {
		if err == backend.Nil {
			return ErrNotFound
		}
		return fmt.Errorf("failed to get from redis: %w", err)
	}
	if err := json.Unmarshal([]byte(val), out); err != nil {
		return fmt.Errorf("failed to unmarshal record: %w", err)
	}
	return nil
}

// Close closes the redis client.
func (s *RedisStore) Close() error {
	return s.client.Close()
}
