package snapshot

import (
	"context"
	"encoding/json"
	"sort"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/tabkit/tabkit/pkg/errors"
)

// RedisConfig holds connection settings for the Redis store.
type RedisConfig struct {
	Addr     string
	Password string
	DB       int

	// Prefix namespaces snapshot keys within a shared instance.
	Prefix string

	// TTL expires snapshots automatically; zero keeps them forever.
	TTL time.Duration

	// Timeout bounds the initial connection test.
	Timeout time.Duration

	PoolSize     int
	MinIdleConns int
}

// DefaultRedisConfig returns settings for a local Redis instance.
func DefaultRedisConfig(addr string) RedisConfig {
	if addr == "" {
		addr = "localhost:6379"
	}
	return RedisConfig{
		Addr:         addr,
		Prefix:       "tabkit:snapshot:",
		TTL:          24 * time.Hour,
		Timeout:      5 * time.Second,
		PoolSize:     10,
		MinIdleConns: 2,
	}
}

// RedisStore keeps snapshots in Redis with optional expiry. Suited to
// short-lived session state shared between hosts.
type RedisStore struct {
	cfg    RedisConfig
	client *redis.Client
}

// NewRedisStore connects to Redis and verifies the connection.
func NewRedisStore(cfg RedisConfig) (*RedisStore, error) {
	if cfg.Prefix == "" {
		cfg.Prefix = "tabkit:snapshot:"
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 5 * time.Second
	}

	client := redis.NewClient(&redis.Options{
		Addr:         cfg.Addr,
		Password:     cfg.Password,
		DB:           cfg.DB,
		PoolSize:     cfg.PoolSize,
		MinIdleConns: cfg.MinIdleConns,
	})

	ctx, cancel := context.WithTimeout(context.Background(), cfg.Timeout)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, errors.Wrapf(err, errors.CodeSnapshot, "connect to redis at %s", cfg.Addr)
	}

	return &RedisStore{cfg: cfg, client: client}, nil
}

// Name identifies the store implementation.
func (s *RedisStore) Name() string {
	return "redis"
}

// Close releases the client connection pool.
func (s *RedisStore) Close() error {
	return s.client.Close()
}

func (s *RedisStore) key(id string) string {
	return s.cfg.Prefix + id
}

// Save stores the state under its prefixed id, applying the configured
// TTL.
func (s *RedisStore) Save(ctx context.Context, st *State) error {
	data, err := json.Marshal(st)
	if err != nil {
		return errors.Wrapf(err, errors.CodeSnapshot, "marshal snapshot %s", st.ID)
	}
	if err := s.client.Set(ctx, s.key(st.ID), data, s.cfg.TTL).Err(); err != nil {
		return errors.Wrapf(err, errors.CodeSnapshot, "store snapshot %s", st.ID)
	}
	return nil
}

// Load retrieves a snapshot by id.
func (s *RedisStore) Load(ctx context.Context, id string) (*State, error) {
	data, err := s.client.Get(ctx, s.key(id)).Bytes()
	if err == redis.Nil {
		return nil, errors.Newf(errors.CodeSnapshot, "snapshot not found: %s", id)
	}
	if err != nil {
		return nil, errors.Wrapf(err, errors.CodeSnapshot, "load snapshot %s", id)
	}

	var st State
	if err := json.Unmarshal(data, &st); err != nil {
		return nil, errors.Wrapf(err, errors.CodeSnapshot, "parse snapshot %s", id)
	}
	return &st, nil
}

// List scans the key prefix and returns all snapshots, newest first.
// Keys that fail to load or parse are skipped.
func (s *RedisStore) List(ctx context.Context) ([]*State, error) {
	var states []*State

	iter := s.client.Scan(ctx, 0, s.cfg.Prefix+"*", 100).Iterator()
	for iter.Next(ctx) {
		data, err := s.client.Get(ctx, iter.Val()).Bytes()
		if err != nil {
			continue
		}
		var st State
		if err := json.Unmarshal(data, &st); err != nil {
			continue
		}
		states = append(states, &st)
	}
	if err := iter.Err(); err != nil {
		return nil, errors.Wrap(err, errors.CodeSnapshot, "scan snapshot keys")
	}

	sort.Slice(states, func(i, j int) bool {
		return states[i].CreatedAt.After(states[j].CreatedAt)
	})
	return states, nil
}

// Delete removes a snapshot. Deleting a missing snapshot is not an
// error.
func (s *RedisStore) Delete(ctx context.Context, id string) error {
	if err := s.client.Del(ctx, s.key(id)).Err(); err != nil {
		return errors.Wrapf(err, errors.CodeSnapshot, "delete snapshot %s", id)
	}
	return nil
}

// Compile-time interface check
var _ Store = (*RedisStore)(nil)
