package kv

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// ValkeyStore implements Store using Valkey/Redis as the backend.
type ValkeyStore struct {
	client redis.UniversalClient
}

// ValkeyConfig holds configuration for connecting to Valkey.
type ValkeyConfig struct {
	Addrs      []string      // host:port, or the sentinel addresses when MasterName is set
	MasterName string        // sentinel master group; empty for a single node
	Password   string        // optional
	DB         int           // database number
	Timeout    time.Duration // dial, read and write timeout
}

// NewValkeyStore creates a new ValkeyStore with the given configuration.
// A non-empty MasterName switches to sentinel discovery of the current
// primary.
func NewValkeyStore(cfg ValkeyConfig) (*ValkeyStore, error) {
	if len(cfg.Addrs) == 0 {
		return nil, errors.New("kv: at least one address is required")
	}
	if len(cfg.Addrs) > 1 && cfg.MasterName == "" {
		return nil, errors.New("kv: multiple addresses require a sentinel master name")
	}

	client := redis.NewUniversalClient(&redis.UniversalOptions{
		Addrs:        cfg.Addrs,
		MasterName:   cfg.MasterName,
		Password:     cfg.Password,
		DB:           cfg.DB,
		DialTimeout:  cfg.Timeout,
		ReadTimeout:  cfg.Timeout,
		WriteTimeout: cfg.Timeout,
	})

	// Test connection
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 5 * time.Second
	}
	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("kv: ping %v: %w", cfg.Addrs, err)
	}

	return &ValkeyStore{client: client}, nil
}

// NewValkeyStoreFromClient wraps an already configured client. The store
// takes ownership and closes it on Close.
func NewValkeyStoreFromClient(client redis.UniversalClient) *ValkeyStore {
	return &ValkeyStore{client: client}
}

// Set stores a value with the given key and TTL.
func (s *ValkeyStore) Set(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	return s.client.Set(ctx, key, value, ttl).Err()
}

// Get retrieves a value by key.
func (s *ValkeyStore) Get(ctx context.Context, key string) ([]byte, error) {
	return bytesOf(s.client.Get(ctx, key))
}

// Replace runs GET and SET XX EX inside one MULTI/EXEC block.
func (s *ValkeyStore) Replace(ctx context.Context, key string, value []byte, ttl time.Duration) ([]byte, error) {
	var prev *redis.StringCmd
	_, err := s.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		prev = pipe.Get(ctx, key)
		pipe.SetArgs(ctx, key, value, redis.SetArgs{Mode: "XX", TTL: ttl})
		return nil
	})
	// A missing key makes both GET and SET XX reply nil; that is not a failure.
	if err != nil && !errors.Is(err, redis.Nil) {
		return nil, err
	}
	return bytesOf(prev)
}

// Take runs GET and DEL inside one MULTI/EXEC block.
func (s *ValkeyStore) Take(ctx context.Context, key string) ([]byte, error) {
	var prev *redis.StringCmd
	_, err := s.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		prev = pipe.Get(ctx, key)
		pipe.Del(ctx, key)
		return nil
	})
	if err != nil && !errors.Is(err, redis.Nil) {
		return nil, err
	}
	return bytesOf(prev)
}

// Delete removes a key.
func (s *ValkeyStore) Delete(ctx context.Context, key string) error {
	return s.client.Del(ctx, key).Err()
}

// Ping checks the connection to Valkey.
func (s *ValkeyStore) Ping(ctx context.Context) error {
	return s.client.Ping(ctx).Err()
}

// Close closes the connection to Valkey.
func (s *ValkeyStore) Close() error {
	return s.client.Close()
}

func bytesOf(cmd *redis.StringCmd) ([]byte, error) {
	val, err := cmd.Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return val, nil
}

// Ensure ValkeyStore implements Store.
var _ Store = (*ValkeyStore)(nil)
