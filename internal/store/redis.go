package store

import (
	"context"
	"errors"
	"fmt"

	"github.com/redis/go-redis/v9"
)

// RedisMedium stores the whole collection as one string value.
// A single SET replaces it atomically.
type RedisMedium struct {
	rdb *redis.Client
	key string
}

// NewRedisMedium connects to redis at addr and pings it.
func NewRedisMedium(ctx context.Context, addr, key string) (*RedisMedium, error) {
	rdb := redis.NewClient(&redis.Options{
		Addr: addr,
	})
	if err := rdb.Ping(ctx).Err(); err != nil {
		rdb.Close()
		return nil, fmt.Errorf("failed to connect to redis: %w", err)
	}
	return &RedisMedium{rdb: rdb, key: key}, nil
}

func (m *RedisMedium) Init(ctx context.Context, empty []byte) error {
	return m.rdb.SetNX(ctx, m.key, empty, 0).Err()
}

func (m *RedisMedium) Load(ctx context.Context) ([]byte, error) {
	data, err := m.rdb.Get(ctx, m.key).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, ErrMissing
	}
	return data, err
}

func (m *RedisMedium) Save(ctx context.Context, data []byte) error {
	return m.rdb.Set(ctx, m.key, data, 0).Err()
}

func (m *RedisMedium) Close() error {
	return m.rdb.Close()
}
