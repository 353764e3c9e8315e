package archive

import (
	"context"
	"errors"
	"fmt"

	"github.com/redis/go-redis/v9"

	"github.com/couchcryptid/irl-covid-dashboard/internal/domain"
)

// RedisStore keeps table copies as string values, one key per table.
type RedisStore struct {
	client *redis.Client
	prefix string
}

// NewRedisStore connects lazily; the first command dials addr.
func NewRedisStore(addr, password string, db int, prefix string) *RedisStore {
	return &RedisStore{
		client: redis.NewClient(&redis.Options{Addr: addr, Password: password, DB: db}),
		prefix: prefix,
	}
}

func (s *RedisStore) key(table domain.Table) (string, error) {
	name, err := ObjectName(table)
	if err != nil {
		return "", err
	}
	return s.prefix + name, nil
}

// Get reads the stored copy of table.
func (s *RedisStore) Get(ctx context.Context, table domain.Table) ([]byte, error) {
	key, err := s.key(table)
	if err != nil {
		return nil, err
	}
	data, err := s.client.Get(ctx, key).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("redis get %s: %w", key, err)
	}
	return data, nil
}

// Put replaces the stored copy of table. Keys do not expire.
func (s *RedisStore) Put(ctx context.Context, table domain.Table, data []byte) error {
	key, err := s.key(table)
	if err != nil {
		return err
	}
	if err := s.client.Set(ctx, key, data, 0).Err(); err != nil {
		return fmt.Errorf("redis set %s: %w", key, err)
	}
	return nil
}

// Ping checks the connection.
func (s *RedisStore) Ping(ctx context.Context) error {
	return s.client.Ping(ctx).Err()
}

// Close releases the connection pool.
func (s *RedisStore) Close() error {
	return s.client.Close()
}
