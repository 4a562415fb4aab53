package store

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/redis/go-redis/v9"

	"barrabusiness/pkg/domain"
)

// RedisStore keeps the whole document as one JSON value under a single
// well-known key.
type RedisStore struct {
	client *redis.Client
	key    string
}

// NewRedisStore connects a client for the given address and key.
func NewRedisStore(addr, password, key string) (*RedisStore, error) {
	addr = strings.TrimSpace(addr)
	if addr == "" {
		return nil, errors.New("redis addr required")
	}
	key = strings.TrimSpace(key)
	if key == "" {
		return nil, errors.New("store key required")
	}
	client := redis.NewClient(&redis.Options{Addr: addr, Password: password})
	return &RedisStore{client: client, key: key}, nil
}

// NewRedisStoreWithClient wraps an existing client. Used by tests.
func NewRedisStoreWithClient(client *redis.Client, key string) *RedisStore {
	return &RedisStore{client: client, key: key}
}

// Load fetches and decodes the document key. Absent or corrupt values
// yield the empty document.
func (s *RedisStore) Load(ctx context.Context) (domain.Document, error) {
	data, err := s.client.Get(ctx, s.key).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return domain.EmptyDocument(), nil
		}
		return domain.Document{}, fmt.Errorf("load document: %w", err)
	}
	return decodeDocument(data), nil
}

// Save overwrites the document key. The value has no TTL; the record set
// lives as long as the key does.
func (s *RedisStore) Save(ctx context.Context, doc domain.Document) error {
	data, err := encodeDocument(doc)
	if err != nil {
		return err
	}
	if err := s.client.Set(ctx, s.key, data, 0).Err(); err != nil {
		return fmt.Errorf("save document: %w", err)
	}
	return nil
}
