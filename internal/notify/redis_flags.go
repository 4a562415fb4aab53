package notify

import (
	"context"
	"errors"
	"strings"

	"github.com/redis/go-redis/v9"
)

// RedisFlags persists pending flags as one key per event kind, so a
// dashboard opened after a restart still sees unacknowledged events.
type RedisFlags struct {
	client *redis.Client
	prefix string
}

// NewRedisFlags connects a client for the given address and key prefix.
func NewRedisFlags(addr, password, prefix string) (*RedisFlags, error) {
	addr = strings.TrimSpace(addr)
	if addr == "" {
		return nil, errors.New("redis addr required")
	}
	client := redis.NewClient(&redis.Options{Addr: addr, Password: password})
	return NewRedisFlagsWithClient(client, prefix), nil
}

// NewRedisFlagsWithClient wraps an existing client. Used by tests.
func NewRedisFlagsWithClient(client *redis.Client, prefix string) *RedisFlags {
	prefix = strings.TrimSpace(prefix)
	if prefix == "" {
		prefix = "barrabusiness"
	}
	return &RedisFlags{client: client, prefix: prefix}
}

func (f *RedisFlags) key(event string) string {
	return f.prefix + ":notify:" + event
}

func (f *RedisFlags) Set(ctx context.Context, event string) error {
	return f.client.Set(ctx, f.key(event), "1", 0).Err()
}

func (f *RedisFlags) Pending(ctx context.Context) (Pending, error) {
	var pending Pending
	vals, err := f.client.MGet(ctx, f.key(EventNewProperty), f.key(EventNewLead)).Result()
	if err != nil {
		return Pending{}, err
	}
	if len(vals) == 2 {
		pending.NewProperty = vals[0] != nil
		pending.NewLead = vals[1] != nil
	}
	return pending, nil
}

func (f *RedisFlags) Clear(ctx context.Context) error {
	return f.client.Del(ctx, f.key(EventNewProperty), f.key(EventNewLead)).Err()
}
