package warnings

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"
)

const redisKeyPrefix = "capsfriday:" + CollectionName + ":"

// RedisStore stores each record as a string key holding the timestamp in milliseconds
type RedisStore struct {
	client *redis.Client
}

// NewRedisStore connects to the Redis server at url (redis://host:port/db)
func NewRedisStore(ctx context.Context, url string) (*RedisStore, error) {
	opts, err := redis.ParseURL(url)
	if err != nil {
		return nil, fmt.Errorf("parse redis URL: %w", err)
	}

	client := redis.NewClient(opts)
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("redis ping failed: %w", err)
	}

	return &RedisStore{client: client}, nil
}

// NewRedisStoreFromClient wraps an existing client
func NewRedisStoreFromClient(client *redis.Client) *RedisStore {
	return &RedisStore{client: client}
}

func redisKey(identity string) string {
	return redisKeyPrefix + identity
}

func (s *RedisStore) Get(ctx context.Context, identity string) (time.Time, bool, error) {
	key := NormalizeIdentity(identity)

	ms, err := s.client.Get(ctx, redisKey(key)).Int64()
	if errors.Is(err, redis.Nil) {
		return time.Time{}, false, nil
	}
	if err != nil {
		return time.Time{}, false, storageErr("get", key, err)
	}
	return time.UnixMilli(ms), true, nil
}

func (s *RedisStore) Upsert(ctx context.Context, identity string, at time.Time) error {
	key := NormalizeIdentity(identity)
	err := s.client.Set(ctx, redisKey(key), strconv.FormatInt(at.UnixMilli(), 10), 0).Err()
	return storageErr("upsert", key, err)
}

func (s *RedisStore) Delete(ctx context.Context, identity string) error {
	key := NormalizeIdentity(identity)
	return storageErr("delete", key, s.client.Del(ctx, redisKey(key)).Err())
}

func (s *RedisStore) Health(ctx context.Context) error {
	return s.client.Ping(ctx).Err()
}

// Close closes the Redis connection
func (s *RedisStore) Close() error {
	return s.client.Close()
}
