package session

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/go-redis/redis/v8"
)

const redisKeyPrefix = "shop_session:"

// RedisStore keeps one JSON value per shop. Entries never expire; uninstall deletes them.
type RedisStore struct {
	rdb redis.Cmdable
}

func NewRedisStore(rdb redis.Cmdable) *RedisStore {
	return &RedisStore{rdb: rdb}
}

func redisKey(shop string) string {
	return redisKeyPrefix + shop
}

func (r *RedisStore) Get(ctx context.Context, shop string) (*Session, error) {
	b, err := r.rdb.Get(ctx, redisKey(shop)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("load session shop=%s: %w", shop, err)
	}
	var s Session
	if err := json.Unmarshal(b, &s); err != nil {
		return nil, fmt.Errorf("decode session shop=%s: %w", shop, err)
	}
	return &s, nil
}

func (r *RedisStore) Set(ctx context.Context, s *Session) error {
	b, err := json.Marshal(s)
	if err != nil {
		return err
	}
	if err := r.rdb.Set(ctx, redisKey(s.Shop), b, 0).Err(); err != nil {
		return fmt.Errorf("save session shop=%s: %w", s.Shop, err)
	}
	return nil
}

func (r *RedisStore) Delete(ctx context.Context, shop string) error {
	if err := r.rdb.Del(ctx, redisKey(shop)).Err(); err != nil {
		return fmt.Errorf("delete session shop=%s: %w", shop, err)
	}
	return nil
}
