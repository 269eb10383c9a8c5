package session

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
)

const redisKeyPrefix = "scan:session:"

// Connect 根据 URL 或 host:port 创建 Redis 客户端
func Connect(ctx context.Context, redisURL string) (*redis.Client, error) {
	var client *redis.Client
	if strings.HasPrefix(redisURL, "redis://") || strings.HasPrefix(redisURL, "rediss://") {
		opt, err := redis.ParseURL(redisURL)
		if err != nil {
			return nil, fmt.Errorf("parse redis url: %w", err)
		}
		client = redis.NewClient(opt)
	} else {
		client = redis.NewClient(&redis.Options{Addr: redisURL})
	}
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("ping redis: %w", err)
	}
	return client, nil
}

// RedisStore 以 JSON 形式把会话保存在 Redis 中，每次保存刷新 TTL
type RedisStore struct {
	client *redis.Client
	ttl    time.Duration
}

// NewRedisStore 创建 Redis 会话存储
func NewRedisStore(client *redis.Client, ttl time.Duration) *RedisStore {
	return &RedisStore{client: client, ttl: ttlOrDefault(ttl)}
}

func (s *RedisStore) Load(ctx context.Context, id string) (*State, error) {
	data, err := s.client.Get(ctx, redisKeyPrefix+id).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, ErrSessionNotFound
	}
	if err != nil {
		return nil, err
	}
	state := New()
	if err := json.Unmarshal(data, state); err != nil {
		return nil, fmt.Errorf("decode session %s: %w", id, err)
	}
	return state, nil
}

func (s *RedisStore) Save(ctx context.Context, id string, state *State) error {
	data, err := json.Marshal(state)
	if err != nil {
		return err
	}
	return s.client.Set(ctx, redisKeyPrefix+id, data, s.ttl).Err()
}

func (s *RedisStore) Delete(ctx context.Context, id string) error {
	return s.client.Del(ctx, redisKeyPrefix+id).Err()
}
