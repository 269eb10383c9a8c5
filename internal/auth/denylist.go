package auth

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
)

// Denylist 记录已登出 Token 的 JTI，直到其原始过期时间
type Denylist interface {
	Add(ctx context.Context, jti string, expiresAt time.Time) error
	Contains(ctx context.Context, jti string) (bool, error)
}

// MemoryDenylist 是进程内的拒绝列表，服务重启会丢失
type MemoryDenylist struct {
	mu      sync.RWMutex
	entries map[string]time.Time // key: JTI, value: 原始过期时间
	now     func() time.Time
}

// NewMemoryDenylist 创建内存拒绝列表
func NewMemoryDenylist() *MemoryDenylist {
	return &MemoryDenylist{entries: make(map[string]time.Time), now: time.Now}
}

// Add 将JTI添加到拒绝列表，并清理已过期的条目。
func (d *MemoryDenylist) Add(_ context.Context, jti string, expiresAt time.Time) error {
	d.mu.Lock()
	defer d.mu.Unlock()

	d.entries[jti] = expiresAt

	now := d.now()
	for id, exp := range d.entries {
		if now.After(exp) {
			delete(d.entries, id)
		}
	}
	return nil
}

// Contains 检查JTI是否在拒绝列表中且尚未过期。
func (d *MemoryDenylist) Contains(_ context.Context, jti string) (bool, error) {
	d.mu.RLock()
	defer d.mu.RUnlock()

	exp, found := d.entries[jti]
	if !found {
		return false, nil
	}
	return d.now().Before(exp), nil
}

const denylistKeyPrefix = "auth:denylist:"

// RedisDenylist 将拒绝列表放在 Redis 中，多实例共享，键随 Token 一起过期
type RedisDenylist struct {
	client *redis.Client
}

// NewRedisDenylist 创建基于 Redis 的拒绝列表
func NewRedisDenylist(client *redis.Client) *RedisDenylist {
	return &RedisDenylist{client: client}
}

func (d *RedisDenylist) Add(ctx context.Context, jti string, expiresAt time.Time) error {
	ttl := time.Until(expiresAt)
	if ttl <= 0 {
		return nil
	}
	return d.client.Set(ctx, denylistKeyPrefix+jti, 1, ttl).Err()
}

func (d *RedisDenylist) Contains(ctx context.Context, jti string) (bool, error) {
	err := d.client.Get(ctx, denylistKeyPrefix+jti).Err()
	if errors.Is(err, redis.Nil) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}
