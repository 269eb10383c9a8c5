package session

import (
	"context"
	"encoding/json"
	"sync"
	"time"
)

type memoryEntry struct {
	data      []byte
	expiresAt time.Time
}

// MemoryStore 是进程内会话存储，服务重启后丢失。
// 保存序列化后的副本，调用方修改 State 不会影响已保存的数据。
type MemoryStore struct {
	mu      sync.RWMutex
	entries map[string]memoryEntry
	ttl     time.Duration
	now     func() time.Time
}

// NewMemoryStore 创建内存会话存储
func NewMemoryStore(ttl time.Duration) *MemoryStore {
	return &MemoryStore{
		entries: make(map[string]memoryEntry),
		ttl:     ttlOrDefault(ttl),
		now:     time.Now,
	}
}

func (s *MemoryStore) Load(_ context.Context, id string) (*State, error) {
	s.mu.RLock()
	entry, ok := s.entries[id]
	s.mu.RUnlock()
	if !ok || s.now().After(entry.expiresAt) {
		return nil, ErrSessionNotFound
	}
	state := New()
	if err := json.Unmarshal(entry.data, state); err != nil {
		return nil, err
	}
	return state, nil
}

func (s *MemoryStore) Save(_ context.Context, id string, state *State) error {
	data, err := json.Marshal(state)
	if err != nil {
		return err
	}
	now := s.now()

	s.mu.Lock()
	defer s.mu.Unlock()
	s.entries[id] = memoryEntry{data: data, expiresAt: now.Add(s.ttl)}

	// 清理已过期的会话
	for key, entry := range s.entries {
		if now.After(entry.expiresAt) {
			delete(s.entries, key)
		}
	}
	return nil
}

func (s *MemoryStore) Delete(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.entries, id)
	return nil
}
