package service

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"time"

	"github.com/go-redis/redis/v8"
)

const sessionKeyPrefix = "dashboard:session:"

// SessionStore 保存每个浏览器会话的看板状态。不存在的会话返回默认状态
type SessionStore interface {
	Load(ctx context.Context, id string) (*ViewState, error)
	Save(ctx context.Context, id string, st *ViewState) error
}

type memoryEntry struct {
	data      []byte
	expiresAt time.Time
}

// MemorySessionStore 单实例部署使用
type MemorySessionStore struct {
	mu      sync.Mutex
	ttl     time.Duration
	entries map[string]memoryEntry
	now     func() time.Time
}

func NewMemorySessionStore(ttl time.Duration) *MemorySessionStore {
	return &MemorySessionStore{
		ttl:     ttl,
		entries: make(map[string]memoryEntry),
		now:     time.Now,
	}
}

func (m *MemorySessionStore) Load(ctx context.Context, id string) (*ViewState, error) {
	m.mu.Lock()
	entry, ok := m.entries[id]
	if ok && m.ttl > 0 && m.now().After(entry.expiresAt) {
		delete(m.entries, id)
		ok = false
	}
	m.mu.Unlock()

	if !ok {
		return NewViewState(), nil
	}
	return decodeViewState(entry.data)
}

// Save 存储快照，之后对 st 的修改不影响已存内容
func (m *MemorySessionStore) Save(ctx context.Context, id string, st *ViewState) error {
	data, err := json.Marshal(st)
	if err != nil {
		return err
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	m.entries[id] = memoryEntry{data: data, expiresAt: m.now().Add(m.ttl)}

	// 顺带清理过期会话
	for k, e := range m.entries {
		if m.ttl > 0 && m.now().After(e.expiresAt) {
			delete(m.entries, k)
		}
	}
	return nil
}

// RedisSessionStore 多实例部署时共享会话
type RedisSessionStore struct {
	Client *redis.Client
	TTL    time.Duration
}

func NewRedisSessionStore(client *redis.Client, ttl time.Duration) *RedisSessionStore {
	return &RedisSessionStore{Client: client, TTL: ttl}
}

func (r *RedisSessionStore) Load(ctx context.Context, id string) (*ViewState, error) {
	data, err := r.Client.Get(ctx, sessionKeyPrefix+id).Bytes()
	if errors.Is(err, redis.Nil) {
		return NewViewState(), nil
	}
	if err != nil {
		return nil, err
	}
	return decodeViewState(data)
}

func (r *RedisSessionStore) Save(ctx context.Context, id string, st *ViewState) error {
	data, err := json.Marshal(st)
	if err != nil {
		return err
	}
	return r.Client.Set(ctx, sessionKeyPrefix+id, data, r.TTL).Err()
}

func decodeViewState(data []byte) (*ViewState, error) {
	st := NewViewState()
	if err := json.Unmarshal(data, st); err != nil {
		return nil, err
	}
	st.normalize()
	return st, nil
}
