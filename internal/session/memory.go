package session

import (
	"context"
	"sync"
	"time"
)

// MemoryStore is an in-process Store with expiration.
type MemoryStore struct {
	mu    sync.RWMutex
	items map[string]*memoryItem
	ttl   time.Duration
	stop  chan struct{}
	once  sync.Once
}

type memoryItem struct {
	sess       Session
	expireTime time.Time
}

// NewMemoryStore creates a store whose entries expire ttl after their last
// save. A background sweep removes expired entries every sweep interval.
func NewMemoryStore(ttl, sweep time.Duration) *MemoryStore {
	ms := &MemoryStore{
		items: make(map[string]*memoryItem),
		ttl:   ttl,
		stop:  make(chan struct{}),
	}
	if sweep > 0 {
		go ms.cleanupExpired(sweep)
	}
	return ms
}

func (ms *MemoryStore) Get(_ context.Context, id string) (*Session, error) {
	ms.mu.RLock()
	defer ms.mu.RUnlock()

	item, ok := ms.items[id]
	if !ok || time.Now().After(item.expireTime) {
		return nil, ErrNotFound
	}
	s := item.sess
	return &s, nil
}

func (ms *MemoryStore) Save(_ context.Context, s *Session) error {
	ms.mu.Lock()
	defer ms.mu.Unlock()

	ms.items[s.ID] = &memoryItem{sess: *s, expireTime: time.Now().Add(ms.ttl)}
	return nil
}

func (ms *MemoryStore) Delete(_ context.Context, id string) error {
	ms.mu.Lock()
	defer ms.mu.Unlock()

	delete(ms.items, id)
	return nil
}

// Len returns the number of stored entries, expired or not.
func (ms *MemoryStore) Len() int {
	ms.mu.RLock()
	defer ms.mu.RUnlock()
	return len(ms.items)
}

// Close stops the background sweep.
func (ms *MemoryStore) Close() error {
	ms.once.Do(func() { close(ms.stop) })
	return nil
}

func (ms *MemoryStore) sweepOnce(now time.Time) {
	ms.mu.Lock()
	defer ms.mu.Unlock()
	for id, item := range ms.items {
		if now.After(item.expireTime) {
			delete(ms.items, id)
		}
	}
}

func (ms *MemoryStore) cleanupExpired(every time.Duration) {
	ticker := time.NewTicker(every)
	defer ticker.Stop()

	for {
		select {
		case <-ms.stop:
			return
		case now := <-ticker.C:
			ms.sweepOnce(now)
		}
	}
}
