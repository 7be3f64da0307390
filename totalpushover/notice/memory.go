package notice

import (
	"context"
	"sync"
	"time"

	gocache "github.com/patrickmn/go-cache"
)

// Memory is an in-process Store. mu keeps a Set from landing between the read
// and the delete of GetAndClear.
type Memory struct {
	mu sync.Mutex
	c  *gocache.Cache
}

// NewMemory creates an empty Memory store.
func NewMemory() *Memory {
	return &Memory{c: gocache.New(gocache.NoExpiration, time.Minute)}
}

func (m *Memory) Set(_ context.Context, key string, value State, ttl time.Duration) error {
	if !value.Valid() {
		return ErrInvalidState
	}
	m.mu.Lock()
	defer m.mu.Unlock()

	m.c.Set(key, value, ttl)
	return nil
}

func (m *Memory) GetAndClear(_ context.Context, key string) (State, bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	v, ok := m.c.Get(key)
	if !ok {
		return "", false, nil
	}
	m.c.Delete(key)
	s, _ := v.(State)
	return s, true, nil
}
