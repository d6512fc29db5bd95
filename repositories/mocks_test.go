package repositories

import (
	"context"
	"sync"
	"time"
)

// Compile-time check to ensure fakeCache implements Cache
var _ Cache = (*fakeCache)(nil)

// fakeCache is an in-memory Cache. LockFunc overrides Lock.
type fakeCache struct {
	mu      sync.Mutex
	entries map[string]string
	locks   map[string]string

	LockFunc func(ctx context.Context, key, value string) (bool, error)

	LockCallCount   int
	UnlockCallCount int
	Deleted         []string
}

func newFakeCache() *fakeCache {
	return &fakeCache{entries: map[string]string{}, locks: map[string]string{}}
}

func (c *fakeCache) Get(_ context.Context, key string) (string, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.entries[key], nil
}

func (c *fakeCache) Set(_ context.Context, key string, value interface{}, _ time.Duration) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	switch v := value.(type) {
	case []byte:
		c.entries[key] = string(v)
	case string:
		c.entries[key] = v
	}
	return nil
}

func (c *fakeCache) Delete(_ context.Context, key string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.entries, key)
	c.Deleted = append(c.Deleted, key)
	return nil
}

func (c *fakeCache) Lock(ctx context.Context, key, value string, _ time.Duration) (bool, error) {
	c.mu.Lock()
	c.LockCallCount++
	fn := c.LockFunc
	c.mu.Unlock()
	if fn != nil {
		ok, err := fn(ctx, key, value)
		if ok && err == nil {
			c.mu.Lock()
			c.locks[key] = value
			c.mu.Unlock()
		}
		return ok, err
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	if _, held := c.locks[key]; held {
		return false, nil
	}
	c.locks[key] = value
	return true, nil
}

func (c *fakeCache) Unlock(_ context.Context, key, value string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.UnlockCallCount++
	if c.locks[key] == value {
		delete(c.locks, key)
	}
	return nil
}

func (c *fakeCache) held(key string) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	_, ok := c.locks[key]
	return ok
}
