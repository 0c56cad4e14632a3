package qr

import (
	"context"
	"errors"
	"sync"
)

type memoryCache struct {
	mu   sync.Mutex
	data map[string][]byte
	sets int
}

func newMemoryCache() *memoryCache {
	return &memoryCache{data: make(map[string][]byte)}
}

func (c *memoryCache) Get(_ context.Context, key string) ([]byte, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	v, ok := c.data[key]
	return v, ok
}

func (c *memoryCache) Set(_ context.Context, key string, data []byte) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.data[key] = data
	c.sets++
}

type recordedGeneration struct {
	source string
	result *Result
}

type mockRecorder struct {
	mu      sync.Mutex
	records []recordedGeneration
	fail    bool
}

func (r *mockRecorder) Record(_ context.Context, source string, res *Result) error {
	if r.fail {
		return errors.New("database is locked")
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.records = append(r.records, recordedGeneration{source: source, result: res})
	return nil
}
