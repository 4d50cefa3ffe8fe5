package cache

import (
	"context"
	"time"

	"github.com/hashicorp/golang-lru/v2/expirable"
)

// Memory is a bounded in-process cache. Entries expire after the TTL
// given to NewMemory; the ttl passed to Set is ignored.
type Memory struct {
	lru *expirable.LRU[string, []byte]
}

func NewMemory(size int, ttl time.Duration) *Memory {
	return &Memory{lru: expirable.NewLRU[string, []byte](size, nil, ttl)}
}

func (m *Memory) Get(_ context.Context, key string) ([]byte, bool) {
	return m.lru.Get(key)
}

func (m *Memory) Set(_ context.Context, key string, value []byte, _ time.Duration) {
	m.lru.Add(key, value)
}

func (m *Memory) Len() int {
	return m.lru.Len()
}
