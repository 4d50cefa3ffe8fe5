package cache

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"time"

	"github.com/bradfitz/gomemcache/memcache"
	"github.com/rs/zerolog"
)

type memcacheClient interface {
	Get(key string) (*memcache.Item, error)
	Set(item *memcache.Item) error
}

// Memcache shares cached pages between processes.
type Memcache struct {
	client memcacheClient
	log    zerolog.Logger
}

func NewMemcache(servers []string, log zerolog.Logger) *Memcache {
	return &Memcache{client: memcache.New(servers...), log: log}
}

// memcached keys are limited to 250 bytes without spaces.
func memcacheKey(key string) string {
	sum := sha256.Sum256([]byte(key))
	return "yatube:" + hex.EncodeToString(sum[:])
}

func (m *Memcache) Get(_ context.Context, key string) ([]byte, bool) {
	item, err := m.client.Get(memcacheKey(key))
	if err != nil {
		if !errors.Is(err, memcache.ErrCacheMiss) {
			m.log.Warn().Err(err).Msg("memcache get")
		}
		return nil, false
	}
	return item.Value, true
}

func (m *Memcache) Set(_ context.Context, key string, value []byte, ttl time.Duration) {
	secs := int32(ttl / time.Second)
	if secs < 1 {
		secs = 1
	}
	err := m.client.Set(&memcache.Item{Key: memcacheKey(key), Value: value, Expiration: secs})
	if err != nil {
		m.log.Warn().Err(err).Msg("memcache set")
	}
}
