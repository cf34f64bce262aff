package phonetic

import (
	lru "github.com/hashicorp/golang-lru/v2"

	"github.com/gcbaptista/gedcom-search/internal/metrics"
)

// DefaultCacheSize is the number of token codes kept by NewCachedEncoder
// when no size is given.
const DefaultCacheSize = 10000

// CachedEncoder wraps an Encoder with an LRU cache keyed by token.
// Encoders are pure, so cached codes never go stale.
// Safe for concurrent use.
type CachedEncoder struct {
	inner Encoder
	cache *lru.Cache[string, string]
}

// NewCachedEncoder creates a cached encoder wrapping inner.
func NewCachedEncoder(inner Encoder, cacheSize int) *CachedEncoder {
	if cacheSize <= 0 {
		cacheSize = DefaultCacheSize
	}
	cache, _ := lru.New[string, string](cacheSize)
	return &CachedEncoder{
		inner: inner,
		cache: cache,
	}
}

// Name returns the wrapped algorithm name.
func (c *CachedEncoder) Name() string {
	return c.inner.Name()
}

// Encode returns the cached code if available, otherwise computes and caches it.
func (c *CachedEncoder) Encode(token string) string {
	if token == "" {
		return ""
	}
	if code, ok := c.cache.Get(token); ok {
		metrics.PhoneticCacheTotal.WithLabelValues("hit").Inc()
		return code
	}
	metrics.PhoneticCacheTotal.WithLabelValues("miss").Inc()

	code := c.inner.Encode(token)
	c.cache.Add(token, code)
	return code
}

// Len returns the number of cached codes.
func (c *CachedEncoder) Len() int {
	return c.cache.Len()
}
