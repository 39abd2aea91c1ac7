// Package tabular provides caching for loaded tables.
package tabular

import (
	"context"
	"sync"
	"time"

	cache "github.com/patrickmn/go-cache"
	"github.com/sirupsen/logrus"
)

// CachedLoader wraps a Loader with an in-memory cache so that a source
// referenced more than once (both uploads pointing at the same file, or
// repeated programmatic runs) is parsed only once within the TTL.
type CachedLoader struct {
	loader    *Loader
	cache     *cache.Cache
	mu        sync.Mutex
	hitCount  uint64
	missCount uint64
	logger    *logrus.Logger
}

// NewCachedLoader creates a cached loader with the given TTL.
func NewCachedLoader(loader *Loader, ttl time.Duration, logger *logrus.Logger) *CachedLoader {
	return &CachedLoader{
		loader: loader,
		cache:  cache.New(ttl, ttl*2),
		logger: logger,
	}
}

// Load returns a deep copy of the cached table for the source, loading and
// caching it on a miss. Copies keep callers from mutating the cached entry.
func (cl *CachedLoader) Load(ctx context.Context, src string) (*Table, error) {
	cl.mu.Lock()
	if cached, found := cl.cache.Get(src); found {
		cl.hitCount++
		cl.mu.Unlock()
		cl.logger.WithField("source", src).Debug("Table cache hit")
		return cached.(*Table).Clone(), nil
	}
	cl.missCount++
	cl.mu.Unlock()

	t, err := cl.loader.Load(ctx, src)
	if err != nil {
		return nil, err
	}
	cl.mu.Lock()
	cl.cache.Set(src, t.Clone(), cache.DefaultExpiration)
	cl.mu.Unlock()
	return t, nil
}

// Stats returns cache hit and miss counts.
func (cl *CachedLoader) Stats() (hits, misses uint64) {
	cl.mu.Lock()
	defer cl.mu.Unlock()
	return cl.hitCount, cl.missCount
}
