package predict

import (
	"context"
	"sync"
	"time"

	"golang.org/x/sync/singleflight"
)

// Builder produces a fresh model, typically by loading the active catalog.
type Builder func(ctx context.Context) (*Model, error)

// Cache holds a fitted model with a TTL and stampede protection, so bursts of
// prediction requests don't refit the model once per request.
type Cache struct {
	mu    sync.RWMutex
	model *Model
	built time.Time
	ttl   time.Duration
	sf    singleflight.Group
	build Builder
}

// NewCache creates a model cache. A zero TTL disables caching entirely and
// every Get rebuilds.
func NewCache(ttl time.Duration, build Builder) *Cache {
	return &Cache{ttl: ttl, build: build}
}

// Get returns the cached model, rebuilding it when expired or absent.
func (c *Cache) Get(ctx context.Context) (*Model, error) {
	c.mu.RLock()
	model, fresh := c.model, c.isFresh()
	c.mu.RUnlock()

	if model != nil && fresh {
		return model, nil
	}

	result, err, _ := c.sf.Do("model", func() (interface{}, error) {
		// Double-check after acquiring the singleflight slot.
		c.mu.RLock()
		model, fresh := c.model, c.isFresh()
		c.mu.RUnlock()
		if model != nil && fresh {
			return model, nil
		}

		rebuilt, err := c.build(ctx)
		if err != nil {
			return nil, err
		}

		c.mu.Lock()
		c.model = rebuilt
		c.built = time.Now()
		c.mu.Unlock()

		return rebuilt, nil
	})
	if err != nil {
		return nil, err
	}
	return result.(*Model), nil
}

// Invalidate drops the cached model. Called after each completed sync so the
// next prediction reflects the fresh catalog.
func (c *Cache) Invalidate() {
	c.mu.Lock()
	c.model = nil
	c.mu.Unlock()
}

// isFresh reports cache validity. Callers hold at least the read lock.
func (c *Cache) isFresh() bool {
	if c.ttl == 0 {
		return false
	}
	return time.Since(c.built) <= c.ttl
}
