package asset

import (
	"context"
	"sync"

	"golang.org/x/sync/singleflight"
)

// Cache memoizes successful loads by URI and hands out clones, so each
// placement gets its own node tree from a single parse. Concurrent loads of
// one URI share the underlying call. Failures are not cached.
type Cache struct {
	l     Loader
	group singleflight.Group

	mu     sync.Mutex
	models map[string]*Model
}

func NewCache(l Loader) *Cache {
	return &Cache{l: l, models: map[string]*Model{}}
}

func (c *Cache) Load(ctx context.Context, uri string) (*Model, error) {
	c.mu.Lock()
	m, ok := c.models[uri]
	c.mu.Unlock()
	if ok {
		return m.Clone(), nil
	}

	v, err, _ := c.group.Do(uri, func() (any, error) {
		m, err := c.l.Load(ctx, uri)
		if err != nil {
			return nil, err
		}
		c.mu.Lock()
		c.models[uri] = m
		c.mu.Unlock()
		return m, nil
	})
	if err != nil {
		return nil, err
	}
	return v.(*Model).Clone(), nil
}

// Len returns the number of cached models.
func (c *Cache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.models)
}
