// Package memo memoizes pure functions for the lifetime of the process.
//
// Entries are keyed by a function name plus its arguments and are never
// evicted or invalidated: the inputs they derive from are static for a run.
// Concurrent first calls for the same key share one computation. Errors are
// returned to every waiting caller but are not stored.
package memo

import (
	"fmt"
	"strings"
	"sync"

	"golang.org/x/sync/singleflight"
)

// Cache holds memoized results. The zero value is ready to use.
type Cache struct {
	entries sync.Map
	group   singleflight.Group
}

// New returns an empty cache.
func New() *Cache {
	return &Cache{}
}

// Key joins a function name and its arguments into a cache key.
func Key(fn string, args ...any) string {
	if len(args) == 0 {
		return fn
	}
	parts := make([]string, 0, len(args)+1)
	parts = append(parts, fn)
	for _, a := range args {
		parts = append(parts, fmt.Sprintf("%v", a))
	}
	return strings.Join(parts, "|")
}

// Do returns the cached value for key, computing it with fn on first use.
func Do[T any](c *Cache, key string, fn func() (T, error)) (T, error) {
	if v, ok := c.entries.Load(key); ok {
		return v.(T), nil
	}
	v, err, _ := c.group.Do(key, func() (any, error) {
		if v, ok := c.entries.Load(key); ok {
			return v, nil
		}
		v, err := fn()
		if err != nil {
			return nil, err
		}
		c.entries.Store(key, v)
		return v, nil
	})
	if err != nil {
		var zero T
		return zero, err
	}
	return v.(T), nil
}

// Len reports how many entries are cached.
func (c *Cache) Len() int {
	n := 0
	c.entries.Range(func(_, _ any) bool {
		n++
		return true
	})
	return n
}
