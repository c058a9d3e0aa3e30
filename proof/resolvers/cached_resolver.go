package resolvers

import (
	"fmt"
	"sync"
)

// CachedResolver memoizes resolution results per (constraint, tag set).
// Useful when one verification session resolves the same reference many
// times against an unchanged tag listing.
type CachedResolver struct {
	inner TagResolver
	mu    sync.RWMutex
	cache map[string]string
}

// NewCachedResolver wraps a TagResolver with memoization.
func NewCachedResolver(inner TagResolver) *CachedResolver {
	return &CachedResolver{
		inner: inner,
		cache: make(map[string]string),
	}
}

// Resolve returns the cached result when the same constraint was already
// resolved against the same tag listing.
func (r *CachedResolver) Resolve(constraint string, available []string) (string, error) {
	key := cacheKey(constraint, available)

	r.mu.RLock()
	resolved, ok := r.cache[key]
	r.mu.RUnlock()
	if ok {
		return resolved, nil
	}

	resolved, err := r.inner.Resolve(constraint, available)
	if err != nil {
		return "", err
	}

	r.mu.Lock()
	r.cache[key] = resolved
	r.mu.Unlock()
	return resolved, nil
}

func cacheKey(constraint string, available []string) string {
	return fmt.Sprintf("%s|%v", constraint, available)
}
