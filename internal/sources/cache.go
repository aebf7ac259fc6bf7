package sources

import (
	"sync"

	"github.com/go-git/go-git/v5/plumbing"
	"golang.org/x/sync/singleflight"
)

// cacheKey identifies a fetch by its source URL and resolved reference.
type cacheKey struct {
	url string
	ref plumbing.ReferenceName
}

// FetchCache memoizes fetch results per resolved source. Lifetime is owned
// by whoever constructs it; Clear exists so tests and long-running callers
// can invalidate it explicitly. Concurrent fetches for the same resolved
// source are collapsed into a single remote operation.
type FetchCache struct {
	mu      sync.RWMutex
	group   singleflight.Group
	entries map[cacheKey]*FetchResult
}

// NewFetchCache creates an empty cache.
func NewFetchCache() *FetchCache {
	return &FetchCache{
		entries: make(map[cacheKey]*FetchResult),
	}
}

// GetOrFetch returns the cached result for (url, ref) or runs fetch to
// produce, store, and return it. Failed fetches are not cached.
func (c *FetchCache) GetOrFetch(url string, ref plumbing.ReferenceName, fetch func() (*FetchResult, error)) (*FetchResult, error) {
	key := cacheKey{url: url, ref: ref}

	c.mu.RLock()
	cached, ok := c.entries[key]
	c.mu.RUnlock()
	if ok {
		return cached, nil
	}

	result, err, _ := c.group.Do(url+"@"+string(ref), func() (any, error) {
		// Re-check under the group: another caller may have stored the
		// entry between the read above and entering the group.
		c.mu.RLock()
		cached, ok := c.entries[key]
		c.mu.RUnlock()
		if ok {
			return cached, nil
		}

		fetched, err := fetch()
		if err != nil {
			return nil, err
		}

		c.mu.Lock()
		c.entries[key] = fetched
		c.mu.Unlock()
		return fetched, nil
	})
	if err != nil {
		return nil, err
	}

	return result.(*FetchResult), nil
}

// Len returns the number of cached results.
func (c *FetchCache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.entries)
}

// Clear drops all cached results.
func (c *FetchCache) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries = make(map[cacheKey]*FetchResult)
}
