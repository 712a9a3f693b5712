package tmdb

import (
	"sync"
	"time"

	"github.com/vyrodovalexey/avgui-demo/internal/model"
)

type cacheEntry struct {
	movies []model.TMDBMovieResult
	exp    time.Time
}

// listCache keeps movie listings for a fixed time to live.
type listCache struct {
	mu  sync.RWMutex
	m   map[string]cacheEntry
	ttl time.Duration
	now func() time.Time
}

func newListCache(ttl time.Duration) *listCache {
	return &listCache{m: make(map[string]cacheEntry), ttl: ttl, now: time.Now}
}

func (c *listCache) get(key string) ([]model.TMDBMovieResult, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	e, ok := c.m[key]
	if !ok || c.now().After(e.exp) {
		return nil, false
	}
	return e.movies, true
}

// set stores movies under key and drops every expired entry, so distinct
// search queries do not accumulate.
func (c *listCache) set(key string, movies []model.TMDBMovieResult) {
	c.mu.Lock()
	defer c.mu.Unlock()

	now := c.now()
	for k, e := range c.m {
		if now.After(e.exp) {
			delete(c.m, k)
		}
	}
	c.m[key] = cacheEntry{movies: movies, exp: now.Add(c.ttl)}
}

func (c *listCache) size() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.m)
}
