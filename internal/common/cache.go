package common

import (
	"strings"
	"sync"
	"time"

	"github.com/patrickmn/go-cache"
)

// Cache wraps go-cache with prefix invalidation. Every invalidation bumps a
// generation so a read that started before it cannot store what it loaded.
type Cache struct {
	*cache.Cache

	mu      sync.Mutex
	flushes uint64
	gens    map[string]uint64
}

func NewCache(expirationTime, cleanupTime time.Duration) *Cache {
	return &Cache{Cache: cache.New(expirationTime, cleanupTime), gens: make(map[string]uint64)}
}

func (c *Cache) Set(key string, value interface{}, expiration ...time.Duration) {
	if len(expiration) > 0 {
		c.Cache.Set(key, value, expiration[0])
		return
	}
	c.Cache.Set(key, value, cache.DefaultExpiration)
}

func (c *Cache) Get(key string) (interface{}, bool) {
	return c.Cache.Get(key)
}

// Generation returns a counter that changes whenever keys under prefix are
// invalidated.
func (c *Cache) Generation(prefix string) uint64 {
	c.mu.Lock()
	defer c.mu.Unlock()

	return c.flushes + c.gens[prefix]
}

// SetIfGeneration stores value under key only if nothing under prefix was
// invalidated since gen was read. It reports whether the value was stored.
func (c *Cache) SetIfGeneration(prefix string, gen uint64, key string, value interface{}) bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.flushes+c.gens[prefix] != gen {
		return false
	}
	c.Cache.Set(key, value, cache.DefaultExpiration)

	return true
}

// DeletePrefix removes every key starting with prefix.
func (c *Cache) DeletePrefix(prefix string) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.gens[prefix]++
	for key := range c.Cache.Items() {
		if strings.HasPrefix(key, prefix) {
			c.Cache.Delete(key)
		}
	}
}

func (c *Cache) Flush() {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.flushes++
	c.Cache.Flush()
}

// CacheLoad returns the value cached under key, calling load on a miss. The
// loaded value is cached unless prefix was invalidated while load ran.
func CacheLoad[T any](c *Cache, prefix, key string, load func() (T, error)) (T, error) {
	if cached, ok := c.Get(key); ok {
		if v, ok := cached.(T); ok {
			return v, nil
		}
	}

	gen := c.Generation(prefix)

	v, err := load()
	if err != nil {
		return v, err
	}

	c.SetIfGeneration(prefix, gen, key, v)

	return v, nil
}

const (
	CachePrefixPosts  = "posts:"
	CachePrefixPhotos = "photos:"
)

func CacheKeyPosts() string {
	return CachePrefixPosts + "all"
}

func CacheKeyPostBySlug(slug string) string {
	return CachePrefixPosts + "slug:" + slug
}

func CacheKeyPhotos() string {
	return CachePrefixPhotos + "all"
}

func CacheKeyLoginAttempts(ip string) string {
	return "login_attempts:" + ip
}
