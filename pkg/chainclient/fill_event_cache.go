package chainclient

import (
	"fmt"
	"sync"
	"time"

	"github.com/speedrun-hq/intentscope/pkg/metrics"
	"github.com/speedrun-hq/intentscope/pkg/models"
)

// FillEventCache caches the fill events of mined transactions to avoid duplicate RPC calls
type FillEventCache struct {
	mu       sync.RWMutex
	cache    map[string]*cachedFillEvents
	cacheTTL time.Duration
}

// cachedFillEvents represents the cached fill events of a transaction with timestamp
type cachedFillEvents struct {
	events    []models.FillEvent
	timestamp time.Time
}

// NewFillEventCache creates a new fill event cache, a zero TTL disables caching
func NewFillEventCache(cacheTTL time.Duration) *FillEventCache {
	return &FillEventCache{
		cache:    make(map[string]*cachedFillEvents),
		cacheTTL: cacheTTL,
	}
}

func cacheKey(chainID int, txHash string) string {
	return fmt.Sprintf("%d:%s", chainID, txHash)
}

// Get retrieves the cached events of a transaction if they are still valid
func (c *FillEventCache) Get(chainID int, txHash string) ([]models.FillEvent, bool) {
	if c.cacheTTL <= 0 {
		return nil, false
	}

	c.mu.RLock()
	defer c.mu.RUnlock()

	cached, exists := c.cache[cacheKey(chainID, txHash)]
	if !exists {
		return nil, false
	}

	// Check if cache is still valid
	if time.Since(cached.timestamp) > c.cacheTTL {
		return nil, false
	}

	return append([]models.FillEvent(nil), cached.events...), true
}

// Set stores the events of a transaction in the cache with current timestamp
func (c *FillEventCache) Set(chainID int, txHash string, events []models.FillEvent) {
	if c.cacheTTL <= 0 {
		return
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	c.evictExpired()
	c.cache[cacheKey(chainID, txHash)] = &cachedFillEvents{
		events:    append([]models.FillEvent(nil), events...),
		timestamp: time.Now(),
	}
	metrics.FillCacheEntries.Set(float64(len(c.cache)))
}

// evictExpired drops expired entries, the caller must hold the write lock
func (c *FillEventCache) evictExpired() {
	for key, cached := range c.cache {
		if time.Since(cached.timestamp) > c.cacheTTL {
			delete(c.cache, key)
		}
	}
}
