// Package cache provides in-memory caching of seeded overtaking analyses.
package cache

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	gocache "github.com/patrickmn/go-cache"

	"github.com/yourusername/overtake-analyser/internal/metrics"
	"github.com/yourusername/overtake-analyser/internal/overtaking"
)

// CacheKey identifies one deterministic analysis: a configuration and the seed it ran with
type CacheKey struct {
	Fingerprint string
	Seed        int64
}

// String returns string representation of cache key
func (k CacheKey) String() string {
	return fmt.Sprintf("%s:%d", k.Fingerprint, k.Seed)
}

// Fingerprint returns a stable hash of cfg. Configurations that cannot be
// encoded, such as NaN or infinite parameters, have no fingerprint.
func Fingerprint(cfg overtaking.Config) (string, error) {
	data, err := json.Marshal(cfg)
	if err != nil {
		return "", fmt.Errorf("failed to fingerprint config: %w", err)
	}
	sum := sha256.Sum256(data)
	return hex.EncodeToString(sum[:]), nil
}

// NewCacheKey builds the key for cfg run with seed
func NewCacheKey(cfg overtaking.Config, seed int64) (CacheKey, error) {
	fingerprint, err := Fingerprint(cfg)
	if err != nil {
		return CacheKey{}, err
	}
	return CacheKey{Fingerprint: fingerprint, Seed: seed}, nil
}

// ResultCache provides in-memory caching for analysis results
type ResultCache struct {
	cache     *gocache.Cache
	ttl       time.Duration
	maxSize   int
	mu        sync.RWMutex
	hitCount  uint64
	missCount uint64
}

// NewResultCache creates a new result cache
func NewResultCache(ttl time.Duration, maxSize int) *ResultCache {
	return &ResultCache{
		cache:   gocache.New(ttl, ttl*2),
		ttl:     ttl,
		maxSize: maxSize,
	}
}

// Get retrieves a cached result. The returned result is a copy.
func (rc *ResultCache) Get(key CacheKey) (overtaking.Result, bool) {
	rc.mu.Lock()
	defer rc.mu.Unlock()

	if item, found := rc.cache.Get(key.String()); found {
		if result, ok := item.(overtaking.Result); ok {
			rc.hitCount++
			rc.updateMetrics()
			return copyResult(result), true
		}
	}

	rc.missCount++
	rc.updateMetrics()
	return overtaking.Result{}, false
}

// Set stores a result in cache
func (rc *ResultCache) Set(key CacheKey, result overtaking.Result) {
	rc.mu.Lock()
	defer rc.mu.Unlock()

	if rc.cache.ItemCount() >= rc.maxSize {
		rc.cache.DeleteExpired()
	}
	if rc.cache.ItemCount() >= rc.maxSize {
		rc.evictOldest()
	}

	rc.cache.Set(key.String(), copyResult(result), rc.ttl)
}

// Invalidate removes every entry for a configuration fingerprint
func (rc *ResultCache) Invalidate(fingerprint string) {
	rc.mu.Lock()
	defer rc.mu.Unlock()

	prefix := fingerprint + ":"
	for k := range rc.cache.Items() {
		if len(k) > len(prefix) && k[:len(prefix)] == prefix {
			rc.cache.Delete(k)
		}
	}
}

// Clear flushes the entire cache
func (rc *ResultCache) Clear() {
	rc.mu.Lock()
	defer rc.mu.Unlock()

	rc.cache.Flush()
	rc.hitCount = 0
	rc.missCount = 0
}

// Stats returns cache statistics
func (rc *ResultCache) Stats() (hits, misses uint64, ratio float64) {
	rc.mu.RLock()
	defer rc.mu.RUnlock()
	return rc.stats()
}

// ItemCount returns the number of items in cache
func (rc *ResultCache) ItemCount() int {
	return rc.cache.ItemCount()
}

func (rc *ResultCache) stats() (hits, misses uint64, ratio float64) {
	hits = rc.hitCount
	misses = rc.missCount
	if total := hits + misses; total > 0 {
		ratio = float64(hits) / float64(total)
	}
	return
}

// evictOldest drops the entry closest to expiry
func (rc *ResultCache) evictOldest() {
	var (
		oldestKey string
		oldestExp int64
	)
	for k, item := range rc.cache.Items() {
		if oldestKey == "" || item.Expiration < oldestExp {
			oldestKey = k
			oldestExp = item.Expiration
		}
	}
	if oldestKey != "" {
		rc.cache.Delete(oldestKey)
	}
}

func (rc *ResultCache) updateMetrics() {
	_, _, ratio := rc.stats()
	metrics.UpdateCacheHitRatio(ratio)
}

func copyResult(r overtaking.Result) overtaking.Result {
	return overtaking.Result{
		AverageProbabilities: append([]float64(nil), r.AverageProbabilities...),
		SuccessRates:         append([]float64(nil), r.SuccessRates...),
	}
}
