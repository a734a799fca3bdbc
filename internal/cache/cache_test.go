package cache

import (
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yourusername/overtake-analyser/internal/overtaking"
)

func sampleResult() overtaking.Result {
	return overtaking.Result{
		AverageProbabilities: []float64{0.1, 0.2},
		SuccessRates:         []float64{0.09, 0.16},
	}
}

func mustKey(t testing.TB, cfg overtaking.Config, seed int64) CacheKey {
	t.Helper()
	key, err := NewCacheKey(cfg, seed)
	require.NoError(t, err)
	return key
}

func mustFingerprint(t testing.TB, cfg overtaking.Config) string {
	t.Helper()
	fingerprint, err := Fingerprint(cfg)
	require.NoError(t, err)
	return fingerprint
}

// TestCacheKeyString tests cache key string representation
func TestCacheKeyString(t *testing.T) {
	key := mustKey(t, overtaking.DefaultConfig(), 42)

	assert.Len(t, key.Fingerprint, 64)
	assert.Contains(t, key.String(), ":42")
}

func TestFingerprintIsStable(t *testing.T) {
	a := overtaking.DefaultConfig()
	b := overtaking.DefaultConfig()
	assert.Equal(t, mustFingerprint(t, a), mustFingerprint(t, b))

	b.Sections = 11
	assert.NotEqual(t, mustFingerprint(t, a), mustFingerprint(t, b))
}

func TestFingerprintRejectsNonFiniteConfig(t *testing.T) {
	nan := overtaking.DefaultConfig()
	nan.TrackDifficulty = math.NaN()
	inf := overtaking.DefaultConfig()
	inf.WeatherCondition = math.Inf(1)

	_, err := Fingerprint(nan)
	assert.Error(t, err)
	_, err = NewCacheKey(inf, 1)
	assert.Error(t, err)
}

func TestResultCacheGetMiss(t *testing.T) {
	cache := NewResultCache(time.Hour, 10)
	defer cache.Clear()

	_, found := cache.Get(mustKey(t, overtaking.DefaultConfig(), 1))
	assert.False(t, found)
}

func TestResultCacheSetGet(t *testing.T) {
	cache := NewResultCache(time.Hour, 10)
	defer cache.Clear()

	key := mustKey(t, overtaking.DefaultConfig(), 1)
	cache.Set(key, sampleResult())

	got, found := cache.Get(key)
	require.True(t, found)
	assert.Equal(t, sampleResult(), got)

	// returned values are copies
	got.AverageProbabilities[0] = 0.99
	again, _ := cache.Get(key)
	assert.Equal(t, 0.1, again.AverageProbabilities[0])
}

// TestResultCacheExpiration tests cache TTL expiration
func TestResultCacheExpiration(t *testing.T) {
	cache := NewResultCache(100*time.Millisecond, 10)
	defer cache.Clear()

	key := mustKey(t, overtaking.DefaultConfig(), 1)
	cache.Set(key, sampleResult())

	_, found := cache.Get(key)
	require.True(t, found)

	time.Sleep(150 * time.Millisecond)

	_, found = cache.Get(key)
	assert.False(t, found)
}

func TestResultCacheInvalidate(t *testing.T) {
	cache := NewResultCache(time.Hour, 10)
	defer cache.Clear()

	cfg := overtaking.DefaultConfig()
	other := overtaking.DefaultConfig()
	other.Sections = 4

	cache.Set(mustKey(t, cfg, 1), sampleResult())
	cache.Set(mustKey(t, cfg, 2), sampleResult())
	cache.Set(mustKey(t, other, 1), sampleResult())

	cache.Invalidate(mustFingerprint(t, cfg))

	_, found := cache.Get(mustKey(t, cfg, 1))
	assert.False(t, found)
	_, found = cache.Get(mustKey(t, cfg, 2))
	assert.False(t, found)
	_, found = cache.Get(mustKey(t, other, 1))
	assert.True(t, found)
}

// TestResultCacheStats tests cache statistics tracking
func TestResultCacheStats(t *testing.T) {
	cache := NewResultCache(time.Hour, 10)
	defer cache.Clear()
	key := mustKey(t, overtaking.DefaultConfig(), 5)

	hits, misses, ratio := cache.Stats()
	assert.Equal(t, uint64(0), hits)
	assert.Equal(t, uint64(0), misses)
	assert.Equal(t, 0.0, ratio)

	cache.Get(key)
	cache.Set(key, sampleResult())
	cache.Get(key)

	hits, misses, ratio = cache.Stats()
	assert.Equal(t, uint64(1), hits)
	assert.Equal(t, uint64(1), misses)
	assert.Equal(t, 0.5, ratio)
}

// TestResultCacheMaxSize tests cache size limit enforcement
func TestResultCacheMaxSize(t *testing.T) {
	maxSize := 5
	cache := NewResultCache(time.Hour, maxSize)
	defer cache.Clear()

	for seed := int64(1); seed <= int64(maxSize+5); seed++ {
		cache.Set(mustKey(t, overtaking.DefaultConfig(), seed), sampleResult())
	}

	assert.LessOrEqual(t, cache.ItemCount(), maxSize)
}
