package artwork_test

import (
	"bytes"
	"fmt"
	"sync"
	"testing"

	"github.com/prometheus/client_golang/prometheus"

	"ghplayer/internal/artwork"
)

func TestCacheEvictsLeastRecentlyUsed(t *testing.T) {
	cache := artwork.NewCache(10, nil)

	cache.Put("a", bytes.Repeat([]byte{1}, 4))
	cache.Put("b", bytes.Repeat([]byte{2}, 4))
	if _, ok := cache.Get("a"); !ok {
		t.Fatal("expected hit for a")
	}
	cache.Put("c", bytes.Repeat([]byte{3}, 4))

	if _, ok := cache.Get("b"); ok {
		t.Fatal("expected b to be evicted as least recently used")
	}
	if _, ok := cache.Get("a"); !ok {
		t.Fatal("expected a to survive after recent access")
	}
	if _, ok := cache.Get("c"); !ok {
		t.Fatal("expected c to be cached")
	}
	if cache.Size() != 8 || cache.Len() != 2 {
		t.Fatalf("unexpected occupancy: size=%d len=%d", cache.Size(), cache.Len())
	}
	if stats := cache.Stats(); stats.Evictions != 1 || stats.Hits != 3 || stats.Misses != 1 {
		t.Fatalf("unexpected stats: %+v", stats)
	}
}

func TestCacheNeverExceedsBudget(t *testing.T) {
	const budget = 100
	cache := artwork.NewCache(budget, nil)
	for i := 0; i < 50; i++ {
		cache.Put(fmt.Sprintf("k%d", i), make([]byte, 1+i%37))
		if cache.Size() > budget {
			t.Fatalf("size %d exceeded budget after insert %d", cache.Size(), i)
		}
	}
}

func TestCacheEvictsSeveralEntriesForLargeInsert(t *testing.T) {
	cache := artwork.NewCache(10, nil)
	cache.Put("a", make([]byte, 3))
	cache.Put("b", make([]byte, 3))
	cache.Put("c", make([]byte, 3))
	cache.Put("big", make([]byte, 8))

	if got := cache.Keys(); len(got) != 1 || got[0] != "big" {
		t.Fatalf("expected only big to remain, got %v", got)
	}
}

func TestCacheRejectsOversizedAndEmptyValues(t *testing.T) {
	cache := artwork.NewCache(4, nil)
	cache.Put("a", []byte{1, 2})

	if cache.Put("huge", make([]byte, 5)) {
		t.Fatal("expected oversized value to be rejected")
	}
	if cache.Put("empty", nil) {
		t.Fatal("expected empty value to be rejected")
	}
	if _, ok := cache.Get("a"); !ok {
		t.Fatal("rejecting an oversized value must not evict existing entries")
	}

	if cache.Put("a", make([]byte, 9)) {
		t.Fatal("expected oversized replacement to be rejected")
	}
	if _, ok := cache.Get("a"); ok {
		t.Fatal("expected stale entry dropped when replacement is rejected")
	}
}

func TestCacheReplaceUpdatesSizeAndRecency(t *testing.T) {
	cache := artwork.NewCache(10, nil)
	cache.Put("a", make([]byte, 4))
	cache.Put("b", make([]byte, 4))
	cache.Put("a", make([]byte, 2))

	if cache.Size() != 6 {
		t.Fatalf("expected size 6 after replace, got %d", cache.Size())
	}
	if keys := cache.Keys(); keys[0] != "a" {
		t.Fatalf("expected replaced key to be most recent, got %v", keys)
	}

	cache.Remove("a")
	cache.Purge()
	if cache.Len() != 0 || cache.Size() != 0 {
		t.Fatalf("expected empty cache after purge, got len=%d size=%d", cache.Len(), cache.Size())
	}
}

func TestCacheConcurrentAccess(t *testing.T) {
	cache := artwork.NewCache(1024, nil)
	var wg sync.WaitGroup
	for g := 0; g < 8; g++ {
		wg.Add(1)
		go func(g int) {
			defer wg.Done()
			for i := 0; i < 200; i++ {
				key := fmt.Sprintf("k%d", (g*31+i)%40)
				if _, ok := cache.Get(key); !ok {
					cache.Put(key, make([]byte, 16+i%64))
				}
			}
		}(g)
	}
	wg.Wait()
	if cache.Size() > 1024 {
		t.Fatalf("size %d exceeded budget", cache.Size())
	}
}

func TestCacheExportsMetrics(t *testing.T) {
	reg := prometheus.NewRegistry()
	cache := artwork.NewCache(8, artwork.NewMetrics(reg))

	cache.Put("a", make([]byte, 5))
	cache.Get("a")
	cache.Get("missing")
	cache.Put("b", make([]byte, 5))

	values := gatherValues(t, reg)
	want := map[string]float64{
		"ghplayer_artwork_cache_bytes":           5,
		"ghplayer_artwork_cache_entries":         1,
		"ghplayer_artwork_cache_hits_total":      1,
		"ghplayer_artwork_cache_misses_total":    1,
		"ghplayer_artwork_cache_evictions_total": 1,
	}
	for name, expected := range want {
		if got, ok := values[name]; !ok || got != expected {
			t.Fatalf("%s = %v (present=%v), want %v", name, got, ok, expected)
		}
	}
}

func gatherValues(t *testing.T, reg *prometheus.Registry) map[string]float64 {
	t.Helper()
	families, err := reg.Gather()
	if err != nil {
		t.Fatalf("gather: %v", err)
	}
	values := make(map[string]float64)
	for _, family := range families {
		for _, metric := range family.GetMetric() {
			switch {
			case metric.GetGauge() != nil:
				values[family.GetName()] += metric.GetGauge().GetValue()
			case metric.GetCounter() != nil:
				values[family.GetName()] += metric.GetCounter().GetValue()
			}
		}
	}
	return values
}
