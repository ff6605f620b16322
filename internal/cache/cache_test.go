// Resonate - Community Media Marketplace
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/resonate

package cache

import (
	"fmt"
	"sync"
	"testing"
	"time"
)

var epoch = time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

func TestCacheBasicOperations(t *testing.T) {
	c := New(time.Minute)

	c.Set("key1", "value1")
	value, exists := c.Get("key1")
	if !exists {
		t.Error("Expected key1 to exist")
	}
	if value != "value1" {
		t.Errorf("Expected value1, got %v", value)
	}

	if _, exists = c.Get("key2"); exists {
		t.Error("Expected key2 to not exist")
	}
}

func TestCacheExpiresAtTTL(t *testing.T) {
	clock := NewManualClock(epoch)
	c := New(15*time.Minute, WithClock(clock))

	c.Set("dataset:abc", []int{1, 2, 3})

	clock.Advance(14*time.Minute + 59*time.Second)
	if _, ok := c.Get("dataset:abc"); !ok {
		t.Fatal("Expected entry to be served inside the TTL window")
	}

	clock.Advance(time.Second)
	if _, ok := c.Get("dataset:abc"); ok {
		t.Fatal("Expected entry to be absent at exactly the TTL")
	}
	if c.Len() != 0 {
		t.Errorf("Expected lazy eviction to remove the entry, %d left", c.Len())
	}

	stats := c.GetStats()
	if stats.Evictions != 1 {
		t.Errorf("Expected 1 eviction, got %d", stats.Evictions)
	}
	if stats.Hits != 1 || stats.Misses != 1 {
		t.Errorf("Expected 1 hit and 1 miss, got %d/%d", stats.Hits, stats.Misses)
	}
}

func TestCacheSetRefreshesExpiry(t *testing.T) {
	clock := NewManualClock(epoch)
	c := New(time.Minute, WithClock(clock))

	c.Set("k", 1)
	clock.Advance(50 * time.Second)
	c.Set("k", 2)
	clock.Advance(50 * time.Second)

	v, ok := c.Get("k")
	if !ok || v != 2 {
		t.Errorf("Expected refreshed value 2, got %v (ok=%v)", v, ok)
	}
}

func TestCacheCleanup(t *testing.T) {
	clock := NewManualClock(epoch)
	c := New(time.Minute, WithClock(clock))

	c.Set("short", 1)
	c.SetWithTTL("long", 2, time.Hour)
	clock.Advance(2 * time.Minute)

	if removed := c.Cleanup(); removed != 1 {
		t.Errorf("Expected 1 expired entry removed, got %d", removed)
	}
	if _, ok := c.Get("long"); !ok {
		t.Error("Expected long-lived entry to survive cleanup")
	}
	if got := c.GetStats().LastCleanup; !got.Equal(clock.Now()) {
		t.Errorf("Expected LastCleanup %v, got %v", clock.Now(), got)
	}
}

func TestCacheDeleteAndClear(t *testing.T) {
	c := New(time.Minute)

	c.Set("a", 1)
	c.Set("b", 2)
	c.Delete("a")
	if _, ok := c.Get("a"); ok {
		t.Error("Expected a to be deleted")
	}

	c.Clear()
	if c.Len() != 0 {
		t.Errorf("Expected empty cache after Clear, got %d entries", c.Len())
	}
	if got := c.GetStats().TotalKeys; got != 0 {
		t.Errorf("Expected TotalKeys 0, got %d", got)
	}
}

func TestCacheHitRate(t *testing.T) {
	c := New(time.Minute)
	if c.HitRate() != 0 {
		t.Errorf("Expected 0 hit rate on empty cache, got %f", c.HitRate())
	}

	c.Set("k", "v")
	c.Get("k")
	c.Get("k")
	c.Get("k")
	c.Get("missing")

	if rate := c.HitRate(); rate != 75 {
		t.Errorf("Expected 75%% hit rate, got %f", rate)
	}
}

func TestCacheConcurrentAccess(t *testing.T) {
	c := New(time.Minute)

	var wg sync.WaitGroup
	for i := 0; i < 16; i++ {
		wg.Add(1)
		go func(n int) {
			defer wg.Done()
			for j := 0; j < 200; j++ {
				key := fmt.Sprintf("k%d", j%10)
				c.Set(key, n)
				c.Get(key)
			}
		}(i)
	}
	wg.Wait()

	if c.Len() != 10 {
		t.Errorf("Expected 10 keys, got %d", c.Len())
	}
}

func TestGenerateKey(t *testing.T) {
	t.Parallel()

	a := GenerateKey("match", map[string]any{"campaign": "c1", "top_n": 5})
	b := GenerateKey("match", map[string]any{"top_n": 5, "campaign": "c1"})
	if a != b {
		t.Errorf("Expected map key order not to matter: %s != %s", a, b)
	}

	c := GenerateKey("match", map[string]any{"campaign": "c2", "top_n": 5})
	if a == c {
		t.Error("Expected different params to produce different keys")
	}
	if a[:6] != "match:" {
		t.Errorf("Expected namespace prefix, got %s", a)
	}
}
