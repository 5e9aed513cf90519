package tokenopt

import (
	"fmt"
	"testing"
	"time"
)

// fakeClock lets the tests move time without sleeping.
type fakeClock struct {
	t time.Time
}

func (c *fakeClock) now() time.Time          { return c.t }
func (c *fakeClock) advance(d time.Duration) { c.t = c.t.Add(d) }

func newTestCache() (*ResponseCache, *fakeClock) {
	clock := &fakeClock{t: time.Unix(1_700_000_000, 0)}
	cache := NewResponseCache()
	cache.now = clock.now
	return cache, clock
}

func TestCacheHitAndMiss(t *testing.T) {
	cache, _ := newTestCache()

	if _, _, ok := cache.Get("some output", "monitor"); ok {
		t.Fatal("empty cache should miss")
	}

	cache.Set("some output", "monitor", "WAIT", "waiting")

	resp, stage, ok := cache.Get("some output", "monitor")
	if !ok {
		t.Fatal("expected a hit")
	}
	if resp != "WAIT" || stage != "waiting" {
		t.Errorf("got (%q, %q), want (WAIT, waiting)", resp, stage)
	}

	if _, _, ok := cache.Get("some output", "architect"); ok {
		t.Error("a different role must not hit the same entry")
	}
}

func TestCacheNormalizesVolatileContent(t *testing.T) {
	cache, _ := newTestCache()

	cache.Set("12:01:05 build took 340ms at main.go:10:4, 45% done", "monitor", "WAIT", "")

	// Same shape of output, different numbers.
	_, _, ok := cache.Get("13:22:59 build took 912ms at main.go:88:1, 97% done", "monitor")
	if !ok {
		t.Error("timestamps, durations, positions, and percentages should normalize away")
	}
}

func TestCacheExpiry(t *testing.T) {
	cache, clock := newTestCache()

	cache.Set("ctx", "monitor", "WAIT", "")

	clock.advance(179 * time.Second)
	if _, _, ok := cache.Get("ctx", "monitor"); !ok {
		t.Error("entry should still be fresh just under the TTL")
	}

	clock.advance(2 * time.Second)
	if _, _, ok := cache.Get("ctx", "monitor"); ok {
		t.Error("entry should expire after the TTL")
	}
	if cache.Len() != 0 {
		t.Error("expired entry should be removed on read")
	}
}

func TestCacheEviction(t *testing.T) {
	cache, clock := newTestCache()

	for i := 0; i < 100; i++ {
		cache.Set(fmt.Sprintf("distinct context %d with enough text", i), "monitor", "WAIT", "")
		clock.advance(time.Millisecond)
	}
	if cache.Len() != 100 {
		t.Fatalf("Len = %d, want 100", cache.Len())
	}

	// The next set finds the cache full and trims a batch of the oldest.
	cache.Set("one more context entirely", "monitor", "WAIT", "")
	if cache.Len() != 91 {
		t.Errorf("Len = %d, want 91 after eviction", cache.Len())
	}

	if _, _, ok := cache.Get("distinct context 0 with enough text", "monitor"); ok {
		t.Error("the oldest entry should have been evicted")
	}
	if _, _, ok := cache.Get("one more context entirely", "monitor"); !ok {
		t.Error("the newest entry should survive eviction")
	}
}

func TestCacheClear(t *testing.T) {
	cache, _ := newTestCache()

	cache.Set("a", "monitor", "WAIT", "")
	cache.Set("b", "monitor", "WAIT", "")
	cache.Clear()
	if cache.Len() != 0 {
		t.Errorf("Len = %d, want 0 after Clear", cache.Len())
	}
}
