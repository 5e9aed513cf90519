package tokenopt

import (
	"crypto/md5"
	"encoding/hex"
	"regexp"
	"sync"
	"time"
)

const (
	defaultCacheTTL  = 180 * time.Second
	defaultCacheSize = 100
	// cacheKeyTail bounds how much normalized content feeds the key.
	cacheKeyTail = 500
)

var (
	normClockRe   = regexp.MustCompile(`\d{2}:\d{2}:\d{2}`)
	normMillisRe  = regexp.MustCompile(`\d+ms`)
	normLineColRe = regexp.MustCompile(`:\d+:\d+`)
	normPercentRe = regexp.MustCompile(`\d+%`)
)

type cacheEntry struct {
	storedAt time.Time
	response string
	stage    string
}

// ResponseCache remembers recent agent replies keyed by a normalized
// fingerprint of the terminal context, so near-identical situations do
// not burn another LLM call. It is safe for concurrent use.
type ResponseCache struct {
	mu      sync.Mutex
	entries map[string]cacheEntry
	ttl     time.Duration
	maxSize int
	now     func() time.Time
}

// NewResponseCache returns a cache with a 180 second TTL and room for
// 100 entries.
func NewResponseCache() *ResponseCache {
	return &ResponseCache{
		entries: make(map[string]cacheEntry),
		ttl:     defaultCacheTTL,
		maxSize: defaultCacheSize,
		now:     time.Now,
	}
}

// normalize strips volatile substrings so small differences such as
// timestamps, durations, line numbers, and progress percentages hash
// identically, then keeps only the trailing context.
func normalize(content string) string {
	n := normClockRe.ReplaceAllString(content, "TIME")
	n = normMillisRe.ReplaceAllString(n, "Nms")
	n = normLineColRe.ReplaceAllString(n, ":N:N")
	n = normPercentRe.ReplaceAllString(n, "N%")
	if len(n) > cacheKeyTail {
		n = n[len(n)-cacheKeyTail:]
	}
	return n
}

func cacheKey(content, role string) string {
	sum := md5.Sum([]byte(role + ":" + normalize(content)))
	return hex.EncodeToString(sum[:])
}

// Get returns the cached response and stage hint for this context and
// role, if a fresh entry exists. Expired entries are removed on read.
func (c *ResponseCache) Get(content, role string) (response, stage string, ok bool) {
	key := cacheKey(content, role)

	c.mu.Lock()
	defer c.mu.Unlock()

	entry, found := c.entries[key]
	if !found {
		return "", "", false
	}
	if c.now().Sub(entry.storedAt) >= c.ttl {
		delete(c.entries, key)
		return "", "", false
	}
	return entry.response, entry.stage, true
}

// Set stores a response for this context and role, evicting expired and
// oldest entries first when the cache is full.
func (c *ResponseCache) Set(content, role, response, stage string) {
	key := cacheKey(content, role)

	c.mu.Lock()
	defer c.mu.Unlock()

	c.cleanupLocked()
	c.entries[key] = cacheEntry{storedAt: c.now(), response: response, stage: stage}
}

// cleanupLocked drops expired entries, then trims the oldest entries
// when the cache is at capacity. Trimming removes a small batch beyond
// the overflow so back-to-back sets do not re-trim every time.
func (c *ResponseCache) cleanupLocked() {
	now := c.now()
	for k, e := range c.entries {
		if now.Sub(e.storedAt) >= c.ttl {
			delete(c.entries, k)
		}
	}

	if len(c.entries) < c.maxSize {
		return
	}
	excess := len(c.entries) - c.maxSize + 10
	for i := 0; i < excess; i++ {
		oldestKey := ""
		var oldest time.Time
		for k, e := range c.entries {
			if oldestKey == "" || e.storedAt.Before(oldest) {
				oldestKey = k
				oldest = e.storedAt
			}
		}
		if oldestKey == "" {
			return
		}
		delete(c.entries, oldestKey)
	}
}

// Len reports the current entry count.
func (c *ResponseCache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.entries)
}

// Clear drops every entry.
func (c *ResponseCache) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries = make(map[string]cacheEntry)
}
