// Package cache provides a bounded, TTL-based response cache for merged
// analysis results. Keys are stable hashes over the request triple so that
// logically identical requests collide regardless of incidental map ordering.
package cache

import (
	"container/list"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/signaltrustai/SignalTrust-AI-Scanner-sub000/internal/types"
)

// DefaultMaxEntries is the capacity bound applied when none is configured.
const DefaultMaxEntries = 500

// DefaultTTL is the entry lifetime applied when Put is called with ttl <= 0.
const DefaultTTL = 5 * time.Minute

// Stats holds observability counters for the cache.
type Stats struct {
	Hits        int64 `json:"hits"`
	Misses      int64 `json:"misses"`
	Evictions   int64 `json:"evictions"`
	Expirations int64 `json:"expirations"`
	Size        int   `json:"size"`
}

// entry is the internal storage structure for a cached result.
type entry struct {
	key       string
	value     any
	expiresAt time.Time
}

// ResponseCache is a bounded TTL+LRU cache safe for concurrent use.
// A single mutex guards the map and the recency list; operations are
// short and allocation-light, so sharding is not needed at this size.
type ResponseCache struct {
	mu         sync.Mutex
	entries    map[string]*list.Element
	order      *list.List // front = most recently touched
	maxEntries int

	hits        int64
	misses      int64
	evictions   int64
	expirations int64
}

// New creates a ResponseCache bounded to maxEntries.
// If maxEntries is 0 or negative, DefaultMaxEntries is used.
func New(maxEntries int) *ResponseCache {
	if maxEntries <= 0 {
		maxEntries = DefaultMaxEntries
	}
	return &ResponseCache{
		entries:    make(map[string]*list.Element),
		order:      list.New(),
		maxEntries: maxEntries,
	}
}

// Key derives the stable cache key for a request triple. The data map is
// canonicalized through encoding/json, which emits object keys in sorted
// order, so field ordering in the caller never changes the key.
func Key(taskType types.TaskType, prompt string, data map[string]any) string {
	canonical, err := json.Marshal(data)
	if err != nil {
		// Unmarshalable payloads still deserve a deterministic key.
		canonical = []byte(fmt.Sprintf("%v", data))
	}
	h := sha256.New()
	h.Write([]byte(taskType))
	h.Write([]byte{0})
	h.Write([]byte(prompt))
	h.Write([]byte{0})
	h.Write(canonical)
	return hex.EncodeToString(h.Sum(nil))
}

// Get retrieves the cached result for the request triple.
// An expired entry behaves as a miss and is removed from storage.
// A hit moves the entry to the front of the recency order.
func (c *ResponseCache) Get(taskType types.TaskType, prompt string, data map[string]any) (any, bool) {
	key := Key(taskType, prompt, data)

	c.mu.Lock()
	defer c.mu.Unlock()

	elem, ok := c.entries[key]
	if !ok {
		c.misses++
		return nil, false
	}

	ent := elem.Value.(*entry)
	if time.Now().After(ent.expiresAt) {
		c.removeLocked(elem)
		c.expirations++
		c.misses++
		return nil, false
	}

	c.order.MoveToFront(elem)
	c.hits++
	return ent.value, true
}

// Put stores the result for the request triple with the given TTL.
// If the cache exceeds its capacity the least-recently-touched entries
// are evicted until it is back under the bound.
func (c *ResponseCache) Put(taskType types.TaskType, prompt string, data map[string]any, value any, ttl time.Duration) {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	key := Key(taskType, prompt, data)
	expiresAt := time.Now().Add(ttl)

	c.mu.Lock()
	defer c.mu.Unlock()

	if elem, ok := c.entries[key]; ok {
		ent := elem.Value.(*entry)
		ent.value = value
		ent.expiresAt = expiresAt
		c.order.MoveToFront(elem)
		return
	}

	elem := c.order.PushFront(&entry{key: key, value: value, expiresAt: expiresAt})
	c.entries[key] = elem

	for len(c.entries) > c.maxEntries {
		oldest := c.order.Back()
		if oldest == nil {
			break
		}
		c.removeLocked(oldest)
		c.evictions++
	}
}

// Len returns the current number of live and expired-but-unswept entries.
func (c *ResponseCache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.entries)
}

// Stats returns a snapshot of the cache counters.
func (c *ResponseCache) Stats() Stats {
	c.mu.Lock()
	defer c.mu.Unlock()
	return Stats{
		Hits:        c.hits,
		Misses:      c.misses,
		Evictions:   c.evictions,
		Expirations: c.expirations,
		Size:        len(c.entries),
	}
}

// Clear removes all entries. Counters are preserved.
func (c *ResponseCache) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries = make(map[string]*list.Element)
	c.order.Init()
}

func (c *ResponseCache) removeLocked(elem *list.Element) {
	ent := elem.Value.(*entry)
	c.order.Remove(elem)
	delete(c.entries, ent.key)
}
