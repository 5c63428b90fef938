// Package memory provides the shared analysis context: a bounded, TTL-based
// store of recent per-symbol conclusions that lets later backend calls see
// what earlier backends decided. It is advisory memory only — losing it
// degrades orchestration quality, never correctness.
package memory

import (
	"container/list"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/signaltrustai/SignalTrust-AI-Scanner-sub000/internal/types"
)

// DefaultMaxEntries is the capacity bound applied when none is configured.
const DefaultMaxEntries = 300

// DefaultTTL is the entry lifetime applied when Store is called with ttl <= 0.
const DefaultTTL = 15 * time.Minute

// Key prefixes for the fixed context categories.
const (
	PrefixAnalysis   = "analysis:"
	PrefixPrediction = "prediction:"
	PrefixSignal     = "signal:"
)

// AnalysisKey builds the canonical key for an analysis snippet.
func AnalysisKey(symbol string, taskType types.TaskType) string {
	return fmt.Sprintf("%s%s:%s", PrefixAnalysis, symbol, taskType)
}

// Snapshot is the compact conclusion a backend leaves behind for the ones
// that run after it.
type Snapshot struct {
	Direction  types.Direction `json:"direction"`
	Confidence float64         `json:"confidence"`
	Backend    string          `json:"backend"`
	KeyFactors []string        `json:"key_factors,omitempty"`
	Timestamp  time.Time       `json:"timestamp"`
}

// Entry is a stored context value together with its key and storage time.
type Entry struct {
	Key      string    `json:"key"`
	Value    any       `json:"value"`
	StoredAt time.Time `json:"stored_at"`
}

// SymbolContext aggregates the recent context categories for one symbol.
type SymbolContext struct {
	RecentAnalyses    []Entry `json:"recent_analyses"`
	RecentPredictions []Entry `json:"recent_predictions"`
	RecentSignals     []Entry `json:"recent_signals"`
}

// record is the internal storage structure for a context entry.
type record struct {
	key       string
	value     any
	storedAt  time.Time
	expiresAt time.Time
}

// SharedContext is a bounded TTL+LRU store safe for concurrent use.
type SharedContext struct {
	mu         sync.Mutex
	entries    map[string]*list.Element
	order      *list.List // front = most recently touched
	maxEntries int
}

// NewSharedContext creates a SharedContext bounded to maxEntries.
// If maxEntries is 0 or negative, DefaultMaxEntries is used.
func NewSharedContext(maxEntries int) *SharedContext {
	if maxEntries <= 0 {
		maxEntries = DefaultMaxEntries
	}
	return &SharedContext{
		entries:    make(map[string]*list.Element),
		order:      list.New(),
		maxEntries: maxEntries,
	}
}

// Store saves a value under key with the given TTL, evicting the
// least-recently-touched entries once capacity is exceeded.
func (s *SharedContext) Store(key string, value any, ttl time.Duration) {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	now := time.Now()

	s.mu.Lock()
	defer s.mu.Unlock()

	if elem, ok := s.entries[key]; ok {
		rec := elem.Value.(*record)
		rec.value = value
		rec.storedAt = now
		rec.expiresAt = now.Add(ttl)
		s.order.MoveToFront(elem)
		return
	}

	elem := s.order.PushFront(&record{
		key:       key,
		value:     value,
		storedAt:  now,
		expiresAt: now.Add(ttl),
	})
	s.entries[key] = elem

	for len(s.entries) > s.maxEntries {
		oldest := s.order.Back()
		if oldest == nil {
			break
		}
		s.removeLocked(oldest)
	}
}

// Get retrieves a live value by key. An expired entry behaves as a miss
// and is removed from storage.
func (s *SharedContext) Get(key string) (any, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	elem, ok := s.entries[key]
	if !ok {
		return nil, false
	}

	rec := elem.Value.(*record)
	if time.Now().After(rec.expiresAt) {
		s.removeLocked(elem)
		return nil, false
	}

	s.order.MoveToFront(elem)
	return rec.value, true
}

// GetRecent returns up to limit live entries whose keys start with prefix,
// newest-first by storage time. Expired entries encountered during the scan
// are removed. Reading recency order is not a touch: scans must not reorder
// the eviction queue.
func (s *SharedContext) GetRecent(prefix string, limit int) []Entry {
	if limit <= 0 {
		return nil
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	now := time.Now()
	var out []Entry

	// The list runs in touch order, not storage order, so collect every
	// live match and sort by storage time before applying the limit.
	elem := s.order.Front()
	for elem != nil {
		next := elem.Next()
		rec := elem.Value.(*record)

		if now.After(rec.expiresAt) {
			s.removeLocked(elem)
		} else if strings.HasPrefix(rec.key, prefix) {
			out = append(out, Entry{Key: rec.key, Value: rec.value, StoredAt: rec.storedAt})
		}
		elem = next
	}

	sort.Slice(out, func(i, j int) bool {
		return out[i].StoredAt.After(out[j].StoredAt)
	})
	if len(out) > limit {
		out = out[:limit]
	}
	return out
}

// GetSymbolContext aggregates the recent analyses, predictions, and signals
// for a symbol into one advisory bundle.
func (s *SharedContext) GetSymbolContext(symbol string) SymbolContext {
	return SymbolContext{
		RecentAnalyses:    s.GetRecent(PrefixAnalysis+symbol+":", 5),
		RecentPredictions: s.GetRecent(PrefixPrediction+symbol+":", 5),
		RecentSignals:     s.GetRecent(PrefixSignal+symbol+":", 5),
	}
}

// Len returns the current number of stored entries.
func (s *SharedContext) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.entries)
}

func (s *SharedContext) removeLocked(elem *list.Element) {
	rec := elem.Value.(*record)
	s.order.Remove(elem)
	delete(s.entries, rec.key)
}
