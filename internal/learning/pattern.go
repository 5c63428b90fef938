package learning

import (
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/signaltrustai/SignalTrust-AI-Scanner-sub000/internal/types"
)

const (
	patternMaxKeys     = 200
	patternMaxPerKey   = 20
	patternStaleAfter  = 90 * 24 * time.Hour
	patternMinLiveSize = 2
)

// PatternKey buckets a symbol's indicator snapshot into a coarse key so
// that similar market setups collide. Missing indicators bucket as "na".
func PatternKey(symbol string, indicators map[string]float64) string {
	var parts []string
	parts = append(parts, strings.ToUpper(symbol))

	rsi := "na"
	if v, ok := indicators["rsi"]; ok {
		switch {
		case v <= 30:
			rsi = "oversold"
		case v >= 70:
			rsi = "overbought"
		default:
			rsi = "mid"
		}
	}
	parts = append(parts, "rsi="+rsi)

	macd := "na"
	if v, ok := indicators["macd"]; ok {
		if v >= 0 {
			macd = "pos"
		} else {
			macd = "neg"
		}
	}
	parts = append(parts, "macd="+macd)

	chg := "na"
	if v, ok := indicators["price_change_24h"]; ok {
		switch {
		case v >= significantMovePct:
			chg = "up"
		case v <= -significantMovePct:
			chg = "down"
		default:
			chg = "flat"
		}
	}
	parts = append(parts, "chg="+chg)

	return strings.Join(parts, ":")
}

// PatternObservation is one remembered directional call for a setup.
type PatternObservation struct {
	Direction types.Direction `json:"direction"`
	At        time.Time       `json:"at"`
}

// PatternMemory is a bounded map from coarse market setups to the
// directions that were called under them. It is advisory only.
type PatternMemory struct {
	mu      sync.Mutex
	entries map[string][]PatternObservation
}

// NewPatternMemory creates an empty pattern memory.
func NewPatternMemory() *PatternMemory {
	return &PatternMemory{entries: make(map[string][]PatternObservation)}
}

// Observe appends a directional call under a setup key, capping the
// per-key list and the key count.
func (p *PatternMemory) Observe(key string, direction types.Direction, at time.Time) {
	p.mu.Lock()
	defer p.mu.Unlock()

	obs := append(p.entries[key], PatternObservation{Direction: direction, At: at})
	if len(obs) > patternMaxPerKey {
		obs = obs[len(obs)-patternMaxPerKey:]
	}
	p.entries[key] = obs

	if len(p.entries) > patternMaxKeys {
		p.dropOldestKeyLocked()
	}
}

// dropOldestKeyLocked evicts the key whose freshest observation is oldest.
func (p *PatternMemory) dropOldestKeyLocked() {
	var victim string
	var victimAt time.Time
	for key, obs := range p.entries {
		freshest := obs[len(obs)-1].At
		if victim == "" || freshest.Before(victimAt) {
			victim = key
			victimAt = freshest
		}
	}
	if victim != "" {
		delete(p.entries, victim)
	}
}

// Get returns the observations for a setup key, newest last.
func (p *PatternMemory) Get(key string) []PatternObservation {
	p.mu.Lock()
	defer p.mu.Unlock()

	obs := p.entries[key]
	out := make([]PatternObservation, len(obs))
	copy(out, obs)
	return out
}

// Bias summarizes a setup's history as the most frequent direction and
// its share of observations. Returns NEUTRAL with share 0 for unknown or
// empty setups.
func (p *PatternMemory) Bias(key string) (types.Direction, float64) {
	p.mu.Lock()
	defer p.mu.Unlock()

	obs := p.entries[key]
	if len(obs) == 0 {
		return types.DirectionNeutral, 0
	}

	counts := make(map[types.Direction]int)
	for _, o := range obs {
		counts[o.Direction]++
	}

	dirs := make([]types.Direction, 0, len(counts))
	for d := range counts {
		dirs = append(dirs, d)
	}
	sort.Slice(dirs, func(i, j int) bool {
		if counts[dirs[i]] != counts[dirs[j]] {
			return counts[dirs[i]] > counts[dirs[j]]
		}
		return dirs[i] < dirs[j]
	})

	top := dirs[0]
	return top, float64(counts[top]) / float64(len(obs))
}

// PruneStale drops keys whose freshest observation is older than 90 days
// and keys that collapse below two live observations.
func (p *PatternMemory) PruneStale(now time.Time) {
	p.mu.Lock()
	defer p.mu.Unlock()

	staleCutoff := now.Add(-patternStaleAfter)
	for key, obs := range p.entries {
		live := obs[:0:0]
		for _, o := range obs {
			if o.At.After(staleCutoff) {
				live = append(live, o)
			}
		}
		if len(live) < patternMinLiveSize {
			delete(p.entries, key)
			continue
		}
		p.entries[key] = live
	}
}

// Len returns the number of tracked setup keys.
func (p *PatternMemory) Len() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return len(p.entries)
}

// String renders a compact debug view.
func (p *PatternMemory) String() string {
	p.mu.Lock()
	defer p.mu.Unlock()
	return fmt.Sprintf("PatternMemory(keys=%d)", len(p.entries))
}
