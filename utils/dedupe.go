package utils

import (
	"sync"
	"time"

	"github.com/coder/quartz"
)

// pruneThreshold bounds how large the seen map grows before stale entries
// are swept out inline.
const pruneThreshold = 64

// RecentCache remembers keys for a short window. The command router uses
// it to absorb duplicate deliveries of the same (identity, text) pair
// from the external channel.
type RecentCache struct {
	mu     sync.Mutex
	clock  quartz.Clock
	window time.Duration
	seen   map[string]time.Time
}

// NewRecentCache creates a cache with the given dedupe window.
func NewRecentCache(clock quartz.Clock, window time.Duration) *RecentCache {
	return &RecentCache{
		clock:  clock,
		window: window,
		seen:   make(map[string]time.Time),
	}
}

// Seen reports whether key was recorded within the window. Only a miss
// records; a suppressed duplicate does not extend its own window.
func (rc *RecentCache) Seen(key string) bool {
	rc.mu.Lock()
	defer rc.mu.Unlock()

	now := rc.clock.Now()

	if len(rc.seen) > pruneThreshold {
		for k, at := range rc.seen {
			if now.Sub(at) >= rc.window {
				delete(rc.seen, k)
			}
		}
	}

	if at, ok := rc.seen[key]; ok && now.Sub(at) < rc.window {
		return true
	}
	rc.seen[key] = now
	return false
}
