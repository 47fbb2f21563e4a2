package utils

import (
	"sync"
	"time"

	"github.com/coder/quartz"
)

// CooldownLedger tracks when each player last finished a round, when the
// last round finished table-wide, and when resources were last gathered.
// It answers "may this happen now" without touching any other component's
// state; exemption is decided by the caller and passed in.
type CooldownLedger struct {
	mu    sync.Mutex
	clock quartz.Clock

	personal time.Duration
	global   time.Duration
	gather   time.Duration

	lastPlayed map[string]time.Time
	lastRound  time.Time
	lastGather time.Time
}

// NewCooldownLedger creates a ledger with the given windows.
func NewCooldownLedger(clock quartz.Clock, personal, global, gather time.Duration) *CooldownLedger {
	return &CooldownLedger{
		clock:      clock,
		personal:   personal,
		global:     global,
		gather:     gather,
		lastPlayed: make(map[string]time.Time),
	}
}

// CanStart reports whether the player may start a round now. Exempt
// players skip both checks. A player with no prior round is never denied
// by the personal window.
func (cl *CooldownLedger) CanStart(identity string, exempt bool) error {
	if exempt {
		return nil
	}

	cl.mu.Lock()
	defer cl.mu.Unlock()

	now := cl.clock.Now()

	if last, ok := cl.lastPlayed[identity]; ok {
		if remaining := cl.personal - now.Sub(last); remaining > 0 {
			return &CooldownError{Scope: ScopePersonal, Remaining: remaining}
		}
	}

	if !cl.lastRound.IsZero() {
		if remaining := cl.global - now.Sub(cl.lastRound); remaining > 0 {
			return &CooldownError{Scope: ScopeGlobal, Remaining: remaining}
		}
	}

	return nil
}

// Record sets both the personal and global timestamps. Called exactly
// once per round, at settlement, regardless of outcome.
func (cl *CooldownLedger) Record(identity string) {
	cl.mu.Lock()
	defer cl.mu.Unlock()

	now := cl.clock.Now()
	cl.lastPlayed[identity] = now
	cl.lastRound = now
}

// TryGather claims the shared gather window. Check and record happen
// under one lock hold, so concurrent claims can never both succeed
// inside the same window. The window is global: one gather by anyone
// closes it for everyone. A claim whose grant does not go through must
// be released with VoidGather.
func (cl *CooldownLedger) TryGather() error {
	cl.mu.Lock()
	defer cl.mu.Unlock()

	now := cl.clock.Now()
	if !cl.lastGather.IsZero() {
		if remaining := cl.gather - now.Sub(cl.lastGather); remaining > 0 {
			return &CooldownError{Scope: ScopeGlobal, Remaining: remaining}
		}
	}
	cl.lastGather = now
	return nil
}

// VoidGather releases a claim made by TryGather. The claim only
// succeeded because the previous window had passed, so reopening is a
// plain reset.
func (cl *CooldownLedger) VoidGather() {
	cl.mu.Lock()
	defer cl.mu.Unlock()
	cl.lastGather = time.Time{}
}
