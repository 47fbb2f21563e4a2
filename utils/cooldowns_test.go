package utils

import (
	"context"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/coder/quartz"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestLedger(t *testing.T) (*CooldownLedger, *quartz.Mock) {
	mock := quartz.NewMock(t)
	return NewCooldownLedger(mock, 5*time.Minute, time.Minute, 10*time.Minute), mock
}

func TestFirstRoundIsNeverDeniedByPersonalCheck(t *testing.T) {
	ledger, _ := newTestLedger(t)
	assert.NoError(t, ledger.CanStart("alice#1", false))
}

func TestPersonalCooldownDenies(t *testing.T) {
	ctx := context.Background()
	ledger, mock := newTestLedger(t)

	ledger.Record("alice#1")
	mock.Advance(10 * time.Second).MustWait(ctx)

	err := ledger.CanStart("alice#1", false)
	require.Error(t, err)

	cd, ok := err.(*CooldownError)
	require.True(t, ok)
	assert.Equal(t, ScopePersonal, cd.Scope)
	assert.LessOrEqual(t, cd.RemainingSeconds(), 300)
	assert.Greater(t, cd.RemainingSeconds(), 0)
}

func TestGlobalCooldownDeniesOtherPlayers(t *testing.T) {
	ctx := context.Background()
	ledger, mock := newTestLedger(t)

	ledger.Record("alice#1")
	mock.Advance(10 * time.Second).MustWait(ctx)

	err := ledger.CanStart("bob#1", false)
	require.Error(t, err)

	cd, ok := err.(*CooldownError)
	require.True(t, ok)
	assert.Equal(t, ScopeGlobal, cd.Scope)
	assert.LessOrEqual(t, cd.RemainingSeconds(), 60)
}

func TestCooldownsExpire(t *testing.T) {
	ctx := context.Background()
	ledger, mock := newTestLedger(t)

	ledger.Record("alice#1")

	mock.Advance(time.Minute).MustWait(ctx)
	assert.NoError(t, ledger.CanStart("bob#1", false), "global window has passed")

	mock.Advance(4 * time.Minute).MustWait(ctx)
	assert.NoError(t, ledger.CanStart("alice#1", false), "personal window has passed")
}

func TestExemptPlayerIsNeverDenied(t *testing.T) {
	ledger, _ := newTestLedger(t)

	ledger.Record("alice#1")
	assert.NoError(t, ledger.CanStart("alice#1", true))
	assert.NoError(t, ledger.CanStart("bob#1", true))
}

func TestGatherCooldownIsSharedGlobally(t *testing.T) {
	ctx := context.Background()
	ledger, mock := newTestLedger(t)

	require.NoError(t, ledger.TryGather())

	// Closed for everyone, not just the gatherer.
	err := ledger.TryGather()
	require.Error(t, err)
	cd, ok := err.(*CooldownError)
	require.True(t, ok)
	assert.Equal(t, ScopeGlobal, cd.Scope)

	mock.Advance(10 * time.Minute).MustWait(ctx)
	assert.NoError(t, ledger.TryGather())
}

func TestGatherClaimIsAtomic(t *testing.T) {
	ledger, _ := newTestLedger(t)

	// Two back-to-back claims at the same instant: the first closes the
	// window before the second is checked, so only one may succeed.
	require.NoError(t, ledger.TryGather())
	assert.Error(t, ledger.TryGather())
	assert.Error(t, ledger.TryGather())
}

func TestGatherClaimIsAtomicUnderConcurrency(t *testing.T) {
	ledger, _ := newTestLedger(t)

	const attempts = 64
	var wg sync.WaitGroup
	var granted atomic.Int32

	for i := 0; i < attempts; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if ledger.TryGather() == nil {
				granted.Add(1)
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, int32(1), granted.Load(), "one window admits one gather")
}

func TestVoidGatherReopensWindow(t *testing.T) {
	ledger, _ := newTestLedger(t)

	require.NoError(t, ledger.TryGather())
	require.Error(t, ledger.TryGather())

	// A grant that did not go through releases its claim.
	ledger.VoidGather()
	assert.NoError(t, ledger.TryGather())
}
