package utils

import (
	"context"
	"testing"
	"time"

	"github.com/coder/quartz"
	"github.com/stretchr/testify/assert"
)

func TestRecentCacheDedupesWithinWindow(t *testing.T) {
	ctx := context.Background()
	mock := quartz.NewMock(t)
	rc := NewRecentCache(mock, 2*time.Second)

	assert.False(t, rc.Seen("alice#1|play"))
	assert.True(t, rc.Seen("alice#1|play"))

	// Different key is independent.
	assert.False(t, rc.Seen("bob#1|play"))

	mock.Advance(3 * time.Second).MustWait(ctx)
	assert.False(t, rc.Seen("alice#1|play"))
}

func TestSuppressedDuplicateDoesNotExtendWindow(t *testing.T) {
	ctx := context.Background()
	mock := quartz.NewMock(t)
	rc := NewRecentCache(mock, 2*time.Second)

	// Repeating the same command every 1.5s: only the first repeat falls
	// inside the delivered event's window.
	assert.False(t, rc.Seen("alice#1|hit"))

	mock.Advance(1500 * time.Millisecond).MustWait(ctx)
	assert.True(t, rc.Seen("alice#1|hit"))

	mock.Advance(1500 * time.Millisecond).MustWait(ctx)
	assert.False(t, rc.Seen("alice#1|hit"), "3s past the delivered event")
}

func TestRecentCachePrunesStaleEntries(t *testing.T) {
	ctx := context.Background()
	mock := quartz.NewMock(t)
	rc := NewRecentCache(mock, 2*time.Second)

	for i := 0; i < pruneThreshold+10; i++ {
		rc.Seen(string(rune('a'+i%26)) + string(rune('0'+i/26)))
	}
	mock.Advance(time.Minute).MustWait(ctx)

	rc.Seen("trigger")
	assert.LessOrEqual(t, len(rc.seen), 2)
}
