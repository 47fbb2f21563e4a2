package utils

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/coder/quartz"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type emission struct {
	text string
	at   time.Time
}

type emitRecorder struct {
	mu    sync.Mutex
	clock quartz.Clock
	got   []emission
}

func (r *emitRecorder) emit(text string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.got = append(r.got, emission{text: text, at: r.clock.Now()})
}

func (r *emitRecorder) emissions() []emission {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]emission(nil), r.got...)
}

func TestDispatcherPreservesOrderAndSpacing(t *testing.T) {
	ctx := context.Background()
	mock := quartz.NewMock(t)
	rec := &emitRecorder{clock: mock}
	d := NewDispatcher(mock, 2*time.Second, rec.emit)

	d.Enqueue("A")
	d.Enqueue("B")
	d.Enqueue("C")

	for i := 0; i < 3; i++ {
		mock.Advance(2 * time.Second).MustWait(ctx)
	}

	got := rec.emissions()
	require.Len(t, got, 3)
	assert.Equal(t, "A", got[0].text)
	assert.Equal(t, "B", got[1].text)
	assert.Equal(t, "C", got[2].text)

	assert.GreaterOrEqual(t, got[1].at.Sub(got[0].at), 2*time.Second)
	assert.GreaterOrEqual(t, got[2].at.Sub(got[1].at), 2*time.Second)
	assert.Equal(t, 0, d.Pending())
}

func TestEnqueueDuringDrainDoesNotStartSecondLoop(t *testing.T) {
	ctx := context.Background()
	mock := quartz.NewMock(t)
	rec := &emitRecorder{clock: mock}
	d := NewDispatcher(mock, 2*time.Second, rec.emit)

	d.Enqueue("A")
	mock.Advance(time.Second).MustWait(ctx)

	// Joins the running drain instead of spawning another.
	d.Enqueue("B")

	mock.Advance(time.Second).MustWait(ctx)
	mock.Advance(2 * time.Second).MustWait(ctx)

	got := rec.emissions()
	require.Len(t, got, 2)
	assert.Equal(t, "A", got[0].text)
	assert.Equal(t, "B", got[1].text)
	assert.Equal(t, 2*time.Second, got[1].at.Sub(got[0].at))
}

func TestDrainStopsWhenEmptyAndRestarts(t *testing.T) {
	ctx := context.Background()
	mock := quartz.NewMock(t)
	rec := &emitRecorder{clock: mock}
	d := NewDispatcher(mock, 2*time.Second, rec.emit)

	d.Enqueue("A")
	mock.Advance(2 * time.Second).MustWait(ctx)
	require.Len(t, rec.emissions(), 1)

	d.Enqueue("B")
	mock.Advance(2 * time.Second).MustWait(ctx)

	got := rec.emissions()
	require.Len(t, got, 2)
	assert.Equal(t, "B", got[1].text)
	assert.Equal(t, 0, d.Pending())
}
