package realtime

import (
	"sync/atomic"
	"testing"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const settle = 50 * time.Millisecond

func TestDebouncerTrailingEdge(t *testing.T) {
	clock := clockwork.NewFakeClock()
	var runs atomic.Int32
	d := NewDebouncer(clock, 300*time.Millisecond, func() { runs.Add(1) })

	// A burst of three within the window.
	d.Schedule()
	clock.Advance(100 * time.Millisecond)
	d.Schedule()
	clock.Advance(100 * time.Millisecond)
	d.Schedule()
	assert.True(t, d.Pending())

	// 299ms after the last call: not yet.
	clock.Advance(299 * time.Millisecond)
	time.Sleep(settle)
	assert.Equal(t, int32(0), runs.Load(), "must not fire before the window closes")

	clock.Advance(time.Millisecond)
	require.Eventually(t, func() bool { return runs.Load() == 1 }, time.Second, 5*time.Millisecond)
	assert.False(t, d.Pending())

	// Nothing else is pending.
	clock.Advance(time.Second)
	time.Sleep(settle)
	assert.Equal(t, int32(1), runs.Load())
}

func TestDebouncerSeparateBursts(t *testing.T) {
	clock := clockwork.NewFakeClock()
	var runs atomic.Int32
	d := NewDebouncer(clock, 300*time.Millisecond, func() { runs.Add(1) })

	d.Schedule()
	clock.Advance(300 * time.Millisecond)
	require.Eventually(t, func() bool { return runs.Load() == 1 }, time.Second, 5*time.Millisecond)

	d.Schedule()
	clock.Advance(300 * time.Millisecond)
	require.Eventually(t, func() bool { return runs.Load() == 2 }, time.Second, 5*time.Millisecond)
}

func TestDebouncerCancel(t *testing.T) {
	clock := clockwork.NewFakeClock()
	var runs atomic.Int32
	d := NewDebouncer(clock, 300*time.Millisecond, func() { runs.Add(1) })

	d.Schedule()
	d.Cancel()
	assert.False(t, d.Pending())

	clock.Advance(time.Second)
	time.Sleep(settle)
	assert.Equal(t, int32(0), runs.Load())

	// Cancel with nothing pending is a no-op.
	d.Cancel()
}
