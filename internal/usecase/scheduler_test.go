package usecase

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeRunner struct {
	calls int
	err   error
}

func (f *fakeRunner) ScanAll(context.Context) (ScanReport, error) {
	f.calls++
	return ScanReport{Sources: 1}, f.err
}

// newTickScheduler returns an armed scheduler with a controllable clock so
// tests drive ticks directly instead of waiting on real timers.
func newTickScheduler(runner *fakeRunner, interval time.Duration, now time.Time) (*Scheduler, *time.Time) {
	clock := now
	s := NewScheduler(runner, interval, time.Hour, nil)
	s.now = func() time.Time { return clock }
	s.state = StateArmed
	return s, &clock
}

func TestSchedulerFirstTickScansImmediately(t *testing.T) {
	runner := &fakeRunner{}
	start := time.Date(2026, 8, 10, 0, 0, 0, 0, time.UTC)
	s, _ := newTickScheduler(runner, 72*time.Hour, start)

	assert.True(t, s.handleTick(context.Background(), start))
	assert.Equal(t, 1, runner.calls)
	assert.Equal(t, start, s.LastScan())
}

func TestSchedulerSkipsTicksWithinInterval(t *testing.T) {
	runner := &fakeRunner{}
	start := time.Date(2026, 8, 10, 0, 0, 0, 0, time.UTC)
	s, clock := newTickScheduler(runner, 72*time.Hour, start)

	require.True(t, s.handleTick(context.Background(), start))

	for hour := 1; hour < 72; hour++ {
		tick := start.Add(time.Duration(hour) * time.Hour)
		*clock = tick
		assert.False(t, s.handleTick(context.Background(), tick))
	}
	assert.Equal(t, 1, runner.calls)

	boundary := start.Add(72 * time.Hour)
	*clock = boundary
	assert.True(t, s.handleTick(context.Background(), boundary))
	assert.Equal(t, 2, runner.calls)
	assert.Equal(t, boundary, s.LastScan())
}

func TestSchedulerFailedScanRetriesNextTick(t *testing.T) {
	runner := &fakeRunner{err: errors.New("transport down")}
	start := time.Date(2026, 8, 10, 0, 0, 0, 0, time.UTC)
	s, clock := newTickScheduler(runner, 72*time.Hour, start)

	assert.False(t, s.handleTick(context.Background(), start))
	assert.True(t, s.LastScan().IsZero())

	// Still due on the very next tick because no pass ever completed.
	next := start.Add(time.Hour)
	*clock = next
	runner.err = nil
	assert.True(t, s.handleTick(context.Background(), next))
	assert.Equal(t, 2, runner.calls)
	assert.Equal(t, next, s.LastScan())
}

func TestSchedulerNoSourcesDoesNotAdvanceLastScan(t *testing.T) {
	runner := &fakeRunner{err: ErrNoSources}
	start := time.Date(2026, 8, 10, 0, 0, 0, 0, time.UTC)
	s, _ := newTickScheduler(runner, 72*time.Hour, start)

	assert.False(t, s.handleTick(context.Background(), start))
	assert.True(t, s.LastScan().IsZero())
	assert.Equal(t, StateArmed, s.State())
}

func TestSchedulerStartStop(t *testing.T) {
	runner := &fakeRunner{err: ErrNoSources}
	s := NewScheduler(runner, 72*time.Hour, time.Hour, nil)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	s.Start(ctx)
	assert.Eventually(t, func() bool { return runner.calls >= 1 }, time.Second, 10*time.Millisecond)

	s.Stop()
	assert.Eventually(t, func() bool { return s.State() == StateStopped }, time.Second, 10*time.Millisecond)
}

func TestSchedulerTickDoesNothingWhenStopped(t *testing.T) {
	runner := &fakeRunner{}
	s := NewScheduler(runner, time.Hour, time.Hour, nil)
	s.state = StateStopped

	assert.False(t, s.handleTick(context.Background(), time.Now()))
	assert.Zero(t, runner.calls)
}
