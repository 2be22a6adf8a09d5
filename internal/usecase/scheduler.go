package usecase

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"
)

// State names the scheduler lifecycle phases.
type State string

const (
	StateIdle     State = "idle"
	StateArmed    State = "armed"
	StateScanning State = "scanning"
	StateStopped  State = "stopped"
)

// ScanRunner is the single operation the scheduler drives.
type ScanRunner interface {
	ScanAll(ctx context.Context) (ScanReport, error)
}

// Scheduler re-runs the pipeline across all channels once per configured
// interval. The timer tick only bounds scheduling latency; the decision to
// scan compares elapsed time since the last completed pass.
type Scheduler struct {
	runner   ScanRunner
	interval time.Duration
	tick     time.Duration
	now      func() time.Time
	logger   *zap.Logger

	mu       sync.Mutex
	state    State
	lastScan time.Time
	stop     chan struct{}
}

// NewScheduler builds a stopped scheduler. Zero durations fall back to the
// defaults: a 3-day scan interval checked hourly.
func NewScheduler(runner ScanRunner, interval, tick time.Duration, logger *zap.Logger) *Scheduler {
	if interval <= 0 {
		interval = 72 * time.Hour
	}
	if tick <= 0 {
		tick = time.Hour
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Scheduler{
		runner:   runner,
		interval: interval,
		tick:     tick,
		now:      time.Now,
		logger:   logger,
		state:    StateIdle,
	}
}

// Start arms the interval timer and returns; the scan loop runs in the
// background until Stop or context cancellation. Starting twice is a no-op.
func (s *Scheduler) Start(ctx context.Context) {
	s.mu.Lock()
	if s.stop != nil {
		s.mu.Unlock()
		return
	}
	stop := make(chan struct{})
	s.stop = stop
	s.state = StateArmed
	s.mu.Unlock()

	s.logger.Info("scan scheduler armed",
		zap.Duration("interval", s.interval),
		zap.Duration("tick", s.tick))

	go func() {
		ticker := time.NewTicker(s.tick)
		defer ticker.Stop()

		s.handleTick(ctx, s.now())
		for {
			select {
			case t := <-ticker.C:
				s.handleTick(ctx, t)
			case <-ctx.Done():
				s.markStopped()
				return
			case <-stop:
				s.markStopped()
				return
			}
		}
	}()
}

// Stop halts the loop; terminal until Start is called again.
func (s *Scheduler) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.stop == nil {
		return
	}
	close(s.stop)
	s.stop = nil
	s.state = StateStopped
}

// State reports the current lifecycle phase.
func (s *Scheduler) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// LastScan returns the completion time of the last successful pass, zero if
// none has completed yet.
func (s *Scheduler) LastScan() time.Time {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lastScan
}

// handleTick triggers a scan when the interval has elapsed (or no scan has
// ever completed). The last-scan timestamp advances only when the pass ran
// end to end; a pass that could not start at all retries on the next tick.
func (s *Scheduler) handleTick(ctx context.Context, t time.Time) bool {
	s.mu.Lock()
	if s.state != StateArmed || !s.due(t) {
		s.mu.Unlock()
		return false
	}
	s.state = StateScanning
	s.mu.Unlock()

	report, err := s.runner.ScanAll(ctx)

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.state == StateScanning {
		s.state = StateArmed
	}
	if err != nil {
		s.logger.Warn("scheduled scan skipped", zap.Error(err))
		return false
	}

	s.lastScan = s.now()
	s.logger.Info("scheduled scan complete",
		zap.Int("sources", report.Sources),
		zap.Int("failed", report.Failed),
		zap.Int("people", report.People),
		zap.Int("projects", report.Projects))
	return true
}

func (s *Scheduler) due(t time.Time) bool {
	return s.lastScan.IsZero() || t.Sub(s.lastScan) >= s.interval
}

func (s *Scheduler) markStopped() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.state = StateStopped
	s.stop = nil
}
