package reconcile

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"github.com/rs/zerolog"

	"roombooking/internal/pkg/clock"
)

// Scheduler runs the sweeper on a fixed interval. At most one sweep runs at
// a time: a tick that arrives while a sweep is in flight is dropped, and
// with a Lock configured the same holds across replicas.
type Scheduler struct {
	sweeper  *Sweeper
	clock    clock.Clock
	interval time.Duration
	lock     Lock
	metrics  Metrics
	log      zerolog.Logger

	busy     atomic.Bool
	inflight sync.WaitGroup

	mu      sync.Mutex
	running bool
	stopCh  chan struct{}
}

type SchedulerOption func(*Scheduler)

func WithLock(l Lock) SchedulerOption       { return func(s *Scheduler) { s.lock = l } }
func WithMetrics(m Metrics) SchedulerOption { return func(s *Scheduler) { s.metrics = m } }

func NewScheduler(sweeper *Sweeper, clk clock.Clock, interval time.Duration, log zerolog.Logger, opts ...SchedulerOption) *Scheduler {
	s := &Scheduler{
		sweeper:  sweeper,
		clock:    clk,
		interval: interval,
		log:      log.With().Str("component", "reconcile_scheduler").Logger(),
		stopCh:   make(chan struct{}),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Start runs an immediate sweep, then one per interval until ctx is done or
// Stop is called. It blocks; run it in its own goroutine.
func (s *Scheduler) Start(ctx context.Context) {
	s.mu.Lock()
	if s.running {
		s.mu.Unlock()
		return
	}
	s.running = true
	stop := s.stopCh
	s.mu.Unlock()

	// Runs last, after in-flight sweeps drain, so the scheduler can be started again.
	defer func() {
		s.mu.Lock()
		s.running = false
		s.stopCh = make(chan struct{})
		s.mu.Unlock()
	}()

	s.log.Info().Dur("interval", s.interval).Msg("reconcile scheduler started")

	ticker := s.clock.NewTicker(s.interval)
	defer ticker.Stop()
	defer s.inflight.Wait()

	s.launch(ctx)
	for {
		select {
		case <-ctx.Done():
			s.log.Info().Msg("reconcile scheduler stopped by context")
			return
		case <-stop:
			s.log.Info().Msg("reconcile scheduler stopped")
			return
		case <-ticker.C:
			s.launch(ctx)
		}
	}
}

// Stop ends the loop. Start returns once the sweep in flight, if any, is
// done; IsRunning reports true until then.
func (s *Scheduler) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.running {
		return
	}
	select {
	case <-s.stopCh:
	default:
		close(s.stopCh)
	}
}

func (s *Scheduler) IsRunning() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.running
}

func (s *Scheduler) launch(ctx context.Context) {
	s.inflight.Add(1)
	go func() {
		defer s.inflight.Done()
		_, _, _ = s.RunOnce(ctx)
	}()
}

// RunOnce performs one guarded sweep at the clock's current time. ran is
// false when another sweep held the guard.
func (s *Scheduler) RunOnce(ctx context.Context) (rep Report, ran bool, err error) {
	if !s.busy.CompareAndSwap(false, true) {
		s.skipped("previous sweep still running")
		return rep, false, nil
	}
	defer s.busy.Store(false)

	if s.lock != nil {
		release, ok, err := s.lock.TryLock(ctx)
		if err != nil {
			s.log.Error().Err(err).Msg("reconcile lock unavailable")
			return rep, false, err
		}
		if !ok {
			s.skipped("lock held by another instance")
			return rep, false, nil
		}
		defer release()
	}

	rep, err = s.sweeper.Sweep(ctx, s.clock.Now())
	if err != nil {
		s.log.Error().Err(err).Msg("reconcile sweep failed")
		return rep, true, err
	}

	if s.metrics != nil {
		s.metrics.SweepFinished(rep.Duration, rep.BookingsUpdated, rep.RoomsUpdated, rep.Failures)
	}
	ev := s.log.Debug()
	if rep.BookingsUpdated > 0 || rep.RoomsUpdated > 0 || rep.Failures > 0 {
		ev = s.log.Info()
	}
	ev.Int("scanned", rep.Scanned).
		Int("bookings_updated", rep.BookingsUpdated).
		Int("rooms_updated", rep.RoomsUpdated).
		Int("failures", rep.Failures).
		Dur("duration", rep.Duration).
		Msg("reconcile sweep finished")
	return rep, true, nil
}

func (s *Scheduler) skipped(reason string) {
	s.log.Warn().Str("reason", reason).Msg("reconcile tick skipped")
	if s.metrics != nil {
		s.metrics.SweepSkipped()
	}
}
