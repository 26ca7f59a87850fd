package testbridge

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"time"

	"github.com/ethereum/go-ethereum/log"
)

// RunFunc performs one complete run
type RunFunc func(ctx context.Context) error

// RunScheduler decides when runs happen
type RunScheduler interface {
	Start(ctx context.Context) error
	Stop() error
	RegisterCallback(RunFunc)
	WaitForShutdown(ctx context.Context) error
	Stopped() bool
}

// IntervalScheduler runs the callback once on start and then, unless in
// run-once mode, every interval until stopped. Runs never overlap.
type IntervalScheduler struct {
	interval time.Duration
	runOnce  bool
	logger   log.Logger
	callback RunFunc

	running atomic.Bool
	done    chan struct{}
	wg      sync.WaitGroup
}

// NewIntervalScheduler creates a new IntervalScheduler
func NewIntervalScheduler(interval time.Duration, runOnce bool, logger log.Logger) *IntervalScheduler {
	if logger == nil {
		logger = log.New()
		logger.Error("No logger provided, using default")
	}
	return &IntervalScheduler{
		interval: interval,
		runOnce:  runOnce || interval <= 0,
		logger:   logger,
		done:     make(chan struct{}),
	}
}

// RegisterCallback registers the run to perform
func (s *IntervalScheduler) RegisterCallback(callback RunFunc) {
	s.callback = callback
}

// Start performs the first run synchronously and returns its error.
// In continuous mode the following runs happen on a background goroutine.
func (s *IntervalScheduler) Start(ctx context.Context) error {
	if s.callback == nil {
		return errors.New("callback must be registered before starting scheduler")
	}

	s.done = make(chan struct{})
	s.running.Store(true)

	if s.runOnce {
		s.logger.Info("Starting scheduler in run-once mode")
		return s.callback(ctx)
	}

	s.logger.Info("Starting scheduler in continuous mode", "interval", s.interval)
	if err := s.callback(ctx); err != nil {
		return err
	}

	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		ticker := time.NewTicker(s.interval)
		defer ticker.Stop()

		for {
			select {
			case <-ticker.C:
				if !s.running.Load() {
					s.logger.Debug("Scheduler stopped, exiting periodic runner")
					return
				}
				s.logger.Info("Running periodic tests")
				if err := s.callback(ctx); err != nil {
					s.logger.Error("Error running periodic tests", "error", err)
				}

			case <-s.done:
				s.logger.Debug("Done signal received, stopping periodic runner")
				return

			case <-ctx.Done():
				s.logger.Debug("Context canceled, stopping periodic runner")
				s.running.Store(false)
				return
			}
		}
	}()

	return nil
}

// Stop prevents further runs. A run in progress is not interrupted.
func (s *IntervalScheduler) Stop() error {
	if !s.running.CompareAndSwap(true, false) {
		s.logger.Debug("Scheduler already stopped, nothing to do")
		return nil
	}
	close(s.done)
	return nil
}

// Stopped returns true if the scheduler is stopped
func (s *IntervalScheduler) Stopped() bool {
	return !s.running.Load()
}

// WaitForShutdown blocks until the periodic runner has exited or ctx expires
func (s *IntervalScheduler) WaitForShutdown(ctx context.Context) error {
	done := make(chan struct{})
	go func() {
		s.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		s.logger.Debug("All goroutines terminated successfully")
		return nil
	case <-ctx.Done():
		s.logger.Warn("Timed out waiting for goroutines to terminate", "error", ctx.Err())
		return ctx.Err()
	}
}
