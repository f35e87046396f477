package database

import (
	"log"
	"sync"
	"time"
)

// Breaker and idle-shutdown thresholds.
const (
	BreakerFailureThreshold = 3
	BreakerResetAfter       = 30 * time.Second
	IdleShutdownAfter       = 15 * time.Minute
	idleSweepInterval       = time.Minute
)

type breakerState int

const (
	breakerClosed breakerState = iota
	breakerOpen
	breakerHalfOpen
)

// Supervisor guards the shared connection pool: a circuit breaker stops the
// service from hammering a degraded database, and an idle watchdog shuts the
// process down after a prolonged stretch with zero requests.
//
// The clock and the shutdown action are injected so state transitions can be
// unit-tested by advancing a fake clock.
type Supervisor struct {
	mu sync.Mutex

	now      func() time.Time
	shutdown func()

	state        breakerState
	failures     int
	openedAt     time.Time
	lastActivity time.Time
}

// NewSupervisor creates a Supervisor. now must be monotonic for the breaker
// reset window to behave; time.Now is the production choice. shutdown is
// invoked once when the idle window elapses, after the pool is drained.
func NewSupervisor(now func() time.Time, shutdown func()) *Supervisor {
	if now == nil {
		now = time.Now
	}
	return &Supervisor{
		now:          now,
		shutdown:     shutdown,
		state:        breakerClosed,
		lastActivity: now(),
	}
}

// RecordActivity marks the current instant as the last observed request.
func (s *Supervisor) RecordActivity() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.lastActivity = s.now()
}

// Allow reports whether a database operation may proceed. When the breaker
// has been open longer than the reset window it moves to half-open and lets
// a single probe through.
func (s *Supervisor) Allow() bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	switch s.state {
	case breakerClosed, breakerHalfOpen:
		return true
	default:
		if s.now().Sub(s.openedAt) >= BreakerResetAfter {
			s.state = breakerHalfOpen
			return true
		}
		return false
	}
}

// ReportSuccess resets the breaker after a successful probe.
func (s *Supervisor) ReportSuccess() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.state != breakerClosed {
		log.Println("Database connectivity restored, closing circuit breaker")
	}
	s.state = breakerClosed
	s.failures = 0
}

// ReportFailure counts a connectivity failure. The breaker opens on the
// third consecutive failure, or immediately when a half-open probe fails.
func (s *Supervisor) ReportFailure() {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.failures++
	if s.state == breakerHalfOpen || s.failures >= BreakerFailureThreshold {
		if s.state != breakerOpen {
			log.Printf("Circuit breaker opened after %d consecutive failures", s.failures)
		}
		s.state = breakerOpen
		s.openedAt = s.now()
	}
}

// Open reports whether the breaker currently rejects operations.
func (s *Supervisor) Open() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state == breakerOpen && s.now().Sub(s.openedAt) < BreakerResetAfter
}

// RetryAfter returns how long callers should wait before retrying while the
// breaker is open. Zero when the breaker is not open.
func (s *Supervisor) RetryAfter() time.Duration {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.state != breakerOpen {
		return 0
	}
	remaining := BreakerResetAfter - s.now().Sub(s.openedAt)
	if remaining < 0 {
		return 0
	}
	return remaining
}

// IdleExceeded reports whether the process has seen zero requests for the
// full idle window.
func (s *Supervisor) IdleExceeded() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.now().Sub(s.lastActivity) >= IdleShutdownAfter
}

// SweepIdle drains the pool and triggers shutdown if the idle window has
// elapsed. Returns true when shutdown was initiated.
func (s *Supervisor) SweepIdle() bool {
	if !s.IdleExceeded() {
		return false
	}

	log.Printf("No requests for %s, shutting down", IdleShutdownAfter)
	if DB != nil {
		if sqlDB, err := DB.DB(); err == nil {
			sqlDB.Close()
		}
	}
	if s.shutdown != nil {
		s.shutdown()
	}
	return true
}

// StartIdleWatch runs the idle sweep on a timer until stop is closed.
func (s *Supervisor) StartIdleWatch(stop <-chan struct{}) {
	go func() {
		ticker := time.NewTicker(idleSweepInterval)
		defer ticker.Stop()
		for {
			select {
			case <-stop:
				return
			case <-ticker.C:
				if s.SweepIdle() {
					return
				}
			}
		}
	}()
}
