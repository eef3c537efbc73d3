package circuitbreaker

import (
	"sync"
	"time"

	"github.com/speedrun-hq/intentscope/pkg/logger"
	"github.com/speedrun-hq/intentscope/pkg/metrics"
)

// State is the position of the breaker
type State int

const (
	StateClosed State = iota
	StateOpen
	StateHalfOpen
)

func (s State) String() string {
	switch s {
	case StateOpen:
		return "open"
	case StateHalfOpen:
		return "half-open"
	default:
		return "closed"
	}
}

// Snapshot is a point-in-time view of a breaker
type Snapshot struct {
	Name        string        `json:"name"`
	Enabled     bool          `json:"enabled"`
	State       string        `json:"state"`
	Failures    int           `json:"failures"`
	Threshold   int           `json:"threshold"`
	Window      time.Duration `json:"window"`
	LastFailure time.Time     `json:"lastFailure"`
	OpenedAt    time.Time     `json:"openedAt"`
}

// CircuitBreaker guards one upstream surface. It opens after threshold failures
// inside the window, lets a single trial request through once the reset timeout has
// elapsed, and closes again when that trial request succeeds.
type CircuitBreaker struct {
	name         string
	enabled      bool
	threshold    int
	window       time.Duration
	resetTimeout time.Duration
	logger       logger.Logger

	mu            sync.Mutex
	state         State
	failures      int
	lastFailure   time.Time
	openedAt      time.Time
	trialInFlight bool
}

// NewCircuitBreaker creates a closed circuit breaker
func NewCircuitBreaker(name string, enabled bool, threshold int, window time.Duration, resetTimeout time.Duration, logger logger.Logger) *CircuitBreaker {
	cb := &CircuitBreaker{
		name:         name,
		enabled:      enabled,
		threshold:    threshold,
		window:       window,
		resetTimeout: resetTimeout,
		logger:       logger,
	}
	cb.setState(StateClosed)
	return cb
}

// Allow reports whether a request may reach the upstream.
// In the half-open state only one trial request is let through at a time.
func (cb *CircuitBreaker) Allow() bool {
	if !cb.enabled {
		return true
	}

	cb.mu.Lock()
	defer cb.mu.Unlock()

	switch cb.state {
	case StateOpen:
		if time.Since(cb.openedAt) < cb.resetTimeout {
			return false
		}
		cb.logger.Notice("Circuit breaker %s: half-open after %s", cb.name, cb.resetTimeout)
		cb.setState(StateHalfOpen)
		cb.trialInFlight = true
		return true
	case StateHalfOpen:
		if cb.trialInFlight {
			return false
		}
		cb.trialInFlight = true
		return true
	default:
		return true
	}
}

// RecordFailure records an upstream failure and reports whether the breaker is now open
func (cb *CircuitBreaker) RecordFailure() bool {
	if !cb.enabled {
		return false
	}

	cb.mu.Lock()
	defer cb.mu.Unlock()

	now := time.Now()
	switch cb.state {
	case StateOpen:
		return true
	case StateHalfOpen:
		cb.logger.Error("Circuit breaker %s: trial request failed, reopening", cb.name)
		cb.open(now)
		return true
	}

	if now.Sub(cb.lastFailure) > cb.window {
		cb.failures = 0
	}
	cb.failures++
	cb.lastFailure = now

	if cb.failures >= cb.threshold {
		cb.logger.Error("Circuit breaker %s tripped: %d failures in window", cb.name, cb.failures)
		cb.open(now)
		return true
	}
	return false
}

// RecordSuccess closes a half-open breaker and clears the failure streak
func (cb *CircuitBreaker) RecordSuccess() {
	if !cb.enabled {
		return
	}

	cb.mu.Lock()
	defer cb.mu.Unlock()

	switch cb.state {
	case StateHalfOpen:
		cb.logger.Notice("Circuit breaker %s: trial request succeeded, closing", cb.name)
		cb.close()
	case StateClosed:
		cb.failures = 0
	}
}

// Ignore returns an admitted request that says nothing about the upstream,
// such as a rejected query or a client disconnect. A half-open breaker lets
// the next request try instead.
func (cb *CircuitBreaker) Ignore() {
	if !cb.enabled {
		return
	}

	cb.mu.Lock()
	defer cb.mu.Unlock()

	if cb.state == StateHalfOpen {
		cb.trialInFlight = false
	}
}

// Reset closes the breaker regardless of its state
func (cb *CircuitBreaker) Reset() {
	cb.mu.Lock()
	defer cb.mu.Unlock()

	cb.close()
}

// State returns the current state. An open breaker whose reset timeout has
// elapsed is reported as half-open.
func (cb *CircuitBreaker) State() State {
	cb.mu.Lock()
	defer cb.mu.Unlock()

	return cb.currentState()
}

// Snapshot returns a copy of the breaker state
func (cb *CircuitBreaker) Snapshot() Snapshot {
	cb.mu.Lock()
	defer cb.mu.Unlock()

	return Snapshot{
		Name:        cb.name,
		Enabled:     cb.enabled,
		State:       cb.currentState().String(),
		Failures:    cb.failures,
		Threshold:   cb.threshold,
		Window:      cb.window,
		LastFailure: cb.lastFailure,
		OpenedAt:    cb.openedAt,
	}
}

// Name returns the name of the protected surface
func (cb *CircuitBreaker) Name() string {
	return cb.name
}

// currentState must be called with the lock held
func (cb *CircuitBreaker) currentState() State {
	if cb.state == StateOpen && time.Since(cb.openedAt) >= cb.resetTimeout {
		return StateHalfOpen
	}
	return cb.state
}

func (cb *CircuitBreaker) open(now time.Time) {
	cb.openedAt = now
	cb.trialInFlight = false
	cb.setState(StateOpen)
}

func (cb *CircuitBreaker) close() {
	cb.failures = 0
	cb.trialInFlight = false
	cb.setState(StateClosed)
}

func (cb *CircuitBreaker) setState(state State) {
	cb.state = state
	metrics.CircuitBreakerState.WithLabelValues(cb.name).Set(float64(state))
}
