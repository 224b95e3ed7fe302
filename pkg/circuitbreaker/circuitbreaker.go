// Package circuitbreaker guards calls to flaky downstreams, such as the
// message broker, by failing fast once too many consecutive calls error out.
package circuitbreaker

import (
	"errors"
	"sync"
	"time"
)

// ErrOpen is returned by Execute while the breaker is rejecting calls.
var ErrOpen = errors.New("circuit breaker is open")

// State is the breaker's position in its closed/open/half-open cycle.
type State int

const (
	// StateClosed lets calls through and counts failures.
	StateClosed State = iota
	// StateOpen rejects calls until the timeout elapses.
	StateOpen
	// StateHalfOpen lets one probe call decide whether to close again.
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

// Settings configures a CircuitBreaker. MaxRequests is the number of
// consecutive failures that trips the breaker, Interval is how long a
// failure streak is remembered while closed, and Timeout is how long the
// breaker stays open before probing the downstream again.
type Settings struct {
	Name        string
	MaxRequests int
	Interval    time.Duration
	Timeout     time.Duration
}

const (
	defaultMaxRequests = 5
	defaultTimeout     = 30 * time.Second
)

type CircuitBreaker struct {
	name        string
	maxRequests int
	interval    time.Duration
	timeout     time.Duration

	mu          sync.Mutex
	state       State
	failures    int
	lastFailure time.Time
}

func NewCircuitBreaker(settings Settings) *CircuitBreaker {
	if settings.MaxRequests <= 0 {
		settings.MaxRequests = defaultMaxRequests
	}
	if settings.Timeout <= 0 {
		settings.Timeout = defaultTimeout
	}
	return &CircuitBreaker{
		name:        settings.Name,
		maxRequests: settings.MaxRequests,
		interval:    settings.Interval,
		timeout:     settings.Timeout,
		state:       StateClosed,
	}
}

// Name reports the breaker's configured name, for log context.
func (cb *CircuitBreaker) Name() string { return cb.name }

// State reports the breaker's current position, resolving an expired open
// period to half-open.
func (cb *CircuitBreaker) State() State {
	cb.mu.Lock()
	defer cb.mu.Unlock()
	return cb.currentState(time.Now())
}

// Execute runs fn unless the breaker is open. The error from fn is returned
// as-is; a rejected call returns ErrOpen without invoking fn.
func (cb *CircuitBreaker) Execute(fn func() error) error {
	if err := cb.beforeCall(); err != nil {
		return err
	}
	err := fn()
	cb.afterCall(err)
	return err
}

func (cb *CircuitBreaker) beforeCall() error {
	cb.mu.Lock()
	defer cb.mu.Unlock()

	now := time.Now()
	switch cb.currentState(now) {
	case StateOpen:
		return ErrOpen
	case StateClosed:
		// A quiet interval forgives the previous failure streak.
		if cb.interval > 0 && cb.failures > 0 && now.Sub(cb.lastFailure) > cb.interval {
			cb.failures = 0
		}
	}
	return nil
}

func (cb *CircuitBreaker) afterCall(err error) {
	cb.mu.Lock()
	defer cb.mu.Unlock()

	if err != nil {
		cb.failures++
		cb.lastFailure = time.Now()
		if cb.failures >= cb.maxRequests {
			cb.state = StateOpen
		}
		return
	}

	cb.state = StateClosed
	cb.failures = 0
}

// currentState must be called with cb.mu held.
func (cb *CircuitBreaker) currentState(now time.Time) State {
	if cb.state == StateOpen && now.Sub(cb.lastFailure) > cb.timeout {
		cb.state = StateHalfOpen
	}
	return cb.state
}
