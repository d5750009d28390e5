package api

import (
	"errors"
	"sync"
	"time"

	"github.com/andrescamacho/shopfloor-go/internal/domain/shared"
)

// CircuitState represents the state of the circuit breaker
type CircuitState int

const (
	// CircuitClosed lets every request through
	CircuitClosed CircuitState = iota
	// CircuitOpen fails requests immediately until the cool-down elapses
	CircuitOpen
	// CircuitHalfOpen lets one probe through to test whether the server is back
	CircuitHalfOpen
)

func (s CircuitState) String() string {
	switch s {
	case CircuitClosed:
		return "closed"
	case CircuitOpen:
		return "open"
	case CircuitHalfOpen:
		return "half-open"
	default:
		return "unknown"
	}
}

// ErrCircuitOpen is returned while the server is considered unreachable
var ErrCircuitOpen = errors.New("circuit breaker open")

// CircuitBreaker stops the CLI from hammering a server that keeps failing at
// the transport level. Only errors accepted by trips count as failures, so
// business rejections (422, 409) never open the circuit.
type CircuitBreaker struct {
	maxFailures     int
	cooldown        time.Duration
	trips           func(error) bool
	state           CircuitState
	failureCount    int
	lastFailureTime time.Time
	mu              sync.RWMutex
	clock           shared.Clock
}

// NewCircuitBreaker creates a breaker that opens after maxFailures consecutive
// failures. A nil trips counts every error; a nil clock uses RealClock.
func NewCircuitBreaker(maxFailures int, cooldown time.Duration, trips func(error) bool, clock shared.Clock) *CircuitBreaker {
	if clock == nil {
		clock = shared.NewRealClock()
	}
	if trips == nil {
		trips = func(err error) bool { return err != nil }
	}
	if maxFailures <= 0 {
		maxFailures = 1
	}
	return &CircuitBreaker{
		maxFailures: maxFailures,
		cooldown:    cooldown,
		trips:       trips,
		state:       CircuitClosed,
		clock:       clock,
	}
}

// Call executes fn unless the circuit is open
func (cb *CircuitBreaker) Call(fn func() error) error {
	cb.mu.Lock()
	if cb.state == CircuitOpen {
		if cb.clock.Now().Sub(cb.lastFailureTime) < cb.cooldown {
			cb.mu.Unlock()
			return ErrCircuitOpen
		}
		cb.state = CircuitHalfOpen
	}
	cb.mu.Unlock()

	// fn runs without the lock so slow requests don't serialize the client
	err := fn()

	cb.mu.Lock()
	defer cb.mu.Unlock()
	if err != nil && cb.trips(err) {
		cb.onFailure()
		return err
	}
	cb.onSuccess()
	return err
}

func (cb *CircuitBreaker) onFailure() {
	cb.failureCount++
	cb.lastFailureTime = cb.clock.Now()

	if cb.state == CircuitHalfOpen || cb.failureCount >= cb.maxFailures {
		cb.state = CircuitOpen
	}
}

func (cb *CircuitBreaker) onSuccess() {
	cb.failureCount = 0
	cb.state = CircuitClosed
}

// State returns the current state
func (cb *CircuitBreaker) State() CircuitState {
	cb.mu.RLock()
	defer cb.mu.RUnlock()
	return cb.state
}

// FailureCount returns the number of consecutive counted failures
func (cb *CircuitBreaker) FailureCount() int {
	cb.mu.RLock()
	defer cb.mu.RUnlock()
	return cb.failureCount
}

// Reset closes the circuit
func (cb *CircuitBreaker) Reset() {
	cb.mu.Lock()
	defer cb.mu.Unlock()
	cb.state = CircuitClosed
	cb.failureCount = 0
}
