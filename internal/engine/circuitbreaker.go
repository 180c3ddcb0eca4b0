package engine

// circuitbreaker.go guards calls into the driver's actuator surface.
// Repeated driver I/O failures (a simulated hardware fault, or a real
// driver returning an error through a wrapped call) open the circuit so
// the engine can surface a health-degraded condition instead of hammering
// a failing actuator every tick. It never suppresses the motor-stop-on-
// unwind guarantee: StopElevator calls are never routed through it.
//
// Every call into Execute originates from actuate(), which only ever
// runs on the tick-loop goroutine, the same single-writer confinement
// the rest of Engine's mutable fields rely on (see the Engine doc
// comment). failureCount, successCount and nextRetry are therefore plain
// fields with no lock: only that one goroutine ever touches them. state
// is the one field read from outside the tick loop — CircuitBreakerState
// is polled by the health checker's goroutine and by the metrics gauge —
// so it alone is published through an atomic.Int32, the same style
// heartbeat.Watchdog uses for its cross-goroutine lastBeatNano field.

import (
	"fmt"
	"sync/atomic"
	"time"
)

// CircuitState is the three-state circuit breaker state.
type CircuitState int32

const (
	CircuitClosed CircuitState = iota
	CircuitOpen
	CircuitHalfOpen
)

func (s CircuitState) String() string {
	switch s {
	case CircuitClosed:
		return "closed"
	case CircuitOpen:
		return "open"
	case CircuitHalfOpen:
		return "half_open"
	default:
		return "unknown"
	}
}

// CircuitBreaker counts consecutive actuator-call failures and, once the
// run reaches maxFailures, suspends further calls until resetTimeout has
// passed. halfOpenLimit consecutive successes after that close it again;
// a single failure during the half-open probe reopens it immediately.
type CircuitBreaker struct {
	state atomic.Int32 // CircuitState, published for cross-goroutine reads

	// tick-loop-confined: written only from Execute, never locked.
	failureCount int
	successCount int
	nextRetry    time.Time

	maxFailures   int
	resetTimeout  time.Duration
	halfOpenLimit int
}

// NewCircuitBreaker creates a closed circuit breaker.
func NewCircuitBreaker(maxFailures int, resetTimeout time.Duration, halfOpenLimit int) *CircuitBreaker {
	return &CircuitBreaker{
		maxFailures:   maxFailures,
		resetTimeout:  resetTimeout,
		halfOpenLimit: halfOpenLimit,
	}
}

// Execute runs operation if the circuit allows it, recording the outcome.
// Must only be called from the tick-loop goroutine.
func (cb *CircuitBreaker) Execute(operation func() error) error {
	if !cb.allowRequest() {
		return fmt.Errorf("circuit breaker open: driver calls suspended")
	}
	if err := operation(); err != nil {
		cb.recordFailure()
		return err
	}
	cb.recordSuccess()
	return nil
}

func (cb *CircuitBreaker) allowRequest() bool {
	switch CircuitState(cb.state.Load()) {
	case CircuitClosed:
		return true
	case CircuitOpen:
		if time.Now().After(cb.nextRetry) {
			cb.successCount = 0
			cb.state.Store(int32(CircuitHalfOpen))
			return true
		}
		return false
	case CircuitHalfOpen:
		return cb.successCount < cb.halfOpenLimit
	default:
		return false
	}
}

func (cb *CircuitBreaker) recordSuccess() {
	cb.failureCount = 0
	if CircuitState(cb.state.Load()) == CircuitHalfOpen {
		cb.successCount++
		if cb.successCount >= cb.halfOpenLimit {
			cb.state.Store(int32(CircuitClosed))
		}
	}
}

func (cb *CircuitBreaker) recordFailure() {
	cb.failureCount++
	if CircuitState(cb.state.Load()) == CircuitHalfOpen {
		cb.nextRetry = time.Now().Add(cb.resetTimeout)
		cb.state.Store(int32(CircuitOpen))
		return
	}
	if cb.failureCount >= cb.maxFailures {
		cb.nextRetry = time.Now().Add(cb.resetTimeout)
		cb.state.Store(int32(CircuitOpen))
	}
}

// State returns the current circuit state, safe to call from any
// goroutine — used by health reporting and the circuit-breaker-state
// gauge.
func (cb *CircuitBreaker) State() CircuitState {
	return CircuitState(cb.state.Load())
}
