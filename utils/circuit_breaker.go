package utils

import (
	"errors"
	"sync"
	"time"
)

// ErrCircuitOpen is returned while the breaker is rejecting calls.
var ErrCircuitOpen = errors.New("circuit breaker is open")

type State int

const (
	StateClosed State = iota
	StateHalfOpen
	StateOpen
)

// CircuitBreaker guards calls to an external collaborator (the snapshot
// store). After maxFailures consecutive failures it opens for cooldown, then
// lets a single probe through.
type CircuitBreaker struct {
	name        string
	maxFailures int
	cooldown    time.Duration

	mutex    sync.Mutex
	state    State
	failures int
	openedAt time.Time
}

func NewCircuitBreaker(name string) *CircuitBreaker {
	return &CircuitBreaker{
		name:        name,
		maxFailures: 5,
		cooldown:    30 * time.Second,
		state:       StateClosed,
	}
}

// Do runs op unless the breaker is open. The op's error feeds the breaker
// and is returned unchanged.
func (cb *CircuitBreaker) Do(op func() error) error {
	if err := cb.beforeCall(); err != nil {
		return err
	}

	err := op()
	cb.afterCall(err == nil)
	return err
}

// State reports the current breaker state, accounting for cooldown expiry.
func (cb *CircuitBreaker) State() State {
	cb.mutex.Lock()
	defer cb.mutex.Unlock()
	return cb.currentState(time.Now())
}

func (cb *CircuitBreaker) beforeCall() error {
	cb.mutex.Lock()
	defer cb.mutex.Unlock()

	if cb.currentState(time.Now()) == StateOpen {
		return ErrCircuitOpen
	}
	return nil
}

func (cb *CircuitBreaker) afterCall(success bool) {
	cb.mutex.Lock()
	defer cb.mutex.Unlock()

	state := cb.currentState(time.Now())

	if success {
		cb.failures = 0
		cb.state = StateClosed
		return
	}

	cb.failures++
	if state == StateHalfOpen || cb.failures >= cb.maxFailures {
		cb.state = StateOpen
		cb.openedAt = time.Now()
	}
}

func (cb *CircuitBreaker) currentState(now time.Time) State {
	if cb.state == StateOpen && now.Sub(cb.openedAt) >= cb.cooldown {
		cb.state = StateHalfOpen
	}
	return cb.state
}
