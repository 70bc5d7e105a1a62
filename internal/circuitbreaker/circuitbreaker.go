// Package circuitbreaker provides a typed wrapper around sony/gobreaker.
package circuitbreaker

import (
	"time"

	"github.com/sony/gobreaker/v2"
)

// Config holds circuit breaker tuning parameters.
type Config struct {
	Name        string
	MaxRequests uint32        // requests allowed through in half-open state
	Interval    time.Duration // cyclic period for clearing counts in closed state
	Timeout     time.Duration // how long the breaker stays open
	MaxFailures uint32        // consecutive failures before tripping
}

// DefaultConfig returns conservative defaults for an external dependency.
func DefaultConfig(name string) Config {
	return Config{
		Name:        name,
		MaxRequests: 1,
		Interval:    60 * time.Second,
		Timeout:     30 * time.Second,
		MaxFailures: 5,
	}
}

// CircuitBreaker wraps gobreaker with a typed result.
type CircuitBreaker[T any] struct {
	cb *gobreaker.CircuitBreaker[T]
}

// New creates a CircuitBreaker from the given config.
func New[T any](cfg Config) *CircuitBreaker[T] {
	maxFailures := cfg.MaxFailures
	if maxFailures == 0 {
		maxFailures = 5
	}

	settings := gobreaker.Settings{
		Name:        cfg.Name,
		MaxRequests: cfg.MaxRequests,
		Interval:    cfg.Interval,
		Timeout:     cfg.Timeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= maxFailures
		},
	}

	return &CircuitBreaker[T]{
		cb: gobreaker.NewCircuitBreaker[T](settings),
	}
}

// Execute runs fn through the breaker.
// When the breaker is open it returns gobreaker.ErrOpenState without
// invoking fn.
func (c *CircuitBreaker[T]) Execute(fn func() (T, error)) (T, error) {
	return c.cb.Execute(fn)
}

// State returns the current breaker state.
func (c *CircuitBreaker[T]) State() gobreaker.State {
	return c.cb.State()
}

// IsOpen reports whether the breaker is currently rejecting calls.
func (c *CircuitBreaker[T]) IsOpen() bool {
	return c.cb.State() == gobreaker.StateOpen
}
