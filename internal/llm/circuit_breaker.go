package llm

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/sony/gobreaker"

	"github.com/scrypster/promptcraft/internal/logger"
)

// CircuitBreakerConfig holds the configuration for the circuit breaker.
type CircuitBreakerConfig struct {
	// MaxFailures is the number of consecutive transient failures that trips
	// the circuit. Default: 3
	MaxFailures uint32

	// Timeout is how long the circuit stays open before going half-open.
	// Default: 30 seconds
	Timeout time.Duration

	// HalfOpenMaxSuccesses is the number of successes in half-open state
	// needed to close the circuit. Default: 2
	HalfOpenMaxSuccesses uint32
}

func (c CircuitBreakerConfig) withDefaults() CircuitBreakerConfig {
	if c.MaxFailures == 0 {
		c.MaxFailures = 3
	}
	if c.Timeout == 0 {
		c.Timeout = 30 * time.Second
	}
	if c.HalfOpenMaxSuccesses == 0 {
		c.HalfOpenMaxSuccesses = 2
	}
	return c
}

// CircuitBreakerMetrics holds counters about circuit breaker operations.
type CircuitBreakerMetrics struct {
	TotalRequests        uint64 `json:"totalRequests"`
	TotalSuccesses       uint64 `json:"totalSuccesses"`
	TotalFailures        uint64 `json:"totalFailures"`
	ConsecutiveSuccesses uint32 `json:"consecutiveSuccesses"`
	ConsecutiveFailures  uint32 `json:"consecutiveFailures"`
}

// CircuitBreaker wraps gobreaker to stop calling a provider that keeps failing.
// Only transient errors count as failures; a rejected prompt (4xx) does not
// trip the circuit.
type CircuitBreaker struct {
	breaker *gobreaker.CircuitBreaker
	mu      sync.RWMutex
	metrics CircuitBreakerMetrics
}

// NewCircuitBreaker creates a circuit breaker named after the provider it guards.
func NewCircuitBreaker(name string, cfg CircuitBreakerConfig, log *logger.Logger) *CircuitBreaker {
	if log == nil {
		log = logger.Nop()
	}
	cfg = cfg.withDefaults()

	settings := gobreaker.Settings{
		Name:        name,
		MaxRequests: cfg.HalfOpenMaxSuccesses,
		Timeout:     cfg.Timeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= cfg.MaxFailures
		},
		IsSuccessful: func(err error) bool {
			return err == nil || !IsTransient(err)
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			log.Warn("circuit breaker state change", "breaker", name, "from", from.String(), "to", to.String())
		},
	}
	return &CircuitBreaker{breaker: gobreaker.NewCircuitBreaker(settings)}
}

// Execute runs fn through the breaker. An open circuit yields ErrCircuitOpen
// without calling fn.
func (cb *CircuitBreaker) Execute(ctx context.Context, fn func() (interface{}, error)) (interface{}, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	result, err := cb.breaker.Execute(fn)
	cb.record(err)
	if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
		return nil, ErrCircuitOpen
	}
	return result, err
}

// State returns "closed", "open" or "half-open".
func (cb *CircuitBreaker) State() string {
	switch cb.breaker.State() {
	case gobreaker.StateClosed:
		return "closed"
	case gobreaker.StateOpen:
		return "open"
	case gobreaker.StateHalfOpen:
		return "half-open"
	default:
		return "unknown"
	}
}

// Metrics returns the current counters.
func (cb *CircuitBreaker) Metrics() CircuitBreakerMetrics {
	cb.mu.RLock()
	defer cb.mu.RUnlock()

	counts := cb.breaker.Counts()
	m := cb.metrics
	m.ConsecutiveSuccesses = counts.ConsecutiveSuccesses
	m.ConsecutiveFailures = counts.ConsecutiveFailures
	return m
}

func (cb *CircuitBreaker) record(err error) {
	cb.mu.Lock()
	defer cb.mu.Unlock()

	cb.metrics.TotalRequests++
	if err != nil {
		cb.metrics.TotalFailures++
	} else {
		cb.metrics.TotalSuccesses++
	}
}
