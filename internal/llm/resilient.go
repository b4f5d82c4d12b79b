package llm

import (
	"context"
	"time"

	"github.com/avast/retry-go/v4"

	"github.com/scrypster/promptcraft/internal/logger"
)

// ResilientConfig controls retries and circuit breaking around an Invoker.
type ResilientConfig struct {
	// Attempts is the total number of tries, including the first. Default: 3
	Attempts uint

	// InitialDelay is the first backoff delay; later delays double. Default: 500ms
	InitialDelay time.Duration

	// MaxDelay caps a single backoff delay. Default: 10s
	MaxDelay time.Duration

	Breaker CircuitBreakerConfig
}

func (c ResilientConfig) withDefaults() ResilientConfig {
	if c.Attempts == 0 {
		c.Attempts = 3
	}
	if c.InitialDelay == 0 {
		c.InitialDelay = 500 * time.Millisecond
	}
	if c.MaxDelay == 0 {
		c.MaxDelay = 10 * time.Second
	}
	return c
}

// Resilient wraps an Invoker with a circuit breaker and exponential-backoff
// retries. Only transient failures (see IsTransient) are retried.
type Resilient struct {
	inner   Invoker
	breaker *CircuitBreaker
	cfg     ResilientConfig
	log     *logger.Logger
}

var _ Invoker = (*Resilient)(nil)

// NewResilient wraps inner.
func NewResilient(inner Invoker, cfg ResilientConfig, log *logger.Logger) *Resilient {
	if log == nil {
		log = logger.Nop()
	}
	log = log.With("provider", inner.Name())
	return &Resilient{
		inner:   inner,
		breaker: NewCircuitBreaker(inner.Name(), cfg.Breaker, log),
		cfg:     cfg.withDefaults(),
		log:     log,
	}
}

// Name returns the wrapped provider's name.
func (r *Resilient) Name() string { return r.inner.Name() }

// Breaker exposes the circuit breaker for health reporting.
func (r *Resilient) Breaker() *CircuitBreaker { return r.breaker }

// Invoke calls the wrapped invoker, retrying transient failures.
func (r *Resilient) Invoke(ctx context.Context, req Request) (Response, error) {
	var resp Response
	err := retry.Do(
		func() error {
			out, err := r.breaker.Execute(ctx, func() (interface{}, error) {
				return r.inner.Invoke(ctx, req)
			})
			if err != nil {
				if !IsTransient(err) {
					return retry.Unrecoverable(err)
				}
				return err
			}
			resp = out.(Response)
			return nil
		},
		retry.Context(ctx),
		retry.Attempts(r.cfg.Attempts),
		retry.Delay(r.cfg.InitialDelay),
		retry.MaxDelay(r.cfg.MaxDelay),
		retry.DelayType(retry.BackOffDelay),
		retry.LastErrorOnly(true),
		retry.OnRetry(func(n uint, err error) {
			r.log.Warn("retrying model invocation", "attempt", n+1, "error", err)
		}),
	)
	if err != nil {
		return Response{}, err
	}
	return resp, nil
}
