package storage

import (
	"context"
	"errors"
	"sync"
	"time"
)

var ErrCircuitOpen = errors.New("store circuit breaker is open")

type BreakerState int

const (
	BreakerClosed BreakerState = iota
	BreakerOpen
	BreakerHalfOpen
)

func (s BreakerState) String() string {
	switch s {
	case BreakerOpen:
		return "open"
	case BreakerHalfOpen:
		return "half-open"
	default:
		return "closed"
	}
}

type BreakerConfig struct {
	MaxFailures      int           `json:"max_failures"`
	Timeout          time.Duration `json:"timeout"`
	HalfOpenMaxCalls int           `json:"half_open_max_calls"`
}

func DefaultBreakerConfig() *BreakerConfig {
	return &BreakerConfig{
		MaxFailures:      5,
		Timeout:          30 * time.Second,
		HalfOpenMaxCalls: 1,
	}
}

// CircuitBreaker stops calling a failing store after MaxFailures consecutive
// errors and lets a trial call through once Timeout has passed.
type CircuitBreaker struct {
	mu              sync.Mutex
	state           BreakerState
	failureCount    int
	halfOpenCalls   int
	lastFailureTime time.Time

	maxFailures      int
	timeout          time.Duration
	halfOpenMaxCalls int
	now              func() time.Time
}

func NewCircuitBreaker(config *BreakerConfig) *CircuitBreaker {
	if config == nil {
		config = DefaultBreakerConfig()
	}
	if config.HalfOpenMaxCalls < 1 {
		config.HalfOpenMaxCalls = 1
	}

	return &CircuitBreaker{
		state:            BreakerClosed,
		maxFailures:      config.MaxFailures,
		timeout:          config.Timeout,
		halfOpenMaxCalls: config.HalfOpenMaxCalls,
		now:              time.Now,
	}
}

func (cb *CircuitBreaker) Execute(fn func() error) error {
	if !cb.allow() {
		return ErrCircuitOpen
	}

	err := fn()
	if err != nil && !errors.Is(err, context.Canceled) {
		cb.recordFailure()
		return err
	}

	cb.recordSuccess()
	return err
}

func (cb *CircuitBreaker) allow() bool {
	cb.mu.Lock()
	defer cb.mu.Unlock()

	switch cb.state {
	case BreakerClosed:
		return true
	case BreakerOpen:
		if cb.now().Sub(cb.lastFailureTime) < cb.timeout {
			return false
		}
		cb.state = BreakerHalfOpen
		cb.halfOpenCalls = 1
		return true
	case BreakerHalfOpen:
		if cb.halfOpenCalls >= cb.halfOpenMaxCalls {
			return false
		}
		cb.halfOpenCalls++
		return true
	}
	return false
}

func (cb *CircuitBreaker) recordFailure() {
	cb.mu.Lock()
	defer cb.mu.Unlock()

	cb.failureCount++
	cb.lastFailureTime = cb.now()

	switch cb.state {
	case BreakerClosed:
		if cb.failureCount >= cb.maxFailures {
			cb.state = BreakerOpen
		}
	case BreakerHalfOpen:
		cb.state = BreakerOpen
		cb.halfOpenCalls = 0
	}
}

func (cb *CircuitBreaker) recordSuccess() {
	cb.mu.Lock()
	defer cb.mu.Unlock()

	cb.state = BreakerClosed
	cb.failureCount = 0
	cb.halfOpenCalls = 0
}

func (cb *CircuitBreaker) State() BreakerState {
	cb.mu.Lock()
	defer cb.mu.Unlock()
	return cb.state
}

func (cb *CircuitBreaker) Stats() map[string]interface{} {
	cb.mu.Lock()
	defer cb.mu.Unlock()

	return map[string]interface{}{
		"state":           cb.state.String(),
		"failure_count":   cb.failureCount,
		"last_failure":    cb.lastFailureTime.Unix(),
		"max_failures":    cb.maxFailures,
		"timeout_seconds": cb.timeout.Seconds(),
	}
}

// GuardedStore routes every call of the wrapped store through a circuit
// breaker. While the breaker is open calls fail fast with ErrCircuitOpen.
type GuardedStore struct {
	inner   Store
	breaker *CircuitBreaker
}

func NewGuardedStore(inner Store, config *BreakerConfig) *GuardedStore {
	return &GuardedStore{inner: inner, breaker: NewCircuitBreaker(config)}
}

func (g *GuardedStore) Load(ctx context.Context) ([]byte, bool, error) {
	var (
		data  []byte
		found bool
	)
	err := g.breaker.Execute(func() error {
		var err error
		data, found, err = g.inner.Load(ctx)
		return err
	})
	if errors.Is(err, ErrCircuitOpen) {
		return nil, false, storeError("guarded load", err)
	}
	return data, found, err
}

func (g *GuardedStore) Save(ctx context.Context, data []byte) error {
	err := g.breaker.Execute(func() error {
		return g.inner.Save(ctx, data)
	})
	if errors.Is(err, ErrCircuitOpen) {
		return storeError("guarded save", err)
	}
	return err
}

func (g *GuardedStore) Health(ctx context.Context) error {
	if hc, ok := g.inner.(HealthChecker); ok {
		return hc.Health(ctx)
	}
	return nil
}

func (g *GuardedStore) Breaker() *CircuitBreaker {
	return g.breaker
}

func (g *GuardedStore) Close() error {
	return g.inner.Close()
}
