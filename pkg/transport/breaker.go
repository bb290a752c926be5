package transport

import (
	"context"
	"errors"
	"net/http"
	"net/url"
	"time"

	"github.com/sony/gobreaker/v2"
	"go.uber.org/zap"

	"sberbank-acquiring/internal/logger"
)

const (
	defaultBreakerMaxFailures uint32        = 5
	defaultBreakerTimeout     time.Duration = 30 * time.Second
	defaultBreakerInterval    time.Duration = 60 * time.Second
)

type BreakerConfig struct {
	// MaxFailures is the number of consecutive network failures that opens the circuit.
	MaxFailures uint32
	// Timeout is how long the circuit stays open before a single trial request is let through.
	Timeout time.Duration
	// Interval clears the failure counts while closed. Zero keeps the default.
	Interval time.Duration
}

// Breaker is a Transport that stops calling the remote once it has been
// unreachable MaxFailures times in a row. It never retries.
type Breaker struct {
	inner Transport
	cb    *gobreaker.CircuitBreaker[string]
}

func CircuitBreaker(inner Transport, name string, cfg BreakerConfig) *Breaker {
	maxFailures := cfg.MaxFailures
	if maxFailures == 0 {
		maxFailures = defaultBreakerMaxFailures
	}
	timeout := cfg.Timeout
	if timeout == 0 {
		timeout = defaultBreakerTimeout
	}
	interval := cfg.Interval
	if interval == 0 {
		interval = defaultBreakerInterval
	}

	cb := gobreaker.NewCircuitBreaker[string](gobreaker.Settings{
		Name:        name,
		MaxRequests: 1,
		Interval:    interval,
		Timeout:     timeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= maxFailures
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			logger.L().Warn("circuit breaker state change",
				zap.String("breaker", name),
				zap.String("from", from.String()),
				zap.String("to", to.String()),
			)
		},
		// Only an unreachable remote counts; anything the remote answered is a success here.
		IsSuccessful: func(err error) bool {
			// A caller giving up says nothing about the remote's health.
			if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
				return true
			}
			return err == nil || !IsNetworkError(err)
		},
	})

	return &Breaker{inner: inner, cb: cb}
}

func (b *Breaker) Request(ctx context.Context, uri, method string, headers http.Header, params url.Values) (string, error) {
	body, err := b.cb.Execute(func() (string, error) {
		return b.inner.Request(ctx, uri, method, headers, params)
	})
	if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
		return "", &NetworkError{Op: "circuit " + b.cb.Name(), URI: uri, Err: errors.Join(ErrCircuitOpen, err)}
	}
	return body, err
}

func (b *Breaker) State() gobreaker.State {
	return b.cb.State()
}

func (b *Breaker) Counts() gobreaker.Counts {
	return b.cb.Counts()
}

var _ Transport = (*Breaker)(nil)
