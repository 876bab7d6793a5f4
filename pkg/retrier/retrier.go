// Package retrier retries startup operations with exponential backoff.
package retrier

import (
	"context"
	"math/rand"
	"time"

	"github.com/pkg/errors"
)

const (
	defaultInitialInterval = 1 * time.Second
	defaultMaxInterval     = 30 * time.Second
	defaultMultiplier      = 2.0
	defaultMaxRetries      = 5
	defaultJitter          = 0.1
)

// Retrier implements exponential backoff with jitter.
type Retrier struct {
	initialInterval time.Duration
	maxInterval     time.Duration
	multiplier      float64
	maxRetries      int
	jitter          float64
	retryIf         func(error) bool
	onRetry         func(attempt int, wait time.Duration, err error)
}

type Option func(*Retrier)

func WithInitialInterval(d time.Duration) Option {
	return func(r *Retrier) { r.initialInterval = d }
}

func WithMaxInterval(d time.Duration) Option {
	return func(r *Retrier) { r.maxInterval = d }
}

func WithMultiplier(m float64) Option {
	return func(r *Retrier) { r.multiplier = m }
}

// WithMaxRetries sets the number of retries after the first attempt.
func WithMaxRetries(n int) Option {
	return func(r *Retrier) { r.maxRetries = n }
}

// WithJitter sets the jitter factor (0.0 to 1.0).
func WithJitter(j float64) Option {
	return func(r *Retrier) { r.jitter = j }
}

// WithRetryIf stops retrying as soon as fn returns false for an error.
func WithRetryIf(fn func(error) bool) Option {
	return func(r *Retrier) { r.retryIf = fn }
}

// WithOnRetry registers a hook called before each wait.
func WithOnRetry(fn func(attempt int, wait time.Duration, err error)) Option {
	return func(r *Retrier) { r.onRetry = fn }
}

// New creates a new Retrier with default values and optional overrides.
func New(opts ...Option) *Retrier {
	r := &Retrier{
		initialInterval: defaultInitialInterval,
		maxInterval:     defaultMaxInterval,
		multiplier:      defaultMultiplier,
		maxRetries:      defaultMaxRetries,
		jitter:          defaultJitter,
	}

	for _, opt := range opts {
		opt(r)
	}

	return r
}

type permanentError struct{ err error }

func (p *permanentError) Error() string { return p.err.Error() }
func (p *permanentError) Unwrap() error { return p.err }

// Permanent marks err as not worth retrying.
func Permanent(err error) error {
	if err == nil {
		return nil
	}
	return &permanentError{err: err}
}

func (r *Retrier) retryable(err error) bool {
	var p *permanentError
	if errors.As(err, &p) {
		return false
	}
	if r.retryIf != nil {
		return r.retryIf(err)
	}
	return true
}

// Do executes fn until it succeeds, the retries are exhausted, the error is not
// retryable or ctx is done. The last error is returned unwrapped from Permanent.
func (r *Retrier) Do(ctx context.Context, fn func(ctx context.Context) error) error {
	interval := r.initialInterval

	for attempt := 0; ; attempt++ {
		err := fn(ctx)
		if err == nil {
			return nil
		}

		if !r.retryable(err) {
			var p *permanentError
			if errors.As(err, &p) {
				return p.err
			}
			return err
		}
		if attempt >= r.maxRetries {
			return errors.Wrapf(err, "giving up after %d attempts", attempt+1)
		}

		wait := r.backoff(interval)
		if r.onRetry != nil {
			r.onRetry(attempt+1, wait, err)
		}

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(wait):
		}

		interval = time.Duration(float64(interval) * r.multiplier)
		if interval > r.maxInterval {
			interval = r.maxInterval
		}
	}
}

func (r *Retrier) backoff(interval time.Duration) time.Duration {
	jitter := (rand.Float64()*2 - 1) * r.jitter * float64(interval)
	d := time.Duration(float64(interval) + jitter)
	if d < 0 {
		return 0
	}
	return d
}

// DoWithData executes the given function with retries and returns a value.
func DoWithData[T any](r *Retrier, ctx context.Context, fn func(ctx context.Context) (T, error)) (T, error) {
	var result T
	err := r.Do(ctx, func(ctx context.Context) error {
		var e error
		result, e = fn(ctx)
		return e
	})
	return result, err
}
