package retrier

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var errFail = errors.New("fail")

func TestRetrier_Do(t *testing.T) {
	t.Run("success on first attempt", func(t *testing.T) {
		attempts := 0
		err := New().Do(context.Background(), func(ctx context.Context) error {
			attempts++
			return nil
		})
		assert.NoError(t, err)
		assert.Equal(t, 1, attempts)
	})

	t.Run("success after retries", func(t *testing.T) {
		r := New(WithMaxRetries(3), WithInitialInterval(time.Millisecond))
		attempts := 0
		err := r.Do(context.Background(), func(ctx context.Context) error {
			attempts++
			if attempts < 3 {
				return errFail
			}
			return nil
		})
		assert.NoError(t, err)
		assert.Equal(t, 3, attempts)
	})

	t.Run("gives up after max retries", func(t *testing.T) {
		r := New(WithMaxRetries(2), WithInitialInterval(time.Millisecond))
		attempts := 0
		err := r.Do(context.Background(), func(ctx context.Context) error {
			attempts++
			return errFail
		})
		require.Error(t, err)
		assert.ErrorIs(t, err, errFail)
		assert.Contains(t, err.Error(), "giving up after 3 attempts")
		assert.Equal(t, 3, attempts)
	})

	t.Run("context cancellation", func(t *testing.T) {
		r := New(WithMaxRetries(5), WithInitialInterval(100*time.Millisecond))
		ctx, cancel := context.WithCancel(context.Background())

		attempts := 0
		err := r.Do(ctx, func(ctx context.Context) error {
			attempts++
			cancel()
			return errFail
		})
		assert.ErrorIs(t, err, context.Canceled)
		assert.Equal(t, 1, attempts)
	})

	t.Run("permanent error stops immediately", func(t *testing.T) {
		r := New(WithMaxRetries(5), WithInitialInterval(time.Millisecond))
		attempts := 0
		err := r.Do(context.Background(), func(ctx context.Context) error {
			attempts++
			return Permanent(errFail)
		})
		assert.Equal(t, errFail, err)
		assert.Equal(t, 1, attempts)
	})

	t.Run("retry predicate", func(t *testing.T) {
		other := errors.New("other")
		r := New(
			WithMaxRetries(5),
			WithInitialInterval(time.Millisecond),
			WithRetryIf(func(err error) bool { return !errors.Is(err, other) }),
		)
		attempts := 0
		err := r.Do(context.Background(), func(ctx context.Context) error {
			attempts++
			if attempts == 2 {
				return other
			}
			return errFail
		})
		assert.Equal(t, other, err)
		assert.Equal(t, 2, attempts)
	})

	t.Run("on retry hook", func(t *testing.T) {
		var seen []int
		r := New(
			WithMaxRetries(2),
			WithInitialInterval(time.Millisecond),
			WithJitter(0),
			WithOnRetry(func(attempt int, wait time.Duration, err error) {
				seen = append(seen, attempt)
				assert.ErrorIs(t, err, errFail)
			}),
		)
		_ = r.Do(context.Background(), func(ctx context.Context) error { return errFail })
		assert.Equal(t, []int{1, 2}, seen)
	})
}

func TestRetrier_Backoff(t *testing.T) {
	r := New(WithJitter(0))
	assert.Equal(t, time.Second, r.backoff(time.Second))

	r = New(WithJitter(0.5))
	for i := 0; i < 100; i++ {
		d := r.backoff(time.Second)
		assert.GreaterOrEqual(t, d, 500*time.Millisecond)
		assert.LessOrEqual(t, d, 1500*time.Millisecond)
	}
}

func TestDoWithData(t *testing.T) {
	r := New(WithMaxRetries(2), WithInitialInterval(time.Millisecond))
	attempts := 0
	v, err := DoWithData(r, context.Background(), func(ctx context.Context) (int, error) {
		attempts++
		if attempts < 2 {
			return 0, errFail
		}
		return 42, nil
	})
	require.NoError(t, err)
	assert.Equal(t, 42, v)
}
