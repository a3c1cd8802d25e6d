package retry

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var errBoom = errors.New("boom")

func recordingPolicy(waits *[]time.Duration) Policy {
	p := Default()
	p.Sleep = func(ctx context.Context, d time.Duration) error {
		*waits = append(*waits, d)
		return ctx.Err()
	}
	return p
}

func TestPolicy_Delay(t *testing.T) {
	p := Default()
	assert.Equal(t, 4*time.Second, p.Delay(1))
	assert.Equal(t, 4*time.Second, p.Delay(2))
	assert.Equal(t, 4*time.Second, p.Delay(3))
	assert.Equal(t, 8*time.Second, p.Delay(4))
	assert.Equal(t, 10*time.Second, p.Delay(5))
	assert.Equal(t, 10*time.Second, p.Delay(30))
}

func TestDo(t *testing.T) {
	t.Run("succeeds after transient failures", func(t *testing.T) {
		var waits []time.Duration
		calls := 0
		got, err := Do(context.Background(), recordingPolicy(&waits), "fetch", func(context.Context) (string, error) {
			calls++
			if calls < 3 {
				return "", errBoom
			}
			return "ok", nil
		})
		require.NoError(t, err)
		assert.Equal(t, "ok", got)
		assert.Equal(t, 3, calls)
		assert.Equal(t, []time.Duration{4 * time.Second, 4 * time.Second}, waits)
	})

	t.Run("gives up after max attempts", func(t *testing.T) {
		var waits []time.Duration
		calls := 0
		err := recordingPolicy(&waits).Do(context.Background(), "fetch", func(context.Context) error {
			calls++
			return errBoom
		})
		var rerr *Error
		require.ErrorAs(t, err, &rerr)
		assert.Equal(t, 5, rerr.Attempts)
		assert.Equal(t, "fetch", rerr.Op)
		assert.ErrorIs(t, err, errBoom)
		assert.Equal(t, 5, calls)
		assert.Len(t, waits, 4)
	})

	t.Run("non-retryable error returns immediately", func(t *testing.T) {
		var waits []time.Duration
		p := recordingPolicy(&waits).With(func(error) bool { return false })
		calls := 0
		err := p.Do(context.Background(), "fetch", func(context.Context) error {
			calls++
			return errBoom
		})
		assert.Equal(t, errBoom, err)
		assert.Equal(t, 1, calls)
		assert.Empty(t, waits)
	})

	t.Run("server wait replaces backoff", func(t *testing.T) {
		var waits []time.Duration
		p := recordingPolicy(&waits)
		p.RetryAfter = func(error) (time.Duration, bool) { return 30 * time.Second, true }
		calls := 0
		err := p.Do(context.Background(), "fetch", func(context.Context) error {
			calls++
			if calls == 1 {
				return errBoom
			}
			return nil
		})
		require.NoError(t, err)
		assert.Equal(t, []time.Duration{30 * time.Second}, waits)
	})

	t.Run("cancelled context stops retrying", func(t *testing.T) {
		ctx, cancel := context.WithCancel(context.Background())
		var waits []time.Duration
		p := recordingPolicy(&waits)
		calls := 0
		err := p.Do(ctx, "fetch", func(context.Context) error {
			calls++
			cancel()
			return errBoom
		})
		assert.ErrorIs(t, err, context.Canceled)
		assert.Equal(t, 1, calls)
	})

	t.Run("context errors from fn are not retried", func(t *testing.T) {
		var waits []time.Duration
		calls := 0
		err := recordingPolicy(&waits).Do(context.Background(), "fetch", func(context.Context) error {
			calls++
			return context.DeadlineExceeded
		})
		assert.ErrorIs(t, err, context.DeadlineExceeded)
		assert.Equal(t, 1, calls)
	})
}
