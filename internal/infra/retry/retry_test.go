package retry_test

import (
	"context"
	"errors"
	"fmt"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/k1s0-platform/system-server-go-configsync/internal/infra/retry"
)

func testConfig() *retry.Config {
	return &retry.Config{
		MaxAttempts:  3,
		InitialDelay: time.Millisecond,
		MaxDelay:     time.Second,
		Multiplier:   2.0,
		Jitter:       false,
	}
}

func TestDo_SucceedsOnFirstAttempt(t *testing.T) {
	result, err := retry.Do(context.Background(), testConfig(), nil, func(ctx context.Context) (string, error) {
		return "success", nil
	})
	require.NoError(t, err)
	assert.Equal(t, "success", result)
}

func TestDo_SucceedsOnThirdAttempt(t *testing.T) {
	var counter atomic.Int32
	result, err := retry.Do(context.Background(), testConfig(), nil, func(ctx context.Context) (string, error) {
		attempt := counter.Add(1)
		if attempt < 3 {
			return "", fmt.Errorf("not yet")
		}
		return "success", nil
	})
	require.NoError(t, err)
	assert.Equal(t, "success", result)
	assert.Equal(t, int32(3), counter.Load())
}

func TestDo_Exhausted(t *testing.T) {
	_, err := retry.Do(context.Background(), testConfig(), nil, func(ctx context.Context) (string, error) {
		return "", fmt.Errorf("always fails")
	})
	require.Error(t, err)
	var exhausted *retry.ExhaustedError
	require.ErrorAs(t, err, &exhausted)
	assert.Equal(t, 3, exhausted.Attempts)
	assert.Contains(t, exhausted.LastError.Error(), "always fails")
}

func TestDo_ExhaustedUnwrapsLastError(t *testing.T) {
	sentinel := errors.New("store unavailable")
	_, err := retry.Do(context.Background(), testConfig(), nil, func(ctx context.Context) (string, error) {
		return "", sentinel
	})
	require.Error(t, err)
	assert.ErrorIs(t, err, sentinel)
}

func TestDo_NonRetryableErrorPropagatesImmediately(t *testing.T) {
	sentinel := errors.New("validation failed")
	var counter atomic.Int32

	_, err := retry.Do(context.Background(), testConfig(),
		func(err error) bool { return !errors.Is(err, sentinel) },
		func(ctx context.Context) (string, error) {
			counter.Add(1)
			return "", sentinel
		})

	require.Error(t, err)
	assert.ErrorIs(t, err, sentinel)
	// ExhaustedError に包まれず、1 回で打ち切られる
	var exhausted *retry.ExhaustedError
	assert.False(t, errors.As(err, &exhausted))
	assert.Equal(t, int32(1), counter.Load())
}

func TestDo_ContextCancelledDuringWait(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	config := &retry.Config{
		MaxAttempts:  5,
		InitialDelay: 100 * time.Millisecond,
		MaxDelay:     time.Second,
		Multiplier:   2.0,
		Jitter:       false,
	}
	go func() {
		time.Sleep(50 * time.Millisecond)
		cancel()
	}()
	_, err := retry.Do(ctx, config, nil, func(ctx context.Context) (string, error) {
		return "", fmt.Errorf("fail")
	})
	require.Error(t, err)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestComputeDelay_Exponential(t *testing.T) {
	config := &retry.Config{
		MaxAttempts:  5,
		InitialDelay: 100 * time.Millisecond,
		MaxDelay:     30 * time.Second,
		Multiplier:   2.0,
		Jitter:       false,
	}
	assert.Equal(t, 100*time.Millisecond, config.ComputeDelay(0))
	assert.Equal(t, 200*time.Millisecond, config.ComputeDelay(1))
	assert.Equal(t, 400*time.Millisecond, config.ComputeDelay(2))
}

func TestComputeDelay_CappedAtMaxDelay(t *testing.T) {
	config := &retry.Config{
		MaxAttempts:  10,
		InitialDelay: time.Second,
		MaxDelay:     5 * time.Second,
		Multiplier:   10.0,
		Jitter:       false,
	}
	assert.Equal(t, 5*time.Second, config.ComputeDelay(5))
}

func TestComputeDelay_JitterStaysWithinBounds(t *testing.T) {
	config := &retry.Config{
		MaxAttempts:  3,
		InitialDelay: 100 * time.Millisecond,
		MaxDelay:     30 * time.Second,
		Multiplier:   2.0,
		Jitter:       true,
	}
	// ±10% のジッター
	for i := 0; i < 100; i++ {
		d := config.ComputeDelay(0)
		assert.GreaterOrEqual(t, d, 90*time.Millisecond)
		assert.LessOrEqual(t, d, 110*time.Millisecond)
	}
}

func TestDefaultConfig(t *testing.T) {
	config := retry.DefaultConfig()
	assert.Equal(t, 3, config.MaxAttempts)
	assert.Equal(t, 100*time.Millisecond, config.InitialDelay)
	assert.Equal(t, 30*time.Second, config.MaxDelay)
	assert.Equal(t, 2.0, config.Multiplier)
	assert.True(t, config.Jitter)
}
