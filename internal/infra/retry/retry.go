package retry

import (
	"context"
	"fmt"
	"math"
	"math/rand"
	"time"
)

// Config はリトライポリシーの設定。呼び出し毎に試行カウンタは新規に始まり、
// 呼び出し間で状態を共有しない。
type Config struct {
	// MaxAttempts は最大試行回数。
	MaxAttempts int
	// InitialDelay は初回リトライの待機時間。
	InitialDelay time.Duration
	// MaxDelay は最大待機時間。
	MaxDelay time.Duration
	// Multiplier は指数バックオフの倍率。
	Multiplier float64
	// Jitter はジッター（揺らぎ）を有効にするかどうか。
	Jitter bool
}

// DefaultConfig はデフォルトのリトライ設定を返す。
func DefaultConfig() *Config {
	return &Config{
		MaxAttempts:  3,
		InitialDelay: 100 * time.Millisecond,
		MaxDelay:     30 * time.Second,
		Multiplier:   2.0,
		Jitter:       true,
	}
}

// ComputeDelay は指定された試行回数に対する待機時間を計算する。
func (c *Config) ComputeDelay(attempt int) time.Duration {
	base := float64(c.InitialDelay.Milliseconds()) * math.Pow(c.Multiplier, float64(attempt))
	capped := math.Min(base, float64(c.MaxDelay.Milliseconds()))
	if c.Jitter {
		jitterRange := capped * 0.1
		capped = capped - jitterRange + rand.Float64()*jitterRange*2.0
	}
	return time.Duration(capped) * time.Millisecond
}

// ExhaustedError はリトライ上限到達を表すエラー。最後の失敗を保持する。
type ExhaustedError struct {
	// Attempts は試行回数。
	Attempts int
	// LastError は最後のエラー。
	LastError error
}

func (e *ExhaustedError) Error() string {
	return fmt.Sprintf("retry exhausted after %d attempts: %v", e.Attempts, e.LastError)
}

func (e *ExhaustedError) Unwrap() error {
	return e.LastError
}

// Do はリトライポリシーに従って操作を実行する。retryable が false を返す
// エラー（バリデーション・競合など）は即座に伝播し、再試行しない。
// コンテキストのキャンセルは待機中にのみ反映される。実行中のストア操作は
// トランザクション単位でコミットかロールバックのどちらかに収束する。
func Do[T any](ctx context.Context, config *Config, retryable func(error) bool, operation func(ctx context.Context) (T, error)) (T, error) {
	var lastErr error
	var zero T
	for attempt := 0; attempt < config.MaxAttempts; attempt++ {
		result, err := operation(ctx)
		if err == nil {
			return result, nil
		}
		if retryable != nil && !retryable(err) {
			return zero, err
		}
		lastErr = err
		if attempt+1 < config.MaxAttempts {
			delay := config.ComputeDelay(attempt)
			select {
			case <-ctx.Done():
				return zero, ctx.Err()
			case <-time.After(delay):
			}
		}
	}
	return zero, &ExhaustedError{Attempts: config.MaxAttempts, LastError: lastErr}
}
