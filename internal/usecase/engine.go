package usecase

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"sync/atomic"

	"github.com/k1s0-platform/system-server-go-configsync/internal/domain/model"
	"github.com/k1s0-platform/system-server-go-configsync/internal/domain/repository"
	"github.com/k1s0-platform/system-server-go-configsync/internal/infra/cache"
	"github.com/k1s0-platform/system-server-go-configsync/internal/infra/codec"
	"github.com/k1s0-platform/system-server-go-configsync/internal/infra/metrics"
	"github.com/k1s0-platform/system-server-go-configsync/internal/infra/retry"
)

// エンジンの状態。READY は終端で、以後ブートストラップは行われない。
const (
	StateUninitialized int32 = iota
	StateBootstrapping
	StateReady
)

// SyncEngine は設定同期の中央オーケストレーター。ストアを唯一の正とし、
// 読み取りはキャッシュ経由、書き込みは単一トランザクションでコミットした後に
// キャッシュ更新・履歴追記・通知配信を行う。インスタンスは明示的に生成して
// 参照で引き回す。グローバルなシングルトンは持たない。
type SyncEngine struct {
	store     repository.ConfigRepository
	changeLog *ChangeLog
	cache     cache.ConfigCache
	notifier  *Notifier
	retryCfg  *retry.Config
	metrics   *metrics.Metrics

	bootstrapPath string

	state   atomic.Int32
	startMu sync.Mutex
}

// EngineOption は SyncEngine の任意設定。
type EngineOption func(*SyncEngine)

// WithBootstrapFile はストアが空のとき 1 回だけ読むフォールバックファイルを設定する。
func WithBootstrapFile(path string) EngineOption {
	return func(e *SyncEngine) { e.bootstrapPath = path }
}

// WithMetrics はメトリクス計測を有効にする。
func WithMetrics(m *metrics.Metrics) EngineOption {
	return func(e *SyncEngine) { e.metrics = m }
}

// NewSyncEngine は新しい SyncEngine を作成する。
func NewSyncEngine(
	store repository.ConfigRepository,
	changeLog *ChangeLog,
	configCache cache.ConfigCache,
	notifier *Notifier,
	retryCfg *retry.Config,
	opts ...EngineOption,
) *SyncEngine {
	if retryCfg == nil {
		retryCfg = retry.DefaultConfig()
	}
	e := &SyncEngine{
		store:     store,
		changeLog: changeLog,
		cache:     configCache,
		notifier:  notifier,
		retryCfg:  retryCfg,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// State は現在の状態を返す。
func (e *SyncEngine) State() int32 {
	return e.state.Load()
}

// Ready はエンジンが操作を受け付けられるかどうかを返す。
func (e *SyncEngine) Ready() bool {
	return e.state.Load() == StateReady
}

// Healthy は readiness チェック用。READY でなければエラーを返す。
func (e *SyncEngine) Healthy(ctx context.Context) error {
	if !e.Ready() {
		return ErrNotReady
	}
	return nil
}

func (e *SyncEngine) ensureReady() error {
	if !e.Ready() {
		return ErrNotReady
	}
	return nil
}

// Start はエンジンを起動する。ストアが空ならフォールバックファイルから
// 初期データを 1 回だけ投入し、空でなければファイルには触れずキャッシュを
// 温めて READY に遷移する。ブートストラップの失敗は致命的で、エンジンは
// READY に達しない。Start は何度呼んでも二重ブートストラップしない。
func (e *SyncEngine) Start(ctx context.Context) error {
	e.startMu.Lock()
	defer e.startMu.Unlock()

	if e.state.Load() == StateReady {
		return nil
	}
	e.state.Store(StateBootstrapping)

	if err := e.changeLog.Seed(ctx); err != nil {
		return fmt.Errorf("failed to seed change log sequence: %w", err)
	}

	count, err := retry.Do(ctx, e.retryCfg, repository.IsTransient, func(ctx context.Context) (int, error) {
		return e.store.Count(ctx)
	})
	if err != nil {
		return fmt.Errorf("failed to probe store: %w", err)
	}

	if count == 0 {
		if err := e.bootstrap(ctx); err != nil {
			return fmt.Errorf("bootstrap failed: %w", err)
		}
	} else {
		// ストアが正。フォールバックファイルは以後一切参照しない。
		if err := e.warmCache(ctx); err != nil {
			slog.Warn("cache warm-up failed", "error", err)
		}
	}

	e.state.Store(StateReady)
	slog.Info("sync engine ready", "bootstrapped", count == 0)
	return nil
}

// bootstrap はフォールバックファイルを読み、全エントリを 1 回の一括更新で投入する。
func (e *SyncEngine) bootstrap(ctx context.Context) error {
	if e.bootstrapPath == "" {
		slog.Info("store is empty and no bootstrap file configured")
		return nil
	}

	sections, err := codec.LoadFile(e.bootstrapPath)
	if err != nil {
		return err
	}
	flat, err := codec.Flatten(sections)
	if err != nil {
		return err
	}
	if len(flat) == 0 {
		return nil
	}

	ops := make([]model.BulkOperation, 0, len(flat))
	for _, entry := range flat {
		ops = append(ops, model.BulkOperation{
			Section: entry.Section,
			Key:     entry.Key,
			Value:   entry.Value,
		})
	}

	_, err = e.apply(ctx, model.BulkUpdateRequest{
		Operations: ops,
		Source:     model.SourceBootstrap,
		UpdatedBy:  "system",
	})
	if err != nil {
		return err
	}
	slog.Info("bootstrapped store from fallback file", "path", e.bootstrapPath, "entries", len(flat))
	return nil
}

// warmCache はストアの全エントリをキャッシュへ投入する。
func (e *SyncEngine) warmCache(ctx context.Context) error {
	entries, err := retry.Do(ctx, e.retryCfg, repository.IsTransient, func(ctx context.Context) ([]*model.ConfigEntry, error) {
		return e.store.ListAll(ctx)
	})
	if err != nil {
		return err
	}
	for _, entry := range entries {
		if err := e.cache.Put(ctx, cache.Entry{
			Section: entry.Section,
			Key:     entry.Key,
			Value:   entry.ValueJSON,
			Version: entry.Version,
		}); err != nil {
			return err
		}
	}
	return nil
}

// apply は書き込み経路の本体。リクエスト全体を検証し、リトライ付きの
// 単一トランザクションでコミットした後、キャッシュ更新・履歴追記・通知を
// この順で行う。戻り値は追記済みの変更レコード。
func (e *SyncEngine) apply(ctx context.Context, req model.BulkUpdateRequest) ([]*model.ChangeRecord, error) {
	if err := validateRequest(req); err != nil {
		return nil, err
	}

	committed, err := retry.Do(ctx, e.retryCfg, repository.IsTransient, func(ctx context.Context) ([]model.CommittedChange, error) {
		return e.store.ApplyBulk(ctx, req)
	})
	if err != nil {
		if repository.IsConflict(err) {
			e.countConflict()
		}
		var exhausted *retry.ExhaustedError
		if errors.As(err, &exhausted) {
			e.countRetryExhausted()
		}
		return nil, err
	}

	// コミット後のキャッシュ反映。削除は無効化、更新は新バージョンで上書き。
	for _, c := range committed {
		if c.Deleted() {
			if err := e.cache.Invalidate(ctx, c.Section, c.Key); err != nil {
				slog.Warn("cache invalidation failed", "section", c.Section, "key", c.Key, "error", err)
			}
			continue
		}
		if err := e.cache.Put(ctx, cache.Entry{
			Section: c.Section,
			Key:     c.Key,
			Value:   c.NewValue,
			Version: c.NewVersion,
		}); err != nil {
			slog.Warn("cache update failed", "section", c.Section, "key", c.Key, "error", err)
		}
	}

	records, err := e.changeLog.Record(ctx, req, committed)
	if err != nil {
		// コミット自体は成立している。履歴欠落として扱い、呼び出し元へ返す。
		return nil, fmt.Errorf("committed but failed to append change records: %w", err)
	}

	published := e.notifier.Publish(ctx, records)
	e.countNotifications(published)
	e.countWrite(req.Source)

	return records, nil
}

// validateRequest はストアに触れる前のリクエスト検証を行う。
func validateRequest(req model.BulkUpdateRequest) error {
	if len(req.Operations) == 0 {
		return validationErr("bulk update must contain at least one operation")
	}
	for _, op := range req.Operations {
		if op.Section == "" {
			return validationErr("section must not be empty")
		}
		if op.Key == "" {
			return validationErr("key must not be empty")
		}
		if !op.Delete {
			if len(op.Value) == 0 {
				return validationErr("value must not be empty for %s/%s", op.Section, op.Key)
			}
			if !json.Valid(op.Value) {
				return validationErr("value for %s/%s is not valid JSON", op.Section, op.Key)
			}
		}
	}
	return nil
}

func (e *SyncEngine) countRead(result string) {
	if e.metrics != nil {
		e.metrics.Reads.WithLabelValues(result).Inc()
	}
}

func (e *SyncEngine) countWrite(source string) {
	if e.metrics != nil {
		e.metrics.Writes.WithLabelValues(source).Inc()
	}
}

func (e *SyncEngine) countConflict() {
	if e.metrics != nil {
		e.metrics.Conflicts.Inc()
	}
}

func (e *SyncEngine) countRetryExhausted() {
	if e.metrics != nil {
		e.metrics.RetryExhausted.Inc()
	}
}

func (e *SyncEngine) countNotifications(n int) {
	if e.metrics != nil {
		e.metrics.Notifications.Add(float64(n))
	}
}
