package usecase

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/k1s0-platform/system-server-go-configsync/internal/domain/model"
	"github.com/k1s0-platform/system-server-go-configsync/internal/domain/repository"
	"github.com/k1s0-platform/system-server-go-configsync/internal/infra/retry"
)

// DeleteConfig は単一の設定値を削除する。対象が存在しなければ ErrNotFound。
func (e *SyncEngine) DeleteConfig(ctx context.Context, section, key, updatedBy string) error {
	if err := e.ensureReady(); err != nil {
		return err
	}

	_, err := e.apply(ctx, model.BulkUpdateRequest{
		Operations: []model.BulkOperation{{
			Section: section,
			Key:     key,
			Delete:  true,
		}},
		Source:    model.SourceAPI,
		UpdatedBy: updatedBy,
	})
	return err
}

// DeleteSection はセクション内の全エントリを 1 トランザクションで削除する。
func (e *SyncEngine) DeleteSection(ctx context.Context, section, updatedBy string) error {
	if err := e.ensureReady(); err != nil {
		return err
	}
	if section == "" {
		return validationErr("section must not be empty")
	}

	entries, err := retry.Do(ctx, e.retryCfg, repository.IsTransient, func(ctx context.Context) ([]*model.ConfigEntry, error) {
		return e.store.ListBySection(ctx, section)
	})
	if err != nil {
		return err
	}
	if len(entries) == 0 {
		return fmt.Errorf("%w: %s", repository.ErrNotFound, section)
	}

	ops := make([]model.BulkOperation, 0, len(entries))
	for _, entry := range entries {
		ops = append(ops, model.BulkOperation{
			Section: entry.Section,
			Key:     entry.Key,
			Delete:  true,
		})
	}

	if _, err := e.apply(ctx, model.BulkUpdateRequest{
		Operations: ops,
		Source:     model.SourceAPI,
		UpdatedBy:  updatedBy,
	}); err != nil {
		return err
	}

	// 個別の無効化に加えて、取り残しが無いようセクション全体も掃除する
	if err := e.cache.InvalidateSection(ctx, section); err != nil {
		slog.Warn("section cache invalidation failed", "section", section, "error", err)
	}
	return nil
}
