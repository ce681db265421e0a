package usecase

import (
	"context"
	"encoding/json"
	"time"

	"github.com/k1s0-platform/system-server-go-configsync/internal/domain/model"
	"github.com/k1s0-platform/system-server-go-configsync/internal/domain/repository"
	"github.com/k1s0-platform/system-server-go-configsync/internal/infra/codec"
	"github.com/k1s0-platform/system-server-go-configsync/internal/infra/retry"
)

// SetConfigInput は設定値更新の入力パラメータ。ExpectedVersion が非 nil の
// 場合は楽観的排他制御を行い、不一致なら ConflictError で全体が失敗する。
type SetConfigInput struct {
	Section         string          `json:"section"`
	Key             string          `json:"key"`
	Value           json.RawMessage `json:"value"`
	ExpectedVersion *int            `json:"expected_version,omitempty"`
	UpdatedBy       string          `json:"updated_by"`
}

// SetConfigOutput は設定値更新の出力。
type SetConfigOutput struct {
	Section   string          `json:"section"`
	Key       string          `json:"key"`
	Value     json.RawMessage `json:"value"`
	Version   int             `json:"version"`
	UpdatedBy string          `json:"updated_by"`
	UpdatedAt time.Time       `json:"updated_at"`
}

// SetConfig は単一の設定値を作成または更新する。
func (e *SyncEngine) SetConfig(ctx context.Context, input SetConfigInput) (*SetConfigOutput, error) {
	if err := e.ensureReady(); err != nil {
		return nil, err
	}

	records, err := e.apply(ctx, model.BulkUpdateRequest{
		Operations: []model.BulkOperation{{
			Section:         input.Section,
			Key:             input.Key,
			Value:           input.Value,
			ExpectedVersion: input.ExpectedVersion,
		}},
		Source:    model.SourceAPI,
		UpdatedBy: input.UpdatedBy,
	})
	if err != nil {
		return nil, err
	}

	record := records[0]
	return &SetConfigOutput{
		Section:   record.Section,
		Key:       record.Key,
		Value:     record.NewValue,
		Version:   record.NewVersion,
		UpdatedBy: record.ChangedBy,
		UpdatedAt: record.ChangedAt,
	}, nil
}

// SetSection はセクション全体を置き換える。新しい値に含まれないキーは削除し、
// 含まれるキーは upsert する。全体が 1 トランザクションでコミットされる。
func (e *SyncEngine) SetSection(ctx context.Context, section string, value any, updatedBy string) ([]*model.ChangeRecord, error) {
	if err := e.ensureReady(); err != nil {
		return nil, err
	}
	if section == "" {
		return nil, validationErr("section must not be empty")
	}

	flat, err := codec.Flatten(map[string]any{section: value})
	if err != nil {
		return nil, validationErr("%v", err)
	}

	newKeys := make(map[string]bool, len(flat))
	ops := make([]model.BulkOperation, 0, len(flat))
	for _, entry := range flat {
		newKeys[entry.Key] = true
		ops = append(ops, model.BulkOperation{
			Section: entry.Section,
			Key:     entry.Key,
			Value:   entry.Value,
		})
	}

	// 既存キーのうち新しい値に含まれないものを削除対象にする
	existing, err := retry.Do(ctx, e.retryCfg, repository.IsTransient, func(ctx context.Context) ([]*model.ConfigEntry, error) {
		return e.store.ListBySection(ctx, section)
	})
	if err != nil {
		return nil, err
	}
	deletes := make([]model.BulkOperation, 0)
	for _, entry := range existing {
		if !newKeys[entry.Key] {
			deletes = append(deletes, model.BulkOperation{
				Section: entry.Section,
				Key:     entry.Key,
				Delete:  true,
			})
		}
	}

	return e.apply(ctx, model.BulkUpdateRequest{
		Operations: append(deletes, ops...),
		Source:     model.SourceAPI,
		UpdatedBy:  updatedBy,
	})
}
