package grpc

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/k1s0-platform/system-server-go-configsync/internal/domain/model"
	"github.com/k1s0-platform/system-server-go-configsync/internal/domain/repository"
	"github.com/k1s0-platform/system-server-go-configsync/internal/infra/retry"
	"github.com/k1s0-platform/system-server-go-configsync/internal/usecase"
)

// SyncService は同期エンジンが gRPC アダプターへ公開する操作。
type SyncService interface {
	GetConfig(ctx context.Context, section, key string) (*usecase.GetConfigOutput, error)
	SetConfig(ctx context.Context, input usecase.SetConfigInput) (*usecase.SetConfigOutput, error)
	DeleteConfig(ctx context.Context, section, key, updatedBy string) error
	BulkUpdate(ctx context.Context, input usecase.BulkUpdateInput) (*usecase.BulkUpdateOutput, error)
	QueryHistory(ctx context.Context, input usecase.QueryHistoryInput) (*usecase.QueryHistoryOutput, error)
}

// ConfigSyncGRPCService は gRPC ConfigSyncService の実装。
type ConfigSyncGRPCService struct {
	engine SyncService
}

// NewConfigSyncGRPCService は ConfigSyncGRPCService のコンストラクタ。
func NewConfigSyncGRPCService(engine SyncService) *ConfigSyncGRPCService {
	return &ConfigSyncGRPCService{engine: engine}
}

// GetConfig は指定された section と key の設定値を取得する。
func (s *ConfigSyncGRPCService) GetConfig(ctx context.Context, req *GetConfigRequest) (*GetConfigResponse, error) {
	if req.Section == "" || req.Key == "" {
		return nil, fmt.Errorf("rpc error: code = InvalidArgument desc = section and key are required")
	}

	output, err := s.engine.GetConfig(ctx, req.Section, req.Key)
	if err != nil {
		return nil, toRPCError(err)
	}

	return &GetConfigResponse{
		Entry: &PbConfigEntry{
			Section:   output.Section,
			Key:       output.Key,
			Value:     output.Value,
			Version:   int32(output.Version),
			UpdatedBy: output.UpdatedBy,
			UpdatedAt: timeToTimestamp(output.UpdatedAt),
		},
	}, nil
}

// UpdateConfig は設定値を作成または更新する。
func (s *ConfigSyncGRPCService) UpdateConfig(ctx context.Context, req *UpdateConfigRequest) (*UpdateConfigResponse, error) {
	if req.Section == "" || req.Key == "" || req.Value == nil || req.UpdatedBy == "" {
		return nil, fmt.Errorf("rpc error: code = InvalidArgument desc = section, key, value, and updated_by are required")
	}

	input := usecase.SetConfigInput{
		Section:   req.Section,
		Key:       req.Key,
		Value:     req.Value,
		UpdatedBy: req.UpdatedBy,
	}
	if req.ExpectedVersion != 0 {
		v := int(req.ExpectedVersion)
		input.ExpectedVersion = &v
	}

	output, err := s.engine.SetConfig(ctx, input)
	if err != nil {
		return nil, toRPCError(err)
	}

	return &UpdateConfigResponse{
		Entry: &PbConfigEntry{
			Section:   output.Section,
			Key:       output.Key,
			Value:     output.Value,
			Version:   int32(output.Version),
			UpdatedBy: output.UpdatedBy,
			UpdatedAt: timeToTimestamp(output.UpdatedAt),
		},
	}, nil
}

// DeleteConfig は設定値を削除する。
func (s *ConfigSyncGRPCService) DeleteConfig(ctx context.Context, req *DeleteConfigRequest) (*DeleteConfigResponse, error) {
	if req.Section == "" || req.Key == "" || req.DeletedBy == "" {
		return nil, fmt.Errorf("rpc error: code = InvalidArgument desc = section, key, and deleted_by are required")
	}

	if err := s.engine.DeleteConfig(ctx, req.Section, req.Key, req.DeletedBy); err != nil {
		return nil, toRPCError(err)
	}

	return &DeleteConfigResponse{Success: true}, nil
}

// BulkUpdate は複数キーを原子的に一括更新する。
func (s *ConfigSyncGRPCService) BulkUpdate(ctx context.Context, req *BulkUpdateRequest) (*BulkUpdateResponse, error) {
	if len(req.Items) == 0 || req.UpdatedBy == "" {
		return nil, fmt.Errorf("rpc error: code = InvalidArgument desc = items and updated_by are required")
	}

	items := make([]usecase.BulkItem, 0, len(req.Items))
	for _, item := range req.Items {
		bi := usecase.BulkItem{
			Section: item.Section,
			Key:     item.Key,
			Value:   item.Value,
			Delete:  item.Delete,
		}
		if item.ExpectedVersion != 0 {
			v := int(item.ExpectedVersion)
			bi.ExpectedVersion = &v
		}
		items = append(items, bi)
	}

	output, err := s.engine.BulkUpdate(ctx, usecase.BulkUpdateInput{
		Items:     items,
		UpdatedBy: req.UpdatedBy,
	})
	if err != nil {
		return nil, toRPCError(err)
	}

	return &BulkUpdateResponse{Records: recordsToPb(output.Records)}, nil
}

// GetHistory は変更履歴をシーケンス降順で取得する。
func (s *ConfigSyncGRPCService) GetHistory(ctx context.Context, req *GetHistoryRequest) (*GetHistoryResponse, error) {
	output, err := s.engine.QueryHistory(ctx, usecase.QueryHistoryInput{
		Section: req.Section,
		Key:     req.Key,
		Limit:   int(req.Limit),
		Offset:  int(req.Offset),
	})
	if err != nil {
		return nil, toRPCError(err)
	}

	return &GetHistoryResponse{
		Records:    recordsToPb(output.Records),
		TotalCount: int32(output.TotalCount),
	}, nil
}

// --- ヘルパー関数 ---

func toRPCError(err error) error {
	var conflict *repository.ConflictError
	var exhausted *retry.ExhaustedError

	switch {
	case errors.Is(err, usecase.ErrValidation):
		return fmt.Errorf("rpc error: code = InvalidArgument desc = %v", err)
	case errors.As(err, &conflict):
		return fmt.Errorf("rpc error: code = Aborted desc = version conflict: %v", conflict.Keys)
	case errors.Is(err, repository.ErrNotFound):
		return fmt.Errorf("rpc error: code = NotFound desc = %v", err)
	case errors.Is(err, usecase.ErrNotReady):
		return fmt.Errorf("rpc error: code = Unavailable desc = %v", err)
	case errors.As(err, &exhausted):
		return fmt.Errorf("rpc error: code = Unavailable desc = %v", err)
	default:
		return fmt.Errorf("rpc error: code = Internal desc = %v", err)
	}
}

func recordsToPb(records []*model.ChangeRecord) []*PbChangeRecord {
	out := make([]*PbChangeRecord, 0, len(records))
	for _, r := range records {
		out = append(out, &PbChangeRecord{
			Sequence:   r.Sequence,
			Section:    r.Section,
			Key:        r.Key,
			OldValue:   r.OldValue,
			NewValue:   r.NewValue,
			OldVersion: int32(r.OldVersion),
			NewVersion: int32(r.NewVersion),
			ChangeType: r.ChangeType,
			Source:     r.Source,
			ChangedBy:  r.ChangedBy,
			ChangedAt:  timeToTimestamp(r.ChangedAt),
		})
	}
	return out
}

func timeToTimestamp(t time.Time) *Timestamp {
	if t.IsZero() {
		return nil
	}
	return &Timestamp{
		Seconds: t.Unix(),
		Nanos:   int32(t.Nanosecond()),
	}
}
