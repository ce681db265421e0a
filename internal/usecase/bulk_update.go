package usecase

import (
	"context"
	"encoding/json"

	"github.com/k1s0-platform/system-server-go-configsync/internal/domain/model"
)

// BulkItem は一括更新の 1 項目。Delete が true なら対象を削除する。
type BulkItem struct {
	Section         string          `json:"section"`
	Key             string          `json:"key"`
	Value           json.RawMessage `json:"value,omitempty"`
	Delete          bool            `json:"delete,omitempty"`
	ExpectedVersion *int            `json:"expected_version,omitempty"`
}

// BulkUpdateInput は一括更新の入力パラメータ。Items の順に適用される。
type BulkUpdateInput struct {
	Items     []BulkItem `json:"items"`
	UpdatedBy string     `json:"updated_by"`
}

// BulkUpdateOutput は一括更新の出力。
type BulkUpdateOutput struct {
	Records []*model.ChangeRecord `json:"records"`
}

// BulkUpdate は複数キーを単一の原子的な更新として適用する。
// 全項目がコミットされるか、1 つも適用されないかのどちらかで、
// 呼び出し元は常に単一の成功または単一の型付きエラーを受け取る。
func (e *SyncEngine) BulkUpdate(ctx context.Context, input BulkUpdateInput) (*BulkUpdateOutput, error) {
	if err := e.ensureReady(); err != nil {
		return nil, err
	}

	ops := make([]model.BulkOperation, 0, len(input.Items))
	for _, item := range input.Items {
		ops = append(ops, model.BulkOperation{
			Section:         item.Section,
			Key:             item.Key,
			Value:           item.Value,
			Delete:          item.Delete,
			ExpectedVersion: item.ExpectedVersion,
		})
	}

	records, err := e.apply(ctx, model.BulkUpdateRequest{
		Operations: ops,
		Source:     model.SourceAPI,
		UpdatedBy:  input.UpdatedBy,
	})
	if err != nil {
		return nil, err
	}

	return &BulkUpdateOutput{Records: records}, nil
}
