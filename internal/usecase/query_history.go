package usecase

import (
	"context"

	"github.com/k1s0-platform/system-server-go-configsync/internal/domain/model"
	"github.com/k1s0-platform/system-server-go-configsync/internal/domain/repository"
)

// QueryHistoryInput は変更履歴取得の入力パラメータ。Section / Key は空なら無条件。
type QueryHistoryInput struct {
	Section string `json:"section"`
	Key     string `json:"key"`
	Limit   int    `json:"limit"`
	Offset  int    `json:"offset"`
}

// QueryHistoryOutput は変更履歴取得の出力。
type QueryHistoryOutput struct {
	Records    []*model.ChangeRecord `json:"records"`
	TotalCount int                   `json:"total_count"`
	Limit      int                   `json:"limit"`
	Offset     int                   `json:"offset"`
}

// QueryHistory は変更履歴をシーケンス降順でページ取得する。
// ページングはシーケンス基準なので、並行する追記があっても取得済みページは揺れない。
func (e *SyncEngine) QueryHistory(ctx context.Context, input QueryHistoryInput) (*QueryHistoryOutput, error) {
	if err := e.ensureReady(); err != nil {
		return nil, err
	}

	limit := input.Limit
	if limit < 1 {
		limit = 10
	}
	if limit > 100 {
		limit = 100
	}
	offset := input.Offset
	if offset < 0 {
		offset = 0
	}

	records, total, err := e.changeLog.Query(ctx, repository.ChangeLogQueryParams{
		Section: input.Section,
		Key:     input.Key,
		Limit:   limit,
		Offset:  offset,
	})
	if err != nil {
		return nil, err
	}

	if records == nil {
		records = []*model.ChangeRecord{}
	}
	return &QueryHistoryOutput{
		Records:    records,
		TotalCount: total,
		Limit:      limit,
		Offset:     offset,
	}, nil
}
