package presenter

import (
	"encoding/json"
	"time"

	"github.com/k1s0-platform/system-server-go-configsync/internal/domain/model"
	"github.com/k1s0-platform/system-server-go-configsync/internal/usecase"
)

// ConfigEntryResponse は設定エントリの API レスポンス。
type ConfigEntryResponse struct {
	Section   string          `json:"section"`
	Key       string          `json:"key"`
	Value     json.RawMessage `json:"value"`
	Version   int             `json:"version"`
	UpdatedBy string          `json:"updated_by"`
	UpdatedAt time.Time       `json:"updated_at"`
}

// ChangeRecordResponse は変更履歴エントリの API レスポンス。
type ChangeRecordResponse struct {
	Sequence   int64           `json:"sequence"`
	Section    string          `json:"section"`
	Key        string          `json:"key"`
	OldValue   json.RawMessage `json:"old_value,omitempty"`
	NewValue   json.RawMessage `json:"new_value,omitempty"`
	OldVersion int             `json:"old_version"`
	NewVersion int             `json:"new_version"`
	ChangeType string          `json:"change_type"`
	Source     string          `json:"source"`
	ChangedBy  string          `json:"changed_by"`
	ChangedAt  time.Time       `json:"changed_at"`
}

// PaginationResponse は履歴ページングの API レスポンス。
type PaginationResponse struct {
	TotalCount int `json:"total_count"`
	Limit      int `json:"limit"`
	Offset     int `json:"offset"`
}

// HistoryPageResponse は変更履歴ページの API レスポンス。
type HistoryPageResponse struct {
	Records    []ChangeRecordResponse `json:"records"`
	Pagination PaginationResponse     `json:"pagination"`
}

// ConfigEntryFromGet は GetConfigOutput をレスポンスへ変換する。
func ConfigEntryFromGet(output *usecase.GetConfigOutput) ConfigEntryResponse {
	return ConfigEntryResponse{
		Section:   output.Section,
		Key:       output.Key,
		Value:     output.Value,
		Version:   output.Version,
		UpdatedBy: output.UpdatedBy,
		UpdatedAt: output.UpdatedAt,
	}
}

// ConfigEntryFromSet は SetConfigOutput をレスポンスへ変換する。
func ConfigEntryFromSet(output *usecase.SetConfigOutput) ConfigEntryResponse {
	return ConfigEntryResponse{
		Section:   output.Section,
		Key:       output.Key,
		Value:     output.Value,
		Version:   output.Version,
		UpdatedBy: output.UpdatedBy,
		UpdatedAt: output.UpdatedAt,
	}
}

// ChangeRecords は変更履歴レコードの一覧をレスポンスへ変換する。
func ChangeRecords(records []*model.ChangeRecord) []ChangeRecordResponse {
	out := make([]ChangeRecordResponse, 0, len(records))
	for _, r := range records {
		out = append(out, ChangeRecordResponse{
			Sequence:   r.Sequence,
			Section:    r.Section,
			Key:        r.Key,
			OldValue:   r.OldValue,
			NewValue:   r.NewValue,
			OldVersion: r.OldVersion,
			NewVersion: r.NewVersion,
			ChangeType: r.ChangeType,
			Source:     r.Source,
			ChangedBy:  r.ChangedBy,
			ChangedAt:  r.ChangedAt,
		})
	}
	return out
}

// HistoryPage は QueryHistoryOutput をレスポンスへ変換する。
func HistoryPage(output *usecase.QueryHistoryOutput) HistoryPageResponse {
	return HistoryPageResponse{
		Records: ChangeRecords(output.Records),
		Pagination: PaginationResponse{
			TotalCount: output.TotalCount,
			Limit:      output.Limit,
			Offset:     output.Offset,
		},
	}
}
