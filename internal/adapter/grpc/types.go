package grpc

import "encoding/json"

// proto 生成コードが未生成のため、configsync_service.proto に対応する
// Go 構造体を手動定義する。buf generate 後にこのファイルは生成コードに置き換える。

// --- Common Types ---

// Timestamp は protobuf Timestamp 互換型。
type Timestamp struct {
	Seconds int64 `json:"seconds"`
	Nanos   int32 `json:"nanos"`
}

// PbConfigEntry は proto の ConfigEntry に対応する構造体。
type PbConfigEntry struct {
	Section   string          `json:"section"`
	Key       string          `json:"key"`
	Value     json.RawMessage `json:"value"`
	Version   int32           `json:"version"`
	UpdatedBy string          `json:"updated_by,omitempty"`
	UpdatedAt *Timestamp      `json:"updated_at,omitempty"`
}

// PbChangeRecord は proto の ChangeRecord に対応する構造体。
type PbChangeRecord struct {
	Sequence   int64           `json:"sequence"`
	Section    string          `json:"section"`
	Key        string          `json:"key"`
	OldValue   json.RawMessage `json:"old_value,omitempty"`
	NewValue   json.RawMessage `json:"new_value,omitempty"`
	OldVersion int32           `json:"old_version"`
	NewVersion int32           `json:"new_version"`
	ChangeType string          `json:"change_type"`
	Source     string          `json:"source"`
	ChangedBy  string          `json:"changed_by"`
	ChangedAt  *Timestamp      `json:"changed_at,omitempty"`
}

// --- GetConfig ---

// GetConfigRequest は設定値取得リクエスト。
type GetConfigRequest struct {
	Section string `json:"section"`
	Key     string `json:"key"`
}

// GetConfigResponse は設定値取得レスポンス。
type GetConfigResponse struct {
	Entry *PbConfigEntry `json:"entry"`
}

// --- UpdateConfig ---

// UpdateConfigRequest は設定値更新リクエスト。ExpectedVersion が 0 以外の
// 場合は楽観的排他制御を行う。
type UpdateConfigRequest struct {
	Section         string          `json:"section"`
	Key             string          `json:"key"`
	Value           json.RawMessage `json:"value"`
	ExpectedVersion int32           `json:"expected_version,omitempty"`
	UpdatedBy       string          `json:"updated_by"`
}

// UpdateConfigResponse は設定値更新レスポンス。
type UpdateConfigResponse struct {
	Entry *PbConfigEntry `json:"entry"`
}

// --- DeleteConfig ---

// DeleteConfigRequest は設定値削除リクエスト。
type DeleteConfigRequest struct {
	Section   string `json:"section"`
	Key       string `json:"key"`
	DeletedBy string `json:"deleted_by"`
}

// DeleteConfigResponse は設定値削除レスポンス。
type DeleteConfigResponse struct {
	Success bool `json:"success"`
}

// --- BulkUpdate ---

// BulkUpdateItem は一括更新の 1 項目。
type BulkUpdateItem struct {
	Section         string          `json:"section"`
	Key             string          `json:"key"`
	Value           json.RawMessage `json:"value,omitempty"`
	Delete          bool            `json:"delete,omitempty"`
	ExpectedVersion int32           `json:"expected_version,omitempty"`
}

// BulkUpdateRequest は一括更新リクエスト。全項目が原子的に適用される。
type BulkUpdateRequest struct {
	Items     []*BulkUpdateItem `json:"items"`
	UpdatedBy string            `json:"updated_by"`
}

// BulkUpdateResponse は一括更新レスポンス。
type BulkUpdateResponse struct {
	Records []*PbChangeRecord `json:"records"`
}

// --- GetHistory ---

// GetHistoryRequest は変更履歴取得リクエスト。
type GetHistoryRequest struct {
	Section string `json:"section,omitempty"`
	Key     string `json:"key,omitempty"`
	Limit   int32  `json:"limit,omitempty"`
	Offset  int32  `json:"offset,omitempty"`
}

// GetHistoryResponse は変更履歴取得レスポンス。
type GetHistoryResponse struct {
	Records    []*PbChangeRecord `json:"records"`
	TotalCount int32             `json:"total_count"`
}
