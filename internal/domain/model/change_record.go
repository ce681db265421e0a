package model

import (
	"encoding/json"
	"time"
)

// 変更種別。
const (
	ChangeTypeCreated = "CREATED"
	ChangeTypeUpdated = "UPDATED"
	ChangeTypeDeleted = "DELETED"
)

// 変更の発生源。
const (
	SourceBootstrap = "bootstrap"
	SourceAPI       = "api"
	SourceSystem    = "system"
)

// ChangeRecord はコミット済み変更 1 件の監査レコードを表す。
// 追記後は不変。Sequence はエンジンインスタンス内で単調増加・欠番なしで、
// 履歴の並び順と通知の重複排除キーになる。NewValue が nil の場合は削除を表す。
type ChangeRecord struct {
	ID         string          `json:"id" db:"id"`
	Sequence   int64           `json:"sequence" db:"sequence"`
	Section    string          `json:"section" db:"section"`
	Key        string          `json:"key" db:"key"`
	OldValue   json.RawMessage `json:"old_value,omitempty" db:"old_value"`
	NewValue   json.RawMessage `json:"new_value,omitempty" db:"new_value"`
	OldVersion int             `json:"old_version" db:"old_version"`
	NewVersion int             `json:"new_version" db:"new_version"`
	ChangeType string          `json:"change_type" db:"change_type"`
	Source     string          `json:"source" db:"source"`
	ChangedBy  string          `json:"changed_by" db:"changed_by"`
	ChangedAt  time.Time       `json:"changed_at" db:"changed_at"`
}
