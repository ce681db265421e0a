package model

import (
	"encoding/json"
	"time"
)

// BulkOperation は一括更新の 1 操作を表す。Delete が true の場合、
// 対象エントリを削除する（Value は無視される）。ExpectedVersion が
// 非 nil の場合は楽観的排他制御のバージョン検証を行う。
type BulkOperation struct {
	Section         string
	Key             string
	Value           json.RawMessage
	Delete          bool
	ExpectedVersion *int
}

// BulkUpdateRequest は 1 トランザクションとして適用する操作列。
// 全操作がコミットされるか、全く適用されないかのいずれかになる。
type BulkUpdateRequest struct {
	Operations []BulkOperation
	Source     string
	UpdatedBy  string
}

// CommittedChange はコミット済み一括更新に含まれる識別子単位の変更。
// OldValue が nil なら新規作成、NewValue が nil なら削除を表す。
type CommittedChange struct {
	Section    string
	Key        string
	OldValue   json.RawMessage
	NewValue   json.RawMessage
	OldVersion int
	NewVersion int
	UpdatedAt  time.Time
}

// Deleted はこの変更が削除かどうかを返す。
func (c CommittedChange) Deleted() bool {
	return c.NewValue == nil
}

// ChangeType は変更種別を返す。
func (c CommittedChange) ChangeType() string {
	switch {
	case c.NewValue == nil:
		return ChangeTypeDeleted
	case c.OldValue == nil:
		return ChangeTypeCreated
	default:
		return ChangeTypeUpdated
	}
}
