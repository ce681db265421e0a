package repository

import (
	"errors"
	"fmt"
	"strings"
)

// ErrNotFound は対象エントリが存在しないことを表す。
var ErrNotFound = errors.New("config entry not found")

// ConflictError は一括更新内の楽観的バージョン検証の失敗を表す。
// 不一致だったキーを保持し、操作全体が適用されなかったことを保証する。
type ConflictError struct {
	Keys []string
}

func (e *ConflictError) Error() string {
	return fmt.Sprintf("version conflict: %s", strings.Join(e.Keys, ", "))
}

// IsConflict は err がバージョン競合かどうかを判定する。
func IsConflict(err error) bool {
	var ce *ConflictError
	return errors.As(err, &ce)
}

// TransientStoreError はストアの一時障害（接続断・タイムアウト・
// 直列化失敗など）を表す。リトライポリシーの再試行対象になる。
type TransientStoreError struct {
	Op  string
	Err error
}

func (e *TransientStoreError) Error() string {
	return fmt.Sprintf("transient store error in %s: %v", e.Op, e.Err)
}

func (e *TransientStoreError) Unwrap() error {
	return e.Err
}

// IsTransient は err がストアの一時障害かどうかを判定する。
func IsTransient(err error) bool {
	var te *TransientStoreError
	return errors.As(err, &te)
}
