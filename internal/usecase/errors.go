package usecase

import (
	"errors"
	"fmt"
)

// ErrNotReady はエンジンが READY 状態に達していないことを表す。
// ブートストラップ中、またはブートストラップが致命的に失敗した場合に返る。
var ErrNotReady = errors.New("sync engine is not ready")

// ErrValidation はストアに触れる前に拒否されたリクエスト不正を表す。
var ErrValidation = errors.New("validation failed")

func validationErr(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrValidation, fmt.Sprintf(format, args...))
}
