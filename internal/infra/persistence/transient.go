package persistence

import (
	"context"
	"database/sql/driver"
	"errors"
	"io"
	"net"
	"strings"

	"github.com/lib/pq"
)

// IsTransient は DB エラーがリトライで回復しうる一時障害かどうかを判定する。
// 接続断・直列化失敗・デッドロック・ロックタイムアウトを一時障害として扱い、
// 制約違反などの恒久エラーは対象外とする。
func IsTransient(err error) bool {
	if err == nil {
		return false
	}

	if errors.Is(err, driver.ErrBadConn) ||
		errors.Is(err, io.EOF) ||
		errors.Is(err, context.DeadlineExceeded) {
		return true
	}

	var netErr net.Error
	if errors.As(err, &netErr) {
		return true
	}

	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		code := string(pqErr.Code)
		switch {
		case strings.HasPrefix(code, "08"): // connection exception
			return true
		case code == "40001": // serialization_failure
			return true
		case code == "40P01": // deadlock_detected
			return true
		case code == "55P03": // lock_not_available
			return true
		case code == "57014": // query_canceled (statement/lock timeout)
			return true
		}
	}

	return false
}
