package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/k1s0-platform/system-server-go-configsync/internal/domain/repository"
	"github.com/k1s0-platform/system-server-go-configsync/internal/infra/retry"
	"github.com/k1s0-platform/system-server-go-configsync/internal/usecase"
)

// ErrorResponse は統一エラーレスポンス（API設計.md D-007 準拠）。
type ErrorResponse struct {
	Error ErrorDetail `json:"error"`
}

// ErrorDetail はエラーの詳細情報。
type ErrorDetail struct {
	Code      string   `json:"code"`
	Message   string   `json:"message"`
	RequestID string   `json:"request_id"`
	Details   []string `json:"details"`
}

// WriteError は統一フォーマットのエラーレスポンスを書き込む。
func WriteError(c *gin.Context, statusCode int, code string, message string, details ...string) {
	requestID, _ := c.Get("request_id")
	reqID, _ := requestID.(string)

	if details == nil {
		details = []string{}
	}
	c.JSON(statusCode, ErrorResponse{
		Error: ErrorDetail{
			Code:      code,
			Message:   message,
			RequestID: reqID,
			Details:   details,
		},
	})
}

// WriteEngineError はエンジンの型付きエラーを HTTP レスポンスへ写像する。
func WriteEngineError(c *gin.Context, err error) {
	var conflict *repository.ConflictError
	var exhausted *retry.ExhaustedError

	switch {
	case errors.Is(err, usecase.ErrValidation):
		WriteError(c, http.StatusBadRequest, "SYS_CONFIG_VALIDATION_FAILED",
			"リクエストのバリデーションに失敗しました", err.Error())
	case errors.As(err, &conflict):
		WriteError(c, http.StatusConflict, "SYS_CONFIG_VERSION_CONFLICT",
			"設定値が他のユーザーによって更新されています。最新のバージョンを取得してください", conflict.Keys...)
	case errors.Is(err, repository.ErrNotFound):
		WriteError(c, http.StatusNotFound, "SYS_CONFIG_KEY_NOT_FOUND",
			"指定された設定キーが見つかりません")
	case errors.Is(err, usecase.ErrNotReady):
		WriteError(c, http.StatusServiceUnavailable, "SYS_CONFIG_NOT_READY",
			"設定エンジンが初期化中です。しばらくしてから再試行してください")
	case errors.As(err, &exhausted):
		WriteError(c, http.StatusServiceUnavailable, "SYS_CONFIG_STORE_UNAVAILABLE",
			"ストアへの接続が不安定です。しばらくしてから再試行してください")
	default:
		WriteError(c, http.StatusInternalServerError, "SYS_CONFIG_INTERNAL_ERROR",
			"内部エラーが発生しました")
	}
}
