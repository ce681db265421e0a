package middleware

import (
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// RequestID はリクエスト ID を付与するミドルウェア。
// X-Request-ID ヘッダーがあればそれを使い、無ければ生成する。
func RequestID() gin.HandlerFunc {
	return func(c *gin.Context) {
		reqID := c.GetHeader("X-Request-ID")
		if reqID == "" {
			reqID = "req_" + uuid.New().String()
		}

		c.Set("request_id", reqID)
		c.Writer.Header().Set("X-Request-ID", reqID)

		c.Next()
	}
}
