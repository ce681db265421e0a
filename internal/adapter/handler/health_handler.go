package handler

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"
)

// HealthChecker は依存コンポーネントの健全性確認インターフェース。
type HealthChecker interface {
	Healthy(ctx context.Context) error
}

// HealthzHandler は liveness チェックのハンドラーを返す。
func HealthzHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	}
}

// ReadyzHandler は readiness チェックのハンドラーを返す。
// データベース・キャッシュ・Kafka・エンジンの状態を個別に報告する。
func ReadyzHandler(db, cache, kafka, engine HealthChecker) gin.HandlerFunc {
	checkers := []struct {
		name    string
		checker HealthChecker
	}{
		{"database", db},
		{"cache", cache},
		{"kafka", kafka},
		{"engine", engine},
	}

	return func(c *gin.Context) {
		checks := gin.H{}
		ready := true

		for _, ch := range checkers {
			if ch.checker == nil {
				continue
			}
			if err := ch.checker.Healthy(c.Request.Context()); err != nil {
				checks[ch.name] = "error: " + err.Error()
				ready = false
			} else {
				checks[ch.name] = "ok"
			}
		}

		status := http.StatusOK
		statusText := "ready"
		if !ready {
			status = http.StatusServiceUnavailable
			statusText = "not ready"
		}
		c.JSON(status, gin.H{"status": statusText, "checks": checks})
	}
}
