package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/k1s0-platform/system-server-go-configsync/internal/adapter/presenter"
	"github.com/k1s0-platform/system-server-go-configsync/internal/domain/model"
	"github.com/k1s0-platform/system-server-go-configsync/internal/usecase"
)

// ConfigService は同期エンジンが REST アダプターへ公開する操作。
type ConfigService interface {
	GetConfig(ctx context.Context, section, key string) (*usecase.GetConfigOutput, error)
	GetSection(ctx context.Context, section string) (any, error)
	SetConfig(ctx context.Context, input usecase.SetConfigInput) (*usecase.SetConfigOutput, error)
	SetSection(ctx context.Context, section string, value any, updatedBy string) ([]*model.ChangeRecord, error)
	DeleteConfig(ctx context.Context, section, key, updatedBy string) error
	DeleteSection(ctx context.Context, section, updatedBy string) error
	BulkUpdate(ctx context.Context, input usecase.BulkUpdateInput) (*usecase.BulkUpdateOutput, error)
	ExportAll(ctx context.Context, format string) ([]byte, error)
	QueryHistory(ctx context.Context, input usecase.QueryHistoryInput) (*usecase.QueryHistoryOutput, error)
}

// ConfigHandler は設定同期の REST ハンドラー。
type ConfigHandler struct {
	engine ConfigService
}

// NewConfigHandler は新しい ConfigHandler を作成する。
func NewConfigHandler(engine ConfigService) *ConfigHandler {
	return &ConfigHandler{engine: engine}
}

// updatedBy は操作者を取得する。
// TODO: 認証情報から取得する（現在はヘッダーから取得）
func updatedBy(c *gin.Context) string {
	u := c.GetHeader("X-User-Email")
	if u == "" {
		u = "unknown"
	}
	return u
}

// GetConfig は GET /api/v1/config/:section/:key のハンドラー。
func (h *ConfigHandler) GetConfig(c *gin.Context) {
	output, err := h.engine.GetConfig(c.Request.Context(), c.Param("section"), c.Param("key"))
	if err != nil {
		WriteEngineError(c, err)
		return
	}

	c.JSON(http.StatusOK, presenter.ConfigEntryFromGet(output))
}

// GetSection は GET /api/v1/config/:section のハンドラー。
func (h *ConfigHandler) GetSection(c *gin.Context) {
	section := c.Param("section")
	value, err := h.engine.GetSection(c.Request.Context(), section)
	if err != nil {
		WriteEngineError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"section": section,
		"values":  value,
	})
}

// SetConfig は PUT /api/v1/config/:section/:key のハンドラー。
func (h *ConfigHandler) SetConfig(c *gin.Context) {
	var req struct {
		Value           json.RawMessage `json:"value" binding:"required"`
		ExpectedVersion *int            `json:"expected_version"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		WriteError(c, http.StatusBadRequest, "SYS_CONFIG_VALIDATION_FAILED",
			"リクエストのバリデーションに失敗しました")
		return
	}

	input := usecase.SetConfigInput{
		Section:         c.Param("section"),
		Key:             c.Param("key"),
		Value:           req.Value,
		ExpectedVersion: req.ExpectedVersion,
		UpdatedBy:       updatedBy(c),
	}

	output, err := h.engine.SetConfig(c.Request.Context(), input)
	if err != nil {
		WriteEngineError(c, err)
		return
	}

	c.JSON(http.StatusOK, presenter.ConfigEntryFromSet(output))
}

// SetSection は PUT /api/v1/config/:section のハンドラー。セクション全体を置き換える。
func (h *ConfigHandler) SetSection(c *gin.Context) {
	var value any
	if err := c.ShouldBindJSON(&value); err != nil {
		WriteError(c, http.StatusBadRequest, "SYS_CONFIG_VALIDATION_FAILED",
			"リクエストのバリデーションに失敗しました")
		return
	}

	section := c.Param("section")
	records, err := h.engine.SetSection(c.Request.Context(), section, value, updatedBy(c))
	if err != nil {
		WriteEngineError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"section": section,
		"changes": len(records),
	})
}

// DeleteConfig は DELETE /api/v1/config/:section/:key のハンドラー。
func (h *ConfigHandler) DeleteConfig(c *gin.Context) {
	err := h.engine.DeleteConfig(c.Request.Context(), c.Param("section"), c.Param("key"), updatedBy(c))
	if err != nil {
		WriteEngineError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// DeleteSection は DELETE /api/v1/config/:section のハンドラー。
func (h *ConfigHandler) DeleteSection(c *gin.Context) {
	err := h.engine.DeleteSection(c.Request.Context(), c.Param("section"), updatedBy(c))
	if err != nil {
		WriteEngineError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// BulkUpdate は POST /api/v1/config/bulk のハンドラー。
func (h *ConfigHandler) BulkUpdate(c *gin.Context) {
	var req struct {
		Items []usecase.BulkItem `json:"items" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		WriteError(c, http.StatusBadRequest, "SYS_CONFIG_VALIDATION_FAILED",
			"リクエストのバリデーションに失敗しました")
		return
	}

	output, err := h.engine.BulkUpdate(c.Request.Context(), usecase.BulkUpdateInput{
		Items:     req.Items,
		UpdatedBy: updatedBy(c),
	})
	if err != nil {
		WriteEngineError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"records": presenter.ChangeRecords(output.Records),
	})
}

// ExportConfig は GET /api/v1/config/export のハンドラー。
func (h *ConfigHandler) ExportConfig(c *gin.Context) {
	format := c.DefaultQuery("format", "json")
	data, err := h.engine.ExportAll(c.Request.Context(), format)
	if err != nil {
		WriteEngineError(c, err)
		return
	}

	contentType := "application/json"
	switch format {
	case "yaml", "yml":
		contentType = "application/yaml"
	case "toml":
		contentType = "application/toml"
	}
	c.Data(http.StatusOK, contentType, data)
}

// GetHistory は GET /api/v1/config/history のハンドラー。
func (h *ConfigHandler) GetHistory(c *gin.Context) {
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "10"))
	offset, _ := strconv.Atoi(c.DefaultQuery("offset", "0"))

	output, err := h.engine.QueryHistory(c.Request.Context(), usecase.QueryHistoryInput{
		Section: c.Query("section"),
		Key:     c.Query("key"),
		Limit:   limit,
		Offset:  offset,
	})
	if err != nil {
		WriteEngineError(c, err)
		return
	}

	c.JSON(http.StatusOK, presenter.HistoryPage(output))
}

// RegisterRoutes はルートを登録する。
func (h *ConfigHandler) RegisterRoutes(r *gin.Engine) {
	v1 := r.Group("/api/v1")

	config := v1.Group("/config")
	{
		// 固定パス（:section より先にマッチさせる）
		config.GET("/export", h.ExportConfig)
		config.GET("/history", h.GetHistory)
		config.POST("/bulk", h.BulkUpdate)

		// 設定値の CRUD
		config.GET("/:section/:key", h.GetConfig)
		config.GET("/:section", h.GetSection)
		config.PUT("/:section/:key", h.SetConfig)
		config.PUT("/:section", h.SetSection)
		config.DELETE("/:section/:key", h.DeleteConfig)
		config.DELETE("/:section", h.DeleteSection)
	}
}
