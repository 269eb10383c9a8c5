package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/qr_attendance/pkg/utils"
)

// HealthHandler 报告服务与数据库状态
type HealthHandler struct {
	db *gorm.DB
}

// NewHealthHandler 创建 HealthHandler
func NewHealthHandler(db *gorm.DB) *HealthHandler {
	return &HealthHandler{db: db}
}

// Health godoc
// @Summary 健康检查
// @Tags health
// @Produce json
// @Success 200 {object} utils.SuccessResponse "服务正常"
// @Failure 503 {object} utils.APIErrorResponse "数据库不可用"
// @Router /health [get]
func (h *HealthHandler) Health(c *gin.Context) {
	sqlDB, err := h.db.DB()
	if err == nil {
		err = sqlDB.PingContext(c.Request.Context())
	}
	if err != nil {
		utils.RespondAPIError(c, http.StatusServiceUnavailable, "数据库不可用", err.Error())
		return
	}
	utils.RespondSuccess(c, http.StatusOK, gin.H{"database": "ok"}, "服务正常")
}
