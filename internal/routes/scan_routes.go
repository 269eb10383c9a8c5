package routes

import (
	"github.com/gin-gonic/gin"

	"github.com/qr_attendance/internal/handlers"
)

// SetupScanRoutes 设置员工端扫码路由，这些路由不需要管理员认证，身份由扫码会话确定
func SetupScanRoutes(apiV1 *gin.RouterGroup, h *handlers.ScanHandler) {
	scanGroup := apiV1.Group("/scan")
	{
		scanGroup.POST("/validate", h.Validate)
		scanGroup.POST("/register", h.Register)
		scanGroup.GET("/next-action", h.NextAction)
		scanGroup.POST("/time-tracking", h.RecordTime)
		scanGroup.POST("/logout", h.Logout)
	}
}
