package routes

import (
	"github.com/gin-gonic/gin"

	"github.com/qr_attendance/internal/handlers"
)

// SetupAuthRoutes 设置认证相关路由
func SetupAuthRoutes(apiV1 *gin.RouterGroup, h *handlers.AuthHandler, jwt gin.HandlerFunc) {
	// 公共认证路由组 (例如登录)
	publicAuthGroup := apiV1.Group("/auth")
	{
		// POST /api/v1/auth/login
		publicAuthGroup.POST("/login", h.Login)
	}

	// 受保护的认证路由组 (例如登出)
	protectedAuthGroup := apiV1.Group("/auth")
	protectedAuthGroup.Use(jwt)
	{
		// POST /api/v1/auth/logout
		protectedAuthGroup.POST("/logout", h.Logout)
	}
}
