package routes

import (
	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"

	_ "github.com/qr_attendance/docs" // swagger 文档
	"github.com/qr_attendance/internal/handlers"
)

// Dependencies 是注册路由所需的全部处理器与中间件
type Dependencies struct {
	JWT    gin.HandlerFunc
	Auth   *handlers.AuthHandler
	Scan   *handlers.ScanHandler
	Health *handlers.HealthHandler
	Admin  AdminHandlers
}

// SetupRoutes 初始化所有路由
func SetupRoutes(router *gin.Engine, deps Dependencies) {
	router.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	apiV1 := router.Group("/api/v1")
	apiV1.GET("/health", deps.Health.Health)
	SetupAuthRoutes(apiV1, deps.Auth, deps.JWT)
	SetupScanRoutes(apiV1, deps.Scan)
	SetupAdminRoutes(apiV1, deps.Admin, deps.JWT)
}
