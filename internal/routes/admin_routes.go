package routes

import (
	"github.com/gin-gonic/gin"

	"github.com/qr_attendance/internal/handlers"
)

// AdminHandlers 汇总管理端处理器
type AdminHandlers struct {
	QRCodes     *handlers.QRCodeHandler
	Employees   *handlers.EmployeeHandler
	FraudAlerts *handlers.FraudAlertHandler
	Reports     *handlers.ReportHandler
}

// SetupAdminRoutes 设置管理端路由，全部需要 JWT
func SetupAdminRoutes(apiV1 *gin.RouterGroup, h AdminHandlers, jwt gin.HandlerFunc) {
	admin := apiV1.Group("")
	admin.Use(jwt)

	qrGroup := admin.Group("/qrcodes")
	{
		qrGroup.POST("", h.QRCodes.Generate)
		qrGroup.GET("/active", h.QRCodes.Current)
		qrGroup.GET("/active/image", h.QRCodes.CurrentImage)
	}

	employeeGroup := admin.Group("/employees")
	{
		employeeGroup.GET("", h.Employees.GetEmployees)
		employeeGroup.GET("/:employeeId", h.Employees.GetEmployeeByID)
		employeeGroup.DELETE("/:employeeId", h.Employees.DeleteEmployee)
		employeeGroup.GET("/:employeeId/monthly-hours", h.Employees.GetMonthlyHours)
		employeeGroup.GET("/:employeeId/monthly-hours/export", h.Employees.ExportMonthlyHours)
	}

	alertGroup := admin.Group("/fraud-alerts")
	{
		alertGroup.GET("", h.FraudAlerts.ListAlerts)
		alertGroup.GET("/count", h.FraudAlerts.CountNew)
		alertGroup.GET("/count/stream", h.FraudAlerts.StreamCount)
		alertGroup.POST("/:alertId/resolve", h.FraudAlerts.ResolveAlert)
	}

	reportGroup := admin.Group("/reports")
	{
		reportGroup.GET("/work-hours", h.Reports.WorkHours)
		reportGroup.GET("/work-hours/export", h.Reports.ExportWorkHours)
	}
}
