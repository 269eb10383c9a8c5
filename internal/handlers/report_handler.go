package handlers

import (
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/qr_attendance/internal/auth"
	"github.com/qr_attendance/internal/services"
	"github.com/qr_attendance/pkg/utils"
)

const xlsxContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

// ReportHandler 处理工时报表
type ReportHandler struct {
	reports services.ReportService
}

// NewReportHandler 创建 ReportHandler
func NewReportHandler(reports services.ReportService) *ReportHandler {
	return &ReportHandler{reports: reports}
}

// WorkHours godoc
// @Summary 月度工时统计
// @Description 返回企业每名员工在指定月份的总工时、出勤天数和日均工时
// @Tags Reports
// @Produce json
// @Param month query string false "月份 YYYY-MM，默认当前月份"
// @Success 200 {object} utils.SuccessResponse{data=services.MonthlyReport} "月度统计"
// @Failure 400 {object} utils.APIErrorResponse "月份格式无效"
// @Failure 401 {object} utils.APIErrorResponse "未认证或 Token 无效/过期"
// @Failure 500 {object} utils.APIErrorResponse "服务器内部错误"
// @Router /reports/work-hours [get]
// @Security BearerAuth
func (h *ReportHandler) WorkHours(c *gin.Context) {
	year, month, err := utils.ParseMonth(c.Query("month"), time.Now())
	if err != nil {
		utils.RespondValidationError(c, err.Error())
		return
	}
	report, err := h.reports.MonthlyMetrics(c.Request.Context(), auth.CompanyID(c), year, month)
	if err != nil {
		utils.RespondInternalServerError(c, "获取工时统计失败", err.Error())
		return
	}
	utils.RespondSuccess(c, http.StatusOK, report, "")
}

// ExportWorkHours godoc
// @Summary 导出月度工时统计
// @Tags Reports
// @Produce application/vnd.openxmlformats-officedocument.spreadsheetml.sheet
// @Param month query string false "月份 YYYY-MM，默认当前月份"
// @Success 200 {file} binary "xlsx 文件"
// @Failure 400 {object} utils.APIErrorResponse "月份格式无效"
// @Failure 401 {object} utils.APIErrorResponse "未认证或 Token 无效/过期"
// @Failure 500 {object} utils.APIErrorResponse "服务器内部错误"
// @Router /reports/work-hours/export [get]
// @Security BearerAuth
func (h *ReportHandler) ExportWorkHours(c *gin.Context) {
	year, month, err := utils.ParseMonth(c.Query("month"), time.Now())
	if err != nil {
		utils.RespondValidationError(c, err.Error())
		return
	}
	data, err := h.reports.ExportMonthlyMetrics(c.Request.Context(), auth.CompanyID(c), year, month)
	if err != nil {
		utils.RespondInternalServerError(c, "导出工时统计失败", err.Error())
		return
	}
	sendWorkbook(c, fmt.Sprintf("work-hours-%04d-%02d.xlsx", year, int(month)), data)
}

func sendWorkbook(c *gin.Context, filename string, data []byte) {
	c.Header("Content-Disposition", fmt.Sprintf(`attachment; filename="%s"`, filename))
	c.Data(http.StatusOK, xlsxContentType, data)
}
