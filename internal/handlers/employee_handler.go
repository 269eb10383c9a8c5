package handlers

import (
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/qr_attendance/internal/auth"
	"github.com/qr_attendance/internal/models"
	"github.com/qr_attendance/internal/services"
	"github.com/qr_attendance/pkg/utils"
)

// EmployeeHandler 封装了员工相关的 HTTP 处理逻辑
type EmployeeHandler struct {
	service services.EmployeeService
	reports services.ReportService
}

// NewEmployeeHandler 创建一个新的 EmployeeHandler 实例
func NewEmployeeHandler(service services.EmployeeService, reports services.ReportService) *EmployeeHandler {
	return &EmployeeHandler{service: service, reports: reports}
}

// MonthlyHoursData 是员工全年各月工时
type MonthlyHoursData struct {
	EmployeeID string                  `json:"employeeId"`
	Year       int                     `json:"year"`
	Months     []services.MonthlyTotal `json:"months"`
}

// GetEmployees godoc
// @Summary 获取员工列表
// @Description 返回当前企业的注册员工，支持按姓名或邮箱搜索
// @Tags Employees
// @Produce json
// @Param search query string false "搜索关键词 (匹配姓名、邮箱)"
// @Success 200 {object} utils.SuccessResponse{data=ListData[models.RegisteredEmployee]} "员工列表"
// @Failure 401 {object} utils.APIErrorResponse "未认证或 Token 无效/过期"
// @Failure 500 {object} utils.APIErrorResponse "服务器内部错误"
// @Router /employees [get]
// @Security BearerAuth
func (h *EmployeeHandler) GetEmployees(c *gin.Context) {
	employees, err := h.service.GetEmployees(c.Request.Context(), auth.CompanyID(c), c.Query("search"))
	if err != nil {
		utils.RespondInternalServerError(c, "获取员工列表失败", err.Error())
		return
	}
	utils.RespondSuccess(c, http.StatusOK, newListData[models.RegisteredEmployee](employees), "员工列表获取成功")
}

// GetEmployeeByID godoc
// @Summary 获取员工详情
// @Tags Employees
// @Produce json
// @Param employeeId path string true "员工ID"
// @Success 200 {object} utils.SuccessResponse{data=models.RegisteredEmployee} "员工详情"
// @Failure 401 {object} utils.APIErrorResponse "未认证或 Token 无效/过期"
// @Failure 404 {object} utils.APIErrorResponse "员工未找到"
// @Failure 500 {object} utils.APIErrorResponse "服务器内部错误"
// @Router /employees/{employeeId} [get]
// @Security BearerAuth
func (h *EmployeeHandler) GetEmployeeByID(c *gin.Context) {
	employee, err := h.service.GetEmployee(c.Request.Context(), auth.CompanyID(c), c.Param("employeeId"))
	if err != nil {
		respondEmployeeError(c, err, "获取员工详情失败")
		return
	}
	utils.RespondSuccess(c, http.StatusOK, employee, "员工详情获取成功")
}

// DeleteEmployee godoc
// @Summary 删除员工
// @Description 删除员工及其全部打卡记录和相关欺诈告警
// @Tags Employees
// @Produce json
// @Param employeeId path string true "员工ID"
// @Success 200 {object} utils.SuccessResponse "删除成功"
// @Failure 401 {object} utils.APIErrorResponse "未认证或 Token 无效/过期"
// @Failure 404 {object} utils.APIErrorResponse "员工未找到"
// @Failure 500 {object} utils.APIErrorResponse "服务器内部错误"
// @Router /employees/{employeeId} [delete]
// @Security BearerAuth
func (h *EmployeeHandler) DeleteEmployee(c *gin.Context) {
	if err := h.service.DeleteEmployee(c.Request.Context(), auth.CompanyID(c), c.Param("employeeId")); err != nil {
		respondEmployeeError(c, err, "删除员工失败")
		return
	}
	utils.RespondSuccess(c, http.StatusOK, nil, "员工已删除")
}

// GetMonthlyHours godoc
// @Summary 获取员工全年各月工时
// @Tags Employees
// @Produce json
// @Param employeeId path string true "员工ID"
// @Param year query int false "年份，默认当前年份"
// @Success 200 {object} utils.SuccessResponse{data=MonthlyHoursData} "各月工时"
// @Failure 400 {object} utils.APIErrorResponse "年份无效"
// @Failure 401 {object} utils.APIErrorResponse "未认证或 Token 无效/过期"
// @Failure 404 {object} utils.APIErrorResponse "员工未找到"
// @Router /employees/{employeeId}/monthly-hours [get]
// @Security BearerAuth
func (h *EmployeeHandler) GetMonthlyHours(c *gin.Context) {
	year, err := utils.ParseYear(c.Query("year"), time.Now())
	if err != nil {
		utils.RespondValidationError(c, err.Error())
		return
	}
	employeeID := c.Param("employeeId")
	totals, err := h.reports.EmployeeMonthlyTotals(c.Request.Context(), auth.CompanyID(c), employeeID, year)
	if err != nil {
		respondEmployeeError(c, err, "获取工时失败")
		return
	}
	utils.RespondSuccess(c, http.StatusOK, MonthlyHoursData{EmployeeID: employeeID, Year: year, Months: totals}, "")
}

func respondEmployeeError(c *gin.Context, err error, message string) {
	if errors.Is(err, services.ErrEmployeeNotFound) {
		utils.RespondNotFoundError(c, "员工")
		return
	}
	utils.RespondInternalServerError(c, message, err.Error())
}

// ExportMonthlyHours godoc
// @Summary 导出员工全年各月工时
// @Tags Employees
// @Produce application/vnd.openxmlformats-officedocument.spreadsheetml.sheet
// @Param employeeId path string true "员工ID"
// @Param year query int false "年份，默认当前年份"
// @Success 200 {file} binary "xlsx 文件"
// @Failure 400 {object} utils.APIErrorResponse "年份无效"
// @Failure 404 {object} utils.APIErrorResponse "员工未找到"
// @Router /employees/{employeeId}/monthly-hours/export [get]
// @Security BearerAuth
func (h *EmployeeHandler) ExportMonthlyHours(c *gin.Context) {
	year, err := utils.ParseYear(c.Query("year"), time.Now())
	if err != nil {
		utils.RespondValidationError(c, err.Error())
		return
	}
	employeeID := c.Param("employeeId")
	data, err := h.reports.ExportEmployeeMonthlyTotals(c.Request.Context(), auth.CompanyID(c), employeeID, year)
	if err != nil {
		respondEmployeeError(c, err, "导出工时失败")
		return
	}
	sendWorkbook(c, fmt.Sprintf("work-hours-%s-%d.xlsx", employeeID, year), data)
}
