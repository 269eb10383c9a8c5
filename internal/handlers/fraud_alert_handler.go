package handlers

import (
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/qr_attendance/internal/auth"
	"github.com/qr_attendance/internal/models"
	"github.com/qr_attendance/internal/services"
	"github.com/qr_attendance/pkg/utils"
)

// FraudAlertHandler 处理欺诈告警的查看与处理
type FraudAlertHandler struct {
	service      services.FraudAlertService
	pollInterval time.Duration
}

// NewFraudAlertHandler 创建 FraudAlertHandler。pollInterval 为计数推送间隔。
func NewFraudAlertHandler(service services.FraudAlertService, pollInterval time.Duration) *FraudAlertHandler {
	return &FraudAlertHandler{service: service, pollInterval: pollInterval}
}

// AlertCountData 是未处理告警数
type AlertCountData struct {
	Count int64 `json:"count"`
}

// ListAlerts godoc
// @Summary 获取欺诈告警列表
// @Description 按时间倒序返回当前企业的告警，员工归属按当前员工数据补全
// @Tags FraudAlerts
// @Produce json
// @Param status query string false "状态筛选 ('new'或'resolved')"
// @Success 200 {object} utils.SuccessResponse{data=ListData[models.FraudAlert]} "告警列表"
// @Failure 400 {object} utils.APIErrorResponse "状态参数无效"
// @Failure 401 {object} utils.APIErrorResponse "未认证或 Token 无效/过期"
// @Failure 500 {object} utils.APIErrorResponse "服务器内部错误"
// @Router /fraud-alerts [get]
// @Security BearerAuth
func (h *FraudAlertHandler) ListAlerts(c *gin.Context) {
	status := models.FraudAlertStatus(c.Query("status"))
	alerts, err := h.service.List(c.Request.Context(), auth.CompanyID(c), status)
	if err != nil {
		if errors.Is(err, services.ErrInvalidAlertStatus) {
			utils.RespondValidationError(c, err.Error())
		} else {
			utils.RespondInternalServerError(c, "获取告警列表失败", err.Error())
		}
		return
	}
	utils.RespondSuccess(c, http.StatusOK, newListData[models.FraudAlert](alerts), "")
}

// ResolveAlert godoc
// @Summary 处理欺诈告警
// @Description 将告警标记为已处理，不可撤销
// @Tags FraudAlerts
// @Produce json
// @Param alertId path string true "告警ID"
// @Success 200 {object} utils.SuccessResponse{data=models.FraudAlert} "处理后的告警"
// @Failure 401 {object} utils.APIErrorResponse "未认证或 Token 无效/过期"
// @Failure 404 {object} utils.APIErrorResponse "告警未找到"
// @Failure 409 {object} utils.APIErrorResponse "告警已处理"
// @Failure 500 {object} utils.APIErrorResponse "服务器内部错误"
// @Router /fraud-alerts/{alertId}/resolve [post]
// @Security BearerAuth
func (h *FraudAlertHandler) ResolveAlert(c *gin.Context) {
	alert, err := h.service.Resolve(c.Request.Context(), auth.CompanyID(c), c.Param("alertId"))
	if err != nil {
		switch {
		case errors.Is(err, services.ErrFraudAlertNotFound):
			utils.RespondNotFoundError(c, "告警")
		case errors.Is(err, services.ErrAlertAlreadyResolved):
			utils.RespondConflictError(c, err.Error())
		default:
			utils.RespondInternalServerError(c, "处理告警失败", err.Error())
		}
		return
	}
	utils.RespondSuccess(c, http.StatusOK, alert, "告警已处理")
}

// CountNew godoc
// @Summary 未处理告警数
// @Tags FraudAlerts
// @Produce json
// @Success 200 {object} utils.SuccessResponse{data=AlertCountData} "未处理告警数"
// @Failure 401 {object} utils.APIErrorResponse "未认证或 Token 无效/过期"
// @Failure 500 {object} utils.APIErrorResponse "服务器内部错误"
// @Router /fraud-alerts/count [get]
// @Security BearerAuth
func (h *FraudAlertHandler) CountNew(c *gin.Context) {
	count, err := h.service.CountNew(c.Request.Context(), auth.CompanyID(c))
	if err != nil {
		utils.RespondInternalServerError(c, "统计告警失败", err.Error())
		return
	}
	utils.RespondSuccess(c, http.StatusOK, AlertCountData{Count: count}, "")
}

// StreamCount godoc
// @Summary 推送未处理告警数
// @Description 以 Server-Sent Events 定期推送 count 事件，客户端断开后停止
// @Tags FraudAlerts
// @Produce text/event-stream
// @Success 200 {string} string "count 事件流"
// @Failure 401 {object} utils.APIErrorResponse "未认证或 Token 无效/过期"
// @Router /fraud-alerts/count/stream [get]
// @Security BearerAuth
func (h *FraudAlertHandler) StreamCount(c *gin.Context) {
	c.Header("Content-Type", "text/event-stream")
	c.Header("Cache-Control", "no-cache")
	c.Header("Connection", "keep-alive")
	c.Status(http.StatusOK)

	ctx := c.Request.Context()
	_ = h.service.PollNewCount(ctx, auth.CompanyID(c), h.pollInterval, func(count int64) {
		c.SSEvent("count", AlertCountData{Count: count})
		c.Writer.Flush()
	})
}
