package handlers

import (
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/qr_attendance/internal/models"
	"github.com/qr_attendance/internal/services"
	"github.com/qr_attendance/pkg/qrtoken"
	"github.com/qr_attendance/pkg/utils"
)

// SessionCookieName 是扫码会话 cookie 的名称
const SessionCookieName = "scan_session"

// ScanHandler 处理员工端扫码、注册和打卡请求
type ScanHandler struct {
	scan       services.ScanService
	sessionTTL time.Duration
	secure     bool
}

// NewScanHandler 创建 ScanHandler。secure 为 true 时 cookie 仅通过 HTTPS 发送。
func NewScanHandler(scan services.ScanService, sessionTTL time.Duration, secure bool) *ScanHandler {
	return &ScanHandler{scan: scan, sessionTTL: sessionTTL, secure: secure}
}

// ValidateScanPayload 是扫码校验请求。data 与 scanUrl 二选一。
type ValidateScanPayload struct {
	Data     string        `json:"data"`
	ScanURL  string        `json:"scanUrl"`
	ForceNew bool          `json:"forceNew"`
	Device   DevicePayload `json:"device"`
}

// RegisterPayload 是注册请求
type RegisterPayload struct {
	CompanyID  string        `json:"companyId" binding:"required"`
	Name       string        `json:"name" binding:"required,max=255"`
	Email      string        `json:"email" binding:"required,email,max=255"`
	DeviceName string        `json:"deviceName" binding:"omitempty,max=255"`
	Device     DevicePayload `json:"device"`
}

// TimeTrackingPayload 是打卡请求，action 为空时记录下一个动作
type TimeTrackingPayload struct {
	CompanyID  string `json:"companyId" binding:"required"`
	EmployeeID string `json:"employeeId" binding:"required"`
	Action     string `json:"action" binding:"omitempty,oneof=entry exit"`
}

// NextActionResponse 是下一个打卡动作
type NextActionResponse struct {
	EmployeeID string                    `json:"employeeId"`
	Action     models.TimeTrackingAction `json:"action"`
}

// sessionID 返回请求的会话 ID，没有时签发新的 cookie
func (h *ScanHandler) sessionID(c *gin.Context) string {
	if id, err := c.Cookie(SessionCookieName); err == nil && id != "" {
		return id
	}
	id := uuid.NewString()
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(SessionCookieName, id, int(h.sessionTTL.Seconds()), "/", "", h.secure, true)
	return id
}

// Validate godoc
// @Summary 校验扫码
// @Description 校验二维码数据并返回扫码终态 (TIME_TRACKING / REGISTRATION / INVALID_QR)。停用或不存在的二维码会记录欺诈告警。该接口总是返回 200。
// @Tags Scan
// @Accept json
// @Produce json
// @Param scan body ValidateScanPayload true "扫码数据与设备属性"
// @Success 200 {object} utils.SuccessResponse{data=services.ScanResult} "扫码终态"
// @Failure 400 {object} utils.APIErrorResponse "请求体无法解析"
// @Router /scan/validate [post]
func (h *ScanHandler) Validate(c *gin.Context) {
	var payload ValidateScanPayload
	if err := c.ShouldBindJSON(&payload); err != nil {
		utils.RespondValidationError(c, utils.FormatBindingError(err))
		return
	}

	data, forceNew := payload.Data, payload.ForceNew
	if data == "" && payload.ScanURL != "" {
		// 解析失败时 data 为空，由校验器给出 INVALID_QR
		if parsed, urlForceNew, err := qrtoken.ParseScanURL(payload.ScanURL); err == nil {
			data = parsed
			forceNew = forceNew || urlForceNew
		}
	}

	result := h.scan.Validate(c.Request.Context(), h.sessionID(c), services.ScanRequest{
		Data:     data,
		ForceNew: forceNew,
		Device:   payload.Device.attributes(c),
	})
	utils.RespondSuccess(c, http.StatusOK, result, result.Message)
}

// Register godoc
// @Summary 注册员工设备
// @Description 在扫码进入 REGISTRATION 后注册员工，并把当前设备绑定到会话。邮箱已存在时返回已有员工。
// @Tags Scan
// @Accept json
// @Produce json
// @Param employee body RegisterPayload true "员工信息"
// @Success 201 {object} utils.SuccessResponse{data=models.RegisteredEmployee} "注册成功"
// @Failure 400 {object} utils.APIErrorResponse "请求参数错误"
// @Failure 403 {object} utils.APIErrorResponse "会话未进入该企业的注册流程"
// @Failure 409 {object} utils.APIErrorResponse "邮箱已绑定其他设备"
// @Failure 500 {object} utils.APIErrorResponse "服务器内部错误"
// @Router /scan/register [post]
func (h *ScanHandler) Register(c *gin.Context) {
	var payload RegisterPayload
	if err := c.ShouldBindJSON(&payload); err != nil {
		utils.RespondValidationError(c, utils.FormatBindingError(err))
		return
	}

	employee, err := h.scan.Register(c.Request.Context(), h.sessionID(c), services.RegistrationRequest{
		CompanyID:  payload.CompanyID,
		Name:       payload.Name,
		Email:      payload.Email,
		DeviceName: payload.DeviceName,
		Device:     payload.Device.attributes(c),
	})
	if err != nil {
		switch {
		case errors.Is(err, services.ErrRegistrationNotAllowed):
			utils.RespondForbiddenError(c, err.Error())
		case errors.Is(err, services.ErrEmailBoundToOtherDevice):
			utils.RespondConflictError(c, err.Error())
		case errors.Is(err, utils.ErrInvalidEmailFormat), errors.Is(err, services.ErrEmployeeNameRequired), errors.Is(err, services.ErrCompanyRequired):
			utils.RespondValidationError(c, err.Error())
		default:
			utils.RespondInternalServerError(c, "注册员工失败", err.Error())
		}
		return
	}
	utils.RespondSuccess(c, http.StatusCreated, employee, "注册成功")
}

// NextAction godoc
// @Summary 获取下一个打卡动作
// @Description 根据员工最近一次打卡返回 entry 或 exit，员工须与当前会话身份一致
// @Tags Scan
// @Produce json
// @Param companyId query string true "企业ID"
// @Param employeeId query string true "员工ID"
// @Success 200 {object} utils.SuccessResponse{data=NextActionResponse} "下一个动作"
// @Failure 400 {object} utils.APIErrorResponse "请求参数错误"
// @Failure 403 {object} utils.APIErrorResponse "员工身份与当前会话不一致或需要重新扫码"
// @Failure 404 {object} utils.APIErrorResponse "员工未找到"
// @Router /scan/next-action [get]
func (h *ScanHandler) NextAction(c *gin.Context) {
	companyID := strings.TrimSpace(c.Query("companyId"))
	employeeID := strings.TrimSpace(c.Query("employeeId"))
	if companyID == "" || employeeID == "" {
		utils.RespondValidationError(c, "companyId 和 employeeId 为必填项")
		return
	}

	action, err := h.scan.NextAction(c.Request.Context(), h.sessionID(c), companyID, employeeID)
	if err != nil {
		respondTimeTrackingError(c, err)
		return
	}
	utils.RespondSuccess(c, http.StatusOK, NextActionResponse{EmployeeID: employeeID, Action: action}, "")
}

// RecordTime godoc
// @Summary 记录打卡
// @Description 追加一条进/出记录，action 为空时按最近一次记录取反
// @Tags Scan
// @Accept json
// @Produce json
// @Param record body TimeTrackingPayload true "打卡信息"
// @Success 201 {object} utils.SuccessResponse{data=models.TimeTrackingEvent} "打卡成功"
// @Failure 400 {object} utils.APIErrorResponse "请求参数错误"
// @Failure 403 {object} utils.APIErrorResponse "员工身份与当前会话不一致或需要重新扫码"
// @Failure 404 {object} utils.APIErrorResponse "员工未找到"
// @Router /scan/time-tracking [post]
func (h *ScanHandler) RecordTime(c *gin.Context) {
	var payload TimeTrackingPayload
	if err := c.ShouldBindJSON(&payload); err != nil {
		utils.RespondValidationError(c, utils.FormatBindingError(err))
		return
	}

	event, err := h.scan.RecordTime(c.Request.Context(), h.sessionID(c), payload.CompanyID, payload.EmployeeID, models.TimeTrackingAction(payload.Action))
	if err != nil {
		respondTimeTrackingError(c, err)
		return
	}
	utils.RespondSuccess(c, http.StatusCreated, event, "打卡成功")
}

// Logout godoc
// @Summary 结束扫码会话
// @Description 标记会话已登出，之后的扫码需带 forceNew=true
// @Tags Scan
// @Produce json
// @Success 200 {object} utils.SuccessResponse "已登出"
// @Failure 500 {object} utils.APIErrorResponse "服务器内部错误"
// @Router /scan/logout [post]
func (h *ScanHandler) Logout(c *gin.Context) {
	if err := h.scan.Logout(c.Request.Context(), h.sessionID(c)); err != nil {
		utils.RespondInternalServerError(c, "登出失败", err.Error())
		return
	}
	utils.RespondSuccess(c, http.StatusOK, nil, "已登出")
}

func respondTimeTrackingError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, services.ErrIdentityMismatch), errors.Is(err, services.ErrScanRequired):
		utils.RespondForbiddenError(c, err.Error())
	case errors.Is(err, services.ErrEmployeeNotFound):
		utils.RespondNotFoundError(c, "员工")
	case errors.Is(err, services.ErrInvalidAction):
		utils.RespondValidationError(c, err.Error())
	default:
		utils.RespondInternalServerError(c, "打卡失败", err.Error())
	}
}
