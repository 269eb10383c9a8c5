package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/qr_attendance/internal/auth"
	"github.com/qr_attendance/internal/services"
	"github.com/qr_attendance/pkg/qrtoken"
	"github.com/qr_attendance/pkg/utils"
)

// QRCodeHandler 处理管理端二维码签发
type QRCodeHandler struct {
	service   services.QRCodeService
	imageSize int
}

// NewQRCodeHandler 创建 QRCodeHandler
func NewQRCodeHandler(service services.QRCodeService, imageSize int) *QRCodeHandler {
	return &QRCodeHandler{service: service, imageSize: imageSize}
}

// Generate godoc
// @Summary 签发新二维码
// @Description 为当前企业签发新二维码，旧码立即失效。返回扫码 URL 和 PNG data URL。
// @Tags QRCodes
// @Produce json
// @Success 201 {object} utils.SuccessResponse{data=services.GeneratedQRCode} "签发成功"
// @Failure 401 {object} utils.APIErrorResponse "未认证或 Token 无效/过期"
// @Failure 500 {object} utils.APIErrorResponse "服务器内部错误"
// @Router /qrcodes [post]
// @Security BearerAuth
func (h *QRCodeHandler) Generate(c *gin.Context) {
	generated, err := h.service.Generate(c.Request.Context(), auth.CompanyID(c))
	if err != nil {
		utils.RespondInternalServerError(c, "签发二维码失败", err.Error())
		return
	}
	utils.RespondSuccess(c, http.StatusCreated, generated, "二维码签发成功")
}

// Current godoc
// @Summary 获取当前有效二维码
// @Description 返回企业当前有效二维码，每次请求生成新的时间戳与 nonce
// @Tags QRCodes
// @Produce json
// @Success 200 {object} utils.SuccessResponse{data=services.GeneratedQRCode} "当前二维码"
// @Failure 401 {object} utils.APIErrorResponse "未认证或 Token 无效/过期"
// @Failure 404 {object} utils.APIErrorResponse "二维码未找到"
// @Failure 500 {object} utils.APIErrorResponse "服务器内部错误"
// @Router /qrcodes/active [get]
// @Security BearerAuth
func (h *QRCodeHandler) Current(c *gin.Context) {
	current, err := h.service.Current(c.Request.Context(), auth.CompanyID(c))
	if err != nil {
		if errors.Is(err, services.ErrQRCodeNotFound) {
			utils.RespondNotFoundError(c, "二维码")
		} else {
			utils.RespondInternalServerError(c, "获取二维码失败", err.Error())
		}
		return
	}
	utils.RespondSuccess(c, http.StatusOK, current, "")
}

// CurrentImage godoc
// @Summary 下载当前二维码图片
// @Description 以 PNG 返回当前有效二维码
// @Tags QRCodes
// @Produce png
// @Success 200 {file} binary "PNG 图片"
// @Failure 401 {object} utils.APIErrorResponse "未认证或 Token 无效/过期"
// @Failure 404 {object} utils.APIErrorResponse "二维码未找到"
// @Router /qrcodes/active/image [get]
// @Security BearerAuth
func (h *QRCodeHandler) CurrentImage(c *gin.Context) {
	current, err := h.service.Current(c.Request.Context(), auth.CompanyID(c))
	if err != nil {
		if errors.Is(err, services.ErrQRCodeNotFound) {
			utils.RespondNotFoundError(c, "二维码")
		} else {
			utils.RespondInternalServerError(c, "获取二维码失败", err.Error())
		}
		return
	}
	png, err := qrtoken.RenderPNG(current.ScanURL, h.imageSize)
	if err != nil {
		utils.RespondInternalServerError(c, "生成二维码图片失败", err.Error())
		return
	}
	c.Header("Content-Disposition", `inline; filename="qrcode-`+current.QRID+`.png"`)
	c.Data(http.StatusOK, "image/png", png)
}
