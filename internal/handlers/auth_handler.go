package handlers

import (
	"errors"
	"log"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"golang.org/x/crypto/bcrypt"

	"github.com/qr_attendance/internal/auth"
	"github.com/qr_attendance/internal/repositories"
	"github.com/qr_attendance/pkg/utils"
)

type LoginRequest struct {
	Username string `json:"username" binding:"required"`
	Password string `json:"password" binding:"required"`
}

type LoginResponse struct {
	Token     string    `json:"token"`
	ExpiresAt time.Time `json:"expiresAt"`
	User      UserInfo  `json:"user"`
}

type UserInfo struct {
	Username  string `json:"username"`
	Role      string `json:"role"`
	CompanyID string `json:"companyId"`
}

// AuthHandler 处理管理员登录与登出
type AuthHandler struct {
	users    repositories.UserRepository
	secret   string
	ttl      time.Duration
	denylist auth.Denylist
}

// NewAuthHandler 创建 AuthHandler
func NewAuthHandler(users repositories.UserRepository, secret string, ttl time.Duration, denylist auth.Denylist) *AuthHandler {
	return &AuthHandler{users: users, secret: secret, ttl: ttl, denylist: denylist}
}

// Login godoc
// @Summary 管理员登录
// @Description 验证管理员凭证并返回 JWT，Token 中包含管理员所属企业
// @Tags auth
// @Accept  json
// @Produce  json
// @Param credentials body LoginRequest true "登录凭证"
// @Success 200 {object} utils.SuccessResponse{data=LoginResponse} "登录成功，返回 Token 和用户信息"
// @Failure 400 {object} utils.APIErrorResponse "请求参数错误"
// @Failure 401 {object} utils.APIErrorResponse "无效的用户名或密码"
// @Failure 500 {object} utils.APIErrorResponse "无法生成Token"
// @Router /auth/login [post]
func (h *AuthHandler) Login(c *gin.Context) {
	var req LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.RespondValidationError(c, utils.FormatBindingError(err))
		return
	}

	user, err := h.users.FindByUsername(c.Request.Context(), req.Username)
	if err != nil {
		if !errors.Is(err, repositories.ErrRecordNotFound) {
			log.Printf("查询管理员 %s 失败: %v", req.Username, err)
		}
		utils.RespondUnauthorizedError(c, "无效的用户名或密码")
		return
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(req.Password)); err != nil {
		utils.RespondUnauthorizedError(c, "无效的用户名或密码")
		return
	}

	tokenString, expiresAt, err := auth.IssueToken(user, h.secret, h.ttl)
	if err != nil {
		utils.RespondInternalServerError(c, "无法生成Token", err.Error())
		return
	}

	loginResp := LoginResponse{
		Token:     tokenString,
		ExpiresAt: expiresAt,
		User: UserInfo{
			Username:  user.Username,
			Role:      user.Role,
			CompanyID: user.CompanyID,
		},
	}
	utils.RespondSuccess(c, http.StatusOK, loginResp, "登录成功")
}

// Logout godoc
// @Summary 管理员登出
// @Description 将当前 Token 加入拒绝列表
// @Tags auth
// @Security BearerAuth
// @Produce  json
// @Success 200 {object} utils.SuccessResponse "成功登出"
// @Failure 400 {object} utils.APIErrorResponse "上下文中缺少JTI或EXP"
// @Router /auth/logout [post]
func (h *AuthHandler) Logout(c *gin.Context) {
	jti := c.GetString(auth.ContextJTI)
	expVal, expExists := c.Get(auth.ContextExpiresAt)
	if jti == "" {
		utils.RespondAPIError(c, http.StatusBadRequest, "Logout context error: Invalid JTI", nil)
		return
	}
	exp, ok := expVal.(time.Time)
	if !expExists || !ok {
		utils.RespondAPIError(c, http.StatusBadRequest, "Logout context error: Invalid EXP", nil)
		return
	}

	if err := h.denylist.Add(c.Request.Context(), jti, exp); err != nil {
		utils.RespondInternalServerError(c, "登出失败", err.Error())
		return
	}
	utils.RespondSuccess(c, http.StatusOK, nil, "成功登出")
}
