package auth

import (
	"errors"
	"fmt"
	"log"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"github.com/qr_attendance/internal/models"
)

// 上下文中保存认证信息的键
const (
	ContextUserID    = "userID"
	ContextUsername  = "username"
	ContextRole      = "role"
	ContextCompanyID = "companyID"
	ContextJTI       = "jti"
	ContextExpiresAt = "exp"
)

// Claims 定义了JWT中存储的自定义声明。
// JTI (ID) 会通过内嵌的 jwt.RegisteredClaims 提供
type Claims struct {
	UserID    int64  `json:"user_id"`
	Username  string `json:"username"`
	Role      string `json:"role"`
	CompanyID string `json:"company_id"`
	jwt.RegisteredClaims
}

// IssueToken 为管理员签发 HS256 Token
func IssueToken(user *models.User, secret string, ttl time.Duration) (string, time.Time, error) {
	if ttl <= 0 {
		ttl = 24 * time.Hour
	}
	expirationTime := time.Now().Add(ttl)
	claims := &Claims{
		UserID:    user.ID,
		Username:  user.Username,
		Role:      user.Role,
		CompanyID: user.CompanyID,
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        uuid.NewString(),
			Subject:   user.Username,
			ExpiresAt: jwt.NewNumericDate(expirationTime),
			Issuer:    "qr_attendance",
			Audience:  jwt.ClaimStrings{"admin"},
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString([]byte(secret))
	if err != nil {
		return "", time.Time{}, err
	}
	return signed, expirationTime, nil
}

// JWTMiddleware 是一个Gin中间件，用于验证JWT。
// 它从 Authorization 请求头中提取 Bearer Token，校验签名、JTI 与拒绝列表，
// 并把管理员所属企业写入上下文。
func JWTMiddleware(secret string, denylist Denylist) gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Authorization header is required"})
			return
		}

		parts := strings.Split(authHeader, " ")
		if len(parts) != 2 || strings.ToLower(parts[0]) != "bearer" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Authorization header format must be Bearer {token}"})
			return
		}

		claims := &Claims{}
		token, err := jwt.ParseWithClaims(parts[1], claims, func(token *jwt.Token) (interface{}, error) {
			// 确保token的签名方法是我们期望的 HMAC
			if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
				return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
			}
			return []byte(secret), nil
		})
		if err != nil {
			switch {
			case errors.Is(err, jwt.ErrTokenMalformed):
				c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Token is malformed"})
			case errors.Is(err, jwt.ErrTokenExpired) || errors.Is(err, jwt.ErrTokenNotValidYet):
				c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Token is expired or not valid yet"})
			case errors.Is(err, jwt.ErrTokenSignatureInvalid):
				c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Invalid token signature"})
			default:
				c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Invalid token: " + err.Error()})
			}
			return
		}
		if !token.Valid {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Token is invalid"})
			return
		}

		if claims.ID == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Token missing JTI (JWT ID)"})
			return
		}
		if claims.CompanyID == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Token missing company"})
			return
		}

		if denylist != nil {
			revoked, err := denylist.Contains(c.Request.Context(), claims.ID)
			if err != nil {
				log.Printf("查询 Token 拒绝列表失败: %v", err)
				c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "Unable to verify token"})
				return
			}
			if revoked {
				c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Token has been invalidated (logged out)"})
				return
			}
		}

		c.Set(ContextUserID, claims.UserID)
		c.Set(ContextUsername, claims.Username)
		c.Set(ContextRole, claims.Role)
		c.Set(ContextCompanyID, claims.CompanyID)
		c.Set(ContextJTI, claims.ID)
		if claims.ExpiresAt != nil {
			c.Set(ContextExpiresAt, claims.ExpiresAt.Time)
		}

		c.Next()
	}
}

// CompanyID 返回当前管理员所属企业，未经过中间件时为空
func CompanyID(c *gin.Context) string {
	return c.GetString(ContextCompanyID)
}
