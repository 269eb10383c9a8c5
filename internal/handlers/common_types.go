package handlers

import (
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/qr_attendance/pkg/fingerprint"
)

// ListData 定义了列表响应结构
type ListData[T any] struct {
	Items []T `json:"items"`
	Total int `json:"total"`
}

func newListData[T any](items []T) ListData[T] {
	if items == nil {
		items = []T{}
	}
	return ListData[T]{Items: items, Total: len(items)}
}

// DevicePayload 是浏览器端采集的设备属性
type DevicePayload struct {
	UserAgent    string  `json:"userAgent"`
	Language     string  `json:"language"`
	Platform     string  `json:"platform"`
	ScreenWidth  int     `json:"screenWidth"`
	ScreenHeight int     `json:"screenHeight"`
	ColorDepth   int     `json:"colorDepth"`
	Timezone     string  `json:"timezone"`
	PixelRatio   float64 `json:"pixelRatio"`
}

// attributes 转为指纹属性，缺失的 UA 和语言从请求头补齐
func (p DevicePayload) attributes(c *gin.Context) fingerprint.Attributes {
	attrs := fingerprint.Attributes{
		UserAgent:    p.UserAgent,
		Language:     p.Language,
		Platform:     p.Platform,
		ScreenWidth:  p.ScreenWidth,
		ScreenHeight: p.ScreenHeight,
		ColorDepth:   p.ColorDepth,
		Timezone:     p.Timezone,
		PixelRatio:   p.PixelRatio,
	}
	if attrs.UserAgent == "" {
		attrs.UserAgent = c.GetHeader("User-Agent")
	}
	if attrs.Language == "" {
		lang := c.GetHeader("Accept-Language")
		if i := strings.IndexAny(lang, ",;"); i >= 0 {
			lang = lang[:i]
		}
		attrs.Language = strings.TrimSpace(lang)
	}
	return attrs
}
