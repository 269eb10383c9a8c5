package qrtoken

import (
	"encoding/base64"

	"github.com/skip2/go-qrcode"
)

// DefaultImageSize 二维码图片默认边长 (像素)
const DefaultImageSize = 256

// RenderPNG 将内容编码为二维码 PNG
func RenderPNG(content string, size int) ([]byte, error) {
	if size <= 0 {
		size = DefaultImageSize
	}
	return qrcode.Encode(content, qrcode.Medium, size)
}

// RenderDataURL 返回可直接放入 <img src> 的 data URL
func RenderDataURL(content string, size int) (string, error) {
	png, err := RenderPNG(content, size)
	if err != nil {
		return "", err
	}
	return "data:image/png;base64," + base64.StdEncoding.EncodeToString(png), nil
}
