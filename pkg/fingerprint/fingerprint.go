package fingerprint

import (
	"crypto/rand"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"log"
	"strconv"
	"strings"
)

// ErrFingerprintUnavailable 表示摘要原语不可用，无法计算稳定指纹
var ErrFingerprintUnavailable = errors.New("设备指纹不可用")

// separator 是各属性之间的连接符，与前端保持一致
const separator = "||"

// fallbackBytes 随机回退值的字节数 (26 个十六进制字符)
const fallbackBytes = 13

// Attributes 是参与指纹计算的客户端环境属性，顺序固定
type Attributes struct {
	UserAgent    string  `json:"userAgent"`
	Language     string  `json:"language"`
	Platform     string  `json:"platform"`
	ScreenWidth  int     `json:"screenWidth"`
	ScreenHeight int     `json:"screenHeight"`
	ColorDepth   int     `json:"colorDepth"`
	Timezone     string  `json:"timezone"`
	PixelRatio   float64 `json:"pixelRatio"`
}

// Canonical 返回属性按固定顺序拼接后的原始串
func (a Attributes) Canonical() string {
	return strings.Join([]string{
		a.UserAgent,
		a.Language,
		a.Platform,
		strconv.Itoa(a.ScreenWidth),
		strconv.Itoa(a.ScreenHeight),
		strconv.Itoa(a.ColorDepth),
		a.Timezone,
		formatRatio(a.PixelRatio),
	}, separator)
}

// formatRatio 以最短形式输出像素比 (1 而不是 1.0，1.5 保持不变)
func formatRatio(f float64) string {
	return strconv.FormatFloat(f, 'f', -1, 64)
}

// DigestFunc 将原始串映射为十六进制摘要
type DigestFunc func(data []byte) (string, error)

// SHA256Hex 是默认摘要实现
func SHA256Hex(data []byte) (string, error) {
	sum := sha256.Sum256(data)
	return hex.EncodeToString(sum[:]), nil
}

// Generator 计算设备指纹
type Generator struct {
	digest DigestFunc
}

// NewGenerator 创建指纹生成器。digest 为 nil 时使用 SHA-256。
func NewGenerator(digest DigestFunc) *Generator {
	if digest == nil {
		digest = SHA256Hex
	}
	return &Generator{digest: digest}
}

// Compute 计算属性的指纹。
// 相同属性总是得到相同的 64 位小写十六进制串；摘要失败时返回随机值，
// 此时该设备将无法被识别，需要重新注册。
func (g *Generator) Compute(attrs Attributes) string {
	fp, err := g.digest([]byte(attrs.Canonical()))
	if err == nil && fp != "" {
		return fp
	}
	if err == nil {
		err = ErrFingerprintUnavailable
	}
	log.Printf("警告: 计算设备指纹失败，使用随机回退值: %v", err)
	return randomFallback()
}

func randomFallback() string {
	b := make([]byte, fallbackBytes)
	// Go 1.24 起 crypto/rand.Read 不会返回错误，失败时直接终止进程
	_, _ = rand.Read(b)
	return hex.EncodeToString(b)
}

// Compute 使用默认生成器计算指纹
func Compute(attrs Attributes) string {
	return defaultGenerator.Compute(attrs)
}

var defaultGenerator = NewGenerator(nil)
