package qrtoken

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/google/uuid"
)

var (
	// ErrMalformedToken 表示扫码数据不是合法的 JSON 对象
	ErrMalformedToken = errors.New("二维码数据格式无效")
	// ErrIncompleteToken 表示令牌缺少 companyId 或 qrId
	ErrIncompleteToken = errors.New("二维码数据不完整")
)

const (
	// ScanPath 是扫码页面路径
	ScanPath = "/scan"
	// DataParam 承载 URL 编码后的令牌 JSON
	DataParam = "data"
	// ForceNewParam 为 true 时跳过设备识别
	ForceNewParam = "forceNew"
)

// Token 是嵌入二维码的载荷。未签名也未加密，只作为查找依据，
// 真实性由二维码注册表判定。
type Token struct {
	CompanyID string `json:"companyId"`
	QRID      string `json:"qrId"`
	Timestamp int64  `json:"timestamp"` // 毫秒
	Nonce     string `json:"nonce"`
}

// New 创建令牌，timestamp 取 now 的毫秒值
func New(companyID, qrID string, now time.Time) Token {
	return Token{
		CompanyID: companyID,
		QRID:      qrID,
		Timestamp: now.UnixMilli(),
		Nonce:     newNonce(),
	}
}

func newNonce() string {
	return uuid.NewString()
}

// Validate 检查必需字段
func (t Token) Validate() error {
	if strings.TrimSpace(t.CompanyID) == "" || strings.TrimSpace(t.QRID) == "" {
		return ErrIncompleteToken
	}
	return nil
}

// Marshal 返回令牌的 JSON 文本
func (t Token) Marshal() (string, error) {
	b, err := json.Marshal(t)
	if err != nil {
		return "", err
	}
	return string(b), nil
}

// ScanURL 返回 <base>/scan?data=<url 编码的 JSON>
func (t Token) ScanURL(baseURL string) (string, error) {
	payload, err := t.Marshal()
	if err != nil {
		return "", err
	}
	return strings.TrimRight(baseURL, "/") + ScanPath + "?" + DataParam + "=" + url.QueryEscape(payload), nil
}

// Encode 为 (companyID, qrID) 生成新令牌并返回扫码 URL
func Encode(baseURL, companyID, qrID string) (string, error) {
	return New(companyID, qrID, time.Now()).ScanURL(baseURL)
}

// Decode 解析令牌 JSON。只负责结构，字段完整性由 Validate 检查。
func Decode(raw string) (*Token, error) {
	trimmed := bytes.TrimSpace([]byte(raw))
	if len(trimmed) == 0 || trimmed[0] != '{' {
		return nil, ErrMalformedToken
	}
	var t Token
	if err := json.Unmarshal(trimmed, &t); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedToken, err)
	}
	return &t, nil
}

// DecodeValid 解析并校验令牌
func DecodeValid(raw string) (*Token, error) {
	t, err := Decode(raw)
	if err != nil {
		return nil, err
	}
	if err := t.Validate(); err != nil {
		return nil, err
	}
	return t, nil
}

// ParseScanURL 从完整扫码 URL 中取出 data 参数和 forceNew 标志
func ParseScanURL(rawURL string) (data string, forceNew bool, err error) {
	u, err := url.Parse(rawURL)
	if err != nil {
		return "", false, fmt.Errorf("%w: %v", ErrMalformedToken, err)
	}
	q := u.Query()
	return q.Get(DataParam), q.Get(ForceNewParam) == "true", nil
}
