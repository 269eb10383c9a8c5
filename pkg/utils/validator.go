package utils

import (
	"errors"
	"regexp"
	"strconv"
	"strings"
	"time"
)

var (
	ErrInvalidEmailFormat = errors.New("无效的邮箱格式")
	ErrInvalidMonthFormat = errors.New("月份格式无效，请使用 YYYY-MM")
	ErrInvalidYear        = errors.New("年份无效")
)

var emailPattern = regexp.MustCompile(`^[a-zA-Z0-9._%+-]+@[a-zA-Z0-9.-]+\.[a-zA-Z]{2,}$`)

// ValidateEmailFormat 校验邮箱格式。
func ValidateEmailFormat(email string) bool {
	trimmedEmail := strings.TrimSpace(email)
	if trimmedEmail == "" {
		return true // 空字符串不进行格式校验，业务逻辑决定是否允许为空
	}
	return emailPattern.MatchString(trimmedEmail)
}

// ParseMonth 解析 YYYY-MM 或 YYYY-M，空串返回当前月份 (UTC)。
func ParseMonth(s string, now time.Time) (int, time.Month, error) {
	trimmed := strings.TrimSpace(s)
	if trimmed == "" {
		now = now.UTC()
		return now.Year(), now.Month(), nil
	}
	normalized := strings.ReplaceAll(trimmed, "/", "-")
	for _, layout := range []string{"2006-01", "2006-1"} {
		if t, err := time.Parse(layout, normalized); err == nil {
			return t.Year(), t.Month(), nil
		}
	}
	return 0, 0, ErrInvalidMonthFormat
}

// ParseYear 解析年份，空串返回当前年份 (UTC)。
func ParseYear(s string, now time.Time) (int, error) {
	trimmed := strings.TrimSpace(s)
	if trimmed == "" {
		return now.UTC().Year(), nil
	}
	year, err := strconv.Atoi(trimmed)
	if err != nil || year < 1970 || year > 9999 {
		return 0, ErrInvalidYear
	}
	return year, nil
}
