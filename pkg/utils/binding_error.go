package utils

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"reflect"
	"strings"

	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
)

func init() {
	// 校验错误中使用 json 字段名
	if v, ok := binding.Validator.Engine().(*validator.Validate); ok {
		v.RegisterTagNameFunc(func(fld reflect.StructField) string {
			name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
			if name == "-" {
				return ""
			}
			return name
		})
	}
}

// FormatBindingError 将 gin 绑定错误转为可读信息
func FormatBindingError(err error) string {
	if err == nil {
		return ""
	}
	if errors.Is(err, io.EOF) {
		return "请求体为空"
	}

	var syntaxErr *json.SyntaxError
	if errors.As(err, &syntaxErr) {
		return fmt.Sprintf("JSON 格式错误 (偏移 %d)", syntaxErr.Offset)
	}
	var typeErr *json.UnmarshalTypeError
	if errors.As(err, &typeErr) {
		return fmt.Sprintf("字段 '%s' 类型应为 %s", typeErr.Field, typeErr.Type.String())
	}

	var ve validator.ValidationErrors
	if errors.As(err, &ve) {
		out := make([]string, 0, len(ve))
		for _, fe := range ve {
			out = append(out, formatFieldError(fe))
		}
		return strings.Join(out, "; ")
	}
	return err.Error()
}

func formatFieldError(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return fmt.Sprintf("字段 '%s' 为必填项", fe.Field())
	case "email":
		return fmt.Sprintf("字段 '%s' 必须是有效的邮箱", fe.Field())
	case "max":
		return fmt.Sprintf("字段 '%s' 长度不能超过 %s", fe.Field(), fe.Param())
	case "min":
		return fmt.Sprintf("字段 '%s' 长度不能少于 %s", fe.Field(), fe.Param())
	case "oneof":
		return fmt.Sprintf("字段 '%s' 必须是以下之一: %s", fe.Field(), fe.Param())
	}
	return fmt.Sprintf("字段 '%s' 未通过 '%s' 校验", fe.Field(), fe.Tag())
}
