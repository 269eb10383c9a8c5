package email

import (
	"context"
	"errors"
	"net/smtp"
	"os"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/qr_attendance/internal/models"
)

func sampleAlert() models.FraudAlert {
	email := "alice@example.com"
	return models.FraudAlert{
		ID:            "A1",
		CompanyID:     "C1",
		QRID:          "Q1",
		Timestamp:     time.Date(2025, 1, 2, 3, 4, 5, 0, time.UTC),
		EmployeeName:  "Alice",
		EmployeeEmail: &email,
	}
}

func TestNotifyFraud(t *testing.T) {
	var gotAddr string
	var gotTo []string
	var gotMsg string
	n := NewNotifier(&SMTPConfig{Host: "smtp.example.com", Port: 587, Sender: "noreply@example.com"},
		func(addr string, a smtp.Auth, from string, to []string, msg []byte) error {
			gotAddr, gotTo, gotMsg = addr, to, string(msg)
			assert.Nil(t, a, "未配置用户名时不使用认证")
			return nil
		})

	require.NoError(t, n.NotifyFraud(context.Background(), []string{"boss@example.com"}, sampleAlert()))
	assert.Equal(t, "smtp.example.com:587", gotAddr)
	assert.Equal(t, []string{"boss@example.com"}, gotTo)
	assert.Contains(t, gotMsg, "Alice (alice@example.com)")
	assert.Contains(t, gotMsg, "2025-01-02T03:04:05Z")
	assert.True(t, strings.Contains(gotMsg, "\r\n\r\n"))
}

func TestNotifyFraudErrors(t *testing.T) {
	n := NewNotifier(&SMTPConfig{Host: "h", Port: 25, Sender: "s@example.com"},
		func(string, smtp.Auth, string, []string, []byte) error { return errors.New("connection refused") })

	assert.NoError(t, n.NotifyFraud(context.Background(), nil, sampleAlert()), "无收件人时不发送")
	assert.Error(t, n.NotifyFraud(context.Background(), []string{"boss@example.com"}, sampleAlert()))
}

func TestSendFraudEmailLive(t *testing.T) {
	// 从环境变量读取测试配置
	recipientEmail := os.Getenv("TEST_RECIPIENT_EMAIL")
	if recipientEmail == "" {
		t.Skip("Skipping email sending test: TEST_RECIPIENT_EMAIL environment variable not set.")
	}
	config, err := LoadSMTPConfigFromEnv()
	require.NoError(t, err, "Ensure SMTP environment variables are set: SMTP_HOST, SMTP_PORT, SMTP_SENDER_EMAIL")

	err = NewNotifier(config, nil).NotifyFraud(context.Background(), []string{recipientEmail}, sampleAlert())
	assert.NoError(t, err)
}
