package email

import (
	"context"
	"fmt"
	"html"
	"net/smtp"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/qr_attendance/internal/models"
)

// SMTPConfig holds the SMTP server configuration
type SMTPConfig struct {
	Host     string
	Port     int
	Username string
	Password string
	Sender   string
}

// LoadSMTPConfigFromEnv loads SMTP configuration from environment variables
func LoadSMTPConfigFromEnv() (*SMTPConfig, error) {
	host := os.Getenv("SMTP_HOST")
	portStr := os.Getenv("SMTP_PORT")
	username := os.Getenv("SMTP_USERNAME")
	password := os.Getenv("SMTP_PASSWORD")
	sender := os.Getenv("SMTP_SENDER_EMAIL")

	if host == "" || portStr == "" || sender == "" {
		return nil, fmt.Errorf("SMTP_HOST, SMTP_PORT, and SMTP_SENDER_EMAIL must be set")
	}

	port, err := strconv.Atoi(portStr)
	if err != nil {
		return nil, fmt.Errorf("invalid SMTP_PORT: %v", err)
	}

	return &SMTPConfig{
		Host:     host,
		Port:     port,
		Username: username, // Username can be empty for some SMTP servers
		Password: password, // Password can be empty for some SMTP servers
		Sender:   sender,
	}, nil
}

// SendFunc 与 smtp.SendMail 签名一致，测试中可替换
type SendFunc func(addr string, a smtp.Auth, from string, to []string, msg []byte) error

// Notifier 通过 SMTP 发送欺诈告警邮件
type Notifier struct {
	config *SMTPConfig
	send   SendFunc
}

// NewNotifier 创建 Notifier。send 为 nil 时使用 smtp.SendMail。
func NewNotifier(config *SMTPConfig, send SendFunc) *Notifier {
	if send == nil {
		send = smtp.SendMail
	}
	return &Notifier{config: config, send: send}
}

// NotifyFraud 向企业管理员发送一封欺诈告警邮件
func (n *Notifier) NotifyFraud(ctx context.Context, recipients []string, alert models.FraudAlert) error {
	if len(recipients) == 0 {
		return nil
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	msg := BuildFraudAlertMessage(n.config.Sender, recipients, alert)

	var auth smtp.Auth
	if n.config.Username != "" {
		auth = smtp.PlainAuth("", n.config.Username, n.config.Password, n.config.Host)
	}
	addr := fmt.Sprintf("%s:%d", n.config.Host, n.config.Port)
	if err := n.send(addr, auth, n.config.Sender, recipients, msg); err != nil {
		return fmt.Errorf("failed to send email: %w", err)
	}
	return nil
}

// BuildFraudAlertMessage 构造 HTML 告警邮件 (CRLF 换行)
func BuildFraudAlertMessage(sender string, recipients []string, alert models.FraudAlert) []byte {
	who := alert.EmployeeName
	if alert.EmployeeEmail != nil && *alert.EmployeeEmail != "" {
		who = fmt.Sprintf("%s (%s)", alert.EmployeeName, *alert.EmployeeEmail)
	}

	subject := "【告警】检测到可疑的考勤扫码"
	body := fmt.Sprintf(`
<html>
<body>
    <p>您好，</p>
    <p>系统在 %s 检测到一次使用无效或已停用二维码的扫码。</p>
    <ul>
        <li>二维码: %s</li>
        <li>疑似员工: %s</li>
        <li>告警编号: %s</li>
    </ul>
    <p>请登录管理后台查看并处理该告警。</p>
    <p><small>（这是一封自动发送的邮件，请勿直接回复。）</small></p>
</body>
</html>
`, alert.Timestamp.UTC().Format(time.RFC3339), html.EscapeString(alert.QRID), html.EscapeString(who), html.EscapeString(alert.ID))

	return []byte(strings.Join([]string{
		"To: " + strings.Join(recipients, ", "),
		"From: " + sender,
		"Subject: " + subject,
		"MIME-version: 1.0",
		"Content-Type: text/html; charset=\"UTF-8\"",
		"",
		body,
	}, "\r\n"))
}
