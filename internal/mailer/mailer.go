package mailer

import (
	"errors"
	"fmt"
	"net/smtp"
	"strings"
)

// Sender 邮件发送接口。
// 通过实现此接口，可以切换不同的邮件发送服务（SMTP、SendGrid 等）。
type Sender interface {
	Send(subject, body, from string, to []string) error
}

// SMTPMailer 基于 net/smtp 的发送器实现
type SMTPMailer struct {
	Host     string
	Port     string
	Username string
	Password string
}

var _ Sender = (*SMTPMailer)(nil)

// NewSMTPMailer 创建邮件发送器。host 为空时返回 nil，表示通知功能未配置。
func NewSMTPMailer(host, port, username, password string) *SMTPMailer {
	if strings.TrimSpace(host) == "" {
		return nil
	}
	if strings.TrimSpace(port) == "" {
		port = "587"
	}
	return &SMTPMailer{
		Host:     host,
		Port:     port,
		Username: username,
		Password: password,
	}
}

// Send 发送一封纯文本邮件
func (m *SMTPMailer) Send(subject, body, from string, to []string) error {
	if len(to) == 0 {
		return errors.New("no recipients")
	}

	headers := map[string]string{
		"From":         from,
		"To":           strings.Join(to, ", "),
		"Subject":      subject,
		"MIME-Version": "1.0",
		"Content-Type": `text/plain; charset="UTF-8"`,
	}

	var msg strings.Builder
	for key, value := range headers {
		fmt.Fprintf(&msg, "%s: %s\r\n", key, value)
	}
	msg.WriteString("\r\n")
	msg.WriteString(body)

	addr := fmt.Sprintf("%s:%s", m.Host, m.Port)
	auth := smtp.PlainAuth("", m.Username, m.Password, m.Host)
	return smtp.SendMail(addr, auth, from, to, []byte(msg.String()))
}
