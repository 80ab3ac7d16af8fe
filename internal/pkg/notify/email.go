package notify

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/OkontaEhis/myhitmeup-backend/internal/config"

	"gopkg.in/gomail.v2"
)

// ErrMailerNotConfigured 未配置 SMTP 时返回。
var ErrMailerNotConfigured = errors.New("smtp not configured")

// Email 一封待发送的邮件。
type Email struct {
	To      string
	Subject string
	Body    string
	HTML    bool
}

// Mailer 通过 SMTP 发送邮件。
type Mailer struct {
	cfg    config.EmailConfig
	logger *slog.Logger
	dial   func(m *gomail.Message) error
}

// NewMailer 创建邮件发送器。
func NewMailer(cfg config.EmailConfig, logger *slog.Logger) *Mailer {
	m := &Mailer{cfg: cfg, logger: logger}
	m.dial = func(msg *gomail.Message) error {
		d := gomail.NewDialer(cfg.SMTPHost, cfg.SMTPPort, cfg.SMTPUser, cfg.SMTPPass)
		return d.DialAndSend(msg)
	}
	return m
}

// Configured 是否具备发信所需配置。
func (m *Mailer) Configured() bool {
	return m.cfg.SMTPHost != "" && m.cfg.FromEmail != ""
}

// Send 发送邮件。ctx 仅用于提前取消，gomail 本身不支持上下文。
func (m *Mailer) Send(ctx context.Context, e Email) error {
	if !m.Configured() {
		return ErrMailerNotConfigured
	}
	if strings.TrimSpace(e.To) == "" {
		return errors.New("empty recipient")
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	msg := gomail.NewMessage()
	msg.SetHeader("From", m.cfg.FromEmail)
	msg.SetHeader("To", e.To)
	msg.SetHeader("Subject", e.Subject)
	contentType := "text/plain"
	if e.HTML {
		contentType = "text/html"
	}
	msg.SetBody(contentType, e.Body)

	if err := m.dial(msg); err != nil {
		return fmt.Errorf("send email: %w", err)
	}
	m.logger.Info("email sent", slog.String("to", e.To), slog.String("subject", e.Subject))
	return nil
}
