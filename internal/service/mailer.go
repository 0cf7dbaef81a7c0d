package service

import (
	"context"
	"crypto/tls"
	"fmt"
	"html"
	"mime"
	"net"
	"net/smtp"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/pticket/helpdesk/internal/config"
	"github.com/pticket/helpdesk/internal/domain"
	"github.com/pticket/helpdesk/internal/repository"
	apperrors "github.com/pticket/helpdesk/pkg/util/errorutil"
)

// Mailer sends outbound email.
type Mailer interface {
	Send(ctx context.Context, to []string, subject, htmlBody string) error
	TestConnection(ctx context.Context) error
}

// SMTPMailer delivers mail over SMTP. Connection settings come from the
// active email_configs row when one exists, otherwise from the environment.
type SMTPMailer struct {
	configs  repository.EmailConfigRepository
	fallback config.SMTPConfig
	logger   *zap.Logger
}

// NewSMTPMailer constructs the mailer.
func NewSMTPMailer(configs repository.EmailConfigRepository, fallback config.SMTPConfig, logger *zap.Logger) *SMTPMailer {
	return &SMTPMailer{configs: configs, fallback: fallback, logger: logger}
}

func (m *SMTPMailer) settings(ctx context.Context) domain.EmailConfig {
	if m.configs != nil {
		if cfg, err := m.configs.GetActive(ctx); err == nil {
			return *cfg
		}
	}
	return domain.EmailConfig{
		Host:      m.fallback.Host,
		Port:      m.fallback.Port,
		Username:  m.fallback.Username,
		Password:  m.fallback.Password,
		UseTLS:    m.fallback.UseTLS,
		FromEmail: m.fallback.FromEmail,
		FromName:  m.fallback.FromName,
	}
}

// Send assembles a MIME message and delivers it. Recipients without an
// address are skipped silently by callers; an empty list is a no-op.
func (m *SMTPMailer) Send(ctx context.Context, to []string, subject, htmlBody string) error {
	if len(to) == 0 {
		return nil
	}
	cfg := m.settings(ctx)
	if cfg.Host == "" {
		return apperrors.NewInternalError("smtp not configured", nil)
	}

	msg := buildMIMEMessage(cfg, to, subject, htmlBody)
	addr := fmt.Sprintf("%s:%d", cfg.Host, cfg.Port)

	var auth smtp.Auth
	if cfg.Username != "" {
		auth = smtp.PlainAuth("", cfg.Username, cfg.Password, cfg.Host)
	}

	err := m.send(ctx, addr, cfg, auth, to, msg)
	if err != nil {
		m.logger.Warn("email delivery failed",
			zap.String("host", cfg.Host),
			zap.Int("recipients", len(to)),
			zap.Error(err))
		return err
	}
	m.logger.Info("email sent",
		zap.String("subject", subject),
		zap.Int("recipients", len(to)))
	return nil
}

// send dials with a context-aware dialer so cancellation is honored before
// the SMTP conversation starts.
func (m *SMTPMailer) send(ctx context.Context, addr string, cfg domain.EmailConfig, auth smtp.Auth, to []string, msg []byte) error {
	dialer := &net.Dialer{Timeout: 15 * time.Second}
	conn, err := dialer.DialContext(ctx, "tcp", addr)
	if err != nil {
		return err
	}

	client, err := smtp.NewClient(conn, cfg.Host)
	if err != nil {
		conn.Close()
		return err
	}
	defer client.Close()

	if cfg.UseTLS {
		if ok, _ := client.Extension("STARTTLS"); ok {
			if err := client.StartTLS(&tls.Config{ServerName: cfg.Host}); err != nil {
				return err
			}
		}
	}
	if auth != nil {
		if ok, _ := client.Extension("AUTH"); ok {
			if err := client.Auth(auth); err != nil {
				return err
			}
		}
	}

	if err := client.Mail(cfg.FromEmail); err != nil {
		return err
	}
	for _, rcpt := range to {
		if err := client.Rcpt(rcpt); err != nil {
			return err
		}
	}
	w, err := client.Data()
	if err != nil {
		return err
	}
	if _, err := w.Write(msg); err != nil {
		return err
	}
	if err := w.Close(); err != nil {
		return err
	}
	return client.Quit()
}

// TestConnection dials the server and runs the handshake without sending.
func (m *SMTPMailer) TestConnection(ctx context.Context) error {
	cfg := m.settings(ctx)
	if cfg.Host == "" {
		return apperrors.NewValidationError("smtp not configured", nil)
	}
	addr := fmt.Sprintf("%s:%d", cfg.Host, cfg.Port)

	dialer := &net.Dialer{Timeout: 10 * time.Second}
	conn, err := dialer.DialContext(ctx, "tcp", addr)
	if err != nil {
		return err
	}
	client, err := smtp.NewClient(conn, cfg.Host)
	if err != nil {
		conn.Close()
		return err
	}
	defer client.Close()

	if cfg.UseTLS {
		if ok, _ := client.Extension("STARTTLS"); ok {
			if err := client.StartTLS(&tls.Config{ServerName: cfg.Host}); err != nil {
				return err
			}
		}
	}
	if cfg.Username != "" {
		if ok, _ := client.Extension("AUTH"); ok {
			if err := client.Auth(smtp.PlainAuth("", cfg.Username, cfg.Password, cfg.Host)); err != nil {
				return err
			}
		}
	}
	return client.Quit()
}

func buildMIMEMessage(cfg domain.EmailConfig, to []string, subject, htmlBody string) []byte {
	from := cfg.FromEmail
	if cfg.FromName != "" {
		from = fmt.Sprintf("%s <%s>", mime.QEncoding.Encode("utf-8", cfg.FromName), cfg.FromEmail)
	}

	var b strings.Builder
	fmt.Fprintf(&b, "From: %s\r\n", from)
	fmt.Fprintf(&b, "To: %s\r\n", strings.Join(to, ", "))
	fmt.Fprintf(&b, "Subject: %s\r\n", mime.QEncoding.Encode("utf-8", subject))
	fmt.Fprintf(&b, "Date: %s\r\n", time.Now().Format(time.RFC1123Z))
	b.WriteString("MIME-Version: 1.0\r\n")
	b.WriteString("Content-Type: text/html; charset=\"utf-8\"\r\n")
	b.WriteString("\r\n")
	b.WriteString(htmlBody)
	b.WriteString("\r\n")
	return []byte(b.String())
}

// RenderRTLEmail wraps body paragraphs in the right-to-left layout used for
// Persian notification mail.
func RenderRTLEmail(title string, paragraphs []string) string {
	var b strings.Builder
	b.WriteString(`<!DOCTYPE html><html lang="fa" dir="rtl"><head><meta charset="utf-8"></head>`)
	b.WriteString(`<body style="font-family:Tahoma,Arial,sans-serif;direction:rtl;text-align:right;background:#f5f5f5;padding:16px">`)
	b.WriteString(`<div style="max-width:600px;margin:0 auto;background:#fff;border-radius:8px;padding:24px">`)
	fmt.Fprintf(&b, `<h2 style="color:#1a3c6e;margin-top:0">%s</h2>`, html.EscapeString(title))
	for _, p := range paragraphs {
		fmt.Fprintf(&b, `<p style="color:#333;line-height:1.8">%s</p>`, html.EscapeString(p))
	}
	b.WriteString(`</div></body></html>`)
	return b.String()
}
