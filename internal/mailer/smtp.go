package mailer

import (
	"bytes"
	"context"
	"crypto/tls"
	"fmt"
	"mime"
	"net"
	"net/smtp"
	"strconv"
	"strings"
	"time"

	"go.uber.org/zap"

	"custody-tracker/config"
)

// SMTPProvider delivers through an SMTP relay, upgrading with STARTTLS
// (or implicit TLS on port 465) when UseTLS is set
type SMTPProvider struct {
	host     string
	port     int
	user     string
	password string
	from     string
	useTLS   bool
	logger   *zap.Logger
}

// NewSMTPProvider builds the provider; From falls back to the SMTP user
func NewSMTPProvider(cfg *config.MailConfig, logger *zap.Logger) *SMTPProvider {
	from := cfg.From
	if from == "" {
		from = cfg.SMTPUser
	}
	port := cfg.SMTPPort
	if port == 0 {
		port = 587
	}
	return &SMTPProvider{
		host:     cfg.SMTPHost,
		port:     port,
		user:     cfg.SMTPUser,
		password: cfg.SMTPPassword,
		from:     from,
		useTLS:   cfg.SMTPUseTLS,
		logger:   logger,
	}
}

func (p *SMTPProvider) Name() string { return "smtp" }

func (p *SMTPProvider) Configured() bool {
	return p.host != "" && p.from != ""
}

func (p *SMTPProvider) Send(ctx context.Context, msg *Message) error {
	if !p.Configured() {
		return ErrNotConfigured
	}
	if len(msg.To) == 0 {
		return ErrNoRecipients
	}

	addr := net.JoinHostPort(p.host, strconv.Itoa(p.port))
	conn, err := p.dial(ctx, addr)
	if err != nil {
		return fmt.Errorf("smtp connect %s: %w", addr, err)
	}
	defer conn.Close()
	if deadline, ok := ctx.Deadline(); ok {
		_ = conn.SetDeadline(deadline)
	}

	client, err := smtp.NewClient(conn, p.host)
	if err != nil {
		return fmt.Errorf("smtp handshake: %w", err)
	}
	defer client.Close()

	if p.useTLS && p.port != 465 {
		if ok, _ := client.Extension("STARTTLS"); !ok {
			return fmt.Errorf("smtp server %s does not offer STARTTLS", p.host)
		}
		if err := client.StartTLS(&tls.Config{ServerName: p.host}); err != nil {
			return fmt.Errorf("smtp starttls: %w", err)
		}
	}

	if p.user != "" && p.password != "" {
		if err := client.Auth(smtp.PlainAuth("", p.user, p.password, p.host)); err != nil {
			return fmt.Errorf("smtp auth: %w", err)
		}
	}

	if err := client.Mail(p.from); err != nil {
		return fmt.Errorf("smtp MAIL FROM %s: %w", p.from, err)
	}
	for _, rcpt := range msg.To {
		if err := client.Rcpt(rcpt); err != nil {
			return fmt.Errorf("smtp RCPT TO %s: %w", rcpt, err)
		}
	}

	w, err := client.Data()
	if err != nil {
		return fmt.Errorf("smtp DATA: %w", err)
	}
	if _, err := w.Write(buildMessage(p.from, msg, time.Now())); err != nil {
		_ = w.Close()
		return fmt.Errorf("smtp write body: %w", err)
	}
	if err := w.Close(); err != nil {
		return fmt.Errorf("smtp close body: %w", err)
	}

	if err := client.Quit(); err != nil {
		p.logger.Warn("smtp QUIT failed", zap.Error(err))
	}
	p.logger.Info("e-mail sent via smtp",
		zap.Int("recipients", len(msg.To)),
		zap.String("subject", msg.Subject),
	)
	return nil
}

func (p *SMTPProvider) dial(ctx context.Context, addr string) (net.Conn, error) {
	d := &net.Dialer{Timeout: 15 * time.Second}
	if p.useTLS && p.port == 465 {
		td := &tls.Dialer{NetDialer: d, Config: &tls.Config{ServerName: p.host}}
		return td.DialContext(ctx, "tcp", addr)
	}
	return d.DialContext(ctx, "tcp", addr)
}

// buildMessage renders an RFC 5322 plain-text message
func buildMessage(from string, msg *Message, now time.Time) []byte {
	var b bytes.Buffer
	fmt.Fprintf(&b, "From: %s\r\n", from)
	fmt.Fprintf(&b, "To: %s\r\n", strings.Join(msg.To, ", "))
	fmt.Fprintf(&b, "Subject: %s\r\n", mime.QEncoding.Encode("utf-8", msg.Subject))
	fmt.Fprintf(&b, "Date: %s\r\n", now.Format(time.RFC1123Z))
	b.WriteString("MIME-Version: 1.0\r\n")
	b.WriteString("Content-Type: text/plain; charset=UTF-8\r\n")
	b.WriteString("Content-Transfer-Encoding: 8bit\r\n")
	b.WriteString("\r\n")
	b.WriteString(strings.ReplaceAll(msg.Text, "\n", "\r\n"))
	return b.Bytes()
}
