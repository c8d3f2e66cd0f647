package mailer

import (
	"context"
	"fmt"

	"github.com/resend/resend-go/v2"
	"go.uber.org/zap"

	"custody-tracker/config"
)

// ResendProvider delivers through the Resend HTTP API
type ResendProvider struct {
	client *resend.Client
	from   string
	logger *zap.Logger
}

func NewResendProvider(cfg *config.MailConfig, logger *zap.Logger) *ResendProvider {
	p := &ResendProvider{from: cfg.From, logger: logger}
	if cfg.ResendAPIKey != "" {
		p.client = resend.NewClient(cfg.ResendAPIKey)
	}
	return p
}

func (p *ResendProvider) Name() string { return "resend" }

func (p *ResendProvider) Configured() bool {
	return p.client != nil && p.from != ""
}

func (p *ResendProvider) Send(ctx context.Context, msg *Message) error {
	if !p.Configured() {
		return ErrNotConfigured
	}
	if len(msg.To) == 0 {
		return ErrNoRecipients
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	params := &resend.SendEmailRequest{
		From:    p.from,
		To:      msg.To,
		Subject: msg.Subject,
		Text:    msg.Text,
	}
	if msg.HTML != "" {
		params.Html = msg.HTML
	}

	sent, err := p.client.Emails.Send(params)
	if err != nil {
		return fmt.Errorf("resend send: %w", err)
	}

	p.logger.Info("e-mail sent via resend",
		zap.String("email_id", sent.Id),
		zap.Int("recipients", len(msg.To)),
		zap.String("subject", msg.Subject),
	)
	return nil
}
