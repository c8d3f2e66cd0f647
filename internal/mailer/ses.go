package mailer

import (
	"context"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/sesv2"
	"github.com/aws/aws-sdk-go-v2/service/sesv2/types"
	"go.uber.org/zap"

	"custody-tracker/config"
)

// sesAPI the subset of the SES v2 client used here
type sesAPI interface {
	SendEmail(ctx context.Context, in *sesv2.SendEmailInput, optFns ...func(*sesv2.Options)) (*sesv2.SendEmailOutput, error)
}

// SESProvider delivers through Amazon SES v2 using the default AWS credential chain
type SESProvider struct {
	client sesAPI
	from   string
	logger *zap.Logger
}

// NewSESProvider loads the AWS configuration for cfg.SESRegion. The provider is
// only configured when the primary or fallback list names "ses".
func NewSESProvider(ctx context.Context, cfg *config.MailConfig, logger *zap.Logger) *SESProvider {
	p := &SESProvider{from: cfg.From, logger: logger}
	if !wantsProvider(cfg, "ses") || cfg.SESRegion == "" {
		return p
	}

	awsCfg, err := awsconfig.LoadDefaultConfig(ctx, awsconfig.WithRegion(cfg.SESRegion))
	if err != nil {
		logger.Warn("load AWS config failed, ses provider disabled", zap.Error(err))
		return p
	}
	p.client = sesv2.NewFromConfig(awsCfg)
	return p
}

func (p *SESProvider) Name() string { return "ses" }

func (p *SESProvider) Configured() bool {
	return p.client != nil && p.from != ""
}

func (p *SESProvider) Send(ctx context.Context, msg *Message) error {
	if !p.Configured() {
		return ErrNotConfigured
	}
	if len(msg.To) == 0 {
		return ErrNoRecipients
	}

	body := &types.Body{Text: &types.Content{Data: aws.String(msg.Text), Charset: aws.String("UTF-8")}}
	if msg.HTML != "" {
		body.Html = &types.Content{Data: aws.String(msg.HTML), Charset: aws.String("UTF-8")}
	}

	out, err := p.client.SendEmail(ctx, &sesv2.SendEmailInput{
		FromEmailAddress: aws.String(p.from),
		Destination:      &types.Destination{ToAddresses: msg.To},
		Content: &types.EmailContent{
			Simple: &types.Message{
				Subject: &types.Content{Data: aws.String(msg.Subject), Charset: aws.String("UTF-8")},
				Body:    body,
			},
		},
	})
	if err != nil {
		return fmt.Errorf("ses send: %w", err)
	}

	p.logger.Info("e-mail sent via ses",
		zap.String("message_id", aws.ToString(out.MessageId)),
		zap.Int("recipients", len(msg.To)),
		zap.String("subject", msg.Subject),
	)
	return nil
}

func wantsProvider(cfg *config.MailConfig, name string) bool {
	if cfg.Provider == name {
		return true
	}
	for _, f := range cfg.Fallback {
		if f == name {
			return true
		}
	}
	return false
}
