package email

import (
	"context"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/sesv2"
	"github.com/aws/aws-sdk-go-v2/service/sesv2/types"
	"go.uber.org/zap"

	"linkup-backend/application/ports"
)

// SESMailer implements the Mailer interface using Amazon SES. Callers treat
// delivery as best effort, so this layer does no retrying of its own.
type SESMailer struct {
	client *sesv2.Client
	sender string
	logger *zap.Logger
}

// NewSESMailer creates a new SES-backed mailer
func NewSESMailer(client *sesv2.Client, sender string, logger *zap.Logger) ports.Mailer {
	return &SESMailer{
		client: client,
		sender: sender,
		logger: logger,
	}
}

// Send delivers one plain-text email
func (m *SESMailer) Send(ctx context.Context, to, subject, body string) error {
	_, err := m.client.SendEmail(ctx, &sesv2.SendEmailInput{
		FromEmailAddress: aws.String(m.sender),
		Destination: &types.Destination{
			ToAddresses: []string{to},
		},
		Content: &types.EmailContent{
			Simple: &types.Message{
				Subject: &types.Content{
					Data: aws.String(subject),
				},
				Body: &types.Body{
					Text: &types.Content{
						Data: aws.String(body),
					},
				},
			},
		},
	})
	if err != nil {
		return err
	}

	m.logger.Debug("Email sent",
		zap.String("to", to),
		zap.String("subject", subject),
	)

	return nil
}

// NoopMailer is a Mailer that drops everything, used when email delivery is
// disabled
type NoopMailer struct {
	logger *zap.Logger
}

// NewNoopMailer creates a mailer that logs and discards every message
func NewNoopMailer(logger *zap.Logger) ports.Mailer {
	return &NoopMailer{logger: logger}
}

// Send logs the message and discards it
func (m *NoopMailer) Send(_ context.Context, to, subject, _ string) error {
	m.logger.Debug("Email delivery disabled, dropping message",
		zap.String("to", to),
		zap.String("subject", subject),
	)
	return nil
}
