// Package mailer sends transactional email. Delivery goes through Resend
// when an API key is configured, otherwise the message is logged so local
// development works without credentials.
package mailer

import (
	"context"
	"fmt"

	"github.com/resend/resend-go/v2"
	"go.uber.org/zap"
)

// Mailer delivers account emails.
type Mailer interface {
	SendVerificationEmail(ctx context.Context, to, link string) error
}

// New picks the delivery backend: Resend when apiKey is set, log fallback
// otherwise.
func New(apiKey, from string, logger *zap.Logger) Mailer {
	if logger == nil {
		logger = zap.NewNop()
	}
	if apiKey == "" {
		logger.Info("no mail API key configured, emails will be logged only")
		return &LogMailer{logger: logger}
	}
	return &ResendMailer{
		client: resend.NewClient(apiKey),
		from:   from,
		logger: logger,
	}
}

// ResendMailer delivers through the Resend API.
type ResendMailer struct {
	client *resend.Client
	from   string
	logger *zap.Logger
}

func (m *ResendMailer) SendVerificationEmail(ctx context.Context, to, link string) error {
	params := &resend.SendEmailRequest{
		From:    m.from,
		To:      []string{to},
		Subject: "Please verify your email",
		Html:    fmt.Sprintf(`Please verify your email by clicking the link below:<br/><a href="%s">%s</a>`, link, link),
	}
	sent, err := m.client.Emails.SendWithContext(ctx, params)
	if err != nil {
		return fmt.Errorf("send verification email: %w", err)
	}
	m.logger.Info("verification email sent",
		zap.String("to", to),
		zap.String("message_id", sent.Id),
	)
	return nil
}

// LogMailer writes the message to the log instead of sending it.
type LogMailer struct {
	logger *zap.Logger
}

func (m *LogMailer) SendVerificationEmail(ctx context.Context, to, link string) error {
	m.logger.Info("verification email (log delivery)",
		zap.String("to", to),
		zap.String("link", link),
	)
	return nil
}
