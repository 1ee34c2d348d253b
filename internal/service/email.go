package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"rental-engine-backend/internal/logger"

	"github.com/sendgrid/sendgrid-go"
	"github.com/sendgrid/sendgrid-go/helpers/mail"
)

type sendGridEmailService struct {
	client    *sendgrid.Client
	fromEmail string
	fromName  string
}

// NewEmailService returns a SendGrid sender, or a log-only sender when no API key is set.
func NewEmailService(apiKey, fromEmail, fromName string) EmailService {
	if apiKey == "" {
		logger.Warn("SendGrid API key not configured, emails will only be logged")
		return &logEmailService{}
	}
	return &sendGridEmailService{
		client:    sendgrid.NewSendClient(apiKey),
		fromEmail: fromEmail,
		fromName:  fromName,
	}
}

func (s *sendGridEmailService) Send(ctx context.Context, to, subject, html string) error {
	from := mail.NewEmail(s.fromName, s.fromEmail)
	recipient := mail.NewEmail("", to)
	message := mail.NewSingleEmail(from, subject, recipient, "", html)

	logger.ExternalServiceCall("SendGrid", "Send", "to", to, "subject", subject)
	response, err := s.client.SendWithContext(ctx, message)
	if err != nil {
		logger.ExternalServiceResult("SendGrid", "Send", err)
		return fmt.Errorf("failed to send email: %w", err)
	}
	if response.StatusCode >= 400 {
		err := fmt.Errorf("sendgrid error: status %d, body: %s", response.StatusCode, response.Body)
		logger.ExternalServiceResult("SendGrid", "Send", err)
		return err
	}
	logger.ExternalServiceResult("SendGrid", "Send", nil, "status", response.StatusCode)
	return nil
}

type logEmailService struct{}

func (s *logEmailService) Send(ctx context.Context, to, subject, html string) error {
	logger.Info("Email (not sent, no provider configured)", "to", to, "subject", subject)
	return nil
}

type retryingEmailService struct {
	inner      EmailService
	maxRetries int
	backoff    func(attempt int) time.Duration
}

// WithRetry retries failed sends with quadratic backoff (1s, 4s, 9s, ...),
// giving up early if ctx ends.
func WithRetry(inner EmailService, maxRetries int) EmailService {
	return &retryingEmailService{
		inner:      inner,
		maxRetries: maxRetries,
		backoff: func(attempt int) time.Duration {
			return time.Duration(attempt*attempt) * time.Second
		},
	}
}

func (s *retryingEmailService) Send(ctx context.Context, to, subject, html string) error {
	var err error
	for attempt := 0; ; attempt++ {
		if err = s.inner.Send(ctx, to, subject, html); err == nil {
			return nil
		}
		if attempt >= s.maxRetries {
			break
		}
		wait := s.backoff(attempt + 1)
		logger.Warn("Retrying email", "to", to, "attempt", attempt+1, "max_retries", s.maxRetries, "backoff", wait, "error", err)
		select {
		case <-ctx.Done():
			return errors.Join(err, ctx.Err())
		case <-time.After(wait):
		}
	}
	return fmt.Errorf("email to %s failed after %d retries: %w", to, s.maxRetries, err)
}
