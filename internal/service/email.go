package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/resend/resend-go/v2"
	"github.com/templui/sfss/internal/logger"
	"github.com/templui/sfss/internal/model"
)

var ErrEmailNotConfigured = errors.New("email service not configured (missing RESEND_API_KEY)")

type EmailService struct {
	client    *resend.Client
	fromEmail string
	isDev     bool
	appURL    string
	appName   string
	log       *slog.Logger
}

func NewEmailService(apiKey, fromEmail, appURL, appName string, isDev bool) *EmailService {
	var client *resend.Client
	if apiKey != "" && !isDev {
		client = resend.NewClient(apiKey)
	}

	return &EmailService{
		client:    client,
		fromEmail: fromEmail,
		isDev:     isDev,
		appURL:    appURL,
		appName:   appName,
		log:       logger.Component("email"),
	}
}

func (s *EmailService) downloadURL(share *model.ShareRecord) string {
	return fmt.Sprintf("%s/api/upload/download/%s", s.appURL, share.ID)
}

// SendShareInvitation mails every recipient separately so addresses are not disclosed to each other
func (s *EmailService) SendShareInvitation(ctx context.Context, share *model.ShareRecord) error {
	subject, body := shareInvitationTemplate(share.FileName, s.downloadURL(share), share.ExpiresAt, share.AccessCode != nil, s.appName)

	var errs []error
	for _, to := range share.TargetRecipients {
		err := s.send(ctx, "share_invitation", to, subject, body)
		if err != nil {
			errs = append(errs, fmt.Errorf("%s: %w", to, err))
		}
	}
	return errors.Join(errs...)
}

func (s *EmailService) SendFirstAccessNotice(ctx context.Context, share *model.ShareRecord, accessedBy string) error {
	if share.OwnerEmail == "" {
		return nil
	}

	accessedAt := share.CreatedAt
	if share.FirstAccessedAt != nil {
		accessedAt = *share.FirstAccessedAt
	}

	subject, body := firstAccessTemplate(share.FileName, accessedBy, accessedAt, s.appName)
	return s.send(ctx, "first_access", share.OwnerEmail, subject, body)
}

func (s *EmailService) send(ctx context.Context, kind, to, subject, body string) error {
	if s.isDev {
		s.log.Info("email sent (dev mode)", "type", kind, "to", to, "subject", subject)
		return nil
	}

	if s.client == nil {
		return ErrEmailNotConfigured
	}

	params := &resend.SendEmailRequest{
		From:    s.fromEmail,
		To:      []string{to},
		Subject: subject,
		Text:    body,
	}

	_, err := s.client.Emails.SendWithContext(ctx, params)
	if err != nil {
		return err
	}

	s.log.Info("email sent", "type", kind, "to", to)
	return nil
}
