package services

import (
	"context"
	"fmt"
	"log/slog"

	"guestregistration/internal/domain"
)

const (
	templateRegistrationConfirmed  = "registration_confirmed"
	templateRegistrationWaitlisted = "registration_waitlisted"
)

type emailService struct {
	mailer   domain.Mailer
	renderer domain.EmailTemplateRenderer
	logger   *slog.Logger
}

// NewEmailService returns an EmailService that uses the given Mailer and template renderer.
func NewEmailService(mailer domain.Mailer, renderer domain.EmailTemplateRenderer, logger *slog.Logger) domain.EmailService {
	return &emailService{mailer: mailer, renderer: renderer, logger: logger}
}

// SendRegistrationConfirmation sends the "registration_confirmed" template with
// whatever attachments the caller managed to render.
func (s *emailService) SendRegistrationConfirmation(ctx context.Context, data *domain.RegistrationEmailData, attachments []domain.EmailAttachment) error {
	if data == nil {
		return fmt.Errorf("registration email data is nil")
	}
	return s.send(ctx, templateRegistrationConfirmed, data, attachments)
}

// SendWaitlistNotice sends the "registration_waitlisted" template. Waitlisted
// parties get no check-in artifacts.
func (s *emailService) SendWaitlistNotice(ctx context.Context, data *domain.RegistrationEmailData) error {
	if data == nil {
		return fmt.Errorf("waitlist email data is nil")
	}
	return s.send(ctx, templateRegistrationWaitlisted, data, nil)
}

func (s *emailService) send(ctx context.Context, template string, data *domain.RegistrationEmailData, attachments []domain.EmailAttachment) error {
	subject, htmlBody, textBody, err := s.renderer.Render(template, data)
	if err != nil {
		return fmt.Errorf("failed to render %s template: %w", template, err)
	}
	msg := &domain.EmailMessage{
		To:          data.Email,
		Subject:     subject,
		HTML:        htmlBody,
		Text:        textBody,
		Attachments: attachments,
	}
	if err := s.mailer.Send(ctx, msg); err != nil {
		return fmt.Errorf("failed to send %s email: %w", template, err)
	}
	s.logger.InfoContext(ctx, "email sent",
		"template", template,
		"to", data.Email,
		"registration_id", data.RegistrationID,
		"attachments", len(attachments),
	)
	return nil
}
