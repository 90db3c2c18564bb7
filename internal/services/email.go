package services

import (
	"context"
	"fmt"
	"log"

	"eventsnap/internal/domain"
)

type emailService struct {
	mailer   domain.Mailer
	renderer domain.EmailTemplateRenderer
}

// NewEmailService returns an EmailService that uses the given Mailer and template renderer.
func NewEmailService(mailer domain.Mailer, renderer domain.EmailTemplateRenderer) domain.EmailService {
	return &emailService{mailer: mailer, renderer: renderer}
}

// SendCalendarInvite renders the "calendar_invite" template and sends it to
// each recipient individually.
func (s *emailService) SendCalendarInvite(ctx context.Context, invite *domain.CalendarInvite) error {
	if invite == nil {
		return fmt.Errorf("calendar invite data is nil")
	}
	subject, htmlBody, textBody, err := s.renderer.Render("calendar_invite", invite)
	if err != nil {
		return fmt.Errorf("failed to render calendar_invite template: %w", err)
	}
	for _, to := range invite.Recipients {
		if err := s.mailer.Send(to, subject, htmlBody, textBody); err != nil {
			return fmt.Errorf("failed to send calendar invite to %s: %w", to, err)
		}
		log.Printf("[EMAIL] Calendar invite sent to %s", to)
	}
	return nil
}
