package domain

import "context"

// Mailer sends a single email. Implementations live in adapters.
type Mailer interface {
	Send(to, subject, htmlBody, textBody string) error
}

// CalendarInvite is the data rendered into a meeting invite email.
type CalendarInvite struct {
	MeetingTitle string
	EventName    string
	Date         string
	StartTime    string
	EndTime      string
	Location     string
	Recipients   []string
}

// EmailTemplateRenderer renders a named email template into subject, html
// and text bodies.
type EmailTemplateRenderer interface {
	Render(templateName string, data interface{}) (subject, htmlBody, textBody string, err error)
}

// EmailService sends product emails.
type EmailService interface {
	SendCalendarInvite(ctx context.Context, invite *CalendarInvite) error
}
