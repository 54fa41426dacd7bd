package domain

import "context"

// EmailAttachment is a file attached to an outgoing email.
type EmailAttachment struct {
	Filename    string
	ContentType string
	Data        []byte
}

// EmailMessage is a fully rendered email ready for delivery.
type EmailMessage struct {
	To          string
	Subject     string
	HTML        string
	Text        string
	Attachments []EmailAttachment
}

// Mailer defines the contract for sending emails (infrastructure port).
type Mailer interface {
	Send(ctx context.Context, msg *EmailMessage) error
}

// EmailTemplateRenderer renders email content from a named template with the given data.
type EmailTemplateRenderer interface {
	Render(templateName string, data any) (subject, htmlBody, textBody string, err error)
}

// RegistrationEmailData holds data for registration notifications.
type RegistrationEmailData struct {
	Email          string
	Name           string
	RegistrationID string
	EventName      string
	EventLocation  string
	EventStartsAt  string
	IsCompanion    bool
	PrimaryName    string // set for companion emails
	CompanionName  string // set for primary emails when a companion registered
	HasQRCode      bool
	HasCalendar    bool
}

// EmailService defines the contract for sending domain-level emails.
type EmailService interface {
	SendRegistrationConfirmation(ctx context.Context, data *RegistrationEmailData, attachments []EmailAttachment) error
	SendWaitlistNotice(ctx context.Context, data *RegistrationEmailData) error
}
