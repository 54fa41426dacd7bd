package services

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"guestregistration/internal/domain"
	"guestregistration/internal/monitoring"
)

const (
	effectPrimaryNotification   = "primary_notification"
	effectCompanionNotification = "companion_notification"
	effectSheetSync             = "sheet_sync"

	artifactQRCode   = "qr_code"
	artifactCalendar = "calendar"

	eventTimeLayout = "Monday, January 2, 2006 15:04 MST"
)

type sideEffectRunner struct {
	emails   domain.EmailService
	qr       domain.CheckInArtifactRenderer
	calendar domain.CalendarRenderer
	sheets   domain.RegistrantSheetSyncer
	logger   *slog.Logger
}

// NewSideEffectRunner returns the handler that performs every post-commit
// side effect of a registration. qr, calendar and sheets may be nil, in which
// case the matching attachment or sync is skipped.
func NewSideEffectRunner(
	emails domain.EmailService,
	qr domain.CheckInArtifactRenderer,
	calendar domain.CalendarRenderer,
	sheets domain.RegistrantSheetSyncer,
	logger *slog.Logger,
) domain.SideEffectHandler {
	return &sideEffectRunner{
		emails:   emails,
		qr:       qr,
		calendar: calendar,
		sheets:   sheets,
		logger:   logger,
	}
}

// Handle runs each effect on its own; a failure or panic in one is logged and
// counted and the rest still run.
func (r *sideEffectRunner) Handle(ctx context.Context, msg *domain.RegistrationCommitted) {
	if msg == nil {
		return
	}
	r.run(ctx, msg, effectPrimaryNotification, r.notifyPrimary)
	if msg.Companion != nil {
		r.run(ctx, msg, effectCompanionNotification, r.notifyCompanion)
	}
	if r.sheets != nil {
		r.run(ctx, msg, effectSheetSync, r.syncSheet)
	}
}

func (r *sideEffectRunner) run(ctx context.Context, msg *domain.RegistrationCommitted, effect string, fn func(context.Context, *domain.RegistrationCommitted) error) {
	defer func() {
		if p := recover(); p != nil {
			monitoring.TrackSideEffectFailure(effect)
			r.logger.ErrorContext(ctx, "side effect panicked",
				"effect", effect,
				"registration_id", msg.Registrant.RegistrationID,
				"event_id", msg.Event.ID,
				"panic", fmt.Sprint(p),
			)
		}
	}()
	if err := fn(ctx, msg); err != nil {
		monitoring.TrackSideEffectFailure(effect)
		r.logger.ErrorContext(ctx, "side effect failed",
			"effect", effect,
			"registration_id", msg.Registrant.RegistrationID,
			"event_id", msg.Event.ID,
			"err", err,
		)
	}
}

func (r *sideEffectRunner) notifyPrimary(ctx context.Context, msg *domain.RegistrationCommitted) error {
	reg := msg.Registrant
	data := newRegistrationEmailData(&msg.Event, reg.Name, reg.Email, reg.RegistrationID)
	if msg.Companion != nil {
		data.CompanionName = msg.Companion.Name
	}
	if msg.Outcome != domain.AdmissionConfirmed {
		return r.emails.SendWaitlistNotice(ctx, data)
	}
	attachments := r.renderArtifacts(ctx, &msg.Event, reg.CheckInToken, domain.CalendarAttendee{
		Name:           reg.Name,
		Email:          reg.Email,
		RegistrationID: reg.RegistrationID,
	}, data)
	return r.emails.SendRegistrationConfirmation(ctx, data, attachments)
}

func (r *sideEffectRunner) notifyCompanion(ctx context.Context, msg *domain.RegistrationCommitted) error {
	c := msg.Companion
	data := newRegistrationEmailData(&msg.Event, c.Name, c.Email, c.RegistrationID)
	data.IsCompanion = true
	data.PrimaryName = msg.Registrant.Name
	if msg.Outcome != domain.AdmissionConfirmed {
		return r.emails.SendWaitlistNotice(ctx, data)
	}
	attachments := r.renderArtifacts(ctx, &msg.Event, c.CheckInToken, domain.CalendarAttendee{
		Name:           c.Name,
		Email:          c.Email,
		RegistrationID: c.RegistrationID,
	}, data)
	return r.emails.SendRegistrationConfirmation(ctx, data, attachments)
}

func (r *sideEffectRunner) syncSheet(ctx context.Context, msg *domain.RegistrationCommitted) error {
	return r.sheets.Sync(ctx, &msg.Registrant, msg.Companion, msg.Event.Name)
}

// renderArtifacts renders the check-in image and calendar file for one
// recipient. A renderer that fails is left out; the email goes without it.
func (r *sideEffectRunner) renderArtifacts(ctx context.Context, event *domain.Event, token string, attendee domain.CalendarAttendee, data *domain.RegistrationEmailData) []domain.EmailAttachment {
	var attachments []domain.EmailAttachment
	if r.qr != nil {
		png, err := safeRender(func() ([]byte, error) { return r.qr.Render(token) })
		if err != nil {
			r.artifactFailed(ctx, artifactQRCode, attendee.RegistrationID, err)
		} else {
			data.HasQRCode = true
			attachments = append(attachments, domain.EmailAttachment{
				Filename:    "check-in-" + attendee.RegistrationID + ".png",
				ContentType: "image/png",
				Data:        png,
			})
		}
	}
	if r.calendar != nil {
		ics, err := safeRender(func() ([]byte, error) { return r.calendar.Render(event, attendee) })
		if err != nil {
			r.artifactFailed(ctx, artifactCalendar, attendee.RegistrationID, err)
		} else {
			data.HasCalendar = true
			attachments = append(attachments, domain.EmailAttachment{
				Filename:    "invite.ics",
				ContentType: "text/calendar; charset=utf-8; method=REQUEST",
				Data:        ics,
			})
		}
	}
	return attachments
}

func (r *sideEffectRunner) artifactFailed(ctx context.Context, artifact, registrationID string, err error) {
	monitoring.TrackArtifactFailure(artifact)
	r.logger.WarnContext(ctx, "artifact render failed, sending email without it",
		"artifact", artifact,
		"registration_id", registrationID,
		"err", err,
	)
}

func safeRender(render func() ([]byte, error)) (out []byte, err error) {
	defer func() {
		if p := recover(); p != nil {
			out, err = nil, fmt.Errorf("render panicked: %v", p)
		}
	}()
	return render()
}

func newRegistrationEmailData(event *domain.Event, name, email, registrationID string) *domain.RegistrationEmailData {
	return &domain.RegistrationEmailData{
		Email:          email,
		Name:           name,
		RegistrationID: registrationID,
		EventName:      event.Name,
		EventLocation:  event.Location,
		EventStartsAt:  formatEventTime(event.StartsAt),
	}
}

func formatEventTime(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.Format(eventTimeLayout)
}
