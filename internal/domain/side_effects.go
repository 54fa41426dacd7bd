package domain

import (
	"context"
	"time"
)

// RegistrationCommitted is the snapshot handed to side effects after a
// submission commits. It is self-contained so it can travel over a queue.
type RegistrationCommitted struct {
	Event       Event            `json:"event"`
	Registrant  Registrant       `json:"registrant"`
	Companion   *Companion       `json:"companion,omitempty"`
	Outcome     AdmissionOutcome `json:"outcome"`
	CommittedAt time.Time        `json:"committed_at"`
}

// SideEffectDispatcher schedules side effects for a committed registration.
// Dispatch never blocks on, nor reports, the side effects themselves.
type SideEffectDispatcher interface {
	Dispatch(ctx context.Context, msg *RegistrationCommitted)
}

// SideEffectHandler runs every side effect for a committed registration,
// isolating each one from the others.
type SideEffectHandler interface {
	Handle(ctx context.Context, msg *RegistrationCommitted)
}

// CheckInArtifactRenderer renders a scannable image for a check-in token.
type CheckInArtifactRenderer interface {
	Render(token string) ([]byte, error)
}

// CalendarAttendee is the person a calendar invite is addressed to.
type CalendarAttendee struct {
	Name           string
	Email          string
	RegistrationID string
}

// CalendarRenderer renders a calendar file for an event and attendee.
type CalendarRenderer interface {
	Render(event *Event, attendee CalendarAttendee) ([]byte, error)
}

// RegistrantSheetSyncer pushes a registrant (and companion) to an external spreadsheet.
type RegistrantSheetSyncer interface {
	Sync(ctx context.Context, registrant *Registrant, companion *Companion, eventName string) error
}
