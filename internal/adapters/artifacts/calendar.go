package artifacts

import (
	"fmt"
	"time"

	ics "github.com/arran4/golang-ical"

	"guestregistration/internal/domain"
)

const defaultEventDuration = 2 * time.Hour

type calendarRenderer struct {
	organizerEmail string
	uidDomain      string
	now            func() time.Time
}

// NewCalendarRenderer returns a renderer producing an iCalendar REQUEST with
// one event and the attendee marked as accepted.
func NewCalendarRenderer(organizerEmail, uidDomain string) domain.CalendarRenderer {
	if uidDomain == "" {
		uidDomain = "guestregistration"
	}
	return &calendarRenderer{organizerEmail: organizerEmail, uidDomain: uidDomain, now: time.Now}
}

func (r *calendarRenderer) Render(event *domain.Event, attendee domain.CalendarAttendee) ([]byte, error) {
	if event == nil || event.StartsAt.IsZero() {
		return nil, fmt.Errorf("event start time is required")
	}
	end := event.EndsAt
	if end.IsZero() || !end.After(event.StartsAt) {
		end = event.StartsAt.Add(defaultEventDuration)
	}

	cal := ics.NewCalendar()
	cal.SetMethod(ics.MethodRequest)
	cal.SetProductId("-//guestregistration//registration//EN")

	now := r.now().UTC()
	vevent := cal.AddEvent(fmt.Sprintf("%s@%s", attendee.RegistrationID, r.uidDomain))
	vevent.SetCreatedTime(now)
	vevent.SetDtStampTime(now)
	vevent.SetModifiedAt(now)
	vevent.SetStartAt(event.StartsAt.UTC())
	vevent.SetEndAt(end.UTC())
	vevent.SetSummary(event.Name)
	if event.Location != "" {
		vevent.SetLocation(event.Location)
	}
	vevent.SetDescription(fmt.Sprintf("Registration ID: %s", attendee.RegistrationID))
	if r.organizerEmail != "" {
		vevent.SetOrganizer("mailto:" + r.organizerEmail)
	}
	if attendee.Email != "" {
		vevent.AddAttendee("mailto:"+attendee.Email,
			ics.CalendarUserTypeIndividual,
			ics.ParticipationStatusAccepted,
			ics.WithCN(attendee.Name),
		)
	}
	return []byte(cal.Serialize()), nil
}
