package domain

import (
	"context"
	"time"
)

// RegistrationStatus is the lifecycle state of a registrant.
type RegistrationStatus string

const (
	StatusConfirmed  RegistrationStatus = "CONFIRMED"
	StatusWaitlisted RegistrationStatus = "WAITLISTED"
	StatusCancelled  RegistrationStatus = "CANCELLED"
)

// CompanionRegistrationSuffix is appended to the primary registration ID to
// form the companion's registration ID.
const CompanionRegistrationSuffix = "-P1"

// PersonDetails is the contact information collected for a registrant or companion.
type PersonDetails struct {
	Name    string `json:"name"`
	Company string `json:"company"`
	Title   string `json:"title"`
	Email   string `json:"email"`
}

// Registrant is the primary attendee admitted through one invitation.
// swagger:model Registrant
type Registrant struct {
	ID             string             `json:"id"`
	EventID        string             `json:"event_id"`
	InvitationID   string             `json:"invitation_id"`
	Name           string             `json:"name"`
	Company        string             `json:"company"`
	Title          string             `json:"title"`
	Email          string             `json:"email"`
	Status         RegistrationStatus `json:"status"`
	RegistrationID string             `json:"registration_id"`
	CheckInToken   string             `json:"qr_code"`
	CheckedInAt    *time.Time         `json:"checked_in_at,omitempty"`
	CancelledAt    *time.Time         `json:"cancelled_at,omitempty"`
	HasCompanion   bool               `json:"has_companion"`
	CreatedAt      time.Time          `json:"created_at"`
	UpdatedAt      time.Time          `json:"updated_at"`
}

// PartySize is the number of seats the registrant holds when confirmed.
func (r *Registrant) PartySize() int {
	if r.HasCompanion {
		return 2
	}
	return 1
}

// Companion is the optional plus-one owned by a registrant. It shares the
// registrant's admission outcome but has its own identity and check-in token.
// swagger:model Companion
type Companion struct {
	ID             string     `json:"id"`
	RegistrantID   string     `json:"registrant_id"`
	Name           string     `json:"name"`
	Company        string     `json:"company"`
	Title          string     `json:"title"`
	Email          string     `json:"email"`
	RegistrationID string     `json:"registration_id"`
	CheckInToken   string     `json:"qr_code"`
	CheckedInAt    *time.Time `json:"checked_in_at,omitempty"`
	CreatedAt      time.Time  `json:"created_at"`
}

// RegistrantStore defines storage operations for registrants.
type RegistrantStore interface {
	Create(ctx context.Context, reg *Registrant) error
	GetByID(ctx context.Context, id string) (*Registrant, error)
	// GetByIDForUpdate locks the registrant row until the unit of work ends.
	GetByIDForUpdate(ctx context.Context, id string) (*Registrant, error)
	GetByCheckInToken(ctx context.Context, token string) (*Registrant, error)
	// Cancel moves a non-cancelled registrant to CANCELLED. A registrant that is
	// already cancelled yields ErrAlreadyCancelled.
	Cancel(ctx context.Context, id string, at time.Time) error
	// MarkCheckedIn sets checked_in_at once; a second call yields ErrAlreadyCheckedIn.
	MarkCheckedIn(ctx context.Context, id string, at time.Time) error
}

// CompanionStore defines storage operations for companions.
type CompanionStore interface {
	Create(ctx context.Context, c *Companion) error
	GetByRegistrantID(ctx context.Context, registrantID string) (*Companion, error)
	GetByCheckInToken(ctx context.Context, token string) (*Companion, error)
	MarkCheckedIn(ctx context.Context, id string, at time.Time) error
}
