package domain

import (
	"context"
	"time"
)

// AdmissionOutcome is the capacity decision for a party.
type AdmissionOutcome string

const (
	AdmissionConfirmed  AdmissionOutcome = "CONFIRMED"
	AdmissionWaitlisted AdmissionOutcome = "WAITLISTED"
)

// Status maps the outcome onto the registrant status it produces.
func (o AdmissionOutcome) Status() RegistrationStatus {
	if o == AdmissionConfirmed {
		return StatusConfirmed
	}
	return StatusWaitlisted
}

// SubmitRegistrationInput is what a guest submits with an invitation token.
type SubmitRegistrationInput struct {
	InvitationToken string
	Registrant      PersonDetails
	Companion       *PersonDetails
}

// PartySize is 2 when a companion is included, otherwise 1.
func (in *SubmitRegistrationInput) PartySize() int {
	if in.Companion != nil {
		return 2
	}
	return 1
}

// RegistrationResult is the committed outcome of a submission.
// swagger:model RegistrationResult
type RegistrationResult struct {
	Registrant *Registrant      `json:"registrant"`
	Companion  *Companion       `json:"companion,omitempty"`
	Outcome    AdmissionOutcome `json:"outcome"`
}

// CheckInKind tells whether a check-in token belonged to the registrant or the companion.
type CheckInKind string

const (
	CheckInPrimary   CheckInKind = "primary"
	CheckInCompanion CheckInKind = "companion"
)

// CheckInResult describes a successful check-in.
// swagger:model CheckInResult
type CheckInResult struct {
	Kind           CheckInKind `json:"kind"`
	RegistrationID string      `json:"registration_id"`
	Name           string      `json:"name"`
	EventID        string      `json:"event_id"`
	CheckedInAt    time.Time   `json:"checked_in_at"`
}

// RegistrationService is the admission core exposed to the delivery layer.
type RegistrationService interface {
	// InspectInvitation is an advisory, non-locking check of an invitation token.
	InspectInvitation(ctx context.Context, token string) (*InvitationSummary, error)
	Submit(ctx context.Context, in *SubmitRegistrationInput) (*RegistrationResult, error)
	Cancel(ctx context.Context, registrantID string) (*Registrant, error)
	CheckIn(ctx context.Context, checkInToken string) (*CheckInResult, error)
}
