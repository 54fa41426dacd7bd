package domain

import "errors"

// Sentinel errors shared across services, repositories and controllers.
var (
	ErrNotFound     = errors.New("not found")
	ErrInvalidInput = errors.New("invalid input")

	ErrInvitationNotFound    = errors.New("invalid invitation")
	ErrInvitationAlreadyUsed = errors.New("invitation already used")
	ErrInvitationExpired     = errors.New("invitation expired")

	ErrEventNotFound      = errors.New("event not found")
	ErrRegistrationClosed = errors.New("registration is closed for this event")
	ErrEventFull          = errors.New("event is full and has no waitlist")

	ErrRegistrantNotFound = errors.New("registrant not found")
	ErrAlreadyCancelled   = errors.New("registration already cancelled")

	ErrCheckInTokenNotFound  = errors.New("check-in token not found")
	ErrRegistrationCancelled = errors.New("registration is cancelled")
	ErrNotConfirmed          = errors.New("registration is not confirmed")
	ErrAlreadyCheckedIn      = errors.New("already checked in")

	// ErrCapacityInvariant means the seat counter would leave [0, capacity].
	// It always indicates a defect and must never be clamped or swallowed.
	ErrCapacityInvariant = errors.New("capacity invariant violated")

	// ErrDuplicateIdentifier is returned when a generated registration ID or
	// check-in token hits a uniqueness constraint.
	ErrDuplicateIdentifier = errors.New("identifier already in use")
)
