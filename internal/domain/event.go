package domain

import (
	"context"
	"time"
)

// Event is a capacity-limited event that guests register for by invitation.
// swagger:model Event
type Event struct {
	ID                   string    `json:"id"`
	Name                 string    `json:"name"`
	Description          string    `json:"description"`
	Location             string    `json:"location"`
	StartsAt             time.Time `json:"starts_at"`
	EndsAt               time.Time `json:"ends_at"`
	Capacity             int       `json:"capacity"`
	CurrentRegistrations int       `json:"current_registrations"`
	WaitlistEnabled      bool      `json:"waitlist_enabled"`
	RegistrationOpen     bool      `json:"registration_open"`
	CreatedAt            time.Time `json:"created_at"`
	UpdatedAt            time.Time `json:"updated_at"`
}

// AvailableSeats returns capacity minus the seats already confirmed.
func (e *Event) AvailableSeats() int {
	return e.Capacity - e.CurrentRegistrations
}

// EventStore defines event storage. ReserveSeats and ReleaseSeats are the only
// write paths to current_registrations and must each be a single conditional update.
type EventStore interface {
	GetByID(ctx context.Context, id string) (*Event, error)
	// ReserveSeats adds seats to current_registrations only if the result stays
	// within capacity. reserved is false when there was not enough room.
	ReserveSeats(ctx context.Context, eventID string, seats int) (reserved bool, err error)
	// ReleaseSeats subtracts seats from current_registrations. Going below zero
	// returns ErrCapacityInvariant.
	ReleaseSeats(ctx context.Context, eventID string, seats int) error
}
