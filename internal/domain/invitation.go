package domain

import (
	"context"
	"time"
)

// DefaultInvitationTTL is how long a freshly issued invitation stays redeemable.
const DefaultInvitationTTL = 30 * 24 * time.Hour

// Invitation is a single-use, expiring credential to register for one event.
// swagger:model Invitation
type Invitation struct {
	ID        string     `json:"id"`
	EventID   string     `json:"event_id"`
	Email     string     `json:"email"`
	Token     string     `json:"-"`
	IsUsed    bool       `json:"is_used"`
	UsedAt    *time.Time `json:"used_at,omitempty"`
	ExpiresAt time.Time  `json:"expires_at"`
	CreatedAt time.Time  `json:"created_at"`
}

// Expired reports whether now is past the invitation's expiry.
func (i *Invitation) Expired(now time.Time) bool {
	return now.After(i.ExpiresAt)
}

// InvitationSummary is the advisory view of an invitation shown before registering.
// swagger:model InvitationSummary
type InvitationSummary struct {
	Email           string    `json:"email"`
	ExpiresAt       time.Time `json:"expires_at"`
	EventID         string    `json:"event_id"`
	EventName       string    `json:"event_name"`
	EventStartsAt   time.Time `json:"event_starts_at"`
	EventLocation   string    `json:"event_location"`
	WaitlistEnabled bool      `json:"waitlist_enabled"`
	SeatsAvailable  bool      `json:"seats_available"`
}

// InvitationStore defines storage operations for invitations.
type InvitationStore interface {
	Create(ctx context.Context, inv *Invitation) error
	GetByToken(ctx context.Context, token string) (*Invitation, error)
	// GetByTokenForUpdate is GetByToken that also locks the row until the
	// surrounding unit of work ends.
	GetByTokenForUpdate(ctx context.Context, token string) (*Invitation, error)
	// Consume flips is_used to true. An invitation that is already used yields
	// ErrInvitationAlreadyUsed.
	Consume(ctx context.Context, invitationID string, usedAt time.Time) error
}
