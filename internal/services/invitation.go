package services

import (
	"context"
	"crypto/rand"
	"encoding/base64"
	"errors"
	"fmt"
	"strings"
	"time"

	"guestregistration/internal/domain"
)

const invitationTokenBytes = 32

// InvitationLedger owns the invitation lifecycle: issued, then consumed
// exactly once or left to expire. It knows nothing about capacity or registrants.
type InvitationLedger struct {
	now func() time.Time
	ttl time.Duration
}

// NewInvitationLedger returns a ledger issuing invitations valid for ttl.
// A zero ttl means domain.DefaultInvitationTTL.
func NewInvitationLedger(ttl time.Duration) *InvitationLedger {
	if ttl <= 0 {
		ttl = domain.DefaultInvitationTTL
	}
	return &InvitationLedger{now: time.Now, ttl: ttl}
}

// Validate locks the invitation identified by token and checks, in order,
// that it exists, is unused and has not expired.
func (l *InvitationLedger) Validate(ctx context.Context, store domain.InvitationStore, token string) (*domain.Invitation, error) {
	token = strings.TrimSpace(token)
	if token == "" {
		return nil, domain.ErrInvitationNotFound
	}
	inv, err := store.GetByTokenForUpdate(ctx, token)
	if err != nil {
		if errors.Is(err, domain.ErrInvitationNotFound) {
			return nil, domain.ErrInvitationNotFound
		}
		return nil, fmt.Errorf("get invitation: %w", err)
	}
	if err := l.check(inv); err != nil {
		return nil, err
	}
	return inv, nil
}

// Inspect runs the same checks as Validate without locking the row. The
// answer is advisory: Submit re-validates inside its unit of work.
func (l *InvitationLedger) Inspect(ctx context.Context, store domain.InvitationStore, token string) (*domain.Invitation, error) {
	token = strings.TrimSpace(token)
	if token == "" {
		return nil, domain.ErrInvitationNotFound
	}
	inv, err := store.GetByToken(ctx, token)
	if err != nil {
		if errors.Is(err, domain.ErrInvitationNotFound) {
			return nil, domain.ErrInvitationNotFound
		}
		return nil, fmt.Errorf("get invitation: %w", err)
	}
	if err := l.check(inv); err != nil {
		return nil, err
	}
	return inv, nil
}

func (l *InvitationLedger) check(inv *domain.Invitation) error {
	if inv.IsUsed {
		return domain.ErrInvitationAlreadyUsed
	}
	if inv.Expired(l.now()) {
		return domain.ErrInvitationExpired
	}
	return nil
}

// Consume marks a validated invitation as used. Consuming an invitation that
// is already used is an error, never a no-op.
func (l *InvitationLedger) Consume(ctx context.Context, store domain.InvitationStore, inv *domain.Invitation) error {
	usedAt := l.now()
	if err := store.Consume(ctx, inv.ID, usedAt); err != nil {
		if errors.Is(err, domain.ErrInvitationAlreadyUsed) || errors.Is(err, domain.ErrInvitationNotFound) {
			return err
		}
		return fmt.Errorf("consume invitation: %w", err)
	}
	inv.IsUsed = true
	inv.UsedAt = &usedAt
	return nil
}

// Issue creates a fresh, unused invitation for email to register for eventID.
func (l *InvitationLedger) Issue(ctx context.Context, store domain.InvitationStore, eventID, email string) (*domain.Invitation, error) {
	email = strings.TrimSpace(strings.ToLower(email))
	if !emailRegexp.MatchString(email) {
		return nil, fmt.Errorf("%w: invalid email format", domain.ErrInvalidInput)
	}
	if strings.TrimSpace(eventID) == "" {
		return nil, fmt.Errorf("%w: event id is required", domain.ErrInvalidInput)
	}
	token, err := generateInvitationToken()
	if err != nil {
		return nil, fmt.Errorf("generate invitation token: %w", err)
	}
	now := l.now()
	inv := &domain.Invitation{
		EventID:   eventID,
		Email:     email,
		Token:     token,
		IsUsed:    false,
		ExpiresAt: now.Add(l.ttl),
		CreatedAt: now,
	}
	if err := store.Create(ctx, inv); err != nil {
		if errors.Is(err, domain.ErrEventNotFound) {
			return nil, err
		}
		return nil, fmt.Errorf("create invitation: %w", err)
	}
	return inv, nil
}

func generateInvitationToken() (string, error) {
	b := make([]byte, invitationTokenBytes)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	return base64.RawURLEncoding.EncodeToString(b), nil
}
