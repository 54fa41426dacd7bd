package services

import (
	"context"
	"errors"
	"fmt"

	"guestregistration/internal/domain"
)

// maxPartySize is a registrant plus at most one companion.
const maxPartySize = 2

// CapacityLedger makes the confirm-or-waitlist decision for a party. The
// decision and the seat reservation are one conditional update in the store,
// so there is no window between reading free seats and taking them. Whether a
// waitlist is acceptable is the caller's policy, not the ledger's.
type CapacityLedger struct{}

// Admit reserves partySize seats on eventID if they fit and reports
// CONFIRMED; otherwise the counter is left untouched and WAITLISTED is returned.
func (CapacityLedger) Admit(ctx context.Context, events domain.EventStore, eventID string, partySize int) (domain.AdmissionOutcome, error) {
	if partySize < 1 || partySize > maxPartySize {
		return "", fmt.Errorf("%w: party size %d", domain.ErrInvalidInput, partySize)
	}
	reserved, err := events.ReserveSeats(ctx, eventID, partySize)
	if err != nil {
		if errors.Is(err, domain.ErrEventNotFound) || errors.Is(err, domain.ErrCapacityInvariant) {
			return "", err
		}
		return "", fmt.Errorf("reserve seats: %w", err)
	}
	if reserved {
		return domain.AdmissionConfirmed, nil
	}
	return domain.AdmissionWaitlisted, nil
}

// Release gives seats held by a confirmed party back to the event.
func (CapacityLedger) Release(ctx context.Context, events domain.EventStore, eventID string, seats int) error {
	if err := events.ReleaseSeats(ctx, eventID, seats); err != nil {
		if errors.Is(err, domain.ErrEventNotFound) || errors.Is(err, domain.ErrCapacityInvariant) {
			return err
		}
		return fmt.Errorf("release seats: %w", err)
	}
	return nil
}
