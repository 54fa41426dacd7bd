package memory

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"guestregistration/internal/domain"
)

type eventStore struct{ st *state }

func (s *eventStore) GetByID(_ context.Context, id string) (*domain.Event, error) {
	e, ok := s.st.events[id]
	if !ok {
		return nil, domain.ErrEventNotFound
	}
	return &e, nil
}

func (s *eventStore) ReserveSeats(_ context.Context, eventID string, seats int) (bool, error) {
	if seats <= 0 {
		return false, fmt.Errorf("%w: reserve %d seats", domain.ErrCapacityInvariant, seats)
	}
	e, ok := s.st.events[eventID]
	if !ok {
		return false, domain.ErrEventNotFound
	}
	if e.CurrentRegistrations+seats > e.Capacity {
		return false, nil
	}
	e.CurrentRegistrations += seats
	e.UpdatedAt = time.Now()
	s.st.events[eventID] = e
	return true, nil
}

func (s *eventStore) ReleaseSeats(_ context.Context, eventID string, seats int) error {
	if seats <= 0 {
		return fmt.Errorf("%w: release %d seats", domain.ErrCapacityInvariant, seats)
	}
	e, ok := s.st.events[eventID]
	if !ok {
		return domain.ErrEventNotFound
	}
	if e.CurrentRegistrations-seats < 0 {
		return fmt.Errorf("%w: release %d seats from event %s", domain.ErrCapacityInvariant, seats, eventID)
	}
	e.CurrentRegistrations -= seats
	e.UpdatedAt = time.Now()
	s.st.events[eventID] = e
	return nil
}

type invitationStore struct{ st *state }

func (s *invitationStore) Create(_ context.Context, inv *domain.Invitation) error {
	if inv.ID == "" {
		inv.ID = uuid.New().String()
	}
	if _, ok := s.st.events[inv.EventID]; !ok {
		return domain.ErrEventNotFound
	}
	for _, existing := range s.st.invitations {
		if existing.Token == inv.Token {
			return domain.ErrDuplicateIdentifier
		}
	}
	s.st.invitations[inv.ID] = *inv
	return nil
}

func (s *invitationStore) GetByToken(_ context.Context, token string) (*domain.Invitation, error) {
	for _, inv := range s.st.invitations {
		if inv.Token == token {
			return &inv, nil
		}
	}
	return nil, domain.ErrInvitationNotFound
}

// GetByTokenForUpdate needs no extra locking: units of work are serialized.
func (s *invitationStore) GetByTokenForUpdate(ctx context.Context, token string) (*domain.Invitation, error) {
	return s.GetByToken(ctx, token)
}

func (s *invitationStore) Consume(_ context.Context, invitationID string, usedAt time.Time) error {
	inv, ok := s.st.invitations[invitationID]
	if !ok {
		return domain.ErrInvitationNotFound
	}
	if inv.IsUsed {
		return domain.ErrInvitationAlreadyUsed
	}
	inv.IsUsed = true
	inv.UsedAt = &usedAt
	s.st.invitations[invitationID] = inv
	return nil
}

type registrantStore struct{ st *state }

func (s *registrantStore) Create(_ context.Context, reg *domain.Registrant) error {
	if reg.ID == "" {
		reg.ID = uuid.New().String()
	}
	for _, existing := range s.st.registrants {
		if existing.InvitationID == reg.InvitationID {
			return domain.ErrInvitationAlreadyUsed
		}
		if existing.RegistrationID == reg.RegistrationID || existing.CheckInToken == reg.CheckInToken {
			return domain.ErrDuplicateIdentifier
		}
	}
	s.st.registrants[reg.ID] = *reg
	return nil
}

func (s *registrantStore) GetByID(_ context.Context, id string) (*domain.Registrant, error) {
	reg, ok := s.st.registrants[id]
	if !ok {
		return nil, domain.ErrRegistrantNotFound
	}
	return &reg, nil
}

func (s *registrantStore) GetByIDForUpdate(ctx context.Context, id string) (*domain.Registrant, error) {
	return s.GetByID(ctx, id)
}

func (s *registrantStore) GetByCheckInToken(_ context.Context, token string) (*domain.Registrant, error) {
	for _, reg := range s.st.registrants {
		if reg.CheckInToken == token {
			return &reg, nil
		}
	}
	return nil, domain.ErrRegistrantNotFound
}

func (s *registrantStore) Cancel(_ context.Context, id string, at time.Time) error {
	reg, ok := s.st.registrants[id]
	if !ok {
		return domain.ErrRegistrantNotFound
	}
	if reg.Status == domain.StatusCancelled {
		return domain.ErrAlreadyCancelled
	}
	reg.Status = domain.StatusCancelled
	reg.CancelledAt = &at
	reg.UpdatedAt = at
	s.st.registrants[id] = reg
	return nil
}

func (s *registrantStore) MarkCheckedIn(_ context.Context, id string, at time.Time) error {
	reg, ok := s.st.registrants[id]
	if !ok {
		return domain.ErrRegistrantNotFound
	}
	if reg.CheckedInAt != nil {
		return domain.ErrAlreadyCheckedIn
	}
	reg.CheckedInAt = &at
	reg.UpdatedAt = at
	s.st.registrants[id] = reg
	return nil
}

type companionStore struct{ st *state }

func (s *companionStore) Create(_ context.Context, c *domain.Companion) error {
	if c.ID == "" {
		c.ID = uuid.New().String()
	}
	if _, ok := s.st.registrants[c.RegistrantID]; !ok {
		return domain.ErrRegistrantNotFound
	}
	for _, existing := range s.st.companions {
		if existing.RegistrantID == c.RegistrantID ||
			existing.RegistrationID == c.RegistrationID ||
			existing.CheckInToken == c.CheckInToken {
			return domain.ErrDuplicateIdentifier
		}
	}
	s.st.companions[c.ID] = *c
	return nil
}

func (s *companionStore) GetByRegistrantID(_ context.Context, registrantID string) (*domain.Companion, error) {
	for _, c := range s.st.companions {
		if c.RegistrantID == registrantID {
			return &c, nil
		}
	}
	return nil, domain.ErrNotFound
}

func (s *companionStore) GetByCheckInToken(_ context.Context, token string) (*domain.Companion, error) {
	for _, c := range s.st.companions {
		if c.CheckInToken == token {
			return &c, nil
		}
	}
	return nil, domain.ErrNotFound
}

func (s *companionStore) MarkCheckedIn(_ context.Context, id string, at time.Time) error {
	c, ok := s.st.companions[id]
	if !ok {
		return domain.ErrNotFound
	}
	if c.CheckedInAt != nil {
		return domain.ErrAlreadyCheckedIn
	}
	c.CheckedInAt = &at
	s.st.companions[id] = c
	return nil
}
