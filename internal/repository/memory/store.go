// Package memory is an in-process store implementing the same unit-of-work
// contract as the Postgres store. Units of work are serialized and run on a
// private copy of the data that is swapped in only on success, so a failing
// unit leaves nothing behind. It mirrors the relational constraints (unique
// keys, the seat counter bounds) so services behave identically on both.
package memory

import (
	"context"
	"sort"
	"sync"

	"github.com/google/uuid"

	"guestregistration/internal/domain"
)

type state struct {
	events      map[string]domain.Event
	invitations map[string]domain.Invitation
	registrants map[string]domain.Registrant
	companions  map[string]domain.Companion
}

func newState() *state {
	return &state{
		events:      make(map[string]domain.Event),
		invitations: make(map[string]domain.Invitation),
		registrants: make(map[string]domain.Registrant),
		companions:  make(map[string]domain.Companion),
	}
}

func (s *state) clone() *state {
	c := newState()
	for k, v := range s.events {
		c.events[k] = v
	}
	for k, v := range s.invitations {
		c.invitations[k] = v
	}
	for k, v := range s.registrants {
		c.registrants[k] = v
	}
	for k, v := range s.companions {
		c.companions[k] = v
	}
	return c
}

// Store holds all records in memory.
type Store struct {
	mu    sync.Mutex
	state *state
}

// NewStore returns an empty Store.
func NewStore() *Store {
	return &Store{state: newState()}
}

var _ domain.UnitOfWork = (*Store)(nil)

// Do implements domain.UnitOfWork.
func (s *Store) Do(ctx context.Context, fn func(ctx context.Context, stores domain.Stores) error) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	work := s.state.clone()
	if err := fn(ctx, &stores{st: work}); err != nil {
		return err
	}
	s.state = work
	return nil
}

// PutEvent inserts or replaces an event. An empty ID is filled in.
func (s *Store) PutEvent(e domain.Event) domain.Event {
	s.mu.Lock()
	defer s.mu.Unlock()
	if e.ID == "" {
		e.ID = uuid.New().String()
	}
	s.state.events[e.ID] = e
	return e
}

// Event returns the committed copy of an event.
func (s *Store) Event(id string) (domain.Event, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	e, ok := s.state.events[id]
	return e, ok
}

// Invitation returns the committed copy of an invitation.
func (s *Store) Invitation(id string) (domain.Invitation, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	inv, ok := s.state.invitations[id]
	return inv, ok
}

// Registrants returns all committed registrants ordered by creation time.
func (s *Store) Registrants() []domain.Registrant {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]domain.Registrant, 0, len(s.state.registrants))
	for _, r := range s.state.registrants {
		out = append(out, r)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.Before(out[j].CreatedAt) })
	return out
}

// Companions returns all committed companions.
func (s *Store) Companions() []domain.Companion {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]domain.Companion, 0, len(s.state.companions))
	for _, c := range s.state.companions {
		out = append(out, c)
	}
	return out
}

type stores struct {
	st *state
}

func (s *stores) Events() domain.EventStore           { return &eventStore{st: s.st} }
func (s *stores) Invitations() domain.InvitationStore { return &invitationStore{st: s.st} }
func (s *stores) Registrants() domain.RegistrantStore { return &registrantStore{st: s.st} }
func (s *stores) Companions() domain.CompanionStore   { return &companionStore{st: s.st} }
