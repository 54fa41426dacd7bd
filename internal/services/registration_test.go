package services

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"guestregistration/internal/domain"
	"guestregistration/internal/repository/memory"
)

var testNow = time.Date(2026, 5, 1, 12, 0, 0, 0, time.UTC)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

type recordingDispatcher struct {
	mu   sync.Mutex
	msgs []*domain.RegistrationCommitted
}

func (d *recordingDispatcher) Dispatch(ctx context.Context, msg *domain.RegistrationCommitted) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.msgs = append(d.msgs, msg)
}

func (d *recordingDispatcher) count() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return len(d.msgs)
}

type panickingDispatcher struct{}

func (panickingDispatcher) Dispatch(ctx context.Context, msg *domain.RegistrationCommitted) {
	panic("broker exploded")
}

// scriptedIssuer hands out registration IDs from a list, then falls back to a counter.
type scriptedIssuer struct {
	mu     sync.Mutex
	ids    []string
	issued int
}

func (i *scriptedIssuer) NewRegistrationID() (string, error) {
	i.mu.Lock()
	defer i.mu.Unlock()
	if len(i.ids) > 0 {
		id := i.ids[0]
		i.ids = i.ids[1:]
		return id, nil
	}
	i.issued++
	return fmt.Sprintf("REG-SCRIPTED%d", i.issued), nil
}

func (i *scriptedIssuer) NewCheckInToken() (string, error) {
	i.mu.Lock()
	defer i.mu.Unlock()
	i.issued++
	return fmt.Sprintf("token-%d", i.issued), nil
}

func (i *scriptedIssuer) CompanionRegistrationID(primary string) string {
	return primary + domain.CompanionRegistrationSuffix
}

// faultyUnitOfWork wraps the memory store and makes invitation consumption fail.
type faultyUnitOfWork struct {
	inner      *memory.Store
	consumeErr error
}

func (u *faultyUnitOfWork) Do(ctx context.Context, fn func(ctx context.Context, stores domain.Stores) error) error {
	return u.inner.Do(ctx, func(ctx context.Context, st domain.Stores) error {
		return fn(ctx, &faultyStores{Stores: st, consumeErr: u.consumeErr})
	})
}

type faultyStores struct {
	domain.Stores
	consumeErr error
}

func (s *faultyStores) Invitations() domain.InvitationStore {
	return &faultyInvitations{InvitationStore: s.Stores.Invitations(), consumeErr: s.consumeErr}
}

type faultyInvitations struct {
	domain.InvitationStore
	consumeErr error
}

func (f *faultyInvitations) Consume(ctx context.Context, id string, usedAt time.Time) error {
	return f.consumeErr
}

func newTestLedger() *InvitationLedger {
	l := NewInvitationLedger(0)
	l.now = func() time.Time { return testNow }
	return l
}

func newTestRegistrationService(t *testing.T, uow domain.UnitOfWork, dispatcher domain.SideEffectDispatcher) *registrationService {
	t.Helper()
	ids, err := NewIdentifierIssuer(1)
	require.NoError(t, err)
	return &registrationService{
		uow:            uow,
		invitations:    newTestLedger(),
		ids:            ids,
		dispatcher:     dispatcher,
		logger:         discardLogger(),
		now:            func() time.Time { return testNow },
		contextTimeout: 5 * time.Second,
	}
}

func seedEvent(store *memory.Store, capacity, current int, waitlist bool) domain.Event {
	return store.PutEvent(domain.Event{
		Name:                 "Launch Night",
		Location:             "Hall A",
		StartsAt:             testNow.Add(72 * time.Hour),
		EndsAt:               testNow.Add(75 * time.Hour),
		Capacity:             capacity,
		CurrentRegistrations: current,
		WaitlistEnabled:      waitlist,
		RegistrationOpen:     true,
	})
}

func issueInvitation(t *testing.T, store *memory.Store, ledger *InvitationLedger, eventID, email string) *domain.Invitation {
	t.Helper()
	var inv *domain.Invitation
	err := store.Do(context.Background(), func(ctx context.Context, st domain.Stores) error {
		var err error
		inv, err = ledger.Issue(ctx, st.Invitations(), eventID, email)
		return err
	})
	require.NoError(t, err)
	return inv
}

func submission(token string, withCompanion bool) *domain.SubmitRegistrationInput {
	in := &domain.SubmitRegistrationInput{
		InvitationToken: token,
		Registrant: domain.PersonDetails{
			Name:    "Ada Lovelace",
			Company: "Analytical Engines",
			Title:   "Engineer",
			Email:   "ada@example.com",
		},
	}
	if withCompanion {
		in.Companion = &domain.PersonDetails{Name: "Charles Babbage", Email: "charles@example.com"}
	}
	return in
}

func TestRegistrationService_Submit_ConfirmsPartyWithCompanion(t *testing.T) {
	store := memory.NewStore()
	dispatcher := &recordingDispatcher{}
	svc := newTestRegistrationService(t, store, dispatcher)
	event := seedEvent(store, 2, 0, true)
	inv := issueInvitation(t, store, svc.invitations, event.ID, "ada@example.com")

	res, err := svc.Submit(context.Background(), submission(inv.Token, true))
	require.NoError(t, err)

	assert.Equal(t, domain.AdmissionConfirmed, res.Outcome)
	assert.Equal(t, domain.StatusConfirmed, res.Registrant.Status)
	assert.Regexp(t, `^REG-[0-9A-Z]+$`, res.Registrant.RegistrationID)
	assert.Regexp(t, `^[0-9a-f]{32}$`, res.Registrant.CheckInToken)
	require.NotNil(t, res.Companion)
	assert.Equal(t, res.Registrant.RegistrationID+"-P1", res.Companion.RegistrationID)
	assert.NotEqual(t, res.Registrant.CheckInToken, res.Companion.CheckInToken)
	assert.Equal(t, res.Registrant.ID, res.Companion.RegistrantID)

	got, ok := store.Event(event.ID)
	require.True(t, ok)
	assert.Equal(t, 2, got.CurrentRegistrations)

	used, ok := store.Invitation(inv.ID)
	require.True(t, ok)
	assert.True(t, used.IsUsed)
	require.NotNil(t, used.UsedAt)

	require.Equal(t, 1, dispatcher.count())
	msg := dispatcher.msgs[0]
	assert.Equal(t, res.Registrant.RegistrationID, msg.Registrant.RegistrationID)
	require.NotNil(t, msg.Companion)
	assert.Equal(t, 2, msg.Event.CurrentRegistrations)
}

func TestRegistrationService_Submit_WaitlistsWhenFull(t *testing.T) {
	store := memory.NewStore()
	dispatcher := &recordingDispatcher{}
	svc := newTestRegistrationService(t, store, dispatcher)
	event := seedEvent(store, 2, 2, true)
	inv := issueInvitation(t, store, svc.invitations, event.ID, "ada@example.com")

	res, err := svc.Submit(context.Background(), submission(inv.Token, false))
	require.NoError(t, err)
	assert.Equal(t, domain.AdmissionWaitlisted, res.Outcome)
	assert.Equal(t, domain.StatusWaitlisted, res.Registrant.Status)

	got, _ := store.Event(event.ID)
	assert.Equal(t, 2, got.CurrentRegistrations)
	assert.Equal(t, 1, dispatcher.count())
}

func TestRegistrationService_Submit_PartyDoesNotSplitAcrossOutcomes(t *testing.T) {
	store := memory.NewStore()
	svc := newTestRegistrationService(t, store, &recordingDispatcher{})
	event := seedEvent(store, 10, 9, true)
	inv := issueInvitation(t, store, svc.invitations, event.ID, "ada@example.com")

	res, err := svc.Submit(context.Background(), submission(inv.Token, true))
	require.NoError(t, err)
	assert.Equal(t, domain.AdmissionWaitlisted, res.Outcome)
	require.NotNil(t, res.Companion)

	got, _ := store.Event(event.ID)
	assert.Equal(t, 9, got.CurrentRegistrations)
}

func TestRegistrationService_Submit_Rejections(t *testing.T) {
	tests := []struct {
		name    string
		setup   func(t *testing.T, store *memory.Store, svc *registrationService) *domain.SubmitRegistrationInput
		wantErr error
	}{
		{
			name: "expired invitation",
			setup: func(t *testing.T, store *memory.Store, svc *registrationService) *domain.SubmitRegistrationInput {
				event := seedEvent(store, 5, 1, true)
				inv := issueInvitation(t, store, svc.invitations, event.ID, "ada@example.com")
				svc.invitations.now = func() time.Time { return testNow.Add(31 * 24 * time.Hour) }
				return submission(inv.Token, false)
			},
			wantErr: domain.ErrInvitationExpired,
		},
		{
			name: "unknown token",
			setup: func(t *testing.T, store *memory.Store, svc *registrationService) *domain.SubmitRegistrationInput {
				seedEvent(store, 5, 1, true)
				return submission("does-not-exist", false)
			},
			wantErr: domain.ErrInvitationNotFound,
		},
		{
			name: "registration closed",
			setup: func(t *testing.T, store *memory.Store, svc *registrationService) *domain.SubmitRegistrationInput {
				event := seedEvent(store, 5, 1, true)
				event.RegistrationOpen = false
				store.PutEvent(event)
				inv := issueInvitation(t, store, svc.invitations, event.ID, "ada@example.com")
				return submission(inv.Token, false)
			},
			wantErr: domain.ErrRegistrationClosed,
		},
		{
			name: "full without waitlist",
			setup: func(t *testing.T, store *memory.Store, svc *registrationService) *domain.SubmitRegistrationInput {
				event := seedEvent(store, 1, 1, false)
				inv := issueInvitation(t, store, svc.invitations, event.ID, "ada@example.com")
				return submission(inv.Token, false)
			},
			wantErr: domain.ErrEventFull,
		},
		{
			name: "missing registrant name",
			setup: func(t *testing.T, store *memory.Store, svc *registrationService) *domain.SubmitRegistrationInput {
				event := seedEvent(store, 5, 1, true)
				inv := issueInvitation(t, store, svc.invitations, event.ID, "ada@example.com")
				in := submission(inv.Token, false)
				in.Registrant.Name = "   "
				return in
			},
			wantErr: domain.ErrInvalidInput,
		},
		{
			name: "invalid companion email",
			setup: func(t *testing.T, store *memory.Store, svc *registrationService) *domain.SubmitRegistrationInput {
				event := seedEvent(store, 5, 1, true)
				inv := issueInvitation(t, store, svc.invitations, event.ID, "ada@example.com")
				in := submission(inv.Token, true)
				in.Companion.Email = "not-an-email"
				return in
			},
			wantErr: domain.ErrInvalidInput,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			store := memory.NewStore()
			dispatcher := &recordingDispatcher{}
			svc := newTestRegistrationService(t, store, dispatcher)
			in := tt.setup(t, store, svc)

			res, err := svc.Submit(context.Background(), in)
			require.Error(t, err)
			assert.Nil(t, res)
			assert.ErrorIs(t, err, tt.wantErr)

			assert.Empty(t, store.Registrants())
			assert.Empty(t, store.Companions())
			assert.Equal(t, 0, dispatcher.count())
		})
	}
}

func TestRegistrationService_Submit_RejectionsLeaveCounterAlone(t *testing.T) {
	store := memory.NewStore()
	svc := newTestRegistrationService(t, store, &recordingDispatcher{})
	event := seedEvent(store, 1, 1, false)
	inv := issueInvitation(t, store, svc.invitations, event.ID, "ada@example.com")

	_, err := svc.Submit(context.Background(), submission(inv.Token, false))
	require.ErrorIs(t, err, domain.ErrEventFull)

	got, _ := store.Event(event.ID)
	assert.Equal(t, 1, got.CurrentRegistrations)
	stored, _ := store.Invitation(inv.ID)
	assert.False(t, stored.IsUsed)
}

func TestRegistrationService_Submit_ReusedTokenFailsWithoutSecondRegistrant(t *testing.T) {
	store := memory.NewStore()
	svc := newTestRegistrationService(t, store, &recordingDispatcher{})
	event := seedEvent(store, 10, 0, true)
	inv := issueInvitation(t, store, svc.invitations, event.ID, "ada@example.com")

	_, err := svc.Submit(context.Background(), submission(inv.Token, false))
	require.NoError(t, err)

	for i := 0; i < 2; i++ {
		_, err = svc.Submit(context.Background(), submission(inv.Token, true))
		require.ErrorIs(t, err, domain.ErrInvitationAlreadyUsed)
	}
	assert.Len(t, store.Registrants(), 1)
	assert.Empty(t, store.Companions())
	got, _ := store.Event(event.ID)
	assert.Equal(t, 1, got.CurrentRegistrations)
}

func TestRegistrationService_Submit_UsedCheckedBeforeExpiry(t *testing.T) {
	store := memory.NewStore()
	svc := newTestRegistrationService(t, store, &recordingDispatcher{})
	event := seedEvent(store, 10, 0, true)
	inv := issueInvitation(t, store, svc.invitations, event.ID, "ada@example.com")

	_, err := svc.Submit(context.Background(), submission(inv.Token, false))
	require.NoError(t, err)

	svc.invitations.now = func() time.Time { return testNow.Add(60 * 24 * time.Hour) }
	_, err = svc.Submit(context.Background(), submission(inv.Token, false))
	assert.ErrorIs(t, err, domain.ErrInvitationAlreadyUsed)
}

func TestRegistrationService_Submit_RollsBackEverythingOnLateFailure(t *testing.T) {
	store := memory.NewStore()
	boom := errors.New("connection reset")
	uow := &faultyUnitOfWork{inner: store, consumeErr: boom}
	dispatcher := &recordingDispatcher{}
	svc := newTestRegistrationService(t, uow, dispatcher)
	event := seedEvent(store, 4, 1, true)
	inv := issueInvitation(t, store, svc.invitations, event.ID, "ada@example.com")

	_, err := svc.Submit(context.Background(), submission(inv.Token, true))
	require.ErrorIs(t, err, boom)

	assert.Empty(t, store.Registrants())
	assert.Empty(t, store.Companions())
	got, _ := store.Event(event.ID)
	assert.Equal(t, 1, got.CurrentRegistrations)
	stored, _ := store.Invitation(inv.ID)
	assert.False(t, stored.IsUsed)
	assert.Equal(t, 0, dispatcher.count())
}

func TestRegistrationService_Submit_RetriesIdentifierCollision(t *testing.T) {
	store := memory.NewStore()
	svc := newTestRegistrationService(t, store, &recordingDispatcher{})
	svc.ids = &scriptedIssuer{ids: []string{"REG-DUP", "REG-DUP", "REG-DUP", "REG-FRESH"}}
	event := seedEvent(store, 10, 0, true)
	first := issueInvitation(t, store, svc.invitations, event.ID, "ada@example.com")
	second := issueInvitation(t, store, svc.invitations, event.ID, "grace@example.com")

	res, err := svc.Submit(context.Background(), submission(first.Token, false))
	require.NoError(t, err)
	assert.Equal(t, "REG-DUP", res.Registrant.RegistrationID)

	res, err = svc.Submit(context.Background(), submission(second.Token, false))
	require.NoError(t, err)
	assert.Equal(t, "REG-FRESH", res.Registrant.RegistrationID)

	got, _ := store.Event(event.ID)
	assert.Equal(t, 2, got.CurrentRegistrations)
}

func TestRegistrationService_Submit_GivesUpAfterRepeatedCollisions(t *testing.T) {
	store := memory.NewStore()
	svc := newTestRegistrationService(t, store, &recordingDispatcher{})
	svc.ids = &scriptedIssuer{ids: []string{"REG-DUP", "REG-DUP", "REG-DUP", "REG-DUP"}}
	event := seedEvent(store, 10, 0, true)
	first := issueInvitation(t, store, svc.invitations, event.ID, "ada@example.com")
	second := issueInvitation(t, store, svc.invitations, event.ID, "grace@example.com")

	_, err := svc.Submit(context.Background(), submission(first.Token, false))
	require.NoError(t, err)

	_, err = svc.Submit(context.Background(), submission(second.Token, false))
	require.ErrorIs(t, err, domain.ErrDuplicateIdentifier)

	stored, _ := store.Invitation(second.ID)
	assert.False(t, stored.IsUsed)
	got, _ := store.Event(event.ID)
	assert.Equal(t, 1, got.CurrentRegistrations)
}

func TestRegistrationService_Submit_ConcurrentSubmitsNeverOverbook(t *testing.T) {
	const (
		capacity = 5
		guests   = 20
	)
	store := memory.NewStore()
	svc := newTestRegistrationService(t, store, &recordingDispatcher{})
	event := seedEvent(store, capacity, 0, true)

	tokens := make([]string, guests)
	for i := range tokens {
		tokens[i] = issueInvitation(t, store, svc.invitations, event.ID, "guest@example.com").Token
	}

	var (
		wg        sync.WaitGroup
		mu        sync.Mutex
		confirmed int
		waitlist  int
		failures  []error
	)
	for _, token := range tokens {
		wg.Add(1)
		go func(token string) {
			defer wg.Done()
			res, err := svc.Submit(context.Background(), submission(token, false))
			mu.Lock()
			defer mu.Unlock()
			if err != nil {
				failures = append(failures, err)
				return
			}
			if res.Outcome == domain.AdmissionConfirmed {
				confirmed++
			} else {
				waitlist++
			}
		}(token)
	}
	wg.Wait()

	require.Empty(t, failures)
	assert.Equal(t, capacity, confirmed)
	assert.Equal(t, guests-capacity, waitlist)
	got, _ := store.Event(event.ID)
	assert.Equal(t, capacity, got.CurrentRegistrations)
}

func TestRegistrationService_Submit_ConcurrentSameTokenConsumedOnce(t *testing.T) {
	store := memory.NewStore()
	svc := newTestRegistrationService(t, store, &recordingDispatcher{})
	event := seedEvent(store, 50, 0, true)
	inv := issueInvitation(t, store, svc.invitations, event.ID, "ada@example.com")

	var (
		wg        sync.WaitGroup
		mu        sync.Mutex
		successes int
		usedErrs  int
	)
	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := svc.Submit(context.Background(), submission(inv.Token, false))
			mu.Lock()
			defer mu.Unlock()
			switch {
			case err == nil:
				successes++
			case errors.Is(err, domain.ErrInvitationAlreadyUsed):
				usedErrs++
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, 1, successes)
	assert.Equal(t, 9, usedErrs)
	assert.Len(t, store.Registrants(), 1)
}

func TestRegistrationService_Submit_DispatchFailureDoesNotAffectOutcome(t *testing.T) {
	store := memory.NewStore()
	svc := newTestRegistrationService(t, store, panickingDispatcher{})
	event := seedEvent(store, 3, 0, true)
	inv := issueInvitation(t, store, svc.invitations, event.ID, "ada@example.com")

	res, err := svc.Submit(context.Background(), submission(inv.Token, false))
	require.NoError(t, err)
	assert.Equal(t, domain.AdmissionConfirmed, res.Outcome)
	assert.Len(t, store.Registrants(), 1)
}

func TestRegistrationService_Submit_IgnoresCallerCancellation(t *testing.T) {
	store := memory.NewStore()
	svc := newTestRegistrationService(t, store, &recordingDispatcher{})
	event := seedEvent(store, 3, 0, true)
	inv := issueInvitation(t, store, svc.invitations, event.ID, "ada@example.com")

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	res, err := svc.Submit(ctx, submission(inv.Token, false))
	require.NoError(t, err)
	assert.Equal(t, domain.AdmissionConfirmed, res.Outcome)
}

func TestRegistrationService_Cancel(t *testing.T) {
	store := memory.NewStore()
	svc := newTestRegistrationService(t, store, &recordingDispatcher{})
	event := seedEvent(store, 10, 0, true)
	inv := issueInvitation(t, store, svc.invitations, event.ID, "ada@example.com")
	res, err := svc.Submit(context.Background(), submission(inv.Token, true))
	require.NoError(t, err)

	got, _ := store.Event(event.ID)
	require.Equal(t, 2, got.CurrentRegistrations)

	cancelled, err := svc.Cancel(context.Background(), res.Registrant.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.StatusCancelled, cancelled.Status)
	require.NotNil(t, cancelled.CancelledAt)
	assert.True(t, cancelled.CancelledAt.Equal(testNow))

	got, _ = store.Event(event.ID)
	assert.Equal(t, 0, got.CurrentRegistrations)

	_, err = svc.Cancel(context.Background(), res.Registrant.ID)
	assert.ErrorIs(t, err, domain.ErrAlreadyCancelled)
	got, _ = store.Event(event.ID)
	assert.Equal(t, 0, got.CurrentRegistrations)
}

func TestRegistrationService_Cancel_WaitlistedReleasesNothing(t *testing.T) {
	store := memory.NewStore()
	svc := newTestRegistrationService(t, store, &recordingDispatcher{})
	event := seedEvent(store, 1, 1, true)
	inv := issueInvitation(t, store, svc.invitations, event.ID, "ada@example.com")
	res, err := svc.Submit(context.Background(), submission(inv.Token, false))
	require.NoError(t, err)
	require.Equal(t, domain.AdmissionWaitlisted, res.Outcome)

	_, err = svc.Cancel(context.Background(), res.Registrant.ID)
	require.NoError(t, err)

	got, _ := store.Event(event.ID)
	assert.Equal(t, 1, got.CurrentRegistrations)
}

func TestRegistrationService_Cancel_Errors(t *testing.T) {
	store := memory.NewStore()
	svc := newTestRegistrationService(t, store, &recordingDispatcher{})

	_, err := svc.Cancel(context.Background(), "missing")
	assert.ErrorIs(t, err, domain.ErrRegistrantNotFound)

	_, err = svc.Cancel(context.Background(), "  ")
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

func TestRegistrationService_Cancel_CounterUnderflowIsFatal(t *testing.T) {
	store := memory.NewStore()
	svc := newTestRegistrationService(t, store, &recordingDispatcher{})
	event := seedEvent(store, 10, 0, true)
	inv := issueInvitation(t, store, svc.invitations, event.ID, "ada@example.com")
	res, err := svc.Submit(context.Background(), submission(inv.Token, true))
	require.NoError(t, err)

	// Corrupt the counter behind the service's back.
	ev, _ := store.Event(event.ID)
	ev.CurrentRegistrations = 1
	store.PutEvent(ev)

	_, err = svc.Cancel(context.Background(), res.Registrant.ID)
	require.ErrorIs(t, err, domain.ErrCapacityInvariant)

	regs := store.Registrants()
	require.Len(t, regs, 1)
	assert.Equal(t, domain.StatusConfirmed, regs[0].Status)
}

func TestRegistrationService_CheckIn(t *testing.T) {
	store := memory.NewStore()
	svc := newTestRegistrationService(t, store, &recordingDispatcher{})
	event := seedEvent(store, 10, 0, true)
	inv := issueInvitation(t, store, svc.invitations, event.ID, "ada@example.com")
	res, err := svc.Submit(context.Background(), submission(inv.Token, true))
	require.NoError(t, err)

	primary, err := svc.CheckIn(context.Background(), res.Registrant.CheckInToken)
	require.NoError(t, err)
	assert.Equal(t, domain.CheckInPrimary, primary.Kind)
	assert.Equal(t, res.Registrant.RegistrationID, primary.RegistrationID)
	assert.Equal(t, event.ID, primary.EventID)

	_, err = svc.CheckIn(context.Background(), res.Registrant.CheckInToken)
	assert.ErrorIs(t, err, domain.ErrAlreadyCheckedIn)

	companion, err := svc.CheckIn(context.Background(), res.Companion.CheckInToken)
	require.NoError(t, err)
	assert.Equal(t, domain.CheckInCompanion, companion.Kind)
	assert.Equal(t, res.Companion.RegistrationID, companion.RegistrationID)
	assert.Equal(t, "Charles Babbage", companion.Name)

	_, err = svc.CheckIn(context.Background(), res.Companion.CheckInToken)
	assert.ErrorIs(t, err, domain.ErrAlreadyCheckedIn)

	_, err = svc.CheckIn(context.Background(), "unknown")
	assert.ErrorIs(t, err, domain.ErrCheckInTokenNotFound)
}

func TestRegistrationService_CheckIn_RequiresConfirmedParty(t *testing.T) {
	store := memory.NewStore()
	svc := newTestRegistrationService(t, store, &recordingDispatcher{})
	full := seedEvent(store, 1, 1, true)
	open := seedEvent(store, 10, 0, true)

	waitInv := issueInvitation(t, store, svc.invitations, full.ID, "ada@example.com")
	waitlisted, err := svc.Submit(context.Background(), submission(waitInv.Token, true))
	require.NoError(t, err)

	_, err = svc.CheckIn(context.Background(), waitlisted.Registrant.CheckInToken)
	assert.ErrorIs(t, err, domain.ErrNotConfirmed)
	_, err = svc.CheckIn(context.Background(), waitlisted.Companion.CheckInToken)
	assert.ErrorIs(t, err, domain.ErrNotConfirmed)

	cancelInv := issueInvitation(t, store, svc.invitations, open.ID, "grace@example.com")
	confirmed, err := svc.Submit(context.Background(), submission(cancelInv.Token, true))
	require.NoError(t, err)
	_, err = svc.Cancel(context.Background(), confirmed.Registrant.ID)
	require.NoError(t, err)

	_, err = svc.CheckIn(context.Background(), confirmed.Registrant.CheckInToken)
	assert.ErrorIs(t, err, domain.ErrRegistrationCancelled)
	_, err = svc.CheckIn(context.Background(), confirmed.Companion.CheckInToken)
	assert.ErrorIs(t, err, domain.ErrRegistrationCancelled)
}

func TestRegistrationService_InspectInvitation(t *testing.T) {
	store := memory.NewStore()
	svc := newTestRegistrationService(t, store, &recordingDispatcher{})
	event := seedEvent(store, 2, 2, true)
	inv := issueInvitation(t, store, svc.invitations, event.ID, "ADA@example.com ")

	summary, err := svc.InspectInvitation(context.Background(), inv.Token)
	require.NoError(t, err)
	assert.Equal(t, "ada@example.com", summary.Email)
	assert.Equal(t, event.ID, summary.EventID)
	assert.Equal(t, "Launch Night", summary.EventName)
	assert.True(t, summary.WaitlistEnabled)
	assert.False(t, summary.SeatsAvailable)
	assert.True(t, summary.ExpiresAt.Equal(testNow.Add(domain.DefaultInvitationTTL)))

	_, err = svc.InspectInvitation(context.Background(), "nope")
	assert.ErrorIs(t, err, domain.ErrInvitationNotFound)

	// Inspection must not consume the invitation.
	stored, _ := store.Invitation(inv.ID)
	assert.False(t, stored.IsUsed)
}
