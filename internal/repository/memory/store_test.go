package memory

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"guestregistration/internal/domain"
)

func TestStore_FailedUnitLeavesNothingBehind(t *testing.T) {
	store := NewStore()
	ev := store.PutEvent(domain.Event{Name: "Gala", Capacity: 3})

	boom := errors.New("boom")
	err := store.Do(context.Background(), func(ctx context.Context, st domain.Stores) error {
		reserved, err := st.Events().ReserveSeats(ctx, ev.ID, 2)
		require.NoError(t, err)
		require.True(t, reserved)
		require.NoError(t, st.Invitations().Create(ctx, &domain.Invitation{EventID: ev.ID, Token: "tok"}))
		return boom
	})
	require.ErrorIs(t, err, boom)

	got, ok := store.Event(ev.ID)
	require.True(t, ok)
	assert.Equal(t, 0, got.CurrentRegistrations)

	err = store.Do(context.Background(), func(ctx context.Context, st domain.Stores) error {
		_, err := st.Invitations().GetByToken(ctx, "tok")
		return err
	})
	assert.ErrorIs(t, err, domain.ErrInvitationNotFound)
}

func TestStore_SeatCounterBounds(t *testing.T) {
	store := NewStore()
	ev := store.PutEvent(domain.Event{Name: "Gala", Capacity: 3})
	ctx := context.Background()

	err := store.Do(ctx, func(ctx context.Context, st domain.Stores) error {
		events := st.Events()
		reserved, err := events.ReserveSeats(ctx, ev.ID, 2)
		require.NoError(t, err)
		assert.True(t, reserved)

		reserved, err = events.ReserveSeats(ctx, ev.ID, 2)
		require.NoError(t, err)
		assert.False(t, reserved, "party of two must not split across the last seat")

		reserved, err = events.ReserveSeats(ctx, ev.ID, 1)
		require.NoError(t, err)
		assert.True(t, reserved)

		assert.ErrorIs(t, events.ReleaseSeats(ctx, ev.ID, 4), domain.ErrCapacityInvariant)
		_, err = events.ReserveSeats(ctx, "missing", 1)
		assert.ErrorIs(t, err, domain.ErrEventNotFound)
		return nil
	})
	require.NoError(t, err)

	got, _ := store.Event(ev.ID)
	assert.Equal(t, 3, got.CurrentRegistrations)
}

func TestStore_UniqueConstraints(t *testing.T) {
	store := NewStore()
	ev := store.PutEvent(domain.Event{Name: "Gala", Capacity: 10})
	ctx := context.Background()

	err := store.Do(ctx, func(ctx context.Context, st domain.Stores) error {
		require.NoError(t, st.Invitations().Create(ctx, &domain.Invitation{EventID: ev.ID, Token: "tok"}))
		assert.ErrorIs(t, st.Invitations().Create(ctx, &domain.Invitation{EventID: ev.ID, Token: "tok"}), domain.ErrDuplicateIdentifier)
		assert.ErrorIs(t, st.Invitations().Create(ctx, &domain.Invitation{EventID: "nope", Token: "other"}), domain.ErrEventNotFound)

		reg := &domain.Registrant{EventID: ev.ID, InvitationID: "inv-1", RegistrationID: "REG-1", CheckInToken: "a"}
		require.NoError(t, st.Registrants().Create(ctx, reg))
		assert.ErrorIs(t, st.Registrants().Create(ctx, &domain.Registrant{InvitationID: "inv-1", RegistrationID: "REG-2", CheckInToken: "b"}), domain.ErrInvitationAlreadyUsed)
		assert.ErrorIs(t, st.Registrants().Create(ctx, &domain.Registrant{InvitationID: "inv-2", RegistrationID: "REG-1", CheckInToken: "c"}), domain.ErrDuplicateIdentifier)

		require.NoError(t, st.Companions().Create(ctx, &domain.Companion{RegistrantID: reg.ID, RegistrationID: "REG-1-P1", CheckInToken: "d"}))
		assert.ErrorIs(t, st.Companions().Create(ctx, &domain.Companion{RegistrantID: reg.ID, RegistrationID: "REG-9-P1", CheckInToken: "e"}), domain.ErrDuplicateIdentifier)
		assert.ErrorIs(t, st.Companions().Create(ctx, &domain.Companion{RegistrantID: "ghost", RegistrationID: "REG-8-P1", CheckInToken: "f"}), domain.ErrRegistrantNotFound)
		return nil
	})
	require.NoError(t, err)
	assert.Len(t, store.Registrants(), 1)
	assert.Len(t, store.Companions(), 1)
}

func TestStore_ConsumeAndLifecycle(t *testing.T) {
	store := NewStore()
	ev := store.PutEvent(domain.Event{Name: "Gala", Capacity: 10})
	ctx := context.Background()
	at := time.Date(2026, 5, 1, 12, 0, 0, 0, time.UTC)

	err := store.Do(ctx, func(ctx context.Context, st domain.Stores) error {
		inv := &domain.Invitation{EventID: ev.ID, Token: "tok"}
		require.NoError(t, st.Invitations().Create(ctx, inv))
		require.NoError(t, st.Invitations().Consume(ctx, inv.ID, at))
		assert.ErrorIs(t, st.Invitations().Consume(ctx, inv.ID, at), domain.ErrInvitationAlreadyUsed)

		reg := &domain.Registrant{EventID: ev.ID, InvitationID: inv.ID, RegistrationID: "REG-1", CheckInToken: "a", Status: domain.StatusConfirmed}
		require.NoError(t, st.Registrants().Create(ctx, reg))
		require.NoError(t, st.Registrants().MarkCheckedIn(ctx, reg.ID, at))
		assert.ErrorIs(t, st.Registrants().MarkCheckedIn(ctx, reg.ID, at), domain.ErrAlreadyCheckedIn)
		require.NoError(t, st.Registrants().Cancel(ctx, reg.ID, at))
		assert.ErrorIs(t, st.Registrants().Cancel(ctx, reg.ID, at), domain.ErrAlreadyCancelled)
		return nil
	})
	require.NoError(t, err)

	regs := store.Registrants()
	require.Len(t, regs, 1)
	assert.Equal(t, domain.StatusCancelled, regs[0].Status)
	require.NotNil(t, regs[0].CancelledAt)
}

func TestStore_CancelledContext(t *testing.T) {
	store := NewStore()
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	called := false
	err := store.Do(ctx, func(ctx context.Context, st domain.Stores) error {
		called = true
		return nil
	})
	assert.ErrorIs(t, err, context.Canceled)
	assert.False(t, called)
}
