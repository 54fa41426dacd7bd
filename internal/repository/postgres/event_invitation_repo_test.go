package postgres

import (
	"context"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/lib/pq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"guestregistration/internal/domain"
)

var invitationRowColumns = []string{"id", "event_id", "email", "token", "is_used", "used_at", "expires_at", "created_at"}

func TestInvitationRepository_Create(t *testing.T) {
	tests := []struct {
		name    string
		execErr error
		wantErr error
	}{
		{name: "inserts"},
		{name: "token collision", execErr: &pq.Error{Code: "23505", Constraint: "invitations_token_key"}, wantErr: domain.ErrDuplicateIdentifier},
		{name: "unknown event", execErr: &pq.Error{Code: "23503", Constraint: "invitations_event_id_fkey"}, wantErr: domain.ErrEventNotFound},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			db, mock, err := sqlmock.New()
			require.NoError(t, err)
			defer db.Close()

			exp := mock.ExpectExec(`INSERT INTO invitations`).
				WithArgs(sqlmock.AnyArg(), "ev-1", "guest@example.com", "tok", false, sqlmock.AnyArg(), sqlmock.AnyArg())
			if tt.execErr != nil {
				exp.WillReturnError(tt.execErr)
			} else {
				exp.WillReturnResult(sqlmock.NewResult(0, 1))
			}

			inv := &domain.Invitation{EventID: "ev-1", Email: "guest@example.com", Token: "tok", ExpiresAt: time.Now().Add(time.Hour)}
			err = NewInvitationRepository(db).Create(context.Background(), inv)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
			} else {
				require.NoError(t, err)
				assert.NotEmpty(t, inv.ID)
			}
			require.NoError(t, mock.ExpectationsWereMet())
		})
	}
}

func TestInvitationRepository_GetByTokenForUpdate(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	expires := time.Date(2026, 6, 1, 0, 0, 0, 0, time.UTC)
	mock.ExpectQuery(`SELECT .+ FROM invitations WHERE token = \$1 FOR UPDATE`).
		WithArgs("tok").
		WillReturnRows(sqlmock.NewRows(invitationRowColumns).
			AddRow("inv-1", "ev-1", "guest@example.com", "tok", false, nil, expires, expires.Add(-30*24*time.Hour)))
	mock.ExpectQuery(`SELECT .+ FROM invitations WHERE token = \$1 FOR UPDATE`).
		WithArgs("nope").
		WillReturnRows(sqlmock.NewRows(invitationRowColumns))

	repo := NewInvitationRepository(db)
	inv, err := repo.GetByTokenForUpdate(context.Background(), "tok")
	require.NoError(t, err)
	assert.Equal(t, "inv-1", inv.ID)
	assert.False(t, inv.IsUsed)
	assert.Nil(t, inv.UsedAt)

	_, err = repo.GetByTokenForUpdate(context.Background(), "nope")
	assert.ErrorIs(t, err, domain.ErrInvitationNotFound)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestInvitationRepository_Consume(t *testing.T) {
	usedAt := time.Date(2026, 5, 1, 12, 0, 0, 0, time.UTC)

	tests := []struct {
		name    string
		mock    func(mock sqlmock.Sqlmock)
		wantErr error
	}{
		{
			name: "first consume wins",
			mock: func(mock sqlmock.Sqlmock) {
				mock.ExpectExec(`UPDATE invitations\s+SET is_used = TRUE, used_at = \$2\s+WHERE id = \$1 AND is_used = FALSE`).
					WithArgs("inv-1", usedAt).
					WillReturnResult(sqlmock.NewResult(0, 1))
			},
		},
		{
			name: "second consume is rejected, never silent",
			mock: func(mock sqlmock.Sqlmock) {
				mock.ExpectExec(`UPDATE invitations`).
					WithArgs("inv-1", usedAt).
					WillReturnResult(sqlmock.NewResult(0, 0))
				mock.ExpectQuery(`SELECT 1 FROM invitations WHERE id = \$1`).
					WithArgs("inv-1").
					WillReturnRows(sqlmock.NewRows([]string{"?column?"}).AddRow(1))
			},
			wantErr: domain.ErrInvitationAlreadyUsed,
		},
		{
			name: "unknown invitation",
			mock: func(mock sqlmock.Sqlmock) {
				mock.ExpectExec(`UPDATE invitations`).
					WithArgs("inv-1", usedAt).
					WillReturnResult(sqlmock.NewResult(0, 0))
				mock.ExpectQuery(`SELECT 1 FROM invitations WHERE id = \$1`).
					WithArgs("inv-1").
					WillReturnRows(sqlmock.NewRows([]string{"?column?"}))
			},
			wantErr: domain.ErrInvitationNotFound,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			db, mock, err := sqlmock.New()
			require.NoError(t, err)
			defer db.Close()
			tt.mock(mock)

			err = NewInvitationRepository(db).Consume(context.Background(), "inv-1", usedAt)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
			} else {
				require.NoError(t, err)
			}
			require.NoError(t, mock.ExpectationsWereMet())
		})
	}
}
