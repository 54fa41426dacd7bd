package postgres

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/google/uuid"

	"guestregistration/internal/domain"
)

type invitationRepository struct {
	DB DBTX
}

func NewInvitationRepository(db DBTX) domain.InvitationStore {
	return &invitationRepository{
		DB: db,
	}
}

const invitationColumns = `id, event_id, email, token, is_used, used_at, expires_at, created_at`

func (r *invitationRepository) Create(ctx context.Context, inv *domain.Invitation) error {
	if inv.ID == "" {
		inv.ID = uuid.New().String()
	}
	query := `
		INSERT INTO invitations (id, event_id, email, token, is_used, expires_at, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`
	_, err := r.DB.ExecContext(ctx, query, inv.ID, inv.EventID, inv.Email, inv.Token, inv.IsUsed, inv.ExpiresAt, inv.CreatedAt)
	if err != nil {
		if code, _, ok := pqErrorCode(err); ok {
			switch code {
			case pqUniqueViolation:
				return domain.ErrDuplicateIdentifier
			case pqForeignKeyViolation, pqInvalidTextRepresentation:
				return domain.ErrEventNotFound
			}
		}
		return err
	}
	return nil
}

func (r *invitationRepository) GetByToken(ctx context.Context, token string) (*domain.Invitation, error) {
	return r.getByToken(ctx, `SELECT `+invitationColumns+` FROM invitations WHERE token = $1`, token)
}

func (r *invitationRepository) GetByTokenForUpdate(ctx context.Context, token string) (*domain.Invitation, error) {
	return r.getByToken(ctx, `SELECT `+invitationColumns+` FROM invitations WHERE token = $1 FOR UPDATE`, token)
}

func (r *invitationRepository) getByToken(ctx context.Context, query, token string) (*domain.Invitation, error) {
	inv := &domain.Invitation{}
	var usedAt sql.NullTime
	err := r.DB.QueryRowContext(ctx, query, token).Scan(
		&inv.ID, &inv.EventID, &inv.Email, &inv.Token, &inv.IsUsed, &usedAt, &inv.ExpiresAt, &inv.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrInvitationNotFound
		}
		return nil, err
	}
	inv.UsedAt = timePtr(usedAt)
	return inv, nil
}

func (r *invitationRepository) Consume(ctx context.Context, invitationID string, usedAt time.Time) error {
	query := `
		UPDATE invitations
		SET is_used = TRUE, used_at = $2
		WHERE id = $1 AND is_used = FALSE
	`
	result, err := r.DB.ExecContext(ctx, query, invitationID, usedAt)
	if err != nil {
		return missingOnBadID(err, domain.ErrInvitationNotFound)
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if rows == 1 {
		return nil
	}
	found, err := exists(ctx, r.DB, "invitations", invitationID)
	if err != nil {
		return err
	}
	if !found {
		return domain.ErrInvitationNotFound
	}
	return domain.ErrInvitationAlreadyUsed
}
