package postgres

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/google/uuid"

	"guestregistration/internal/domain"
)

type registrantRepository struct {
	DB DBTX
}

func NewRegistrantRepository(db DBTX) domain.RegistrantStore {
	return &registrantRepository{
		DB: db,
	}
}

const registrantColumns = `id, event_id, invitation_id, name, company, title, email, status,
	registration_id, check_in_token, has_companion, checked_in_at, cancelled_at, created_at, updated_at`

// registrantsInvitationKey is the unique constraint that keeps an invitation
// from producing two registrants.
const registrantsInvitationKey = "registrants_invitation_id_key"

func (r *registrantRepository) Create(ctx context.Context, reg *domain.Registrant) error {
	if reg.ID == "" {
		reg.ID = uuid.New().String()
	}
	query := `
		INSERT INTO registrants (id, event_id, invitation_id, name, company, title, email, status,
			registration_id, check_in_token, has_companion, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)
	`
	_, err := r.DB.ExecContext(ctx, query,
		reg.ID, reg.EventID, reg.InvitationID, reg.Name, reg.Company, reg.Title, reg.Email, string(reg.Status),
		reg.RegistrationID, reg.CheckInToken, reg.HasCompanion, reg.CreatedAt, reg.UpdatedAt,
	)
	if err != nil {
		if code, constraint, ok := pqErrorCode(err); ok && code == pqUniqueViolation {
			if constraint == registrantsInvitationKey {
				return domain.ErrInvitationAlreadyUsed
			}
			return domain.ErrDuplicateIdentifier
		}
		return err
	}
	return nil
}

func (r *registrantRepository) GetByID(ctx context.Context, id string) (*domain.Registrant, error) {
	return r.getOne(ctx, `SELECT `+registrantColumns+` FROM registrants WHERE id = $1`, id)
}

func (r *registrantRepository) GetByIDForUpdate(ctx context.Context, id string) (*domain.Registrant, error) {
	return r.getOne(ctx, `SELECT `+registrantColumns+` FROM registrants WHERE id = $1 FOR UPDATE`, id)
}

func (r *registrantRepository) GetByCheckInToken(ctx context.Context, token string) (*domain.Registrant, error) {
	return r.getOne(ctx, `SELECT `+registrantColumns+` FROM registrants WHERE check_in_token = $1`, token)
}

func (r *registrantRepository) getOne(ctx context.Context, query, arg string) (*domain.Registrant, error) {
	reg := &domain.Registrant{}
	var status string
	var checkedInAt, cancelledAt sql.NullTime
	err := r.DB.QueryRowContext(ctx, query, arg).Scan(
		&reg.ID, &reg.EventID, &reg.InvitationID, &reg.Name, &reg.Company, &reg.Title, &reg.Email, &status,
		&reg.RegistrationID, &reg.CheckInToken, &reg.HasCompanion, &checkedInAt, &cancelledAt, &reg.CreatedAt, &reg.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrRegistrantNotFound
		}
		return nil, missingOnBadID(err, domain.ErrRegistrantNotFound)
	}
	reg.Status = domain.RegistrationStatus(status)
	reg.CheckedInAt = timePtr(checkedInAt)
	reg.CancelledAt = timePtr(cancelledAt)
	return reg, nil
}

func (r *registrantRepository) Cancel(ctx context.Context, id string, at time.Time) error {
	query := `
		UPDATE registrants
		SET status = 'CANCELLED', cancelled_at = $2, updated_at = $2
		WHERE id = $1 AND status <> 'CANCELLED'
	`
	result, err := r.DB.ExecContext(ctx, query, id, at)
	if err != nil {
		return missingOnBadID(err, domain.ErrRegistrantNotFound)
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if rows == 1 {
		return nil
	}
	found, err := exists(ctx, r.DB, "registrants", id)
	if err != nil {
		return err
	}
	if !found {
		return domain.ErrRegistrantNotFound
	}
	return domain.ErrAlreadyCancelled
}

func (r *registrantRepository) MarkCheckedIn(ctx context.Context, id string, at time.Time) error {
	query := `
		UPDATE registrants
		SET checked_in_at = $2, updated_at = $2
		WHERE id = $1 AND checked_in_at IS NULL
	`
	result, err := r.DB.ExecContext(ctx, query, id, at)
	if err != nil {
		return missingOnBadID(err, domain.ErrRegistrantNotFound)
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if rows == 1 {
		return nil
	}
	found, err := exists(ctx, r.DB, "registrants", id)
	if err != nil {
		return err
	}
	if !found {
		return domain.ErrRegistrantNotFound
	}
	return domain.ErrAlreadyCheckedIn
}
