package postgres

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/google/uuid"

	"guestregistration/internal/domain"
)

type companionRepository struct {
	DB DBTX
}

func NewCompanionRepository(db DBTX) domain.CompanionStore {
	return &companionRepository{DB: db}
}

const companionColumns = `id, registrant_id, name, company, title, email, registration_id, check_in_token, checked_in_at, created_at`

func (r *companionRepository) Create(ctx context.Context, c *domain.Companion) error {
	if c.ID == "" {
		c.ID = uuid.New().String()
	}
	query := `
		INSERT INTO companions (id, registrant_id, name, company, title, email, registration_id, check_in_token, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
	`
	_, err := r.DB.ExecContext(ctx, query,
		c.ID, c.RegistrantID, c.Name, c.Company, c.Title, c.Email, c.RegistrationID, c.CheckInToken, c.CreatedAt,
	)
	if err != nil {
		if code, _, ok := pqErrorCode(err); ok {
			switch code {
			case pqUniqueViolation:
				return domain.ErrDuplicateIdentifier
			case pqForeignKeyViolation, pqInvalidTextRepresentation:
				return domain.ErrRegistrantNotFound
			}
		}
		return err
	}
	return nil
}

func (r *companionRepository) GetByRegistrantID(ctx context.Context, registrantID string) (*domain.Companion, error) {
	return r.getOne(ctx, `SELECT `+companionColumns+` FROM companions WHERE registrant_id = $1`, registrantID)
}

func (r *companionRepository) GetByCheckInToken(ctx context.Context, token string) (*domain.Companion, error) {
	return r.getOne(ctx, `SELECT `+companionColumns+` FROM companions WHERE check_in_token = $1`, token)
}

func (r *companionRepository) getOne(ctx context.Context, query, arg string) (*domain.Companion, error) {
	c := &domain.Companion{}
	var checkedInAt sql.NullTime
	err := r.DB.QueryRowContext(ctx, query, arg).Scan(
		&c.ID, &c.RegistrantID, &c.Name, &c.Company, &c.Title, &c.Email, &c.RegistrationID, &c.CheckInToken, &checkedInAt, &c.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, missingOnBadID(err, domain.ErrNotFound)
	}
	c.CheckedInAt = timePtr(checkedInAt)
	return c, nil
}

func (r *companionRepository) MarkCheckedIn(ctx context.Context, id string, at time.Time) error {
	result, err := r.DB.ExecContext(ctx,
		`UPDATE companions SET checked_in_at = $2 WHERE id = $1 AND checked_in_at IS NULL`, id, at)
	if err != nil {
		return missingOnBadID(err, domain.ErrNotFound)
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if rows == 1 {
		return nil
	}
	found, err := exists(ctx, r.DB, "companions", id)
	if err != nil {
		return err
	}
	if !found {
		return domain.ErrNotFound
	}
	return domain.ErrAlreadyCheckedIn
}
