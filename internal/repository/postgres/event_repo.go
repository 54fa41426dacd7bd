package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"guestregistration/internal/domain"
)

type eventRepository struct {
	DB DBTX
}

func NewEventRepository(db DBTX) domain.EventStore {
	return &eventRepository{
		DB: db,
	}
}

func (r *eventRepository) GetByID(ctx context.Context, id string) (*domain.Event, error) {
	query := `
		SELECT id, name, description, location, starts_at, ends_at, capacity,
		       current_registrations, waitlist_enabled, registration_open, created_at, updated_at
		FROM events
		WHERE id = $1
	`
	e := &domain.Event{}
	err := r.DB.QueryRowContext(ctx, query, id).Scan(
		&e.ID, &e.Name, &e.Description, &e.Location, &e.StartsAt, &e.EndsAt, &e.Capacity,
		&e.CurrentRegistrations, &e.WaitlistEnabled, &e.RegistrationOpen, &e.CreatedAt, &e.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrEventNotFound
		}
		return nil, missingOnBadID(err, domain.ErrEventNotFound)
	}
	return e, nil
}

// ReserveSeats decides and reserves in one statement: the row is only updated
// if the new count still fits, so concurrent callers cannot both see the same
// free seat.
func (r *eventRepository) ReserveSeats(ctx context.Context, eventID string, seats int) (bool, error) {
	if seats <= 0 {
		return false, fmt.Errorf("%w: reserve %d seats", domain.ErrCapacityInvariant, seats)
	}
	query := `
		UPDATE events
		SET current_registrations = current_registrations + $2, updated_at = NOW()
		WHERE id = $1 AND current_registrations + $2 <= capacity
	`
	result, err := r.DB.ExecContext(ctx, query, eventID, seats)
	if err != nil {
		if code, _, ok := pqErrorCode(err); ok && code == pqCheckViolation {
			return false, fmt.Errorf("%w: %v", domain.ErrCapacityInvariant, err)
		}
		return false, missingOnBadID(err, domain.ErrEventNotFound)
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return false, err
	}
	if rows == 1 {
		return true, nil
	}
	found, err := exists(ctx, r.DB, "events", eventID)
	if err != nil {
		return false, err
	}
	if !found {
		return false, domain.ErrEventNotFound
	}
	return false, nil
}

func (r *eventRepository) ReleaseSeats(ctx context.Context, eventID string, seats int) error {
	if seats <= 0 {
		return fmt.Errorf("%w: release %d seats", domain.ErrCapacityInvariant, seats)
	}
	query := `
		UPDATE events
		SET current_registrations = current_registrations - $2, updated_at = NOW()
		WHERE id = $1 AND current_registrations - $2 >= 0
	`
	result, err := r.DB.ExecContext(ctx, query, eventID, seats)
	if err != nil {
		if code, _, ok := pqErrorCode(err); ok && code == pqCheckViolation {
			return fmt.Errorf("%w: %v", domain.ErrCapacityInvariant, err)
		}
		return missingOnBadID(err, domain.ErrEventNotFound)
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if rows == 1 {
		return nil
	}
	found, err := exists(ctx, r.DB, "events", eventID)
	if err != nil {
		return err
	}
	if !found {
		return domain.ErrEventNotFound
	}
	return fmt.Errorf("%w: release %d seats from event %s", domain.ErrCapacityInvariant, seats, eventID)
}
