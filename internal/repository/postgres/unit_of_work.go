package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"guestregistration/internal/domain"
)

type unitOfWork struct {
	DB   *sql.DB
	opts *sql.TxOptions
}

// NewUnitOfWork returns a domain.UnitOfWork backed by database/sql
// transactions. Row locks (FOR UPDATE) and conditional updates inside the
// stores provide the isolation the admission core relies on, so the default
// READ COMMITTED level is used.
func NewUnitOfWork(db *sql.DB) domain.UnitOfWork {
	return &unitOfWork{DB: db}
}

func (u *unitOfWork) Do(ctx context.Context, fn func(ctx context.Context, stores domain.Stores) error) (err error) {
	tx, err := u.DB.BeginTx(ctx, u.opts)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer func() {
		if p := recover(); p != nil {
			_ = tx.Rollback()
			panic(p)
		}
	}()

	if err := fn(ctx, &txStores{tx: tx}); err != nil {
		if rbErr := tx.Rollback(); rbErr != nil && !errors.Is(rbErr, sql.ErrTxDone) {
			return errors.Join(err, fmt.Errorf("rollback transaction: %w", rbErr))
		}
		return err
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit transaction: %w", err)
	}
	return nil
}

type txStores struct {
	tx *sql.Tx
}

func (s *txStores) Events() domain.EventStore           { return NewEventRepository(s.tx) }
func (s *txStores) Invitations() domain.InvitationStore { return NewInvitationRepository(s.tx) }
func (s *txStores) Registrants() domain.RegistrantStore { return NewRegistrantRepository(s.tx) }
func (s *txStores) Companions() domain.CompanionStore   { return NewCompanionRepository(s.tx) }
