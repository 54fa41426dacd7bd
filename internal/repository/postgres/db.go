package postgres

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/lib/pq"
)

// DBTX is satisfied by both *sql.DB and *sql.Tx so the same repository code
// runs standalone or inside a unit of work.
type DBTX interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

const (
	pqInvalidTextRepresentation = "22P02"
	pqForeignKeyViolation       = "23503"
	pqUniqueViolation           = "23505"
	pqCheckViolation            = "23514"
)

func pqErrorCode(err error) (code, constraint string, ok bool) {
	var perr *pq.Error
	if errors.As(err, &perr) {
		return string(perr.Code), perr.Constraint, true
	}
	return "", "", false
}

// missingOnBadID turns Postgres' rejection of a malformed UUID argument into
// notFound. Any other error is returned unchanged.
func missingOnBadID(err, notFound error) error {
	if code, _, ok := pqErrorCode(err); ok && code == pqInvalidTextRepresentation {
		return notFound
	}
	return err
}

// exists reports whether a row with the given id is present in table.
// table is always a constant from this package.
func exists(ctx context.Context, db DBTX, table, id string) (bool, error) {
	var one int
	err := db.QueryRowContext(ctx, `SELECT 1 FROM `+table+` WHERE id = $1`, id).Scan(&one)
	if err != nil {
		if errors.Is(missingOnBadID(err, sql.ErrNoRows), sql.ErrNoRows) {
			return false, nil
		}
		return false, err
	}
	return true, nil
}

func timePtr(nt sql.NullTime) *time.Time {
	if !nt.Valid {
		return nil
	}
	t := nt.Time
	return &t
}
