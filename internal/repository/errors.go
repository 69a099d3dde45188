package repository

import (
	"errors"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5/pgconn"
)

var (
	ErrNotFound  = errors.New("not found")
	ErrIntegrity = errors.New("integrity violation")
)

// IntegrityError wraps a Postgres integrity constraint violation
// (SQLSTATE class 23). It matches ErrIntegrity with errors.Is.
type IntegrityError struct {
	Code       string
	Constraint string
	Detail     string
	Err        error
}

func (e *IntegrityError) Error() string {
	return fmt.Sprintf("integrity violation %s on %s: %s", e.Code, e.Constraint, e.Detail)
}

func (e *IntegrityError) Unwrap() []error { return []error{ErrIntegrity, e.Err} }

// UniqueViolation reports whether the error is a duplicate key.
func (e *IntegrityError) UniqueViolation() bool { return e.Code == "23505" }

func mapError(err error) error {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && strings.HasPrefix(pgErr.Code, "23") {
		return &IntegrityError{
			Code:       pgErr.Code,
			Constraint: pgErr.ConstraintName,
			Detail:     pgErr.Detail,
			Err:        err,
		}
	}
	return err
}
