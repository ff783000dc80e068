package repository

import (
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

// Kind classifies repository failures so callers can branch without
// inspecting driver errors.
type Kind uint8

const (
	KindInfrastructure Kind = iota
	KindNotFound
	KindValidation
	KindConflict
)

func (k Kind) String() string {
	switch k {
	case KindNotFound:
		return "not found"
	case KindValidation:
		return "validation"
	case KindConflict:
		return "conflict"
	default:
		return "infrastructure"
	}
}

// Error is returned by every repository operation.
type Error struct {
	Err    error
	Op     string
	Entity string
	Field  string
	Kind   Kind
}

func (e *Error) Error() string {
	msg := "repository: " + e.Op
	if e.Entity != "" {
		msg += " " + e.Entity
	}
	if e.Field != "" {
		msg += " (" + e.Field + ")"
	}
	msg += ": " + e.Kind.String()
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

func (e *Error) Unwrap() error { return e.Err }

// KindOf returns the kind of the first *Error in err's chain.
func KindOf(err error) (Kind, bool) {
	var re *Error
	if errors.As(err, &re) {
		return re.Kind, true
	}
	return 0, false
}

func IsNotFound(err error) bool   { return isKind(err, KindNotFound) }
func IsValidation(err error) bool { return isKind(err, KindValidation) }
func IsConflict(err error) bool   { return isKind(err, KindConflict) }

func isKind(err error, k Kind) bool {
	got, ok := KindOf(err)
	return ok && got == k
}

// FieldOf returns the field named by the first *Error in err's chain.
func FieldOf(err error) string {
	var re *Error
	if errors.As(err, &re) {
		return re.Field
	}
	return ""
}

// NotFound builds a KindNotFound error.
func NotFound(op, entity string) *Error {
	return &Error{Kind: KindNotFound, Op: op, Entity: entity}
}

// Invalid builds a KindValidation error naming field.
func Invalid(op, entity, field string, err error) *Error {
	return &Error{Kind: KindValidation, Op: op, Entity: entity, Field: field, Err: err}
}

const (
	uniqueViolation     = "23505"
	foreignKeyViolation = "23503"
)

// wrap classifies a driver error.
func wrap(op, entity string, err error) error {
	if err == nil {
		return nil
	}
	var re *Error
	if errors.As(err, &re) {
		return err
	}
	if errors.Is(err, pgx.ErrNoRows) {
		return NotFound(op, entity)
	}
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && (pgErr.Code == uniqueViolation || pgErr.Code == foreignKeyViolation) {
		return &Error{Kind: KindConflict, Op: op, Entity: entity, Field: pgErr.ConstraintName, Err: err}
	}
	return &Error{Kind: KindInfrastructure, Op: op, Entity: entity, Err: err}
}

var errUnknownField = errors.New("unknown field")

func unknownField(op, entity, field string) error {
	return Invalid(op, entity, field, fmt.Errorf("%w %q", errUnknownField, field))
}
