package domain

import (
	"errors"
	"fmt"
)

var (
	ErrUnknownCategory     = errors.New("unknown product category")
	ErrInvalidPrice        = errors.New("price must not be negative")
	ErrInvalidAttribute    = errors.New("invalid product attribute")
	ErrConstraintViolation = errors.New("constraint violation")
	ErrNotFound            = errors.New("not found")
)

type ConstraintKind string

const (
	ConstraintUnique    ConstraintKind = "unique"
	ConstraintReference ConstraintKind = "reference"
)

// ConstraintError is a storage rejection classified by the adapter that
// produced it. It matches ErrConstraintViolation under errors.Is.
type ConstraintError struct {
	Kind  ConstraintKind
	Field string
	Err   error
}

func (e *ConstraintError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s constraint on %s: %v", e.Kind, e.Field, e.Err)
	}
	return fmt.Sprintf("%s constraint on %s", e.Kind, e.Field)
}

func (e *ConstraintError) Unwrap() error {
	return e.Err
}

func (e *ConstraintError) Is(target error) bool {
	return target == ErrConstraintViolation
}

// IsUniqueViolation reports whether err is a unique-key conflict on field.
func IsUniqueViolation(err error, field string) bool {
	var ce *ConstraintError
	return errors.As(err, &ce) && ce.Kind == ConstraintUnique && ce.Field == field
}

// IsReferenceViolation reports whether err is a missing-reference rejection.
func IsReferenceViolation(err error) bool {
	var ce *ConstraintError
	return errors.As(err, &ce) && ce.Kind == ConstraintReference
}
