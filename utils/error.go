package utils

import (
	"errors"
	"fmt"

	"github.com/shopspring/decimal"
)

var ErrorRecordNotFound = errors.New("record not found")

// NotFoundError reports a missing parent entity (project, stage, activity,
// material). It unwraps to ErrorRecordNotFound so callers can match either.
type NotFoundError struct {
	Entity string
	ID     int
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s %d not found", e.Entity, e.ID)
}

func (e *NotFoundError) Unwrap() error {
	return ErrorRecordNotFound
}

// ValidationError is a domain-rule violation. For quantity-cap violations it
// carries the attempted total and the limit so the caller can show the
// overage directly.
type ValidationError struct {
	Message     string
	Description string
	Attempted   decimal.Decimal
	Limit       decimal.Decimal
}

func (e *ValidationError) Error() string {
	return e.Message
}

// Overage is how far the attempted total exceeds the limit.
func (e *ValidationError) Overage() decimal.Decimal {
	return e.Attempted.Sub(e.Limit)
}
