// Package validation checks request payloads before they reach the services.
// Failures are reported as a field to message map.
package validation

import (
	"fmt"

	"github.com/google/uuid"

	"github.com/ndewijer/Investment-Planner-Backend/internal/apperrors"
	"github.com/ndewijer/Investment-Planner-Backend/internal/precision"
)

// Error is the field-level validation failure returned by every validator.
type Error = apperrors.ValidationError

// ValidateUUID checks if a string is a valid UUID
func ValidateUUID(id string) error {
	if _, err := uuid.Parse(id); err != nil {
		return fmt.Errorf("%w: %s", apperrors.ErrInvalidUUID, id)
	}
	return nil
}

// result turns a collected field map into an error, or nil when empty.
func result(errors map[string]string) error {
	if len(errors) > 0 {
		return &Error{Fields: errors}
	}
	return nil
}

// amountError returns the message for a money amount that must be stored as
// at least one cent, or "" when the amount is valid.
func amountError(amount float64) string {
	switch {
	case !finite(amount) || amount <= 0:
		return "amount must be greater than 0"
	case precision.Money(amount) <= 0:
		return "amount must be at least 0.01"
	}
	return ""
}
