package apperrors

import (
	"errors"
	"fmt"
	"sort"
	"strings"
)

// Domain entity errors represent missing entities in the system.
// These errors indicate that a requested resource does not exist.
var (
	// ErrPortfolioNotFound indicates that a portfolio with the given ID does not exist.
	ErrPortfolioNotFound = errors.New("portfolio not found")

	// ErrContributionNotFound indicates that a contribution with the given ID does not exist.
	ErrContributionNotFound = errors.New("contribution not found")
)

// Business logic errors represent constraint violations that are not plain input mistakes.
var (
	// ErrPortfolioHasContributions indicates that a portfolio cannot be deleted
	// because contributions still reference it.
	ErrPortfolioHasContributions = errors.New("portfolio has contributions")

	// ErrInvalidUUID indicates that a provided ID is not a valid UUID format.
	ErrInvalidUUID = errors.New("invalid UUID format")
)

// Operation failure errors used as user-facing messages by the HTTP layer.
var (
	ErrFailedToRetrievePortfolios    = errors.New("failed to retrieve portfolios")
	ErrFailedToRetrievePortfolio     = errors.New("failed to retrieve portfolio")
	ErrFailedToUpdatePortfolio       = errors.New("failed to update portfolio")
	ErrFailedToDeletePortfolio       = errors.New("failed to delete portfolio")
	ErrFailedToRetrieveContributions = errors.New("failed to retrieve contributions")
	ErrFailedToRetrieveContribution  = errors.New("failed to retrieve contribution")
	ErrFailedToSaveContribution      = errors.New("failed to save contribution")
	ErrFailedToDeleteContribution    = errors.New("failed to delete contribution")
	ErrFailedToDistribute            = errors.New("failed to distribute contribution")
	ErrFailedToGetProjection         = errors.New("failed to get projection")
	ErrFailedToGetDividends          = errors.New("failed to get dividends")
	ErrFailedToGetSummary            = errors.New("failed to get summary")
	ErrFailedToGetAlerts             = errors.New("failed to get alerts")
	ErrFailedToExport                = errors.New("failed to export data")
)

// ValidationError reports bad input. Fields maps the offending field to a
// human readable message. It is always recoverable by the caller and no
// state has been changed when it is returned.
type ValidationError struct {
	Fields map[string]string
}

// NewValidationError creates a ValidationError for a single field.
func NewValidationError(field, format string, args ...any) *ValidationError {
	return &ValidationError{Fields: map[string]string{field: fmt.Sprintf(format, args...)}}
}

func (e *ValidationError) Error() string {
	keys := make([]string, 0, len(e.Fields))
	for field := range e.Fields {
		keys = append(keys, field)
	}
	sort.Strings(keys)

	msgs := make([]string, 0, len(keys))
	for _, field := range keys {
		msgs = append(msgs, fmt.Sprintf("%s: %s", field, e.Fields[field]))
	}
	return strings.Join(msgs, "; ")
}

// StorageError wraps a failure of the persistence layer. The operation that
// produced it did not commit its write; the caller may retry.
type StorageError struct {
	Op  string
	Err error
}

// NewStorageError wraps err with the failed operation name.
// It returns nil when err is nil and passes not-found errors through unchanged.
func NewStorageError(op string, err error) error {
	if err == nil {
		return nil
	}
	if IsNotFound(err) {
		return err
	}
	var se *StorageError
	if errors.As(err, &se) {
		return err
	}
	return &StorageError{Op: op, Err: err}
}

func (e *StorageError) Error() string {
	return fmt.Sprintf("storage failure during %s: %v", e.Op, e.Err)
}

func (e *StorageError) Unwrap() error {
	return e.Err
}

// IsNotFound reports whether err is one of the not-found sentinels.
func IsNotFound(err error) bool {
	return errors.Is(err, ErrPortfolioNotFound) || errors.Is(err, ErrContributionNotFound)
}

// IsValidation reports whether err is a ValidationError.
func IsValidation(err error) bool {
	var ve *ValidationError
	return errors.As(err, &ve)
}

// IsStorage reports whether err is a StorageError.
func IsStorage(err error) bool {
	var se *StorageError
	return errors.As(err, &se)
}
