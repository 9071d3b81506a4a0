package core

import (
	"errors"
	"fmt"
)

// Domain errors - centralized error definitions
var (
	// Not found errors
	ErrNotFound           = errors.New("resource not found")
	ErrCredentialNotFound = fmt.Errorf("%w: credential", ErrNotFound)
	ErrReportNotFound     = fmt.Errorf("%w: report", ErrNotFound)
	ErrSectionNotFound    = fmt.Errorf("%w: section", ErrNotFound)
	ErrCacheMiss          = fmt.Errorf("%w: cache entry", ErrNotFound)

	// Credential pool errors
	ErrNoCredentialAvailable = errors.New("no active credential available")
	ErrCredentialInactive    = errors.New("credential is inactive")

	// Generation errors
	ErrRateLimited     = errors.New("rate limit exceeded")
	ErrSchemaViolation = errors.New("artifact failed schema validation")
	ErrEmptyResponse   = errors.New("empty response from model")
	ErrDegraded        = errors.New("generation degraded after all retries")

	// Validation errors
	ErrInvalidSignal  = errors.New("linked signal is malformed")
	ErrRiskCoupling   = errors.New("risk level inconsistent with gap severity")
	ErrUnknownScale   = errors.New("unknown scoring scale")
	ErrUnknownSection = errors.New("section id not in catalogue")
	ErrNoInputs       = errors.New("section has no answered questions")
	ErrDuplicateEntry = errors.New("duplicate entry for unique key")
	ErrEncryptionKey  = errors.New("credential encryption key unavailable")
)

// Error constructors with context
func NewNotFoundError(resource string, id string) error {
	return fmt.Errorf("%w: %s with id %s", ErrNotFound, resource, id)
}

func NewValidationError(field string, reason string) error {
	return fmt.Errorf("validation failed for %s: %s", field, reason)
}

func NewSignalError(signal string, n int) error {
	return fmt.Errorf("%w: %q must reference Q1..Q%d", ErrInvalidSignal, signal, n)
}

// Error checking helpers
func IsNotFoundError(err error) bool {
	return errors.Is(err, ErrNotFound)
}

func IsRetriable(err error) bool {
	return errors.Is(err, ErrRateLimited) ||
		errors.Is(err, ErrSchemaViolation) ||
		errors.Is(err, ErrEmptyResponse) ||
		errors.Is(err, ErrInvalidSignal) ||
		errors.Is(err, ErrRiskCoupling)
}

func IsValidationError(err error) bool {
	return errors.Is(err, ErrSchemaViolation) ||
		errors.Is(err, ErrInvalidSignal) ||
		errors.Is(err, ErrRiskCoupling)
}
