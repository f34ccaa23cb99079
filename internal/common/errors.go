package common

import (
	"errors"
	"fmt"
)

// Sentinels for the pipeline error taxonomy. Callers discriminate with
// errors.Is to decide whether a failed run is worth retrying.
var (
	ErrExtraction    = errors.New("extraction failed")
	ErrNormalization = errors.New("normalization failed")
	ErrTimeout       = errors.New("deadline exceeded")
	ErrUnauthorized  = errors.New("unauthorized")
	ErrConfiguration = errors.New("invalid configuration")
)

// AppError ties a sentinel kind to a message and an optional cause.
// errors.Is matches both the kind and anything in the cause chain, so an
// authorization failure surfaced as a NormalizationError still matches
// ErrUnauthorized.
type AppError struct {
	Kind    error
	Message string
	Cause   error
}

func (e *AppError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %s: %v", e.Kind, e.Message, e.Cause)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

func (e *AppError) Unwrap() error {
	return e.Cause
}

func (e *AppError) Is(target error) bool {
	return errors.Is(e.Kind, target)
}

// Error constructors

func ExtractionError(message string, cause error) error {
	return &AppError{Kind: ErrExtraction, Message: message, Cause: cause}
}

func NormalizationError(message string, cause error) error {
	return &AppError{Kind: ErrNormalization, Message: message, Cause: cause}
}

// AuthorizationError is a NormalizationError whose cause chain carries
// ErrUnauthorized, so callers can tell a denied credential from a
// transient network failure.
func AuthorizationError(message string) error {
	return &AppError{Kind: ErrNormalization, Message: message, Cause: ErrUnauthorized}
}

func TimeoutError(message string, cause error) error {
	return &AppError{Kind: ErrTimeout, Message: message, Cause: cause}
}

func ConfigurationError(message string) error {
	return &AppError{Kind: ErrConfiguration, Message: message}
}

func WrapError(err error, message string) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%s: %w", message, err)
}
