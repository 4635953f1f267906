package apperrors

import (
	"context"
	"errors"
	"fmt"
)

// Process exit codes.
const (
	ExitSuccess       = 0
	ExitErrorGeneric  = 1
	ExitErrorTimeout  = 2
	ExitErrorUpstream = 3 // Gemini failed or returned nothing usable
	ExitErrorConfig   = 4 // bad flags, bad config file or bad operands
	ExitErrorCanceled = 130
)

// ConfigError is a problem with flags, environment or the config file.
type ConfigError struct {
	Message string
}

func (e ConfigError) Error() string { return e.Message }

// NewConfigError formats a ConfigError.
func NewConfigError(format string, a ...any) error {
	return ConfigError{Message: fmt.Sprintf(format, a...)}
}

// ValidationError rejects one input field. Message is meant for the learner
// and is already in the tutor language.
type ValidationError struct {
	Field   string
	Message string
}

func (e ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// CollaboratorError reports a failed call to the generative-language
// service. Collaborator is "explanation", "speech" or "chat".
type CollaboratorError struct {
	Collaborator string
	Cause        error
}

func (e CollaboratorError) Error() string {
	if e.Cause == nil {
		return e.Collaborator + " unavailable"
	}
	return fmt.Sprintf("%s unavailable: %v", e.Collaborator, e.Cause)
}

func (e CollaboratorError) Unwrap() error { return e.Cause }

// IsContextError reports whether err comes from a canceled or expired context.
func IsContextError(err error) bool {
	return errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded)
}

// ExitCodeFor maps err to the process exit code; nil is ExitSuccess.
// Deadlines win over collaborator failures so that a slow Gemini call
// exits with ExitErrorTimeout.
func ExitCodeFor(err error) int {
	var (
		cfgErr    ConfigError
		valErr    ValidationError
		collabErr CollaboratorError
	)
	switch {
	case err == nil:
		return ExitSuccess
	case errors.As(err, &cfgErr), errors.As(err, &valErr):
		return ExitErrorConfig
	case errors.Is(err, context.DeadlineExceeded):
		return ExitErrorTimeout
	case errors.Is(err, context.Canceled):
		return ExitErrorCanceled
	case errors.As(err, &collabErr):
		return ExitErrorUpstream
	default:
		return ExitErrorGeneric
	}
}
