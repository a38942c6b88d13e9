package core

import (
	"errors"
	"fmt"
)

// =============================================================================
// Core Error Types
// =============================================================================

// ConfigError reports a fatal pre-flight problem with the process configuration.
// Nothing in the pipeline runs once one of these is returned.
type ConfigError struct {
	Field string
	Cause error
}

func (e *ConfigError) Error() string {
	if e.Field != "" {
		return fmt.Sprintf("configuration error (%s): %v", e.Field, e.Cause)
	}
	return fmt.Sprintf("configuration error: %v", e.Cause)
}

func (e *ConfigError) Unwrap() error {
	return e.Cause
}

// TransportError wraps a failed exchange with the generation service.
// It is never retried.
type TransportError struct {
	Stage string
	Cause error
}

func (e *TransportError) Error() string {
	return fmt.Sprintf("generation call failed in %s: %v", e.Stage, e.Cause)
}

func (e *TransportError) Unwrap() error {
	return e.Cause
}

// ValueKindError reports a decoded field whose value is outside its closed set.
// Unlike a decode fallback it is not defaulted; the caller has to restart the
// analysis step.
type ValueKindError struct {
	Field string
	Value any
	Cause error
}

func (e *ValueKindError) Error() string {
	return fmt.Sprintf("invalid value for %s: %v: %v", e.Field, e.Value, e.Cause)
}

func (e *ValueKindError) Unwrap() error {
	return e.Cause
}

// =============================================================================
// Predefined Error Values
// =============================================================================

var (
	ErrNoAPIKey     = errors.New("API key not configured")
	ErrInvalidInput = errors.New("invalid input")
	ErrNilStage     = errors.New("pipeline stage not configured")
)

// =============================================================================
// Error Classification Functions
// =============================================================================

// IsConfigError reports whether err is a pre-flight configuration failure.
func IsConfigError(err error) bool {
	var configErr *ConfigError
	return errors.As(err, &configErr)
}

// IsTransportError reports whether err came from the generation service.
func IsTransportError(err error) bool {
	var transportErr *TransportError
	return errors.As(err, &transportErr)
}

// IsValueKindError reports whether err is a closed-set value violation.
func IsValueKindError(err error) bool {
	var valueErr *ValueKindError
	return errors.As(err, &valueErr)
}

// =============================================================================
// Error Creation Helpers
// =============================================================================

// NewConfigError creates a ConfigError for field.
func NewConfigError(field string, cause error) *ConfigError {
	return &ConfigError{Field: field, Cause: cause}
}

// NewTransportError creates a TransportError for stage.
func NewTransportError(stage string, cause error) *TransportError {
	return &TransportError{Stage: stage, Cause: cause}
}

// NewValueKindError creates a ValueKindError.
func NewValueKindError(field string, value any, cause error) *ValueKindError {
	return &ValueKindError{Field: field, Value: value, Cause: cause}
}
