package dupcheck

import (
	"errors"
	"fmt"
)

// Common sentinel errors for the library.
var (
	// ErrInvalidArgument indicates a malformed detection input (nil pool, nil record, wrong variant).
	ErrInvalidArgument = errors.New("invalid argument")

	// ErrUnknownEntityType indicates an entity type with no rule set.
	ErrUnknownEntityType = errors.New("unknown entity type")

	// ErrInvalidConfig indicates that the configuration is invalid.
	ErrInvalidConfig = errors.New("invalid configuration")

	// ErrSourceNotFound indicates that a requested record source is not registered.
	ErrSourceNotFound = errors.New("record source not found")

	// ErrSourceFailed indicates that a record source could not supply records.
	ErrSourceFailed = errors.New("record source failed")
)

// ArgumentError reports a malformed argument passed to the detector.
type ArgumentError struct {
	// Arg is the argument name
	Arg string
	// Details provides additional context
	Details string
}

// Error implements the error interface.
func (e *ArgumentError) Error() string {
	return fmt.Sprintf("invalid argument '%s': %s", e.Arg, e.Details)
}

// Unwrap returns the underlying sentinel error.
func (e *ArgumentError) Unwrap() error {
	return ErrInvalidArgument
}

// EntityMismatchError reports a record whose variant differs from the requested entity type.
type EntityMismatchError struct {
	// Arg is the argument holding the record ("candidate", "existing" or "pool")
	Arg string
	// Expected is the entity type requested by the caller
	Expected EntityType
	// Got is the entity type of the offending record
	Got EntityType
	// Index is the pool position of the record; only meaningful for "pool"
	Index int
}

// Error implements the error interface.
func (e *EntityMismatchError) Error() string {
	if e.Arg == "pool" {
		return fmt.Sprintf("pool record %d is a %s, expected %s", e.Index, e.Got, e.Expected)
	}
	return fmt.Sprintf("%s is a %s, expected %s", e.Arg, e.Got, e.Expected)
}

// Unwrap returns the underlying sentinel error.
func (e *EntityMismatchError) Unwrap() error {
	return ErrInvalidArgument
}

// ConfigError represents a configuration error.
type ConfigError struct {
	// Field is the configuration field with the error
	Field string
	// Details provides additional context
	Details string
}

// Error implements the error interface.
func (e *ConfigError) Error() string {
	if e.Field != "" {
		return fmt.Sprintf("invalid configuration for '%s': %s", e.Field, e.Details)
	}
	return fmt.Sprintf("invalid configuration: %s", e.Details)
}

// Unwrap returns the underlying sentinel error.
func (e *ConfigError) Unwrap() error {
	return ErrInvalidConfig
}

// SourceError wraps an error with record source context.
type SourceError struct {
	// Source is the name of the source that failed
	Source string
	// Entity is the entity type that was requested
	Entity EntityType
	// Err is the underlying error
	Err error
}

// Error implements the error interface.
func (e *SourceError) Error() string {
	return fmt.Sprintf("%s: loading %s records: %v", e.Source, e.Entity, e.Err)
}

// Unwrap returns both the sentinel and the underlying error.
func (e *SourceError) Unwrap() []error {
	return []error{ErrSourceFailed, e.Err}
}
