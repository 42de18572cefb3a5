package errors

import (
	"errors"
	"fmt"
)

// MissingInputError marks a row or field skipped because a required value is blank.
// No network call is attempted for it.
type MissingInputError struct {
	Field string
}

func (e *MissingInputError) Error() string {
	return fmt.Sprintf("missing required input: %s", e.Field)
}

// NewMissingInputError creates a MissingInputError for the named field.
func NewMissingInputError(field string) *MissingInputError {
	return &MissingInputError{Field: field}
}

// StageInputError is returned when a stage cannot read its input file.
// It is the only error that aborts a stage.
type StageInputError struct {
	Path  string
	Cause error
}

func (e *StageInputError) Error() string {
	return fmt.Sprintf("input file %s could not be read: %v", e.Path, e.Cause)
}

func (e *StageInputError) Unwrap() error {
	return e.Cause
}

// NewStageInputError creates a StageInputError.
func NewStageInputError(path string, cause error) *StageInputError {
	return &StageInputError{Path: path, Cause: cause}
}

// IsStageInputError reports whether err is a StageInputError (even when wrapped).
func IsStageInputError(err error) bool {
	var sErr *StageInputError
	return errors.As(err, &sErr)
}
