package core

import (
	"errors"
	"fmt"
	"strings"
)

var (
	ErrInvalidDay   = errors.New("invalid day")
	ErrInvalidRange = errors.New("end day must be the same as or after start day")
)

// FieldError is a single validation failure on a named input field.
type FieldError struct {
	Field string
	Err   error
}

func (e FieldError) Error() string {
	if e.Field == "" {
		return e.Err.Error()
	}
	return fmt.Sprintf("%s: %v", e.Field, e.Err)
}

func (e FieldError) Unwrap() error { return e.Err }

// ValidationErrors collects every field failure of one input.
type ValidationErrors struct {
	Fields []FieldError
}

// Add records a failure on field.
func (v *ValidationErrors) Add(field string, err error) {
	v.Fields = append(v.Fields, FieldError{Field: field, Err: err})
}

// Err returns v when at least one failure was recorded, nil otherwise.
func (v *ValidationErrors) Err() error {
	if v == nil || len(v.Fields) == 0 {
		return nil
	}
	return v
}

func (v *ValidationErrors) Error() string {
	msgs := make([]string, len(v.Fields))
	for i, f := range v.Fields {
		msgs[i] = f.Error()
	}
	return "validation failed: " + strings.Join(msgs, "; ")
}

// Unwrap exposes the individual field errors to errors.Is.
func (v *ValidationErrors) Unwrap() []error {
	errs := make([]error, len(v.Fields))
	for i, f := range v.Fields {
		errs[i] = f
	}
	return errs
}

// AuthError is a non-success status from the provider's login endpoint.
type AuthError struct {
	Code        int
	Remediation string
}

func (e *AuthError) Error() string {
	msg := fmt.Sprintf("authentication failed with code %d", e.Code)
	if e.Remediation != "" {
		msg += ": " + e.Remediation
	}
	return msg
}
