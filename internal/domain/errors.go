// Package domain contains the quote entity, the pure collection algorithms
// that operate on it, and the error taxonomy shared by every layer.
//
// Errors here describe what went wrong with quotes, slots and the remote
// collection. The HTTP adapter and the CLI decide how to present them.
package domain

import (
	"errors"
	"fmt"
)

// Sentinels matched with errors.Is. Every typed error below unwraps to one.
var (
	ErrNotFound    = errors.New("not found")
	ErrValidation  = errors.New("validation failed")
	ErrUnavailable = errors.New("unavailable")
)

// NotFoundError names a missing slot or quote.
type NotFoundError struct {
	Entity string
	ID     string
}

func (e *NotFoundError) Error() string {
	if e.ID == "" {
		return e.Entity + " not found"
	}

	return fmt.Sprintf("%s %q not found", e.Entity, e.ID)
}

func (e *NotFoundError) Unwrap() error { return ErrNotFound }

// NewNotFoundError reports that entity id does not exist. id may be empty.
func NewNotFoundError(entity, id string) error {
	return &NotFoundError{Entity: entity, ID: id}
}

// ValidationError reports which quote field broke which rule.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	if e.Field == "" {
		return "validation failed: " + e.Message
	}

	return fmt.Sprintf("validation failed for %s: %s", e.Field, e.Message)
}

func (e *ValidationError) Unwrap() error { return ErrValidation }

// NewValidationError reports a rule broken by field.
func NewValidationError(field, message string) error {
	return &ValidationError{Field: field, Message: message}
}

// MalformedDocumentError wraps the decoder failure for a quote document read
// from Source (a slot, an import). It matches ErrValidation and the cause.
type MalformedDocumentError struct {
	Source string
	Cause  error
}

func (e *MalformedDocumentError) Error() string {
	return fmt.Sprintf("malformed %s document: %v", e.Source, e.Cause)
}

func (e *MalformedDocumentError) Unwrap() []error {
	return []error{ErrValidation, e.Cause}
}

// NewMalformedDocumentError wraps cause for the named source.
func NewMalformedDocumentError(source string, cause error) error {
	return &MalformedDocumentError{Source: source, Cause: cause}
}

// UnavailableError reports that the remote quote service, or another
// dependency, could not serve a request. Cause is optional.
type UnavailableError struct {
	Service string
	Reason  string
	Cause   error
}

func (e *UnavailableError) Error() string {
	msg := fmt.Sprintf("service %q unavailable", e.Service)
	if e.Reason != "" {
		msg += ": " + e.Reason
	}

	if e.Cause != nil {
		msg += ": " + e.Cause.Error()
	}

	return msg
}

func (e *UnavailableError) Unwrap() []error {
	if e.Cause == nil {
		return []error{ErrUnavailable}
	}

	return []error{ErrUnavailable, e.Cause}
}

// NewUnavailableError reports service as unreachable. reason may be empty.
func NewUnavailableError(service, reason string) error {
	return &UnavailableError{Service: service, Reason: reason}
}

// WrapUnavailable reports service as unusable because of cause, such as a
// reply that could not be decoded.
func WrapUnavailable(service, reason string, cause error) error {
	return &UnavailableError{Service: service, Reason: reason, Cause: cause}
}

func IsNotFound(err error) bool { return errors.Is(err, ErrNotFound) }
func IsValidation(err error) bool { return errors.Is(err, ErrValidation) }
func IsUnavailable(err error) bool { return errors.Is(err, ErrUnavailable) }

// IsMalformedDocument reports whether err came from decoding a quote document.
func IsMalformedDocument(err error) bool {
	var malformed *MalformedDocumentError
	return errors.As(err, &malformed)
}
