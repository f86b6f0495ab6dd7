package common

import (
	"errors"
	"fmt"
)

// Error kinds. Every error returned by services wraps exactly one of these.
var (
	ErrNotFound     = errors.New("not found")
	ErrValidation   = errors.New("validation error")
	ErrBusinessRule = errors.New("business rule violation")
	ErrConflict     = errors.New("conflict")
	ErrPersistence  = errors.New("persistence failure")
)

// DomainError pairs an error kind with a message safe to show to clients.
// Err holds the underlying cause, which is logged but never sent out.
type DomainError struct {
	Kind    error
	Message string
	Err     error
}

func (e *DomainError) Error() string {
	if e.Err != nil {
		return e.Message + ": " + e.Err.Error()
	}
	return e.Message
}

func (e *DomainError) Unwrap() []error {
	if e.Err != nil {
		return []error{e.Kind, e.Err}
	}
	return []error{e.Kind}
}

// NotFoundError reports a missing resource
func NotFoundError(resource, id string) error {
	return &DomainError{Kind: ErrNotFound, Message: fmt.Sprintf("%s %s not found", resource, id)}
}

// ValidationError reports malformed input, rejected before any state is touched
func ValidationError(format string, args ...interface{}) error {
	return &DomainError{Kind: ErrValidation, Message: fmt.Sprintf(format, args...)}
}

// BusinessRuleError reports a request that is well formed but not allowed
func BusinessRuleError(message string) error {
	return &DomainError{Kind: ErrBusinessRule, Message: message}
}

// ConflictError reports a lost optimistic-concurrency race
func ConflictError(resource, id string) error {
	return &DomainError{
		Kind:    ErrConflict,
		Message: fmt.Sprintf("%s %s was modified concurrently, reload and retry", resource, id),
	}
}

// PersistenceError wraps a storage failure for the given operation
func PersistenceError(operation string, err error) error {
	return &DomainError{Kind: ErrPersistence, Message: "failed to " + operation, Err: err}
}

// PublicMessage returns the client-facing message of err
func PublicMessage(err error) string {
	var de *DomainError
	if errors.As(err, &de) {
		return de.Message
	}
	return "operation could not be completed"
}
