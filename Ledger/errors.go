package Ledger

import (
	"errors"
	"fmt"
)

// NotFoundError means the referenced customer or transaction does not exist.
type NotFoundError struct {
	Entity string
	ID     uint
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s %d not found", e.Entity, e.ID)
}

// ValidationError carries field-level detail for malformed inputs.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Reason)
}

// PolicyViolationError is a business-rule refusal with a human-readable reason.
type PolicyViolationError struct {
	Reason string
}

func (e *PolicyViolationError) Error() string {
	return e.Reason
}

// ConcurrencyConflictError is returned only after the writer has exhausted its
// retry budget on a customer's balance version check.
type ConcurrencyConflictError struct {
	CustomerID uint
	Attempts   int
}

func (e *ConcurrencyConflictError) Error() string {
	return fmt.Sprintf("balance update for customer %d conflicted after %d attempts", e.CustomerID, e.Attempts)
}

// StorageError wraps a persistence failure. The unit of work it interrupted
// has been rolled back in full, so the caller may safely retry from the top.
type StorageError struct {
	Op  string
	Err error
}

func (e *StorageError) Error() string {
	return fmt.Sprintf("storage failure during %s: %v", e.Op, e.Err)
}

func (e *StorageError) Unwrap() error {
	return e.Err
}

// errVersionConflict is the internal signal that a conditional balance write
// matched zero rows and the attempt should be retried.
var errVersionConflict = errors.New("customer version conflict")
