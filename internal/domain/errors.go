package domain

import (
	"fmt"
	"time"
)

// Error codes for the API surface.
const (
	ErrCodeInsufficientData       = "INSUFFICIENT_DATA"
	ErrCodeInvalidSymptomData     = "INVALID_SYMPTOM_DATA"
	ErrCodeConcurrentModification = "CONCURRENT_MODIFICATION"
	ErrCodePersistence            = "PERSISTENCE_ERROR"
	ErrCodeInvalidInput           = "INVALID_INPUT"
	ErrCodeNotFound               = "NOT_FOUND"
	ErrCodeInternal               = "INTERNAL_ERROR"
	ErrCodeRateLimit              = "RATE_LIMIT_EXCEEDED"
)

// InsufficientDataError indicates the cycle history is too sparse for a
// prediction. It is non-fatal: the prediction engine degrades to a
// low-confidence estimate where possible and only returns this error
// when the history is empty.
type InsufficientDataError struct {
	Required int
	Actual   int
}

// Error implements the error interface.
func (e *InsufficientDataError) Error() string {
	return fmt.Sprintf("insufficient cycle history: need at least %d record(s), have %d", e.Required, e.Actual)
}

// InvalidSymptomDataError indicates a malformed symptom entry. The entry
// is skipped and the run continues.
type InvalidSymptomDataError struct {
	Field  string
	Reason string
}

// Error implements the error interface.
func (e *InvalidSymptomDataError) Error() string {
	return fmt.Sprintf("invalid symptom data in field '%s': %s", e.Field, e.Reason)
}

// ConcurrentModificationError indicates a dedup race: two active
// diagnoses for the same condition materialized. Callers must retry or
// reconcile; screening runs for one user are expected to be serialized.
type ConcurrentModificationError struct {
	UserID      string
	ConditionID string
}

// Error implements the error interface.
func (e *ConcurrentModificationError) Error() string {
	return fmt.Sprintf("concurrent modification detected for user %s, condition %s", e.UserID, e.ConditionID)
}

// PersistenceError wraps a storage collaborator failure. The screening
// engine propagates these unchanged to the caller.
type PersistenceError struct {
	Op  string
	Err error
}

// Error implements the error interface.
func (e *PersistenceError) Error() string {
	return fmt.Sprintf("persistence error during %s: %v", e.Op, e.Err)
}

// Unwrap exposes the underlying storage error.
func (e *PersistenceError) Unwrap() error {
	return e.Err
}

// APIError is the standardized error payload returned by the HTTP layer.
type APIError struct {
	Code      string    `json:"code"`
	Message   string    `json:"message"`
	Details   string    `json:"details,omitempty"`
	Timestamp time.Time `json:"timestamp"`
	RequestID string    `json:"request_id,omitempty"`
}

// Error implements the error interface.
func (e *APIError) Error() string {
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// NewAPIError creates a new APIError with timestamp.
func NewAPIError(code, message, details, requestID string) *APIError {
	return &APIError{
		Code:      code,
		Message:   message,
		Details:   details,
		Timestamp: time.Now().UTC(),
		RequestID: requestID,
	}
}
