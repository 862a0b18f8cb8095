package scheduler

import "fmt"

// SchedulerError is a typed failure surfaced to the session. Retryable
// errors leave the session in the ready phase with the message attached.
type SchedulerError struct {
	Code      string
	Message   string
	Retryable bool
}

func (e *SchedulerError) Error() string {
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

var (
	ErrSessionNotFound = &SchedulerError{Code: "sessionNotFound", Message: "booking session not found or expired"}
	ErrInvalidPhase    = &SchedulerError{Code: "invalidPhase", Message: "operation not permitted in the current session phase"}
	ErrBookingInFlight = &SchedulerError{Code: "bookingInFlight", Message: "a booking attempt is already in progress"}
)

// NewSelectionError reports an invalid host filter, date, or slot selection.
func NewSelectionError(msg string) error {
	return &SchedulerError{Code: "invalidSelection", Message: msg}
}

// NewBookingError wraps a store rejection. Conflicts are retryable: the
// recipient re-selects (or re-confirms) rather than the service retrying.
func NewBookingError(msg string, retryable bool) error {
	return &SchedulerError{Code: "bookingFailed", Message: msg, Retryable: retryable}
}
