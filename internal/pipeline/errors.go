package pipeline

import (
	"errors"
	"fmt"
)

// ErrEscalationRequired reports that an order total exceeds the remaining
// monthly limit and placement must go through the escalation path instead.
var ErrEscalationRequired = errors.New("order total exceeds remaining monthly limit")

// ValidationError reports a precondition that failed locally, before any
// network call was made.
type ValidationError struct {
	Op     Operation
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Op, e.Reason)
}

// RequestFailure reports a non-success response from the backend. Message
// carries the backend's message verbatim when present, otherwise a
// per-operation fallback.
type RequestFailure struct {
	Op      Operation
	Status  int
	Message string
}

func (e *RequestFailure) Error() string {
	return fmt.Sprintf("%s: %s", e.Op, e.Message)
}

// PaymentVerificationFailure reports that the gateway callback succeeded but
// the backend rejected the signature or payment. Funds may be captured but
// unconfirmed, so callers must surface this distinctly from a plain
// RequestFailure.
type PaymentVerificationFailure struct {
	InvoiceID string
	Message   string
}

func (e *PaymentVerificationFailure) Error() string {
	return fmt.Sprintf("verify payment for invoice %s: %s", e.InvoiceID, e.Message)
}

func validationErr(op Operation, format string, args ...any) error {
	return &ValidationError{Op: op, Reason: fmt.Sprintf(format, args...)}
}
