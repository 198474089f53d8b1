package booking

import (
	"errors"
	"fmt"
	"time"
)

var (
	ErrHotelNotFound   = errors.New("hotel not found")
	ErrBookingNotFound = errors.New("booking not found")
)

// ValidationError covers malformed or malicious input and structural date
// errors. It is never retried and always surfaces before any provider call.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	if e.Field == "" {
		return e.Reason
	}
	return fmt.Sprintf("%s: %s", e.Field, e.Reason)
}

// RateLimitError carries the wait guidance for a denied request.
type RateLimitError struct {
	Class      OperationClass
	RetryAfter time.Duration
	ResetAt    time.Time
}

func (e *RateLimitError) Error() string {
	return fmt.Sprintf("rate limit exceeded for %s, retry in %s", e.Class, e.RetryAfter)
}

// RetryAfterSeconds is the whole-second wait for a Retry-After header.
func (e *RateLimitError) RetryAfterSeconds() int {
	secs := int(e.RetryAfter / time.Second)
	if e.RetryAfter%time.Second != 0 {
		secs++
	}
	if secs < 1 {
		secs = 1
	}
	return secs
}

// ProviderError marks a failed call to an inventory backend. The retry
// executor sees these; after retries are exhausted the last one surfaces
// unchanged.
type ProviderError struct {
	Provider string
	Op       string
	Err      error
}

func (e *ProviderError) Error() string {
	return fmt.Sprintf("provider %s: %s: %v", e.Provider, e.Op, e.Err)
}

func (e *ProviderError) Unwrap() error { return e.Err }

// PaymentError aborts the mutation that triggered it on create/modify paths;
// during cancellation it is logged and swallowed instead.
type PaymentError struct {
	Stage string // intent, confirm, refund
	Err   error
}

func (e *PaymentError) Error() string {
	return fmt.Sprintf("payment %s failed: %v", e.Stage, e.Err)
}

func (e *PaymentError) Unwrap() error { return e.Err }

// NotificationError is always non-fatal; callers log it and move on.
type NotificationError struct {
	Kind string
	Err  error
}

func (e *NotificationError) Error() string {
	return fmt.Sprintf("notification %s failed: %v", e.Kind, e.Err)
}

func (e *NotificationError) Unwrap() error { return e.Err }
