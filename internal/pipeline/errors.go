package pipeline

import (
	"errors"
	"fmt"
)

// Error is a contained pipeline failure for one invocation.
type Error struct {
	// Code identifies the error category.
	Code ErrorCode

	// InvocationID identifies the affected invocation.
	InvocationID string

	// Err is the underlying cause.
	Err error
}

// ErrorCode categorizes pipeline errors.
type ErrorCode string

const (
	// ErrCodeMissingPayload means the event carried no payload. Nothing else ran.
	ErrCodeMissingPayload ErrorCode = "MISSING_PAYLOAD"

	// ErrCodeUnresolvedLaunchTarget means no launch Intent could be built.
	// Foregrounding was skipped; delivery was not affected.
	ErrCodeUnresolvedLaunchTarget ErrorCode = "UNRESOLVED_LAUNCH_TARGET"

	// ErrCodeForegroundFailed means the activation collaborator rejected a
	// valid Intent.
	ErrCodeForegroundFailed ErrorCode = "FOREGROUND_FAILED"

	// ErrCodeDeliveryFailed means the application layer rejected the event.
	ErrCodeDeliveryFailed ErrorCode = "DELIVERY_FAILED"
)

// Error implements the error interface.
func (e *Error) Error() string {
	if e.InvocationID != "" {
		return fmt.Sprintf("%s: %v (invocation=%s)", e.Code, e.Err, e.InvocationID)
	}
	return fmt.Sprintf("%s: %v", e.Code, e.Err)
}

// Unwrap returns the underlying cause.
func (e *Error) Unwrap() error {
	return e.Err
}

// IsMissingPayload reports whether err is a MISSING_PAYLOAD error.
func IsMissingPayload(err error) bool {
	return hasCode(err, ErrCodeMissingPayload)
}

// IsUnresolvedLaunchTarget reports whether err is an UNRESOLVED_LAUNCH_TARGET error.
func IsUnresolvedLaunchTarget(err error) bool {
	return hasCode(err, ErrCodeUnresolvedLaunchTarget)
}

// IsForegroundFailed reports whether err is a FOREGROUND_FAILED error.
func IsForegroundFailed(err error) bool {
	return hasCode(err, ErrCodeForegroundFailed)
}

// IsDeliveryFailed reports whether err is a DELIVERY_FAILED error.
func IsDeliveryFailed(err error) bool {
	return hasCode(err, ErrCodeDeliveryFailed)
}

// CodeOf returns the code of the first *Error in err's chain, or "".
func CodeOf(err error) ErrorCode {
	var pe *Error
	if errors.As(err, &pe) {
		return pe.Code
	}
	return ""
}

func hasCode(err error, code ErrorCode) bool {
	var pe *Error
	if errors.As(err, &pe) {
		return pe.Code == code
	}
	return false
}
