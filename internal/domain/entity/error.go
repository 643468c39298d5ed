package entity

import (
	"errors"
	"fmt"
)

type ErrorCode string

const (
	ErrCodeNotFound           ErrorCode = "NOT_FOUND"
	ErrCodeActionFailed       ErrorCode = "ACTION_FAILED"
	ErrCodeRecognitionFailed  ErrorCode = "RECOGNITION_FAILED"
	ErrCodeTimeout            ErrorCode = "TIMEOUT"
	ErrCodePermissionDenied   ErrorCode = "PERMISSION_DENIED"
	ErrCodeInvalidCoordinates ErrorCode = "INVALID_COORDINATES"
	ErrCodeUnknown            ErrorCode = "UNKNOWN"
)

// AutomationError is the typed failure crossing every port boundary.
type AutomationError struct {
	Code    ErrorCode
	Op      string
	Message string
	Failure FailureType
	Cause   error
}

func (e *AutomationError) Error() string {
	msg := e.Message
	if e.Op != "" {
		msg = e.Op + ": " + msg
	}
	if e.Cause != nil {
		return fmt.Sprintf("%s: %s (caused by: %v)", e.Code, msg, e.Cause)
	}
	return fmt.Sprintf("%s: %s", e.Code, msg)
}

func (e *AutomationError) Unwrap() error {
	return e.Cause
}

// FailureType returns the explicit tag, or the code's default mapping.
func (e *AutomationError) FailureType() FailureType {
	if e.Failure != FailureNone {
		return e.Failure
	}
	switch e.Code {
	case ErrCodeNotFound:
		return FailureElementNotFound
	case ErrCodeRecognitionFailed:
		return FailureOCRFailed
	case ErrCodeTimeout:
		return FailureTimeout
	case ErrCodePermissionDenied:
		return FailurePermissionDenied
	case ErrCodeInvalidCoordinates:
		return FailureClickFailed
	case ErrCodeActionFailed:
		return ClassifyMessage(e.Message)
	default:
		return FailureUnknown
	}
}

func NewNotFoundError(op, what string) *AutomationError {
	return &AutomationError{
		Code:    ErrCodeNotFound,
		Op:      op,
		Message: fmt.Sprintf("%s not found", what),
		Failure: FailureElementNotFound,
	}
}

func NewActionFailedError(op string, failure FailureType, cause error) *AutomationError {
	return &AutomationError{
		Code:    ErrCodeActionFailed,
		Op:      op,
		Message: "action failed",
		Failure: failure,
		Cause:   cause,
	}
}

func NewRecognitionFailedError(op, detail string) *AutomationError {
	return &AutomationError{
		Code:    ErrCodeRecognitionFailed,
		Op:      op,
		Message: detail,
		Failure: FailureOCRFailed,
	}
}

func NewTimeoutError(op string, cause error) *AutomationError {
	return &AutomationError{
		Code:    ErrCodeTimeout,
		Op:      op,
		Message: "operation timed out",
		Failure: FailureTimeout,
		Cause:   cause,
	}
}

func NewPermissionDeniedError(op, detail string) *AutomationError {
	return &AutomationError{
		Code:    ErrCodePermissionDenied,
		Op:      op,
		Message: detail,
		Failure: FailurePermissionDenied,
	}
}

func NewInvalidCoordinatesError(op string, r Rect, screenW, screenH int) *AutomationError {
	return &AutomationError{
		Code:    ErrCodeInvalidCoordinates,
		Op:      op,
		Message: fmt.Sprintf("%s outside screen %dx%d", r, screenW, screenH),
	}
}

// NewInvalidRegionError rejects a region before the screen size is known.
func NewInvalidRegionError(op string, r Rect) *AutomationError {
	return &AutomationError{
		Code:    ErrCodeInvalidCoordinates,
		Op:      op,
		Message: fmt.Sprintf("%s has a negative origin or empty size", r),
	}
}

func NewUnknownError(op string, cause error) *AutomationError {
	return &AutomationError{
		Code:    ErrCodeUnknown,
		Op:      op,
		Message: "unexpected failure",
		Cause:   cause,
	}
}

// IsCode reports whether err wraps an AutomationError with the given code.
func IsCode(err error, code ErrorCode) bool {
	var ae *AutomationError
	return errors.As(err, &ae) && ae.Code == code
}

// FailureTypeOf classifies any error. Typed errors carry their own tag; plain
// errors fall back to substring classification of the message.
func FailureTypeOf(err error) FailureType {
	if err == nil {
		return FailureNone
	}
	var ae *AutomationError
	if errors.As(err, &ae) {
		return ae.FailureType()
	}
	return ClassifyMessage(err.Error())
}
