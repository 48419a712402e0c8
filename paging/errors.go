package paging

import (
	"errors"
	"fmt"
)

// ErrorCode represents different types of simulator errors
type ErrorCode int

const (
	// Generic errors
	ErrCodeUnknown ErrorCode = iota

	// Input errors
	ErrCodeInvalidReference
	ErrCodeInvalidCapacity
	ErrCodeInvalidRange
	ErrCodeUnknownPolicy

	// Trace archive errors
	ErrCodeTraceCorrupted
	ErrCodeUnsupportedCompression

	// Configuration errors
	ErrCodeInvalidConfig
)

// SimError represents a simulator error with context
type SimError struct {
	Code    ErrorCode
	Message string
	Op      string // Operation that failed
	Err     error  // Underlying error (if any)
}

// Error implements the error interface
func (e *SimError) Error() string {
	if e.Op != "" {
		if e.Err != nil {
			return fmt.Sprintf("%s: %s: %v", e.Op, e.Message, e.Err)
		}
		return fmt.Sprintf("%s: %s", e.Op, e.Message)
	}
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

// Unwrap returns the underlying error
func (e *SimError) Unwrap() error {
	return e.Err
}

// Is checks if the error matches a specific error code
func (e *SimError) Is(target error) bool {
	if t, ok := target.(*SimError); ok {
		return e.Code == t.Code
	}
	return false
}

// NewSimError creates a new simulator error
func NewSimError(code ErrorCode, op, message string, err error) *SimError {
	return &SimError{
		Code:    code,
		Message: message,
		Op:      op,
		Err:     err,
	}
}

// Sentinels for errors.Is comparisons; only the code is compared.
var (
	ErrInvalidReference = &SimError{Code: ErrCodeInvalidReference, Message: "invalid reference"}
	ErrInvalidCapacity  = &SimError{Code: ErrCodeInvalidCapacity, Message: "invalid capacity"}
	ErrUnknownPolicy    = &SimError{Code: ErrCodeUnknownPolicy, Message: "unknown policy"}
	ErrTraceCorrupted   = &SimError{Code: ErrCodeTraceCorrupted, Message: "trace corrupted"}
)

// Helper functions for common errors

func ErrBadReference(op string, position int, token string, err error) *SimError {
	return NewSimError(
		ErrCodeInvalidReference,
		op,
		fmt.Sprintf("reference %d (%q) is not an integer page number", position, token),
		err,
	)
}

func ErrBadCapacity(op string, capacity int) *SimError {
	return NewSimError(
		ErrCodeInvalidCapacity,
		op,
		fmt.Sprintf("frame capacity %d is out of range", capacity),
		nil,
	)
}

func ErrUnparsableCapacity(op string, value string, err error) *SimError {
	return NewSimError(
		ErrCodeInvalidCapacity,
		op,
		fmt.Sprintf("frame capacity %q is not an integer", value),
		err,
	)
}

func ErrBadRange(op string, lo, hi int) *SimError {
	return NewSimError(
		ErrCodeInvalidRange,
		op,
		fmt.Sprintf("capacity range [%d, %d] is invalid", lo, hi),
		nil,
	)
}

func ErrPolicyNotFound(op string, name string) *SimError {
	return NewSimError(
		ErrCodeUnknownPolicy,
		op,
		fmt.Sprintf("unknown policy %q (must be fifo, lru or opt)", name),
		nil,
	)
}

func ErrCorruptTrace(op string, reason string, err error) *SimError {
	return NewSimError(
		ErrCodeTraceCorrupted,
		op,
		"trace corrupted: "+reason,
		err,
	)
}

func ErrCompression(op string, t CompressionType) *SimError {
	return NewSimError(
		ErrCodeUnsupportedCompression,
		op,
		fmt.Sprintf("unsupported compression type: %d", t),
		nil,
	)
}

func ErrConfig(op string, message string) *SimError {
	return NewSimError(
		ErrCodeInvalidConfig,
		op,
		message,
		nil,
	)
}

// IsErrorCode checks if an error has a specific error code
func IsErrorCode(err error, code ErrorCode) bool {
	var se *SimError
	if errors.As(err, &se) {
		return se.Code == code
	}
	return false
}

// GetErrorCode returns the error code from an error, or ErrCodeUnknown
func GetErrorCode(err error) ErrorCode {
	var se *SimError
	if errors.As(err, &se) {
		return se.Code
	}
	return ErrCodeUnknown
}
