// internal/engine/errors.go
package engine

import (
	"errors"
	"fmt"
)

// Common engine errors
var (
	ErrConfigurationFailed = errors.New("failed to apply filter configuration")
	ErrUnknownRoomCount    = errors.New("site has no locator for room count")
)

// ErrorCode identifies the orchestration step that failed
type ErrorCode string

const (
	ErrCodeSession    ErrorCode = "SESSION"
	ErrCodeNavigation ErrorCode = "NAVIGATION"
	ErrCodeCategory   ErrorCode = "CATEGORY"
	ErrCodeRooms      ErrorCode = "ROOMS"
	ErrCodePrice      ErrorCode = "PRICE"
	ErrCodeContainer  ErrorCode = "CONTAINER"
	ErrCodeField      ErrorCode = "FIELD"
)

// EngineError wraps errors with additional context
type EngineError struct {
	Code       ErrorCode
	Message    string
	Underlying error
	Details    map[string]interface{}
}

// Error implements the error interface
func (e *EngineError) Error() string {
	if e.Underlying != nil {
		return fmt.Sprintf("%s: %s: %v", e.Code, e.Message, e.Underlying)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// Unwrap returns the underlying error
func (e *EngineError) Unwrap() error {
	return e.Underlying
}

// Is checks if the error matches the target
func (e *EngineError) Is(target error) bool {
	if t, ok := target.(*EngineError); ok {
		return e.Code == t.Code
	}
	return errors.Is(e.Underlying, target)
}

// NewEngineError creates a new EngineError
func NewEngineError(code ErrorCode, message string, err error) *EngineError {
	return &EngineError{
		Code:       code,
		Message:    message,
		Underlying: err,
		Details:    make(map[string]interface{}),
	}
}

// WithDetail adds a detail to the error
func (e *EngineError) WithDetail(key string, value interface{}) *EngineError {
	e.Details[key] = value
	return e
}

// CodeOf returns the engine error code carried by err, or ""
func CodeOf(err error) ErrorCode {
	var e *EngineError
	if errors.As(err, &e) {
		return e.Code
	}
	return ""
}
