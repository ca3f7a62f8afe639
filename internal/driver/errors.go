// internal/driver/errors.go
package driver

import (
	"errors"
	"fmt"
)

// Sentinel faults, matchable with errors.Is against any *Fault of the same code
var (
	ErrNoSuchElement      = &Fault{Code: CodeNoSuchElement}
	ErrNoSuchAttribute    = &Fault{Code: CodeNoSuchAttribute}
	ErrInteraction        = &Fault{Code: CodeInteraction}
	ErrNavigation         = &Fault{Code: CodeNavigation}
	ErrSessionClosed      = &Fault{Code: CodeSessionClosed}
	ErrUnsupportedLocator = &Fault{Code: CodeUnsupportedLocator}
)

// FaultCode identifies the class of automation failure
type FaultCode string

const (
	CodeNoSuchElement      FaultCode = "NO_SUCH_ELEMENT"
	CodeNoSuchAttribute    FaultCode = "NO_SUCH_ATTRIBUTE"
	CodeInteraction        FaultCode = "INTERACTION_FAILED"
	CodeNavigation         FaultCode = "NAVIGATION_FAILED"
	CodeSessionClosed      FaultCode = "SESSION_CLOSED"
	CodeUnsupportedLocator FaultCode = "UNSUPPORTED_LOCATOR"
)

// Fault is raised by a driver when a lookup or interaction fails
type Fault struct {
	Code       FaultCode
	Op         string
	Locator    Locator
	Underlying error
}

// Error implements the error interface
func (f *Fault) Error() string {
	msg := fmt.Sprintf("%s: %s", f.Code, f.Op)
	if !f.Locator.IsZero() {
		msg += " " + f.Locator.String()
	}
	if f.Underlying != nil {
		msg += ": " + f.Underlying.Error()
	}
	return msg
}

// Unwrap returns the underlying error
func (f *Fault) Unwrap() error {
	return f.Underlying
}

// Is matches faults by code
func (f *Fault) Is(target error) bool {
	if t, ok := target.(*Fault); ok {
		return f.Code == t.Code
	}
	return errors.Is(f.Underlying, target)
}

// NewFault creates a new Fault
func NewFault(code FaultCode, op string, loc Locator, err error) *Fault {
	return &Fault{
		Code:       code,
		Op:         op,
		Locator:    loc,
		Underlying: err,
	}
}
