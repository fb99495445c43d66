package backend

import (
	"errors"
	"fmt"
)

// ErrBackendUnavailable marks network and transport failures. Its text is
// shown to users, so it never names the backend host.
var ErrBackendUnavailable = errors.New("Campaign service is unavailable. Please try again later.")

// UnavailableError is a transport failure. Error only returns the
// ErrBackendUnavailable text; Cause keeps the detail for logs.
type UnavailableError struct {
	Cause error
}

func (e *UnavailableError) Error() string {
	return ErrBackendUnavailable.Error()
}

// Is reports a match for ErrBackendUnavailable
func (e *UnavailableError) Is(target error) bool {
	return target == ErrBackendUnavailable
}

func (e *UnavailableError) Unwrap() error {
	return e.Cause
}

// CompliancePrefix starts every user-facing compliance rejection
const CompliancePrefix = "Compliance Check Failed: "

// ComplianceError is a 400 answer carrying a compliance verdict
type ComplianceError struct {
	Message string
}

func (e *ComplianceError) Error() string {
	return CompliancePrefix + e.Message
}

// StatusError is any other non-2xx answer
type StatusError struct {
	Operation  string
	StatusCode int
	Body       string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("HTTP error! status: %d", e.StatusCode)
}

// IsCompliance reports whether err is a compliance rejection
func IsCompliance(err error) bool {
	var ce *ComplianceError
	return errors.As(err, &ce)
}
