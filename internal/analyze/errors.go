package analyze

import (
	"errors"
	"fmt"
)

// ErrTokenNotFound is returned when the host page carries no csrfmiddlewaretoken field
var ErrTokenNotFound = errors.New("CSRF token not found")

// ServerError is a non-2xx answer from the analysis endpoint
type ServerError struct {
	StatusCode int
	Status     string
}

func (e *ServerError) Error() string {
	return fmt.Sprintf("Server returned %d: %s", e.StatusCode, e.Status)
}

// TransportError is a failure to reach the analysis endpoint at all
type TransportError struct {
	Err error
}

func (e *TransportError) Error() string {
	return "failed to reach analysis endpoint: " + e.Err.Error()
}

func (e *TransportError) Unwrap() error {
	return e.Err
}

// MalformedResponseError is a 2xx answer whose body is not a contact response
type MalformedResponseError struct {
	Err error
}

func (e *MalformedResponseError) Error() string {
	return "malformed analysis response: " + e.Err.Error()
}

func (e *MalformedResponseError) Unwrap() error {
	return e.Err
}
