package api

import (
	"errors"
	"fmt"
)

// ErrTimeout is returned when a job does not reach a terminal state in time
var ErrTimeout = errors.New("timed out waiting for job")

// Error is a non-2xx response from the PerFit API
type Error struct {
	StatusCode int
	Message    string
}

func (e *Error) Error() string {
	return e.Message
}

// IsStatus reports whether err is an API error with the given status code
func IsStatus(err error, status int) bool {
	var apiErr *Error
	return errors.As(err, &apiErr) && apiErr.StatusCode == status
}

// newError builds the error for a failed response. The message is taken
// from the JSON body; an unreadable body gives "Request failed" and an
// empty message gives "HTTP <status>".
func newError(status int, body []byte, decode func([]byte, any) error) *Error {
	var payload struct {
		Message string `json:"message"`
	}
	if err := decode(body, &payload); err != nil {
		return &Error{StatusCode: status, Message: "Request failed"}
	}
	if payload.Message == "" {
		return &Error{StatusCode: status, Message: fmt.Sprintf("HTTP %d", status)}
	}
	return &Error{StatusCode: status, Message: payload.Message}
}
