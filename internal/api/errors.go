package api

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/tidwall/gjson"
)

var (
	// ErrSessionExpired marks a failed silent reauthentication. The stored
	// session has been cleared and the user must log in again.
	ErrSessionExpired = errors.New("session expired")

	// ErrNoSession is returned by calls that need a session when none is held.
	ErrNoSession = errors.New("not logged in")
)

// Error is a non-2xx response from the API.
type Error struct {
	Status  int
	Message string
	Path    string
}

func (e *Error) Error() string {
	if e.Message != "" {
		return fmt.Sprintf("api %s returned status %d: %s", e.Path, e.Status, e.Message)
	}
	return fmt.Sprintf("api %s returned status %d", e.Path, e.Status)
}

// newError builds an Error from a response body, reading the envelope's
// message and falling back to a detail string or the first validation msg.
func newError(path string, status int, body []byte) *Error {
	e := &Error{Status: status, Path: path}
	if !gjson.ValidBytes(body) {
		return e
	}
	res := gjson.ParseBytes(body)
	for _, p := range []string{"message", "detail", "detail.0.msg"} {
		if v := res.Get(p); v.Type == gjson.String && v.String() != "" {
			e.Message = v.String()
			break
		}
	}
	return e
}

// SessionExpiredError is returned when the refresh after a 401 fails. It
// matches both ErrSessionExpired and the underlying refresh error.
type SessionExpiredError struct {
	Err error
}

func (e *SessionExpiredError) Error() string {
	return fmt.Sprintf("%v: %v", ErrSessionExpired, e.Err)
}

func (e *SessionExpiredError) Unwrap() []error {
	return []error{ErrSessionExpired, e.Err}
}

// StatusCode returns the HTTP status carried by err, or 0.
func StatusCode(err error) int {
	var apiErr *Error
	if errors.As(err, &apiErr) {
		return apiErr.Status
	}
	return 0
}

// IsNotFound reports whether err is a 404 from the API.
func IsNotFound(err error) bool {
	return StatusCode(err) == http.StatusNotFound
}

// IsForbidden reports whether err is a 403 from the API.
func IsForbidden(err error) bool {
	return StatusCode(err) == http.StatusForbidden
}

// UserMessage returns the text to show for err: the server's message when
// it sent one, otherwise fallback.
func UserMessage(err error, fallback string) string {
	if err == nil {
		return ""
	}
	if errors.Is(err, ErrSessionExpired) {
		return "Your session has expired. Please log in again."
	}
	var apiErr *Error
	if errors.As(err, &apiErr) && apiErr.Message != "" {
		return apiErr.Message
	}
	return fallback
}
