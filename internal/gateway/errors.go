package gateway

import (
	"errors"
	"fmt"
	"net/http"
)

// Sentinels for errors.Is checks against the typed errors below.
var (
	ErrNetwork     = errors.New("gateway: network error")
	ErrTimeout     = errors.New("gateway: request timed out")
	ErrAuthExpired = errors.New("gateway: session expired")
)

// NetworkError means the request never produced an HTTP response.
type NetworkError struct {
	Method  string
	URL     string
	Timeout bool
	Err     error
}

func (e *NetworkError) Error() string {
	if e.Timeout {
		return fmt.Sprintf("%s %s: request timed out. Please check your connection.", e.Method, e.URL)
	}
	return fmt.Sprintf("%s %s: network error. Please check your connection: %v", e.Method, e.URL, e.Err)
}

func (e *NetworkError) Unwrap() error { return e.Err }

func (e *NetworkError) Is(target error) bool {
	return target == ErrNetwork || (e.Timeout && target == ErrTimeout)
}

// RequestError is a non-2xx response other than 401.
type RequestError struct {
	Method     string
	URL        string
	StatusCode int
	Message    string
}

func (e *RequestError) Error() string {
	if e.Method == "" {
		return e.Message
	}
	return fmt.Sprintf("%s %s: %s", e.Method, e.URL, e.Message)
}

// Retryable reports whether a caller may reasonably try again.
func (e *RequestError) Retryable() bool {
	return e.StatusCode >= 500
}

// AuthExpiredError is a 401 response. The credential that was sent has
// already been cleared by the time the caller sees it; a newer login is kept.
type AuthExpiredError struct {
	Method string
	URL    string
}

func (e *AuthExpiredError) Error() string {
	return fmt.Sprintf("%s %s: session expired. Please log in again.", e.Method, e.URL)
}

func (e *AuthExpiredError) Is(target error) bool { return target == ErrAuthExpired }

// IsTimeout reports whether err is a request timeout.
func IsTimeout(err error) bool { return errors.Is(err, ErrTimeout) }

// IsAuthExpired reports whether err requires re-authentication.
func IsAuthExpired(err error) bool { return errors.Is(err, ErrAuthExpired) }

// DefaultStatusMessage is used when the server body carries no message.
func DefaultStatusMessage(status int) string {
	switch status {
	case http.StatusNotFound:
		return "Resource not found"
	case http.StatusInternalServerError:
		return "Server error. Please try again later."
	case http.StatusServiceUnavailable:
		return "Service unavailable. Please try again later."
	default:
		return fmt.Sprintf("HTTP %d", status)
	}
}

// NotFound builds the error returned for an unknown entity id.
func NotFound(kind, id string) *RequestError {
	return &RequestError{
		StatusCode: http.StatusNotFound,
		Message:    fmt.Sprintf("%s %s not found", kind, id),
	}
}
