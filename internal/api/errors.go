package api

import (
	"errors"
	"fmt"
)

// Kind classifies a transport failure so callers can pick user messaging
type Kind int

const (
	// KindServer means the backend answered with an error payload
	KindServer Kind = iota
	// KindTimeout means the request exceeded the client timeout
	KindTimeout
	// KindConnectivity means the endpoint could not be reached at all
	KindConnectivity
	// KindUnauthorized means the backend rejected the session
	KindUnauthorized
)

// Error is the failure type surfaced by every Client method
type Error struct {
	Kind   Kind
	Status int    // HTTP status when the backend answered, 0 otherwise
	Detail string // server-provided detail text, if any
	Err    error  // underlying cause
}

func (e *Error) Error() string {
	switch e.Kind {
	case KindTimeout:
		return fmt.Sprintf("request timed out: %v", e.Err)
	case KindConnectivity:
		return fmt.Sprintf("backend unreachable: %v", e.Err)
	case KindUnauthorized:
		return fmt.Sprintf("unauthorized (status %d)", e.Status)
	default:
		if e.Detail != "" {
			return fmt.Sprintf("backend error (status %d): %s", e.Status, e.Detail)
		}
		return fmt.Sprintf("backend error (status %d)", e.Status)
	}
}

func (e *Error) Unwrap() error {
	return e.Err
}

// KindOf extracts the failure kind from err.
// Errors that are not *api.Error classify as KindServer.
func KindOf(err error) Kind {
	var apiErr *Error
	if errors.As(err, &apiErr) {
		return apiErr.Kind
	}
	return KindServer
}

// DetailOf returns the server-provided detail text, if err carries one
func DetailOf(err error) string {
	var apiErr *Error
	if errors.As(err, &apiErr) {
		return apiErr.Detail
	}
	return ""
}

// IsUnauthorized reports whether err is a session-expiry rejection
func IsUnauthorized(err error) bool {
	return KindOf(err) == KindUnauthorized
}
