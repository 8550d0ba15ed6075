// Package bsky implements the graph API client used to fetch account
// profiles, follower lists, and recent posts from a Bluesky-compatible
// AT protocol endpoint.
package bsky

import (
	"errors"
	"fmt"
)

var (
	// ErrAuth is returned when authentication fails or a session is
	// rejected. Authentication errors are fatal: the caller should abort
	// the run rather than retry.
	ErrAuth = errors.New("bsky: authentication failed")

	// ErrRateLimited is returned when the API signals request throttling.
	// Rate limit errors are transient and safe to retry with backoff.
	ErrRateLimited = errors.New("bsky: rate limited")

	// ErrNetwork is returned for transport-level failures and server
	// errors. Network errors are transient and safe to retry with backoff.
	ErrNetwork = errors.New("bsky: network error")

	// ErrNotFound is returned when the requested account does not exist.
	// Not-found errors are permanent for the requested handle.
	ErrNotFound = errors.New("bsky: account not found")

	// ErrNotAuthenticated is returned when a request is attempted before
	// Authenticate has established a session.
	ErrNotAuthenticated = errors.New("bsky: no active session")
)

// APIError carries the HTTP status and API error body of a failed request.
// It wraps one of the sentinel errors above so callers can branch with
// errors.Is while still logging the exact server response.
type APIError struct {
	StatusCode int
	Code       string
	Message    string
	sentinel   error
}

// Error implements the error interface.
func (e *APIError) Error() string {
	if e.Message != "" {
		return fmt.Sprintf("bsky: API error %d (%s): %s", e.StatusCode, e.Code, e.Message)
	}
	return fmt.Sprintf("bsky: API error %d", e.StatusCode)
}

// Unwrap returns the sentinel error class for the status code.
func (e *APIError) Unwrap() error {
	return e.sentinel
}

// classify maps an HTTP status code to its sentinel error class.
func classify(statusCode int) error {
	switch {
	case statusCode == 401 || statusCode == 403:
		return ErrAuth
	case statusCode == 404:
		return ErrNotFound
	case statusCode == 429:
		return ErrRateLimited
	default:
		return ErrNetwork
	}
}
