package innertube

import (
	"fmt"
	"net/http"
)

// AuthenticationExpiredError is returned when the site answers a call as if
// the session were signed out.
type AuthenticationExpiredError struct {
	Endpoint string
}

func (e *AuthenticationExpiredError) Error() string {
	return fmt.Sprintf("%s: logged out, cookies have expired or are for the wrong account", e.Endpoint)
}

// TransientError marks a failure worth retrying: throttling, server errors,
// timeouts and broken connections.
type TransientError struct {
	Endpoint string
	// Status is 0 for transport failures.
	Status int
	Err    error
}

func (e *TransientError) Error() string {
	if e.Status != 0 {
		return fmt.Sprintf("%s: transient status %d", e.Endpoint, e.Status)
	}
	return fmt.Sprintf("%s: %s", e.Endpoint, e.Err)
}

func (e *TransientError) Unwrap() error {
	return e.Err
}

// StatusError is a non-2xx status that retrying will not fix.
type StatusError struct {
	Endpoint string
	Status   int
	Body     string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("%s: status %d %s", e.Endpoint, e.Status, http.StatusText(e.Status))
}

// BodyDecodeError is returned when a 2xx response is not a JSON object.
type BodyDecodeError struct {
	Endpoint string
	Err      error
}

func (e *BodyDecodeError) Error() string {
	return fmt.Sprintf("%s: decode response: %s", e.Endpoint, e.Err)
}

func (e *BodyDecodeError) Unwrap() error {
	return e.Err
}

func isTransientStatus(status int) bool {
	switch status {
	case http.StatusTooManyRequests,
		http.StatusInternalServerError,
		http.StatusBadGateway,
		http.StatusServiceUnavailable,
		http.StatusGatewayTimeout:
		return true
	}
	return status >= 500
}
