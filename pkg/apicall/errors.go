package apicall

import (
	"errors"
	"fmt"
)

// Outcome kinds used for logging and metrics labels.
const (
	KindOK             = "ok"
	KindHTTPError      = "http_error"
	KindTransportError = "transport_error"
	KindMissingBody    = "missing_body"
)

// HTTPError reports a response whose status is outside the success range.
type HTTPError struct {
	StatusCode int
}

func (e *HTTPError) Error() string {
	return fmt.Sprintf("API call failed with status code %d", e.StatusCode)
}

// TransportError wraps failures that happened before a usable response existed:
// connection errors, cancelled contexts, undecodable bodies.
type TransportError struct {
	Cause error
}

func (e *TransportError) Error() string {
	if e.Cause == nil {
		return "API call failed"
	}
	return e.Cause.Error()
}

func (e *TransportError) Unwrap() error { return e.Cause }

// MissingBodyError reports a success status that carried no body.
type MissingBodyError struct {
	StatusCode int
}

func (e *MissingBodyError) Error() string {
	return fmt.Sprintf("API call succeeded with status code %d but returned no body", e.StatusCode)
}

// Kind classifies err into one of the Kind* constants.
func Kind(err error) string {
	if err == nil {
		return KindOK
	}
	var httpErr *HTTPError
	if errors.As(err, &httpErr) {
		return KindHTTPError
	}
	var missing *MissingBodyError
	if errors.As(err, &missing) {
		return KindMissingBody
	}
	return KindTransportError
}
