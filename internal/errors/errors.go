// Package errors provides the request failure type for the chat API client.
package errors

import (
	"context"
	"errors"
	"fmt"
	"net"
)

// Sentinel errors for common cases
var (
	ErrRequestFailed   = errors.New("request failed")
	ErrInvalidResponse = errors.New("invalid response format")
	ErrEmptyMessage    = errors.New("message cannot be empty")
)

// GenericMessage is shown when a failure carries no message of its own
const GenericMessage = "Failed to get response from AI"

// RequestError represents a failed chat request. It covers transport
// failures, malformed responses and non-success statuses.
type RequestError struct {
	StatusCode int
	Endpoint   string
	Message    string
	Body       string
	Err        error
	parse      bool
}

func (e *RequestError) Error() string {
	msg := e.Message
	if msg == "" && e.Err != nil {
		msg = e.Err.Error()
	}
	if msg == "" {
		msg = GenericMessage
	}
	if e.StatusCode > 0 {
		return fmt.Sprintf("request error [%d] at %s: %s", e.StatusCode, e.Endpoint, msg)
	}
	return fmt.Sprintf("request error at %s: %s", e.Endpoint, msg)
}

// Unwrap returns the underlying transport error, if any
func (e *RequestError) Unwrap() error {
	return e.Err
}

// Is allows comparison with sentinel errors
func (e *RequestError) Is(target error) bool {
	if target == ErrRequestFailed {
		return true
	}
	if target == ErrInvalidResponse {
		return e.parse
	}
	_, ok := target.(*RequestError)
	return ok
}

// NewAPIError creates a RequestError for a non-success HTTP status
func NewAPIError(statusCode int, endpoint, message, body string) *RequestError {
	return &RequestError{
		StatusCode: statusCode,
		Endpoint:   endpoint,
		Message:    message,
		Body:       body,
	}
}

// NewNetworkError creates a RequestError for a transport failure
func NewNetworkError(endpoint string, cause error) *RequestError {
	return &RequestError{
		Endpoint: endpoint,
		Err:      cause,
	}
}

// NewParseError creates a RequestError for a response that could not be decoded
func NewParseError(endpoint, message string) *RequestError {
	return &RequestError{
		Endpoint: endpoint,
		Message:  message,
		parse:    true,
	}
}

// asRequestError extracts a RequestError from the chain
func asRequestError(err error) (*RequestError, bool) {
	var reqErr *RequestError
	if errors.As(err, &reqErr) {
		return reqErr, true
	}
	return nil, false
}

// GetHTTPStatus returns the HTTP status carried by err, or 0
func GetHTTPStatus(err error) int {
	if reqErr, ok := asRequestError(err); ok {
		return reqErr.StatusCode
	}
	return 0
}

// GetEndpoint returns the endpoint carried by err, or ""
func GetEndpoint(err error) string {
	if reqErr, ok := asRequestError(err); ok {
		return reqErr.Endpoint
	}
	return ""
}

// GetResponseBody returns the raw response body carried by err, or ""
func GetResponseBody(err error) string {
	if reqErr, ok := asRequestError(err); ok {
		return reqErr.Body
	}
	return ""
}

// IsNetworkError reports whether err is a transport failure
func IsNetworkError(err error) bool {
	reqErr, ok := asRequestError(err)
	return ok && reqErr.Err != nil
}

// IsParseError reports whether err is a malformed response
func IsParseError(err error) bool {
	return errors.Is(err, ErrInvalidResponse)
}

// IsTimeoutError reports whether err was caused by a deadline
func IsTimeoutError(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return true
	}
	var netErr net.Error
	return errors.As(err, &netErr) && netErr.Timeout()
}

// UserMessage returns the text surfaced to the user for err. Server-provided
// messages are passed through verbatim; anything else falls back to the
// transport error text or GenericMessage.
func UserMessage(err error) string {
	if err == nil {
		return ""
	}
	reqErr, ok := asRequestError(err)
	if !ok {
		if msg := err.Error(); msg != "" {
			return msg
		}
		return GenericMessage
	}
	if reqErr.Message != "" {
		return reqErr.Message
	}
	if reqErr.Err != nil && reqErr.Err.Error() != "" {
		return reqErr.Err.Error()
	}
	return GenericMessage
}
