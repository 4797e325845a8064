package whatsrb

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"
)

// Error kinds. Every *Error matches ErrAPI and exactly one of the others via
// errors.Is:
//
//	if errors.Is(err, whatsrb.ErrRateLimit) {
//	    var apiErr *whatsrb.Error
//	    errors.As(err, &apiErr)
//	    wait := apiErr.RetryAfter
//	}
var (
	ErrAPI              = errors.New("whatsrb: api error")
	ErrAuthentication   = errors.New("whatsrb: authentication failed")
	ErrForbidden        = errors.New("whatsrb: forbidden")
	ErrNotFound         = errors.New("whatsrb: not found")
	ErrConflict         = errors.New("whatsrb: conflict")
	ErrValidation       = errors.New("whatsrb: validation failed")
	ErrRateLimit        = errors.New("whatsrb: rate limited")
	ErrServer           = errors.New("whatsrb: server error")
	ErrUnexpectedStatus = errors.New("whatsrb: unexpected status")
	ErrTimeout          = errors.New("whatsrb: timed out")
	ErrConfiguration    = errors.New("whatsrb: configuration error")
	ErrConnectExpired   = errors.New("whatsrb: connect request expired")
	ErrConnectFailed    = errors.New("whatsrb: connect request failed")
)

const unknownErrorMessage = "Unknown error"

// Error is the structured error returned for API failures, local validation
// failures, polling timeouts and configuration problems.
type Error struct {
	kind error

	// Message is the human readable message, taken from the response body
	// when the server supplied one.
	Message string
	// StatusCode is the HTTP status, or 0 when no response was involved.
	StatusCode int
	// Body is the parsed JSON response body, nil when the body was empty or
	// not valid JSON.
	Body any
	// RetryAfter is the Retry-After header in seconds for rate limit errors.
	RetryAfter *int
}

func (e *Error) Error() string {
	if e.StatusCode != 0 {
		return fmt.Sprintf("%s (%d): %s", e.kind, e.StatusCode, e.Message)
	}
	return fmt.Sprintf("%s: %s", e.kind, e.Message)
}

// Kind returns the sentinel this error matches.
func (e *Error) Kind() error { return e.kind }

// Unwrap exposes the kind so errors.Is works against the sentinels.
func (e *Error) Unwrap() error { return e.kind }

// Is reports whether target is ErrAPI, which every taxonomy member matches.
func (e *Error) Is(target error) bool {
	return target == ErrAPI
}

func newError(kind error, message string) *Error {
	return &Error{kind: kind, Message: message}
}

func validationError(format string, args ...any) *Error {
	return newError(ErrValidation, fmt.Sprintf(format, args...))
}

// errorFromResponse maps a non-2xx response onto the taxonomy.
func errorFromResponse(status int, body any, header http.Header) *Error {
	apiErr := &Error{
		kind:       kindForStatus(status),
		Message:    errorMessage(body),
		StatusCode: status,
		Body:       body,
	}
	if status == http.StatusTooManyRequests {
		apiErr.RetryAfter = parseRetryAfter(header.Get("Retry-After"))
	}
	return apiErr
}

func kindForStatus(status int) error {
	switch {
	case status == http.StatusUnauthorized:
		return ErrAuthentication
	case status == http.StatusForbidden:
		return ErrForbidden
	case status == http.StatusNotFound:
		return ErrNotFound
	case status == http.StatusConflict:
		return ErrConflict
	case status == http.StatusUnprocessableEntity:
		return ErrValidation
	case status == http.StatusTooManyRequests:
		return ErrRateLimit
	case status >= 500 && status <= 599:
		return ErrServer
	default:
		return ErrUnexpectedStatus
	}
}

func errorMessage(body any) string {
	obj, ok := body.(map[string]any)
	if !ok {
		return unknownErrorMessage
	}
	for _, key := range []string{"error", "message"} {
		if msg, ok := obj[key].(string); ok && msg != "" {
			return msg
		}
	}
	return unknownErrorMessage
}

func parseRetryAfter(value string) *int {
	value = strings.TrimSpace(value)
	if value == "" {
		return nil
	}
	seconds, err := strconv.Atoi(value)
	if err != nil {
		return nil
	}
	return &seconds
}
