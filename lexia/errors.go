package lexia

import (
	"errors"
	"fmt"
	"net/http"
	"time"
)

// Kind classifies every failure the client can return.
type Kind int

const (
	// KindAPI is the catch-all for unrecognized statuses and malformed success bodies
	KindAPI Kind = iota
	// KindConfiguration indicates a missing tenant URL or API key
	KindConfiguration
	// KindAuthentication indicates an invalid credential or missing permission (401/403)
	KindAuthentication
	// KindNotFound indicates the addressed resource does not exist (404)
	KindNotFound
	// KindValidation indicates the server rejected the caller's input (400/422)
	KindValidation
	// KindRateLimit indicates the caller must back off (429)
	KindRateLimit
	// KindService indicates a server-side or network failure (5xx, timeouts, refused connections)
	KindService
	// KindCanceled indicates the caller canceled the request
	KindCanceled
	// KindFile indicates a local upload file could not be read
	KindFile
	// KindInvalidInput indicates arguments rejected before any request was sent
	KindInvalidInput
)

// String returns the string representation of a Kind
func (k Kind) String() string {
	switch k {
	case KindConfiguration:
		return "configuration"
	case KindAuthentication:
		return "authentication"
	case KindNotFound:
		return "not_found"
	case KindValidation:
		return "validation"
	case KindRateLimit:
		return "rate_limit"
	case KindService:
		return "service"
	case KindCanceled:
		return "canceled"
	case KindFile:
		return "file"
	case KindInvalidInput:
		return "invalid_input"
	default:
		return "api"
	}
}

// Sentinel errors, one per Kind. Use errors.Is to branch on them.
var (
	ErrAPI            = errors.New("lexia: unexpected API response")
	ErrConfiguration  = errors.New("lexia: invalid configuration")
	ErrAuthentication = errors.New("lexia: authentication failed")
	ErrNotFound       = errors.New("lexia: resource not found")
	ErrValidation     = errors.New("lexia: request rejected by server")
	ErrRateLimited    = errors.New("lexia: rate limit exceeded")
	ErrService        = errors.New("lexia: service unavailable")
	ErrCanceled       = errors.New("lexia: request canceled")
	ErrFile           = errors.New("lexia: file error")
	ErrInvalidInput   = errors.New("lexia: invalid input")
)

func (k Kind) sentinel() error {
	switch k {
	case KindConfiguration:
		return ErrConfiguration
	case KindAuthentication:
		return ErrAuthentication
	case KindNotFound:
		return ErrNotFound
	case KindValidation:
		return ErrValidation
	case KindRateLimit:
		return ErrRateLimited
	case KindService:
		return ErrService
	case KindCanceled:
		return ErrCanceled
	case KindFile:
		return ErrFile
	case KindInvalidInput:
		return ErrInvalidInput
	default:
		return ErrAPI
	}
}

// Error is returned by every client operation that fails.
type Error struct {
	Kind       Kind
	StatusCode int // 0 when no response was received
	Message    string
	// Detail is the "detail" member of the error body, or field messages for local validation
	Detail any
	// Body is the decoded error body; nil when it was not a JSON object
	Body       Object
	RawBody    []byte
	RetryAfter time.Duration
	RequestID  string
	Err        error
}

// Error implements the error interface
func (e *Error) Error() string {
	msg := e.Message
	if msg == "" {
		msg = e.Kind.sentinel().Error()
	}
	if e.StatusCode != 0 {
		return fmt.Sprintf("lexia %s error: status %d: %s", e.Kind, e.StatusCode, msg)
	}
	if e.Err != nil {
		return fmt.Sprintf("lexia %s error: %s: %v", e.Kind, msg, e.Err)
	}
	return fmt.Sprintf("lexia %s error: %s", e.Kind, msg)
}

// Is reports whether target is the sentinel of e's kind.
func (e *Error) Is(target error) bool {
	return target == e.Kind.sentinel()
}

func (e *Error) Unwrap() error {
	return e.Err
}

// IsNotFound checks if the error indicates a not found response
func (e *Error) IsNotFound() bool {
	return e.Kind == KindNotFound
}

// IsUnauthorized checks if the error indicates an authentication failure
func (e *Error) IsUnauthorized() bool {
	return e.Kind == KindAuthentication
}

// IsTemporary reports whether retrying later may succeed.
func (e *Error) IsTemporary() bool {
	return e.Kind == KindRateLimit || e.Kind == KindService
}

// KindForStatus maps a non-2xx HTTP status code to its error kind.
func KindForStatus(status int) Kind {
	switch {
	case status == http.StatusUnauthorized, status == http.StatusForbidden:
		return KindAuthentication
	case status == http.StatusNotFound:
		return KindNotFound
	case status == http.StatusBadRequest, status == http.StatusUnprocessableEntity:
		return KindValidation
	case status == http.StatusTooManyRequests:
		return KindRateLimit
	case status >= 500 && status < 600:
		return KindService
	default:
		return KindAPI
	}
}

// KindOf returns the kind of err. Errors not produced by this package are KindAPI.
func KindOf(err error) (Kind, bool) {
	var lexiaErr *Error
	if errors.As(err, &lexiaErr) {
		return lexiaErr.Kind, true
	}
	return KindAPI, false
}

// AsError returns the *Error wrapped in err, if any.
func AsError(err error) (*Error, bool) {
	var lexiaErr *Error
	if errors.As(err, &lexiaErr) {
		return lexiaErr, true
	}
	return nil, false
}

func newError(kind Kind, message string, cause error) *Error {
	return &Error{Kind: kind, Message: message, Err: cause}
}

func configError(format string, args ...any) *Error {
	return newError(KindConfiguration, fmt.Sprintf(format, args...), nil)
}

func inputError(message string, detail any) *Error {
	return &Error{Kind: KindInvalidInput, Message: message, Detail: detail}
}
