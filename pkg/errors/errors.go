package errors

import (
	stderrors "errors"
	"fmt"
	"net/http"
)

// ErrorType represents different types of errors that can occur
type ErrorType string

const (
	ErrorTypeNetwork        ErrorType = "network"
	ErrorTypeAuth           ErrorType = "auth"
	ErrorTypeBadCredentials ErrorType = "bad_credentials"
	ErrorTypeTwoFactor      ErrorType = "two_factor"
	ErrorTypeLoginRequired  ErrorType = "login_required"
	ErrorTypeNotFound       ErrorType = "not_found"
	ErrorTypeParsing        ErrorType = "parsing"
	ErrorTypeServerError    ErrorType = "server_error"
	ErrorTypeStorage        ErrorType = "storage"
	ErrorTypeUnknown        ErrorType = "unknown"
)

// Sentinels matched with errors.Is against any *Error of the same type.
var (
	ErrBadCredentials    = &Error{Type: ErrorTypeBadCredentials, Message: "the username or password is incorrect"}
	ErrTwoFactorRequired = &Error{Type: ErrorTypeTwoFactor, Message: "two-factor authentication is required"}
	ErrLoginRequired     = &Error{Type: ErrorTypeLoginRequired, Message: "login required"}
	ErrProfileNotFound   = &Error{Type: ErrorTypeNotFound, Message: "profile does not exist"}
)

// Error represents an API error with type information
type Error struct {
	Type    ErrorType
	Message string
	Code    int
	Err     error
}

func (e *Error) Error() string {
	if e.Code == 0 {
		return fmt.Sprintf("%s error: %s", e.Type, e.Message)
	}
	return fmt.Sprintf("%s error (code %d): %s", e.Type, e.Code, e.Message)
}

// Unwrap returns the underlying cause, if any
func (e *Error) Unwrap() error {
	return e.Err
}

// Is reports whether target is an *Error of the same type, so that
// errors.Is(err, ErrProfileNotFound) matches every not-found error.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	return e.Type == t.Type
}

// New creates a typed error
func New(errorType ErrorType, code int, format string, args ...interface{}) *Error {
	return &Error{
		Type:    errorType,
		Message: fmt.Sprintf(format, args...),
		Code:    code,
	}
}

// Wrap creates a typed error around an underlying cause
func Wrap(errorType ErrorType, err error, format string, args ...interface{}) *Error {
	return &Error{
		Type:    errorType,
		Message: fmt.Sprintf("%s: %v", fmt.Sprintf(format, args...), err),
		Err:     err,
	}
}

// TypeOf returns the ErrorType of err, or ErrorTypeUnknown
func TypeOf(err error) ErrorType {
	var apiErr *Error
	if stderrors.As(err, &apiErr) {
		return apiErr.Type
	}
	return ErrorTypeUnknown
}

// IsHandled reports whether err is a condition the caller reports to the
// user and recovers from by abandoning a single action.
func IsHandled(err error) bool {
	switch TypeOf(err) {
	case ErrorTypeNotFound, ErrorTypeLoginRequired:
		return true
	default:
		return false
	}
}

// FromStatusCode maps an HTTP status code to an error type
func FromStatusCode(statusCode int) ErrorType {
	switch {
	case statusCode == 0:
		return ErrorTypeNetwork
	case statusCode == http.StatusUnauthorized, statusCode == http.StatusForbidden:
		return ErrorTypeLoginRequired
	case statusCode == http.StatusNotFound:
		return ErrorTypeNotFound
	case statusCode >= 500:
		return ErrorTypeServerError
	default:
		return ErrorTypeUnknown
	}
}

// UserMessage returns the text to show a person for err: the message of
// the outermost typed error, or err.Error() for anything else.
func UserMessage(err error) string {
	if err == nil {
		return ""
	}
	var apiErr *Error
	if stderrors.As(err, &apiErr) && apiErr.Message != "" {
		return apiErr.Message
	}
	return err.Error()
}
