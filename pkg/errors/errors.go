// Package errors defines the coded errors shared by the layout server, the
// viewer and the CLI.
//
// Every failure that crosses a package boundary carries a [Code]. Handlers
// map codes to HTTP statuses with [HTTPStatus] and report them as JSON;
// callers branch on them with [Is]:
//
//	if errors.Is(err, errors.ErrCodeInvalidSurface) {
//	    // keep the previous surface
//	}
package errors

import (
	"errors"
	"fmt"
	"net/http"
)

// Code represents a machine-readable error code.
type Code string

// Error codes for different error categories.
const (
	// Input errors
	ErrCodeInvalidInput     Code = "INVALID_INPUT"
	ErrCodeInvalidNodeID    Code = "INVALID_NODE_ID"
	ErrCodeInvalidSurface   Code = "INVALID_SURFACE"
	ErrCodeInvalidTree      Code = "INVALID_TREE"
	ErrCodeInvalidConfig    Code = "INVALID_CONFIG"
	ErrCodeMalformedPayload Code = "MALFORMED_PAYLOAD"

	// Resource errors
	ErrCodeNotFound       Code = "NOT_FOUND"
	ErrCodeNotCollapsible Code = "NOT_COLLAPSIBLE"

	// Transport errors
	ErrCodeNetwork Code = "NETWORK_ERROR"
	ErrCodeTimeout Code = "TIMEOUT"

	// Persistence errors
	ErrCodeStorage Code = "STORAGE_ERROR"

	// Internal errors
	ErrCodeInternal Code = "INTERNAL_ERROR"
	ErrCodeRender   Code = "RENDER_ERROR"
)

// Error is a failure tagged with a [Code]. Cause is nil for errors created
// with [New].
type Error struct {
	Code    Code
	Message string
	Cause   error
}

func (e *Error) Error() string {
	msg := string(e.Code) + ": " + e.Message
	if e.Cause == nil {
		return msg
	}
	return msg + ": " + e.Cause.Error()
}

func (e *Error) Unwrap() error { return e.Cause }

// New returns an error with code and a formatted message.
func New(code Code, format string, args ...any) *Error {
	return Wrap(code, nil, format, args...)
}

// Wrap tags cause with code and a formatted message.
func Wrap(code Code, cause error, format string, args ...any) *Error {
	return &Error{Code: code, Message: fmt.Sprintf(format, args...), Cause: cause}
}

// Is reports whether the outermost coded error in err's chain has code.
func Is(err error, code Code) bool {
	return code != "" && GetCode(err) == code
}

// GetCode returns the code of the outermost coded error in err's chain, or
// "" if there is none.
func GetCode(err error) Code {
	if e, ok := as(err); ok {
		return e.Code
	}
	return ""
}

// UserMessage is err's text without the code prefix or cause.
func UserMessage(err error) string {
	if e, ok := as(err); ok {
		return e.Message
	}
	return err.Error()
}

// HTTPStatus is the response status for err. Uncoded errors are 500.
func HTTPStatus(err error) int {
	switch GetCode(err) {
	case ErrCodeInvalidInput, ErrCodeInvalidNodeID, ErrCodeMalformedPayload, ErrCodeInvalidTree:
		return http.StatusBadRequest
	case ErrCodeNotFound:
		return http.StatusNotFound
	case ErrCodeNotCollapsible:
		return http.StatusConflict
	case ErrCodeNetwork, ErrCodeTimeout:
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}

func as(err error) (*Error, bool) {
	var e *Error
	ok := errors.As(err, &e)
	return e, ok
}
