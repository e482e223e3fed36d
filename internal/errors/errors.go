package errors

import (
	stderrors "errors"
	"net/http"
)

type ErrorType string

const (
	ErrorTypeInvalidArgument ErrorType = "INVALID_ARGUMENT"
	ErrorTypeNotFound        ErrorType = "NOT_FOUND"
	ErrorTypeConflict        ErrorType = "CONFLICT"
	ErrorTypeIOFailure       ErrorType = "IO_FAILURE"
)

// Error is the error value returned by every engine operation. Code carries
// the negative numeric cause callers branch on (-1, -2, -3).
type Error struct {
	Type    ErrorType `json:"type"`
	Message string    `json:"message"`
	Code    int       `json:"code"`
	Details any       `json:"details,omitempty"`
	Err     error     `json:"-"`
}

func (e *Error) Error() string {
	if e.Err != nil {
		return e.Message + ": " + e.Err.Error()
	}
	return e.Message
}

func (e *Error) Unwrap() error {
	return e.Err
}

func InvalidArgument(message string) *Error {
	return &Error{
		Type:    ErrorTypeInvalidArgument,
		Message: message,
		Code:    -1,
	}
}

func NotFound(code int, message string) *Error {
	return &Error{
		Type:    ErrorTypeNotFound,
		Message: message,
		Code:    code,
	}
}

func Conflict(code int, message string) *Error {
	return &Error{
		Type:    ErrorTypeConflict,
		Message: message,
		Code:    code,
	}
}

func ValidationError(message string, details any) *Error {
	return &Error{
		Type:    ErrorTypeInvalidArgument,
		Message: message,
		Code:    -1,
		Details: details,
	}
}

func IOFailure(message string, err error) *Error {
	return &Error{
		Type:    ErrorTypeIOFailure,
		Message: message,
		Code:    -3,
		Err:     err,
	}
}

// CodeOf returns the numeric cause of err, 0 for nil and -1 for errors that
// did not originate in this package.
func CodeOf(err error) int {
	if err == nil {
		return 0
	}
	var e *Error
	if stderrors.As(err, &e) {
		return e.Code
	}
	return -1
}

// Is reports whether err carries the given type.
func Is(err error, t ErrorType) bool {
	var e *Error
	return stderrors.As(err, &e) && e.Type == t
}

// HTTPStatus maps err onto a response status.
func HTTPStatus(err error) int {
	var e *Error
	if !stderrors.As(err, &e) {
		return http.StatusInternalServerError
	}
	switch e.Type {
	case ErrorTypeInvalidArgument:
		return http.StatusBadRequest
	case ErrorTypeNotFound:
		return http.StatusNotFound
	case ErrorTypeConflict:
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}
