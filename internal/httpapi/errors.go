package httpapi

import (
	"errors"
	"net/http"
)

// HTTPError is returned by handlers to choose the response status.
// Err is logged and never written to the client.
type HTTPError struct {
	Err     error
	Message string
	Code    int
}

func (e *HTTPError) Error() string {
	return e.Message
}

func (e *HTTPError) Unwrap() error {
	return e.Err
}

func newHTTPError(code int, message string, err error) *HTTPError {
	return &HTTPError{Code: code, Message: message, Err: err}
}

func ErrBadRequest(message string, err error) *HTTPError {
	return newHTTPError(http.StatusBadRequest, message, err)
}

func ErrNotFound(message string, err error) *HTTPError {
	return newHTTPError(http.StatusNotFound, message, err)
}

func ErrConflict(message string, err error) *HTTPError {
	return newHTTPError(http.StatusConflict, message, err)
}

func ErrServiceUnavailable(message string, err error) *HTTPError {
	return newHTTPError(http.StatusServiceUnavailable, message, err)
}

// PanicError is a panic recovered by the Recover middleware.
type PanicError struct {
	Value any
	Stack []byte
}

func (e *PanicError) Error() string {
	return "panic recovered"
}

// statusOf maps err to a response status and a client-safe message.
func statusOf(err error) (int, string) {
	var he *HTTPError
	if errors.As(err, &he) {
		return he.Code, he.Message
	}
	return http.StatusInternalServerError, http.StatusText(http.StatusInternalServerError)
}
