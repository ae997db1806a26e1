package routemodules

import (
	"errors"
	"fmt"
	"net/http"
)

// HTTPError carries the response status for an error returned by a loader or
// action.
type HTTPError struct {
	Status int
	Err    error
}

// Error wraps err so the error handler responds with status.
func Error(status int, err error) error {
	return &HTTPError{Status: status, Err: err}
}

func (e *HTTPError) Error() string {
	if e.Err == nil {
		return fmt.Sprintf("%d %s", e.Status, http.StatusText(e.Status))
	}
	return fmt.Sprintf("%d %s: %v", e.Status, http.StatusText(e.Status), e.Err)
}

func (e *HTTPError) Unwrap() error { return e.Err }

// StatusOf returns the status carried by err, or 500.
func StatusOf(err error) int {
	var he *HTTPError
	if errors.As(err, &he) && he.Status != 0 {
		return he.Status
	}
	return http.StatusInternalServerError
}
