package gateway

import (
	"errors"
	"fmt"
	"net/http"
)

// APIError is a failed platform REST call. Code is the HTTP status returned
// by the platform.
type APIError struct {
	Op      string
	Code    int
	Message string
	Err     error
}

func (e *APIError) Error() string {
	if e.Message != "" {
		return fmt.Sprintf("%s: %d %s", e.Op, e.Code, e.Message)
	}
	return fmt.Sprintf("%s: %v", e.Op, e.Err)
}

func (e *APIError) Unwrap() error {
	return e.Err
}

// IsNotFound reports whether err is a platform 404.
func IsNotFound(err error) bool {
	return hasCode(err, http.StatusNotFound)
}

// IsForbidden reports whether err is a platform 403.
func IsForbidden(err error) bool {
	return hasCode(err, http.StatusForbidden)
}

func hasCode(err error, code int) bool {
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return apiErr.Code == code
	}
	return false
}
