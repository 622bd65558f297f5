package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
)

var (
	// ErrNoToken is returned by authenticated calls when no token is stored.
	ErrNoToken = errors.New("no session token")
	// ErrBadResponse marks a success response whose body breaks the endpoint schema.
	ErrBadResponse = errors.New("malformed response")
)

// Error is a non-2xx response from the API.
type Error struct {
	Op      string
	Status  int
	Message string
}

func (e *Error) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("%s: HTTP %d", e.Op, e.Status)
	}
	return fmt.Sprintf("%s: HTTP %d: %s", e.Op, e.Status, e.Message)
}

func newError(op string, status int, body []byte) *Error {
	e := &Error{Op: op, Status: status}
	var payload MessageResponse
	if json.Unmarshal(body, &payload) == nil {
		e.Message = payload.Message
	}
	return e
}

// IsUnauthorized reports whether err is a 401 from the API.
func IsUnauthorized(err error) bool {
	var apiErr *Error
	return errors.As(err, &apiErr) && apiErr.Status == http.StatusUnauthorized
}

// ServerMessage returns the message the server attached to a failure, if any.
func ServerMessage(err error) string {
	var apiErr *Error
	if errors.As(err, &apiErr) {
		return apiErr.Message
	}
	return ""
}
