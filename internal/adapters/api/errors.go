package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/andrescamacho/shopfloor-go/internal/application/production/dtos"
)

// ErrTransport marks failures where the request may not have reached the server
var ErrTransport = errors.New("server unreachable, retry when ready")

// TransportError is a network-level failure of one request
type TransportError struct {
	Method string
	Path   string
	Err    error
}

func (e *TransportError) Error() string {
	return fmt.Sprintf("%s %s: %v (%s)", e.Method, e.Path, e.Err, ErrTransport)
}

func (e *TransportError) Unwrap() error {
	return e.Err
}

func (e *TransportError) Is(target error) bool {
	return target == ErrTransport
}

// IsTransport reports whether err is a transport failure
func IsTransport(err error) bool {
	return errors.Is(err, ErrTransport)
}

// APIError is a request the server answered with an error status
type APIError struct {
	StatusCode int
	Code       string
	Message    string
	Field      string
}

func (e *APIError) Error() string {
	if e.Field != "" {
		return fmt.Sprintf("%s (status %d, field %s)", e.Message, e.StatusCode, e.Field)
	}
	return fmt.Sprintf("%s (status %d)", e.Message, e.StatusCode)
}

func newAPIError(status int, body []byte) *APIError {
	apiErr := &APIError{StatusCode: status}
	var payload dtos.ErrorResponse
	if err := json.Unmarshal(body, &payload); err == nil && payload.Error != "" {
		apiErr.Code = payload.Code
		apiErr.Message = payload.Error
		apiErr.Field = payload.Field
		return apiErr
	}
	apiErr.Message = strings.TrimSpace(string(body))
	if apiErr.Message == "" {
		apiErr.Message = http.StatusText(status)
	}
	return apiErr
}

// StatusOf returns the HTTP status of an APIError in err's chain, 0 otherwise
func StatusOf(err error) int {
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return apiErr.StatusCode
	}
	return 0
}

// IsValidation reports a rejected input
func IsValidation(err error) bool { return StatusOf(err) == http.StatusUnprocessableEntity }

// IsConflict reports a rejected state transition or locked field
func IsConflict(err error) bool { return StatusOf(err) == http.StatusConflict }

// IsNotFound reports a missing resource
func IsNotFound(err error) bool { return StatusOf(err) == http.StatusNotFound }

// IsAuth reports a refused session
func IsAuth(err error) bool {
	s := StatusOf(err)
	return s == http.StatusUnauthorized || s == http.StatusForbidden
}
