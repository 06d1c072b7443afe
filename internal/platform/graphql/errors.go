package graphql

import (
	"errors"
	"fmt"
	"strings"
)

type (
	// AuthError means no usable credential was available. It is raised
	// before any network call is attempted.
	AuthError struct {
		Reason string
	}

	// TransportError wraps a network-level failure: the request never
	// produced a response.
	TransportError struct {
		Err error
	}

	// ErrorDetail is one server-reported GraphQL error.
	ErrorDetail struct {
		Message string `json:"message"`
		Code    string `json:"code,omitempty"`
	}

	// APIError means the server answered but reported failure: a non-2xx
	// status, or a well-formed response carrying an errors list.
	APIError struct {
		StatusCode int
		Errors     []ErrorDetail
	}
)

func (e *AuthError) Error() string {
	if e.Reason == "" {
		return "no credential, please login"
	}
	return e.Reason
}

func (e *TransportError) Error() string {
	return fmt.Sprintf("graphql transport: %v", e.Err)
}

func (e *TransportError) Unwrap() error { return e.Err }

func (e *APIError) Error() string {
	if len(e.Errors) == 0 {
		return fmt.Sprintf("graphql api: status %d", e.StatusCode)
	}
	msgs := make([]string, 0, len(e.Errors))
	for _, d := range e.Errors {
		msgs = append(msgs, d.Message)
	}
	return fmt.Sprintf("graphql api: %s", strings.Join(msgs, "; "))
}

// IsAuth reports whether err is (or wraps) an AuthError.
func IsAuth(err error) bool {
	var ae *AuthError
	return errors.As(err, &ae)
}
