// internal/gateway/errors.go
package gateway

import (
	"errors"
	"fmt"
)

// Kind classifies every network or server outcome the gateway can surface.
// The taxonomy is closed: callers never see raw transport errors.
type Kind int

const (
	// KindAuthRequired means the server rejected the call for lack of, or
	// an invalid, credential.
	KindAuthRequired Kind = iota + 1
	// KindAPI means the server was reachable and responded with a
	// structured business error.
	KindAPI
	// KindNetwork means transport failure: no usable response at all.
	KindNetwork
)

// String returns a human-readable kind name
func (k Kind) String() string {
	switch k {
	case KindAuthRequired:
		return "authentication_required"
	case KindAPI:
		return "api_error"
	case KindNetwork:
		return "network_error"
	default:
		return "unknown"
	}
}

// Error is the normalized form of every failed gateway call
type Error struct {
	Kind    Kind
	Status  int
	Message string
	Err     error
}

// Error implements the error interface
func (e *Error) Error() string {
	if e.Message != "" {
		return fmt.Sprintf("%s: %s", e.Kind, e.Message)
	}
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Kind, e.Err)
	}
	return e.Kind.String()
}

// Unwrap exposes the underlying cause, if any
func (e *Error) Unwrap() error {
	return e.Err
}

// AsError extracts the normalized gateway error from an error chain
func AsError(err error) (*Error, bool) {
	var gwErr *Error
	if errors.As(err, &gwErr) {
		return gwErr, true
	}
	return nil, false
}

// IsAuthRequired reports whether err is an authentication-required failure
func IsAuthRequired(err error) bool {
	gwErr, ok := AsError(err)
	return ok && gwErr.Kind == KindAuthRequired
}

// IsNetwork reports whether err is a transport failure
func IsNetwork(err error) bool {
	gwErr, ok := AsError(err)
	return ok && gwErr.Kind == KindNetwork
}
