package clerk

import (
	"errors"
	"fmt"
)

// ErrSecretNotConfigured is returned when no webhook signing secret is set.
var ErrSecretNotConfigured = errors.New("clerk webhook secret is not configured")

// AuthenticationError means the delivery could not be proven to come from the
// provider. Nothing must be processed.
type AuthenticationError struct {
	Reason string
	Err    error
}

func (e *AuthenticationError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("webhook authentication failed: %s: %v", e.Reason, e.Err)
	}
	return "webhook authentication failed: " + e.Reason
}

func (e *AuthenticationError) Unwrap() error {
	return e.Err
}

// DecodeError means a verified body could not be decoded into an event.
type DecodeError struct {
	Kind Kind
	Err  error
}

func (e *DecodeError) Error() string {
	if e.Kind == "" {
		return fmt.Sprintf("decode webhook event: %v", e.Err)
	}
	return fmt.Sprintf("decode %s event: %v", e.Kind, e.Err)
}

func (e *DecodeError) Unwrap() error {
	return e.Err
}
