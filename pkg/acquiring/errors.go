package acquiring

import (
	"errors"
	"fmt"

	"sberbank-acquiring/pkg/transport"
)

const unknownErrorMessage = "Unknown error."

var (
	ErrMalformedResponse = errors.New("malformed response")
	ErrUserNameRequired  = errors.New("userName is required")
	ErrPasswordRequired  = errors.New("password is required")
	ErrInvalidHTTPMethod = errors.New(`an HTTP method must be "GET" or "POST"`)
	ErrEmptyAction       = errors.New("action is required")
)

// NetworkError is the transport failure kind, re-exported for callers that
// only import this package.
type NetworkError = transport.NetworkError

// ConfigError reports a client that was built or called with invalid input.
// It is never worth retrying.
type ConfigError struct {
	Field string
	Err   error
}

func (e *ConfigError) Error() string {
	return fmt.Sprintf("acquiring: invalid configuration: %s: %v", e.Field, e.Err)
}

func (e *ConfigError) Unwrap() error { return e.Err }

// ActionError is a failure reported by the remote API through an errorCode
// other than the string "0". A malformed envelope is an ActionError flagged
// through Malformed that matches ErrMalformedResponse.
type ActionError struct {
	Code    string
	Message string
	Err     error

	malformed bool
}

func (e *ActionError) Error() string {
	if e.malformed {
		return "acquiring: " + e.Message
	}
	return fmt.Sprintf("acquiring: action failed with code %q: %s", e.Code, e.Message)
}

func (e *ActionError) Unwrap() error { return e.Err }

// Is matches ErrMalformedResponse for every envelope that carried no errorCode.
// A present but empty errorCode is a regular action error.
func (e *ActionError) Is(target error) bool {
	return target == ErrMalformedResponse && e.malformed
}

// Malformed reports whether the envelope lacked an errorCode altogether.
func (e *ActionError) Malformed() bool { return e.malformed }

func malformed(err error) *ActionError {
	return &ActionError{
		Message:   `malformed response: "errorCode" field not found`,
		Err:       err,
		malformed: true,
	}
}

func IsNetworkError(err error) bool {
	return transport.IsNetworkError(err)
}

func IsActionError(err error) bool {
	var ae *ActionError
	return errors.As(err, &ae)
}

func IsConfigError(err error) bool {
	var ce *ConfigError
	return errors.As(err, &ce)
}
