package transport

import (
	"errors"
	"fmt"
)

var ErrCircuitOpen = errors.New("circuit breaker is open")

// NetworkError is returned for every failure of the exchange itself: DNS,
// connect, TLS handshake, timeout, cancellation or a broken response body.
type NetworkError struct {
	Op  string
	URI string
	Err error
}

func (e *NetworkError) Error() string {
	if e.URI == "" {
		return fmt.Sprintf("network error: %s: %v", e.Op, e.Err)
	}
	return fmt.Sprintf("network error: %s %s: %v", e.Op, e.URI, e.Err)
}

func (e *NetworkError) Unwrap() error { return e.Err }

// IsNetworkError reports whether any error in err's chain is a *NetworkError.
func IsNetworkError(err error) bool {
	var ne *NetworkError
	return errors.As(err, &ne)
}
