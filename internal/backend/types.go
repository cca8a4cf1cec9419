package backend

import (
	"context"
	"errors"
	"fmt"
	"strings"
)

// ErrUnavailable marks a backend that cannot be reached at all: the
// executable is missing or the local service is not running. The relay
// recovers by speaking a hint to the user and continuing.
var ErrUnavailable = errors.New("backend unavailable")

// ExecError reports a backend that was invoked but returned a failure.
type ExecError struct {
	Backend string
	Detail  string
	Err     error
}

func (e *ExecError) Error() string {
	if e.Detail != "" {
		return fmt.Sprintf("%s backend failed: %v (%s)", e.Backend, e.Err, e.Detail)
	}
	return fmt.Sprintf("%s backend failed: %v", e.Backend, e.Err)
}

func (e *ExecError) Unwrap() error {
	return e.Err
}

// Backend generates a text response for a prompt. Calls are synchronous and
// blocking; the relay keeps at most one request in flight.
type Backend interface {
	// Name identifies the backend in logs and metrics.
	Name() string

	// Generate produces a response for the prompt.
	Generate(ctx context.Context, prompt string) (string, error)

	// Available probes whether the backend can serve requests.
	Available(ctx context.Context) error
}

// isConnectionError reports whether err looks like a failure to reach a
// local service at all, as opposed to the service failing a request.
func isConnectionError(err error) bool {
	if err == nil {
		return false
	}
	msg := err.Error()
	for _, s := range []string{
		"connection refused",
		"connection reset",
		"no such host",
		"network is unreachable",
	} {
		if strings.Contains(msg, s) {
			return true
		}
	}
	return false
}
