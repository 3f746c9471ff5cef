package capability

import (
	"context"
	"errors"
	"fmt"
)

// Error is returned by completion and embedding backends when the remote call
// fails, times out or answers with a non-success status. Callers must not retry
// it blindly; it is surfaced to the client as "service unavailable".
type Error struct {
	Provider   string // e.g. "ollama", "openai", "gemini"
	Op         string // "complete" | "embed"
	StatusCode int    // 0 when the request never got a response
	Err        error
}

func (e *Error) Error() string {
	if e.StatusCode > 0 {
		return fmt.Sprintf("%s %s failed: status %d: %v", e.Provider, e.Op, e.StatusCode, e.Err)
	}
	return fmt.Sprintf("%s %s failed: %v", e.Provider, e.Op, e.Err)
}

func (e *Error) Unwrap() error {
	return e.Err
}

// Timeout reports whether the failure was caused by the capability deadline.
func (e *Error) Timeout() bool {
	return errors.Is(e.Err, context.DeadlineExceeded)
}

// Wrap builds a capability error unless err is already one.
func Wrap(provider, op string, statusCode int, err error) error {
	if err == nil {
		return nil
	}
	var capErr *Error
	if errors.As(err, &capErr) {
		return err
	}
	return &Error{Provider: provider, Op: op, StatusCode: statusCode, Err: err}
}

// IsCapabilityError reports whether err (or anything it wraps) is a capability failure.
func IsCapabilityError(err error) bool {
	var capErr *Error
	return errors.As(err, &capErr)
}
