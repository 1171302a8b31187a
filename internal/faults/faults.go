package faults

import (
	"context"
	"errors"
	"fmt"
	"strings"

	openai "github.com/sashabaranov/go-openai"
)

// Sentinel values for the four failure classes every dependency call is
// mapped onto before it crosses a component boundary. None of them ever
// reaches the end caller as a hard error; they drive degrade decisions and
// show up in diagnostics.
var (
	ErrConfigurationMissing = errors.New("configuration missing")
	ErrRemoteRejected       = errors.New("remote rejected request")
	ErrRemoteUnavailable    = errors.New("remote unavailable")
	ErrMalformedResponse    = errors.New("malformed remote response")
)

// Fault wraps a sentinel with the context needed for logging: which
// dependency failed, the HTTP status if there was one, and a body excerpt.
type Fault struct {
	Kind    error  // one of the sentinels above
	Op      string // e.g. "github.create-repo", "openai.chat-completion"
	Status  int    // HTTP status, 0 when not applicable
	Message string
}

func (f *Fault) Error() string {
	if f.Status > 0 {
		return fmt.Sprintf("%s: %v (status %d): %s", f.Op, f.Kind, f.Status, f.Message)
	}
	return fmt.Sprintf("%s: %v: %s", f.Op, f.Kind, f.Message)
}

func (f *Fault) Unwrap() error {
	return f.Kind
}

// New builds a Fault for the given sentinel.
func New(kind error, op string, status int, message string) *Fault {
	return &Fault{Kind: kind, Op: op, Status: status, Message: message}
}

// Classify maps an arbitrary error from a dependency call onto a taxonomy
// sentinel. Timeouts, transport failures and 5xx answers are
// RemoteUnavailable; a 4xx answer is RemoteRejected. The string sniffing
// covers transports that surface untyped errors.
func Classify(err error) error {
	if err == nil {
		return nil
	}
	var f *Fault
	if errors.As(err, &f) {
		return f.Kind
	}
	if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled) {
		return ErrRemoteUnavailable
	}
	var apiErr *openai.APIError
	if errors.As(err, &apiErr) {
		if apiErr.HTTPStatusCode >= 400 && apiErr.HTTPStatusCode < 500 {
			return ErrRemoteRejected
		}
		return ErrRemoteUnavailable
	}
	msg := strings.ToLower(err.Error())
	switch {
	case strings.Contains(msg, "timeout"),
		strings.Contains(msg, "connection refused"),
		strings.Contains(msg, "connection reset by peer"),
		strings.Contains(msg, "no such host"),
		strings.Contains(msg, "context deadline exceeded"):
		return ErrRemoteUnavailable
	case strings.Contains(msg, "status code: 4"),
		strings.Contains(msg, "rate limit"):
		return ErrRemoteRejected
	}
	return ErrRemoteUnavailable
}
