package models

import (
	"errors"
	"fmt"
)

// Error kinds raised while synchronizing a source. Use errors.Is against
// these to classify a failure.
var (
	ErrHTTP              = errors.New("http error")
	ErrParse             = errors.New("parse error")
	ErrChapterNotFound   = errors.New("chapter not found")
	ErrUnsupportedDomain = errors.New("unsupported domain")
)

// SyncError represents a failure while talking to a remote site or
// interpreting what it returned.
type SyncError struct {
	Kind    error
	Domain  string
	Message string
	Cause   error
}

func (e *SyncError) Error() string {
	prefix := e.Kind.Error()
	if e.Domain != "" {
		prefix = fmt.Sprintf("%s (%s)", prefix, e.Domain)
	}
	if e.Cause != nil {
		return fmt.Sprintf("%s: %s: %v", prefix, e.Message, e.Cause)
	}
	return fmt.Sprintf("%s: %s", prefix, e.Message)
}

func (e *SyncError) Unwrap() error {
	return e.Cause
}

// Is matches the error kind, so errors.Is(err, ErrParse) works on a
// *SyncError regardless of its cause.
func (e *SyncError) Is(target error) bool {
	return e.Kind == target
}

// NewHTTPError wraps a transport or status failure.
func NewHTTPError(domain, message string, cause error) error {
	return &SyncError{Kind: ErrHTTP, Domain: domain, Message: message, Cause: cause}
}

// NewParseError reports an unexpected or empty remote document.
func NewParseError(domain, message string) error {
	return &SyncError{Kind: ErrParse, Domain: domain, Message: message}
}
