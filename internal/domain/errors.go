package domain

import (
	"errors"
	"fmt"
)

var (
	ErrNoRoot         = errors.New("no workspace root configured")
	ErrInvalidPath    = errors.New("invalid path")
	ErrOutsideSandbox = errors.New("path escapes the workspace root")
)

var (
	ErrNotFound      = errors.New("no such file or directory")
	ErrAlreadyExists = errors.New("file already exists")
	ErrIsADirectory  = errors.New("target is a directory")
	ErrNotADirectory = errors.New("target is not a directory")
)

var (
	ErrStaleOperation = errors.New("operation already resolved or superseded")
	ErrTargetChanged  = errors.New("target changed since proposal")
)

var (
	ErrDocumentTooLarge = errors.New("document exceeds the context pin limit")
	ErrFileTooLarge     = errors.New("file exceeds the read limit")
)

var (
	ErrSecretNotFound  = errors.New("secret not found")
	ErrSessionNotFound = errors.New("session not found")
)

// UsageError marks a recognized slash command with malformed arguments.
// A message committed to a command never falls back to a general query.
type UsageError struct {
	Command string
	Usage   string
}

func (e *UsageError) Error() string {
	return fmt.Sprintf("%s: usage: %s", e.Command, e.Usage)
}

// BlockedError is a structured refusal from the model service.
type BlockedError struct {
	Reason string
}

func (e *BlockedError) Error() string {
	if e.Reason == "" {
		return "model service declined the request"
	}
	return "model service declined the request: " + e.Reason
}

// ServiceError is a transport or service failure from the model bridge.
type ServiceError struct {
	Cause error
}

func (e *ServiceError) Error() string {
	return fmt.Sprintf("model service failure: %v", e.Cause)
}

func (e *ServiceError) Unwrap() error { return e.Cause }

// IOError wraps a filesystem failure that is not one of the sentinel
// state mismatches above.
type IOError struct {
	Op    string
	Path  string
	Cause error
}

func (e *IOError) Error() string {
	return fmt.Sprintf("%s %s: %v", e.Op, e.Path, e.Cause)
}

func (e *IOError) Unwrap() error { return e.Cause }
