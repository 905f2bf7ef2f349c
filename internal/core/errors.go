package core

import (
	"errors"
	"fmt"
)

// The error taxonomy is deliberately small: malformed input, absent records,
// and underlying I/O failure. There is no locking-conflict class — each
// project's operations are serialized (see Service).

// ValidationError indicates malformed caller input (bad path, empty cascade
// list, non-hex token). Maps to a 4xx at the transport layer.
type ValidationError struct {
	Msg string
}

func (e *ValidationError) Error() string { return e.Msg }

// Validationf builds a ValidationError from a format string.
func Validationf(format string, args ...any) *ValidationError {
	return &ValidationError{Msg: fmt.Sprintf(format, args...)}
}

// NotFoundError indicates an absent snapshot, change entry, or backup blob.
// Maps to a 404 at the transport layer.
type NotFoundError struct {
	Resource string // "snapshot", "change", "backup"
	Key      string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s not found: %s", e.Resource, e.Key)
}

// FilesystemError indicates an underlying storage or workspace I/O failure.
// Maps to a 5xx at the transport layer.
type FilesystemError struct {
	Op  string
	Err error
}

func (e *FilesystemError) Error() string {
	return fmt.Sprintf("%s: %v", e.Op, e.Err)
}

func (e *FilesystemError) Unwrap() error { return e.Err }

// IsNotFound reports whether err is (or wraps) a NotFoundError.
func IsNotFound(err error) bool {
	var nf *NotFoundError
	return errors.As(err, &nf)
}

// IsValidation reports whether err is (or wraps) a ValidationError.
func IsValidation(err error) bool {
	var ve *ValidationError
	return errors.As(err, &ve)
}
