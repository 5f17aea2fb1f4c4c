package store

import (
	"errors"
	"fmt"
)

// Code classifies a storage failure for callers that need to decide whether
// to skip an operation, surface it, or treat the backing file as broken.
type Code string

const (
	// CodeNotFound means the referenced item or key does not exist,
	// typically because it raced with a delete or capacity eviction.
	CodeNotFound Code = "not_found"

	// CodeUnavailable means the backing database could not serve the
	// operation (locked, I/O error, closed).
	CodeUnavailable Code = "unavailable"

	// CodeCorrupt means the backing database file is damaged.
	CodeCorrupt Code = "corrupt"

	// CodeConstraintViolation means a schema constraint rejected the write.
	CodeConstraintViolation Code = "constraint_violation"
)

// ClipError is the error type surfaced by store implementations. The store
// never retries internally; callers inspect the Code to decide.
type ClipError struct {
	Code Code
	Op   string
	Err  error
}

func (e *ClipError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Op, e.Code, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Op, e.Code)
}

func (e *ClipError) Unwrap() error {
	return e.Err
}

// NewError builds a ClipError for the given operation.
func NewError(code Code, op string, err error) *ClipError {
	return &ClipError{Code: code, Op: op, Err: err}
}

// NotFoundError builds the NotFound error for an item ID.
func NotFoundError(op string, id int64) *ClipError {
	return &ClipError{Code: CodeNotFound, Op: op, Err: fmt.Errorf("item not found: %d", id)}
}

// ErrorCode extracts the Code from err, or "" if err is not a ClipError.
func ErrorCode(err error) Code {
	var ce *ClipError
	if errors.As(err, &ce) {
		return ce.Code
	}
	return ""
}

// IsNotFound reports whether err is a NotFound storage error.
func IsNotFound(err error) bool {
	return ErrorCode(err) == CodeNotFound
}
