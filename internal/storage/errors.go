package storage

import (
	"errors"
	"fmt"
)

var (
	// ErrNotFound reports that no record exists for a key.
	ErrNotFound = errors.New("storage: record not found")

	// ErrExpired reports that a record exists but its expiry has passed.
	ErrExpired = errors.New("storage: record expired")

	// ErrQuotaExceeded is returned by backends that enforce a size quota.
	ErrQuotaExceeded = errors.New("storage: quota exceeded")

	// ErrClosed is returned by backends used after Close.
	ErrClosed = errors.New("storage: backend closed")
)

// ErrorCode categorizes adapter failures.
type ErrorCode string

const (
	// CodeSerialize indicates the value could not be encoded as JSON.
	CodeSerialize ErrorCode = "SERIALIZE"

	// CodeDeserialize indicates a stored record could not be decoded.
	CodeDeserialize ErrorCode = "DESERIALIZE"

	// CodeQuota indicates the backend rejected a write for lack of space.
	CodeQuota ErrorCode = "QUOTA"

	// CodeBackend indicates any other backend failure.
	CodeBackend ErrorCode = "BACKEND"
)

// OpError describes a failed adapter operation.
type OpError struct {
	Op   string // "get", "set", "remove", "keys"
	Key  string
	Code ErrorCode
	Err  error
}

// Error implements the error interface.
func (e *OpError) Error() string {
	if e.Key != "" {
		return fmt.Sprintf("storage %s %q: %s: %v", e.Op, e.Key, e.Code, e.Err)
	}
	return fmt.Sprintf("storage %s: %s: %v", e.Op, e.Code, e.Err)
}

// Unwrap returns the underlying error for errors.Is/As.
func (e *OpError) Unwrap() error {
	return e.Err
}

// IsCode reports whether err is an *OpError with the given code.
func IsCode(err error, code ErrorCode) bool {
	var opErr *OpError
	if errors.As(err, &opErr) {
		return opErr.Code == code
	}
	return false
}

func backendError(op, key string, err error) *OpError {
	code := CodeBackend
	if errors.Is(err, ErrQuotaExceeded) {
		code = CodeQuota
	}
	return &OpError{Op: op, Key: key, Code: code, Err: err}
}
