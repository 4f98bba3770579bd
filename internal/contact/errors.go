package contact

import (
	"context"
	"errors"
	"fmt"
)

// ErrorCode classifies failures crossing the Source boundary.
type ErrorCode string

const (
	// CodeSourceUnavailable indicates the store returned no usable result.
	CodeSourceUnavailable ErrorCode = "source_unavailable"
	// CodeSchemaMismatch indicates an expected column or field is absent.
	CodeSchemaMismatch ErrorCode = "schema_mismatch"
	// CodeWriteRejected indicates a field update failed.
	CodeWriteRejected ErrorCode = "write_rejected"
)

// Sentinels for errors.Is; they match any *Error with the same code.
var (
	ErrSourceUnavailable = &Error{Code: CodeSourceUnavailable}
	ErrSchemaMismatch    = &Error{Code: CodeSchemaMismatch}
	ErrWriteRejected     = &Error{Code: CodeWriteRejected}
)

// Error is the typed failure carried by Result and returned by writes.
type Error struct {
	Code ErrorCode
	Op   string
	Err  error
}

// Error returns the formatted error message.
func (e *Error) Error() string {
	if e == nil {
		return "contact: <nil>"
	}
	msg := "contact: " + string(e.Code)
	if e.Op != "" {
		msg += ": " + e.Op
	}
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

// Unwrap exposes the underlying cause.
func (e *Error) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Err
}

// Is matches sentinels by code.
func (e *Error) Is(target error) bool {
	var t *Error
	if !errors.As(target, &t) || e == nil || t == nil {
		return false
	}
	return t.Code == e.Code && t.Op == "" && t.Err == nil
}

// Unavailable builds a CodeSourceUnavailable error.
func Unavailable(op string, err error) error {
	return &Error{Code: CodeSourceUnavailable, Op: op, Err: err}
}

// SchemaMismatch builds a CodeSchemaMismatch error for a missing column.
func SchemaMismatch(op, column string) error {
	return &Error{Code: CodeSchemaMismatch, Op: op, Err: fmt.Errorf("column %q doesn't exist", column)}
}

// WriteRejected builds a CodeWriteRejected error for one field.
func WriteRejected(fieldID int64, err error) error {
	return &Error{Code: CodeWriteRejected, Op: fmt.Sprintf("write field %d", fieldID), Err: err}
}

// CodeOf returns the code of the first *Error in err's chain, or "".
func CodeOf(err error) ErrorCode {
	var e *Error
	if errors.As(err, &e) {
		return e.Code
	}
	return ""
}

// IsCancellation reports whether err stems from context cancellation or
// deadline expiry. Such errors are never surfaced as failures.
func IsCancellation(err error) bool {
	return errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded)
}
