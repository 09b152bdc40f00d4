// Package errtax implements the error taxonomy of VajraEdge (spec §7):
// CONFIG_INVALID, PREFLIGHT_FAILED, CAPACITY_EXCEEDED, TASK_ERROR,
// WORKER_LOST, TEST_FATAL and CANCELLED, each carrying a CLI exit code
// and an optional operator-facing hint.
package errtax

import (
	"errors"
	"fmt"
)

// Code names one of the taxonomy categories from spec §7.
type Code string

const (
	ConfigInvalid    Code = "CONFIG_INVALID"
	PreflightFailed  Code = "PREFLIGHT_FAILED"
	CapacityExceeded Code = "CAPACITY_EXCEEDED"
	TaskError        Code = "TASK_ERROR"
	WorkerLost       Code = "WORKER_LOST"
	TestFatal        Code = "TEST_FATAL"
	Cancelled        Code = "CANCELLED"
)

// HasHint is implemented by errors that carry an operator-facing hint,
// printed alongside the error text.
type HasHint interface {
	error
	Hint() string
}

// HasExitCode is implemented by errors that dictate the CLI process exit
// code, per spec §6's exit code table.
type HasExitCode interface {
	error
	ExitCode() int
}

// HasTaxonomy is implemented by errors that carry a spec §7 category.
type HasTaxonomy interface {
	error
	Taxonomy() Code
}

type hintedError struct {
	err  error
	hint string
}

func (e *hintedError) Error() string { return e.err.Error() }
func (e *hintedError) Unwrap() error { return e.err }
func (e *hintedError) Hint() string  { return e.hint }

// WithHint wraps err with an operator-facing hint. If err already carries
// a hint, the new hint is prefixed and the old one kept in parentheses,
// mirroring errext's nesting behavior so the most specific hint reads
// first.
func WithHint(err error, hint string) error {
	if err == nil {
		return nil
	}
	var existing HasHint
	if errors.As(err, &existing) {
		hint = fmt.Sprintf("%s (%s)", hint, existing.Hint())
	}
	return &hintedError{err: err, hint: hint}
}

type exitCodeError struct {
	err  error
	code int
}

func (e *exitCodeError) Error() string { return e.err.Error() }
func (e *exitCodeError) Unwrap() error { return e.err }
func (e *exitCodeError) ExitCode() int { return e.code }

// WithExitCodeIfNone wraps err with code, unless it (or something it
// wraps) already carries an exit code, in which case err is returned
// unchanged — the innermost exit code wins.
func WithExitCodeIfNone(err error, code int) error {
	if err == nil {
		return nil
	}
	var existing HasExitCode
	if errors.As(err, &existing) {
		return err
	}
	return &exitCodeError{err: err, code: code}
}

type taxonomyError struct {
	err  error
	code Code
}

func (e *taxonomyError) Error() string { return e.err.Error() }
func (e *taxonomyError) Unwrap() error { return e.err }
func (e *taxonomyError) Taxonomy() Code { return e.code }

// Classify wraps err with a taxonomy category and the category's default
// exit code (see ExitCodeFor), unless err already carries an explicit
// exit code.
func Classify(err error, code Code) error {
	if err == nil {
		return nil
	}
	err = &taxonomyError{err: err, code: code}
	return WithExitCodeIfNone(err, ExitCodeFor(code))
}

// TaxonomyOf extracts the taxonomy category from err, if any.
func TaxonomyOf(err error) (Code, bool) {
	var typed HasTaxonomy
	if errors.As(err, &typed) {
		return typed.Taxonomy(), true
	}
	return "", false
}

// ExitCodeFor returns the CLI exit code (spec §6) for a taxonomy
// category: 0 success is never returned here (it is the absence of
// error); 1 general failure is the default for anything not explicitly
// mapped; 2 validation failure for CONFIG_INVALID/PREFLIGHT_FAILED;
// 3 capacity exceeded for CAPACITY_EXCEEDED.
func ExitCodeFor(code Code) int {
	switch code {
	case ConfigInvalid, PreflightFailed:
		return 2
	case CapacityExceeded:
		return 3
	default:
		return 1
	}
}

// ExitCode extracts the process exit code for err: 0 if err is nil, the
// carried exit code if any error in the chain implements HasExitCode,
// otherwise 1 (general failure).
func ExitCode(err error) int {
	if err == nil {
		return 0
	}
	var typed HasExitCode
	if errors.As(err, &typed) {
		return typed.ExitCode()
	}
	return 1
}

// Hint extracts the operator-facing hint for err, if any.
func Hint(err error) (string, bool) {
	var typed HasHint
	if errors.As(err, &typed) {
		return typed.Hint(), true
	}
	return "", false
}
