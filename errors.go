// Copyright 2023-2025 Tangram Labs.
// Licensed under the Apache License, Version 2.0. See the LICENSE file for details.

package cassowary

import "errors"

// Expected, recoverable failures of solver mutations. A call returning one of
// these leaves the solver exactly as it was before the call.
var (
	// ErrDuplicateConstraint reports the same constraint instance added twice.
	ErrDuplicateConstraint = errors.New("constraint already present in solver")

	// ErrUnsatisfiableConstraint reports a required constraint that cannot
	// hold together with the required constraints already present.
	ErrUnsatisfiableConstraint = errors.New("required constraint is unsatisfiable")

	// ErrUnknownConstraint reports removal of a constraint the solver does
	// not track.
	ErrUnknownConstraint = errors.New("constraint not present in solver")

	// ErrUnknownEditVariable reports a suggestion or removal for a variable
	// with no edit entry.
	ErrUnknownEditVariable = errors.New("variable has no edit entry")

	// ErrDuplicateEditVariable reports a second edit entry for one variable.
	ErrDuplicateEditVariable = errors.New("variable already has an edit entry")

	// ErrBadRequiredStrength reports an edit variable registered at Required
	// strength; an edit's backing constraint must stay adjustable.
	ErrBadRequiredStrength = errors.New("edit variable may not be required")
)

// ErrInternal marks tableau invariant violations detected defensively. It
// signals a bug in the solver, not a recoverable user error; callers should
// surface it loudly rather than continue with a possibly inconsistent
// tableau. Matched by errors.Is; the wrapped detail is carried by
// [InternalError].
var ErrInternal = errors.New("internal solver error")

// InternalError carries the detail of a broken solver invariant.
type InternalError struct {
	Msg string
}

func (e InternalError) Error() string {
	return "internal solver error: " + e.Msg
}

func (e InternalError) Unwrap() error { return ErrInternal }

func internalError(msg string) error {
	return InternalError{Msg: msg}
}
