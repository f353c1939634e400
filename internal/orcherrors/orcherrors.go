// Copyright (c) 2025 Open Swarm Contributors
//
// This software is released under the MIT License.
// See LICENSE file in the repository for details.

// Package orcherrors defines the typed error kinds shared across the
// orchestrator's subsystems. Every fault a component raises carries one of
// these kinds so callers can branch on failure class without string
// matching.
package orcherrors

import (
	"errors"
	"fmt"
)

// Kind identifies the class of failure an Error represents.
type Kind string

const (
	// ContractViolation marks a caller misuse: malformed input, an unknown
	// id, or a precondition the caller should have checked.
	ContractViolation Kind = "contract_violation"

	// Retryable marks a transient failure the caller may retry, typically
	// after backoff.
	Retryable Kind = "retryable"

	// HookFault marks a failure raised by a lifecycle hook. Hook faults are
	// isolated: one module's HookFault never aborts the phase for the rest.
	HookFault Kind = "hook_fault"

	// ParseFault marks a failure decoding a structured payload, such as an
	// LLM response that was expected to be JSON.
	ParseFault Kind = "parse_fault"

	// PersistenceFault marks a failure reading or writing durable state.
	PersistenceFault Kind = "persistence_fault"

	// SchemaMismatch marks a persisted envelope whose schemaVersion or
	// checksum does not match what the reader expects.
	SchemaMismatch Kind = "schema_mismatch"
)

// Error is the orchestrator's typed error. It wraps an underlying cause and
// tags it with a Kind plus the component and identifier it occurred on.
type Error struct {
	Kind      Kind
	Component string
	ID        string
	Message   string
	Cause     error
}

func (e *Error) Error() string {
	if e.ID != "" {
		return fmt.Sprintf("[%s] %s %s: %s", e.Kind, e.Component, e.ID, e.Message)
	}
	return fmt.Sprintf("[%s] %s: %s", e.Kind, e.Component, e.Message)
}

// Unwrap exposes the underlying cause for errors.Is/errors.As.
func (e *Error) Unwrap() error {
	return e.Cause
}

// Is reports whether target is an *Error with the same Kind, so callers can
// write errors.Is(err, orcherrors.New(orcherrors.Retryable, "", "", "")).
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	if t.Kind == "" {
		return true
	}
	return e.Kind == t.Kind
}

// New constructs an Error with no wrapped cause.
func New(kind Kind, component, id, message string) *Error {
	return &Error{Kind: kind, Component: component, ID: id, Message: message}
}

// Wrap constructs an Error wrapping cause.
func Wrap(kind Kind, component, id, message string, cause error) *Error {
	return &Error{Kind: kind, Component: component, ID: id, Message: message, Cause: cause}
}

// KindOf extracts the Kind from err if it is (or wraps) an *Error, returning
// ok=false otherwise.
func KindOf(err error) (Kind, bool) {
	var oe *Error
	if errors.As(err, &oe) {
		return oe.Kind, true
	}
	return "", false
}
