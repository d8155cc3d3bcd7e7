// Package apperr defines the error taxonomy shared by the ledger, the workflows and the
// use cases. Every error raised by this module carries a Kind that decides how callers
// react to it (retry, reject, surface as 404, ...).
package apperr

import (
	"errors"
	"fmt"
)

// Kind classifies an error for propagation and transport mapping
type Kind string

const (
	KindNotFound      Kind = "not_found"     // Referenced entity does not exist
	KindAuthorization Kind = "authorization" // Principal missing or not allowed
	KindValidation    Kind = "validation"    // Malformed business input
	KindConcurrency   Kind = "concurrency"   // Stale version on a read-modify-write
	KindInternal      Kind = "internal"      // Programming defect, never user-recoverable
)

// Error is the concrete error type of this module
type Error struct {
	Kind Kind   // Error kind
	Code string // Stable machine readable code
	Msg  string // Human readable message
	Err  error  // Wrapped cause, optional
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Msg, e.Err)
	}
	return e.Msg
}

func (e *Error) Unwrap() error {
	return e.Err
}

// Is matches another *Error by code, or by kind when the target has no code.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	if t.Code != "" {
		return e.Code == t.Code
	}
	return e.Kind == t.Kind
}

// Sentinel errors usable with errors.Is
var (
	ErrNotFound      = &Error{Kind: KindNotFound, Msg: "not found"}
	ErrAuthorization = &Error{Kind: KindAuthorization, Msg: "not allowed"}
	ErrValidation    = &Error{Kind: KindValidation, Msg: "invalid input"}
	ErrConcurrency   = &Error{Kind: KindConcurrency, Msg: "concurrent modification"}
	ErrInternal      = &Error{Kind: KindInternal, Msg: "internal error"}

	ErrUnauthenticated      = &Error{Kind: KindAuthorization, Code: "unauthenticated", Msg: "no authenticated principal"}
	ErrInvalidAmount        = &Error{Kind: KindValidation, Code: "invalid_amount", Msg: "amount must be greater than zero"}
	ErrInsufficientBalance  = &Error{Kind: KindValidation, Code: "insufficient_balance", Msg: "insufficient balance"}
	ErrCategoryTypeMismatch = &Error{Kind: KindValidation, Code: "category_type_mismatch", Msg: "transaction type does not match category type"}
	ErrDuplicateCreator     = &Error{Kind: KindValidation, Code: "duplicate_creator", Msg: "more than one member flagged as creator"}
	ErrDuplicateMember      = &Error{Kind: KindValidation, Code: "duplicate_member", Msg: "user linked to more than one member"}
	ErrUsernameTaken        = &Error{Kind: KindValidation, Code: "username_taken", Msg: "username already exists"}
	ErrSourceRequired       = &Error{Kind: KindValidation, Code: "source_required", Msg: "expense source is required for this transaction type"}
	ErrAlreadyPending       = &Error{Kind: KindValidation, Code: "already_pending", Msg: "join request already pending"}
	ErrAlreadyMember        = &Error{Kind: KindValidation, Code: "already_member", Msg: "already a member of this group"}
	ErrCreatorCannotJoin    = &Error{Kind: KindValidation, Code: "creator_cannot_join", Msg: "group creator cannot request to join"}
	ErrInvalidSharingToken  = &Error{Kind: KindValidation, Code: "invalid_sharing_token", Msg: "invalid sharing token"}
	ErrSharingDisabled      = &Error{Kind: KindValidation, Code: "sharing_disabled", Msg: "group is not open for sharing"}
	ErrInvalidTransition    = &Error{Kind: KindValidation, Code: "invalid_transition", Msg: "invalid sharing status transition"}
	ErrVersionConflict      = &Error{Kind: KindConcurrency, Code: "version_conflict", Msg: "balance was modified concurrently"}
	ErrUnsupportedType      = &Error{Kind: KindInternal, Code: "unsupported_type", Msg: "unsupported transaction type"}
)

// New builds an error of the given kind
func New(kind Kind, code, msg string) *Error {
	return &Error{Kind: kind, Code: code, Msg: msg}
}

// NotFound reports a missing entity, e.g. NotFound("wallet", 7)
func NotFound(entity string, id any) *Error {
	return &Error{Kind: KindNotFound, Code: entity + "_not_found", Msg: fmt.Sprintf("%s %v not found", entity, id)}
}

// Forbidden reports a failed ownership or membership check
func Forbidden(msg string) *Error {
	return &Error{Kind: KindAuthorization, Code: "forbidden", Msg: msg}
}

// Invalid reports malformed business input
func Invalid(code, msg string) *Error {
	return &Error{Kind: KindValidation, Code: code, Msg: msg}
}

// Internal wraps an unexpected cause as a programming defect
func Internal(msg string, err error) *Error {
	return &Error{Kind: KindInternal, Code: "internal", Msg: msg, Err: err}
}

// Wrap attaches a cause to a sentinel, keeping its kind and code
func Wrap(sentinel *Error, err error) *Error {
	return &Error{Kind: sentinel.Kind, Code: sentinel.Code, Msg: sentinel.Msg, Err: err}
}

// KindOf returns the kind of err, KindInternal for foreign errors and "" for nil
func KindOf(err error) Kind {
	if err == nil {
		return ""
	}
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return KindInternal
}

// IsRetryable reports whether err is a concurrency conflict worth retrying
func IsRetryable(err error) bool {
	return KindOf(err) == KindConcurrency
}
