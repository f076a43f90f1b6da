package importer

import (
	"errors"
	"fmt"
	"strings"
)

// Sentinel kinds for payload-level failures. Use errors.Is on the error
// returned by Parse.
var (
	ErrMalformedPayload    = errors.New("malformed payload")
	ErrUnrecognizedShape   = errors.New("unrecognized payload shape")
	ErrNoResolvableEntries = errors.New("no resolvable entries")
)

// Sentinel kinds for rejected entries that are not catalog misses.
var (
	ErrMalformedEntry = errors.New("malformed entry")
)

// Kind tags the payload-level failure.
type Kind int

const (
	KindMalformedPayload Kind = iota + 1
	KindUnrecognizedShape
	KindNoResolvableEntries
)

func (k Kind) String() string {
	switch k {
	case KindMalformedPayload:
		return "malformed_payload"
	case KindUnrecognizedShape:
		return "unrecognized_shape"
	case KindNoResolvableEntries:
		return "no_resolvable_entries"
	default:
		return "unknown"
	}
}

func (k Kind) sentinel() error {
	switch k {
	case KindMalformedPayload:
		return ErrMalformedPayload
	case KindUnrecognizedShape:
		return ErrUnrecognizedShape
	case KindNoResolvableEntries:
		return ErrNoResolvableEntries
	default:
		return nil
	}
}

// Error is the failure value of Parse. Every kind is recoverable: the caller
// reports Reason and keeps its current records.
type Error struct {
	Kind   Kind
	Reason string
	// Rejected is set for KindNoResolvableEntries.
	Rejected []Rejection
	// Err is the underlying cause, if any.
	Err error
}

func (e *Error) Error() string {
	var b strings.Builder
	b.WriteString(e.Kind.sentinel().Error())
	if e.Reason != "" {
		b.WriteString(": ")
		b.WriteString(e.Reason)
	}
	if e.Err != nil {
		fmt.Fprintf(&b, ": %v", e.Err)
	}
	return b.String()
}

// Unwrap exposes both the kind sentinel and the cause.
func (e *Error) Unwrap() []error {
	errs := []error{e.Kind.sentinel()}
	if e.Err != nil {
		errs = append(errs, e.Err)
	}
	return errs
}

func newError(kind Kind, reason string, cause error) *Error {
	return &Error{Kind: kind, Reason: reason, Err: cause}
}
