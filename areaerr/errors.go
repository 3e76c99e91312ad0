// Package areaerr defines the error taxonomy a Checker or Executor can return (spec §7) and
// the WorkflowLog status each kind maps to.
package areaerr

import (
	"errors"
	"fmt"
)

// Kind distinguishes the five failure categories the scheduler's isolation boundary must
// recognize.
type Kind int

const (
	// KindConfig: the workflow's actionConfig/reactionConfig is missing a required field.
	KindConfig Kind = iota
	// KindConnectionMissing: no UserServiceConnection for the workflow's provider.
	KindConnectionMissing
	// KindProvider: a 4xx/5xx or network failure from a ProviderClient.
	KindProvider
	// KindUnknown: the dispatcher has no handler registered for an action/reaction name.
	KindUnknown
	// KindInternal: an unexpected error escaped a Checker/Executor.
	KindInternal
)

// Status returns the WorkflowLog status this Kind is recorded under.
func (k Kind) Status() string {
	if k == KindInternal {
		return "error"
	}
	return "failed"
}

func (k Kind) String() string {
	switch k {
	case KindConfig:
		return "ConfigError"
	case KindConnectionMissing:
		return "ConnectionMissing"
	case KindProvider:
		return "ProviderError"
	case KindUnknown:
		return "UnknownKind"
	case KindInternal:
		return "InternalError"
	default:
		return "UnknownErrorKind"
	}
}

// Error is the typed error implementation carrying a Kind plus a message.
type Error struct {
	Kind    Kind
	Message string
	Cause   error
}

func (e *Error) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %s: %v", e.Kind, e.Message, e.Cause)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

func (e *Error) Unwrap() error { return e.Cause }

// Is supports errors.Is against the Kind sentinels below.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	return e.Kind == t.Kind
}

func newKind(k Kind) *Error { return &Error{Kind: k} }

// Sentinels usable with errors.Is(err, areaerr.Config), etc.
var (
	Config            = newKind(KindConfig)
	ConnectionMissing = newKind(KindConnectionMissing)
	Provider          = newKind(KindProvider)
	Unknown           = newKind(KindUnknown)
	Internal          = newKind(KindInternal)
)

// ConfigError builds a KindConfig error for a missing/invalid workflow config field.
func ConfigError(format string, args ...interface{}) *Error {
	return &Error{Kind: KindConfig, Message: fmt.Sprintf(format, args...)}
}

// ConnectionMissingError builds a KindConnectionMissing error.
func ConnectionMissingError(format string, args ...interface{}) *Error {
	return &Error{Kind: KindConnectionMissing, Message: fmt.Sprintf(format, args...)}
}

// ProviderError wraps an upstream error as KindProvider, preserving its text in the message
// so the WorkflowLog row can surface it per spec §7 ("message carries the upstream error string").
func ProviderError(cause error) *Error {
	return &Error{Kind: KindProvider, Message: cause.Error(), Cause: cause}
}

// UnknownKindError builds the fixed-format dispatcher error from spec §4.4.
func UnknownKindError(name string) *Error {
	return &Error{Kind: KindUnknown, Message: fmt.Sprintf("Unknown action/reaction type: %s", name)}
}

// InternalError wraps an unexpected error as KindInternal.
func InternalError(cause error) *Error {
	return &Error{Kind: KindInternal, Message: cause.Error(), Cause: cause}
}

// KindOf extracts the Kind of err, defaulting to KindInternal for anything not built
// through this package — matching spec §7's instruction that anything unexpected is
// treated as InternalError.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return KindInternal
}
