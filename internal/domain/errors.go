package domain

import (
	"fmt"

	"github.com/pkg/errors"
)

// ErrorKind classifies failures that can end a poll cycle.
type ErrorKind string

const (
	KindUnknown          ErrorKind = "unknown"
	KindDataProvider     ErrorKind = "data_provider"
	KindValuation        ErrorKind = "valuation"
	KindQuoteUnavailable ErrorKind = "quote_unavailable"
	KindChainRead        ErrorKind = "chain_read"
	KindSubmission       ErrorKind = "submission"
	KindConfirmation     ErrorKind = "confirmation"
)

// Error is a classified failure. Op names the operation that failed.
type Error struct {
	Kind ErrorKind
	Op   string
	Err  error
}

// sentinels for errors.Is
var (
	ErrDataProvider     = &Error{Kind: KindDataProvider}
	ErrValuation        = &Error{Kind: KindValuation}
	ErrQuoteUnavailable = &Error{Kind: KindQuoteUnavailable}
	ErrChainRead        = &Error{Kind: KindChainRead}
	ErrSubmission       = &Error{Kind: KindSubmission}
	ErrConfirmation     = &Error{Kind: KindConfirmation}
)

// NewError classifies err as kind.
func NewError(kind ErrorKind, op string, err error) *Error {
	return &Error{Kind: kind, Op: op, Err: err}
}

// Errorf builds a classified error from a format string.
func Errorf(kind ErrorKind, op, format string, args ...any) *Error {
	return &Error{Kind: kind, Op: op, Err: errors.Errorf(format, args...)}
}

func (e *Error) Error() string {
	switch {
	case e.Err == nil && e.Op == "":
		return string(e.Kind)
	case e.Err == nil:
		return fmt.Sprintf("%s: %s", e.Op, e.Kind)
	case e.Op == "":
		return fmt.Sprintf("%s: %v", e.Kind, e.Err)
	default:
		return fmt.Sprintf("%s: %s: %v", e.Op, e.Kind, e.Err)
	}
}

func (e *Error) Unwrap() error { return e.Err }

// Is matches any *Error of the same kind when target is a bare sentinel.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	if t.Op != "" || t.Err != nil {
		return e == t
	}
	return e.Kind == t.Kind
}

// KindOf returns the kind of the outermost classified error in err's chain.
func KindOf(err error) ErrorKind {
	if err == nil {
		return ""
	}
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return KindUnknown
}
