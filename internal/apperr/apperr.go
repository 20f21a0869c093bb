package apperr

import (
	"errors"
	"fmt"
)

// Kind classifies an error so handlers can map it to a transport status
// without inspecting message text.
type Kind int

const (
	KindValidation Kind = iota
	KindUnsupportedFormat
	KindEmptyDocument
	KindNotFound
	KindInvalidState
	KindTimeout
	KindExternalService
)

func (k Kind) String() string {
	switch k {
	case KindValidation:
		return "validation"
	case KindUnsupportedFormat:
		return "unsupported_format"
	case KindEmptyDocument:
		return "empty_document"
	case KindNotFound:
		return "not_found"
	case KindInvalidState:
		return "invalid_state"
	case KindTimeout:
		return "timeout"
	case KindExternalService:
		return "external_service"
	default:
		return "unknown"
	}
}

type Error struct {
	Kind Kind
	Msg  string
	Err  error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Msg, e.Err)
	}
	return e.Msg
}

func (e *Error) Unwrap() error { return e.Err }

// Is lets errors.Is match two taxonomy errors by kind.
func (e *Error) Is(target error) bool {
	var t *Error
	if !errors.As(target, &t) {
		return false
	}
	return e.Kind == t.Kind
}

func Validation(format string, args ...any) *Error {
	return &Error{Kind: KindValidation, Msg: fmt.Sprintf(format, args...)}
}

func UnsupportedFormat(format string, args ...any) *Error {
	return &Error{Kind: KindUnsupportedFormat, Msg: fmt.Sprintf(format, args...)}
}

func EmptyDocument(format string, args ...any) *Error {
	return &Error{Kind: KindEmptyDocument, Msg: fmt.Sprintf(format, args...)}
}

func NotFound(format string, args ...any) *Error {
	return &Error{Kind: KindNotFound, Msg: fmt.Sprintf(format, args...)}
}

func InvalidState(format string, args ...any) *Error {
	return &Error{Kind: KindInvalidState, Msg: fmt.Sprintf(format, args...)}
}

func Timeout(msg string, err error) *Error {
	return &Error{Kind: KindTimeout, Msg: msg, Err: err}
}

func ExternalService(msg string, err error) *Error {
	return &Error{Kind: KindExternalService, Msg: msg, Err: err}
}

// IsKind reports whether err carries the given kind anywhere in its chain.
func IsKind(err error, kind Kind) bool {
	var e *Error
	if !errors.As(err, &e) {
		return false
	}
	return e.Kind == kind
}
