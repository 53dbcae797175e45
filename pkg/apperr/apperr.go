// Package apperr is the error taxonomy shared by services and the HTTP layer.
// Services return *Error values; transport maps Kind to a status code.
package apperr

import "errors"

type Kind int

const (
	KindInternal Kind = iota
	KindValidation
	KindUnauthenticated
	KindForbidden
	KindNotFound
	KindConflict
	KindExpired
)

func (k Kind) String() string {
	switch k {
	case KindValidation:
		return "validation"
	case KindUnauthenticated:
		return "unauthenticated"
	case KindForbidden:
		return "forbidden"
	case KindNotFound:
		return "not_found"
	case KindConflict:
		return "conflict"
	case KindExpired:
		return "expired"
	default:
		return "internal"
	}
}

type Error struct {
	Kind    Kind
	Msg     string
	Details any
	Err     error
}

func (e *Error) Error() string {
	if e.Msg != "" {
		return e.Msg
	}
	if e.Err != nil {
		return e.Err.Error()
	}
	return e.Kind.String()
}

func (e *Error) Unwrap() error { return e.Err }

func Validation(msg string, details any) error {
	return &Error{Kind: KindValidation, Msg: msg, Details: details}
}
func Unauthenticated(msg string) error { return &Error{Kind: KindUnauthenticated, Msg: msg} }
func Forbidden(msg string) error       { return &Error{Kind: KindForbidden, Msg: msg} }
func NotFound(msg string) error        { return &Error{Kind: KindNotFound, Msg: msg} }
func Conflict(msg string) error        { return &Error{Kind: KindConflict, Msg: msg} }
func Expired(msg string) error         { return &Error{Kind: KindExpired, Msg: msg} }

// Internal wraps an unexpected failure. Msg is what gets logged; callers never see it.
func Internal(msg string, err error) error {
	return &Error{Kind: KindInternal, Msg: msg, Err: err}
}

// KindOf reports the kind of err. Errors that are not *Error are internal.
func KindOf(err error) Kind {
	var ae *Error
	if errors.As(err, &ae) {
		return ae.Kind
	}
	return KindInternal
}

func Is(err error, k Kind) bool { return err != nil && KindOf(err) == k }

type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// Field is a Validation error naming a single offending field.
func Field(msg, field, problem string) error {
	return Validation(msg, []FieldError{{Field: field, Message: problem}})
}
