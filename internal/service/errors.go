package service

import (
	"errors"
	"fmt"

	"gorm.io/gorm"
)

// Kind classifies a service failure; handlers map it to a status code.
type Kind int

const (
	KindInternal Kind = iota
	KindValidation
	KindNotFound
	KindConflict
	KindForbidden
	KindBadRequest
	KindUnsupportedMedia
	KindUnauthorized
)

func (k Kind) String() string {
	switch k {
	case KindValidation:
		return "validation"
	case KindNotFound:
		return "not_found"
	case KindConflict:
		return "conflict"
	case KindForbidden:
		return "forbidden"
	case KindBadRequest:
		return "bad_request"
	case KindUnsupportedMedia:
		return "unsupported_media"
	case KindUnauthorized:
		return "unauthorized"
	}
	return "internal"
}

// Error is the error type every service returns for client-visible failures.
// Fields names the offending input fields of a validation failure.
type Error struct {
	Kind    Kind
	Message string
	Fields  map[string]string
	Err     error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *Error) Unwrap() error {
	return e.Err
}

func ErrValidation(msg string, fields map[string]string) error {
	return &Error{Kind: KindValidation, Message: msg, Fields: fields}
}

func ErrNotFound(msg string) error {
	return &Error{Kind: KindNotFound, Message: msg}
}

func ErrConflict(msg string) error {
	return &Error{Kind: KindConflict, Message: msg}
}

func ErrForbidden(msg string) error {
	return &Error{Kind: KindForbidden, Message: msg}
}

func ErrBadRequest(msg string) error {
	return &Error{Kind: KindBadRequest, Message: msg}
}

func ErrUnsupportedMedia(msg string) error {
	return &Error{Kind: KindUnsupportedMedia, Message: msg}
}

func ErrUnauthorized(msg string) error {
	return &Error{Kind: KindUnauthorized, Message: msg}
}

// KindOf returns KindInternal for anything that is not a *Error.
func KindOf(err error) Kind {
	var se *Error
	if errors.As(err, &se) {
		return se.Kind
	}
	return KindInternal
}

// storageError turns a unique-constraint violation into a conflict with msg
// and passes every other error through.
func storageError(err error, conflictMsg string) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return &Error{Kind: KindConflict, Message: conflictMsg, Err: err}
	}
	return err
}
