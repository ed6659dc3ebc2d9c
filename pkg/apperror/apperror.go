// Package apperror defines the error kinds shared by services and handlers
// and how each kind is rendered over HTTP.
package apperror

import (
	"errors"
	"net/http"
)

// Kind classifies an error for the HTTP boundary.
type Kind int

const (
	KindServer Kind = iota
	KindValidation
	KindConflict
	KindNotFound
	KindInvalidCredentials
	KindUnsupportedMedia
	KindTooLarge
	KindUnauthorized
)

// Sentinels for errors.Is checks on the kind alone.
var (
	ErrValidation         = &Error{Kind: KindValidation}
	ErrConflict           = &Error{Kind: KindConflict}
	ErrNotFound           = &Error{Kind: KindNotFound}
	ErrInvalidCredentials = &Error{Kind: KindInvalidCredentials}
	ErrUnsupportedMedia   = &Error{Kind: KindUnsupportedMedia}
	ErrTooLarge           = &Error{Kind: KindTooLarge}
	ErrUnauthorized       = &Error{Kind: KindUnauthorized}
)

// Error is a client-facing failure. Message is safe to return to the caller.
type Error struct {
	Kind    Kind
	Message string
}

func (e *Error) Error() string {
	return e.Message
}

// Is matches any *Error of the same kind.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	return t.Kind == e.Kind
}

func Validation(msg string) error         { return &Error{Kind: KindValidation, Message: msg} }
func Conflict(msg string) error           { return &Error{Kind: KindConflict, Message: msg} }
func NotFound(msg string) error           { return &Error{Kind: KindNotFound, Message: msg} }
func InvalidCredentials(msg string) error { return &Error{Kind: KindInvalidCredentials, Message: msg} }
func UnsupportedMedia(msg string) error   { return &Error{Kind: KindUnsupportedMedia, Message: msg} }
func TooLarge(msg string) error           { return &Error{Kind: KindTooLarge, Message: msg} }
func Unauthorized(msg string) error       { return &Error{Kind: KindUnauthorized, Message: msg} }

// KindOf reports the kind of err; anything unclassified is KindServer.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return KindServer
}

// Status maps err to an HTTP status code.
func Status(err error) int {
	switch KindOf(err) {
	case KindValidation, KindConflict, KindInvalidCredentials:
		return http.StatusBadRequest
	case KindNotFound:
		return http.StatusNotFound
	case KindUnsupportedMedia:
		return http.StatusUnsupportedMediaType
	case KindTooLarge:
		return http.StatusRequestEntityTooLarge
	case KindUnauthorized:
		return http.StatusUnauthorized
	default:
		return http.StatusInternalServerError
	}
}

// Message returns the text to show the caller. Server errors never leak
// their cause.
func Message(err error) string {
	var e *Error
	if errors.As(err, &e) && e.Kind != KindServer {
		return e.Message
	}
	return "Server error"
}
