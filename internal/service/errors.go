package service

import "errors"

// Kind classifies a service error for the transport layer.
type Kind int

const (
	KindInternal Kind = iota
	KindNotFound
	KindBusinessRule
	KindValidation
	KindUnauthorized
	KindForbidden
)

// Error is a failure the caller may show to the client.
type Error struct {
	Kind Kind
	Msg  string
}

func (e *Error) Error() string { return e.Msg }

func newError(kind Kind, msg string) *Error { return &Error{Kind: kind, Msg: msg} }

// Validation wraps a bad-input message.
func Validation(msg string) error { return newError(KindValidation, msg) }

var (
	ErrClassNotFound   = newError(KindNotFound, "class not found")
	ErrClassFull       = newError(KindBusinessRule, "class is fully booked")
	ErrAlreadyBooked   = newError(KindBusinessRule, "you already have a booking for this class")
	ErrBookingNotFound = newError(KindNotFound, "booking not found")
	ErrNotCancellable  = newError(KindNotFound, "booking is not cancellable")
	ErrInvalidRefs     = newError(KindValidation, "class type, instructor or studio does not exist")
)

// KindOf reports the Kind of err. Anything that is not an *Error is
// KindInternal and must not be shown to clients.
func KindOf(err error) Kind {
	var se *Error
	if errors.As(err, &se) {
		return se.Kind
	}
	return KindInternal
}
