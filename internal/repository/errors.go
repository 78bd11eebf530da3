// Package repository holds the SQL data access layer. Sentinel errors
// declared here let the service layer distinguish missing rows and
// constraint violations without inspecting driver errors.
package repository

import "errors"

var (
	ErrUserNotFound    = errors.New("user not found")
	ErrEmailExists     = errors.New("email already exists")
	ErrClassNotFound   = errors.New("class not found")
	ErrBookingNotFound = errors.New("booking not found")

	// ErrDuplicateBooking is returned when the confirmed-booking unique
	// index rejects an insert.
	ErrDuplicateBooking = errors.New("duplicate confirmed booking")

	// ErrInvalidReference is returned when a class points at a class type,
	// instructor or studio that does not exist.
	ErrInvalidReference = errors.New("invalid reference")

	// ErrRefreshInvalid covers unknown, revoked and expired refresh tokens.
	ErrRefreshInvalid = errors.New("refresh token invalid")
)
