package model

import "time"

// Booking statuses. CONFIRMED is the only non-terminal state; COMPLETED and
// NO_SHOW are written by attendance processing outside this service.
const (
	BookingConfirmed = "CONFIRMED"
	BookingCancelled = "CANCELLED"
	BookingCompleted = "COMPLETED"
	BookingNoShow    = "NO_SHOW"
)

// MaxNotesLen bounds bookings.notes.
const MaxNotesLen = 500

// Booking mirrors a row of the `bookings` table. Rows are never deleted;
// cancellation is a status change.
type Booking struct {
	ID        uint64
	UserID    uint64
	ClassID   uint64
	Status    string
	Notes     *string
	BookedAt  time.Time
	CreatedAt time.Time
	UpdatedAt time.Time
}

// BookingView is a booking together with the class it refers to.
type BookingView struct {
	ID          uint64    `json:"id"`
	Status      string    `json:"status"`
	Notes       *string   `json:"notes"`
	BookingDate time.Time `json:"booking_date"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
	Class       ClassView `json:"class"`
}

// RosterEntry is one booking line of a class roster.
type RosterEntry struct {
	BookingID     uint64    `json:"booking_id"`
	UserID        uint64    `json:"user_id"`
	CustomerName  string    `json:"customer_name"`
	CustomerEmail string    `json:"customer_email"`
	CustomerPhone string    `json:"customer_phone"`
	Status        string    `json:"status"`
	Notes         *string   `json:"notes"`
	BookedAt      time.Time `json:"booked_at"`
}
