// Package queue defines message payloads exchanged over the message broker
// together with the publisher and the consumer that log them.
package queue

// Routing keys; each is also the name of a durable queue.
const (
	BookingConfirmedQueue = "booking.confirmed"
	BookingCancelledQueue = "booking.cancelled"
)

// BookingConfirmedEvent is published after a booking commits. It carries
// enough of the class to be logged or mailed without querying the database.
type BookingConfirmedEvent struct {
	BookingID      uint64 `json:"booking_id"`
	UserID         uint64 `json:"user_id"`
	ClassID        uint64 `json:"class_id"`
	ClassName      string `json:"class_name"`
	InstructorName string `json:"instructor_name"`
	StudioName     string `json:"studio_name"`
	StartsAt       string `json:"starts_at"`
	EndsAt         string `json:"ends_at"`
	AvailableSpots int    `json:"available_spots"`
	PriceCents     uint32 `json:"price_cents"`
	ConfirmedAt    string `json:"confirmed_at"`
}

// BookingCancelledEvent is published after a user cancels a booking.
type BookingCancelledEvent struct {
	BookingID      uint64 `json:"booking_id"`
	UserID         uint64 `json:"user_id"`
	ClassID        uint64 `json:"class_id"`
	ClassName      string `json:"class_name"`
	StartsAt       string `json:"starts_at"`
	AvailableSpots int    `json:"available_spots"`
	CancelledAt    string `json:"cancelled_at"`
}
