package model

import "time"

// Class is a scheduled session in the `classes` table. Availability is
// never stored; see ClassView.
type Class struct {
	ID           uint64
	Name         string
	Description  string
	StartsAt     time.Time
	EndsAt       time.Time
	Capacity     int
	IsActive     bool
	ClassTypeID  uint64
	InstructorID uint64
	StudioID     uint64
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// ClassView is the read model returned to clients: the class joined with its
// type, instructor and studio names plus the derived spot count.
type ClassView struct {
	ID             uint64    `json:"id"`
	Name           string    `json:"name"`
	Description    string    `json:"description"`
	StartTime      time.Time `json:"start_time"`
	EndTime        time.Time `json:"end_time"`
	MaxCapacity    int       `json:"max_capacity"`
	AvailableSpots int       `json:"available_spots"`
	Price          float64   `json:"price"`
	PriceCents     uint32    `json:"price_cents"`
	ClassTypeName  string    `json:"class_type_name"`
	InstructorName string    `json:"instructor_name"`
	StudioName     string    `json:"studio_name"`
}

// SetAvailability derives AvailableSpots from a confirmed-booking count,
// clamping at zero.
func (v *ClassView) SetAvailability(confirmed int) {
	spots := v.MaxCapacity - confirmed
	if spots < 0 {
		spots = 0
	}
	v.AvailableSpots = spots
}
