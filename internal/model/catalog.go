package model

import "time"

// ClassType is a kind of session (Reformer, Mat, ...) carrying the price.
type ClassType struct {
	ID              uint64    `json:"id"`
	Name            string    `json:"name"`
	Description     string    `json:"description"`
	DurationMinutes int       `json:"duration_minutes"`
	PriceCents      uint32    `json:"price_cents"`
	CreatedAt       time.Time `json:"-"`
}

type Instructor struct {
	ID        uint64    `json:"id"`
	FirstName string    `json:"first_name"`
	LastName  string    `json:"last_name"`
	Email     string    `json:"email"`
	Phone     string    `json:"phone"`
	Bio       string    `json:"bio"`
	CreatedAt time.Time `json:"-"`
}

type Studio struct {
	ID          uint64    `json:"id"`
	Name        string    `json:"name"`
	Description string    `json:"description"`
	Capacity    int       `json:"capacity"`
	CreatedAt   time.Time `json:"-"`
}

// Package is a purchasable bundle of class credits. Credits are not consumed
// by booking.
type Package struct {
	ID           uint64    `json:"id"`
	Name         string    `json:"name"`
	Description  string    `json:"description"`
	Credits      int       `json:"credits"`
	PriceCents   uint32    `json:"price_cents"`
	ValidityDays int       `json:"validity_days"`
	IsActive     bool      `json:"is_active"`
	CreatedAt    time.Time `json:"-"`
}

// UserPackage is a package owned by a user.
type UserPackage struct {
	ID               uint64    `json:"id"`
	UserID           uint64    `json:"user_id"`
	PackageID        uint64    `json:"package_id"`
	PackageName      string    `json:"package_name"`
	RemainingCredits int       `json:"remaining_credits"`
	PurchasedAt      time.Time `json:"purchased_at"`
	ExpiresAt        time.Time `json:"expires_at"`
	IsActive         bool      `json:"is_active"`
}
