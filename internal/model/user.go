package model

import "time"

// Roles carried in the users.role column and the access token "role" claim.
const (
	RoleCustomer   = "CUSTOMER"
	RoleInstructor = "INSTRUCTOR"
	RoleAdmin      = "ADMIN"
)

// User represents an application user record as stored in the
// `users` table. Handlers define their own response types, so no
// json tags are carried here.
type User struct {
	ID           uint64     // users.id
	Email        string     // users.email (lower-cased)
	PasswordHash string     // users.password_hash (bcrypt)
	FirstName    string     // users.first_name
	LastName     string     // users.last_name
	Phone        string     // users.phone
	DateOfBirth  *time.Time // users.date_of_birth (nullable)
	Role         string     // users.role
	IsActive     bool       // users.is_active
	CreatedAt    time.Time  // users.created_at
	UpdatedAt    time.Time  // users.updated_at
}

// FullName joins first and last name the way rosters display it.
func (u User) FullName() string {
	if u.LastName == "" {
		return u.FirstName
	}
	return u.FirstName + " " + u.LastName
}

// RefreshToken models an entry in the `refresh_tokens` table. Only the
// SHA-256 hash of the raw token is stored.
type RefreshToken struct {
	ID        uint64     // refresh_tokens.id
	UserID    uint64     // refresh_tokens.user_id
	TokenHash string     // refresh_tokens.token_hash
	ExpiresAt time.Time  // refresh_tokens.expires_at
	RevokedAt *time.Time // refresh_tokens.revoked_at (nullable)
	CreatedAt time.Time  // refresh_tokens.created_at
}
