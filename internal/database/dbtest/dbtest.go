// Package dbtest builds migrated SQLite databases for tests.
package dbtest

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/iliyamo/pilates-studio/internal/database"
)

// New opens a fresh database file under t.TempDir and applies migrations.
func New(t testing.TB) *database.DB {
	t.Helper()
	db, err := database.OpenSQLite(filepath.Join(t.TempDir(), "studio.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	_, err = database.Migrate(context.Background(), db, zap.NewNop())
	require.NoError(t, err)
	return db
}

// Refs holds the ids of the reference rows created by Seed.
type Refs struct {
	ClassTypeID  uint64
	InstructorID uint64
	StudioID     uint64
}

// Seed inserts one class type (25.00), one instructor and one studio.
func Seed(t testing.TB, db *database.DB) Refs {
	t.Helper()
	var refs Refs
	refs.ClassTypeID = insert(t, db,
		"INSERT INTO class_types (name, description, duration_minutes, price_cents) VALUES (?, ?, ?, ?)",
		"Reformer Basics", "Introduction to reformer equipment", 60, 2500)
	refs.InstructorID = insert(t, db,
		"INSERT INTO instructors (first_name, last_name, email) VALUES (?, ?, ?)",
		"Maria", "Rodriguez", "maria@studio.test")
	refs.StudioID = insert(t, db,
		"INSERT INTO studios (name, description, capacity) VALUES (?, ?, ?)",
		"Main Studio", "Full equipment", 15)
	return refs
}

// AddClass inserts an active one-hour class starting at start.
func AddClass(t testing.TB, db *database.DB, refs Refs, name string, start time.Time, capacity int) uint64 {
	t.Helper()
	now := time.Now().UTC().Truncate(time.Second)
	start = start.UTC()
	return insert(t, db,
		`INSERT INTO classes (name, description, starts_at, ends_at, capacity, is_active, class_type_id, instructor_id, studio_id, created_at, updated_at)
         VALUES (?, '', ?, ?, ?, 1, ?, ?, ?, ?, ?)`,
		name, start, start.Add(time.Hour), capacity, refs.ClassTypeID, refs.InstructorID, refs.StudioID, now, now)
}

// AddUser inserts a user with an unusable password hash.
func AddUser(t testing.TB, db *database.DB, email, role string) uint64 {
	t.Helper()
	return insert(t, db,
		"INSERT INTO users (email, password_hash, first_name, last_name, role) VALUES (?, ?, ?, ?, ?)",
		email, "-", "Test", "User", role)
}

// Deactivate flips a class to inactive.
func Deactivate(t testing.TB, db *database.DB, classID uint64) {
	t.Helper()
	_, err := db.Exec("UPDATE classes SET is_active = 0 WHERE id = ?", classID)
	require.NoError(t, err)
}

// SetBookingStatus overwrites a booking's status, standing in for the
// attendance process that marks COMPLETED and NO_SHOW.
func SetBookingStatus(t testing.TB, db *database.DB, bookingID uint64, status string) {
	t.Helper()
	_, err := db.Exec("UPDATE bookings SET status = ? WHERE id = ?", status, bookingID)
	require.NoError(t, err)
}

func insert(t testing.TB, db *database.DB, q string, args ...any) uint64 {
	t.Helper()
	res, err := db.Exec(q, args...)
	require.NoError(t, err)
	id, err := res.LastInsertId()
	require.NoError(t, err)
	return uint64(id)
}
