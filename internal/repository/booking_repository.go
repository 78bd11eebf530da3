package repository

import (
	"context"
	"database/sql"
	"errors"
	"strings"
	"time"

	"github.com/iliyamo/pilates-studio/internal/database"
	"github.com/iliyamo/pilates-studio/internal/model"
)

// bookingViewSelect returns a booking with its class read model. Column order
// matches scanBookingView.
const bookingViewSelect = `SELECT b.id, b.status, b.notes, b.booked_at, b.created_at, b.updated_at,
       c.id, c.name, c.description, c.starts_at, c.ends_at, c.capacity,
       ct.price_cents, ct.name, i.first_name, i.last_name, s.name,
       (SELECT COUNT(*) FROM bookings x WHERE x.class_id = c.id AND x.status = 'CONFIRMED')
  FROM bookings b
  JOIN classes c ON c.id = b.class_id
  JOIN class_types ct ON ct.id = c.class_type_id
  JOIN instructors i ON i.id = c.instructor_id
  JOIN studios s ON s.id = c.studio_id`

// BookingRepo stores bookings. Write paths that must respect class capacity
// take a *sql.Tx opened by the caller.
type BookingRepo struct {
	db *database.DB
}

func NewBookingRepo(db *database.DB) *BookingRepo { return &BookingRepo{db: db} }

// CountConfirmedTx counts CONFIRMED bookings of a class within tx.
func (r *BookingRepo) CountConfirmedTx(ctx context.Context, tx *sql.Tx, classID uint64) (int, error) {
	var n int
	err := tx.QueryRowContext(ctx,
		"SELECT COUNT(*) FROM bookings WHERE class_id = ? AND status = 'CONFIRMED'", classID).Scan(&n)
	return n, err
}

// HasConfirmedTx reports whether the user already holds a CONFIRMED booking
// for the class.
func (r *BookingRepo) HasConfirmedTx(ctx context.Context, tx *sql.Tx, userID, classID uint64) (bool, error) {
	var one int
	err := tx.QueryRowContext(ctx,
		"SELECT 1 FROM bookings WHERE user_id = ? AND class_id = ? AND status = 'CONFIRMED' LIMIT 1",
		userID, classID).Scan(&one)
	if errors.Is(err, sql.ErrNoRows) {
		return false, nil
	}
	return err == nil, err
}

// CreateTx inserts a CONFIRMED booking using tx and assigns its ID and
// timestamps. A unique index violation maps to ErrDuplicateBooking.
func (r *BookingRepo) CreateTx(ctx context.Context, tx *sql.Tx, b *model.Booking) error {
	now := time.Now().UTC().Truncate(time.Second)
	var notes any
	if b.Notes != nil {
		notes = *b.Notes
	}
	res, err := tx.ExecContext(ctx,
		`INSERT INTO bookings (user_id, class_id, status, notes, booked_at, created_at, updated_at)
         VALUES (?, ?, 'CONFIRMED', ?, ?, ?, ?)`,
		b.UserID, b.ClassID, notes, now, now, now)
	if err != nil {
		if database.IsDuplicate(err) {
			return ErrDuplicateBooking
		}
		return err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return err
	}
	b.ID = uint64(id)
	b.Status = model.BookingConfirmed
	b.BookedAt = now
	b.CreatedAt = now
	b.UpdatedAt = now
	return nil
}

// CancelConfirmed moves the user's booking from CONFIRMED to CANCELLED in a
// single conditional update. It reports whether a row changed.
func (r *BookingRepo) CancelConfirmed(ctx context.Context, bookingID, userID uint64) (bool, error) {
	res, err := r.db.ExecContext(ctx,
		"UPDATE bookings SET status = 'CANCELLED', updated_at = ? WHERE id = ? AND user_id = ? AND status = 'CONFIRMED'",
		time.Now().UTC().Truncate(time.Second), bookingID, userID)
	if err != nil {
		return false, err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	return n == 1, nil
}

// GetForUser returns the raw booking row when it belongs to userID.
func (r *BookingRepo) GetForUser(ctx context.Context, bookingID, userID uint64) (model.Booking, error) {
	var (
		b     model.Booking
		notes sql.NullString
	)
	err := r.db.QueryRowContext(ctx,
		`SELECT id, user_id, class_id, status, notes, booked_at, created_at, updated_at
           FROM bookings WHERE id = ? AND user_id = ?`, bookingID, userID).
		Scan(&b.ID, &b.UserID, &b.ClassID, &b.Status, &notes, &b.BookedAt, &b.CreatedAt, &b.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return model.Booking{}, ErrBookingNotFound
	}
	if err != nil {
		return model.Booking{}, err
	}
	if notes.Valid {
		s := notes.String
		b.Notes = &s
	}
	return b, nil
}

// GetViewForUser returns a booking with its class, scoped to the owner.
// Bookings of other users are reported as ErrBookingNotFound.
func (r *BookingRepo) GetViewForUser(ctx context.Context, bookingID, userID uint64) (model.BookingView, error) {
	row := r.db.QueryRowContext(ctx, bookingViewSelect+" WHERE b.id = ? AND b.user_id = ?", bookingID, userID)
	v, err := scanBookingView(row)
	if errors.Is(err, sql.ErrNoRows) {
		return model.BookingView{}, ErrBookingNotFound
	}
	return v, err
}

// GetViewTx loads a booking view inside tx.
func (r *BookingRepo) GetViewTx(ctx context.Context, tx *sql.Tx, bookingID uint64) (model.BookingView, error) {
	v, err := scanBookingView(tx.QueryRowContext(ctx, bookingViewSelect+" WHERE b.id = ?", bookingID))
	if errors.Is(err, sql.ErrNoRows) {
		return model.BookingView{}, ErrBookingNotFound
	}
	return v, err
}

// ListViewsByUser returns every booking of the user, whatever its status,
// most recent class first.
func (r *BookingRepo) ListViewsByUser(ctx context.Context, userID uint64) ([]model.BookingView, error) {
	rows, err := r.db.QueryContext(ctx,
		bookingViewSelect+" WHERE b.user_id = ? ORDER BY c.starts_at DESC, b.id DESC", userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	items := make([]model.BookingView, 0)
	for rows.Next() {
		v, err := scanBookingView(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, v)
	}
	return items, rows.Err()
}

func scanBookingView(row rowScanner) (model.BookingView, error) {
	var (
		v         model.BookingView
		notes     sql.NullString
		first     string
		last      string
		confirmed int
	)
	c := &v.Class
	err := row.Scan(&v.ID, &v.Status, &notes, &v.BookingDate, &v.CreatedAt, &v.UpdatedAt,
		&c.ID, &c.Name, &c.Description, &c.StartTime, &c.EndTime, &c.MaxCapacity,
		&c.PriceCents, &c.ClassTypeName, &first, &last, &c.StudioName, &confirmed)
	if err != nil {
		return model.BookingView{}, err
	}
	if notes.Valid {
		s := notes.String
		v.Notes = &s
	}
	c.InstructorName = strings.TrimSpace(first + " " + last)
	c.Price = float64(c.PriceCents) / 100
	c.SetAvailability(confirmed)
	return v, nil
}

// Roster lists the bookings of a class with customer contact details,
// oldest booking first. Cancelled rows are included so staff see the full
// history; callers filter by status when needed.
func (r *BookingRepo) Roster(ctx context.Context, classID uint64) ([]model.RosterEntry, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT b.id, u.id, u.first_name, u.last_name, u.email, u.phone, b.status, b.notes, b.booked_at
           FROM bookings b
           JOIN users u ON u.id = b.user_id
          WHERE b.class_id = ?
          ORDER BY b.booked_at ASC, b.id ASC`, classID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	items := make([]model.RosterEntry, 0)
	for rows.Next() {
		var (
			e     model.RosterEntry
			first string
			last  string
			notes sql.NullString
		)
		if err := rows.Scan(&e.BookingID, &e.UserID, &first, &last, &e.CustomerEmail, &e.CustomerPhone,
			&e.Status, &notes, &e.BookedAt); err != nil {
			return nil, err
		}
		e.CustomerName = strings.TrimSpace(first + " " + last)
		if notes.Valid {
			s := notes.String
			e.Notes = &s
		}
		items = append(items, e)
	}
	return items, rows.Err()
}
