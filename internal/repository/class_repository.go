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

type rowScanner interface {
	Scan(dest ...any) error
}

type queryer interface {
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

// classViewSelect joins a class with its reference data. The last column is
// the live confirmed-booking count; availability is derived from it.
const classViewSelect = `SELECT c.id, c.name, c.description, c.starts_at, c.ends_at, c.capacity,
       ct.price_cents, ct.name, i.first_name, i.last_name, s.name,
       (SELECT COUNT(*) FROM bookings b WHERE b.class_id = c.id AND b.status = 'CONFIRMED')
  FROM classes c
  JOIN class_types ct ON ct.id = c.class_type_id
  JOIN instructors i ON i.id = c.instructor_id
  JOIN studios s ON s.id = c.studio_id`

const classColumns = "id, name, description, starts_at, ends_at, capacity, is_active, class_type_id, instructor_id, studio_id, created_at, updated_at"

// ClassRepo manages persistence for scheduled classes.
type ClassRepo struct {
	db *database.DB
}

func NewClassRepo(db *database.DB) *ClassRepo { return &ClassRepo{db: db} }

// ListActive returns active classes ordered by start time ascending. When
// from and to are both set only classes starting in [from, to) are returned.
func (r *ClassRepo) ListActive(ctx context.Context, from, to *time.Time) ([]model.ClassView, error) {
	var (
		sb   strings.Builder
		args []any
	)
	sb.WriteString(classViewSelect)
	sb.WriteString(" WHERE c.is_active = 1")
	if from != nil && to != nil {
		sb.WriteString(" AND c.starts_at >= ? AND c.starts_at < ?")
		args = append(args, from.UTC(), to.UTC())
	}
	sb.WriteString(" ORDER BY c.starts_at ASC, c.id ASC")

	rows, err := r.db.QueryContext(ctx, sb.String(), args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	items := make([]model.ClassView, 0)
	for rows.Next() {
		v, err := scanClassView(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, v)
	}
	return items, rows.Err()
}

// GetActiveView returns the read model of an active class or
// ErrClassNotFound.
func (r *ClassRepo) GetActiveView(ctx context.Context, id uint64) (model.ClassView, error) {
	return getClassView(ctx, r.db, id, true)
}

// GetViewTx is GetActiveView inside tx, so the count includes uncommitted
// bookings of the same transaction. Inactive classes are included.
func (r *ClassRepo) GetViewTx(ctx context.Context, tx *sql.Tx, id uint64) (model.ClassView, error) {
	return getClassView(ctx, tx, id, false)
}

func getClassView(ctx context.Context, q queryer, id uint64, activeOnly bool) (model.ClassView, error) {
	query := classViewSelect + " WHERE c.id = ?"
	if activeOnly {
		query += " AND c.is_active = 1"
	}
	v, err := scanClassView(q.QueryRowContext(ctx, query, id))
	if errors.Is(err, sql.ErrNoRows) {
		return model.ClassView{}, ErrClassNotFound
	}
	return v, err
}

func scanClassView(row rowScanner) (model.ClassView, error) {
	var (
		v         model.ClassView
		first     string
		last      string
		confirmed int
	)
	if err := row.Scan(&v.ID, &v.Name, &v.Description, &v.StartTime, &v.EndTime, &v.MaxCapacity,
		&v.PriceCents, &v.ClassTypeName, &first, &last, &v.StudioName, &confirmed); err != nil {
		return model.ClassView{}, err
	}
	v.InstructorName = strings.TrimSpace(first + " " + last)
	v.Price = float64(v.PriceCents) / 100
	v.SetAvailability(confirmed)
	return v, nil
}

// LockActiveTx loads an active class and, on MySQL, takes a row lock that
// serializes concurrent bookings of the same class until tx ends.
func (r *ClassRepo) LockActiveTx(ctx context.Context, tx *sql.Tx, id uint64) (model.Class, error) {
	q := "SELECT " + classColumns + " FROM classes WHERE id = ? AND is_active = 1" + r.db.ForUpdate()
	c, err := scanClass(tx.QueryRowContext(ctx, q, id))
	if errors.Is(err, sql.ErrNoRows) {
		return model.Class{}, ErrClassNotFound
	}
	return c, err
}

// GetByID returns a class regardless of its active flag.
func (r *ClassRepo) GetByID(ctx context.Context, id uint64) (model.Class, error) {
	c, err := scanClass(r.db.QueryRowContext(ctx, "SELECT "+classColumns+" FROM classes WHERE id = ?", id))
	if errors.Is(err, sql.ErrNoRows) {
		return model.Class{}, ErrClassNotFound
	}
	return c, err
}

func scanClass(row rowScanner) (model.Class, error) {
	var c model.Class
	err := row.Scan(&c.ID, &c.Name, &c.Description, &c.StartsAt, &c.EndsAt, &c.Capacity, &c.IsActive,
		&c.ClassTypeID, &c.InstructorID, &c.StudioID, &c.CreatedAt, &c.UpdatedAt)
	return c, err
}

// Create inserts a new active class and assigns the generated ID.
func (r *ClassRepo) Create(ctx context.Context, c *model.Class) error {
	if err := checkRefs(ctx, r.db, c); err != nil {
		return err
	}
	now := time.Now().UTC().Truncate(time.Second)
	const q = `INSERT INTO classes (name, description, starts_at, ends_at, capacity, is_active, class_type_id, instructor_id, studio_id, created_at, updated_at)
               VALUES (?, ?, ?, ?, ?, 1, ?, ?, ?, ?, ?)`
	res, err := r.db.ExecContext(ctx, q, c.Name, c.Description, c.StartsAt.UTC(), c.EndsAt.UTC(), c.Capacity,
		c.ClassTypeID, c.InstructorID, c.StudioID, now, now)
	if err != nil {
		return err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return err
	}
	c.ID = uint64(id)
	c.IsActive = true
	c.CreatedAt = now
	c.UpdatedAt = now
	return nil
}

// UpdateTx overwrites the editable fields of a class locked by
// LockActiveTx.
func (r *ClassRepo) UpdateTx(ctx context.Context, tx *sql.Tx, c *model.Class) error {
	if err := checkRefs(ctx, tx, c); err != nil {
		return err
	}
	now := time.Now().UTC().Truncate(time.Second)
	const q = `UPDATE classes SET name = ?, description = ?, starts_at = ?, ends_at = ?, capacity = ?,
               class_type_id = ?, instructor_id = ?, studio_id = ?, updated_at = ?
               WHERE id = ?`
	if _, err := tx.ExecContext(ctx, q, c.Name, c.Description, c.StartsAt.UTC(), c.EndsAt.UTC(), c.Capacity,
		c.ClassTypeID, c.InstructorID, c.StudioID, now, c.ID); err != nil {
		return err
	}
	c.UpdatedAt = now
	return nil
}

// Deactivate soft-deletes an active class. Bookings are left untouched.
func (r *ClassRepo) Deactivate(ctx context.Context, id uint64) error {
	res, err := r.db.ExecContext(ctx,
		"UPDATE classes SET is_active = 0, updated_at = ? WHERE id = ? AND is_active = 1",
		time.Now().UTC().Truncate(time.Second), id)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrClassNotFound
	}
	return nil
}

func checkRefs(ctx context.Context, q queryer, c *model.Class) error {
	refs := []struct {
		table string
		id    uint64
	}{
		{"class_types", c.ClassTypeID},
		{"instructors", c.InstructorID},
		{"studios", c.StudioID},
	}
	for _, ref := range refs {
		var one int
		err := q.QueryRowContext(ctx, "SELECT 1 FROM "+ref.table+" WHERE id = ?", ref.id).Scan(&one)
		if errors.Is(err, sql.ErrNoRows) {
			return ErrInvalidReference
		}
		if err != nil {
			return err
		}
	}
	return nil
}
