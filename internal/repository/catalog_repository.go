package repository

import (
	"context"
	"time"

	"github.com/iliyamo/pilates-studio/internal/database"
	"github.com/iliyamo/pilates-studio/internal/model"
)

// CatalogRepo serves the reference data a class points at (class types,
// instructors, studios) and the package tables.
type CatalogRepo struct {
	db *database.DB
}

func NewCatalogRepo(db *database.DB) *CatalogRepo { return &CatalogRepo{db: db} }

func (r *CatalogRepo) ListClassTypes(ctx context.Context) ([]model.ClassType, error) {
	rows, err := r.db.QueryContext(ctx,
		"SELECT id, name, description, duration_minutes, price_cents, created_at FROM class_types ORDER BY name ASC, id ASC")
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	items := make([]model.ClassType, 0)
	for rows.Next() {
		var t model.ClassType
		if err := rows.Scan(&t.ID, &t.Name, &t.Description, &t.DurationMinutes, &t.PriceCents, &t.CreatedAt); err != nil {
			return nil, err
		}
		items = append(items, t)
	}
	return items, rows.Err()
}

func (r *CatalogRepo) ListInstructors(ctx context.Context) ([]model.Instructor, error) {
	rows, err := r.db.QueryContext(ctx,
		"SELECT id, first_name, last_name, email, phone, bio, created_at FROM instructors ORDER BY last_name ASC, first_name ASC, id ASC")
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	items := make([]model.Instructor, 0)
	for rows.Next() {
		var i model.Instructor
		if err := rows.Scan(&i.ID, &i.FirstName, &i.LastName, &i.Email, &i.Phone, &i.Bio, &i.CreatedAt); err != nil {
			return nil, err
		}
		items = append(items, i)
	}
	return items, rows.Err()
}

func (r *CatalogRepo) ListStudios(ctx context.Context) ([]model.Studio, error) {
	rows, err := r.db.QueryContext(ctx,
		"SELECT id, name, description, capacity, created_at FROM studios ORDER BY name ASC, id ASC")
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	items := make([]model.Studio, 0)
	for rows.Next() {
		var s model.Studio
		if err := rows.Scan(&s.ID, &s.Name, &s.Description, &s.Capacity, &s.CreatedAt); err != nil {
			return nil, err
		}
		items = append(items, s)
	}
	return items, rows.Err()
}

// ListActivePackages returns packages currently on sale, cheapest first.
func (r *CatalogRepo) ListActivePackages(ctx context.Context) ([]model.Package, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT id, name, description, credits, price_cents, validity_days, is_active, created_at
           FROM packages WHERE is_active = 1 ORDER BY price_cents ASC, id ASC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	items := make([]model.Package, 0)
	for rows.Next() {
		var p model.Package
		if err := rows.Scan(&p.ID, &p.Name, &p.Description, &p.Credits, &p.PriceCents, &p.ValidityDays, &p.IsActive, &p.CreatedAt); err != nil {
			return nil, err
		}
		items = append(items, p)
	}
	return items, rows.Err()
}

// ListUserPackages returns the packages owned by a user, newest purchase
// first.
func (r *CatalogRepo) ListUserPackages(ctx context.Context, userID uint64) ([]model.UserPackage, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT up.id, up.user_id, up.package_id, p.name, up.remaining_credits, up.purchased_at, up.expires_at, up.is_active
           FROM user_packages up
           JOIN packages p ON p.id = up.package_id
          WHERE up.user_id = ?
          ORDER BY up.purchased_at DESC, up.id DESC`, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	items := make([]model.UserPackage, 0)
	for rows.Next() {
		var up model.UserPackage
		if err := rows.Scan(&up.ID, &up.UserID, &up.PackageID, &up.PackageName, &up.RemainingCredits,
			&up.PurchasedAt, &up.ExpiresAt, &up.IsActive); err != nil {
			return nil, err
		}
		items = append(items, up)
	}
	return items, rows.Err()
}

func (r *CatalogRepo) CreateClassType(ctx context.Context, t *model.ClassType) error {
	id, err := r.insert(ctx,
		"INSERT INTO class_types (name, description, duration_minutes, price_cents) VALUES (?, ?, ?, ?)",
		t.Name, t.Description, t.DurationMinutes, t.PriceCents)
	t.ID = id
	return err
}

func (r *CatalogRepo) CreateInstructor(ctx context.Context, i *model.Instructor) error {
	id, err := r.insert(ctx,
		"INSERT INTO instructors (first_name, last_name, email, phone, bio) VALUES (?, ?, ?, ?, ?)",
		i.FirstName, i.LastName, i.Email, i.Phone, i.Bio)
	i.ID = id
	return err
}

func (r *CatalogRepo) CreateStudio(ctx context.Context, s *model.Studio) error {
	id, err := r.insert(ctx,
		"INSERT INTO studios (name, description, capacity) VALUES (?, ?, ?)",
		s.Name, s.Description, s.Capacity)
	s.ID = id
	return err
}

func (r *CatalogRepo) CreatePackage(ctx context.Context, p *model.Package) error {
	id, err := r.insert(ctx,
		"INSERT INTO packages (name, description, credits, price_cents, validity_days, is_active) VALUES (?, ?, ?, ?, ?, ?)",
		p.Name, p.Description, p.Credits, p.PriceCents, p.ValidityDays, p.IsActive)
	p.ID = id
	return err
}

// GrantPackage gives a user a package with its full credit balance and an
// expiry derived from the package validity.
func (r *CatalogRepo) GrantPackage(ctx context.Context, userID uint64, p model.Package, at time.Time) (model.UserPackage, error) {
	at = at.UTC().Truncate(time.Second)
	up := model.UserPackage{
		UserID:           userID,
		PackageID:        p.ID,
		PackageName:      p.Name,
		RemainingCredits: p.Credits,
		PurchasedAt:      at,
		ExpiresAt:        at.AddDate(0, 0, p.ValidityDays),
		IsActive:         true,
	}
	id, err := r.insert(ctx,
		`INSERT INTO user_packages (user_id, package_id, remaining_credits, purchased_at, expires_at, is_active)
         VALUES (?, ?, ?, ?, ?, 1)`,
		up.UserID, up.PackageID, up.RemainingCredits, up.PurchasedAt, up.ExpiresAt)
	up.ID = id
	return up, err
}

func (r *CatalogRepo) insert(ctx context.Context, q string, args ...any) (uint64, error) {
	res, err := r.db.ExecContext(ctx, q, args...)
	if err != nil {
		return 0, err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, err
	}
	return uint64(id), nil
}
