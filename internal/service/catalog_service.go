package service

import (
	"context"
	"errors"
	"strings"
	"time"
	"unicode/utf8"

	"go.uber.org/zap"

	"github.com/iliyamo/pilates-studio/internal/database"
	"github.com/iliyamo/pilates-studio/internal/metrics"
	"github.com/iliyamo/pilates-studio/internal/model"
	"github.com/iliyamo/pilates-studio/internal/repository"
)

// ClassInput is the staff-editable part of a class.
type ClassInput struct {
	Name         string
	Description  string
	StartsAt     time.Time
	EndsAt       time.Time
	Capacity     int
	ClassTypeID  uint64
	InstructorID uint64
	StudioID     uint64
}

// Validate checks field presence and the time window.
func (in ClassInput) Validate() error {
	switch {
	case strings.TrimSpace(in.Name) == "":
		return Validation("name is required")
	case utf8.RuneCountInString(in.Name) > 100:
		return Validation("name must be at most 100 characters")
	case utf8.RuneCountInString(in.Description) > 500:
		return Validation("description must be at most 500 characters")
	case in.StartsAt.IsZero() || in.EndsAt.IsZero():
		return Validation("start_time and end_time are required")
	case !in.EndsAt.After(in.StartsAt):
		return Validation("end_time must be after start_time")
	case in.Capacity < 1:
		return Validation("max_capacity must be at least 1")
	case in.ClassTypeID == 0 || in.InstructorID == 0 || in.StudioID == 0:
		return Validation("class_type_id, instructor_id and studio_id are required")
	}
	return nil
}

func (in ClassInput) apply(c *model.Class) {
	c.Name = strings.TrimSpace(in.Name)
	c.Description = strings.TrimSpace(in.Description)
	c.StartsAt = in.StartsAt.UTC().Truncate(time.Second)
	c.EndsAt = in.EndsAt.UTC().Truncate(time.Second)
	c.Capacity = in.Capacity
	c.ClassTypeID = in.ClassTypeID
	c.InstructorID = in.InstructorID
	c.StudioID = in.StudioID
}

// CatalogService is the read model over scheduled classes plus the staff
// operations that maintain the schedule.
type CatalogService struct {
	db       *database.DB
	classes  *repository.ClassRepo
	bookings *repository.BookingRepo
	catalog  *repository.CatalogRepo
	logger   *zap.Logger
}

func NewCatalogService(db *database.DB, classes *repository.ClassRepo, bookings *repository.BookingRepo, catalog *repository.CatalogRepo, logger *zap.Logger) *CatalogService {
	return &CatalogService{db: db, classes: classes, bookings: bookings, catalog: catalog, logger: logger}
}

// ListClasses returns active classes ordered by start time. A non-nil date
// restricts the result to classes starting on that calendar day.
func (s *CatalogService) ListClasses(ctx context.Context, date *time.Time) ([]model.ClassView, error) {
	if date == nil {
		return s.classes.ListActive(ctx, nil, nil)
	}
	from := time.Date(date.Year(), date.Month(), date.Day(), 0, 0, 0, 0, time.UTC)
	to := from.AddDate(0, 0, 1)
	return s.classes.ListActive(ctx, &from, &to)
}

// GetClass returns an active class.
func (s *CatalogService) GetClass(ctx context.Context, id uint64) (model.ClassView, error) {
	v, err := s.classes.GetActiveView(ctx, id)
	if errors.Is(err, repository.ErrClassNotFound) {
		return model.ClassView{}, ErrClassNotFound
	}
	return v, err
}

func (s *CatalogService) CreateClass(ctx context.Context, in ClassInput) (model.ClassView, error) {
	if err := in.Validate(); err != nil {
		return model.ClassView{}, err
	}
	var c model.Class
	in.apply(&c)
	if err := s.classes.Create(ctx, &c); err != nil {
		if errors.Is(err, repository.ErrInvalidReference) {
			return model.ClassView{}, ErrInvalidRefs
		}
		return model.ClassView{}, err
	}
	metrics.IncClassChanged("create")
	s.logger.Info("class created", zap.Uint64("class_id", c.ID), zap.Time("starts_at", c.StartsAt))
	return s.GetClass(ctx, c.ID)
}

// UpdateClass edits an active class. Capacity may not drop below the
// number of confirmed bookings already held.
func (s *CatalogService) UpdateClass(ctx context.Context, id uint64, in ClassInput) (model.ClassView, error) {
	if err := in.Validate(); err != nil {
		return model.ClassView{}, err
	}

	tx, err := s.db.BeginTx(ctx, s.db.TxOptions())
	if err != nil {
		return model.ClassView{}, err
	}
	committed := false
	defer func() {
		if !committed {
			_ = tx.Rollback()
		}
	}()

	c, err := s.classes.LockActiveTx(ctx, tx, id)
	if err != nil {
		if errors.Is(err, repository.ErrClassNotFound) {
			return model.ClassView{}, ErrClassNotFound
		}
		return model.ClassView{}, err
	}
	confirmed, err := s.bookings.CountConfirmedTx(ctx, tx, id)
	if err != nil {
		return model.ClassView{}, err
	}
	if in.Capacity < confirmed {
		return model.ClassView{}, Validation("max_capacity cannot be lower than the confirmed bookings")
	}

	in.apply(&c)
	if err := s.classes.UpdateTx(ctx, tx, &c); err != nil {
		if errors.Is(err, repository.ErrInvalidReference) {
			return model.ClassView{}, ErrInvalidRefs
		}
		return model.ClassView{}, err
	}
	view, err := s.classes.GetViewTx(ctx, tx, id)
	if err != nil {
		return model.ClassView{}, err
	}
	if err := tx.Commit(); err != nil {
		return model.ClassView{}, err
	}
	committed = true

	metrics.IncClassChanged("update")
	s.logger.Info("class updated", zap.Uint64("class_id", id))
	return view, nil
}

// DeactivateClass hides a class from the catalog and from booking. Existing
// bookings keep their status.
func (s *CatalogService) DeactivateClass(ctx context.Context, id uint64) error {
	if err := s.classes.Deactivate(ctx, id); err != nil {
		if errors.Is(err, repository.ErrClassNotFound) {
			return ErrClassNotFound
		}
		return err
	}
	metrics.IncClassChanged("deactivate")
	s.logger.Info("class deactivated", zap.Uint64("class_id", id))
	return nil
}

// ClassRoster returns a class, active or not, with every booking made for it.
func (s *CatalogService) ClassRoster(ctx context.Context, id uint64) (model.Class, []model.RosterEntry, error) {
	c, err := s.classes.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrClassNotFound) {
			return model.Class{}, nil, ErrClassNotFound
		}
		return model.Class{}, nil, err
	}
	entries, err := s.bookings.Roster(ctx, id)
	if err != nil {
		return model.Class{}, nil, err
	}
	return c, entries, nil
}

func (s *CatalogService) ListClassTypes(ctx context.Context) ([]model.ClassType, error) {
	return s.catalog.ListClassTypes(ctx)
}

func (s *CatalogService) ListInstructors(ctx context.Context) ([]model.Instructor, error) {
	return s.catalog.ListInstructors(ctx)
}

func (s *CatalogService) ListStudios(ctx context.Context) ([]model.Studio, error) {
	return s.catalog.ListStudios(ctx)
}

func (s *CatalogService) ListPackages(ctx context.Context) ([]model.Package, error) {
	return s.catalog.ListActivePackages(ctx)
}

func (s *CatalogService) ListUserPackages(ctx context.Context, userID uint64) ([]model.UserPackage, error) {
	return s.catalog.ListUserPackages(ctx, userID)
}
