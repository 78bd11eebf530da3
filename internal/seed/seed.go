// Package seed fills an empty database with demo users, reference data and
// a week of classes. Every step is skipped when its data already exists,
// so Run is safe on every start.
package seed

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/iliyamo/pilates-studio/internal/model"
	"github.com/iliyamo/pilates-studio/internal/repository"
)

// maxDemoCapacity caps generated classes below large studio capacities.
const maxDemoCapacity = 12

// Seeder owns the repositories it writes through.
type Seeder struct {
	users   *repository.UserRepo
	catalog *repository.CatalogRepo
	classes *repository.ClassRepo
	cost    int
	logger  *zap.Logger
	now     func() time.Time
}

func New(users *repository.UserRepo, catalog *repository.CatalogRepo, classes *repository.ClassRepo, bcryptCost int, logger *zap.Logger) *Seeder {
	return &Seeder{users: users, catalog: catalog, classes: classes, cost: bcryptCost, logger: logger, now: time.Now}
}

var demoUsers = []repository.NewUser{
	{Email: "admin@pilatesstudio.com", Password: "Admin123!", FirstName: "Admin", LastName: "User", Phone: "+1234567890", Role: model.RoleAdmin},
	{Email: "instructor@pilatesstudio.com", Password: "Instructor123!", FirstName: "Maria", LastName: "Rodriguez", Phone: "+1234567891", Role: model.RoleInstructor},
	{Email: "customer@pilatesstudio.com", Password: "Customer123!", FirstName: "John", LastName: "Smith", Phone: "+1234567892", Role: model.RoleCustomer},
	{Email: "test@test.com", Password: "Test123!", FirstName: "Test", LastName: "User", Phone: "+1234567893", Role: model.RoleCustomer},
}

var (
	demoStudios = []model.Studio{
		{Name: "Main Studio", Description: "Our main pilates studio with full equipment", Capacity: 15},
		{Name: "Private Room", Description: "Intimate space for private sessions", Capacity: 4},
		{Name: "Outdoor Deck", Description: "Beautiful outdoor space for mat classes", Capacity: 20},
	}
	demoInstructors = []model.Instructor{
		{FirstName: "Maria", LastName: "Rodriguez", Email: "instructor@pilatesstudio.com", Phone: "+1234567891", Bio: "Certified reformer and mat instructor"},
		{FirstName: "Sarah", LastName: "Johnson", Email: "sarah@pilatesstudio.com", Phone: "+1234567894", Bio: "Specialist in rehabilitation pilates"},
	}
	demoClassTypes = []model.ClassType{
		{Name: "Beginner Mat", Description: "Introduction to Pilates fundamentals", DurationMinutes: 60, PriceCents: 2500},
		{Name: "Intermediate Mat", Description: "Build strength and flexibility", DurationMinutes: 60, PriceCents: 3000},
		{Name: "Advanced Mat", Description: "Challenge your limits", DurationMinutes: 75, PriceCents: 3500},
		{Name: "Reformer Basics", Description: "Introduction to reformer equipment", DurationMinutes: 60, PriceCents: 4500},
		{Name: "Private Session", Description: "One-on-one personalized training", DurationMinutes: 60, PriceCents: 8500},
	}
	demoPackages = []model.Package{
		{Name: "Drop-in Class", Description: "Single class pass", Credits: 1, PriceCents: 3000, ValidityDays: 1, IsActive: true},
		{Name: "5-Class Pack", Description: "5 classes to use within 2 months", Credits: 5, PriceCents: 13500, ValidityDays: 60, IsActive: true},
		{Name: "10-Class Pack", Description: "10 classes to use within 3 months", Credits: 10, PriceCents: 25000, ValidityDays: 90, IsActive: true},
		{Name: "Unlimited Monthly", Description: "Unlimited classes for 1 month", Credits: 999, PriceCents: 15000, ValidityDays: 30, IsActive: true},
	}
	// daily slots as minutes after midnight
	demoSlots = []int{9 * 60, 10*60 + 30, 18 * 60, 19*60 + 30}
)

// Run seeds users, reference data and the classes of the next seven days.
func (s *Seeder) Run(ctx context.Context) error {
	if err := s.seedUsers(ctx); err != nil {
		return fmt.Errorf("seed users: %w", err)
	}
	if err := s.seedCatalog(ctx); err != nil {
		return fmt.Errorf("seed catalog: %w", err)
	}
	if err := s.seedClasses(ctx); err != nil {
		return fmt.Errorf("seed classes: %w", err)
	}
	return nil
}

func (s *Seeder) seedUsers(ctx context.Context) error {
	for _, u := range demoUsers {
		_, err := s.users.GetByEmail(ctx, u.Email)
		if err == nil {
			continue
		}
		if !errors.Is(err, repository.ErrUserNotFound) {
			return err
		}
		if _, err := s.users.Create(ctx, u, s.cost); err != nil {
			return err
		}
		s.logger.Info("demo user created", zap.String("email", u.Email), zap.String("role", u.Role))
	}
	return nil
}

func (s *Seeder) seedCatalog(ctx context.Context) error {
	if studios, err := s.catalog.ListStudios(ctx); err != nil {
		return err
	} else if len(studios) == 0 {
		for _, st := range demoStudios {
			if err := s.catalog.CreateStudio(ctx, &st); err != nil {
				return err
			}
		}
	}
	if instructors, err := s.catalog.ListInstructors(ctx); err != nil {
		return err
	} else if len(instructors) == 0 {
		for _, in := range demoInstructors {
			if err := s.catalog.CreateInstructor(ctx, &in); err != nil {
				return err
			}
		}
	}
	if types, err := s.catalog.ListClassTypes(ctx); err != nil {
		return err
	} else if len(types) == 0 {
		for _, ct := range demoClassTypes {
			if err := s.catalog.CreateClassType(ctx, &ct); err != nil {
				return err
			}
		}
	}
	if pkgs, err := s.catalog.ListActivePackages(ctx); err != nil {
		return err
	} else if len(pkgs) == 0 {
		for _, p := range demoPackages {
			if err := s.catalog.CreatePackage(ctx, &p); err != nil {
				return err
			}
		}
	}
	return nil
}

// seedClasses schedules one class per slot for seven days starting today,
// rotating through class types, instructors and studios.
func (s *Seeder) seedClasses(ctx context.Context) error {
	now := s.now().UTC()
	today := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)
	weekEnd := today.AddDate(0, 0, 7)

	existing, err := s.classes.ListActive(ctx, &today, &weekEnd)
	if err != nil {
		return err
	}
	if len(existing) > 0 {
		s.logger.Debug("demo classes already present", zap.Int("count", len(existing)))
		return nil
	}

	studios, err := s.catalog.ListStudios(ctx)
	if err != nil {
		return err
	}
	instructors, err := s.catalog.ListInstructors(ctx)
	if err != nil {
		return err
	}
	types, err := s.catalog.ListClassTypes(ctx)
	if err != nil {
		return err
	}
	if len(studios) == 0 || len(instructors) == 0 || len(types) == 0 {
		s.logger.Warn("cannot create demo classes: reference data missing")
		return nil
	}

	n := 0
	for day := 0; day < 7; day++ {
		date := today.AddDate(0, 0, day)
		for _, slot := range demoSlots {
			ct := types[n%len(types)]
			in := instructors[n%len(instructors)]
			st := studios[n%len(studios)]
			start := date.Add(time.Duration(slot) * time.Minute)
			c := &model.Class{
				Name:         ct.Name + " - " + in.FirstName,
				Description:  ct.Description,
				StartsAt:     start,
				EndsAt:       start.Add(time.Duration(ct.DurationMinutes) * time.Minute),
				Capacity:     min(st.Capacity, maxDemoCapacity),
				ClassTypeID:  ct.ID,
				InstructorID: in.ID,
				StudioID:     st.ID,
			}
			if c.Capacity < 1 {
				c.Capacity = maxDemoCapacity
			}
			if err := s.classes.Create(ctx, c); err != nil {
				return err
			}
			n++
		}
	}
	s.logger.Info("demo classes created", zap.Int("count", n))
	return nil
}
