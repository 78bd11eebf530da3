package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/iliyamo/pilates-studio/internal/database/dbtest"
	"github.com/iliyamo/pilates-studio/internal/model"
	"github.com/iliyamo/pilates-studio/internal/repository"
)

func newCatalog(f fixture) *CatalogService {
	return NewCatalogService(f.db, repository.NewClassRepo(f.db), repository.NewBookingRepo(f.db),
		repository.NewCatalogRepo(f.db), zap.NewNop())
}

func TestListClassesOrderingAndFilter(t *testing.T) {
	f := newFixture(t)
	cat := newCatalog(f)
	ctx := context.Background()

	day := tomorrowAt(0)
	dbtest.AddClass(t, f.db, f.refs, "Evening", day.Add(19*time.Hour), 8)
	dbtest.AddClass(t, f.db, f.refs, "Morning", day.Add(9*time.Hour), 8)
	dbtest.AddClass(t, f.db, f.refs, "Next Day", day.Add(33*time.Hour), 8)
	hidden := dbtest.AddClass(t, f.db, f.refs, "Hidden", day.Add(12*time.Hour), 8)
	dbtest.Deactivate(t, f.db, hidden)

	all, err := cat.ListClasses(ctx, nil)
	require.NoError(t, err)
	require.Len(t, all, 3)
	assert.Equal(t, []string{"Morning", "Evening", "Next Day"}, names(all))

	onDay, err := cat.ListClasses(ctx, &day)
	require.NoError(t, err)
	assert.Equal(t, []string{"Morning", "Evening"}, names(onDay))

	// a time of day in the filter still selects the whole calendar day
	noon := day.Add(12*time.Hour + 30*time.Minute)
	sameDay, err := cat.ListClasses(ctx, &noon)
	require.NoError(t, err)
	assert.Len(t, sameDay, 2)

	empty := day.AddDate(0, 0, 10)
	none, err := cat.ListClasses(ctx, &empty)
	require.NoError(t, err)
	assert.NotNil(t, none)
	assert.Empty(t, none)
}

func names(items []model.ClassView) []string {
	out := make([]string, 0, len(items))
	for _, v := range items {
		out = append(out, v.Name)
	}
	return out
}

func TestAvailabilityTracksConfirmedBookings(t *testing.T) {
	f := newFixture(t)
	cat := newCatalog(f)
	ctx := context.Background()
	classID := dbtest.AddClass(t, f.db, f.refs, "Counting", tomorrowAt(10), 4)

	var bookingIDs []uint64
	for i, email := range []string{"a@x.io", "b@x.io", "c@x.io"} {
		uid := dbtest.AddUser(t, f.db, email, model.RoleCustomer)
		b, err := f.svc.CreateBooking(ctx, uid, classID, nil)
		require.NoError(t, err)
		bookingIDs = append(bookingIDs, b.ID)

		v, err := cat.GetClass(ctx, classID)
		require.NoError(t, err)
		assert.Equal(t, 4-(i+1), v.AvailableSpots)
	}

	dbtest.SetBookingStatus(t, f.db, bookingIDs[0], model.BookingCompleted)
	v, err := cat.GetClass(ctx, classID)
	require.NoError(t, err)
	assert.Equal(t, 2, v.AvailableSpots)
}

func TestGetClassInactive(t *testing.T) {
	f := newFixture(t)
	cat := newCatalog(f)
	classID := dbtest.AddClass(t, f.db, f.refs, "Gone", tomorrowAt(10), 4)
	dbtest.Deactivate(t, f.db, classID)

	_, err := cat.GetClass(context.Background(), classID)
	assert.ErrorIs(t, err, ErrClassNotFound)
	_, err = cat.GetClass(context.Background(), 31337)
	assert.ErrorIs(t, err, ErrClassNotFound)
}

func validInput(refs dbtest.Refs) ClassInput {
	return ClassInput{
		Name:         "Power Pilates",
		Description:  "Strength focus",
		StartsAt:     tomorrowAt(17),
		EndsAt:       tomorrowAt(18),
		Capacity:     6,
		ClassTypeID:  refs.ClassTypeID,
		InstructorID: refs.InstructorID,
		StudioID:     refs.StudioID,
	}
}

func TestCreateClass(t *testing.T) {
	f := newFixture(t)
	cat := newCatalog(f)
	ctx := context.Background()

	v, err := cat.CreateClass(ctx, validInput(f.refs))
	require.NoError(t, err)
	assert.NotZero(t, v.ID)
	assert.Equal(t, "Power Pilates", v.Name)
	assert.Equal(t, 6, v.AvailableSpots)
	assert.Equal(t, "Main Studio", v.StudioName)

	bad := validInput(f.refs)
	bad.StudioID = 999
	_, err = cat.CreateClass(ctx, bad)
	assert.ErrorIs(t, err, ErrInvalidRefs)
}

func TestClassInputValidate(t *testing.T) {
	refs := dbtest.Refs{ClassTypeID: 1, InstructorID: 1, StudioID: 1}
	cases := map[string]func(*ClassInput){
		"blank name":     func(in *ClassInput) { in.Name = "  " },
		"ends too early": func(in *ClassInput) { in.EndsAt = in.StartsAt },
		"zero capacity":  func(in *ClassInput) { in.Capacity = 0 },
		"missing studio": func(in *ClassInput) { in.StudioID = 0 },
		"missing start":  func(in *ClassInput) { in.StartsAt = time.Time{} },
	}
	for name, mutate := range cases {
		t.Run(name, func(t *testing.T) {
			in := validInput(refs)
			mutate(&in)
			err := in.Validate()
			require.Error(t, err)
			assert.Equal(t, KindValidation, KindOf(err))
		})
	}
	assert.NoError(t, validInput(refs).Validate())
}

func TestUpdateClassCapacityFloor(t *testing.T) {
	f := newFixture(t)
	cat := newCatalog(f)
	ctx := context.Background()
	classID := dbtest.AddClass(t, f.db, f.refs, "Shrinking", tomorrowAt(9), 5)
	for _, email := range []string{"a@x.io", "b@x.io", "c@x.io"} {
		uid := dbtest.AddUser(t, f.db, email, model.RoleCustomer)
		_, err := f.svc.CreateBooking(ctx, uid, classID, nil)
		require.NoError(t, err)
	}

	in := validInput(f.refs)
	in.Capacity = 2
	_, err := cat.UpdateClass(ctx, classID, in)
	require.Error(t, err)
	assert.Equal(t, KindValidation, KindOf(err))

	in.Capacity = 3
	v, err := cat.UpdateClass(ctx, classID, in)
	require.NoError(t, err)
	assert.Equal(t, "Power Pilates", v.Name)
	assert.Equal(t, 3, v.MaxCapacity)
	assert.Equal(t, 0, v.AvailableSpots)

	_, err = cat.UpdateClass(ctx, 4040, in)
	assert.ErrorIs(t, err, ErrClassNotFound)
}

func TestDeactivateClassKeepsBookings(t *testing.T) {
	f := newFixture(t)
	cat := newCatalog(f)
	ctx := context.Background()
	classID := dbtest.AddClass(t, f.db, f.refs, "Cancelled Slot", tomorrowAt(9), 5)
	uid := dbtest.AddUser(t, f.db, "kept@x.io", model.RoleCustomer)
	b, err := f.svc.CreateBooking(ctx, uid, classID, nil)
	require.NoError(t, err)

	require.NoError(t, cat.DeactivateClass(ctx, classID))
	assert.ErrorIs(t, cat.DeactivateClass(ctx, classID), ErrClassNotFound)

	_, err = cat.GetClass(ctx, classID)
	assert.ErrorIs(t, err, ErrClassNotFound)

	got, err := f.svc.GetBookingByID(ctx, b.ID, uid)
	require.NoError(t, err)
	assert.Equal(t, model.BookingConfirmed, got.Status)

	class, roster, err := cat.ClassRoster(ctx, classID)
	require.NoError(t, err)
	assert.False(t, class.IsActive)
	require.Len(t, roster, 1)
	assert.Equal(t, "kept@x.io", roster[0].CustomerEmail)
}

func TestReferenceLists(t *testing.T) {
	f := newFixture(t)
	cat := newCatalog(f)
	ctx := context.Background()

	types, err := cat.ListClassTypes(ctx)
	require.NoError(t, err)
	require.Len(t, types, 1)
	assert.Equal(t, uint32(2500), types[0].PriceCents)

	instructors, err := cat.ListInstructors(ctx)
	require.NoError(t, err)
	require.Len(t, instructors, 1)

	studios, err := cat.ListStudios(ctx)
	require.NoError(t, err)
	require.Len(t, studios, 1)
	assert.Equal(t, 15, studios[0].Capacity)

	repo := repository.NewCatalogRepo(f.db)
	p := model.Package{Name: "10 Class Pack", Credits: 10, PriceCents: 20000, ValidityDays: 90, IsActive: true}
	require.NoError(t, repo.CreatePackage(ctx, &p))
	uid := dbtest.AddUser(t, f.db, "pack@x.io", model.RoleCustomer)
	_, err = repo.GrantPackage(ctx, uid, p, time.Now())
	require.NoError(t, err)

	pkgs, err := cat.ListPackages(ctx)
	require.NoError(t, err)
	require.Len(t, pkgs, 1)

	owned, err := cat.ListUserPackages(ctx, uid)
	require.NoError(t, err)
	require.Len(t, owned, 1)
	assert.Equal(t, "10 Class Pack", owned[0].PackageName)
	assert.Equal(t, 10, owned[0].RemainingCredits)
}
