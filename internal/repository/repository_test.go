package repository_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iliyamo/pilates-studio/internal/database"
	"github.com/iliyamo/pilates-studio/internal/database/dbtest"
	"github.com/iliyamo/pilates-studio/internal/model"
	"github.com/iliyamo/pilates-studio/internal/repository"
)

func insertBooking(t *testing.T, db *database.DB, repo *repository.BookingRepo, userID, classID uint64) (*model.Booking, error) {
	t.Helper()
	ctx := context.Background()
	tx, err := db.BeginTx(ctx, nil)
	require.NoError(t, err)
	b := &model.Booking{UserID: userID, ClassID: classID}
	if err := repo.CreateTx(ctx, tx, b); err != nil {
		_ = tx.Rollback()
		return nil, err
	}
	require.NoError(t, tx.Commit())
	return b, nil
}

func TestConfirmedBookingUniqueIndex(t *testing.T) {
	db := dbtest.New(t)
	refs := dbtest.Seed(t, db)
	repo := repository.NewBookingRepo(db)
	ctx := context.Background()

	classID := dbtest.AddClass(t, db, refs, "Mat", time.Now().Add(24*time.Hour), 5)
	userID := dbtest.AddUser(t, db, "u@example.com", model.RoleCustomer)

	first, err := insertBooking(t, db, repo, userID, classID)
	require.NoError(t, err)
	assert.Equal(t, model.BookingConfirmed, first.Status)

	_, err = insertBooking(t, db, repo, userID, classID)
	assert.ErrorIs(t, err, repository.ErrDuplicateBooking)

	ok, err := repo.CancelConfirmed(ctx, first.ID, userID)
	require.NoError(t, err)
	assert.True(t, ok)

	// a cancelled row no longer blocks a fresh booking
	_, err = insertBooking(t, db, repo, userID, classID)
	require.NoError(t, err)
}

func TestCancelConfirmedScope(t *testing.T) {
	db := dbtest.New(t)
	refs := dbtest.Seed(t, db)
	repo := repository.NewBookingRepo(db)
	ctx := context.Background()

	classID := dbtest.AddClass(t, db, refs, "Mat", time.Now().Add(24*time.Hour), 5)
	owner := dbtest.AddUser(t, db, "owner@example.com", model.RoleCustomer)
	other := dbtest.AddUser(t, db, "other@example.com", model.RoleCustomer)
	b, err := insertBooking(t, db, repo, owner, classID)
	require.NoError(t, err)

	ok, err := repo.CancelConfirmed(ctx, b.ID, other)
	require.NoError(t, err)
	assert.False(t, ok)

	_, err = repo.GetForUser(ctx, b.ID, other)
	assert.ErrorIs(t, err, repository.ErrBookingNotFound)

	dbtest.SetBookingStatus(t, db, b.ID, model.BookingCompleted)
	ok, err = repo.CancelConfirmed(ctx, b.ID, owner)
	require.NoError(t, err)
	assert.False(t, ok)

	got, err := repo.GetForUser(ctx, b.ID, owner)
	require.NoError(t, err)
	assert.Equal(t, model.BookingCompleted, got.Status)
}

func TestListViewsByUserOrdering(t *testing.T) {
	db := dbtest.New(t)
	refs := dbtest.Seed(t, db)
	repo := repository.NewBookingRepo(db)
	ctx := context.Background()

	base := time.Now().UTC().Truncate(time.Hour).Add(48 * time.Hour)
	early := dbtest.AddClass(t, db, refs, "Early", base, 5)
	late := dbtest.AddClass(t, db, refs, "Late", base.Add(3*time.Hour), 5)
	userID := dbtest.AddUser(t, db, "u@example.com", model.RoleCustomer)

	_, err := insertBooking(t, db, repo, userID, early)
	require.NoError(t, err)
	_, err = insertBooking(t, db, repo, userID, late)
	require.NoError(t, err)

	views, err := repo.ListViewsByUser(ctx, userID)
	require.NoError(t, err)
	require.Len(t, views, 2)
	assert.Equal(t, "Late", views[0].Class.Name)
	assert.Equal(t, "Early", views[1].Class.Name)
	assert.Equal(t, 4, views[0].Class.AvailableSpots)
	assert.Equal(t, "Maria Rodriguez", views[0].Class.InstructorName)
	assert.InDelta(t, 25.0, views[0].Class.Price, 0.001)

	empty, err := repo.ListViewsByUser(ctx, 9999)
	require.NoError(t, err)
	assert.NotNil(t, empty)
	assert.Empty(t, empty)
}

func TestRosterIncludesCancelled(t *testing.T) {
	db := dbtest.New(t)
	refs := dbtest.Seed(t, db)
	repo := repository.NewBookingRepo(db)
	ctx := context.Background()

	classID := dbtest.AddClass(t, db, refs, "Mat", time.Now().Add(24*time.Hour), 5)
	a := dbtest.AddUser(t, db, "a@example.com", model.RoleCustomer)
	b := dbtest.AddUser(t, db, "b@example.com", model.RoleCustomer)

	ba, err := insertBooking(t, db, repo, a, classID)
	require.NoError(t, err)
	_, err = insertBooking(t, db, repo, b, classID)
	require.NoError(t, err)
	_, err = repo.CancelConfirmed(ctx, ba.ID, a)
	require.NoError(t, err)

	roster, err := repo.Roster(ctx, classID)
	require.NoError(t, err)
	require.Len(t, roster, 2)
	assert.Equal(t, "a@example.com", roster[0].CustomerEmail)
	assert.Equal(t, model.BookingCancelled, roster[0].Status)
	assert.Equal(t, model.BookingConfirmed, roster[1].Status)
}

func TestClassRepoReferencesAndDeactivate(t *testing.T) {
	db := dbtest.New(t)
	refs := dbtest.Seed(t, db)
	repo := repository.NewClassRepo(db)
	ctx := context.Background()

	start := time.Now().UTC().Add(24 * time.Hour).Truncate(time.Second)
	bad := &model.Class{Name: "Bad", StartsAt: start, EndsAt: start.Add(time.Hour), Capacity: 3,
		ClassTypeID: refs.ClassTypeID, InstructorID: 999, StudioID: refs.StudioID}
	assert.ErrorIs(t, repo.Create(ctx, bad), repository.ErrInvalidReference)

	c := &model.Class{Name: "Good", StartsAt: start, EndsAt: start.Add(time.Hour), Capacity: 3,
		ClassTypeID: refs.ClassTypeID, InstructorID: refs.InstructorID, StudioID: refs.StudioID}
	require.NoError(t, repo.Create(ctx, c))
	assert.NotZero(t, c.ID)
	assert.True(t, c.IsActive)

	require.NoError(t, repo.Deactivate(ctx, c.ID))
	assert.ErrorIs(t, repo.Deactivate(ctx, c.ID), repository.ErrClassNotFound)

	_, err := repo.GetActiveView(ctx, c.ID)
	assert.ErrorIs(t, err, repository.ErrClassNotFound)

	stored, err := repo.GetByID(ctx, c.ID)
	require.NoError(t, err)
	assert.False(t, stored.IsActive)
}

func TestUserEmailUnique(t *testing.T) {
	db := dbtest.New(t)
	repo := repository.NewUserRepo(db)
	ctx := context.Background()

	u := repository.NewUser{Email: "Jane@Example.com", Password: "secret1", FirstName: "Jane", LastName: "Doe", Role: model.RoleCustomer}
	id, err := repo.Create(ctx, u, 4)
	require.NoError(t, err)

	got, err := repo.GetByEmail(ctx, "jane@example.com")
	require.NoError(t, err)
	assert.Equal(t, id, got.ID)

	u.Email = "JANE@example.com"
	_, err = repo.Create(ctx, u, 4)
	assert.ErrorIs(t, err, repository.ErrEmailExists)

	_, err = repo.GetByID(ctx, 9999)
	assert.ErrorIs(t, err, repository.ErrUserNotFound)
}

func TestRefreshTokenLifecycle(t *testing.T) {
	db := dbtest.New(t)
	repo := repository.NewTokenRepo(db)
	ctx := context.Background()
	userID := dbtest.AddUser(t, db, "u@example.com", model.RoleCustomer)

	require.NoError(t, repo.StoreRefresh(ctx, userID, "live", time.Now().Add(time.Hour)))
	require.NoError(t, repo.StoreRefresh(ctx, userID, "stale", time.Now().Add(-time.Hour)))

	got, err := repo.ValidateRefresh(ctx, "live")
	require.NoError(t, err)
	assert.Equal(t, userID, got)

	_, err = repo.ValidateRefresh(ctx, "stale")
	assert.ErrorIs(t, err, repository.ErrRefreshInvalid)
	_, err = repo.ValidateRefresh(ctx, "missing")
	assert.ErrorIs(t, err, repository.ErrRefreshInvalid)

	require.NoError(t, repo.RevokeAllForUser(ctx, userID))
	_, err = repo.ValidateRefresh(ctx, "live")
	assert.ErrorIs(t, err, repository.ErrRefreshInvalid)
}
