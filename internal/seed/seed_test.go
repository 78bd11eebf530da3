package seed

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"github.com/iliyamo/pilates-studio/internal/database/dbtest"
	"github.com/iliyamo/pilates-studio/internal/model"
	"github.com/iliyamo/pilates-studio/internal/repository"
	"github.com/iliyamo/pilates-studio/internal/utils"
)

func TestRunIsIdempotent(t *testing.T) {
	db := dbtest.New(t)
	users := repository.NewUserRepo(db)
	catalog := repository.NewCatalogRepo(db)
	classes := repository.NewClassRepo(db)
	s := New(users, catalog, classes, bcrypt.MinCost, zap.NewNop())
	s.now = func() time.Time { return time.Date(2030, 5, 6, 7, 30, 0, 0, time.UTC) }
	ctx := context.Background()

	require.NoError(t, s.Run(ctx))
	require.NoError(t, s.Run(ctx))

	admin, err := users.GetByEmail(ctx, "admin@pilatesstudio.com")
	require.NoError(t, err)
	assert.Equal(t, model.RoleAdmin, admin.Role)
	assert.True(t, utils.VerifyPassword(admin.PasswordHash, "Admin123!"))

	studios, err := catalog.ListStudios(ctx)
	require.NoError(t, err)
	assert.Len(t, studios, len(demoStudios))
	types, err := catalog.ListClassTypes(ctx)
	require.NoError(t, err)
	assert.Len(t, types, len(demoClassTypes))
	pkgs, err := catalog.ListActivePackages(ctx)
	require.NoError(t, err)
	assert.Len(t, pkgs, len(demoPackages))

	all, err := classes.ListActive(ctx, nil, nil)
	require.NoError(t, err)
	require.Len(t, all, 7*len(demoSlots))
	assert.Equal(t, time.Date(2030, 5, 6, 9, 0, 0, 0, time.UTC), all[0].StartTime.UTC())
	for _, c := range all {
		assert.LessOrEqual(t, c.MaxCapacity, maxDemoCapacity)
		assert.True(t, c.EndTime.After(c.StartTime))
		assert.Equal(t, c.MaxCapacity, c.AvailableSpots)
	}
}
