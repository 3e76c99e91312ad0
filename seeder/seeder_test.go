package seeder

import (
	"context"
	"testing"

	"github.com/area-engine/core/store"
	"github.com/stretchr/testify/require"
)

func TestRunSeedsAdminAndCatalogOnce(t *testing.T) {
	fs := store.NewFakeStore()
	s := New(fs)
	ctx := context.Background()

	require.NoError(t, s.Run(ctx))

	count, err := fs.CountUsers(ctx)
	require.NoError(t, err)
	require.Equal(t, int64(1), count)

	gmail, err := fs.ServiceByName(ctx, "gmail")
	require.NoError(t, err)
	require.NotNil(t, gmail)
	require.True(t, gmail.RequiresOAuth)

	spotify, err := fs.ServiceByName(ctx, "spotify")
	require.NoError(t, err)
	require.NotNil(t, spotify)
}

func TestRunIsIdempotent(t *testing.T) {
	fs := store.NewFakeStore()
	s := New(fs)
	ctx := context.Background()

	require.NoError(t, s.Run(ctx))
	require.NoError(t, s.Run(ctx))

	count, err := fs.CountUsers(ctx)
	require.NoError(t, err)
	require.Equal(t, int64(1), count, "seeding twice must not duplicate the admin user")
}

func TestTimerServiceHasNoOAuthRequirement(t *testing.T) {
	fs := store.NewFakeStore()
	s := New(fs)
	require.NoError(t, s.Run(context.Background()))

	timer, err := fs.ServiceByName(context.Background(), "timer")
	require.NoError(t, err)
	require.NotNil(t, timer)
	require.False(t, timer.RequiresOAuth)
}
