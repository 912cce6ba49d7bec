package teststore

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/satchelhq/satchel/store"
)

func TestUserSettingStore(t *testing.T) {
	ctx := context.Background()
	ts := NewTestingStore(ctx, t)

	setting, err := ts.UpsertUserSetting(ctx, &store.UserSetting{
		Key:   "deadline_horizon_days",
		Value: "7",
	})
	require.NoError(t, err)
	require.NotZero(t, setting.UpdatedTs)

	_, err = ts.UpsertUserSetting(ctx, &store.UserSetting{
		Key:   "digest_enabled",
		Value: "true",
	})
	require.NoError(t, err)

	// Second read goes through the setting cache.
	for i := 0; i < 2; i++ {
		got, err := ts.GetUserSetting(ctx, &store.FindUserSetting{Key: "deadline_horizon_days"})
		require.NoError(t, err)
		require.NotNil(t, got)
		require.Equal(t, "7", got.Value)
	}

	// Upsert replaces the cached value as well.
	_, err = ts.UpsertUserSetting(ctx, &store.UserSetting{
		Key:   "deadline_horizon_days",
		Value: "14",
	})
	require.NoError(t, err)
	got, err := ts.GetUserSetting(ctx, &store.FindUserSetting{Key: "deadline_horizon_days"})
	require.NoError(t, err)
	require.NotNil(t, got)
	require.Equal(t, "14", got.Value)

	settings, err := ts.ListUserSettings(ctx, &store.FindUserSetting{})
	require.NoError(t, err)
	require.Len(t, settings, 2)

	err = ts.DeleteUserSetting(ctx, &store.DeleteUserSetting{Key: "digest_enabled"})
	require.NoError(t, err)
	got, err = ts.GetUserSetting(ctx, &store.FindUserSetting{Key: "digest_enabled"})
	require.NoError(t, err)
	require.Nil(t, got)
}
