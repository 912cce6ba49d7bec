package store

import (
	"context"

	"github.com/satchelhq/satchel/plugin/ai/cache"
)

// UserSetting is one key/value preference row for the single local user.
type UserSetting struct {
	Key       string
	Value     string
	UpdatedTs int64
}

// FindUserSetting is the find condition for user settings. An empty Key
// matches every setting.
type FindUserSetting struct {
	Key string
}

// DeleteUserSetting is the delete request for a user setting.
type DeleteUserSetting struct {
	Key string
}

// UpsertUserSetting creates or replaces a user setting.
func (s *Store) UpsertUserSetting(ctx context.Context, upsert *UserSetting) (*UserSetting, error) {
	setting, err := s.driver.UpsertUserSetting(ctx, upsert)
	if err != nil {
		return nil, err
	}
	s.settingCache.Set(ctx, cache.Key("setting", setting.Key), []byte(setting.Value), 0)
	return setting, nil
}

// ListUserSettings lists user settings with filter.
func (s *Store) ListUserSettings(ctx context.Context, find *FindUserSetting) ([]*UserSetting, error) {
	return s.driver.ListUserSettings(ctx, find)
}

// GetUserSetting gets a user setting by key, consulting the cache first.
func (s *Store) GetUserSetting(ctx context.Context, find *FindUserSetting) (*UserSetting, error) {
	if find.Key != "" {
		if data, ok := s.settingCache.Get(ctx, cache.Key("setting", find.Key)); ok {
			return &UserSetting{Key: find.Key, Value: string(data)}, nil
		}
	}

	list, err := s.driver.ListUserSettings(ctx, find)
	if err != nil {
		return nil, err
	}
	if len(list) == 0 {
		return nil, nil
	}
	setting := list[0]
	s.settingCache.Set(ctx, cache.Key("setting", setting.Key), []byte(setting.Value), 0)
	return setting, nil
}

// DeleteUserSetting deletes a user setting.
func (s *Store) DeleteUserSetting(ctx context.Context, delete *DeleteUserSetting) error {
	if err := s.driver.DeleteUserSetting(ctx, delete); err != nil {
		return err
	}
	// Settings are few and deletes rare, so dropping the whole cache is fine.
	s.settingCache.Clear(ctx)
	return nil
}
