package store

import (
	"time"

	"github.com/satchelhq/satchel/internal/profile"
	aicache "github.com/satchelhq/satchel/plugin/ai/cache"
)

// Store provides database access to all raw objects.
type Store struct {
	profile *profile.Profile
	driver  Driver

	// settingCache fronts user_setting reads. Settings are consulted on
	// most requests and change rarely.
	settingCache *aicache.MemoryCache
}

// New creates a new instance of Store.
func New(driver Driver, profile *profile.Profile) *Store {
	return &Store{
		driver:  driver,
		profile: profile,
		settingCache: aicache.NewMemoryCache(aicache.Config{
			DefaultTTL:    10 * time.Minute,
			SweepInterval: 5 * time.Minute,
		}),
	}
}

func (s *Store) GetDriver() Driver {
	return s.driver
}

func (s *Store) Close() error {
	s.settingCache.Close()
	return s.driver.Close()
}
