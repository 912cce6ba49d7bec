package db

import (
	"github.com/pkg/errors"

	"github.com/satchelhq/satchel/internal/profile"
	"github.com/satchelhq/satchel/store"
	"github.com/satchelhq/satchel/store/db/sqlite"
)

// NewDBDriver creates new db driver based on profile.
// SQLite is the only supported driver. It is pure Go (no cgo), needs no
// external server, and comfortably covers a single-user installation.
func NewDBDriver(profile *profile.Profile) (store.Driver, error) {
	var driver store.Driver
	var err error

	switch profile.Driver {
	case "sqlite":
		driver, err = sqlite.NewDB(profile)
	default:
		return nil, errors.Errorf("unknown db driver %q: only 'sqlite' is supported", profile.Driver)
	}
	if err != nil {
		return nil, errors.Wrap(err, "failed to create db driver")
	}
	return driver, nil
}
