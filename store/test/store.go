package teststore

import (
	"context"
	"fmt"
	"path/filepath"
	"testing"

	"github.com/satchelhq/satchel/internal/profile"
	"github.com/satchelhq/satchel/internal/version"
	"github.com/satchelhq/satchel/store"
	"github.com/satchelhq/satchel/store/db"
)

// NewTestingStore opens a fresh sqlite store in a per-test temp directory and
// runs the schema migrations against it.
func NewTestingStore(ctx context.Context, t *testing.T) *store.Store {
	p := getTestingProfile(t)
	dbDriver, err := db.NewDBDriver(p)
	if err != nil {
		t.Fatalf("failed to create db driver: %v", err)
	}

	st := store.New(dbDriver, p)
	if err := st.Migrate(ctx); err != nil {
		t.Fatalf("failed to migrate db: %v", err)
	}
	t.Cleanup(func() {
		if err := st.Close(); err != nil {
			t.Errorf("failed to close store: %v", err)
		}
	})
	return st
}

func getTestingProfile(t *testing.T) *profile.Profile {
	dir := t.TempDir()
	mode := "prod"
	return &profile.Profile{
		Mode:    mode,
		Data:    dir,
		DSN:     filepath.Join(dir, fmt.Sprintf("satchel_%s.db", mode)),
		Driver:  "sqlite",
		Version: version.GetCurrentVersion(mode),
	}
}
