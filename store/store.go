package store

import (
	"context"
	"time"

	gocache "github.com/patrickmn/go-cache"

	"github.com/sena-services/registry/internal/profile"
)

// Store provides database access to all raw objects.
type Store struct {
	profile *profile.Profile
	driver  Driver

	// Read caches. Tag attachment runs per returned search result, so tag
	// lookups are the hottest read path.
	itemCache *gocache.Cache
	tagCache  *gocache.Cache
}

// New creates a new instance of Store.
func New(driver Driver, profile *profile.Profile) *Store {
	return &Store{
		driver:    driver,
		profile:   profile,
		itemCache: gocache.New(10*time.Minute, 5*time.Minute),
		tagCache:  gocache.New(10*time.Minute, 5*time.Minute),
	}
}

func (s *Store) GetDriver() Driver {
	return s.driver
}

// Migrate applies the schema for the active driver. Idempotent.
func (s *Store) Migrate(ctx context.Context) error {
	return s.driver.Migrate(ctx)
}

func (s *Store) Close() error {
	return s.driver.Close()
}
