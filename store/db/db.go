package db

import (
	"github.com/pkg/errors"

	"github.com/sena-services/registry/internal/profile"
	"github.com/sena-services/registry/store"
	"github.com/sena-services/registry/store/db/postgres"
	"github.com/sena-services/registry/store/db/sqlite"
)

// NewDBDriver creates a new db driver based on profile.
func NewDBDriver(profile *profile.Profile) (store.Driver, error) {
	switch profile.Driver {
	case "sqlite":
		return sqlite.NewDB(profile)
	case "postgres":
		return postgres.NewDB(profile)
	default:
		return nil, errors.Errorf("unknown db driver %q", profile.Driver)
	}
}
