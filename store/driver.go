package store

import (
	"context"
	"database/sql"

	"github.com/pkg/errors"
)

// ErrFulltextUnsupported is returned by drivers lacking a native full-text
// index. Callers treat it like any other full-text failure: fall back to
// LIKE search.
var ErrFulltextUnsupported = errors.New("fulltext search not supported by this driver")

// Driver is an interface for store driver.
type Driver interface {
	GetDB() *sql.DB
	Close() error
	Migrate(ctx context.Context) error

	CreateRegistryItem(ctx context.Context, create *RegistryItem) (*RegistryItem, error)
	GetRegistryItem(ctx context.Context, find *FindRegistryItem) (*RegistryItem, error)
	ListRegistryItems(ctx context.Context, find *FindRegistryItem) ([]*RegistryItem, error)
	CountRegistryItems(ctx context.Context, find *FindRegistryItem) (int, error)
	UpdateRegistryItemIndex(ctx context.Context, update *UpdateRegistryItemIndex) error

	FulltextSearchRegistryItems(ctx context.Context, q string, find *FindRegistryItem, orderBy string, limit, offset int) ([]*RegistryItem, int, error)
	LikeSearchRegistryItems(ctx context.Context, q string, tags []string, find *FindRegistryItem, orderBy string, limit, offset int) ([]*RegistryItem, int, error)

	UpsertRegistryTag(ctx context.Context, upsert *UpsertRegistryTag) error
	ListRegistryTags(ctx context.Context, find *FindRegistryTag) ([]*RegistryTag, error)
	DeleteRegistryTags(ctx context.Context, registryID int32) error

	GetRegistryExtension(ctx context.Context, find *FindRegistryExtension) (*RegistryExtension, error)
	UpdateRegistryExtension(ctx context.Context, update *UpdateRegistryExtension) (*RegistryExtension, error)
	GetExtensionOwner(ctx context.Context, extensionID int32) (*RegistryItem, error)
}
