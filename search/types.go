// Package search implements the registry's layered search: semantic vector
// similarity, then engine full-text relevance, then LIKE pattern matching.
// Later stages only run when earlier ones signal insufficiency, so a missing
// embedding service or an engine without a text index degrades ranking
// quality, never availability.
package search

import (
	"context"

	"github.com/pkg/errors"

	"github.com/sena-services/registry/store"
)

// ErrNotFound marks a lookup for a slug that is not in the catalog. Distinct
// from validation errors so API callers can tell "malformed request" from
// "no such item".
var ErrNotFound = errors.New("registry item not found")

// ErrInvalidRequest marks caller input rejected before any I/O.
var ErrInvalidRequest = errors.New("invalid request")

// Store is the slice of the storage layer the search subsystem reads from.
// *store.Store satisfies it.
type Store interface {
	GetRegistryItem(ctx context.Context, find *store.FindRegistryItem) (*store.RegistryItem, error)
	ListRegistryItems(ctx context.Context, find *store.FindRegistryItem) ([]*store.RegistryItem, error)
	CountRegistryItems(ctx context.Context, find *store.FindRegistryItem) (int, error)
	UpdateRegistryItemIndex(ctx context.Context, update *store.UpdateRegistryItemIndex) error
	FulltextSearchRegistryItems(ctx context.Context, q string, find *store.FindRegistryItem, orderBy string, limit, offset int) ([]*store.RegistryItem, int, error)
	LikeSearchRegistryItems(ctx context.Context, q string, tags []string, find *store.FindRegistryItem, orderBy string, limit, offset int) ([]*store.RegistryItem, int, error)
	ListRegistryTags(ctx context.Context, find *store.FindRegistryTag) ([]*store.RegistryTag, error)
	GetRegistryExtension(ctx context.Context, find *store.FindRegistryExtension) (*store.RegistryExtension, error)
	GetExtensionOwner(ctx context.Context, extensionID int32) (*store.RegistryItem, error)
}

// Request carries the caller-facing search parameters.
type Request struct {
	Query        string
	ItemType     string
	Category     string
	Tags         string // comma-separated
	TrustStatus  string // default "approved"; empty string disables the gate
	FeaturedOnly bool
	SortBy       string // featured | newest | updated | popular | alpha
	Limit        int    // default 20, clamped to maxLimit
	Offset       int
}

// Response is the stable search result shape, identical across all stages.
type Response struct {
	Items  []*ResultItem `json:"items"`
	Total  int           `json:"total"`
	Limit  int           `json:"limit"`
	Offset int           `json:"offset"`
}

// ResultItem is a read-only projection of a catalog entry. The internal row
// id and the transient similarity score stay unexported so they can never
// leak into the response encoding.
type ResultItem struct {
	id    int32
	score float64

	Slug         string `json:"slug"`
	Title        string `json:"title"`
	ItemType     string `json:"item_type"`
	Category     string `json:"category"`
	Description  string `json:"description"`
	TrustStatus  string `json:"trust_status"`
	Featured     bool   `json:"featured"`
	Author       string `json:"author"`
	InstallCount int32  `json:"install_count"`

	Tags []string `json:"tags"`
}

func toResultItem(item *store.RegistryItem) *ResultItem {
	return &ResultItem{
		id:           item.ID,
		Slug:         item.Slug,
		Title:        item.Title,
		ItemType:     string(item.ItemType),
		Category:     item.Category,
		Description:  item.Description,
		TrustStatus:  string(item.TrustStatus),
		Featured:     item.Featured,
		Author:       item.Author,
		InstallCount: item.InstallCount,
	}
}

func toResultItems(items []*store.RegistryItem) []*ResultItem {
	results := make([]*ResultItem, len(items))
	for i, item := range items {
		results[i] = toResultItem(item)
	}
	return results
}

// Status classifies a stage outcome. NoSignal means "nothing usable here,
// try the next stage" and is deliberately distinct from a hit with zero
// items: only the final stage may report genuine emptiness.
type Status int

const (
	StatusHit Status = iota
	StatusNoSignal
	StatusError
)

// Outcome is the three-valued result of one search stage.
type Outcome struct {
	Status Status
	Items  []*ResultItem
	Err    error
}
