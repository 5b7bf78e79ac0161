package store

import "context"

// ItemType is the kind of building block a registry item represents.
type ItemType string

const (
	ItemTypeCluster   ItemType = "Cluster"
	ItemTypeTeam      ItemType = "Team"
	ItemTypeAgent     ItemType = "Agent"
	ItemTypeTool      ItemType = "Tool"
	ItemTypeSkill     ItemType = "Skill"
	ItemTypeUI        ItemType = "UI"
	ItemTypeLogic     ItemType = "Logic"
	ItemTypeAgentRole ItemType = "Agent Role"
	ItemTypeTeamType  ItemType = "Team Type"
)

// TrustStatus gates default listing visibility.
type TrustStatus string

const (
	TrustStatusApproved TrustStatus = "approved"
	TrustStatusPending  TrustStatus = "pending"
	TrustStatusRejected TrustStatus = "rejected"
)

// RegistryItem is the canonical catalog record for one reusable building block.
type RegistryItem struct {
	ID           int32
	Slug         string
	Title        string
	ItemType     ItemType
	Category     string
	Description  string
	TrustStatus  TrustStatus
	Featured     bool
	Visibility   string
	Author       string
	Version      string
	InstallCount int32
	SourceURL    string
	Readme       string

	// SearchText is the denormalized blob used by full-text search and
	// embedding generation. Empty until the first index rebuild.
	SearchText string

	// Embedding is the stored vector for SearchText. Nil when never computed
	// or when the stored payload failed to decode. It may lag behind edits to
	// the item until the next reindex.
	Embedding []float32

	CreatedTs int64
	UpdatedTs int64
}

// FindRegistryItem is the find condition for registry items.
type FindRegistryItem struct {
	ID          *int32
	Slug        *string
	Title       *string
	ItemType    *ItemType
	Category    *string
	TrustStatus *TrustStatus
	Featured    *bool

	// HasEmbedding restricts results to rows with a stored embedding and
	// selects the embedding column.
	HasEmbedding bool

	OrderBy string
	Limit   *int
	Offset  *int
}

// UpdateRegistryItemIndex updates the denormalized search columns of one item.
// It deliberately leaves updated_ts alone so reindexing does not look like an
// edit.
type UpdateRegistryItemIndex struct {
	ID         int32
	SearchText string
	// Embedding is stored only when non-nil; a nil value keeps whatever was
	// there before.
	Embedding []float32
}

// Sort clause lookup for the search API. Keys are the caller-facing sort_by
// values; unknown values fall back to "featured".
var sortClauses = map[string]string{
	"featured": "featured DESC, updated_ts DESC",
	"newest":   "created_ts DESC",
	"updated":  "updated_ts DESC",
	"popular":  "install_count DESC",
	"alpha":    "title ASC",
}

// SortClause maps a caller-supplied sort name to a safe ORDER BY clause.
func SortClause(sortBy string) string {
	if clause, ok := sortClauses[sortBy]; ok {
		return clause
	}
	return sortClauses["featured"]
}

// CreateRegistryItem creates a catalog row and, in the same transaction, its
// empty extension record. The extension is never created standalone.
func (s *Store) CreateRegistryItem(ctx context.Context, create *RegistryItem) (*RegistryItem, error) {
	item, err := s.driver.CreateRegistryItem(ctx, create)
	if err != nil {
		return nil, err
	}
	s.itemCache.Delete(item.Slug)
	return item, nil
}

// GetRegistryItem returns the first item matching find, or nil when absent.
func (s *Store) GetRegistryItem(ctx context.Context, find *FindRegistryItem) (*RegistryItem, error) {
	if find.Slug != nil && find.ID == nil {
		if cached, ok := s.itemCache.Get(*find.Slug); ok {
			return cached.(*RegistryItem), nil
		}
	}
	item, err := s.driver.GetRegistryItem(ctx, find)
	if err != nil {
		return nil, err
	}
	if item != nil && find.Slug != nil && find.ID == nil {
		s.itemCache.SetDefault(item.Slug, item)
	}
	return item, nil
}

// ListRegistryItems lists items matching find.
func (s *Store) ListRegistryItems(ctx context.Context, find *FindRegistryItem) ([]*RegistryItem, error) {
	return s.driver.ListRegistryItems(ctx, find)
}

// CountRegistryItems counts items matching find.
func (s *Store) CountRegistryItems(ctx context.Context, find *FindRegistryItem) (int, error) {
	return s.driver.CountRegistryItems(ctx, find)
}

// UpdateRegistryItemIndex stores the recomputed search text and embedding.
func (s *Store) UpdateRegistryItemIndex(ctx context.Context, update *UpdateRegistryItemIndex) error {
	if err := s.driver.UpdateRegistryItemIndex(ctx, update); err != nil {
		return err
	}
	s.itemCache.Flush()
	return nil
}

// FulltextSearchRegistryItems runs a relevance-ranked query against the
// search_text column. Engines without full-text support return
// ErrFulltextUnsupported; any error must be handled by the caller as a signal
// to fall back to LIKE search.
func (s *Store) FulltextSearchRegistryItems(ctx context.Context, q string, find *FindRegistryItem, orderBy string, limit, offset int) ([]*RegistryItem, int, error) {
	return s.driver.FulltextSearchRegistryItems(ctx, q, find, orderBy, limit, offset)
}

// LikeSearchRegistryItems runs the universal substring-match fallback. Tags
// are AND-combined existence checks against the tag table.
func (s *Store) LikeSearchRegistryItems(ctx context.Context, q string, tags []string, find *FindRegistryItem, orderBy string, limit, offset int) ([]*RegistryItem, int, error) {
	return s.driver.LikeSearchRegistryItems(ctx, q, tags, find, orderBy, limit, offset)
}
