package search

import (
	"context"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/pkg/errors"

	"github.com/sena-services/registry/ai"
	"github.com/sena-services/registry/internal/metrics"
	"github.com/sena-services/registry/store"
)

const (
	defaultLimit = 20
	maxLimit     = 100

	minQueryLength = 2
)

// Searcher runs catalog searches and item lookups. Stages execute strictly
// sequentially; there is no concurrency within a single search.
type Searcher struct {
	store    Store
	embedder ai.EmbeddingService
	exporter *metrics.Exporter
}

// NewSearcher creates a Searcher. embedder may be nil (semantic stage
// disabled) and exporter may be nil (metrics disabled).
func NewSearcher(st Store, embedder ai.EmbeddingService, exporter *metrics.Exporter) *Searcher {
	return &Searcher{
		store:    st,
		embedder: embedder,
		exporter: exporter,
	}
}

func (s *Searcher) observeEmbedding(status string) {
	if s.exporter != nil {
		s.exporter.ObserveEmbeddingCall(status)
	}
}

// splitTags normalizes a comma-separated tag parameter into a lowercase
// list, dropping empty entries.
func splitTags(tags string) []string {
	parts := strings.Split(tags, ",")
	list := []string{}
	for _, part := range parts {
		if trimmed := strings.TrimSpace(part); trimmed != "" {
			list = append(list, strings.ToLower(trimmed))
		}
	}
	return list
}

// Search runs the fallback chain for a query, or a plain filtered listing
// when no query text was supplied. Stage problems degrade toward the LIKE
// baseline; only input validation errors surface to the caller.
func (s *Searcher) Search(ctx context.Context, req *Request) (*Response, error) {
	q := strings.TrimSpace(req.Query)
	if q != "" && len([]rune(q)) < minQueryLength {
		return nil, errors.Wrapf(ErrInvalidRequest, "search query must be at least %d characters", minQueryLength)
	}

	limit := req.Limit
	if limit <= 0 {
		limit = defaultLimit
	}
	// Resource-exhaustion guard: the server-side ceiling wins over whatever
	// the caller asked for.
	if limit > maxLimit {
		limit = maxLimit
	}
	offset := req.Offset
	if offset < 0 {
		offset = 0
	}

	find := &store.FindRegistryItem{}
	if req.TrustStatus != "" {
		trust := store.TrustStatus(req.TrustStatus)
		find.TrustStatus = &trust
	}
	if req.ItemType != "" {
		itemType := store.ItemType(req.ItemType)
		find.ItemType = &itemType
	}
	if req.Category != "" {
		find.Category = &req.Category
	}
	if req.FeaturedOnly {
		featured := true
		find.Featured = &featured
	}

	orderBy := store.SortClause(req.SortBy)
	tagList := splitTags(req.Tags)

	searchID := uuid.NewString()
	start := time.Now()
	stage := "list"
	defer func() {
		if s.exporter != nil {
			s.exporter.ObserveSearch(stage, time.Since(start).Seconds())
		}
	}()

	var (
		items []*ResultItem
		total int
	)

	switch {
	case q != "":
		if out := s.semanticSearch(ctx, q, find, limit); out.Status == StatusHit {
			stage = "semantic"
			items, total = s.postFilter(ctx, out.Items, tagList)
			break
		}

		rows, fulltextTotal, err := s.store.FulltextSearchRegistryItems(ctx, q, find, orderBy, limit, offset)
		if err == nil {
			stage = "fulltext"
			items, total = s.postFilter(ctx, toResultItems(rows), tagList)
			if len(tagList) == 0 {
				total = fulltextTotal
			}
			break
		}
		if !errors.Is(err, store.ErrFulltextUnsupported) {
			slog.Warn("fulltext search failed, falling back to like search",
				"search_id", searchID, "error", err)
		}

		// The floor: no further fallback behind it.
		stage = "like"
		rows, total, err = s.store.LikeSearchRegistryItems(ctx, q, tagList, find, orderBy, limit, offset)
		if err != nil {
			return nil, errors.Wrap(err, "like search failed")
		}
		items = toResultItems(rows)

	case len(tagList) > 0:
		stage = "like"
		rows, likeTotal, err := s.store.LikeSearchRegistryItems(ctx, "", tagList, find, orderBy, limit, offset)
		if err != nil {
			return nil, errors.Wrap(err, "tag search failed")
		}
		items, total = toResultItems(rows), likeTotal

	default:
		find.OrderBy = orderBy
		find.Limit = &limit
		find.Offset = &offset
		rows, err := s.store.ListRegistryItems(ctx, find)
		if err != nil {
			return nil, errors.Wrap(err, "failed to list registry items")
		}
		items = toResultItems(rows)
		// The count query must not inherit pagination.
		countFind := *find
		countFind.OrderBy = ""
		countFind.Limit = nil
		countFind.Offset = nil
		total, err = s.store.CountRegistryItems(ctx, &countFind)
		if err != nil {
			return nil, errors.Wrap(err, "failed to count registry items")
		}
	}

	if err := s.attachTags(ctx, items); err != nil {
		return nil, err
	}

	slog.Debug("search completed",
		"search_id", searchID, "stage", stage, "query", q,
		"total", total, "returned", len(items))

	return &Response{Items: items, Total: total, Limit: limit, Offset: offset}, nil
}

// postFilter applies the tag AND-filter for stages that could not push it
// into the query (semantic, fulltext). When it runs, the total becomes the
// filtered page length, matching the stage's self-reported result size.
func (s *Searcher) postFilter(ctx context.Context, items []*ResultItem, tagList []string) ([]*ResultItem, int) {
	if len(tagList) == 0 {
		return items, len(items)
	}
	filtered := []*ResultItem{}
	for _, item := range items {
		itemTags, err := s.tagSet(ctx, item.id)
		if err != nil {
			slog.Warn("loading tags for post-filter failed", "slug", item.Slug, "error", err)
			continue
		}
		if containsAll(itemTags, tagList) {
			filtered = append(filtered, item)
		}
	}
	return filtered, len(filtered)
}

func containsAll(set map[string]bool, wanted []string) bool {
	for _, tag := range wanted {
		if !set[tag] {
			return false
		}
	}
	return true
}

func (s *Searcher) tagSet(ctx context.Context, registryID int32) (map[string]bool, error) {
	tags, err := s.store.ListRegistryTags(ctx, &store.FindRegistryTag{RegistryID: &registryID})
	if err != nil {
		return nil, err
	}
	set := make(map[string]bool, len(tags))
	for _, tag := range tags {
		set[strings.ToLower(tag.Tag)] = true
	}
	return set, nil
}

// attachTags loads the tag set of every result. Always the final step so
// each stage can stay tag-agnostic.
func (s *Searcher) attachTags(ctx context.Context, items []*ResultItem) error {
	for _, item := range items {
		tags, err := s.store.ListRegistryTags(ctx, &store.FindRegistryTag{RegistryID: &item.id})
		if err != nil {
			return errors.Wrap(err, "failed to attach tags")
		}
		item.Tags = make([]string, len(tags))
		for i, tag := range tags {
			item.Tags[i] = tag.Tag
		}
	}
	return nil
}
