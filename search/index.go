package search

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/pkg/errors"
	"golang.org/x/time/rate"

	"github.com/sena-services/registry/store"
)

// embeddingRate bounds reindex calls against the embedding API.
var embeddingRate = rate.Limit(5)

// RebuildResult reports one reindex pass.
type RebuildResult struct {
	Total    int `json:"total"`
	Embedded int `json:"embedded"`
}

// BuildSearchText builds the denormalized blob used for both full-text
// matching and embedding generation.
func BuildSearchText(item *store.RegistryItem, tags []string) string {
	parts := []string{fmt.Sprintf("%s: %s", item.ItemType, item.Title)}
	if item.Description != "" {
		parts = append(parts, item.Description)
	}
	if item.Category != "" {
		parts = append(parts, "Category: "+item.Category)
	}
	if len(tags) > 0 {
		parts = append(parts, "Tags: "+strings.Join(tags, ", "))
	}
	return strings.Join(parts, ". ")
}

// RebuildIndex regenerates search_text and embeddings for every catalog
// item, sequentially. Idempotent: re-running with an unchanged catalog and a
// stable embedding service produces the same counts and writes the same
// rows. There is no mutual-exclusion guard; concurrent runs duplicate
// embedding API calls but each write is keyed by item id, so data stays
// consistent.
func (s *Searcher) RebuildIndex(ctx context.Context) (*RebuildResult, error) {
	items, err := s.store.ListRegistryItems(ctx, &store.FindRegistryItem{})
	if err != nil {
		return nil, errors.Wrap(err, "failed to list registry items")
	}

	limiter := rate.NewLimiter(embeddingRate, 1)
	result := &RebuildResult{Total: len(items)}

	for _, item := range items {
		tags, err := s.store.ListRegistryTags(ctx, &store.FindRegistryTag{RegistryID: &item.ID})
		if err != nil {
			return nil, errors.Wrap(err, "failed to list tags")
		}
		tagNames := make([]string, len(tags))
		for i, tag := range tags {
			tagNames[i] = tag.Tag
		}

		update := &store.UpdateRegistryItemIndex{
			ID:         item.ID,
			SearchText: BuildSearchText(item, tagNames),
		}

		if s.embedder != nil {
			if err := limiter.Wait(ctx); err != nil {
				return nil, errors.Wrap(err, "reindex interrupted")
			}
			embedding, err := s.embedder.Embed(ctx, update.SearchText)
			if err != nil {
				// A flaky embedding service costs ranking quality for this
				// item, nothing else. The search text is still stored.
				slog.Warn("embedding failed during reindex", "slug", item.Slug, "error", err)
				s.observeEmbedding("error")
			} else {
				s.observeEmbedding("ok")
				update.Embedding = embedding
				result.Embedded++
			}
		}

		if err := s.store.UpdateRegistryItemIndex(ctx, update); err != nil {
			return nil, errors.Wrapf(err, "failed to update search index for %s", item.Slug)
		}
	}

	if s.exporter != nil {
		s.exporter.ObserveReindex(result.Total, result.Embedded)
	}
	slog.Info("search index rebuilt", "total", result.Total, "embedded", result.Embedded)
	return result, nil
}
