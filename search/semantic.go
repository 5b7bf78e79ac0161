package search

import (
	"context"
	"log/slog"
	"sort"

	"github.com/sena-services/registry/store"
)

// similarityThreshold is the minimum cosine similarity for a semantic match,
// boundary inclusive. A tunable constant, not a contract; 0.30 works for the
// catalog sizes this design targets.
const similarityThreshold = 0.30

// semanticSearch scores every filter-matching item that has a stored
// embedding against the query embedding. The full-table scan is the known
// scalability ceiling of this subsystem: O(catalog) per query, fine for a
// few thousand items.
//
// The outcome is NoSignal when embeddings are unavailable or nothing clears
// the threshold; only then may the caller try the text stages. Failures here
// also degrade to NoSignal: semantic ranking is an optimization, never a
// reason to fail a search.
func (s *Searcher) semanticSearch(ctx context.Context, query string, find *store.FindRegistryItem, limit int) Outcome {
	if s.embedder == nil {
		return Outcome{Status: StatusNoSignal}
	}

	queryEmbedding, err := s.embedder.Embed(ctx, query)
	if err != nil {
		slog.Warn("embedding query failed, falling back to text search", "error", err)
		s.observeEmbedding("error")
		return Outcome{Status: StatusNoSignal}
	}
	s.observeEmbedding("ok")

	candidates := *find
	candidates.HasEmbedding = true
	items, err := s.store.ListRegistryItems(ctx, &candidates)
	if err != nil {
		slog.Warn("loading embedding candidates failed", "error", err)
		return Outcome{Status: StatusNoSignal}
	}

	scored := []*ResultItem{}
	for _, item := range items {
		// Nil embeddings here are rows whose stored payload failed to
		// decode; corrupt data is excluded, not fatal.
		if item.Embedding == nil {
			continue
		}
		score := Cosine(queryEmbedding, item.Embedding)
		if score >= similarityThreshold {
			result := toResultItem(item)
			result.score = score
			scored = append(scored, result)
		}
	}

	if len(scored) == 0 {
		return Outcome{Status: StatusNoSignal}
	}

	sort.SliceStable(scored, func(i, j int) bool {
		return scored[i].score > scored[j].score
	})
	if len(scored) > limit {
		scored = scored[:limit]
	}
	for _, item := range scored {
		item.score = 0
	}
	return Outcome{Status: StatusHit, Items: scored}
}
