package search

import (
	"context"
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sena-services/registry/store"
)

// queryVector is the canned query embedding for the semantic tests.
var queryVector = []float32{1, 0, 0, 0}

// Integer vectors of norm exactly 10, so the cosine against queryVector is
// first-component/10 with no floating point noise. That makes the threshold
// boundary testable exactly.
var (
	vecCos01 = []float32{1, 9, 3, 3}
	vecCos03 = []float32{3, 9, 3, 1}
	vecCos05 = []float32{5, 7, 5, 1}
	vecCos07 = []float32{7, 7, 1, 1}
	vecCos08 = []float32{8, 6, 0, 0}
	vecCos09 = []float32{9, 3, 3, 1}
)

func semanticFixture(items ...*store.RegistryItem) *Searcher {
	st := &fakeStore{items: items}
	embedder := &fakeEmbedder{fallbackVector: queryVector}
	return NewSearcher(st, embedder, nil)
}

func TestSemanticSearch_ThresholdBoundaryInclusive(t *testing.T) {
	s := semanticFixture(
		item(1, "far", "Far", vecCos01),
		item(2, "boundary", "Boundary", vecCos03),
		item(3, "near", "Near", vecCos05),
	)

	out := s.semanticSearch(context.Background(), "query", &store.FindRegistryItem{}, 20)
	require.Equal(t, StatusHit, out.Status)
	require.Len(t, out.Items, 2)
	// Ordered by similarity, best first; 0.30 itself is in.
	assert.Equal(t, "near", out.Items[0].Slug)
	assert.Equal(t, "boundary", out.Items[1].Slug)
}

func TestSemanticSearch_NoEmbedder(t *testing.T) {
	s := NewSearcher(&fakeStore{}, nil, nil)
	out := s.semanticSearch(context.Background(), "query", &store.FindRegistryItem{}, 20)
	assert.Equal(t, StatusNoSignal, out.Status)
}

func TestSemanticSearch_EmbedErrorDegrades(t *testing.T) {
	embedder := &fakeEmbedder{err: errors.New("provider down")}
	s := NewSearcher(&fakeStore{}, embedder, nil)
	out := s.semanticSearch(context.Background(), "query", &store.FindRegistryItem{}, 20)
	assert.Equal(t, StatusNoSignal, out.Status)
}

func TestSemanticSearch_NothingClearsThreshold(t *testing.T) {
	s := semanticFixture(
		item(1, "far", "Far", vecCos01),
		item(2, "sideways", "Sideways", []float32{0, 1, 0, 0}),
	)

	out := s.semanticSearch(context.Background(), "query", &store.FindRegistryItem{}, 20)
	assert.Equal(t, StatusNoSignal, out.Status)
	assert.Empty(t, out.Items)
}

func TestSemanticSearch_SkipsCorruptEmbeddings(t *testing.T) {
	// A nil embedding stands in for a row whose stored payload failed to
	// decode. It must be skipped, not scored or fatal.
	s := semanticFixture(
		item(1, "good", "Good", vecCos09),
		item(2, "corrupt", "Corrupt", nil),
	)

	out := s.semanticSearch(context.Background(), "query", &store.FindRegistryItem{}, 20)
	require.Equal(t, StatusHit, out.Status)
	require.Len(t, out.Items, 1)
	assert.Equal(t, "good", out.Items[0].Slug)
}

func TestSemanticSearch_TruncatesToLimit(t *testing.T) {
	s := semanticFixture(
		item(1, "a", "A", vecCos09),
		item(2, "b", "B", vecCos08),
		item(3, "c", "C", vecCos07),
	)

	out := s.semanticSearch(context.Background(), "query", &store.FindRegistryItem{}, 2)
	require.Equal(t, StatusHit, out.Status)
	require.Len(t, out.Items, 2)
	assert.Equal(t, "a", out.Items[0].Slug)
	assert.Equal(t, "b", out.Items[1].Slug)
}

func TestSemanticSearch_ScoresNeverLeak(t *testing.T) {
	s := semanticFixture(item(1, "a", "A", vecCos09))

	out := s.semanticSearch(context.Background(), "query", &store.FindRegistryItem{}, 20)
	require.Equal(t, StatusHit, out.Status)
	for _, result := range out.Items {
		assert.Zero(t, result.score)
	}
}
