package search

import (
	"context"
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sena-services/registry/store"
)

func TestBuildSearchText(t *testing.T) {
	full := &store.RegistryItem{
		ItemType:    store.ItemTypeAgent,
		Title:       "Coder",
		Description: "Writes programs.",
		Category:    "Development",
	}
	assert.Equal(t,
		"Agent: Coder. Writes programs.. Category: Development. Tags: go, testing",
		BuildSearchText(full, []string{"go", "testing"}))

	bare := &store.RegistryItem{ItemType: store.ItemTypeTool, Title: "Curl"}
	assert.Equal(t, "Tool: Curl", BuildSearchText(bare, nil))

	noTags := &store.RegistryItem{
		ItemType:    store.ItemTypeSkill,
		Title:       "Summarize",
		Description: "Shortens text",
	}
	assert.Equal(t, "Skill: Summarize. Shortens text", BuildSearchText(noTags, []string{}))
}

func TestRebuildIndex(t *testing.T) {
	a := item(1, "a", "Alpha", nil)
	a.Description = "First one"
	b := item(2, "b", "Beta", nil)
	st := &fakeStore{
		items: []*store.RegistryItem{a, b},
		tags:  map[int32][]string{1: {"one"}},
	}
	embedder := &fakeEmbedder{fallbackVector: []float32{1, 0}}
	s := NewSearcher(st, embedder, nil)

	result, err := s.RebuildIndex(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 2, result.Total)
	assert.Equal(t, 2, result.Embedded)
	assert.Equal(t, 2, embedder.calls)

	require.Len(t, st.updates, 2)
	assert.Equal(t, int32(1), st.updates[0].ID)
	assert.Equal(t, "Tool: Alpha. First one. Tags: one", st.updates[0].SearchText)
	assert.Equal(t, []float32{1, 0}, st.updates[0].Embedding)
	assert.Equal(t, "Tool: Beta", st.updates[1].SearchText)
}

func TestRebuildIndex_EmbeddingFailureIsPerItem(t *testing.T) {
	st := &fakeStore{
		items: []*store.RegistryItem{item(1, "a", "Alpha", nil), item(2, "b", "Beta", nil)},
		tags:  map[int32][]string{},
	}
	embedder := &fakeEmbedder{err: errors.New("provider down")}
	s := NewSearcher(st, embedder, nil)

	result, err := s.RebuildIndex(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 2, result.Total)
	assert.Equal(t, 0, result.Embedded)

	// The search text still lands even when embedding fails.
	require.Len(t, st.updates, 2)
	for _, update := range st.updates {
		assert.NotEmpty(t, update.SearchText)
		assert.Nil(t, update.Embedding)
	}
}

func TestRebuildIndex_NoEmbedder(t *testing.T) {
	st := &fakeStore{
		items: []*store.RegistryItem{item(1, "a", "Alpha", nil)},
		tags:  map[int32][]string{},
	}
	s := NewSearcher(st, nil, nil)

	result, err := s.RebuildIndex(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, result.Total)
	assert.Equal(t, 0, result.Embedded)
	require.Len(t, st.updates, 1)
	assert.Equal(t, "Tool: Alpha", st.updates[0].SearchText)
}

func TestRebuildIndex_Idempotent(t *testing.T) {
	st := &fakeStore{
		items: []*store.RegistryItem{item(1, "a", "Alpha", nil)},
		tags:  map[int32][]string{1: {"one", "two"}},
	}
	embedder := &fakeEmbedder{fallbackVector: []float32{0.5, 0.5}}
	s := NewSearcher(st, embedder, nil)

	first, err := s.RebuildIndex(context.Background())
	require.NoError(t, err)
	second, err := s.RebuildIndex(context.Background())
	require.NoError(t, err)

	assert.Equal(t, first, second)
	require.Len(t, st.updates, 2)
	assert.Equal(t, st.updates[0], st.updates[1])
}
