package search

import (
	"context"
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sena-services/registry/store"
)

func TestGetItem_Validation(t *testing.T) {
	s := NewSearcher(&fakeStore{}, nil, nil)

	_, err := s.GetItem(context.Background(), "  ")
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrInvalidRequest))

	_, err = s.GetItem(context.Background(), "no-such-slug")
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrNotFound))
}

func TestGetItem_RegistryFields(t *testing.T) {
	row := item(1, "web-search", "Web Search", nil)
	row.Readme = "# Web Search\n\nFinds things."
	st := &fakeStore{
		items: []*store.RegistryItem{row},
		tags:  map[int32][]string{1: {"search", "web"}},
	}
	s := NewSearcher(st, nil, nil)

	detail, err := s.GetItem(context.Background(), "web-search")
	require.NoError(t, err)

	assert.Equal(t, "web-search", detail.Registry["slug"])
	assert.Equal(t, "Web Search", detail.Registry["title"])
	assert.ElementsMatch(t, []string{"search", "web"}, detail.Registry["tags"])
	assert.NotContains(t, detail.Registry, "id")
	assert.Contains(t, detail.Registry["readme_html"], "<h1")
}

func TestGetItem_ResolvesLinks(t *testing.T) {
	agent := item(10, "coder", "Coder", nil)
	agent.ItemType = store.ItemTypeAgent
	role := item(11, "worker-role", "Worker", nil)
	role.ItemType = store.ItemTypeAgentRole
	tool := item(12, "grep-tool", "Grep", nil)
	tool.ItemType = store.ItemTypeTool

	st := &fakeStore{
		items: []*store.RegistryItem{agent, role, tool},
		tags:  map[int32][]string{},
		extensions: map[int32]*store.RegistryExtension{
			10: {
				ID:         100,
				RegistryID: 10,
				Kind:       store.ItemTypeAgent,
				Payload: map[string]any{
					"agent_role":  float64(101),
					"ui":          float64(999), // dangling
					"temperature": 0.2,
					"agent_tools": []any{
						map[string]any{"tool": float64(102), "enabled": true},
					},
				},
			},
		},
		owners: map[int32]*store.RegistryItem{
			101: role,
			102: tool,
		},
	}
	s := NewSearcher(st, nil, nil)

	detail, err := s.GetItem(context.Background(), "coder")
	require.NoError(t, err)
	require.NotNil(t, detail.Extension)

	// Scalar fields pass through untouched.
	assert.Equal(t, 0.2, detail.Extension["temperature"])

	// Resolved link: raw id replaced with a reference.
	assert.NotContains(t, detail.Extension, "agent_role")
	ref, ok := detail.Extension["agent_role_ref"].(map[string]any)
	require.True(t, ok)
	assert.Equal(t, "worker-role", ref["slug"])
	assert.Equal(t, "Worker", ref["title"])
	assert.Equal(t, "Agent Role", ref["item_type"])

	// Dangling link: both the raw id and the reference are absent.
	assert.NotContains(t, detail.Extension, "ui")
	assert.NotContains(t, detail.Extension, "ui_ref")

	// Child table rows get the same treatment.
	rows, ok := detail.Extension["agent_tools"].([]any)
	require.True(t, ok)
	require.Len(t, rows, 1)
	childRow, ok := rows[0].(map[string]any)
	require.True(t, ok)
	assert.Equal(t, true, childRow["enabled"])
	assert.NotContains(t, childRow, "tool")
	toolRef, ok := childRow["tool_ref"].(map[string]any)
	require.True(t, ok)
	assert.Equal(t, "grep-tool", toolRef["slug"])
}

func TestGetItem_ScalarOnlyExtension(t *testing.T) {
	toolItem := item(20, "curl-tool", "Curl", nil)
	toolItem.ItemType = store.ItemTypeTool
	st := &fakeStore{
		items: []*store.RegistryItem{toolItem},
		tags:  map[int32][]string{},
		extensions: map[int32]*store.RegistryExtension{
			20: {
				ID:         200,
				RegistryID: 20,
				Kind:       store.ItemTypeTool,
				Payload:    map[string]any{"command": "curl", "timeout": float64(30)},
			},
		},
	}
	s := NewSearcher(st, nil, nil)

	detail, err := s.GetItem(context.Background(), "curl-tool")
	require.NoError(t, err)
	assert.Equal(t, "curl", detail.Extension["command"])
	assert.Equal(t, float64(30), detail.Extension["timeout"])
}

func TestGetItem_PayloadNotMutated(t *testing.T) {
	agent := item(30, "mutator", "Mutator", nil)
	agent.ItemType = store.ItemTypeAgent
	payload := map[string]any{"agent_role": float64(301)}
	st := &fakeStore{
		items: []*store.RegistryItem{agent},
		tags:  map[int32][]string{},
		extensions: map[int32]*store.RegistryExtension{
			30: {ID: 300, RegistryID: 30, Kind: store.ItemTypeAgent, Payload: payload},
		},
	}
	s := NewSearcher(st, nil, nil)

	_, err := s.GetItem(context.Background(), "mutator")
	require.NoError(t, err)
	// Resolution works on a copy; the stored payload keeps its raw id.
	assert.Equal(t, float64(301), payload["agent_role"])
}
