package seed

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sena-services/registry/internal/profile"
	"github.com/sena-services/registry/store"
	"github.com/sena-services/registry/store/db/sqlite"
)

func testStore(t *testing.T) *store.Store {
	t.Helper()
	p := &profile.Profile{
		Mode:   "dev",
		Driver: "sqlite",
		DSN:    filepath.Join(t.TempDir(), "registry_test.db"),
	}
	driver, err := sqlite.NewDB(p)
	require.NoError(t, err)
	st := store.New(driver, p)
	t.Cleanup(func() { _ = st.Close() })
	require.NoError(t, st.Migrate(context.Background()))
	return st
}

func TestSlugify(t *testing.T) {
	assert.Equal(t, "web-search", Slugify("Web Search"))
	assert.Equal(t, "agent-role", Slugify("Agent Role"))
	assert.Equal(t, "c-3po", Slugify("  C-3PO!  "))
	assert.Equal(t, "default", Slugify("Default"))
}

func TestRun_SeedsRolesAndTeamTypes(t *testing.T) {
	st := testStore(t)
	ctx := context.Background()
	require.NoError(t, New(st).Run(ctx))

	roleType := store.ItemTypeAgentRole
	roleItems, err := st.ListRegistryItems(ctx, &store.FindRegistryItem{ItemType: &roleType})
	require.NoError(t, err)
	assert.Len(t, roleItems, 4)
	for _, item := range roleItems {
		assert.Equal(t, store.TrustStatusApproved, item.TrustStatus)
		assert.Equal(t, "Sena", item.Author)
	}

	teamTypeType := store.ItemTypeTeamType
	teamTypeItems, err := st.ListRegistryItems(ctx, &store.FindRegistryItem{ItemType: &teamTypeType})
	require.NoError(t, err)
	assert.Len(t, teamTypeItems, 2)
}

func TestRun_RoleCapabilityFlags(t *testing.T) {
	st := testStore(t)
	ctx := context.Background()
	require.NoError(t, New(st).Run(ctx))

	title := "Orchestrator"
	roleType := store.ItemTypeAgentRole
	item, err := st.GetRegistryItem(ctx, &store.FindRegistryItem{Title: &title, ItemType: &roleType})
	require.NoError(t, err)
	require.NotNil(t, item)

	ext, err := st.GetRegistryExtension(ctx, &store.FindRegistryExtension{RegistryID: &item.ID})
	require.NoError(t, err)
	require.NotNil(t, ext)
	assert.Equal(t, "allow", ext.Payload["spawn_preset"])
	assert.Equal(t, "deny", ext.Payload["can_post_townhall"])
}

func TestRun_TeamTypesLinkRoleConfigs(t *testing.T) {
	st := testStore(t)
	ctx := context.Background()
	require.NoError(t, New(st).Run(ctx))

	title := "Standard"
	teamTypeType := store.ItemTypeTeamType
	item, err := st.GetRegistryItem(ctx, &store.FindRegistryItem{Title: &title, ItemType: &teamTypeType})
	require.NoError(t, err)
	require.NotNil(t, item)

	ext, err := st.GetRegistryExtension(ctx, &store.FindRegistryExtension{RegistryID: &item.ID})
	require.NoError(t, err)
	require.NotNil(t, ext)

	configs, ok := ext.Payload["role_configs"].([]any)
	require.True(t, ok)
	assert.Len(t, configs, 4)
	for _, raw := range configs {
		row, ok := raw.(map[string]any)
		require.True(t, ok)
		assert.NotZero(t, row["role"])
	}
}

func TestRun_Idempotent(t *testing.T) {
	st := testStore(t)
	ctx := context.Background()

	require.NoError(t, New(st).Run(ctx))
	require.NoError(t, New(st).Run(ctx))

	items, err := st.ListRegistryItems(ctx, &store.FindRegistryItem{})
	require.NoError(t, err)
	assert.Len(t, items, 6)
}

func TestRun_SharedTitlesGetDistinctSlugs(t *testing.T) {
	st := testStore(t)
	ctx := context.Background()
	require.NoError(t, New(st).Run(ctx))

	// "Default" exists both as a role and as a team type.
	slugs := map[string]bool{}
	items, err := st.ListRegistryItems(ctx, &store.FindRegistryItem{})
	require.NoError(t, err)
	for _, item := range items {
		assert.False(t, slugs[item.Slug], "duplicate slug %s", item.Slug)
		slugs[item.Slug] = true
	}
}
