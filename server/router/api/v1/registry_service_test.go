package v1

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sena-services/registry/internal/profile"
	"github.com/sena-services/registry/search"
	"github.com/sena-services/registry/store"
	"github.com/sena-services/registry/store/db/sqlite"
)

func testService(t *testing.T, p *profile.Profile) (*echo.Echo, *store.Store) {
	t.Helper()
	if p == nil {
		p = &profile.Profile{Mode: "dev", Driver: "sqlite"}
	}
	p.DSN = filepath.Join(t.TempDir(), "registry_test.db")

	driver, err := sqlite.NewDB(p)
	require.NoError(t, err)
	st := store.New(driver, p)
	t.Cleanup(func() { _ = st.Close() })
	require.NoError(t, st.Migrate(context.Background()))

	e := echo.New()
	NewAPIV1Service(p, st, search.NewSearcher(st, nil, nil)).RegisterRoutes(e)
	return e, st
}

func seedItem(t *testing.T, st *store.Store, slug, title string, trust store.TrustStatus, tags ...string) *store.RegistryItem {
	t.Helper()
	item, err := st.CreateRegistryItem(context.Background(), &store.RegistryItem{
		Slug:        slug,
		Title:       title,
		ItemType:    store.ItemTypeTool,
		TrustStatus: trust,
	})
	require.NoError(t, err)
	for _, tag := range tags {
		require.NoError(t, st.UpsertRegistryTag(context.Background(), &store.UpsertRegistryTag{RegistryID: item.ID, Tag: tag}))
	}
	return item
}

func doRequest(e *echo.Echo, method, target string, header http.Header) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, target, nil)
	for key, values := range header {
		req.Header[key] = values
	}
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	return rec
}

func TestSearchEndpoint(t *testing.T) {
	e, st := testService(t, nil)
	seedItem(t, st, "web-search", "Web Search", store.TrustStatusApproved, "web")
	seedItem(t, st, "pending-tool", "Web Pending", store.TrustStatusPending)

	rec := doRequest(e, http.MethodGet, "/api/v1/registry/search?q=web", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	var resp search.Response
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	// The pending item is hidden by the default trust gate.
	assert.Equal(t, 1, resp.Total)
	require.Len(t, resp.Items, 1)
	assert.Equal(t, "web-search", resp.Items[0].Slug)
	assert.Equal(t, []string{"web"}, resp.Items[0].Tags)
}

func TestSearchEndpoint_ExplicitEmptyTrustStatus(t *testing.T) {
	e, st := testService(t, nil)
	seedItem(t, st, "web-search", "Web Search", store.TrustStatusApproved)
	seedItem(t, st, "pending-tool", "Web Pending", store.TrustStatusPending)

	rec := doRequest(e, http.MethodGet, "/api/v1/registry/search?q=web&trust_status=", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	var resp search.Response
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, 2, resp.Total)
}

func TestSearchEndpoint_ShortQuery(t *testing.T) {
	e, _ := testService(t, nil)
	rec := doRequest(e, http.MethodGet, "/api/v1/registry/search?q=x", nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestGetItemEndpoint(t *testing.T) {
	e, st := testService(t, nil)
	seedItem(t, st, "web-search", "Web Search", store.TrustStatusApproved, "web")

	rec := doRequest(e, http.MethodGet, "/api/v1/registry/items/web-search", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	var detail search.ItemDetail
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &detail))
	assert.Equal(t, "Web Search", detail.Registry["title"])
	assert.NotContains(t, detail.Registry, "id")

	rec = doRequest(e, http.MethodGet, "/api/v1/registry/items/no-such", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestReindexEndpoint_TokenRequired(t *testing.T) {
	// No token configured: the endpoint is disabled outright.
	e, _ := testService(t, nil)
	rec := doRequest(e, http.MethodPost, "/api/v1/registry/reindex", nil)
	assert.Equal(t, http.StatusForbidden, rec.Code)

	e, st := testService(t, &profile.Profile{Mode: "dev", Driver: "sqlite", MaintenanceToken: "sekrit"})
	seedItem(t, st, "web-search", "Web Search", store.TrustStatusApproved)

	rec = doRequest(e, http.MethodPost, "/api/v1/registry/reindex", nil)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	rec = doRequest(e, http.MethodPost, "/api/v1/registry/reindex", http.Header{
		"Authorization": []string{"Bearer wrong"},
	})
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	rec = doRequest(e, http.MethodPost, "/api/v1/registry/reindex", http.Header{
		"Authorization": []string{"Bearer sekrit"},
	})
	require.Equal(t, http.StatusOK, rec.Code)

	var result search.RebuildResult
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &result))
	assert.Equal(t, 1, result.Total)
	assert.Equal(t, 0, result.Embedded)
}
