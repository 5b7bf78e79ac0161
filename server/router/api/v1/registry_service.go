package v1

import (
	"crypto/subtle"
	"log/slog"
	"net/http"
	"strconv"
	"strings"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/sena-services/registry/internal/profile"
	"github.com/sena-services/registry/search"
)

// RegistryService serves the guest-accessible catalog read endpoints plus
// the protected reindex endpoint.
type RegistryService struct {
	Searcher *search.Searcher
	Profile  *profile.Profile
}

func (s *RegistryService) RegisterRoutes(group *echo.Group) {
	group.GET("/registry/search", s.Search)
	group.GET("/registry/items/:slug", s.GetItem)
	group.POST("/registry/reindex", s.Reindex)
}

// Search handles GET /api/v1/registry/search.
func (s *RegistryService) Search(c echo.Context) error {
	req := &search.Request{
		Query:        c.QueryParam("q"),
		ItemType:     c.QueryParam("item_type"),
		Category:     c.QueryParam("category"),
		Tags:         c.QueryParam("tags"),
		TrustStatus:  "approved",
		SortBy:       c.QueryParam("sort_by"),
		FeaturedOnly: parseBool(c.QueryParam("featured_only")),
	}
	if trust, ok := queryParam(c, "trust_status"); ok {
		req.TrustStatus = trust
	}
	if limit, err := strconv.Atoi(c.QueryParam("limit")); err == nil {
		req.Limit = limit
	}
	if offset, err := strconv.Atoi(c.QueryParam("offset")); err == nil {
		req.Offset = offset
	}

	resp, err := s.Searcher.Search(c.Request().Context(), req)
	if err != nil {
		if errors.Is(err, search.ErrInvalidRequest) {
			return echo.NewHTTPError(http.StatusBadRequest, err.Error())
		}
		slog.Error("search failed", "error", err)
		return echo.NewHTTPError(http.StatusInternalServerError, "search failed")
	}
	return c.JSON(http.StatusOK, resp)
}

// GetItem handles GET /api/v1/registry/items/:slug.
func (s *RegistryService) GetItem(c echo.Context) error {
	detail, err := s.Searcher.GetItem(c.Request().Context(), c.Param("slug"))
	if err != nil {
		switch {
		case errors.Is(err, search.ErrInvalidRequest):
			return echo.NewHTTPError(http.StatusBadRequest, err.Error())
		case errors.Is(err, search.ErrNotFound):
			return echo.NewHTTPError(http.StatusNotFound, err.Error())
		default:
			slog.Error("get item failed", "slug", c.Param("slug"), "error", err)
			return echo.NewHTTPError(http.StatusInternalServerError, "failed to get registry item")
		}
	}
	return c.JSON(http.StatusOK, detail)
}

// Reindex handles POST /api/v1/registry/reindex. Protected by the
// maintenance token; disabled entirely when none is configured.
func (s *RegistryService) Reindex(c echo.Context) error {
	token := s.Profile.MaintenanceToken
	if token == "" {
		return echo.NewHTTPError(http.StatusForbidden, "maintenance endpoint disabled")
	}

	supplied := strings.TrimPrefix(c.Request().Header.Get("Authorization"), "Bearer ")
	if subtle.ConstantTimeCompare([]byte(supplied), []byte(token)) != 1 {
		return echo.NewHTTPError(http.StatusUnauthorized, "invalid maintenance token")
	}

	result, err := s.Searcher.RebuildIndex(c.Request().Context())
	if err != nil {
		slog.Error("reindex failed", "error", err)
		return echo.NewHTTPError(http.StatusInternalServerError, "reindex failed")
	}
	return c.JSON(http.StatusOK, result)
}

// queryParam reports a query parameter and whether it was present at all,
// so "trust_status=" (explicitly empty, meaning no gate) is distinguishable
// from an omitted parameter.
func queryParam(c echo.Context, name string) (string, bool) {
	values, ok := c.QueryParams()[name]
	if !ok || len(values) == 0 {
		return "", false
	}
	return values[0], true
}

func parseBool(value string) bool {
	parsed, err := strconv.ParseBool(value)
	return err == nil && parsed
}
