package v1

import (
	"github.com/labstack/echo/v4"

	"github.com/sena-services/registry/internal/profile"
	"github.com/sena-services/registry/search"
	"github.com/sena-services/registry/store"
)

// APIV1Service groups the v1 route handlers.
type APIV1Service struct {
	RegistryService *RegistryService

	Profile *profile.Profile
	Store   *store.Store
}

// NewAPIV1Service creates the v1 API surface.
func NewAPIV1Service(profile *profile.Profile, store *store.Store, searcher *search.Searcher) *APIV1Service {
	return &APIV1Service{
		RegistryService: &RegistryService{
			Searcher: searcher,
			Profile:  profile,
		},
		Profile: profile,
		Store:   store,
	}
}

// RegisterRoutes mounts all v1 routes on the echo instance.
func (s *APIV1Service) RegisterRoutes(e *echo.Echo) {
	group := e.Group("/api/v1")
	s.RegistryService.RegisterRoutes(group)
}
