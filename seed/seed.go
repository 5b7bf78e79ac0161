// Package seed installs the pre-defined catalog entries every deployment
// ships with: the four canonical agent roles and the two default team types.
// Running it again updates the existing entries in place.
package seed

import (
	"context"
	"log/slog"
	"regexp"
	"strings"

	"github.com/lithammer/shortuuid/v4"
	"github.com/pkg/errors"

	"github.com/sena-services/registry/store"
)

// Seeder writes the pre-defined roles and team types.
type Seeder struct {
	store *store.Store
}

func New(st *store.Store) *Seeder {
	return &Seeder{store: st}
}

var slugCleaner = regexp.MustCompile(`[^a-z0-9]+`)

// Slugify turns a title into a URL-safe slug.
func Slugify(title string) string {
	slug := strings.ToLower(strings.TrimSpace(title))
	slug = slugCleaner.ReplaceAllString(slug, "-")
	return strings.Trim(slug, "-")
}

// uniqueSlug returns a slug not yet present in the catalog. The item type is
// appended first (roles and team types share titles like "Default"); a short
// random suffix is the last resort.
func (s *Seeder) uniqueSlug(ctx context.Context, title string, itemType store.ItemType) (string, error) {
	candidates := []string{
		Slugify(title),
		Slugify(title) + "-" + Slugify(string(itemType)),
	}
	for _, candidate := range candidates {
		existing, err := s.store.GetRegistryItem(ctx, &store.FindRegistryItem{Slug: &candidate})
		if err != nil {
			return "", err
		}
		if existing == nil {
			return candidate, nil
		}
	}
	return Slugify(title) + "-" + strings.ToLower(shortuuid.New()[:8]), nil
}

// Run seeds the registry. Idempotent: existing entries are updated, never
// duplicated.
func (s *Seeder) Run(ctx context.Context) error {
	roleExtensions, err := s.seedRoles(ctx)
	if err != nil {
		return err
	}
	if err := s.seedTeamTypes(ctx, roleExtensions); err != nil {
		return err
	}
	slog.Info("registry seeded", "roles", len(roleExtensions))
	return nil
}

// ensureItem finds an item by title and type, creating it when missing.
func (s *Seeder) ensureItem(ctx context.Context, title, description string, itemType store.ItemType) (*store.RegistryItem, error) {
	item, err := s.store.GetRegistryItem(ctx, &store.FindRegistryItem{
		Title:    &title,
		ItemType: &itemType,
	})
	if err != nil {
		return nil, err
	}
	if item != nil {
		return item, nil
	}

	slug, err := s.uniqueSlug(ctx, title, itemType)
	if err != nil {
		return nil, err
	}
	return s.store.CreateRegistryItem(ctx, &store.RegistryItem{
		Slug:        slug,
		Title:       title,
		ItemType:    itemType,
		Description: description,
		TrustStatus: store.TrustStatusApproved,
		Author:      "Sena",
	})
}

// setExtensionPayload replaces the extension payload of an item.
// Returns the extension record id for link wiring.
func (s *Seeder) setExtensionPayload(ctx context.Context, registryID int32, payload map[string]any) (int32, error) {
	ext, err := s.store.GetRegistryExtension(ctx, &store.FindRegistryExtension{RegistryID: &registryID})
	if err != nil {
		return 0, err
	}
	if ext == nil {
		return 0, errors.Errorf("registry item %d has no extension record", registryID)
	}
	if _, err := s.store.UpdateRegistryExtension(ctx, &store.UpdateRegistryExtension{
		ID:      ext.ID,
		Payload: payload,
	}); err != nil {
		return 0, err
	}
	return ext.ID, nil
}

func (s *Seeder) seedRoles(ctx context.Context) (map[string]int32, error) {
	roleExtensions := make(map[string]int32, len(roles))
	for _, role := range roles {
		item, err := s.ensureItem(ctx, role.Title, role.Description, store.ItemTypeAgentRole)
		if err != nil {
			return nil, errors.Wrapf(err, "failed to seed role %s", role.Title)
		}
		payload := make(map[string]any, len(role.Flags))
		for flag, value := range role.Flags {
			payload[flag] = value
		}
		extID, err := s.setExtensionPayload(ctx, item.ID, payload)
		if err != nil {
			return nil, errors.Wrapf(err, "failed to set role payload for %s", role.Title)
		}
		roleExtensions[role.Title] = extID
	}
	return roleExtensions, nil
}

func (s *Seeder) seedTeamTypes(ctx context.Context, roleExtensions map[string]int32) error {
	for _, teamType := range teamTypes {
		item, err := s.ensureItem(ctx, teamType.Title, teamType.Description, store.ItemTypeTeamType)
		if err != nil {
			return errors.Wrapf(err, "failed to seed team type %s", teamType.Title)
		}

		roleConfigs := make([]any, 0, len(roleExtensions))
		for _, role := range roles {
			extID, ok := roleExtensions[role.Title]
			if !ok {
				continue
			}
			roleConfigs = append(roleConfigs, map[string]any{
				"role":       extID,
				"min_agents": 1,
				"max_agents": 1,
			})
		}

		payload := map[string]any{
			"overridable":  teamType.Overridable,
			"role_configs": roleConfigs,
		}
		if _, err := s.setExtensionPayload(ctx, item.ID, payload); err != nil {
			return errors.Wrapf(err, "failed to set team type payload for %s", teamType.Title)
		}
	}
	return nil
}
