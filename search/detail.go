package search

import (
	"bytes"
	"context"
	"log/slog"
	"strings"

	"github.com/pkg/errors"
	"github.com/yuin/goldmark"

	"github.com/sena-services/registry/store"
)

// ItemDetail combines the canonical registry record with its resolved
// type-specific extension payload.
type ItemDetail struct {
	Registry  map[string]any `json:"registry"`
	Extension map[string]any `json:"extension"`
}

var readmeRenderer = goldmark.New()

// GetItem fetches one catalog entry by slug and resolves its extension
// record, including every link field reachable through the extension schema.
func (s *Searcher) GetItem(ctx context.Context, slug string) (*ItemDetail, error) {
	slug = strings.TrimSpace(slug)
	if slug == "" {
		return nil, errors.Wrap(ErrInvalidRequest, "slug is required")
	}

	item, err := s.store.GetRegistryItem(ctx, &store.FindRegistryItem{Slug: &slug})
	if err != nil {
		return nil, errors.Wrap(err, "failed to get registry item")
	}
	if item == nil {
		return nil, errors.Wrapf(ErrNotFound, "registry item with slug %q not found", slug)
	}

	tags, err := s.store.ListRegistryTags(ctx, &store.FindRegistryTag{RegistryID: &item.ID})
	if err != nil {
		return nil, errors.Wrap(err, "failed to load tags")
	}
	tagNames := make([]string, len(tags))
	for i, tag := range tags {
		tagNames[i] = tag.Tag
	}

	registry := map[string]any{
		"slug":          item.Slug,
		"title":         item.Title,
		"item_type":     string(item.ItemType),
		"category":      item.Category,
		"description":   item.Description,
		"trust_status":  string(item.TrustStatus),
		"featured":      item.Featured,
		"visibility":    item.Visibility,
		"install_count": item.InstallCount,
		"author":        item.Author,
		"version":       item.Version,
		"source_url":    item.SourceURL,
		"readme":        item.Readme,
		"tags":          tagNames,
	}
	if item.Readme != "" {
		var buf bytes.Buffer
		if err := readmeRenderer.Convert([]byte(item.Readme), &buf); err == nil {
			registry["readme_html"] = buf.String()
		} else {
			slog.Warn("failed to render readme", "slug", item.Slug, "error", err)
		}
	}

	var extension map[string]any
	if schema, ok := store.SchemaFor(item.ItemType); ok {
		ext, err := s.store.GetRegistryExtension(ctx, &store.FindRegistryExtension{RegistryID: &item.ID})
		if err != nil {
			return nil, errors.Wrap(err, "failed to load extension")
		}
		if ext != nil {
			extension = s.resolveExtension(ctx, schema, ext.Payload)
		}
	}

	return &ItemDetail{Registry: registry, Extension: extension}, nil
}

// resolveExtension walks an extension payload against its schema, replacing
// every resolvable link field with a {slug, title, item_type} reference to
// the linked item's owning catalog entry. Dangling links vanish silently:
// a broken reference should degrade the detail view, not break it.
func (s *Searcher) resolveExtension(ctx context.Context, schema store.ExtensionSchema, payload map[string]any) map[string]any {
	data := make(map[string]any, len(payload))
	for key, value := range payload {
		data[key] = value
	}

	s.resolveLinks(ctx, data, schema.Links)

	for _, child := range schema.Children {
		raw, ok := data[child.Field]
		if !ok {
			continue
		}
		rows, ok := raw.([]any)
		if !ok {
			continue
		}
		resolved := make([]any, 0, len(rows))
		for _, rawRow := range rows {
			row, ok := rawRow.(map[string]any)
			if !ok {
				continue
			}
			cleaned := make(map[string]any, len(row))
			for key, value := range row {
				cleaned[key] = value
			}
			s.resolveLinks(ctx, cleaned, child.Links)
			resolved = append(resolved, cleaned)
		}
		data[child.Field] = resolved
	}

	return data
}

// resolveLinks rewrites each schema link field in place: the stored
// extension record id is replaced by a "<field>_ref" reference when its
// owner exists, and dropped entirely when it dangles.
func (s *Searcher) resolveLinks(ctx context.Context, data map[string]any, links []store.LinkField) {
	for _, link := range links {
		raw, ok := data[link.Field]
		if !ok {
			continue
		}
		delete(data, link.Field)

		extID, ok := asInt32(raw)
		if !ok {
			continue
		}
		owner, err := s.store.GetExtensionOwner(ctx, extID)
		if err != nil {
			slog.Warn("resolving link field failed", "field", link.Field, "error", err)
			continue
		}
		if owner == nil {
			continue
		}
		data[link.Field+"_ref"] = map[string]any{
			"slug":      owner.Slug,
			"title":     owner.Title,
			"item_type": string(owner.ItemType),
		}
	}
}

// asInt32 coerces the JSON representations a link field may take.
func asInt32(value any) (int32, bool) {
	switch v := value.(type) {
	case int32:
		return v, true
	case int:
		return int32(v), true
	case int64:
		return int32(v), true
	case float64:
		return int32(v), true
	default:
		return 0, false
	}
}
