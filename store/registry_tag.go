package store

import (
	"context"
	"fmt"
)

// RegistryTag is a single tag attached to a registry item. Tags behave as an
// unordered set per item.
type RegistryTag struct {
	ID         int32
	RegistryID int32
	Tag        string
}

// FindRegistryTag is the find condition for registry tags.
type FindRegistryTag struct {
	RegistryID *int32
	Tag        *string
}

// UpsertRegistryTag is the upsert condition for a registry tag.
type UpsertRegistryTag struct {
	RegistryID int32
	Tag        string
}

func tagCacheKey(registryID int32) string {
	return fmt.Sprintf("tags/%d", registryID)
}

// UpsertRegistryTag inserts a tag for an item, ignoring duplicates.
func (s *Store) UpsertRegistryTag(ctx context.Context, upsert *UpsertRegistryTag) error {
	if err := s.driver.UpsertRegistryTag(ctx, upsert); err != nil {
		return err
	}
	s.tagCache.Delete(tagCacheKey(upsert.RegistryID))
	return nil
}

// ListRegistryTags lists tags matching find. Lookups by registry id are
// cached since tag attachment runs once per returned search result.
func (s *Store) ListRegistryTags(ctx context.Context, find *FindRegistryTag) ([]*RegistryTag, error) {
	cacheable := find.RegistryID != nil && find.Tag == nil
	if cacheable {
		if cached, ok := s.tagCache.Get(tagCacheKey(*find.RegistryID)); ok {
			return cached.([]*RegistryTag), nil
		}
	}
	tags, err := s.driver.ListRegistryTags(ctx, find)
	if err != nil {
		return nil, err
	}
	if cacheable {
		s.tagCache.SetDefault(tagCacheKey(*find.RegistryID), tags)
	}
	return tags, nil
}

// DeleteRegistryTags removes all tags for an item.
func (s *Store) DeleteRegistryTags(ctx context.Context, registryID int32) error {
	if err := s.driver.DeleteRegistryTags(ctx, registryID); err != nil {
		return err
	}
	s.tagCache.Delete(tagCacheKey(registryID))
	return nil
}
