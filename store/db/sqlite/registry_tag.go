package sqlite

import (
	"context"
	"strings"

	"github.com/pkg/errors"

	"github.com/sena-services/registry/store"
)

func (d *DB) UpsertRegistryTag(ctx context.Context, upsert *store.UpsertRegistryTag) error {
	_, err := d.db.ExecContext(ctx, `
		INSERT INTO registry_tag (registry_id, tag)
		VALUES (?, ?)
		ON CONFLICT (registry_id, tag) DO NOTHING
	`, upsert.RegistryID, upsert.Tag)
	if err != nil {
		return errors.Wrap(err, "failed to upsert registry tag")
	}
	return nil
}

func (d *DB) ListRegistryTags(ctx context.Context, find *store.FindRegistryTag) ([]*store.RegistryTag, error) {
	where, args := []string{"1 = 1"}, []any{}
	if find.RegistryID != nil {
		where, args = append(where, "registry_id = ?"), append(args, *find.RegistryID)
	}
	if find.Tag != nil {
		where, args = append(where, "tag = ?"), append(args, *find.Tag)
	}

	rows, err := d.db.QueryContext(ctx, `
		SELECT id, registry_id, tag
		FROM registry_tag
		WHERE `+strings.Join(where, " AND ")+`
		ORDER BY tag ASC
	`, args...)
	if err != nil {
		return nil, errors.Wrap(err, "failed to list registry tags")
	}
	defer rows.Close()

	tags := []*store.RegistryTag{}
	for rows.Next() {
		var tag store.RegistryTag
		if err := rows.Scan(&tag.ID, &tag.RegistryID, &tag.Tag); err != nil {
			return nil, errors.Wrap(err, "failed to scan registry tag")
		}
		tags = append(tags, &tag)
	}
	if err := rows.Err(); err != nil {
		return nil, errors.Wrap(err, "failed to iterate registry tags")
	}
	return tags, nil
}

func (d *DB) DeleteRegistryTags(ctx context.Context, registryID int32) error {
	if _, err := d.db.ExecContext(ctx, "DELETE FROM registry_tag WHERE registry_id = ?", registryID); err != nil {
		return errors.Wrap(err, "failed to delete registry tags")
	}
	return nil
}
