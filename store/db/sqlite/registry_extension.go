package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"strings"

	"github.com/pkg/errors"

	"github.com/sena-services/registry/store"
)

func (d *DB) GetRegistryExtension(ctx context.Context, find *store.FindRegistryExtension) (*store.RegistryExtension, error) {
	where, args := []string{"1 = 1"}, []any{}
	if find.ID != nil {
		where, args = append(where, "id = ?"), append(args, *find.ID)
	}
	if find.RegistryID != nil {
		where, args = append(where, "registry_id = ?"), append(args, *find.RegistryID)
	}

	var ext store.RegistryExtension
	var rawPayload string
	err := d.db.QueryRowContext(ctx, `
		SELECT id, registry_id, kind, payload
		FROM registry_extension
		WHERE `+strings.Join(where, " AND "),
		args...,
	).Scan(&ext.ID, &ext.RegistryID, &ext.Kind, &rawPayload)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, errors.Wrap(err, "failed to get registry extension")
	}

	if err := json.Unmarshal([]byte(rawPayload), &ext.Payload); err != nil {
		return nil, errors.Wrap(err, "failed to decode extension payload")
	}
	return &ext, nil
}

func (d *DB) UpdateRegistryExtension(ctx context.Context, update *store.UpdateRegistryExtension) (*store.RegistryExtension, error) {
	payload, err := json.Marshal(update.Payload)
	if err != nil {
		return nil, errors.Wrap(err, "failed to encode extension payload")
	}
	if _, err := d.db.ExecContext(ctx,
		"UPDATE registry_extension SET payload = ? WHERE id = ?",
		string(payload), update.ID,
	); err != nil {
		return nil, errors.Wrap(err, "failed to update registry extension")
	}
	return d.GetRegistryExtension(ctx, &store.FindRegistryExtension{ID: &update.ID})
}

// GetExtensionOwner maps an extension record back to its owning registry
// item. Dangling references resolve to nil, not an error.
func (d *DB) GetExtensionOwner(ctx context.Context, extensionID int32) (*store.RegistryItem, error) {
	var item store.RegistryItem
	err := d.db.QueryRowContext(ctx, `
		SELECT r.id, r.slug, r.title, r.item_type
		FROM registry_extension e
		JOIN registry r ON r.id = e.registry_id
		WHERE e.id = ?
	`, extensionID).Scan(&item.ID, &item.Slug, &item.Title, &item.ItemType)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, errors.Wrap(err, "failed to resolve extension owner")
	}
	return &item, nil
}
