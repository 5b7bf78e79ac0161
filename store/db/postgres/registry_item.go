package postgres

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/pgvector/pgvector-go"
	"github.com/pkg/errors"

	"github.com/sena-services/registry/store"
)

const registryItemFields = `id, slug, title, item_type, category, description, trust_status, featured,
	visibility, author, version, install_count, source_url, readme, coalesce(search_text, ''), created_ts, updated_ts`

func (d *DB) CreateRegistryItem(ctx context.Context, create *store.RegistryItem) (*store.RegistryItem, error) {
	tx, err := d.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, errors.Wrap(err, "failed to begin transaction")
	}
	defer tx.Rollback()

	now := time.Now().Unix()
	if create.Visibility == "" {
		create.Visibility = "public"
	}
	if create.TrustStatus == "" {
		create.TrustStatus = store.TrustStatusPending
	}

	err = tx.QueryRowContext(ctx, `
		INSERT INTO registry (slug, title, item_type, category, description, trust_status, featured,
			visibility, author, version, install_count, source_url, readme, created_ts, updated_ts)
		VALUES (`+placeholders(15)+`)
		RETURNING id
	`,
		create.Slug,
		create.Title,
		create.ItemType,
		create.Category,
		create.Description,
		create.TrustStatus,
		create.Featured,
		create.Visibility,
		create.Author,
		create.Version,
		create.InstallCount,
		create.SourceURL,
		create.Readme,
		now,
		now,
	).Scan(&create.ID)
	if err != nil {
		return nil, errors.Wrap(err, "failed to insert registry item")
	}

	if _, err := tx.ExecContext(ctx,
		"INSERT INTO registry_extension (registry_id, kind, payload) VALUES ($1, $2, '{}')",
		create.ID, create.ItemType,
	); err != nil {
		return nil, errors.Wrap(err, "failed to insert registry extension")
	}

	if err := tx.Commit(); err != nil {
		return nil, errors.Wrap(err, "failed to commit transaction")
	}

	create.CreatedTs = now
	create.UpdatedTs = now
	return create, nil
}

func buildItemFilter(find *store.FindRegistryItem, startIndex int) ([]string, []any) {
	where, args := []string{"1 = 1"}, []any{}
	next := func() string { return placeholder(startIndex + len(args)) }
	if find.ID != nil {
		where, args = append(where, "id = "+next()), append(args, *find.ID)
	}
	if find.Slug != nil {
		where, args = append(where, "slug = "+next()), append(args, *find.Slug)
	}
	if find.Title != nil {
		where, args = append(where, "title = "+next()), append(args, *find.Title)
	}
	if find.ItemType != nil {
		where, args = append(where, "item_type = "+next()), append(args, *find.ItemType)
	}
	if find.Category != nil {
		where, args = append(where, "category = "+next()), append(args, *find.Category)
	}
	if find.TrustStatus != nil {
		where, args = append(where, "trust_status = "+next()), append(args, *find.TrustStatus)
	}
	if find.Featured != nil {
		where, args = append(where, "featured = "+next()), append(args, *find.Featured)
	}
	if find.HasEmbedding {
		where = append(where, "embedding IS NOT NULL")
	}
	return where, args
}

func (d *DB) GetRegistryItem(ctx context.Context, find *store.FindRegistryItem) (*store.RegistryItem, error) {
	limit := 1
	clone := *find
	clone.Limit = &limit
	items, err := d.ListRegistryItems(ctx, &clone)
	if err != nil {
		return nil, err
	}
	if len(items) == 0 {
		return nil, nil
	}
	return items[0], nil
}

func (d *DB) ListRegistryItems(ctx context.Context, find *store.FindRegistryItem) ([]*store.RegistryItem, error) {
	where, args := buildItemFilter(find, 1)

	fields := registryItemFields
	if find.HasEmbedding {
		fields += ", embedding"
	}

	query := "SELECT " + fields + " FROM registry WHERE " + strings.Join(where, " AND ")
	if find.OrderBy != "" {
		query += " ORDER BY " + find.OrderBy
	}
	if find.Limit != nil {
		query += fmt.Sprintf(" LIMIT %d", *find.Limit)
		if find.Offset != nil {
			query += fmt.Sprintf(" OFFSET %d", *find.Offset)
		}
	}

	rows, err := d.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, errors.Wrap(err, "failed to list registry items")
	}
	defer rows.Close()

	items := []*store.RegistryItem{}
	for rows.Next() {
		var item store.RegistryItem
		dest := []any{
			&item.ID, &item.Slug, &item.Title, &item.ItemType, &item.Category,
			&item.Description, &item.TrustStatus, &item.Featured, &item.Visibility,
			&item.Author, &item.Version, &item.InstallCount, &item.SourceURL,
			&item.Readme, &item.SearchText, &item.CreatedTs, &item.UpdatedTs,
		}
		var vector pgvector.Vector
		if find.HasEmbedding {
			dest = append(dest, &vector)
		}
		if err := rows.Scan(dest...); err != nil {
			return nil, errors.Wrap(err, "failed to scan registry item")
		}
		if find.HasEmbedding {
			item.Embedding = vector.Slice()
		}
		items = append(items, &item)
	}
	if err := rows.Err(); err != nil {
		return nil, errors.Wrap(err, "failed to iterate registry items")
	}
	return items, nil
}

func (d *DB) CountRegistryItems(ctx context.Context, find *store.FindRegistryItem) (int, error) {
	where, args := buildItemFilter(find, 1)
	var count int
	err := d.db.QueryRowContext(ctx,
		"SELECT COUNT(*) FROM registry WHERE "+strings.Join(where, " AND "),
		args...,
	).Scan(&count)
	if err != nil {
		return 0, errors.Wrap(err, "failed to count registry items")
	}
	return count, nil
}

func (d *DB) UpdateRegistryItemIndex(ctx context.Context, update *store.UpdateRegistryItemIndex) error {
	if update.Embedding == nil {
		if _, err := d.db.ExecContext(ctx,
			"UPDATE registry SET search_text = $1 WHERE id = $2",
			update.SearchText, update.ID,
		); err != nil {
			return errors.Wrap(err, "failed to update search text")
		}
		return nil
	}

	if _, err := d.db.ExecContext(ctx,
		"UPDATE registry SET search_text = $1, embedding = $2 WHERE id = $3",
		update.SearchText, pgvector.NewVector(update.Embedding), update.ID,
	); err != nil {
		return errors.Wrap(err, "failed to update search index")
	}
	return nil
}
