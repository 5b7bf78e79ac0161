package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/pkg/errors"

	"github.com/sena-services/registry/store"
)

const registryItemFields = `id, slug, title, item_type, category, description, trust_status, featured,
	visibility, author, version, install_count, source_url, readme, IFNULL(search_text, ''), created_ts, updated_ts`

// decodeEmbedding parses a stored JSON embedding. Corrupt payloads yield nil
// rather than an error; semantic search skips such rows.
func decodeEmbedding(raw sql.NullString) []float32 {
	if !raw.Valid || raw.String == "" {
		return nil
	}
	var vec []float32
	if err := json.Unmarshal([]byte(raw.String), &vec); err != nil {
		return nil
	}
	return vec
}

func encodeEmbedding(vec []float32) (string, error) {
	buf, err := json.Marshal(vec)
	if err != nil {
		return "", errors.Wrap(err, "failed to encode embedding")
	}
	return string(buf), nil
}

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

	result, err := tx.ExecContext(ctx, `
		INSERT INTO registry (slug, title, item_type, category, description, trust_status, featured,
			visibility, author, version, install_count, source_url, readme, created_ts, updated_ts)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
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
	)
	if err != nil {
		return nil, errors.Wrap(err, "failed to insert registry item")
	}
	id, err := result.LastInsertId()
	if err != nil {
		return nil, errors.Wrap(err, "failed to get registry item id")
	}

	// The extension record always exists, created empty and populated in a
	// second pass by the caller.
	if _, err := tx.ExecContext(ctx,
		"INSERT INTO registry_extension (registry_id, kind, payload) VALUES (?, ?, '{}')",
		id, create.ItemType,
	); err != nil {
		return nil, errors.Wrap(err, "failed to insert registry extension")
	}

	if err := tx.Commit(); err != nil {
		return nil, errors.Wrap(err, "failed to commit transaction")
	}

	create.ID = int32(id)
	create.CreatedTs = now
	create.UpdatedTs = now
	return create, nil
}

func buildItemFilter(find *store.FindRegistryItem) (string, []any) {
	where, args := []string{"1 = 1"}, []any{}
	if find.ID != nil {
		where, args = append(where, "id = ?"), append(args, *find.ID)
	}
	if find.Slug != nil {
		where, args = append(where, "slug = ?"), append(args, *find.Slug)
	}
	if find.Title != nil {
		where, args = append(where, "title = ?"), append(args, *find.Title)
	}
	if find.ItemType != nil {
		where, args = append(where, "item_type = ?"), append(args, *find.ItemType)
	}
	if find.Category != nil {
		where, args = append(where, "category = ?"), append(args, *find.Category)
	}
	if find.TrustStatus != nil {
		where, args = append(where, "trust_status = ?"), append(args, *find.TrustStatus)
	}
	if find.Featured != nil {
		where, args = append(where, "featured = ?"), append(args, *find.Featured)
	}
	if find.HasEmbedding {
		where = append(where, "embedding IS NOT NULL")
	}
	return strings.Join(where, " AND "), args
}

func scanItem(rows interface{ Scan(...any) error }, withEmbedding bool) (*store.RegistryItem, error) {
	var item store.RegistryItem
	dest := []any{
		&item.ID, &item.Slug, &item.Title, &item.ItemType, &item.Category,
		&item.Description, &item.TrustStatus, &item.Featured, &item.Visibility,
		&item.Author, &item.Version, &item.InstallCount, &item.SourceURL,
		&item.Readme, &item.SearchText, &item.CreatedTs, &item.UpdatedTs,
	}
	var rawEmbedding sql.NullString
	if withEmbedding {
		dest = append(dest, &rawEmbedding)
	}
	if err := rows.Scan(dest...); err != nil {
		return nil, err
	}
	if withEmbedding {
		item.Embedding = decodeEmbedding(rawEmbedding)
	}
	return &item, nil
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
	where, args := buildItemFilter(find)

	fields := registryItemFields
	if find.HasEmbedding {
		fields += ", embedding"
	}

	query := "SELECT " + fields + " FROM registry WHERE " + where
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
		item, err := scanItem(rows, find.HasEmbedding)
		if err != nil {
			return nil, errors.Wrap(err, "failed to scan registry item")
		}
		items = append(items, item)
	}
	if err := rows.Err(); err != nil {
		return nil, errors.Wrap(err, "failed to iterate registry items")
	}
	return items, nil
}

func (d *DB) CountRegistryItems(ctx context.Context, find *store.FindRegistryItem) (int, error) {
	where, args := buildItemFilter(find)
	var count int
	err := d.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM registry WHERE "+where, args...).Scan(&count)
	if err != nil {
		return 0, errors.Wrap(err, "failed to count registry items")
	}
	return count, nil
}

// UpdateRegistryItemIndex writes the recomputed search text and, when
// provided, the embedding. updated_ts is intentionally untouched so reindex
// runs do not masquerade as edits.
func (d *DB) UpdateRegistryItemIndex(ctx context.Context, update *store.UpdateRegistryItemIndex) error {
	if update.Embedding == nil {
		_, err := d.db.ExecContext(ctx, "UPDATE registry SET search_text = ? WHERE id = ?", update.SearchText, update.ID)
		if err != nil {
			return errors.Wrap(err, "failed to update search text")
		}
		return nil
	}

	encoded, err := encodeEmbedding(update.Embedding)
	if err != nil {
		return err
	}
	if _, err := d.db.ExecContext(ctx,
		"UPDATE registry SET search_text = ?, embedding = ? WHERE id = ?",
		update.SearchText, encoded, update.ID,
	); err != nil {
		return errors.Wrap(err, "failed to update search index")
	}
	return nil
}
