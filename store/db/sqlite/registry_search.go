package sqlite

import (
	"context"
	"strings"

	"github.com/pkg/errors"

	"github.com/sena-services/registry/store"
)

// FulltextSearchRegistryItems is not supported on SQLite. Returning the
// sentinel keeps the fallback chain identical across drivers: the caller
// degrades to LIKE search.
func (d *DB) FulltextSearchRegistryItems(_ context.Context, _ string, _ *store.FindRegistryItem, _ string, _, _ int) ([]*store.RegistryItem, int, error) {
	return nil, 0, store.ErrFulltextUnsupported
}

// LikeSearchRegistryItems is the universal fallback: substring match over
// title, description and tags, plus one EXISTS check per requested tag
// (AND-combined). Counting uses DISTINCT to stay immune to tag join fan-out.
func (d *DB) LikeSearchRegistryItems(ctx context.Context, q string, tags []string, find *store.FindRegistryItem, orderBy string, limit, offset int) ([]*store.RegistryItem, int, error) {
	where, args := []string{"1 = 1"}, []any{}

	if find.ItemType != nil {
		where, args = append(where, "r.item_type = ?"), append(args, *find.ItemType)
	}
	if find.Category != nil {
		where, args = append(where, "r.category = ?"), append(args, *find.Category)
	}
	if find.TrustStatus != nil {
		where, args = append(where, "r.trust_status = ?"), append(args, *find.TrustStatus)
	}
	if find.Featured != nil {
		where, args = append(where, "r.featured = ?"), append(args, *find.Featured)
	}

	if q != "" {
		pattern := "%" + q + "%"
		where = append(where, "(r.title LIKE ? OR r.description LIKE ? OR rt_search.tag LIKE ?)")
		args = append(args, pattern, pattern, pattern)
	}

	for _, tag := range tags {
		where = append(where, "EXISTS (SELECT 1 FROM registry_tag rt WHERE rt.registry_id = r.id AND LOWER(rt.tag) = ?)")
		args = append(args, strings.ToLower(tag))
	}

	condition := strings.Join(where, " AND ")

	var total int
	countQuery := `
		SELECT COUNT(DISTINCT r.id)
		FROM registry r
		LEFT JOIN registry_tag rt_search ON rt_search.registry_id = r.id
		WHERE ` + condition
	if err := d.db.QueryRowContext(ctx, countQuery, args...).Scan(&total); err != nil {
		return nil, 0, errors.Wrap(err, "failed to count like search results")
	}

	if orderBy == "" {
		orderBy = store.SortClause("featured")
	}
	query := `
		SELECT DISTINCT r.id, r.slug, r.title, r.item_type, r.category, r.description,
			r.trust_status, r.featured, r.visibility, r.author, r.version, r.install_count,
			r.source_url, r.readme, IFNULL(r.search_text, ''), r.created_ts, r.updated_ts
		FROM registry r
		LEFT JOIN registry_tag rt_search ON rt_search.registry_id = r.id
		WHERE ` + condition + `
		ORDER BY ` + qualifyOrderBy(orderBy) + `
		LIMIT ? OFFSET ?`
	args = append(args, limit, offset)

	rows, err := d.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, 0, errors.Wrap(err, "failed to run like search")
	}
	defer rows.Close()

	items := []*store.RegistryItem{}
	for rows.Next() {
		item, err := scanItem(rows, false)
		if err != nil {
			return nil, 0, errors.Wrap(err, "failed to scan like search result")
		}
		items = append(items, item)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, errors.Wrap(err, "failed to iterate like search results")
	}
	return items, total, nil
}

// qualifyOrderBy prefixes each sort term with the registry alias so ORDER BY
// columns stay unambiguous against the tag join.
func qualifyOrderBy(orderBy string) string {
	parts := strings.Split(orderBy, ",")
	for i, part := range parts {
		parts[i] = "r." + strings.TrimSpace(part)
	}
	return strings.Join(parts, ", ")
}
