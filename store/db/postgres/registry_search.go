package postgres

import (
	"context"
	"strings"

	"github.com/pkg/errors"

	"github.com/sena-services/registry/store"
)

// FulltextSearchRegistryItems ranks matches of the denormalized search_text
// with ts_rank. Errors propagate unhandled; the orchestrator owns the
// decision to fall back to LIKE search.
func (d *DB) FulltextSearchRegistryItems(ctx context.Context, q string, find *store.FindRegistryItem, orderBy string, limit, offset int) ([]*store.RegistryItem, int, error) {
	where, args := buildSearchFilter(find, 2)
	args = append([]any{q}, args...)
	where = append(where, "to_tsvector('english', coalesce(r.search_text, '')) @@ plainto_tsquery('english', $1)")
	condition := strings.Join(where, " AND ")

	var total int
	if err := d.db.QueryRowContext(ctx,
		"SELECT COUNT(*) FROM registry r WHERE "+condition,
		args...,
	).Scan(&total); err != nil {
		return nil, 0, errors.Wrap(err, "failed to count fulltext results")
	}

	if orderBy == "" {
		orderBy = "relevance DESC"
	} else {
		orderBy = qualifyOrderBy(orderBy)
	}

	query := `
		SELECT r.id, r.slug, r.title, r.item_type, r.category, r.description,
			r.trust_status, r.featured, r.visibility, r.author, r.version, r.install_count,
			r.source_url, r.readme, coalesce(r.search_text, ''), r.created_ts, r.updated_ts,
			ts_rank(to_tsvector('english', coalesce(r.search_text, '')), plainto_tsquery('english', $1)) AS relevance
		FROM registry r
		WHERE ` + condition + `
		ORDER BY ` + orderBy + `
		LIMIT ` + placeholder(len(args)+1) + ` OFFSET ` + placeholder(len(args)+2)
	args = append(args, limit, offset)

	rows, err := d.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, 0, errors.Wrap(err, "failed to run fulltext search")
	}
	defer rows.Close()

	items := []*store.RegistryItem{}
	for rows.Next() {
		var item store.RegistryItem
		var relevance float64
		if err := rows.Scan(
			&item.ID, &item.Slug, &item.Title, &item.ItemType, &item.Category,
			&item.Description, &item.TrustStatus, &item.Featured, &item.Visibility,
			&item.Author, &item.Version, &item.InstallCount, &item.SourceURL,
			&item.Readme, &item.SearchText, &item.CreatedTs, &item.UpdatedTs,
			&relevance,
		); err != nil {
			return nil, 0, errors.Wrap(err, "failed to scan fulltext result")
		}
		// relevance is only a sort key; it never leaves the driver.
		items = append(items, &item)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, errors.Wrap(err, "failed to iterate fulltext results")
	}
	return items, total, nil
}

// LikeSearchRegistryItems mirrors the SQLite implementation with positional
// placeholders. See that driver for the predicate semantics.
func (d *DB) LikeSearchRegistryItems(ctx context.Context, q string, tags []string, find *store.FindRegistryItem, orderBy string, limit, offset int) ([]*store.RegistryItem, int, error) {
	where, args := buildSearchFilter(find, 1)

	if q != "" {
		pattern := "%" + q + "%"
		p1, p2, p3 := placeholder(len(args)+1), placeholder(len(args)+2), placeholder(len(args)+3)
		where = append(where, "(r.title ILIKE "+p1+" OR r.description ILIKE "+p2+" OR rt_search.tag ILIKE "+p3+")")
		args = append(args, pattern, pattern, pattern)
	}

	for _, tag := range tags {
		where = append(where,
			"EXISTS (SELECT 1 FROM registry_tag rt WHERE rt.registry_id = r.id AND LOWER(rt.tag) = "+placeholder(len(args)+1)+")")
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
			r.source_url, r.readme, coalesce(r.search_text, ''), r.created_ts, r.updated_ts
		FROM registry r
		LEFT JOIN registry_tag rt_search ON rt_search.registry_id = r.id
		WHERE ` + condition + `
		ORDER BY ` + qualifyOrderBy(orderBy) + `
		LIMIT ` + placeholder(len(args)+1) + ` OFFSET ` + placeholder(len(args)+2)
	args = append(args, limit, offset)

	rows, err := d.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, 0, errors.Wrap(err, "failed to run like search")
	}
	defer rows.Close()

	items := []*store.RegistryItem{}
	for rows.Next() {
		var item store.RegistryItem
		if err := rows.Scan(
			&item.ID, &item.Slug, &item.Title, &item.ItemType, &item.Category,
			&item.Description, &item.TrustStatus, &item.Featured, &item.Visibility,
			&item.Author, &item.Version, &item.InstallCount, &item.SourceURL,
			&item.Readme, &item.SearchText, &item.CreatedTs, &item.UpdatedTs,
		); err != nil {
			return nil, 0, errors.Wrap(err, "failed to scan like search result")
		}
		items = append(items, &item)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, errors.Wrap(err, "failed to iterate like search results")
	}
	return items, total, nil
}

// buildSearchFilter builds the alias-qualified equality conjuncts shared by
// the fulltext and like paths.
func buildSearchFilter(find *store.FindRegistryItem, startIndex int) ([]string, []any) {
	where, args := []string{"1 = 1"}, []any{}
	next := func() string { return placeholder(startIndex + len(args)) }
	if find.ItemType != nil {
		where, args = append(where, "r.item_type = "+next()), append(args, *find.ItemType)
	}
	if find.Category != nil {
		where, args = append(where, "r.category = "+next()), append(args, *find.Category)
	}
	if find.TrustStatus != nil {
		where, args = append(where, "r.trust_status = "+next()), append(args, *find.TrustStatus)
	}
	if find.Featured != nil {
		where, args = append(where, "r.featured = "+next()), append(args, *find.Featured)
	}
	return where, args
}

func qualifyOrderBy(orderBy string) string {
	parts := strings.Split(orderBy, ",")
	for i, part := range parts {
		parts[i] = "r." + strings.TrimSpace(part)
	}
	return strings.Join(parts, ", ")
}
