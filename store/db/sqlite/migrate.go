package sqlite

import (
	"context"

	"github.com/pkg/errors"
)

const latestSchema = `
CREATE TABLE IF NOT EXISTS registry (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	slug TEXT NOT NULL UNIQUE,
	title TEXT NOT NULL,
	item_type TEXT NOT NULL,
	category TEXT NOT NULL DEFAULT '',
	description TEXT NOT NULL DEFAULT '',
	trust_status TEXT NOT NULL DEFAULT 'pending',
	featured INTEGER NOT NULL DEFAULT 0,
	visibility TEXT NOT NULL DEFAULT 'public',
	author TEXT NOT NULL DEFAULT '',
	version TEXT NOT NULL DEFAULT '',
	install_count INTEGER NOT NULL DEFAULT 0,
	source_url TEXT NOT NULL DEFAULT '',
	readme TEXT NOT NULL DEFAULT '',
	search_text TEXT,
	embedding TEXT,
	created_ts BIGINT NOT NULL,
	updated_ts BIGINT NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_registry_item_type ON registry (item_type);
CREATE INDEX IF NOT EXISTS idx_registry_trust_status ON registry (trust_status);

CREATE TABLE IF NOT EXISTS registry_tag (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	registry_id INTEGER NOT NULL,
	tag TEXT NOT NULL,
	UNIQUE(registry_id, tag)
);

CREATE INDEX IF NOT EXISTS idx_registry_tag_registry_id ON registry_tag (registry_id);

CREATE TABLE IF NOT EXISTS registry_extension (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	registry_id INTEGER NOT NULL UNIQUE,
	kind TEXT NOT NULL,
	payload TEXT NOT NULL DEFAULT '{}'
);
`

// Migrate applies the latest schema. All statements are IF NOT EXISTS, so
// re-running is safe.
func (d *DB) Migrate(ctx context.Context) error {
	if _, err := d.db.ExecContext(ctx, latestSchema); err != nil {
		return errors.Wrap(err, "failed to apply schema")
	}
	return nil
}
