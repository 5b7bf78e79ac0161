package postgres

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"github.com/pkg/errors"

	// Import the Postgres driver.
	_ "github.com/lib/pq"

	"github.com/sena-services/registry/internal/profile"
	"github.com/sena-services/registry/store"
)

// Postgres is the production backend: pgvector for embedding storage and a
// GIN-indexed tsvector expression for the full-text stage.
type DB struct {
	db      *sql.DB
	profile *profile.Profile
}

// NewDB opens a Postgres connection using the profile DSN.
func NewDB(profile *profile.Profile) (store.Driver, error) {
	if profile.DSN == "" {
		return nil, errors.New("dsn required")
	}

	pgDB, err := sql.Open("postgres", profile.DSN)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to open db with dsn: %s", profile.DSN)
	}

	pgDB.SetMaxOpenConns(10)
	pgDB.SetMaxIdleConns(5)

	driver := DB{db: pgDB, profile: profile}

	return &driver, nil
}

func (d *DB) GetDB() *sql.DB {
	return d.db
}

func (d *DB) Close() error {
	return d.db.Close()
}

// placeholder returns the n-th positional bind marker.
func placeholder(n int) string {
	return fmt.Sprintf("$%d", n)
}

// placeholders returns "$1, $2, ..., $n".
func placeholders(n int) string {
	list := make([]string, n)
	for i := range list {
		list[i] = placeholder(i + 1)
	}
	return strings.Join(list, ", ")
}

const latestSchema = `
CREATE EXTENSION IF NOT EXISTS vector;

CREATE TABLE IF NOT EXISTS registry (
	id SERIAL PRIMARY KEY,
	slug TEXT NOT NULL UNIQUE,
	title TEXT NOT NULL,
	item_type TEXT NOT NULL,
	category TEXT NOT NULL DEFAULT '',
	description TEXT NOT NULL DEFAULT '',
	trust_status TEXT NOT NULL DEFAULT 'pending',
	featured BOOLEAN NOT NULL DEFAULT FALSE,
	visibility TEXT NOT NULL DEFAULT 'public',
	author TEXT NOT NULL DEFAULT '',
	version TEXT NOT NULL DEFAULT '',
	install_count INTEGER NOT NULL DEFAULT 0,
	source_url TEXT NOT NULL DEFAULT '',
	readme TEXT NOT NULL DEFAULT '',
	search_text TEXT,
	embedding vector,
	created_ts BIGINT NOT NULL,
	updated_ts BIGINT NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_registry_item_type ON registry (item_type);
CREATE INDEX IF NOT EXISTS idx_registry_trust_status ON registry (trust_status);
CREATE INDEX IF NOT EXISTS idx_registry_search_text ON registry USING GIN (to_tsvector('english', coalesce(search_text, '')));

CREATE TABLE IF NOT EXISTS registry_tag (
	id SERIAL PRIMARY KEY,
	registry_id INTEGER NOT NULL,
	tag TEXT NOT NULL,
	UNIQUE(registry_id, tag)
);

CREATE INDEX IF NOT EXISTS idx_registry_tag_registry_id ON registry_tag (registry_id);

CREATE TABLE IF NOT EXISTS registry_extension (
	id SERIAL PRIMARY KEY,
	registry_id INTEGER NOT NULL UNIQUE,
	kind TEXT NOT NULL,
	payload JSONB NOT NULL DEFAULT '{}'
);
`

// Migrate applies the latest schema. Idempotent.
func (d *DB) Migrate(ctx context.Context) error {
	if _, err := d.db.ExecContext(ctx, latestSchema); err != nil {
		return errors.Wrap(err, "failed to apply schema")
	}
	return nil
}
