package store

import (
	"context"
	"database/sql"
	"fmt"
)

// Schema is the DDL for the postgres store. Kept beside the store so the two
// cannot drift apart; EnsureSchema is idempotent.
const Schema = `
CREATE TABLE IF NOT EXISTS tags (
	id          uuid PRIMARY KEY,
	owner_id    uuid NOT NULL,
	name        text NOT NULL,
	color       text NOT NULL DEFAULT '',
	description text NOT NULL DEFAULT '',
	created_at  timestamptz NOT NULL,
	updated_at  timestamptz NOT NULL,
	UNIQUE (owner_id, name)
);

CREATE TABLE IF NOT EXISTS contacts (
	id         uuid PRIMARY KEY,
	owner_id   uuid NOT NULL,
	name       text NOT NULL,
	tag_ids    uuid[] NOT NULL DEFAULT '{}',
	group_ids  uuid[] NOT NULL DEFAULT '{}',
	created_at timestamptz NOT NULL,
	updated_at timestamptz NOT NULL
);

CREATE TABLE IF NOT EXISTS groups (
	id         uuid PRIMARY KEY,
	owner_id   uuid NOT NULL,
	name       text NOT NULL,
	group_type text NOT NULL,
	tag_ids    uuid[] NOT NULL DEFAULT '{}',
	member_ids uuid[] NOT NULL DEFAULT '{}',
	created_at timestamptz NOT NULL,
	updated_at timestamptz NOT NULL,
	UNIQUE (owner_id, name)
);

CREATE INDEX IF NOT EXISTS contacts_owner_idx ON contacts (owner_id);
CREATE INDEX IF NOT EXISTS tags_owner_idx ON tags (owner_id);
CREATE INDEX IF NOT EXISTS groups_owner_idx ON groups (owner_id);
CREATE INDEX IF NOT EXISTS groups_tag_ids_idx ON groups USING gin (tag_ids);
`

// EnsureSchema creates the tables and indexes if they do not exist yet.
func EnsureSchema(ctx context.Context, db *sql.DB) error {
	if _, err := db.ExecContext(ctx, Schema); err != nil {
		return fmt.Errorf("ensure schema: %w", err)
	}
	return nil
}
