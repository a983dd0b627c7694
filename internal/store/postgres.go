package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/lib/pq"

	"tagdex/internal/models"
	id "tagdex/pkg/domain"
	"tagdex/pkg/platform/sentinel"
)

// Postgres persists entities in PostgreSQL. Tag and member references are
// stored as uuid[] columns; ApplyBatch commits everything in one transaction.
type Postgres struct {
	db *sql.DB
}

// NewPostgres constructs a PostgreSQL-backed store.
func NewPostgres(db *sql.DB) *Postgres {
	return &Postgres{db: db}
}

const uniqueViolation = "23505"

func mapPQError(err error, op string) error {
	var pqErr *pq.Error
	if errors.As(err, &pqErr) && pqErr.Code == uniqueViolation {
		return fmt.Errorf("%s: %w", op, sentinel.ErrAlreadyUsed)
	}
	return fmt.Errorf("%s: %w", op, err)
}

func (s *Postgres) GetContact(ctx context.Context, owner id.OwnerID, contactID id.ContactID) (*models.Contact, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT id, owner_id, name, tag_ids, group_ids, created_at, updated_at
		 FROM contacts WHERE owner_id = $1 AND id = $2`,
		uuid.UUID(owner), uuid.UUID(contactID))
	return scanContact(row)
}

func (s *Postgres) GetTag(ctx context.Context, owner id.OwnerID, tagID id.TagID) (*models.Tag, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT id, owner_id, name, color, description, created_at, updated_at
		 FROM tags WHERE owner_id = $1 AND id = $2`,
		uuid.UUID(owner), uuid.UUID(tagID))
	return scanTag(row)
}

func (s *Postgres) GetGroup(ctx context.Context, owner id.OwnerID, groupID id.GroupID) (*models.Group, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT id, owner_id, name, group_type, tag_ids, member_ids, created_at, updated_at
		 FROM groups WHERE owner_id = $1 AND id = $2`,
		uuid.UUID(owner), uuid.UUID(groupID))
	return scanGroup(row)
}

func (s *Postgres) ListContacts(ctx context.Context, owner id.OwnerID) ([]*models.Contact, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, owner_id, name, tag_ids, group_ids, created_at, updated_at
		 FROM contacts WHERE owner_id = $1 ORDER BY created_at`,
		uuid.UUID(owner))
	if err != nil {
		return nil, fmt.Errorf("list contacts: %w", err)
	}
	defer rows.Close()

	var out []*models.Contact
	for rows.Next() {
		c, err := scanContact(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, c)
	}
	return out, rows.Err()
}

func (s *Postgres) ListTags(ctx context.Context, owner id.OwnerID) ([]*models.Tag, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, owner_id, name, color, description, created_at, updated_at
		 FROM tags WHERE owner_id = $1 ORDER BY created_at`,
		uuid.UUID(owner))
	if err != nil {
		return nil, fmt.Errorf("list tags: %w", err)
	}
	defer rows.Close()

	var out []*models.Tag
	for rows.Next() {
		t, err := scanTag(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, t)
	}
	return out, rows.Err()
}

func (s *Postgres) ListGroups(ctx context.Context, owner id.OwnerID) ([]*models.Group, error) {
	return s.queryGroups(ctx,
		`SELECT id, owner_id, name, group_type, tag_ids, member_ids, created_at, updated_at
		 FROM groups WHERE owner_id = $1 ORDER BY created_at`,
		uuid.UUID(owner))
}

func (s *Postgres) ListGroupsReferencingTag(ctx context.Context, owner id.OwnerID, tagID id.TagID) ([]*models.Group, error) {
	return s.queryGroups(ctx,
		`SELECT id, owner_id, name, group_type, tag_ids, member_ids, created_at, updated_at
		 FROM groups WHERE owner_id = $1 AND tag_ids @> ARRAY[$2]::uuid[]`,
		uuid.UUID(owner), uuid.UUID(tagID))
}

func (s *Postgres) queryGroups(ctx context.Context, query string, args ...any) ([]*models.Group, error) {
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list groups: %w", err)
	}
	defer rows.Close()

	var out []*models.Group
	for rows.Next() {
		g, err := scanGroup(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, g)
	}
	return out, rows.Err()
}

func (s *Postgres) FindTagByName(ctx context.Context, owner id.OwnerID, name string) (*models.Tag, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT id, owner_id, name, color, description, created_at, updated_at
		 FROM tags WHERE owner_id = $1 AND name = $2`,
		uuid.UUID(owner), name)
	return scanTag(row)
}

func (s *Postgres) FindGroupByName(ctx context.Context, owner id.OwnerID, name string) (*models.Group, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT id, owner_id, name, group_type, tag_ids, member_ids, created_at, updated_at
		 FROM groups WHERE owner_id = $1 AND name = $2`,
		uuid.UUID(owner), name)
	return scanGroup(row)
}

// ApplyBatch commits all staged writes in a single transaction.
func (s *Postgres) ApplyBatch(ctx context.Context, owner id.OwnerID, batch *WriteBatch) error {
	if batch == nil || batch.Empty() {
		return nil
	}
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin batch: %w", err)
	}
	defer func() {
		_ = tx.Rollback()
	}()

	for _, c := range batch.Contacts() {
		_, err := tx.ExecContext(ctx,
			`INSERT INTO contacts (id, owner_id, name, tag_ids, group_ids, created_at, updated_at)
			 VALUES ($1, $2, $3, $4::uuid[], $5::uuid[], $6, $7)
			 ON CONFLICT (id) DO UPDATE SET
				name = EXCLUDED.name, tag_ids = EXCLUDED.tag_ids,
				group_ids = EXCLUDED.group_ids, updated_at = EXCLUDED.updated_at`,
			uuid.UUID(c.ID), uuid.UUID(owner), c.Name,
			tagArray(c.TagIDs), groupArray(c.GroupIDs), c.CreatedAt, c.UpdatedAt)
		if err != nil {
			return mapPQError(err, "put contact")
		}
	}
	for _, t := range batch.Tags() {
		_, err := tx.ExecContext(ctx,
			`INSERT INTO tags (id, owner_id, name, color, description, created_at, updated_at)
			 VALUES ($1, $2, $3, $4, $5, $6, $7)
			 ON CONFLICT (id) DO UPDATE SET
				name = EXCLUDED.name, color = EXCLUDED.color,
				description = EXCLUDED.description, updated_at = EXCLUDED.updated_at`,
			uuid.UUID(t.ID), uuid.UUID(owner), t.Name, t.Color, t.Description, t.CreatedAt, t.UpdatedAt)
		if err != nil {
			return mapPQError(err, "put tag")
		}
	}
	for _, g := range batch.Groups() {
		_, err := tx.ExecContext(ctx,
			`INSERT INTO groups (id, owner_id, name, group_type, tag_ids, member_ids, created_at, updated_at)
			 VALUES ($1, $2, $3, $4, $5::uuid[], $6::uuid[], $7, $8)
			 ON CONFLICT (id) DO UPDATE SET
				name = EXCLUDED.name, group_type = EXCLUDED.group_type,
				tag_ids = EXCLUDED.tag_ids, member_ids = EXCLUDED.member_ids,
				updated_at = EXCLUDED.updated_at`,
			uuid.UUID(g.ID), uuid.UUID(owner), g.Name, string(g.Type),
			tagArray(g.TagIDs), memberArray(g.MemberIDs), g.CreatedAt, g.UpdatedAt)
		if err != nil {
			return mapPQError(err, "put group")
		}
	}
	for _, contactID := range batch.ContactDeletes() {
		if _, err := tx.ExecContext(ctx,
			`DELETE FROM contacts WHERE owner_id = $1 AND id = $2`,
			uuid.UUID(owner), uuid.UUID(contactID)); err != nil {
			return fmt.Errorf("delete contact: %w", err)
		}
	}
	for _, tagID := range batch.TagDeletes() {
		if _, err := tx.ExecContext(ctx,
			`DELETE FROM tags WHERE owner_id = $1 AND id = $2`,
			uuid.UUID(owner), uuid.UUID(tagID)); err != nil {
			return fmt.Errorf("delete tag: %w", err)
		}
	}
	for _, groupID := range batch.GroupDeletes() {
		if _, err := tx.ExecContext(ctx,
			`DELETE FROM groups WHERE owner_id = $1 AND id = $2`,
			uuid.UUID(owner), uuid.UUID(groupID)); err != nil {
			return fmt.Errorf("delete group: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return mapPQError(err, "commit batch")
	}
	return nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanContact(row rowScanner) (*models.Contact, error) {
	var c models.Contact
	var owner, contactID uuid.UUID
	var tagIDs, groupIDs pq.StringArray
	err := row.Scan(&contactID, &owner, &c.Name, &tagIDs, &groupIDs, &c.CreatedAt, &c.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, sentinel.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("scan contact: %w", err)
	}
	c.ID = id.ContactID(contactID)
	c.OwnerID = id.OwnerID(owner)
	if c.TagIDs, err = parseTagIDs(tagIDs); err != nil {
		return nil, err
	}
	if c.GroupIDs, err = parseGroupIDs(groupIDs); err != nil {
		return nil, err
	}
	return &c, nil
}

func scanTag(row rowScanner) (*models.Tag, error) {
	var t models.Tag
	var owner, tagID uuid.UUID
	err := row.Scan(&tagID, &owner, &t.Name, &t.Color, &t.Description, &t.CreatedAt, &t.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, sentinel.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("scan tag: %w", err)
	}
	t.ID = id.TagID(tagID)
	t.OwnerID = id.OwnerID(owner)
	return &t, nil
}

func scanGroup(row rowScanner) (*models.Group, error) {
	var g models.Group
	var owner, groupID uuid.UUID
	var groupType string
	var tagIDs, memberIDs pq.StringArray
	err := row.Scan(&groupID, &owner, &g.Name, &groupType, &tagIDs, &memberIDs, &g.CreatedAt, &g.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, sentinel.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("scan group: %w", err)
	}
	g.ID = id.GroupID(groupID)
	g.OwnerID = id.OwnerID(owner)
	g.Type = models.GroupType(groupType)
	if g.TagIDs, err = parseTagIDs(tagIDs); err != nil {
		return nil, err
	}
	if g.MemberIDs, err = parseMemberIDs(memberIDs); err != nil {
		return nil, err
	}
	return &g, nil
}

func tagArray(ids []id.TagID) pq.StringArray {
	out := make(pq.StringArray, len(ids))
	for i, v := range ids {
		out[i] = v.String()
	}
	return out
}

func groupArray(ids []id.GroupID) pq.StringArray {
	out := make(pq.StringArray, len(ids))
	for i, v := range ids {
		out[i] = v.String()
	}
	return out
}

func memberArray(ids []id.ContactID) pq.StringArray {
	out := make(pq.StringArray, len(ids))
	for i, v := range ids {
		out[i] = v.String()
	}
	return out
}

func parseTagIDs(raw pq.StringArray) ([]id.TagID, error) {
	if len(raw) == 0 {
		return nil, nil
	}
	out := make([]id.TagID, len(raw))
	for i, s := range raw {
		u, err := uuid.Parse(s)
		if err != nil {
			return nil, fmt.Errorf("parse tag id %q: %w", s, err)
		}
		out[i] = id.TagID(u)
	}
	return out, nil
}

func parseGroupIDs(raw pq.StringArray) ([]id.GroupID, error) {
	if len(raw) == 0 {
		return nil, nil
	}
	out := make([]id.GroupID, len(raw))
	for i, s := range raw {
		u, err := uuid.Parse(s)
		if err != nil {
			return nil, fmt.Errorf("parse group id %q: %w", s, err)
		}
		out[i] = id.GroupID(u)
	}
	return out, nil
}

func parseMemberIDs(raw pq.StringArray) ([]id.ContactID, error) {
	if len(raw) == 0 {
		return nil, nil
	}
	out := make([]id.ContactID, len(raw))
	for i, s := range raw {
		u, err := uuid.Parse(s)
		if err != nil {
			return nil, fmt.Errorf("parse contact id %q: %w", s, err)
		}
		out[i] = id.ContactID(u)
	}
	return out, nil
}
