// Package store provides owner-scoped durable storage for contacts, tags,
// and groups.
//
// Implementations return pkg/platform/sentinel errors for infrastructure
// facts (not found, name already used); the engine translates those into
// domain error codes. Every batch applied through ApplyBatch is all-or-
// nothing: either all writes become visible or none do.
package store

import (
	"context"

	"tagdex/internal/models"
	id "tagdex/pkg/domain"
)

// EntityStore is the persistence contract the consistency engine consumes.
type EntityStore interface {
	GetContact(ctx context.Context, owner id.OwnerID, contactID id.ContactID) (*models.Contact, error)
	GetTag(ctx context.Context, owner id.OwnerID, tagID id.TagID) (*models.Tag, error)
	GetGroup(ctx context.Context, owner id.OwnerID, groupID id.GroupID) (*models.Group, error)

	ListContacts(ctx context.Context, owner id.OwnerID) ([]*models.Contact, error)
	ListTags(ctx context.Context, owner id.OwnerID) ([]*models.Tag, error)
	ListGroups(ctx context.Context, owner id.OwnerID) ([]*models.Group, error)

	// ListGroupsReferencingTag returns every group whose defining-tag set
	// contains tagID. Used by tag deletion and incremental membership updates.
	ListGroupsReferencingTag(ctx context.Context, owner id.OwnerID, tagID id.TagID) ([]*models.Group, error)

	// FindTagByName and FindGroupByName match case-sensitively and return
	// sentinel.ErrNotFound when no entity carries the name.
	FindTagByName(ctx context.Context, owner id.OwnerID, name string) (*models.Tag, error)
	FindGroupByName(ctx context.Context, owner id.OwnerID, name string) (*models.Group, error)

	// ApplyBatch persists a group of writes atomically for one owner scope.
	ApplyBatch(ctx context.Context, owner id.OwnerID, batch *WriteBatch) error
}

// WriteBatch accumulates the writes of one engine operation so they can be
// committed as a single atomic unit.
type WriteBatch struct {
	putContacts map[id.ContactID]*models.Contact
	putTags     map[id.TagID]*models.Tag
	putGroups   map[id.GroupID]*models.Group

	deleteContacts []id.ContactID
	deleteTags     []id.TagID
	deleteGroups   []id.GroupID
}

// NewWriteBatch returns an empty batch.
func NewWriteBatch() *WriteBatch {
	return &WriteBatch{
		putContacts: make(map[id.ContactID]*models.Contact),
		putTags:     make(map[id.TagID]*models.Tag),
		putGroups:   make(map[id.GroupID]*models.Group),
	}
}

// PutContact stages a contact write. Staging the same id twice keeps the
// latest state, so operations can mutate a staged copy incrementally.
func (b *WriteBatch) PutContact(c *models.Contact) { b.putContacts[c.ID] = c }

// PutTag stages a tag write.
func (b *WriteBatch) PutTag(t *models.Tag) { b.putTags[t.ID] = t }

// PutGroup stages a group write.
func (b *WriteBatch) PutGroup(g *models.Group) { b.putGroups[g.ID] = g }

// DeleteContact stages a contact deletion.
func (b *WriteBatch) DeleteContact(contactID id.ContactID) {
	delete(b.putContacts, contactID)
	b.deleteContacts = append(b.deleteContacts, contactID)
}

// DeleteTag stages a tag deletion.
func (b *WriteBatch) DeleteTag(tagID id.TagID) {
	delete(b.putTags, tagID)
	b.deleteTags = append(b.deleteTags, tagID)
}

// DeleteGroup stages a group deletion.
func (b *WriteBatch) DeleteGroup(groupID id.GroupID) {
	delete(b.putGroups, groupID)
	b.deleteGroups = append(b.deleteGroups, groupID)
}

// Empty reports whether the batch stages no writes at all.
func (b *WriteBatch) Empty() bool {
	return len(b.putContacts) == 0 && len(b.putTags) == 0 && len(b.putGroups) == 0 &&
		len(b.deleteContacts) == 0 && len(b.deleteTags) == 0 && len(b.deleteGroups) == 0
}

// Contacts returns the staged contact writes.
func (b *WriteBatch) Contacts() []*models.Contact {
	out := make([]*models.Contact, 0, len(b.putContacts))
	for _, c := range b.putContacts {
		out = append(out, c)
	}
	return out
}

// Tags returns the staged tag writes.
func (b *WriteBatch) Tags() []*models.Tag {
	out := make([]*models.Tag, 0, len(b.putTags))
	for _, t := range b.putTags {
		out = append(out, t)
	}
	return out
}

// Groups returns the staged group writes.
func (b *WriteBatch) Groups() []*models.Group {
	out := make([]*models.Group, 0, len(b.putGroups))
	for _, g := range b.putGroups {
		out = append(out, g)
	}
	return out
}

// ContactDeletes returns the staged contact deletions.
func (b *WriteBatch) ContactDeletes() []id.ContactID { return b.deleteContacts }

// TagDeletes returns the staged tag deletions.
func (b *WriteBatch) TagDeletes() []id.TagID { return b.deleteTags }

// GroupDeletes returns the staged group deletions.
func (b *WriteBatch) GroupDeletes() []id.GroupID { return b.deleteGroups }
