package engine

import (
	"context"

	"tagdex/internal/models"
	"tagdex/internal/store"
	id "tagdex/pkg/domain"
)

// workset is the transactional view of one operation: entities loaded after
// the owner lock was acquired, plus every staged mutation. Reads prefer
// staged copies so the synchronizer always evaluates post-mutation state;
// in particular, eligibility after a tag removal is decided from the
// contact's remaining tags as they will be committed, never from stale
// stored state.
type workset struct {
	owner id.OwnerID
	st    store.EntityStore
	batch *store.WriteBatch

	contacts map[id.ContactID]*models.Contact
	groups   map[id.GroupID]*models.Group

	listedAllContacts bool
}

func newWorkset(owner id.OwnerID, st store.EntityStore) *workset {
	return &workset{
		owner:    owner,
		st:       st,
		batch:    store.NewWriteBatch(),
		contacts: make(map[id.ContactID]*models.Contact),
		groups:   make(map[id.GroupID]*models.Group),
	}
}

// contact returns the working copy for contactID, loading it on first use.
// Store reads return clones, so the copy is private to this operation.
func (w *workset) contact(ctx context.Context, contactID id.ContactID) (*models.Contact, error) {
	if c, ok := w.contacts[contactID]; ok {
		return c, nil
	}
	c, err := w.st.GetContact(ctx, w.owner, contactID)
	if err != nil {
		return nil, err
	}
	w.contacts[contactID] = c
	return c, nil
}

// group returns the working copy for groupID, loading it on first use.
func (w *workset) group(ctx context.Context, groupID id.GroupID) (*models.Group, error) {
	if g, ok := w.groups[groupID]; ok {
		return g, nil
	}
	g, err := w.st.GetGroup(ctx, w.owner, groupID)
	if err != nil {
		return nil, err
	}
	w.groups[groupID] = g
	return g, nil
}

// allContacts returns working copies for every contact in the owner scope,
// honoring copies already loaded (and possibly mutated) by this operation.
func (w *workset) allContacts(ctx context.Context) ([]*models.Contact, error) {
	if !w.listedAllContacts {
		listed, err := w.st.ListContacts(ctx, w.owner)
		if err != nil {
			return nil, err
		}
		for _, c := range listed {
			if _, ok := w.contacts[c.ID]; !ok {
				w.contacts[c.ID] = c
			}
		}
		w.listedAllContacts = true
	}
	out := make([]*models.Contact, 0, len(w.contacts))
	for _, c := range w.contacts {
		if w.deleted(c.ID) {
			continue
		}
		out = append(out, c)
	}
	return out, nil
}

// groupsReferencingTag returns working copies for every group whose defining
// set contains tagID, honoring copies already loaded by this operation.
func (w *workset) groupsReferencingTag(ctx context.Context, tagID id.TagID) ([]*models.Group, error) {
	listed, err := w.st.ListGroupsReferencingTag(ctx, w.owner, tagID)
	if err != nil {
		return nil, err
	}
	var out []*models.Group
	seen := make(map[id.GroupID]struct{})
	for _, g := range listed {
		if cached, ok := w.groups[g.ID]; ok {
			g = cached
		} else {
			w.groups[g.ID] = g
		}
		if g.HasDefiningTag(tagID) {
			out = append(out, g)
		}
		seen[g.ID] = struct{}{}
	}
	// Copies staged earlier in this operation may reference the tag even
	// though the stored rows do not yet.
	for _, g := range w.groups {
		if _, ok := seen[g.ID]; ok {
			continue
		}
		if g.HasDefiningTag(tagID) {
			out = append(out, g)
		}
	}
	return out, nil
}

func (w *workset) deleted(contactID id.ContactID) bool {
	for _, d := range w.batch.ContactDeletes() {
		if d == contactID {
			return true
		}
	}
	return false
}

// stage marks working copies dirty so commit persists them.
func (w *workset) stageContact(c *models.Contact) {
	w.contacts[c.ID] = c
	w.batch.PutContact(c)
}

func (w *workset) stageTag(t *models.Tag) {
	w.batch.PutTag(t)
}

func (w *workset) stageGroup(g *models.Group) {
	w.groups[g.ID] = g
	w.batch.PutGroup(g)
}
