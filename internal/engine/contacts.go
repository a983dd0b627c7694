package engine

import (
	"context"
	"strings"

	"tagdex/internal/models"
	id "tagdex/pkg/domain"
	"tagdex/pkg/platform/audit"
	"tagdex/pkg/requestcontext"
)

// CreateContact creates a contact, optionally carrying initial tags. Each
// initial tag must exist in the owner scope; derived groups referencing those
// tags pick the contact up immediately.
func (e *Engine) CreateContact(ctx context.Context, owner id.OwnerID, name string, initialTags []id.TagID) (*models.Contact, error) {
	name = strings.TrimSpace(name)

	var contact *models.Contact
	err := e.withOwnerLock(ctx, owner, "engine.CreateContact", func(ctx context.Context) error {
		for _, tagID := range initialTags {
			if _, err := e.store.GetTag(ctx, owner, tagID); err != nil {
				return notFound(err, "tag")
			}
		}

		now := requestcontext.Now(ctx)
		c, err := models.NewContact(id.NewContactID(), owner, name, now)
		if err != nil {
			return invariantToValidation(err)
		}

		ws := newWorkset(owner, e.store)
		ws.stageContact(c)
		for _, tagID := range initialTags {
			if !c.AddTag(tagID, now) {
				continue
			}
			if err := e.sync.apply(ctx, ws, tagAssigned{contact: c, tagID: tagID}); err != nil {
				return err
			}
		}

		if err := e.commit(ctx, ws); err != nil {
			return err
		}
		contact = c
		return nil
	})
	if err != nil {
		return nil, err
	}

	e.emitAudit(ctx, owner, audit.ActionContactCreated, contact.ID.String())
	return contact, nil
}

// DeleteContact removes a contact and drops it from every group's member set,
// manual and derived alike. Removing one contact cannot change another
// contact's eligibility, so no recomputation runs.
func (e *Engine) DeleteContact(ctx context.Context, owner id.OwnerID, contactID id.ContactID) error {
	err := e.withOwnerLock(ctx, owner, "engine.DeleteContact", func(ctx context.Context) error {
		ws := newWorkset(owner, e.store)
		c, err := ws.contact(ctx, contactID)
		if err != nil {
			return notFound(err, "contact")
		}

		now := requestcontext.Now(ctx)
		for _, groupID := range c.GroupIDs {
			g, err := ws.group(ctx, groupID)
			if err != nil {
				return notFound(err, "group")
			}
			if g.RemoveMember(contactID, now) {
				ws.stageGroup(g)
			}
		}
		ws.batch.DeleteContact(contactID)

		return e.commit(ctx, ws)
	})
	if err != nil {
		return err
	}

	e.emitAudit(ctx, owner, audit.ActionContactDeleted, contactID.String())
	return nil
}

// GetContact returns a contact by id.
func (e *Engine) GetContact(ctx context.Context, owner id.OwnerID, contactID id.ContactID) (*models.Contact, error) {
	c, err := e.store.GetContact(ctx, owner, contactID)
	if err != nil {
		return nil, notFound(err, "contact")
	}
	return c, nil
}

// ListContacts returns every contact in the owner scope.
func (e *Engine) ListContacts(ctx context.Context, owner id.OwnerID) ([]*models.Contact, error) {
	contacts, err := e.store.ListContacts(ctx, owner)
	if err != nil {
		return nil, listErr(err, "contacts")
	}
	return contacts, nil
}
