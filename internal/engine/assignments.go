package engine

import (
	"context"

	"tagdex/internal/models"
	id "tagdex/pkg/domain"
	"tagdex/pkg/platform/audit"
	"tagdex/pkg/requestcontext"
)

// AddTagToContact adds a single tag reference to a contact. Adding a tag the
// contact already carries is a successful no-op. On an actual addition the
// contact is incrementally added to every derived group whose defining set
// contains the tag; the contact is known to qualify, so no scan is needed.
func (e *Engine) AddTagToContact(ctx context.Context, owner id.OwnerID, contactID id.ContactID, tagID id.TagID) (*models.Contact, error) {
	var contact *models.Contact
	var mutated bool
	err := e.withOwnerLock(ctx, owner, "engine.AddTagToContact", func(ctx context.Context) error {
		if _, err := e.store.GetTag(ctx, owner, tagID); err != nil {
			return notFound(err, "tag")
		}

		ws := newWorkset(owner, e.store)
		c, err := ws.contact(ctx, contactID)
		if err != nil {
			return notFound(err, "contact")
		}

		if !c.AddTag(tagID, requestcontext.Now(ctx)) {
			contact = c
			return nil
		}
		mutated = true
		ws.stageContact(c)

		if err := e.sync.apply(ctx, ws, tagAssigned{contact: c, tagID: tagID}); err != nil {
			return err
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

	if mutated {
		e.emitAudit(ctx, owner, audit.ActionTagAssigned, contactID.String())
	}
	return contact, nil
}

// RemoveTagFromContact removes a single tag reference from a contact.
// Removing an absent tag is a successful no-op. On an actual removal, every
// derived group whose defining set contains the tag re-evaluates this one
// contact against its rule using the contact's remaining tags; contacts that
// no longer share any defining tag leave the group. The remaining-tags view
// and the group updates commit in the same batch, so eligibility is never
// decided from stale state.
func (e *Engine) RemoveTagFromContact(ctx context.Context, owner id.OwnerID, contactID id.ContactID, tagID id.TagID) (*models.Contact, error) {
	var contact *models.Contact
	var mutated bool
	err := e.withOwnerLock(ctx, owner, "engine.RemoveTagFromContact", func(ctx context.Context) error {
		if _, err := e.store.GetTag(ctx, owner, tagID); err != nil {
			return notFound(err, "tag")
		}

		ws := newWorkset(owner, e.store)
		c, err := ws.contact(ctx, contactID)
		if err != nil {
			return notFound(err, "contact")
		}

		if !c.RemoveTag(tagID, requestcontext.Now(ctx)) {
			contact = c
			return nil
		}
		mutated = true
		ws.stageContact(c)

		if err := e.sync.apply(ctx, ws, tagUnassigned{contact: c, tagID: tagID}); err != nil {
			return err
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

	if mutated {
		e.emitAudit(ctx, owner, audit.ActionTagUnassigned, contactID.String())
	}
	return contact, nil
}
