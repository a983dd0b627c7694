package engine

import (
	"context"
	"errors"
	"strings"

	"tagdex/internal/models"
	id "tagdex/pkg/domain"
	dErrors "tagdex/pkg/domain-errors"
	"tagdex/pkg/platform/audit"
	"tagdex/pkg/platform/sentinel"
	"tagdex/pkg/requestcontext"
)

// CreateTag creates a tag with a name unique within the owner scope.
// Name matching is case-sensitive: "VIP" and "vip" are distinct tags.
func (e *Engine) CreateTag(ctx context.Context, owner id.OwnerID, name, color string) (*models.Tag, error) {
	name = strings.TrimSpace(name)

	var tag *models.Tag
	err := e.withOwnerLock(ctx, owner, "engine.CreateTag", func(ctx context.Context) error {
		if err := e.ensureTagNameFree(ctx, owner, name); err != nil {
			return err
		}

		t, err := models.NewTag(id.NewTagID(), owner, name, color, requestcontext.Now(ctx))
		if err != nil {
			return invariantToValidation(err)
		}

		ws := newWorkset(owner, e.store)
		ws.stageTag(t)
		if err := e.commit(ctx, ws); err != nil {
			return err
		}
		tag = t
		return nil
	})
	if err != nil {
		return nil, err
	}

	e.emitAudit(ctx, owner, audit.ActionTagCreated, tag.ID.String())
	return tag, nil
}

// RenameTag changes a tag's name. The tag keeps its id, so contacts and
// groups referencing it are unaffected and no recomputation is needed.
func (e *Engine) RenameTag(ctx context.Context, owner id.OwnerID, tagID id.TagID, newName string) (*models.Tag, error) {
	newName = strings.TrimSpace(newName)

	var tag *models.Tag
	err := e.withOwnerLock(ctx, owner, "engine.RenameTag", func(ctx context.Context) error {
		t, err := e.store.GetTag(ctx, owner, tagID)
		if err != nil {
			return notFound(err, "tag")
		}
		if t.Name == newName {
			tag = t
			return nil
		}
		if err := e.ensureTagNameFree(ctx, owner, newName); err != nil {
			return err
		}
		if err := t.Rename(newName, requestcontext.Now(ctx)); err != nil {
			return invariantToValidation(err)
		}

		ws := newWorkset(owner, e.store)
		ws.stageTag(t)
		if err := e.commit(ctx, ws); err != nil {
			return err
		}
		tag = t
		return nil
	})
	if err != nil {
		return nil, err
	}

	e.emitAudit(ctx, owner, audit.ActionTagRenamed, tag.ID.String())
	return tag, nil
}

// UpdateTag changes a tag's cosmetic fields. Nil means "leave unchanged".
func (e *Engine) UpdateTag(ctx context.Context, owner id.OwnerID, tagID id.TagID, color, description *string) (*models.Tag, error) {
	var tag *models.Tag
	err := e.withOwnerLock(ctx, owner, "engine.UpdateTag", func(ctx context.Context) error {
		t, err := e.store.GetTag(ctx, owner, tagID)
		if err != nil {
			return notFound(err, "tag")
		}
		if color != nil {
			t.Color = *color
		}
		if description != nil {
			t.Description = *description
		}
		t.UpdatedAt = requestcontext.Now(ctx)

		ws := newWorkset(owner, e.store)
		ws.stageTag(t)
		if err := e.commit(ctx, ws); err != nil {
			return err
		}
		tag = t
		return nil
	})
	if err != nil {
		return nil, err
	}

	e.emitAudit(ctx, owner, audit.ActionTagUpdated, tag.ID.String())
	return tag, nil
}

// DeleteTag removes a tag and cascades: the tag id is stripped from every
// contact's tag set and every group's defining set, and each derived group
// whose rule changed is fully recomputed. All of it commits in one batch, so
// an interrupted deletion is never half-applied.
func (e *Engine) DeleteTag(ctx context.Context, owner id.OwnerID, tagID id.TagID) error {
	err := e.withOwnerLock(ctx, owner, "engine.DeleteTag", func(ctx context.Context) error {
		if _, err := e.store.GetTag(ctx, owner, tagID); err != nil {
			return notFound(err, "tag")
		}

		ws := newWorkset(owner, e.store)
		now := requestcontext.Now(ctx)
		cascaded := false

		contacts, err := ws.allContacts(ctx)
		if err != nil {
			return listErr(err, "contacts")
		}
		for _, c := range contacts {
			if c.RemoveTag(tagID, now) {
				ws.stageContact(c)
				cascaded = true
			}
		}

		groups, err := ws.groupsReferencingTag(ctx, tagID)
		if err != nil {
			return listErr(err, "groups referencing tag")
		}
		for _, g := range groups {
			if g.RemoveDefiningTag(tagID, now) {
				ws.stageGroup(g)
				cascaded = true
			}
		}

		ws.batch.DeleteTag(tagID)

		if err := e.sync.apply(ctx, ws, tagDeleted{tagID: tagID, groups: groups}); err != nil {
			return err
		}
		if err := e.commit(ctx, ws); err != nil {
			return err
		}
		if cascaded && e.metrics != nil {
			e.metrics.IncrementTagCascadeDeletes()
		}
		return nil
	})
	if err != nil {
		return err
	}

	e.emitAudit(ctx, owner, audit.ActionTagDeleted, tagID.String())
	return nil
}

// GetTag returns a tag by id.
func (e *Engine) GetTag(ctx context.Context, owner id.OwnerID, tagID id.TagID) (*models.Tag, error) {
	t, err := e.store.GetTag(ctx, owner, tagID)
	if err != nil {
		return nil, notFound(err, "tag")
	}
	return t, nil
}

// ListTags returns every tag in the owner scope.
func (e *Engine) ListTags(ctx context.Context, owner id.OwnerID) ([]*models.Tag, error) {
	tags, err := e.store.ListTags(ctx, owner)
	if err != nil {
		return nil, listErr(err, "tags")
	}
	return tags, nil
}

func (e *Engine) ensureTagNameFree(ctx context.Context, owner id.OwnerID, name string) error {
	if name == "" {
		return dErrors.New(dErrors.CodeValidation, "tag name is required")
	}
	_, err := e.store.FindTagByName(ctx, owner, name)
	if err == nil {
		return dErrors.New(dErrors.CodeConflict, "tag name must be unique")
	}
	if !errors.Is(err, sentinel.ErrNotFound) {
		return dErrors.Wrap(err, dErrors.CodeUnavailable, "failed to check tag name")
	}
	return nil
}

// invariantToValidation converts constructor invariant violations into
// validation errors for the caller, keeping InvariantViolation for states
// that should be unreachable through the API.
func invariantToValidation(err error) error {
	if dErrors.HasCode(err, dErrors.CodeInvariantViolation) {
		return dErrors.New(dErrors.CodeValidation, err.Error())
	}
	return err
}
