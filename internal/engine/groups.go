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

// UpdateGroupRequest carries the mutable group fields. Nil means "leave
// unchanged".
type UpdateGroupRequest struct {
	Name   *string
	Type   *models.GroupType
	TagIDs *[]id.TagID
}

// CreateGroup creates a group with a name unique within the owner scope.
// Defining tags are only accepted for derived types and must exist for the
// owner; a derived group's initial members are computed immediately.
func (e *Engine) CreateGroup(ctx context.Context, owner id.OwnerID, name string, groupType models.GroupType, tagIDs []id.TagID) (*models.Group, error) {
	name = strings.TrimSpace(name)

	var group *models.Group
	err := e.withOwnerLock(ctx, owner, "engine.CreateGroup", func(ctx context.Context) error {
		if err := e.ensureGroupNameFree(ctx, owner, name); err != nil {
			return err
		}
		for _, tagID := range tagIDs {
			if _, err := e.store.GetTag(ctx, owner, tagID); err != nil {
				return notFound(err, "tag")
			}
		}

		g, err := models.NewGroup(id.NewGroupID(), owner, name, groupType, tagIDs, requestcontext.Now(ctx))
		if err != nil {
			return invariantToValidation(err)
		}

		ws := newWorkset(owner, e.store)
		ws.stageGroup(g)
		if g.IsDerived() {
			if err := e.sync.apply(ctx, ws, ruleReplaced{group: g}); err != nil {
				return err
			}
		}
		if err := e.commit(ctx, ws); err != nil {
			return err
		}
		group = g
		return nil
	})
	if err != nil {
		return nil, err
	}

	e.emitAudit(ctx, owner, audit.ActionGroupCreated, group.ID.String())
	return group, nil
}

// UpdateGroup applies name, type, and defining-tag changes. Replacing a
// derived group's defining set triggers a full recomputation, because the
// entire rule changed. Converting a derived group to manual freezes the
// currently materialized members as the explicit set; converting a manual
// group to a derived type recomputes membership from the new defining tags.
func (e *Engine) UpdateGroup(ctx context.Context, owner id.OwnerID, groupID id.GroupID, req UpdateGroupRequest) (*models.Group, error) {
	var group *models.Group
	err := e.withOwnerLock(ctx, owner, "engine.UpdateGroup", func(ctx context.Context) error {
		ws := newWorkset(owner, e.store)
		g, err := ws.group(ctx, groupID)
		if err != nil {
			return notFound(err, "group")
		}
		now := requestcontext.Now(ctx)

		if req.Name != nil {
			newName := strings.TrimSpace(*req.Name)
			if newName != g.Name {
				if err := e.ensureGroupNameFree(ctx, owner, newName); err != nil {
					return err
				}
				if err := g.Rename(newName, now); err != nil {
					return invariantToValidation(err)
				}
			}
		}

		ruleChanged := false
		if req.Type != nil && *req.Type != g.Type {
			newType := *req.Type
			if !newType.Valid() {
				return dErrors.Newf(dErrors.CodeValidation, "unknown group type %q", newType)
			}
			wasDerived := g.IsDerived()
			g.Type = newType
			g.UpdatedAt = now
			switch {
			case wasDerived && !newType.Derived():
				// Freeze the materialized members; the rule goes away.
				g.TagIDs = nil
			case !wasDerived && newType.Derived():
				ruleChanged = true
			}
		}

		if req.TagIDs != nil {
			for _, tagID := range *req.TagIDs {
				if _, err := e.store.GetTag(ctx, owner, tagID); err != nil {
					return notFound(err, "tag")
				}
			}
			if err := g.ReplaceDefiningTags(*req.TagIDs, now); err != nil {
				return invariantToValidation(err)
			}
			ruleChanged = true
		}

		ws.stageGroup(g)
		if ruleChanged && g.IsDerived() {
			if err := e.sync.apply(ctx, ws, ruleReplaced{group: g}); err != nil {
				return err
			}
		}
		if err := e.commit(ctx, ws); err != nil {
			return err
		}
		group = g
		return nil
	})
	if err != nil {
		return nil, err
	}

	e.emitAudit(ctx, owner, audit.ActionGroupUpdated, group.ID.String())
	return group, nil
}

// DeleteGroup removes a group and unlinks it from every member's group set.
func (e *Engine) DeleteGroup(ctx context.Context, owner id.OwnerID, groupID id.GroupID) error {
	err := e.withOwnerLock(ctx, owner, "engine.DeleteGroup", func(ctx context.Context) error {
		ws := newWorkset(owner, e.store)
		g, err := ws.group(ctx, groupID)
		if err != nil {
			return notFound(err, "group")
		}

		for _, memberID := range g.MemberIDs {
			member, err := ws.contact(ctx, memberID)
			if err != nil {
				if errors.Is(err, sentinel.ErrNotFound) {
					continue
				}
				return notFound(err, "contact")
			}
			if member.UnlinkGroup(groupID) {
				ws.stageContact(member)
			}
		}
		ws.batch.DeleteGroup(groupID)

		return e.commit(ctx, ws)
	})
	if err != nil {
		return err
	}

	e.emitAudit(ctx, owner, audit.ActionGroupDeleted, groupID.String())
	return nil
}

// AddGroupMember adds a contact to a manual group's member set. Derived
// groups reject explicit member edits: their membership is computed.
func (e *Engine) AddGroupMember(ctx context.Context, owner id.OwnerID, groupID id.GroupID, contactID id.ContactID) (*models.Group, error) {
	var group *models.Group
	err := e.withOwnerLock(ctx, owner, "engine.AddGroupMember", func(ctx context.Context) error {
		ws := newWorkset(owner, e.store)
		g, err := ws.group(ctx, groupID)
		if err != nil {
			return notFound(err, "group")
		}
		if g.IsDerived() {
			return dErrors.New(dErrors.CodeValidation, "members of a derived group are computed from its defining tags")
		}
		c, err := ws.contact(ctx, contactID)
		if err != nil {
			return notFound(err, "contact")
		}

		now := requestcontext.Now(ctx)
		if g.AddMember(contactID, now) {
			ws.stageGroup(g)
		}
		if c.LinkGroup(groupID) {
			ws.stageContact(c)
		}
		if err := e.commit(ctx, ws); err != nil {
			return err
		}
		group = g
		return nil
	})
	if err != nil {
		return nil, err
	}

	e.emitAudit(ctx, owner, audit.ActionGroupMemberAdded, groupID.String())
	return group, nil
}

// RemoveGroupMember removes a contact from a manual group's member set.
func (e *Engine) RemoveGroupMember(ctx context.Context, owner id.OwnerID, groupID id.GroupID, contactID id.ContactID) (*models.Group, error) {
	var group *models.Group
	err := e.withOwnerLock(ctx, owner, "engine.RemoveGroupMember", func(ctx context.Context) error {
		ws := newWorkset(owner, e.store)
		g, err := ws.group(ctx, groupID)
		if err != nil {
			return notFound(err, "group")
		}
		if g.IsDerived() {
			return dErrors.New(dErrors.CodeValidation, "members of a derived group are computed from its defining tags")
		}
		c, err := ws.contact(ctx, contactID)
		if err != nil {
			return notFound(err, "contact")
		}

		now := requestcontext.Now(ctx)
		if g.RemoveMember(contactID, now) {
			ws.stageGroup(g)
		}
		if c.UnlinkGroup(groupID) {
			ws.stageContact(c)
		}
		if err := e.commit(ctx, ws); err != nil {
			return err
		}
		group = g
		return nil
	})
	if err != nil {
		return nil, err
	}

	e.emitAudit(ctx, owner, audit.ActionGroupMemberRemove, groupID.String())
	return group, nil
}

// RecomputeGroup rebuilds a derived group's membership from scratch. It is
// idempotent; incremental updates keep membership exact, but the operation is
// exposed for operational repair and verification.
func (e *Engine) RecomputeGroup(ctx context.Context, owner id.OwnerID, groupID id.GroupID) (*models.Group, error) {
	var group *models.Group
	err := e.withOwnerLock(ctx, owner, "engine.RecomputeGroup", func(ctx context.Context) error {
		ws := newWorkset(owner, e.store)
		g, err := ws.group(ctx, groupID)
		if err != nil {
			return notFound(err, "group")
		}
		if !g.IsDerived() {
			return dErrors.New(dErrors.CodeValidation, "manual groups have no derived membership to recompute")
		}
		if err := e.sync.apply(ctx, ws, ruleReplaced{group: g}); err != nil {
			return err
		}
		if err := e.commit(ctx, ws); err != nil {
			return err
		}
		group = g
		return nil
	})
	if err != nil {
		return nil, err
	}
	return group, nil
}

// GetGroup returns a group by id.
func (e *Engine) GetGroup(ctx context.Context, owner id.OwnerID, groupID id.GroupID) (*models.Group, error) {
	g, err := e.store.GetGroup(ctx, owner, groupID)
	if err != nil {
		return nil, notFound(err, "group")
	}
	return g, nil
}

// ListGroups returns every group in the owner scope.
func (e *Engine) ListGroups(ctx context.Context, owner id.OwnerID) ([]*models.Group, error) {
	groups, err := e.store.ListGroups(ctx, owner)
	if err != nil {
		return nil, listErr(err, "groups")
	}
	return groups, nil
}

func (e *Engine) ensureGroupNameFree(ctx context.Context, owner id.OwnerID, name string) error {
	if name == "" {
		return dErrors.New(dErrors.CodeValidation, "group name is required")
	}
	_, err := e.store.FindGroupByName(ctx, owner, name)
	if err == nil {
		return dErrors.New(dErrors.CodeConflict, "group name must be unique")
	}
	if !errors.Is(err, sentinel.ErrNotFound) {
		return dErrors.Wrap(err, dErrors.CodeUnavailable, "failed to check group name")
	}
	return nil
}
