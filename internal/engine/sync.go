package engine

import (
	"context"
	"errors"
	"time"

	"tagdex/internal/models"
	"tagdex/internal/platform/metrics"
	id "tagdex/pkg/domain"
	dErrors "tagdex/pkg/domain-errors"
	"tagdex/pkg/platform/sentinel"
	"tagdex/pkg/requestcontext"
)

// synchronizer recomputes derived group memberships. All methods work on the
// operation's workset: they mutate working copies and stage them, never
// touching the store directly, so their effects commit atomically with the
// mutation that triggered them.
//
// Manual groups are invisible to the synchronizer. Their membership changes
// only through explicit member operations on the façade.
type synchronizer struct {
	metrics *metrics.Metrics
}

// apply routes a change event to the matching membership update.
func (s *synchronizer) apply(ctx context.Context, ws *workset, ev changeEvent) error {
	now := requestcontext.Now(ctx)

	switch e := ev.(type) {
	case tagAssigned:
		groups, err := ws.groupsReferencingTag(ctx, e.tagID)
		if err != nil {
			return listErr(err, "groups referencing tag")
		}
		for _, g := range groups {
			if !g.IsDerived() {
				continue
			}
			// The contact is known to qualify: it now carries a defining tag.
			s.incrementalAdd(ws, g, e.contact, now)
		}
		return nil

	case tagUnassigned:
		groups, err := ws.groupsReferencingTag(ctx, e.tagID)
		if err != nil {
			return listErr(err, "groups referencing tag")
		}
		for _, g := range groups {
			if !g.IsDerived() {
				continue
			}
			s.evaluateAndMaybeRemove(ws, g, e.contact, now)
		}
		return nil

	case tagDeleted:
		// Removing a defining tag can only shrink membership, but a full
		// recompute is the simplest correct approach when a group's rule
		// itself changed.
		for _, g := range e.groups {
			if !g.IsDerived() {
				continue
			}
			if err := s.recomputeGroup(ctx, ws, g, now); err != nil {
				return err
			}
		}
		return nil

	case ruleReplaced:
		if !e.group.IsDerived() {
			return dErrors.New(dErrors.CodeInvariantViolation, "cannot recompute membership of a manual group")
		}
		return s.recomputeGroup(ctx, ws, e.group, now)

	default:
		return dErrors.Newf(dErrors.CodeInternal, "unhandled change event %T", ev)
	}
}

// recomputeGroup sets the group's members to exactly those contacts sharing
// at least one tag with the defining set. Idempotent: with no intervening
// mutation a second call changes nothing. An empty defining set yields
// strictly empty membership.
func (s *synchronizer) recomputeGroup(ctx context.Context, ws *workset, g *models.Group, now time.Time) error {
	started := time.Now()

	contacts, err := ws.allContacts(ctx)
	if err != nil {
		return listErr(err, "contacts")
	}

	desired := make(map[id.ContactID]*models.Contact)
	for _, c := range contacts {
		if g.Qualifies(c.TagIDs) {
			desired[c.ID] = c
		}
	}

	changed := false
	// Drop members that no longer qualify, unlinking the mirror reference.
	for _, memberID := range append([]id.ContactID(nil), g.MemberIDs...) {
		if _, ok := desired[memberID]; ok {
			continue
		}
		if !g.RemoveMember(memberID, now) {
			continue
		}
		changed = true
		member, err := ws.contact(ctx, memberID)
		if err != nil {
			if errors.Is(err, sentinel.ErrNotFound) {
				continue
			}
			return notFound(err, "contact")
		}
		if member.UnlinkGroup(g.ID) {
			ws.stageContact(member)
		}
	}
	// Add qualifying contacts that are missing.
	for _, c := range desired {
		if g.AddMember(c.ID, now) {
			changed = true
		}
		if c.LinkGroup(g.ID) {
			ws.stageContact(c)
		}
	}
	if changed {
		ws.stageGroup(g)
	}

	if s.metrics != nil {
		s.metrics.IncrementGroupsRecomputed()
		s.metrics.ObserveRecomputeDuration(time.Since(started).Seconds())
	}
	return nil
}

// incrementalAdd adds the contact to the group's members if absent and
// mirrors the link on the contact. The caller has already verified the
// contact qualifies, so no scan is needed.
func (s *synchronizer) incrementalAdd(ws *workset, g *models.Group, c *models.Contact, now time.Time) {
	changed := false
	if g.AddMember(c.ID, now) {
		ws.stageGroup(g)
		changed = true
	}
	if c.LinkGroup(g.ID) {
		ws.stageContact(c)
		changed = true
	}
	if changed && s.metrics != nil {
		s.metrics.IncrementIncrementalUpdates()
	}
}

// evaluateAndMaybeRemove re-checks one contact against one group's rule using
// the contact's current (post-mutation) tag set, and removes it from the
// members if and only if it no longer qualifies. Equivalent in result to a
// full recomputation for a single-contact change, at a fraction of the cost.
func (s *synchronizer) evaluateAndMaybeRemove(ws *workset, g *models.Group, c *models.Contact, now time.Time) {
	if g.Qualifies(c.TagIDs) {
		return
	}
	changed := false
	if g.RemoveMember(c.ID, now) {
		ws.stageGroup(g)
		changed = true
	}
	if c.UnlinkGroup(g.ID) {
		ws.stageContact(c)
		changed = true
	}
	if changed && s.metrics != nil {
		s.metrics.IncrementIncrementalUpdates()
	}
}
