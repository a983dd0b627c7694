package engine

import (
	"tagdex/internal/models"
	id "tagdex/pkg/domain"
)

// Change events are how primitive mutations reach the synchronizer. Each
// operation mutates its own entities, then emits the event describing what
// changed; the synchronizer alone decides which derived memberships to
// update. This keeps the "who triggers recomputation" logic in one place
// instead of duplicated across call sites.
type changeEvent interface{ isChangeEvent() }

// tagAssigned: a tag was added to a contact (the contact copy already carries
// the new tag).
type tagAssigned struct {
	contact *models.Contact
	tagID   id.TagID
}

// tagUnassigned: a tag was removed from a contact (the contact copy already
// reflects the remaining tags).
type tagUnassigned struct {
	contact *models.Contact
	tagID   id.TagID
}

// tagDeleted: a tag ceased to exist; groups lists every group whose defining
// set contained it (each already stripped and staged).
type tagDeleted struct {
	tagID  id.TagID
	groups []*models.Group
}

// ruleReplaced: a derived group's defining-tag set was replaced wholesale.
type ruleReplaced struct {
	group *models.Group
}

func (tagAssigned) isChangeEvent()   {}
func (tagUnassigned) isChangeEvent() {}
func (tagDeleted) isChangeEvent()    {}
func (ruleReplaced) isChangeEvent()  {}
