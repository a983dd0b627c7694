package engine

import (
	"tagdex/internal/models"
	id "tagdex/pkg/domain"
	dErrors "tagdex/pkg/domain-errors"
)

// TestGroupLifecycle covers creation, rename, and deletion.
func (s *EngineSuite) TestGroupLifecycle() {
	s.Run("derived creation materializes membership immediately", func() {
		s.freshScope()
		tag := s.mustTag("vip")
		early := s.mustContact("Early", tag.ID)

		group := s.mustGroup("VIPs", models.GroupTypeAuto, tag.ID)
		s.True(s.members(group.ID)[early.ID])
		s.True(s.getContact(early.ID).InGroup(group.ID))
		s.assertConsistent()
	})

	s.Run("duplicate name conflicts", func() {
		s.freshScope()
		s.mustGroup("Friends", models.GroupTypeManual)
		_, err := s.engine.CreateGroup(s.ctx, s.owner, "Friends", models.GroupTypeAuto, nil)
		s.Require().Error(err)
		s.True(dErrors.HasCode(err, dErrors.CodeConflict))
	})

	s.Run("names are case-sensitive", func() {
		s.freshScope()
		s.mustGroup("Family", models.GroupTypeManual)
		_, err := s.engine.CreateGroup(s.ctx, s.owner, "family", models.GroupTypeManual, nil)
		s.Require().NoError(err)
	})

	s.Run("manual creation with defining tags is rejected", func() {
		s.freshScope()
		tag := s.mustTag("inert")
		_, err := s.engine.CreateGroup(s.ctx, s.owner, "Bad", models.GroupTypeManual, []id.TagID{tag.ID})
		s.Require().Error(err)
		s.True(dErrors.HasCode(err, dErrors.CodeValidation))
	})

	s.Run("unknown defining tag is rejected", func() {
		s.freshScope()
		_, err := s.engine.CreateGroup(s.ctx, s.owner, "Ghost", models.GroupTypeAuto, []id.TagID{id.NewTagID()})
		s.True(dErrors.HasCode(err, dErrors.CodeNotFound))
	})

	s.Run("rename to a taken name conflicts", func() {
		s.freshScope()
		a := s.mustGroup("AAA", models.GroupTypeManual)
		s.mustGroup("BBB", models.GroupTypeManual)

		name := "BBB"
		_, err := s.engine.UpdateGroup(s.ctx, s.owner, a.ID, UpdateGroupRequest{Name: &name})
		s.Require().Error(err)
		s.True(dErrors.HasCode(err, dErrors.CodeConflict))
	})

	s.Run("deletion unlinks every member", func() {
		s.freshScope()
		tag := s.mustTag("linked")
		group := s.mustGroup("Linked", models.GroupTypeSmart, tag.ID)
		contact := s.mustContact("Henry", tag.ID)
		s.Require().True(s.members(group.ID)[contact.ID])

		s.Require().NoError(s.engine.DeleteGroup(s.ctx, s.owner, group.ID))

		s.False(s.getContact(contact.ID).InGroup(group.ID))
		s.assertConsistent()
	})
}

// TestGroupRuleChanges covers defining-set replacement and recomputation.
func (s *EngineSuite) TestGroupRuleChanges() {
	s.Run("replacing the rule swaps membership wholesale", func() {
		s.freshScope()
		tagA := s.mustTag("alpha")
		tagB := s.mustTag("beta")
		group := s.mustGroup("Shifting", models.GroupTypeAuto, tagA.ID)
		onA := s.mustContact("OnA", tagA.ID)
		onB := s.mustContact("OnB", tagB.ID)
		s.Require().True(s.members(group.ID)[onA.ID])

		newTags := []id.TagID{tagB.ID}
		got, err := s.engine.UpdateGroup(s.ctx, s.owner, group.ID, UpdateGroupRequest{TagIDs: &newTags})
		s.Require().NoError(err)

		s.False(got.HasMember(onA.ID))
		s.True(got.HasMember(onB.ID))
		s.False(s.getContact(onA.ID).InGroup(group.ID))
		s.True(s.getContact(onB.ID).InGroup(group.ID))
		s.assertConsistent()
	})

	s.Run("clearing the rule empties membership", func() {
		s.freshScope()
		tag := s.mustTag("solo")
		group := s.mustGroup("Solo", models.GroupTypeAuto, tag.ID)
		s.mustContact("Member", tag.ID)

		empty := []id.TagID{}
		got, err := s.engine.UpdateGroup(s.ctx, s.owner, group.ID, UpdateGroupRequest{TagIDs: &empty})
		s.Require().NoError(err)
		s.Empty(got.MemberIDs)
		s.assertConsistent()
	})

	s.Run("setting tags on a manual group is rejected", func() {
		s.freshScope()
		tag := s.mustTag("nope")
		group := s.mustGroup("Manual", models.GroupTypeManual)

		tags := []id.TagID{tag.ID}
		_, err := s.engine.UpdateGroup(s.ctx, s.owner, group.ID, UpdateGroupRequest{TagIDs: &tags})
		s.Require().Error(err)
		s.True(dErrors.HasCode(err, dErrors.CodeValidation))
	})
}

// TestGroupTypeConversion covers switching between manual and derived.
func (s *EngineSuite) TestGroupTypeConversion() {
	s.Run("derived to manual freezes current members", func() {
		s.freshScope()
		tag := s.mustTag("frozen")
		group := s.mustGroup("Freezer", models.GroupTypeAuto, tag.ID)
		kept := s.mustContact("Kept", tag.ID)

		manual := models.GroupTypeManual
		got, err := s.engine.UpdateGroup(s.ctx, s.owner, group.ID, UpdateGroupRequest{Type: &manual})
		s.Require().NoError(err)
		s.Equal(models.GroupTypeManual, got.Type)
		s.Empty(got.TagIDs, "the rule goes away")
		s.True(got.HasMember(kept.ID), "materialized members become the explicit set")

		// Tag traffic no longer affects the frozen set.
		_, err = s.engine.RemoveTagFromContact(s.ctx, s.owner, kept.ID, tag.ID)
		s.Require().NoError(err)
		s.True(s.getGroup(group.ID).HasMember(kept.ID))
		s.assertConsistent()
	})

	s.Run("manual to derived recomputes from the new rule", func() {
		s.freshScope()
		tag := s.mustTag("rule")
		group := s.mustGroup("Adopter", models.GroupTypeManual)
		handpicked := s.mustContact("Handpicked")
		qualifying := s.mustContact("Qualifying", tag.ID)

		_, err := s.engine.AddGroupMember(s.ctx, s.owner, group.ID, handpicked.ID)
		s.Require().NoError(err)

		smart := models.GroupTypeSmart
		tags := []id.TagID{tag.ID}
		got, err := s.engine.UpdateGroup(s.ctx, s.owner, group.ID, UpdateGroupRequest{Type: &smart, TagIDs: &tags})
		s.Require().NoError(err)

		s.False(got.HasMember(handpicked.ID), "non-qualifying members drop out")
		s.True(got.HasMember(qualifying.ID))
		s.assertConsistent()
	})

	s.Run("auto and smart are interchangeable", func() {
		s.freshScope()
		tag := s.mustTag("either")
		group := s.mustGroup("Either", models.GroupTypeAuto, tag.ID)
		member := s.mustContact("Stays", tag.ID)

		smart := models.GroupTypeSmart
		got, err := s.engine.UpdateGroup(s.ctx, s.owner, group.ID, UpdateGroupRequest{Type: &smart})
		s.Require().NoError(err)
		s.Equal(models.GroupTypeSmart, got.Type)
		s.Equal([]id.TagID{tag.ID}, got.TagIDs, "the rule survives")
		s.True(got.HasMember(member.ID))
		s.assertConsistent()
	})
}

// TestManualMembership covers explicit member operations.
func (s *EngineSuite) TestManualMembership() {
	s.Run("add and remove members", func() {
		s.freshScope()
		group := s.mustGroup("Picked", models.GroupTypeManual)
		contact := s.mustContact("Iris")

		got, err := s.engine.AddGroupMember(s.ctx, s.owner, group.ID, contact.ID)
		s.Require().NoError(err)
		s.True(got.HasMember(contact.ID))
		s.True(s.getContact(contact.ID).InGroup(group.ID))

		got, err = s.engine.RemoveGroupMember(s.ctx, s.owner, group.ID, contact.ID)
		s.Require().NoError(err)
		s.False(got.HasMember(contact.ID))
		s.False(s.getContact(contact.ID).InGroup(group.ID))
		s.assertConsistent()
	})

	s.Run("re-adding a member is a no-op", func() {
		s.freshScope()
		group := s.mustGroup("Twice", models.GroupTypeManual)
		contact := s.mustContact("Jack")

		_, err := s.engine.AddGroupMember(s.ctx, s.owner, group.ID, contact.ID)
		s.Require().NoError(err)
		got, err := s.engine.AddGroupMember(s.ctx, s.owner, group.ID, contact.ID)
		s.Require().NoError(err)
		s.Len(got.MemberIDs, 1)
	})

	s.Run("derived groups reject member edits", func() {
		s.freshScope()
		tag := s.mustTag("auto")
		group := s.mustGroup("Auto", models.GroupTypeAuto, tag.ID)
		contact := s.mustContact("Kim")

		_, err := s.engine.AddGroupMember(s.ctx, s.owner, group.ID, contact.ID)
		s.Require().Error(err)
		s.True(dErrors.HasCode(err, dErrors.CodeValidation))

		_, err = s.engine.RemoveGroupMember(s.ctx, s.owner, group.ID, contact.ID)
		s.Require().Error(err)
		s.True(dErrors.HasCode(err, dErrors.CodeValidation))
	})

	s.Run("recompute of a manual group is rejected", func() {
		s.freshScope()
		group := s.mustGroup("NoRule", models.GroupTypeManual)
		_, err := s.engine.RecomputeGroup(s.ctx, s.owner, group.ID)
		s.Require().Error(err)
		s.True(dErrors.HasCode(err, dErrors.CodeValidation))
	})
}
