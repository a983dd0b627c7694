package engine

import (
	"sync"

	"github.com/google/uuid"

	"tagdex/internal/models"
	id "tagdex/pkg/domain"
	dErrors "tagdex/pkg/domain-errors"
)

// freshScope gives a subtest its own owner so entity names do not collide
// across subtests of one method (SetupTest runs once per method).
func (s *EngineSuite) freshScope() {
	s.owner = id.OwnerID(uuid.New())
}

// TestMembershipScenarios walks the canonical derived-membership flows.
func (s *EngineSuite) TestMembershipScenarios() {
	s.Run("contact with a defining tag lands in every matching group", func() {
		s.freshScope()
		engineer := s.mustTag("Engineer")
		manager := s.mustTag("Manager")
		engGroup := s.mustGroup("Eng-Group", models.GroupTypeAuto, engineer.ID)
		allGroup := s.mustGroup("All-Group", models.GroupTypeAuto, engineer.ID, manager.ID)

		x := s.mustContact("X", engineer.ID)

		s.True(s.members(engGroup.ID)[x.ID])
		s.True(s.members(allGroup.ID)[x.ID])
		s.assertConsistent()
	})

	s.Run("removing the only qualifying tag empties both groups", func() {
		s.freshScope()
		engineer := s.mustTag("Engineer")
		manager := s.mustTag("Manager")
		engGroup := s.mustGroup("Eng-Group", models.GroupTypeAuto, engineer.ID)
		allGroup := s.mustGroup("All-Group", models.GroupTypeAuto, engineer.ID, manager.ID)

		x := s.mustContact("X", engineer.ID)
		_, err := s.engine.RemoveTagFromContact(s.ctx, s.owner, x.ID, engineer.ID)
		s.Require().NoError(err)

		s.Empty(s.getGroup(engGroup.ID).MemberIDs)
		s.Empty(s.getGroup(allGroup.ID).MemberIDs)
		s.Empty(s.getContact(x.ID).GroupIDs)
		s.assertConsistent()
	})

	s.Run("a second qualifying tag keeps the wider group's membership", func() {
		s.freshScope()
		engineer := s.mustTag("Engineer")
		manager := s.mustTag("Manager")
		engGroup := s.mustGroup("Eng-Group", models.GroupTypeAuto, engineer.ID)
		allGroup := s.mustGroup("All-Group", models.GroupTypeAuto, engineer.ID, manager.ID)

		x := s.mustContact("X", engineer.ID, manager.ID)
		_, err := s.engine.RemoveTagFromContact(s.ctx, s.owner, x.ID, engineer.ID)
		s.Require().NoError(err)

		s.Empty(s.getGroup(engGroup.ID).MemberIDs)
		s.True(s.members(allGroup.ID)[x.ID], "X still qualifies via Manager")
		s.assertConsistent()
	})

	s.Run("deleting a tag cascades through contacts and defining sets", func() {
		s.freshScope()
		engineer := s.mustTag("Engineer")
		manager := s.mustTag("Manager")
		allGroup := s.mustGroup("All-Group", models.GroupTypeAuto, engineer.ID, manager.ID)

		x := s.mustContact("X", manager.ID)
		s.Require().True(s.members(allGroup.ID)[x.ID])

		s.Require().NoError(s.engine.DeleteTag(s.ctx, s.owner, manager.ID))

		got := s.getGroup(allGroup.ID)
		s.Equal([]id.TagID{engineer.ID}, got.TagIDs)
		s.False(got.HasMember(x.ID), "no remaining overlap after the cascade")
		s.False(s.getContact(x.ID).HasTag(manager.ID))

		_, err := s.engine.GetTag(s.ctx, s.owner, manager.ID)
		s.True(dErrors.HasCode(err, dErrors.CodeNotFound))
		s.assertConsistent()
	})

	s.Run("deleting the last defining tag empties the group", func() {
		s.freshScope()
		solo := s.mustTag("Solo")
		group := s.mustGroup("Soloists", models.GroupTypeSmart, solo.ID)
		x := s.mustContact("Y", solo.ID)
		s.Require().True(s.members(group.ID)[x.ID])

		s.Require().NoError(s.engine.DeleteTag(s.ctx, s.owner, solo.ID))

		got := s.getGroup(group.ID)
		s.Empty(got.TagIDs)
		s.Empty(got.MemberIDs, "an empty defining set matches nothing, never everything")
		s.assertConsistent()
	})
}

// TestConcurrentAssignAndDelete races a tag assignment against the tag's
// deletion on the same owner. The two operations must serialize: whichever
// order wins, the final state must never leave the contact referencing a tag
// that no longer exists.
func (s *EngineSuite) TestConcurrentAssignAndDelete() {
	for i := 0; i < 20; i++ {
		owner := s.owner
		tag := s.mustTag("Engineer")
		x := s.mustContact("X")

		var wg sync.WaitGroup
		var addErr, delErr error
		wg.Add(2)
		go func() {
			defer wg.Done()
			_, addErr = s.engine.AddTagToContact(s.ctx, owner, x.ID, tag.ID)
		}()
		go func() {
			defer wg.Done()
			delErr = s.engine.DeleteTag(s.ctx, owner, tag.ID)
		}()
		wg.Wait()

		s.Require().NoError(delErr, "deletion holds the lock until it wins or runs second; it cannot fail")
		if addErr != nil {
			s.True(dErrors.HasCode(addErr, dErrors.CodeNotFound), "an add losing the race fails cleanly")
		}

		// Either order leaves the tag gone and the contact clean.
		_, err := s.engine.GetTag(s.ctx, owner, tag.ID)
		s.True(dErrors.HasCode(err, dErrors.CodeNotFound))
		s.False(s.getContact(x.ID).HasTag(tag.ID), "contact must never reference a deleted tag")
		s.assertConsistent()

		// Fresh entities per round.
		s.Require().NoError(s.engine.DeleteContact(s.ctx, owner, x.ID))
	}
}

// TestRecomputeIdempotence verifies repeated recomputation changes nothing.
func (s *EngineSuite) TestRecomputeIdempotence() {
	tag := s.mustTag("stable")
	group := s.mustGroup("Stable", models.GroupTypeAuto, tag.ID)
	s.mustContact("A", tag.ID)
	s.mustContact("B", tag.ID)
	s.mustContact("C")

	first, err := s.engine.RecomputeGroup(s.ctx, s.owner, group.ID)
	s.Require().NoError(err)
	second, err := s.engine.RecomputeGroup(s.ctx, s.owner, group.ID)
	s.Require().NoError(err)

	s.ElementsMatch(first.MemberIDs, second.MemberIDs)
	s.Len(second.MemberIDs, 2)
	s.assertConsistent()
}

// TestManualGroupImmunity verifies tag traffic never touches manual groups.
func (s *EngineSuite) TestManualGroupImmunity() {
	tag := s.mustTag("ignored")
	manual := s.mustGroup("Handpicked", models.GroupTypeManual)
	member := s.mustContact("Kept")
	outsider := s.mustContact("Outside", tag.ID)

	_, err := s.engine.AddGroupMember(s.ctx, s.owner, manual.ID, member.ID)
	s.Require().NoError(err)

	// Tag assignment, removal, and deletion leave the manual set untouched.
	_, err = s.engine.AddTagToContact(s.ctx, s.owner, member.ID, tag.ID)
	s.Require().NoError(err)
	_, err = s.engine.RemoveTagFromContact(s.ctx, s.owner, member.ID, tag.ID)
	s.Require().NoError(err)
	s.Require().NoError(s.engine.DeleteTag(s.ctx, s.owner, tag.ID))

	got := s.getGroup(manual.ID)
	s.True(got.HasMember(member.ID))
	s.False(got.HasMember(outsider.ID))
	s.assertConsistent()
}
