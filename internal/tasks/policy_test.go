package tasks

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/taskflow/taskflow/internal/shared"
)

func adminPrincipal() shared.Principal {
	return shared.NewPrincipal(1, "Admin", []string{shared.RoleAdmin})
}

func memberPrincipal(id int64) shared.Principal {
	return shared.NewPrincipal(id, "Member", []string{"member"})
}

func allActions() []Action {
	return []Action{
		ActionListAll,
		ActionListOwnOrAssigned,
		ActionCreate,
		ActionReadOne,
		ActionUpdate,
		ActionAssignToSelf,
		ActionAssignToOther,
		ActionDelete,
	}
}

func TestCheckAdminAllowsEveryAction(t *testing.T) {
	admin := adminPrincipal()
	task := &Task{ID: 7, OwnerID: 99}

	for _, action := range allActions() {
		assert.True(t, Check(admin, action, task).Allowed(), "action %d", action)
	}
}

func TestCheckIsTotalForNonAdmins(t *testing.T) {
	member := memberPrincipal(2)
	task := &Task{ID: 7, OwnerID: 99}

	for _, action := range allActions() {
		decision := Check(member, action, task)
		assert.True(t, decision == Allow || decision == Deny, "action %d", action)
	}
}

func TestCheckOwnerOnlyMutation(t *testing.T) {
	owner := memberPrincipal(10)
	assignee := memberPrincipal(20)
	stranger := memberPrincipal(30)

	assigneeID := assignee.ID
	task := &Task{ID: 1, OwnerID: owner.ID, AssigneeID: &assigneeID}

	for _, action := range []Action{ActionReadOne, ActionUpdate, ActionDelete} {
		assert.True(t, Check(owner, action, task).Allowed(), "owner action %d", action)
		// Being the assignee grants visibility, never mutation.
		assert.False(t, Check(assignee, action, task).Allowed(), "assignee action %d", action)
		assert.False(t, Check(stranger, action, task).Allowed(), "stranger action %d", action)
	}
}

func TestCheckCreateAlwaysAllowed(t *testing.T) {
	assert.True(t, Check(memberPrincipal(5), ActionCreate, nil).Allowed())
	assert.True(t, Check(adminPrincipal(), ActionCreate, nil).Allowed())
}

func TestCheckAssignSelfVersusOther(t *testing.T) {
	member := memberPrincipal(5)

	assert.True(t, Check(member, ActionAssignToSelf, &Task{OwnerID: 99}).Allowed())
	assert.False(t, Check(member, ActionAssignToOther, &Task{OwnerID: 99}).Allowed())
}

func TestCheckListing(t *testing.T) {
	member := memberPrincipal(5)

	assert.False(t, Check(member, ActionListAll, nil).Allowed())
	assert.True(t, Check(member, ActionListOwnOrAssigned, nil).Allowed())
}

func TestCheckNilTaskDeniesMutation(t *testing.T) {
	member := memberPrincipal(5)

	for _, action := range []Action{ActionReadOne, ActionUpdate, ActionDelete} {
		assert.False(t, Check(member, action, nil).Allowed(), "action %d", action)
	}
}

func TestAssignActionFor(t *testing.T) {
	member := memberPrincipal(5)

	assert.Equal(t, ActionAssignToSelf, AssignActionFor(member, 5))
	assert.Equal(t, ActionAssignToOther, AssignActionFor(member, 6))
}
