package tasks

import "github.com/taskflow/taskflow/internal/shared"

// Action enumerates everything a principal can ask to do with tasks.
type Action int

const (
	ActionListAll Action = iota
	ActionListOwnOrAssigned
	ActionCreate
	ActionReadOne
	ActionUpdate
	ActionAssignToSelf
	ActionAssignToOther
	ActionDelete
)

// Decision is the outcome of a policy check.
type Decision int

const (
	Deny Decision = iota
	Allow
)

// Allowed reports whether the decision permits the action.
func (d Decision) Allowed() bool {
	return d == Allow
}

// Check decides whether the principal may perform the action on the task.
// It is a pure function with no side effects and is total: every
// action/role combination maps to a decision. Callers must re-evaluate it on
// every mutating call, decisions are never cached across requests.
//
// Rules, in priority order:
//  1. Admins may do everything.
//  2. ReadOne/Update/Delete require ownership. Being the assignee grants
//     visibility in listings but no mutation rights.
//  3. Anyone may create a task, becoming its owner.
//  4. Non-admins may assign only to themselves.
//  5. Only admins list the full task set; everyone may list their own
//     owned-or-assigned slice.
func Check(p shared.Principal, action Action, task *Task) Decision {
	if p.IsAdmin() {
		return Allow
	}

	switch action {
	case ActionReadOne, ActionUpdate, ActionDelete:
		if task != nil && task.OwnerID == p.ID {
			return Allow
		}
		return Deny
	case ActionCreate:
		return Allow
	case ActionAssignToSelf:
		return Allow
	case ActionAssignToOther:
		return Deny
	case ActionListAll:
		return Deny
	case ActionListOwnOrAssigned:
		return Allow
	}

	return Deny
}

// AssignActionFor selects the assignment action for a target assignee. The
// self/other distinction is made here so Check itself stays a function of
// (principal, action, task) only.
func AssignActionFor(p shared.Principal, assigneeID int64) Action {
	if assigneeID == p.ID {
		return ActionAssignToSelf
	}
	return ActionAssignToOther
}
