package tasks

import (
	"errors"
	"time"
)

// Status enumerates the task workflow states. Transitions between states are
// deliberately unordered: the server accepts any of the three values
// regardless of the current one, ordering discipline belongs to callers.
type Status string

const (
	StatusTodo       Status = "todo"
	StatusInProgress Status = "in_progress"
	StatusDone       Status = "done"
)

// ParseStatus maps raw input onto a Status. The second return value is false
// for anything outside the three workflow states.
func ParseStatus(raw string) (Status, bool) {
	switch Status(raw) {
	case StatusTodo, StatusInProgress, StatusDone:
		return Status(raw), true
	}
	return "", false
}

// Valid reports whether the status is one of the enumerated values.
func (s Status) Valid() bool {
	_, ok := ParseStatus(string(s))
	return ok
}

// Task is the persisted task record. OwnerID is fixed at creation and never
// transfers. AssigneeID is nil while the task is unassigned.
type Task struct {
	ID          int64     `json:"id"`
	Title       string    `json:"title"`
	Description string    `json:"description"`
	Status      Status    `json:"status"`
	OwnerID     int64     `json:"owner_id"`
	AssigneeID  *int64    `json:"assignee_id,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// TaskWithAssignee enriches a task with the display name of its assignee.
// Only the name is joined, never other assignee fields.
type TaskWithAssignee struct {
	Task
	AssigneeName *string `json:"assignee_name,omitempty"`
}

// CreateTaskRequest carries the payload for task creation.
type CreateTaskRequest struct {
	Title       string `json:"title" validate:"required,max=255"`
	Description string `json:"description"`
	AssignedTo  *int64 `json:"assigned_to,omitempty" validate:"omitempty,gt=0"`
}

// UpdateTaskRequest carries a partial update. Omitted fields retain their
// prior value.
type UpdateTaskRequest struct {
	Title       *string `json:"title,omitempty"`
	Description *string `json:"description,omitempty"`
	Status      *string `json:"status,omitempty"`
}

// AssignTaskRequest carries the target assignee for an assignment.
type AssignTaskRequest struct {
	AssigneeID int64 `json:"assignee_id" validate:"required,gt=0"`
}

var (
	// ErrNotFound indicates the referenced task does not exist.
	ErrNotFound = errors.New("tasks: not found")
	// ErrUnauthorized indicates a policy denial. The message is fixed and
	// does not reveal anything about the task beyond the denial itself.
	ErrUnauthorized = errors.New("you do not have access to this task")
	// ErrSelfAssignOnly indicates a non-admin tried to assign a task to
	// someone other than themselves.
	ErrSelfAssignOnly = errors.New("tasks can only be assigned to yourself")
)

// ValidationError reports malformed or missing input along with the
// offending field.
type ValidationError struct {
	Field  string
	Reason string
}

// Error implements the error interface.
func (e *ValidationError) Error() string {
	return e.Field + ": " + e.Reason
}
