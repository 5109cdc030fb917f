package tasks

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"unicode/utf8"

	"github.com/taskflow/taskflow/internal/shared"
)

const maxTitleLength = 255

// UserDirectory resolves assignee ids against the user store.
type UserDirectory interface {
	Exists(ctx context.Context, id int64) (bool, error)
}

// AuditRecorder persists audit trail entries for task mutations.
type AuditRecorder interface {
	Record(ctx context.Context, log shared.AuditLog) error
}

// Service orchestrates the task lifecycle. Every operation takes the
// principal explicitly and delegates authorization to Check; caller-supplied
// actor claims are never trusted.
type Service struct {
	repo  RepositoryPort
	users UserDirectory
	audit AuditRecorder
}

// NewService builds Service instance.
func NewService(repo RepositoryPort, users UserDirectory, audit AuditRecorder) *Service {
	return &Service{repo: repo, users: users, audit: audit}
}

// List returns the tasks visible to the principal: the full set for admins,
// the owned-or-assigned slice for everyone else. Assignee display names are
// joined onto each task.
func (s *Service) List(ctx context.Context, p shared.Principal) ([]TaskWithAssignee, error) {
	if Check(p, ActionListAll, nil).Allowed() {
		return s.repo.ListAll(ctx)
	}
	if !Check(p, ActionListOwnOrAssigned, nil).Allowed() {
		return nil, ErrUnauthorized
	}
	return s.repo.ListOwnOrAssigned(ctx, p.ID)
}

// Create validates the request and stores a new task owned by the principal,
// starting in the todo state. Pre-assigning at creation follows the same
// policy as Assign.
func (s *Service) Create(ctx context.Context, p shared.Principal, req CreateTaskRequest) (*Task, error) {
	if !Check(p, ActionCreate, nil).Allowed() {
		return nil, ErrUnauthorized
	}

	title, verr := validateTitle(req.Title)
	if verr != nil {
		return nil, verr
	}

	task := Task{
		Title:       title,
		Description: req.Description,
		Status:      StatusTodo,
		OwnerID:     p.ID,
	}

	if req.AssignedTo != nil {
		if !Check(p, AssignActionFor(p, *req.AssignedTo), nil).Allowed() {
			return nil, ErrSelfAssignOnly
		}
		exists, err := s.users.Exists(ctx, *req.AssignedTo)
		if err != nil {
			return nil, fmt.Errorf("resolve assignee: %w", err)
		}
		if !exists {
			return nil, &ValidationError{Field: "assigned_to", Reason: "user does not exist"}
		}
		assignee := *req.AssignedTo
		task.AssigneeID = &assignee
	}

	created, err := s.repo.Create(ctx, task)
	if err != nil {
		return nil, fmt.Errorf("create task: %w", err)
	}

	s.recordAudit(ctx, p, "task.create", created.ID, map[string]any{"title": created.Title})
	return created, nil
}

// Get returns a single task after checking read access.
func (s *Service) Get(ctx context.Context, p shared.Principal, id int64) (*Task, error) {
	task, err := s.repo.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if !Check(p, ActionReadOne, task).Allowed() {
		return nil, ErrUnauthorized
	}
	return task, nil
}

// Update applies a partial update. Fields absent from the request retain
// their prior value. The row is locked and the policy re-evaluated inside
// the same transaction as the write.
func (s *Service) Update(ctx context.Context, p shared.Principal, id int64, req UpdateTaskRequest) (*Task, error) {
	var updated *Task
	err := s.repo.WithTx(ctx, func(ctx context.Context, tx TxRepository) error {
		current, err := tx.GetForUpdate(ctx, id)
		if err != nil {
			return err
		}
		if !Check(p, ActionUpdate, current).Allowed() {
			return ErrUnauthorized
		}

		next := *current
		if req.Title != nil {
			title, verr := validateTitle(*req.Title)
			if verr != nil {
				return verr
			}
			next.Title = title
		}
		if req.Description != nil {
			next.Description = *req.Description
		}
		if req.Status != nil {
			status, ok := ParseStatus(*req.Status)
			if !ok {
				return &ValidationError{Field: "status", Reason: "must be one of todo, in_progress, done"}
			}
			next.Status = status
		}

		updated, err = tx.Update(ctx, next)
		return err
	})
	if err != nil {
		return nil, err
	}

	s.recordAudit(ctx, p, "task.update", updated.ID, map[string]any{"status": string(updated.Status)})
	return updated, nil
}

// Assign sets the task assignee. Non-admins may only assign to themselves;
// admins may assign to any existing user.
func (s *Service) Assign(ctx context.Context, p shared.Principal, id, assigneeID int64) (*Task, error) {
	var updated *Task
	err := s.repo.WithTx(ctx, func(ctx context.Context, tx TxRepository) error {
		current, err := tx.GetForUpdate(ctx, id)
		if err != nil {
			return err
		}
		if !Check(p, AssignActionFor(p, assigneeID), current).Allowed() {
			return ErrSelfAssignOnly
		}
		exists, err := s.users.Exists(ctx, assigneeID)
		if err != nil {
			return fmt.Errorf("resolve assignee: %w", err)
		}
		if !exists {
			return &ValidationError{Field: "assignee_id", Reason: "user does not exist"}
		}

		next := *current
		next.AssigneeID = &assigneeID
		updated, err = tx.Update(ctx, next)
		return err
	})
	if err != nil {
		return nil, err
	}

	s.recordAudit(ctx, p, "task.assign", updated.ID, map[string]any{"assignee_id": assigneeID})
	return updated, nil
}

// Delete removes the task permanently. There is no soft-delete.
func (s *Service) Delete(ctx context.Context, p shared.Principal, id int64) error {
	err := s.repo.WithTx(ctx, func(ctx context.Context, tx TxRepository) error {
		current, err := tx.GetForUpdate(ctx, id)
		if err != nil {
			return err
		}
		if !Check(p, ActionDelete, current).Allowed() {
			return ErrUnauthorized
		}
		return tx.Delete(ctx, current.ID)
	})
	if err != nil {
		return err
	}

	s.recordAudit(ctx, p, "task.delete", id, nil)
	return nil
}

func validateTitle(raw string) (string, *ValidationError) {
	title := strings.TrimSpace(raw)
	if title == "" {
		return "", &ValidationError{Field: "title", Reason: "is required"}
	}
	if utf8.RuneCountInString(title) > maxTitleLength {
		return "", &ValidationError{Field: "title", Reason: fmt.Sprintf("must be at most %d characters", maxTitleLength)}
	}
	return title, nil
}

// Audit failures never fail the originating request.
func (s *Service) recordAudit(ctx context.Context, p shared.Principal, action string, taskID int64, meta map[string]any) {
	if s.audit == nil {
		return
	}
	_ = s.audit.Record(ctx, shared.AuditLog{
		ActorID:  p.ID,
		Action:   action,
		Entity:   "task",
		EntityID: strconv.FormatInt(taskID, 10),
		Meta:     meta,
	})
}
