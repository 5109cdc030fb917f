package users

import (
	"context"
)

// RepositoryPort defines data access methods for users.
type RepositoryPort interface {
	GetUser(ctx context.Context, id int64) (*User, error)
	ListUsers(ctx context.Context) ([]User, error)
	Exists(ctx context.Context, id int64) (bool, error)
	RolesForUser(ctx context.Context, id int64) ([]string, error)
}

// Service handles user lookups for principal construction and assignment.
type Service struct {
	repo RepositoryPort
}

// NewService builds Service instance.
func NewService(repo RepositoryPort) *Service {
	return &Service{repo: repo}
}

// GetUser returns a user by id.
func (s *Service) GetUser(ctx context.Context, id int64) (*User, error) {
	return s.repo.GetUser(ctx, id)
}

// ListUsers returns all active users.
func (s *Service) ListUsers(ctx context.Context) ([]User, error) {
	return s.repo.ListUsers(ctx)
}

// Exists reports whether an active user with the given id exists.
func (s *Service) Exists(ctx context.Context, id int64) (bool, error) {
	return s.repo.Exists(ctx, id)
}

// RolesForUser returns the role labels attached to a user.
func (s *Service) RolesForUser(ctx context.Context, id int64) ([]string, error) {
	return s.repo.RolesForUser(ctx, id)
}
