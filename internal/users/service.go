package users

import (
	"context"

	"github.com/gudam-erp/gudam-erp/internal/authz"
)

// Service exposes user lookups to the rest of the application.
type Service struct {
	repo *Repository
}

// NewService constructs a Service.
func NewService(repo *Repository) *Service {
	return &Service{repo: repo}
}

// ByID fetches a user by ID.
func (s *Service) ByID(ctx context.Context, id int64) (*User, error) {
	return s.repo.ByID(ctx, id)
}

// ByEmail fetches a user by email.
func (s *Service) ByEmail(ctx context.Context, email string) (*User, error) {
	return s.repo.ByEmail(ctx, email)
}

// List returns all users.
func (s *Service) List(ctx context.Context) ([]User, error) {
	return s.repo.List(ctx)
}

// PrincipalByID adapts the repository to the authz identity lookup.
func (s *Service) PrincipalByID(ctx context.Context, id int64) (authz.Principal, error) {
	return s.repo.ByID(ctx, id)
}
