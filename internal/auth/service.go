package auth

import (
	"context"

	"golang.org/x/crypto/bcrypt"

	"github.com/gudam-erp/gudam-erp/internal/shared"
	"github.com/gudam-erp/gudam-erp/internal/users"
)

// UserSource looks up accounts during login.
type UserSource interface {
	ByEmail(ctx context.Context, email string) (*users.User, error)
}

// Service wraps authentication business rules.
type Service struct {
	users UserSource
}

// NewService constructs a new Service.
func NewService(source UserSource) *Service {
	return &Service{users: source}
}

// Authenticate validates email/password credentials. Inactive accounts fail
// the same way as wrong passwords.
func (s *Service) Authenticate(ctx context.Context, email, password string) (*users.User, error) {
	user, err := s.users.ByEmail(ctx, email)
	if err != nil {
		return nil, shared.ErrInvalidCredentials
	}
	if !user.Active {
		return nil, shared.ErrInvalidCredentials
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		return nil, shared.ErrInvalidCredentials
	}
	return user, nil
}
