package auth

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/gudam-erp/gudam-erp/internal/shared"
	"github.com/gudam-erp/gudam-erp/internal/users"
)

type stubUserSource struct {
	users map[string]*users.User
}

func (s *stubUserSource) ByEmail(_ context.Context, email string) (*users.User, error) {
	u, ok := s.users[email]
	if !ok {
		return nil, shared.ErrNotFound
	}
	return u, nil
}

func newStubUserSource(t *testing.T) *stubUserSource {
	t.Helper()
	hash, err := bcrypt.GenerateFromPassword([]byte("secret123"), bcrypt.MinCost)
	require.NoError(t, err)
	return &stubUserSource{users: map[string]*users.User{
		"owner@gudam.test": {
			ID:           1,
			Email:        "owner@gudam.test",
			PasswordHash: string(hash),
			Active:       true,
		},
		"former@gudam.test": {
			ID:           2,
			Email:        "former@gudam.test",
			PasswordHash: string(hash),
			Active:       false,
		},
	}}
}

func TestAuthenticateSuccess(t *testing.T) {
	svc := NewService(newStubUserSource(t))

	user, err := svc.Authenticate(context.Background(), "owner@gudam.test", "secret123")
	require.NoError(t, err)
	assert.Equal(t, int64(1), user.ID)
}

func TestAuthenticateWrongPassword(t *testing.T) {
	svc := NewService(newStubUserSource(t))

	_, err := svc.Authenticate(context.Background(), "owner@gudam.test", "nope")
	assert.ErrorIs(t, err, shared.ErrInvalidCredentials)
}

func TestAuthenticateUnknownEmail(t *testing.T) {
	svc := NewService(newStubUserSource(t))

	_, err := svc.Authenticate(context.Background(), "ghost@gudam.test", "secret123")
	assert.ErrorIs(t, err, shared.ErrInvalidCredentials)
}

func TestAuthenticateInactiveAccount(t *testing.T) {
	svc := NewService(newStubUserSource(t))

	// Deactivated accounts fail indistinguishably from bad credentials.
	_, err := svc.Authenticate(context.Background(), "former@gudam.test", "secret123")
	assert.ErrorIs(t, err, shared.ErrInvalidCredentials)
}
