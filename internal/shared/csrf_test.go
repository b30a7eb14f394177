package shared

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCSRFEnsureTokenStable(t *testing.T) {
	m := NewCSRFManager("test-secret")
	sess := &Session{ID: "abc"}

	token, err := m.EnsureToken(context.Background(), sess)
	require.NoError(t, err)
	require.NotEmpty(t, token)

	// The token sticks to the session for its lifetime.
	again, err := m.EnsureToken(context.Background(), sess)
	require.NoError(t, err)
	assert.Equal(t, token, again)
}

func TestCSRFVerifyToken(t *testing.T) {
	m := NewCSRFManager("test-secret")
	sess := &Session{ID: "abc"}

	token, err := m.EnsureToken(context.Background(), sess)
	require.NoError(t, err)

	assert.NoError(t, m.VerifyToken(context.Background(), sess, token))
	assert.ErrorIs(t, m.VerifyToken(context.Background(), sess, "forged"), ErrCSRFTokenMismatch)
	assert.ErrorIs(t, m.VerifyToken(context.Background(), sess, ""), ErrCSRFTokenMissing)
}

func TestCSRFVerifyWithoutSessionToken(t *testing.T) {
	m := NewCSRFManager("test-secret")

	assert.ErrorIs(t, m.VerifyToken(context.Background(), &Session{}, "anything"), ErrCSRFTokenMissing)
	assert.ErrorIs(t, m.VerifyToken(context.Background(), nil, "anything"), ErrCSRFTokenMissing)
}

func TestNewPagination(t *testing.T) {
	p := NewPagination(2, 20, 45)
	assert.Equal(t, 2, p.Page)
	assert.Equal(t, 3, p.TotalPages)

	p = NewPagination(0, 0, 0)
	assert.Equal(t, 1, p.Page)
	assert.Equal(t, 20, p.PerPage)
	assert.Equal(t, 0, p.TotalPages)
}
