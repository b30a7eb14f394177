package shared

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestManager(t *testing.T) (*miniredis.Miniredis, *SessionManager) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	return mr, NewSessionManager(client, "gudam_session", time.Hour, false)
}

func sessionCookie(t *testing.T, rec *httptest.ResponseRecorder) *http.Cookie {
	t.Helper()
	for _, c := range rec.Result().Cookies() {
		if c.Name == "gudam_session" {
			return c
		}
	}
	t.Fatal("session cookie not set")
	return nil
}

func TestSessionRoundTrip(t *testing.T) {
	_, sm := newTestManager(t)
	ctx := context.Background()

	sess, err := sm.Load(ctx, httptest.NewRequest(http.MethodGet, "/", nil))
	require.NoError(t, err)
	sess.SetUser("42")
	sess.Set("csrf", "token-1")

	rec := httptest.NewRecorder()
	require.NoError(t, sm.Commit(ctx, rec, sess))
	cookie := sessionCookie(t, rec)
	require.NotEmpty(t, cookie.Value)
	assert.True(t, cookie.HttpOnly)

	// A follow-up request with the cookie sees the stored state.
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.AddCookie(cookie)
	loaded, err := sm.Load(ctx, req)
	require.NoError(t, err)
	assert.Equal(t, "42", loaded.User())
	assert.Equal(t, "token-1", loaded.Get("csrf"))
}

func TestSessionLoadWithoutCookieIsFresh(t *testing.T) {
	_, sm := newTestManager(t)

	sess, err := sm.Load(context.Background(), httptest.NewRequest(http.MethodGet, "/", nil))
	require.NoError(t, err)
	assert.Empty(t, sess.User())
	assert.Empty(t, sess.ID)
}

func TestSessionExpiredCookieIsFresh(t *testing.T) {
	_, sm := newTestManager(t)

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.AddCookie(&http.Cookie{Name: "gudam_session", Value: "gone"})

	sess, err := sm.Load(context.Background(), req)
	require.NoError(t, err)
	assert.Empty(t, sess.User())
	// The stale cookie's ID is reused so the browser keeps one cookie.
	assert.Equal(t, "gone", sess.ID)
}

func TestSessionDestroy(t *testing.T) {
	mr, sm := newTestManager(t)
	ctx := context.Background()

	sess, err := sm.Load(ctx, httptest.NewRequest(http.MethodGet, "/", nil))
	require.NoError(t, err)
	sess.SetUser("42")
	rec := httptest.NewRecorder()
	require.NoError(t, sm.Commit(ctx, rec, sess))
	require.True(t, mr.Exists("session:"+sess.ID))

	sm.Destroy(sess)
	rec = httptest.NewRecorder()
	require.NoError(t, sm.Commit(ctx, rec, sess))
	assert.False(t, mr.Exists("session:"+sess.ID))

	cookie := sessionCookie(t, rec)
	assert.Empty(t, cookie.Value)
	assert.Equal(t, -1, cookie.MaxAge)
}

func TestSessionCleanNoRewrite(t *testing.T) {
	mr, sm := newTestManager(t)
	ctx := context.Background()

	sess, err := sm.Load(ctx, httptest.NewRequest(http.MethodGet, "/", nil))
	require.NoError(t, err)
	sess.SetUser("42")
	require.NoError(t, sm.Commit(ctx, httptest.NewRecorder(), sess))

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.AddCookie(&http.Cookie{Name: "gudam_session", Value: sess.ID})
	loaded, err := sm.Load(ctx, req)
	require.NoError(t, err)

	mr.FlushAll()
	// An untouched session does not rewrite the Redis entry.
	require.NoError(t, sm.Commit(ctx, httptest.NewRecorder(), loaded))
	assert.False(t, mr.Exists("session:"+sess.ID))
}
