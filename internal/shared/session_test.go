package shared

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/require"
)

func newTestSessionManager(t *testing.T) *SessionManager {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	return NewSessionManager(client, "procureflow_session", "test-secret", time.Hour, false)
}

func TestSessionRoundTrip(t *testing.T) {
	sm := newTestSessionManager(t)
	ctx := context.Background()

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	sess, err := sm.Load(ctx, req)
	require.NoError(t, err)
	require.NotNil(t, sess)

	sess.SetToken("tok-abc")
	sess.SetProfile(&Profile{UserID: "u-1", Role: RoleVendor, VendorID: "v-9"})

	rec := httptest.NewRecorder()
	require.NoError(t, sm.Commit(ctx, rec, req, sess))

	cookies := rec.Result().Cookies()
	require.Len(t, cookies, 1)
	require.Equal(t, "procureflow_session", cookies[0].Name)
	require.True(t, cookies[0].HttpOnly)

	// A follow-up request with the cookie restores token and profile.
	req2 := httptest.NewRequest(http.MethodGet, "/", nil)
	req2.AddCookie(cookies[0])
	restored, err := sm.Load(ctx, req2)
	require.NoError(t, err)
	require.Equal(t, "tok-abc", restored.Token())
	require.NotNil(t, restored.Profile())
	require.Equal(t, RoleVendor, restored.Profile().Role)
	require.Equal(t, "v-9", restored.Profile().VendorID)
}

func TestSessionDestroy(t *testing.T) {
	sm := newTestSessionManager(t)
	ctx := context.Background()

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	sess, err := sm.Load(ctx, req)
	require.NoError(t, err)
	sess.SetToken("tok-abc")

	rec := httptest.NewRecorder()
	require.NoError(t, sm.Commit(ctx, rec, req, sess))
	cookie := rec.Result().Cookies()[0]

	sm.Destroy(sess)
	rec2 := httptest.NewRecorder()
	require.NoError(t, sm.Commit(ctx, rec2, req, sess))
	cleared := rec2.Result().Cookies()[0]
	require.Empty(t, cleared.Value)
	require.Negative(t, cleared.MaxAge)

	// The redis entry is gone: a fresh load with the old cookie starts over.
	req3 := httptest.NewRequest(http.MethodGet, "/", nil)
	req3.AddCookie(cookie)
	fresh, err := sm.Load(ctx, req3)
	require.NoError(t, err)
	require.Empty(t, fresh.Token())
	require.Nil(t, fresh.Profile())
}

func TestUnknownCookieStartsFreshSession(t *testing.T) {
	sm := newTestSessionManager(t)

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.AddCookie(&http.Cookie{Name: "procureflow_session", Value: "no-such-session"})
	sess, err := sm.Load(context.Background(), req)
	require.NoError(t, err)
	require.Empty(t, sess.Token())
}
