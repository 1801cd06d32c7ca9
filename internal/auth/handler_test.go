package auth

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/go-chi/chi/v5"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/require"

	"github.com/procureflow/procureflow/internal/backend"
	"github.com/procureflow/procureflow/internal/shared"
	_ "github.com/procureflow/procureflow/internal/testing/guard"
)

type stubBackend struct {
	result  backend.LoginResult
	loginOK bool
	logouts int
}

func (s *stubBackend) Login(ctx context.Context, email, password string) (backend.LoginResult, error) {
	if !s.loginOK {
		return backend.LoginResult{}, errors.New("upstream says no")
	}
	return s.result, nil
}

func (s *stubBackend) Logout(ctx context.Context, token string) error {
	s.logouts++
	return nil
}

func (s *stubBackend) FetchProfile(ctx context.Context, token string) (shared.Profile, error) {
	return s.result.Profile, nil
}

func newTestRouter(t *testing.T, stub *stubBackend) http.Handler {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })

	sessions := shared.NewSessionManager(client, "procureflow_session", "test-secret", time.Hour, false)
	logger := slog.New(slog.NewTextHandler(&strings.Builder{}, nil))
	handler := NewHandler(logger, NewService(stub), sessions)

	r := chi.NewRouter()
	r.Use(func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
			sess, err := sessions.Load(req.Context(), req)
			require.NoError(t, err)
			next.ServeHTTP(w, req.WithContext(shared.ContextWithSession(req.Context(), sess)))
		})
	})
	handler.MountRoutes(r)
	return r
}

func TestLoginStoresSessionAndReturnsProfile(t *testing.T) {
	stub := &stubBackend{
		loginOK: true,
		result: backend.LoginResult{
			Token:   "bearer-abc",
			Profile: shared.Profile{UserID: "u-1", Email: "buyer@initech.test", Role: shared.RoleCompany},
		},
	}
	router := newTestRouter(t, stub)

	req := httptest.NewRequest(http.MethodPost, "/auth/login", strings.NewReader(`{"email":"buyer@initech.test","password":"hunter2222"}`))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	require.Contains(t, rec.Body.String(), `"userId":"u-1"`)

	cookies := rec.Result().Cookies()
	require.NotEmpty(t, cookies)

	// The issued cookie should resolve to the stored token on a follow-up call.
	me := httptest.NewRequest(http.MethodGet, "/auth/me", nil)
	me.AddCookie(cookies[0])
	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, me)
	require.Equal(t, http.StatusOK, rec.Code)
	require.Contains(t, rec.Body.String(), `"role":"company"`)
}

func TestLoginRejectsBadCredentials(t *testing.T) {
	router := newTestRouter(t, &stubBackend{loginOK: false})

	req := httptest.NewRequest(http.MethodPost, "/auth/login", strings.NewReader(`{"email":"buyer@initech.test","password":"hunter22222"}`))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestLoginValidatesPayload(t *testing.T) {
	router := newTestRouter(t, &stubBackend{loginOK: true})

	req := httptest.NewRequest(http.MethodPost, "/auth/login", strings.NewReader(`{"email":"not-an-email","password":"short"}`))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestLogoutRevokesAndClearsCookie(t *testing.T) {
	stub := &stubBackend{
		loginOK: true,
		result:  backend.LoginResult{Token: "bearer-abc", Profile: shared.Profile{UserID: "u-1", Role: shared.RoleCompany}},
	}
	router := newTestRouter(t, stub)

	login := httptest.NewRequest(http.MethodPost, "/auth/login", strings.NewReader(`{"email":"buyer@initech.test","password":"hunter22222"}`))
	login.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, login)
	require.Equal(t, http.StatusOK, rec.Code)
	cookie := rec.Result().Cookies()[0]

	logout := httptest.NewRequest(http.MethodPost, "/auth/logout", nil)
	logout.AddCookie(cookie)
	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, logout)

	require.Equal(t, http.StatusNoContent, rec.Code)
	require.Equal(t, 1, stub.logouts)

	cleared := rec.Result().Cookies()
	require.NotEmpty(t, cleared)
	require.Negative(t, cleared[0].MaxAge)
}
