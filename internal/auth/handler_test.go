package auth

import (
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/dongphonui/sigma-vie-shop/internal/shared"
)

func newHandler(t *testing.T) *Handler {
	t.Helper()
	hash, err := HashPassword("rat-mat-khau")
	require.NoError(t, err)
	svc := NewService(Credentials{Username: "admin", PasswordHash: hash})
	return NewHandler(slog.Default(), svc, shared.NewCSRFManager("test-secret"))
}

func loginRecorder(t *testing.T, h *Handler, body string, sess *shared.Session) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, "/auth/login", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	if sess != nil {
		req = req.WithContext(shared.ContextWithSession(req.Context(), sess))
	}
	rec := httptest.NewRecorder()
	h.Login(rec, req)
	return rec
}

func TestLoginSuccess(t *testing.T) {
	h := newHandler(t)
	sess := &shared.Session{}

	rec := loginRecorder(t, h, `{"username":"admin","password":"rat-mat-khau"}`, sess)
	require.Equal(t, http.StatusOK, rec.Code)
	require.Equal(t, "admin", sess.User())
	require.Contains(t, rec.Body.String(), "csrf_token")
}

func TestLoginWrongPassword(t *testing.T) {
	h := newHandler(t)
	sess := &shared.Session{}

	rec := loginRecorder(t, h, `{"username":"admin","password":"sai-mat-khau"}`, sess)
	require.Equal(t, http.StatusUnauthorized, rec.Code)
	require.Empty(t, sess.User())
}

func TestLoginUnknownUser(t *testing.T) {
	h := newHandler(t)

	rec := loginRecorder(t, h, `{"username":"khach","password":"rat-mat-khau"}`, &shared.Session{})
	require.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestLoginValidation(t *testing.T) {
	h := newHandler(t)

	rec := loginRecorder(t, h, `{"username":"admin","password":"ngan"}`, &shared.Session{})
	require.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestRequireAuth(t *testing.T) {
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
	guarded := RequireAuth(next)

	req := httptest.NewRequest(http.MethodGet, "/products", nil)
	rec := httptest.NewRecorder()
	guarded.ServeHTTP(rec, req)
	require.Equal(t, http.StatusUnauthorized, rec.Code, "anonymous request rejected")

	sess := &shared.Session{}
	sess.SetUser("admin")
	req = httptest.NewRequest(http.MethodGet, "/products", nil)
	req = req.WithContext(shared.ContextWithSession(req.Context(), sess))
	rec = httptest.NewRecorder()
	guarded.ServeHTTP(rec, req)
	require.Equal(t, http.StatusOK, rec.Code)
}
