package middleware_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"cat-feeder/internal/middleware"
)

// fakeSessions implementa el port sin depender de ningún módulo de
// dominio.
type fakeSessions struct {
	users  map[string]middleware.User // token -> user
	hasAny bool
}

func (f fakeSessions) HasUsers(context.Context) (bool, error) {
	return f.hasAny, nil
}

func (f fakeSessions) UserFromSession(_ context.Context, token string) (middleware.User, error) {
	u, ok := f.users[token]
	if !ok {
		return middleware.User{}, http.ErrNoCookie
	}
	return u, nil
}

func protected(sessions middleware.Sessions) http.Handler {
	var h http.Handler = http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		u, _ := middleware.GetUser(r.Context())
		_, _ = w.Write([]byte(u.Username))
	})
	return middleware.SessionContext(sessions)(middleware.RequireAuth(sessions)(h))
}

func doGet(t *testing.T, h http.Handler, sessionToken string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodGet, "/x", nil)
	if sessionToken != "" {
		req.AddCookie(&http.Cookie{Name: middleware.SessionCookieName, Value: sessionToken})
	}
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func TestRequireAuth_OpenWhileNoUsers(t *testing.T) {
	h := protected(fakeSessions{hasAny: false})

	rec := doGet(t, h, "")
	if rec.Code != http.StatusOK {
		t.Fatalf("expected open access without users, got %d", rec.Code)
	}
}

func TestRequireAuth_SessionRequired(t *testing.T) {
	sessions := fakeSessions{
		hasAny: true,
		users: map[string]middleware.User{
			"tok-alice": {ID: "u1", Username: "alice", IsActive: true},
			"tok-bob":   {ID: "u2", Username: "bob", IsActive: false},
		},
	}
	h := protected(sessions)

	// 1) Sin cookie.
	if rec := doGet(t, h, ""); rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 without session, got %d", rec.Code)
	}
	// 2) Token desconocido.
	if rec := doGet(t, h, "nope"); rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 for unknown token, got %d", rec.Code)
	}
	// 3) Cuenta deshabilitada.
	if rec := doGet(t, h, "tok-bob"); rec.Code != http.StatusForbidden {
		t.Fatalf("expected 403 for disabled account, got %d", rec.Code)
	}
	// 4) Sesión válida: el user queda en el contexto.
	rec := doGet(t, h, "tok-alice")
	if rec.Code != http.StatusOK || rec.Body.String() != "alice" {
		t.Fatalf("expected alice through, got %d %q", rec.Code, rec.Body.String())
	}
}

func TestRequireAuth_CSRFOnUnsafeMethods(t *testing.T) {
	sessions := fakeSessions{
		hasAny: true,
		users:  map[string]middleware.User{"tok": {ID: "u1", Username: "alice", IsActive: true}},
	}
	h := protected(sessions)

	post := func(csrfCookie, csrfHeader string) *httptest.ResponseRecorder {
		req := httptest.NewRequest(http.MethodPost, "/x", nil)
		req.AddCookie(&http.Cookie{Name: middleware.SessionCookieName, Value: "tok"})
		if csrfCookie != "" {
			req.AddCookie(&http.Cookie{Name: middleware.CSRFCookieName, Value: csrfCookie})
		}
		if csrfHeader != "" {
			req.Header.Set(middleware.CSRFHeaderName, csrfHeader)
		}
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, req)
		return rec
	}

	if rec := post("", ""); rec.Code != http.StatusForbidden {
		t.Fatalf("expected 403 without CSRF pair, got %d", rec.Code)
	}
	if rec := post("abc", "xyz"); rec.Code != http.StatusForbidden {
		t.Fatalf("expected 403 for mismatched CSRF, got %d", rec.Code)
	}
	if rec := post("abc", "abc"); rec.Code != http.StatusOK {
		t.Fatalf("expected 200 with matching CSRF pair, got %d", rec.Code)
	}
}
