package middleware

import (
	"context"
	"crypto/subtle"
	"errors"
	"net/http"
)

const (
	SessionCookieName = "session"
	CSRFCookieName    = "csrf"
	CSRFHeaderName    = "X-CSRF-Token"
)

type ctxKey string

const userKey ctxKey = "user"

var (
	ErrCSRFMissing = errors.New("CSRF token missing.")
	ErrCSRFInvalid = errors.New("CSRF token invalid.")
)

// User es la vista mínima de la cuenta autenticada que viaja en el
// contexto. El middleware no conoce el módulo de cuentas: resuelve
// sesiones a través del port Sessions.
type User struct {
	ID       string
	Username string
	IsActive bool
}

// Sessions es lo que los middlewares necesitan del módulo de cuentas.
type Sessions interface {
	HasUsers(ctx context.Context) (bool, error)
	UserFromSession(ctx context.Context, token string) (User, error)
}

// SessionContext:
// - Si viene cookie de sesión válida => setea el user en el contexto.
// - Si no hay sesión, el request sigue igual; RequireAuth decide.
func SessionContext(sessions Sessions) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			c, err := r.Cookie(SessionCookieName)
			if err != nil || c.Value == "" {
				next.ServeHTTP(w, r)
				return
			}

			u, err := sessions.UserFromSession(r.Context(), c.Value)
			if err != nil {
				next.ServeHTTP(w, r)
				return
			}

			ctx := context.WithValue(r.Context(), userKey, u)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

func GetUser(ctx context.Context) (User, bool) {
	v := ctx.Value(userKey)
	if v == nil {
		return User{}, false
	}
	u, ok := v.(User)
	return u, ok
}

// RequireAuth protege el grupo de rutas de la app:
// - Mientras no exista ningún usuario, todo pasa (bootstrap de primera
//   corrida).
// - Con usuarios: exige sesión válida de cuenta activa, y el par CSRF
//   cookie/header en métodos inseguros.
func RequireAuth(sessions Sessions) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			has, err := sessions.HasUsers(r.Context())
			if err != nil {
				http.Error(w, "internal error", http.StatusInternalServerError)
				return
			}
			if !has {
				next.ServeHTTP(w, r)
				return
			}

			u, ok := GetUser(r.Context())
			if !ok {
				http.Error(w, "Auth required.", http.StatusUnauthorized)
				return
			}
			if !u.IsActive {
				http.Error(w, "Account disabled.", http.StatusForbidden)
				return
			}

			if err := VerifyCSRF(r); err != nil {
				http.Error(w, err.Error(), http.StatusForbidden)
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

// VerifyCSRF exige cookie + header iguales en POST/PUT/PATCH/DELETE.
func VerifyCSRF(r *http.Request) error {
	switch r.Method {
	case http.MethodPost, http.MethodPut, http.MethodPatch, http.MethodDelete:
	default:
		return nil
	}

	c, err := r.Cookie(CSRFCookieName)
	header := r.Header.Get(CSRFHeaderName)
	if err != nil || c.Value == "" || header == "" {
		return ErrCSRFMissing
	}
	if subtle.ConstantTimeCompare([]byte(c.Value), []byte(header)) != 1 {
		return ErrCSRFInvalid
	}
	return nil
}
