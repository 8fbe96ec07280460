package accounts

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"cat-feeder/internal/domain/audit"
	"cat-feeder/internal/middleware"

	"github.com/go-chi/chi/v5"
)

// Recorder es el audit log visto desde este módulo.
type Recorder interface {
	Append(ctx context.Context, action, details, actorUserID string) error
}

// RegisterPublicRoutes registra las rutas que funcionan sin sesión.
// limitLogin es opcional (rate limit por IP sobre /login).
func RegisterPublicRoutes(r chi.Router, svc *Service, rec Recorder, sessionMaxAge time.Duration, limitLogin func(http.Handler) http.Handler) {
	r.Get("/auth/status", authStatusHandler(svc))
	r.Post("/auth/signup", signupHandler(svc, rec, sessionMaxAge))
	r.Post("/signup", signupHandler(svc, rec, sessionMaxAge)) // alias legacy
	if limitLogin != nil {
		r.With(limitLogin).Post("/login", loginHandler(svc, rec, sessionMaxAge))
	} else {
		r.Post("/login", loginHandler(svc, rec, sessionMaxAge))
	}
	// Logout valida CSRF pero no exige sesión viva.
	r.Post("/logout", logoutHandler(svc, rec))
}

// RegisterRoutes registra las rutas detrás de RequireAuth.
func RegisterRoutes(r chi.Router, svc *Service, rec Recorder) {
	r.Get("/me", meHandler())
	r.Post("/change-password", changePasswordHandler(svc, rec))

	r.Get("/admin/users", adminListUsersHandler(svc))
	r.Patch("/admin/users/{userID}", adminUpdateUserHandler(svc, rec))
	r.Post("/admin/users/{userID}/reset-password", adminResetPasswordHandler(svc, rec))
}

type credentialsRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

type loginResponse struct {
	Token string `json:"token"`
}

type changePasswordRequest struct {
	CurrentPassword string `json:"current_password"`
	NewPassword     string `json:"new_password"`
}

type resetPasswordRequest struct {
	NewPassword string `json:"new_password"`
}

type adminUserResponse struct {
	ID           string    `json:"id"`
	Username     string    `json:"username"`
	IsActive     bool      `json:"is_active"`
	Email        string    `json:"email,omitempty"`
	NotifyEmail  bool      `json:"notify_email"`
	NotifyEmail1 string    `json:"notify_email_1,omitempty"`
	NotifyEmail2 string    `json:"notify_email_2,omitempty"`
	NotifyEmail3 string    `json:"notify_email_3,omitempty"`
	SMTPHost     string    `json:"smtp_host,omitempty"`
	SMTPPort     int       `json:"smtp_port,omitempty"`
	SMTPUser     string    `json:"smtp_user,omitempty"`
	SMTPFrom     string    `json:"smtp_from,omitempty"`
	CreatedAt    time.Time `json:"created_at"`
}

type adminUserUpdateRequest struct {
	// Punteros para PATCH real: nil = no tocar.
	IsActive     *bool   `json:"is_active"`
	Email        *string `json:"email"`
	NotifyEmail  *bool   `json:"notify_email"`
	NotifyEmail1 *string `json:"notify_email_1"`
	NotifyEmail2 *string `json:"notify_email_2"`
	NotifyEmail3 *string `json:"notify_email_3"`
	SMTPHost     *string `json:"smtp_host"`
	SMTPPort     *int    `json:"smtp_port"`
	SMTPUser     *string `json:"smtp_user"`
	SMTPPass     *string `json:"smtp_pass"`
	SMTPFrom     *string `json:"smtp_from"`
}

func (req adminUserUpdateRequest) touchesEmail() bool {
	return req.Email != nil || req.NotifyEmail != nil ||
		req.NotifyEmail1 != nil || req.NotifyEmail2 != nil || req.NotifyEmail3 != nil ||
		req.SMTPHost != nil || req.SMTPPort != nil ||
		req.SMTPUser != nil || req.SMTPPass != nil || req.SMTPFrom != nil
}

func authStatusHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		has, err := svc.HasUsers(r.Context())
		if err != nil {
			http.Error(w, "internal error", http.StatusInternalServerError)
			return
		}
		writeJSON(w, http.StatusOK, map[string]bool{"has_users": has})
	}
}

func signupHandler(svc *Service, rec Recorder, maxAge time.Duration) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req credentialsRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, "invalid json", http.StatusBadRequest)
			return
		}

		u, sess, err := svc.Signup(r.Context(), req.Username, req.Password)
		switch {
		case errors.Is(err, ErrSignupClosed):
			http.Error(w, "Signup disabled.", http.StatusForbidden)
			return
		case errors.Is(err, ErrUsernameTaken):
			http.Error(w, "Username already exists.", http.StatusConflict)
			return
		case errors.Is(err, ErrInvalidInput):
			http.Error(w, "Username and password are required.", http.StatusBadRequest)
			return
		case err != nil:
			http.Error(w, "internal error", http.StatusInternalServerError)
			return
		}

		_ = rec.Append(r.Context(), audit.ActionSignup, fmt.Sprintf("username=%s", u.Username), u.ID)
		setAuthCookies(w, sess.Token, maxAge)
		writeJSON(w, http.StatusOK, loginResponse{Token: sess.Token})
	}
}

func loginHandler(svc *Service, rec Recorder, maxAge time.Duration) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req credentialsRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, "invalid json", http.StatusBadRequest)
			return
		}

		u, sess, err := svc.Login(r.Context(), req.Username, req.Password)
		switch {
		case errors.Is(err, ErrBadCredentials):
			http.Error(w, "Invalid credentials.", http.StatusUnauthorized)
			return
		case errors.Is(err, ErrAccountDisabled):
			http.Error(w, "Account disabled.", http.StatusForbidden)
			return
		case err != nil:
			http.Error(w, "internal error", http.StatusInternalServerError)
			return
		}

		_ = rec.Append(r.Context(), audit.ActionLogin, "", u.ID)
		setAuthCookies(w, sess.Token, maxAge)
		writeJSON(w, http.StatusOK, loginResponse{Token: sess.Token})
	}
}

func logoutHandler(svc *Service, rec Recorder) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := middleware.VerifyCSRF(r); err != nil {
			http.Error(w, err.Error(), http.StatusForbidden)
			return
		}

		token := ""
		if c, err := r.Cookie(middleware.SessionCookieName); err == nil {
			token = c.Value
		}
		userID, err := svc.Logout(r.Context(), token)
		if err != nil {
			http.Error(w, "internal error", http.StatusInternalServerError)
			return
		}
		if userID != "" {
			_ = rec.Append(r.Context(), audit.ActionLogout, "", userID)
		}

		clearAuthCookies(w)
		writeJSON(w, http.StatusOK, map[string]bool{"ok": true})
	}
}

func meHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		u, ok := middleware.GetUser(r.Context())
		if !ok {
			http.Error(w, "Auth required.", http.StatusUnauthorized)
			return
		}
		writeJSON(w, http.StatusOK, map[string]string{"username": u.Username})
	}
}

func changePasswordHandler(svc *Service, rec Recorder) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		u, ok := middleware.GetUser(r.Context())
		if !ok {
			http.Error(w, "Auth required.", http.StatusUnauthorized)
			return
		}

		var req changePasswordRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, "invalid json", http.StatusBadRequest)
			return
		}

		err := svc.ChangePassword(r.Context(), u.ID, req.CurrentPassword, req.NewPassword)
		switch {
		case errors.Is(err, ErrBadCredentials):
			http.Error(w, "Current password is incorrect.", http.StatusBadRequest)
			return
		case errors.Is(err, ErrPasswordTooWeak):
			http.Error(w, "Password must be at least 6 characters.", http.StatusBadRequest)
			return
		case err != nil:
			http.Error(w, "internal error", http.StatusInternalServerError)
			return
		}

		_ = rec.Append(r.Context(), audit.ActionChangePassword, "", u.ID)
		writeJSON(w, http.StatusOK, map[string]bool{"ok": true})
	}
}

func adminListUsersHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		users, err := svc.ListUsers(r.Context())
		if err != nil {
			http.Error(w, "internal error", http.StatusInternalServerError)
			return
		}
		out := make([]adminUserResponse, 0, len(users))
		for _, u := range users {
			out = append(out, toAdminUserResponse(u))
		}
		writeJSON(w, http.StatusOK, out)
	}
}

func adminUpdateUserHandler(svc *Service, rec Recorder) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID := chi.URLParam(r, "userID")

		var req adminUserUpdateRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, "invalid json", http.StatusBadRequest)
			return
		}

		current, _ := middleware.GetUser(r.Context())
		if current.ID != "" && current.ID == userID && req.IsActive != nil && !*req.IsActive {
			http.Error(w, "You cannot disable your own account.", http.StatusBadRequest)
			return
		}

		u, err := svc.UpdateSettings(r.Context(), userID, UpdateSettingsInput{
			IsActive:     req.IsActive,
			Email:        req.Email,
			NotifyEmail:  req.NotifyEmail,
			NotifyEmail1: req.NotifyEmail1,
			NotifyEmail2: req.NotifyEmail2,
			NotifyEmail3: req.NotifyEmail3,
			SMTPHost:     req.SMTPHost,
			SMTPPort:     req.SMTPPort,
			SMTPUser:     req.SMTPUser,
			SMTPPass:     req.SMTPPass,
			SMTPFrom:     req.SMTPFrom,
		})
		switch {
		case errors.Is(err, ErrNotFound):
			http.Error(w, "User not found.", http.StatusNotFound)
			return
		case errors.Is(err, ErrNotifyEmailRequired):
			http.Error(w, "Primary notification email is required.", http.StatusBadRequest)
			return
		case errors.Is(err, ErrSMTPHostRequired):
			http.Error(w, "SMTP host is required.", http.StatusBadRequest)
			return
		case errors.Is(err, ErrSMTPUserRequired):
			http.Error(w, "SMTP username is required.", http.StatusBadRequest)
			return
		case errors.Is(err, ErrSMTPPassRequired):
			http.Error(w, "SMTP password is required.", http.StatusBadRequest)
			return
		case errors.Is(err, ErrSMTPFromRequired):
			http.Error(w, "SMTP from address is required.", http.StatusBadRequest)
			return
		case err != nil:
			http.Error(w, "internal error", http.StatusInternalServerError)
			return
		}

		if req.IsActive != nil {
			_ = rec.Append(r.Context(), audit.ActionUserStatus,
				fmt.Sprintf("user_id=%s is_active=%t", userID, *req.IsActive), current.ID)
		}
		if req.touchesEmail() {
			_ = rec.Append(r.Context(), audit.ActionUserEmail,
				fmt.Sprintf("user_id=%s", userID), current.ID)
		}

		writeJSON(w, http.StatusOK, toAdminUserResponse(u))
	}
}

func adminResetPasswordHandler(svc *Service, rec Recorder) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID := chi.URLParam(r, "userID")

		var req resetPasswordRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, "invalid json", http.StatusBadRequest)
			return
		}

		err := svc.ResetPassword(r.Context(), userID, req.NewPassword)
		switch {
		case errors.Is(err, ErrPasswordTooWeak):
			http.Error(w, "Password must be at least 6 characters.", http.StatusBadRequest)
			return
		case errors.Is(err, ErrNotFound):
			http.Error(w, "User not found.", http.StatusNotFound)
			return
		case err != nil:
			http.Error(w, "internal error", http.StatusInternalServerError)
			return
		}

		current, _ := middleware.GetUser(r.Context())
		_ = rec.Append(r.Context(), audit.ActionResetPassword,
			fmt.Sprintf("target_id=%s", userID), current.ID)
		writeJSON(w, http.StatusOK, map[string]bool{"ok": true})
	}
}

func toAdminUserResponse(u User) adminUserResponse {
	return adminUserResponse{
		ID:           u.ID,
		Username:     u.Username,
		IsActive:     u.IsActive,
		Email:        u.Email,
		NotifyEmail:  u.NotifyEmail,
		NotifyEmail1: u.NotifyEmail1,
		NotifyEmail2: u.NotifyEmail2,
		NotifyEmail3: u.NotifyEmail3,
		SMTPHost:     u.SMTPHost,
		SMTPPort:     u.SMTPPort,
		SMTPUser:     u.SMTPUser,
		SMTPFrom:     u.SMTPFrom,
		CreatedAt:    u.CreatedAt,
	}
}

func setAuthCookies(w http.ResponseWriter, sessionToken string, maxAge time.Duration) {
	http.SetCookie(w, &http.Cookie{
		Name:     middleware.SessionCookieName,
		Value:    sessionToken,
		Path:     "/",
		MaxAge:   int(maxAge.Seconds()),
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
	// La cookie CSRF es legible por JS a propósito (double-submit).
	http.SetCookie(w, &http.Cookie{
		Name:     middleware.CSRFCookieName,
		Value:    NewToken(),
		Path:     "/",
		MaxAge:   int(maxAge.Seconds()),
		HttpOnly: false,
		SameSite: http.SameSiteLaxMode,
	})
}

func clearAuthCookies(w http.ResponseWriter) {
	http.SetCookie(w, &http.Cookie{Name: middleware.SessionCookieName, Value: "", Path: "/", MaxAge: -1})
	http.SetCookie(w, &http.Cookie{Name: middleware.CSRFCookieName, Value: "", Path: "/", MaxAge: -1})
}

// writeJSON está duplicado intencionalmente en handlers de distintos módulos
// para evitar crear helpers compartidos demasiado pronto.
func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
