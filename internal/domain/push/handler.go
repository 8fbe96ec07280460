package push

import (
	"encoding/json"
	"errors"
	"net/http"

	"cat-feeder/internal/middleware"

	"github.com/go-chi/chi/v5"
)

func RegisterRoutes(r chi.Router, svc *Service, vapidPublicKey string) {
	r.Get("/push/vapid-public-key", vapidPublicKeyHandler(vapidPublicKey))
	r.Post("/push/subscribe", subscribeHandler(svc))
	r.Post("/push/unsubscribe", unsubscribeHandler(svc))
}

type subscriptionRequest struct {
	Endpoint string `json:"endpoint"`
	Keys     struct {
		P256dh string `json:"p256dh"`
		Auth   string `json:"auth"`
	} `json:"keys"`
}

func vapidPublicKeyHandler(publicKey string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if publicKey == "" {
			http.Error(w, "Push not configured.", http.StatusNotFound)
			return
		}
		writeJSON(w, http.StatusOK, map[string]string{"public_key": publicKey})
	}
}

// subscribeHandler exige un usuario real: en el arranque sin cuentas
// no hay a quién atar la suscripción.
func subscribeHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		user, ok := middleware.GetUser(r.Context())
		if !ok {
			http.Error(w, "Auth required.", http.StatusUnauthorized)
			return
		}

		var req subscriptionRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, "invalid json", http.StatusBadRequest)
			return
		}
		err := svc.Subscribe(r.Context(), user.ID, req.Endpoint, req.Keys.P256dh, req.Keys.Auth)
		switch {
		case errors.Is(err, ErrInvalidInput):
			http.Error(w, "Invalid subscription.", http.StatusBadRequest)
			return
		case err != nil:
			http.Error(w, "internal error", http.StatusInternalServerError)
			return
		}
		writeJSON(w, http.StatusOK, map[string]bool{"ok": true})
	}
}

func unsubscribeHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		user, ok := middleware.GetUser(r.Context())
		if !ok {
			http.Error(w, "Auth required.", http.StatusUnauthorized)
			return
		}

		var req subscriptionRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, "invalid json", http.StatusBadRequest)
			return
		}
		err := svc.Unsubscribe(r.Context(), user.ID, req.Endpoint)
		switch {
		case errors.Is(err, ErrInvalidInput):
			http.Error(w, "Invalid subscription.", http.StatusBadRequest)
			return
		case err != nil:
			http.Error(w, "internal error", http.StatusInternalServerError)
			return
		}
		writeJSON(w, http.StatusOK, map[string]bool{"ok": true})
	}
}

// writeJSON está duplicado intencionalmente en handlers de distintos módulos
// para evitar crear helpers compartidos demasiado pronto.
func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
