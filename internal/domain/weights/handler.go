package weights

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
)

func RegisterRoutes(r chi.Router, svc *Service) {
	r.Get("/pets/{petID}/weights", listWeightsHandler(svc))
	r.Post("/pets/{petID}/weights", createWeightHandler(svc))
}

type weightCreateRequest struct {
	WeightKg   float64 `json:"weight_kg"`
	RecordedAt string  `json:"recorded_at"` // RFC3339 opcional
}

type weightResponse struct {
	ID         string    `json:"id"`
	PetID      string    `json:"pet_id"`
	WeightKg   float64   `json:"weight_kg"`
	RecordedAt time.Time `json:"recorded_at"`
}

func listWeightsHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		limit := 20
		if v := r.URL.Query().Get("limit"); v != "" {
			if n, err := strconv.Atoi(v); err == nil && n >= 1 && n <= 100 {
				limit = n
			}
		}
		items, err := svc.ListByPet(r.Context(), chi.URLParam(r, "petID"), limit)
		switch {
		case errors.Is(err, ErrNotFound):
			http.Error(w, "Pet not found.", http.StatusNotFound)
			return
		case err != nil:
			http.Error(w, "internal error", http.StatusInternalServerError)
			return
		}
		out := make([]weightResponse, 0, len(items))
		for _, e := range items {
			out = append(out, toWeightResponse(e))
		}
		writeJSON(w, http.StatusOK, out)
	}
}

func createWeightHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req weightCreateRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, "invalid json", http.StatusBadRequest)
			return
		}

		var recordedAt time.Time
		if req.RecordedAt != "" {
			t, err := time.Parse(time.RFC3339, req.RecordedAt)
			if err != nil {
				http.Error(w, "recorded_at must be RFC3339", http.StatusBadRequest)
				return
			}
			recordedAt = t
		}

		e, err := svc.Record(r.Context(), chi.URLParam(r, "petID"), req.WeightKg, recordedAt)
		switch {
		case errors.Is(err, ErrNotFound):
			http.Error(w, "Pet not found.", http.StatusNotFound)
			return
		case errors.Is(err, ErrInvalidInput):
			http.Error(w, "weight_kg must be greater than zero", http.StatusBadRequest)
			return
		case err != nil:
			http.Error(w, "internal error", http.StatusInternalServerError)
			return
		}
		writeJSON(w, http.StatusCreated, toWeightResponse(e))
	}
}

func toWeightResponse(e Entry) weightResponse {
	return weightResponse{
		ID:         e.ID,
		PetID:      e.PetID,
		WeightKg:   e.WeightKg,
		RecordedAt: e.RecordedAt,
	}
}

// writeJSON está duplicado intencionalmente en handlers de distintos módulos
// para evitar crear helpers compartidos demasiado pronto.
func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
