package feedings

import (
	"context"
	"encoding/csv"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"cat-feeder/internal/config"
	"cat-feeder/internal/domain/audit"
	"cat-feeder/internal/domain/pets"
	"cat-feeder/internal/middleware"

	"github.com/go-chi/chi/v5"
)

// PetDirectory es lo que los endpoints de mantenimiento y export
// necesitan del módulo de mascotas.
type PetDirectory interface {
	Create(ctx context.Context, in pets.CreateInput) (pets.Pet, error)
	List(ctx context.Context) ([]pets.Pet, error)
	DeleteAll(ctx context.Context) error
}

func RegisterRoutes(r chi.Router, svc *Service, dir PetDirectory, rec Recorder, deviceToken, seedToken string) {
	r.Post("/feedings", logFeedingHandler(svc))
	r.Post("/device/feed", deviceFeedHandler(svc, deviceToken))
	r.Get("/status", statusHandler(svc))
	r.Get("/pets/{petID}/status", petStatusHandler(svc))
	r.Get("/pets/{petID}/feedings", listPetFeedingsHandler(svc))
	r.Post("/seed", seedHandler(svc, seedToken))

	r.Post("/admin/maintenance/clear", maintenanceClearHandler(svc, dir, rec))
	r.Post("/admin/maintenance/seed", maintenanceSeedHandler(svc, dir, rec))
	r.Get("/admin/export/feedings", exportFeedingsHandler(svc, dir))
}

type logFeedingRequest struct {
	PetID       string `json:"pet_id"`
	FedAt       string `json:"fed_at"` // RFC3339 opcional, default ahora
	AmountGrams int    `json:"amount_grams"`
	DietType    string `json:"diet_type"`
}

type feedingResponse struct {
	ID          string    `json:"id"`
	FedAt       time.Time `json:"fed_at"`
	AmountGrams int       `json:"amount_grams"`
	DietType    string    `json:"diet_type,omitempty"`
	PetID       string    `json:"pet_id,omitempty"`
}

type statusResponse struct {
	LastFedAt         *time.Time `json:"last_fed_at"`
	LastDietType      string     `json:"last_diet_type,omitempty"`
	DailyCount        int        `json:"daily_count"`
	RemainingGrams    int        `json:"remaining_grams"`
	DailyLimit        int        `json:"daily_limit"`
	RemainingFeedings int        `json:"remaining_feedings"`
}

type petStatusResponse struct {
	PetID             string     `json:"pet_id"`
	LastFedAt         *time.Time `json:"last_fed_at"`
	LastDietType      string     `json:"last_diet_type,omitempty"`
	DailyCount        int        `json:"daily_count"`
	DailyLimit        int        `json:"daily_limit"`
	RemainingFeedings int        `json:"remaining_feedings"`
}

// logFeedingHandler godoc
// @Summary Registra un feeding (pasa por el control de admisión)
func logFeedingHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		in, ok := decodeLogRequest(w, r)
		if !ok {
			return
		}
		actor, _ := middleware.GetUser(r.Context())
		in.ActorUserID = actor.ID

		e, err := svc.Log(r.Context(), in)
		if !writeLogError(w, err) {
			return
		}
		writeJSON(w, http.StatusCreated, toFeedingResponse(e))
	}
}

// deviceFeedHandler es el camino para el dispenser físico: mismo
// control de admisión, autenticado además por X-Device-Token cuando
// hay token configurado.
func deviceFeedHandler(svc *Service, deviceToken string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if deviceToken != "" && r.Header.Get("X-Device-Token") != deviceToken {
			http.Error(w, "Invalid device token.", http.StatusUnauthorized)
			return
		}
		in, ok := decodeLogRequest(w, r)
		if !ok {
			return
		}

		e, err := svc.Log(r.Context(), in)
		if !writeLogError(w, err) {
			return
		}
		writeJSON(w, http.StatusCreated, toFeedingResponse(e))
	}
}

func decodeLogRequest(w http.ResponseWriter, r *http.Request) (LogInput, bool) {
	var req logFeedingRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid json", http.StatusBadRequest)
		return LogInput{}, false
	}
	if req.PetID == "" {
		http.Error(w, "Pet is required.", http.StatusBadRequest)
		return LogInput{}, false
	}
	if req.AmountGrams < 1 {
		http.Error(w, "amount_grams must be at least 1", http.StatusBadRequest)
		return LogInput{}, false
	}

	in := LogInput{
		PetID:       req.PetID,
		AmountGrams: req.AmountGrams,
		DietType:    req.DietType,
	}
	if req.FedAt != "" {
		t, err := time.Parse(time.RFC3339, req.FedAt)
		if err != nil {
			http.Error(w, "fed_at must be RFC3339", http.StatusBadRequest)
			return LogInput{}, false
		}
		in.FedAt = t
	}
	return in, true
}

// writeLogError mapea errores de la admisión; devuelve true si no hubo
// error y el caller puede seguir.
func writeLogError(w http.ResponseWriter, err error) bool {
	switch {
	case err == nil:
		return true
	case errors.Is(err, ErrNotFound):
		http.Error(w, "Pet not found.", http.StatusNotFound)
	case errors.Is(err, ErrDailyCountLimit):
		http.Error(w, "Daily feeding limit reached.", http.StatusBadRequest)
	case errors.Is(err, ErrDailyGramsLimit):
		http.Error(w, "Daily grams limit reached.", http.StatusBadRequest)
	case errors.Is(err, ErrInvalidInput):
		http.Error(w, "Pet is required.", http.StatusBadRequest)
	default:
		http.Error(w, "internal error", http.StatusInternalServerError)
	}
	return false
}

func statusHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		st, err := svc.Status(r.Context())
		if err != nil {
			http.Error(w, "internal error", http.StatusInternalServerError)
			return
		}
		writeJSON(w, http.StatusOK, statusResponse{
			LastFedAt:         st.LastFedAt,
			LastDietType:      st.LastDietType,
			DailyCount:        st.DailyCount,
			RemainingGrams:    st.RemainingGrams,
			DailyLimit:        st.DailyLimit,
			RemainingFeedings: st.RemainingFeedings,
		})
	}
}

func petStatusHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		st, err := svc.PetStatus(r.Context(), chi.URLParam(r, "petID"))
		switch {
		case errors.Is(err, ErrNotFound):
			http.Error(w, "Pet not found.", http.StatusNotFound)
			return
		case err != nil:
			http.Error(w, "internal error", http.StatusInternalServerError)
			return
		}
		writeJSON(w, http.StatusOK, petStatusResponse{
			PetID:             st.PetID,
			LastFedAt:         st.LastFedAt,
			LastDietType:      st.LastDietType,
			DailyCount:        st.DailyCount,
			DailyLimit:        st.DailyLimit,
			RemainingFeedings: st.RemainingFeedings,
		})
	}
}

func listPetFeedingsHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		limit := queryInt(r, "limit", 20, 1, 100)
		items, err := svc.ListByPet(r.Context(), chi.URLParam(r, "petID"), limit)
		if err != nil {
			http.Error(w, "internal error", http.StatusInternalServerError)
			return
		}
		out := make([]feedingResponse, 0, len(items))
		for _, e := range items {
			out = append(out, toFeedingResponse(e))
		}
		writeJSON(w, http.StatusOK, out)
	}
}

// seedHandler crea eventos demo sueltos (sin mascota) a las 08:00,
// 12:00, 16:00... de hoy, cortando cuando el tope global del día se
// alcanza.
func seedHandler(svc *Service, seedToken string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if seedToken != "" && r.URL.Query().Get("token") != seedToken {
			http.Error(w, "Seed token required.", http.StatusUnauthorized)
			return
		}
		count := queryInt(r, "count", config.SeedEventsDefault, 1, 20)
		grams := queryInt(r, "grams", config.SeedGramsDefault, 1, 100000)
		diet := r.URL.Query().Get("diet_type")
		if diet == "" {
			diet = config.SeedDietDefault
		}

		now := time.Now().UTC()
		created := 0
		for i := 0; i < count; i++ {
			fedAt := time.Date(now.Year(), now.Month(), now.Day(), 8+i*4, 0, 0, 0, time.UTC)
			_, err := svc.LogUngrouped(r.Context(), fedAt, grams, diet)
			if errors.Is(err, ErrDailyCountLimit) {
				break
			}
			if err != nil {
				http.Error(w, "internal error", http.StatusInternalServerError)
				return
			}
			created++
		}
		writeJSON(w, http.StatusOK, map[string]int{"created": created})
	}
}

func maintenanceClearHandler(svc *Service, dir PetDirectory, rec Recorder) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := svc.DeleteAll(r.Context()); err != nil {
			http.Error(w, "internal error", http.StatusInternalServerError)
			return
		}
		if err := dir.DeleteAll(r.Context()); err != nil {
			http.Error(w, "internal error", http.StatusInternalServerError)
			return
		}
		actor, _ := middleware.GetUser(r.Context())
		_ = rec.Append(r.Context(), audit.ActionMaintenanceClear, "", actor.ID)
		writeJSON(w, http.StatusOK, map[string]bool{"ok": true})
	}
}

// maintenanceSeedHandler arma una mascota demo con tres feedings del
// día (importados directo, sin admisión, como cualquier seed).
func maintenanceSeedHandler(svc *Service, dir PetDirectory, rec Recorder) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		age := 2
		weight := 4.2
		pet, err := dir.Create(r.Context(), pets.CreateInput{
			Name:              "Whiskers",
			DietType:          config.SeedDietDefault,
			AgeYears:          &age,
			Sex:               "F",
			Breed:             "Domestic Shorthair",
			EstimatedWeightKg: &weight,
		})
		if err != nil {
			http.Error(w, "internal error", http.StatusInternalServerError)
			return
		}

		now := time.Now().UTC()
		for offset := 0; offset < 3; offset++ {
			fedAt := now.Add(-time.Duration(6*(2-offset)) * time.Hour)
			if _, err := svc.Import(r.Context(), fedAt, config.SeedGramsDefault, pet.DietType, pet.ID); err != nil {
				http.Error(w, "internal error", http.StatusInternalServerError)
				return
			}
		}

		actor, _ := middleware.GetUser(r.Context())
		_ = rec.Append(r.Context(), audit.ActionMaintenanceSeed,
			fmt.Sprintf("pet_id=%s", pet.ID), actor.ID)
		writeJSON(w, http.StatusOK, map[string]bool{"ok": true})
	}
}

// exportFeedingsHandler baja todo el historial como CSV, ascendente por
// fed_at, con el nombre de la mascota resuelto (vacío para eventos
// legacy o mascotas borradas).
func exportFeedingsHandler(svc *Service, dir PetDirectory) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		items, err := svc.ListAll(r.Context())
		if err != nil {
			http.Error(w, "internal error", http.StatusInternalServerError)
			return
		}
		petList, err := dir.List(r.Context())
		if err != nil {
			http.Error(w, "internal error", http.StatusInternalServerError)
			return
		}
		names := make(map[string]string, len(petList))
		for _, p := range petList {
			names[p.ID] = p.Name
		}

		w.Header().Set("Content-Type", "text/csv")
		w.Header().Set("Content-Disposition", "attachment; filename=feedings.csv")
		cw := csv.NewWriter(w)
		_ = cw.Write([]string{"id", "fed_at", "amount_grams", "diet_type", "pet_id", "pet_name"})
		for _, e := range items {
			_ = cw.Write([]string{
				e.ID,
				e.FedAt.Format(time.RFC3339),
				strconv.Itoa(e.AmountGrams),
				e.DietType,
				e.PetID,
				names[e.PetID],
			})
		}
		cw.Flush()
	}
}

func toFeedingResponse(e FeedingEvent) feedingResponse {
	return feedingResponse{
		ID:          e.ID,
		FedAt:       e.FedAt,
		AmountGrams: e.AmountGrams,
		DietType:    e.DietType,
		PetID:       e.PetID,
	}
}

func queryInt(r *http.Request, name string, def, min, max int) int {
	v := r.URL.Query().Get(name)
	if v == "" {
		return def
	}
	n, err := strconv.Atoi(v)
	if err != nil || n < min {
		return def
	}
	if n > max {
		return max
	}
	return n
}

// writeJSON está duplicado intencionalmente en handlers de distintos módulos
// para evitar crear helpers compartidos demasiado pronto.
func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
