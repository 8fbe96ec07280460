package pets

import (
	"context"
	"encoding/base64"
	"encoding/csv"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"cat-feeder/internal/domain/audit"
	"cat-feeder/internal/middleware"

	"github.com/go-chi/chi/v5"
)

// Events es lo que este módulo necesita de feedings: purgar en cascada
// al borrar una mascota y contar para la vista admin.
type Events interface {
	DeleteByPet(ctx context.Context, petID string) error
	CountByPet(ctx context.Context, petID string) (int, error)
}

type Recorder interface {
	Append(ctx context.Context, action, details, actorUserID string) error
}

func RegisterRoutes(r chi.Router, svc *Service, events Events, rec Recorder) {
	r.Route("/pets", func(pr chi.Router) {
		pr.Post("/", createPetHandler(svc))
		pr.Get("/", listPetsHandler(svc))
		pr.Get("/{petID}", getPetHandler(svc))
		pr.Patch("/{petID}", updatePetHandler(svc))
		pr.Delete("/{petID}", deletePetHandler(svc, events))
		pr.Get("/{petID}/photo", getPetPhotoHandler(svc))
	})

	r.Get("/admin/pets", adminListPetsHandler(svc, events))
	r.Patch("/admin/pets/{petID}", adminUpdatePetHandler(svc, events, rec))
	r.Delete("/admin/pets/{petID}", adminDeletePetHandler(svc, events, rec))
	r.Get("/admin/export/pets", exportPetsHandler(svc))
}

type createPetRequest struct {
	Name              string   `json:"name"`
	AgeYears          *int     `json:"age_years"`
	Sex               string   `json:"sex"`
	DietType          string   `json:"diet_type"`
	LastVetVisit      string   `json:"last_vet_visit"` // YYYY-MM-DD opcional
	PhotoURL          string   `json:"photo_url"`
	PhotoBase64       string   `json:"photo_base64"`
	Breed             string   `json:"breed"`
	EstimatedWeightKg *float64 `json:"estimated_weight_kg"`
	FeedTime1         string   `json:"feed_time_1"`
	FeedTime2         string   `json:"feed_time_2"`
}

type updatePetRequest struct {
	// Punteros para PATCH real: nil = no tocar.
	Name              *string  `json:"name"`
	AgeYears          *int     `json:"age_years"`
	Sex               *string  `json:"sex"`
	DietType          *string  `json:"diet_type"`
	LastVetVisit      *string  `json:"last_vet_visit"`
	PhotoURL          *string  `json:"photo_url"`
	PhotoBase64       *string  `json:"photo_base64"` // "" o null presente => borrar blob
	Breed             *string  `json:"breed"`
	EstimatedWeightKg *float64 `json:"estimated_weight_kg"`
	FeedTime1         *string  `json:"feed_time_1"`
	FeedTime2         *string  `json:"feed_time_2"`
}

type petResponse struct {
	ID                string   `json:"id"`
	Name              string   `json:"name"`
	AgeYears          *int     `json:"age_years,omitempty"`
	Sex               string   `json:"sex,omitempty"`
	DietType          string   `json:"diet_type,omitempty"`
	LastVetVisit      *string  `json:"last_vet_visit,omitempty"`
	PhotoURL          string   `json:"photo_url,omitempty"`
	Breed             string   `json:"breed,omitempty"`
	EstimatedWeightKg *float64 `json:"estimated_weight_kg,omitempty"`
	FeedTime1         string   `json:"feed_time_1,omitempty"`
	FeedTime2         string   `json:"feed_time_2,omitempty"`
}

type adminPetResponse struct {
	petResponse
	DailyLimitCount *int `json:"daily_limit_count,omitempty"`
	DailyGramsLimit *int `json:"daily_grams_limit,omitempty"`
	FeedingsCount   int  `json:"feedings_count"`
}

type adminPetUpdateRequest struct {
	DailyLimitCount *int `json:"daily_limit_count"`
	DailyGramsLimit *int `json:"daily_grams_limit"`
}

// createPetHandler godoc
// @Summary Crea una mascota (foto como data-URL base64 o URL externa)
func createPetHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req createPetRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, "invalid json", http.StatusBadRequest)
			return
		}

		vet, err := parseDate(req.LastVetVisit)
		if err != nil {
			http.Error(w, "last_vet_visit must be YYYY-MM-DD", http.StatusBadRequest)
			return
		}

		in := CreateInput{
			Name:              req.Name,
			AgeYears:          req.AgeYears,
			Sex:               req.Sex,
			DietType:          req.DietType,
			Breed:             req.Breed,
			LastVetVisit:      vet,
			EstimatedWeightKg: req.EstimatedWeightKg,
			PhotoURL:          req.PhotoURL,
			FeedTime1:         req.FeedTime1,
			FeedTime2:         req.FeedTime2,
		}
		if req.PhotoBase64 != "" {
			blob, mime, status, msg := parsePhotoBase64(req.PhotoBase64)
			if status != 0 {
				http.Error(w, msg, status)
				return
			}
			in.PhotoBlob = blob
			in.PhotoMime = mime
			in.PhotoURL = ""
		}

		p, err := svc.Create(r.Context(), in)
		if err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		writeJSON(w, http.StatusCreated, toPetResponse(p))
	}
}

func listPetsHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		items, err := svc.List(r.Context())
		if err != nil {
			http.Error(w, "internal error", http.StatusInternalServerError)
			return
		}
		out := make([]petResponse, 0, len(items))
		for _, p := range items {
			out = append(out, toPetResponse(p))
		}
		writeJSON(w, http.StatusOK, out)
	}
}

func getPetHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		p, err := svc.GetByID(r.Context(), chi.URLParam(r, "petID"))
		if err != nil {
			http.Error(w, "Pet not found.", http.StatusNotFound)
			return
		}
		writeJSON(w, http.StatusOK, toPetResponse(p))
	}
}

func updatePetHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		petID := chi.URLParam(r, "petID")

		var req updatePetRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, "invalid json", http.StatusBadRequest)
			return
		}

		in := UpdateInput{
			Name:              req.Name,
			AgeYears:          req.AgeYears,
			Sex:               req.Sex,
			DietType:          req.DietType,
			Breed:             req.Breed,
			EstimatedWeightKg: req.EstimatedWeightKg,
			PhotoURL:          req.PhotoURL,
			FeedTime1:         req.FeedTime1,
			FeedTime2:         req.FeedTime2,
		}
		if req.LastVetVisit != nil {
			vet, err := parseDate(*req.LastVetVisit)
			if err != nil {
				http.Error(w, "last_vet_visit must be YYYY-MM-DD", http.StatusBadRequest)
				return
			}
			in.LastVetVisit = vet
		}
		if req.PhotoBase64 != nil {
			if *req.PhotoBase64 != "" {
				blob, mime, status, msg := parsePhotoBase64(*req.PhotoBase64)
				if status != 0 {
					http.Error(w, msg, status)
					return
				}
				in.PhotoBlob = blob
				in.PhotoMime = mime
			} else {
				in.ClearPhotoBlob = true
			}
		}

		p, err := svc.Update(r.Context(), petID, in)
		switch {
		case errors.Is(err, ErrNotFound):
			http.Error(w, "Pet not found.", http.StatusNotFound)
			return
		case errors.Is(err, ErrInvalidInput):
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		case err != nil:
			http.Error(w, "internal error", http.StatusInternalServerError)
			return
		}
		writeJSON(w, http.StatusOK, toPetResponse(p))
	}
}

func deletePetHandler(svc *Service, events Events) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		petID := chi.URLParam(r, "petID")
		if _, err := svc.GetByID(r.Context(), petID); err != nil {
			http.Error(w, "Pet not found.", http.StatusNotFound)
			return
		}
		// Cascada: primero los feedings, después la mascota.
		if err := events.DeleteByPet(r.Context(), petID); err != nil {
			http.Error(w, "internal error", http.StatusInternalServerError)
			return
		}
		if err := svc.Delete(r.Context(), petID); err != nil {
			http.Error(w, "internal error", http.StatusInternalServerError)
			return
		}
		writeJSON(w, http.StatusOK, map[string]bool{"deleted": true})
	}
}

func getPetPhotoHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		p, err := svc.GetByID(r.Context(), chi.URLParam(r, "petID"))
		if err != nil || len(p.PhotoBlob) == 0 {
			http.Error(w, "Photo not found.", http.StatusNotFound)
			return
		}
		mime := p.PhotoMime
		if mime == "" {
			mime = "image/jpeg"
		}
		w.Header().Set("Content-Type", mime)
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write(p.PhotoBlob)
	}
}

func adminListPetsHandler(svc *Service, events Events) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		items, err := svc.List(r.Context())
		if err != nil {
			http.Error(w, "internal error", http.StatusInternalServerError)
			return
		}
		out := make([]adminPetResponse, 0, len(items))
		for _, p := range items {
			count, err := events.CountByPet(r.Context(), p.ID)
			if err != nil {
				http.Error(w, "internal error", http.StatusInternalServerError)
				return
			}
			out = append(out, toAdminPetResponse(p, count))
		}
		writeJSON(w, http.StatusOK, out)
	}
}

func adminUpdatePetHandler(svc *Service, events Events, rec Recorder) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		petID := chi.URLParam(r, "petID")

		var req adminPetUpdateRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, "invalid json", http.StatusBadRequest)
			return
		}

		p, err := svc.UpdateLimits(r.Context(), petID, req.DailyLimitCount, req.DailyGramsLimit)
		switch {
		case errors.Is(err, ErrInvalidInput):
			http.Error(w, "Limits must be at least 1.", http.StatusBadRequest)
			return
		case errors.Is(err, ErrNotFound):
			http.Error(w, "Pet not found.", http.StatusNotFound)
			return
		case err != nil:
			http.Error(w, "internal error", http.StatusInternalServerError)
			return
		}

		actor, _ := middleware.GetUser(r.Context())
		_ = rec.Append(r.Context(), audit.ActionUpdatePetLimits,
			fmt.Sprintf("pet_id=%s", petID), actor.ID)

		count, err := events.CountByPet(r.Context(), petID)
		if err != nil {
			http.Error(w, "internal error", http.StatusInternalServerError)
			return
		}
		writeJSON(w, http.StatusOK, toAdminPetResponse(p, count))
	}
}

func adminDeletePetHandler(svc *Service, events Events, rec Recorder) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		petID := chi.URLParam(r, "petID")
		p, err := svc.GetByID(r.Context(), petID)
		if err != nil {
			http.Error(w, "Pet not found.", http.StatusNotFound)
			return
		}
		if err := events.DeleteByPet(r.Context(), petID); err != nil {
			http.Error(w, "internal error", http.StatusInternalServerError)
			return
		}
		if err := svc.Delete(r.Context(), petID); err != nil {
			http.Error(w, "internal error", http.StatusInternalServerError)
			return
		}

		actor, _ := middleware.GetUser(r.Context())
		_ = rec.Append(r.Context(), audit.ActionDeletePet,
			fmt.Sprintf("pet_id=%s name=%s", petID, p.Name), actor.ID)
		writeJSON(w, http.StatusOK, map[string]bool{"deleted": true})
	}
}

func exportPetsHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		items, err := svc.List(r.Context())
		if err != nil {
			http.Error(w, "internal error", http.StatusInternalServerError)
			return
		}

		w.Header().Set("Content-Type", "text/csv")
		w.Header().Set("Content-Disposition", "attachment; filename=pets.csv")
		cw := csv.NewWriter(w)
		_ = cw.Write([]string{
			"id", "name", "breed", "age_years", "sex", "diet_type",
			"last_vet_visit", "estimated_weight_kg", "daily_limit_count", "daily_grams_limit",
		})
		for _, p := range items {
			_ = cw.Write([]string{
				p.ID,
				p.Name,
				p.Breed,
				intOrEmpty(p.AgeYears),
				p.Sex,
				p.DietType,
				dateOrEmpty(p.LastVetVisit),
				floatOrEmpty(p.EstimatedWeightKg),
				intOrEmpty(p.DailyLimitCount),
				intOrEmpty(p.DailyGramsLimit),
			})
		}
		cw.Flush()
	}
}

func intOrEmpty(v *int) string {
	if v == nil {
		return ""
	}
	return strconv.Itoa(*v)
}

func floatOrEmpty(v *float64) string {
	if v == nil {
		return ""
	}
	return strconv.FormatFloat(*v, 'g', -1, 64)
}

func dateOrEmpty(v *time.Time) string {
	if v == nil {
		return ""
	}
	return v.Format("2006-01-02")
}

func toPetResponse(p Pet) petResponse {
	var vet *string
	if p.LastVetVisit != nil {
		s := p.LastVetVisit.Format("2006-01-02")
		vet = &s
	}
	return petResponse{
		ID:                p.ID,
		Name:              p.Name,
		AgeYears:          p.AgeYears,
		Sex:               p.Sex,
		DietType:          p.DietType,
		LastVetVisit:      vet,
		PhotoURL:          p.PhotoURL,
		Breed:             p.Breed,
		EstimatedWeightKg: p.EstimatedWeightKg,
		FeedTime1:         p.FeedTime1,
		FeedTime2:         p.FeedTime2,
	}
}

func toAdminPetResponse(p Pet, count int) adminPetResponse {
	return adminPetResponse{
		petResponse:     toPetResponse(p),
		DailyLimitCount: p.DailyLimitCount,
		DailyGramsLimit: p.DailyGramsLimit,
		FeedingsCount:   count,
	}
}

func parseDate(s string) (*time.Time, error) {
	if strings.TrimSpace(s) == "" {
		return nil, nil
	}
	t, err := time.Parse("2006-01-02", s)
	if err != nil {
		return nil, err
	}
	return &t, nil
}

// parsePhotoBase64 acepta solo data-URLs de imagen y limita a 2MB.
// Devuelve (blob, mime, 0, "") en éxito; status != 0 indica error HTTP.
func parsePhotoBase64(s string) ([]byte, string, int, string) {
	if !strings.HasPrefix(s, "data:image/") {
		return nil, "", http.StatusBadRequest, "Invalid image data."
	}
	header, encoded, ok := strings.Cut(s, ",")
	if !ok {
		return nil, "", http.StatusBadRequest, "Invalid image data."
	}
	mime := strings.TrimPrefix(strings.SplitN(header, ";", 2)[0], "data:")
	data, err := base64.StdEncoding.DecodeString(encoded)
	if err != nil {
		return nil, "", http.StatusBadRequest, "Invalid image data."
	}
	if len(data) > 2_000_000 {
		return nil, "", http.StatusRequestEntityTooLarge, "Image too large (max 2MB)."
	}
	return data, mime, 0, ""
}

// writeJSON está duplicado intencionalmente en handlers de distintos módulos
// para evitar crear helpers compartidos demasiado pronto.
func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
