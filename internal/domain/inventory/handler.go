package inventory

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"cat-feeder/internal/domain/pets"

	"github.com/go-chi/chi/v5"
)

type PetGetter interface {
	GetByID(ctx context.Context, id string) (pets.Pet, error)
}

func RegisterRoutes(r chi.Router, svc *Service, petGetter PetGetter) {
	r.Get("/pets/{petID}/inventory", getInventoryHandler(svc, petGetter))
	r.Put("/pets/{petID}/inventory", setInventoryHandler(svc, petGetter))
	r.Get("/inventory/low-stock", lowStockHandler(svc, petGetter))
}

type inventoryUpdateRequest struct {
	FoodName    string `json:"food_name"`
	SachetCount int    `json:"sachet_count"`
}

type inventoryResponse struct {
	PetID           string     `json:"pet_id"`
	FoodName        string     `json:"food_name,omitempty"`
	SachetCount     int        `json:"sachet_count"`
	SachetSizeGrams int        `json:"sachet_size_grams"`
	RemainingGrams  int        `json:"remaining_grams"`
	UpdatedAt       *time.Time `json:"updated_at"`
	LowStock        bool       `json:"low_stock"`
}

type lowStockItemResponse struct {
	PetID          string `json:"pet_id"`
	PetName        string `json:"pet_name"`
	FoodName       string `json:"food_name,omitempty"`
	SachetCount    int    `json:"sachet_count"`
	RemainingGrams int    `json:"remaining_grams"`
}

// getInventoryHandler godoc
// @Summary Stock de comida de la mascota (vacío si nunca se cargó)
func getInventoryHandler(svc *Service, petGetter PetGetter) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		petID := chi.URLParam(r, "petID")
		if _, err := petGetter.GetByID(r.Context(), petID); err != nil {
			http.Error(w, "Pet not found.", http.StatusNotFound)
			return
		}

		item, err := svc.Get(r.Context(), petID)
		switch {
		case errors.Is(err, ErrNotFound):
			// Sin stock cargado: todo en cero y low_stock prendido.
			writeJSON(w, http.StatusOK, inventoryResponse{
				PetID:           petID,
				SachetSizeGrams: svc.SachetSize(),
				LowStock:        true,
			})
			return
		case err != nil:
			http.Error(w, "internal error", http.StatusInternalServerError)
			return
		}
		writeJSON(w, http.StatusOK, toInventoryResponse(item, svc.Threshold()))
	}
}

func setInventoryHandler(svc *Service, petGetter PetGetter) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		petID := chi.URLParam(r, "petID")
		if _, err := petGetter.GetByID(r.Context(), petID); err != nil {
			http.Error(w, "Pet not found.", http.StatusNotFound)
			return
		}

		var req inventoryUpdateRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, "invalid json", http.StatusBadRequest)
			return
		}

		item, err := svc.Set(r.Context(), petID, req.FoodName, req.SachetCount)
		switch {
		case errors.Is(err, ErrInvalidInput):
			http.Error(w, "sachet_count must be zero or more", http.StatusBadRequest)
			return
		case err != nil:
			http.Error(w, "internal error", http.StatusInternalServerError)
			return
		}
		writeJSON(w, http.StatusOK, toInventoryResponse(item, svc.Threshold()))
	}
}

func lowStockHandler(svc *Service, petGetter PetGetter) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		items, err := svc.LowStock(r.Context())
		if err != nil {
			http.Error(w, "internal error", http.StatusInternalServerError)
			return
		}
		out := make([]lowStockItemResponse, 0, len(items))
		for _, item := range items {
			name := ""
			if p, err := petGetter.GetByID(r.Context(), item.PetID); err == nil {
				name = p.Name
			}
			out = append(out, lowStockItemResponse{
				PetID:          item.PetID,
				PetName:        name,
				FoodName:       item.FoodName,
				SachetCount:    item.SachetCount,
				RemainingGrams: item.RemainingGrams,
			})
		}
		writeJSON(w, http.StatusOK, out)
	}
}

func toInventoryResponse(item Item, threshold int) inventoryResponse {
	updated := item.UpdatedAt
	return inventoryResponse{
		PetID:           item.PetID,
		FoodName:        item.FoodName,
		SachetCount:     item.SachetCount,
		SachetSizeGrams: item.SachetSizeGrams,
		RemainingGrams:  item.RemainingGrams,
		UpdatedAt:       &updated,
		LowStock:        item.SachetCount <= threshold,
	}
}

// writeJSON está duplicado intencionalmente en handlers de distintos módulos
// para evitar crear helpers compartidos demasiado pronto.
func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
