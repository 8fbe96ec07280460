package reports

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"cat-feeder/internal/domain/feedings"
	"cat-feeder/internal/domain/inventory"
	"cat-feeder/internal/domain/pets"
	"cat-feeder/internal/domain/weights"

	"github.com/go-chi/chi/v5"
)

type PetGetter interface {
	GetByID(ctx context.Context, id string) (pets.Pet, error)
}

type FeedingSource interface {
	ListRange(ctx context.Context, petID string, start, end time.Time) ([]feedings.FeedingEvent, error)
}

type WeightSource interface {
	ListRange(ctx context.Context, petID string, start, end time.Time) ([]weights.Entry, error)
}

type InventorySource interface {
	Get(ctx context.Context, petID string) (inventory.Item, error)
}

func RegisterRoutes(r chi.Router, petGetter PetGetter, fs FeedingSource, ws WeightSource, is InventorySource) {
	r.Get("/pets/{petID}/report.pdf", petReportHandler(petGetter, fs, ws, is))
}

// petReportHandler godoc
// @Summary Reporte PDF de la mascota (default: últimos 30 días)
func petReportHandler(petGetter PetGetter, fs FeedingSource, ws WeightSource, is InventorySource) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		petID := chi.URLParam(r, "petID")
		pet, err := petGetter.GetByID(r.Context(), petID)
		if err != nil {
			http.Error(w, "Pet not found.", http.StatusNotFound)
			return
		}

		// Ventana: [start, end+1d); sin end => hasta mañana, sin start
		// => 30 días hacia atrás.
		end := time.Now().UTC().AddDate(0, 0, 1)
		if v := r.URL.Query().Get("end"); v != "" {
			t, perr := time.Parse("2006-01-02", v)
			if perr != nil {
				http.Error(w, "end must be YYYY-MM-DD", http.StatusBadRequest)
				return
			}
			end = t.AddDate(0, 0, 1)
		}
		start := end.AddDate(0, 0, -30)
		if v := r.URL.Query().Get("start"); v != "" {
			t, perr := time.Parse("2006-01-02", v)
			if perr != nil {
				http.Error(w, "start must be YYYY-MM-DD", http.StatusBadRequest)
				return
			}
			start = t
		}

		events, err := fs.ListRange(r.Context(), petID, start, end)
		if err != nil {
			http.Error(w, "internal error", http.StatusInternalServerError)
			return
		}
		entries, err := ws.ListRange(r.Context(), petID, start, end)
		if err != nil {
			http.Error(w, "internal error", http.StatusInternalServerError)
			return
		}

		in := Input{
			Pet:      pet,
			Feedings: events,
			Weights:  entries,
			Start:    start,
			End:      end,
		}
		item, err := is.Get(r.Context(), petID)
		switch {
		case err == nil:
			in.Inventory = &item
		case errors.Is(err, inventory.ErrNotFound):
		default:
			http.Error(w, "internal error", http.StatusInternalServerError)
			return
		}

		data, err := BuildPetReport(in)
		if err != nil {
			http.Error(w, "internal error", http.StatusInternalServerError)
			return
		}

		filename := strings.ToLower(strings.ReplaceAll(pet.Name, " ", "_")) + "_report.pdf"
		w.Header().Set("Content-Type", "application/pdf")
		w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%s", filename))
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write(data)
	}
}
