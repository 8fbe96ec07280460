package stats

import (
	"encoding/csv"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
)

func RegisterRoutes(r chi.Router, svc *Service) {
	r.Get("/stats/daily", dailyStatsHandler(svc))
	r.Get("/stats/export", exportStatsHandler(svc))
}

type dailyStatResponse struct {
	Date  string `json:"date"`
	Grams int    `json:"grams"`
	Count int    `json:"count"`
}

type dailyStatsResponse struct {
	Days  int                 `json:"days"`
	Items []dailyStatResponse `json:"items"`
}

// dailyStatsHandler godoc
// @Summary Serie diaria de consumo (sin huecos, días vacíos en cero)
func dailyStatsHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		q, ok := parseQuery(w, r)
		if !ok {
			return
		}
		days, items, err := svc.Series(r.Context(), q)
		switch {
		case errors.Is(err, ErrInvalidDateRange):
			http.Error(w, "Start date must be before end date.", http.StatusBadRequest)
			return
		case err != nil:
			http.Error(w, "internal error", http.StatusInternalServerError)
			return
		}

		out := make([]dailyStatResponse, 0, len(items))
		for _, it := range items {
			out = append(out, dailyStatResponse{Date: it.Date, Grams: it.Grams, Count: it.Count})
		}
		writeJSON(w, http.StatusOK, dailyStatsResponse{Days: days, Items: out})
	}
}

func exportStatsHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		q, ok := parseQuery(w, r)
		if !ok {
			return
		}
		_, items, err := svc.Series(r.Context(), q)
		switch {
		case errors.Is(err, ErrInvalidDateRange):
			http.Error(w, "Start date must be before end date.", http.StatusBadRequest)
			return
		case err != nil:
			http.Error(w, "internal error", http.StatusInternalServerError)
			return
		}

		w.Header().Set("Content-Type", "text/csv")
		w.Header().Set("Content-Disposition", "attachment; filename=stats.csv")
		cw := csv.NewWriter(w)
		_ = cw.Write([]string{"date", "grams", "count", "pet_id"})
		for _, it := range items {
			_ = cw.Write([]string{it.Date, strconv.Itoa(it.Grams), strconv.Itoa(it.Count), q.PetID})
		}
		cw.Flush()
	}
}

func parseQuery(w http.ResponseWriter, r *http.Request) (Query, bool) {
	q := Query{
		Days:  7,
		PetID: r.URL.Query().Get("pet_id"),
	}
	if v := r.URL.Query().Get("days"); v != "" {
		n, err := strconv.Atoi(v)
		if err == nil && n >= 1 && n <= 31 {
			q.Days = n
		}
	}
	var ok bool
	if q.Start, ok = parseDateParam(w, r, "start"); !ok {
		return Query{}, false
	}
	if q.End, ok = parseDateParam(w, r, "end"); !ok {
		return Query{}, false
	}
	return q, true
}

func parseDateParam(w http.ResponseWriter, r *http.Request, name string) (*time.Time, bool) {
	v := r.URL.Query().Get(name)
	if v == "" {
		return nil, true
	}
	t, err := time.Parse(dayKeyFormat, v)
	if err != nil {
		http.Error(w, name+" must be YYYY-MM-DD", http.StatusBadRequest)
		return nil, false
	}
	return &t, true
}

// writeJSON está duplicado intencionalmente en handlers de distintos módulos
// para evitar crear helpers compartidos demasiado pronto.
func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
