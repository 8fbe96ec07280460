package stats

import (
	"context"
	"errors"
	"time"

	"cat-feeder/internal/domain/feedings"
)

var ErrInvalidDateRange = errors.New("invalid date range")

// EventSource es lo único que el agregador necesita del historial de
// feedings: totales agrupados por día calendario.
type EventSource interface {
	DailyTotals(ctx context.Context, start, end time.Time, petID string) (map[string]feedings.DayTotal, error)
}

type DailyStat struct {
	Date  string
	Grams int
	Count int
}

// Query: o bien una ventana explícita [Start, End] (fechas inclusive),
// o bien los últimos Days días terminando hoy. PetID vacío agrega
// sobre todas las mascotas.
type Query struct {
	Days  int
	Start *time.Time
	End   *time.Time
	PetID string
}

type Service struct {
	events EventSource
	now    func() time.Time
}

func NewService(events EventSource) *Service {
	return &Service{
		events: events,
		now:    func() time.Time { return time.Now().UTC() },
	}
}

const dayKeyFormat = "2006-01-02"

// Series devuelve un punto por día, en orden ascendente y sin huecos:
// los días sin feedings salen con grams=0 y count=0.
func (s *Service) Series(ctx context.Context, q Query) (int, []DailyStat, error) {
	days := q.Days
	if days < 1 || days > 31 {
		days = 7
	}

	var lastDay time.Time
	var start, end time.Time
	if q.Start != nil && q.End != nil {
		if q.Start.After(*q.End) {
			return 0, nil, ErrInvalidDateRange
		}
		start = truncateDay(*q.Start)
		lastDay = truncateDay(*q.End)
		end = lastDay.Add(24 * time.Hour)
		days = int(lastDay.Sub(start).Hours()/24) + 1
	} else {
		lastDay = truncateDay(s.now())
		start = lastDay.AddDate(0, 0, -(days - 1))
		end = lastDay.Add(24 * time.Hour)
	}

	totals, err := s.events.DailyTotals(ctx, start, end, q.PetID)
	if err != nil {
		return 0, nil, err
	}

	items := make([]DailyStat, 0, days)
	for offset := 0; offset < days; offset++ {
		day := lastDay.AddDate(0, 0, -(days - 1 - offset))
		key := day.Format(dayKeyFormat)
		t := totals[key]
		items = append(items, DailyStat{Date: key, Grams: t.Grams, Count: t.Count})
	}
	return days, items, nil
}

func truncateDay(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}
