package inventory

import (
	"context"
	"errors"
	"fmt"
	"time"

	"cat-feeder/internal/domain/audit"
	"cat-feeder/internal/domain/pets"
	"cat-feeder/internal/platform/logger"
	"cat-feeder/internal/platform/metrics"
)

var (
	ErrInvalidInput = errors.New("invalid input")
	ErrNotFound     = errors.New("not found")
)

type Recorder interface {
	Append(ctx context.Context, action, details, actorUserID string) error
}

// Notifier recibe el aviso de stock bajo (push, best-effort).
type Notifier interface {
	LowStock(ctx context.Context, pet pets.Pet, item Item)
}

type Deps struct {
	Audit   Recorder
	Alerts  Notifier
	Log     logger.Logger
	Metrics *metrics.Metrics

	SachetSizeGrams   int
	LowStockThreshold int
}

type Service struct {
	repo Repository
	deps Deps
	now  func() time.Time
}

func NewService(repo Repository, deps Deps) *Service {
	if deps.Log == nil {
		deps.Log = logger.Nop()
	}
	if deps.SachetSizeGrams <= 0 {
		deps.SachetSizeGrams = 85
	}
	if deps.LowStockThreshold <= 0 {
		deps.LowStockThreshold = 5
	}
	return &Service{
		repo: repo,
		deps: deps,
		now:  func() time.Time { return time.Now().UTC() },
	}
}

func (s *Service) Threshold() int { return s.deps.LowStockThreshold }

func (s *Service) SachetSize() int { return s.deps.SachetSizeGrams }

func (s *Service) Get(ctx context.Context, petID string) (Item, error) {
	return s.repo.Get(ctx, petID)
}

// Set pisa el stock de la mascota: los gramos restantes se resetean a
// sachets * tamaño.
func (s *Service) Set(ctx context.Context, petID, foodName string, sachetCount int) (Item, error) {
	if petID == "" || sachetCount < 0 {
		return Item{}, ErrInvalidInput
	}
	item := Item{
		PetID:           petID,
		FoodName:        foodName,
		SachetCount:     sachetCount,
		SachetSizeGrams: s.deps.SachetSizeGrams,
		RemainingGrams:  sachetCount * s.deps.SachetSizeGrams,
		UpdatedAt:       s.now(),
	}
	if err := s.repo.Upsert(ctx, item); err != nil {
		return Item{}, err
	}
	return item, nil
}

// ConsumeAfterFeeding depleta el stock tras un feeding admitido. Sin
// inventario cargado no hace nada. El cálculo parte siempre de
// sachet_count (sachets parciales no persisten entre feedings): se
// deriva el total en gramos, se resta y se vuelve al floor de sachets.
// El cruce del umbral se detecta solo en la transición (prev > umbral,
// nuevo <= umbral) para no repetir la alerta en cada feeding posterior.
func (s *Service) ConsumeAfterFeeding(ctx context.Context, pet pets.Pet, amountGrams int) error {
	item, err := s.repo.Get(ctx, pet.ID)
	if errors.Is(err, ErrNotFound) {
		return nil
	}
	if err != nil {
		return err
	}

	prev := item.SachetCount
	remaining := max(0, item.SachetCount*item.SachetSizeGrams-amountGrams)
	item.SachetCount = remaining / item.SachetSizeGrams
	item.RemainingGrams = item.SachetCount * item.SachetSizeGrams
	item.UpdatedAt = s.now()
	if err := s.repo.Upsert(ctx, item); err != nil {
		return err
	}

	if prev > s.deps.LowStockThreshold && item.SachetCount <= s.deps.LowStockThreshold {
		s.lowStockCrossed(ctx, pet, item)
	}
	return nil
}

func (s *Service) lowStockCrossed(ctx context.Context, pet pets.Pet, item Item) {
	if s.deps.Metrics != nil {
		s.deps.Metrics.LowStockEvents.Inc()
	}
	detail := fmt.Sprintf("%s low stock: %d sachets left", pet.Name, item.SachetCount)
	if s.deps.Audit != nil {
		if err := s.deps.Audit.Append(ctx, audit.ActionLowStock, detail, ""); err != nil {
			s.deps.Log.Warn("audit append failed", map[string]any{"err": err.Error()})
		}
	}
	if s.deps.Alerts != nil {
		s.deps.Alerts.LowStock(ctx, pet, item)
	}
}

// LowStock lista los inventarios en o bajo el umbral.
func (s *Service) LowStock(ctx context.Context) ([]Item, error) {
	return s.repo.ListLowStock(ctx, s.deps.LowStockThreshold)
}
