package feedings

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"cat-feeder/internal/domain/audit"
	"cat-feeder/internal/domain/pets"
	"cat-feeder/internal/platform/logger"
	"cat-feeder/internal/platform/metrics"

	"github.com/google/uuid"
)

var (
	ErrInvalidInput    = errors.New("invalid input")
	ErrNotFound        = errors.New("not found")
	ErrDailyCountLimit = errors.New("daily feeding limit reached")
	ErrDailyGramsLimit = errors.New("daily grams limit reached")
)

// Presupuesto fijo de gramos por día para el remaining_grams del
// dashboard global.
const dayBudgetGrams = 2000

type PetGetter interface {
	GetByID(ctx context.Context, id string) (pets.Pet, error)
}

type Recorder interface {
	Append(ctx context.Context, action, details, actorUserID string) error
}

// Consumer depleta inventario después de un feeding aprobado.
type Consumer interface {
	ConsumeAfterFeeding(ctx context.Context, pet pets.Pet, amountGrams int) error
}

// Notifier hace el fan-out best-effort (email + push); nunca devuelve
// error hacia acá.
type Notifier interface {
	FeedingLogged(ctx context.Context, pet pets.Pet, e FeedingEvent)
}

type Deps struct {
	Pets      PetGetter
	Audit     Recorder
	Inventory Consumer
	Notifier  Notifier
	Log       logger.Logger
	Metrics   *metrics.Metrics

	// DefaultDailyLimit aplica cuando la mascota no tiene límite propio.
	// Un cero explícito por mascota se respeta literal.
	DefaultDailyLimit int
}

// Service es el control de admisión: decide si un feeding entra según
// los topes diarios y lo persiste. El chequeo count/gramos + insert se
// serializa por mascota con un mutex por clave, así dos requests
// concurrentes no pasan ambos contra un count viejo. (Enforcement
// in-process: un despliegue multi-proceso necesitaría la variante
// transaccional en el storage.)
type Service struct {
	repo Repository
	deps Deps
	now  func() time.Time

	locks keyedMutex
}

func NewService(repo Repository, deps Deps) *Service {
	if deps.Log == nil {
		deps.Log = logger.Nop()
	}
	if deps.DefaultDailyLimit <= 0 {
		deps.DefaultDailyLimit = 3
	}
	return &Service{
		repo: repo,
		deps: deps,
		now:  func() time.Time { return time.Now().UTC() },
	}
}

type LogInput struct {
	PetID       string
	AmountGrams int
	FedAt       time.Time // zero = ahora (UTC)
	DietType    string
	ActorUserID string
}

// Log admite y registra un feeding para una mascota. Orden de chequeo:
// mascota existe -> tope de cantidad -> tope de gramos (ambos contra el
// día calendario del fed_at, no contra "ahora"). Los efectos laterales
// (audit, inventario, notificaciones) son best-effort y no afectan la
// decisión ya tomada.
func (s *Service) Log(ctx context.Context, in LogInput) (FeedingEvent, error) {
	if in.PetID == "" || in.AmountGrams < 1 {
		return FeedingEvent{}, ErrInvalidInput
	}

	pet, err := s.deps.Pets.GetByID(ctx, in.PetID)
	if err != nil {
		return FeedingEvent{}, ErrNotFound
	}

	fedAt := in.FedAt
	if fedAt.IsZero() {
		fedAt = s.now()
	}

	unlock := s.locks.lock(in.PetID)
	defer unlock()

	dayStart, dayEnd := dayWindow(fedAt)

	count, err := s.repo.CountInWindow(ctx, dayStart, dayEnd, in.PetID)
	if err != nil {
		return FeedingEvent{}, err
	}
	limit := s.deps.DefaultDailyLimit
	if pet.DailyLimitCount != nil {
		limit = *pet.DailyLimitCount
	}
	if count >= limit {
		s.reject("count")
		return FeedingEvent{}, ErrDailyCountLimit
	}

	if pet.DailyGramsLimit != nil && *pet.DailyGramsLimit > 0 {
		sum, err := s.repo.SumGramsInWindow(ctx, dayStart, dayEnd, in.PetID)
		if err != nil {
			return FeedingEvent{}, err
		}
		// Llegar exacto al tope se acepta; pasarse se rechaza.
		if sum+in.AmountGrams > *pet.DailyGramsLimit {
			s.reject("grams")
			return FeedingEvent{}, ErrDailyGramsLimit
		}
	}

	e := FeedingEvent{
		ID:          uuid.NewString(),
		FedAt:       fedAt,
		AmountGrams: in.AmountGrams,
		DietType:    in.DietType,
		PetID:       in.PetID,
	}
	if err := s.repo.Create(ctx, e); err != nil {
		return FeedingEvent{}, err
	}
	if s.deps.Metrics != nil {
		s.deps.Metrics.FeedingsLogged.Inc()
	}

	s.sideEffects(ctx, pet, e, in.ActorUserID)
	return e, nil
}

// sideEffects corre en orden fijo; cada paso es independiente, un fallo
// se loguea y no frena al siguiente.
func (s *Service) sideEffects(ctx context.Context, pet pets.Pet, e FeedingEvent, actorUserID string) {
	if s.deps.Audit != nil {
		detail := fmt.Sprintf("%s - %dg", pet.Name, e.AmountGrams)
		if e.DietType != "" {
			detail += " - " + e.DietType
		}
		if err := s.deps.Audit.Append(ctx, audit.ActionFeedingLogged, detail, actorUserID); err != nil {
			s.deps.Log.Warn("audit append failed", map[string]any{"err": err.Error()})
		}
	}

	if s.deps.Inventory != nil {
		if err := s.deps.Inventory.ConsumeAfterFeeding(ctx, pet, e.AmountGrams); err != nil {
			s.deps.Log.Warn("inventory consume failed", map[string]any{"err": err.Error(), "pet_id": pet.ID})
		}
	}

	if s.deps.Notifier != nil {
		s.deps.Notifier.FeedingLogged(ctx, pet, e)
	}
}

// LogUngrouped es el camino legacy sin mascota: tope global (default)
// contra todos los eventos del día, sin tracking por mascota y sin
// efectos laterales.
func (s *Service) LogUngrouped(ctx context.Context, fedAt time.Time, amountGrams int, dietType string) (FeedingEvent, error) {
	if amountGrams < 1 {
		return FeedingEvent{}, ErrInvalidInput
	}
	if fedAt.IsZero() {
		fedAt = s.now()
	}

	unlock := s.locks.lock("")
	defer unlock()

	dayStart, dayEnd := dayWindow(fedAt)
	count, err := s.repo.CountInWindow(ctx, dayStart, dayEnd, "")
	if err != nil {
		return FeedingEvent{}, err
	}
	if count >= s.deps.DefaultDailyLimit {
		return FeedingEvent{}, ErrDailyCountLimit
	}

	e := FeedingEvent{
		ID:          uuid.NewString(),
		FedAt:       fedAt,
		AmountGrams: amountGrams,
		DietType:    dietType,
	}
	if err := s.repo.Create(ctx, e); err != nil {
		return FeedingEvent{}, err
	}
	return e, nil
}

// Import inserta un evento sin pasar por la admisión. Solo para los
// seeds de demo de mantenimiento; el tráfico real entra por Log.
func (s *Service) Import(ctx context.Context, fedAt time.Time, amountGrams int, dietType, petID string) (FeedingEvent, error) {
	e := FeedingEvent{
		ID:          uuid.NewString(),
		FedAt:       fedAt,
		AmountGrams: amountGrams,
		DietType:    dietType,
		PetID:       petID,
	}
	if err := s.repo.Create(ctx, e); err != nil {
		return FeedingEvent{}, err
	}
	return e, nil
}

// Status arma el resumen global del día actual.
func (s *Service) Status(ctx context.Context) (Status, error) {
	dayStart, dayEnd := dayWindow(s.now())

	count, err := s.repo.CountInWindow(ctx, dayStart, dayEnd, "")
	if err != nil {
		return Status{}, err
	}
	total, err := s.repo.TotalGrams(ctx)
	if err != nil {
		return Status{}, err
	}

	st := Status{
		DailyCount:        count,
		DailyLimit:        s.deps.DefaultDailyLimit,
		RemainingFeedings: max(0, s.deps.DefaultDailyLimit-count),
		RemainingGrams:    max(0, dayBudgetGrams-total),
	}

	last, err := s.repo.Last(ctx, "")
	if err == nil {
		st.LastFedAt = &last.FedAt
		st.LastDietType = last.DietType
	} else if !errors.Is(err, ErrNotFound) {
		return Status{}, err
	}
	return st, nil
}

func (s *Service) PetStatus(ctx context.Context, petID string) (PetStatus, error) {
	pet, err := s.deps.Pets.GetByID(ctx, petID)
	if err != nil {
		return PetStatus{}, ErrNotFound
	}

	dayStart, dayEnd := dayWindow(s.now())
	count, err := s.repo.CountInWindow(ctx, dayStart, dayEnd, petID)
	if err != nil {
		return PetStatus{}, err
	}
	limit := s.deps.DefaultDailyLimit
	if pet.DailyLimitCount != nil {
		limit = *pet.DailyLimitCount
	}

	st := PetStatus{
		PetID:             petID,
		DailyCount:        count,
		DailyLimit:        limit,
		RemainingFeedings: max(0, limit-count),
	}

	last, err := s.repo.Last(ctx, petID)
	if err == nil {
		st.LastFedAt = &last.FedAt
		st.LastDietType = last.DietType
	} else if !errors.Is(err, ErrNotFound) {
		return PetStatus{}, err
	}
	return st, nil
}

func (s *Service) ListByPet(ctx context.Context, petID string, limit int) ([]FeedingEvent, error) {
	return s.repo.ListByPet(ctx, petID, limit)
}

func (s *Service) ListRange(ctx context.Context, petID string, start, end time.Time) ([]FeedingEvent, error) {
	return s.repo.ListRange(ctx, petID, start, end)
}

func (s *Service) ListAll(ctx context.Context) ([]FeedingEvent, error) {
	return s.repo.ListAll(ctx)
}

func (s *Service) CountByPet(ctx context.Context, petID string) (int, error) {
	return s.repo.CountByPet(ctx, petID)
}

func (s *Service) DeleteByPet(ctx context.Context, petID string) error {
	return s.repo.DeleteByPet(ctx, petID)
}

func (s *Service) DeleteAll(ctx context.Context) error {
	return s.repo.DeleteAll(ctx)
}

func (s *Service) reject(reason string) {
	if s.deps.Metrics != nil {
		s.deps.Metrics.FeedingsRejected.WithLabelValues(reason).Inc()
	}
}

// dayWindow devuelve [medianoche, medianoche+24h) en la zona del
// propio timestamp: el día calendario del feeding, no el de "ahora".
func dayWindow(t time.Time) (time.Time, time.Time) {
	start := time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
	return start, start.Add(24 * time.Hour)
}

// keyedMutex serializa por clave (pet id; "" para el camino legacy).
// El mapa no se achica: la cantidad de mascotas de un hogar es chica.
type keyedMutex struct {
	mu    sync.Mutex
	locks map[string]*sync.Mutex
}

func (k *keyedMutex) lock(key string) func() {
	k.mu.Lock()
	if k.locks == nil {
		k.locks = make(map[string]*sync.Mutex)
	}
	m, ok := k.locks[key]
	if !ok {
		m = &sync.Mutex{}
		k.locks[key] = m
	}
	k.mu.Unlock()

	m.Lock()
	return m.Unlock
}
