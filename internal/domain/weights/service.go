package weights

import (
	"context"
	"errors"
	"fmt"
	"time"

	"cat-feeder/internal/domain/audit"
	"cat-feeder/internal/domain/pets"

	"github.com/google/uuid"
)

var (
	ErrInvalidInput = errors.New("invalid input")
	ErrNotFound     = errors.New("not found")
)

type PetGetter interface {
	GetByID(ctx context.Context, id string) (pets.Pet, error)
}

type Recorder interface {
	Append(ctx context.Context, action, details, actorUserID string) error
}

type Service struct {
	repo  Repository
	petsG PetGetter
	rec   Recorder
	now   func() time.Time
}

func NewService(repo Repository, petGetter PetGetter, rec Recorder) *Service {
	return &Service{
		repo:  repo,
		petsG: petGetter,
		rec:   rec,
		now:   func() time.Time { return time.Now().UTC() },
	}
}

// Record registra una medición; recordedAt en cero usa ahora.
func (s *Service) Record(ctx context.Context, petID string, weightKg float64, recordedAt time.Time) (Entry, error) {
	if weightKg <= 0 {
		return Entry{}, ErrInvalidInput
	}
	pet, err := s.petsG.GetByID(ctx, petID)
	if err != nil {
		return Entry{}, ErrNotFound
	}
	if recordedAt.IsZero() {
		recordedAt = s.now()
	}

	e := Entry{
		ID:         uuid.NewString(),
		PetID:      petID,
		WeightKg:   weightKg,
		RecordedAt: recordedAt,
	}
	if err := s.repo.Create(ctx, e); err != nil {
		return Entry{}, err
	}

	if s.rec != nil {
		detail := fmt.Sprintf("%s weight logged: %gkg", pet.Name, e.WeightKg)
		_ = s.rec.Append(ctx, audit.ActionWeightLogged, detail, "")
	}
	return e, nil
}

func (s *Service) ListByPet(ctx context.Context, petID string, limit int) ([]Entry, error) {
	if _, err := s.petsG.GetByID(ctx, petID); err != nil {
		return nil, ErrNotFound
	}
	return s.repo.ListByPet(ctx, petID, limit)
}

func (s *Service) ListRange(ctx context.Context, petID string, start, end time.Time) ([]Entry, error) {
	return s.repo.ListRange(ctx, petID, start, end)
}
