package pets

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
)

var (
	ErrInvalidInput = errors.New("invalid input")
	ErrNotFound     = errors.New("not found")
)

type Service struct {
	repo Repository
	now  func() time.Time
}

func NewService(repo Repository) *Service {
	return &Service{
		repo: repo,
		now:  func() time.Time { return time.Now().UTC() },
	}
}

type CreateInput struct {
	Name              string
	AgeYears          *int
	Sex               string
	DietType          string
	Breed             string
	LastVetVisit      *time.Time
	EstimatedWeightKg *float64
	PhotoURL          string
	PhotoBlob         []byte
	PhotoMime         string
	FeedTime1         string
	FeedTime2         string
}

func (s *Service) Create(ctx context.Context, in CreateInput) (Pet, error) {
	if strings.TrimSpace(in.Name) == "" {
		return Pet{}, ErrInvalidInput
	}
	if in.AgeYears != nil && *in.AgeYears < 0 {
		return Pet{}, ErrInvalidInput
	}
	if in.EstimatedWeightKg != nil && *in.EstimatedWeightKg < 0 {
		return Pet{}, ErrInvalidInput
	}

	now := s.now()
	p := Pet{
		ID:                uuid.NewString(),
		Name:              strings.TrimSpace(in.Name),
		AgeYears:          in.AgeYears,
		Sex:               strings.TrimSpace(in.Sex),
		DietType:          strings.TrimSpace(in.DietType),
		Breed:             strings.TrimSpace(in.Breed),
		LastVetVisit:      in.LastVetVisit,
		EstimatedWeightKg: in.EstimatedWeightKg,
		PhotoURL:          strings.TrimSpace(in.PhotoURL),
		PhotoBlob:         in.PhotoBlob,
		PhotoMime:         in.PhotoMime,
		FeedTime1:         strings.TrimSpace(in.FeedTime1),
		FeedTime2:         strings.TrimSpace(in.FeedTime2),
		CreatedAt:         now,
		UpdatedAt:         now,
	}

	if err := s.repo.Create(ctx, p); err != nil {
		return Pet{}, err
	}
	return p, nil
}

func (s *Service) GetByID(ctx context.Context, id string) (Pet, error) {
	return s.repo.GetByID(ctx, id)
}

func (s *Service) List(ctx context.Context) ([]Pet, error) {
	return s.repo.List(ctx)
}

// UpdateInput: punteros = PATCH real (nil no toca). ClearPhotoBlob
// borra el blob cuando el caller mandó photo_base64 vacío/null.
type UpdateInput struct {
	Name              *string
	AgeYears          *int
	Sex               *string
	DietType          *string
	Breed             *string
	LastVetVisit      *time.Time
	EstimatedWeightKg *float64
	PhotoURL          *string
	PhotoBlob         []byte
	PhotoMime         string
	ClearPhotoBlob    bool
	FeedTime1         *string
	FeedTime2         *string
}

func (s *Service) Update(ctx context.Context, id string, in UpdateInput) (Pet, error) {
	p, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return Pet{}, err
	}

	if in.Name != nil {
		name := strings.TrimSpace(*in.Name)
		if name == "" {
			return Pet{}, ErrInvalidInput
		}
		p.Name = name
	}
	if in.AgeYears != nil {
		if *in.AgeYears < 0 {
			return Pet{}, ErrInvalidInput
		}
		p.AgeYears = in.AgeYears
	}
	if in.Sex != nil {
		p.Sex = strings.TrimSpace(*in.Sex)
	}
	if in.DietType != nil {
		p.DietType = strings.TrimSpace(*in.DietType)
	}
	if in.Breed != nil {
		p.Breed = strings.TrimSpace(*in.Breed)
	}
	if in.LastVetVisit != nil {
		p.LastVetVisit = in.LastVetVisit
	}
	if in.EstimatedWeightKg != nil {
		if *in.EstimatedWeightKg < 0 {
			return Pet{}, ErrInvalidInput
		}
		p.EstimatedWeightKg = in.EstimatedWeightKg
	}
	if len(in.PhotoBlob) > 0 {
		p.PhotoBlob = in.PhotoBlob
		p.PhotoMime = in.PhotoMime
		p.PhotoURL = ""
	} else if in.ClearPhotoBlob {
		p.PhotoBlob = nil
		p.PhotoMime = ""
	}
	if in.PhotoURL != nil && len(in.PhotoBlob) == 0 {
		p.PhotoURL = strings.TrimSpace(*in.PhotoURL)
	}
	if in.FeedTime1 != nil {
		p.FeedTime1 = strings.TrimSpace(*in.FeedTime1)
	}
	if in.FeedTime2 != nil {
		p.FeedTime2 = strings.TrimSpace(*in.FeedTime2)
	}

	p.UpdatedAt = s.now()
	if err := s.repo.Update(ctx, p); err != nil {
		return Pet{}, err
	}
	return p, nil
}

// UpdateLimits setea los topes diarios (admin). Valores provistos deben
// ser >= 1; el cero literal solo puede existir por escritura directa en
// el storage y la admisión lo respeta igual.
func (s *Service) UpdateLimits(ctx context.Context, id string, limitCount, gramsLimit *int) (Pet, error) {
	if limitCount != nil && *limitCount < 1 {
		return Pet{}, ErrInvalidInput
	}
	if gramsLimit != nil && *gramsLimit < 1 {
		return Pet{}, ErrInvalidInput
	}

	p, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return Pet{}, err
	}
	if limitCount != nil {
		p.DailyLimitCount = limitCount
	}
	if gramsLimit != nil {
		p.DailyGramsLimit = gramsLimit
	}
	p.UpdatedAt = s.now()
	if err := s.repo.Update(ctx, p); err != nil {
		return Pet{}, err
	}
	return p, nil
}

func (s *Service) Delete(ctx context.Context, id string) error {
	return s.repo.Delete(ctx, id)
}

func (s *Service) DeleteAll(ctx context.Context) error {
	return s.repo.DeleteAll(ctx)
}
