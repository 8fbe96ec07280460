package audit

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"
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

// Append registra una acción. actorUserID y details pueden ir vacíos
// (feedings de dispositivo no tienen actor).
func (s *Service) Append(ctx context.Context, action, details, actorUserID string) error {
	if strings.TrimSpace(action) == "" {
		return nil
	}
	return s.repo.Append(ctx, Entry{
		ID:          uuid.NewString(),
		CreatedAt:   s.now(),
		Action:      action,
		Details:     details,
		ActorUserID: actorUserID,
	})
}

func (s *Service) List(ctx context.Context, limit int) ([]Entry, error) {
	return s.repo.List(ctx, limit)
}

// Activity devuelve solo feedings (para el feed del dashboard).
func (s *Service) Activity(ctx context.Context, limit int) ([]Entry, error) {
	return s.repo.ListByAction(ctx, ActionFeedingLogged, limit)
}
