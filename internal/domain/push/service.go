package push

import (
	"context"
	"errors"
	"time"
)

var ErrInvalidInput = errors.New("invalid input")

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

func (s *Service) Subscribe(ctx context.Context, userID, endpoint, p256dh, auth string) error {
	if endpoint == "" || p256dh == "" || auth == "" {
		return ErrInvalidInput
	}
	return s.repo.Upsert(ctx, Subscription{
		Endpoint:  endpoint,
		P256dh:    p256dh,
		Auth:      auth,
		UserID:    userID,
		CreatedAt: s.now(),
	})
}

func (s *Service) Unsubscribe(ctx context.Context, userID, endpoint string) error {
	if endpoint == "" {
		return ErrInvalidInput
	}
	return s.repo.Delete(ctx, endpoint, userID)
}

func (s *Service) List(ctx context.Context) ([]Subscription, error) {
	return s.repo.List(ctx)
}

// Drop saca una suscripción muerta sin importar el dueño (la usa el
// dispatcher cuando el push service devuelve 404/410).
func (s *Service) Drop(ctx context.Context, endpoint string) error {
	return s.repo.Delete(ctx, endpoint, "")
}
