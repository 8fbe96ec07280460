package push

import "context"

type Repository interface {
	Upsert(ctx context.Context, sub Subscription) error
	List(ctx context.Context) ([]Subscription, error)
	// Delete por endpoint; userID no vacío restringe al dueño.
	Delete(ctx context.Context, endpoint, userID string) error
}
