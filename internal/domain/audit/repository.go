package audit

import "context"

type Repository interface {
	Append(ctx context.Context, e Entry) error
	List(ctx context.Context, limit int) ([]Entry, error)
	ListByAction(ctx context.Context, action string, limit int) ([]Entry, error)
}
