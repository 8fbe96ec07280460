package memory

import (
	"context"
	"errors"
	"sort"
	"strings"
	"sync"

	"cat-feeder/internal/domain/accounts"
)

type accountsRepo struct {
	mu         sync.RWMutex
	usersByID  map[string]accounts.User
	byUsername map[string]string // username (lower) -> id
	sessions   map[string]accounts.Session
}

func NewAccountsRepo() accounts.Repository {
	return &accountsRepo{
		usersByID:  make(map[string]accounts.User),
		byUsername: make(map[string]string),
		sessions:   make(map[string]accounts.Session),
	}
}

func (r *accountsRepo) CreateUser(ctx context.Context, u accounts.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	key := strings.ToLower(u.Username)
	if _, exists := r.byUsername[key]; exists {
		return accounts.ErrUsernameTaken
	}
	r.usersByID[u.ID] = u
	r.byUsername[key] = u.ID
	return nil
}

func (r *accountsRepo) UpdateUser(ctx context.Context, u accounts.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.usersByID[u.ID]; !exists {
		return accounts.ErrNotFound
	}
	r.usersByID[u.ID] = u
	return nil
}

func (r *accountsRepo) GetUserByID(ctx context.Context, id string) (accounts.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	u, ok := r.usersByID[id]
	if !ok {
		return accounts.User{}, accounts.ErrNotFound
	}
	return u, nil
}

func (r *accountsRepo) GetUserByUsername(ctx context.Context, username string) (accounts.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	id, ok := r.byUsername[strings.ToLower(username)]
	if !ok {
		return accounts.User{}, accounts.ErrNotFound
	}
	return r.usersByID[id], nil
}

func (r *accountsRepo) ListUsers(ctx context.Context) ([]accounts.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]accounts.User, 0, len(r.usersByID))
	for _, u := range r.usersByID {
		out = append(out, u)
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].CreatedAt.Before(out[j].CreatedAt)
	})
	return out, nil
}

func (r *accountsRepo) CountUsers(ctx context.Context) (int, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	return len(r.usersByID), nil
}

func (r *accountsRepo) CreateSession(ctx context.Context, s accounts.Session) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if s.Token == "" {
		return errors.New("session token required")
	}
	r.sessions[s.Token] = s
	return nil
}

func (r *accountsRepo) GetSession(ctx context.Context, token string) (accounts.Session, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	s, ok := r.sessions[token]
	if !ok {
		return accounts.Session{}, accounts.ErrNotFound
	}
	return s, nil
}

func (r *accountsRepo) DeleteSession(ctx context.Context, token string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	delete(r.sessions, token)
	return nil
}
