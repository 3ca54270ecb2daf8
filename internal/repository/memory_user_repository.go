package repository

import (
	"context"
	"sync"

	"github.com/jackc/pgx/v5"

	"github.com/spec-kit/complaint-desk/internal/domain"
)

type memoryUserRepository struct {
	mu      sync.RWMutex
	byID    map[string]*domain.User
	byEmail map[string]string
}

// NewMemoryUserRepository returns an in-process credential store.
func NewMemoryUserRepository() UserRepository {
	return &memoryUserRepository{
		byID:    make(map[string]*domain.User),
		byEmail: make(map[string]string),
	}
}

func (r *memoryUserRepository) Create(_ context.Context, user *domain.User) error {
	key := emailKey(user.Role, user.Email)
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, exists := r.byEmail[key]; exists {
		return ErrDuplicate
	}
	if _, exists := r.byID[user.ID]; exists {
		return ErrDuplicate
	}
	cp := *user
	cp.Email = normalizeEmail(user.Email)
	r.byID[cp.ID] = &cp
	r.byEmail[key] = cp.ID
	return nil
}

func (r *memoryUserRepository) GetByID(_ context.Context, id string) (*domain.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	user, ok := r.byID[id]
	if !ok {
		return nil, pgx.ErrNoRows
	}
	cp := *user
	return &cp, nil
}

func (r *memoryUserRepository) GetByEmail(_ context.Context, role domain.Role, email string) (*domain.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	id, ok := r.byEmail[emailKey(role, email)]
	if !ok {
		return nil, pgx.ErrNoRows
	}
	cp := *r.byID[id]
	return &cp, nil
}

func emailKey(role domain.Role, email string) string {
	return string(role) + "|" + normalizeEmail(email)
}
