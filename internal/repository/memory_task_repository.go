package repository

import (
	"context"
	"sort"
	"strings"
	"sync"

	"github.com/jackc/pgx/v5"

	"github.com/spec-kit/complaint-desk/internal/domain"
)

type memoryTaskRepository struct {
	mu    sync.RWMutex
	tasks map[string]*domain.Task
}

// NewMemoryTaskRepository keeps tasks for the lifetime of the process.
func NewMemoryTaskRepository() TaskRepository {
	return &memoryTaskRepository{tasks: make(map[string]*domain.Task)}
}

func (r *memoryTaskRepository) Create(_ context.Context, task *domain.Task) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, exists := r.tasks[task.ID]; exists {
		return ErrDuplicate
	}
	r.tasks[task.ID] = task.Clone()
	return nil
}

func (r *memoryTaskRepository) Update(_ context.Context, task *domain.Task) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, exists := r.tasks[task.ID]; !exists {
		return pgx.ErrNoRows
	}
	r.tasks[task.ID] = task.Clone()
	return nil
}

func (r *memoryTaskRepository) GetByID(_ context.Context, id string) (*domain.Task, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	task, ok := r.tasks[id]
	if !ok {
		return nil, pgx.ErrNoRows
	}
	return task.Clone(), nil
}

func (r *memoryTaskRepository) List(_ context.Context, filter TaskFilter) ([]domain.Task, error) {
	r.mu.RLock()
	matched := make([]domain.Task, 0, len(r.tasks))
	for _, task := range r.tasks {
		if matchesFilter(task, filter) {
			matched = append(matched, *task.Clone())
		}
	}
	r.mu.RUnlock()

	sort.Slice(matched, func(i, j int) bool {
		if matched[i].CreatedAt.Equal(matched[j].CreatedAt) {
			return matched[i].ID > matched[j].ID
		}
		return matched[i].CreatedAt.After(matched[j].CreatedAt)
	})

	limit, offset := normalizePage(filter.Limit, filter.Offset)
	if offset >= len(matched) {
		return []domain.Task{}, nil
	}
	end := offset + limit
	if end > len(matched) {
		end = len(matched)
	}
	return matched[offset:end], nil
}

func matchesFilter(task *domain.Task, filter TaskFilter) bool {
	if filter.AssignedWorkerID != nil {
		if task.AssignedWorkerID == nil || *task.AssignedWorkerID != *filter.AssignedWorkerID {
			return false
		}
	}
	if filter.Email != nil && !strings.EqualFold(task.Email, *filter.Email) {
		return false
	}
	if len(filter.Statuses) > 0 {
		found := false
		for _, s := range filter.Statuses {
			if task.Status == s {
				found = true
				break
			}
		}
		if !found {
			return false
		}
	}
	return true
}
