// Package directory holds the read-only reference data the dashboards share:
// field workers, the complaint type catalog and the demo accounts.
package directory

import (
	"fmt"

	"github.com/spec-kit/complaint-desk/internal/domain"
)

// Directory is an immutable worker lookup table.
type Directory struct {
	byID       map[string]domain.Worker
	byCategory map[domain.WorkerCategory][]domain.Worker
	all        []domain.Worker
}

// NewDirectory indexes workers, preserving their order. Duplicate ids and
// unknown categories are rejected.
func NewDirectory(workers []domain.Worker) (*Directory, error) {
	d := &Directory{
		byID:       make(map[string]domain.Worker, len(workers)),
		byCategory: make(map[domain.WorkerCategory][]domain.Worker),
		all:        make([]domain.Worker, 0, len(workers)),
	}
	for _, w := range workers {
		if w.ID == "" {
			return nil, fmt.Errorf("worker %q has no id", w.Name)
		}
		if _, ok := domain.ParseWorkerCategory(string(w.Category)); !ok {
			return nil, fmt.Errorf("worker %s: unknown category %q", w.ID, w.Category)
		}
		if _, dup := d.byID[w.ID]; dup {
			return nil, fmt.Errorf("duplicate worker id %s", w.ID)
		}
		d.byID[w.ID] = w
		d.byCategory[w.Category] = append(d.byCategory[w.Category], w)
		d.all = append(d.all, w)
	}
	return d, nil
}

// FindByID resolves a worker.
func (d *Directory) FindByID(id string) (domain.Worker, bool) {
	w, ok := d.byID[id]
	return w, ok
}

// ListByCategory returns workers of category in insertion order.
func (d *Directory) ListByCategory(category domain.WorkerCategory) []domain.Worker {
	return append([]domain.Worker(nil), d.byCategory[category]...)
}

// All returns every worker in insertion order.
func (d *Directory) All() []domain.Worker {
	return append([]domain.Worker(nil), d.all...)
}
