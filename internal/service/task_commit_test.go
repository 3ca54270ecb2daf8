package service

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/spec-kit/complaint-desk/internal/domain"
	"github.com/spec-kit/complaint-desk/internal/repository"
	"github.com/spec-kit/complaint-desk/internal/simulator"
	apperrors "github.com/spec-kit/complaint-desk/pkg/util"
)

// heldUpdates blocks the first Update until release is closed.
type heldUpdates struct {
	repository.TaskRepository
	once    sync.Once
	entered chan struct{}
	release chan struct{}
}

func holdFirstUpdate(inner repository.TaskRepository) *heldUpdates {
	return &heldUpdates{TaskRepository: inner, entered: make(chan struct{}), release: make(chan struct{})}
}

func (h *heldUpdates) Update(ctx context.Context, task *domain.Task) error {
	first := false
	h.once.Do(func() { first = true })
	if first {
		close(h.entered)
		<-h.release
	}
	return h.TaskRepository.Update(ctx, task)
}

// takenIDs reports ErrDuplicate for the first n creates.
type takenIDs struct {
	repository.TaskRepository
	mu    sync.Mutex
	left  int
	tried []string
}

func (r *takenIDs) Create(ctx context.Context, task *domain.Task) error {
	r.mu.Lock()
	r.tried = append(r.tried, task.ID)
	taken := r.left > 0
	if taken {
		r.left--
	}
	r.mu.Unlock()
	if taken {
		return repository.ErrDuplicate
	}
	return r.TaskRepository.Create(ctx, task)
}

func TestCommitRefusedOnceAbandoned(t *testing.T) {
	f := newFixture(t, fixtureOption{})
	ctx := context.Background()

	receipt, err := f.tasks.AssignTask(ctx, adminActor, validAssignment())
	if err != nil {
		t.Fatalf("assign: %v", err)
	}
	id := receipt.Task.ID

	old, ok := f.tasks.lock(id)
	if !ok {
		t.Fatal("lock should be free")
	}
	snapshot := f.stored(t, id)
	snapshot.Status = domain.TaskStatusStarted

	f.tasks.Abandon(id)
	if _, err := f.tasks.Arrive(ctx, workerActor, id); !apperrors.HasCode(err, apperrors.CodeInvalidTransition) {
		t.Fatalf("guard should be handed over, got %v", err)
	}

	if err := f.tasks.commit(ctx, snapshot, old); !errors.Is(err, errSuperseded) {
		t.Fatalf("expected errSuperseded, got %v", err)
	}
	if got := f.stored(t, id).Status; got != domain.TaskStatusAssigned {
		t.Fatalf("abandoned snapshot was written: %s", got)
	}
}

func TestAbandonDuringCommitKeepsStatusMonotonic(t *testing.T) {
	var held *heldUpdates
	f := newFixture(t, fixtureOption{
		wrap: func(inner repository.TaskRepository) repository.TaskRepository {
			held = holdFirstUpdate(inner)
			return held
		},
	})
	ctx := context.Background()

	receipt, err := f.tasks.AssignTask(ctx, adminActor, validAssignment())
	if err != nil {
		t.Fatalf("assign: %v", err)
	}
	id := receipt.Task.ID

	firstDone := make(chan error, 1)
	go func() {
		_, err := f.tasks.Start(ctx, workerActor, id)
		firstDone <- err
	}()
	select {
	case <-held.entered:
	case <-time.After(2 * time.Second):
		t.Fatal("first start never reached the store")
	}

	abandoned := make(chan struct{})
	go func() {
		f.tasks.Abandon(id)
		close(abandoned)
	}()
	select {
	case <-abandoned:
		t.Fatal("Abandon returned while a commit was still being written")
	case <-time.After(50 * time.Millisecond):
	}

	close(held.release)
	if err := <-firstDone; err != nil {
		t.Fatalf("first start: %v", err)
	}
	<-abandoned

	if _, err := f.tasks.Start(ctx, workerActor, id); !apperrors.HasCode(err, apperrors.CodeInvalidTransition) {
		t.Fatalf("retry must see the committed status, got %v", err)
	}
	if _, err := f.tasks.Arrive(ctx, workerActor, id); err != nil {
		t.Fatalf("arrive: %v", err)
	}

	task := f.stored(t, id)
	if task.Status != domain.TaskStatusOnLocation {
		t.Fatalf("status = %s", task.Status)
	}
	want := []domain.TaskStatus{domain.TaskStatusAssigned, domain.TaskStatusStarted, domain.TaskStatusOnLocation}
	if len(task.StatusHistory) != len(want) {
		t.Fatalf("history = %+v", task.StatusHistory)
	}
	for i, s := range want {
		if task.StatusHistory[i].Status != s {
			t.Fatalf("history[%d] = %s, want %s", i, task.StatusHistory[i].Status, s)
		}
	}
}

func TestSubmitReissuesTakenComplaintID(t *testing.T) {
	taken := &takenIDs{left: 2}
	f := newFixture(t, fixtureOption{
		wrap: func(inner repository.TaskRepository) repository.TaskRepository {
			taken.TaskRepository = inner
			return taken
		},
	})

	receipt, err := f.tasks.SubmitComplaint(context.Background(), consumerActor, validComplaint())
	if err != nil {
		t.Fatalf("submit: %v", err)
	}
	if len(taken.tried) != 3 {
		t.Fatalf("tried ids %v", taken.tried)
	}
	id := receipt.Task.ID
	if id != taken.tried[2] || id == taken.tried[0] || !strings.HasPrefix(id, simulator.PrefixComplaint) {
		t.Fatalf("unexpected id %q after %v", id, taken.tried)
	}
	if got := f.stored(t, id); got.Status != domain.TaskStatusSubmitted {
		t.Fatalf("status = %s", got.Status)
	}
}

func TestAssignGivesUpAfterRepeatedTakenIDs(t *testing.T) {
	taken := &takenIDs{left: maxIDAttempts}
	f := newFixture(t, fixtureOption{
		wrap: func(inner repository.TaskRepository) repository.TaskRepository {
			taken.TaskRepository = inner
			return taken
		},
	})

	_, err := f.tasks.AssignTask(context.Background(), adminActor, validAssignment())
	if !apperrors.HasCode(err, apperrors.CodeConflict) {
		t.Fatalf("expected conflict, got %v", err)
	}
	if len(taken.tried) != maxIDAttempts {
		t.Fatalf("tried %d ids", len(taken.tried))
	}
	for _, id := range taken.tried {
		if !strings.HasPrefix(id, simulator.PrefixAssignment) {
			t.Fatalf("unexpected id %q", id)
		}
	}
}
