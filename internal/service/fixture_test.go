package service

import (
	"context"
	"sync"
	"testing"
	"time"

	"golang.org/x/crypto/bcrypt"

	"github.com/spec-kit/complaint-desk/internal/config"
	"github.com/spec-kit/complaint-desk/internal/directory"
	"github.com/spec-kit/complaint-desk/internal/domain"
	"github.com/spec-kit/complaint-desk/internal/events"
	"github.com/spec-kit/complaint-desk/internal/notification"
	"github.com/spec-kit/complaint-desk/internal/observability"
	"github.com/spec-kit/complaint-desk/internal/repository"
	"github.com/spec-kit/complaint-desk/internal/simulator"
)

type fixture struct {
	tasks      *TaskService
	auth       *AuthService
	taskRepo   repository.TaskRepository
	users      repository.UserRepository
	remembered repository.RememberedStore
	sim        *simulator.Simulator
	center     *notification.Center
	metrics    *observability.Metrics

	mu        sync.Mutex
	published []events.Event
}

type fixtureOption struct {
	profile simulator.Profile
	sleeper simulator.Sleeper
	random  func() float64
	// wrap decorates the task store the service sees; f.taskRepo stays the
	// underlying memory store.
	wrap func(repository.TaskRepository) repository.TaskRepository
}

func instant(ctx context.Context, _ time.Duration) error { return ctx.Err() }

func testBundle(t *testing.T) *directory.Bundle {
	t.Helper()
	b, err := directory.Source{
		Workers: []directory.WorkerEntry{
			{ID: "EMP001", Name: "Amit Kumar Sharma", License: "EL-2024-001", Category: "electrician", ExperienceYears: 8},
			{ID: "EMP003", Name: "Sunil Kumar", License: "TS-2024-003", Category: "supervisor", ExperienceYears: 15},
		},
		ComplaintTypes: []directory.ComplaintEntry{
			{ID: "power-outage", Label: "Power Outage"},
			{ID: "billing-issue", Label: "Billing Issue"},
		},
		ResolutionHints: map[string]string{"high": "4-8 hours", "medium": "24-48 hours", "low": "48-72 hours"},
		Accounts: []directory.Account{
			{Role: "admin", Email: "admin@demo.com", Password: "admin123", Name: "Demo Admin"},
			{Role: "consumer", Email: "consumer@demo.com", Password: "consumer123", Name: "Demo Consumer"},
		},
	}.Build()
	if err != nil {
		t.Fatalf("build directory: %v", err)
	}
	return b
}

func newFixture(t *testing.T, opt fixtureOption) *fixture {
	t.Helper()
	if opt.profile == nil {
		opt.profile = simulator.Profile{}
	}
	if opt.sleeper == nil {
		opt.sleeper = instant
	}
	if opt.random == nil {
		opt.random = func() float64 { return 0.99 }
	}

	cfg := config.Config{
		Auth:         config.AuthConfig{JWTSecret: "test-secret", AccessTokenTTLMinutes: 5, BcryptCost: bcrypt.MinCost},
		Notification: config.NotificationConfig{DefaultTTLMs: 6000, DetailedTTLMs: 8000, ReceiptTTLMs: 12000},
	}
	f := &fixture{
		taskRepo:   repository.NewMemoryTaskRepository(),
		users:      repository.NewMemoryUserRepository(),
		remembered: repository.NewMemoryRememberedStore(),
		center:     notification.NewCenter(cfg.Notification),
		metrics:    observability.NewMetrics(),
	}
	t.Cleanup(f.center.Close)

	f.sim = simulator.New(opt.profile,
		simulator.WithSleeper(opt.sleeper),
		simulator.WithRandom(opt.random),
		simulator.WithMetrics(f.metrics))

	dispatcher := events.NewInMemoryDispatcher(nil)
	for _, et := range []events.EventType{
		events.EventComplaintSubmitted, events.EventTaskAssigned, events.EventTaskStatusChanged,
		events.EventUserSignedUp, events.EventPasswordReset,
	} {
		dispatcher.Subscribe(et, func(_ context.Context, e events.Event) error {
			f.mu.Lock()
			f.published = append(f.published, e)
			f.mu.Unlock()
			return nil
		})
	}

	taskRepo := f.taskRepo
	if opt.wrap != nil {
		taskRepo = opt.wrap(taskRepo)
	}
	bundle := testBundle(t)
	f.tasks = NewTaskService(TaskDependencies{
		TaskRepo:      taskRepo,
		Workers:       bundle.Workers,
		Catalog:       bundle.Catalog,
		Simulator:     f.sim,
		Notifications: f.center,
		Dispatcher:    dispatcher,
		Metrics:       f.metrics,
		ReceiptTTL:    cfg.Notification.ReceiptTTL(),
	})
	f.auth = NewAuthService(cfg, AuthDependencies{
		UserRepo:      f.users,
		Remembered:    f.remembered,
		Simulator:     f.sim,
		Notifications: f.center,
		Dispatcher:    dispatcher,
	})
	if err := f.auth.SeedAccounts(context.Background(), bundle.Accounts); err != nil {
		t.Fatalf("seed accounts: %v", err)
	}
	return f
}

func (f *fixture) current(t *testing.T) domain.Notification {
	t.Helper()
	n, ok := f.center.Current()
	if !ok {
		t.Fatal("expected an active notification")
	}
	return n
}

func (f *fixture) eventsOf(et events.EventType) []events.Event {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []events.Event
	for _, e := range f.published {
		if e.Type == et {
			out = append(out, e)
		}
	}
	return out
}

// gate blocks every simulated delay until released.
type gate struct {
	entered chan struct{}
	release chan struct{}
}

func newGate() *gate {
	return &gate{entered: make(chan struct{}, 8), release: make(chan struct{})}
}

func (g *gate) sleep(ctx context.Context, _ time.Duration) error {
	g.entered <- struct{}{}
	select {
	case <-g.release:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (g *gate) waitEntered(t *testing.T) {
	t.Helper()
	select {
	case <-g.entered:
	case <-time.After(2 * time.Second):
		t.Fatal("simulated call never started")
	}
}

func (f *fixture) stored(t *testing.T, id string) *domain.Task {
	t.Helper()
	task, err := f.taskRepo.GetByID(context.Background(), id)
	if err != nil {
		t.Fatalf("load %s: %v", id, err)
	}
	return task
}

var (
	adminActor    = events.Actor{Role: domain.RoleAdmin, UserID: "USR1"}
	workerActor   = events.Actor{Role: domain.RoleWorker, UserID: "USR2"}
	consumerActor = events.Actor{Role: domain.RoleConsumer, UserID: "USR3"}
)

func validComplaint() ComplaintInput {
	return ComplaintInput{
		Type:          "power-outage",
		Priority:      "high",
		Description:   "No power in the whole street since 6 AM.",
		Address:       "12 MG Road, Ahmedabad",
		ContactNumber: "98765 43210",
		Email:         "Consumer@Demo.com",
	}
}

func validAssignment() AssignInput {
	return AssignInput{WorkerType: "electrician", WorkerID: "EMP001", Priority: "medium", Type: "line-repair"}
}
