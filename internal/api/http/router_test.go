package http

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"github.com/spec-kit/complaint-desk/internal/api/http/handlers"
	"github.com/spec-kit/complaint-desk/internal/auth"
	"github.com/spec-kit/complaint-desk/internal/config"
	"github.com/spec-kit/complaint-desk/internal/directory"
	"github.com/spec-kit/complaint-desk/internal/events"
	"github.com/spec-kit/complaint-desk/internal/notification"
	"github.com/spec-kit/complaint-desk/internal/observability"
	"github.com/spec-kit/complaint-desk/internal/persistence"
	"github.com/spec-kit/complaint-desk/internal/repository"
	"github.com/spec-kit/complaint-desk/internal/service"
	"github.com/spec-kit/complaint-desk/internal/simulator"
)

type envelope struct {
	Data  json.RawMessage `json:"data"`
	Error *struct {
		Code    string         `json:"code"`
		Message string         `json:"message"`
		Details map[string]any `json:"details"`
	} `json:"error"`
}

func newTestApp(t *testing.T) *fiber.App {
	t.Helper()
	cfg := config.Config{
		App:          config.AppConfig{Name: "complaint-desk", Version: "test"},
		Auth:         config.AuthConfig{JWTSecret: "router-secret", AccessTokenTTLMinutes: 5, BcryptCost: bcrypt.MinCost},
		Notification: config.NotificationConfig{DefaultTTLMs: 6000, DetailedTTLMs: 8000, ReceiptTTLMs: 12000},
	}
	bundle, err := directory.LoadFile("../../../configs/directory.yaml")
	if err != nil {
		t.Fatalf("load directory: %v", err)
	}

	logger := zap.NewNop()
	metrics := observability.NewMetrics()
	center := notification.NewCenter(cfg.Notification)
	t.Cleanup(center.Close)
	sim := simulator.New(simulator.Profile{}, simulator.WithMetrics(metrics))
	dispatcher := events.NewInMemoryDispatcher(logger)
	users := repository.NewMemoryUserRepository()

	authService := service.NewAuthService(cfg, service.AuthDependencies{
		UserRepo:      users,
		Remembered:    repository.NewMemoryRememberedStore(),
		Simulator:     sim,
		Notifications: center,
		Dispatcher:    dispatcher,
		Logger:        logger,
	})
	if err := authService.SeedAccounts(context.Background(), bundle.Accounts); err != nil {
		t.Fatalf("seed: %v", err)
	}
	taskService := service.NewTaskService(service.TaskDependencies{
		TaskRepo:      repository.NewMemoryTaskRepository(),
		Workers:       bundle.Workers,
		Catalog:       bundle.Catalog,
		Simulator:     sim,
		Notifications: center,
		Dispatcher:    dispatcher,
		Logger:        logger,
		Metrics:       metrics,
	})

	app := fiber.New()
	RegisterMiddlewares(app, logger, metrics, time.Second)
	RegisterRoutes(app, RouteConfig{
		Health:         handlers.NewHealthHandler(cfg.App.Name, cfg.App.Version, &persistence.Postgres{}, &persistence.SQLite{}, &persistence.Redis{}, metrics),
		Auth:           handlers.NewAuthHandler(authService),
		Complaints:     handlers.NewComplaintsHandler(taskService, bundle.Catalog),
		Tasks:          handlers.NewTasksHandler(taskService),
		Workers:        handlers.NewWorkersHandler(bundle.Workers),
		Notifications:  handlers.NewNotificationsHandler(center),
		AuthMiddleware: auth.NewAuthMiddleware(authService.TokenManager(), users),
	})
	return app
}

func call(t *testing.T, app *fiber.App, method, path, token string, body any) (int, envelope) {
	t.Helper()
	var reader io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		if err != nil {
			t.Fatalf("marshal: %v", err)
		}
		reader = bytes.NewReader(raw)
	}
	req := httptest.NewRequest(method, path, reader)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	resp, err := app.Test(req, -1)
	if err != nil {
		t.Fatalf("%s %s: %v", method, path, err)
	}
	defer resp.Body.Close()
	raw, _ := io.ReadAll(resp.Body)
	var env envelope
	if len(raw) > 0 {
		_ = json.Unmarshal(raw, &env)
	}
	return resp.StatusCode, env
}

func login(t *testing.T, app *fiber.App, role, email, password string) string {
	t.Helper()
	status, env := call(t, app, fiber.MethodPost, "/auth/login", "", map[string]any{
		"userType": role, "email": email, "password": password,
	})
	if status != fiber.StatusOK {
		t.Fatalf("login %s: status %d %+v", role, status, env.Error)
	}
	var session struct {
		Token       string `json:"token"`
		RedirectURL string `json:"redirect_url"`
	}
	if err := json.Unmarshal(env.Data, &session); err != nil {
		t.Fatalf("decode session: %v", err)
	}
	if session.RedirectURL != "/dashboard/"+role {
		t.Fatalf("unexpected redirect %q", session.RedirectURL)
	}
	return session.Token
}

func TestComplaintToCompletionOverHTTP(t *testing.T) {
	app := newTestApp(t)

	consumer := login(t, app, "consumer", "consumer@demo.com", "consumer123")
	status, env := call(t, app, fiber.MethodPost, "/complaints", consumer, map[string]any{
		"complaintType": "power-outage",
		"priority":      "high",
		"description":   "Transformer blew up near the market.",
		"address":       "Sector 21, Gandhinagar",
		"contactNumber": "9876543210",
		"email":         "consumer@demo.com",
	})
	if status != fiber.StatusCreated {
		t.Fatalf("submit: status %d %+v", status, env.Error)
	}
	var receipt struct {
		Complaint struct {
			ID     string `json:"id"`
			Status string `json:"status"`
		} `json:"complaint"`
		ResolutionHint string `json:"resolution_hint"`
	}
	if err := json.Unmarshal(env.Data, &receipt); err != nil {
		t.Fatalf("decode receipt: %v", err)
	}
	if receipt.Complaint.Status != "submitted" || receipt.ResolutionHint != "4-8 hours" {
		t.Fatalf("unexpected receipt %+v", receipt)
	}
	id := receipt.Complaint.ID

	status, env = call(t, app, fiber.MethodGet, "/notifications/current", "", nil)
	if status != fiber.StatusOK || !bytes.Contains(env.Data, []byte("Complaint Registered Successfully!")) {
		t.Fatalf("expected receipt notification, got %d %s", status, env.Data)
	}

	admin := login(t, app, "admin", "admin@demo.com", "admin123")
	status, env = call(t, app, fiber.MethodPost, "/tasks", admin, map[string]any{
		"taskId": id, "workerType": "supervisor", "workerId": "EMP003", "priority": "high",
	})
	if status != fiber.StatusOK {
		t.Fatalf("assign: status %d %+v", status, env.Error)
	}

	worker := login(t, app, "worker", "worker@demo.com", "worker123")
	status, env = call(t, app, fiber.MethodPost, "/tasks/"+id+"/complete", worker, nil)
	if status != fiber.StatusConflict || env.Error == nil || env.Error.Code != "INVALID_TRANSITION" {
		t.Fatalf("complete from assigned: status %d %+v", status, env.Error)
	}

	for _, step := range []struct {
		path     string
		progress int
	}{{"start", 20}, {"arrive", 40}, {"work", 70}, {"complete", 100}} {
		status, env = call(t, app, fiber.MethodPost, "/tasks/"+id+"/"+step.path, worker, nil)
		if status != fiber.StatusOK {
			t.Fatalf("%s: status %d %+v", step.path, status, env.Error)
		}
		var task struct {
			Progress int `json:"progress"`
		}
		_ = json.Unmarshal(env.Data, &task)
		if task.Progress != step.progress {
			t.Fatalf("%s: progress %d, want %d", step.path, task.Progress, step.progress)
		}
	}

	status, env = call(t, app, fiber.MethodGet, "/complaints/"+id, consumer, nil)
	if status != fiber.StatusOK || !bytes.Contains(env.Data, []byte(`"status":"completed"`)) {
		t.Fatalf("track: status %d %s", status, env.Data)
	}
}

func TestRoleGates(t *testing.T) {
	app := newTestApp(t)

	status, env := call(t, app, fiber.MethodGet, "/tasks", "", nil)
	if status != fiber.StatusUnauthorized || env.Error == nil || env.Error.Code != "UNAUTHORIZED" {
		t.Fatalf("anonymous: status %d %+v", status, env.Error)
	}

	consumer := login(t, app, "consumer", "consumer@demo.com", "consumer123")
	status, env = call(t, app, fiber.MethodPost, "/tasks", consumer, map[string]any{
		"workerType": "electrician", "workerId": "EMP001", "priority": "low",
	})
	if status != fiber.StatusForbidden || env.Error.Code != "FORBIDDEN" {
		t.Fatalf("consumer assigning: status %d %+v", status, env.Error)
	}

	status, _ = call(t, app, fiber.MethodGet, "/workers?category=lineman", consumer, nil)
	if status != fiber.StatusForbidden {
		t.Fatalf("consumer listing workers: status %d", status)
	}
}

func TestLoginFailureEnvelope(t *testing.T) {
	app := newTestApp(t)

	status, env := call(t, app, fiber.MethodPost, "/auth/login", "", map[string]any{
		"userType": "admin", "email": "admin@demo.com", "password": "nope-nope",
	})
	if status != fiber.StatusUnauthorized || env.Error == nil || env.Error.Code != "AUTH_FAILED" {
		t.Fatalf("status %d %+v", status, env.Error)
	}
	if env.Error.Message != "Invalid credentials. Please check your email and password." {
		t.Fatalf("unexpected message %q", env.Error.Message)
	}

	status, env = call(t, app, fiber.MethodPost, "/auth/login", "", map[string]any{"userType": "admin"})
	if status != fiber.StatusBadRequest || env.Error.Code != "VALIDATION_FAILED" {
		t.Fatalf("status %d %+v", status, env.Error)
	}
	if _, ok := env.Error.Details["fields"]; !ok {
		t.Fatalf("field errors missing: %+v", env.Error.Details)
	}
}

func TestWorkersAndCatalog(t *testing.T) {
	app := newTestApp(t)
	admin := login(t, app, "admin", "admin@demo.com", "admin123")

	status, env := call(t, app, fiber.MethodGet, "/workers?category=supervisor", admin, nil)
	if status != fiber.StatusOK {
		t.Fatalf("workers: status %d %+v", status, env.Error)
	}
	var workers []struct {
		Category string `json:"category"`
	}
	if err := json.Unmarshal(env.Data, &workers); err != nil || len(workers) == 0 {
		t.Fatalf("decode workers: %v %s", err, env.Data)
	}
	for _, w := range workers {
		if w.Category != "technician" {
			t.Fatalf("supervisor should list technicians, got %q", w.Category)
		}
	}

	status, env = call(t, app, fiber.MethodGet, "/complaints/types", "", nil)
	if status != fiber.StatusOK || !bytes.Contains(env.Data, []byte("power-outage")) {
		t.Fatalf("types: status %d %s", status, env.Data)
	}
}

func TestHealthAndMetrics(t *testing.T) {
	app := newTestApp(t)

	status, env := call(t, app, fiber.MethodGet, "/health/ready", "", nil)
	if status != fiber.StatusOK || env.Error != nil {
		t.Fatalf("ready with in-memory stores: status %d %+v", status, env.Error)
	}
	status, _ = call(t, app, fiber.MethodGet, "/metrics", "", nil)
	if status != fiber.StatusOK {
		t.Fatalf("metrics: status %d", status)
	}
}

func TestPasswordStrength(t *testing.T) {
	app := newTestApp(t)

	status, env := call(t, app, fiber.MethodPost, "/auth/password/strength", "", map[string]any{"password": "Secret#2024"})
	if status != fiber.StatusOK || !bytes.Contains(env.Data, []byte(`"level":"strong"`)) {
		t.Fatalf("status %d %s", status, env.Data)
	}
}

func TestRememberedRoundTrip(t *testing.T) {
	app := newTestApp(t)

	status, _ := call(t, app, fiber.MethodPost, "/auth/login", "", map[string]any{
		"userType": "admin", "email": "admin@demo.com", "password": "admin123", "rememberMe": true,
	})
	if status != fiber.StatusOK {
		t.Fatalf("login: %d", status)
	}
	_, env := call(t, app, fiber.MethodGet, "/auth/remembered", "", nil)
	if !bytes.Contains(env.Data, []byte(`"email":"admin@demo.com"`)) {
		t.Fatalf("expected remembered admin, got %s", env.Data)
	}
	if status, _ := call(t, app, fiber.MethodDelete, "/auth/remembered", "", nil); status != fiber.StatusNoContent {
		t.Fatalf("forget: %d", status)
	}
	_, env = call(t, app, fiber.MethodGet, "/auth/remembered", "", nil)
	if !bytes.Contains(env.Data, []byte(`"remembered":false`)) {
		t.Fatalf("expected nothing remembered, got %s", env.Data)
	}
}

func TestUnknownRouteUsesEnvelope(t *testing.T) {
	app := newTestApp(t)

	req := httptest.NewRequest(fiber.MethodGet, "/nowhere", nil)
	req.Header.Set(HeaderRequestID, "req-42")
	resp, err := app.Test(req, -1)
	if err != nil {
		t.Fatalf("request: %v", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != fiber.StatusNotFound {
		t.Fatalf("status %d", resp.StatusCode)
	}
	if got := resp.Header.Get(HeaderRequestID); got != "req-42" {
		t.Fatalf("request id not echoed: %q", got)
	}
	var env envelope
	if err := json.NewDecoder(resp.Body).Decode(&env); err != nil || env.Error == nil || env.Error.Code != "NOT_FOUND" {
		t.Fatalf("unexpected body %+v %v", env.Error, err)
	}
}
