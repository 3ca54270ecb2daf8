package service

import (
	"context"
	"errors"
	"strings"
	"sync"
	"time"

	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"

	"github.com/spec-kit/complaint-desk/internal/directory"
	"github.com/spec-kit/complaint-desk/internal/domain"
	"github.com/spec-kit/complaint-desk/internal/events"
	"github.com/spec-kit/complaint-desk/internal/notification"
	"github.com/spec-kit/complaint-desk/internal/observability"
	"github.com/spec-kit/complaint-desk/internal/repository"
	"github.com/spec-kit/complaint-desk/internal/simulator"
	"github.com/spec-kit/complaint-desk/internal/validation"
	apperrors "github.com/spec-kit/complaint-desk/pkg/util"
)

// Slot for creating a brand-new assignment from the admin dashboard.
const slotNewAssignment = "assign-task"

// TaskService is the task/complaint lifecycle state machine. Tasks change
// only through its triggers; each trigger is persisted through the
// simulator and reported through the notification center.
type TaskService struct {
	tasks      repository.TaskRepository
	workers    *directory.Directory
	catalog    *directory.Catalog
	sim        *simulator.Simulator
	dispatcher events.Dispatcher
	report     reporter
	logger     *zap.Logger
	metrics    *observability.Metrics
	receiptTTL time.Duration

	mu       sync.Mutex
	inFlight map[string]uint64
	nextLock uint64

	// commitMu orders store writes against Abandon.
	commitMu sync.Mutex
}

// maxIDAttempts bounds id reissues on a duplicate key.
const maxIDAttempts = 5

// TaskDependencies bundles collaborators for the task service.
type TaskDependencies struct {
	TaskRepo      repository.TaskRepository
	Workers       *directory.Directory
	Catalog       *directory.Catalog
	Simulator     *simulator.Simulator
	Notifications *notification.Center
	Dispatcher    events.Dispatcher
	Logger        *zap.Logger
	Metrics       *observability.Metrics
	ReceiptTTL    time.Duration
}

// ComplaintInput is the consumer complaint form.
type ComplaintInput struct {
	Type          string
	Priority      string
	Description   string
	Address       string
	ContactNumber string
	Email         string
}

// ComplaintReceipt is what the consumer sees after submitting.
type ComplaintReceipt struct {
	Task           *domain.Task
	ResolutionHint string
	NextSteps      []string
}

// AssignInput is the admin assignment form. An empty TaskID creates a new
// task; otherwise the submitted complaint with that id is assigned.
type AssignInput struct {
	TaskID      string
	WorkerType  string
	WorkerID    string
	Priority    string
	Type        string
	Description string
	Address     string
}

// AssignmentReceipt reports a committed assignment.
type AssignmentReceipt struct {
	AssignmentID string
	Task         *domain.Task
	Worker       domain.Worker
}

// TaskListFilter narrows ListTasks.
type TaskListFilter struct {
	Statuses []domain.TaskStatus
	WorkerID *string
	Email    *string
	Limit    int
	Offset   int
}

// NextSteps are promised on every complaint receipt.
var complaintNextSteps = []string{
	"You will receive SMS and email updates",
	"Technical team will be assigned shortly",
	"Track progress using Complaint ID",
}

// NewTaskService constructs the service.
func NewTaskService(deps TaskDependencies) *TaskService {
	logger := deps.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	return &TaskService{
		tasks:      deps.TaskRepo,
		workers:    deps.Workers,
		catalog:    deps.Catalog,
		sim:        deps.Simulator,
		dispatcher: deps.Dispatcher,
		report:     reporter{notices: deps.Notifications, logger: logger},
		logger:     logger,
		metrics:    deps.Metrics,
		receiptTTL: deps.ReceiptTTL,
		inFlight:   make(map[string]uint64),
	}
}

// SubmitComplaint registers a consumer complaint in the submitted state.
func (s *TaskService) SubmitComplaint(ctx context.Context, actor events.Actor, in ComplaintInput) (*ComplaintReceipt, error) {
	report := validation.ComplaintForm.Validate(map[string]string{
		validation.FieldComplaintType: in.Type,
		validation.FieldPriority:      in.Priority,
		validation.FieldDescription:   in.Description,
		validation.FieldAddress:       in.Address,
		validation.FieldContactNumber: in.ContactNumber,
		validation.FieldEmail:         in.Email,
	})
	if err := report.Err(); err != nil {
		return nil, s.report.fail(err)
	}
	if _, ok := s.catalog.Type(in.Type); !ok {
		return nil, s.report.fail(apperrors.NewValidationError("Please select a valid complaint type",
			map[string]any{"fields": map[string]any{validation.FieldComplaintType: "unknown complaint type"}}))
	}
	phone, ok := validation.NormalizePhone(in.ContactNumber)
	if !ok {
		return nil, s.report.fail(apperrors.NewValidationError("Please enter a valid 10-digit mobile number",
			map[string]any{"fields": map[string]any{validation.FieldContactNumber: "invalid phone number"}}))
	}
	priority := domain.TaskPriority(in.Priority)
	email := strings.ToLower(strings.TrimSpace(in.Email))

	slot := "complaint:" + email
	res, err := s.sim.Run(ctx, simulator.Request{
		Slot:      slot,
		Operation: simulator.OpSubmitComplaint,
		Payload:   map[string]any{"type": in.Type, "priority": in.Priority},
	})
	if err != nil {
		return nil, s.report.fail(simulatorError(simulator.OpSubmitComplaint, slot, err))
	}

	task := &domain.Task{
		ID:            res.ID,
		Type:          in.Type,
		Priority:      priority,
		Status:        domain.TaskStatusSubmitted,
		Description:   strings.TrimSpace(in.Description),
		Address:       strings.TrimSpace(in.Address),
		ContactNumber: phone,
		Email:         email,
		CreatedAt:     res.Timestamp,
		StatusHistory: []domain.StatusEntry{{Status: domain.TaskStatusSubmitted, At: res.Timestamp}},
	}
	if err := s.create(ctx, task, simulator.PrefixComplaint); err != nil {
		return nil, s.report.fail(storeError(err))
	}

	hint, _ := s.catalog.ResolutionHint(priority)
	s.report.success("Complaint Registered Successfully!",
		notification.WithTTL(s.receiptTTL),
		notification.WithDetails(
			domain.NotificationDetail{Label: "Complaint ID", Value: task.ID},
			domain.NotificationDetail{Label: "Registration Time", Value: task.CreatedAt.Format(detailTimeLayout)},
			domain.NotificationDetail{Label: "Priority Level", Value: strings.ToUpper(string(priority))},
			domain.NotificationDetail{Label: "Expected Resolution", Value: hint},
		))
	s.logger.Info("complaint submitted",
		zap.String("task_id", task.ID),
		zap.String("type", task.Type),
		zap.String("priority", string(task.Priority)))
	s.publishEvent(ctx, events.Event{
		Type:   events.EventComplaintSubmitted,
		TaskID: task.ID,
		Actor:  actor,
		Payload: events.ComplaintSubmittedPayload{
			Type:           task.Type,
			Priority:       task.Priority,
			Email:          task.Email,
			ContactNumber:  task.ContactNumber,
			ResolutionHint: hint,
		},
	})
	return &ComplaintReceipt{
		Task:           task,
		ResolutionHint: hint,
		NextSteps:      append([]string(nil), complaintNextSteps...),
	}, nil
}

// AssignTask hands a task to a field worker. New tasks start at assigned;
// an existing complaint must still be submitted.
func (s *TaskService) AssignTask(ctx context.Context, actor events.Actor, in AssignInput) (*AssignmentReceipt, error) {
	report := validation.AssignmentForm.Validate(map[string]string{
		validation.FieldWorkerType: in.WorkerType,
		validation.FieldWorkerID:   in.WorkerID,
		validation.FieldPriority:   in.Priority,
	})
	if err := report.Err(); err != nil {
		return nil, s.report.fail(err)
	}
	worker, ok := s.workers.FindByID(in.WorkerID)
	if !ok {
		s.metrics.RecordTransition(string(TriggerAssign), "worker_not_found")
		return nil, s.report.fail(apperrors.NewWorkerNotFound(in.WorkerID))
	}
	category, ok := domain.ParseWorkerCategory(in.WorkerType)
	if !ok || category != worker.Category {
		return nil, s.report.fail(apperrors.NewValidationError("Selected worker does not belong to the chosen worker type",
			map[string]any{"fields": map[string]any{validation.FieldWorkerType: "category mismatch"}}))
	}
	priority := domain.TaskPriority(in.Priority)

	if strings.TrimSpace(in.TaskID) == "" {
		return s.assignNew(ctx, actor, in, worker, priority)
	}

	var assignmentID string
	task, err := s.transition(ctx, actor, in.TaskID, TriggerAssign, simulator.OpAssignTask,
		func(t *domain.Task) {
			workerID := worker.ID
			t.AssignedWorkerID = &workerID
			t.Priority = priority
		},
		func(res *simulator.Result) {
			assignmentID = res.ID
		})
	if err != nil {
		return nil, err
	}
	s.announceAssignment(ctx, actor, assignmentID, task, worker)
	return &AssignmentReceipt{AssignmentID: assignmentID, Task: task, Worker: worker}, nil
}

func (s *TaskService) assignNew(ctx context.Context, actor events.Actor, in AssignInput, worker domain.Worker, priority domain.TaskPriority) (*AssignmentReceipt, error) {
	res, err := s.sim.Run(ctx, simulator.Request{
		Slot:      slotNewAssignment,
		Operation: simulator.OpAssignTask,
		Payload:   map[string]any{"worker_id": worker.ID, "priority": string(priority)},
	})
	if err != nil {
		s.metrics.RecordTransition(string(TriggerAssign), "failed")
		return nil, s.report.fail(simulatorError(simulator.OpAssignTask, slotNewAssignment, err))
	}

	workerID := worker.ID
	taskType := strings.TrimSpace(in.Type)
	if taskType == "" {
		taskType = "field-task"
	}
	task := &domain.Task{
		ID:               res.ID,
		Type:             taskType,
		Priority:         priority,
		Status:           domain.TaskStatusAssigned,
		AssignedWorkerID: &workerID,
		Description:      strings.TrimSpace(in.Description),
		Address:          strings.TrimSpace(in.Address),
		CreatedAt:        res.Timestamp,
		StatusHistory:    []domain.StatusEntry{{Status: domain.TaskStatusAssigned, At: res.Timestamp}},
	}
	if err := s.create(ctx, task, simulator.PrefixAssignment); err != nil {
		return nil, s.report.fail(storeError(err))
	}
	s.metrics.RecordTransition(string(TriggerAssign), "committed")
	s.announceAssignment(ctx, actor, task.ID, task, worker)
	return &AssignmentReceipt{AssignmentID: task.ID, Task: task, Worker: worker}, nil
}

func (s *TaskService) announceAssignment(ctx context.Context, actor events.Actor, assignmentID string, task *domain.Task, worker domain.Worker) {
	s.report.success("Task Successfully Assigned!",
		notification.WithDetails(
			domain.NotificationDetail{Label: "Assignment ID", Value: assignmentID},
			domain.NotificationDetail{Label: "Worker", Value: worker.Name + " (" + worker.ID + ")"},
			domain.NotificationDetail{Label: "License", Value: worker.LicenseNumber},
			domain.NotificationDetail{Label: "Priority", Value: strings.ToUpper(string(task.Priority))},
			domain.NotificationDetail{Label: "Assigned at", Value: lastChange(task).Format(detailTimeLayout)},
		))
	s.logger.Info("task assigned",
		zap.String("task_id", task.ID),
		zap.String("assignment_id", assignmentID),
		zap.String("worker_id", worker.ID))
	s.publishEvent(ctx, events.Event{
		Type:   events.EventTaskAssigned,
		TaskID: task.ID,
		Actor:  actor,
		Payload: events.TaskAssignedPayload{
			WorkerID:   worker.ID,
			WorkerName: worker.Name,
			Priority:   task.Priority,
			Email:      task.Email,
		},
	})
}

// Start moves an assigned task to started.
func (s *TaskService) Start(ctx context.Context, actor events.Actor, taskID string) (*domain.Task, error) {
	return s.advance(ctx, actor, taskID, TriggerStart)
}

// Arrive records arrival at the service location.
func (s *TaskService) Arrive(ctx context.Context, actor events.Actor, taskID string) (*domain.Task, error) {
	return s.advance(ctx, actor, taskID, TriggerArrive)
}

// BeginWork records that work has begun on location.
func (s *TaskService) BeginWork(ctx context.Context, actor events.Actor, taskID string) (*domain.Task, error) {
	return s.advance(ctx, actor, taskID, TriggerBeginWork)
}

// Complete closes the task.
func (s *TaskService) Complete(ctx context.Context, actor events.Actor, taskID string) (*domain.Task, error) {
	return s.advance(ctx, actor, taskID, TriggerComplete)
}

// Advance applies a worker trigger by name.
func (s *TaskService) Advance(ctx context.Context, actor events.Actor, taskID string, trigger Trigger) (*domain.Task, error) {
	if trigger == TriggerAssign {
		return nil, s.report.fail(apperrors.NewValidationError("use the assignment form to assign a task", nil))
	}
	if _, ok := transitions[trigger]; !ok {
		return nil, s.report.fail(apperrors.NewValidationError("unknown task action", map[string]any{"trigger": string(trigger)}))
	}
	return s.advance(ctx, actor, taskID, trigger)
}

func (s *TaskService) advance(ctx context.Context, actor events.Actor, taskID string, trigger Trigger) (*domain.Task, error) {
	task, err := s.transition(ctx, actor, taskID, trigger, simulator.OpAdvanceTask, nil, nil)
	if err != nil {
		return nil, err
	}
	s.report.success(successMessages[trigger])
	return task, nil
}

// Abandon gives up on whatever transition is pending for taskID. Its
// result is discarded when it settles and a new trigger may start at once.
// A commit already being written finishes first.
func (s *TaskService) Abandon(taskID string) {
	s.commitMu.Lock()
	defer s.commitMu.Unlock()
	s.mu.Lock()
	delete(s.inFlight, taskID)
	s.mu.Unlock()
	s.sim.Invalidate(taskSlot(taskID))
}

// transition runs one lifecycle step. prepare edits a private copy before
// the simulated call; nothing is stored unless the call succeeds.
func (s *TaskService) transition(
	ctx context.Context,
	actor events.Actor,
	taskID string,
	trigger Trigger,
	op simulator.Operation,
	prepare func(*domain.Task),
	settled func(*simulator.Result),
) (*domain.Task, error) {
	lock, ok := s.lock(taskID)
	if !ok {
		s.metrics.RecordTransition(string(trigger), "in_progress")
		return nil, s.report.fail(apperrors.NewTransitionInProgress(taskID))
	}
	defer s.unlock(taskID, lock)

	task, err := s.tasks.GetByID(ctx, taskID)
	if err != nil {
		return nil, s.report.fail(storeError(err))
	}
	rule := transitions[trigger]
	if task.Status != rule.from {
		s.metrics.RecordTransition(string(trigger), "invalid")
		return nil, s.report.fail(apperrors.NewInvalidTransition(string(task.Status), string(trigger)))
	}
	if prepare != nil {
		prepare(task)
	}

	slot := taskSlot(taskID)
	res, err := s.sim.Run(ctx, simulator.Request{
		Slot:      slot,
		Operation: op,
		Payload:   map[string]any{"task_id": taskID, "trigger": string(trigger)},
	})
	if errors.Is(err, simulator.ErrStaleResult) {
		return nil, s.superseded(trigger, slot)
	}
	if err != nil {
		s.metrics.RecordTransition(string(trigger), "failed")
		return nil, s.report.fail(simulatorError(op, slot, err))
	}

	oldStatus := task.Status
	at := res.Timestamp
	if n := len(task.StatusHistory); n > 0 && at.Before(task.StatusHistory[n-1].At) {
		at = task.StatusHistory[n-1].At
	}
	task.Status = rule.to
	task.StatusHistory = append(task.StatusHistory, domain.StatusEntry{Status: rule.to, At: at})
	if err := s.commit(ctx, task, lock); err != nil {
		if errors.Is(err, errSuperseded) {
			return nil, s.superseded(trigger, slot)
		}
		return nil, s.report.fail(storeError(err))
	}
	if settled != nil {
		settled(res)
	}

	s.metrics.RecordTransition(string(trigger), "committed")
	s.logger.Info("task transitioned",
		zap.String("task_id", task.ID),
		zap.String("trigger", string(trigger)),
		zap.String("from", string(oldStatus)),
		zap.String("to", string(task.Status)))
	s.publishEvent(ctx, events.Event{
		Type:   events.EventTaskStatusChanged,
		TaskID: task.ID,
		Actor:  actor,
		Payload: events.TaskStatusChangedPayload{
			OldStatus: oldStatus,
			NewStatus: task.Status,
			Progress:  CompletionPercent(task.Status),
			Email:     task.Email,
		},
	})
	return task, nil
}

// Get returns a task by id.
func (s *TaskService) Get(ctx context.Context, taskID string) (*domain.Task, error) {
	task, err := s.tasks.GetByID(ctx, taskID)
	if err != nil {
		return nil, storeError(err)
	}
	return task, nil
}

// Track looks up a complaint by its public id, rejecting malformed ids
// before touching the store.
func (s *TaskService) Track(ctx context.Context, complaintID string) (*domain.Task, error) {
	complaintID = strings.ToUpper(strings.TrimSpace(complaintID))
	report := validation.TrackForm.Validate(map[string]string{validation.FieldComplaintID: complaintID})
	if err := report.Err(); err != nil {
		return nil, s.report.fail(err)
	}
	task, err := s.tasks.GetByID(ctx, complaintID)
	if err != nil {
		return nil, s.report.fail(storeError(err))
	}
	s.report.info("Tracking complaint " + task.ID + "...")
	return task, nil
}

// List returns tasks matching filter, newest first.
func (s *TaskService) List(ctx context.Context, filter TaskListFilter) ([]domain.Task, error) {
	for _, status := range filter.Statuses {
		if !status.Valid() {
			return nil, apperrors.NewValidationError("unknown status", map[string]any{"status": string(status)})
		}
	}
	return s.tasks.List(ctx, repository.TaskFilter{
		Statuses:         filter.Statuses,
		AssignedWorkerID: filter.WorkerID,
		Email:            filter.Email,
		Limit:            filter.Limit,
		Offset:           filter.Offset,
	})
}

// create stores a new task, drawing a fresh id when the issued one is
// already taken by an earlier run sharing the store.
func (s *TaskService) create(ctx context.Context, task *domain.Task, prefix string) error {
	var err error
	for attempt := 0; attempt < maxIDAttempts; attempt++ {
		if attempt > 0 {
			taken := task.ID
			task.ID = s.sim.IDs().Next(prefix)
			s.logger.Warn("task id already stored; reissuing",
				zap.String("taken", taken),
				zap.String("task_id", task.ID))
		}
		err = s.tasks.Create(ctx, task)
		if !errors.Is(err, repository.ErrDuplicate) {
			return err
		}
	}
	return err
}

// commit stores task only while lock still owns it. Abandon waits for a
// commit in progress, so a handed-over task never sees an older snapshot.
func (s *TaskService) commit(ctx context.Context, task *domain.Task, lock uint64) error {
	s.commitMu.Lock()
	defer s.commitMu.Unlock()
	if !s.holds(task.ID, lock) {
		return errSuperseded
	}
	return s.tasks.Update(ctx, task)
}

// superseded reports an abandoned call to its caller only. The newer call
// owns the notification slot.
func (s *TaskService) superseded(trigger Trigger, slot string) error {
	s.metrics.RecordTransition(string(trigger), "superseded")
	s.logger.Debug("discarded superseded transition",
		zap.String("slot", slot),
		zap.String("trigger", string(trigger)))
	return supersededError(slot)
}

func (s *TaskService) holds(taskID string, lock uint64) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.inFlight[taskID] == lock
}

func (s *TaskService) lock(taskID string) (uint64, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, busy := s.inFlight[taskID]; busy {
		return 0, false
	}
	s.nextLock++
	s.inFlight[taskID] = s.nextLock
	return s.nextLock, true
}

// unlock releases taskID unless Abandon already handed it to a newer call.
func (s *TaskService) unlock(taskID string, lock uint64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.inFlight[taskID] == lock {
		delete(s.inFlight, taskID)
	}
}

func (s *TaskService) publishEvent(ctx context.Context, event events.Event) {
	if s.dispatcher == nil {
		return
	}
	if err := s.dispatcher.Publish(ctx, event); err != nil {
		s.logger.Warn("publish event", zap.String("event_type", string(event.Type)), zap.Error(err))
	}
}

func lastChange(task *domain.Task) time.Time {
	if n := len(task.StatusHistory); n > 0 {
		return task.StatusHistory[n-1].At
	}
	return task.CreatedAt
}

func taskSlot(taskID string) string {
	return "task:" + taskID
}

func storeError(err error) error {
	if errors.Is(err, pgx.ErrNoRows) {
		return apperrors.NewNotFound("task", nil)
	}
	if errors.Is(err, repository.ErrDuplicate) {
		return apperrors.NewConflict("task already exists", nil)
	}
	return apperrors.NewInternalError(err)
}
