package handlers

import (
	"net/http"
	"strings"

	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/complaint-desk/internal/api/dto"
	"github.com/spec-kit/complaint-desk/internal/service"
)

// TasksHandler serves the admin and worker dashboards.
type TasksHandler struct {
	tasks *service.TaskService
}

// NewTasksHandler constructs handler.
func NewTasksHandler(tasks *service.TaskService) *TasksHandler {
	return &TasksHandler{tasks: tasks}
}

// Assign handles POST /tasks.
func (h *TasksHandler) Assign(c *fiber.Ctx) error {
	actor, _, err := actorFrom(c)
	if err != nil {
		return err
	}
	var req dto.AssignTaskRequest
	if err := c.BodyParser(&req); err != nil {
		return invalidPayload()
	}
	receipt, err := h.tasks.AssignTask(c.UserContext(), actor, service.AssignInput{
		TaskID:      req.TaskID,
		WorkerType:  req.WorkerType,
		WorkerID:    req.WorkerID,
		Priority:    req.Priority,
		Type:        req.Type,
		Description: req.Description,
		Address:     req.Address,
	})
	if err != nil {
		return err
	}
	status := http.StatusOK
	if strings.TrimSpace(req.TaskID) == "" {
		status = http.StatusCreated
	}
	return c.Status(status).JSON(fiber.Map{"data": dto.AssignmentResponse{
		AssignmentID: receipt.AssignmentID,
		Task:         taskResponse(receipt.Task),
		Worker:       dto.NewWorkerResponse(receipt.Worker),
	}})
}

// List handles GET /tasks?status=&worker_id=.
func (h *TasksHandler) List(c *fiber.Ctx) error {
	filter := service.TaskListFilter{Statuses: parseStatuses(c.Query("status"))}
	if workerID := strings.TrimSpace(c.Query("worker_id")); workerID != "" {
		filter.WorkerID = &workerID
	}
	filter.Limit, filter.Offset = parsePage(c)
	tasks, err := h.tasks.List(c.UserContext(), filter)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": taskResponses(tasks)})
}

// Get handles GET /tasks/:id.
func (h *TasksHandler) Get(c *fiber.Ctx) error {
	task, err := h.tasks.Get(c.UserContext(), c.Params("id"))
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": taskResponse(task)})
}

// Advance returns a handler applying trigger to the task in the path.
func (h *TasksHandler) Advance(trigger service.Trigger) fiber.Handler {
	return func(c *fiber.Ctx) error {
		actor, _, err := actorFrom(c)
		if err != nil {
			return err
		}
		task, err := h.tasks.Advance(c.UserContext(), actor, c.Params("id"), trigger)
		if err != nil {
			return err
		}
		return c.JSON(fiber.Map{"data": taskResponse(task)})
	}
}

// Abandon handles DELETE /tasks/:id/pending.
func (h *TasksHandler) Abandon(c *fiber.Ctx) error {
	h.tasks.Abandon(c.Params("id"))
	return c.SendStatus(http.StatusNoContent)
}
