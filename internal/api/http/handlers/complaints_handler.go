package handlers

import (
	"net/http"

	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/complaint-desk/internal/api/dto"
	"github.com/spec-kit/complaint-desk/internal/directory"
	"github.com/spec-kit/complaint-desk/internal/service"
)

// ComplaintsHandler serves the consumer dashboard.
type ComplaintsHandler struct {
	tasks   *service.TaskService
	catalog *directory.Catalog
}

// NewComplaintsHandler constructs handler.
func NewComplaintsHandler(tasks *service.TaskService, catalog *directory.Catalog) *ComplaintsHandler {
	return &ComplaintsHandler{tasks: tasks, catalog: catalog}
}

// Submit handles POST /complaints.
func (h *ComplaintsHandler) Submit(c *fiber.Ctx) error {
	actor, _, err := actorFrom(c)
	if err != nil {
		return err
	}
	var req dto.SubmitComplaintRequest
	if err := c.BodyParser(&req); err != nil {
		return invalidPayload()
	}
	receipt, err := h.tasks.SubmitComplaint(c.UserContext(), actor, service.ComplaintInput{
		Type:          req.ComplaintType,
		Priority:      req.Priority,
		Description:   req.Description,
		Address:       req.Address,
		ContactNumber: req.ContactNumber,
		Email:         req.Email,
	})
	if err != nil {
		return err
	}
	return c.Status(http.StatusCreated).JSON(fiber.Map{"data": dto.ComplaintReceiptResponse{
		Complaint:      taskResponse(receipt.Task),
		ResolutionHint: receipt.ResolutionHint,
		NextSteps:      receipt.NextSteps,
	}})
}

// ListMine handles GET /complaints: the caller's own complaints.
func (h *ComplaintsHandler) ListMine(c *fiber.Ctx) error {
	_, principal, err := actorFrom(c)
	if err != nil {
		return err
	}
	email := principal.User.Email
	limit, offset := parsePage(c)
	tasks, err := h.tasks.List(c.UserContext(), service.TaskListFilter{
		Statuses: parseStatuses(c.Query("status")),
		Email:    &email,
		Limit:    limit,
		Offset:   offset,
	})
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": taskResponses(tasks)})
}

// Track handles GET /complaints/:id.
func (h *ComplaintsHandler) Track(c *fiber.Ctx) error {
	task, err := h.tasks.Track(c.UserContext(), c.Params("id"))
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": taskResponse(task)})
}

// Types handles GET /complaints/types.
func (h *ComplaintsHandler) Types(c *fiber.Ctx) error {
	types := h.catalog.Types()
	items := make([]dto.ComplaintTypeResponse, 0, len(types))
	for _, ct := range types {
		items = append(items, dto.NewComplaintTypeResponse(ct))
	}
	return c.JSON(fiber.Map{"data": items})
}
