package handlers

import (
	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/complaint-desk/internal/api/dto"
	"github.com/spec-kit/complaint-desk/internal/directory"
	"github.com/spec-kit/complaint-desk/internal/domain"
	apperrors "github.com/spec-kit/complaint-desk/pkg/util"
)

// WorkersHandler lists the worker directory for the assignment form.
type WorkersHandler struct {
	workers *directory.Directory
}

// NewWorkersHandler constructs handler.
func NewWorkersHandler(workers *directory.Directory) *WorkersHandler {
	return &WorkersHandler{workers: workers}
}

// List handles GET /workers?category=.
func (h *WorkersHandler) List(c *fiber.Ctx) error {
	workers := h.workers.All()
	if label := c.Query("category"); label != "" {
		category, ok := domain.ParseWorkerCategory(label)
		if !ok {
			return apperrors.NewValidationError("unknown worker category", map[string]any{"category": label})
		}
		workers = h.workers.ListByCategory(category)
	}
	items := make([]dto.WorkerResponse, 0, len(workers))
	for _, w := range workers {
		items = append(items, dto.NewWorkerResponse(w))
	}
	return c.JSON(fiber.Map{"data": items})
}
