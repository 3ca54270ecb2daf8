package handlers

import (
	"strconv"
	"strings"

	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/complaint-desk/internal/api/dto"
	"github.com/spec-kit/complaint-desk/internal/auth"
	"github.com/spec-kit/complaint-desk/internal/domain"
	"github.com/spec-kit/complaint-desk/internal/events"
	"github.com/spec-kit/complaint-desk/internal/service"
	apperrors "github.com/spec-kit/complaint-desk/pkg/util"
)

func actorFrom(c *fiber.Ctx) (events.Actor, *auth.Principal, error) {
	principal, ok := auth.PrincipalFromContext(c)
	if !ok || principal.User == nil {
		return events.Actor{}, nil, apperrors.NewUnauthorized("authentication required")
	}
	return events.Actor{Role: principal.User.Role, UserID: principal.User.ID}, principal, nil
}

func taskResponse(t *domain.Task) dto.TaskResponse {
	next, _ := service.NextTrigger(t.Status)
	return dto.NewTaskResponse(t, service.CompletionPercent(t.Status), string(next))
}

func taskResponses(tasks []domain.Task) []dto.TaskResponse {
	items := make([]dto.TaskResponse, 0, len(tasks))
	for i := range tasks {
		items = append(items, taskResponse(&tasks[i]))
	}
	return items
}

func parseStatuses(raw string) []domain.TaskStatus {
	if raw == "" {
		return nil
	}
	var out []domain.TaskStatus
	for _, part := range strings.Split(raw, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, domain.TaskStatus(part))
		}
	}
	return out
}

func parsePage(c *fiber.Ctx) (limit, offset int) {
	page := parseInt(c.Query("page"), 1)
	pageSize := parseInt(c.Query("page_size"), 20)
	return pageSize, (page - 1) * pageSize
}

func parseInt(val string, def int) int {
	if val == "" {
		return def
	}
	parsed, err := strconv.Atoi(val)
	if err != nil || parsed <= 0 {
		return def
	}
	return parsed
}

func invalidPayload() error {
	return apperrors.NewValidationError("invalid payload", nil)
}
