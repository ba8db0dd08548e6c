package handlers

import (
	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/task-tracker/internal/api/dto"
	"github.com/spec-kit/task-tracker/internal/service"
	apperrors "github.com/spec-kit/task-tracker/pkg/util/errorutil"
)

// AIHandler exposes best-effort advisory endpoints. Provider failures degrade
// to fallback answers; only authentication and storage errors become error responses.
type AIHandler struct {
	advisory *service.AdvisoryService
}

// NewAIHandler constructs handler.
func NewAIHandler(advisory *service.AdvisoryService) *AIHandler {
	return &AIHandler{advisory: advisory}
}

// ParseTask POST /api/ai/parse-task.
func (h *AIHandler) ParseTask(c *fiber.Ctx) error {
	if _, err := requirePrincipal(c); err != nil {
		return err
	}
	var req dto.ParseTaskRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	if err := dto.Validate(&req); err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": h.advisory.ParseTask(c.UserContext(), req.Text)})
}

// Suggestions GET /api/ai/suggestions.
func (h *AIHandler) Suggestions(c *fiber.Ctx) error {
	principal, err := requirePrincipal(c)
	if err != nil {
		return err
	}
	suggestions, err := h.advisory.Suggestions(c.UserContext(), principal)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": suggestions})
}

// RecommendPriority GET /api/ai/recommend-priority?title=&description=.
func (h *AIHandler) RecommendPriority(c *fiber.Ctx) error {
	if _, err := requirePrincipal(c); err != nil {
		return err
	}
	var q dto.RecommendPriorityQuery
	if err := c.QueryParser(&q); err != nil {
		return apperrors.NewValidationError("invalid query", nil)
	}
	if err := dto.Validate(&q); err != nil {
		return err
	}
	priority := h.advisory.RecommendPriority(c.UserContext(), q.Title, q.Description)
	return c.JSON(fiber.Map{"data": dto.PriorityRecommendation{Priority: string(priority)}})
}

// ProductivityInsight GET /api/ai/productivity-insight.
func (h *AIHandler) ProductivityInsight(c *fiber.Ctx) error {
	principal, err := requirePrincipal(c)
	if err != nil {
		return err
	}
	insight, err := h.advisory.ProductivityInsight(c.UserContext(), principal)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": dto.InsightResponse{Insight: insight}})
}

// Status GET /api/ai/status.
func (h *AIHandler) Status(c *fiber.Ctx) error {
	if _, err := requirePrincipal(c); err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": h.advisory.Status(c.UserContext())})
}
