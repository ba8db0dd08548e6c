package handlers

import (
	"net/http"

	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/task-tracker/internal/api/dto"
	"github.com/spec-kit/task-tracker/internal/auth"
	"github.com/spec-kit/task-tracker/internal/domain"
	"github.com/spec-kit/task-tracker/internal/service"
	apperrors "github.com/spec-kit/task-tracker/pkg/util/errorutil"
)

// TasksHandler serves the caller's own tasks.
type TasksHandler struct {
	service *service.TaskService
}

// NewTasksHandler constructs handler.
func NewTasksHandler(taskService *service.TaskService) *TasksHandler {
	return &TasksHandler{service: taskService}
}

// ListTasks GET /api/tasks, optionally filtered by ?status= or ?priority=.
func (h *TasksHandler) ListTasks(c *fiber.Ctx) error {
	principal, err := requirePrincipal(c)
	if err != nil {
		return err
	}

	status, priority := c.Query("status"), c.Query("priority")
	if status != "" && priority != "" {
		return apperrors.NewValidationError("filter by status or priority, not both", nil)
	}

	var tasks []domain.Task
	switch {
	case status != "":
		parsed, perr := domain.ParseTaskStatus(status)
		if perr != nil {
			return apperrors.NewValidationError(perr.Error(), map[string]any{"status": status})
		}
		tasks, err = h.service.ListByStatus(c.UserContext(), principal, parsed)
	case priority != "":
		parsed, perr := domain.ParseTaskPriority(priority)
		if perr != nil {
			return apperrors.NewValidationError(perr.Error(), map[string]any{"priority": priority})
		}
		tasks, err = h.service.ListByPriority(c.UserContext(), principal, parsed)
	default:
		tasks, err = h.service.ListAll(c.UserContext(), principal)
	}
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": dto.NewTaskResponses(tasks)})
}

// Stats GET /api/tasks/stats.
func (h *TasksHandler) Stats(c *fiber.Ctx) error {
	principal, err := requirePrincipal(c)
	if err != nil {
		return err
	}
	stats, err := h.service.GetStats(c.UserContext(), principal)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": stats})
}

// GetTask GET /api/tasks/:id.
func (h *TasksHandler) GetTask(c *fiber.Ctx) error {
	principal, err := requirePrincipal(c)
	if err != nil {
		return err
	}
	task, err := h.service.GetByID(c.UserContext(), principal, c.Params("id"))
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": dto.NewTaskResponse(task)})
}

// CreateTask POST /api/tasks.
func (h *TasksHandler) CreateTask(c *fiber.Ctx) error {
	principal, err := requirePrincipal(c)
	if err != nil {
		return err
	}
	input, err := bindTaskInput(c)
	if err != nil {
		return err
	}
	task, err := h.service.Create(c.UserContext(), principal, input)
	if err != nil {
		return err
	}
	return c.Status(http.StatusCreated).JSON(fiber.Map{"data": dto.NewTaskResponse(task)})
}

// UpdateTask PUT /api/tasks/:id.
func (h *TasksHandler) UpdateTask(c *fiber.Ctx) error {
	principal, err := requirePrincipal(c)
	if err != nil {
		return err
	}
	input, err := bindTaskInput(c)
	if err != nil {
		return err
	}
	task, err := h.service.Update(c.UserContext(), principal, c.Params("id"), input)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": dto.NewTaskResponse(task)})
}

// DeleteTask DELETE /api/tasks/:id.
func (h *TasksHandler) DeleteTask(c *fiber.Ctx) error {
	principal, err := requirePrincipal(c)
	if err != nil {
		return err
	}
	if err := h.service.Delete(c.UserContext(), principal, c.Params("id")); err != nil {
		return err
	}
	return c.SendStatus(http.StatusNoContent)
}

func bindTaskInput(c *fiber.Ctx) (service.TaskInput, error) {
	var req dto.TaskRequest
	if err := c.BodyParser(&req); err != nil {
		return service.TaskInput{}, apperrors.NewValidationError("invalid payload", nil)
	}
	if err := dto.Validate(&req); err != nil {
		return service.TaskInput{}, err
	}

	input := service.TaskInput{Title: req.Title, Description: req.Description}
	if req.Status != "" {
		status, err := domain.ParseTaskStatus(req.Status)
		if err != nil {
			return service.TaskInput{}, apperrors.NewValidationError(err.Error(), map[string]any{"status": req.Status})
		}
		input.Status = status
	}
	if req.Priority != "" {
		priority, err := domain.ParseTaskPriority(req.Priority)
		if err != nil {
			return service.TaskInput{}, apperrors.NewValidationError(err.Error(), map[string]any{"priority": req.Priority})
		}
		input.Priority = priority
	}
	return input, nil
}

func requirePrincipal(c *fiber.Ctx) (*domain.Principal, error) {
	principal, ok := auth.PrincipalFromContext(c)
	if !ok {
		return nil, apperrors.NewUnauthorized("authentication required")
	}
	return principal, nil
}
