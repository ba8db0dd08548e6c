package service

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/spec-kit/task-tracker/internal/domain"
	"github.com/spec-kit/task-tracker/internal/repository"
)

const (
	DemoUsername = "demo"
	DemoPassword = "demo123"
	demoEmail    = "demo@tasktracker.com"
)

var demoTasks = []TaskInput{
	{Title: "Complete project documentation", Description: "Write comprehensive documentation for the project", Status: domain.TaskStatusInProgress, Priority: domain.TaskPriorityHigh},
	{Title: "Review pull requests", Description: "Review and merge pending pull requests", Status: domain.TaskStatusTodo, Priority: domain.TaskPriorityMedium},
	{Title: "Fix bug in authentication", Description: "Fix the JWT token expiration issue", Status: domain.TaskStatusDone, Priority: domain.TaskPriorityHigh},
	{Title: "Update dependencies", Description: "Update all project dependencies to latest versions", Status: domain.TaskStatusTodo, Priority: domain.TaskPriorityLow},
	{Title: "Prepare demo presentation", Description: "Create slides for the product demo", Status: domain.TaskStatusInProgress, Priority: domain.TaskPriorityMedium},
}

// SeedDemoData creates the demo principal with sample tasks unless it already exists.
func SeedDemoData(ctx context.Context, users repository.UserRepository, authSvc *AuthService, tasks *TaskService, logger *zap.Logger) error {
	if _, err := users.GetByName(ctx, DemoUsername); err == nil {
		logger.Info("demo data already present")
		return nil
	} else if !errors.Is(err, repository.ErrNotFound) {
		return fmt.Errorf("lookup demo user: %w", err)
	}

	principal, err := authSvc.Register(ctx, DemoUsername, demoEmail, DemoPassword, domain.RoleUser)
	if err != nil {
		return fmt.Errorf("create demo user: %w", err)
	}
	for _, input := range demoTasks {
		if _, err := tasks.Create(ctx, principal, input); err != nil {
			return fmt.Errorf("create demo task %q: %w", input.Title, err)
		}
	}
	logger.Info("demo data created", zap.String("username", DemoUsername), zap.Int("tasks", len(demoTasks)))
	return nil
}
