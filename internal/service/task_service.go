package service

import (
	"context"
	"errors"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
	"golang.org/x/sync/singleflight"

	"github.com/spec-kit/task-tracker/internal/cache"
	"github.com/spec-kit/task-tracker/internal/domain"
	"github.com/spec-kit/task-tracker/internal/events"
	"github.com/spec-kit/task-tracker/internal/repository"
	apperrors "github.com/spec-kit/task-tracker/pkg/util/errorutil"
)

// TaskService coordinates task workflows for the calling principal.
type TaskService struct {
	tasks      repository.TaskRepository
	cache      *cache.ResponseCache
	dispatcher events.Dispatcher
	logger     *zap.Logger
	now        func() time.Time
	group      singleflight.Group
}

// TaskDependencies bundles collaborators for task service.
type TaskDependencies struct {
	TaskRepo   repository.TaskRepository
	Cache      *cache.ResponseCache
	Dispatcher events.Dispatcher
	Logger     *zap.Logger
	Clock      func() time.Time
}

// TaskInput is the writable part of a task.
type TaskInput struct {
	Title       string
	Description string
	Status      domain.TaskStatus
	Priority    domain.TaskPriority
}

// NewTaskService constructs the service.
func NewTaskService(deps TaskDependencies) *TaskService {
	logger := deps.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	clock := deps.Clock
	if clock == nil {
		clock = time.Now
	}
	return &TaskService{
		tasks:      deps.TaskRepo,
		cache:      deps.Cache,
		dispatcher: deps.Dispatcher,
		logger:     logger.Named("tasks"),
		now:        clock,
	}
}

// ListAll returns every task owned by the principal, newest first.
func (s *TaskService) ListAll(ctx context.Context, principal *domain.Principal) ([]domain.Task, error) {
	if err := requirePrincipal(principal); err != nil {
		return nil, err
	}
	return readThrough(ctx, s, cache.RegionCollection, cache.AllKey(principal.Name), func(ctx context.Context) ([]domain.Task, error) {
		return s.tasks.List(ctx, repository.TaskFilter{OwnerID: principal.ID})
	})
}

// ListByStatus returns the principal's tasks in one status.
func (s *TaskService) ListByStatus(ctx context.Context, principal *domain.Principal, status domain.TaskStatus) ([]domain.Task, error) {
	if err := requirePrincipal(principal); err != nil {
		return nil, err
	}
	if !status.Valid() {
		return nil, apperrors.NewValidationError("invalid status", map[string]any{"status": status})
	}
	return readThrough(ctx, s, cache.RegionCollection, cache.StatusKey(principal.Name, status), func(ctx context.Context) ([]domain.Task, error) {
		return s.tasks.List(ctx, repository.TaskFilter{OwnerID: principal.ID, Status: &status})
	})
}

// ListByPriority returns the principal's tasks with one priority.
func (s *TaskService) ListByPriority(ctx context.Context, principal *domain.Principal, priority domain.TaskPriority) ([]domain.Task, error) {
	if err := requirePrincipal(principal); err != nil {
		return nil, err
	}
	if !priority.Valid() {
		return nil, apperrors.NewValidationError("invalid priority", map[string]any{"priority": priority})
	}
	return readThrough(ctx, s, cache.RegionCollection, cache.PriorityKey(principal.Name, priority), func(ctx context.Context) ([]domain.Task, error) {
		return s.tasks.List(ctx, repository.TaskFilter{OwnerID: principal.ID, Priority: &priority})
	})
}

// Recent returns up to limit of the principal's newest tasks. It bypasses the cache.
func (s *TaskService) Recent(ctx context.Context, principal *domain.Principal, limit int) ([]domain.Task, error) {
	if err := requirePrincipal(principal); err != nil {
		return nil, err
	}
	tasks, err := s.tasks.List(ctx, repository.TaskFilter{OwnerID: principal.ID, Limit: limit})
	if err != nil {
		return nil, apperrors.NewStorageFailure(err)
	}
	return tasks, nil
}

// GetByID returns a task the principal owns. A missing task is NOT_FOUND; a task
// owned by someone else is FORBIDDEN. Neither outcome is cached.
func (s *TaskService) GetByID(ctx context.Context, principal *domain.Principal, id string) (*domain.Task, error) {
	if err := requirePrincipal(principal); err != nil {
		return nil, err
	}
	key := cache.IDKey(principal.Name, id)

	var cached domain.Task
	if s.cache.Get(ctx, cache.RegionEntity, key, &cached) {
		return &cached, nil
	}

	gen, genErr := s.cache.Generation(ctx, principal.Name)
	task, err := s.loadOwned(ctx, principal, id)
	if err != nil {
		return nil, err
	}
	if genErr == nil {
		s.fill(ctx, cache.RegionEntity, key, task, gen)
	}
	return task, nil
}

// GetStats aggregates the principal's tasks.
func (s *TaskService) GetStats(ctx context.Context, principal *domain.Principal) (*domain.TaskStats, error) {
	if err := requirePrincipal(principal); err != nil {
		return nil, err
	}
	return readThrough(ctx, s, cache.RegionStats, cache.StatsKey(principal.Name), func(ctx context.Context) (*domain.TaskStats, error) {
		return s.computeStats(ctx, principal.ID)
	})
}

// Create stores a new task owned by the principal.
func (s *TaskService) Create(ctx context.Context, principal *domain.Principal, input TaskInput) (*domain.Task, error) {
	if err := requirePrincipal(principal); err != nil {
		return nil, err
	}
	if err := validateInput(&input); err != nil {
		return nil, err
	}
	if input.Status == "" {
		input.Status = domain.TaskStatusTodo
	}
	if input.Priority == "" {
		input.Priority = domain.TaskPriorityMedium
	}

	now := s.now().UTC()
	task := &domain.Task{
		Title:       input.Title,
		Description: input.Description,
		Priority:    input.Priority,
		OwnerID:     principal.ID,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	task.TransitionTo(input.Status, now)

	if err := s.tasks.Create(ctx, task); err != nil {
		return nil, apperrors.NewStorageFailure(err)
	}
	if err := s.invalidate(ctx, principal, task.ID, nil, task); err != nil {
		return nil, err
	}

	s.publishEvent(ctx, principal, events.Event{
		Type:   events.EventTaskCreated,
		TaskID: task.ID,
		Payload: events.TaskCreatedPayload{
			Title:    task.Title,
			Status:   task.Status,
			Priority: task.Priority,
		},
	})
	return task, nil
}

// Update overwrites a task the principal owns. Empty status or priority keep the current value.
func (s *TaskService) Update(ctx context.Context, principal *domain.Principal, id string, input TaskInput) (*domain.Task, error) {
	if err := requirePrincipal(principal); err != nil {
		return nil, err
	}
	if err := validateInput(&input); err != nil {
		return nil, err
	}

	task, err := s.loadOwned(ctx, principal, id)
	if err != nil {
		return nil, err
	}
	before := *task

	now := s.now().UTC()
	task.Title = input.Title
	task.Description = input.Description
	if input.Priority != "" {
		task.Priority = input.Priority
	}
	if input.Status != "" {
		task.TransitionTo(input.Status, now)
	}
	task.UpdatedAt = now

	if err := s.tasks.Update(ctx, task); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, apperrors.NewNotFound("task", map[string]any{"id": id})
		}
		return nil, apperrors.NewStorageFailure(err)
	}
	if err := s.invalidate(ctx, principal, task.ID, &before, task); err != nil {
		return nil, err
	}

	s.publishEvent(ctx, principal, events.Event{
		Type:   events.EventTaskUpdated,
		TaskID: task.ID,
		Payload: events.TaskUpdatedPayload{
			OldStatus:   before.Status,
			NewStatus:   task.Status,
			OldPriority: before.Priority,
			NewPriority: task.Priority,
		},
	})
	if !before.Status.IsTerminal() && task.Status.IsTerminal() {
		payload := events.TaskCompletedPayload{CompletedAt: *task.CompletedAt}
		if d, ok := task.CompletionDuration(); ok {
			payload.Duration = d
		}
		s.publishEvent(ctx, principal, events.Event{Type: events.EventTaskCompleted, TaskID: task.ID, Payload: payload})
	}
	return task, nil
}

// Delete removes a task the principal owns.
func (s *TaskService) Delete(ctx context.Context, principal *domain.Principal, id string) error {
	if err := requirePrincipal(principal); err != nil {
		return err
	}
	task, err := s.loadOwned(ctx, principal, id)
	if err != nil {
		return err
	}

	if err := s.tasks.Delete(ctx, task.ID); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return apperrors.NewNotFound("task", map[string]any{"id": id})
		}
		return apperrors.NewStorageFailure(err)
	}
	if err := s.invalidate(ctx, principal, task.ID, task, nil); err != nil {
		return err
	}

	s.publishEvent(ctx, principal, events.Event{
		Type:    events.EventTaskDeleted,
		TaskID:  task.ID,
		Payload: events.TaskDeletedPayload{Title: task.Title},
	})
	return nil
}

// invalidationSet lists every cache entry a mutation could have made stale.
// before is nil on create and after is nil on delete.
func invalidationSet(principal, taskID string, before, after *domain.Task) []cache.Entry {
	entries := []cache.Entry{
		{Region: cache.RegionCollection, Key: cache.AllKey(principal)},
		{Region: cache.RegionEntity, Key: cache.IDKey(principal, taskID)},
		{Region: cache.RegionStats, Key: cache.StatsKey(principal)},
	}
	seen := map[cache.Key]struct{}{}
	add := func(key cache.Key) {
		if _, dup := seen[key]; dup {
			return
		}
		seen[key] = struct{}{}
		entries = append(entries, cache.Entry{Region: cache.RegionCollection, Key: key})
	}
	for _, t := range []*domain.Task{before, after} {
		if t == nil {
			continue
		}
		add(cache.StatusKey(principal, t.Status))
		add(cache.PriorityKey(principal, t.Priority))
	}
	return entries
}

// invalidate runs after the store write. It ignores request cancellation so an
// abandoned request cannot leave stale entries behind a committed write.
func (s *TaskService) invalidate(ctx context.Context, principal *domain.Principal, taskID string, before, after *domain.Task) error {
	entries := invalidationSet(principal.Name, taskID, before, after)
	if err := s.cache.Invalidate(context.WithoutCancel(ctx), principal.Name, entries); err != nil {
		s.logger.Error("cache invalidation failed",
			zap.String("principal", principal.Name),
			zap.String("task_id", taskID),
			zap.Error(err))
		return apperrors.NewInternalError(err)
	}
	return nil
}

func (s *TaskService) loadOwned(ctx context.Context, principal *domain.Principal, id string) (*domain.Task, error) {
	if _, err := uuid.Parse(id); err != nil {
		return nil, apperrors.NewNotFound("task", map[string]any{"id": id})
	}
	task, err := s.tasks.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, apperrors.NewNotFound("task", map[string]any{"id": id})
		}
		return nil, apperrors.NewStorageFailure(err)
	}
	if !task.OwnedBy(principal.ID) {
		return nil, apperrors.NewForbidden("task belongs to another user")
	}
	return task, nil
}

func (s *TaskService) computeStats(ctx context.Context, ownerID string) (*domain.TaskStats, error) {
	stats := &domain.TaskStats{}
	done, todo, inProgress := domain.TaskStatusDone, domain.TaskStatusTodo, domain.TaskStatusInProgress
	var completed []domain.Task

	g, gctx := errgroup.WithContext(ctx)
	count := func(dst *int64, filter repository.TaskFilter) {
		g.Go(func() error {
			n, err := s.tasks.Count(gctx, filter)
			*dst = n
			return err
		})
	}
	count(&stats.TotalTasks, repository.TaskFilter{OwnerID: ownerID})
	count(&stats.CompletedTasks, repository.TaskFilter{OwnerID: ownerID, Status: &done})
	count(&stats.TodoTasks, repository.TaskFilter{OwnerID: ownerID, Status: &todo})
	count(&stats.InProgressTasks, repository.TaskFilter{OwnerID: ownerID, Status: &inProgress})
	g.Go(func() error {
		var err error
		completed, err = s.tasks.List(gctx, repository.TaskFilter{OwnerID: ownerID, Status: &done})
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	stats.PendingTasks = stats.TotalTasks - stats.CompletedTasks
	stats.AverageCompletionTimeHours = averageCompletionHours(completed)
	return stats, nil
}

// averageCompletionHours averages at millisecond precision; 0 when no task has both timestamps.
func averageCompletionHours(tasks []domain.Task) float64 {
	var totalMillis, n int64
	for i := range tasks {
		d, ok := tasks[i].CompletionDuration()
		if !ok {
			continue
		}
		totalMillis += d.Milliseconds()
		n++
	}
	if n == 0 {
		return 0
	}
	return float64(totalMillis) / float64(n) / float64(time.Hour/time.Millisecond)
}

// readThrough serves key from the cache or loads it, sharing one load between concurrent
// callers that observed the same generation. A caller arriving after an invalidation
// never joins a load that began before it, and the fill is skipped when the principal
// was invalidated during the load.
func readThrough[T any](ctx context.Context, s *TaskService, region cache.Region, key cache.Key, load func(context.Context) (T, error)) (T, error) {
	var cached T
	if s.cache.Get(ctx, region, key, &cached) {
		return cached, nil
	}

	gen, genErr := s.cache.Generation(ctx, key.Principal)
	if genErr != nil {
		s.logger.Warn("cache generation unavailable", zap.Error(genErr))
		// without a generation the load cannot be ordered against mutations, so it is not shared
		return loadUncached(ctx, load)
	}
	flight := string(region) + "|" + key.String() + "|" + strconv.FormatUint(gen, 10)

	v, err, _ := s.group.Do(flight, func() (any, error) {
		// joined callers must not inherit the first caller's cancellation
		loadCtx := context.WithoutCancel(ctx)
		value, err := load(loadCtx)
		if err != nil {
			return nil, apperrors.NewStorageFailure(err)
		}
		s.fill(loadCtx, region, key, value, gen)
		return value, nil
	})
	if err != nil {
		var zero T
		return zero, err
	}
	return v.(T), nil
}

func loadUncached[T any](ctx context.Context, load func(context.Context) (T, error)) (T, error) {
	value, err := load(ctx)
	if err != nil {
		var zero T
		return zero, apperrors.NewStorageFailure(err)
	}
	return value, nil
}

func (s *TaskService) fill(ctx context.Context, region cache.Region, key cache.Key, value any, gen uint64) {
	if _, err := s.cache.PutIfGeneration(ctx, region, key, value, gen); err != nil {
		s.logger.Warn("cache fill failed", zap.String("region", string(region)), zap.Stringer("key", key), zap.Error(err))
	}
}

func (s *TaskService) publishEvent(ctx context.Context, principal *domain.Principal, event events.Event) {
	if s.dispatcher == nil {
		return
	}
	if event.ID == "" {
		event.ID = uuid.NewString()
	}
	if event.Timestamp.IsZero() {
		event.Timestamp = s.now()
	}
	event.Actor = events.Actor{PrincipalID: principal.ID, PrincipalName: principal.Name}
	if err := s.dispatcher.Publish(ctx, event); err != nil {
		s.logger.Warn("event publish failed", zap.String("type", string(event.Type)), zap.Error(err))
	}
}

func requirePrincipal(principal *domain.Principal) error {
	if principal == nil {
		return apperrors.NewUnauthorized("authentication required")
	}
	return nil
}

func validateInput(input *TaskInput) error {
	input.Title = strings.TrimSpace(input.Title)
	input.Description = strings.TrimSpace(input.Description)
	details := map[string]any{}
	if input.Title == "" {
		details["title"] = "is required"
	}
	if input.Status != "" && !input.Status.Valid() {
		details["status"] = "must be one of TODO, IN_PROGRESS, DONE"
	}
	if input.Priority != "" && !input.Priority.Valid() {
		details["priority"] = "must be one of LOW, MEDIUM, HIGH"
	}
	if len(details) > 0 {
		return apperrors.NewValidationError("invalid task", details)
	}
	return nil
}
