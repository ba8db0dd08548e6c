package service

import (
	"context"

	"go.uber.org/zap"

	"github.com/spec-kit/task-tracker/internal/events"
)

// NotificationService reacts to task events. Today it only writes an audit log line per event.
type NotificationService struct {
	dispatcher events.Dispatcher
	logger     *zap.Logger
}

// NewNotificationService creates the service.
func NewNotificationService(dispatcher events.Dispatcher, logger *zap.Logger) *NotificationService {
	return &NotificationService{
		dispatcher: dispatcher,
		logger:     logger.Named("audit"),
	}
}

// RegisterHandlers subscribes to events.
func (n *NotificationService) RegisterHandlers() {
	if n.dispatcher == nil {
		return
	}
	n.dispatcher.Subscribe(events.EventTaskCreated, n.handleTaskCreated)
	n.dispatcher.Subscribe(events.EventTaskUpdated, n.handleTaskUpdated)
	n.dispatcher.Subscribe(events.EventTaskCompleted, n.handleTaskCompleted)
	n.dispatcher.Subscribe(events.EventTaskDeleted, n.handleTaskDeleted)
}

func (n *NotificationService) handleTaskCreated(_ context.Context, event events.Event) error {
	n.logger.Info("TaskCreated", n.fields(event)...)
	return nil
}

func (n *NotificationService) handleTaskUpdated(_ context.Context, event events.Event) error {
	n.logger.Info("TaskUpdated", n.fields(event)...)
	return nil
}

func (n *NotificationService) handleTaskCompleted(_ context.Context, event events.Event) error {
	fields := n.fields(event)
	if p, ok := event.Payload.(events.TaskCompletedPayload); ok {
		fields = append(fields, zap.Duration("time_to_complete", p.Duration))
	}
	n.logger.Info("TaskCompleted", fields...)
	return nil
}

func (n *NotificationService) handleTaskDeleted(_ context.Context, event events.Event) error {
	n.logger.Info("TaskDeleted", n.fields(event)...)
	return nil
}

func (n *NotificationService) fields(event events.Event) []zap.Field {
	return []zap.Field{
		zap.String("event_id", event.ID),
		zap.String("task_id", event.TaskID),
		zap.String("principal", event.Actor.PrincipalName),
		zap.Time("at", event.Timestamp),
		zap.Any("payload", event.Payload),
	}
}
