package worker

import (
	"context"
	"sync"

	"go.uber.org/zap"

	"github.com/spec-kit/task-tracker/internal/events"
	"github.com/spec-kit/task-tracker/internal/service"
)

type queuedEvent struct {
	ctx   context.Context
	event events.Event
}

// EventWorker hands published events to an inner dispatcher on a background goroutine,
// so request handlers never wait on notification sinks.
type EventWorker struct {
	inner  events.Dispatcher
	logger *zap.Logger

	mu     sync.RWMutex
	closed bool
	queue  chan queuedEvent
	done   chan struct{}
}

// NewEventWorker creates a worker with the given queue size.
func NewEventWorker(inner events.Dispatcher, buffer int, logger *zap.Logger) *EventWorker {
	if buffer <= 0 {
		buffer = 64
	}
	return &EventWorker{
		inner:  inner,
		logger: logger.Named("event_worker"),
		queue:  make(chan queuedEvent, buffer),
		done:   make(chan struct{}),
	}
}

// Publish enqueues the event. A full queue drops the event with a warning.
func (w *EventWorker) Publish(ctx context.Context, event events.Event) error {
	w.mu.RLock()
	defer w.mu.RUnlock()
	if w.closed {
		w.logger.Warn("event published after shutdown", zap.String("type", string(event.Type)))
		return nil
	}
	select {
	case w.queue <- queuedEvent{ctx: context.WithoutCancel(ctx), event: event}:
	default:
		w.logger.Warn("event queue full; dropping event", zap.String("type", string(event.Type)), zap.String("task_id", event.TaskID))
	}
	return nil
}

// Subscribe registers on the inner dispatcher.
func (w *EventWorker) Subscribe(eventType events.EventType, handler events.EventHandler) {
	w.inner.Subscribe(eventType, handler)
}

// Start runs the delivery loop until Stop is called.
func (w *EventWorker) Start() {
	go func() {
		defer close(w.done)
		for item := range w.queue {
			if err := w.inner.Publish(item.ctx, item.event); err != nil {
				w.logger.Warn("event handler failed", zap.String("type", string(item.event.Type)), zap.Error(err))
			}
		}
	}()
}

// Stop closes the queue and waits for queued events to be delivered or ctx to end.
func (w *EventWorker) Stop(ctx context.Context) error {
	w.mu.Lock()
	if !w.closed {
		w.closed = true
		close(w.queue)
	}
	w.mu.Unlock()

	select {
	case <-w.done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// StartNotificationWorker registers notification handlers and starts delivery.
func StartNotificationWorker(notificationService *service.NotificationService, worker *EventWorker) {
	if notificationService != nil {
		notificationService.RegisterHandlers()
	}
	if worker != nil {
		worker.Start()
	}
}

var _ events.Dispatcher = (*EventWorker)(nil)
