package worker

import (
	"context"
	"sync"

	"go.uber.org/zap"

	"github.com/tsai-yu-xuan/vuetify-shop-back/internal/events"
	"github.com/tsai-yu-xuan/vuetify-shop-back/internal/service"
)

const defaultQueueSize = 256

// NotificationWorker moves notification delivery off the request path.
// Events are queued by the dispatcher and handled on a single goroutine.
type NotificationWorker struct {
	svc    *service.NotificationService
	logger *zap.Logger
	queue  chan events.Event
	wg     sync.WaitGroup
}

// StartNotificationWorker subscribes the worker to every event the
// notification service handles and starts the delivery loop. Cancel ctx and
// call Wait to drain.
func StartNotificationWorker(ctx context.Context, dispatcher events.Dispatcher, svc *service.NotificationService, logger *zap.Logger) *NotificationWorker {
	if dispatcher == nil || svc == nil {
		return nil
	}
	w := &NotificationWorker{
		svc:    svc,
		logger: logger,
		queue:  make(chan events.Event, defaultQueueSize),
	}
	for _, eventType := range svc.EventTypes() {
		dispatcher.Subscribe(eventType, w.enqueue)
	}
	w.wg.Add(1)
	go w.run(ctx)
	return w
}

func (w *NotificationWorker) enqueue(_ context.Context, event events.Event) error {
	select {
	case w.queue <- event:
	default:
		w.logger.Warn("notification queue full; dropping event",
			zap.String("event_id", event.ID),
			zap.String("event_type", string(event.Type)))
	}
	return nil
}

func (w *NotificationWorker) run(ctx context.Context) {
	defer w.wg.Done()
	for {
		select {
		case event := <-w.queue:
			w.deliver(event)
		case <-ctx.Done():
			for {
				select {
				case event := <-w.queue:
					w.deliver(event)
				default:
					return
				}
			}
		}
	}
}

func (w *NotificationWorker) deliver(event events.Event) {
	// Request contexts are gone by now; delivery runs detached.
	if err := w.svc.Handle(context.Background(), event); err != nil {
		w.logger.Warn("notification failed", zap.String("event_id", event.ID), zap.Error(err))
	}
}

// Wait blocks until the loop has drained after ctx cancellation.
func (w *NotificationWorker) Wait() {
	if w == nil {
		return
	}
	w.wg.Wait()
}
