package notify

import (
	"context"
	"time"

	"github.com/sirupsen/logrus"

	"homeloan-backend/internal/domain/notification"
	"homeloan-backend/internal/infrastructure/metrics"
	"homeloan-backend/pkg/id"
)

// enqueueTimeout bounds a push so a slow broker cannot hold up a request
// whose transaction has already committed.
const enqueueTimeout = 2 * time.Second

// QueuePublisher enqueues events. Failures are logged and counted, never returned.
type QueuePublisher struct {
	queue notification.Queue
	log   logrus.FieldLogger
}

var _ notification.Publisher = (*QueuePublisher)(nil)

func NewQueuePublisher(q notification.Queue, log logrus.FieldLogger) *QueuePublisher {
	return &QueuePublisher{queue: q, log: log}
}

func (p *QueuePublisher) Publish(ctx context.Context, ev notification.Event) {
	if ev.ID == "" {
		ev.ID = id.NewID32()
	}
	if ev.CreatedAt.IsZero() {
		ev.CreatedAt = time.Now().UTC()
	}

	// detach from request cancellation; the event belongs to committed work
	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), enqueueTimeout)
	defer cancel()

	err := p.queue.Push(ctx, ev)
	metrics.Notification(string(ev.Kind), "enqueue", err)
	if err != nil {
		p.log.WithError(err).WithFields(logrus.Fields{
			"event_id": ev.ID,
			"kind":     ev.Kind,
		}).Error("notification dropped")
	}
}
