package notify

import (
	"context"
	"errors"
	"time"

	"github.com/sirupsen/logrus"

	"homeloan-backend/internal/domain/notification"
	"homeloan-backend/internal/infrastructure/metrics"
)

const (
	defaultPollWait     = 2 * time.Second
	defaultDeliverLimit = 10 * time.Second
	queueErrorBackoff   = time.Second
)

// Dispatcher drains a queue into a gateway, one event at a time.
type Dispatcher struct {
	queue   notification.Queue
	gateway notification.Gateway
	log     logrus.FieldLogger

	PollWait     time.Duration
	DeliverLimit time.Duration
}

func NewDispatcher(q notification.Queue, gw notification.Gateway, log logrus.FieldLogger) *Dispatcher {
	return &Dispatcher{
		queue:        q,
		gateway:      gw,
		log:          log,
		PollWait:     defaultPollWait,
		DeliverLimit: defaultDeliverLimit,
	}
}

// Run blocks until ctx is cancelled. Delivery failures are logged and the
// event is dropped.
func (d *Dispatcher) Run(ctx context.Context) error {
	d.log.Info("notification dispatcher started")
	for {
		if err := ctx.Err(); err != nil {
			d.log.Info("notification dispatcher stopped")
			return nil
		}
		if _, err := d.Step(ctx); err != nil {
			if ctx.Err() != nil {
				continue
			}
			d.log.WithError(err).Warn("notification queue unavailable")
			select {
			case <-ctx.Done():
			case <-time.After(queueErrorBackoff):
			}
		}
	}
}

// Step pops and delivers at most one event. It reports whether an event was
// taken; the error is only about the queue, never about delivery.
func (d *Dispatcher) Step(ctx context.Context) (bool, error) {
	ev, err := d.queue.Pop(ctx, d.PollWait)
	if errors.Is(err, notification.ErrQueueEmpty) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	d.deliver(ctx, ev)
	return true, nil
}

func (d *Dispatcher) deliver(ctx context.Context, ev notification.Event) {
	ctx, cancel := context.WithTimeout(ctx, d.DeliverLimit)
	defer cancel()

	err := d.gateway.Notify(ctx, ev.Kind, ev.Recipient, ev.Payload)
	metrics.Notification(string(ev.Kind), "deliver", err)

	log := d.log.WithFields(logrus.Fields{"event_id": ev.ID, "kind": ev.Kind})
	if err != nil {
		log.WithError(err).Error("notification delivery failed")
		return
	}
	log.Debug("notification delivered")
}
