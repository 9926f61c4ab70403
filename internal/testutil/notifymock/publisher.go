package notifymock

import (
	"context"
	"sync"

	"homeloan-backend/internal/domain/notification"
)

// Publisher records published events.
type Publisher struct {
	mu     sync.Mutex
	Events []notification.Event
}

var _ notification.Publisher = (*Publisher)(nil)

func (p *Publisher) Publish(_ context.Context, ev notification.Event) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.Events = append(p.Events, ev)
}

func (p *Publisher) Kinds() []notification.Kind {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([]notification.Kind, len(p.Events))
	for i, ev := range p.Events {
		out[i] = ev.Kind
	}
	return out
}

func (p *Publisher) Last() (notification.Event, bool) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if len(p.Events) == 0 {
		return notification.Event{}, false
	}
	return p.Events[len(p.Events)-1], true
}
