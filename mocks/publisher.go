package mocks

import (
	"sync"

	"github.com/tmitchel/chancache"
)

var _ chancache.Publisher = (*Publisher)(nil)

// Publisher records every published event.
type Publisher struct {
	mu     sync.Mutex
	events []chancache.Event
}

// Publish implements chancache.Publisher.
func (p *Publisher) Publish(e chancache.Event) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, e)
}

// Events returns the events published so far.
func (p *Publisher) Events() []chancache.Event {
	p.mu.Lock()
	defer p.mu.Unlock()
	return append([]chancache.Event(nil), p.events...)
}

// Types returns the type of each published event in order.
func (p *Publisher) Types() []string {
	p.mu.Lock()
	defer p.mu.Unlock()
	types := make([]string, len(p.events))
	for i, e := range p.events {
		types[i] = e.Type
	}
	return types
}
