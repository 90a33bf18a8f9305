// Package events fans webhook events out to websocket subscribers and
// applies the platform's push events to the cache.
package events

import (
	"github.com/sirupsen/logrus"
	"github.com/tmitchel/chancache"
)

const publishBuffer = 256

var _ chancache.Publisher = (*Hub)(nil)

// Hub keeps track of subscribers and broadcasts every published event to
// all of them. A subscriber that can't keep up is dropped.
type Hub struct {
	clients    map[*client]bool
	broadcast  chan chancache.Event
	register   chan *client
	unregister chan *client
	count      chan chan int
	done       chan struct{}
}

// NewHub creates a hub. Run must be started before events flow.
func NewHub() *Hub {
	return &Hub{
		clients:    make(map[*client]bool),
		broadcast:  make(chan chancache.Event, publishBuffer),
		register:   make(chan *client),
		unregister: make(chan *client),
		count:      make(chan chan int),
		done:       make(chan struct{}),
	}
}

// Publish queues e for broadcast. It never blocks; when the queue is full
// the event is dropped.
func (h *Hub) Publish(e chancache.Event) {
	select {
	case h.broadcast <- e:
	default:
		logrus.WithFields(logrus.Fields{
			"type":    e.Type,
			"channel": e.ChannelID,
		}).Warn("event queue full, dropping event")
	}
}

// Subscribers reports how many clients are connected.
func (h *Hub) Subscribers() int {
	reply := make(chan int)
	select {
	case h.count <- reply:
		return <-reply
	case <-h.done:
		return 0
	}
}

// Close stops Run and disconnects every subscriber.
func (h *Hub) Close() {
	select {
	case <-h.done:
	default:
		close(h.done)
	}
}

// Run dispatches until Close is called.
func (h *Hub) Run() {
	for {
		select {
		case <-h.done:
			for c := range h.clients {
				delete(h.clients, c)
				close(c.send)
			}
			return
		case c := <-h.register:
			logrus.WithField("subscriber", c.id).Debug("registering subscriber")
			h.clients[c] = true
		case c := <-h.unregister:
			if _, ok := h.clients[c]; ok {
				delete(h.clients, c)
				close(c.send)
			}
		case reply := <-h.count:
			reply <- len(h.clients)
		case e := <-h.broadcast:
			for c := range h.clients {
				select {
				case c.send <- e:
				default:
					logrus.WithField("subscriber", c.id).Warn("subscriber too slow, dropping")
					close(c.send)
					delete(h.clients, c)
				}
			}
		}
	}
}
