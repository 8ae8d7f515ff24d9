// internal/app/features/live/hub.go

// Package live pushes food-item lifecycle events to connected browsers
// over websockets. The hub is the fan-out point: the coordinator
// publishes an event once and every connected client receives it.
package live

import (
	"encoding/json"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// Envelope is the wire frame for every pushed event.
type Envelope struct {
	ID        string    `json:"id"`
	Event     string    `json:"event"`
	Payload   any       `json:"payload"`
	EmittedAt time.Time `json:"emitted_at"`
}

// Hub tracks connected clients and fans published events out to them.
// All client-set mutation happens on the run goroutine; the exported
// methods only send on channels.
type Hub struct {
	clients    map[*client]bool
	register   chan *client
	unregister chan *client
	broadcast  chan []byte
	done       chan struct{}
	closeOnce  sync.Once
	connected  atomic.Int64
	log        *zap.Logger
}

// NewHub constructs a Hub. Call Run on its own goroutine before serving
// connections.
func NewHub(logger *zap.Logger) *Hub {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Hub{
		clients:    make(map[*client]bool),
		register:   make(chan *client),
		unregister: make(chan *client),
		broadcast:  make(chan []byte, 64),
		done:       make(chan struct{}),
		log:        logger,
	}
}

// Run owns the client set until Close is called.
func (h *Hub) Run() {
	for {
		select {
		case c := <-h.register:
			h.clients[c] = true
			h.connected.Store(int64(len(h.clients)))
			h.log.Debug("websocket client connected",
				zap.String("user_id", c.userID),
				zap.Int("clients", len(h.clients)))

		case c := <-h.unregister:
			if _, ok := h.clients[c]; ok {
				delete(h.clients, c)
				close(c.send)
				h.connected.Store(int64(len(h.clients)))
			}

		case msg := <-h.broadcast:
			for c := range h.clients {
				select {
				case c.send <- msg:
				default:
					// Client is not draining its queue; drop it
					// rather than stall the fan-out.
					delete(h.clients, c)
					close(c.send)
				}
			}
			h.connected.Store(int64(len(h.clients)))

		case <-h.done:
			for c := range h.clients {
				delete(h.clients, c)
				close(c.send)
			}
			h.connected.Store(0)
			return
		}
	}
}

// Publish wraps the payload in an Envelope and queues it for every
// connected client. It never blocks the caller: if the broadcast queue
// is full the event is dropped and logged.
func (h *Hub) Publish(event string, payload any) {
	env := Envelope{
		ID:        uuid.NewString(),
		Event:     event,
		Payload:   payload,
		EmittedAt: time.Now().UTC(),
	}

	msg, err := json.Marshal(env)
	if err != nil {
		h.log.Error("live: marshal event", zap.String("event", event), zap.Error(err))
		return
	}

	select {
	case h.broadcast <- msg:
	case <-h.done:
	default:
		h.log.Warn("live: broadcast queue full, event dropped",
			zap.String("event", event))
	}
}

// ClientCount reports how many clients are currently connected.
func (h *Hub) ClientCount() int {
	return int(h.connected.Load())
}

// Close disconnects all clients and stops the run loop. Safe to call
// more than once.
func (h *Hub) Close() {
	h.closeOnce.Do(func() { close(h.done) })
}
