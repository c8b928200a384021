package session

import (
	"errors"
	"log/slog"
	"sync"
	"time"

	"collaboratex/internal/domain/models"
)

// EventType names an auth state change.
type EventType string

const (
	EventSignedIn       EventType = "SIGNED_IN"
	EventSignedOut      EventType = "SIGNED_OUT"
	EventTokenRefreshed EventType = "TOKEN_REFRESHED"
	EventUserSignedUp   EventType = "USER_SIGNED_UP"
)

// Event is published once per auth state change.
type Event struct {
	Type     EventType
	Identity *models.Identity // nil when unknown (e.g. sign-out of a dead session)
	At       time.Time
}

// ErrPublisherClaimed is returned when a second producer asks for the publisher.
var ErrPublisherClaimed = errors.New("session hub publisher already claimed")

// Hub fans auth events out to subscribers and keeps a display-only
// snapshot of the last event seen per identity. It has exactly one producer.
type Hub struct {
	mu          sync.RWMutex
	subscribers map[int]func(Event)
	nextID      int
	snapshot    map[string]Event
	claimed     bool
	logger      *slog.Logger
}

// NewHub creates an empty hub.
func NewHub(logger *slog.Logger) *Hub {
	return &Hub{
		subscribers: make(map[int]func(Event)),
		snapshot:    make(map[string]Event),
		logger:      logger,
	}
}

// Publisher is the hub's single write handle.
type Publisher struct {
	hub *Hub
	now func() time.Time
}

// Publisher hands out the write handle. It succeeds once.
func (h *Hub) Publisher() (*Publisher, error) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.claimed {
		return nil, ErrPublisherClaimed
	}
	h.claimed = true
	return &Publisher{hub: h, now: time.Now}, nil
}

// Subscribe registers fn for every future event and returns its unsubscribe func.
// Subscribers run synchronously on the publishing goroutine and must not block.
func (h *Hub) Subscribe(fn func(Event)) func() {
	h.mu.Lock()
	id := h.nextID
	h.nextID++
	h.subscribers[id] = fn
	h.mu.Unlock()

	var once sync.Once
	return func() {
		once.Do(func() {
			h.mu.Lock()
			delete(h.subscribers, id)
			h.mu.Unlock()
		})
	}
}

// Snapshot returns the last event seen for an identity. Display only; never
// use it to authorize anything.
func (h *Hub) Snapshot(identityID string) (Event, bool) {
	h.mu.RLock()
	defer h.mu.RUnlock()
	e, ok := h.snapshot[identityID]
	return e, ok
}

// Publish records the event in the snapshot and delivers it to subscribers.
func (p *Publisher) Publish(eventType EventType, identity *models.Identity) {
	e := Event{Type: eventType, Identity: identity, At: p.now()}
	h := p.hub

	h.mu.Lock()
	if identity != nil {
		if eventType == EventSignedOut {
			delete(h.snapshot, identity.ID)
		} else {
			h.snapshot[identity.ID] = e
		}
	}
	subs := make([]func(Event), 0, len(h.subscribers))
	for _, fn := range h.subscribers {
		subs = append(subs, fn)
	}
	h.mu.Unlock()

	for _, fn := range subs {
		h.deliver(fn, e)
	}
}

func (h *Hub) deliver(fn func(Event), e Event) {
	defer func() {
		if rec := recover(); rec != nil {
			h.logger.Error("session subscriber panicked", "event", e.Type, "panic", rec)
		}
	}()
	fn(e)
}

// AuditLogger returns a subscriber that logs every auth event at Info.
func AuditLogger(logger *slog.Logger) func(Event) {
	return func(e Event) {
		attrs := []any{"event", string(e.Type), "at", e.At}
		if e.Identity != nil {
			attrs = append(attrs, "user_id", e.Identity.ID)
		}
		logger.Info("auth event", attrs...)
	}
}
