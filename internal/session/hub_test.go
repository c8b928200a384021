package session

import (
	"errors"
	"testing"

	"collaboratex/internal/domain/models"
)

func TestHub_SinglePublisher(t *testing.T) {
	hub := NewHub(testLogger)
	if _, err := hub.Publisher(); err != nil {
		t.Fatalf("first claim: %v", err)
	}
	if _, err := hub.Publisher(); !errors.Is(err, ErrPublisherClaimed) {
		t.Errorf("second claim: got %v, want ErrPublisherClaimed", err)
	}
}

func TestHub_SubscribeAndUnsubscribe(t *testing.T) {
	hub := NewHub(testLogger)
	pub, _ := hub.Publisher()

	var a, b []EventType
	unsubA := hub.Subscribe(func(e Event) { a = append(a, e.Type) })
	hub.Subscribe(func(e Event) { b = append(b, e.Type) })

	ada := &models.Identity{ID: "u1", Email: "ada@example.com"}
	pub.Publish(EventSignedIn, ada)
	unsubA()
	unsubA()
	pub.Publish(EventSignedOut, ada)

	if len(a) != 1 || a[0] != EventSignedIn {
		t.Errorf("unsubscribed listener saw %v", a)
	}
	if len(b) != 2 || b[1] != EventSignedOut {
		t.Errorf("listener saw %v", b)
	}
}

func TestHub_Snapshot(t *testing.T) {
	hub := NewHub(testLogger)
	pub, _ := hub.Publisher()
	ada := &models.Identity{ID: "u1", Email: "ada@example.com"}

	if _, ok := hub.Snapshot("u1"); ok {
		t.Fatal("snapshot should start empty")
	}
	pub.Publish(EventSignedIn, ada)
	if got, ok := hub.Snapshot("u1"); !ok || got.Type != EventSignedIn || got.Identity.Email != "ada@example.com" {
		t.Errorf("snapshot after sign-in: %+v %v", got, ok)
	}
	pub.Publish(EventTokenRefreshed, ada)
	if got, _ := hub.Snapshot("u1"); got.Type != EventTokenRefreshed {
		t.Errorf("snapshot after refresh: %+v", got)
	}
	pub.Publish(EventSignedOut, ada)
	if _, ok := hub.Snapshot("u1"); ok {
		t.Error("snapshot should drop signed-out identity")
	}
}

func TestHub_PanickingSubscriberDoesNotStopDelivery(t *testing.T) {
	hub := NewHub(testLogger)
	pub, _ := hub.Publisher()

	delivered := false
	hub.Subscribe(func(Event) { panic("boom") })
	hub.Subscribe(func(Event) { delivered = true })

	pub.Publish(EventTokenRefreshed, nil)
	if !delivered {
		t.Error("second subscriber did not receive the event")
	}
}
