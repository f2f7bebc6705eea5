package broadcast

import "testing"

func TestHub_PublishAndUnsubscribe(t *testing.T) {
	h := NewHub(nil)
	id, events := h.Subscribe(4)
	if h.SubscriberCount() != 1 {
		t.Fatalf("subscribers=%d", h.SubscriberCount())
	}

	h.NotifySignaturesChanged("31000005")
	ev := <-events
	if ev.Type != EventSignaturesChanged || ev.SystemID != "31000005" {
		t.Fatalf("ev=%+v", ev)
	}

	h.Unsubscribe(id)
	if h.SubscriberCount() != 0 {
		t.Fatalf("subscribers=%d after unsubscribe", h.SubscriberCount())
	}
	if _, ok := <-events; ok {
		t.Fatalf("channel not closed")
	}
}

func TestHub_DropsOnSlowSubscriber(t *testing.T) {
	h := NewHub(nil)
	id, events := h.Subscribe(1)
	defer h.Unsubscribe(id)

	h.NotifySignaturesChanged("31000005")
	h.NotifySignaturesChanged("31000005")

	if h.Dropped() != 1 {
		t.Fatalf("dropped=%d, want 1", h.Dropped())
	}
	<-events
	select {
	case ev := <-events:
		t.Fatalf("unexpected second event %+v", ev)
	default:
	}
}

func TestHub_IgnoresEmptySystem(t *testing.T) {
	h := NewHub(nil)
	id, events := h.Subscribe(1)
	defer h.Unsubscribe(id)

	h.NotifySignaturesChanged("")
	select {
	case ev := <-events:
		t.Fatalf("unexpected event %+v", ev)
	default:
	}
}
