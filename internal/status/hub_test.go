package status_test

import (
	"fmt"
	"testing"

	"yomu/internal/status"
)

func TestPublishDeliversInOrder(t *testing.T) {
	hub := status.NewHub(0)

	var got []string
	hub.AddSink(status.SinkFunc(func(evt status.Event) {
		got = append(got, evt.Text)
	}))

	want := []string{"one", "two", "three"}
	for _, text := range want {
		hub.Publish(text)
	}

	if len(got) != len(want) {
		t.Fatalf("delivered %d events, want %d", len(got), len(want))
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("event %d = %q, want %q", i, got[i], want[i])
		}
	}
}

func TestSequenceIncreases(t *testing.T) {
	hub := status.NewHub(0)
	hub.Publish("a")
	hub.Publish("b")

	events := hub.Tail(0)
	if len(events) != 2 {
		t.Fatalf("expected 2 buffered events, got %d", len(events))
	}
	if events[1].Sequence <= events[0].Sequence {
		t.Fatalf("sequence not increasing: %d then %d", events[0].Sequence, events[1].Sequence)
	}
}

func TestBufferDropsOldest(t *testing.T) {
	hub := status.NewHub(3)
	for i := 1; i <= 5; i++ {
		hub.Publish(fmt.Sprintf("msg-%d", i))
	}

	events := hub.Tail(0)
	if len(events) != 3 {
		t.Fatalf("buffer holds %d events, want 3", len(events))
	}
	if events[0].Text != "msg-3" || events[2].Text != "msg-5" {
		t.Fatalf("unexpected buffer contents: %#v", events)
	}
}

func TestTailLimit(t *testing.T) {
	hub := status.NewHub(0)
	for i := 0; i < 4; i++ {
		hub.Publish(fmt.Sprintf("m%d", i))
	}

	events := hub.Tail(2)
	if len(events) != 2 {
		t.Fatalf("Tail(2) returned %d events", len(events))
	}
	if events[1].Text != "m3" {
		t.Fatalf("expected newest event last, got %q", events[1].Text)
	}
}

func TestNilHubIsSafe(t *testing.T) {
	var hub *status.Hub
	hub.Publish("ignored")
	hub.AddSink(status.SinkFunc(func(status.Event) {}))
	if events := hub.Tail(1); events != nil {
		t.Fatalf("expected nil tail from nil hub, got %#v", events)
	}
}
