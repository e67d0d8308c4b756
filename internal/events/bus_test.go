package events_test

import (
	"testing"
	"time"

	"github.com/hostkit/statedemo/internal/events"
	"github.com/hostkit/statedemo/internal/models"
)

func snapshotWithInput(input string) models.StatusSnapshot {
	return models.StatusSnapshot{
		Data:         models.DemoData{UserInput: input},
		ErrorSurface: "no_error",
	}
}

func TestBusSubscribePublish(t *testing.T) {
	bus := events.NewBus()

	ch := bus.Subscribe("test1")

	bus.Publish(snapshotWithInput("published"))

	select {
	case got := <-ch:
		if got.Data.UserInput != "published" {
			t.Errorf("got input %q, want %q", got.Data.UserInput, "published")
		}
	case <-time.After(100 * time.Millisecond):
		t.Fatal("timed out waiting for snapshot")
	}
}

func TestBusUnsubscribe(t *testing.T) {
	bus := events.NewBus()
	ch := bus.Subscribe("test-unsub")

	bus.Unsubscribe("test-unsub")

	// Channel should be closed
	select {
	case _, ok := <-ch:
		if ok {
			t.Error("expected channel to be closed after unsubscribe")
		}
	case <-time.After(100 * time.Millisecond):
		t.Fatal("timed out waiting for channel close")
	}
}

func TestBusDropsSnapshotsWhenFull(t *testing.T) {
	bus := events.NewBus()
	ch := bus.Subscribe("slow-reader")

	// Publish many snapshots without reading — should not block
	done := make(chan struct{})
	go func() {
		for i := 0; i < 20; i++ {
			bus.Publish(snapshotWithInput("burst"))
		}
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(500 * time.Millisecond):
		t.Fatal("Publish blocked for too long (should drop snapshots)")
	}

	bus.Unsubscribe("slow-reader")
	_ = ch
}

func TestBusSubscriberCount(t *testing.T) {
	bus := events.NewBus()
	if n := bus.SubscriberCount(); n != 0 {
		t.Errorf("expected 0 subscribers, got %d", n)
	}
	bus.Subscribe("s1")
	bus.Subscribe("s2")
	if n := bus.SubscriberCount(); n != 2 {
		t.Errorf("expected 2 subscribers, got %d", n)
	}
	bus.Unsubscribe("s1")
	if n := bus.SubscriberCount(); n != 1 {
		t.Errorf("expected 1 subscriber, got %d", n)
	}
}
