package events

import (
	"testing"
	"time"

	"github.com/google/uuid"
)

func TestNewBus(t *testing.T) {
	bus := NewBus()
	if bus == nil {
		t.Fatal("NewBus() returned nil")
	}
	if bus.Events == nil {
		t.Fatal("Events channel is nil")
	}
}

func TestBus_PublishReceive(t *testing.T) {
	bus := NewBus()
	id := uuid.New()

	if !bus.Publish(GameStarted{GameID: id, RoomKey: "abc123", TotalRounds: 3}) {
		t.Fatal("Publish() = false on empty bus")
	}

	select {
	case ev := <-bus.Events:
		started, ok := ev.(GameStarted)
		if !ok {
			t.Fatalf("received %T, want GameStarted", ev)
		}
		if started.GameID != id || started.RoomKey != "abc123" {
			t.Errorf("received %+v", started)
		}
	case <-time.After(1 * time.Second):
		t.Fatal("timed out waiting for event")
	}
}

func TestBus_DropsWhenFull(t *testing.T) {
	bus := NewBus()

	// Should be able to send up to bufferSize without blocking
	for i := 0; i < bufferSize; i++ {
		if !bus.Publish(GameEnded{}) {
			t.Fatalf("Publish() = false at %d", i)
		}
	}
	if bus.Publish(GameEnded{}) {
		t.Fatal("Publish() = true on full bus")
	}
}

func TestBus_NilIsSafe(t *testing.T) {
	var bus *Bus
	if bus.Publish(RoundEnded{}) {
		t.Fatal("nil bus accepted an event")
	}
}
