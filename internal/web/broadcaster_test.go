package web

import (
	"encoding/json"
	"testing"
)

func TestBroadcastReachesSubscriber(t *testing.T) {
	b := NewStatusBroadcaster()
	ch, unsub := b.Subscribe()
	defer unsub()

	b.Broadcast("info", "fire found")

	select {
	case payload := <-ch:
		var evt StatusEvent
		if err := json.Unmarshal([]byte(payload), &evt); err != nil {
			t.Fatalf("unmarshal event: %v", err)
		}
		if evt.Msg != "fire found" || evt.Level != "info" {
			t.Errorf("event = %+v", evt)
		}
	default:
		t.Fatal("no event received")
	}
}

func TestUnsubscribeStopsDelivery(t *testing.T) {
	b := NewStatusBroadcaster()
	ch, unsub := b.Subscribe()
	unsub()

	// Must not panic on a closed channel.
	b.Broadcast("info", "after unsubscribe")

	if _, open := <-ch; open {
		t.Error("channel still open after unsubscribe")
	}
}

func TestSlowClientDoesNotBlock(t *testing.T) {
	b := NewStatusBroadcaster()
	_, unsub := b.Subscribe()
	defer unsub()

	// Fill well past the buffer; Broadcast must never block.
	for i := 0; i < 200; i++ {
		b.Broadcast("info", "tick")
	}
}

func TestBroadcastWriter(t *testing.T) {
	b := NewStatusBroadcaster()
	ch, unsub := b.Subscribe()
	defer unsub()

	w := BroadcastWriter(b)
	if _, err := w.Write([]byte("[Firebot] State: SEARCHING -> ALIGNING\n")); err != nil {
		t.Fatalf("Write: %v", err)
	}

	select {
	case payload := <-ch:
		var evt StatusEvent
		if err := json.Unmarshal([]byte(payload), &evt); err != nil {
			t.Fatalf("unmarshal event: %v", err)
		}
		if evt.Msg != "[Firebot] State: SEARCHING -> ALIGNING" {
			t.Errorf("msg = %q", evt.Msg)
		}
	default:
		t.Fatal("no event received")
	}
}
