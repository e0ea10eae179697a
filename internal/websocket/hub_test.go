package websocket

import (
	"encoding/json"
	"testing"
	"time"
)

func waitFor(t *testing.T, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for !cond() {
		if time.Now().After(deadline) {
			t.Fatal("condition not met in time")
		}
		time.Sleep(5 * time.Millisecond)
	}
}

func TestBroadcastToRoleDelivers(t *testing.T) {
	hub := NewHub()
	go hub.Run()

	admin := NewClient("a1", "admin", nil, hub)
	worker := NewClient("w1", "wc1", nil, hub)
	hub.register <- admin
	hub.register <- worker
	waitFor(t, func() bool { return hub.GetClientCount() == 2 })

	hub.BroadcastToRole("admin", map[string]string{"type": "route_created"})

	select {
	case data := <-admin.send:
		var msg map[string]string
		if err := json.Unmarshal(data, &msg); err != nil {
			t.Fatalf("bad payload: %v", err)
		}
		if msg["type"] != "route_created" {
			t.Errorf("expected route_created, got %q", msg["type"])
		}
	default:
		t.Fatal("admin received nothing")
	}

	select {
	case <-worker.send:
		t.Fatal("worker should not receive admin broadcasts")
	default:
	}
}

func TestBroadcastEvictsStalledClient(t *testing.T) {
	hub := NewHub()
	go hub.Run()

	stalled := NewClient("w2", "wc2", nil, hub)
	hub.register <- stalled
	waitFor(t, func() bool { return hub.IsUserConnected("w2") })

	// Fill the send buffer so the next broadcast cannot be queued
	for i := 0; i < cap(stalled.send); i++ {
		stalled.send <- []byte("{}")
	}

	hub.BroadcastToUser("w2", map[string]string{"type": "route_assigned"})
	waitFor(t, func() bool { return !hub.IsUserConnected("w2") })
}

func TestConcurrentBroadcastsWithEviction(t *testing.T) {
	hub := NewHub()
	go hub.Run()

	stalled := NewClient("w3", "wc3", nil, hub)
	admin := NewClient("a2", "admin", nil, hub)
	hub.register <- stalled
	hub.register <- admin
	waitFor(t, func() bool { return hub.GetClientCount() == 2 })

	for i := 0; i < cap(stalled.send); i++ {
		stalled.send <- []byte("{}")
	}

	done := make(chan struct{})
	go func() {
		for i := 0; i < 50; i++ {
			hub.BroadcastToRole("admin", map[string]int{"n": i})
		}
		close(done)
	}()
	for i := 0; i < 10; i++ {
		hub.BroadcastToUser("w3", map[string]string{"type": "ping"})
	}
	<-done

	waitFor(t, func() bool { return !hub.IsUserConnected("w3") })
	if !hub.IsUserConnected("a2") {
		t.Error("healthy client should stay connected")
	}
}
