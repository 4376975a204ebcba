package websocket

import (
	"testing"
	"time"
)

func waitFor(t *testing.T, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatal("timed out waiting for hub state")
}

func TestHubClientCounts(t *testing.T) {
	h := NewHub()
	go h.Run()

	a1 := NewClient(h, nil, "user-a")
	a2 := NewClient(h, nil, "user-a")
	b := NewClient(h, nil, "user-b")

	h.register <- a1
	h.register <- a2
	h.register <- b
	waitFor(t, func() bool { return h.GetTotalClientCount() == 3 })

	if got := h.GetClientCount("user-a"); got != 2 {
		t.Errorf("GetClientCount(user-a) = %d, want 2", got)
	}
	if got := h.GetClientCount("user-b"); got != 1 {
		t.Errorf("GetClientCount(user-b) = %d, want 1", got)
	}
	if got := h.GetClientCount("user-c"); got != 0 {
		t.Errorf("GetClientCount(user-c) = %d, want 0", got)
	}

	h.unregister <- a1
	waitFor(t, func() bool { return h.GetClientCount("user-a") == 1 })
	if got := h.GetTotalClientCount(); got != 2 {
		t.Errorf("GetTotalClientCount = %d, want 2", got)
	}
}

func TestHubBroadcastToAll(t *testing.T) {
	h := NewHub()
	go h.Run()

	a := NewClient(h, nil, "user-a")
	b := NewClient(h, nil, "user-b")
	h.register <- a
	h.register <- b
	waitFor(t, func() bool { return h.GetTotalClientCount() == 2 })

	h.BroadcastToAll(map[string]interface{}{"title": "maintenance tonight"})

	for _, client := range []*Client{a, b} {
		select {
		case msg := <-client.send:
			if msg.Type != "broadcast" {
				t.Errorf("message type = %q, want broadcast", msg.Type)
			}
			if msg.Payload["title"] != "maintenance tonight" {
				t.Errorf("payload title = %v", msg.Payload["title"])
			}
		case <-time.After(2 * time.Second):
			t.Fatalf("client %s never received the broadcast", client.UserID)
		}
	}
}

func TestHubBroadcastToUserIsTargeted(t *testing.T) {
	h := NewHub()
	go h.Run()

	a := NewClient(h, nil, "user-a")
	b := NewClient(h, nil, "user-b")
	h.register <- a
	h.register <- b
	waitFor(t, func() bool { return h.GetTotalClientCount() == 2 })

	h.BroadcastToUser("user-a", map[string]interface{}{"title": "for a only"})

	select {
	case msg := <-a.send:
		if msg.UserID != "user-a" {
			t.Errorf("message user = %q, want user-a", msg.UserID)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("user-a never received the message")
	}

	select {
	case msg := <-b.send:
		t.Errorf("user-b received stray message: %+v", msg)
	case <-time.After(50 * time.Millisecond):
	}
}
