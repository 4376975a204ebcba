package service

import (
	"testing"
)

type fakePusher struct {
	toUser []string
	toAll  []map[string]interface{}
}

func (p *fakePusher) BroadcastToUser(userID string, payload map[string]interface{}) {
	p.toUser = append(p.toUser, userID)
}

func (p *fakePusher) BroadcastToAll(payload map[string]interface{}) {
	p.toAll = append(p.toAll, payload)
}

func TestBroadcastAnnouncement(t *testing.T) {
	svc := NewNotificationService(nil, nil)

	if err := svc.BroadcastAnnouncement("Maintenance", "Back at 02:00 UTC"); err == nil {
		t.Error("expected error when no hub is attached")
	}

	pusher := &fakePusher{}
	svc.SetWSHub(pusher)

	if err := svc.BroadcastAnnouncement("Maintenance", "Back at 02:00 UTC"); err != nil {
		t.Fatalf("BroadcastAnnouncement: %v", err)
	}
	if len(pusher.toAll) != 1 {
		t.Fatalf("broadcasts = %d, want 1", len(pusher.toAll))
	}
	payload := pusher.toAll[0]
	if payload["type"] != "announcement" {
		t.Errorf("payload type = %v, want announcement", payload["type"])
	}
	if payload["title"] != "Maintenance" {
		t.Errorf("payload title = %v", payload["title"])
	}
	if len(pusher.toUser) != 0 {
		t.Errorf("announcement went to a single user: %v", pusher.toUser)
	}
}

func TestTruncate(t *testing.T) {
	tests := []struct {
		name string
		in   string
		max  int
		want string
	}{
		{"short ascii", "hello", 10, "hello"},
		{"long ascii", "hello world", 5, "hello..."},
		{"exact length", "hello", 5, "hello"},
		{"multibyte kept whole", "안녕하세요 여러분", 5, "안녕하세요..."},
		{"multibyte under limit", "안녕", 5, "안녕"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := truncate(tt.in, tt.max)
			if got != tt.want {
				t.Errorf("truncate(%q, %d) = %q, want %q", tt.in, tt.max, got, tt.want)
			}
		})
	}
}
