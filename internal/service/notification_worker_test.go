package service

import (
	"encoding/json"
	"errors"
	"testing"

	amqp "github.com/rabbitmq/amqp091-go"
)

func TestNotificationWorkerProcessMalformedBody(t *testing.T) {
	w := NewNotificationWorker(nil, nil)

	err := w.process(amqp.Delivery{Body: []byte("{not json")})
	if !errors.Is(err, errMalformedMessage) {
		t.Errorf("process error = %v, want errMalformedMessage", err)
	}
}

func TestNotificationWorkerProcessValidBody(t *testing.T) {
	w := NewNotificationWorker(nil, nil)

	body, err := json.Marshal(NotificationMessage{
		UserID:  "u1",
		Type:    "comment",
		Title:   "New reply",
		Message: "Someone replied to your comment",
	})
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}

	if err := w.process(amqp.Delivery{Body: body}); err != nil {
		t.Errorf("process: %v", err)
	}
}

func TestEmailWorkerProcessMalformedBody(t *testing.T) {
	w := NewEmailWorker(nil, nil)

	err := w.process(amqp.Delivery{Body: []byte("")})
	if !errors.Is(err, errMalformedMessage) {
		t.Errorf("process error = %v, want errMalformedMessage", err)
	}
}
