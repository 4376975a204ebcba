package service

import (
	"encoding/json"
	"errors"
	"fmt"
	"log"

	"politicianfinder/internal/util"
	"politicianfinder/internal/websocket"

	amqp "github.com/rabbitmq/amqp091-go"
)

// NotificationWorker consumes notification messages from RabbitMQ and
// pushes them to connected WebSocket clients. It lets notifications
// published by other processes reach users connected to this one.
type NotificationWorker struct {
	rabbitMQ *util.RabbitMQClient
	wsHub    *websocket.Hub
	stopChan chan struct{}
}

func NewNotificationWorker(rabbitMQ *util.RabbitMQClient, wsHub *websocket.Hub) *NotificationWorker {
	return &NotificationWorker{
		rabbitMQ: rabbitMQ,
		wsHub:    wsHub,
		stopChan: make(chan struct{}),
	}
}

// Start declares the notification exchange/queue and begins consuming.
func (w *NotificationWorker) Start() error {
	if w.rabbitMQ == nil {
		return nil // messaging disabled
	}

	channel := w.rabbitMQ.GetChannel()
	if channel == nil {
		return nil
	}

	if err := w.rabbitMQ.DeclareExchangeAndQueue(
		NotificationExchange, NotificationQueueName, NotificationRoutingKey,
	); err != nil {
		return err
	}

	msgs, err := channel.Consume(
		NotificationQueueName,
		"notification_worker",
		false,
		false,
		false,
		false,
		nil,
	)
	if err != nil {
		return err
	}

	go func() {
		log.Println("Notification worker started, consuming messages...")
		for {
			select {
			case <-w.stopChan:
				log.Println("Notification worker stopped")
				return
			case msg, ok := <-msgs:
				if !ok {
					log.Println("Notification queue closed")
					return
				}
				if err := w.process(msg); err != nil {
					if errors.Is(err, errMalformedMessage) {
						log.Printf("Dropping notification message: %v", err)
						msg.Nack(false, false)
					} else {
						log.Printf("Error processing notification message: %v", err)
						msg.Nack(false, true)
					}
				} else {
					msg.Ack(false)
				}
			}
		}
	}()

	return nil
}

func (w *NotificationWorker) process(msg amqp.Delivery) error {
	var notificationMsg NotificationMessage
	if err := json.Unmarshal(msg.Body, &notificationMsg); err != nil {
		return fmt.Errorf("%w: %v", errMalformedMessage, err)
	}

	if w.wsHub == nil {
		return nil
	}

	payload := map[string]interface{}{
		"type":    notificationMsg.Type,
		"user_id": notificationMsg.UserID,
		"title":   notificationMsg.Title,
		"message": notificationMsg.Message,
	}
	for k, v := range notificationMsg.Data {
		payload[k] = v
	}

	w.wsHub.BroadcastToUser(notificationMsg.UserID, payload)
	return nil
}

// Stop stops the notification worker.
func (w *NotificationWorker) Stop() {
	close(w.stopChan)
}
