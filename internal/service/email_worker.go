package service

import (
	"encoding/json"
	"errors"
	"fmt"
	"log"

	"politicianfinder/internal/util"

	amqp "github.com/rabbitmq/amqp091-go"
)

// EmailWorker consumes queued email messages and delivers them over
// SMTP, so request handlers never block on mail.
type EmailWorker struct {
	emailService *EmailService
	rabbitMQ     *util.RabbitMQClient
	stopChan     chan struct{}
}

func NewEmailWorker(emailService *EmailService, rabbitMQ *util.RabbitMQClient) *EmailWorker {
	return &EmailWorker{
		emailService: emailService,
		rabbitMQ:     rabbitMQ,
		stopChan:     make(chan struct{}),
	}
}

// Start declares the email exchange/queue and begins consuming.
func (w *EmailWorker) Start() error {
	if w.rabbitMQ == nil {
		return nil // messaging disabled, sends fall back to direct SMTP
	}

	channel := w.rabbitMQ.GetChannel()
	if channel == nil {
		return nil
	}

	if err := w.rabbitMQ.DeclareExchangeAndQueue(EmailExchange, EmailQueueName, EmailRoutingKey); err != nil {
		return err
	}

	msgs, err := channel.Consume(
		EmailQueueName,
		"email_worker",
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
		log.Println("Email worker started, consuming messages...")
		for {
			select {
			case <-w.stopChan:
				log.Println("Email worker stopped")
				return
			case msg, ok := <-msgs:
				if !ok {
					log.Println("Email queue closed")
					return
				}
				if err := w.process(msg); err != nil {
					if errors.Is(err, errMalformedMessage) {
						log.Printf("Dropping email message: %v", err)
						msg.Nack(false, false)
					} else {
						log.Printf("Error sending queued email: %v", err)
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

func (w *EmailWorker) process(msg amqp.Delivery) error {
	var emailMsg EmailMessage
	if err := json.Unmarshal(msg.Body, &emailMsg); err != nil {
		return fmt.Errorf("%w: %v", errMalformedMessage, err)
	}
	return w.emailService.Send(emailMsg)
}

// Stop stops the email worker.
func (w *EmailWorker) Stop() {
	close(w.stopChan)
}
