package util

import (
	"fmt"

	"politicianfinder/internal/config"

	amqp "github.com/rabbitmq/amqp091-go"
)

// RabbitMQClient manages the AMQP connection and a single channel used by
// the publisher side and the workers. A nil *RabbitMQClient means
// messaging is disabled and callers fall back to synchronous behavior.
type RabbitMQClient struct {
	conn    *amqp.Connection
	channel *amqp.Channel
	url     string
}

func NewRabbitMQClient(cfg *config.Config) (*RabbitMQClient, error) {
	conn, err := amqp.Dial(cfg.RabbitMQURL)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to RabbitMQ: %w", err)
	}

	channel, err := conn.Channel()
	if err != nil {
		conn.Close()
		return nil, fmt.Errorf("failed to open RabbitMQ channel: %w", err)
	}

	return &RabbitMQClient{
		conn:    conn,
		channel: channel,
		url:     cfg.RabbitMQURL,
	}, nil
}

// GetChannel returns the underlying channel for consumers.
func (r *RabbitMQClient) GetChannel() *amqp.Channel {
	if r == nil {
		return nil
	}
	return r.channel
}

// DeclareExchangeAndQueue declares a durable direct exchange, a durable
// queue and binds them with the routing key. Declarations are idempotent
// so both publisher and worker call this on startup.
func (r *RabbitMQClient) DeclareExchangeAndQueue(exchange, queue, routingKey string) error {
	if err := r.channel.ExchangeDeclare(exchange, "direct", true, false, false, false, nil); err != nil {
		return fmt.Errorf("failed to declare exchange %s: %w", exchange, err)
	}
	if _, err := r.channel.QueueDeclare(queue, true, false, false, false, nil); err != nil {
		return fmt.Errorf("failed to declare queue %s: %w", queue, err)
	}
	if err := r.channel.QueueBind(queue, routingKey, exchange, false, nil); err != nil {
		return fmt.Errorf("failed to bind queue %s: %w", queue, err)
	}
	return nil
}

// Publish sends a JSON body to an exchange with the given routing key.
func (r *RabbitMQClient) Publish(exchange, routingKey string, body []byte) error {
	return r.channel.Publish(
		exchange,
		routingKey,
		false,
		false,
		amqp.Publishing{
			ContentType:  "application/json",
			Body:         body,
			DeliveryMode: amqp.Persistent,
		},
	)
}

// Close closes the channel and the connection.
func (r *RabbitMQClient) Close() error {
	if r.channel != nil {
		r.channel.Close()
	}
	if r.conn != nil {
		return r.conn.Close()
	}
	return nil
}
