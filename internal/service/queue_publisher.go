// Package service publishes domain events to RabbitMQ. Publishing is
// fire-and-forget from the request path: errors are logged, never
// surfaced, so a broker outage cannot fail a checkout.
package service

import (
	"context"
	"encoding/json"
	"log"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"

	"github.com/etukas/marketplace/internal/queue"
)

// Publisher emits marketplace events. A zero URL disables publishing
// entirely, which keeps local development brokerless.
type Publisher struct {
	url string
}

func NewPublisher(url string) *Publisher { return &Publisher{url: url} }

// BookingCreated publishes to the booking.created queue in the background.
func (p *Publisher) BookingCreated(ev queue.BookingCreatedEvent) {
	p.publish(queue.BookingQueue, ev)
}

// OrderCreated publishes to the order.created queue in the background.
func (p *Publisher) OrderCreated(ev queue.OrderCreatedEvent) {
	p.publish(queue.OrderQueue, ev)
}

func (p *Publisher) publish(queueName string, payload any) {
	if p == nil || p.url == "" {
		return
	}
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := p.send(ctx, queueName, payload); err != nil {
			log.Printf("events: publish %s failed: %v", queueName, err)
		}
	}()
}

func (p *Publisher) send(ctx context.Context, queueName string, payload any) error {
	conn, err := amqp.Dial(p.url)
	if err != nil {
		return err
	}
	defer func() { _ = conn.Close() }()

	ch, err := conn.Channel()
	if err != nil {
		return err
	}
	defer func() { _ = ch.Close() }()

	// Idempotent declare; durable so messages survive broker restarts.
	if _, err := ch.QueueDeclare(queueName, true, false, false, false, nil); err != nil {
		return err
	}
	body, err := json.Marshal(payload)
	if err != nil {
		return err
	}
	return ch.PublishWithContext(ctx,
		"",        // default exchange
		queueName, // routing key = queue name
		false, false,
		amqp.Publishing{
			ContentType:  "application/json",
			DeliveryMode: amqp.Persistent,
			Timestamp:    time.Now().UTC(),
			Body:         body,
		})
}
