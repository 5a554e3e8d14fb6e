package event

import (
	"context"
	"encoding/json"
	"log"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
)

// Publisher publishes auth events to the durable auth.events queue. A nil
// *Publisher is valid and drops events, so handlers keep one code path when
// the broker is disabled (e.g. in tests).
type Publisher struct{ url string }

func NewPublisher() *Publisher { return &Publisher{url: brokerURL()} }

// Publish sends one event. A connection is dialed per publish; this service
// emits events only on signup and login, so connection churn is negligible
// next to the bcrypt work on the same paths.
func (p *Publisher) Publish(ctx context.Context, ev AuthEvent) error {
	if p == nil {
		return nil
	}

	conn, err := amqp.Dial(p.url)
	if err != nil {
		log.Printf("event: dial broker failed: %v", err)
		return err
	}
	defer func() { _ = conn.Close() }()

	ch, err := conn.Channel()
	if err != nil {
		log.Printf("event: channel open failed: %v", err)
		return err
	}
	defer func() { _ = ch.Close() }()

	// Idempotent declare; durable so events survive broker restarts.
	if _, err := ch.QueueDeclare(queueName, true, false, false, false, nil); err != nil {
		log.Printf("event: queue declare failed: %v", err)
		return err
	}

	body, err := json.Marshal(ev)
	if err != nil {
		log.Printf("event: marshal event failed: %v", err)
		return err
	}

	pub := amqp.Publishing{
		ContentType:  "application/json",
		DeliveryMode: amqp.Persistent,
		Timestamp:    time.Now().UTC(),
		Body:         body,
	}
	if err := ch.PublishWithContext(ctx, "", queueName, false, false, pub); err != nil {
		log.Printf("event: publish failed: %v", err)
		return err
	}
	return nil
}
