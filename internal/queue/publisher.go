// Package queue publishes seat lifecycle events to RabbitMQ so external
// collaborators (the order aggregate, the realtime transport) can react to
// holds, bookings, and releases without polling the database.
package queue

import (
	"context"
	"encoding/json"
	"time"

	"github.com/cinex/seat-booking/internal/domain"
	"github.com/google/uuid"
	amqp "github.com/rabbitmq/amqp091-go"
)

const exchangeName = "seat-booking.events"

type RabbitPublisher struct {
	ch *amqp.Channel
}

func NewRabbitPublisher(conn *amqp.Connection) (*RabbitPublisher, error) {
	ch, err := conn.Channel()
	if err != nil {
		return nil, err
	}

	err = ch.ExchangeDeclare(exchangeName, "topic", true, false, false, false, nil)
	if err != nil {
		return nil, err
	}

	return &RabbitPublisher{ch: ch}, nil
}

// Publish sends the event with its type as routing key. Messages are
// persistent; delivery is still best-effort from the engine's point of view
// since the owning transaction has already committed.
func (p *RabbitPublisher) Publish(ctx context.Context, event domain.SeatEvent) error {
	body, err := json.Marshal(event)
	if err != nil {
		return err
	}

	msg := amqp.Publishing{
		ContentType:  "application/json",
		DeliveryMode: amqp.Persistent,
		MessageId:    uuid.NewString(),
		Timestamp:    time.Now().UTC(),
		Body:         body,
	}

	return p.ch.PublishWithContext(ctx, exchangeName, event.Type, false, false, msg)
}

func (p *RabbitPublisher) Close() error {
	return p.ch.Close()
}
