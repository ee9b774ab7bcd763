package notify

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"

	amqp "github.com/rabbitmq/amqp091-go"

	"freight/internal/domain"
)

// AMQPDispatcher publishes notifications as persistent JSON messages to a
// durable queue. A delivery worker outside this service fans them out to
// devices.
type AMQPDispatcher struct {
	mu    sync.Mutex
	ch    *amqp.Channel
	queue string
}

// NewAMQPDispatcher opens a channel on conn and declares the queue.
func NewAMQPDispatcher(conn *amqp.Connection, queue string) (*AMQPDispatcher, error) {
	ch, err := conn.Channel()
	if err != nil {
		return nil, fmt.Errorf("open channel: %w", err)
	}

	_, err = ch.QueueDeclare(
		queue, // name
		true,  // durable
		false, // delete when unused
		false, // exclusive
		false, // no-wait
		nil,   // arguments
	)
	if err != nil {
		_ = ch.Close()
		return nil, fmt.Errorf("declare queue %s: %w", queue, err)
	}

	return &AMQPDispatcher{ch: ch, queue: queue}, nil
}

// Dispatch publishes one notification.
func (d *AMQPDispatcher) Dispatch(ctx context.Context, n domain.Notification) error {
	body, err := json.Marshal(n)
	if err != nil {
		return fmt.Errorf("marshal notification: %w", err)
	}

	d.mu.Lock()
	defer d.mu.Unlock()

	return d.ch.PublishWithContext(
		ctx,
		"",      // exchange
		d.queue, // routing key
		false,   // mandatory
		false,   // immediate
		amqp.Publishing{
			ContentType:  "application/json",
			DeliveryMode: amqp.Persistent,
			MessageId:    n.ID,
			Timestamp:    n.CreatedAt,
			Type:         string(n.Type),
			Body:         body,
		},
	)
}

// Close closes the channel. The connection is owned by the caller.
func (d *AMQPDispatcher) Close() error {
	return d.ch.Close()
}
