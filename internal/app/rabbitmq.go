package app

import (
	"fmt"

	amqp "github.com/rabbitmq/amqp091-go"

	"freight/internal/config"
)

// NewRabbitMQConnection dials the notification broker. It returns nil, nil
// when no URL is configured.
func NewRabbitMQConnection(cfg config.RabbitMQConfig) (*amqp.Connection, error) {
	if cfg.URL == "" {
		return nil, nil
	}

	conn, err := amqp.Dial(cfg.URL)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to rabbitmq: %w", err)
	}

	return conn, nil
}
