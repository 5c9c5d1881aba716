package mq

import (
	"context"
	"encoding/json"
	"fmt"

	amqp "github.com/rabbitmq/amqp091-go"
	"go.uber.org/zap"
)

// Publisher handles alarm transition publishing to RabbitMQ
type Publisher struct {
	conn     *Connection
	channel  *amqp.Channel
	exchange string
	logger   *zap.Logger
}

// NewPublisher creates a new RabbitMQ publisher
func NewPublisher(conn *Connection, exchange string, logger *zap.Logger) (*Publisher, error) {
	ch, err := conn.Channel()
	if err != nil {
		return nil, fmt.Errorf("failed to create channel: %w", err)
	}

	// Declare exchange
	err = ch.ExchangeDeclare(
		exchange,
		"topic",
		true,  // durable
		false, // auto-deleted
		false, // internal
		false, // no-wait
		nil,   // arguments
	)
	if err != nil {
		ch.Close()
		return nil, fmt.Errorf("failed to declare exchange: %w", err)
	}

	return &Publisher{
		conn:     conn,
		channel:  ch,
		exchange: exchange,
		logger:   logger,
	}, nil
}

// AlarmTransition is published after an alarm record opens or closes.
// Timestamps are millisecond epochs taken from the triggering event, not
// wall clock.
type AlarmTransition struct {
	Action       string `json:"action"`
	AlarmID      int64  `json:"alarm_id"`
	PointID      int    `json:"point_id"`
	PointXid     string `json:"point_xid"`
	PointName    string `json:"point_name"`
	Level        int    `json:"level"`
	ActiveTime   int64  `json:"active_time"`
	InactiveTime int64  `json:"inactive_time,omitempty"`
}

// PublishAlarmTransition publishes an alarm open or close event
func (p *Publisher) PublishAlarmTransition(ctx context.Context, event AlarmTransition, routingKey string) error {
	body, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("failed to marshal event: %w", err)
	}

	err = p.channel.PublishWithContext(
		ctx,
		p.exchange,
		routingKey,
		false, // mandatory
		false, // immediate
		amqp.Publishing{
			ContentType:  "application/json",
			Body:         body,
			DeliveryMode: amqp.Persistent,
		},
	)

	if err != nil {
		return fmt.Errorf("failed to publish event: %w", err)
	}

	p.logger.Debug("published alarm transition",
		zap.String("routing_key", routingKey),
		zap.String("action", event.Action),
		zap.Int64("alarm_id", event.AlarmID),
		zap.Int("point_id", event.PointID),
	)

	return nil
}

// Close closes the publisher channel
func (p *Publisher) Close() error {
	if p.channel != nil {
		return p.channel.Close()
	}
	return nil
}
