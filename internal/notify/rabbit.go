package notify

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
)

const publishTimeout = 10 * time.Second

// RabbitBroadcaster publishes notification messages to a fanout
// exchange, so every open dashboard gets its own copy.
type RabbitBroadcaster struct {
	conn     *amqp.Connection
	channel  *amqp.Channel
	exchange string
}

// NewRabbitBroadcaster dials the broker and declares the exchange.
func NewRabbitBroadcaster(url, exchange string) (*RabbitBroadcaster, error) {
	url = strings.TrimSpace(url)
	if url == "" {
		return nil, errors.New("rabbitmq url required")
	}
	exchange = strings.TrimSpace(exchange)
	if exchange == "" {
		exchange = "barrabusiness.notifications"
	}
	conn, err := amqp.Dial(url)
	if err != nil {
		return nil, fmt.Errorf("dial rabbitmq: %w", err)
	}
	channel, err := conn.Channel()
	if err != nil {
		conn.Close()
		return nil, fmt.Errorf("open channel: %w", err)
	}
	if err := channel.ExchangeDeclare(exchange, "fanout", true, false, false, false, nil); err != nil {
		channel.Close()
		conn.Close()
		return nil, fmt.Errorf("declare exchange: %w", err)
	}
	return &RabbitBroadcaster{conn: conn, channel: channel, exchange: exchange}, nil
}

// Broadcast publishes the message as JSON. Transient messages: a dropped
// notification does not corrupt anything, the durable flag covers it.
func (b *RabbitBroadcaster) Broadcast(ctx context.Context, msg Message) error {
	body, err := json.Marshal(msg)
	if err != nil {
		return fmt.Errorf("marshal notification: %w", err)
	}
	publishCtx, cancel := context.WithTimeout(ctx, publishTimeout)
	defer cancel()
	return b.channel.PublishWithContext(publishCtx, b.exchange, "", false, false, amqp.Publishing{
		ContentType: "application/json",
		Body:        body,
		Timestamp:   msg.OccurredAt,
	})
}

// Close releases the channel and connection.
func (b *RabbitBroadcaster) Close() error {
	if err := b.channel.Close(); err != nil {
		b.conn.Close()
		return err
	}
	return b.conn.Close()
}
