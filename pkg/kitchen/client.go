// Package kitchen publishes order events to the kitchen display exchange.
package kitchen

import (
	"context"
	"fmt"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
)

const DefaultExchange = "orders_topic"

type Client struct {
	conn     *amqp.Connection
	ch       *amqp.Channel
	exchange string
}

// Dial connects to the broker and declares the durable topic exchange.
func Dial(url, exchange string) (*Client, error) {
	if exchange == "" {
		exchange = DefaultExchange
	}
	conn, err := amqp.Dial(url)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to broker: %w", err)
	}
	ch, err := conn.Channel()
	if err != nil {
		_ = conn.Close()
		return nil, fmt.Errorf("failed to open channel: %w", err)
	}
	if err := ch.ExchangeDeclare(exchange, "topic", true, false, false, false, nil); err != nil {
		_ = ch.Close()
		_ = conn.Close()
		return nil, fmt.Errorf("failed to declare exchange %s: %w", exchange, err)
	}
	return &Client{conn: conn, ch: ch, exchange: exchange}, nil
}

// Publish sends a persistent JSON message with the given routing key.
func (c *Client) Publish(ctx context.Context, routingKey, messageID, correlationID string, body []byte) error {
	return c.ch.PublishWithContext(ctx, c.exchange, routingKey, false, false, amqp.Publishing{
		DeliveryMode:  amqp.Persistent,
		ContentType:   "application/json",
		MessageId:     messageID,
		CorrelationId: correlationID,
		Timestamp:     time.Now().UTC(),
		Headers:       amqp.Table{"x-source": "counter"},
		Body:          body,
	})
}

func (c *Client) Close() error {
	if c == nil {
		return nil
	}
	if c.ch != nil {
		_ = c.ch.Close()
	}
	if c.conn != nil {
		return c.conn.Close()
	}
	return nil
}
