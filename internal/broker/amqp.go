package broker

import (
	"context"
	"fmt"

	amqp "github.com/rabbitmq/amqp091-go"
)

// AMQPDialer dials a RabbitMQ-compatible broker by URL
type AMQPDialer struct {
	url string
}

// NewAMQPDialer creates a dialer for the given broker URL
func NewAMQPDialer(url string) *AMQPDialer {
	return &AMQPDialer{url: url}
}

// Dial opens a new connection and channel
func (d *AMQPDialer) Dial() (Conn, error) {
	conn, err := amqp.Dial(d.url)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to broker: %w", err)
	}

	ch, err := conn.Channel()
	if err != nil {
		conn.Close()
		return nil, fmt.Errorf("failed to open channel: %w", err)
	}

	return &amqpConn{conn: conn, ch: ch}, nil
}

type amqpConn struct {
	conn *amqp.Connection
	ch   *amqp.Channel
}

// DeclareQueue declares a durable, non-exclusive queue
func (c *amqpConn) DeclareQueue(name string) error {
	_, err := c.ch.QueueDeclare(name, true, false, false, false, nil)
	if err != nil {
		return fmt.Errorf("failed to declare queue %s: %w", name, err)
	}
	return nil
}

// Publish sends a message to the default exchange with the queue name as
// routing key, marked persistent so it survives broker restarts
func (c *amqpConn) Publish(ctx context.Context, queue string, body []byte) error {
	err := c.ch.PublishWithContext(ctx, "", queue, false, false, amqp.Publishing{
		ContentType:  "application/json",
		DeliveryMode: amqp.Persistent,
		Body:         body,
	})
	if err != nil {
		return fmt.Errorf("failed to publish to %s: %w", queue, err)
	}
	return nil
}

// Get fetches one message without auto-ack
func (c *amqpConn) Get(queue string) (*Delivery, error) {
	msg, ok, err := c.ch.Get(queue, false)
	if err != nil {
		return nil, fmt.Errorf("failed to get from %s: %w", queue, err)
	}
	if !ok {
		return nil, nil // queue is empty
	}
	return &Delivery{Tag: msg.DeliveryTag, Body: msg.Body}, nil
}

// Ack acknowledges a single delivery
func (c *amqpConn) Ack(tag uint64) error {
	if err := c.ch.Ack(tag, false); err != nil {
		return fmt.Errorf("failed to ack delivery %d: %w", tag, err)
	}
	return nil
}

// Close closes the channel and the underlying connection
func (c *amqpConn) Close() error {
	c.ch.Close()
	return c.conn.Close()
}
