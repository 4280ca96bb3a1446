// Package broker abstracts the message broker behind a connection-acquisition
// interface so the per-request open/act/close strategy can later be swapped
// for pooled or long-lived connections without changing call sites.
package broker

import (
	"context"
	"fmt"
)

// Dialer opens broker connections. Callers acquire a fresh connection per
// operation and close it before returning.
type Dialer interface {
	Dial() (Conn, error)
}

// Conn is a single broker connection scoped to one request
type Conn interface {
	// DeclareQueue idempotently declares a durable queue
	DeclareQueue(name string) error

	// Publish sends a persistent message to the named queue
	Publish(ctx context.Context, queue string, body []byte) error

	// Get fetches a single message with manual acknowledgment. It returns
	// nil when the queue reports empty.
	Get(queue string) (*Delivery, error)

	// Ack acknowledges a delivery by tag
	Ack(tag uint64) error

	// Close releases the connection
	Close() error
}

// Delivery is one message fetched from a queue, awaiting acknowledgment
type Delivery struct {
	Tag  uint64
	Body []byte
}

// QueueName returns the durable queue name for a user, e.g. "user_queue_2"
func QueueName(userID int) string {
	return fmt.Sprintf("user_queue_%d", userID)
}
