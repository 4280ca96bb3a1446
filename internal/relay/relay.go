package relay

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"time"

	"mailrelay/internal/broker"
	"mailrelay/internal/store"

	"github.com/google/uuid"
)

// ErrBrokerUnavailable is returned when the broker connection, declaration,
// publish or fetch fails. Nothing is retried; a failed publish drops the
// message from the caller's perspective.
var ErrBrokerUnavailable = errors.New("broker unavailable")

// timestampLayout matches the original wire format
const timestampLayout = "2006-01-02 15:04:05"

// Message is the broker-queue payload. It exists only between publish and
// drain; SenderName is resolved from the user store at read time, not stored.
type Message struct {
	ID         string `json:"id"`
	SenderID   int    `json:"sender_id"`
	ReceiverID int    `json:"receiver_id"`
	Subject    string `json:"subject"`
	Content    string `json:"content"`
	Timestamp  string `json:"timestamp"`
	SenderName string `json:"sender_name,omitempty"`
}

// Relay moves messages between users via per-recipient durable queues
type Relay struct {
	store  store.Store
	dialer broker.Dialer
}

// NewRelay creates a relay over the given user store and broker dialer
func NewRelay(st store.Store, dialer broker.Dialer) *Relay {
	return &Relay{store: st, dialer: dialer}
}

// Send publishes a message to the receiver's durable queue. Both participants
// must exist in the store; that is checked before any broker interaction.
func (r *Relay) Send(ctx context.Context, senderID, receiverID int, subject, content string) (*Message, error) {
	if _, err := r.store.GetByID(senderID); err != nil {
		return nil, fmt.Errorf("sender %d: %w", senderID, err)
	}
	if _, err := r.store.GetByID(receiverID); err != nil {
		return nil, fmt.Errorf("receiver %d: %w", receiverID, err)
	}

	msg := &Message{
		ID:         uuid.NewString(),
		SenderID:   senderID,
		ReceiverID: receiverID,
		Subject:    subject,
		Content:    content,
		Timestamp:  time.Now().Format(timestampLayout),
	}

	body, err := json.Marshal(msg)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal message: %w", err)
	}

	conn, err := r.dialer.Dial()
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrBrokerUnavailable, err)
	}
	defer conn.Close()

	queue := broker.QueueName(receiverID)
	if err := conn.DeclareQueue(queue); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrBrokerUnavailable, err)
	}
	if err := conn.Publish(ctx, queue, body); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrBrokerUnavailable, err)
	}

	return msg, nil
}

// CheckAll drains the user's queue: it repeatedly fetches and immediately
// acknowledges messages until the queue reports empty, decorating each with
// the sender's name resolved at read time. Acknowledgment happens before the
// message is handed to the caller, so delivery is at most once. An empty
// queue yields an empty list, not an error.
func (r *Relay) CheckAll(ctx context.Context, userID int) ([]Message, error) {
	if _, err := r.store.GetByID(userID); err != nil {
		return nil, fmt.Errorf("user %d: %w", userID, err)
	}

	conn, err := r.dialer.Dial()
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrBrokerUnavailable, err)
	}
	defer conn.Close()

	queue := broker.QueueName(userID)
	if err := conn.DeclareQueue(queue); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrBrokerUnavailable, err)
	}

	messages := []Message{}
	for {
		delivery, err := conn.Get(queue)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrBrokerUnavailable, err)
		}
		if delivery == nil {
			break // queue is empty
		}

		if err := conn.Ack(delivery.Tag); err != nil {
			return nil, fmt.Errorf("%w: %v", ErrBrokerUnavailable, err)
		}

		var msg Message
		if err := json.Unmarshal(delivery.Body, &msg); err != nil {
			// Already acked; a corrupt payload is dropped, not redelivered.
			log.Printf("Dropping unparsable message on %s: %v", queue, err)
			continue
		}

		if sender, err := r.store.GetByID(msg.SenderID); err == nil {
			msg.SenderName = sender.Name
		}

		messages = append(messages, msg)
	}

	return messages, nil
}
