package events

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/nats-io/nats.go"
)

// NATSPublisher publishes JSON-encoded events over a connection owned by
// someone else; closing the connection is the owner's job.
type NATSPublisher struct {
	conn *nats.Conn
}

func NewConnPublisher(nc *nats.Conn) *NATSPublisher {
	return &NATSPublisher{conn: nc}
}

// Publish returns once the client has accepted the message; delivery to
// subscribers is not confirmed.
func (p *NATSPublisher) Publish(ctx context.Context, topic string, event any) error {
	if p.conn == nil {
		return ErrNotConnected
	}
	if err := ctx.Err(); err != nil {
		return err
	}
	data, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("marshaling event: %w", err)
	}
	if err := p.conn.Publish(topic, data); err != nil {
		return fmt.Errorf("publishing to %s: %w", topic, err)
	}
	return nil
}
