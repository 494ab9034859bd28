package timing

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/nats-io/nats.go"
	"github.com/nats-io/nats.go/jetstream"
)

// NATSSink publishes timing records to a JetStream subject so external
// consumers (dashboards, cost accounting) can tail invocation history.
type NATSSink struct {
	conn    *nats.Conn
	js      jetstream.JetStream
	subject string
}

// NewNATSSink connects to NATS and prepares a JetStream publisher.
func NewNATSSink(url, subject string) (*NATSSink, error) {
	if subject == "" {
		return nil, fmt.Errorf("timing subject is required")
	}

	conn, err := nats.Connect(url)
	if err != nil {
		return nil, fmt.Errorf("connect to NATS: %w", err)
	}

	js, err := jetstream.New(conn)
	if err != nil {
		conn.Close()
		return nil, fmt.Errorf("create JetStream context: %w", err)
	}

	slog.Info("NATS timing sink initialized", "url", url, "subject", subject)
	return &NATSSink{conn: conn, js: js, subject: subject}, nil
}

// Report publishes the record as JSON.
func (s *NATSSink) Report(ctx context.Context, rec Record) error {
	data, err := json.Marshal(rec)
	if err != nil {
		return fmt.Errorf("marshal timing record: %w", err)
	}
	if _, err := s.js.Publish(ctx, s.subject, data); err != nil {
		return fmt.Errorf("publish timing record: %w", err)
	}
	return nil
}

// Close drains and closes the connection.
func (s *NATSSink) Close() error {
	if s.conn == nil {
		return nil
	}
	if err := s.conn.Drain(); err != nil {
		s.conn.Close()
		return fmt.Errorf("drain NATS connection: %w", err)
	}
	return nil
}
