package storage

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/nats-io/nats.go"

	"heatmap_loader/internal/heatmap"
)

// NATSPublisher is a fan-out sink: every row is published as JSON on a
// per-aircraft subject for live consumers. Publish only; nothing in
// this module subscribes.
type NATSPublisher struct {
	conn *nats.Conn
}

// OpenNATS connects to a NATS server.
func OpenNATS(url string) (*NATSPublisher, error) {
	if url == "" {
		url = nats.DefaultURL
	}
	conn, err := nats.Connect(url, nats.Name("heatmap_loader"))
	if err != nil {
		return nil, fmt.Errorf("connect nats: %w", err)
	}
	return &NATSPublisher{conn: conn}, nil
}

// Close drains and closes the connection.
func (p *NATSPublisher) Close() error {
	return p.conn.Drain()
}

// subject builds the per-aircraft subject. The "~" prefix of non-ICAO
// addresses is dropped so the subject stays token-safe.
func subject(hex string) string {
	return "heatmap.positions." + strings.TrimPrefix(hex, "~")
}

// AppendRows publishes a batch and flushes before returning so a
// reported success means the server has the messages.
func (p *NATSPublisher) AppendRows(ctx context.Context, rows []heatmap.Record) error {
	for _, r := range rows {
		payload, err := json.Marshal(r)
		if err != nil {
			return fmt.Errorf("marshal row: %w", err)
		}
		if err := p.conn.Publish(subject(r.Hex), payload); err != nil {
			return fmt.Errorf("publish row: %w", err)
		}
	}
	if err := p.conn.FlushWithContext(ctx); err != nil {
		return fmt.Errorf("flush: %w", err)
	}
	return nil
}
