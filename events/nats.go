package events

import (
	"context"
	"fmt"

	"github.com/nats-io/nats.go"
)

type natsConn interface {
	Publish(subject string, data []byte) error
	Drain() error
}

// NATS publishes each event on "<prefix>.<type>", e.g. yatube.post.created.
type NATS struct {
	conn   natsConn
	prefix string
}

func NewNATS(url, prefix string) (*NATS, error) {
	conn, err := nats.Connect(url, nats.Name("yatube"), nats.MaxReconnects(-1))
	if err != nil {
		return nil, fmt.Errorf("connect to %s: %w", url, err)
	}
	return &NATS{conn: conn, prefix: prefix}, nil
}

func (n *NATS) subject(t Type) string {
	if n.prefix == "" {
		return string(t)
	}
	return n.prefix + "." + string(t)
}

func (n *NATS) Publish(_ context.Context, e Event) error {
	data, err := e.Marshal()
	if err != nil {
		return fmt.Errorf("marshal %s: %w", e.Type, err)
	}
	if err := n.conn.Publish(n.subject(e.Type), data); err != nil {
		return fmt.Errorf("publish %s: %w", e.Type, err)
	}
	return nil
}

func (n *NATS) Close() error {
	return n.conn.Drain()
}
