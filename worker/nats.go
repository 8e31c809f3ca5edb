package main

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"time"

	"github.com/nats-io/nats.go"

	"github.com/imkonsowa/waiter-prompts/config"
)

type Client struct {
	conn *nats.Conn
	js   nats.JetStreamContext
}

func NewNats(cfg *config.Config) (*Client, error) {
	nc, err := nats.Connect(cfg.Nats.ConnStr())
	if err != nil {
		return nil, err
	}

	js, err := nc.JetStream()
	if err != nil {
		nc.Close()
		return nil, err
	}

	return &Client{
		conn: nc,
		js:   js,
	}, nil
}

// EnsureStream creates the stream holding the prompt subjects unless it
// already exists.
func (c *Client) EnsureStream(cfg config.Nats) error {
	_, err := c.js.AddStream(&nats.StreamConfig{
		Name:      cfg.Stream,
		Subjects:  []string{cfg.RequestsSubject, cfg.PromptsSubject},
		Storage:   nats.FileStorage,
		Retention: nats.LimitsPolicy,
		MaxAge:    time.Hour * 24 * 7,
	})
	if err != nil && !errors.Is(err, nats.ErrStreamNameAlreadyInUse) {
		return err
	}
	return nil
}

func (c *Client) Publish(subject string, data []byte) error {
	_, err := c.js.Publish(subject, data)
	return err
}

func (c *Client) Close() {
	c.conn.Close()
}

func (c *Client) Subscribe(ctx context.Context, subject string, handler func(m *nats.Msg)) error {
	subscription, err := c.js.PullSubscribe(subject, strings.ReplaceAll(subject+".consumer", ".", "-"), nats.ManualAck())
	if err != nil {
		return err
	}

	for {
		select {
		case <-ctx.Done():
			if err := subscription.Unsubscribe(); err != nil {
				slog.Warn("failed to unsubscribe from subject", "subject", subject, "error", err)
			}

			return nil
		default:
			msgs, err := subscription.Fetch(4, nats.MaxWait(200*time.Millisecond))
			if err != nil && !errors.Is(err, nats.ErrTimeout) && !errors.Is(err, context.DeadlineExceeded) {
				return err
			}

			for _, msg := range msgs {
				handler(msg)
			}
		}
	}
}
