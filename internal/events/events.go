// Package events publishes execution outcomes so other tooling can follow what
// the console did.
package events

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/go-logr/logr"
	"github.com/nats-io/nats.go"
)

// DefaultSubject is the subject execution events are published on.
const DefaultSubject = "cloudweave.executions"

// closeFlushTimeout bounds how long Close waits for buffered events.
const closeFlushTimeout = 2 * time.Second

// ExecutionEvent describes one finished command execution.
type ExecutionEvent struct {
	ID          string        `json:"id"`
	Kind        string        `json:"kind"`
	Success     bool          `json:"success"`
	Explanation string        `json:"explanation,omitempty"`
	Error       string        `json:"error,omitempty"`
	Duration    time.Duration `json:"duration_ns"`
	FinishedAt  time.Time     `json:"finished_at"`
}

// Sink receives execution events.
type Sink interface {
	Publish(ctx context.Context, ev ExecutionEvent) error
}

// NopSink discards events.
type NopSink struct{}

// Publish implements Sink.
func (NopSink) Publish(context.Context, ExecutionEvent) error { return nil }

// Publisher sends events to a NATS subject.
type Publisher struct {
	nc      *nats.Conn
	subject string
	logger  logr.Logger
}

// NewPublisher connects to the NATS server at url.
func NewPublisher(url, subject string, logger logr.Logger) (*Publisher, error) {
	if subject == "" {
		subject = DefaultSubject
	}
	opts := []nats.Option{
		nats.Name("cloudweave"),
		nats.MaxReconnects(-1),
		nats.ReconnectWait(2 * time.Second),
		nats.DisconnectErrHandler(func(_ *nats.Conn, err error) {
			if err != nil {
				logger.Info("nats disconnected", "error", err.Error())
			}
		}),
		nats.ReconnectHandler(func(nc *nats.Conn) {
			logger.Info("nats reconnected", "url", nc.ConnectedUrl())
		}),
	}
	nc, err := nats.Connect(url, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to nats: %w", err)
	}
	return &Publisher{nc: nc, subject: subject, logger: logger}, nil
}

// Subject returns the subject events are published on.
func (p *Publisher) Subject() string {
	return p.subject
}

// Publish implements Sink.
func (p *Publisher) Publish(_ context.Context, ev ExecutionEvent) error {
	if p == nil || p.nc == nil || p.nc.IsClosed() {
		return fmt.Errorf("nats not connected")
	}
	payload, err := json.Marshal(ev)
	if err != nil {
		return fmt.Errorf("failed to encode event: %w", err)
	}
	return p.nc.Publish(p.subject, payload)
}

// Close flushes buffered events to the server, then closes the connection.
func (p *Publisher) Close() {
	if p.nc == nil {
		return
	}
	if !p.nc.IsClosed() {
		if err := p.nc.FlushTimeout(closeFlushTimeout); err != nil {
			p.logger.Info("nats flush on close failed", "error", err.Error())
		}
	}
	p.nc.Close()
}
