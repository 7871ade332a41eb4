// Package rabbitmq publishes harvested records to an AMQP exchange.
package rabbitmq

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/fwojciec/snipminer"
	amqp "github.com/rabbitmq/amqp091-go"
)

// Message types carried in the AMQP Type property and the message body.
const (
	TypeSnippet = "snippet"
	TypeGist    = "gist"
)

// Config describes the broker topology the Publisher declares.
type Config struct {
	URL        string
	Exchange   string
	RoutingKey string
	QueueName  string
}

// Channel is the subset of *amqp.Channel used for publishing.
type Channel interface {
	PublishWithContext(ctx context.Context, exchange, key string, mandatory, immediate bool, msg amqp.Publishing) error
	Close() error
}

// Message is the JSON body of every published record.
type Message struct {
	Type      string          `json:"type"`
	ID        string          `json:"id"`
	Record    json.RawMessage `json:"record"`
	Timestamp time.Time       `json:"timestamp"`
}

// Ensure Publisher implements the writer interfaces at compile time.
var (
	_ snipminer.SnippetWriter = (*Publisher)(nil)
	_ snipminer.GistWriter    = (*Publisher)(nil)
)

// Publisher writes each record as one persistent JSON message.
type Publisher struct {
	conn       *amqp.Connection
	channel    Channel
	exchange   string
	routingKey string
	logger     *slog.Logger

	// Now returns the message timestamp. Defaults to time.Now.
	Now func() time.Time
}

// NewPublisher creates a Publisher on an already open channel.
func NewPublisher(ch Channel, exchange, routingKey string, logger *slog.Logger) *Publisher {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Publisher{
		channel:    ch,
		exchange:   exchange,
		routingKey: routingKey,
		logger:     logger,
		Now:        time.Now,
	}
}

// Dial connects to the broker, declares a durable direct exchange and a
// durable queue bound to it, and returns a Publisher on that topology.
func Dial(cfg Config, logger *slog.Logger) (*Publisher, error) {
	conn, err := amqp.Dial(cfg.URL)
	if err != nil {
		return nil, fmt.Errorf("connect to rabbitmq: %w", err)
	}

	ch, err := conn.Channel()
	if err != nil {
		conn.Close()
		return nil, fmt.Errorf("open channel: %w", err)
	}

	if err := declare(ch, cfg); err != nil {
		ch.Close()
		conn.Close()
		return nil, err
	}

	p := NewPublisher(ch, cfg.Exchange, cfg.RoutingKey, logger)
	p.conn = conn

	p.logger.Info("connected to rabbitmq",
		"exchange", cfg.Exchange,
		"queue", cfg.QueueName,
		"routing_key", cfg.RoutingKey,
	)

	return p, nil
}

func declare(ch *amqp.Channel, cfg Config) error {
	if err := ch.ExchangeDeclare(cfg.Exchange, "direct", true, false, false, false, nil); err != nil {
		return fmt.Errorf("declare exchange: %w", err)
	}
	q, err := ch.QueueDeclare(cfg.QueueName, true, false, false, false, nil)
	if err != nil {
		return fmt.Errorf("declare queue: %w", err)
	}
	if err := ch.QueueBind(q.Name, cfg.RoutingKey, cfg.Exchange, false, nil); err != nil {
		return fmt.Errorf("bind queue: %w", err)
	}
	return nil
}

// WriteSnippets publishes one message per snippet, stopping at the first failure.
func (p *Publisher) WriteSnippets(ctx context.Context, snippets []*snipminer.CodeSnippet) error {
	for _, s := range snippets {
		if err := p.publish(ctx, TypeSnippet, s.SnippetID, s); err != nil {
			return err
		}
	}
	return nil
}

// WriteGists publishes one message per gist, stopping at the first failure.
func (p *Publisher) WriteGists(ctx context.Context, gists []*snipminer.Gist) error {
	for _, g := range gists {
		if err := p.publish(ctx, TypeGist, g.ID, g); err != nil {
			return err
		}
	}
	return nil
}

func (p *Publisher) publish(ctx context.Context, typ, id string, record any) error {
	msg, err := p.Encode(typ, id, record)
	if err != nil {
		return err
	}

	if err := p.channel.PublishWithContext(ctx, p.exchange, p.routingKey, false, false, msg); err != nil {
		return fmt.Errorf("publish %s %s: %w", typ, id, err)
	}

	p.logger.Debug("published record", "type", typ, "id", id)
	return nil
}

// Encode builds the AMQP publishing for a record.
func (p *Publisher) Encode(typ, id string, record any) (amqp.Publishing, error) {
	raw, err := json.Marshal(record)
	if err != nil {
		return amqp.Publishing{}, fmt.Errorf("marshal %s %s: %w", typ, id, err)
	}

	now := p.Now().UTC()
	body, err := json.Marshal(Message{Type: typ, ID: id, Record: raw, Timestamp: now})
	if err != nil {
		return amqp.Publishing{}, fmt.Errorf("marshal message: %w", err)
	}

	return amqp.Publishing{
		DeliveryMode: amqp.Persistent,
		ContentType:  "application/json",
		MessageId:    id,
		Type:         typ,
		Timestamp:    now,
		Body:         body,
	}, nil
}

// Close closes the channel and, when the Publisher owns it, the connection.
func (p *Publisher) Close() error {
	if p.channel != nil {
		p.channel.Close()
	}
	if p.conn != nil {
		return p.conn.Close()
	}
	return nil
}
