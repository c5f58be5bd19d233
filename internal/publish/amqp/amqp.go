// Package amqp implements publish.Publisher over RabbitMQ via
// github.com/streadway/amqp, declaring a single durable queue and
// publishing the tagged JSON envelope from internal/publish to it.
package amqp

import (
	"context"

	"github.com/pkg/errors"
	"github.com/streadway/amqp"

	"github.com/Stroniax/rabbit-eye/internal/publish"
	"github.com/Stroniax/rabbit-eye/internal/table"
)

// Publisher publishes change envelopes to a single durable,
// non-exclusive, non-auto-deleted RabbitMQ queue.
type Publisher struct {
	conn    *amqp.Connection
	channel *amqp.Channel
	queue   string
}

// Dial connects to url, opens a channel, and declares queue durable.
// The connection and channel are owned by the returned Publisher and
// released by Close.
func Dial(url, queue string) (*Publisher, error) {
	conn, err := amqp.Dial(url)
	if err != nil {
		return nil, errors.Wrap(err, "dial broker")
	}

	ch, err := conn.Channel()
	if err != nil {
		conn.Close()
		return nil, errors.Wrap(err, "open channel")
	}

	if _, err := ch.QueueDeclare(
		queue,
		true,  // durable
		false, // auto-delete
		false, // exclusive
		false, // no-wait
		nil,
	); err != nil {
		ch.Close()
		conn.Close()
		return nil, errors.Wrapf(err, "declare queue %q", queue)
	}

	return &Publisher{conn: conn, channel: ch, queue: queue}, nil
}

var _ publish.Publisher = (*Publisher)(nil)

// Publish encodes change and publishes it to the queue given to Dial.
func (p *Publisher) Publish(ctx context.Context, change table.Change[string]) error {
	body, err := publish.Encode(change)
	if err != nil {
		return err
	}

	// streadway/amqp predates context-aware publishing; ctx is honored
	// by returning early if it is already done before we hand off to
	// the channel, matching the cooperative-cancellation style used
	// elsewhere in this repo.
	if err := ctx.Err(); err != nil {
		return errors.Wrap(err, "publish cancelled")
	}

	err = p.channel.Publish(
		"",      // default exchange
		p.queue, // routed directly to the queue by name
		false,   // mandatory
		false,   // immediate
		amqp.Publishing{
			ContentType:  "application/json",
			DeliveryMode: amqp.Persistent,
			Body:         body,
		},
	)
	if err != nil {
		return errors.Wrapf(err, "publish %s %s", change.Kind, change.Key)
	}
	return nil
}

// Close shuts down the channel and the underlying connection.
func (p *Publisher) Close() error {
	var firstErr error
	if p.channel != nil {
		if err := p.channel.Close(); err != nil {
			firstErr = errors.Wrap(err, "close channel")
		}
	}
	if p.conn != nil {
		if err := p.conn.Close(); err != nil && firstErr == nil {
			firstErr = errors.Wrap(err, "close connection")
		}
	}
	return firstErr
}
