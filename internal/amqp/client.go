// Package amqp publishes and consumes feed.degraded events on RabbitMQ.
package amqp

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/rabbitmq/amqp091-go"

	applog "intentdash/internal/log"
)

const (
	// EventFeedDegraded is the message type stamped on every publish.
	EventFeedDegraded = "feed.degraded"

	maxFailures    = 5
	openTimeout    = 30 * time.Second
	publishTimeout = 5 * time.Second
	maxBackoff     = 30 * time.Second
)

// Client publishes and consumes feed events on a durable direct exchange
// bound to one queue. The connection is re-dialed after connection errors;
// repeated publish failures open a breaker so render paths never wait on a
// dead broker.
type Client struct {
	url      string
	exchange string
	queue    string
	logger   *slog.Logger
	breaker  *breaker

	mu   sync.Mutex
	conn *amqp091.Connection
	ch   *amqp091.Channel
}

// NewClient dials the broker and declares the exchange, queue and binding.
func NewClient(url, exchange, queue string) (*Client, error) {
	c := newClient(url, exchange, queue)
	if err := c.ensureChannel(); err != nil {
		return nil, err
	}
	return c, nil
}

func newClient(url, exchange, queue string) *Client {
	return &Client{
		url:      url,
		exchange: exchange,
		queue:    queue,
		logger:   applog.Wrap(slog.Default(), applog.ComponentAMQP).Logger,
		breaker:  newBreaker(maxFailures, openTimeout),
	}
}

// ensureChannel returns the open channel, dialing and declaring the topology
// when there is none.
func (c *Client) ensureChannel() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.ch != nil && !c.ch.IsClosed() {
		return nil
	}
	c.closeLocked()

	conn, err := amqp091.Dial(c.url)
	if err != nil {
		return fmt.Errorf("dial AMQP: %w", err)
	}
	ch, err := conn.Channel()
	if err != nil {
		_ = conn.Close()
		return fmt.Errorf("open channel: %w", err)
	}
	if err := declareTopology(ch, c.exchange, c.queue); err != nil {
		_ = ch.Close()
		_ = conn.Close()
		return err
	}
	c.conn, c.ch = conn, ch
	return nil
}

// declareTopology sets up a durable direct exchange routed by queue name.
func declareTopology(ch *amqp091.Channel, exchange, queue string) error {
	if err := ch.ExchangeDeclare(exchange, amqp091.ExchangeDirect, true, false, false, false, nil); err != nil {
		return fmt.Errorf("declare exchange %s: %w", exchange, err)
	}
	if _, err := ch.QueueDeclare(queue, true, false, false, false, nil); err != nil {
		return fmt.Errorf("declare queue %s: %w", queue, err)
	}
	if err := ch.QueueBind(queue, queue, exchange, false, nil); err != nil {
		return fmt.Errorf("bind queue %s: %w", queue, err)
	}
	return nil
}

func (c *Client) channel() *amqp091.Channel {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.ch
}

func (c *Client) closeLocked() error {
	var err error
	if c.ch != nil {
		_ = c.ch.Close()
		c.ch = nil
	}
	if c.conn != nil {
		err = c.conn.Close()
		c.conn = nil
	}
	return err
}

func (c *Client) reset() {
	c.mu.Lock()
	defer c.mu.Unlock()
	_ = c.closeLocked()
}

// PublishFeedDegraded sends one feed.degraded event. It fails fast with
// ErrCircuitOpen while the breaker is open.
func (c *Client) PublishFeedDegraded(ctx context.Context, msg *FeedDegradedMessage) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if !c.breaker.allow() {
		return ErrCircuitOpen
	}

	body, err := msg.ToJSON()
	if err != nil {
		return fmt.Errorf("marshal message: %w", err)
	}
	if err := c.ensureChannel(); err != nil {
		c.breaker.failure()
		return err
	}

	ctx, cancel := context.WithTimeout(ctx, publishTimeout)
	defer cancel()
	err = c.channel().PublishWithContext(ctx, c.exchange, c.queue, false, false, amqp091.Publishing{
		ContentType:  "application/json",
		DeliveryMode: amqp091.Persistent,
		Timestamp:    msg.Timestamp,
		Type:         EventFeedDegraded,
		Body:         body,
	})
	if err != nil {
		c.breaker.failure()
		if isConnectionError(err) {
			c.reset()
		}
		return fmt.Errorf("publish %s: %w", EventFeedDegraded, err)
	}
	c.breaker.success()

	c.logger.DebugContext(ctx, "Published feed degraded event",
		"feed", msg.Feed,
		"endpoint", msg.Endpoint,
		"exchange", c.exchange)
	return nil
}

// ConsumeFeedEvents delivers feed events to handler until ctx is done,
// reconnecting with exponential backoff when the broker goes away. A message
// that does not decode is dropped; one the handler rejects is requeued.
func (c *Client) ConsumeFeedEvents(ctx context.Context, handler func(*FeedDegradedMessage) error) error {
	for attempt := 0; ; {
		err := c.consume(ctx, handler)
		if ctx.Err() != nil {
			return ctx.Err()
		}
		if err != nil && !isConnectionError(err) {
			return err
		}

		c.reset()
		wait := exponentialBackoff(attempt)
		attempt++
		c.logger.WarnContext(ctx, "Feed event consumer disconnected, reconnecting", "error", err, "backoff", wait)

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(wait):
		}
		if err := c.ensureChannel(); err != nil {
			c.logger.WarnContext(ctx, "Reconnect failed", "error", err)
			continue
		}
		attempt = 0
	}
}

func (c *Client) consume(ctx context.Context, handler func(*FeedDegradedMessage) error) error {
	ch := c.channel()
	if ch == nil {
		return amqp091.ErrClosed
	}
	deliveries, err := ch.Consume(c.queue, "", false, false, false, false, nil)
	if err != nil {
		return fmt.Errorf("consume %s: %w", c.queue, err)
	}
	c.logger.InfoContext(ctx, "Consuming feed events", "queue", c.queue)

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case d, ok := <-deliveries:
			if !ok {
				return amqp091.ErrClosed
			}
			c.deliver(ctx, d, handler)
		}
	}
}

func (c *Client) deliver(ctx context.Context, d amqp091.Delivery, handler func(*FeedDegradedMessage) error) {
	msg, err := FeedDegradedMessageFromJSON(d.Body)
	if err != nil {
		c.logger.ErrorContext(ctx, "Dropping undecodable feed event", "error", err)
		_ = d.Nack(false, false)
		return
	}
	if err := handler(msg); err != nil {
		c.logger.ErrorContext(ctx, "Feed event handler failed", "error", err, "feed", msg.Feed)
		_ = d.Nack(false, true)
		return
	}
	_ = d.Ack(false)
}

// Close releases the channel and connection.
func (c *Client) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.closeLocked()
}

// exponentialBackoff returns 1s, 2s, 4s... capped at maxBackoff.
func exponentialBackoff(attempt int) time.Duration {
	if attempt >= 5 {
		return maxBackoff
	}
	return min(time.Second<<attempt, maxBackoff)
}

func isConnectionError(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, amqp091.ErrClosed) {
		return true
	}
	msg := strings.ToLower(err.Error())
	for _, s := range []string{"connection refused", "connection closed", "eof", "broken pipe", "closed network connection", "channel/connection is not open"} {
		if strings.Contains(msg, s) {
			return true
		}
	}
	return false
}
