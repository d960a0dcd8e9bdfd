// Package amqp publishes and consumes advisory events over RabbitMQ.
package amqp

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/rabbitmq/amqp091-go"
)

// Circuit breaker states.
const (
	StateClosed int32 = iota
	StateOpen
	StateHalfOpen
)

const (
	maxFailures    = 5
	openTimeout    = 30 * time.Second
	publishTimeout = 5 * time.Second
	maxBackoff     = 30 * time.Second
	dialTimeout    = 5 * time.Second
	heartbeat      = 10 * time.Second
)

var (
	errDeliveriesClosed = errors.New("delivery channel closed")
	errNotConnected     = errors.New("AMQP channel not connected")
)

// Client connects lazily and reconnects after connection errors. Publishing
// is guarded by a circuit breaker so a dead broker never slows requests
// down for long.
type Client struct {
	url          string
	exchangeName string
	queueName    string

	mu      sync.Mutex
	conn    *amqp091.Connection
	channel *amqp091.Channel

	// live mirrors channel for readers that must not wait on mu.
	live         atomic.Pointer[amqp091.Channel]
	reconnecting atomic.Bool

	state        int32
	failureCount int64
	breakerMu    sync.Mutex
	lastFailure  time.Time
}

func NewClient(url, exchangeName, queueName string) *Client {
	return &Client{url: url, exchangeName: exchangeName, queueName: queueName}
}

// Connect dials the broker and declares the topology if not connected yet.
func (c *Client) Connect() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	_, err := c.channelLocked()
	return err
}

func (c *Client) channelLocked() (*amqp091.Channel, error) {
	if c.channel != nil && !c.channel.IsClosed() {
		return c.channel, nil
	}
	c.resetLocked()

	conn, err := amqp091.DialConfig(c.url, amqp091.Config{
		Heartbeat: heartbeat,
		Locale:    "en_US",
		Dial:      amqp091.DefaultDial(dialTimeout),
	})
	if err != nil {
		return nil, fmt.Errorf("dial AMQP: %w", err)
	}
	channel, err := conn.Channel()
	if err != nil {
		conn.Close()
		return nil, fmt.Errorf("open channel: %w", err)
	}
	if err := setup(channel, c.exchangeName, c.queueName); err != nil {
		channel.Close()
		conn.Close()
		return nil, fmt.Errorf("setup exchange and queue: %w", err)
	}
	c.conn, c.channel = conn, channel
	c.live.Store(channel)
	return channel, nil
}

// Ready reports whether the current channel is open. It never dials; when
// the channel is down it starts one background reconnect and reports the
// client as not ready.
func (c *Client) Ready(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if ch := c.live.Load(); ch != nil && !ch.IsClosed() {
		return nil
	}
	if c.reconnecting.CompareAndSwap(false, true) {
		go func() {
			defer c.reconnecting.Store(false)
			if err := c.Connect(); err != nil {
				slog.Debug("AMQP reconnect failed", "error", err)
			}
		}()
	}
	return errNotConnected
}

func setup(ch *amqp091.Channel, exchange, queue string) error {
	if err := ch.ExchangeDeclare(exchange, "direct", true, false, false, false, nil); err != nil {
		return fmt.Errorf("declare exchange: %w", err)
	}
	if _, err := ch.QueueDeclare(queue, true, false, false, false, nil); err != nil {
		return fmt.Errorf("declare queue: %w", err)
	}
	// Direct exchange: the routing key is the queue name.
	if err := ch.QueueBind(queue, queue, exchange, false, nil); err != nil {
		return fmt.Errorf("bind queue: %w", err)
	}
	return nil
}

func (c *Client) resetLocked() {
	c.live.Store(nil)
	if c.channel != nil {
		_ = c.channel.Close()
		c.channel = nil
	}
	if c.conn != nil {
		_ = c.conn.Close()
		c.conn = nil
	}
}

func (c *Client) isCircuitOpen() bool {
	switch atomic.LoadInt32(&c.state) {
	case StateOpen:
		c.breakerMu.Lock()
		last := c.lastFailure
		c.breakerMu.Unlock()
		if time.Since(last) > openTimeout {
			atomic.StoreInt32(&c.state, StateHalfOpen)
			return false
		}
		return true
	default:
		return false
	}
}

func (c *Client) recordSuccess() {
	atomic.StoreInt64(&c.failureCount, 0)
	atomic.StoreInt32(&c.state, StateClosed)
}

func (c *Client) recordFailure() {
	c.breakerMu.Lock()
	c.lastFailure = time.Now()
	c.breakerMu.Unlock()
	if atomic.AddInt64(&c.failureCount, 1) >= maxFailures || atomic.LoadInt32(&c.state) == StateHalfOpen {
		atomic.StoreInt32(&c.state, StateOpen)
	}
}

// PublishAdvisoryEvent sends ev as a persistent JSON message.
func (c *Client) PublishAdvisoryEvent(ctx context.Context, ev *AdvisoryEvent) error {
	if c.isCircuitOpen() {
		return fmt.Errorf("circuit breaker is open, dropping event %s", ev.ID)
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	body, err := ev.ToJSON()
	if err != nil {
		return fmt.Errorf("marshal message: %w", err)
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	ch, err := c.channelLocked()
	if err != nil {
		c.recordFailure()
		return err
	}

	ctx, cancel := context.WithTimeout(ctx, publishTimeout)
	defer cancel()

	err = ch.PublishWithContext(ctx, c.exchangeName, c.queueName, false, false, amqp091.Publishing{
		ContentType:  "application/json",
		DeliveryMode: amqp091.Persistent,
		MessageId:    ev.ID,
		Timestamp:    ev.Timestamp,
		Body:         body,
	})
	if err != nil {
		if isConnectionError(err) {
			c.resetLocked()
		}
		c.recordFailure()
		return fmt.Errorf("publish message: %w", err)
	}
	c.recordSuccess()

	slog.DebugContext(ctx, "Published advisory event",
		"event_id", ev.ID,
		"outcome", ev.Outcome,
		"exchange", c.exchangeName,
		"queue", c.queueName)
	return nil
}

// Handler processes one event. Returning an error requeues the message.
type Handler func(ctx context.Context, ev *AdvisoryEvent) error

// ConsumeAdvisoryEvents consumes until ctx is cancelled, reconnecting with
// exponential backoff after connection errors.
func (c *Client) ConsumeAdvisoryEvents(ctx context.Context, handler Handler) error {
	attempt := 0
	for {
		err := c.consumeOnce(ctx, handler, func() { attempt = 0 })
		if ctx.Err() != nil {
			return nil
		}
		if !isConnectionError(err) {
			return err
		}
		wait := exponentialBackoff(attempt)
		attempt++
		slog.WarnContext(ctx, "AMQP connection lost, reconnecting", "error", err, "backoff", wait.String())
		select {
		case <-ctx.Done():
			return nil
		case <-time.After(wait):
		}
	}
}

func (c *Client) consumeOnce(ctx context.Context, handler Handler, connected func()) error {
	c.mu.Lock()
	ch, err := c.channelLocked()
	c.mu.Unlock()
	if err != nil {
		return err
	}

	msgs, err := ch.Consume(c.queueName, "", false, false, false, false, nil)
	if err != nil {
		return fmt.Errorf("start consuming: %w", err)
	}
	connected()
	slog.InfoContext(ctx, "Started consuming advisory events", "queue", c.queueName)

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case delivery, ok := <-msgs:
			if !ok {
				return errDeliveriesClosed
			}
			ev, err := AdvisoryEventFromJSON(delivery.Body)
			if err != nil {
				slog.ErrorContext(ctx, "Failed to unmarshal advisory event", "error", err)
				_ = delivery.Nack(false, false)
				continue
			}
			if err := handler(ctx, ev); err != nil {
				slog.ErrorContext(ctx, "Failed to handle advisory event", "error", err, "event_id", ev.ID)
				_ = delivery.Nack(false, true)
				continue
			}
			_ = delivery.Ack(false)
		}
	}
}

func (c *Client) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.live.Store(nil)
	var err error
	if c.channel != nil {
		_ = c.channel.Close()
		c.channel = nil
	}
	if c.conn != nil {
		err = c.conn.Close()
		c.conn = nil
	}
	return err
}

func exponentialBackoff(attempt int) time.Duration {
	if attempt > 5 {
		return maxBackoff
	}
	d := time.Second << attempt
	if d > maxBackoff {
		return maxBackoff
	}
	return d
}

func isConnectionError(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, amqp091.ErrClosed) || errors.Is(err, errDeliveriesClosed) {
		return true
	}
	msg := strings.ToLower(err.Error())
	for _, s := range []string{"connection", "eof", "broken pipe", "dial"} {
		if strings.Contains(msg, s) {
			return true
		}
	}
	return false
}
