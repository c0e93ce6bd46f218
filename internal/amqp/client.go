package amqp

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/rabbitmq/amqp091-go"

	applog "fintrack/internal/log"
)

// Circuit breaker states
const (
	StateClosed int32 = iota
	StateOpen
	StateHalfOpen
)

const (
	maxFailures           = 5
	openTimeout           = 30 * time.Second
	maxBackoff            = 30 * time.Second
	maxReconnectAttempts  = 5
	publishTimeout        = 5 * time.Second
	redeliveryDelay       = time.Second
	reconnectPollInterval = 100 * time.Millisecond
)

var (
	// ErrNotConnected is returned when no channel is available.
	ErrNotConnected = errors.New("amqp client not connected")

	// ErrDiscard tells Consume to drop a message instead of requeueing it.
	ErrDiscard = errors.New("discard message")
)

// Handler processes one event.
type Handler func(ctx context.Context, e *Event) error

// Client publishes and consumes events on a direct exchange. Publishing is
// guarded by a circuit breaker and broken connections are re-dialled in the
// background.
type Client struct {
	url          string
	exchangeName string
	queueName    string
	logger       *applog.Logger

	mu      sync.RWMutex
	conn    *amqp091.Connection
	channel *amqp091.Channel

	state        int32
	failureCount int64
	failMu       sync.Mutex
	lastFailure  time.Time

	// reconnectMu serializes reconnects from watch, Publish and Consume.
	reconnectMu sync.Mutex
	closed      int32
}

// NewClient dials url and declares the exchange and queue.
func NewClient(url, exchangeName, queueName string, logger *applog.Logger) (*Client, error) {
	if logger == nil {
		logger = applog.Discard()
	}
	c := &Client{
		url:          url,
		exchangeName: exchangeName,
		queueName:    queueName,
		logger:       logger.WithComponent(applog.ComponentAMQP),
	}
	if err := c.connect(); err != nil {
		return nil, err
	}
	return c, nil
}

func (c *Client) log() *applog.Logger {
	if c.logger == nil {
		return applog.Discard()
	}
	return c.logger
}

func (c *Client) connect() error {
	conn, err := amqp091.Dial(c.url)
	if err != nil {
		return fmt.Errorf("dial AMQP: %w", err)
	}

	channel, err := conn.Channel()
	if err != nil {
		conn.Close()
		return fmt.Errorf("open channel: %w", err)
	}

	if err := setup(channel, c.exchangeName, c.queueName); err != nil {
		channel.Close()
		conn.Close()
		return fmt.Errorf("setup exchange and queue: %w", err)
	}

	c.mu.Lock()
	old := c.conn
	c.conn = conn
	c.channel = channel
	c.mu.Unlock()
	if old != nil && !old.IsClosed() {
		old.Close()
	}

	go c.watch(conn, conn.NotifyClose(make(chan *amqp091.Error, 1)))
	return nil
}

func setup(ch *amqp091.Channel, exchange, queue string) error {
	if err := ch.ExchangeDeclare(
		exchange, // name
		"direct", // type
		true,     // durable
		false,    // auto-deleted
		false,    // internal
		false,    // no-wait
		nil,      // arguments
	); err != nil {
		return fmt.Errorf("declare exchange: %w", err)
	}

	if _, err := ch.QueueDeclare(
		queue, // name
		true,  // durable
		false, // delete when unused
		false, // exclusive
		false, // no-wait
		nil,   // arguments
	); err != nil {
		return fmt.Errorf("declare queue: %w", err)
	}

	// Routing key is the queue name
	if err := ch.QueueBind(queue, queue, exchange, false, nil); err != nil {
		return fmt.Errorf("bind queue: %w", err)
	}
	return nil
}

// watch re-dials when the broker drops conn. A conn that was already
// replaced by a newer connect is ignored.
func (c *Client) watch(conn *amqp091.Connection, closed <-chan *amqp091.Error) {
	err, ok := <-closed
	if !ok || atomic.LoadInt32(&c.closed) == 1 {
		return
	}
	c.mu.Lock()
	current := c.conn == conn
	if current {
		c.channel = nil
	}
	c.mu.Unlock()
	if !current {
		return
	}
	c.log().Warn("AMQP connection lost", applog.FieldError, err)
	c.reconnectAsync()
}

// dropChannel marks the client unusable until the next connect, which also
// closes the old connection.
func (c *Client) dropChannel() {
	c.mu.Lock()
	c.channel = nil
	c.mu.Unlock()
}

func (c *Client) currentChannel() *amqp091.Channel {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.channel
}

// reconnectAsync starts at most one background reconnect loop. It returns
// without dialing when another reconnect already holds reconnectMu.
func (c *Client) reconnectAsync() {
	if !c.reconnectMu.TryLock() {
		return
	}
	go func() {
		defer c.reconnectMu.Unlock()
		if c.currentChannel() != nil {
			return
		}
		if err := c.reconnect(context.Background()); err != nil {
			c.log().Error("AMQP reconnect gave up", applog.FieldError, err)
		}
	}()
}

// reconnectFrom waits for any reconnect in progress, then dials only if
// failed is still the current channel or there is none.
func (c *Client) reconnectFrom(ctx context.Context, failed *amqp091.Channel) error {
	for !c.reconnectMu.TryLock() {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(reconnectPollInterval):
		}
	}
	defer c.reconnectMu.Unlock()

	if ch := c.currentChannel(); ch != nil && ch != failed {
		return nil
	}
	c.dropChannel()
	return c.reconnect(ctx)
}

func (c *Client) reconnect(ctx context.Context) error {
	var lastErr error
	for attempt := 0; attempt < maxReconnectAttempts; attempt++ {
		if atomic.LoadInt32(&c.closed) == 1 {
			return ErrNotConnected
		}
		if lastErr = c.connect(); lastErr == nil {
			c.log().Info("AMQP reconnected", "attempt", attempt+1)
			return nil
		}

		delay := exponentialBackoff(attempt)
		c.log().Warn("AMQP reconnect failed", applog.FieldError, lastErr, "retry_in", delay.String())
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(delay):
		}
	}
	return fmt.Errorf("reconnect after %d attempts: %w", maxReconnectAttempts, lastErr)
}

// exponentialBackoff returns 1s, 2s, 4s... capped at maxBackoff.
func exponentialBackoff(attempt int) time.Duration {
	if attempt >= 5 {
		return maxBackoff
	}
	d := time.Second << uint(attempt)
	if d > maxBackoff {
		return maxBackoff
	}
	return d
}

func isConnectionError(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, amqp091.ErrClosed) || errors.Is(err, ErrNotConnected) {
		return true
	}
	msg := err.Error()
	for _, s := range []string{"connection refused", "connection closed", "EOF", "broken pipe", "use of closed network connection", "channel/connection is not open"} {
		if strings.Contains(msg, s) {
			return true
		}
	}
	return false
}

// isCircuitOpen reports whether publishes should be short-circuited. An open
// circuit becomes half-open once openTimeout has elapsed.
func (c *Client) isCircuitOpen() bool {
	if atomic.LoadInt32(&c.state) != StateOpen {
		return false
	}
	c.failMu.Lock()
	last := c.lastFailure
	c.failMu.Unlock()
	if time.Since(last) > openTimeout {
		atomic.CompareAndSwapInt32(&c.state, StateOpen, StateHalfOpen)
		return false
	}
	return true
}

func (c *Client) recordSuccess() {
	atomic.StoreInt64(&c.failureCount, 0)
	atomic.StoreInt32(&c.state, StateClosed)
}

func (c *Client) recordFailure() {
	c.failMu.Lock()
	c.lastFailure = time.Now()
	c.failMu.Unlock()

	failures := atomic.AddInt64(&c.failureCount, 1)
	if failures >= maxFailures || atomic.LoadInt32(&c.state) == StateHalfOpen {
		if atomic.SwapInt32(&c.state, StateOpen) != StateOpen {
			c.log().Warn("AMQP circuit breaker opened", "failures", failures)
		}
	}
}

// Publish sends e as a persistent JSON message.
func (c *Client) Publish(ctx context.Context, e *Event) error {
	if c.isCircuitOpen() {
		return fmt.Errorf("publish %s: circuit breaker is open", e.Type)
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	body, err := e.ToJSON()
	if err != nil {
		return fmt.Errorf("marshal event: %w", err)
	}

	ch := c.currentChannel()
	if ch == nil {
		c.recordFailure()
		c.reconnectAsync()
		return fmt.Errorf("publish %s: %w", e.Type, ErrNotConnected)
	}

	ctx, cancel := context.WithTimeout(ctx, publishTimeout)
	defer cancel()

	err = ch.PublishWithContext(
		ctx,
		c.exchangeName, // exchange
		c.queueName,    // routing key
		false,          // mandatory
		false,          // immediate
		amqp091.Publishing{
			ContentType:  "application/json",
			DeliveryMode: amqp091.Persistent,
			Type:         string(e.Type),
			Timestamp:    e.Timestamp,
			Body:         body,
		},
	)
	if err != nil {
		c.recordFailure()
		if isConnectionError(err) {
			c.dropChannel()
			c.reconnectAsync()
		}
		return fmt.Errorf("publish message: %w", err)
	}
	c.recordSuccess()

	c.log().DebugContext(ctx, "Published event",
		applog.FieldEventType, e.Type,
		applog.FieldTransactionID, e.TransactionID,
		"exchange", c.exchangeName,
		"queue", c.queueName)
	return nil
}

// Consume delivers events to handler until ctx is cancelled. Malformed
// messages and handler errors wrapping ErrDiscard are dropped; other handler
// errors are requeued after a short delay.
func (c *Client) Consume(ctx context.Context, handler Handler) error {
	for {
		ch := c.currentChannel()
		err := c.consumeOnce(ctx, ch, handler)
		if ctx.Err() != nil {
			return ctx.Err()
		}
		c.log().Warn("AMQP consumer interrupted, reconnecting", applog.FieldError, err)
		if err := c.reconnectFrom(ctx, ch); err != nil {
			return err
		}
	}
}

func (c *Client) consumeOnce(ctx context.Context, ch *amqp091.Channel, handler Handler) error {
	if ch == nil {
		return ErrNotConnected
	}
	if err := ch.Qos(1, 0, false); err != nil {
		return fmt.Errorf("set qos: %w", err)
	}

	msgs, err := ch.Consume(
		c.queueName, // queue
		"",          // consumer
		false,       // auto-ack
		false,       // exclusive
		false,       // no-local
		false,       // no-wait
		nil,         // args
	)
	if err != nil {
		return fmt.Errorf("start consuming: %w", err)
	}

	c.log().InfoContext(ctx, "Started consuming events", "queue", c.queueName)

	for {
		select {
		case <-ctx.Done():
			c.log().InfoContext(ctx, "Stopping event consumption", "reason", ctx.Err())
			return ctx.Err()
		case delivery, ok := <-msgs:
			if !ok {
				return fmt.Errorf("message channel closed")
			}
			c.handleDelivery(ctx, delivery, handler)
		}
	}
}

func (c *Client) handleDelivery(ctx context.Context, d amqp091.Delivery, handler Handler) {
	e, err := EventFromJSON(d.Body)
	if err != nil {
		c.log().ErrorContext(ctx, "Dropping malformed event", applog.FieldError, err)
		_ = d.Nack(false, false)
		return
	}

	if err := handler(ctx, e); err != nil {
		if errors.Is(err, ErrDiscard) {
			c.log().WarnContext(ctx, "Dropping event", applog.FieldEventType, e.Type, applog.FieldError, err)
			_ = d.Nack(false, false)
			return
		}
		c.log().ErrorContext(ctx, "Failed to handle event, requeueing",
			applog.FieldEventType, e.Type,
			applog.FieldTransactionID, e.TransactionID,
			applog.FieldError, err)
		select {
		case <-ctx.Done():
		case <-time.After(redeliveryDelay):
		}
		_ = d.Nack(false, true)
		return
	}

	_ = d.Ack(false)
	c.log().DebugContext(ctx, "Processed event", applog.FieldEventType, e.Type, applog.FieldTransactionID, e.TransactionID)
}

// Healthy reports whether a channel is open and the circuit is not open.
func (c *Client) Healthy() bool {
	return c.currentChannel() != nil && atomic.LoadInt32(&c.state) != StateOpen
}

func (c *Client) Close() error {
	atomic.StoreInt32(&c.closed, 1)
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.channel != nil {
		c.channel.Close()
		c.channel = nil
	}
	if c.conn != nil {
		err := c.conn.Close()
		c.conn = nil
		return err
	}
	return nil
}
