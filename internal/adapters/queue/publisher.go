package queue

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"

	"guestregistration/internal/domain"
)

const (
	defaultPublishTimeout = 5 * time.Second
	defaultPublishBuffer  = 256
	brokerCooldown        = 10 * time.Second
	heartbeatInterval     = 10 * time.Second
)

type publisher interface {
	Publish(ctx context.Context, body []byte) error
	Close() error
}

// Dispatcher publishes committed registrations to RabbitMQ from a single
// background goroutine. Dispatch only enqueues. When the buffer is full, the
// dispatcher is closed, or the broker failed within the last brokerCooldown,
// the message goes to fallback so side effects degrade instead of being lost.
type Dispatcher struct {
	pub      publisher
	fallback domain.SideEffectDispatcher
	logger   *slog.Logger
	timeout  time.Duration
	now      func() time.Time

	pending chan *domain.RegistrationCommitted
	done    chan struct{}

	mu     sync.RWMutex
	closed bool

	// owned by the publish goroutine
	downUntil time.Time
}

var _ domain.SideEffectDispatcher = (*Dispatcher)(nil)

// NewDispatcher returns a running Dispatcher publishing to the broker at url.
// The connection is opened lazily, re-opened after failures, and every dial
// and handshake is bounded by the publish timeout.
func NewDispatcher(url string, fallback domain.SideEffectDispatcher, logger *slog.Logger) *Dispatcher {
	pub := &amqpPublisher{url: url, timeout: defaultPublishTimeout}
	return newDispatcher(pub, fallback, logger, defaultPublishTimeout, defaultPublishBuffer)
}

func newDispatcher(pub publisher, fallback domain.SideEffectDispatcher, logger *slog.Logger, timeout time.Duration, buffer int) *Dispatcher {
	d := &Dispatcher{
		pub:      pub,
		fallback: fallback,
		logger:   logger,
		timeout:  timeout,
		now:      time.Now,
		pending:  make(chan *domain.RegistrationCommitted, buffer),
		done:     make(chan struct{}),
	}
	go d.run()
	return d
}

// Dispatch implements domain.SideEffectDispatcher. It never waits on the broker.
func (d *Dispatcher) Dispatch(ctx context.Context, msg *domain.RegistrationCommitted) {
	if msg == nil {
		return
	}
	d.mu.RLock()
	defer d.mu.RUnlock()
	if d.closed {
		d.fallback.Dispatch(ctx, msg)
		return
	}
	select {
	case d.pending <- msg:
	default:
		d.logger.WarnContext(ctx, "publish buffer full, dispatching in-process",
			"registration_id", msg.Registrant.RegistrationID)
		d.fallback.Dispatch(ctx, msg)
	}
}

func (d *Dispatcher) run() {
	defer close(d.done)
	for msg := range d.pending {
		d.deliver(msg)
	}
}

func (d *Dispatcher) deliver(msg *domain.RegistrationCommitted) {
	ctx := context.Background()
	if d.now().Before(d.downUntil) {
		d.fallback.Dispatch(ctx, msg)
		return
	}
	if err := d.publish(ctx, msg); err != nil {
		d.downUntil = d.now().Add(brokerCooldown)
		d.logger.WarnContext(ctx, "publish to broker failed, dispatching in-process",
			"registration_id", msg.Registrant.RegistrationID,
			"retry_after", brokerCooldown.String(),
			"err", err,
		)
		d.fallback.Dispatch(ctx, msg)
	}
}

func (d *Dispatcher) publish(ctx context.Context, msg *domain.RegistrationCommitted) error {
	body, err := encodeMessage(msg)
	if err != nil {
		return err
	}
	ctx, cancel := context.WithTimeout(ctx, d.timeout)
	defer cancel()
	return d.pub.Publish(ctx, body)
}

// Close stops accepting messages, waits until the buffered ones are published
// or handed to fallback, then closes the broker connection. Call it before
// closing fallback.
func (d *Dispatcher) Close(ctx context.Context) error {
	d.mu.Lock()
	if !d.closed {
		d.closed = true
		close(d.pending)
	}
	d.mu.Unlock()

	select {
	case <-d.done:
	case <-ctx.Done():
		return ctx.Err()
	}
	return d.pub.Close()
}

// dialBroker opens a connection whose TCP dial and AMQP handshake both end
// after timeout.
func dialBroker(url string, timeout time.Duration) (*amqp.Connection, error) {
	return amqp.DialConfig(url, amqp.Config{
		Heartbeat: heartbeatInterval,
		Locale:    "en_US",
		Dial:      amqp.DefaultDial(timeout),
	})
}

type amqpPublisher struct {
	url     string
	timeout time.Duration

	mu   sync.Mutex
	conn *amqp.Connection
	ch   *amqp.Channel
}

func (p *amqpPublisher) Publish(ctx context.Context, body []byte) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	ch, err := p.channel()
	if err != nil {
		return err
	}
	err = ch.PublishWithContext(ctx,
		"",        // default exchange
		QueueName, // routing key = queue name
		false,     // mandatory
		false,     // immediate
		amqp.Publishing{
			ContentType:  "application/json",
			DeliveryMode: amqp.Persistent,
			Timestamp:    time.Now().UTC(),
			Body:         body,
		},
	)
	if err != nil {
		p.resetLocked()
		return fmt.Errorf("publish: %w", err)
	}
	return nil
}

// channel returns an open channel, dialing and declaring the queue as needed.
func (p *amqpPublisher) channel() (*amqp.Channel, error) {
	if p.ch != nil && !p.ch.IsClosed() {
		return p.ch, nil
	}
	if p.conn == nil || p.conn.IsClosed() {
		conn, err := dialBroker(p.url, p.timeout)
		if err != nil {
			return nil, fmt.Errorf("dial broker: %w", err)
		}
		p.conn = conn
	}
	ch, err := p.conn.Channel()
	if err != nil {
		p.resetLocked()
		return nil, fmt.Errorf("open channel: %w", err)
	}
	if err := declareQueue(ch); err != nil {
		_ = ch.Close()
		p.resetLocked()
		return nil, err
	}
	p.ch = ch
	return ch, nil
}

func (p *amqpPublisher) resetLocked() {
	if p.ch != nil {
		_ = p.ch.Close()
		p.ch = nil
	}
	if p.conn != nil {
		_ = p.conn.Close()
		p.conn = nil
	}
}

func (p *amqpPublisher) Close() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.resetLocked()
	return nil
}

func declareQueue(ch *amqp.Channel) error {
	if _, err := ch.QueueDeclare(
		QueueName, // name
		true,      // durable
		false,     // autoDelete
		false,     // exclusive
		false,     // noWait
		nil,       // args
	); err != nil {
		return fmt.Errorf("queue declare: %w", err)
	}
	return nil
}
