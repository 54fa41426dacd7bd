package queue

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"

	"guestregistration/internal/domain"
)

const (
	consumerPrefetch  = 20
	minConsumeBackoff = time.Second
	maxConsumeBackoff = 30 * time.Second
)

// Consumer runs side effects for registrations published by Dispatcher.
type Consumer struct {
	url     string
	handler domain.SideEffectHandler
	logger  *slog.Logger
}

// NewConsumer returns a Consumer reading from the broker at url.
func NewConsumer(url string, handler domain.SideEffectHandler, logger *slog.Logger) *Consumer {
	return &Consumer{url: url, handler: handler, logger: logger}
}

// Run consumes until ctx is cancelled, reconnecting with exponential backoff
// whenever the broker connection drops.
func (c *Consumer) Run(ctx context.Context) error {
	backoff := minConsumeBackoff
	for {
		conn, err := dialBroker(c.url, defaultPublishTimeout)
		if err != nil {
			c.logger.WarnContext(ctx, "consumer failed to dial broker", "err", err, "retry_in", backoff.String())
			if !sleep(ctx, backoff) {
				return nil
			}
			backoff = min(backoff*2, maxConsumeBackoff)
			continue
		}
		backoff = minConsumeBackoff

		err = c.consume(ctx, conn)
		_ = conn.Close()
		if ctx.Err() != nil {
			return nil
		}
		c.logger.WarnContext(ctx, "consume loop ended, reconnecting", "err", err)
		if !sleep(ctx, 2*time.Second) {
			return nil
		}
	}
}

func (c *Consumer) consume(ctx context.Context, conn *amqp.Connection) error {
	ch, err := conn.Channel()
	if err != nil {
		return fmt.Errorf("channel open: %w", err)
	}
	defer func() { _ = ch.Close() }()

	if err := ch.Qos(consumerPrefetch, 0, false); err != nil {
		c.logger.WarnContext(ctx, "set QoS failed", "err", err)
	}
	if err := declareQueue(ch); err != nil {
		return err
	}
	deliveries, err := ch.Consume(QueueName, "", false, false, false, false, nil)
	if err != nil {
		return fmt.Errorf("queue consume: %w", err)
	}
	c.logger.InfoContext(ctx, "consuming registrations", "queue", QueueName)

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case d, ok := <-deliveries:
			if !ok {
				return errors.New("deliveries channel closed")
			}
			c.handleDelivery(ctx, d)
		}
	}
}

// handleDelivery acks once the handler has run. The handler isolates and
// logs its own failures, so only undecodable messages are rejected; they are
// not requeued to avoid a redelivery loop.
func (c *Consumer) handleDelivery(ctx context.Context, d amqp.Delivery) {
	msg, err := decodeMessage(d.Body)
	if err != nil {
		c.logger.ErrorContext(ctx, "rejecting undecodable registration message", "err", err)
		_ = d.Nack(false, false)
		return
	}
	c.handler.Handle(ctx, msg)
	if err := d.Ack(false); err != nil {
		c.logger.ErrorContext(ctx, "ack failed",
			"registration_id", msg.Registrant.RegistrationID,
			"err", err,
		)
	}
}

func sleep(ctx context.Context, d time.Duration) bool {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return false
	case <-t.C:
		return true
	}
}
