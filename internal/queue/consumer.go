package queue

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
)

const (
	minBackoff = time.Second
	maxBackoff = 30 * time.Second
)

// Consumer drains the audit queue into the structured log.
type Consumer struct {
	url    string
	queue  string
	logger *slog.Logger
}

func NewConsumer(url, queue string, logger *slog.Logger) *Consumer {
	if queue == "" {
		queue = DefaultQueue
	}
	return &Consumer{url: url, queue: queue, logger: logger.With("component", "audit-consumer")}
}

// Run consumes until ctx is done, redialing with exponential backoff
// whenever the broker connection is lost.
func (c *Consumer) Run(ctx context.Context) error {
	backoff := minBackoff

	for {
		conn, err := amqp.Dial(c.url)
		if err != nil {
			c.logger.Warn("dial broker failed", "error", err, "retry_in", backoff)
			if !sleep(ctx, backoff) {
				return nil
			}
			backoff = min(backoff*2, maxBackoff)
			continue
		}
		backoff = minBackoff

		err = c.consume(ctx, conn)
		_ = conn.Close()

		if ctx.Err() != nil {
			return nil
		}
		c.logger.Warn("consume loop ended, reconnecting", "error", err)
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

	if err := ch.Qos(50, 0, false); err != nil {
		c.logger.Warn("set qos failed", "error", err)
	}

	if _, err := declare(ch, c.queue); err != nil {
		return err
	}

	msgs, err := ch.ConsumeWithContext(ctx, c.queue, "", false, false, false, false, nil)
	if err != nil {
		return fmt.Errorf("queue consume: %w", err)
	}

	for d := range msgs {
		if err := c.handle(d.Body); err != nil {
			c.logger.Error("bad audit record", "error", err)
			// no requeue, a malformed body would loop forever
			_ = d.Nack(false, false)
			continue
		}
		_ = d.Ack(false)
	}

	return errors.New("deliveries channel closed")
}

func (c *Consumer) handle(body []byte) error {
	var rec AuditRecord
	if err := json.Unmarshal(body, &rec); err != nil {
		return fmt.Errorf("unmarshal: %w", err)
	}
	if rec.Action == "" || rec.Holder == "" {
		return errors.New("missing action or holder")
	}

	c.logger.Info("booking audit",
		slog.String("action", string(rec.Action)),
		slog.String("holder", rec.Holder),
		slog.Int64("theater_id", rec.TheaterID),
		slog.String("showtime", rec.Showtime),
		slog.Any("labels", rec.Labels),
		slog.Int("bookings", len(rec.BookingIDs)),
		slog.Time("at", rec.At),
	)

	return nil
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
