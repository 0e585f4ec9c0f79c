package queue

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/labstack/gommon/log"
	"github.com/pkg/errors"
	amqp "github.com/rabbitmq/amqp091-go"
)

// Consumer drains notification.created and appends one line per event to
// an audit log file.
type Consumer struct {
	url     string
	logPath string
	logger  *log.Logger
}

func NewConsumer(url, logPath string, logger *log.Logger) *Consumer {
	return &Consumer{url: url, logPath: logPath, logger: logger}
}

// Run dials the broker and consumes until ctx is cancelled, reconnecting
// with exponential backoff capped at 30s.
func (c *Consumer) Run(ctx context.Context) {
	backoff := time.Second
	for {
		conn, err := amqp.Dial(c.url)
		if err != nil {
			c.logger.Warnf("notification-consumer: dial failed: %v; retrying in %s", err, backoff)
			if !sleep(ctx, backoff) {
				return
			}
			if backoff < 30*time.Second {
				backoff *= 2
			}
			continue
		}
		backoff = time.Second

		err = c.consumeLoop(ctx, conn)
		_ = conn.Close()
		if ctx.Err() != nil {
			return
		}
		c.logger.Warnf("notification-consumer: consume loop ended: %v; reconnecting", err)
		if !sleep(ctx, 2*time.Second) {
			return
		}
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

func (c *Consumer) consumeLoop(ctx context.Context, conn *amqp.Connection) error {
	ch, err := conn.Channel()
	if err != nil {
		return errors.Wrap(err, "channel open")
	}
	defer func() { _ = ch.Close() }()

	if err := ch.Qos(50, 0, false); err != nil {
		c.logger.Warnf("notification-consumer: set QoS failed: %v", err)
	}
	if _, err := ch.QueueDeclare(NotificationCreatedQueue, true, false, false, false, nil); err != nil {
		return errors.Wrap(err, "queue declare")
	}
	msgs, err := ch.Consume(NotificationCreatedQueue, "", false, false, false, false, nil)
	if err != nil {
		return errors.Wrap(err, "queue consume")
	}

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case d, ok := <-msgs:
			if !ok {
				return errors.New("deliveries channel closed")
			}
			if err := c.handle(d.Body); err != nil {
				c.logger.Errorf("notification-consumer: handle message %s failed: %v", d.MessageId, err)
				_ = d.Nack(false, false) // no requeue, avoids a poison-message loop
				continue
			}
			_ = d.Ack(false)
		}
	}
}

func (c *Consumer) handle(body []byte) error {
	if err := os.MkdirAll(filepath.Dir(c.logPath), 0o755); err != nil {
		return errors.Wrap(err, "mkdir logs")
	}
	f, err := os.OpenFile(c.logPath, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
	if err != nil {
		return errors.Wrap(err, "open log file")
	}
	defer f.Close()
	return writeEvent(f, body)
}

// writeEvent renders one event as a single human-readable line.
func writeEvent(w io.Writer, body []byte) error {
	var ev NotificationCreatedEvent
	if err := json.Unmarshal(body, &ev); err != nil {
		return errors.Wrap(err, "unmarshal")
	}
	course := "-"
	if ev.CourseID != nil {
		course = fmt.Sprint(*ev.CourseID)
	}
	recipients := make([]string, len(ev.RecipientIDs))
	for i, id := range ev.RecipientIDs {
		recipients[i] = fmt.Sprint(id)
	}
	line := fmt.Sprintf("[%s] Notification sent | sender_id=%d | course_id=%s | scope=%s | recipients=[%s] | message=%q\n",
		ev.CreatedAt.UTC().Format(time.RFC3339), ev.SenderID, course, orDash(ev.Scope),
		strings.Join(recipients, ","), ev.Message)
	_, err := io.WriteString(w, line)
	return errors.Wrap(err, "write log")
}

func orDash(s string) string {
	if s == "" {
		return "-"
	}
	return s
}
