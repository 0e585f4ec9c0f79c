package queue

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/labstack/gommon/log"
	"github.com/pkg/errors"
	amqp "github.com/rabbitmq/amqp091-go"
)

// Publisher emits notification events.
type Publisher interface {
	PublishNotificationCreated(ctx context.Context, ev NotificationCreatedEvent) error
}

// AMQPPublisher dials the broker per publish. Event volume is low and a
// short-lived connection never goes stale between bursts.
type AMQPPublisher struct {
	url    string
	logger *log.Logger
}

var _ Publisher = (*AMQPPublisher)(nil)

func NewAMQPPublisher(url string, logger *log.Logger) *AMQPPublisher {
	return &AMQPPublisher{url: url, logger: logger}
}

// PublishNotificationCreated publishes ev to the notification.created queue
// as a persistent JSON message. Errors are logged and returned so the caller
// can choose to ignore them.
func (p *AMQPPublisher) PublishNotificationCreated(ctx context.Context, ev NotificationCreatedEvent) error {
	err := p.publish(ctx, NotificationCreatedQueue, ev)
	if err != nil {
		p.logger.Warnf("rabbitmq: publish %s failed: %v", NotificationCreatedQueue, err)
	}
	return err
}

func (p *AMQPPublisher) publish(ctx context.Context, queue string, payload interface{}) error {
	conn, err := amqp.Dial(p.url)
	if err != nil {
		return errors.Wrap(err, "dial")
	}
	defer func() { _ = conn.Close() }()

	ch, err := conn.Channel()
	if err != nil {
		return errors.Wrap(err, "channel open")
	}
	defer func() { _ = ch.Close() }()

	if _, err := ch.QueueDeclare(queue, true, false, false, false, nil); err != nil {
		return errors.Wrap(err, "queue declare")
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return errors.Wrap(err, "marshal event")
	}
	pub := amqp.Publishing{
		ContentType:  "application/json",
		DeliveryMode: amqp.Persistent,
		MessageId:    uuid.NewString(),
		Timestamp:    time.Now().UTC(),
		Body:         body,
	}
	return errors.Wrap(ch.PublishWithContext(ctx, "", queue, false, false, pub), "publish")
}

// NoopPublisher drops every event. Used when QUEUE_ENABLED is false.
type NoopPublisher struct{}

func (NoopPublisher) PublishNotificationCreated(context.Context, NotificationCreatedEvent) error {
	return nil
}

// Recorder keeps published events in memory.
type Recorder struct {
	mu     sync.Mutex
	events []NotificationCreatedEvent
	// Fail, when set, is returned by every publish.
	Fail error
}

func (r *Recorder) PublishNotificationCreated(_ context.Context, ev NotificationCreatedEvent) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.Fail != nil {
		return r.Fail
	}
	r.events = append(r.events, ev)
	return nil
}

func (r *Recorder) Events() []NotificationCreatedEvent {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]NotificationCreatedEvent, len(r.events))
	copy(out, r.events)
	return out
}
