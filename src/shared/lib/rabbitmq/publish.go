package rabbitmq

import (
	"context"
	"encoding/json"
	"sync"

	"github.com/apex/log"
	"github.com/cockroachdb/errors"
	"github.com/rabbitmq/amqp091-go"
)

//go:generate go run github.com/maxbrunsfeld/counterfeiter/v6 -generate

var _ Publisher = &QueuePublisher{}

//counterfeiter:generate . Publisher
type Publisher interface {
	Publish(ctx context.Context, msg amqp091.Publishing) error
}

// JobPublishing encodes payload as the JSON body of a job message of the
// given type
func JobPublishing(jobType string, payload any) (amqp091.Publishing, error) {
	body, err := json.Marshal(payload)
	if err != nil {
		return amqp091.Publishing{}, errors.Wrapf(err, "Failed to marshal the %s payload", jobType)
	}

	return amqp091.Publishing{
		Type: jobType,
		Body: body,
	}, nil
}

func NewQueuePublisher(rabbitMQURL string, queueName string) (*QueuePublisher, error) {
	publisher := &QueuePublisher{
		rabbitMQURL: rabbitMQURL,
		queueName:   queueName,
	}

	if err := publisher.connectChannel(); err != nil {
		return nil, errors.Wrap(err, "Failed to connect to RabbitMQ")
	}

	return publisher, nil
}

// QueuePublisher publishes persistent JSON messages to one durable queue.
// The server publishes from concurrent requests, so the channel swap on
// reconnect is guarded.
type QueuePublisher struct {
	rabbitMQURL string
	queueName   string

	lock    sync.Mutex
	conn    *amqp091.Connection
	channel *amqp091.Channel
}

func (q *QueuePublisher) connectChannel() error {
	q.channel = nil
	if q.conn != nil {
		_ = q.conn.Close()
		q.conn = nil
	}

	conn, err := amqp091.Dial(q.rabbitMQURL)
	if err != nil {
		return errors.Wrap(err, "Failed to dial rabbitMQURL")
	}

	channel, err := conn.Channel()
	if err != nil {
		_ = conn.Close()
		return errors.Wrap(err, "Failed to create rabbit channel")
	}

	_, err = channel.QueueDeclare(
		q.queueName,
		true,
		false,
		false,
		false,
		nil,
	)
	if err != nil {
		_ = conn.Close()
		return errors.Wrap(err, "Failed to declare the queue")
	}

	q.conn = conn
	q.channel = channel
	return nil
}

func (q *QueuePublisher) publishOnce(ctx context.Context, msg amqp091.Publishing) error {
	if q.channel == nil {
		return amqp091.ErrClosed
	}

	msg.ContentType = "application/json"
	msg.DeliveryMode = amqp091.Persistent

	return q.channel.PublishWithContext(
		ctx,
		"",
		q.queueName,
		true,
		false,
		msg,
	)
}

// Publish retries once on a fresh connection when the channel has been
// closed underneath it
func (q *QueuePublisher) Publish(ctx context.Context, msg amqp091.Publishing) error {
	q.lock.Lock()
	defer q.lock.Unlock()

	err := q.publishOnce(ctx, msg)
	if err == nil {
		return nil
	}

	publishErr := errors.Wrap(err, "Failed to publish message to rabbitMQ channel")
	if !errors.Is(err, amqp091.ErrClosed) {
		return publishErr
	}

	if err := q.connectChannel(); err != nil {
		log.WithError(err).
			WithField("queue_name", q.queueName).
			Error("Unable to reconnect to rabbitMQ channel")
		return publishErr
	}

	if err := q.publishOnce(ctx, msg); err != nil {
		return errors.Wrap(err, "Failed to publish message after reconnecting")
	}

	return nil
}

func (q *QueuePublisher) Close() error {
	q.lock.Lock()
	defer q.lock.Unlock()

	if q.conn == nil {
		return nil
	}

	err := q.conn.Close()
	q.conn = nil
	q.channel = nil
	return err
}
