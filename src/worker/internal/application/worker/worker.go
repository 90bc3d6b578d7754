package worker

import (
	"context"
	"sync"

	"github.com/apex/log"
	"github.com/rabbitmq/amqp091-go"
	"github.com/veedubyou/timbre/src/shared/lib/cerr"
)

type MessageChannel interface {
	Qos(prefetchCount, prefetchSize int, global bool) error
	Consume(queue, consumer string, autoAck, exclusive, noLocal, noWait bool, args amqp091.Table) (<-chan amqp091.Delivery, error)
	Close() error
}

type MessageHandler interface {
	HandleMessage(ctx context.Context, message amqp091.Delivery) error
}

// QueueWorker handles one delivery at a time. Successes are acked, failures
// are nacked without requeueing since every stage rewrites its outputs and
// a retry would fail the same way.
type QueueWorker struct {
	channel     MessageChannel
	channelLock sync.Mutex
	handler     MessageHandler
	queueName   string
}

func NewQueueWorker(channel MessageChannel, queueName string, handler MessageHandler) *QueueWorker {
	return &QueueWorker{
		channel:   channel,
		queueName: queueName,
		handler:   handler,
	}
}

func NewQueueWorkerFromConnection(conn *amqp091.Connection, queueName string, handler MessageHandler) (*QueueWorker, error) {
	rabbitChannel, err := conn.Channel()
	if err != nil {
		_ = conn.Close()
		return nil, cerr.Wrap(err).Error("Failed to get channel")
	}

	queue, err := rabbitChannel.QueueDeclare(
		queueName,
		true,
		false,
		false,
		false,
		nil,
	)
	if err != nil {
		_ = rabbitChannel.Close()
		return nil, cerr.Field("queue_name", queueName).
			Wrap(err).Error("Failed to declare queue")
	}

	return NewQueueWorker(rabbitChannel, queue.Name, handler), nil
}

func (q *QueueWorker) Start(ctx context.Context) error {
	log.WithField("queue_name", q.queueName).Info("Starting worker")

	q.channelLock.Lock()
	if q.channel == nil {
		q.channelLock.Unlock()
		return cerr.Error("Worker has been stopped")
	}

	// stages are long running, don't let the broker hand this worker more
	// than the one it's busy with
	if err := q.channel.Qos(1, 0, false); err != nil {
		q.channelLock.Unlock()
		return cerr.Wrap(err).Error("Failed to set the prefetch count")
	}

	messageStream, err := q.channel.Consume(
		q.queueName,
		"",
		false,
		false,
		false,
		false,
		nil,
	)
	q.channelLock.Unlock()

	if err != nil {
		return cerr.Field("queue_name", q.queueName).
			Wrap(err).Error("Failed to start consuming from channel")
	}

	for message := range messageStream {
		q.handle(ctx, message)
	}

	return nil
}

func (q *QueueWorker) handle(ctx context.Context, message amqp091.Delivery) {
	logger := log.WithField("message_type", message.Type)
	logger.Info("Handling message")

	err := q.handler.HandleMessage(ctx, message)
	if err != nil {
		err = cerr.Field("message_type", message.Type).
			Wrap(err).Error("Failed to process message")
		cerr.Log(err)

		if err = message.Nack(false, false); err != nil {
			logger.WithError(err).Error("Failed to nack message")
		}
		return
	}

	logger.Info("Successfully processed message")
	if err = message.Ack(false); err != nil {
		logger.WithError(err).Error("Failed to ack message")
	}
}

func (q *QueueWorker) Stop() {
	q.channelLock.Lock()
	defer q.channelLock.Unlock()

	if q.channel == nil {
		return
	}

	_ = q.channel.Close()
	q.channel = nil
}
