package dummy

import (
	"context"
	"sync"

	"github.com/rabbitmq/amqp091-go"
	"github.com/veedubyou/timbre/src/shared/lib/rabbitmq"
	"github.com/veedubyou/timbre/src/worker/internal/application/worker"
)

var _ rabbitmq.Publisher = &RabbitMQ{}
var _ worker.MessageChannel = &RabbitMQ{}
var _ amqp091.Acknowledger = RabbitMQAcknowledger{}

// RabbitMQ loops published messages straight back to the consumer and
// counts how each delivery was settled
type RabbitMQ struct {
	Unavailable    bool
	MessageChannel chan amqp091.Delivery

	mutex       sync.Mutex
	ackCounter  int
	nackCounter int
	published   []amqp091.Publishing
}

type RabbitMQAcknowledger struct {
	ack  func()
	nack func()
}

func NewRabbitMQ() *RabbitMQ {
	return &RabbitMQ{
		Unavailable:    false,
		MessageChannel: make(chan amqp091.Delivery, 100),
	}
}

func (r *RabbitMQ) Publish(_ context.Context, msg amqp091.Publishing) error {
	if r.Unavailable {
		return NetworkFailure
	}

	r.mutex.Lock()
	r.published = append(r.published, msg)
	r.mutex.Unlock()

	acknowledger := RabbitMQAcknowledger{
		ack: func() {
			r.mutex.Lock()
			defer r.mutex.Unlock()
			r.ackCounter++
		},
		nack: func() {
			r.mutex.Lock()
			defer r.mutex.Unlock()
			r.nackCounter++
		},
	}

	r.MessageChannel <- amqp091.Delivery{
		Acknowledger:    acknowledger,
		ContentType:     msg.ContentType,
		ContentEncoding: msg.ContentEncoding,
		DeliveryMode:    msg.DeliveryMode,
		Timestamp:       msg.Timestamp,
		Type:            msg.Type,
		Body:            msg.Body,
	}
	return nil
}

func (r *RabbitMQ) AckCount() int {
	r.mutex.Lock()
	defer r.mutex.Unlock()
	return r.ackCounter
}

func (r *RabbitMQ) NackCount() int {
	r.mutex.Lock()
	defer r.mutex.Unlock()
	return r.nackCounter
}

// PublishedTypes lists the type of every message published so far, in order
func (r *RabbitMQ) PublishedTypes() []string {
	r.mutex.Lock()
	defer r.mutex.Unlock()

	types := make([]string, len(r.published))
	for i, msg := range r.published {
		types[i] = msg.Type
	}
	return types
}

func (r *RabbitMQ) Qos(_ int, _ int, _ bool) error {
	return nil
}

func (r *RabbitMQ) Consume(_ string, _ string, _ bool, _ bool, _ bool, _ bool, _ amqp091.Table) (<-chan amqp091.Delivery, error) {
	if r.Unavailable {
		return nil, NetworkFailure
	}

	return r.MessageChannel, nil
}

func (r *RabbitMQ) Close() error {
	return nil
}

func (r RabbitMQAcknowledger) Ack(_ uint64, _ bool) error {
	r.ack()
	return nil
}

func (r RabbitMQAcknowledger) Nack(_ uint64, _ bool, _ bool) error {
	r.nack()
	return nil
}

func (r RabbitMQAcknowledger) Reject(_ uint64, _ bool) error {
	r.nack()
	return nil
}
