package testing

import (
	"encoding/json"
	"sync"

	"github.com/rabbitmq/amqp091-go"
	"github.com/veedubyou/timbre/src/shared/lib/rabbitmq"
)

func MakeRabbitMQConnection() *amqp091.Connection {
	return ExpectSuccess(amqp091.Dial(RabbitMQHost))
}

func ResetRabbitMQ(conn *amqp091.Connection) {
	channel := ExpectSuccess(conn.Channel())
	defer channel.Close()

	ExpectSuccess(channel.QueueDeclare(RabbitMQQueueName, true, false, false, false, nil))
	ExpectSuccess(channel.QueuePurge(RabbitMQQueueName, false))
}

func AfterSuiteRabbitMQ(conn *amqp091.Connection) {
	channel := ExpectSuccess(conn.Channel())
	defer channel.Close()

	ExpectSuccess(channel.QueueDelete(RabbitMQQueueName, false, false, false))
}

func MakeRabbitMQPublisher() *rabbitmq.QueuePublisher {
	return ExpectSuccess(rabbitmq.NewQueuePublisher(RabbitMQHost, RabbitMQQueueName))
}

type ReceivedMessage struct {
	Type    string
	Message map[string]any
}

// RabbitMQConsumer drains the test queue in the background so tests can
// assert on what got published
type RabbitMQConsumer struct {
	lock             sync.Mutex
	channel          *amqp091.Channel
	queueName        string
	receivedMessages []ReceivedMessage
	err              error
}

func NewRabbitMQConsumer(conn *amqp091.Connection) *RabbitMQConsumer {
	return &RabbitMQConsumer{
		channel:   ExpectSuccess(conn.Channel()),
		queueName: RabbitMQQueueName,
	}
}

func (r *RabbitMQConsumer) AsyncStart() {
	r.lock.Lock()
	if r.channel == nil {
		r.lock.Unlock()
		return
	}

	messageStream, err := r.channel.Consume(
		r.queueName,
		"",
		true,
		false,
		false,
		false,
		nil,
	)
	if err != nil {
		r.err = err
		r.lock.Unlock()
		return
	}
	r.lock.Unlock()

	for message := range messageStream {
		body := map[string]any{}
		err := json.Unmarshal(message.Body, &body)

		r.lock.Lock()
		if err != nil && r.err == nil {
			r.err = err
		}

		if err == nil {
			r.receivedMessages = append(r.receivedMessages, ReceivedMessage{
				Type:    message.Type,
				Message: body,
			})
		}
		r.lock.Unlock()
	}
}

func (r *RabbitMQConsumer) Stop() {
	r.lock.Lock()
	defer r.lock.Unlock()

	if r.channel != nil {
		_ = r.channel.Close()
		r.channel = nil
	}
}

// Unload hands over everything received so far and starts over
func (r *RabbitMQConsumer) Unload() ([]ReceivedMessage, error) {
	r.lock.Lock()
	defer r.lock.Unlock()

	if r.err != nil {
		return nil, r.err
	}

	receivedMessages := r.receivedMessages
	r.receivedMessages = nil
	return receivedMessages, nil
}
