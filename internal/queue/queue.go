package queue

import (
	"encoding/json"
	"fmt"
	"log"
	"sync"

	"github.com/google/uuid"
	"github.com/streadway/amqp"
)

// TopicMessageSends carries claimed message IDs from the dispatcher sweep to
// the delivery worker.
const TopicMessageSends = "message_sends"

// Job is the wire payload: one claimed message to deliver.
type Job struct {
	MessageID uuid.UUID `json:"message_id"`
}

// Queue decouples the sweep from delivery. Retry policy lives in the message
// state machine, not here: a failed attempt reschedules the row and the next
// sweep re-publishes it, so handlers are invoked at most once per job.
type Queue interface {
	Publish(topic string, job Job) error
	Subscribe(topic string, handler func(job Job) error) error
}

// InMemoryQueue runs handlers in-process. Used by the single-binary
// deployment and by tests.
type InMemoryQueue struct {
	mu       sync.Mutex
	handlers map[string][]func(job Job) error
}

func NewInMemoryQueue() *InMemoryQueue {
	return &InMemoryQueue{
		handlers: make(map[string][]func(job Job) error),
	}
}

func (q *InMemoryQueue) Publish(topic string, job Job) error {
	q.mu.Lock()
	handlers := q.handlers[topic]
	q.mu.Unlock()

	if len(handlers) == 0 {
		return fmt.Errorf("no subscribers for topic %s", topic)
	}
	for _, handler := range handlers {
		go func(h func(job Job) error) {
			if err := h(job); err != nil {
				log.Printf("job failed on topic %s: message %s: %v", topic, job.MessageID, err)
			}
		}(handler)
	}
	return nil
}

func (q *InMemoryQueue) Subscribe(topic string, handler func(job Job) error) error {
	q.mu.Lock()
	defer q.mu.Unlock()
	q.handlers[topic] = append(q.handlers[topic], handler)
	return nil
}

// AMQPQueue is the RabbitMQ-backed queue used when the server and the
// delivery worker run as separate processes.
type AMQPQueue struct {
	conn *amqp.Connection
	ch   *amqp.Channel
}

func DialAMQP(amqpURL string) (*AMQPQueue, error) {
	conn, err := amqp.Dial(amqpURL)
	if err != nil {
		return nil, fmt.Errorf("dial amqp: %w", err)
	}
	ch, err := conn.Channel()
	if err != nil {
		conn.Close()
		return nil, fmt.Errorf("open channel: %w", err)
	}
	return &AMQPQueue{conn: conn, ch: ch}, nil
}

func (q *AMQPQueue) Close() {
	q.ch.Close()
	q.conn.Close()
}

func (q *AMQPQueue) declare(topic string) (amqp.Queue, error) {
	return q.ch.QueueDeclare(
		topic,
		true,  // durable
		false, // delete when unused
		false, // exclusive
		false, // no-wait
		nil,
	)
}

func (q *AMQPQueue) Publish(topic string, job Job) error {
	queue, err := q.declare(topic)
	if err != nil {
		return fmt.Errorf("declare queue: %w", err)
	}
	body, err := json.Marshal(job)
	if err != nil {
		return err
	}
	return q.ch.Publish(
		"",
		queue.Name,
		false,
		false,
		amqp.Publishing{
			ContentType:  "application/json",
			DeliveryMode: amqp.Persistent,
			Body:         body,
		},
	)
}

// Subscribe consumes jobs until the channel closes. Deliveries are acked
// after the handler runs either way: a failed attempt has already been
// rescheduled at the row level, so requeueing the AMQP message would only
// produce a duplicate attempt.
func (q *AMQPQueue) Subscribe(topic string, handler func(job Job) error) error {
	queue, err := q.declare(topic)
	if err != nil {
		return fmt.Errorf("declare queue: %w", err)
	}
	deliveries, err := q.ch.Consume(
		queue.Name,
		"",
		false, // manual ack
		false,
		false,
		false,
		nil,
	)
	if err != nil {
		return fmt.Errorf("register consumer: %w", err)
	}

	for d := range deliveries {
		var job Job
		if err := json.Unmarshal(d.Body, &job); err != nil {
			log.Println("invalid job payload:", err)
			d.Ack(false)
			continue
		}
		if err := handler(job); err != nil {
			log.Printf("delivery attempt for message %s: %v", job.MessageID, err)
		}
		d.Ack(false)
	}
	return nil
}
