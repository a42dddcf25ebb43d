package event

import (
	"encoding/json"
	"log"

	"github.com/streadway/amqp"
)

// Routing keys for the engine's domain events.
const (
	ReviewRecorded = "srs.review.recorded"
	DueReminder    = "srs.due.reminder"
	SkillCompleted = "path.skill.completed"
	UnitCompleted  = "path.unit.completed"
	LevelUp        = "economy.levelup"
)

// Publisher sends domain events to a RabbitMQ topic exchange. A nil
// Publisher is valid and drops everything, so callers don't need to guard
// for a broker-less deployment.
type Publisher struct {
	conn     *amqp.Connection
	channel  *amqp.Channel
	exchange string
}

// NewPublisher connects to RabbitMQ and declares the topic exchange
func NewPublisher(amqpURL, exchange string) (*Publisher, error) {
	conn, err := amqp.Dial(amqpURL)
	if err != nil {
		return nil, err
	}
	ch, err := conn.Channel()
	if err != nil {
		conn.Close()
		return nil, err
	}
	err = ch.ExchangeDeclare(
		exchange,
		"topic",
		true,  // durable
		false, // auto-deleted
		false, // internal
		false, // no-wait
		nil,
	)
	if err != nil {
		ch.Close()
		conn.Close()
		return nil, err
	}
	return &Publisher{conn: conn, channel: ch, exchange: exchange}, nil
}

// Publish sends one event with the routing key set to its type. Publish
// failures are logged, not propagated: events are advisory and must never
// fail the learner-facing operation.
func (p *Publisher) Publish(eventType string, payload interface{}) {
	if p == nil {
		return
	}

	body, err := json.Marshal(map[string]interface{}{
		"type":    eventType,
		"payload": payload,
	})
	if err != nil {
		log.Printf("Failed to encode event %s: %v", eventType, err)
		return
	}

	err = p.channel.Publish(
		p.exchange,
		eventType, // routing key
		false,
		false,
		amqp.Publishing{
			ContentType: "application/json",
			Body:        body,
		},
	)
	if err != nil {
		log.Printf("Failed to publish event %s: %v", eventType, err)
	}
}

// Close releases the channel and connection
func (p *Publisher) Close() {
	if p == nil {
		return
	}
	if p.channel != nil {
		_ = p.channel.Close()
	}
	if p.conn != nil {
		_ = p.conn.Close()
	}
}
