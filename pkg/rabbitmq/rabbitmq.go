package rabbitmq

import (
	"encoding/json"
	"fmt"
	"log"
	"sync"
	"time"

	amqp "github.com/streadway/amqp"
)

// DefaultQueue is the queue listing events are published to.
const DefaultQueue = "listing_events"

// Client holds the RabbitMQ connection and channel.
type Client struct {
	conn    *amqp.Connection
	channel *amqp.Channel
	queue   string
	// guards channel; request handlers publish concurrently
	mu sync.Mutex
}

// Config holds RabbitMQ connection details.
type Config struct {
	URL   string
	Queue string
}

// ListingEvent is the message body of a listing lifecycle event.
type ListingEvent struct {
	Event      string `json:"event"`
	ListingID  uint   `json:"listing_id"`
	UserID     uint   `json:"user_id"`
	CategoryID uint   `json:"category_id,omitempty"`
	Price      int    `json:"price,omitempty"`
}

// NewClient creates a new RabbitMQ client.
// It connects to RabbitMQ, opens a channel and declares the durable event queue.
func NewClient(cfg Config) (*Client, error) {
	if cfg.Queue == "" {
		cfg.Queue = DefaultQueue
	}

	conn, err := amqp.Dial(cfg.URL)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to RabbitMQ: %w", err)
	}

	ch, err := conn.Channel()
	if err != nil {
		conn.Close() // Close connection if channel creation fails
		return nil, fmt.Errorf("failed to open channel: %w", err)
	}

	if err := declareQueue(ch, cfg.Queue); err != nil {
		ch.Close()
		conn.Close()
		return nil, err
	}

	log.Printf("RabbitMQ client connected and %s declared.", cfg.Queue)

	return &Client{
		conn:    conn,
		channel: ch,
		queue:   cfg.Queue,
	}, nil
}

func declareQueue(ch *amqp.Channel, name string) error {
	_, err := ch.QueueDeclare(
		name,  // name
		true,  // durable (persists messages across broker restarts)
		false, // delete when unused
		false, // exclusive
		false, // no-wait
		nil,   // arguments
	)
	if err != nil {
		return fmt.Errorf("failed to declare %s: %w", name, err)
	}
	return nil
}

// Close closes the RabbitMQ connection and channel.
func (c *Client) Close() error {
	var errs []error
	if c.channel != nil {
		if err := c.channel.Close(); err != nil {
			errs = append(errs, fmt.Errorf("failed to close channel: %w", err))
		}
	}
	if c.conn != nil {
		if err := c.conn.Close(); err != nil {
			errs = append(errs, fmt.Errorf("failed to close connection: %w", err))
		}
	}
	if len(errs) > 0 {
		return fmt.Errorf("multiple errors occurred during RabbitMQ client close: %v", errs)
	}
	return nil
}

// PublishListingEvent publishes a listing event to the event queue as JSON.
func (c *Client) PublishListingEvent(event map[string]interface{}) error {
	if c.channel == nil {
		return fmt.Errorf("RabbitMQ channel is not available")
	}

	body, err := EncodeEvent(event)
	if err != nil {
		return err
	}

	c.mu.Lock()
	err = c.channel.Publish(
		"",      // exchange: default exchange
		c.queue, // routing key: the queue name
		false,   // mandatory
		false,   // immediate
		amqp.Publishing{
			ContentType:  "application/json",
			Body:         body,
			DeliveryMode: amqp.Persistent,
			Timestamp:    time.Now(),
		})
	c.mu.Unlock()

	if err != nil {
		return fmt.Errorf("failed to publish message: %w", err)
	}

	log.Printf(" [x] Sent listing event: %s", body)
	return nil
}

// EncodeEvent marshals an event map to the wire format.
func EncodeEvent(event map[string]interface{}) ([]byte, error) {
	if _, ok := event["event"].(string); !ok {
		return nil, fmt.Errorf("event name is missing")
	}
	body, err := json.Marshal(event)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal listing event to JSON: %w", err)
	}
	return body, nil
}

// DecodeListingEvent parses a message body published by PublishListingEvent.
func DecodeListingEvent(body []byte) (ListingEvent, error) {
	var event ListingEvent
	if err := json.Unmarshal(body, &event); err != nil {
		return event, fmt.Errorf("failed to decode listing event: %w", err)
	}
	if event.Event == "" || event.ListingID == 0 {
		return event, fmt.Errorf("listing event is incomplete: %s", body)
	}
	return event, nil
}

// ConsumeListingEvents delivers messages from the event queue to messageHandler
// on a separate goroutine. Messages are acked when the handler returns nil.
// Undecodable messages are rejected without requeue; other failures are requeued.
func (c *Client) ConsumeListingEvents(messageHandler func(event ListingEvent) error) (<-chan struct{}, error) {
	if c.channel == nil {
		return nil, fmt.Errorf("RabbitMQ channel is not available for consumption")
	}

	msgs, err := c.channel.Consume(
		c.queue, // queue
		"",      // consumer tag
		false,   // auto-ack
		false,   // exclusive
		false,   // no-local
		false,   // no-wait
		nil,     // args
	)
	if err != nil {
		return nil, fmt.Errorf("failed to register consumer: %w", err)
	}

	log.Printf(" [*] Waiting for listing events on %s. To exit press CTRL+C", c.queue)

	done := make(chan struct{})
	go func() {
		defer close(done)
		for msg := range msgs {
			event, err := DecodeListingEvent(msg.Body)
			if err != nil {
				log.Printf("Dropping message %d: %v", msg.DeliveryTag, err)
				if rejectErr := msg.Reject(false); rejectErr != nil {
					log.Printf("Error rejecting message %d: %v", msg.DeliveryTag, rejectErr)
				}
				continue
			}

			if err := messageHandler(event); err != nil {
				log.Printf("Error processing message %d: %v", msg.DeliveryTag, err)
				if requeueErr := msg.Nack(false, true); requeueErr != nil {
					log.Printf("Error nacking message %d: %v", msg.DeliveryTag, requeueErr)
				}
				continue
			}
			if ackErr := msg.Ack(false); ackErr != nil {
				log.Printf("Error acking message %d: %v", msg.DeliveryTag, ackErr)
			}
		}
	}()

	return done, nil
}
