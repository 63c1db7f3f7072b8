package events

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
)

const publishTimeout = 5 * time.Second

var ErrNoChannel = errors.New("no channels available in pool")

type ChannelPool struct {
	conn      *amqp.Connection
	channels  chan *amqp.Channel
	mu        sync.Mutex
	closed    bool
	queueName string
}

func NewChannelPool(url, queueName string, size int) (*ChannelPool, error) {
	conn, err := amqp.Dial(url)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to RabbitMQ: %w", err)
	}

	if size < 1 {
		size = 1
	}

	pool := &ChannelPool{
		conn:      conn,
		channels:  make(chan *amqp.Channel, size),
		queueName: queueName,
	}

	for i := range size {
		ch, err := pool.createChannel()
		if err != nil {
			pool.Close()
			return nil, fmt.Errorf("failed to create channel %d: %w", i, err)
		}
		pool.channels <- ch
	}

	slog.Info("✅ Created RabbitMQ channel pool", slog.Int("size", size), slog.String("queue", queueName))
	return pool, nil
}

func (p *ChannelPool) createChannel() (*amqp.Channel, error) {
	ch, err := p.conn.Channel()
	if err != nil {
		return nil, err
	}

	// durable, not auto-deleted, not exclusive
	if _, err := ch.QueueDeclare(p.queueName, true, false, false, false, nil); err != nil {
		ch.Close()
		return nil, fmt.Errorf("failed to declare queue: %w", err)
	}

	return ch, nil
}

func (p *ChannelPool) get() (*amqp.Channel, error) {
	select {
	case ch, ok := <-p.channels:
		if !ok {
			return nil, ErrNoChannel
		}
		if ch.IsClosed() {
			return p.createChannel()
		}
		return ch, nil
	default:
		return nil, ErrNoChannel
	}
}

func (p *ChannelPool) put(ch *amqp.Channel) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if ch == nil || ch.IsClosed() {
		return
	}

	if p.closed {
		ch.Close()
		return
	}

	select {
	case p.channels <- ch:
	default:
		ch.Close()
	}
}

// Ping reports whether the broker connection is still open.
func (p *ChannelPool) Ping(context.Context) error {
	if p.conn == nil || p.conn.IsClosed() {
		return errors.New("rabbitmq connection is closed")
	}

	return nil
}

func (p *ChannelPool) Close() {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.closed {
		return
	}
	p.closed = true

	close(p.channels)
	for ch := range p.channels {
		ch.Close()
	}
	if p.conn != nil {
		p.conn.Close()
	}

	slog.Info("Closed RabbitMQ channel pool")
}

type rabbitPublisher struct {
	pool *ChannelPool
}

func NewRabbitPublisher(pool *ChannelPool) Publisher {
	return &rabbitPublisher{pool: pool}
}

func (p *rabbitPublisher) PublishOrderPlaced(ctx context.Context, event OrderPlaced) error {
	msg, err := newPublishing(event)
	if err != nil {
		return err
	}

	ch, err := p.pool.get()
	if err != nil {
		return fmt.Errorf("failed to get channel from pool: %w", err)
	}
	defer p.pool.put(ch)

	pubCtx, cancel := context.WithTimeout(ctx, publishTimeout)
	defer cancel()

	// default exchange, routed straight to the queue
	if err := ch.PublishWithContext(pubCtx, "", p.pool.queueName, false, false, msg); err != nil {
		return fmt.Errorf("failed to publish order event: %w", err)
	}

	return nil
}

// newPublishing uses the order id as message id so consumers can drop redeliveries.
func newPublishing(event OrderPlaced) (amqp.Publishing, error) {
	body, err := json.Marshal(event)
	if err != nil {
		return amqp.Publishing{}, fmt.Errorf("failed to marshal order event: %w", err)
	}

	return amqp.Publishing{
		DeliveryMode: amqp.Persistent,
		ContentType:  "application/json",
		MessageId:    event.OrderID.String(),
		Type:         event.EventType,
		Timestamp:    event.OccurredAt,
		Body:         body,
	}, nil
}
