package messaging

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/cashflow/geidea-payments/internal/core"
	"github.com/cashflow/geidea-payments/internal/port/output"
	amqp "github.com/rabbitmq/amqp091-go"
)

const (
	ExchangeName  = "payments"
	QueueName     = "gateway_webhooks"
	RoutingKey    = "webhook.received"
	PrefetchCount = 1 // Process one message at a time per worker

	// Webhooks that fail twice are parked here for replay
	DeadLetterExchange = "payments.dlx"
	DeadLetterQueue    = "gateway_webhooks.dead"
)

// WebhookHandler reconciles one raw webhook body
type WebhookHandler func(ctx context.Context, payload []byte) error

// RabbitMQClient is a secondary adapter that implements the WebhookQueue output port
type RabbitMQClient struct {
	conn    *amqp.Connection
	channel *amqp.Channel
	logger  *slog.Logger
}

var _ output.WebhookQueue = (*RabbitMQClient)(nil)

// NewRabbitMQClient connects and declares the webhook exchange and queue
func NewRabbitMQClient(amqpURL string, logger *slog.Logger) (*RabbitMQClient, error) {
	conn, err := amqp.Dial(amqpURL)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to RabbitMQ: %w", err)
	}

	channel, err := conn.Channel()
	if err != nil {
		conn.Close()
		return nil, fmt.Errorf("failed to open channel: %w", err)
	}

	// Declare exchange
	err = channel.ExchangeDeclare(
		ExchangeName,
		"direct",
		true,  // durable
		false, // auto-deleted
		false, // internal
		false, // no-wait
		nil,
	)
	if err != nil {
		channel.Close()
		conn.Close()
		return nil, fmt.Errorf("failed to declare exchange: %w", err)
	}

	if err := declareDeadLetter(channel); err != nil {
		channel.Close()
		conn.Close()
		return nil, err
	}

	// Declare queue
	_, err = channel.QueueDeclare(
		QueueName,
		true,  // durable
		false, // delete when unused
		false, // exclusive
		false, // no-wait
		amqp.Table{"x-dead-letter-exchange": DeadLetterExchange},
	)
	if err != nil {
		channel.Close()
		conn.Close()
		return nil, fmt.Errorf("failed to declare queue: %w", err)
	}

	// Bind queue to exchange
	err = channel.QueueBind(
		QueueName,
		RoutingKey,
		ExchangeName,
		false,
		nil,
	)
	if err != nil {
		channel.Close()
		conn.Close()
		return nil, fmt.Errorf("failed to bind queue: %w", err)
	}

	return &RabbitMQClient{
		conn:    conn,
		channel: channel,
		logger:  logger,
	}, nil
}

// declareDeadLetter sets up the exchange and queue that receive rejected
// webhook deliveries. Dead-lettered messages keep their routing key.
func declareDeadLetter(channel *amqp.Channel) error {
	if err := channel.ExchangeDeclare(DeadLetterExchange, "direct", true, false, false, false, nil); err != nil {
		return fmt.Errorf("failed to declare dead-letter exchange: %w", err)
	}
	if _, err := channel.QueueDeclare(DeadLetterQueue, true, false, false, false, nil); err != nil {
		return fmt.Errorf("failed to declare dead-letter queue: %w", err)
	}
	if err := channel.QueueBind(DeadLetterQueue, RoutingKey, DeadLetterExchange, false, nil); err != nil {
		return fmt.Errorf("failed to bind dead-letter queue: %w", err)
	}
	return nil
}

// PublishWebhook publishes the raw gateway notification body
func (c *RabbitMQClient) PublishWebhook(ctx context.Context, payload []byte) error {
	err := c.channel.PublishWithContext(ctx,
		ExchangeName,
		RoutingKey,
		false, // mandatory
		false, // immediate
		amqp.Publishing{
			ContentType:  "application/json",
			DeliveryMode: amqp.Persistent, // Make message persistent
			Body:         payload,
			Timestamp:    time.Now(),
		},
	)
	if err != nil {
		return fmt.Errorf("failed to publish webhook: %w", err)
	}

	c.logger.DebugContext(ctx, "published webhook", "bytes", len(payload))
	return nil
}

type ackAction int

const (
	actionAck ackAction = iota
	actionRequeue
	actionDeadLetter
)

// decide maps a handler result to what happens to the delivery. Rejected
// payloads are acked since redelivery cannot fix them; other failures get
// one requeue and go to the dead-letter queue on the second attempt.
func decide(err error, redelivered bool) ackAction {
	switch {
	case err == nil, core.IsWebhookRejection(err):
		return actionAck
	case !redelivered:
		return actionRequeue
	default:
		return actionDeadLetter
	}
}

// ConsumeWebhooks starts consuming webhook messages until ctx is cancelled
func (c *RabbitMQClient) ConsumeWebhooks(ctx context.Context, handler WebhookHandler) error {
	// Set QoS to process one message at a time
	err := c.channel.Qos(
		PrefetchCount,
		0,     // prefetch size
		false, // global
	)
	if err != nil {
		return fmt.Errorf("failed to set QoS: %w", err)
	}

	msgs, err := c.channel.ConsumeWithContext(ctx,
		QueueName,
		"",    // consumer tag
		false, // auto-ack (we'll manually ack after processing)
		false, // exclusive
		false, // no-local
		false, // no-wait
		nil,
	)
	if err != nil {
		return fmt.Errorf("failed to register consumer: %w", err)
	}

	c.logger.Info("started consuming webhook messages", "queue", QueueName)

	go func() {
		for msg := range msgs {
			c.handle(ctx, msg, handler)
		}
		c.logger.Info("webhook consumer stopped")
	}()

	return nil
}

func (c *RabbitMQClient) handle(ctx context.Context, msg amqp.Delivery, handler WebhookHandler) {
	err := handler(ctx, msg.Body)
	switch decide(err, msg.Redelivered) {
	case actionAck:
		if err != nil {
			c.logger.WarnContext(ctx, "webhook rejected", "err", err)
		}
		_ = msg.Ack(false)
	case actionRequeue:
		c.logger.WarnContext(ctx, "webhook processing failed, requeueing", "err", err)
		_ = msg.Nack(false, true)
	case actionDeadLetter:
		c.logger.ErrorContext(ctx, "webhook processing failed twice, dead-lettering",
			"err", err, "dead_letter_queue", DeadLetterQueue)
		_ = msg.Nack(false, false)
	}
}

// Close closes the RabbitMQ connection
func (c *RabbitMQClient) Close() error {
	if c.channel != nil {
		c.channel.Close()
	}
	if c.conn != nil {
		return c.conn.Close()
	}
	return nil
}
