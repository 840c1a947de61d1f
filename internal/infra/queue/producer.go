package queue

import (
	"context"
	"encoding/json"
	"fmt"

	amqp "github.com/rabbitmq/amqp091-go"

	"github.com/xavierca1/vibe-registration/internal/entity"
)

// Channel is the publishing half of *amqp.Channel.
type Channel interface {
	PublishWithContext(ctx context.Context, exchange, key string, mandatory, immediate bool, msg amqp.Publishing) error
}

type RabbitMQProducer struct {
	Ch Channel
}

func NewProducer(ch Channel) *RabbitMQProducer {
	return &RabbitMQProducer{Ch: ch}
}

func (p *RabbitMQProducer) PublishRegistration(ctx context.Context, event entity.RegistrationEvent) error {
	body, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("failed to marshal event: %w", err)
	}

	err = p.Ch.PublishWithContext(ctx,
		ExchangeName,
		RoutingKey,
		false, // Mandatory
		false, // Immediate
		amqp.Publishing{
			ContentType:  "application/json",
			Type:         "registration." + event.PaymentStatus,
			MessageId:    event.ID,
			Body:         body,
			DeliveryMode: amqp.Persistent,
		},
	)
	if err != nil {
		return fmt.Errorf("failed to publish to RabbitMQ: %w", err)
	}

	return nil
}

// DirectPublisher delivers synchronously when no broker is configured.
type DirectPublisher struct {
	Sink EventSink
}

func NewDirectPublisher(sink EventSink) *DirectPublisher {
	return &DirectPublisher{Sink: sink}
}

func (p *DirectPublisher) PublishRegistration(ctx context.Context, event entity.RegistrationEvent) error {
	return p.Sink.Deliver(ctx, event)
}
