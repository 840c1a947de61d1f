package queue

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	amqp "github.com/rabbitmq/amqp091-go"

	"github.com/xavierca1/vibe-registration/internal/entity"
)

// EventSink is where registration events end up (the Vibing webhook).
type EventSink interface {
	Deliver(ctx context.Context, event entity.RegistrationEvent) error
}

type Consumer interface {
	Consume(queue, consumer string, autoAck, exclusive, noLocal, noWait bool, args amqp.Table) (<-chan amqp.Delivery, error)
}

type Worker struct {
	Channel Consumer
	Sink    EventSink
	Logger  *slog.Logger
}

func NewWorker(ch Consumer, sink EventSink, logger *slog.Logger) *Worker {
	return &Worker{
		Channel: ch,
		Sink:    sink,
		Logger:  logger,
	}
}

// Start consumes until ctx is cancelled or the channel closes.
func (w *Worker) Start(ctx context.Context, queueName string) error {
	msgs, err := w.Channel.Consume(
		queueName,
		"",    // consumer
		false, // auto-ack
		false, // exclusive
		false, // no-local
		false, // no-wait
		nil,
	)
	if err != nil {
		return fmt.Errorf("failed to register consumer: %w", err)
	}

	w.Logger.Info("registration event worker started", "queue", queueName)

	for {
		select {
		case <-ctx.Done():
			w.Logger.Info("registration event worker stopped")
			return nil
		case d, ok := <-msgs:
			if !ok {
				return fmt.Errorf("delivery channel closed")
			}
			w.handle(ctx, d)
		}
	}
}

func (w *Worker) handle(ctx context.Context, d amqp.Delivery) {
	var event entity.RegistrationEvent
	if err := json.Unmarshal(d.Body, &event); err != nil {
		w.Logger.Error("invalid registration event, dead-lettering", "error", err)
		// Mensagem podre: sem requeue para não travar a fila
		d.Nack(false, false)
		return
	}

	if err := w.Sink.Deliver(ctx, event); err != nil {
		w.Logger.Error("registration event delivery failed", "id", event.ID, "status", event.PaymentStatus, "error", err)
		d.Nack(false, false)
		return
	}

	w.Logger.Info("registration event delivered", "id", event.ID, "status", event.PaymentStatus)
	d.Ack(false)
}
