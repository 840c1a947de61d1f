package queue

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"testing"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/xavierca1/vibe-registration/internal/entity"
)

type MockChannel struct {
	mock.Mock
}

func (m *MockChannel) PublishWithContext(ctx context.Context, exchange, key string, mandatory, immediate bool, msg amqp.Publishing) error {
	return m.Called(ctx, exchange, key, mandatory, immediate, msg).Error(0)
}

type MockSink struct {
	mock.Mock
}

func (m *MockSink) Deliver(ctx context.Context, event entity.RegistrationEvent) error {
	return m.Called(ctx, event).Error(0)
}

type fakeConsumer struct {
	deliveries chan amqp.Delivery
}

func (f *fakeConsumer) Consume(string, string, bool, bool, bool, bool, amqp.Table) (<-chan amqp.Delivery, error) {
	return f.deliveries, nil
}

// fakeAck registra o que o worker respondeu para cada mensagem
type fakeAck struct {
	acks, nacks chan uint64
}

func (a *fakeAck) Ack(tag uint64, multiple bool) error {
	a.acks <- tag
	return nil
}

func (a *fakeAck) Nack(tag uint64, multiple, requeue bool) error {
	a.nacks <- tag
	return nil
}

func (a *fakeAck) Reject(tag uint64, requeue bool) error {
	a.nacks <- tag
	return nil
}

func sampleEvent() entity.RegistrationEvent {
	return entity.RegistrationEvent{
		ID:            "JANEDOE_JANE@EXAMPLE.COM_1234",
		Name:          "Jane Doe",
		Email:         "jane@example.com",
		Company:       "Not specified",
		EventTitle:    "Vibe Coding Nov 2025",
		EventDate:     "2025-11-06",
		PaymentStatus: entity.StatusPaid,
	}
}

func TestProducerPublishesPersistentJSON(t *testing.T) {
	ch := new(MockChannel)
	ch.On("PublishWithContext", mock.Anything, ExchangeName, RoutingKey, false, false, mock.MatchedBy(func(p amqp.Publishing) bool {
		var got entity.RegistrationEvent
		return json.Unmarshal(p.Body, &got) == nil &&
			got == sampleEvent() &&
			p.DeliveryMode == amqp.Persistent &&
			p.Type == "registration.paid"
	})).Return(nil)

	require.NoError(t, NewProducer(ch).PublishRegistration(context.Background(), sampleEvent()))
	ch.AssertExpectations(t)
}

func TestProducerWrapsError(t *testing.T) {
	ch := new(MockChannel)
	ch.On("PublishWithContext", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything).
		Return(errors.New("channel closed"))

	err := NewProducer(ch).PublishRegistration(context.Background(), sampleEvent())
	assert.ErrorContains(t, err, "channel closed")
}

func TestDirectPublisher(t *testing.T) {
	sink := new(MockSink)
	sink.On("Deliver", mock.Anything, sampleEvent()).Return(nil)

	require.NoError(t, NewDirectPublisher(sink).PublishRegistration(context.Background(), sampleEvent()))
	sink.AssertExpectations(t)
}

func TestWorkerAcksAndNacks(t *testing.T) {
	body, _ := json.Marshal(sampleEvent())
	failing := sampleEvent()
	failing.ID = "OTHER_OTHER@EXAMPLE.COM_9999"
	failingBody, _ := json.Marshal(failing)

	sink := new(MockSink)
	sink.On("Deliver", mock.Anything, sampleEvent()).Return(nil)
	sink.On("Deliver", mock.Anything, failing).Return(errors.New("401"))

	ack := &fakeAck{acks: make(chan uint64, 3), nacks: make(chan uint64, 3)}
	deliveries := make(chan amqp.Delivery, 3)
	deliveries <- amqp.Delivery{Acknowledger: ack, DeliveryTag: 1, Body: body}
	deliveries <- amqp.Delivery{Acknowledger: ack, DeliveryTag: 2, Body: []byte("{nope")}
	deliveries <- amqp.Delivery{Acknowledger: ack, DeliveryTag: 3, Body: failingBody}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	w := NewWorker(&fakeConsumer{deliveries: deliveries}, sink, slog.New(slog.NewTextHandler(io.Discard, nil)))
	done := make(chan error, 1)
	go func() { done <- w.Start(ctx, QueueName) }()

	assert.Equal(t, uint64(1), receive(t, ack.acks))
	assert.Equal(t, uint64(2), receive(t, ack.nacks))
	assert.Equal(t, uint64(3), receive(t, ack.nacks))

	cancel()
	require.NoError(t, <-done)
}

func receive(t *testing.T, ch chan uint64) uint64 {
	t.Helper()
	select {
	case v := <-ch:
		return v
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for ack")
		return 0
	}
}
