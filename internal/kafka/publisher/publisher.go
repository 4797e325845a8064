package publisher

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"reflect"

	"github.com/rs/zerolog"

	"github.com/example/whatsrb-cloud-go/internal/models"
)

var errProducerNotInitialised = errors.New("kafka publisher: producer not initialised")

// SyncProducer captures the subset of producer behaviour required by the publisher.
type SyncProducer interface {
	PublishSync(topic string, key []byte, headers map[string][]byte, payload []byte) error
}

// ErrProducerNotInitialised exposes the sentinel error for callers and tests.
func ErrProducerNotInitialised() error {
	return errProducerNotInitialised
}

// EventPublisher writes verified webhook events to a Kafka topic, keyed by
// event id so redeliveries of the same event land on the same partition.
type EventPublisher struct {
	producer SyncProducer
	topic    string
	logger   zerolog.Logger
}

// NewEventPublisher constructs an EventPublisher. It returns nil when prod is nil.
func NewEventPublisher(prod SyncProducer, topic string, logger zerolog.Logger) *EventPublisher {
	if prod == nil {
		return nil
	}
	if reflect.ValueOf(logger).IsZero() {
		logger = zerolog.Nop()
	}
	return &EventPublisher{
		producer: prod,
		topic:    topic,
		logger:   logger,
	}
}

// PublishEvent writes event to Kafka synchronously.
func (p *EventPublisher) PublishEvent(_ context.Context, event models.WebhookEvent) error {
	if p == nil || p.producer == nil {
		return errProducerNotInitialised
	}

	payload, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("kafka publisher: marshal webhook event: %w", err)
	}

	headers := map[string][]byte{
		"content-type": []byte("application/json"),
		"event-type":   []byte(event.Event),
	}
	if event.RequestID != "" {
		headers["request-id"] = []byte(event.RequestID)
	}

	if err := p.producer.PublishSync(p.topic, []byte(event.ID), headers, payload); err != nil {
		return fmt.Errorf("kafka publisher: publish webhook event: %w", err)
	}

	p.logger.Debug().
		Str("event_id", event.ID).
		Str("event", event.Event).
		Str("topic", p.topic).
		Msg("webhook event published")
	return nil
}
