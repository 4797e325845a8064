package consumer

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"reflect"
	"sync"
	"sync/atomic"
	"time"

	"github.com/IBM/sarama"
	"github.com/rs/zerolog"

	"github.com/example/whatsrb-cloud-go/internal/models"
)

const (
	defaultSessionTimeout   = 30 * time.Second
	defaultHeartbeat        = 3 * time.Second
	defaultRebalanceTimeout = 30 * time.Second
	defaultConsumeBackoff   = time.Second
	defaultClientID         = "whatsrb-events"
)

// Handler is invoked for every webhook event read from the topic. A nil
// return marks the record as processed.
type Handler func(ctx context.Context, event models.WebhookEvent) error

// Option customises the consumer during construction.
type Option func(*options)

type options struct {
	config     *sarama.Config
	fromOldest bool
}

// WithConfig allows callers to supply a Sarama config. The configuration is
// cloned internally so the caller retains ownership.
func WithConfig(cfg *sarama.Config) Option {
	return func(o *options) {
		if cfg != nil {
			o.config = cfg
		}
	}
}

// WithOldestOffset starts a new group at the beginning of the topic instead
// of only reading events published from now on.
func WithOldestOffset() Option {
	return func(o *options) {
		o.fromOldest = true
	}
}

// Consumer reads verified webhook events that the relay published to Kafka.
type Consumer struct {
	logger zerolog.Logger

	group        sarama.ConsumerGroup
	groupID      string
	topic        string
	errorsDoneCh chan struct{}

	ready atomic.Bool

	cancelMu sync.Mutex
	cancel   context.CancelFunc
	wg       sync.WaitGroup
}

// New constructs a consumer for topic in consumer group groupID.
func New(brokers []string, groupID, topic string, logger zerolog.Logger, opts ...Option) (*Consumer, error) {
	if len(brokers) == 0 {
		return nil, errors.New("kafka consumer: at least one broker is required")
	}
	if groupID == "" {
		return nil, errors.New("kafka consumer: group id is required")
	}
	if topic == "" {
		return nil, errors.New("kafka consumer: topic is required")
	}

	if reflect.ValueOf(logger).IsZero() {
		logger = zerolog.Nop()
	}

	settings := &options{}
	for _, opt := range opts {
		if opt != nil {
			opt(settings)
		}
	}

	cfg := cloneConfig(settings.config)
	if settings.fromOldest {
		cfg.Consumer.Offsets.Initial = sarama.OffsetOldest
	}

	group, err := sarama.NewConsumerGroup(brokers, groupID, cfg)
	if err != nil {
		return nil, fmt.Errorf("kafka consumer: create consumer group: %w", err)
	}

	c := &Consumer{
		logger:       logger,
		group:        group,
		groupID:      groupID,
		topic:        topic,
		errorsDoneCh: make(chan struct{}),
	}

	go c.consumeErrors()

	return c, nil
}

// Consume invokes handler for each event until ctx is cancelled or the
// consumer is closed. Rebalances and transient broker errors are retried.
func (c *Consumer) Consume(ctx context.Context, handler Handler) error {
	if handler == nil {
		return errors.New("kafka consumer: handler is required")
	}

	ctx, cancel := context.WithCancel(ctx)
	c.cancelMu.Lock()
	c.cancel = cancel
	c.cancelMu.Unlock()

	c.wg.Add(1)
	defer c.wg.Done()

	gh := newGroupHandler(handler, &c.ready, c.logger.With().Str("group_id", c.groupID).Logger())
	for {
		if err := ctx.Err(); err != nil {
			return err
		}

		err := c.group.Consume(ctx, []string{c.topic}, gh)
		if err != nil {
			if errors.Is(err, sarama.ErrClosedConsumerGroup) {
				return nil
			}
			c.logger.Error().Err(err).Str("topic", c.topic).Msg("kafka consumer: consume error")
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(defaultConsumeBackoff):
			}
		}
	}
}

// IsReady returns true once the consumer has joined the group.
func (c *Consumer) IsReady() bool {
	return c.ready.Load()
}

// Close shuts down the consumer group and waits for Consume to return.
func (c *Consumer) Close() error {
	c.cancelMu.Lock()
	if c.cancel != nil {
		c.cancel()
	}
	c.cancelMu.Unlock()

	err := c.group.Close()
	c.wg.Wait()
	<-c.errorsDoneCh
	return err
}

func (c *Consumer) consumeErrors() {
	defer close(c.errorsDoneCh)
	for err := range c.group.Errors() {
		if err != nil {
			c.logger.Error().Err(err).Msg("kafka consumer error")
		}
	}
}

type groupHandler struct {
	handler Handler
	ready   *atomic.Bool
	logger  zerolog.Logger
}

func newGroupHandler(handler Handler, ready *atomic.Bool, logger zerolog.Logger) *groupHandler {
	return &groupHandler{handler: handler, ready: ready, logger: logger}
}

func (h *groupHandler) Setup(sarama.ConsumerGroupSession) error {
	h.ready.Store(true)
	h.logger.Info().Msg("kafka consumer group ready")
	return nil
}

func (h *groupHandler) Cleanup(sarama.ConsumerGroupSession) error {
	h.ready.Store(false)
	h.logger.Info().Msg("kafka consumer group cleanup")
	return nil
}

// ConsumeClaim marks records that cannot be decoded so they are not redelivered
// forever. A handler error ends the claim without marking the record.
func (h *groupHandler) ConsumeClaim(session sarama.ConsumerGroupSession, claim sarama.ConsumerGroupClaim) error {
	for msg := range claim.Messages() {
		event, err := decodeEvent(msg)
		if err != nil {
			h.logger.Warn().
				Err(err).
				Str("topic", msg.Topic).
				Int32("partition", msg.Partition).
				Int64("offset", msg.Offset).
				Msg("skipping undecodable webhook event")
			session.MarkMessage(msg, "")
			continue
		}

		if err := h.handler(session.Context(), event); err != nil {
			h.logger.Error().
				Err(err).
				Str("event_id", event.ID).
				Int32("partition", msg.Partition).
				Int64("offset", msg.Offset).
				Msg("kafka consumer handler error")
			return err
		}
		session.MarkMessage(msg, "")
	}

	return nil
}

// decodeEvent falls back to the record key for events published without an id.
func decodeEvent(msg *sarama.ConsumerMessage) (models.WebhookEvent, error) {
	var event models.WebhookEvent
	if err := json.Unmarshal(msg.Value, &event); err != nil {
		return models.WebhookEvent{}, fmt.Errorf("kafka consumer: decode webhook event: %w", err)
	}
	if event.Event == "" {
		return models.WebhookEvent{}, errors.New("kafka consumer: webhook event has no event name")
	}
	if event.ID == "" {
		event.ID = string(msg.Key)
	}
	return event, nil
}

func defaultConfig() *sarama.Config {
	cfg := sarama.NewConfig()
	cfg.Version = sarama.V2_5_0_0
	cfg.ClientID = defaultClientID

	cfg.Consumer.Group.Session.Timeout = defaultSessionTimeout
	cfg.Consumer.Group.Heartbeat.Interval = defaultHeartbeat
	cfg.Consumer.Group.Rebalance.Timeout = defaultRebalanceTimeout
	cfg.Consumer.Group.Rebalance.Strategy = sarama.BalanceStrategyRange
	cfg.Consumer.Offsets.Initial = sarama.OffsetNewest
	cfg.Consumer.Offsets.AutoCommit.Enable = true
	cfg.Consumer.Return.Errors = true

	return cfg
}

func cloneConfig(cfg *sarama.Config) *sarama.Config {
	if cfg == nil {
		return defaultConfig()
	}
	cloned := *cfg
	return &cloned
}
