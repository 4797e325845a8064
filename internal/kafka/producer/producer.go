package producer

import (
	"errors"
	"fmt"
	"reflect"
	"sort"
	"sync"
	"sync/atomic"
	"time"

	"github.com/IBM/sarama"
	"github.com/rs/zerolog"
)

const (
	defaultHealthInterval = 30 * time.Second
	defaultClientID       = "whatsrb-relay"
)

// Option customises the producer during construction.
type Option func(*options)

type options struct {
	base           *sarama.Config
	healthInterval time.Duration
	clientID       string
	topics         []string
}

// WithConfig starts from a caller supplied Sarama config instead of the
// relay defaults. The config is copied; the caller keeps ownership.
func WithConfig(cfg *sarama.Config) Option {
	return func(o *options) {
		if cfg != nil {
			o.base = cfg
		}
	}
}

// WithMetadataRefreshInterval sets how long the producer may sit idle before
// it checks the brokers again.
func WithMetadataRefreshInterval(interval time.Duration) Option {
	return func(o *options) {
		if interval > 0 {
			o.healthInterval = interval
		}
	}
}

// WithClientID sets the client id reported to the brokers.
func WithClientID(id string) Option {
	return func(o *options) {
		if id != "" {
			o.clientID = id
		}
	}
}

// WithTopics names the topics the producer writes to. Readiness then means
// every one of them has a writable partition, and metadata refreshes are
// limited to them.
func WithTopics(topics ...string) Option {
	return func(o *options) {
		for _, topic := range topics {
			if topic != "" {
				o.topics = append(o.topics, topic)
			}
		}
	}
}

// Producer publishes webhook events through a single Sarama sync producer.
//
// Readiness follows the last thing the producer learned about the cluster:
// an acknowledged send marks it ready, a failed send marks it not ready, and
// when no send has been acknowledged for a full interval a background check
// refreshes metadata for the configured topics.
type Producer struct {
	logger zerolog.Logger

	client   sarama.Client
	syncProd sarama.SyncProducer
	topics   []string

	interval time.Duration
	now      func() time.Time

	ready   atomic.Bool
	lastAck atomic.Int64

	stopOnce sync.Once
	stopCh   chan struct{}
	wg       sync.WaitGroup
}

// New connects to brokers and starts the readiness watcher.
func New(brokers []string, logger zerolog.Logger, opts ...Option) (*Producer, error) {
	if len(brokers) == 0 {
		return nil, errors.New("kafka producer: at least one broker is required")
	}

	settings := &options{
		healthInterval: defaultHealthInterval,
		clientID:       defaultClientID,
	}
	for _, opt := range opts {
		if opt != nil {
			opt(settings)
		}
	}

	cfg := saramaConfig(settings)
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("kafka producer: invalid config: %w", err)
	}

	client, err := sarama.NewClient(brokers, cfg)
	if err != nil {
		return nil, fmt.Errorf("kafka producer: create client: %w", err)
	}
	syncProd, err := sarama.NewSyncProducerFromClient(client)
	if err != nil {
		client.Close()
		return nil, fmt.Errorf("kafka producer: create sync producer: %w", err)
	}

	p := newProducer(client, syncProd, settings.topics, settings.healthInterval, logger)
	p.checkCluster()
	p.start()
	return p, nil
}

func newProducer(client sarama.Client, syncProd sarama.SyncProducer, topics []string, interval time.Duration, logger zerolog.Logger) *Producer {
	if reflect.ValueOf(logger).IsZero() {
		logger = zerolog.Nop()
	}
	if interval <= 0 {
		interval = defaultHealthInterval
	}
	return &Producer{
		logger:   logger,
		client:   client,
		syncProd: syncProd,
		topics:   topics,
		interval: interval,
		now:      time.Now,
		stopCh:   make(chan struct{}),
	}
}

// PublishSync sends one record and blocks until the brokers acknowledge it.
func (p *Producer) PublishSync(topic string, key []byte, headers map[string][]byte, payload []byte) error {
	if topic == "" {
		return errors.New("kafka producer: topic is required")
	}

	msg := &sarama.ProducerMessage{
		Topic:   topic,
		Value:   sarama.ByteEncoder(payload),
		Headers: recordHeaders(headers),
	}
	if len(key) > 0 {
		msg.Key = sarama.ByteEncoder(key)
	}

	partition, offset, err := p.syncProd.SendMessage(msg)
	if err != nil {
		p.ready.Store(false)
		return fmt.Errorf("kafka producer: send sync: %w", err)
	}

	p.lastAck.Store(p.now().UnixNano())
	p.ready.Store(true)
	p.logger.Debug().
		Str("topic", topic).
		Int32("partition", partition).
		Int64("offset", offset).
		Msg("kafka record acknowledged")
	return nil
}

// IsReady reports whether the last send or cluster check succeeded.
func (p *Producer) IsReady() bool {
	return p.ready.Load()
}

// Close stops the watcher and releases the Sarama resources. It is safe to
// call more than once.
func (p *Producer) Close() error {
	p.stopOnce.Do(func() { close(p.stopCh) })
	p.wg.Wait()

	var errs []error
	if p.syncProd != nil {
		if err := p.syncProd.Close(); err != nil {
			errs = append(errs, err)
		}
	}
	if p.client != nil && !p.client.Closed() {
		if err := p.client.Close(); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

func (p *Producer) start() {
	p.wg.Add(1)
	go func() {
		defer p.wg.Done()
		ticker := time.NewTicker(p.interval)
		defer ticker.Stop()
		for {
			select {
			case <-p.stopCh:
				return
			case <-ticker.C:
				if p.idle() {
					p.checkCluster()
				}
			}
		}
	}()
}

// idle reports whether no send was acknowledged within the last interval.
func (p *Producer) idle() bool {
	last := p.lastAck.Load()
	return last == 0 || p.now().Sub(time.Unix(0, last)) >= p.interval
}

// checkCluster refreshes metadata for the producer's topics and updates
// readiness from the result.
func (p *Producer) checkCluster() {
	if err := p.clusterReady(); err != nil {
		if p.ready.Swap(false) {
			p.logger.Error().Err(err).Strs("topics", p.topics).Msg("kafka producer lost the cluster")
		} else {
			p.logger.Warn().Err(err).Strs("topics", p.topics).Msg("kafka producer not ready")
		}
		return
	}
	if !p.ready.Swap(true) {
		p.logger.Info().Strs("topics", p.topics).Msg("kafka producer ready")
	}
}

func (p *Producer) clusterReady() error {
	if err := p.client.RefreshMetadata(p.topics...); err != nil {
		return fmt.Errorf("kafka producer: refresh metadata: %w", err)
	}
	for _, topic := range p.topics {
		partitions, err := p.client.WritablePartitions(topic)
		if err != nil {
			return fmt.Errorf("kafka producer: partitions for %s: %w", topic, err)
		}
		if len(partitions) == 0 {
			return fmt.Errorf("kafka producer: no writable partition for %s", topic)
		}
	}
	return nil
}

// recordHeaders converts headers to Kafka record headers in key order,
// copying values so callers may reuse their buffers.
func recordHeaders(headers map[string][]byte) []sarama.RecordHeader {
	if len(headers) == 0 {
		return nil
	}
	keys := make([]string, 0, len(headers))
	for k := range headers {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	out := make([]sarama.RecordHeader, len(keys))
	for i, k := range keys {
		out[i] = sarama.RecordHeader{Key: []byte(k), Value: append([]byte(nil), headers[k]...)}
	}
	return out
}

// saramaConfig builds the client config: the caller's base when given,
// otherwise an idempotent producer that waits for all in-sync replicas.
func saramaConfig(o *options) *sarama.Config {
	var cfg *sarama.Config
	if o.base != nil {
		copied := *o.base
		cfg = &copied
	} else {
		cfg = sarama.NewConfig()
		cfg.Version = sarama.V2_5_0_0
		cfg.Producer.RequiredAcks = sarama.WaitForAll
		cfg.Producer.Idempotent = true
		cfg.Producer.Retry.Max = 6
		cfg.Producer.Retry.Backoff = 250 * time.Millisecond
		cfg.Producer.Partitioner = sarama.NewHashPartitioner
		cfg.Net.MaxOpenRequests = 1
	}

	// The sync producer needs both channels.
	cfg.Producer.Return.Successes = true
	cfg.Producer.Return.Errors = true
	cfg.ClientID = o.clientID
	cfg.Metadata.RefreshFrequency = o.healthInterval
	cfg.Metadata.Full = len(o.topics) == 0
	return cfg
}
