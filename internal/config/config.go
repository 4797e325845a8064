package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"

	"github.com/example/whatsrb-cloud-go/internal/util"
	"github.com/example/whatsrb-cloud-go/pkg/whatsrb"
)

// Config captures the runtime configuration of the whatsrb binaries. The CLI
// only needs App and API; the webhook relay also needs Relay and Kafka.
type Config struct {
	App   AppConfig
	API   APIConfig
	Relay RelayConfig
	Kafka KafkaConfig
}

// AppConfig contains generic application level settings.
type AppConfig struct {
	Env      string
	LogLevel string
}

// APIConfig holds the credentials and endpoint of the hosted API.
type APIConfig struct {
	APIKey         string
	BaseURL        string
	TimeoutSeconds int
}

// Client converts the settings into a library configuration.
func (c APIConfig) Client() whatsrb.Config {
	return whatsrb.Config{
		APIKey:  c.APIKey,
		BaseURL: c.BaseURL,
		Timeout: time.Duration(c.TimeoutSeconds) * time.Second,
	}
}

// String keeps the API key out of logs.
func (c APIConfig) String() string {
	return fmt.Sprintf("{BaseURL:%s TimeoutSeconds:%d APIKey:[FILTERED]}", c.BaseURL, c.TimeoutSeconds)
}

// RelayConfig controls the inbound webhook relay.
type RelayConfig struct {
	ListenAddr       string
	WebhookSecret    string
	ToleranceSeconds int
	MaxBodyBytes     int
}

// Tolerance returns the replay window as a duration.
func (c RelayConfig) Tolerance() time.Duration {
	return time.Duration(c.ToleranceSeconds) * time.Second
}

// String keeps the webhook secret out of logs.
func (c RelayConfig) String() string {
	return fmt.Sprintf("{ListenAddr:%s ToleranceSeconds:%d MaxBodyBytes:%d WebhookSecret:[FILTERED]}",
		c.ListenAddr, c.ToleranceSeconds, c.MaxBodyBytes)
}

// KafkaConfig defines broker information and the topic verified webhook
// events are published to. ConsumerGroup is only used by `whatsrb events`.
type KafkaConfig struct {
	Brokers       []string
	WebhookTopic  string
	ConsumerGroup string
}

// Load reads the settings needed to talk to the API. WHATSRB_API_KEY is
// required.
func Load() (*Config, error) {
	_ = godotenv.Load()

	ldr := &envLoader{}
	cfg := &Config{}
	loadApp(ldr, cfg)
	loadAPI(ldr, cfg, true)

	if err := ldr.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// LoadRelay reads the settings of the webhook relay. The webhook secret, the
// Kafka brokers and the topic are required; the API key is optional because
// the relay never calls the API.
func LoadRelay() (*Config, error) {
	_ = godotenv.Load()

	ldr := &envLoader{}
	cfg := &Config{}
	loadApp(ldr, cfg)
	loadAPI(ldr, cfg, false)

	cfg.Relay.ListenAddr = ldr.getString("RELAY_LISTEN_ADDR", ":8080", false)
	cfg.Relay.WebhookSecret = ldr.getString("WHATSRB_WEBHOOK_SECRET", "", true)
	cfg.Relay.ToleranceSeconds = ldr.getInt("WEBHOOK_TOLERANCE_SECONDS", 300, false)
	cfg.Relay.MaxBodyBytes = ldr.getInt("RELAY_MAX_BODY_BYTES", 1<<20, false)
	if cfg.Relay.ToleranceSeconds < 0 {
		ldr.addError("WEBHOOK_TOLERANCE_SECONDS must not be negative")
	}
	if cfg.Relay.MaxBodyBytes <= 0 {
		ldr.addError("RELAY_MAX_BODY_BYTES must be positive")
	}

	loadKafka(ldr, cfg)

	if err := ldr.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// LoadEvents reads the settings needed to tail the relay's Kafka topic. No
// API key is required.
func LoadEvents() (*Config, error) {
	_ = godotenv.Load()

	ldr := &envLoader{}
	cfg := &Config{}
	loadApp(ldr, cfg)
	loadKafka(ldr, cfg)
	cfg.Kafka.ConsumerGroup = ldr.getString("KAFKA_CONSUMER_GROUP", "whatsrb-events", false)

	if err := ldr.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func loadKafka(ldr *envLoader, cfg *Config) {
	cfg.Kafka.Brokers = ldr.getStringSlice("KAFKA_BROKERS", true)
	cfg.Kafka.WebhookTopic = ldr.getString("KAFKA_WEBHOOK_TOPIC", "", true)
}

func loadApp(ldr *envLoader, cfg *Config) {
	cfg.App.Env = ldr.getString("APP_ENV", "development", false)
	cfg.App.LogLevel = ldr.getString("LOG_LEVEL", "info", false)
}

func loadAPI(ldr *envLoader, cfg *Config, requireKey bool) {
	cfg.API.APIKey = ldr.getString("WHATSRB_API_KEY", "", requireKey)
	cfg.API.BaseURL = ldr.getString("WHATSRB_BASE_URL", whatsrb.DefaultBaseURL, false)
	cfg.API.TimeoutSeconds = ldr.getInt("WHATSRB_TIMEOUT_SECONDS", int(whatsrb.DefaultTimeout/time.Second), false)

	if normalized, err := util.ValidateHTTPURL(cfg.API.BaseURL); err != nil {
		ldr.addError(fmt.Sprintf("WHATSRB_BASE_URL is invalid: %v", err))
	} else {
		cfg.API.BaseURL = normalized
	}
	if cfg.API.TimeoutSeconds <= 0 {
		ldr.addError("WHATSRB_TIMEOUT_SECONDS must be positive")
	}
}

type envLoader struct {
	errs []string
}

func (l *envLoader) validate() error {
	if len(l.errs) == 0 {
		return nil
	}
	return fmt.Errorf("config validation failed: %s", strings.Join(l.errs, "; "))
}

func (l *envLoader) getString(key, def string, required bool) string {
	if val, ok := os.LookupEnv(key); ok {
		val = strings.TrimSpace(val)
		if val == "" {
			if required {
				l.addError(fmt.Sprintf("%s is required", key))
			}
			return def
		}
		return val
	}
	if required {
		l.addError(fmt.Sprintf("%s is required", key))
	}
	return def
}

func (l *envLoader) getInt(key string, def int, required bool) int {
	if val, ok := os.LookupEnv(key); ok {
		val = strings.TrimSpace(val)
		if val == "" {
			if required {
				l.addError(fmt.Sprintf("%s is required", key))
			}
			return def
		}
		i, err := strconv.Atoi(val)
		if err != nil {
			l.addError(fmt.Sprintf("%s must be a valid integer", key))
			return def
		}
		return i
	}
	if required {
		l.addError(fmt.Sprintf("%s is required", key))
	}
	return def
}

func (l *envLoader) getStringSlice(key string, required bool) []string {
	raw := l.getString(key, "", required)
	if raw == "" {
		if required {
			return nil
		}
		return []string{}
	}
	parts := strings.Split(raw, ",")
	var out []string
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if p != "" {
			out = append(out, p)
		}
	}
	if required && len(out) == 0 {
		l.addError(fmt.Sprintf("%s must contain at least one entry", key))
	}
	return out
}

func (l *envLoader) addError(err string) {
	l.errs = append(l.errs, err)
}
