package whatsrb

import (
	"fmt"
	"sync"
	"time"
)

const (
	// DefaultBaseURL is the hosted API endpoint.
	DefaultBaseURL = "https://api.whatsrb.com"
	// DefaultTimeout bounds each individual HTTP request.
	DefaultTimeout = 30 * time.Second
	// Version is reported in the User-Agent header.
	Version = "0.4.0"

	apiPrefix = "/api/v1"
)

// Config carries the credentials and endpoint for a Client. It is copied into
// the Transport at construction time and never mutated afterwards.
type Config struct {
	APIKey  string
	BaseURL string
	Timeout time.Duration
}

// String keeps the API key out of logs and fmt output.
func (c Config) String() string {
	return fmt.Sprintf("whatsrb.Config{base_url=%q timeout=%s api_key=[FILTERED]}", c.BaseURL, c.Timeout)
}

// GoString mirrors String so %#v does not leak the key either.
func (c Config) GoString() string { return c.String() }

func (c Config) withDefaults() Config {
	if c.BaseURL == "" {
		c.BaseURL = DefaultBaseURL
	}
	if c.Timeout <= 0 {
		c.Timeout = DefaultTimeout
	}
	return c
}

var (
	defaultMu     sync.RWMutex
	defaultConfig *Config
)

// SetDefaultConfig installs a process-wide configuration used by
// NewDefaultClient. Call it once during startup; later calls fail so that a
// running process never observes the default changing underneath it.
func SetDefaultConfig(cfg Config) error {
	defaultMu.Lock()
	defer defaultMu.Unlock()
	if defaultConfig != nil {
		return newError(ErrConfiguration, "default configuration already set")
	}
	c := cfg
	defaultConfig = &c
	return nil
}

// DefaultConfig returns the process-wide configuration and whether one was set.
func DefaultConfig() (Config, bool) {
	defaultMu.RLock()
	defer defaultMu.RUnlock()
	if defaultConfig == nil {
		return Config{}, false
	}
	return *defaultConfig, true
}

// resetDefaultConfig is used by tests.
func resetDefaultConfig() {
	defaultMu.Lock()
	defaultConfig = nil
	defaultMu.Unlock()
}
