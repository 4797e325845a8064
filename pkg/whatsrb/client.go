package whatsrb

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"

	"github.com/rs/zerolog"
)

// requester is the slice of Transport the accessors depend on.
type requester interface {
	Get(ctx context.Context, path string) (json.RawMessage, error)
	Post(ctx context.Context, path string, body any) (json.RawMessage, error)
	Patch(ctx context.Context, path string, body any) (json.RawMessage, error)
	Delete(ctx context.Context, path string) (json.RawMessage, error)
}

// backend is what accessors and domain objects hold on to: the ability to
// issue requests plus the clock and logger used while polling. Domain objects
// keep it as a non-owning reference so they can reload themselves.
type backend interface {
	requester
	pollClock() Clock
	log() *zerolog.Logger
}

// Client is the entry point to the API. It owns one Transport and hands out
// accessors for each collection. A Client is safe for concurrent use.
type Client struct {
	transport *Transport
	logger    zerolog.Logger
	clock     Clock
}

// NewClient builds a Client from an explicit configuration.
func NewClient(cfg Config, opts ...Option) (*Client, error) {
	o := applyOptions(opts)
	transport, err := newTransport(cfg.withDefaults(), o)
	if err != nil {
		return nil, err
	}
	return &Client{
		transport: transport,
		logger:    o.logger,
		clock:     o.clock,
	}, nil
}

// NewDefaultClient builds a Client from the configuration installed with
// SetDefaultConfig.
func NewDefaultClient(opts ...Option) (*Client, error) {
	cfg, ok := DefaultConfig()
	if !ok {
		return nil, newError(ErrConfiguration, "no default configuration set")
	}
	return NewClient(cfg, opts...)
}

// String keeps the API key out of logs and fmt output.
func (c *Client) String() string {
	return fmt.Sprintf("whatsrb.Client{%s}", c.transport)
}

// Transport returns the underlying transport for raw calls.
func (c *Client) Transport() *Transport { return c.transport }

// Sessions returns the accessor for /sessions.
func (c *Client) Sessions() *SessionsResource { return &SessionsResource{b: c} }

// Messages returns the accessor for messages sent through a session.
func (c *Client) Messages(sessionID string) *MessagesResource {
	return &MessagesResource{b: c, sessionID: sessionID}
}

// BusinessAccounts returns the accessor for /business_accounts.
func (c *Client) BusinessAccounts() *BusinessAccountsResource {
	return &BusinessAccountsResource{b: c}
}

// BusinessMessages returns the accessor for messages sent through a business
// account.
func (c *Client) BusinessMessages(accountID string) *BusinessMessagesResource {
	return &BusinessMessagesResource{b: c, accountID: accountID}
}

// Templates returns the accessor for a business account's templates.
func (c *Client) Templates(accountID string) *TemplatesResource {
	return &TemplatesResource{b: c, accountID: accountID}
}

// Connects returns the accessor for connect requests.
func (c *Client) Connects() *ConnectsResource { return &ConnectsResource{b: c} }

// Webhooks returns the accessor for /webhooks.
func (c *Client) Webhooks() *WebhooksResource { return &WebhooksResource{b: c} }

// Usage returns the accessor for /usage.
func (c *Client) Usage() *UsageResource { return &UsageResource{b: c} }

func (c *Client) Get(ctx context.Context, path string) (json.RawMessage, error) {
	return c.transport.Get(ctx, path)
}

func (c *Client) Post(ctx context.Context, path string, body any) (json.RawMessage, error) {
	return c.transport.Post(ctx, path, body)
}

func (c *Client) Patch(ctx context.Context, path string, body any) (json.RawMessage, error) {
	return c.transport.Patch(ctx, path, body)
}

func (c *Client) Delete(ctx context.Context, path string) (json.RawMessage, error) {
	return c.transport.Delete(ctx, path)
}

func (c *Client) pollClock() Clock { return c.clock }

func (c *Client) log() *zerolog.Logger { return &c.logger }

// detached stands in for the backend of values that were not produced by a
// Client, such as ones decoded by the caller. Every request fails.
type detached struct{}

var detachedLogger = zerolog.Nop()

func errDetached() error {
	return newError(ErrConfiguration, "object is not bound to a client")
}

func (detached) Get(context.Context, string) (json.RawMessage, error) { return nil, errDetached() }

func (detached) Post(context.Context, string, any) (json.RawMessage, error) {
	return nil, errDetached()
}

func (detached) Patch(context.Context, string, any) (json.RawMessage, error) {
	return nil, errDetached()
}

func (detached) Delete(context.Context, string) (json.RawMessage, error) { return nil, errDetached() }

func (detached) pollClock() Clock { return realClock{} }

func (detached) log() *zerolog.Logger { return &detachedLogger }

func bound(b backend) backend {
	if b == nil {
		return detached{}
	}
	return b
}

// pathID escapes an identifier for use as a single path segment.
func pathID(id string) string { return url.PathEscape(id) }

// entity extracts the entity from a single-object response, failing when the
// server returned none.
func entity(c resourceContract, raw json.RawMessage) (json.RawMessage, error) {
	body, err := c.entityJSON(raw)
	if err != nil {
		return nil, err
	}
	if body == nil {
		return nil, newError(ErrAPI, fmt.Sprintf("response carried no %s", c.name))
	}
	return body, nil
}
