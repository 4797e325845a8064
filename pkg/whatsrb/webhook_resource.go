package whatsrb

import (
	"context"
	"encoding/json"
	"errors"

	"github.com/example/whatsrb-cloud-go/internal/util"
)

// WebhookParams describe a webhook registration. On update only the set
// fields are sent.
type WebhookParams struct {
	URL    string   `json:"url,omitempty"`
	Events []string `json:"events,omitempty"`
	Active *bool    `json:"active,omitempty"`
}

func (p WebhookParams) validate(requireURL bool) error {
	if p.URL == "" {
		if requireURL {
			return validationError("Webhook url is required")
		}
		return nil
	}
	if _, err := util.ValidateHTTPURL(p.URL); err != nil {
		if errors.Is(err, util.ErrInvalidURL) {
			return validationError("Invalid webhook url: %s", p.URL)
		}
		return err
	}
	return nil
}

// WebhooksResource accesses /webhooks.
type WebhooksResource struct {
	b backend
}

const webhooksPath = "/webhooks"

// List returns every webhook.
func (r *WebhooksResource) List(ctx context.Context) (*List[*Webhook], error) {
	raw, err := r.b.Get(ctx, webhooksPath)
	if err != nil {
		return nil, err
	}
	return decodeList(webhooksContract.name, raw, decodeWebhook)
}

// Create registers a webhook. The returned value carries the signing secret.
func (r *WebhooksResource) Create(ctx context.Context, params WebhookParams) (*Webhook, error) {
	if err := params.validate(true); err != nil {
		return nil, err
	}
	raw, err := r.b.Post(ctx, webhooksPath, webhooksContract.wrap(params))
	if err != nil {
		return nil, err
	}
	return decodeEntityWebhook(raw)
}

// Retrieve fetches one webhook.
func (r *WebhooksResource) Retrieve(ctx context.Context, id string) (*Webhook, error) {
	raw, err := r.b.Get(ctx, webhooksPath+"/"+pathID(id))
	if err != nil {
		return nil, err
	}
	return decodeEntityWebhook(raw)
}

// Update changes a webhook's url, events or active flag.
func (r *WebhooksResource) Update(ctx context.Context, id string, params WebhookParams) (*Webhook, error) {
	if err := params.validate(false); err != nil {
		return nil, err
	}
	raw, err := r.b.Patch(ctx, webhooksPath+"/"+pathID(id), webhooksContract.wrap(params))
	if err != nil {
		return nil, err
	}
	return decodeEntityWebhook(raw)
}

// Delete removes a webhook. It returns true on any successful response.
func (r *WebhooksResource) Delete(ctx context.Context, id string) (bool, error) {
	if _, err := r.b.Delete(ctx, webhooksPath+"/"+pathID(id)); err != nil {
		return false, err
	}
	return true, nil
}

func decodeEntityWebhook(raw json.RawMessage) (*Webhook, error) {
	data, err := entity(webhooksContract, raw)
	if err != nil {
		return nil, err
	}
	return decodeWebhook(data)
}
