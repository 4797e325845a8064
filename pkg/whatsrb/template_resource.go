package whatsrb

import (
	"context"
	"encoding/json"
	"net/url"
	"strings"
)

// TemplateParams describe a new template.
type TemplateParams struct {
	Name             string `json:"name"`
	Category         string `json:"category,omitempty"`
	Language         string `json:"language,omitempty"`
	HeaderType       string `json:"header_type,omitempty"`
	Components       any    `json:"components,omitempty"`
	VariableExamples any    `json:"variable_examples,omitempty"`
}

// TemplateFilter narrows a template listing. Empty fields are not sent.
type TemplateFilter struct {
	Status   string
	Category string
}

func (f TemplateFilter) query() string {
	var params []string
	if f.Status != "" {
		params = append(params, "status="+url.QueryEscape(f.Status))
	}
	if f.Category != "" {
		params = append(params, "category="+url.QueryEscape(f.Category))
	}
	if len(params) == 0 {
		return ""
	}
	return "?" + strings.Join(params, "&")
}

// TemplatesResource accesses the templates of one business account.
type TemplatesResource struct {
	b         backend
	accountID string
}

func (r *TemplatesResource) basePath() string {
	return businessAccountsPath + "/" + pathID(r.accountID) + "/templates"
}

// List returns the account's templates.
func (r *TemplatesResource) List(ctx context.Context, filter TemplateFilter) (*List[*Template], error) {
	raw, err := r.b.Get(ctx, r.basePath()+filter.query())
	if err != nil {
		return nil, err
	}
	return decodeList(templatesContract.name, raw, decodeTemplate)
}

// Retrieve fetches one template.
func (r *TemplatesResource) Retrieve(ctx context.Context, id string) (*Template, error) {
	raw, err := r.b.Get(ctx, r.basePath()+"/"+pathID(id))
	if err != nil {
		return nil, err
	}
	return decodeEntityTemplate(raw)
}

// Create submits a new template for review.
func (r *TemplatesResource) Create(ctx context.Context, params TemplateParams) (*Template, error) {
	if strings.TrimSpace(params.Name) == "" {
		return nil, validationError("Template name is required")
	}
	raw, err := r.b.Post(ctx, r.basePath(), templatesContract.wrap(params))
	if err != nil {
		return nil, err
	}
	return decodeEntityTemplate(raw)
}

// Delete removes a template. It returns true on any successful response.
func (r *TemplatesResource) Delete(ctx context.Context, id string) (bool, error) {
	if _, err := r.b.Delete(ctx, r.basePath()+"/"+pathID(id)); err != nil {
		return false, err
	}
	return true, nil
}

// Sync pulls the account's templates from Meta and returns the result.
func (r *TemplatesResource) Sync(ctx context.Context) (*List[*Template], error) {
	raw, err := r.b.Post(ctx, r.basePath()+"/sync", emptyBody)
	if err != nil {
		return nil, err
	}
	return decodeList(templatesContract.name, raw, decodeTemplate)
}

// Clone copies a template into a new draft.
func (r *TemplatesResource) Clone(ctx context.Context, id string) (*Template, error) {
	raw, err := r.b.Post(ctx, r.basePath()+"/"+pathID(id)+"/clone", emptyBody)
	if err != nil {
		return nil, err
	}
	return decodeEntityTemplate(raw)
}

// SendTest sends the template to a single recipient. Variables are omitted
// from the request when empty.
func (r *TemplatesResource) SendTest(ctx context.Context, id, to string, variables ...string) (*Message, error) {
	if err := checkRecipient(to); err != nil {
		return nil, err
	}
	body := map[string]any{"to": to}
	if len(variables) > 0 {
		body["variables"] = variables
	}
	raw, err := r.b.Post(ctx, r.basePath()+"/"+pathID(id)+"/send_test", body)
	if err != nil {
		return nil, err
	}
	return decodeEntityMessage(templatesContract, raw)
}

func decodeEntityTemplate(raw json.RawMessage) (*Template, error) {
	data, err := entity(templatesContract, raw)
	if err != nil {
		return nil, err
	}
	return decodeTemplate(data)
}
