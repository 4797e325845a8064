package whatsrb

import (
	"encoding/json"
	"fmt"
)

// Template statuses.
const (
	TemplateApproved = "approved"
	TemplateRejected = "rejected"
	TemplatePending  = "pending"
	TemplateDraft    = "draft"
)

// Template is a snapshot of a message template of a business account.
type Template struct {
	ID               string          `json:"id"`
	MetaTemplateID   string          `json:"meta_template_id"`
	Name             string          `json:"name"`
	Category         string          `json:"category"`
	Status           string          `json:"status"`
	Language         string          `json:"language"`
	HeaderType       string          `json:"header_type"`
	Components       json.RawMessage `json:"components"`
	VariableExamples json.RawMessage `json:"variable_examples"`
	RejectionReason  string          `json:"rejection_reason"`

	raw json.RawMessage
}

func decodeTemplate(data json.RawMessage) (*Template, error) {
	var t Template
	if err := json.Unmarshal(data, &t); err != nil {
		return nil, fmt.Errorf("whatsrb: decode template: %w", err)
	}
	t.raw = data
	return &t, nil
}

// Raw returns the JSON the template was built from.
func (t *Template) Raw() json.RawMessage { return t.raw }

func (t *Template) IsApproved() bool { return t.Status == TemplateApproved }
func (t *Template) IsRejected() bool { return t.Status == TemplateRejected }
func (t *Template) IsPending() bool  { return t.Status == TemplatePending }
