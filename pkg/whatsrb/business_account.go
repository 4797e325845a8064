package whatsrb

import (
	"context"
	"encoding/json"
	"fmt"
)

// BusinessAccount is a snapshot of a WhatsApp Business (Cloud API) account.
type BusinessAccount struct {
	ID            string `json:"id"`
	WABAID        string `json:"waba_id"`
	BusinessName  string `json:"business_name"`
	DisplayName   string `json:"display_name"`
	PhoneNumber   string `json:"phone_number"`
	PhoneNumberID string `json:"phone_number_id"`
	Status        string `json:"status"`
	QualityRating string `json:"quality_rating"`
	Connected     bool   `json:"connected"`

	b   backend
	raw json.RawMessage
}

func decodeBusinessAccount(data json.RawMessage, b backend) (*BusinessAccount, error) {
	var a BusinessAccount
	if err := json.Unmarshal(data, &a); err != nil {
		return nil, fmt.Errorf("whatsrb: decode business account: %w", err)
	}
	a.b = b
	a.raw = data
	return &a, nil
}

// Raw returns the JSON the account was first built from.
func (a *BusinessAccount) Raw() json.RawMessage { return a.raw }

// IsConnected reports whether the account is usable for sending, either by
// the explicit flag or by its status.
func (a *BusinessAccount) IsConnected() bool {
	return a.Connected || a.Status == "connected"
}

// Messages returns the accessor for this account's messages.
func (a *BusinessAccount) Messages() *BusinessMessagesResource {
	return &BusinessMessagesResource{b: bound(a.b), accountID: a.ID}
}

// Templates returns the accessor for this account's templates.
func (a *BusinessAccount) Templates() *TemplatesResource {
	return &TemplatesResource{b: bound(a.b), accountID: a.ID}
}

// SendText sends a free-form text message.
func (a *BusinessAccount) SendText(ctx context.Context, to, text string) (*Message, error) {
	return a.Messages().Create(ctx, MessageParams{To: to, MessageType: MessageTypeText, Content: text})
}

// SendTemplate sends an approved template.
func (a *BusinessAccount) SendTemplate(ctx context.Context, to, templateName, templateLanguage string) (*Message, error) {
	return a.Messages().Create(ctx, MessageParams{
		To:               to,
		MessageType:      MessageTypeTemplate,
		TemplateName:     templateName,
		TemplateLanguage: templateLanguage,
	})
}

// Refresh re-fetches the account and replaces its status, quality rating,
// connected flag, display name and phone number.
func (a *BusinessAccount) Refresh(ctx context.Context) (*BusinessAccount, error) {
	fresh, err := (&BusinessAccountsResource{b: bound(a.b)}).Retrieve(ctx, a.ID)
	if err != nil {
		return nil, err
	}
	a.Status = fresh.Status
	a.QualityRating = fresh.QualityRating
	a.Connected = fresh.Connected
	a.DisplayName = fresh.DisplayName
	a.PhoneNumber = fresh.PhoneNumber
	return a, nil
}
