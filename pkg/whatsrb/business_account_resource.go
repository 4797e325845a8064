package whatsrb

import (
	"context"
	"encoding/json"
)

// BusinessAccountParams are the fields for attaching an existing Cloud API
// number by hand.
type BusinessAccountParams struct {
	WABAID        string `json:"waba_id,omitempty"`
	PhoneNumberID string `json:"phone_number_id,omitempty"`
	AccessToken   string `json:"access_token,omitempty"`
	BusinessName  string `json:"business_name,omitempty"`
	DisplayName   string `json:"display_name,omitempty"`
	PhoneNumber   string `json:"phone_number,omitempty"`
}

// BusinessAccountsResource accesses /business_accounts.
type BusinessAccountsResource struct {
	b backend
}

const businessAccountsPath = "/business_accounts"

// List returns every business account.
func (r *BusinessAccountsResource) List(ctx context.Context) (*List[*BusinessAccount], error) {
	raw, err := r.b.Get(ctx, businessAccountsPath)
	if err != nil {
		return nil, err
	}
	return decodeList(businessAccountsContract.name, raw, func(data json.RawMessage) (*BusinessAccount, error) {
		return decodeBusinessAccount(data, r.b)
	})
}

// Retrieve fetches one business account.
func (r *BusinessAccountsResource) Retrieve(ctx context.Context, id string) (*BusinessAccount, error) {
	raw, err := r.b.Get(ctx, businessAccountsPath+"/"+pathID(id))
	if err != nil {
		return nil, err
	}
	return r.decode(raw)
}

// Connect starts a hosted onboarding flow. Send the user to the returned
// request's URL, then call WaitForAccount.
func (r *BusinessAccountsResource) Connect(ctx context.Context) (*ConnectRequest, error) {
	raw, err := r.b.Post(ctx, businessAccountsPath+"/connect", emptyBody)
	if err != nil {
		return nil, err
	}
	data, err := entity(connectsContract, raw)
	if err != nil {
		return nil, err
	}
	return decodeConnectRequest(data, r.b)
}

// ConnectManual registers an account from existing Cloud API credentials.
func (r *BusinessAccountsResource) ConnectManual(ctx context.Context, params BusinessAccountParams) (*BusinessAccount, error) {
	raw, err := r.b.Post(ctx, businessAccountsPath, businessAccountsContract.wrap(params))
	if err != nil {
		return nil, err
	}
	return r.decode(raw)
}

// Create is an alias for ConnectManual.
func (r *BusinessAccountsResource) Create(ctx context.Context, params BusinessAccountParams) (*BusinessAccount, error) {
	return r.ConnectManual(ctx, params)
}

// Delete removes a business account. It returns true on any successful
// response.
func (r *BusinessAccountsResource) Delete(ctx context.Context, id string) (bool, error) {
	if _, err := r.b.Delete(ctx, businessAccountsPath+"/"+pathID(id)); err != nil {
		return false, err
	}
	return true, nil
}

func (r *BusinessAccountsResource) decode(raw json.RawMessage) (*BusinessAccount, error) {
	data, err := entity(businessAccountsContract, raw)
	if err != nil {
		return nil, err
	}
	return decodeBusinessAccount(data, r.b)
}

// ConnectsResource accesses /connects.
type ConnectsResource struct {
	b backend
}

// Retrieve fetches one connect request.
func (r *ConnectsResource) Retrieve(ctx context.Context, id string) (*ConnectRequest, error) {
	raw, err := r.b.Get(ctx, "/connects/"+pathID(id))
	if err != nil {
		return nil, err
	}
	data, err := entity(connectsContract, raw)
	if err != nil {
		return nil, err
	}
	return decodeConnectRequest(data, r.b)
}
