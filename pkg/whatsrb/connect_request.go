package whatsrb

import (
	"context"
	"encoding/json"
	"fmt"
)

// Connect request statuses. Everything but pending is terminal.
const (
	ConnectPending   = "pending"
	ConnectCompleted = "completed"
	ConnectExpired   = "expired"
	ConnectFailed    = "failed"
)

// ConnectRequest tracks a hosted business-account onboarding flow. The user
// completes the flow at URL; the request then resolves to an Account.
type ConnectRequest struct {
	ID        string    `json:"id"`
	URL       string    `json:"url"`
	Status    string    `json:"status"`
	ExpiresAt Timestamp `json:"expires_at"`
	// FailureReason is the server's explanation when Status is failed.
	FailureReason string `json:"error"`
	// Account is set once the request has completed.
	Account *BusinessAccount `json:"-"`

	b   backend
	raw json.RawMessage
}

func decodeConnectRequest(data json.RawMessage, b backend) (*ConnectRequest, error) {
	var cr ConnectRequest
	if err := json.Unmarshal(data, &cr); err != nil {
		return nil, fmt.Errorf("whatsrb: decode connect request: %w", err)
	}

	var nested struct {
		Account json.RawMessage `json:"account"`
	}
	if err := json.Unmarshal(data, &nested); err != nil {
		return nil, fmt.Errorf("whatsrb: decode connect request: %w", err)
	}
	if account := nullToNil(nested.Account); isJSONObject(account) {
		a, err := decodeBusinessAccount(account, b)
		if err != nil {
			return nil, err
		}
		cr.Account = a
	}

	cr.b = b
	cr.raw = data
	return &cr, nil
}

// Raw returns the JSON the request was first built from.
func (cr *ConnectRequest) Raw() json.RawMessage { return cr.raw }

func (cr *ConnectRequest) IsPending() bool   { return cr.Status == ConnectPending }
func (cr *ConnectRequest) IsCompleted() bool { return cr.Status == ConnectCompleted }
func (cr *ConnectRequest) IsExpired() bool   { return cr.Status == ConnectExpired }
func (cr *ConnectRequest) IsFailed() bool    { return cr.Status == ConnectFailed }

// Reload re-fetches the request and replaces its status, account, failure
// reason and expiry.
func (cr *ConnectRequest) Reload(ctx context.Context) (*ConnectRequest, error) {
	fresh, err := (&ConnectsResource{b: bound(cr.b)}).Retrieve(ctx, cr.ID)
	if err != nil {
		return nil, err
	}
	cr.Status = fresh.Status
	cr.Account = fresh.Account
	cr.FailureReason = fresh.FailureReason
	cr.ExpiresAt = fresh.ExpiresAt
	return cr, nil
}

// Refresh is an alias for Reload.
func (cr *ConnectRequest) Refresh(ctx context.Context) (*ConnectRequest, error) {
	return cr.Reload(ctx)
}

// WaitForAccount polls until the flow resolves. It returns the connected
// account, ErrConnectExpired or ErrConnectFailed as soon as the request
// reaches that state, or ErrTimeout once the deadline passes. Zero options
// mean a 300s timeout and a 2s interval.
func (cr *ConnectRequest) WaitForAccount(ctx context.Context, opts WaitOptions) (*BusinessAccount, error) {
	b := bound(cr.b)
	opts = opts.withDefaults(defaultAccountTimeout)
	logger := b.log()

	err := pollUntil(ctx, b.pollClock(), opts, "Timed out waiting for account connection", func(ctx context.Context) (bool, error) {
		if _, err := cr.Reload(ctx); err != nil {
			return false, err
		}
		logger.Debug().Str("connect_id", cr.ID).Str("status", cr.Status).Msg("polled connect request")

		switch {
		case cr.IsCompleted() && cr.Account != nil:
			return true, nil
		case cr.IsExpired():
			return false, newError(ErrConnectExpired, "Connect request expired")
		case cr.IsFailed():
			return false, newError(ErrConnectFailed, "Connect request failed: "+cr.FailureReason)
		default:
			return false, nil
		}
	})
	if err != nil {
		return nil, err
	}
	return cr.Account, nil
}
