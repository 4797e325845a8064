package whatsrb

import (
	"context"
	"encoding/json"
)

// SessionParams are the fields accepted when creating a session.
type SessionParams struct {
	Name string `json:"name"`
}

// SessionsResource accesses /sessions.
type SessionsResource struct {
	b backend
}

const sessionsPath = "/sessions"

// List returns every session of the account.
func (r *SessionsResource) List(ctx context.Context) (*List[*Session], error) {
	raw, err := r.b.Get(ctx, sessionsPath)
	if err != nil {
		return nil, err
	}
	return decodeList(sessionsContract.name, raw, func(data json.RawMessage) (*Session, error) {
		return decodeSession(data, r.b)
	})
}

// Create starts a new session. The new session usually begins in
// "initializing"; use WaitForQR to follow the pairing.
func (r *SessionsResource) Create(ctx context.Context, params SessionParams) (*Session, error) {
	raw, err := r.b.Post(ctx, sessionsPath, sessionsContract.wrap(params))
	if err != nil {
		return nil, err
	}
	return r.decode(raw)
}

// Retrieve fetches one session.
func (r *SessionsResource) Retrieve(ctx context.Context, id string) (*Session, error) {
	raw, err := r.b.Get(ctx, sessionsPath+"/"+pathID(id))
	if err != nil {
		return nil, err
	}
	return r.decode(raw)
}

// Delete removes a session. It returns true on any successful response.
func (r *SessionsResource) Delete(ctx context.Context, id string) (bool, error) {
	if _, err := r.b.Delete(ctx, sessionsPath+"/"+pathID(id)); err != nil {
		return false, err
	}
	return true, nil
}

func (r *SessionsResource) decode(raw json.RawMessage) (*Session, error) {
	data, err := entity(sessionsContract, raw)
	if err != nil {
		return nil, err
	}
	return decodeSession(data, r.b)
}
