package whatsrb

import (
	"context"
	"encoding/json"
)

// MessagesResource accesses the messages of one session.
type MessagesResource struct {
	b         backend
	sessionID string
}

func (r *MessagesResource) basePath() string {
	return sessionsPath + "/" + pathID(r.sessionID) + "/messages"
}

// List returns the session's messages.
func (r *MessagesResource) List(ctx context.Context) (*List[*Message], error) {
	raw, err := r.b.Get(ctx, r.basePath())
	if err != nil {
		return nil, err
	}
	return decodeList(sessionMessagesContract.name, raw, decodeMessage)
}

// Retrieve fetches one message.
func (r *MessagesResource) Retrieve(ctx context.Context, id string) (*Message, error) {
	raw, err := r.b.Get(ctx, r.basePath()+"/"+pathID(id))
	if err != nil {
		return nil, err
	}
	return decodeEntityMessage(sessionMessagesContract, raw)
}

// Create validates params and sends the message. Invalid recipients and
// message types outside text, image, video, audio, document, location and
// contact fail with ErrValidation before any request is made.
func (r *MessagesResource) Create(ctx context.Context, params MessageParams) (*Message, error) {
	body, err := params.body(sessionMessageTypes)
	if err != nil {
		return nil, err
	}
	raw, err := r.b.Post(ctx, r.basePath(), sessionMessagesContract.wrap(body))
	if err != nil {
		return nil, err
	}
	return decodeEntityMessage(sessionMessagesContract, raw)
}

// BusinessMessagesResource accesses the messages of one business account.
type BusinessMessagesResource struct {
	b         backend
	accountID string
}

// BusinessMessageFilter narrows a business message listing.
type BusinessMessageFilter struct {
	// ErrorsOnly restricts the listing to failed messages.
	ErrorsOnly bool
}

func (r *BusinessMessagesResource) basePath() string {
	return businessAccountsPath + "/" + pathID(r.accountID) + "/messages"
}

// List returns the account's messages.
func (r *BusinessMessagesResource) List(ctx context.Context, filter BusinessMessageFilter) (*List[*Message], error) {
	path := r.basePath()
	if filter.ErrorsOnly {
		path += "?errors_only=true"
	}
	raw, err := r.b.Get(ctx, path)
	if err != nil {
		return nil, err
	}
	return decodeList(businessMessagesContract.name, raw, decodeMessage)
}

// Retrieve fetches one message.
func (r *BusinessMessagesResource) Retrieve(ctx context.Context, id string) (*Message, error) {
	raw, err := r.b.Get(ctx, r.basePath()+"/"+pathID(id))
	if err != nil {
		return nil, err
	}
	return decodeEntityMessage(businessMessagesContract, raw)
}

// Create validates params and sends the message. Allowed types are text,
// template, image, video, audio and document.
func (r *BusinessMessagesResource) Create(ctx context.Context, params MessageParams) (*Message, error) {
	body, err := params.body(businessMessageTypes)
	if err != nil {
		return nil, err
	}
	raw, err := r.b.Post(ctx, r.basePath(), businessMessagesContract.wrap(body))
	if err != nil {
		return nil, err
	}
	return decodeEntityMessage(businessMessagesContract, raw)
}

func decodeEntityMessage(c resourceContract, raw json.RawMessage) (*Message, error) {
	data, err := entity(c, raw)
	if err != nil {
		return nil, err
	}
	return decodeMessage(data)
}
