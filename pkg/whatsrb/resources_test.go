package whatsrb

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"reflect"
	"strings"
	"testing"
)

func TestSessionsList(t *testing.T) {
	client, rec := newTestClient(t, respondJSON(http.StatusOK, `{
		"data": [
			{"id": "sess_1", "name": "Support", "status": "connected", "phone_number": "+33600000001"},
			{"id": "sess_2", "name": "Sales", "status": "qr_pending", "qr_code": "2@abc"}
		],
		"meta": {"total": 2, "page": 1, "next": null}
	}`))

	list, err := client.Sessions().List(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if list.Len() != 2 {
		t.Fatalf("expected 2 sessions, got %d", list.Len())
	}
	if !list.Data[0].IsConnected() || list.Data[1].IsConnected() {
		t.Fatalf("unexpected connection state %+v", list.Data)
	}
	if list.Data[1].QRCode != "2@abc" {
		t.Fatalf("expected qr code, got %q", list.Data[1].QRCode)
	}
	wantMeta := map[string]any{"total": json.Number("2"), "page": json.Number("1"), "next": nil}
	if !reflect.DeepEqual(list.Meta, wantMeta) {
		t.Fatalf("expected meta %v, got %v", wantMeta, list.Meta)
	}
	if req := rec.last(t); req.Method != http.MethodGet || req.Path != "/api/v1/sessions" {
		t.Fatalf("unexpected request %s %s", req.Method, req.Path)
	}
}

func TestSessionsListOverBodyLimit(t *testing.T) {
	client, _ := newTestClient(t,
		respondJSON(http.StatusOK, `{"data":[{"id":"sess_1","name":"Support","status":"connected"}]}`),
		WithBodyLimit(16),
	)

	list, err := client.Sessions().List(context.Background())
	if !errors.Is(err, ErrResponseTooLarge) {
		t.Fatalf("expected ErrResponseTooLarge, got %v", err)
	}
	if list != nil {
		t.Fatalf("expected no list, got %+v", list)
	}
}

func TestListWithoutMetaYieldsEmptyMap(t *testing.T) {
	client, _ := newTestClient(t, respondJSON(http.StatusOK, `{"data": []}`))

	list, err := client.Webhooks().List(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if list.Meta == nil || len(list.Meta) != 0 {
		t.Fatalf("expected empty meta, got %v", list.Meta)
	}
	if list.Data == nil || list.Len() != 0 {
		t.Fatalf("expected empty data, got %v", list.Data)
	}
}

func TestSessionsCreateSendsBareParams(t *testing.T) {
	client, rec := newTestClient(t, respondJSON(http.StatusCreated, `{"id":"sess_1","name":"My Bot","status":"initializing","created_at":"2026-02-11T10:00:00Z"}`))

	session, err := client.Sessions().Create(context.Background(), SessionParams{Name: "My Bot"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if session.ID != "sess_1" || session.Status != SessionInitializing {
		t.Fatalf("unexpected session %+v", session)
	}
	if session.CreatedAt.IsZero() {
		t.Fatalf("expected created_at to be parsed")
	}
	if got := string(rec.last(t).Body); got != `{"name":"My Bot"}` {
		t.Fatalf("unexpected request body %s", got)
	}
}

func TestSessionsRetrieveAcceptsBothShapes(t *testing.T) {
	bodies := []string{
		`{"id":"sess_1","status":"connected"}`,
		`{"data":{"id":"sess_1","status":"connected"}}`,
	}
	for _, body := range bodies {
		client, rec := newTestClient(t, respondJSON(http.StatusOK, body))

		session, err := client.Sessions().Retrieve(context.Background(), "sess_1")
		if err != nil {
			t.Fatalf("unexpected error for %s: %v", body, err)
		}
		if session.ID != "sess_1" || !session.IsConnected() {
			t.Fatalf("unexpected session %+v for %s", session, body)
		}
		if path := rec.last(t).Path; path != "/api/v1/sessions/sess_1" {
			t.Fatalf("unexpected path %s", path)
		}
	}
}

func TestSessionsDelete(t *testing.T) {
	client, rec := newTestClient(t, respondJSON(http.StatusNoContent, ``))

	ok, err := client.Sessions().Delete(context.Background(), "sess_1")
	if err != nil || !ok {
		t.Fatalf("expected successful delete, got %v %v", ok, err)
	}
	if req := rec.last(t); req.Method != http.MethodDelete || req.Path != "/api/v1/sessions/sess_1" {
		t.Fatalf("unexpected request %s %s", req.Method, req.Path)
	}
}

func TestSessionsDeletePropagatesNotFound(t *testing.T) {
	client, _ := newTestClient(t, respondJSON(http.StatusNotFound, `{"error":"Session not found"}`))

	ok, err := client.Sessions().Delete(context.Background(), "missing")
	if ok || !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected not found, got %v %v", ok, err)
	}
}

func TestMessageCreateValidatesBeforeRequest(t *testing.T) {
	cases := []struct {
		name    string
		params  MessageParams
		message string
	}{
		{"missing phone", MessageParams{Text: "hi"}, "Phone number is required"},
		{"malformed phone", MessageParams{To: "not_a_phone", Text: "hi"}, "Invalid phone number format"},
		{"phone without plus", MessageParams{To: "33600000001", Text: "hi"}, "Invalid phone number format"},
		{"unknown type", MessageParams{To: "+33600000001", MessageType: "invalid", Content: "x"}, "Invalid message type: invalid"},
		{"template on session", MessageParams{To: "+33600000001", MessageType: MessageTypeTemplate}, "Invalid message type: template"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			client, rec := newTestClient(t, respondJSON(http.StatusOK, `{}`))

			_, err := client.Messages("sess_1").Create(context.Background(), tc.params)
			if !errors.Is(err, ErrValidation) {
				t.Fatalf("expected ErrValidation, got %v", err)
			}
			var apiErr *Error
			errors.As(err, &apiErr)
			if apiErr.Message != tc.message {
				t.Fatalf("expected message %q, got %q", tc.message, apiErr.Message)
			}
			if apiErr.StatusCode != 0 {
				t.Fatalf("expected local validation error without status, got %d", apiErr.StatusCode)
			}
			if rec.count() != 0 {
				t.Fatalf("expected no request, got %d", rec.count())
			}
		})
	}
}

func TestBusinessMessageCreateRejectsSessionOnlyTypes(t *testing.T) {
	client, rec := newTestClient(t, respondJSON(http.StatusOK, `{}`))

	_, err := client.BusinessMessages("ba_1").Create(context.Background(), MessageParams{
		To:          "+33600000001",
		MessageType: MessageTypeLocation,
		Content:     "48.8,2.3",
	})
	if !errors.Is(err, ErrValidation) || !strings.Contains(err.Error(), "Invalid message type: location") {
		t.Fatalf("expected invalid type error, got %v", err)
	}
	if rec.count() != 0 {
		t.Fatalf("expected no request")
	}
}

func TestSessionSendHelpersShapeContent(t *testing.T) {
	const reply = `{"data":{"id":"msg_1","status":"queued","message_type":"text","content":"Hello","sent_at":"garbage","created_at":"2026-02-11T10:00:00Z"}}`
	client, rec := newTestClient(t, respondJSON(http.StatusCreated, reply))
	session := &Session{ID: "sess_1", b: client}
	ctx := context.Background()

	cases := []struct {
		name string
		send func() (*Message, error)
		want map[string]any
	}{
		{
			"text",
			func() (*Message, error) { return session.SendMessage(ctx, "+33600000001", "Hello") },
			map[string]any{"to": "+33600000001", "message_type": "text", "content": "Hello"},
		},
		{
			"image",
			func() (*Message, error) { return session.SendImage(ctx, "+33600000001", "https://x.test/a.png") },
			map[string]any{"to": "+33600000001", "message_type": "image", "content": "https://x.test/a.png"},
		},
		{
			"document",
			func() (*Message, error) { return session.SendDocument(ctx, "+33600000001", "https://x.test/a.pdf") },
			map[string]any{"to": "+33600000001", "message_type": "document", "content": "https://x.test/a.pdf"},
		},
		{
			"video",
			func() (*Message, error) { return session.SendVideo(ctx, "+33600000001", "https://x.test/a.mp4") },
			map[string]any{"to": "+33600000001", "message_type": "video", "content": "https://x.test/a.mp4"},
		},
		{
			"audio",
			func() (*Message, error) { return session.SendAudio(ctx, "+33600000001", "https://x.test/a.ogg") },
			map[string]any{"to": "+33600000001", "message_type": "audio", "content": "https://x.test/a.ogg"},
		},
		{
			"location",
			func() (*Message, error) { return session.SendLocation(ctx, "+33600000001", 48.8, 2.3) },
			map[string]any{"to": "+33600000001", "message_type": "location", "content": "48.8,2.3"},
		},
		{
			"location whole degrees",
			func() (*Message, error) { return session.SendLocation(ctx, "+33600000001", 48, 2) },
			map[string]any{"to": "+33600000001", "message_type": "location", "content": "48.0,2.0"},
		},
		{
			"contact",
			func() (*Message, error) { return session.SendContact(ctx, "+33600000001", "John", "+33600000002") },
			map[string]any{"to": "+33600000001", "message_type": "contact", "content": "John:+33600000002"},
		},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			msg, err := tc.send()
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if msg.ID != "msg_1" {
				t.Fatalf("unexpected message %+v", msg)
			}
			if !msg.SentAt.IsZero() {
				t.Fatalf("expected unparsable sent_at to be absent, got %v", msg.SentAt)
			}
			if msg.CreatedAt.IsZero() {
				t.Fatalf("expected created_at to be parsed")
			}

			req := rec.last(t)
			if req.Path != "/api/v1/sessions/sess_1/messages" {
				t.Fatalf("unexpected path %s", req.Path)
			}
			want := map[string]any{"message": tc.want}
			if got := req.jsonBody(t); !reflect.DeepEqual(got, want) {
				t.Fatalf("expected body %v, got %v", want, got)
			}
		})
	}
}

func TestMessagesListAndRetrieve(t *testing.T) {
	client, rec := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if strings.HasSuffix(r.URL.Path, "/messages") {
			respondJSON(http.StatusOK, `{"data":[{"id":"msg_1","content":{"lat":1}},{"id":"msg_2"}],"meta":{"total":2}}`)(w, r)
			return
		}
		respondJSON(http.StatusOK, `{"id":"msg_2","status":"read","read_at":"2026-02-11 10:00:00"}`)(w, r)
	})

	list, err := client.Messages("sess_1").List(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if list.Len() != 2 {
		t.Fatalf("expected 2 messages, got %d", list.Len())
	}
	if _, ok := list.Data[0].ContentString(); ok {
		t.Fatalf("expected structured content to be kept as a JSON value")
	}

	msg, err := client.Messages("sess_1").Retrieve(context.Background(), "msg_2")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if msg.Status != "read" || msg.ReadAt.IsZero() {
		t.Fatalf("unexpected message %+v", msg)
	}
	if path := rec.last(t).Path; path != "/api/v1/sessions/sess_1/messages/msg_2" {
		t.Fatalf("unexpected path %s", path)
	}
}

func TestBusinessMessagesListErrorsOnly(t *testing.T) {
	client, rec := newTestClient(t, respondJSON(http.StatusOK, `{"data":[{"id":"m1","status":"failed","error_message":"bad number"}]}`))

	list, err := client.BusinessMessages("ba_1").List(context.Background(), BusinessMessageFilter{ErrorsOnly: true})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if list.Data[0].ErrorMessage != "bad number" {
		t.Fatalf("unexpected message %+v", list.Data[0])
	}
	req := rec.last(t)
	if req.Path != "/api/v1/business_accounts/ba_1/messages" || req.Query != "errors_only=true" {
		t.Fatalf("unexpected request %s?%s", req.Path, req.Query)
	}

	if _, err := client.BusinessMessages("ba_1").List(context.Background(), BusinessMessageFilter{}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if q := rec.last(t).Query; q != "" {
		t.Fatalf("expected no query, got %q", q)
	}
}

func TestBusinessAccountSendTemplate(t *testing.T) {
	client, rec := newTestClient(t, respondJSON(http.StatusCreated, `{"data":{"id":"m1","message_type":"template","template_name":"welcome","wamid":"wamid.X"}}`))
	account := &BusinessAccount{ID: "ba_1", b: client}

	msg, err := account.SendTemplate(context.Background(), "+33600000001", "welcome", "fr")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if msg.WAMID != "wamid.X" || msg.TemplateName != "welcome" {
		t.Fatalf("unexpected message %+v", msg)
	}

	want := map[string]any{"message": map[string]any{
		"to":                "+33600000001",
		"message_type":      "template",
		"template_name":     "welcome",
		"template_language": "fr",
	}}
	if got := rec.last(t).jsonBody(t); !reflect.DeepEqual(got, want) {
		t.Fatalf("expected body %v, got %v", want, got)
	}
}

func TestBusinessAccountSendText(t *testing.T) {
	client, rec := newTestClient(t, respondJSON(http.StatusCreated, `{"data":{"id":"m1"}}`))
	account := &BusinessAccount{ID: "ba_1", b: client}

	if _, err := account.SendText(context.Background(), "+33600000001", "Hi"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	want := map[string]any{"message": map[string]any{"to": "+33600000001", "message_type": "text", "content": "Hi"}}
	if got := rec.last(t).jsonBody(t); !reflect.DeepEqual(got, want) {
		t.Fatalf("expected body %v, got %v", want, got)
	}
}

func TestBusinessAccountsResource(t *testing.T) {
	client, rec := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		switch {
		case r.Method == http.MethodPost && r.URL.Path == "/api/v1/business_accounts/connect":
			respondJSON(http.StatusCreated, `{"data":{"id":"conn_1","url":"https://connect.test/conn_1","status":"pending","expires_at":"2026-02-11T10:30:00Z"}}`)(w, r)
		case r.Method == http.MethodPost:
			respondJSON(http.StatusCreated, `{"data":{"id":"ba_2","waba_id":"123","status":"pending"}}`)(w, r)
		case r.Method == http.MethodGet && r.URL.Path == "/api/v1/business_accounts":
			respondJSON(http.StatusOK, `{"data":[{"id":"ba_1","connected":true},{"id":"ba_2","status":"connected"},{"id":"ba_3","status":"pending"}],"meta":{}}`)(w, r)
		default:
			respondJSON(http.StatusOK, `{"data":{"id":"ba_1","quality_rating":"GREEN"}}`)(w, r)
		}
	})
	ctx := context.Background()
	accounts := client.BusinessAccounts()

	list, err := accounts.List(ctx)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	got := []bool{list.Data[0].IsConnected(), list.Data[1].IsConnected(), list.Data[2].IsConnected()}
	if !reflect.DeepEqual(got, []bool{true, true, false}) {
		t.Fatalf("unexpected connected flags %v", got)
	}

	cr, err := accounts.Connect(ctx)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !cr.IsPending() || cr.URL != "https://connect.test/conn_1" || cr.ExpiresAt.IsZero() || cr.Account != nil {
		t.Fatalf("unexpected connect request %+v", cr)
	}
	if body := string(rec.last(t).Body); body != `{}` {
		t.Fatalf("expected empty object body, got %s", body)
	}

	account, err := accounts.Create(ctx, BusinessAccountParams{WABAID: "123", PhoneNumberID: "456", AccessToken: "tok"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if account.WABAID != "123" {
		t.Fatalf("unexpected account %+v", account)
	}
	want := map[string]any{"business_account": map[string]any{"waba_id": "123", "phone_number_id": "456", "access_token": "tok"}}
	if got := rec.last(t).jsonBody(t); !reflect.DeepEqual(got, want) {
		t.Fatalf("expected body %v, got %v", want, got)
	}

	retrieved, err := accounts.Retrieve(ctx, "ba_1")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if retrieved.QualityRating != "GREEN" {
		t.Fatalf("unexpected account %+v", retrieved)
	}

	if ok, err := accounts.Delete(ctx, "ba_1"); err != nil || !ok {
		t.Fatalf("expected successful delete, got %v %v", ok, err)
	}
}

func TestBusinessAccountRetrieveRequiresDataEnvelope(t *testing.T) {
	client, _ := newTestClient(t, respondJSON(http.StatusOK, `{"id":"ba_1"}`))

	_, err := client.BusinessAccounts().Retrieve(context.Background(), "ba_1")
	if !errors.Is(err, ErrAPI) {
		t.Fatalf("expected ErrAPI for a response without data, got %v", err)
	}
}

func TestBusinessAccountRefreshReplacesObservableFields(t *testing.T) {
	client, _ := newTestClient(t, respondJSON(http.StatusOK, `{"data":{
		"id":"ba_1","business_name":"Changed","display_name":"Acme","phone_number":"+33600000009",
		"status":"connected","quality_rating":"GREEN","connected":true}}`))
	account := &BusinessAccount{ID: "ba_1", BusinessName: "Original", Status: "pending", b: client}

	same, err := account.Refresh(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if same != account {
		t.Fatalf("expected refresh to return the receiver")
	}
	if !account.Connected || account.Status != "connected" || account.QualityRating != "GREEN" ||
		account.DisplayName != "Acme" || account.PhoneNumber != "+33600000009" {
		t.Fatalf("observable fields not replaced: %+v", account)
	}
	if account.BusinessName != "Original" {
		t.Fatalf("expected business name to be left alone, got %q", account.BusinessName)
	}
}

func TestTemplatesResource(t *testing.T) {
	client, rec := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		switch {
		case strings.HasSuffix(r.URL.Path, "/sync"):
			respondJSON(http.StatusOK, `{"data":[{"id":"t1","status":"approved"},{"id":"t2","status":"rejected","rejection_reason":"INVALID_FORMAT"}],"meta":{"synced":2}}`)(w, r)
		case strings.HasSuffix(r.URL.Path, "/send_test"):
			respondJSON(http.StatusCreated, `{"data":{"id":"m1","message_type":"template"}}`)(w, r)
		case r.Method == http.MethodGet && strings.HasSuffix(r.URL.Path, "/templates"):
			respondJSON(http.StatusOK, `{"data":[{"id":"t1","status":"approved"}]}`)(w, r)
		default:
			respondJSON(http.StatusOK, `{"data":{"id":"t3","name":"welcome","status":"pending","components":[{"type":"BODY"}]}}`)(w, r)
		}
	})
	ctx := context.Background()
	templates := client.Templates("ba_1")

	if _, err := templates.List(ctx, TemplateFilter{Status: "approved", Category: "utility"}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if req := rec.last(t); req.Path != "/api/v1/business_accounts/ba_1/templates" || req.Query != "status=approved&category=utility" {
		t.Fatalf("unexpected request %s?%s", req.Path, req.Query)
	}
	if _, err := templates.List(ctx, TemplateFilter{Category: "marketing"}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if q := rec.last(t).Query; q != "category=marketing" {
		t.Fatalf("unexpected query %q", q)
	}

	created, err := templates.Create(ctx, TemplateParams{Name: "welcome", Category: "utility", Language: "fr"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !created.IsPending() || len(created.Components) == 0 {
		t.Fatalf("unexpected template %+v", created)
	}
	want := map[string]any{"template": map[string]any{"name": "welcome", "category": "utility", "language": "fr"}}
	if got := rec.last(t).jsonBody(t); !reflect.DeepEqual(got, want) {
		t.Fatalf("expected body %v, got %v", want, got)
	}

	synced, err := templates.Sync(ctx)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !synced.Data[0].IsApproved() || !synced.Data[1].IsRejected() || synced.Data[1].RejectionReason != "INVALID_FORMAT" {
		t.Fatalf("unexpected synced templates %+v", synced.Data)
	}
	if req := rec.last(t); req.Method != http.MethodPost || string(req.Body) != `{}` {
		t.Fatalf("unexpected sync request %s %s", req.Method, req.Body)
	}

	if _, err := templates.Clone(ctx, "t1"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if path := rec.last(t).Path; path != "/api/v1/business_accounts/ba_1/templates/t1/clone" {
		t.Fatalf("unexpected clone path %s", path)
	}

	if _, err := templates.SendTest(ctx, "t1", "+33600000001"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got := rec.last(t).jsonBody(t); !reflect.DeepEqual(got, map[string]any{"to": "+33600000001"}) {
		t.Fatalf("expected variables to be omitted, got %v", got)
	}
	if _, err := templates.SendTest(ctx, "t1", "+33600000001", "Alice", "42"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	wantTest := map[string]any{"to": "+33600000001", "variables": []any{"Alice", "42"}}
	if got := rec.last(t).jsonBody(t); !reflect.DeepEqual(got, wantTest) {
		t.Fatalf("expected body %v, got %v", wantTest, got)
	}

	if ok, err := templates.Delete(ctx, "t1"); err != nil || !ok {
		t.Fatalf("expected successful delete, got %v %v", ok, err)
	}
}

func TestTemplatesCreateRequiresName(t *testing.T) {
	client, rec := newTestClient(t, respondJSON(http.StatusOK, `{}`))

	_, err := client.Templates("ba_1").Create(context.Background(), TemplateParams{Category: "utility"})
	if !errors.Is(err, ErrValidation) {
		t.Fatalf("expected ErrValidation, got %v", err)
	}
	if rec.count() != 0 {
		t.Fatalf("expected no request")
	}
}

func TestWebhooksResource(t *testing.T) {
	client, rec := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		switch r.Method {
		case http.MethodPost:
			respondJSON(http.StatusCreated, `{"data":{"id":"wh_1","url":"https://hooks.test/in","events":["message.received"],"secret":"whsec_1"}}`)(w, r)
		case http.MethodPatch:
			respondJSON(http.StatusOK, `{"data":{"id":"wh_1","url":"https://hooks.test/in","active":false}}`)(w, r)
		case http.MethodDelete:
			w.WriteHeader(http.StatusNoContent)
		default:
			respondJSON(http.StatusOK, `{"id":"wh_1","url":"https://hooks.test/in"}`)(w, r)
		}
	})
	ctx := context.Background()
	webhooks := client.Webhooks()

	created, err := webhooks.Create(ctx, WebhookParams{URL: "https://hooks.test/in", Events: []string{"message.received"}})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if created.Secret != "whsec_1" || !created.IsActive() {
		t.Fatalf("unexpected webhook %+v", created)
	}
	wantCreate := map[string]any{"webhook": map[string]any{"url": "https://hooks.test/in", "events": []any{"message.received"}}}
	if got := rec.last(t).jsonBody(t); !reflect.DeepEqual(got, wantCreate) {
		t.Fatalf("expected body %v, got %v", wantCreate, got)
	}

	inactive := false
	updated, err := webhooks.Update(ctx, "wh_1", WebhookParams{Active: &inactive})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if updated.IsActive() {
		t.Fatalf("expected webhook to be inactive")
	}
	req := rec.last(t)
	if req.Method != http.MethodPatch || req.Path != "/api/v1/webhooks/wh_1" {
		t.Fatalf("unexpected request %s %s", req.Method, req.Path)
	}
	if got := req.jsonBody(t); !reflect.DeepEqual(got, map[string]any{"webhook": map[string]any{"active": false}}) {
		t.Fatalf("unexpected update body %v", got)
	}

	retrieved, err := webhooks.Retrieve(ctx, "wh_1")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !retrieved.IsActive() || retrieved.Events == nil || len(retrieved.Events) != 0 {
		t.Fatalf("expected defaults for active and events, got %+v", retrieved)
	}

	if ok, err := webhooks.Delete(ctx, "wh_1"); err != nil || !ok {
		t.Fatalf("expected successful delete, got %v %v", ok, err)
	}
}

func TestWebhooksCreateValidatesURL(t *testing.T) {
	client, rec := newTestClient(t, respondJSON(http.StatusOK, `{}`))

	for _, params := range []WebhookParams{{}, {URL: "ftp://hooks.test"}, {URL: "https://"}} {
		if _, err := client.Webhooks().Create(context.Background(), params); !errors.Is(err, ErrValidation) {
			t.Fatalf("expected ErrValidation for %+v, got %v", params, err)
		}
	}
	if rec.count() != 0 {
		t.Fatalf("expected no request")
	}
}

func TestUsageFetchUnwrapsData(t *testing.T) {
	bodies := []string{
		`{"data":{"messages_sent":120,"plan":"pro"}}`,
		`{"messages_sent":120,"plan":"pro"}`,
	}
	for _, body := range bodies {
		client, rec := newTestClient(t, respondJSON(http.StatusOK, body))

		usage, err := client.Usage().Fetch(context.Background())
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		want := map[string]any{"messages_sent": json.Number("120"), "plan": "pro"}
		if !reflect.DeepEqual(usage, want) {
			t.Fatalf("expected %v, got %v", want, usage)
		}
		if path := rec.last(t).Path; path != "/api/v1/usage" {
			t.Fatalf("unexpected path %s", path)
		}
	}
}

func TestPathSegmentsAreEscaped(t *testing.T) {
	client, rec := newTestClient(t, respondJSON(http.StatusOK, `{"id":"a/b"}`))

	if _, err := client.Sessions().Retrieve(context.Background(), "a/b"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if path := rec.last(t).Escaped; path != "/api/v1/sessions/a%2Fb" {
		t.Fatalf("expected id to stay one path segment, got %s", path)
	}
}

func TestDetachedObjectsFailWithoutNetwork(t *testing.T) {
	var session Session
	if err := json.Unmarshal([]byte(`{"id":"sess_1","status":"qr_pending"}`), &session); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	_, err := session.Reload(context.Background())
	if !errors.Is(err, ErrConfiguration) {
		t.Fatalf("expected ErrConfiguration for detached session, got %v", err)
	}
}
