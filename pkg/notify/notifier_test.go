package notify

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"storefront_backend/internal/model"
	"storefront_backend/pkg/email"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type mockMailer struct {
	to   []string
	data []email.LeadNotificationData
	err  error
}

func (m *mockMailer) SendLeadNotificationEmail(to string, data email.LeadNotificationData) error {
	m.to = append(m.to, to)
	m.data = append(m.data, data)
	return m.err
}

type mockSender struct {
	SendFunc func(ctx context.Context, to string, params ...string) error
	to       string
	params   []string
}

func (m *mockSender) SendTemplate(ctx context.Context, to string, params ...string) error {
	m.to = to
	m.params = params
	if m.SendFunc != nil {
		return m.SendFunc(ctx, to, params...)
	}
	return nil
}

func payload() Payload {
	return Payload{
		Lead: model.Lead{
			Base:    model.Base{ID: "l1"},
			Name:    "Ada",
			Email:   "ada@example.com",
			Phone:   "(202) 555-0143",
			Message: strings.Repeat("m", 200),
			Source:  model.LeadSourceWishlist,
			Score:   70,
		},
		Category:      "Hot",
		WishlistItems: 3,
		WishlistTotal: 1200,
	}
}

func TestNotifyNewLead_AllChannels(t *testing.T) {
	mailer := &mockMailer{}
	sender := &mockSender{}
	n := NewNotifier(mailer, sender, Config{AdminEmail: "sales@example.com", WhatsAppTo: "+1 876 555 0100", DefaultRegion: "US"})

	n.NotifyNewLead(context.Background(), payload())

	require.Len(t, mailer.data, 1)
	assert.Equal(t, "sales@example.com", mailer.to[0])
	assert.Equal(t, 70, mailer.data[0].Score)
	assert.Equal(t, "Hot", mailer.data[0].Category)
	assert.Equal(t, "WISHLIST", mailer.data[0].Source)

	assert.Equal(t, "18765550100", sender.to)
	require.Len(t, sender.params, 4)
	assert.Equal(t, "Ada", sender.params[0])
	assert.Equal(t, "Hot 70/100 via WISHLIST", sender.params[1])
	assert.Equal(t, "+12025550143", sender.params[2])
	assert.True(t, strings.HasSuffix(sender.params[3], "…"))
}

func TestNotifyNewLead_FailuresAreSwallowed(t *testing.T) {
	mailer := &mockMailer{err: errors.New("smtp down")}
	sender := &mockSender{SendFunc: func(ctx context.Context, to string, params ...string) error {
		return errors.New("graph down")
	}}
	n := NewNotifier(mailer, sender, Config{AdminEmail: "sales@example.com", WhatsAppTo: "+18765550100"})

	assert.NotPanics(t, func() { n.NotifyNewLead(context.Background(), payload()) })
	assert.Len(t, mailer.data, 1)
}

func TestNotifyNewLead_UnconfiguredChannelsSkipped(t *testing.T) {
	mailer := &mockMailer{}
	n := NewNotifier(mailer, nil, Config{})

	n.NotifyNewLead(context.Background(), payload())
	assert.Empty(t, mailer.data)
}

func TestWhatsAppParams_Fallbacks(t *testing.T) {
	p := Payload{Lead: model.Lead{Email: "anon@example.com", Source: model.LeadSourceChat}, Category: "Cold"}

	params := WhatsAppParams(p, "US")
	assert.Equal(t, []string{"anon@example.com", "Cold 0/100 via CHAT", "anon@example.com", "-"}, params)
}

func TestWhatsAppClient_SendTemplate(t *testing.T) {
	var got map[string]interface{}
	var auth, path string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		auth = r.Header.Get("Authorization")
		path = r.URL.Path
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	c := NewWhatsAppClient(WhatsAppConfig{AccessToken: "tok", PhoneID: "123", BaseURL: srv.URL, TemplateName: "new_lead"})
	require.NoError(t, c.SendTemplate(context.Background(), "18765550100", "Ada", "Hot"))

	assert.Equal(t, "Bearer tok", auth)
	assert.Equal(t, "/123/messages", path)
	assert.Equal(t, "18765550100", got["to"])
	tmpl := got["template"].(map[string]interface{})
	assert.Equal(t, "new_lead", tmpl["name"])
}

func TestWhatsAppClient_Errors(t *testing.T) {
	assert.ErrorIs(t, NewWhatsAppClient(WhatsAppConfig{}).SendTemplate(context.Background(), "1"), ErrWhatsAppNotConfigured)

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, `{"error":"bad token"}`, http.StatusUnauthorized)
	}))
	defer srv.Close()

	c := NewWhatsAppClient(WhatsAppConfig{AccessToken: "tok", PhoneID: "123", BaseURL: srv.URL})
	err := c.SendTemplate(context.Background(), "1")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "401")
}
