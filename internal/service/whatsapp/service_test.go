package whatsapp

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mamadbah2/importados/internal/config"
	"github.com/mamadbah2/importados/internal/domain/models"
	"github.com/mamadbah2/importados/internal/service/commands"
	client "github.com/mamadbah2/importados/pkg/clients/whatsapp"
)

type fakeClient struct {
	sent []client.SendTextMessageRequest
	err  error
}

func (f *fakeClient) SendTextMessage(_ context.Context, req client.SendTextMessageRequest) (*client.SendTextMessageResponse, error) {
	f.sent = append(f.sent, req)
	return &client.SendTextMessageResponse{}, f.err
}

type fakeDispatcher struct {
	reply string
	err   error
	seen  []models.Command
}

func (f *fakeDispatcher) HandleCommand(_ context.Context, cmd models.Command, _ string) (string, error) {
	f.seen = append(f.seen, cmd)
	return f.reply, f.err
}

const owner = "5491100000000"

func newService(d *fakeDispatcher) (*MetaWhatsAppService, *fakeClient) {
	c := &fakeClient{}
	cfg := config.WhatsAppConfig{AccessToken: "token", RecipientID: owner, VerifyToken: "secret"}
	return NewMetaWhatsAppService(cfg, c, d, nil), c
}

func textPayload(from, body string) models.WebhookPayload {
	return models.WebhookPayload{Entry: []models.WebhookEntry{{Changes: []models.WebhookChange{{
		Value: models.WebhookValue{Messages: []models.InboundMessage{{From: from, ID: "wamid.1", Type: "text", Text: &models.TextContent{Body: body}}}},
	}}}}}
}

func TestVerifyWebhookToken(t *testing.T) {
	svc, _ := newService(&fakeDispatcher{})

	challenge, err := svc.VerifyWebhookToken("subscribe", "secret", "42")
	require.NoError(t, err)
	assert.Equal(t, "42", challenge)

	_, err = svc.VerifyWebhookToken("subscribe", "wrong", "42")
	assert.Error(t, err)
	_, err = svc.VerifyWebhookToken("unsubscribe", "secret", "42")
	assert.Error(t, err)
}

func TestOwnerQueryIsAnswered(t *testing.T) {
	d := &fakeDispatcher{reply: "In stock: 4 units."}
	svc, c := newService(d)

	require.NoError(t, svc.HandleWebhook(context.Background(), textPayload(owner, "/stock")))
	require.Len(t, d.seen, 1)
	assert.Equal(t, models.CommandStock, d.seen[0].Type)
	require.Len(t, c.sent, 1)
	assert.Equal(t, owner, c.sent[0].To)
	assert.Equal(t, "In stock: 4 units.", c.sent[0].Body)
}

func TestStrangersAreIgnored(t *testing.T) {
	d := &fakeDispatcher{reply: "secret numbers"}
	svc, c := newService(d)

	require.NoError(t, svc.HandleWebhook(context.Background(), textPayload("5491199999999", "/profit")))
	assert.Empty(t, d.seen)
	assert.Empty(t, c.sent)
}

func TestStaleQueriesAreSkipped(t *testing.T) {
	d := &fakeDispatcher{reply: "In stock: 4 units."}
	svc, c := newService(d)
	svc.now = func() time.Time { return time.Unix(1715371200, 0).Add(time.Hour) }

	payload := textPayload(owner, "/stock")
	payload.Entry[0].Changes[0].Value.Messages[0].Timestamp = "1715371200"
	require.NoError(t, svc.HandleWebhook(context.Background(), payload))
	assert.Empty(t, d.seen)
	assert.Empty(t, c.sent)

	svc.now = func() time.Time { return time.Unix(1715371200, 0).Add(time.Minute) }
	require.NoError(t, svc.HandleWebhook(context.Background(), payload))
	assert.Len(t, c.sent, 1)
}

func TestNonTextMessagesAreSkipped(t *testing.T) {
	d := &fakeDispatcher{reply: "ok"}
	svc, c := newService(d)

	payload := textPayload(owner, "")
	payload.Entry[0].Changes[0].Value.Messages[0].Type = "image"
	payload.Entry[0].Changes[0].Value.Messages[0].Text = nil
	require.NoError(t, svc.HandleWebhook(context.Background(), payload))
	assert.Empty(t, d.seen)
	assert.Empty(t, c.sent)
}

func TestUnknownCommandGetsHelp(t *testing.T) {
	svc, c := newService(&fakeDispatcher{err: commands.ErrUnsupportedCommand})

	require.NoError(t, svc.HandleWebhook(context.Background(), textPayload(owner, "hola")))
	require.Len(t, c.sent, 1)
	assert.Contains(t, c.sent[0].Body, commands.HelpText)
}

func TestStorageFailureIsReportedAndApologised(t *testing.T) {
	svc, c := newService(&fakeDispatcher{err: models.ErrStorageUnreadable})

	err := svc.HandleWebhook(context.Background(), textPayload(owner, "/stock"))
	assert.ErrorIs(t, err, models.ErrStorageUnreadable)
	require.Len(t, c.sent, 1)
	assert.Contains(t, c.sent[0].Body, "unavailable")
}

func TestSendFailureIsReturned(t *testing.T) {
	svc, c := newService(&fakeDispatcher{reply: "ok"})
	c.err = errors.New("meta down")

	err := svc.HandleWebhook(context.Background(), textPayload(owner, "/stock"))
	assert.Error(t, err)
}

func TestNoopMessagingService(t *testing.T) {
	var svc MessagingService = NoopMessagingService{}
	assert.NoError(t, svc.SendOutbound(context.Background(), models.OutboundMessage{To: owner, Message: "hi"}))
	_, err := svc.VerifyWebhookToken("subscribe", "x", "1")
	assert.Error(t, err)
}
