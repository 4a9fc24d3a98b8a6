package models

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const metaCallback = `{
  "object": "whatsapp_business_account",
  "entry": [{
    "id": "102",
    "changes": [{
      "field": "messages",
      "value": {
        "messaging_product": "whatsapp",
        "messages": [
          {"from": "5491100000000", "id": "wamid.1", "timestamp": "1715371200", "type": "text", "text": {"body": "  /sizes HW01 "}},
          {"from": "5491100000000", "id": "wamid.2", "timestamp": "1715371260", "type": "image", "image": {"id": "img"}}
        ],
        "statuses": [{"id": "wamid.0", "status": "read"}]
      }
    }]
  }]
}`

func TestWebhookPayloadMessages(t *testing.T) {
	var payload WebhookPayload
	require.NoError(t, json.Unmarshal([]byte(metaCallback), &payload))
	assert.Equal(t, WhatsAppObject, payload.Object)

	messages := payload.Messages()
	require.Len(t, messages, 2)
	assert.Equal(t, "/sizes HW01", messages[0].Query())
	assert.Empty(t, messages[1].Query())

	sentAt, ok := messages[0].SentAt()
	require.True(t, ok)
	assert.Equal(t, time.Date(2024, 5, 10, 20, 0, 0, 0, time.UTC), sentAt)
}

func TestSentAtWithoutTimestamp(t *testing.T) {
	_, ok := InboundMessage{}.SentAt()
	assert.False(t, ok)
	_, ok = InboundMessage{Timestamp: "yesterday"}.SentAt()
	assert.False(t, ok)
}
