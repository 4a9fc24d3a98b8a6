package models

import (
	"strconv"
	"strings"
	"time"
)

// WhatsAppObject is the object name Meta sets on every WhatsApp Business callback.
const WhatsAppObject = "whatsapp_business_account"

// WebhookPayload is the callback body posted by the WhatsApp Cloud API.
// Only the parts the stock bot reads are mapped; delivery receipts and
// interactive replies are dropped while decoding.
type WebhookPayload struct {
	Object string         `json:"object"`
	Entry  []WebhookEntry `json:"entry"`
}

type WebhookEntry struct {
	ID      string          `json:"id"`
	Changes []WebhookChange `json:"changes"`
}

type WebhookChange struct {
	Field string       `json:"field"`
	Value WebhookValue `json:"value"`
}

type WebhookValue struct {
	MessagingProduct string           `json:"messaging_product"`
	Messages         []InboundMessage `json:"messages"`
}

// Messages returns every inbound message of the payload in delivery order.
func (p WebhookPayload) Messages() []InboundMessage {
	var out []InboundMessage
	for _, entry := range p.Entry {
		for _, change := range entry.Changes {
			out = append(out, change.Value.Messages...)
		}
	}
	return out
}

// InboundMessage is one message sent to the business number.
type InboundMessage struct {
	From      string       `json:"from"`
	ID        string       `json:"id"`
	Timestamp string       `json:"timestamp"`
	Type      string       `json:"type"`
	Text      *TextContent `json:"text,omitempty"`
}

type TextContent struct {
	Body string `json:"body"`
}

// Query is the trimmed text of a text message; any other message type yields "".
func (m InboundMessage) Query() string {
	if m.Text == nil {
		return ""
	}
	return strings.TrimSpace(m.Text.Body)
}

// SentAt decodes the unix-seconds timestamp. ok is false when it is missing or malformed.
func (m InboundMessage) SentAt() (t time.Time, ok bool) {
	secs, err := strconv.ParseInt(m.Timestamp, 10, 64)
	if err != nil || secs <= 0 {
		return time.Time{}, false
	}
	return time.Unix(secs, 0).UTC(), true
}

// OutboundMessage is a text pushed to a WhatsApp number: a query reply or the weekly summary.
type OutboundMessage struct {
	To         string `json:"to"`
	Message    string `json:"message"`
	PreviewURL bool   `json:"preview_url"`
}
