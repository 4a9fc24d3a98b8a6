package whatsapp

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/go-resty/resty/v2"

	"github.com/mamadbah2/importados/internal/config"
)

// MaxTextLength is the Cloud API limit for a text body. Longer bodies are sent in parts.
const MaxTextLength = 4096

const (
	requestTimeout = 15 * time.Second
	retryCount     = 2
	retryWait      = 300 * time.Millisecond
	retryMaxWait   = time.Second
)

// Client sends WhatsApp messages on behalf of the business number.
type Client interface {
	SendTextMessage(ctx context.Context, req SendTextMessageRequest) (*SendTextMessageResponse, error)
}

// APIClient talks to the Meta Graph API through resty. Rate limits and
// server errors are retried; client errors are not.
type APIClient struct {
	httpClient    *resty.Client
	phoneNumberID string
}

// NewClient builds a WhatsApp API client using the provided configuration values.
func NewClient(cfg config.WhatsAppConfig) *APIClient {
	base := strings.TrimSuffix(cfg.BaseURL, "/")

	restyClient := resty.New().
		SetBaseURL(fmt.Sprintf("%s/%s", base, cfg.APIVersion)).
		SetAuthToken(cfg.AccessToken).
		SetHeader("Content-Type", "application/json").
		SetTimeout(requestTimeout).
		SetRetryCount(retryCount).
		SetRetryWaitTime(retryWait).
		SetRetryMaxWaitTime(retryMaxWait).
		AddRetryCondition(shouldRetry)

	return &APIClient{
		httpClient:    restyClient,
		phoneNumberID: cfg.PhoneNumberID,
	}
}

// SendTextMessageRequest is a plain text message to one number.
type SendTextMessageRequest struct {
	To         string
	Body       string
	PreviewURL bool
}

// SendTextMessageResponse lists the ids Meta assigned, one per part sent.
type SendTextMessageResponse struct {
	Messages []struct {
		ID string `json:"id"`
	} `json:"messages"`
}

// APIError is an error answer from the Cloud API.
type APIError struct {
	Status  int
	Code    int
	Message string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("whatsapp api error: status=%d, code=%d, message=%s", e.Status, e.Code, e.Message)
}

type textMessage struct {
	MessagingProduct string   `json:"messaging_product"`
	RecipientType    string   `json:"recipient_type"`
	To               string   `json:"to"`
	Type             string   `json:"type"`
	Text             textBody `json:"text"`
}

type textBody struct {
	Body       string `json:"body"`
	PreviewURL bool   `json:"preview_url"`
}

type errorBody struct {
	Error struct {
		Message string `json:"message"`
		Code    int    `json:"code"`
	} `json:"error"`
}

// SendTextMessage sends req.Body, split on line breaks into parts of at most
// MaxTextLength bytes. It stops at the first part that fails.
func (c *APIClient) SendTextMessage(ctx context.Context, req SendTextMessageRequest) (*SendTextMessageResponse, error) {
	parts := splitText(req.Body, MaxTextLength)
	sent := new(SendTextMessageResponse)

	for i, part := range parts {
		result, err := c.post(ctx, textMessage{
			MessagingProduct: "whatsapp",
			RecipientType:    "individual",
			To:               req.To,
			Type:             "text",
			Text:             textBody{Body: part, PreviewURL: req.PreviewURL},
		})
		if err != nil {
			if len(parts) > 1 {
				return sent, fmt.Errorf("part %d/%d: %w", i+1, len(parts), err)
			}
			return nil, err
		}
		sent.Messages = append(sent.Messages, result.Messages...)
	}
	return sent, nil
}

func (c *APIClient) post(ctx context.Context, msg textMessage) (*SendTextMessageResponse, error) {
	result := new(SendTextMessageResponse)
	apiErr := new(errorBody)

	resp, err := c.httpClient.R().
		SetContext(ctx).
		SetBody(msg).
		SetResult(result).
		SetError(apiErr).
		Post(fmt.Sprintf("%s/messages", c.phoneNumberID))
	if err != nil {
		return nil, fmt.Errorf("send whatsapp message: %w", err)
	}

	if resp.StatusCode() >= http.StatusBadRequest {
		e := &APIError{Status: resp.StatusCode(), Code: apiErr.Error.Code, Message: apiErr.Error.Message}
		if e.Code == 0 {
			e.Code = e.Status
		}
		return nil, e
	}
	return result, nil
}

func shouldRetry(resp *resty.Response, err error) bool {
	if err != nil {
		return !errors.Is(err, context.Canceled) && !errors.Is(err, context.DeadlineExceeded)
	}
	return resp.StatusCode() == http.StatusTooManyRequests || resp.StatusCode() >= http.StatusInternalServerError
}

// splitText cuts body into pieces of at most limit bytes, at the last line
// break when there is one and never inside a UTF-8 sequence.
func splitText(body string, limit int) []string {
	var parts []string
	for len(body) > limit {
		cut := strings.LastIndexByte(body[:limit], '\n')
		if cut <= 0 {
			cut = limit
			for cut > 0 && !utf8.RuneStart(body[cut]) {
				cut--
			}
		}
		parts = append(parts, body[:cut])
		body = strings.TrimPrefix(body[cut:], "\n")
	}
	return append(parts, body)
}
