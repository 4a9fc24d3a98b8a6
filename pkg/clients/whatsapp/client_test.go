package whatsapp

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mamadbah2/importados/internal/config"
)

func newTestClient(url string) *APIClient {
	return NewClient(config.WhatsAppConfig{
		AccessToken:   "token",
		PhoneNumberID: "555",
		BaseURL:       url + "/",
		APIVersion:    "v20.0",
	})
}

func TestSendTextMessage(t *testing.T) {
	var got textMessage
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v20.0/555/messages", r.URL.Path)
		assert.Equal(t, "Bearer token", r.Header.Get("Authorization"))
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"messages":[{"id":"wamid.1"}]}`))
	}))
	defer srv.Close()

	resp, err := newTestClient(srv.URL).SendTextMessage(context.Background(), SendTextMessageRequest{To: "54911", Body: "In stock: 4 units."})
	require.NoError(t, err)
	require.Len(t, resp.Messages, 1)
	assert.Equal(t, "wamid.1", resp.Messages[0].ID)
	assert.Equal(t, "54911", got.To)
	assert.Equal(t, "text", got.Type)
	assert.Equal(t, "whatsapp", got.MessagingProduct)
	assert.Equal(t, "In stock: 4 units.", got.Text.Body)
}

func TestSendTextMessageReportsAPIError(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusUnauthorized)
		_, _ = w.Write([]byte(`{"error":{"message":"Invalid OAuth access token","code":190}}`))
	}))
	defer srv.Close()

	_, err := newTestClient(srv.URL).SendTextMessage(context.Background(), SendTextMessageRequest{To: "54911", Body: "hi"})
	require.Error(t, err)

	var apiErr *APIError
	require.True(t, errors.As(err, &apiErr))
	assert.Equal(t, http.StatusUnauthorized, apiErr.Status)
	assert.Equal(t, 190, apiErr.Code)
	assert.Contains(t, err.Error(), "Invalid OAuth access token")
	assert.Equal(t, int32(1), calls.Load(), "client errors are not retried")
}

func TestSendTextMessageRetriesServerErrors(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		if calls.Add(1) == 1 {
			w.WriteHeader(http.StatusServiceUnavailable)
			_, _ = w.Write([]byte(`{"error":{"message":"try later","code":2}}`))
			return
		}
		_, _ = w.Write([]byte(`{"messages":[{"id":"wamid.2"}]}`))
	}))
	defer srv.Close()

	resp, err := newTestClient(srv.URL).SendTextMessage(context.Background(), SendTextMessageRequest{To: "54911", Body: "hi"})
	require.NoError(t, err)
	assert.Equal(t, "wamid.2", resp.Messages[0].ID)
	assert.Equal(t, int32(2), calls.Load())
}

func TestLongBodiesAreSentInParts(t *testing.T) {
	var bodies []string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var msg textMessage
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&msg))
		bodies = append(bodies, msg.Text.Body)
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"messages":[{"id":"wamid.x"}]}`))
	}))
	defer srv.Close()

	line := strings.Repeat("x", 99)
	body := strings.TrimSuffix(strings.Repeat(line+"\n", 60), "\n")

	resp, err := newTestClient(srv.URL).SendTextMessage(context.Background(), SendTextMessageRequest{To: "54911", Body: body})
	require.NoError(t, err)
	require.Len(t, bodies, 2)
	assert.Len(t, resp.Messages, 2)
	assert.Equal(t, body, bodies[0]+"\n"+bodies[1])
	for _, b := range bodies {
		assert.LessOrEqual(t, len(b), MaxTextLength)
	}
}

func TestSplitText(t *testing.T) {
	assert.Equal(t, []string{"short"}, splitText("short", 10))
	assert.Equal(t, []string{"ab", "cd"}, splitText("ab\ncd", 4))
	assert.Equal(t, []string{"abcd", "ef"}, splitText("abcdef", 4))

	// "ñ" is two bytes and must not be cut in half.
	parts := splitText("abcñd", 4)
	assert.Equal(t, []string{"abc", "ñd"}, parts)
}
