package whatsapp

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
)

var now = time.Date(2025, 6, 18, 9, 0, 0, 0, time.UTC)

func TestParseCloudPayload(t *testing.T) {
	body := []byte(`{
		"object": "whatsapp_business_account",
		"entry": [{
			"changes": [{
				"field": "messages",
				"value": {
					"messages": [
						{"id": "wamid.1", "from": "33612345678", "timestamp": "1718701200", "type": "text", "text": {"body": " j'ai fait sport "}},
						{"id": "wamid.2", "from": "33612345678", "type": "audio"},
						{"id": "wamid.3", "from": "33612345678", "type": "text", "text": {"body": ""}}
					]
				}
			}]
		}]
	}`)

	msgs, err := ParseWebhook(body, now)
	require.NoError(t, err)
	require.Len(t, msgs, 1)
	assert.Equal(t, "wamid.1", msgs[0].ID)
	assert.Equal(t, "33612345678", msgs[0].UserID)
	assert.Equal(t, "j'ai fait sport", msgs[0].Text)
	assert.Equal(t, time.Unix(1718701200, 0).UTC(), msgs[0].ReceivedAt)
}

func TestParseStatusUpdateIsEmpty(t *testing.T) {
	body := []byte(`{"entry":[{"changes":[{"value":{"statuses":[{"id":"wamid.1","status":"read"}]}}]}]}`)
	msgs, err := ParseWebhook(body, now)
	require.NoError(t, err)
	assert.Empty(t, msgs)
}

func TestParseFlatPayload(t *testing.T) {
	msgs, err := ParseWebhook([]byte(`{"from":"+33 6 12 34 56 78","text":"⭐ 8"}`), now)
	require.NoError(t, err)
	require.Len(t, msgs, 1)
	assert.Equal(t, "33612345678", msgs[0].UserID)
	assert.Equal(t, "⭐ 8", msgs[0].Text)
	assert.Equal(t, now, msgs[0].ReceivedAt)

	msgs, err = ParseWebhook([]byte(`{"phoneNumber":"33600000000","messageText":"aide"}`), now)
	require.NoError(t, err)
	require.Len(t, msgs, 1)

	msgs, err = ParseWebhook([]byte(`{"from":"33600000000"}`), now)
	require.NoError(t, err)
	assert.Empty(t, msgs)
}

func TestParseInvalidJSON(t *testing.T) {
	_, err := ParseWebhook([]byte(`{nope`), now)
	assert.Error(t, err)
}

func TestCleanNumber(t *testing.T) {
	assert.Equal(t, "33612345678", CleanNumber("+33 (6) 12-34-56-78"))
	assert.Equal(t, "", CleanNumber("abc"))
}

func TestSenderPostsCloudMessage(t *testing.T) {
	var got map[string]any
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v19.0/PHONE/messages", r.URL.Path)
		assert.Equal(t, "Bearer secret", r.Header.Get("Authorization"))
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		_, _ = w.Write([]byte(`{"messages":[{"id":"wamid.out"}]}`))
	}))
	defer srv.Close()

	s := NewSender(Config{BaseURL: srv.URL, APIVersion: "v19.0", PhoneNumberID: "PHONE", AccessToken: "secret"}, zaptest.NewLogger(t))
	require.NoError(t, s.Send(context.Background(), "+33 6 12 34 56 78", "Bonjour"))

	assert.Equal(t, "whatsapp", got["messaging_product"])
	assert.Equal(t, "33612345678", got["to"])
	assert.Equal(t, "text", got["type"])
	assert.Equal(t, "Bonjour", got["text"].(map[string]any)["body"])
}

func TestSenderReportsStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "bad token", http.StatusUnauthorized)
	}))
	defer srv.Close()

	s := NewSender(Config{BaseURL: srv.URL, PhoneNumberID: "PHONE"}, zaptest.NewLogger(t))
	err := s.Send(context.Background(), "33612345678", "x")

	var sendErr *SendError
	require.ErrorAs(t, err, &sendErr)
	assert.Equal(t, http.StatusUnauthorized, sendErr.Status)
}
