package advisor

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func fakeCompletion(content string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		resp := map[string]interface{}{
			"choices": []map[string]interface{}{
				{"message": map[string]string{"role": "assistant", "content": content}},
			},
		}
		json.NewEncoder(w).Encode(resp)
	}
}

func TestSuggestTime(t *testing.T) {
	srv := httptest.NewServer(fakeCompletion(`{"suggestedTime": "12:30 PM", "rationale": "перед обеденным пиком"}`))
	defer srv.Close()

	c := NewClient("test-key", srv.URL, "gpt-3.5-turbo")
	got, err := c.SuggestTime(context.Background(), "menu", "orders peak at 1 PM")
	require.NoError(t, err)
	assert.Equal(t, "12:30 PM", got.SuggestedTime)
	assert.Equal(t, "перед обеденным пиком", got.Rationale)
}

func TestSuggestTimeWrappedJSON(t *testing.T) {
	// Модель обернула JSON в пояснение и код-блок.
	content := "Sure! Here is my suggestion:\n```json\n{\"suggestedTime\": \"7:00 PM\", \"rationale\": \"most dinner orders land by then\"}\n```"
	srv := httptest.NewServer(fakeCompletion(content))
	defer srv.Close()

	c := NewClient("test-key", srv.URL, "gpt-3.5-turbo")
	got, err := c.SuggestTime(context.Background(), "delivery", "")
	require.NoError(t, err)
	assert.Equal(t, "7:00 PM", got.SuggestedTime)
}

func TestSuggestTimeNoJSONInAnswer(t *testing.T) {
	srv := httptest.NewServer(fakeCompletion("I would send it at noon."))
	defer srv.Close()

	c := NewClient("test-key", srv.URL, "gpt-3.5-turbo")
	_, err := c.SuggestTime(context.Background(), "menu", "")
	assert.Error(t, err)
}

func TestSuggestTimeUpstreamError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "rate limited", http.StatusTooManyRequests)
	}))
	defer srv.Close()

	c := NewClient("test-key", srv.URL, "gpt-3.5-turbo")
	_, err := c.SuggestTime(context.Background(), "menu", "")
	assert.Error(t, err)
}

func TestSuggestTimeWithoutKey(t *testing.T) {
	c := NewClient("", "http://unused", "gpt-3.5-turbo")
	_, err := c.SuggestTime(context.Background(), "menu", "")
	assert.Error(t, err)
}

func TestSuggestTimeSendsAuthAndModel(t *testing.T) {
	var gotAuth string
	var gotReq chatRequest
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		json.NewDecoder(r.Body).Decode(&gotReq)
		fakeCompletion(`{"suggestedTime": "9:00 AM", "rationale": "ok"}`)(w, r)
	}))
	defer srv.Close()

	c := NewClient("secret-key", srv.URL, "gpt-4o-mini")
	_, err := c.SuggestTime(context.Background(), "menu", "")
	require.NoError(t, err)
	assert.Equal(t, "Bearer secret-key", gotAuth)
	assert.Equal(t, "gpt-4o-mini", gotReq.Model)
	require.Len(t, gotReq.Messages, 1)
	assert.Contains(t, gotReq.Messages[0].Content, "Notification Type: menu")
}

func TestParseSuggestionMissingTime(t *testing.T) {
	_, err := parseSuggestion(`{"rationale": "no time field"}`)
	assert.Error(t, err)
}
