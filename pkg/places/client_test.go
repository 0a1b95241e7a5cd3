package places

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTextSearch(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/places:searchText", r.URL.Path)
		assert.Equal(t, "test-key", r.Header.Get("X-Goog-Api-Key"))
		assert.NotEmpty(t, r.Header.Get("X-Goog-FieldMask"))

		var req textSearchRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, "board game cafe near Georgia Tech", req.TextQuery)

		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{
			"places": [
				{
					"displayName": {"text": "Meeple Madness"},
					"rating": 4.6,
					"userRatingCount": 312,
					"formattedAddress": "123 Spring St NW, Atlanta, GA 30308",
					"websiteUri": "https://meeplemadness.example",
					"googleMapsUri": "https://maps.google.com/?cid=1",
					"primaryTypeDisplayName": {"text": "Board Game Cafe"},
					"regularOpeningHours": {"weekdayDescriptions": ["Monday: 11 AM - 10 PM"]}
				},
				{
					"displayName": {"text": "Midtown Tabletop"},
					"formattedAddress": "456 Peachtree St NE, Atlanta, GA 30309"
				}
			]
		}`))
	}))
	defer srv.Close()

	client := NewClient("test-key", WithBaseURL(srv.URL))
	places, err := client.TextSearch(context.Background(), "board game cafe near Georgia Tech", 5)
	require.NoError(t, err)
	require.Len(t, places, 2)

	assert.Equal(t, "Meeple Madness", places[0].Name)
	assert.Equal(t, 4.6, places[0].Rating)
	assert.Equal(t, 312, places[0].ReviewCount)
	assert.Equal(t, "Board Game Cafe", places[0].Category)
	assert.Len(t, places[0].Hours, 1)

	assert.Equal(t, "Midtown Tabletop", places[1].Name)
	assert.Zero(t, places[1].Rating)
	assert.Empty(t, places[1].Hours)
}

func TestTextSearchLimit(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`{
			"places": [
				{"displayName": {"text": "A"}},
				{"displayName": {"text": "B"}},
				{"displayName": {"text": "C"}}
			]
		}`))
	}))
	defer srv.Close()

	client := NewClient("test-key", WithBaseURL(srv.URL))
	places, err := client.TextSearch(context.Background(), "arcade", 2)
	require.NoError(t, err)
	assert.Len(t, places, 2)
}

func TestTextSearchEmpty(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`{}`))
	}))
	defer srv.Close()

	client := NewClient("test-key", WithBaseURL(srv.URL))
	places, err := client.TextSearch(context.Background(), "nothing here", 5)
	require.NoError(t, err)
	assert.Empty(t, places)
}

func TestTextSearchRetriesServerErrors(t *testing.T) {
	var calls int
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		calls++
		if calls == 1 {
			w.WriteHeader(http.StatusServiceUnavailable)
			return
		}
		_, _ = w.Write([]byte(`{"places": [{"displayName": {"text": "Recovered"}}]}`))
	}))
	defer srv.Close()

	client := NewClient("test-key", WithBaseURL(srv.URL))
	places, err := client.TextSearch(context.Background(), "arcade", 5)
	require.NoError(t, err)
	require.Len(t, places, 1)
	assert.Equal(t, 2, calls)
}

func TestTextSearchAPIError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusForbidden)
		_, _ = w.Write([]byte(`{"error": {"message": "API key invalid"}}`))
	}))
	defer srv.Close()

	client := NewClient("bad-key", WithBaseURL(srv.URL))
	_, err := client.TextSearch(context.Background(), "arcade", 5)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "403")
}
