package geocode

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestClient_Search(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/search", r.URL.Path)
		assert.Equal(t, "Amsterdam", r.URL.Query().Get("q"))
		assert.Equal(t, "json", r.URL.Query().Get("format"))
		assert.Equal(t, "1", r.URL.Query().Get("addressdetails"))
		assert.Equal(t, "5", r.URL.Query().Get("limit"))
		assert.Equal(t, "test-agent/1.0", r.Header.Get("User-Agent"))

		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`[
			{"display_name": "Amsterdam, Noord-Holland, Nederland", "lat": "52.3676", "lon": "4.9041",
			 "type": "city", "address": {"city": "Amsterdam", "state": "Noord-Holland", "country": "Nederland", "country_code": "nl"}}
		]`))
	}))
	defer srv.Close()

	client := NewClient(srv.URL, "test-agent/1.0", zerolog.Nop())

	results, err := client.Search(context.Background(), "Amsterdam")
	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.Equal(t, "Amsterdam, Noord-Holland, Nederland", results[0].DisplayName)
	assert.Equal(t, "Amsterdam", results[0].Address.City)
	assert.Equal(t, "52.3676", results[0].Lat)
}

func TestClient_Search_UpstreamError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer srv.Close()

	client := NewClient(srv.URL, "test-agent/1.0", zerolog.Nop())

	results, err := client.Search(context.Background(), "Amsterdam")
	assert.Error(t, err)
	assert.Nil(t, results)
}

func TestClient_Search_InvalidPayload(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"not": "an array"}`))
	}))
	defer srv.Close()

	client := NewClient(srv.URL, "test-agent/1.0", zerolog.Nop())

	results, err := client.Search(context.Background(), "Amsterdam")
	assert.Error(t, err)
	assert.Nil(t, results)
}

func TestClient_Search_Cancelled(t *testing.T) {
	started := make(chan struct{})
	release := make(chan struct{})
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		close(started)
		<-release
	}))
	defer srv.Close()
	defer close(release)

	client := NewClient(srv.URL, "test-agent/1.0", zerolog.Nop())

	ctx, cancel := context.WithCancel(context.Background())
	go func() {
		<-started
		cancel()
	}()

	results, err := client.Search(ctx, "Amsterdam")
	assert.True(t, errors.Is(err, context.Canceled))
	assert.Nil(t, results)
}

func TestClient_Search_CancelledBeforeLimiter(t *testing.T) {
	client := NewClient("http://127.0.0.1:0", "test-agent/1.0", zerolog.Nop())

	ctx, cancel := context.WithTimeout(context.Background(), time.Millisecond)
	defer cancel()

	// Exhaust the limiter burst so the second call has to wait on it.
	_, _ = client.Search(context.Background(), "first")

	results, err := client.Search(ctx, "Amsterdam")
	assert.Error(t, err)
	assert.Nil(t, results)
}
