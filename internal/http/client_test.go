package http

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testConfig(baseURL string) *Config {
	return &Config{
		BaseURL:      baseURL,
		Timeout:      5 * time.Second,
		MaxRetries:   0,
		RetryWaitMin: 10 * time.Millisecond,
		RetryWaitMax: 50 * time.Millisecond,
	}
}

func TestNewClient_InvalidConfig(t *testing.T) {
	tests := []struct {
		name   string
		config *Config
	}{
		{"missing base url", &Config{Timeout: time.Second}},
		{"bad base url", testConfig("not a url")},
		{"zero timeout", &Config{BaseURL: "http://127.0.0.1:8080"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewClient(tt.config)
			assert.Error(t, err)
		})
	}
}

func TestClient_Get(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodGet, r.Method)
		assert.Equal(t, "/api/v1/market/symbols", r.URL.Path)
		assert.Equal(t, "yes", r.Header.Get("X-Test"))
		w.Write([]byte(`{"success": true}`))
	}))
	defer srv.Close()

	client, err := NewClient(testConfig(srv.URL))
	require.NoError(t, err)
	defer client.Close()

	resp, err := client.Get(context.Background(), "/api/v1/market/symbols", WithHeader("X-Test", "yes"))
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode())
	assert.Contains(t, string(resp.Bytes()), "success")
}

func TestClient_Get_QueryParams(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "coin-usdt-btc", r.URL.Query().Get("symbol"))
		w.Write([]byte(`{}`))
	}))
	defer srv.Close()

	client, err := NewClient(testConfig(srv.URL))
	require.NoError(t, err)
	defer client.Close()

	_, err = client.Get(context.Background(), "/api/v1/market/ticker",
		WithQueryParam("symbol", "coin-usdt-btc"))
	require.NoError(t, err)
}

func TestClient_Post_PathWithEmbeddedQuery(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "abc", r.URL.Query().Get("signData"))
		w.Write([]byte(`{}`))
	}))
	defer srv.Close()

	client, err := NewClient(testConfig(srv.URL))
	require.NoError(t, err)
	defer client.Close()

	_, err = client.Post(context.Background(), "/api/v1/trade/placeOrder?signData=abc", nil)
	require.NoError(t, err)
}

func TestClient_ClosedRejectsRequests(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{}`))
	}))
	defer srv.Close()

	client, err := NewClient(testConfig(srv.URL))
	require.NoError(t, err)
	require.NoError(t, client.Close())

	_, err = client.Get(context.Background(), "/")
	assert.Error(t, err)
	_, err = client.Post(context.Background(), "/", nil)
	assert.Error(t, err)

	// Closing twice is a no-op.
	assert.NoError(t, client.Close())
}

func TestClient_ContextCancellation(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		time.Sleep(200 * time.Millisecond)
		w.Write([]byte(`{}`))
	}))
	defer srv.Close()

	client, err := NewClient(testConfig(srv.URL))
	require.NoError(t, err)
	defer client.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	_, err = client.Get(ctx, "/")
	assert.Error(t, err)
}
