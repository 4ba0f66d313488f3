package core

import (
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNewRequest(t *testing.T) {
	req := NewRequest(http.MethodGet, "/api/v1/market/ticker")

	assert.Equal(t, http.MethodGet, req.Method)
	assert.Equal(t, "/api/v1/market/ticker", req.Path)
	assert.NotNil(t, req.Query)
	assert.NotNil(t, req.Headers)
	assert.Equal(t, 1, req.Weight)
	assert.False(t, req.RequireAuth)
}

func TestRequest_Setters(t *testing.T) {
	req := NewRequest(http.MethodPost, "/api/v1/trade/placeOrder").
		SetQuery("symbol", "coin-usdt-btc").
		SetHeader("Content-Type", "application/x-www-form-urlencoded").
		SetBody(map[string]string{"k": "v"}).
		SetWeight(5).
		SetRequireAuth(true)

	assert.Equal(t, "coin-usdt-btc", req.Query["symbol"])
	assert.Equal(t, "application/x-www-form-urlencoded", req.Headers["Content-Type"])
	assert.NotNil(t, req.Body)
	assert.Equal(t, 5, req.Weight)
	assert.True(t, req.RequireAuth)
}

func TestRequest_SettersOnZeroValue(t *testing.T) {
	var req Request
	req.SetQuery("a", "1")
	req.SetHeader("X-Test", "yes")

	assert.Equal(t, "1", req.Query["a"])
	assert.Equal(t, "yes", req.Headers["X-Test"])
}

func TestRequest_SetQueryParams(t *testing.T) {
	req := NewRequest(http.MethodGet, "/api/v1/market/ticker").
		SetQuery("symbol", "coin-usdt-btc")

	req.SetQueryParams(Params{"a": "1", "b": "2"})

	assert.Len(t, req.Query, 3)
	assert.Equal(t, "coin-usdt-btc", req.Query["symbol"])
	assert.Equal(t, "2", req.Query["b"])
}
