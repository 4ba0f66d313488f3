package bitforex

import (
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/bytedance/sonic"
	"resty.dev/v3"

	"nakula/pkg/core"
)

const (
	exchangeName = "bitforex"
	apiVersion   = "v1"

	// ProductionURL is the venue's REST API endpoint.
	ProductionURL = "https://api.bitforex.com"
)

// Endpoint paths under /api/v1/. These must match the venue contract
// exactly; the signed payload includes the path.
const (
	pathMarketSymbols = "/api/v1/market/symbols"
	pathMarketTicker  = "/api/v1/market/ticker"
	pathPlaceOrder    = "/api/v1/trade/placeOrder"
	pathCancelOrder   = "/api/v1/trade/cancelOrder"
	pathOrderInfo     = "/api/v1/trade/orderInfo"
)

// Protocol implements the core.Protocol interface for BitForex.
// It builds request descriptors, signs private requests, and normalizes
// responses through the Normalizer.
type Protocol struct{}

// NewProtocol creates a new BitForex protocol instance.
func NewProtocol() *Protocol {
	return &Protocol{}
}

// Name returns the protocol identifier "bitforex".
func (p *Protocol) Name() string {
	return exchangeName
}

// Version returns the BitForex API version string.
func (p *Protocol) Version() string {
	return apiVersion
}

// BaseURL returns the production API endpoint.
func (p *Protocol) BaseURL() string {
	return ProductionURL
}

// SupportedOperations returns the list of operations supported by this protocol.
func (p *Protocol) SupportedOperations() []core.Operation {
	return []core.Operation{
		core.OpFetchMarkets,
		core.OpFetchTicker,
		core.OpPlaceOrder,
		core.OpCancelOrder,
		core.OpFetchOrder,
	}
}

// RateLimits returns the rate limit configuration for the BitForex API.
func (p *Protocol) RateLimits() core.RateLimitConfig {
	return core.RateLimitConfig{
		RequestsPerSecond: 10,
		OrdersPerSecond:   5,
		Burst:             20,
	}
}

// BuildRequest constructs a request descriptor for the given operation.
// Market identifiers in params are venue-specific ("coin-usdt-btc"); the
// exchange layer resolves canonical symbols before calling this.
func (p *Protocol) BuildRequest(ctx context.Context, op core.Operation, params core.Params) (*core.Request, error) {
	switch op {
	case core.OpFetchMarkets:
		return core.NewRequest(http.MethodGet, pathMarketSymbols), nil
	case core.OpFetchTicker:
		return p.buildFetchTickerRequest(params)
	case core.OpPlaceOrder:
		return p.buildPlaceOrderRequest(params)
	case core.OpCancelOrder:
		return p.buildCancelOrderRequest(params)
	case core.OpFetchOrder:
		return p.buildFetchOrderRequest(params)
	default:
		return nil, fmt.Errorf("unsupported operation: %s", op)
	}
}

func (p *Protocol) buildFetchTickerRequest(params core.Params) (*core.Request, error) {
	marketID, err := getRequiredStringParam(params, "symbol")
	if err != nil {
		return nil, err
	}

	req := core.NewRequest(http.MethodGet, pathMarketTicker)
	req.SetQuery("symbol", marketID)

	return req, nil
}

func (p *Protocol) buildPlaceOrderRequest(params core.Params) (*core.Request, error) {
	marketID, err := getRequiredStringParam(params, "symbol")
	if err != nil {
		return nil, err
	}

	amount, err := getRequiredStringParam(params, "amount")
	if err != nil {
		return nil, err
	}

	tradeType, ok := params["tradeType"].(int)
	if !ok {
		return nil, fmt.Errorf("missing required parameter: tradeType")
	}

	req := core.NewRequest(http.MethodPost, pathPlaceOrder)
	req.SetQuery("symbol", marketID)
	req.SetQuery("amount", amount)
	req.SetQuery("tradeType", strconv.Itoa(tradeType))
	req.SetRequireAuth(true)

	if price, ok := params["price"].(string); ok && price != "" {
		req.SetQuery("price", price)
	}

	return req, nil
}

func (p *Protocol) buildCancelOrderRequest(params core.Params) (*core.Request, error) {
	marketID, err := getRequiredStringParam(params, "symbol")
	if err != nil {
		return nil, err
	}

	orderID, err := getRequiredStringParam(params, "orderId")
	if err != nil {
		return nil, err
	}

	req := core.NewRequest(http.MethodPost, pathCancelOrder)
	req.SetQuery("symbol", marketID)
	req.SetQuery("orderId", orderID)
	req.SetRequireAuth(true)

	return req, nil
}

func (p *Protocol) buildFetchOrderRequest(params core.Params) (*core.Request, error) {
	marketID, err := getRequiredStringParam(params, "symbol")
	if err != nil {
		return nil, err
	}

	orderID, err := getRequiredStringParam(params, "orderId")
	if err != nil {
		return nil, err
	}

	req := core.NewRequest(http.MethodPost, pathOrderInfo)
	req.SetQuery("symbol", marketID)
	req.SetQuery("orderId", orderID)
	req.SetRequireAuth(true)

	return req, nil
}

// SignRequest authenticates a request descriptor in place using the
// venue's accessKey/nonce/signData scheme. The nonce is the current
// wall-clock time in milliseconds.
func (p *Protocol) SignRequest(req *core.Request, creds core.Credentials) error {
	if !creds.Valid() {
		return core.NewExchangeError(
			exchangeName, core.ErrorTypeAuthentication, 0,
			"access key and secret are required for signing",
		).WithCode(core.ErrCodeNoCredentials)
	}
	nonce := strconv.FormatInt(time.Now().UnixMilli(), 10)
	return p.signWithNonce(req, creds, nonce)
}

// signWithNonce performs the two-pass signature construction: the sorted
// and encoded query, accessKey and nonce included, is appended to the path
// to form the pre-signature URL; the HMAC-SHA256 of that string keyed by
// the secret is then appended as signData. The signature never covers
// itself; the venue recomputes the digest over the same pre-append URL.
func (p *Protocol) signWithNonce(req *core.Request, creds core.Credentials, nonce string) error {
	values := url.Values{}
	values.Set("accessKey", creds.APIKey)
	values.Set("nonce", nonce)
	for k, v := range req.Query {
		values.Set(k, fmt.Sprint(v))
	}

	// url.Values.Encode sorts lexicographically by key. The ordering is
	// load-bearing: the venue sorts identically before verifying.
	preSigned := req.Path + "?" + values.Encode()
	digest := signHMAC(preSigned, creds.SecretKey)

	req.Path = preSigned + "&signData=" + digest
	req.Query = nil
	req.SetHeader("Content-Type", "application/x-www-form-urlencoded")

	return nil
}

func signHMAC(message, secret string) string {
	h := hmac.New(sha256.New, []byte(secret))
	h.Write([]byte(message))
	return hex.EncodeToString(h.Sum(nil))
}

// bitforexResponse is the envelope every endpoint wraps its payload in.
type bitforexResponse struct {
	Data    any    `json:"data"`
	Success bool   `json:"success"`
	Code    any    `json:"code"`
	Message string `json:"message"`
}

// ParseResponse parses an HTTP response and normalizes it to canonical
// types. Envelope failures (success=false) map the venue code into the
// error taxonomy; transport-level failures never reach here.
func (p *Protocol) ParseResponse(op core.Operation, resp *resty.Response, catalog *core.MarketCatalog) (any, error) {
	if resp == nil {
		return nil, fmt.Errorf("nil response")
	}

	var envelope bitforexResponse
	if err := sonic.Unmarshal(resp.Bytes(), &envelope); err != nil {
		if resp.StatusCode() >= 400 {
			return nil, core.NewExchangeError(
				p.Name(), core.ErrorTypeServerError, resp.StatusCode(),
				fmt.Sprintf("HTTP error: %s", resp.Status()),
			).WithOperation(op)
		}
		return nil, fmt.Errorf("unmarshal response: %w", err)
	}

	if !envelope.Success {
		code := asString(envelope.Code)
		return nil, core.NewExchangeErrorWithCode(
			p.Name(),
			mapErrorCode(code),
			resp.StatusCode(),
			code,
			envelope.Message,
		).WithOperation(op)
	}

	n := NewNormalizer()
	dataBytes, _ := sonic.Marshal(envelope.Data)

	switch op {
	case core.OpFetchMarkets:
		var data []bitforexSymbol
		if err := sonic.Unmarshal(dataBytes, &data); err != nil {
			return nil, fmt.Errorf("unmarshal symbols: %w", err)
		}
		return n.BuildMarkets(data)

	case core.OpFetchTicker:
		var data bitforexTicker
		if err := sonic.Unmarshal(dataBytes, &data); err != nil {
			return nil, fmt.Errorf("unmarshal ticker: %w", err)
		}
		return n.NormalizeTicker(&data, nil), nil

	case core.OpPlaceOrder:
		var data struct {
			OrderID any `json:"orderId"`
		}
		if err := sonic.Unmarshal(dataBytes, &data); err != nil {
			return nil, fmt.Errorf("unmarshal order id: %w", err)
		}
		return &core.Order{
			ID:     asString(data.OrderID),
			Status: core.StatusOpen,
			Raw:    envelope.Data,
		}, nil

	case core.OpCancelOrder:
		// The venue acknowledges cancellation with a bare boolean.
		return &core.Order{
			Status: core.StatusCanceled,
			Raw:    envelope.Data,
		}, nil

	case core.OpFetchOrder:
		var data bitforexOrder
		if err := sonic.Unmarshal(dataBytes, &data); err != nil {
			return nil, fmt.Errorf("unmarshal order: %w", err)
		}
		return n.NormalizeOrder(&data, nil, catalog)

	default:
		return envelope.Data, nil
	}
}

func getRequiredStringParam(params core.Params, key string) (string, error) {
	val, ok := params[key]
	if !ok {
		return "", fmt.Errorf("missing required parameter: %s", key)
	}

	str, ok := val.(string)
	if !ok {
		return "", fmt.Errorf("parameter %s must be a string", key)
	}

	if str == "" {
		return "", fmt.Errorf("parameter %s cannot be empty", key)
	}

	return str, nil
}

// mapErrorCode classifies the venue's envelope error codes.
func mapErrorCode(code string) core.ErrorType {
	switch code {
	case "1013", "1016":
		return core.ErrorTypeAuthentication
	case "1001", "1002", "1010", "1011", "1012":
		return core.ErrorTypePrecondition
	case "3002":
		return core.ErrorTypeInsufficientFunds
	case "4001", "4002", "4003":
		return core.ErrorTypeInvalidOrder
	case "4004":
		return core.ErrorTypeNotFound
	case "10204":
		return core.ErrorTypeRateLimit
	default:
		return core.ErrorTypeUnknown
	}
}
