package bitforex

import (
	"context"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/rs/zerolog"
	"resty.dev/v3"

	"nakula/internal/circuitbreaker"
	httpClient "nakula/internal/http"
	"nakula/internal/keyring"
	"nakula/internal/ratelimit"
	"nakula/pkg/core"
	"nakula/pkg/exchange"
)

// ordersBucket is the rate limiter bucket shared by order operations.
const ordersBucket = "orders"

// BitforexExchange implements the Exchange interface for BitForex spot
// markets. It owns the market catalog cache and provides rate limiting,
// circuit breaking, and API key rotation around the protocol layer.
type BitforexExchange struct {
	config         *core.Config
	keyRing        *keyring.KeyRing
	httpClient     *httpClient.Client
	rateLimiter    *ratelimit.RateLimiter
	circuitBreaker *circuitbreaker.Breaker
	logger         zerolog.Logger
	normalizer     *Normalizer
	protocol       *Protocol

	// markets is the catalog cache. Loads build a complete catalog and
	// swap it in one assignment; readers never observe a partial one.
	marketsMu sync.RWMutex
	markets   *core.MarketCatalog
}

// Option is a functional option for configuring the BitforexExchange.
type Option func(*Options)

// Options holds configuration options for the BitforexExchange.
type Options struct {
	KeyRing *keyring.KeyRing
	Logger  zerolog.Logger
}

// WithKeyRing returns an option that sets the API key ring for key rotation.
func WithKeyRing(kr *keyring.KeyRing) Option {
	return func(o *Options) {
		o.KeyRing = kr
	}
}

// WithLogger returns an option that sets the logger for the exchange.
func WithLogger(l zerolog.Logger) Option {
	return func(o *Options) {
		o.Logger = l
	}
}

// New creates a new BitforexExchange instance with the given configuration and options.
// It initializes the HTTP client, rate limiter, and circuit breaker based on the config.
func New(config *core.Config, opts ...Option) (*BitforexExchange, error) {
	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("validate config: %w", err)
	}

	options := &Options{
		Logger: zerolog.Nop(),
	}
	for _, opt := range opts {
		opt(options)
	}

	protocol := NewProtocol()

	client, err := httpClient.NewClient(&httpClient.Config{
		BaseURL:      getBaseURL(config, protocol),
		Timeout:      config.Timeout,
		MaxRetries:   config.MaxRetries,
		RetryWaitMin: config.RetryWaitMin,
		RetryWaitMax: config.RetryWaitMax,
	})
	if err != nil {
		return nil, fmt.Errorf("create http client: %w", err)
	}

	var rl *ratelimit.RateLimiter
	if config.RateLimitRequests > 0 {
		rl = ratelimit.New(config.RateLimitRequests, config.RateLimitPeriod)
		rl.SetBucketLimit(ordersBucket, protocol.RateLimits().OrdersPerSecond, time.Second)
	}

	var cb *circuitbreaker.Breaker
	if config.CircuitBreakerEnabled {
		cb = circuitbreaker.New(circuitbreaker.Config{
			FailThreshold:    config.CircuitBreakerFailThreshold,
			SuccessThreshold: config.CircuitBreakerSuccessThreshold,
			Timeout:          config.CircuitBreakerTimeout,
		})
	}

	return &BitforexExchange{
		config:         config,
		keyRing:        options.KeyRing,
		httpClient:     client,
		rateLimiter:    rl,
		circuitBreaker: cb,
		logger:         options.Logger,
		normalizer:     NewNormalizer(),
		protocol:       protocol,
	}, nil
}

// getBaseURL returns the API base URL, honoring the config override.
func getBaseURL(config *core.Config, p *Protocol) string {
	if config.BaseURL != "" {
		return config.BaseURL
	}
	return p.BaseURL()
}

// Name returns the exchange identifier "bitforex".
func (e *BitforexExchange) Name() string {
	return exchangeName
}

// Version returns the BitForex API version.
func (e *BitforexExchange) Version() string {
	return apiVersion
}

// Close releases resources used by the exchange, including the HTTP client.
func (e *BitforexExchange) Close() error {
	if e.httpClient != nil {
		return e.httpClient.Close()
	}
	return nil
}

// FetchMarkets retrieves the venue's symbol metadata as canonical markets,
// in the venue's listing order. The result populates the catalog cache;
// pass exchange.WithReload to force a refresh.
func (e *BitforexExchange) FetchMarkets(ctx context.Context, opts ...exchange.Option) ([]core.Market, error) {
	options := exchange.ApplyOptions(opts...)

	catalog, err := e.loadMarkets(ctx, options.Reload)
	if err != nil {
		return nil, err
	}
	return catalog.Markets(), nil
}

// FetchTicker retrieves the current ticker for the canonical symbol.
func (e *BitforexExchange) FetchTicker(ctx context.Context, symbol string, opts ...exchange.Option) (*core.Ticker, error) {
	_ = exchange.ApplyOptions(opts...)

	market, err := e.resolveMarket(ctx, core.OpFetchTicker, symbol)
	if err != nil {
		return nil, err
	}

	req, err := e.protocol.BuildRequest(ctx, core.OpFetchTicker, core.Params{
		"symbol": market.ID,
	})
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}

	resp, err := e.doRequest(ctx, req)
	if err != nil {
		return nil, err
	}

	result, err := e.protocol.ParseResponse(core.OpFetchTicker, resp, nil)
	if err != nil {
		return nil, fmt.Errorf("parse response: %w", err)
	}

	ticker, ok := result.(*core.Ticker)
	if !ok {
		return nil, fmt.Errorf("unexpected response type: %T", result)
	}

	ticker.Symbol = market.Symbol
	return ticker, nil
}

// CreateOrder submits a new order to the venue.
//
// The request's Type field is accepted but has no effect on the wire: the
// venue has no market-order primitive, so marketable execution is achieved
// through price selection by the caller.
func (e *BitforexExchange) CreateOrder(ctx context.Context, req *exchange.OrderRequest, opts ...exchange.Option) (*core.Order, error) {
	_ = exchange.ApplyOptions(opts...)

	market, err := e.resolveMarket(ctx, core.OpPlaceOrder, req.Symbol)
	if err != nil {
		return nil, err
	}

	params := core.Params{
		"symbol":    market.ID,
		"amount":    req.Amount.String(),
		"tradeType": tradeType(req.Side),
	}
	if req.Price != nil {
		params["price"] = req.Price.String()
	}

	coreReq, err := e.protocol.BuildRequest(ctx, core.OpPlaceOrder, params)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}

	resp, err := e.doSignedRequest(ctx, core.OpPlaceOrder, coreReq)
	if err != nil {
		return nil, err
	}

	result, err := e.protocol.ParseResponse(core.OpPlaceOrder, resp, nil)
	if err != nil {
		return nil, fmt.Errorf("parse response: %w", err)
	}

	order, ok := result.(*core.Order)
	if !ok {
		return nil, fmt.Errorf("unexpected response type: %T", result)
	}

	order.Symbol = market.Symbol
	order.Side = req.Side
	amount := req.Amount
	order.Amount = &amount
	if req.Price != nil {
		order.Price = req.Price
	}

	e.logger.Debug().
		Str("symbol", market.Symbol).
		Str("order_id", order.ID).
		Str("side", req.Side.String()).
		Msg("order placed")

	return order, nil
}

// CancelOrder cancels an existing order. The symbol is mandatory; its
// absence is a precondition error raised before any request is issued.
func (e *BitforexExchange) CancelOrder(ctx context.Context, req *exchange.CancelRequest, opts ...exchange.Option) (*core.Order, error) {
	_ = exchange.ApplyOptions(opts...)

	market, err := e.resolveMarket(ctx, core.OpCancelOrder, req.Symbol)
	if err != nil {
		return nil, err
	}

	coreReq, err := e.protocol.BuildRequest(ctx, core.OpCancelOrder, core.Params{
		"symbol":  market.ID,
		"orderId": req.OrderID,
	})
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}

	resp, err := e.doSignedRequest(ctx, core.OpCancelOrder, coreReq)
	if err != nil {
		return nil, err
	}

	result, err := e.protocol.ParseResponse(core.OpCancelOrder, resp, nil)
	if err != nil {
		return nil, fmt.Errorf("parse response: %w", err)
	}

	order, ok := result.(*core.Order)
	if !ok {
		return nil, fmt.Errorf("unexpected response type: %T", result)
	}

	order.ID = req.OrderID
	order.Symbol = market.Symbol
	return order, nil
}

// FetchOrder retrieves the current state of an order. The symbol is
// mandatory; its absence is a precondition error raised before any
// request is issued.
func (e *BitforexExchange) FetchOrder(ctx context.Context, req *exchange.OrderQuery, opts ...exchange.Option) (*core.Order, error) {
	_ = exchange.ApplyOptions(opts...)

	market, err := e.resolveMarket(ctx, core.OpFetchOrder, req.Symbol)
	if err != nil {
		return nil, err
	}

	coreReq, err := e.protocol.BuildRequest(ctx, core.OpFetchOrder, core.Params{
		"symbol":  market.ID,
		"orderId": req.OrderID,
	})
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}

	resp, err := e.doSignedRequest(ctx, core.OpFetchOrder, coreReq)
	if err != nil {
		return nil, err
	}

	catalog := e.catalog()
	result, err := e.protocol.ParseResponse(core.OpFetchOrder, resp, catalog)
	if err != nil {
		return nil, fmt.Errorf("parse response: %w", err)
	}

	order, ok := result.(*core.Order)
	if !ok {
		return nil, fmt.Errorf("unexpected response type: %T", result)
	}

	if order.Symbol == "" {
		order.Symbol = market.Symbol
	}
	return order, nil
}

// catalog returns the current catalog generation, nil if never loaded.
func (e *BitforexExchange) catalog() *core.MarketCatalog {
	e.marketsMu.RLock()
	defer e.marketsMu.RUnlock()
	return e.markets
}

// loadMarkets returns the cached catalog, fetching it first if empty or a
// reload was requested. Loading is idempotent: each load builds a full
// catalog and swaps it in whole, so racing loads cannot interleave
// fragments and the last successful load wins.
func (e *BitforexExchange) loadMarkets(ctx context.Context, reload bool) (*core.MarketCatalog, error) {
	if !reload {
		if c := e.catalog(); c != nil {
			return c, nil
		}
	}

	req, err := e.protocol.BuildRequest(ctx, core.OpFetchMarkets, core.Params{})
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}

	resp, err := e.doRequest(ctx, req)
	if err != nil {
		return nil, err
	}

	result, err := e.protocol.ParseResponse(core.OpFetchMarkets, resp, nil)
	if err != nil {
		return nil, fmt.Errorf("parse response: %w", err)
	}

	markets, ok := result.([]core.Market)
	if !ok {
		return nil, fmt.Errorf("unexpected response type: %T", result)
	}

	catalog := core.NewMarketCatalog(markets)

	e.marketsMu.Lock()
	e.markets = catalog
	e.marketsMu.Unlock()

	e.logger.Debug().Int("markets", catalog.Len()).Msg("market catalog loaded")

	return catalog, nil
}

// resolveMarket validates the symbol argument and maps it to a venue
// market, loading the catalog first if uninitialized. An empty symbol
// fails before any network interaction.
func (e *BitforexExchange) resolveMarket(ctx context.Context, op core.Operation, symbol string) (*core.Market, error) {
	if symbol == "" {
		return nil, core.NewExchangeError(
			e.Name(), core.ErrorTypePrecondition, 0,
			op.String()+" requires a symbol argument",
		).WithCode(core.ErrCodeMissingSymbol).WithOperation(op)
	}

	catalog, err := e.loadMarkets(ctx, false)
	if err != nil {
		return nil, err
	}

	market, ok := catalog.BySymbol(symbol)
	if !ok {
		return nil, core.NewExchangeError(
			e.Name(), core.ErrorTypePrecondition, 0,
			"symbol "+symbol+" is not listed on "+e.Name(),
		).WithCode(core.ErrCodeInvalidSymbol).WithOperation(op)
	}
	return market, nil
}

func (e *BitforexExchange) doRequest(ctx context.Context, req *core.Request) (*resty.Response, error) {
	if e.rateLimiter != nil {
		if err := e.rateLimiter.Wait(ctx); err != nil {
			return nil, fmt.Errorf("rate limit: %w", err)
		}
	}

	if e.circuitBreaker != nil && !e.circuitBreaker.Allow() {
		return nil, core.ErrCircuitBreakerOpen
	}

	var resp *resty.Response
	var err error

	switch req.Method {
	case http.MethodGet:
		resp, err = e.httpClient.Get(ctx, req.Path, e.buildRequestOptions(req)...)
	case http.MethodPost:
		resp, err = e.httpClient.Post(ctx, req.Path, req.Body, e.buildRequestOptions(req)...)
	default:
		return nil, fmt.Errorf("unsupported method: %s", req.Method)
	}

	if e.circuitBreaker != nil {
		e.circuitBreaker.Record(err == nil)
	}

	return resp, err
}

// doSignedRequest resolves credentials, signs the request descriptor, and
// dispatches it. Missing credentials fail before any network call. Signed
// requests carry their query inside the path, so none is re-encoded here.
func (e *BitforexExchange) doSignedRequest(ctx context.Context, op core.Operation, req *core.Request) (*resty.Response, error) {
	if e.keyRing == nil && !e.config.Credentials.Valid() {
		return nil, core.NewExchangeError(
			e.Name(), core.ErrorTypeAuthentication, 0,
			"no credentials configured",
		).WithCode(core.ErrCodeNoCredentials).WithOperation(op)
	}

	var creds core.Credentials
	if e.keyRing != nil {
		key := e.keyRing.Current()
		if key == nil {
			return nil, core.NewExchangeError(
				e.Name(), core.ErrorTypeAuthentication, 0,
				"no available API key",
			).WithCode(core.ErrCodeNoAPIKey).WithOperation(op)
		}
		creds = core.Credentials{
			APIKey:    key.Key,
			SecretKey: key.Secret,
		}
		e.keyRing.MarkUsed()
	} else {
		creds = *e.config.Credentials
	}

	if err := e.protocol.SignRequest(req, creds); err != nil {
		return nil, fmt.Errorf("sign request: %w", err)
	}

	if e.rateLimiter != nil {
		if err := e.rateLimiter.WaitBucket(ctx, ordersBucket); err != nil {
			return nil, fmt.Errorf("rate limit: %w", err)
		}
	}

	if e.circuitBreaker != nil && !e.circuitBreaker.Allow() {
		return nil, core.ErrCircuitBreakerOpen
	}

	var resp *resty.Response
	var err error

	switch req.Method {
	case http.MethodGet:
		resp, err = e.httpClient.Get(ctx, req.Path, e.buildRequestOptions(req)...)
	case http.MethodPost:
		resp, err = e.httpClient.Post(ctx, req.Path, req.Body, e.buildRequestOptions(req)...)
	default:
		return nil, fmt.Errorf("unsupported method: %s", req.Method)
	}

	if e.circuitBreaker != nil {
		e.circuitBreaker.Record(err == nil)
	}

	if e.keyRing != nil && err != nil {
		e.keyRing.OnError(err)
	}

	return resp, err
}

func (e *BitforexExchange) buildRequestOptions(req *core.Request) []httpClient.RequestOption {
	var opts []httpClient.RequestOption

	for k, v := range req.Headers {
		opts = append(opts, httpClient.WithHeader(k, v))
	}

	for k, v := range req.Query {
		opts = append(opts, httpClient.WithQueryParam(k, fmt.Sprint(v)))
	}

	return opts
}

// Register creates a BitforexExchange and registers it with the container.
// This is a convenience function for dependency injection setup.
func Register(container *exchange.Container, config *core.Config, opts ...Option) error {
	ex, err := New(config, opts...)
	if err != nil {
		return fmt.Errorf("create bitforex exchange: %w", err)
	}
	container.Register(exchangeName, ex)
	return nil
}
