package core

import (
	"context"

	"resty.dev/v3"
)

// RateLimitConfig defines rate limiting parameters for an exchange protocol.
type RateLimitConfig struct {
	// RequestsPerSecond is the maximum general requests per second.
	RequestsPerSecond int `json:"requests_per_second"`
	// OrdersPerSecond is the maximum order placement requests per second.
	OrdersPerSecond int `json:"orders_per_second"`
	// Burst allows temporary exceeding of rate limits.
	Burst int `json:"burst"`
}

// Protocol defines the interface for venue-specific protocol implementations.
// A protocol translates between canonical operations and the venue's wire
// format: request construction, request signing, and response normalization.
type Protocol interface {
	// Name returns the venue identifier (e.g., "bitforex").
	Name() string

	// Version returns the API version being used.
	Version() string

	// BaseURL returns the venue's production API base URL.
	BaseURL() string

	// BuildRequest constructs an HTTP request descriptor for the specified
	// operation. The params map contains operation-specific parameters.
	// Private operations come back flagged RequireAuth and unsigned.
	BuildRequest(ctx context.Context, op Operation, params Params) (*Request, error)

	// SignRequest authenticates a request descriptor in place. The
	// credentials must be pre-validated; signing performs no I/O.
	SignRequest(req *Request, creds Credentials) error

	// ParseResponse deserializes the HTTP response and normalizes it to
	// canonical types. The catalog resolves venue market identifiers to
	// canonical symbols and may be nil when no lookup is needed.
	ParseResponse(op Operation, resp *resty.Response, catalog *MarketCatalog) (any, error)

	// SupportedOperations returns the list of operations this protocol supports.
	SupportedOperations() []Operation

	// RateLimits returns the rate limiting configuration for this venue.
	RateLimits() RateLimitConfig
}
