package exchange

import (
	"context"

	"github.com/cockroachdb/apd/v3"

	"nakula/pkg/core"
)

// Exchange defines the unified interface for interacting with a trading venue.
// Implementations translate these calls into venue-specific requests and
// normalize the responses into the canonical core types.
type Exchange interface {
	Name() string
	Version() string

	FetchMarkets(ctx context.Context, opts ...Option) ([]core.Market, error)
	FetchTicker(ctx context.Context, symbol string, opts ...Option) (*core.Ticker, error)

	CreateOrder(ctx context.Context, req *OrderRequest, opts ...Option) (*core.Order, error)
	CancelOrder(ctx context.Context, req *CancelRequest, opts ...Option) (*core.Order, error)
	FetchOrder(ctx context.Context, req *OrderQuery, opts ...Option) (*core.Order, error)

	Close() error
}

// OrderRequest contains the parameters required to place a new order.
// Type is accepted for interface symmetry but venues without a market-order
// primitive ignore it; Price drives execution.
type OrderRequest struct {
	Symbol string
	Side   core.OrderSide
	Type   core.OrderType
	Amount apd.Decimal
	Price  *apd.Decimal
}

// CancelRequest contains the parameters required to cancel an existing order.
// Symbol is mandatory; the venue scopes order ids per market.
type CancelRequest struct {
	Symbol  string
	OrderID string
}

// OrderQuery contains the parameters required to query order status.
// Symbol is mandatory; the venue scopes order ids per market.
type OrderQuery struct {
	Symbol  string
	OrderID string
}
