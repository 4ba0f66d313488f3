package core

import (
	"time"

	"github.com/cockroachdb/apd/v3"
)

// OrderSide represents the direction of an order (buy or sell).
type OrderSide int

// Order side constants define the direction of a trade.
const (
	// SideBuy indicates an order to purchase the base asset.
	SideBuy OrderSide = iota
	// SideSell indicates an order to sell the base asset.
	SideSell
)

// String returns the string representation of the order side ("buy" or "sell").
func (s OrderSide) String() string {
	return [...]string{"buy", "sell"}[s]
}

// MarshalJSON implements json.Marshaler for OrderSide.
func (s OrderSide) MarshalJSON() ([]byte, error) {
	return []byte(`"` + s.String() + `"`), nil
}

// UnmarshalJSON implements json.Unmarshaler for OrderSide.
// It accepts both uppercase and lowercase formats.
func (s *OrderSide) UnmarshalJSON(data []byte) error {
	str := string(data)
	switch str {
	case `"buy"`, `"BUY"`:
		*s = SideBuy
	case `"sell"`, `"SELL"`:
		*s = SideSell
	}
	return nil
}

// OrderType represents the type of order to place on an exchange.
type OrderType int

// Order type constants define how an order is executed.
const (
	// TypeLimit executes at a specified price or better.
	TypeLimit OrderType = iota
	// TypeMarket executes immediately at the best available price.
	// The venue has no market-order primitive; callers achieve marketable
	// execution through price selection, so this value carries intent only.
	TypeMarket
)

// String returns the string representation of the order type.
func (t OrderType) String() string {
	return [...]string{"limit", "market"}[t]
}

// MarshalJSON implements json.Marshaler for OrderType.
func (t OrderType) MarshalJSON() ([]byte, error) {
	return []byte(`"` + t.String() + `"`), nil
}

// UnmarshalJSON implements json.Unmarshaler for OrderType.
// It accepts both uppercase and lowercase formats.
func (t *OrderType) UnmarshalJSON(data []byte) error {
	str := string(data)
	switch str {
	case `"limit"`, `"LIMIT"`:
		*t = TypeLimit
	case `"market"`, `"MARKET"`:
		*t = TypeMarket
	}
	return nil
}

// OrderStatus represents the current state of an order.
//
// It is a string type rather than an integer enum so that a raw venue
// status code with no known translation can be carried through unchanged
// instead of being forced into one of the canonical states.
type OrderStatus string

// Canonical order status values.
const (
	// StatusOpen indicates the order is live, including partially filled orders.
	StatusOpen OrderStatus = "open"
	// StatusClosed indicates the order has been completely filled.
	StatusClosed OrderStatus = "closed"
	// StatusCanceled indicates the order has been revoked.
	StatusCanceled OrderStatus = "canceled"
)

// Known returns true if the status is one of the canonical values rather
// than a passed-through raw venue code.
func (s OrderStatus) Known() bool {
	return s == StatusOpen || s == StatusClosed || s == StatusCanceled
}

// IsTerminal returns true if the order is in a terminal state (no further changes possible).
func (s OrderStatus) IsTerminal() bool {
	return s == StatusClosed || s == StatusCanceled
}

// Ticker represents real-time market data for a trading pair.
//
// Numeric fields are pointers: the venue omits fields freely and the
// normalizer parses permissively, so nil means "not reported", never zero.
type Ticker struct {
	// Symbol is the canonical trading pair identifier (e.g., "BTC/USDT").
	Symbol string `json:"symbol"`
	// Ask is the lowest price a seller is willing to accept.
	Ask *apd.Decimal `json:"ask,omitempty"`
	// Bid is the highest price a buyer is willing to pay.
	Bid *apd.Decimal `json:"bid,omitempty"`
	// High is the highest price in the last 24 hours.
	High *apd.Decimal `json:"high,omitempty"`
	// Low is the lowest price in the last 24 hours.
	Low *apd.Decimal `json:"low,omitempty"`
	// Last is the price of the most recent trade.
	Last *apd.Decimal `json:"last,omitempty"`
	// Volume is the total trading volume in the last 24 hours.
	Volume *apd.Decimal `json:"volume,omitempty"`
	// Timestamp is when the venue generated this ticker, nil if not reported.
	Timestamp *time.Time `json:"timestamp,omitempty"`
	// Raw is the original venue payload.
	Raw any `json:"raw,omitempty"`
}

// Order represents an exchange order with all its details.
//
// Like Ticker, numeric fields are nullable. Cost is always derived as
// filled * price; the venue does not report it directly, and a nil price
// or filled quantity propagates to a nil cost.
type Order struct {
	// ID is the exchange-assigned order identifier.
	ID string `json:"id"`
	// Timestamp is when the order was created on the venue, nil if not reported.
	Timestamp *time.Time `json:"timestamp,omitempty"`
	// Symbol is the canonical trading pair, empty when it could not be resolved.
	Symbol string `json:"symbol,omitempty"`
	// Status is the canonical order state, or the raw venue code if unrecognized.
	Status OrderStatus `json:"status"`
	// Side indicates whether this is a buy or sell order.
	Side OrderSide `json:"side"`
	// Price is the requested order price.
	Price *apd.Decimal `json:"price,omitempty"`
	// Amount is the total order quantity.
	Amount *apd.Decimal `json:"amount,omitempty"`
	// Cost is the executed value, derived as filled * price.
	Cost *apd.Decimal `json:"cost,omitempty"`
	// Filled is the quantity that has been executed.
	Filled *apd.Decimal `json:"filled,omitempty"`
	// Average is the volume-weighted execution price reported by the venue.
	Average *apd.Decimal `json:"average,omitempty"`
	// Fee is the trading fee charged.
	Fee *apd.Decimal `json:"fee,omitempty"`
	// Raw is the original venue payload.
	Raw any `json:"raw,omitempty"`
}
