package core

import (
	"github.com/cockroachdb/apd/v3"
)

// Market describes a trading pair listed on the venue.
// Markets are created once per catalog load and are immutable afterwards.
type Market struct {
	// ID is the venue-specific market identifier (e.g., "coin-usdt-btc").
	ID string `json:"id"`
	// Symbol is the canonical "BASE/QUOTE" trading pair (e.g., "BTC/USDT").
	Symbol string `json:"symbol"`
	// Base is the canonicalized base asset code.
	Base string `json:"base"`
	// Quote is the canonicalized quote asset code.
	Quote string `json:"quote"`
	// PricePrecision is the number of decimal places accepted for prices.
	PricePrecision int `json:"price_precision"`
	// AmountPrecision is the number of decimal places accepted for amounts.
	AmountPrecision int `json:"amount_precision"`
	// MinAmount is the minimum order amount, nil if the venue did not report one.
	MinAmount *apd.Decimal `json:"min_amount,omitempty"`
	// Raw is the original venue payload.
	Raw any `json:"raw,omitempty"`
}

// MarketCatalog is an immutable, bidirectional index over a set of markets.
// It is keyed by both canonical symbol and venue id; duplicate keys in the
// input resolve overwrite-last-wins, while the ordered slice keeps every
// entry in input order.
type MarketCatalog struct {
	markets  []Market
	bySymbol map[string]*Market
	byID     map[string]*Market
}

// NewMarketCatalog builds a catalog from an ordered market list.
// The input slice is copied; the catalog never aliases caller memory.
func NewMarketCatalog(markets []Market) *MarketCatalog {
	c := &MarketCatalog{
		markets:  make([]Market, len(markets)),
		bySymbol: make(map[string]*Market, len(markets)),
		byID:     make(map[string]*Market, len(markets)),
	}
	copy(c.markets, markets)
	for i := range c.markets {
		m := &c.markets[i]
		c.bySymbol[m.Symbol] = m
		c.byID[m.ID] = m
	}
	return c
}

// BySymbol returns the market for a canonical "BASE/QUOTE" symbol.
func (c *MarketCatalog) BySymbol(symbol string) (*Market, bool) {
	m, ok := c.bySymbol[symbol]
	return m, ok
}

// ByID returns the market for a venue-specific identifier.
func (c *MarketCatalog) ByID(id string) (*Market, bool) {
	m, ok := c.byID[id]
	return m, ok
}

// Markets returns all markets in catalog-load order.
func (c *MarketCatalog) Markets() []Market {
	out := make([]Market, len(c.markets))
	copy(out, c.markets)
	return out
}

// Symbols returns the canonical symbols in catalog-load order.
func (c *MarketCatalog) Symbols() []string {
	out := make([]string, 0, len(c.markets))
	for i := range c.markets {
		out = append(out, c.markets[i].Symbol)
	}
	return out
}

// Len returns the number of markets in the catalog, duplicates included.
func (c *MarketCatalog) Len() int {
	return len(c.markets)
}
