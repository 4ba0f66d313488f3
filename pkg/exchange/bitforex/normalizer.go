package bitforex

import (
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/cockroachdb/apd/v3"

	"nakula/pkg/core"
)

// bitforexSymbol represents one raw symbol descriptor from market/symbols.
type bitforexSymbol struct {
	Symbol          string `json:"symbol"`
	PricePrecision  int    `json:"pricePrecision"`
	AmountPrecision int    `json:"amountPrecision"`
	MinOrderAmount  any    `json:"minOrderAmount"`
}

// bitforexTicker represents the raw ticker payload from market/ticker.
// The venue sends numerics as JSON numbers or strings and omits fields
// freely, so everything is decoded loosely and parsed permissively.
type bitforexTicker struct {
	Buy  any `json:"buy"`
	Sell any `json:"sell"`
	High any `json:"high"`
	Low  any `json:"low"`
	Last any `json:"last"`
	Vol  any `json:"vol"`
	Date any `json:"date"`
}

// bitforexOrder represents the raw order payload from trade/orderInfo and
// friends. OrderState is the only structurally required field.
type bitforexOrder struct {
	OrderID     any    `json:"orderId"`
	Symbol      string `json:"symbol"`
	CreateTime  any    `json:"createTime"`
	OrderPrice  any    `json:"orderPrice"`
	AvgPrice    any    `json:"avgPrice"`
	OrderAmount any    `json:"orderAmount"`
	DealAmount  any    `json:"dealAmount"`
	TradeFee    any    `json:"tradeFee"`
	OrderState  any    `json:"orderState"`
	TradeType   any    `json:"tradeType"`
}

// Normalizer converts BitForex wire payloads to canonical core types.
// All methods are pure; the catalog, when needed, is passed in.
type Normalizer struct{}

// NewNormalizer creates a new Normalizer instance.
func NewNormalizer() *Normalizer {
	return &Normalizer{}
}

// BuildMarkets converts the raw symbol descriptors into Market records,
// preserving input order and performing no deduplication. A descriptor
// whose identifier does not decompose into at least three dash-delimited
// tokens is a fatal data-shape error.
func (n *Normalizer) BuildMarkets(data []bitforexSymbol) ([]core.Market, error) {
	markets := make([]core.Market, 0, len(data))
	for i := range data {
		m, err := n.buildMarket(&data[i])
		if err != nil {
			return nil, err
		}
		markets = append(markets, *m)
	}
	return markets, nil
}

// buildMarket decomposes a single "<prefix>-<quote>-<base>" identifier.
// The first token is a fixed venue prefix and is discarded.
func (n *Normalizer) buildMarket(data *bitforexSymbol) (*core.Market, error) {
	parts := strings.Split(data.Symbol, "-")
	if len(parts) < 3 {
		return nil, core.NewExchangeError(
			exchangeName, core.ErrorTypeDataShape, 0,
			"market identifier "+strconv.Quote(data.Symbol)+" does not decompose into prefix-quote-base",
		).WithCode(core.ErrCodeMalformedMarketID).WithOperation(core.OpFetchMarkets)
	}

	quote := core.SafeCurrencyCode(parts[1])
	base := core.SafeCurrencyCode(parts[2])

	return &core.Market{
		ID:              data.Symbol,
		Symbol:          base + "/" + quote,
		Base:            base,
		Quote:           quote,
		PricePrecision:  data.PricePrecision,
		AmountPrecision: data.AmountPrecision,
		MinAmount:       asDecimal(data.MinOrderAmount),
		Raw:             data,
	}, nil
}

// NormalizeTicker converts a raw ticker payload to a canonical Ticker.
// The symbol is taken from the supplied market when present; numeric
// fields parse permissively to nil rather than failing.
func (n *Normalizer) NormalizeTicker(data *bitforexTicker, market *core.Market) *core.Ticker {
	ticker := &core.Ticker{
		Ask:    asDecimal(data.Sell),
		Bid:    asDecimal(data.Buy),
		High:   asDecimal(data.High),
		Low:    asDecimal(data.Low),
		Last:   asDecimal(data.Last),
		Volume: asDecimal(data.Vol),
		Raw:    data,
	}

	if market != nil {
		ticker.Symbol = market.Symbol
	}

	if ms, ok := asInt64(data.Date); ok {
		ts := time.UnixMilli(ms)
		ticker.Timestamp = &ts
	}

	return ticker
}

// NormalizeOrder converts a raw order payload to a canonical Order.
//
// The symbol comes from the supplied market if non-nil, otherwise from a
// catalog lookup on the order's embedded venue symbol; a miss leaves the
// symbol unset rather than failing. A missing orderState field is a
// data-shape error since the status cannot be derived without it.
func (n *Normalizer) NormalizeOrder(data *bitforexOrder, market *core.Market, catalog *core.MarketCatalog) (*core.Order, error) {
	if data.OrderState == nil {
		return nil, core.NewExchangeError(
			exchangeName, core.ErrorTypeDataShape, 0,
			"order payload has no orderState field",
		).WithCode(core.ErrCodeMissingField).WithOperation(core.OpFetchOrder)
	}

	order := &core.Order{
		ID:      asString(data.OrderID),
		Status:  parseOrderStatus(asString(data.OrderState)),
		Side:    parseTradeType(data.TradeType),
		Price:   asDecimal(data.OrderPrice),
		Amount:  asDecimal(data.OrderAmount),
		Filled:  asDecimal(data.DealAmount),
		Average: asDecimal(data.AvgPrice),
		Fee:     asDecimal(data.TradeFee),
		Raw:     data,
	}

	// The venue does not report cost; it is always derived from the
	// requested price, not the average execution price.
	order.Cost = mulDecimal(order.Filled, order.Price)

	if market == nil && catalog != nil {
		market, _ = catalog.ByID(data.Symbol)
	}
	if market != nil {
		order.Symbol = market.Symbol
	}

	if ms, ok := asInt64(data.CreateTime); ok {
		ts := time.UnixMilli(ms)
		order.Timestamp = &ts
	}

	return order, nil
}

// parseOrderStatus translates a raw venue state code into a canonical
// status. Unrecognized codes pass through unchanged so ambiguous states
// stay visible to the caller instead of being misfiled.
func parseOrderStatus(code string) core.OrderStatus {
	switch code {
	case "0", "1", "3":
		return core.StatusOpen
	case "2":
		return core.StatusClosed
	case "4":
		return core.StatusCanceled
	default:
		return core.OrderStatus(code)
	}
}

// parseTradeType maps the venue's trade-type flag to an order side.
// 2 means sell; everything else, including absence, means buy.
func parseTradeType(v any) core.OrderSide {
	if t, ok := asInt64(v); ok && t == 2 {
		return core.SideSell
	}
	return core.SideBuy
}

// tradeType maps an order side to the venue's trade-type flag.
func tradeType(side core.OrderSide) int {
	if side == core.SideSell {
		return 2
	}
	return 1
}

// asDecimal parses a loosely decoded JSON value into a decimal.
// Absent or non-numeric values yield nil, never an error.
func asDecimal(v any) *apd.Decimal {
	switch t := v.(type) {
	case nil:
		return nil
	case string:
		if t == "" {
			return nil
		}
		d := new(apd.Decimal)
		if _, _, err := apd.BaseContext.SetString(d, t); err != nil {
			return nil
		}
		return d
	case float64:
		d := new(apd.Decimal)
		if _, err := d.SetFloat64(t); err != nil {
			return nil
		}
		return d
	case int:
		return apd.New(int64(t), 0)
	case int64:
		return apd.New(t, 0)
	default:
		return nil
	}
}

// asInt64 extracts an integer from a loosely decoded JSON value.
func asInt64(v any) (int64, bool) {
	switch t := v.(type) {
	case float64:
		return int64(t), true
	case int:
		return int64(t), true
	case int64:
		return t, true
	case string:
		i, err := strconv.ParseInt(t, 10, 64)
		if err != nil {
			return 0, false
		}
		return i, true
	default:
		return 0, false
	}
}

// asString renders a loosely decoded JSON scalar as a string. Integral
// floats format without an exponent so numeric identifiers survive JSON
// decoding intact.
func asString(v any) string {
	switch t := v.(type) {
	case string:
		return t
	case float64:
		if t == math.Trunc(t) && math.Abs(t) < 1e15 {
			return strconv.FormatInt(int64(t), 10)
		}
		return strconv.FormatFloat(t, 'f', -1, 64)
	case int:
		return strconv.Itoa(t)
	case int64:
		return strconv.FormatInt(t, 10)
	default:
		return ""
	}
}

// mulDecimal multiplies two nullable decimals, propagating nil.
func mulDecimal(a, b *apd.Decimal) *apd.Decimal {
	if a == nil || b == nil {
		return nil
	}
	out := new(apd.Decimal)
	if _, err := apd.BaseContext.Mul(out, a, b); err != nil {
		return nil
	}
	return out
}
