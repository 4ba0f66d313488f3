package core

// Operation represents a type of action that can be performed on the venue.
type Operation int

// Operation constants define all supported venue operations.
const (
	// OpFetchMarkets retrieves the venue's symbol metadata and builds the market catalog.
	OpFetchMarkets Operation = iota
	// OpFetchTicker retrieves current market ticker data for a symbol.
	OpFetchTicker
	// OpPlaceOrder submits a new order to the venue.
	OpPlaceOrder
	// OpCancelOrder cancels an existing order.
	OpCancelOrder
	// OpFetchOrder retrieves details of a specific order.
	OpFetchOrder
)

// String returns the string representation of the operation.
func (o Operation) String() string {
	names := [...]string{
		"FETCH_MARKETS",
		"FETCH_TICKER",
		"PLACE_ORDER",
		"CANCEL_ORDER",
		"FETCH_ORDER",
	}
	if o < 0 || int(o) >= len(names) {
		return "UNKNOWN"
	}
	return names[o]
}

// Private returns true if the operation requires an authenticated request.
func (o Operation) Private() bool {
	switch o {
	case OpPlaceOrder, OpCancelOrder, OpFetchOrder:
		return true
	default:
		return false
	}
}
