package core

import "strings"

// commonCurrencies maps venue-specific asset codes to their widely used
// canonical forms. The table is applied after upper-casing, so entries are
// keyed by the upper-cased venue code.
var commonCurrencies = map[string]string{
	"XBT":   "BTC",
	"BCC":   "BCH",
	"BCHSV": "BSV",
	"DRK":   "DASH",
	"IOT":   "IOTA",
	"STR":   "XLM",
	"XRB":   "NANO",
	"CPC":   "CPCoin",
	"GOT":   "GoNetwork",
	"MIR":   "MIR COIN",
	"UOS":   "UOS Network",
}

// SafeCurrencyCode canonicalizes a venue asset identifier.
// The id is trimmed and upper-cased, then mapped through the common
// currency table; unknown codes are returned upper-cased as-is.
func SafeCurrencyCode(id string) string {
	code := strings.ToUpper(strings.TrimSpace(id))
	if canonical, ok := commonCurrencies[code]; ok {
		return canonical
	}
	return code
}
