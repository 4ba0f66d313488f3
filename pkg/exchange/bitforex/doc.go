// Package bitforex implements the Exchange interface for the BitForex
// REST API: market catalog discovery, ticker and order normalization, and
// the accessKey/nonce/signData request authentication scheme.
package bitforex
