// Package nightscout is a minimal HTTP client for the Nightscout entries API.
//
// Only one endpoint is used:
//
//	GET {base}/api/v1/entries.json?count=1
//
// The response is a JSON array whose first element carries at least:
//
//	{"sgv": 90, "direction": "Flat", "dateString": "2022-09-19T15:08:00.000Z"}
//
// Failures are split into two error types so callers can pick a degradation
// policy. A TransportError covers network failures and non-2xx responses. A
// ParseError covers malformed JSON, an empty list, missing fields and a
// dateString that does not match the fixed layout. Use errors.As to
// distinguish them.
package nightscout
