// Package core holds the shared contracts of go-easyship: configuration,
// logging and metrics hooks, error envelopes, transport request/response
// shapes and the idempotency claim store used by webhook replay guards.
package core
