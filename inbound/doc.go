// Package inbound exposes the webhook dispatcher over HTTP.
//
// Replay claims follow a claim/complete/fail lifecycle so a delivery whose
// listeners failed stays retryable while a completed one is acknowledged
// without running listeners again.
package inbound
