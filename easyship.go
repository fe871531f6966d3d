// Package easyship is a client for the Easyship shipping API together with a
// verified webhook receiver.
package easyship

import (
	"github.com/goliatone/go-easyship/core"
	"github.com/goliatone/go-easyship/webhooks"
)

type Config = core.Config

type APIConfig = core.APIConfig

type WebhookConfig = core.WebhookConfig

type Option = core.Option

type Runtime = core.Runtime

type Payload = webhooks.Payload

type EventType = webhooks.EventType

type Listener = webhooks.Listener

type ListenerFunc = webhooks.ListenerFunc

const (
	EventLabelCreated               = webhooks.EventLabelCreated
	EventLabelFailed                = webhooks.EventLabelFailed
	EventShipmentCancelled          = webhooks.EventShipmentCancelled
	EventTrackingCheckpointsCreated = webhooks.EventTrackingCheckpointsCreated
	EventTrackingStatusChanged      = webhooks.EventTrackingStatusChanged
	EventWarehouseStateUpdated      = webhooks.EventWarehouseStateUpdated
	EventWebhookValidated           = webhooks.EventWebhookValidated
)

var (
	WithLogger          = core.WithLogger
	WithLoggerProvider  = core.WithLoggerProvider
	WithMetricsRecorder = core.WithMetricsRecorder
	WithErrorMapper     = core.WithErrorMapper
	WithConfigProvider  = core.WithConfigProvider
	WithOptionsResolver = core.WithOptionsResolver
)

func DefaultConfig() Config {
	return core.DefaultConfig()
}

func NewRuntime(cfg Config, opts ...Option) (*Runtime, error) {
	return core.NewRuntime(cfg, opts...)
}

// RegisterListener adds listener to the process-wide registry used by
// dispatchers that were not given their own.
func RegisterListener(eventType EventType, listener Listener) {
	webhooks.RegisterListener(eventType, listener)
}
