package command

import (
	"strings"

	"github.com/goliatone/go-easyship/webhooks"
)

const (
	TypeHandleWebhook = "easyship.command.webhook.handle"
	TypeFireEvent     = "easyship.command.webhook.fire"
)

// HandleWebhookMessage carries a raw delivery through signature checks and
// fan-out.
type HandleWebhookMessage struct {
	Signature string
	Payload   webhooks.Payload
}

func (HandleWebhookMessage) Type() string { return TypeHandleWebhook }

func (m HandleWebhookMessage) Validate() error {
	if strings.TrimSpace(m.Signature) == "" {
		return commandValidationError("signature", "signature is required")
	}
	if m.Payload == nil {
		return commandValidationError("payload", "payload is required")
	}
	return nil
}

// FireEventMessage fans a payload out to the listeners of EventType without
// signature checks, e.g. when replaying a stored delivery.
type FireEventMessage struct {
	EventType webhooks.EventType
	Payload   webhooks.Payload
}

func (FireEventMessage) Type() string { return TypeFireEvent }

func (m FireEventMessage) Validate() error {
	if strings.TrimSpace(string(m.EventType)) == "" {
		return commandValidationError("event_type", "event type is required")
	}
	return nil
}
