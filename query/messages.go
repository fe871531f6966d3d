package query

import (
	"strings"

	"github.com/goliatone/go-easyship/webhooks"
)

const (
	TypeGetWebhookClaim      = "easyship.query.webhook.claim"
	TypeCountWebhookListener = "easyship.query.webhook.listeners"
)

// GetWebhookClaimMessage looks a replay claim up by key, or by the
// signature the key is derived from when Key is empty.
type GetWebhookClaimMessage struct {
	Key       string
	Signature string
}

func (GetWebhookClaimMessage) Type() string { return TypeGetWebhookClaim }

func (m GetWebhookClaimMessage) Validate() error {
	if strings.TrimSpace(m.Key) == "" && strings.TrimSpace(m.Signature) == "" {
		return queryValidationError("key", "key or signature is required")
	}
	return nil
}

func (m GetWebhookClaimMessage) ReplayKey() string {
	if key := strings.TrimSpace(m.Key); key != "" {
		return key
	}
	return webhooks.ReplayKey(strings.TrimSpace(m.Signature))
}

type CountWebhookListenersMessage struct {
	EventType webhooks.EventType
}

func (CountWebhookListenersMessage) Type() string { return TypeCountWebhookListener }

func (m CountWebhookListenersMessage) Validate() error {
	if strings.TrimSpace(string(m.EventType)) == "" {
		return queryValidationError("event_type", "event type is required")
	}
	return nil
}
