package command

import (
	gocmd "github.com/goliatone/go-command"
	"github.com/goliatone/go-easyship/webhooks"
)

var (
	_ gocmd.Commander[HandleWebhookMessage] = (*HandleWebhookCommand)(nil)
	_ gocmd.Commander[FireEventMessage]     = (*FireEventCommand)(nil)
	_ WebhookDispatcher                     = (*webhooks.Dispatcher)(nil)
)
