package command

import (
	"context"

	gocmd "github.com/goliatone/go-command"
	"github.com/goliatone/go-easyship/webhooks"
)

// WebhookDispatcher is satisfied by *webhooks.Dispatcher.
type WebhookDispatcher interface {
	Handle(ctx context.Context, signature string, payload webhooks.Payload) error
	FireEvent(ctx context.Context, eventType webhooks.EventType, payload webhooks.Payload) error
}

type WebhookResult struct {
	EventType webhooks.EventType
}

type HandleWebhookCommand struct {
	dispatcher WebhookDispatcher
}

func NewHandleWebhookCommand(dispatcher WebhookDispatcher) *HandleWebhookCommand {
	return &HandleWebhookCommand{dispatcher: dispatcher}
}

func (c *HandleWebhookCommand) Execute(ctx context.Context, msg HandleWebhookMessage) error {
	if c == nil || c.dispatcher == nil {
		return commandDependencyError("command: webhook dispatcher is required")
	}
	if err := c.dispatcher.Handle(ctx, msg.Signature, msg.Payload); err != nil {
		return err
	}
	eventType, _ := msg.Payload[webhooks.EventTypeField].(string)
	storeResult(ctx, WebhookResult{EventType: webhooks.EventType(eventType)})
	return nil
}

type FireEventCommand struct {
	dispatcher WebhookDispatcher
}

func NewFireEventCommand(dispatcher WebhookDispatcher) *FireEventCommand {
	return &FireEventCommand{dispatcher: dispatcher}
}

func (c *FireEventCommand) Execute(ctx context.Context, msg FireEventMessage) error {
	if c == nil || c.dispatcher == nil {
		return commandDependencyError("command: webhook dispatcher is required")
	}
	if err := c.dispatcher.FireEvent(ctx, msg.EventType, msg.Payload); err != nil {
		return err
	}
	storeResult(ctx, WebhookResult{EventType: msg.EventType})
	return nil
}

func storeResult[T any](ctx context.Context, value T) {
	collector := gocmd.ResultFromContext[T](ctx)
	if collector == nil {
		return
	}
	collector.Store(value)
}
