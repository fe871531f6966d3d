package gojob

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/goliatone/go-easyship/webhooks"
	job "github.com/goliatone/go-job"
	"github.com/goliatone/go-job/queue"
)

// KeyFunc derives the idempotency key of an enqueued fan-out.
type KeyFunc func(eventType webhooks.EventType, payload webhooks.Payload) string

// QueueListener is a webhooks.Listener that moves the listener work out of
// the request path by enqueueing the payload for a ReplayWorker.
type QueueListener struct {
	enqueuer  queue.Enqueuer
	eventType webhooks.EventType
	keyFunc   KeyFunc
	dedup     job.DeduplicationPolicy
}

type QueueListenerOption func(*QueueListener)

// ForEventType pins the recorded event type. Without it the payload's
// event_type is used, which is what a listener on webhook.validated wants.
func ForEventType(eventType webhooks.EventType) QueueListenerOption {
	return func(l *QueueListener) {
		l.eventType = eventType
	}
}

func WithKeyFunc(fn KeyFunc) QueueListenerOption {
	return func(l *QueueListener) {
		if fn != nil {
			l.keyFunc = fn
		}
	}
}

func WithDedupPolicy(policy job.DeduplicationPolicy) QueueListenerOption {
	return func(l *QueueListener) {
		l.dedup = policy
	}
}

func NewQueueListener(enqueuer queue.Enqueuer, opts ...QueueListenerOption) *QueueListener {
	listener := &QueueListener{
		enqueuer: enqueuer,
		keyFunc:  PayloadDigestKey,
	}
	for _, opt := range opts {
		if opt != nil {
			opt(listener)
		}
	}
	return listener
}

func (l *QueueListener) Fire(ctx context.Context, payload webhooks.Payload) error {
	if l == nil || l.enqueuer == nil {
		return fmt.Errorf("gojob: enqueuer is not configured")
	}
	eventType := l.eventType
	if strings.TrimSpace(string(eventType)) == "" {
		raw, _ := payload[webhooks.EventTypeField].(string)
		eventType = webhooks.EventType(raw)
	}
	if strings.TrimSpace(string(eventType)) == "" {
		return fmt.Errorf("gojob: event type is required to enqueue a fan-out")
	}

	msg := &job.ExecutionMessage{
		JobID:      JobIDWebhookFanout,
		ScriptPath: ScriptPathWebhookFanout,
		Parameters: map[string]any{
			ParamEventType: string(eventType),
			ParamPayload:   copyAnyMap(payload),
		},
		DedupPolicy: l.dedup,
	}
	if l.keyFunc != nil {
		msg.IdempotencyKey = strings.TrimSpace(l.keyFunc(eventType, payload))
	}
	_, err := l.enqueuer.Enqueue(ctx, msg)
	return err
}

// PayloadDigestKey keys a fan-out by event type and the SHA-256 of the
// canonical JSON payload. Map keys are sorted by encoding/json.
func PayloadDigestKey(eventType webhooks.EventType, payload webhooks.Payload) string {
	raw, err := json.Marshal(payload)
	if err != nil {
		return ""
	}
	sum := sha256.Sum256(raw)
	return JobIDWebhookFanout + ":" + string(eventType) + ":" + hex.EncodeToString(sum[:])
}

var _ webhooks.Listener = (*QueueListener)(nil)
