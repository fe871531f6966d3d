package gojob

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/goliatone/go-easyship/core"
	"github.com/goliatone/go-easyship/webhooks"
	job "github.com/goliatone/go-job"
	"github.com/goliatone/go-job/queue"
	"github.com/goliatone/go-job/queue/worker"
)

// EventFirer is satisfied by *webhooks.Dispatcher.
type EventFirer interface {
	FireEvent(ctx context.Context, eventType webhooks.EventType, payload webhooks.Payload) error
}

// ReplayWorker drains fan-out jobs enqueued by QueueListener and replays
// them through the dispatcher's listeners.
type ReplayWorker struct {
	dequeuer queue.Dequeuer
	firer    EventFirer
	policy   RetryPolicy
	hook     worker.Hook
	now      func() time.Time

	mu       sync.Mutex
	attempts map[string]int
}

type ReplayWorkerOption func(*ReplayWorker)

func WithRetryPolicy(policy RetryPolicy) ReplayWorkerOption {
	return func(w *ReplayWorker) {
		w.policy = policy
	}
}

func WithWorkerHook(hook worker.Hook) ReplayWorkerOption {
	return func(w *ReplayWorker) {
		w.hook = hook
	}
}

func WithClock(now func() time.Time) ReplayWorkerOption {
	return func(w *ReplayWorker) {
		if now != nil {
			w.now = now
		}
	}
}

func NewReplayWorker(dequeuer queue.Dequeuer, firer EventFirer, opts ...ReplayWorkerOption) *ReplayWorker {
	w := &ReplayWorker{
		dequeuer: dequeuer,
		firer:    firer,
		policy:   DefaultRetryPolicy(),
		now:      time.Now,
		attempts: map[string]int{},
	}
	for _, opt := range opts {
		if opt != nil {
			opt(w)
		}
	}
	return w
}

// ProcessNext handles at most one delivery. It reports false when the queue
// had nothing to hand out.
func (w *ReplayWorker) ProcessNext(ctx context.Context) (bool, error) {
	if w == nil || w.dequeuer == nil {
		return false, fmt.Errorf("gojob: dequeuer is not configured")
	}
	if w.firer == nil {
		return false, fmt.Errorf("gojob: event firer is not configured")
	}
	delivery, err := w.dequeuer.Dequeue(ctx)
	if err != nil {
		return false, err
	}
	if delivery == nil {
		return false, nil
	}

	msg := delivery.Message()
	attempt := w.attemptFor(delivery, msg)
	startedAt := w.now()
	event := worker.Event{
		Message:   msg,
		Delivery:  delivery,
		Attempt:   attempt,
		StartedAt: startedAt,
	}
	w.onStart(ctx, event)

	eventType, payload, err := decodeFanout(msg)
	if err != nil {
		event.Err = err
		event.Duration = w.now().Sub(startedAt)
		w.onFailure(ctx, event)
		w.forget(msg)
		return true, delivery.Nack(ctx, queue.NackOptions{
			Disposition: queue.NackDispositionDeadLetter,
			Reason:      err.Error(),
		})
	}

	if err := w.firer.FireEvent(ctx, eventType, payload); err != nil {
		event.Err = err
		event.Duration = w.now().Sub(startedAt)
		opts := w.policy.NormalizeAttempt(queue.NackOptions{
			Disposition: queue.NackDispositionRetry,
			Delay:       w.policy.Delay(attempt),
			Reason:      err.Error(),
		}, attempt)
		event.Delay = opts.Delay
		if opts.Disposition == queue.NackDispositionRetry {
			w.onRetry(ctx, event)
		} else {
			w.forget(msg)
			w.onFailure(ctx, event)
		}
		if nackErr := delivery.Nack(ctx, opts); nackErr != nil {
			return true, nackErr
		}
		return true, nil
	}

	w.forget(msg)
	if err := delivery.Ack(ctx); err != nil {
		return true, err
	}
	event.Duration = w.now().Sub(startedAt)
	w.onSuccess(ctx, event)
	return true, nil
}

// attemptFor prefers an attempt counter reported by the delivery and falls
// back to counting redeliveries of the same idempotency key.
func (w *ReplayWorker) attemptFor(delivery queue.Delivery, msg *job.ExecutionMessage) int {
	if counted, ok := delivery.(interface{ Attempt() int }); ok && counted.Attempt() > 0 {
		return counted.Attempt()
	}
	key := attemptKey(msg)
	if key == "" {
		return 1
	}
	w.mu.Lock()
	defer w.mu.Unlock()
	w.attempts[key]++
	return w.attempts[key]
}

func (w *ReplayWorker) forget(msg *job.ExecutionMessage) {
	key := attemptKey(msg)
	if key == "" {
		return
	}
	w.mu.Lock()
	delete(w.attempts, key)
	w.mu.Unlock()
}

func attemptKey(msg *job.ExecutionMessage) string {
	if msg == nil {
		return ""
	}
	return strings.TrimSpace(msg.IdempotencyKey)
}

func (w *ReplayWorker) onStart(ctx context.Context, event worker.Event) {
	if w.hook != nil {
		w.hook.OnStart(ctx, event)
	}
}

func (w *ReplayWorker) onSuccess(ctx context.Context, event worker.Event) {
	if w.hook != nil {
		w.hook.OnSuccess(ctx, event)
	}
}

func (w *ReplayWorker) onFailure(ctx context.Context, event worker.Event) {
	if w.hook != nil {
		w.hook.OnFailure(ctx, event)
	}
}

func (w *ReplayWorker) onRetry(ctx context.Context, event worker.Event) {
	if w.hook != nil {
		w.hook.OnRetry(ctx, event)
	}
}

func decodeFanout(msg *job.ExecutionMessage) (webhooks.EventType, webhooks.Payload, error) {
	if msg == nil {
		return "", nil, fmt.Errorf("gojob: delivery has no message")
	}
	if msg.JobID != JobIDWebhookFanout {
		return "", nil, fmt.Errorf("gojob: unexpected job id %q", msg.JobID)
	}
	rawType, _ := msg.Parameters[ParamEventType].(string)
	if strings.TrimSpace(rawType) == "" {
		return "", nil, fmt.Errorf("gojob: fan-out message is missing %s", ParamEventType)
	}
	var payload webhooks.Payload
	switch value := msg.Parameters[ParamPayload].(type) {
	case webhooks.Payload:
		payload = value
	case map[string]any:
		payload = value
	default:
		return "", nil, fmt.Errorf("gojob: fan-out message payload has type %T", value)
	}
	return webhooks.EventType(rawType), payload, nil
}

// ObserverHook maps go-job worker events onto the easyship observer so
// queue-driven fan-outs log and record metrics like inline ones.
type ObserverHook struct {
	observer core.Observer
}

func NewObserverHook(observer core.Observer) *ObserverHook {
	return &ObserverHook{observer: observer}
}

func (h *ObserverHook) OnStart(ctx context.Context, event worker.Event) {
	if h == nil {
		return
	}
	h.observer.IncCounter(ctx, "easyship.webhook_fanout.started", 1, eventTags(event))
}

func (h *ObserverHook) OnSuccess(ctx context.Context, event worker.Event) {
	if h == nil {
		return
	}
	h.observer.Observe(ctx, event.StartedAt, "webhook_fanout", nil, eventFields(event, "acked"))
}

func (h *ObserverHook) OnFailure(ctx context.Context, event worker.Event) {
	if h == nil {
		return
	}
	h.observer.Observe(ctx, event.StartedAt, "webhook_fanout", event.Err, eventFields(event, "dead_lettered"))
}

func (h *ObserverHook) OnRetry(ctx context.Context, event worker.Event) {
	if h == nil {
		return
	}
	fields := eventFields(event, "retried")
	fields["delay_ms"] = event.Delay.Milliseconds()
	h.observer.Observe(ctx, event.StartedAt, "webhook_fanout", event.Err, fields)
}

func eventMessage(event worker.Event) *job.ExecutionMessage {
	if event.Message != nil {
		return event.Message
	}
	if event.Delivery != nil {
		return event.Delivery.Message()
	}
	return nil
}

func eventFields(event worker.Event, outcome string) map[string]any {
	fields := map[string]any{
		"attempt": event.Attempt,
		"outcome": outcome,
	}
	if msg := eventMessage(event); msg != nil {
		fields["job_id"] = msg.JobID
		if eventType, ok := msg.Parameters[ParamEventType].(string); ok {
			fields["event_type"] = eventType
		}
		if msg.IdempotencyKey != "" {
			fields["idempotency_key"] = msg.IdempotencyKey
		}
	}
	return fields
}

func eventTags(event worker.Event) map[string]string {
	tags := map[string]string{}
	if msg := eventMessage(event); msg != nil {
		if eventType, ok := msg.Parameters[ParamEventType].(string); ok {
			tags["event_type"] = eventType
		}
	}
	return tags
}

var (
	_ worker.Hook = (*ObserverHook)(nil)
	_ EventFirer  = (*webhooks.Dispatcher)(nil)
)
