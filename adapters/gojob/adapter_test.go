package gojob

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/goliatone/go-easyship/core"
	"github.com/goliatone/go-easyship/webhooks"
	job "github.com/goliatone/go-job"
	"github.com/goliatone/go-job/queue"
	"github.com/goliatone/go-job/queue/worker"
)

func TestNackRetryPolicyBoundaries(t *testing.T) {
	policy := RetryPolicy{
		MaxAttempts:     3,
		MaxDelay:        10 * time.Second,
		DeadLetterOnMax: true,
	}

	opts := policy.NormalizeAttempt(queue.NackOptions{
		Disposition: queue.NackDispositionRetry,
		Delay:       30 * time.Second,
		Reason:      " transient ",
	}, 1)
	if opts.Delay != 10*time.Second {
		t.Fatalf("expected delay to be bounded, got %s", opts.Delay)
	}
	if opts.Disposition != queue.NackDispositionRetry {
		t.Fatalf("expected retry before max attempts, got %q", opts.Disposition)
	}
	if opts.Reason != "transient" {
		t.Fatalf("expected trimmed reason, got %q", opts.Reason)
	}
	if err := queue.ValidateNackOptions(opts); err != nil {
		t.Fatalf("expected valid nack options: %v", err)
	}

	opts = policy.NormalizeAttempt(queue.NackOptions{
		Disposition: queue.NackDispositionRetry,
		Delay:       time.Second,
	}, 3)
	if opts.Disposition != queue.NackDispositionDeadLetter {
		t.Fatalf("expected dead letter on max attempts, got %q", opts.Disposition)
	}
	if opts.Delay != 0 {
		t.Fatalf("expected no delay on a terminal nack, got %s", opts.Delay)
	}

	opts = RetryPolicy{MaxAttempts: 2}.NormalizeAttempt(queue.NackOptions{}, 2)
	if opts.Disposition != queue.NackDispositionFailed {
		t.Fatalf("expected failed without dead letter on max, got %q", opts.Disposition)
	}

	opts = policy.NormalizeAttempt(queue.NackOptions{Disposition: queue.NackDispositionCanceled}, 1)
	if opts.Disposition != queue.NackDispositionCanceled {
		t.Fatalf("expected terminal disposition to pass through, got %q", opts.Disposition)
	}

	opts = RetryPolicy{}.NormalizeAttempt(queue.NackOptions{Delay: -time.Second}, 7)
	if opts.Disposition != queue.NackDispositionRetry || opts.Delay != 0 {
		t.Fatalf("expected unbounded policy to retry without negative delay, got %#v", opts)
	}
	if err := queue.ValidateNackOptions(opts); err != nil {
		t.Fatalf("expected valid nack options: %v", err)
	}
}

func TestRetryPolicyDelayBackoff(t *testing.T) {
	policy := RetryPolicy{InitialDelay: time.Second, MaxDelay: 5 * time.Second}
	cases := map[int]time.Duration{
		0: time.Second,
		1: time.Second,
		2: 2 * time.Second,
		3: 4 * time.Second,
		4: 5 * time.Second,
		9: 5 * time.Second,
	}
	for attempt, want := range cases {
		if got := policy.Delay(attempt); got != want {
			t.Fatalf("attempt %d: expected %s, got %s", attempt, want, got)
		}
	}
	if got := (RetryPolicy{}).Delay(3); got != 0 {
		t.Fatalf("expected zero delay without initial delay, got %s", got)
	}
}

func TestQueueListenerEnqueuesFanout(t *testing.T) {
	enqueuer := &stubQueueEnqueuer{}
	listener := NewQueueListener(enqueuer, WithDedupPolicy(job.DeduplicationPolicy("drop")))

	payload := webhooks.Payload{
		"event_type":           string(webhooks.EventLabelCreated),
		"easyship_shipment_id": "ESUS1",
	}
	if err := listener.Fire(context.Background(), payload); err != nil {
		t.Fatalf("fire: %v", err)
	}
	msg := enqueuer.last
	if msg == nil || msg.JobID != JobIDWebhookFanout {
		t.Fatalf("expected fan-out job, got %#v", msg)
	}
	if msg.Parameters[ParamEventType] != string(webhooks.EventLabelCreated) {
		t.Fatalf("expected event type from payload, got %#v", msg.Parameters[ParamEventType])
	}
	recorded, ok := msg.Parameters[ParamPayload].(map[string]any)
	if !ok || recorded["easyship_shipment_id"] != "ESUS1" {
		t.Fatalf("expected payload copy, got %#v", msg.Parameters[ParamPayload])
	}
	if msg.IdempotencyKey != PayloadDigestKey(webhooks.EventLabelCreated, payload) {
		t.Fatalf("expected digest idempotency key, got %q", msg.IdempotencyKey)
	}
	if msg.DedupPolicy != job.DeduplicationPolicy("drop") {
		t.Fatalf("expected dedup policy, got %q", msg.DedupPolicy)
	}
}

func TestQueueListenerPinnedEventType(t *testing.T) {
	enqueuer := &stubQueueEnqueuer{}
	listener := NewQueueListener(enqueuer,
		ForEventType(webhooks.EventShipmentCancelled),
		WithKeyFunc(func(webhooks.EventType, webhooks.Payload) string { return "fixed" }),
	)
	if err := listener.Fire(context.Background(), webhooks.Payload{}); err != nil {
		t.Fatalf("fire: %v", err)
	}
	if enqueuer.last.Parameters[ParamEventType] != string(webhooks.EventShipmentCancelled) {
		t.Fatalf("expected pinned event type, got %#v", enqueuer.last.Parameters[ParamEventType])
	}
	if enqueuer.last.IdempotencyKey != "fixed" {
		t.Fatalf("expected custom key, got %q", enqueuer.last.IdempotencyKey)
	}
}

func TestQueueListenerRequiresEventType(t *testing.T) {
	listener := NewQueueListener(&stubQueueEnqueuer{})
	if err := listener.Fire(context.Background(), webhooks.Payload{}); err == nil {
		t.Fatalf("expected missing event type error")
	}
	if err := NewQueueListener(nil).Fire(context.Background(), webhooks.Payload{}); err == nil {
		t.Fatalf("expected missing enqueuer error")
	}
}

func TestQueueListenerReturnsEnqueueError(t *testing.T) {
	enqueuer := &stubQueueEnqueuer{err: errors.New("queue full")}
	listener := NewQueueListener(enqueuer, ForEventType(webhooks.EventLabelCreated))
	err := listener.Fire(context.Background(), webhooks.Payload{"shipment_id": "ESSG1"})
	if err == nil || err.Error() != "queue full" {
		t.Fatalf("expected enqueue error, got %v", err)
	}
	if enqueuer.last == nil {
		t.Fatalf("expected enqueue attempt")
	}
}

func TestReplayWorkerAcksOnSuccess(t *testing.T) {
	registry := webhooks.NewRegistry()
	var got webhooks.Payload
	registry.RegisterFunc(webhooks.EventLabelCreated, func(_ context.Context, payload webhooks.Payload) error {
		got = payload
		return nil
	})
	dispatcher := webhooks.NewDispatcher(nil, webhooks.WithRegistry(registry))

	enqueuer := &stubQueueEnqueuer{}
	if err := NewQueueListener(enqueuer).Fire(context.Background(), webhooks.Payload{
		"event_type": string(webhooks.EventLabelCreated),
		"label_url":  "https://example.test/label.pdf",
	}); err != nil {
		t.Fatalf("enqueue: %v", err)
	}

	delivery := &stubQueueDelivery{msg: enqueuer.last}
	hook := &capturingHook{}
	w := NewReplayWorker(&stubQueueDequeuer{deliveries: []queue.Delivery{delivery}}, dispatcher, WithWorkerHook(hook))

	processed, err := w.ProcessNext(context.Background())
	if err != nil {
		t.Fatalf("process: %v", err)
	}
	if !processed {
		t.Fatalf("expected a delivery to be processed")
	}
	if !delivery.acked {
		t.Fatalf("expected ack")
	}
	if got["label_url"] != "https://example.test/label.pdf" {
		t.Fatalf("expected listener to receive replayed payload, got %#v", got)
	}
	if hook.starts != 1 || hook.successes != 1 {
		t.Fatalf("expected start and success hooks, got %#v", hook)
	}
	if hook.last.Attempt != 1 {
		t.Fatalf("expected attempt 1, got %d", hook.last.Attempt)
	}
}

func TestReplayWorkerRetriesThenDeadLetters(t *testing.T) {
	firer := &failingFirer{err: errors.New("listener down")}
	msg := &job.ExecutionMessage{
		JobID:          JobIDWebhookFanout,
		IdempotencyKey: "fanout-1",
		Parameters: map[string]any{
			ParamEventType: string(webhooks.EventTrackingStatusChanged),
			ParamPayload:   map[string]any{"status": "delivered"},
		},
	}
	first := &stubQueueDelivery{msg: msg}
	second := &stubQueueDelivery{msg: msg}
	hook := &capturingHook{}
	w := NewReplayWorker(
		&stubQueueDequeuer{deliveries: []queue.Delivery{first, second}},
		firer,
		WithWorkerHook(hook),
		WithRetryPolicy(RetryPolicy{MaxAttempts: 2, InitialDelay: time.Second, DeadLetterOnMax: true}),
	)

	if _, err := w.ProcessNext(context.Background()); err != nil {
		t.Fatalf("first attempt: %v", err)
	}
	if !first.nacked || first.nackOpts.Disposition != queue.NackDispositionRetry || first.nackOpts.Delay != time.Second {
		t.Fatalf("expected requeue with backoff, got %#v", first.nackOpts)
	}
	if first.nackOpts.Reason != "listener down" {
		t.Fatalf("expected nack reason, got %q", first.nackOpts.Reason)
	}
	if hook.retries != 1 {
		t.Fatalf("expected retry hook, got %d", hook.retries)
	}

	if _, err := w.ProcessNext(context.Background()); err != nil {
		t.Fatalf("second attempt: %v", err)
	}
	if second.nackOpts.Disposition != queue.NackDispositionDeadLetter {
		t.Fatalf("expected dead letter on max attempts, got %#v", second.nackOpts)
	}
	if hook.failures != 1 || hook.last.Attempt != 2 {
		t.Fatalf("expected failure hook on attempt 2, got %#v", hook)
	}
	if firer.calls != 2 {
		t.Fatalf("expected two fire attempts, got %d", firer.calls)
	}
	if firer.lastType != webhooks.EventTrackingStatusChanged {
		t.Fatalf("expected recorded event type, got %q", firer.lastType)
	}
}

func TestReplayWorkerDeadLettersMalformedMessages(t *testing.T) {
	delivery := &stubQueueDelivery{msg: &job.ExecutionMessage{JobID: JobIDWebhookFanout}}
	firer := &failingFirer{}
	w := NewReplayWorker(&stubQueueDequeuer{deliveries: []queue.Delivery{delivery}}, firer)

	processed, err := w.ProcessNext(context.Background())
	if err != nil {
		t.Fatalf("process: %v", err)
	}
	if !processed || delivery.nackOpts.Disposition != queue.NackDispositionDeadLetter {
		t.Fatalf("expected malformed message to be dead lettered, got %#v", delivery.nackOpts)
	}
	if firer.calls != 0 {
		t.Fatalf("expected no fire for malformed message")
	}
}

func TestReplayWorkerUsesDeliveryAttempt(t *testing.T) {
	delivery := &attemptDelivery{
		stubQueueDelivery: stubQueueDelivery{msg: &job.ExecutionMessage{
			JobID: JobIDWebhookFanout,
			Parameters: map[string]any{
				ParamEventType: string(webhooks.EventLabelFailed),
				ParamPayload:   webhooks.Payload{},
			},
		}},
		attempt: 4,
	}
	w := NewReplayWorker(
		&stubQueueDequeuer{deliveries: []queue.Delivery{delivery}},
		&failingFirer{err: errors.New("boom")},
		WithRetryPolicy(RetryPolicy{MaxAttempts: 4, DeadLetterOnMax: true}),
	)
	if _, err := w.ProcessNext(context.Background()); err != nil {
		t.Fatalf("process: %v", err)
	}
	if delivery.nackOpts.Disposition != queue.NackDispositionDeadLetter {
		t.Fatalf("expected delivery attempt to exhaust retries")
	}
}

func TestReplayWorkerEmptyQueue(t *testing.T) {
	w := NewReplayWorker(&stubQueueDequeuer{}, &failingFirer{})
	processed, err := w.ProcessNext(context.Background())
	if err != nil || processed {
		t.Fatalf("expected idle worker, got processed=%t err=%v", processed, err)
	}
}

func TestObserverHookEventMapping(t *testing.T) {
	metrics := &capturingMetrics{}
	hook := NewObserverHook(core.NewObserver(nil, metrics))

	evt := worker.Event{
		Message: &job.ExecutionMessage{
			JobID:          JobIDWebhookFanout,
			IdempotencyKey: "idem-1",
			Parameters:     map[string]any{ParamEventType: string(webhooks.EventLabelCreated)},
		},
		Attempt:   2,
		Delay:     5 * time.Second,
		Err:       errors.New("retry"),
		StartedAt: time.Now().Add(-time.Second),
	}
	hook.OnStart(context.Background(), evt)
	hook.OnRetry(context.Background(), evt)

	if len(metrics.counters) != 2 {
		t.Fatalf("expected two counters, got %#v", metrics.counters)
	}
	if metrics.counters[0].name != "easyship.webhook_fanout.started" {
		t.Fatalf("unexpected start counter %q", metrics.counters[0].name)
	}
	retry := metrics.counters[1]
	if retry.name != "easyship.webhook_fanout.total" {
		t.Fatalf("unexpected retry counter %q", retry.name)
	}
	if retry.tags["status"] != "failure" || retry.tags["outcome"] != "retried" {
		t.Fatalf("unexpected retry tags %#v", retry.tags)
	}
	if retry.tags["event_type"] != string(webhooks.EventLabelCreated) {
		t.Fatalf("expected event type tag, got %#v", retry.tags)
	}
}

type stubQueueEnqueuer struct {
	last *job.ExecutionMessage
	err  error
}

func (s *stubQueueEnqueuer) Enqueue(_ context.Context, msg *job.ExecutionMessage) (queue.EnqueueReceipt, error) {
	s.last = msg
	if s.err != nil {
		return queue.EnqueueReceipt{}, s.err
	}
	return queue.EnqueueReceipt{DispatchID: "dispatch-1", EnqueuedAt: time.Unix(0, 0)}, nil
}

type stubQueueDequeuer struct {
	deliveries []queue.Delivery
}

func (s *stubQueueDequeuer) Dequeue(context.Context) (queue.Delivery, error) {
	if len(s.deliveries) == 0 {
		return nil, nil
	}
	next := s.deliveries[0]
	s.deliveries = s.deliveries[1:]
	return next, nil
}

type stubQueueDelivery struct {
	msg      *job.ExecutionMessage
	acked    bool
	nacked   bool
	nackOpts queue.NackOptions
}

func (s *stubQueueDelivery) Message() *job.ExecutionMessage {
	return s.msg
}

func (s *stubQueueDelivery) Ack(context.Context) error {
	s.acked = true
	return nil
}

func (s *stubQueueDelivery) Nack(_ context.Context, opts queue.NackOptions) error {
	s.nacked = true
	s.nackOpts = opts
	return nil
}

type attemptDelivery struct {
	stubQueueDelivery
	attempt int
}

func (d *attemptDelivery) Attempt() int { return d.attempt }

type failingFirer struct {
	err      error
	calls    int
	lastType webhooks.EventType
}

func (f *failingFirer) FireEvent(_ context.Context, eventType webhooks.EventType, _ webhooks.Payload) error {
	f.calls++
	f.lastType = eventType
	return f.err
}

type capturingHook struct {
	starts, successes, failures, retries int
	last                                 worker.Event
}

func (h *capturingHook) OnStart(_ context.Context, event worker.Event) {
	h.starts++
	h.last = event
}

func (h *capturingHook) OnSuccess(_ context.Context, event worker.Event) {
	h.successes++
	h.last = event
}

func (h *capturingHook) OnFailure(_ context.Context, event worker.Event) {
	h.failures++
	h.last = event
}

func (h *capturingHook) OnRetry(_ context.Context, event worker.Event) {
	h.retries++
	h.last = event
}

type capturedCounter struct {
	name string
	tags map[string]string
}

type capturingMetrics struct {
	counters []capturedCounter
}

func (m *capturingMetrics) IncCounter(_ context.Context, name string, _ int64, tags map[string]string) {
	m.counters = append(m.counters, capturedCounter{name: name, tags: tags})
}

func (m *capturingMetrics) ObserveHistogram(context.Context, string, float64, map[string]string) {}
