package webhooks

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"net/http"
	"time"

	"github.com/goliatone/go-easyship/core"
	goerrors "github.com/goliatone/go-errors"
	glog "github.com/goliatone/go-logger/glog"
)

// ValidatedHook runs once a delivery passed verification and the
// webhook.validated listeners returned, before type listeners fire.
type ValidatedHook func(ctx context.Context, eventType EventType, payload Payload)

type validatedHookKey struct{}

// ContextWithValidatedHook attaches a per-call hook that Handle invokes
// after any hook configured on the dispatcher.
func ContextWithValidatedHook(ctx context.Context, hook ValidatedHook) context.Context {
	if ctx == nil {
		ctx = context.Background()
	}
	if hook == nil {
		return ctx
	}
	return context.WithValue(ctx, validatedHookKey{}, hook)
}

func validatedHookFromContext(ctx context.Context) ValidatedHook {
	if ctx == nil {
		return nil
	}
	hook, _ := ctx.Value(validatedHookKey{}).(ValidatedHook)
	return hook
}

type Dispatcher struct {
	verifier      SignatureVerifier
	registry      *Registry
	logger        core.Logger
	metrics       core.MetricsRecorder
	validatedHook ValidatedHook
	claims        core.IdempotencyClaimStore
	claimTTL      time.Duration
}

type Option func(*Dispatcher)

func WithRegistry(registry *Registry) Option {
	return func(d *Dispatcher) {
		if registry != nil {
			d.registry = registry
		}
	}
}

func WithLogger(logger core.Logger) Option {
	return func(d *Dispatcher) {
		if logger != nil {
			d.logger = logger
		}
	}
}

func WithMetricsRecorder(recorder core.MetricsRecorder) Option {
	return func(d *Dispatcher) {
		if recorder != nil {
			d.metrics = recorder
		}
	}
}

func WithValidatedHook(hook ValidatedHook) Option {
	return func(d *Dispatcher) {
		d.validatedHook = hook
	}
}

// WithClaimStore enables replay protection. A delivery whose signature was
// already claimed is acknowledged without firing listeners.
func WithClaimStore(store core.IdempotencyClaimStore, ttl time.Duration) Option {
	return func(d *Dispatcher) {
		d.claims = store
		if ttl > 0 {
			d.claimTTL = ttl
		}
	}
}

func NewDispatcher(verifier SignatureVerifier, opts ...Option) *Dispatcher {
	dispatcher := &Dispatcher{
		verifier: verifier,
		registry: DefaultRegistry(),
		logger:   glog.Nop(),
		metrics:  core.NopMetricsRecorder{},
		claimTTL: core.DefaultReplayTTL,
	}
	for _, opt := range opts {
		if opt != nil {
			opt(dispatcher)
		}
	}
	return dispatcher
}

func (d *Dispatcher) Registry() *Registry {
	if d == nil || d.registry == nil {
		return DefaultRegistry()
	}
	return d.registry
}

// Handle verifies the signature, extracts the event type, fires
// webhook.validated listeners and then the listeners for the type. Nothing
// fires when verification or extraction fails.
func (d *Dispatcher) Handle(ctx context.Context, signature string, payload Payload) (err error) {
	if d == nil {
		return webhookError("webhooks: dispatcher is nil", goerrors.CategoryInternal,
			http.StatusInternalServerError, core.ErrorInternal, nil)
	}
	if ctx == nil {
		ctx = context.Background()
	}
	startedAt := time.Now()
	fields := map[string]any{}
	defer func() {
		d.observer().Observe(ctx, startedAt, "webhook_handle", err, fields)
	}()

	keyIndex, err := d.verify(ctx, signature)
	if err != nil {
		fields["outcome"] = "signature_rejected"
		return err
	}
	fields["key_index"] = keyIndex

	eventType, err := ExtractEventType(payload)
	if err != nil {
		fields["outcome"] = "type_invalid"
		return err
	}
	fields["event_type"] = string(eventType)

	claimID := ""
	if d.claims != nil {
		var accepted bool
		claimID, accepted, err = d.claims.Claim(ctx, ReplayKey(signature), d.claimTTL)
		if err != nil {
			fields["outcome"] = "claim_failed"
			return webhookWrapError(err, goerrors.CategoryOperation, "webhooks: replay claim failed",
				http.StatusInternalServerError, core.ErrorOperationFailed,
				map[string]any{"event_type": string(eventType)})
		}
		if !accepted {
			fields["outcome"] = "deduped"
			return nil
		}
	}

	err = d.dispatch(ctx, eventType, payload)
	if err != nil {
		fields["outcome"] = "listener_failed"
	} else {
		fields["outcome"] = "dispatched"
	}
	if claimID == "" {
		return err
	}

	if err != nil {
		if failErr := d.claims.Fail(ctx, claimID, err, time.Time{}); failErr != nil {
			return errors.Join(err, webhookWrapError(failErr, goerrors.CategoryOperation,
				"webhooks: mark replay claim failed", http.StatusInternalServerError,
				core.ErrorOperationFailed, map[string]any{"claim_id": claimID}))
		}
		return err
	}
	if completeErr := d.claims.Complete(ctx, claimID); completeErr != nil {
		d.observer().Warn(ctx, "webhooks: complete replay claim failed", map[string]any{
			"claim_id":   claimID,
			"event_type": string(eventType),
			"error":      completeErr.Error(),
		})
	}
	return nil
}

// FireEvent runs the listeners registered for eventType in order. Types with
// no listeners are a no-op. The first listener error stops the fan-out.
func (d *Dispatcher) FireEvent(ctx context.Context, eventType EventType, payload Payload) error {
	if ctx == nil {
		ctx = context.Background()
	}
	listeners := d.Registry().ListenersFor(eventType)
	if len(listeners) == 0 {
		return nil
	}
	for index, listener := range listeners {
		if err := listener.Fire(ctx, payload); err != nil {
			return &ListenerError{EventType: eventType, Index: index, Cause: err}
		}
	}
	return nil
}

func (d *Dispatcher) dispatch(ctx context.Context, eventType EventType, payload Payload) error {
	if err := d.FireEvent(ctx, EventWebhookValidated, payload); err != nil {
		return err
	}
	if d.validatedHook != nil {
		d.validatedHook(ctx, eventType, payload)
	}
	if hook := validatedHookFromContext(ctx); hook != nil {
		hook(ctx, eventType, payload)
	}
	return d.FireEvent(ctx, eventType, payload)
}

func (d *Dispatcher) verify(ctx context.Context, signature string) (int, error) {
	if d.verifier == nil {
		return -1, &SignatureInvalidError{}
	}
	keyIndex := -1
	var err error
	if keyed, ok := d.verifier.(KeyedVerifier); ok {
		keyIndex, err = keyed.VerifyWithKey(ctx, signature)
	} else {
		err = d.verifier.Verify(ctx, signature)
	}
	if err == nil {
		return keyIndex, nil
	}
	if !errors.Is(err, ErrSignatureInvalid) {
		err = &SignatureInvalidError{Cause: err}
	}
	return -1, err
}

func (d *Dispatcher) observer() core.Observer {
	return core.NewObserver(d.logger, d.metrics)
}

// ReplayKey derives the claim key for a delivery from its signature.
func ReplayKey(signature string) string {
	sum := sha256.Sum256([]byte(signature))
	return "webhook:" + hex.EncodeToString(sum[:])
}
