package inbound

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5/middleware"
	"github.com/goliatone/go-easyship/core"
	"github.com/goliatone/go-easyship/webhooks"
	goerrors "github.com/goliatone/go-errors"
	glog "github.com/goliatone/go-logger/glog"
)

const DefaultWebhookPath = "/webhooks/easyship"

// WebhookHandler is satisfied by *webhooks.Dispatcher.
type WebhookHandler interface {
	Handle(ctx context.Context, signature string, payload webhooks.Payload) error
}

// Receiver decodes a delivery and hands it to the dispatcher. Unless
// acknowledgement is deferred it answers 200 as soon as the delivery has
// been validated, and listener failures after that point are only logged.
type Receiver struct {
	handler         WebhookHandler
	path            string
	signatureHeader string
	maxBodyBytes    int64
	deferAck        bool
	logger          core.Logger
	metrics         core.MetricsRecorder
}

type ReceiverOption func(*Receiver)

func WithPath(path string) ReceiverOption {
	return func(r *Receiver) {
		if path = strings.TrimSpace(path); path != "" {
			r.path = "/" + strings.TrimLeft(path, "/")
		}
	}
}

func WithSignatureHeader(header string) ReceiverOption {
	return func(r *Receiver) {
		if header = strings.TrimSpace(header); header != "" {
			r.signatureHeader = header
		}
	}
}

func WithMaxBodyBytes(limit int64) ReceiverOption {
	return func(r *Receiver) {
		if limit > 0 {
			r.maxBodyBytes = limit
		}
	}
}

func WithDeferredAcknowledgement(deferred bool) ReceiverOption {
	return func(r *Receiver) {
		r.deferAck = deferred
	}
}

func WithWebhookConfig(cfg core.WebhookConfig) ReceiverOption {
	return func(r *Receiver) {
		WithSignatureHeader(cfg.SignatureHeader)(r)
		WithMaxBodyBytes(cfg.MaxBodyBytes)(r)
		r.deferAck = cfg.DeferAcknowledgement
	}
}

func WithLogger(logger core.Logger) ReceiverOption {
	return func(r *Receiver) {
		if logger != nil {
			r.logger = logger
		}
	}
}

func WithMetricsRecorder(recorder core.MetricsRecorder) ReceiverOption {
	return func(r *Receiver) {
		if recorder != nil {
			r.metrics = recorder
		}
	}
}

func NewReceiver(handler WebhookHandler, opts ...ReceiverOption) *Receiver {
	receiver := &Receiver{
		handler:         handler,
		path:            DefaultWebhookPath,
		signatureHeader: core.DefaultSignatureHeader,
		maxBodyBytes:    core.DefaultWebhookMaxBodyBytes,
		logger:          glog.Nop(),
		metrics:         core.NopMetricsRecorder{},
	}
	for _, opt := range opts {
		if opt != nil {
			opt(receiver)
		}
	}
	return receiver
}

func (rc *Receiver) Path() string {
	return rc.path
}

func (rc *Receiver) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	startedAt := time.Now()
	observer := core.NewObserver(rc.logger, rc.metrics)
	fields := map[string]any{"method": r.Method}
	if requestID := middleware.GetReqID(ctx); requestID != "" {
		fields["request_id"] = requestID
	}

	if rc.handler == nil {
		err := inboundInternal("inbound: webhook handler is not configured", nil)
		observer.Observe(ctx, startedAt, "webhook_receive", err, fields)
		writeError(w, err)
		return
	}

	payload, err := rc.decode(w, r)
	if err != nil {
		observer.Observe(ctx, startedAt, "webhook_receive", err, fields)
		writeError(w, err)
		return
	}
	if eventType, ok := payload[webhooks.EventTypeField].(string); ok {
		fields["event_type"] = eventType
	}

	ack := &acknowledger{w: w}
	if !rc.deferAck {
		ctx = webhooks.ContextWithValidatedHook(ctx, ack.acknowledge)
	}
	signature := strings.TrimSpace(r.Header.Get(rc.signatureHeader))
	err = rc.handler.Handle(ctx, signature, payload)
	observer.Observe(ctx, startedAt, "webhook_receive", err, fields)

	if ack.sent {
		if err != nil {
			fields["error"] = err.Error()
			observer.Error(ctx, "inbound: listener failed after acknowledgement", fields)
		}
		return
	}
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"status": "ok"})
}

func (rc *Receiver) decode(w http.ResponseWriter, r *http.Request) (webhooks.Payload, error) {
	if r.Body == nil {
		return nil, inboundBadInput("inbound: request body is required", nil)
	}
	body := http.MaxBytesReader(w, r.Body, rc.maxBodyBytes)
	defer body.Close()

	var payload webhooks.Payload
	if err := json.NewDecoder(body).Decode(&payload); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			return nil, inboundWrapError(err, goerrors.CategoryBadInput, "inbound: request body too large",
				http.StatusRequestEntityTooLarge, core.ErrorBadInput,
				map[string]any{"max_body_bytes": rc.maxBodyBytes})
		}
		return nil, inboundWrapError(err, goerrors.CategoryBadInput, "inbound: request body is not a JSON object",
			http.StatusBadRequest, core.ErrorPayloadInvalid, nil)
	}
	if payload == nil {
		return nil, inboundError("inbound: request body is not a JSON object", goerrors.CategoryBadInput,
			http.StatusBadRequest, core.ErrorPayloadInvalid, nil)
	}
	return payload, nil
}

type acknowledger struct {
	w    http.ResponseWriter
	sent bool
}

func (a *acknowledger) acknowledge(context.Context, webhooks.EventType, webhooks.Payload) {
	if a.sent {
		return
	}
	a.sent = true
	writeJSON(a.w, http.StatusOK, map[string]any{"status": "accepted"})
	if flusher, ok := a.w.(http.Flusher); ok {
		flusher.Flush()
	}
}

func writeError(w http.ResponseWriter, err error) {
	mapped := core.MapError(err)
	writeJSON(w, mapped.Code, map[string]any{
		"error": map[string]any{
			"message":   mapped.Message,
			"text_code": mapped.TextCode,
		},
	})
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}
