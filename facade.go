package easyship

import (
	"fmt"
	"net/http"

	"github.com/go-chi/chi/v5"
	easyshipcommand "github.com/goliatone/go-easyship/command"
	"github.com/goliatone/go-easyship/core"
	"github.com/goliatone/go-easyship/inbound"
	"github.com/goliatone/go-easyship/query"
	"github.com/goliatone/go-easyship/webhooks"
)

type Commands struct {
	HandleWebhook *easyshipcommand.HandleWebhookCommand
	FireEvent     *easyshipcommand.FireEventCommand
}

// Queries.WebhookClaim is nil unless the replay store can read claims back.
type Queries struct {
	WebhookClaim  *query.GetWebhookClaimQuery
	ListenerCount *query.CountWebhookListenersQuery
}

// Facade wires one runtime into an API client, a webhook dispatcher and an
// HTTP receiver that share its configuration, logging and metrics.
type Facade struct {
	runtime    *Runtime
	client     *Client
	dispatcher *webhooks.Dispatcher
	receiver   *inbound.Receiver
	commands   Commands
	queries    Queries
}

type FacadeOption func(*facadeOptions)

type facadeOptions struct {
	runtimeOptions  []Option
	clientOptions   []ClientOption
	receiverOptions []inbound.ReceiverOption
	registry        *webhooks.Registry
	verifier        webhooks.SignatureVerifier
	claimStore      core.IdempotencyClaimStore
}

func WithRuntimeOptions(opts ...Option) FacadeOption {
	return func(o *facadeOptions) {
		o.runtimeOptions = append(o.runtimeOptions, opts...)
	}
}

func WithClientOptions(opts ...ClientOption) FacadeOption {
	return func(o *facadeOptions) {
		o.clientOptions = append(o.clientOptions, opts...)
	}
}

func WithReceiverOptions(opts ...inbound.ReceiverOption) FacadeOption {
	return func(o *facadeOptions) {
		o.receiverOptions = append(o.receiverOptions, opts...)
	}
}

// WithWebhookRegistry gives the dispatcher its own registry instead of the
// process-wide one.
func WithWebhookRegistry(registry *webhooks.Registry) FacadeOption {
	return func(o *facadeOptions) {
		o.registry = registry
	}
}

// WithVerifier replaces the JWT verifier built from webhooks.secret_keys.
func WithVerifier(verifier webhooks.SignatureVerifier) FacadeOption {
	return func(o *facadeOptions) {
		o.verifier = verifier
	}
}

// WithReplayStore enables replay suppression, keeping claims for
// webhooks.replay_ttl.
func WithReplayStore(store core.IdempotencyClaimStore) FacadeOption {
	return func(o *facadeOptions) {
		o.claimStore = store
	}
}

func NewFacade(cfg Config, opts ...FacadeOption) (*Facade, error) {
	options := facadeOptions{}
	for _, opt := range opts {
		if opt == nil {
			continue
		}
		opt(&options)
	}

	runtime, err := core.NewRuntime(cfg, options.runtimeOptions...)
	if err != nil {
		return nil, err
	}
	resolved := runtime.Config()

	verifier := options.verifier
	if verifier == nil {
		verifier = webhooks.NewJWTVerifier(resolved.Webhooks.SecretKeys,
			webhooks.WithLeeway(resolved.Webhooks.Leeway))
	}

	dispatcherOpts := []webhooks.Option{
		webhooks.WithLogger(runtime.Logger("easyship.webhooks")),
		webhooks.WithMetricsRecorder(runtime.Metrics()),
	}
	if options.registry != nil {
		dispatcherOpts = append(dispatcherOpts, webhooks.WithRegistry(options.registry))
	}
	if options.claimStore != nil {
		dispatcherOpts = append(dispatcherOpts, webhooks.WithClaimStore(options.claimStore, resolved.Webhooks.ReplayTTL))
	}
	dispatcher := webhooks.NewDispatcher(verifier, dispatcherOpts...)

	receiverOpts := append([]inbound.ReceiverOption{
		inbound.WithWebhookConfig(resolved.Webhooks),
		inbound.WithLogger(runtime.Logger("easyship.inbound")),
		inbound.WithMetricsRecorder(runtime.Metrics()),
	}, options.receiverOptions...)

	facade := &Facade{
		runtime:    runtime,
		client:     NewClientFromRuntime(runtime, options.clientOptions...),
		dispatcher: dispatcher,
		receiver:   inbound.NewReceiver(dispatcher, receiverOpts...),
	}
	facade.commands = Commands{
		HandleWebhook: easyshipcommand.NewHandleWebhookCommand(dispatcher),
		FireEvent:     easyshipcommand.NewFireEventCommand(dispatcher),
	}
	facade.queries = Queries{
		ListenerCount: query.NewCountWebhookListenersQuery(dispatcher.Registry()),
	}
	if reader, ok := options.claimStore.(query.ClaimReader); ok {
		facade.queries.WebhookClaim = query.NewGetWebhookClaimQuery(reader)
	}
	return facade, nil
}

func (f *Facade) Runtime() *Runtime {
	if f == nil {
		return nil
	}
	return f.runtime
}

func (f *Facade) Client() *Client {
	if f == nil {
		return nil
	}
	return f.client
}

func (f *Facade) Dispatcher() *webhooks.Dispatcher {
	if f == nil {
		return nil
	}
	return f.dispatcher
}

func (f *Facade) Receiver() *inbound.Receiver {
	if f == nil {
		return nil
	}
	return f.receiver
}

func (f *Facade) Commands() Commands {
	if f == nil {
		return Commands{}
	}
	return f.commands
}

func (f *Facade) Queries() Queries {
	if f == nil {
		return Queries{}
	}
	return f.queries
}

// On registers listener on the dispatcher's registry.
func (f *Facade) On(eventType EventType, listener Listener) error {
	if f == nil || f.dispatcher == nil {
		return fmt.Errorf("easyship: facade is not configured")
	}
	f.dispatcher.Registry().Register(eventType, listener)
	return nil
}

// Routes mounts the webhook receiver on r.
func (f *Facade) Routes(r chi.Router) {
	if f == nil {
		return
	}
	inbound.Routes(r, f.receiver)
}

// Handler returns a standalone router serving the webhook endpoint.
func (f *Facade) Handler(middlewares ...func(http.Handler) http.Handler) http.Handler {
	if f == nil {
		return http.NotFoundHandler()
	}
	return inbound.NewRouter(f.receiver, middlewares...)
}
