package webhooks

import (
	"context"
	"sync"
)

type Listener interface {
	Fire(ctx context.Context, payload Payload) error
}

type ListenerFunc func(ctx context.Context, payload Payload) error

func (f ListenerFunc) Fire(ctx context.Context, payload Payload) error {
	return f(ctx, payload)
}

// Registry maps event types to listeners in registration order. It is safe
// for concurrent use and may be shared by several dispatchers.
type Registry struct {
	mu        sync.RWMutex
	listeners map[EventType][]Listener
}

func NewRegistry() *Registry {
	return &Registry{listeners: map[EventType][]Listener{}}
}

// Register appends listener for eventType. Any key is accepted, including
// types outside the known set. Nil listeners are ignored.
func (r *Registry) Register(eventType EventType, listener Listener) {
	if r == nil || listener == nil {
		return
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.listeners == nil {
		r.listeners = map[EventType][]Listener{}
	}
	r.listeners[eventType] = append(r.listeners[eventType], listener)
}

func (r *Registry) RegisterFunc(eventType EventType, fn func(ctx context.Context, payload Payload) error) {
	if fn == nil {
		return
	}
	r.Register(eventType, ListenerFunc(fn))
}

// ListenersFor returns a copy of the listeners for eventType.
func (r *Registry) ListenersFor(eventType EventType) []Listener {
	if r == nil {
		return []Listener{}
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	registered := r.listeners[eventType]
	out := make([]Listener, len(registered))
	copy(out, registered)
	return out
}

var defaultRegistry = NewRegistry()

// DefaultRegistry is the process-wide registry used by dispatchers built
// without WithRegistry.
func DefaultRegistry() *Registry {
	return defaultRegistry
}

func RegisterListener(eventType EventType, listener Listener) {
	defaultRegistry.Register(eventType, listener)
}
