package inbound

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
)

// Routes mounts the receiver as a POST handler on r.
func Routes(r chi.Router, receiver *Receiver) {
	if r == nil || receiver == nil {
		return
	}
	r.Post(receiver.Path(), receiver.ServeHTTP)
}

// NewRouter returns a chi router serving only the webhook endpoint, with
// request ids and real client addresses resolved.
func NewRouter(receiver *Receiver, middlewares ...func(http.Handler) http.Handler) *chi.Mux {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middlewares...)
	Routes(r, receiver)
	return r
}
