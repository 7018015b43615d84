package httpserver

import (
	"net/http"

	"alert-bridge/internal/health"
	"alert-bridge/internal/metrics"
	"alert-bridge/internal/orders"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/rs/zerolog"
)

type RouterDeps struct {
	OrderHandler     *orders.Handler
	HealthHandler    *health.Handler
	WebhookTokenHash string
	Logger           zerolog.Logger
}

func NewRouter(d RouterDeps) http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RealIP)
	r.Use(RequestLogging(d.Logger))
	r.Use(middleware.Recoverer)
	r.Use(SecurityHeaders)

	r.Get("/health", d.HealthHandler.Live)
	r.Get("/test-connection", d.HealthHandler.TestConnection)
	r.Handle("/metrics", metrics.Handler())

	r.Group(func(r chi.Router) {
		r.Use(WebhookAuth(d.WebhookTokenHash))
		r.Get("/health/full", d.HealthHandler.Full)
		r.Post("/webhook", d.OrderHandler.Webhook)
	})
	return r
}
