// Package httpapi exposes the user service and the API key issuer over HTTP.
package httpapi

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/rs/zerolog"

	"usergate/internal/core"
	"usergate/internal/keys"
)

// AuthHeader carries the API key on protected routes.
const AuthHeader = "X-Fix-Bug"

// DefaultWebhookEvent is the payment event that triggers an issuance.
const DefaultWebhookEvent = "checkout.session.completed"

const maxBodyBytes = 1 << 20

// Handler serves every HTTP route of the service.
type Handler struct {
	users   *core.Service
	issuer  *keys.Issuer
	gate    *keys.Gate
	logger  zerolog.Logger
	metrics http.Handler

	protect      bool
	rootRedirect string
	webhookEvent string
}

// Option customizes a Handler.
type Option func(*Handler)

// WithLogger sets the request and error logger.
func WithLogger(logger zerolog.Logger) Option {
	return func(h *Handler) { h.logger = logger.With().Str("component", "http").Logger() }
}

// WithProtection requires a known API key on every /vN/api route.
func WithProtection(enabled bool) Option {
	return func(h *Handler) { h.protect = enabled }
}

// WithRootRedirect sets where GET / redirects to.
func WithRootRedirect(target string) Option {
	return func(h *Handler) {
		if target != "" {
			h.rootRedirect = target
		}
	}
}

// WithWebhookEvent sets the webhook event type that issues a key.
func WithWebhookEvent(eventType string) Option {
	return func(h *Handler) {
		if eventType != "" {
			h.webhookEvent = eventType
		}
	}
}

// WithMetricsHandler mounts h at /metrics.
func WithMetricsHandler(m http.Handler) Option {
	return func(h *Handler) { h.metrics = m }
}

// NewHandler wires the HTTP surface over the supplied components.
func NewHandler(users *core.Service, issuer *keys.Issuer, gate *keys.Gate, opts ...Option) *Handler {
	h := &Handler{
		users:        users,
		issuer:       issuer,
		gate:         gate,
		logger:       zerolog.Nop(),
		rootRedirect: "/healthz",
		webhookEvent: DefaultWebhookEvent,
	}
	for _, opt := range opts {
		opt(h)
	}
	return h
}

// Routes builds the chi router.
func (h *Handler) Routes() chi.Router {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(h.logRequests)
	r.Use(middleware.Recoverer)

	r.Get("/", func(w http.ResponseWriter, req *http.Request) {
		http.Redirect(w, req, h.rootRedirect, http.StatusFound)
	})
	r.Get("/favicon.ico", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	})
	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		writeText(w, http.StatusOK, "ok")
	})
	if h.metrics != nil {
		r.Handle("/metrics", h.metrics)
	}

	for _, v := range h.users.Versions() {
		r.Route("/"+string(v)+"/api/users", func(r chi.Router) {
			if h.protect {
				r.Use(h.requireKey)
			}
			r.Get("/", h.listUsers)
			r.Post("/", h.createUser(v))
			r.Get("/{id}", h.readUser(v))
			r.Patch("/{id}", h.updateUser(v))
			r.Delete("/{id}", h.deleteUser)
		})
	}

	r.Post("/get-api-key", h.issueKey)
	r.Post("/webhook", h.webhook)
	r.NotFound(func(w http.ResponseWriter, _ *http.Request) {
		writeError(w, http.StatusNotFound, "Not found")
	})
	r.MethodNotAllowed(func(w http.ResponseWriter, _ *http.Request) {
		writeError(w, http.StatusMethodNotAllowed, "Method not allowed")
	})
	return r
}

func (h *Handler) requireKey(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !h.gate.Authorize(r.Header.Get(AuthHeader)) {
			writeError(w, http.StatusUnauthorized, "Unauthorized")
			return
		}
		next.ServeHTTP(w, r)
	})
}

func (h *Handler) logRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		started := time.Now()
		defer func() {
			status := ww.Status()
			if status == 0 {
				status = http.StatusOK
			}
			evt := h.logger.Info()
			if status >= http.StatusInternalServerError {
				evt = h.logger.Error()
			}
			evt.Str("request_id", middleware.GetReqID(r.Context())).
				Str("method", r.Method).
				Str("path", r.URL.Path).
				Int("status", status).
				Int("bytes", ww.BytesWritten()).
				Dur("elapsed", time.Since(started)).
				Msg("request")
		}()
		next.ServeHTTP(ww, r)
	})
}
