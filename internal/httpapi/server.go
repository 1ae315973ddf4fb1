// Package httpapi serves the booking operations as a JSON REST API.
package httpapi

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"booking-api/internal/handler"
	"booking-api/internal/logger"
	"booking-api/internal/middleware"
)

type Server struct {
	h       *handler.Handler
	authn   *middleware.Authenticator
	log     *zap.Logger
	metrics *Metrics
	gather  prometheus.Gatherer
}

type Options struct {
	Logger *zap.Logger
	// Registry receives the HTTP metrics and backs GET /metrics. A fresh
	// registry is used when nil.
	Registry *prometheus.Registry
}

func New(h *handler.Handler, authn *middleware.Authenticator, opts Options) (*Server, error) {
	if opts.Logger == nil {
		opts.Logger = zap.NewNop()
	}
	if opts.Registry == nil {
		opts.Registry = prometheus.NewRegistry()
	}
	m, err := NewMetrics(opts.Registry)
	if err != nil {
		return nil, err
	}
	return &Server{h: h, authn: authn, log: opts.Logger, metrics: m, gather: opts.Registry}, nil
}

func (s *Server) Routes() http.Handler {
	r := chi.NewRouter()
	r.Use(chimw.Recoverer)
	r.Use(s.metrics.Middleware)
	r.Use(s.accessLog)

	r.Get("/", func(w http.ResponseWriter, r *http.Request) { writeJSON(w, http.StatusOK, struct{}{}) })
	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) { writeJSON(w, http.StatusOK, map[string]string{"status": "ok"}) })
	r.Method(http.MethodGet, "/metrics", promhttp.HandlerFor(s.gather, promhttp.HandlerOpts{}))

	r.Post("/auth/login", s.login)
	r.Post("/client", s.createClient)

	r.Group(func(r chi.Router) {
		r.Use(s.requireAuth)
		r.Get("/client", s.getClient)
		r.Delete("/client", s.deleteClient)
		r.Get("/appointment", s.listAppointments)
		r.Post("/appointment", s.createAppointment)
		r.Delete("/appointment", s.cancelAppointment)
	})
	return r
}

// requireAuth binds the verified identity to the request. The origin is the
// TCP peer; forwarding headers are not trusted.
func (s *Server) requireAuth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id, err := s.authn.Authenticate(r.Context(), r.Header.Get("Authorization"), r.RemoteAddr)
		if err != nil {
			writeError(w, err)
			return
		}
		next.ServeHTTP(w, r.WithContext(middleware.WithIdentity(r.Context(), id)))
	})
}

func (s *Server) accessLog(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		reqID := r.Header.Get("X-Request-ID")
		if reqID == "" {
			reqID = uuid.NewString()
		}
		w.Header().Set("X-Request-ID", reqID)

		l := s.log.With(
			zap.String("request_id", reqID),
			zap.String("method", r.Method),
			zap.String("path", r.URL.Path),
		)
		ww := chimw.NewWrapResponseWriter(w, r.ProtoMajor)
		start := time.Now()
		next.ServeHTTP(ww, r.WithContext(logger.ToContext(r.Context(), l)))

		l.Info("http",
			zap.Int("status", ww.Status()),
			zap.Int("bytes", ww.BytesWritten()),
			zap.Duration("duration", time.Since(start)),
		)
	})
}
