package router

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/wolfman30/careapp/internal/appointments"
	"github.com/wolfman30/careapp/internal/booking"
	"github.com/wolfman30/careapp/internal/diagnostics"
	httpmiddleware "github.com/wolfman30/careapp/internal/http/middleware"
	"github.com/wolfman30/careapp/internal/http/notice"
	"github.com/wolfman30/careapp/internal/observability/metrics"
	"github.com/wolfman30/careapp/internal/providers"
	"github.com/wolfman30/careapp/internal/reviews"
	"github.com/wolfman30/careapp/pkg/logging"
)

// Config holds router configuration
type Config struct {
	Logger       *logging.Logger
	Providers    *providers.Handler
	Reviews      *reviews.Handler
	Bookings     *booking.Handler
	Appointments *appointments.Handler
	Diagnostics  *diagnostics.Handler

	MetricsHandler http.Handler
	// StatusGatherer backs /status; nil disables the endpoint.
	StatusGatherer prometheus.Gatherer

	CORSAllowedOrigins []string
	RateLimitRPS       float64
	RateLimitBurst     int
	PatientJWTSecret   string
	RequirePatientAuth bool
}

// New creates a new Chi router with all routes configured
func New(cfg *Config) http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(httpmiddleware.RequestLogger(cfg.Logger))
	r.Use(middleware.Recoverer)
	r.Use(middleware.Compress(5))
	if len(cfg.CORSAllowedOrigins) > 0 {
		r.Use(httpmiddleware.CORS(cfg.CORSAllowedOrigins))
	}
	r.Use(httpmiddleware.RateLimit(cfg.RateLimitRPS, cfg.RateLimitBurst))
	r.Use(httpmiddleware.PatientJWT(cfg.PatientJWTSecret))

	// Public endpoints
	r.Get("/health", health)
	if cfg.MetricsHandler != nil {
		r.Handle("/metrics", cfg.MetricsHandler)
	}
	if cfg.StatusGatherer != nil {
		r.Get("/status", upstreamStatus(cfg.StatusGatherer))
	}

	// Directory browsing stays open to anonymous visitors.
	if cfg.Providers != nil {
		r.Route("/providers", func(pr chi.Router) {
			var extra []func(chi.Router)
			if cfg.Reviews != nil {
				extra = append(extra, cfg.Reviews.Routes)
			}
			cfg.Providers.Routes(pr, extra...)
		})
	}

	// Patient endpoints
	r.Group(func(patient chi.Router) {
		if cfg.RequirePatientAuth {
			patient.Use(httpmiddleware.RequirePatient)
		}
		if cfg.Bookings != nil {
			patient.Route("/bookings", cfg.Bookings.Routes)
		}
		if cfg.Appointments != nil {
			patient.Route("/appointments", cfg.Appointments.Routes)
		}
		if cfg.Diagnostics != nil {
			patient.Route("/diagnostics", cfg.Diagnostics.Routes)
		}
	})

	return r
}

func health(w http.ResponseWriter, r *http.Request) {
	notice.WriteJSON(w, http.StatusOK, map[string]string{
		"status": "ok",
		"time":   time.Now().UTC().Format(time.RFC3339),
	})
}

// upstreamStatus reports per-upstream request counters since boot.
func upstreamStatus(g prometheus.Gatherer) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		rows := metrics.SnapshotUpstream(g)
		if rows == nil {
			rows = []metrics.UpstreamStatus{}
		}
		notice.WriteJSON(w, http.StatusOK, map[string]any{"upstreams": rows})
	}
}
