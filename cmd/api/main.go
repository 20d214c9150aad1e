package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/wolfman30/careapp/internal/api/router"
	"github.com/wolfman30/careapp/internal/app/bootstrap"
	"github.com/wolfman30/careapp/internal/appointments"
	"github.com/wolfman30/careapp/internal/booking"
	appconfig "github.com/wolfman30/careapp/internal/config"
	"github.com/wolfman30/careapp/internal/diagnostics"
	"github.com/wolfman30/careapp/internal/observability/metrics"
	"github.com/wolfman30/careapp/internal/providers"
	"github.com/wolfman30/careapp/internal/pysked"
	"github.com/wolfman30/careapp/internal/reviews"
	"github.com/wolfman30/careapp/pkg/logging"
)

type appMetrics struct {
	registry *prometheus.Registry
	handler  http.Handler
	upstream *metrics.UpstreamMetrics
	booking  *metrics.BookingMetrics
}

func setupMetrics() *appMetrics {
	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return &appMetrics{
		registry: reg,
		handler:  promhttp.HandlerFor(reg, promhttp.HandlerOpts{Registry: reg}),
		upstream: metrics.NewUpstreamMetrics(reg),
		booking:  metrics.NewBookingMetrics(reg),
	}
}

// buildRouter wires every service onto the HTTP router. The returned cleanup
// releases the Redis client and responder.
func buildRouter(ctx context.Context, cfg *appconfig.Config, logger *logging.Logger, m *appMetrics) (http.Handler, func(), error) {
	redisClient := bootstrap.BuildRedisClient(ctx, cfg, logger, true)
	if redisClient != nil {
		logger.Info("redis connected", "addr", cfg.RedisAddr)
	}

	responder, closer, err := bootstrap.BuildResponder(ctx, cfg, m.upstream, logger)
	if err != nil {
		if redisClient != nil {
			_ = redisClient.Close()
		}
		return nil, nil, err
	}
	cleanup := func() {
		if closer != nil {
			_ = closer.Close()
		}
		if redisClient != nil {
			_ = redisClient.Close()
		}
	}

	client := pysked.NewClient(cfg.PyskedBaseURL, cfg.UpstreamTimeout, logger, pysked.WithMetrics(m.upstream))

	bookingSvc := booking.NewService(bootstrap.BuildSessionStore(redisClient, cfg), client, client, logger, booking.Options{
		Step:           cfg.SlotStep,
		Location:       cfg.Location(),
		CalendarMonths: cfg.CalendarMonths,
		Metrics:        m.booking,
	})
	chat := diagnostics.NewChat(
		bootstrap.BuildTranscriptStore(redisClient, cfg),
		responder,
		diagnostics.DirectiveSpeaker{Language: cfg.SpeechLanguage},
		logger,
	)

	handler := router.New(&router.Config{
		Logger:             logger,
		Providers:          providers.NewHandler(providers.NewService(client, logger), cfg.ProviderListLimit, logger),
		Reviews:            reviews.NewHandler(reviews.NewService(client, logger), logger),
		Bookings:           booking.NewHandler(bookingSvc, logger),
		Appointments:       appointments.NewHandler(appointments.NewService(client, logger), logger),
		Diagnostics:        diagnostics.NewHandler(chat, logger),
		MetricsHandler:     m.handler,
		StatusGatherer:     m.registry,
		CORSAllowedOrigins: cfg.CORSAllowedOrigins,
		RateLimitRPS:       cfg.RateLimitRPS,
		RateLimitBurst:     cfg.RateLimitBurst,
		PatientJWTSecret:   cfg.PatientJWTSecret,
		RequirePatientAuth: cfg.RequirePatientAuth,
	})
	return handler, cleanup, nil
}

func main() {
	// .env is optional; real deployments set the environment directly.
	_ = godotenv.Load()

	cfg := appconfig.Load()

	logger := logging.New(cfg.LogLevel)
	logger.Info("starting careapp API server",
		"env", cfg.Env,
		"port", cfg.Port,
		"pysked", cfg.PyskedBaseURL,
	)

	ctx := context.Background()
	handler, cleanup, err := buildRouter(ctx, cfg, logger, setupMetrics())
	if err != nil {
		logger.Error("failed to build router", "error", err)
		os.Exit(1)
	}
	defer cleanup()

	srv := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      handler,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: cfg.UpstreamTimeout + 15*time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		logger.Info("server listening", "addr", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("server error", "error", err)
			os.Exit(1)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("server forced to shutdown", "error", err)
		cleanup()
		os.Exit(1)
	}

	logger.Info("server stopped")
	fmt.Println("Server exited gracefully")
}
