package bootstrap

import (
	"context"
	"fmt"
	"io"
	"strings"

	appconfig "github.com/wolfman30/careapp/internal/config"
	"github.com/wolfman30/careapp/internal/diagnostics"
	"github.com/wolfman30/careapp/internal/observability/metrics"
	"github.com/wolfman30/careapp/pkg/logging"
)

// BuildResponder prefers Gemini when an API key is configured and otherwise
// calls the diagnostics REST service. The returned closer may be nil.
func BuildResponder(ctx context.Context, cfg *appconfig.Config, m *metrics.UpstreamMetrics, logger *logging.Logger) (diagnostics.Responder, io.Closer, error) {
	if cfg == nil {
		return nil, nil, fmt.Errorf("bootstrap: config is required")
	}
	if logger == nil {
		logger = logging.Default()
	}
	if strings.TrimSpace(cfg.GeminiAPIKey) == "" {
		logger.Info("diagnostic assistant using remote responder", "base_url", cfg.DiagnosticsBaseURL)
		return diagnostics.NewRemoteResponder(cfg.DiagnosticsBaseURL, cfg.UpstreamTimeout, logger.Component("diagnostics"), m), nil, nil
	}
	gemini, err := diagnostics.NewGeminiResponder(ctx, cfg.GeminiAPIKey, cfg.GeminiModelID)
	if err != nil {
		return nil, nil, fmt.Errorf("bootstrap: gemini responder: %w", err)
	}
	logger.Info("diagnostic assistant using gemini", "model", cfg.GeminiModelID)
	return gemini, gemini, nil
}
