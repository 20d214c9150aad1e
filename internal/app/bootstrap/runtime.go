// Package bootstrap wires configuration into the stores, clients and
// responders the API server runs on.
package bootstrap

import (
	"context"
	"crypto/tls"
	"strings"

	"github.com/redis/go-redis/v9"

	"github.com/wolfman30/careapp/internal/booking"
	appconfig "github.com/wolfman30/careapp/internal/config"
	"github.com/wolfman30/careapp/internal/diagnostics"
	"github.com/wolfman30/careapp/pkg/logging"
)

// BuildRedisClient returns a configured Redis client or nil when disabled.
// When verify is true, a ping is issued and failures return nil.
func BuildRedisClient(ctx context.Context, cfg *appconfig.Config, logger *logging.Logger, verify bool) *redis.Client {
	if cfg == nil || cfg.UseMemoryStore || strings.TrimSpace(cfg.RedisAddr) == "" {
		return nil
	}
	if logger == nil {
		logger = logging.Default()
	}
	if ctx == nil {
		ctx = context.Background()
	}

	opts := &redis.Options{
		Addr:     cfg.RedisAddr,
		Password: cfg.RedisPassword,
	}
	if cfg.RedisTLS {
		opts.TLSConfig = &tls.Config{MinVersion: tls.VersionTLS12}
	}
	client := redis.NewClient(opts)
	if !verify {
		return client
	}
	if err := client.Ping(ctx).Err(); err != nil {
		logger.Warn("redis not available; falling back to memory stores", "error", err)
		_ = client.Close()
		return nil
	}
	return client
}

// BuildSessionStore picks the Redis store when a client is available.
func BuildSessionStore(redisClient *redis.Client, cfg *appconfig.Config) booking.SessionStore {
	if redisClient == nil {
		return booking.NewMemoryStore(cfg.SessionTTL)
	}
	return booking.NewRedisStore(redisClient, cfg.SessionTTL)
}

// BuildTranscriptStore picks the Redis transcript store when a client is available.
func BuildTranscriptStore(redisClient *redis.Client, cfg *appconfig.Config) diagnostics.TranscriptStore {
	if redisClient == nil {
		return diagnostics.NewMemoryTranscripts()
	}
	return diagnostics.NewRedisTranscripts(redisClient, cfg.SessionTTL)
}
