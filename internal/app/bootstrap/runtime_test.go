package bootstrap

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wolfman30/careapp/internal/booking"
	appconfig "github.com/wolfman30/careapp/internal/config"
	"github.com/wolfman30/careapp/internal/diagnostics"
	"github.com/wolfman30/careapp/pkg/logging"
)

func TestBuildRedisClientDisabled(t *testing.T) {
	assert.Nil(t, BuildRedisClient(context.Background(), nil, nil, false))
	assert.Nil(t, BuildRedisClient(context.Background(), &appconfig.Config{RedisAddr: ""}, nil, false))
	assert.Nil(t, BuildRedisClient(context.Background(), &appconfig.Config{RedisAddr: "x:1", UseMemoryStore: true}, nil, false))
}

func TestBuildRedisClientVerify(t *testing.T) {
	mr := miniredis.RunT(t)
	cfg := &appconfig.Config{RedisAddr: mr.Addr(), SessionTTL: time.Hour}

	client := BuildRedisClient(context.Background(), cfg, logging.Default(), true)
	require.NotNil(t, client)
	defer client.Close()

	_, ok := BuildSessionStore(client, cfg).(*booking.RedisStore)
	assert.True(t, ok)
	_, ok = BuildTranscriptStore(client, cfg).(*diagnostics.RedisTranscripts)
	assert.True(t, ok)

	mr.Close()
	assert.Nil(t, BuildRedisClient(context.Background(), cfg, logging.Default(), true))
}

func TestBuildStoresWithoutRedis(t *testing.T) {
	cfg := &appconfig.Config{SessionTTL: time.Hour}
	_, ok := BuildSessionStore(nil, cfg).(*booking.MemoryStore)
	assert.True(t, ok)
	_, ok = BuildTranscriptStore(nil, cfg).(*diagnostics.MemoryTranscripts)
	assert.True(t, ok)
}

func TestBuildResponderDefaultsToRemote(t *testing.T) {
	responder, closer, err := BuildResponder(context.Background(), &appconfig.Config{DiagnosticsBaseURL: "http://localhost:1"}, nil, nil)
	require.NoError(t, err)
	assert.Nil(t, closer)
	_, ok := responder.(*diagnostics.RemoteResponder)
	assert.True(t, ok)

	_, _, err = BuildResponder(context.Background(), nil, nil, nil)
	assert.Error(t, err)
}
