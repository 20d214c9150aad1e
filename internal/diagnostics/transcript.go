package diagnostics

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/trace"
)

const maxTranscriptMessages = 200

// TranscriptStore keeps each chat's messages in order.
type TranscriptStore interface {
	Load(ctx context.Context, chatID string) ([]Message, error)
	Append(ctx context.Context, chatID string, msgs ...Message) error
	Clear(ctx context.Context, chatID string) error
}

// MemoryTranscripts is an in-process TranscriptStore.
type MemoryTranscripts struct {
	mu    sync.RWMutex
	chats map[string][]Message
}

func NewMemoryTranscripts() *MemoryTranscripts {
	return &MemoryTranscripts{chats: make(map[string][]Message)}
}

func (m *MemoryTranscripts) Load(_ context.Context, chatID string) ([]Message, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return append([]Message{}, m.chats[chatID]...), nil
}

func (m *MemoryTranscripts) Append(_ context.Context, chatID string, msgs ...Message) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	chat := append(m.chats[chatID], msgs...)
	if len(chat) > maxTranscriptMessages {
		chat = chat[len(chat)-maxTranscriptMessages:]
	}
	m.chats[chatID] = chat
	return nil
}

func (m *MemoryTranscripts) Clear(_ context.Context, chatID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.chats, chatID)
	return nil
}

// RedisTranscripts stores each chat as a capped Redis list with a TTL.
type RedisTranscripts struct {
	redis  *redis.Client
	ttl    time.Duration
	tracer trace.Tracer
}

// NewRedisTranscripts returns nil for a nil client.
func NewRedisTranscripts(client *redis.Client, ttl time.Duration) *RedisTranscripts {
	if client == nil {
		return nil
	}
	return &RedisTranscripts{
		redis:  client,
		ttl:    ttl,
		tracer: otel.Tracer("careapp.internal.diagnostics.transcript"),
	}
}

func transcriptKey(chatID string) string {
	return fmt.Sprintf("diagnostics_transcript:%s", chatID)
}

func (s *RedisTranscripts) Load(ctx context.Context, chatID string) ([]Message, error) {
	ctx, span := s.tracer.Start(ctx, "diagnostics.transcript.load")
	defer span.End()

	raw, err := s.redis.LRange(ctx, transcriptKey(chatID), 0, -1).Result()
	if err != nil {
		span.RecordError(err)
		return nil, fmt.Errorf("diagnostics: load transcript: %w", err)
	}
	out := make([]Message, 0, len(raw))
	for _, item := range raw {
		var msg Message
		if err := json.Unmarshal([]byte(item), &msg); err != nil {
			span.RecordError(err)
			continue
		}
		out = append(out, msg)
	}
	return out, nil
}

func (s *RedisTranscripts) Append(ctx context.Context, chatID string, msgs ...Message) error {
	if len(msgs) == 0 {
		return nil
	}
	ctx, span := s.tracer.Start(ctx, "diagnostics.transcript.append")
	defer span.End()

	values := make([]interface{}, 0, len(msgs))
	for _, m := range msgs {
		data, err := json.Marshal(m)
		if err != nil {
			return fmt.Errorf("diagnostics: marshal message: %w", err)
		}
		values = append(values, data)
	}

	key := transcriptKey(chatID)
	pipe := s.redis.TxPipeline()
	pipe.RPush(ctx, key, values...)
	pipe.LTrim(ctx, key, -maxTranscriptMessages, -1)
	if s.ttl > 0 {
		pipe.Expire(ctx, key, s.ttl)
	}
	if _, err := pipe.Exec(ctx); err != nil {
		span.RecordError(err)
		return fmt.Errorf("diagnostics: append transcript: %w", err)
	}
	return nil
}

func (s *RedisTranscripts) Clear(ctx context.Context, chatID string) error {
	ctx, span := s.tracer.Start(ctx, "diagnostics.transcript.clear")
	defer span.End()

	if err := s.redis.Del(ctx, transcriptKey(chatID)).Err(); err != nil {
		span.RecordError(err)
		return fmt.Errorf("diagnostics: clear transcript: %w", err)
	}
	return nil
}
