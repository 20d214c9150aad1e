package booking

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

const maxUpdateAttempts = 5

// RedisStore keeps sessions as JSON strings with a sliding TTL. Updates use
// WATCH/MULTI so two requests on one session cannot interleave.
type RedisStore struct {
	redis  *redis.Client
	ttl    time.Duration
	tracer trace.Tracer
}

// NewRedisStore panics on a nil client.
func NewRedisStore(client *redis.Client, ttl time.Duration) *RedisStore {
	if client == nil {
		panic("booking: redis client cannot be nil")
	}
	return &RedisStore{
		redis:  client,
		ttl:    ttl,
		tracer: otel.Tracer("careapp.internal.booking.sessions"),
	}
}

func sessionKey(id string) string {
	return fmt.Sprintf("booking_session:%s", id)
}

func (s *RedisStore) Create(ctx context.Context, sess *Session) error {
	ctx, span := s.tracer.Start(ctx, "booking.session.create", trace.WithAttributes(attribute.String("careapp.session_id", sess.ID)))
	defer span.End()

	data, err := json.Marshal(sess)
	if err != nil {
		span.RecordError(err)
		return fmt.Errorf("booking: marshal session: %w", err)
	}
	ok, err := s.redis.SetNX(ctx, sessionKey(sess.ID), data, s.ttl).Result()
	if err != nil {
		span.RecordError(err)
		return fmt.Errorf("booking: persist session: %w", err)
	}
	if !ok {
		return fmt.Errorf("booking: session %s already exists", sess.ID)
	}
	return nil
}

func (s *RedisStore) Get(ctx context.Context, id string) (*Session, error) {
	ctx, span := s.tracer.Start(ctx, "booking.session.get", trace.WithAttributes(attribute.String("careapp.session_id", id)))
	defer span.End()

	data, err := s.redis.Get(ctx, sessionKey(id)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, ErrSessionNotFound
		}
		span.RecordError(err)
		return nil, fmt.Errorf("booking: load session: %w", err)
	}
	return decodeSession(data)
}

func (s *RedisStore) Update(ctx context.Context, id string, fn UpdateFunc) (*Session, error) {
	ctx, span := s.tracer.Start(ctx, "booking.session.update", trace.WithAttributes(attribute.String("careapp.session_id", id)))
	defer span.End()

	key := sessionKey(id)
	var updated *Session
	txf := func(tx *redis.Tx) error {
		data, err := tx.Get(ctx, key).Bytes()
		if err != nil {
			if errors.Is(err, redis.Nil) {
				return ErrSessionNotFound
			}
			return fmt.Errorf("booking: load session: %w", err)
		}
		sess, err := decodeSession(data)
		if err != nil {
			return err
		}
		if err := fn(sess); err != nil {
			return err
		}
		sess.UpdatedAt = time.Now().UTC()
		out, err := json.Marshal(sess)
		if err != nil {
			return fmt.Errorf("booking: marshal session: %w", err)
		}
		_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			pipe.Set(ctx, key, out, s.ttl)
			return nil
		})
		if err != nil {
			return err
		}
		updated = sess
		return nil
	}

	for attempt := 1; attempt <= maxUpdateAttempts; attempt++ {
		err := s.redis.Watch(ctx, txf, key)
		if err == nil {
			return updated, nil
		}
		if errors.Is(err, redis.TxFailedErr) {
			span.AddEvent("booking.session.update.retry", trace.WithAttributes(attribute.Int("attempt", attempt)))
			continue
		}
		if !errors.Is(err, ErrSessionNotFound) && !errors.Is(err, ErrSuperseded) {
			span.RecordError(err)
		}
		return nil, err
	}
	span.RecordError(ErrConflict)
	return nil, ErrConflict
}

func (s *RedisStore) Delete(ctx context.Context, id string) error {
	ctx, span := s.tracer.Start(ctx, "booking.session.delete", trace.WithAttributes(attribute.String("careapp.session_id", id)))
	defer span.End()

	if err := s.redis.Del(ctx, sessionKey(id)).Err(); err != nil {
		span.RecordError(err)
		return fmt.Errorf("booking: delete session: %w", err)
	}
	return nil
}
