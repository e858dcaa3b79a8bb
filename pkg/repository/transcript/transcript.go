// Package transcript keeps an audit copy of conversation turns in Redis.
package transcript

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/trace"

	"github.com/WETTENTLLC/DelaneNails/pkg/domain/session"
	"github.com/WETTENTLLC/DelaneNails/pkg/utils/errs"
)

const DefaultTTL = 24 * time.Hour

// RedisRecorder appends each turn as JSON to a per-session list. The list
// expiry is pushed forward on every write.
type RedisRecorder struct {
	redis  *redis.Client
	tracer trace.Tracer
	ttl    time.Duration
}

func NewRedisRecorder(client *redis.Client, ttl time.Duration, tracer trace.Tracer) (*RedisRecorder, error) {
	if client == nil {
		return nil, errs.New("transcript: redis client is required")
	}
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	if tracer == nil {
		tracer = otel.Tracer("delanenails.transcript")
	}
	return &RedisRecorder{redis: client, tracer: tracer, ttl: ttl}, nil
}

func key(sessionID string) string {
	return fmt.Sprintf("transcript:%s", sessionID)
}

func (r *RedisRecorder) Record(ctx context.Context, sessionID string, t session.Turn) error {
	ctx, span := r.tracer.Start(ctx, "transcript.record")
	defer span.End()

	data, err := json.Marshal(t)
	if err != nil {
		span.RecordError(err)
		return errs.New("transcript: failed to marshal turn").Wrap(err)
	}

	pipe := r.redis.TxPipeline()
	pipe.RPush(ctx, key(sessionID), data)
	pipe.Expire(ctx, key(sessionID), r.ttl)
	if _, err := pipe.Exec(ctx); err != nil {
		span.RecordError(err)
		return errs.Upstream("transcript: failed to persist turn").Arg("session", sessionID).Wrap(err)
	}
	return nil
}

// Load returns the recorded turns of a session, oldest first. An unknown
// session yields an empty slice.
func (r *RedisRecorder) Load(ctx context.Context, sessionID string) ([]session.Turn, error) {
	ctx, span := r.tracer.Start(ctx, "transcript.load")
	defer span.End()

	raw, err := r.redis.LRange(ctx, key(sessionID), 0, -1).Result()
	if err != nil {
		span.RecordError(err)
		return nil, errs.Upstream("transcript: failed to load turns").Arg("session", sessionID).Wrap(err)
	}
	out := make([]session.Turn, 0, len(raw))
	for _, item := range raw {
		var t session.Turn
		if err := json.Unmarshal([]byte(item), &t); err != nil {
			span.RecordError(err)
			return nil, errs.New("transcript: failed to decode turn").Wrap(err)
		}
		out = append(out, t)
	}
	return out, nil
}

func (r *RedisRecorder) Delete(ctx context.Context, sessionID string) error {
	if err := r.redis.Del(ctx, key(sessionID)).Err(); err != nil {
		return errs.Upstream("transcript: failed to delete turns").Arg("session", sessionID).Wrap(err)
	}
	return nil
}
