package goEphemeral

import (
	"context"
	"encoding/json"
	"strconv"
	"sync/atomic"

	"github.com/redis/go-redis/v9"
)

// DefaultAuditStream is the Redis stream key used when none is given.
const DefaultAuditStream = "eph:audit"

// RedisStreamSink appends audit events to a Redis stream with XADD.
//
// Only audit events go to Redis; credentials themselves stay in process memory.
// Write failures are counted and otherwise ignored.
type RedisStreamSink struct {
	redis    redis.UniversalClient
	stream   string
	maxLen   int64
	failures atomic.Uint64
}

// NewRedisStreamSink creates a sink writing to stream. maxLen > 0 caps the stream
// at roughly that many entries using MAXLEN ~, so Redis may keep a few more until a
// whole node can be trimmed.
func NewRedisStreamSink(client redis.UniversalClient, stream string, maxLen int64) *RedisStreamSink {
	if stream == "" {
		stream = DefaultAuditStream
	}
	if maxLen < 0 {
		maxLen = 0
	}
	return &RedisStreamSink{
		redis:  client,
		stream: stream,
		maxLen: maxLen,
	}
}

func (s *RedisStreamSink) Emit(ctx context.Context, event AuditEvent) {
	if s == nil || s.redis == nil {
		return
	}

	values := map[string]any{
		"id":         event.ID,
		"ts":         strconv.FormatInt(event.Timestamp.Unix(), 10),
		"event_type": event.EventType,
		"kind":       event.Kind,
		"user_id":    event.UserID,
		"success":    strconv.FormatBool(event.Success),
	}
	if event.Error != "" {
		values["error"] = event.Error
	}
	if len(event.Metadata) > 0 {
		data, err := json.Marshal(event.Metadata)
		if err == nil {
			values["metadata"] = string(data)
		}
	}

	err := s.redis.XAdd(ctx, &redis.XAddArgs{
		Stream: s.stream,
		MaxLen: s.maxLen,
		Approx: s.maxLen > 0,
		Values: values,
	}).Err()
	if err != nil {
		s.failures.Add(1)
	}
}

// Stream returns the stream key.
func (s *RedisStreamSink) Stream() string {
	return s.stream
}

// Failures returns how many events could not be written.
func (s *RedisStreamSink) Failures() uint64 {
	return s.failures.Load()
}
