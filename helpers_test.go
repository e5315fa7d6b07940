package goEphemeral

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/MrEthical07/goEphemeral/clock"
	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
)

var testEpoch = time.Unix(1_700_000_000, 0)

var errRandomUnavailable = errors.New("random source unavailable")

// sequenceRandom returns queued values offset into the requested range, then
// falls back to min. It records every requested range.
type sequenceRandom struct {
	mu     sync.Mutex
	values []uint64
	ranges [][2]uint64
}

func (r *sequenceRandom) Uint64Range(min, max uint64) (uint64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.ranges = append(r.ranges, [2]uint64{min, max})
	if len(r.values) == 0 {
		return min, nil
	}
	v := r.values[0]
	r.values = r.values[1:]
	return min + v%(max-min), nil
}

type failingRandom struct{}

func (failingRandom) Uint64Range(uint64, uint64) (uint64, error) {
	return 0, errRandomUnavailable
}

// counterRandom yields min, min+1, min+2, ... so every draw is distinct.
type counterRandom struct {
	n atomic.Uint64
}

func (r *counterRandom) Uint64Range(min, max uint64) (uint64, error) {
	return min + (r.n.Add(1)-1)%(max-min), nil
}

type countingSink struct {
	count atomic.Int64
}

func (s *countingSink) Emit(context.Context, AuditEvent) {
	s.count.Add(1)
}

func (s *countingSink) Count() int64 {
	return s.count.Load()
}

type captureSink struct {
	events chan AuditEvent
}

func newCaptureSink(buffer int) *captureSink {
	if buffer <= 0 {
		buffer = 1
	}
	return &captureSink{
		events: make(chan AuditEvent, buffer),
	}
}

func (s *captureSink) Emit(ctx context.Context, event AuditEvent) {
	select {
	case s.events <- event:
	case <-ctx.Done():
	}
}

func (s *captureSink) drain() []AuditEvent {
	var out []AuditEvent
	for {
		select {
		case ev := <-s.events:
			out = append(out, ev)
		default:
			return out
		}
	}
}

type gateSink struct {
	gate chan struct{}
}

func newGateSink() *gateSink {
	return &gateSink{
		gate: make(chan struct{}),
	}
}

func (s *gateSink) Emit(context.Context, AuditEvent) {
	<-s.gate
}

type panicSink struct{}

func (panicSink) Emit(context.Context, AuditEvent) {
	panic("sink down")
}

type syncBuffer struct {
	mu  sync.Mutex
	buf bytes.Buffer
}

func (b *syncBuffer) Write(p []byte) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.Write(p)
}

func (b *syncBuffer) String() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.String()
}

func (b *syncBuffer) Contains(s string) bool {
	return strings.Contains(b.String(), s)
}

func newTestRedis(t *testing.T) (*miniredis.Miniredis, *redis.Client) {
	t.Helper()

	mr, err := miniredis.Run()
	if err != nil {
		t.Fatalf("miniredis.Run failed: %v", err)
	}

	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	return mr, client
}

// newTestEngine builds an Engine on a fake clock with metrics enabled.
func newTestEngine(t *testing.T, cfg Config, configure func(*Builder)) (*Engine, *clock.Fake) {
	t.Helper()

	clk := clock.NewFake(testEpoch)
	b := New().
		WithConfig(cfg).
		WithClock(clk).
		WithMetricsEnabled(true)
	if configure != nil {
		configure(b)
	}

	engine, err := b.Build()
	if err != nil {
		t.Fatalf("Build failed: %v", err)
	}
	t.Cleanup(engine.Close)
	return engine, clk
}
