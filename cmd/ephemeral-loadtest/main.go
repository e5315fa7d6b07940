package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"math/rand"
	"os"
	"sort"
	"sync"
	"sync/atomic"
	"time"

	goEphemeral "github.com/MrEthical07/goEphemeral"
	otelexport "github.com/MrEthical07/goEphemeral/metrics/export/otel"
	promexport "github.com/MrEthical07/goEphemeral/metrics/export/prometheus"
	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/metric/metricdata"
)

type userState struct {
	user    string
	otp     string
	session string
}

func main() {
	var (
		configPath  = flag.String("config", "", "optional config file (yaml, json, toml)")
		users       = flag.Int("users", 0, "number of users to issue credentials for")
		concurrency = flag.Int("concurrency", 0, "number of concurrent workers")
		ops         = flag.Int("ops", 0, "validity checks in the validate phase")
		redisAddr   = flag.String("redis-addr", "", "redis address for the audit stream; miniredis is used when empty")
		format      = flag.String("metrics", "", "metrics output: prometheus, otel or none")
		audit       = flag.Bool("audit", false, "emit audit events to a redis stream")
	)
	flag.Parse()

	cfg, err := loadConfig(*configPath)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(2)
	}

	flag.Visit(func(f *flag.Flag) {
		switch f.Name {
		case "users":
			cfg.Users = *users
		case "concurrency":
			cfg.Concurrency = *concurrency
		case "ops":
			cfg.Ops = *ops
		case "redis-addr":
			cfg.RedisAddr = *redisAddr
		case "metrics":
			cfg.MetricsFormat = *format
		case "audit":
			cfg.Engine.Audit.Enabled = *audit
		}
	})
	if err := cfg.validate(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(2)
	}

	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelWarn}))
	if err := run(context.Background(), cfg, logger, os.Stdout); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func run(ctx context.Context, cfg loadtestConfig, logger *slog.Logger, out io.Writer) error {
	builder := goEphemeral.New().
		WithConfig(cfg.Engine).
		WithLogger(logger)

	var sink *goEphemeral.RedisStreamSink
	if cfg.Engine.Audit.Enabled {
		client, cleanup, err := openRedis(cfg.RedisAddr, out)
		if err != nil {
			return err
		}
		defer cleanup()
		sink = goEphemeral.NewRedisStreamSink(client, cfg.AuditStream, cfg.AuditMaxLen)
		builder.WithAuditSink(sink)
	}

	engine, err := builder.Build()
	if err != nil {
		return err
	}

	var (
		reader   *sdkmetric.ManualReader
		provider *sdkmetric.MeterProvider
		otelExp  *otelexport.Exporter
	)
	if cfg.MetricsFormat == "otel" {
		reader = sdkmetric.NewManualReader()
		provider = sdkmetric.NewMeterProvider(sdkmetric.WithReader(reader))
		otelExp, err = otelexport.NewExporter(provider.Meter("ephemeral-loadtest"), engine)
		if err != nil {
			engine.Close()
			return err
		}
		defer func() {
			_ = otelExp.Close()
			_ = provider.Shutdown(context.Background())
		}()
	}

	states := make([]userState, cfg.Users)
	for i := range states {
		states[i].user = fmt.Sprintf("user-%d", i)
	}

	fmt.Fprintf(out, "issuing credentials for %d users...\n", cfg.Users)
	otpStats := runPhase(cfg.Users, cfg.Concurrency, func(i int, _ *rand.Rand) bool {
		code, err := engine.OTP().CreateUserOTP(ctx, states[i].user)
		if err != nil {
			return false
		}
		states[i].otp = code
		return true
	})
	sessionStats := runPhase(cfg.Users, cfg.Concurrency, func(i int, _ *rand.Rand) bool {
		code, err := engine.Session().CreateUserSession(ctx, states[i].user)
		if err != nil {
			return false
		}
		states[i].session = code
		return true
	})

	// Issue phases have finished writing states; workers below only read it.
	validateStats := runPhase(cfg.Ops, cfg.Concurrency, func(_ int, r *rand.Rand) bool {
		s := &states[r.Intn(len(states))]
		if r.Intn(2) == 0 {
			return engine.OTP().IsValid(ctx, s.otp, s.user)
		}
		return engine.Session().IsValid(ctx, s.session, s.user)
	})
	removeStats := runPhase(cfg.Users, cfg.Concurrency, func(i int, _ *rand.Rand) bool {
		_, ok := engine.OTP().Remove(ctx, states[i].otp, states[i].user)
		return ok
	})
	swept := engine.Sweep(ctx)

	engine.Close()

	fmt.Fprintln(out, "---- results ----")
	printStats(out, "otp-issue", otpStats)
	printStats(out, "session-issue", sessionStats)
	printStats(out, "validate", validateStats)
	printStats(out, "otp-remove", removeStats)
	fmt.Fprintf(out, "store sizes: otp=%d session=%d swept: otp=%d session=%d\n",
		engine.OTP().Size(), engine.Session().Size(), swept.OTP, swept.Session)
	fmt.Fprintf(out, "audit dropped=%d\n", engine.AuditDropped())
	if sink != nil {
		fmt.Fprintf(out, "audit stream %s write failures=%d\n", sink.Stream(), sink.Failures())
	}

	switch cfg.MetricsFormat {
	case "prometheus":
		fmt.Fprintln(out, "---- metrics ----")
		fmt.Fprint(out, promexport.NewExporter(engine).Render())
	case "otel":
		fmt.Fprintln(out, "---- metrics ----")
		return printOTel(ctx, out, reader)
	}
	return nil
}

func openRedis(addr string, out io.Writer) (redis.UniversalClient, func(), error) {
	if addr == "" {
		mr, err := miniredis.Run()
		if err != nil {
			return nil, nil, fmt.Errorf("failed to start miniredis: %w", err)
		}
		client := redis.NewUniversalClient(&redis.UniversalOptions{
			Addrs: []string{mr.Addr()},
		})
		fmt.Fprintf(out, "using miniredis at %s\n", mr.Addr())
		return client, func() {
			_ = client.Close()
			mr.Close()
		}, nil
	}

	client := redis.NewUniversalClient(&redis.UniversalOptions{
		Addrs: []string{addr},
	})
	fmt.Fprintf(out, "using redis at %s\n", addr)
	return client, func() { _ = client.Close() }, nil
}

func printOTel(ctx context.Context, out io.Writer, reader *sdkmetric.ManualReader) error {
	if reader == nil {
		return errors.New("otel reader not initialized")
	}

	var rm metricdata.ResourceMetrics
	if err := reader.Collect(ctx, &rm); err != nil {
		return fmt.Errorf("collect metrics: %w", err)
	}

	for _, sm := range rm.ScopeMetrics {
		for _, m := range sm.Metrics {
			switch data := m.Data.(type) {
			case metricdata.Sum[int64]:
				for _, dp := range data.DataPoints {
					fmt.Fprintf(out, "%s %d\n", m.Name, dp.Value)
				}
			case metricdata.Gauge[int64]:
				for _, dp := range data.DataPoints {
					fmt.Fprintf(out, "%s %d\n", m.Name, dp.Value)
				}
			}
		}
	}
	return nil
}

// runPhase calls op n times across concurrency workers. op reports success.
func runPhase(n, concurrency int, op func(i int, r *rand.Rand) bool) phaseStats {
	var (
		wg        sync.WaitGroup
		cursor    int64
		failures  int64
		latencies = make([]time.Duration, 0, n)
		mu        sync.Mutex
	)

	start := time.Now()
	for w := 0; w < concurrency; w++ {
		wg.Add(1)
		go func(worker int) {
			defer wg.Done()
			r := rand.New(rand.NewSource(time.Now().UnixNano() + int64(worker)*7919))
			local := make([]time.Duration, 0, n/concurrency+1)
			for {
				i := int(atomic.AddInt64(&cursor, 1)) - 1
				if i >= n {
					break
				}
				t0 := time.Now()
				ok := op(i, r)
				local = append(local, time.Since(t0))
				if !ok {
					atomic.AddInt64(&failures, 1)
				}
			}
			mu.Lock()
			latencies = append(latencies, local...)
			mu.Unlock()
		}(w)
	}
	wg.Wait()
	return computeStats(time.Since(start), latencies, failures)
}

type phaseStats struct {
	total    time.Duration
	ops      int
	failures int64
	p50      time.Duration
	p95      time.Duration
	p99      time.Duration
	opsPerS  float64
}

func computeStats(total time.Duration, samples []time.Duration, failures int64) phaseStats {
	if len(samples) == 0 {
		return phaseStats{total: total, failures: failures}
	}
	sort.Slice(samples, func(i, j int) bool { return samples[i] < samples[j] })
	s := phaseStats{
		total:    total,
		ops:      len(samples),
		failures: failures,
		p50:      percentile(samples, 50),
		p95:      percentile(samples, 95),
		p99:      percentile(samples, 99),
	}
	if total > 0 {
		s.opsPerS = float64(len(samples)) / total.Seconds()
	}
	return s
}

func percentile(samples []time.Duration, p int) time.Duration {
	if len(samples) == 0 {
		return 0
	}
	if p <= 0 {
		return samples[0]
	}
	if p >= 100 {
		return samples[len(samples)-1]
	}
	idx := (len(samples) - 1) * p / 100
	return samples[idx]
}

func printStats(out io.Writer, name string, s phaseStats) {
	fmt.Fprintf(out, "%s: ops=%d failures=%d total=%s ops/sec=%.0f p50=%s p95=%s p99=%s\n",
		name,
		s.ops,
		s.failures,
		s.total.Round(time.Millisecond),
		s.opsPerS,
		s.p50.Round(time.Microsecond),
		s.p95.Round(time.Microsecond),
		s.p99.Round(time.Microsecond),
	)
}
