package goEphemeral

import (
	"log/slog"

	"github.com/MrEthical07/goEphemeral/clock"
)

// Builder assembles an Engine. A Builder is single-use: configure it, call Build once,
// and discard it.
type Builder struct {
	config Config
	clock  clock.Clock
	random RandomSource
	logger *slog.Logger

	auditSink AuditSink

	built bool
}

// New returns a Builder seeded with DefaultConfig.
func New() *Builder {
	return &Builder{
		config: defaultConfig(),
	}
}

// WithConfig replaces the whole configuration.
func (b *Builder) WithConfig(cfg Config) *Builder {
	b.config = cfg
	return b
}

// WithClock sets the time source used for issuance and expiry checks.
func (b *Builder) WithClock(c clock.Clock) *Builder {
	b.clock = c
	return b
}

// WithRandom sets the random source used for code generation.
func (b *Builder) WithRandom(r RandomSource) *Builder {
	b.random = r
	return b
}

// WithLogger sets the structured logger. Without one, nothing is logged.
func (b *Builder) WithLogger(l *slog.Logger) *Builder {
	b.logger = l
	return b
}

// WithAuditSink sets where audit events go. It has no effect unless Audit.Enabled is set.
func (b *Builder) WithAuditSink(sink AuditSink) *Builder {
	b.auditSink = sink
	return b
}

// WithMetricsEnabled toggles in-process counters.
func (b *Builder) WithMetricsEnabled(enabled bool) *Builder {
	b.config.Metrics.Enabled = enabled
	return b
}

// WithLatencyHistograms toggles the validate latency histogram.
func (b *Builder) WithLatencyHistograms(enabled bool) *Builder {
	b.config.Metrics.EnableLatencyHistograms = enabled
	return b
}

// Build validates the configuration and returns a ready Engine.
func (b *Builder) Build() (*Engine, error) {
	if b.built {
		return nil, ErrBuilderUsed
	}

	cfg := b.config
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	engine := &Engine{
		config:  cfg,
		audit:   newAuditDispatcher(cfg.Audit, b.auditSink),
		metrics: NewMetrics(cfg.Metrics),
	}

	deps := issuerDeps{
		clock:   b.clock,
		random:  b.random,
		logger:  b.logger,
		metrics: engine.metrics,
		audit:   engine.audit,
	}.withDefaults()

	engine.otp = newOTPIssuer(cfg.OTP, deps)
	engine.session = newSessionIssuer(cfg.Session, deps)

	b.built = true

	return engine, nil
}
