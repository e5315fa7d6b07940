package goEphemeral

import (
	"context"
	"log/slog"
	"strconv"
	"time"

	"github.com/MrEthical07/goEphemeral/clock"
	"github.com/MrEthical07/goEphemeral/store"
	"github.com/google/uuid"
)

const (
	kindOTP     = "otp"
	kindSession = "session"
)

type issuerMetricIDs struct {
	issued       MetricID
	issueFailure MetricID
	valid        MetricID
	invalid      MetricID
	revoked      MetricID
	revokeMiss   MetricID
	swept        MetricID
}

var (
	otpMetricIDs = issuerMetricIDs{
		issued:       MetricOTPIssued,
		issueFailure: MetricOTPIssueFailure,
		valid:        MetricOTPValid,
		invalid:      MetricOTPInvalid,
		revoked:      MetricOTPRevoked,
		revokeMiss:   MetricOTPRevokeMiss,
		swept:        MetricOTPSwept,
	}
	sessionMetricIDs = issuerMetricIDs{
		issued:       MetricSessionIssued,
		issueFailure: MetricSessionIssueFailure,
		valid:        MetricSessionValid,
		invalid:      MetricSessionInvalid,
		revoked:      MetricSessionRevoked,
		revokeMiss:   MetricSessionRevokeMiss,
		swept:        MetricSessionSwept,
	}
)

// issuerDeps are the capabilities shared by both issuers of an Engine.
type issuerDeps struct {
	clock   clock.Clock
	random  RandomSource
	logger  *slog.Logger
	metrics *Metrics
	audit   *auditDispatcher
}

func defaultIssuerDeps() issuerDeps {
	return issuerDeps{
		clock:  clock.System{},
		random: CryptoRandom{},
		logger: slog.New(slog.DiscardHandler),
	}
}

func (d issuerDeps) withDefaults() issuerDeps {
	def := defaultIssuerDeps()
	if d.clock == nil {
		d.clock = def.clock
	}
	if d.random == nil {
		d.random = def.random
	}
	if d.logger == nil {
		d.logger = def.logger
	}
	return d
}

// issuer holds what the OTP and session flavors have in common: a private store,
// a lifetime, and the observability hooks. Flavors differ only in code generation
// and error reporting.
type issuer struct {
	kind     string
	store    *store.Store
	lifetime time.Duration
	ids      issuerMetricIDs

	clock   clock.Clock
	random  RandomSource
	logger  *slog.Logger
	metrics *Metrics
	audit   *auditDispatcher
}

func newIssuer(kind string, cfg IssuerConfig, deps issuerDeps, ids issuerMetricIDs) *issuer {
	deps = deps.withDefaults()
	lifetime := cfg.Lifetime
	if lifetime < 0 {
		lifetime = 0
	}
	return &issuer{
		kind:     kind,
		store:    store.New(deps.clock, store.Options{MaxEntries: cfg.MaxEntries}),
		lifetime: lifetime,
		ids:      ids,
		clock:    deps.clock,
		random:   deps.random,
		logger:   deps.logger,
		metrics:  deps.metrics,
		audit:    deps.audit,
	}
}

func (i *issuer) issue(ctx context.Context, code, user string) error {
	rec := store.NewRecord(code, user, i.clock.Now(), i.lifetime)
	if err := i.store.Put(rec); err != nil {
		i.issueFailed(ctx, user, err)
		return err
	}

	i.metrics.Inc(i.ids.issued)
	i.logger.LogAttrs(ctx, slog.LevelInfo, "credential issued",
		slog.String("kind", i.kind),
		slog.String("user", user),
		slog.Int64("expires_at", rec.ExpiresAt),
	)
	i.emit(ctx, AuditCredentialIssued, user, true, nil, map[string]string{
		"expires_at": strconv.FormatInt(rec.ExpiresAt, 10),
	})
	return nil
}

func (i *issuer) issueFailed(ctx context.Context, user string, err error) {
	i.metrics.Inc(i.ids.issueFailure)
	i.emit(ctx, AuditCredentialIssued, user, false, err, nil)
}

func (i *issuer) isValid(ctx context.Context, code, user string) bool {
	var start time.Time
	if i.metrics.LatencyEnabled() {
		start = time.Now()
	}

	_, ok := i.store.Get(code, user)

	if !start.IsZero() {
		i.metrics.Observe(MetricValidateLatency, time.Since(start))
	}
	if ok {
		i.metrics.Inc(i.ids.valid)
	} else {
		i.metrics.Inc(i.ids.invalid)
	}

	i.logger.LogAttrs(ctx, slog.LevelDebug, "credential validated",
		slog.String("kind", i.kind),
		slog.String("user", user),
		slog.Bool("valid", ok),
	)
	i.emit(ctx, AuditCredentialValidated, user, ok, nil, nil)
	return ok
}

func (i *issuer) remove(ctx context.Context, code, user string) (string, bool) {
	removed := i.store.Remove(code, user)
	if removed {
		i.metrics.Inc(i.ids.revoked)
	} else {
		i.metrics.Inc(i.ids.revokeMiss)
	}

	i.logger.LogAttrs(ctx, slog.LevelInfo, "credential removed",
		slog.String("kind", i.kind),
		slog.String("user", user),
		slog.Bool("found", removed),
	)
	i.emit(ctx, AuditCredentialRevoked, user, removed, nil, nil)

	if !removed {
		return "", false
	}
	return code, true
}

func (i *issuer) sweep(ctx context.Context) int {
	n := i.store.Sweep()
	if n == 0 {
		return 0
	}

	i.metrics.Add(i.ids.swept, uint64(n))
	i.logger.LogAttrs(ctx, slog.LevelInfo, "expired credentials swept",
		slog.String("kind", i.kind),
		slog.Int("count", n),
	)
	i.emit(ctx, AuditCredentialsSwept, "", true, nil, map[string]string{
		"count": strconv.Itoa(n),
	})
	return n
}

func (i *issuer) emit(ctx context.Context, eventType, user string, success bool, err error, meta map[string]string) {
	if !i.audit.enabled() {
		return
	}

	event := AuditEvent{
		ID:        uuid.NewString(),
		Timestamp: i.clock.Now().UTC(),
		EventType: eventType,
		Kind:      i.kind,
		UserID:    user,
		Success:   success,
		Metadata:  meta,
	}
	if err != nil {
		event.Error = err.Error()
	}
	i.audit.Emit(ctx, event)
}
