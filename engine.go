package goEphemeral

import "context"

// Engine owns one OTP issuer and one session issuer, each with a private store, plus
// the metrics and audit plumbing they share.
//
// Engine methods are safe for concurrent use. Call Close to drain pending audit events.
type Engine struct {
	config  Config
	otp     *OTPIssuer
	session *SessionIssuer
	audit   *auditDispatcher
	metrics *Metrics
}

// SweepResult reports how many expired entries each issuer reclaimed.
type SweepResult struct {
	OTP     int
	Session int
}

// OTP returns the one-time passcode issuer.
func (e *Engine) OTP() *OTPIssuer {
	return e.otp
}

// Session returns the session token issuer.
func (e *Engine) Session() *SessionIssuer {
	return e.session
}

// Config returns a copy of the configuration the Engine was built with.
func (e *Engine) Config() Config {
	return e.config
}

// Sweep reclaims expired entries from both issuers.
func (e *Engine) Sweep(ctx context.Context) SweepResult {
	return SweepResult{
		OTP:     e.otp.Sweep(ctx),
		Session: e.session.Sweep(ctx),
	}
}

// Close stops the audit dispatcher after delivering buffered events.
// Issuers keep working after Close; their audit events are discarded.
func (e *Engine) Close() {
	if e == nil {
		return
	}
	if e.audit != nil {
		e.audit.Close()
	}
}

// AuditDropped returns how many audit events were dropped by backpressure or a
// failing sink.
func (e *Engine) AuditDropped() uint64 {
	if e == nil || e.audit == nil {
		return 0
	}
	return e.audit.Dropped()
}

// MetricsSnapshot returns the current counters. It is empty when metrics are disabled.
func (e *Engine) MetricsSnapshot() MetricsSnapshot {
	if e == nil || e.metrics == nil {
		return MetricsSnapshot{
			Counters:   map[MetricID]uint64{},
			Histograms: map[MetricID][]uint64{},
		}
	}
	return e.metrics.Snapshot()
}
