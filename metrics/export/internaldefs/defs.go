package internaldefs

import (
	goEphemeral "github.com/MrEthical07/goEphemeral"
)

// CounterDef maps a counter ID to its exported name.
type CounterDef struct {
	ID   goEphemeral.MetricID
	Name string
	Help string
}

// HistogramDef maps a histogram ID to its exported name.
type HistogramDef struct {
	ID   goEphemeral.MetricID
	Name string
	Help string
}

// CounterDefs lists every counter in export order.
var CounterDefs = []CounterDef{
	{ID: goEphemeral.MetricOTPIssued, Name: "ephemeral_otp_issued_total", Help: "One-time passcodes issued."},
	{ID: goEphemeral.MetricOTPIssueFailure, Name: "ephemeral_otp_issue_failure_total", Help: "Failed one-time passcode issuance."},
	{ID: goEphemeral.MetricOTPValid, Name: "ephemeral_otp_valid_total", Help: "One-time passcode checks that passed."},
	{ID: goEphemeral.MetricOTPInvalid, Name: "ephemeral_otp_invalid_total", Help: "One-time passcode checks that failed."},
	{ID: goEphemeral.MetricOTPRevoked, Name: "ephemeral_otp_revoked_total", Help: "One-time passcodes removed."},
	{ID: goEphemeral.MetricOTPRevokeMiss, Name: "ephemeral_otp_revoke_miss_total", Help: "One-time passcode removals that found nothing."},
	{ID: goEphemeral.MetricOTPSwept, Name: "ephemeral_otp_swept_total", Help: "Expired one-time passcodes reclaimed by sweep."},
	{ID: goEphemeral.MetricSessionIssued, Name: "ephemeral_session_issued_total", Help: "Session tokens issued."},
	{ID: goEphemeral.MetricSessionIssueFailure, Name: "ephemeral_session_issue_failure_total", Help: "Failed session token issuance."},
	{ID: goEphemeral.MetricSessionValid, Name: "ephemeral_session_valid_total", Help: "Session token checks that passed."},
	{ID: goEphemeral.MetricSessionInvalid, Name: "ephemeral_session_invalid_total", Help: "Session token checks that failed."},
	{ID: goEphemeral.MetricSessionRevoked, Name: "ephemeral_session_revoked_total", Help: "Session tokens removed."},
	{ID: goEphemeral.MetricSessionRevokeMiss, Name: "ephemeral_session_revoke_miss_total", Help: "Session token removals that found nothing."},
	{ID: goEphemeral.MetricSessionSwept, Name: "ephemeral_session_swept_total", Help: "Expired session tokens reclaimed by sweep."},
}

// HistogramDefs lists every histogram in export order.
var HistogramDefs = []HistogramDef{
	{ID: goEphemeral.MetricValidateLatency, Name: "ephemeral_validate_latency_seconds", Help: "Validity check latency histogram."},
}

// HistogramBounds are the upper bounds, in seconds, of the core latency buckets.
var HistogramBounds = []string{
	"0.000001",
	"0.000005",
	"0.00001",
	"0.00005",
	"0.0001",
	"0.0005",
	"0.001",
	"+Inf",
}

// HistogramBoundSuffix names each bucket for exporters that cannot carry labels.
var HistogramBoundSuffix = []string{
	"1us",
	"5us",
	"10us",
	"50us",
	"100us",
	"500us",
	"1ms",
	"inf",
}

// NormalizeBuckets copies raw into a fixed-size array, zero-filling missing buckets.
func NormalizeBuckets(raw []uint64) [8]uint64 {
	var out [8]uint64
	for i := 0; i < len(out) && i < len(raw); i++ {
		out[i] = raw[i]
	}
	return out
}

// CumulativeBuckets converts per-bucket counts into running totals.
func CumulativeBuckets(raw [8]uint64) [8]uint64 {
	var out [8]uint64
	var running uint64
	for i := 0; i < len(raw); i++ {
		running += raw[i]
		out[i] = running
	}
	return out
}
