package goEphemeral

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/MrEthical07/goEphemeral/store"
)

func isSixDigits(code string) bool {
	if len(code) != 6 {
		return false
	}
	for i := 0; i < len(code); i++ {
		if code[i] < '0' || code[i] > '9' {
			return false
		}
	}
	return code[0] != '0'
}

func TestNewOTPIssuerDefaults(t *testing.T) {
	otp := NewOTPIssuer()
	if got := otp.Size(); got != 0 {
		t.Fatalf("expected empty issuer, got size %d", got)
	}
	if got := otp.Lifetime(); got != DefaultOTPLifetime {
		t.Fatalf("expected %v, got %v", DefaultOTPLifetime, got)
	}
}

func TestOTPGenerateCodeAlwaysSixDigits(t *testing.T) {
	otp := NewOTPIssuer()
	for i := 0; i < 1000; i++ {
		code, err := otp.GenerateCode()
		if err != nil {
			t.Fatalf("GenerateCode failed: %v", err)
		}
		if !isSixDigits(code) {
			t.Fatalf("expected six digits, got %q", code)
		}
	}
}

func TestOTPGenerateCodeRangeEdges(t *testing.T) {
	rnd := &sequenceRandom{values: []uint64{0, 899_999}}
	otp := newOTPIssuer(IssuerConfig{Lifetime: time.Minute}, issuerDeps{random: rnd})

	low, err := otp.GenerateCode()
	if err != nil {
		t.Fatalf("GenerateCode failed: %v", err)
	}
	high, err := otp.GenerateCode()
	if err != nil {
		t.Fatalf("GenerateCode failed: %v", err)
	}
	if low != "100000" || high != "999999" {
		t.Fatalf("expected 100000 and 999999, got %q and %q", low, high)
	}

	for _, r := range rnd.ranges {
		if r != [2]uint64{100_000, 1_000_000} {
			t.Fatalf("unexpected draw range %v", r)
		}
	}
}

func TestCreateUserOTP(t *testing.T) {
	cfg := DefaultConfig()
	cfg.OTP.Lifetime = 60 * time.Second
	engine, _ := newTestEngine(t, cfg, nil)
	otp := engine.OTP()
	ctx := context.Background()

	if got := otp.Size(); got != 0 {
		t.Fatalf("expected size 0, got %d", got)
	}

	code, err := otp.CreateUserOTP(ctx, "jack")
	if err != nil {
		t.Fatalf("CreateUserOTP failed: %v", err)
	}
	if len(code) != 6 {
		t.Fatalf("expected code length 6, got %q", code)
	}
	if got := otp.Size(); got != 1 {
		t.Fatalf("expected size 1, got %d", got)
	}
	if !otp.IsValid(ctx, code, "jack") {
		t.Fatal("expected code to be valid for jack")
	}
	if otp.IsValid(ctx, code, "john") {
		t.Fatal("expected code to be invalid for john")
	}
}

func TestOTPExpiresAfterLifetime(t *testing.T) {
	cfg := DefaultConfig()
	cfg.OTP.Lifetime = 60 * time.Second
	engine, clk := newTestEngine(t, cfg, nil)
	otp := engine.OTP()
	ctx := context.Background()

	code, err := otp.CreateUserOTP(ctx, "jack")
	if err != nil {
		t.Fatalf("CreateUserOTP failed: %v", err)
	}

	clk.Advance(59 * time.Second)
	if !otp.IsValid(ctx, code, "jack") {
		t.Fatal("code should still be valid before its lifetime elapses")
	}

	clk.Advance(time.Second)
	if otp.IsValid(ctx, code, "jack") {
		t.Fatal("code should be invalid once its lifetime elapses")
	}
	if got := otp.Size(); got != 1 {
		t.Fatalf("expired code must still count toward Size, got %d", got)
	}
	if got := otp.Live(); got != 0 {
		t.Fatalf("expected no live codes, got %d", got)
	}

	if got, ok := otp.Remove(ctx, code, "jack"); !ok || got != code {
		t.Fatalf("removing an expired code should return it, got %q %v", got, ok)
	}
}

func TestOTPZeroLifetimeNeverValid(t *testing.T) {
	cfg := DefaultConfig()
	cfg.OTP.Lifetime = 0
	engine, _ := newTestEngine(t, cfg, nil)
	otp := engine.OTP()
	ctx := context.Background()

	code, err := otp.CreateUserOTP(ctx, "sammy")
	if err != nil {
		t.Fatalf("CreateUserOTP failed: %v", err)
	}
	if otp.IsValid(ctx, code, "sammy") {
		t.Fatal("zero-lifetime code must be invalid at issuance")
	}
	if got := otp.Size(); got != 1 {
		t.Fatalf("expected size 1, got %d", got)
	}
}

func TestRemoveUserOTP(t *testing.T) {
	engine, _ := newTestEngine(t, DefaultConfig(), nil)
	otp := engine.OTP()
	ctx := context.Background()

	code, err := otp.CreateUserOTP(ctx, "sally")
	if err != nil {
		t.Fatalf("CreateUserOTP failed: %v", err)
	}
	if !otp.IsValid(ctx, code, "sally") {
		t.Fatal("expected code to be valid")
	}

	got, ok := otp.Remove(ctx, code, "sally")
	if !ok || got != code {
		t.Fatalf("expected Remove to return %q, got %q %v", code, got, ok)
	}
	if otp.IsValid(ctx, code, "sally") {
		t.Fatal("removed code must be invalid")
	}
	if got, ok := otp.Remove(ctx, code, "sally"); ok || got != "" {
		t.Fatalf("second Remove should return nothing, got %q %v", got, ok)
	}
}

func TestOTPTwoCodesSameUserIndependent(t *testing.T) {
	engine, _ := newTestEngine(t, DefaultConfig(), func(b *Builder) {
		b.WithRandom(&counterRandom{})
	})
	otp := engine.OTP()
	ctx := context.Background()

	first, err := otp.CreateUserOTP(ctx, "jack")
	if err != nil {
		t.Fatalf("first CreateUserOTP failed: %v", err)
	}
	second, err := otp.CreateUserOTP(ctx, "jack")
	if err != nil {
		t.Fatalf("second CreateUserOTP failed: %v", err)
	}
	if first == second {
		t.Fatalf("expected distinct codes, got %q twice", first)
	}
	if got := otp.Size(); got != 2 {
		t.Fatalf("expected size 2, got %d", got)
	}

	if _, ok := otp.Remove(ctx, first, "jack"); !ok {
		t.Fatal("expected first code to be removed")
	}
	if otp.IsValid(ctx, first, "jack") {
		t.Fatal("first code should be gone")
	}
	if !otp.IsValid(ctx, second, "jack") {
		t.Fatal("second code should be unaffected")
	}
	if _, ok := otp.Remove(ctx, second, "jack"); !ok {
		t.Fatal("expected second code to be removed")
	}
	if got := otp.Size(); got != 0 {
		t.Fatalf("expected size 0, got %d", got)
	}
}

func TestOTPStoreErrorPassesThroughUnchanged(t *testing.T) {
	cfg := DefaultConfig()
	cfg.OTP.MaxEntries = 1
	engine, _ := newTestEngine(t, cfg, func(b *Builder) {
		b.WithRandom(&counterRandom{})
	})
	otp := engine.OTP()
	ctx := context.Background()

	if _, err := otp.CreateUserOTP(ctx, "jack"); err != nil {
		t.Fatalf("first CreateUserOTP failed: %v", err)
	}

	code, err := otp.CreateUserOTP(ctx, "jack")
	if code != "" {
		t.Fatalf("expected no code on failure, got %q", code)
	}
	if !errors.Is(err, store.ErrStoreFull) || !errors.Is(err, store.ErrWriteFailed) {
		t.Fatalf("expected store error, got %v", err)
	}
	if errors.Is(err, ErrSessionCreationFailed) {
		t.Fatal("OTP errors must not be wrapped with session context")
	}
	if got := engine.MetricsSnapshot().Counters[MetricOTPIssueFailure]; got != 1 {
		t.Fatalf("expected one issue failure, got %d", got)
	}
}

func TestOTPRandomErrorPassesThroughUnchanged(t *testing.T) {
	engine, _ := newTestEngine(t, DefaultConfig(), func(b *Builder) {
		b.WithRandom(failingRandom{})
	})

	_, err := engine.OTP().CreateUserOTP(context.Background(), "jack")
	if err != errRandomUnavailable {
		t.Fatalf("expected the random error verbatim, got %v", err)
	}
	if got := engine.OTP().Size(); got != 0 {
		t.Fatalf("nothing should be stored, got size %d", got)
	}
}

func TestOTPMetrics(t *testing.T) {
	engine, _ := newTestEngine(t, DefaultConfig(), nil)
	otp := engine.OTP()
	ctx := context.Background()

	code, err := otp.CreateUserOTP(ctx, "jack")
	if err != nil {
		t.Fatalf("CreateUserOTP failed: %v", err)
	}
	otp.IsValid(ctx, code, "jack")
	otp.IsValid(ctx, code, "john")
	otp.Remove(ctx, code, "jack")
	otp.Remove(ctx, code, "jack")

	snap := engine.MetricsSnapshot()
	want := map[MetricID]uint64{
		MetricOTPIssued:     1,
		MetricOTPValid:      1,
		MetricOTPInvalid:    1,
		MetricOTPRevoked:    1,
		MetricOTPRevokeMiss: 1,
		MetricSessionIssued: 0,
	}
	for id, v := range want {
		if got := snap.Counters[id]; got != v {
			t.Fatalf("metric %d: expected %d, got %d", id, v, got)
		}
	}
}
