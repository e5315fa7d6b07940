package goEphemeral

import (
	"context"
	"strconv"
	"time"
)

const (
	otpCodeMin uint64 = 100_000
	otpCodeMax uint64 = 1_000_000
)

// OTPIssuer issues six-digit one-time passcodes with a short lifetime.
type OTPIssuer struct {
	core *issuer
}

// NewOTPIssuer returns a standalone issuer with DefaultOTPLifetime, the system clock,
// crypto randomness, and no logging, metrics, or audit.
func NewOTPIssuer() *OTPIssuer {
	return newOTPIssuer(defaultConfig().OTP, defaultIssuerDeps())
}

func newOTPIssuer(cfg IssuerConfig, deps issuerDeps) *OTPIssuer {
	return &OTPIssuer{core: newIssuer(kindOTP, cfg, deps, otpMetricIDs)}
}

// GenerateCode draws a uniform integer from [100000, 1000000), so the result is
// always exactly six decimal digits.
func (o *OTPIssuer) GenerateCode() (string, error) {
	n, err := o.core.random.Uint64Range(otpCodeMin, otpCodeMax)
	if err != nil {
		return "", err
	}
	return strconv.FormatUint(n, 10), nil
}

// CreateUserOTP generates a code for user, stores it with the configured lifetime,
// and returns it. Errors from code generation or the store are returned unchanged.
func (o *OTPIssuer) CreateUserOTP(ctx context.Context, user string) (string, error) {
	code, err := o.GenerateCode()
	if err != nil {
		o.core.issueFailed(ctx, user, err)
		return "", err
	}
	if err := o.core.issue(ctx, code, user); err != nil {
		return "", err
	}
	return code, nil
}

// IsValid reports whether code is live for user.
func (o *OTPIssuer) IsValid(ctx context.Context, code, user string) bool {
	return o.core.isValid(ctx, code, user)
}

// Remove revokes code for user. It returns the code and true if an entry existed,
// expired or not.
func (o *OTPIssuer) Remove(ctx context.Context, code, user string) (string, bool) {
	return o.core.remove(ctx, code, user)
}

// Size returns the number of stored entries, including expired ones not yet
// removed or swept. It is not the number of valid codes.
func (o *OTPIssuer) Size() int {
	return o.core.store.Size()
}

// Live returns the number of codes that are currently valid.
func (o *OTPIssuer) Live() int {
	return o.core.store.Live()
}

// Sweep deletes expired entries and returns how many were removed.
func (o *OTPIssuer) Sweep(ctx context.Context) int {
	return o.core.sweep(ctx)
}

// Lifetime returns the configured code lifetime.
func (o *OTPIssuer) Lifetime() time.Duration {
	return o.core.lifetime
}
